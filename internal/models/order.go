package models

import (
	"fmt"
	"strings"
	"time"
)

// Item sizes as the interpreter reports them.
const (
	SizeSmall  = "pequeño"
	SizeMedium = "mediano"
	SizeLarge  = "grande"
)

// OrderItem is a single dish extracted from the customer's free text.
// JSON tags follow the extraction schema shared with the completion API
// and the backend.
type OrderItem struct {
	Dish         string  `json:"plato"`
	Size         *string `json:"tamaño"`
	Quantity     int     `json:"cantidad"`
	UnitPrice    float64 `json:"precio_unitario"`
	LineTotal    float64 `json:"precio_total"`
	ExtraDetails *string `json:"detalles_extra"`
	InMenu       bool    `json:"encontrado_en_menu"`
	ReviewNote   *string `json:"notas_revision"`
}

// Label renders the item as "2x pizza (grande)".
func (i OrderItem) Label() string {
	qty := i.Quantity
	if qty < 1 {
		qty = 1
	}
	label := fmt.Sprintf("%dx %s", qty, i.Dish)
	if i.Size != nil && *i.Size != "" {
		label += fmt.Sprintf(" (%s)", *i.Size)
	}
	return label
}

// Order is the interpreted order stored in the conversation. When the
// interpreter could not produce a structured result it carries only the
// fallback fields (OriginalText, NeedsManualReview, InterpretError) and
// AIProcessed is false.
type Order struct {
	Items             []OrderItem `json:"items"`
	MenuTotal         float64     `json:"total_menu"`
	EstimatedTotal    float64     `json:"total_estimado"`
	HasUnmatchedItems bool        `json:"tiene_items_sin_menu"`
	Summary           string      `json:"resumen"`
	AIProcessed       bool        `json:"procesado_con_ai"`

	OriginalText      string `json:"texto_original,omitempty"`
	NeedsManualReview bool   `json:"requiere_revision_manual,omitempty"`
	InterpretError    string `json:"error_ai,omitempty"`

	Timestamp time.Time `json:"timestamp"`
}

// ConfirmedTotal is the canonical confirmed amount: the sum of line
// totals over items matched against the menu, recomputed on every call.
// MenuTotal is kept for payload compatibility but never trusted.
func (o *Order) ConfirmedTotal() float64 {
	if o == nil {
		return 0
	}
	var total float64
	for _, item := range o.Items {
		if item.InMenu {
			total += item.LineTotal
		}
	}
	return total
}

// LineSummary renders the items as a single comma-separated line, used
// by the spreadsheet payload. Falls back to the original text or the AI
// summary when there are no structured items.
func (o *Order) LineSummary() string {
	if o == nil {
		return "Pedido manual"
	}
	if len(o.Items) == 0 {
		if o.OriginalText != "" {
			return o.OriginalText
		}
		if o.Summary != "" {
			return o.Summary
		}
		return "Pedido manual"
	}
	parts := make([]string, 0, len(o.Items))
	for _, item := range o.Items {
		parts = append(parts, item.Label())
	}
	return strings.Join(parts, ", ")
}
