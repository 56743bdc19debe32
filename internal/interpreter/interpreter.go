// Package interpreter turns free-text orders into structured orders by
// delegating extraction to a completion model and validating the reply.
package interpreter

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"regexp"
	"strings"
	"time"

	"github.com/tmc/langchaingo/llms"

	"domibot/internal/models"
	"domibot/internal/monitoring"
)

// fencedJSON strips markdown code fences some models wrap around JSON
// replies even in JSON mode.
var fencedJSON = regexp.MustCompile("(?s)```(?:json)?(.*?)```")

// Service performs single-attempt, fail-soft order interpretation.
type Service struct {
	llm         llms.Model
	temperature float64
	monitor     *monitoring.Monitor
}

// New creates an interpreter over the given model. A nil model is
// allowed: every interpretation then falls back to manual review, which
// keeps the bot usable without a completion API credential.
func New(llm llms.Model, temperature float64, monitor *monitoring.Monitor) *Service {
	if temperature <= 0 {
		temperature = 0.1
	}
	return &Service{llm: llm, temperature: temperature, monitor: monitor}
}

// response is the strict reply schema. Anything that does not parse
// into it is an interpretation failure.
type response struct {
	Items   []models.OrderItem `json:"items"`
	Total   float64            `json:"total_pedido"`
	Summary string             `json:"resumen_legible"`
}

// Interpret runs one completion call and returns either a structured
// order or the manual-review fallback record. It never returns an
// error: interpretation failure must not stop the conversation.
func (s *Service) Interpret(ctx context.Context, orderText string, m models.Menu) *models.Order {
	order, err := s.interpret(ctx, orderText, m)
	if err != nil {
		log.Printf("interpreter: falling back to manual review: %v", err)
		s.monitor.InterpreterFailure()
		return &models.Order{
			OriginalText:      orderText,
			AIProcessed:       false,
			NeedsManualReview: true,
			InterpretError:    err.Error(),
			Timestamp:         time.Now(),
		}
	}
	return order
}

func (s *Service) interpret(ctx context.Context, orderText string, m models.Menu) (*models.Order, error) {
	if s.llm == nil {
		return nil, fmt.Errorf("no completion model configured")
	}

	start := time.Now()
	raw, err := llms.GenerateFromSinglePrompt(ctx, s.llm, buildPrompt(orderText, m),
		llms.WithTemperature(s.temperature),
		llms.WithJSONMode(),
	)
	s.monitor.ObserveInterpretation(time.Since(start))
	if err != nil {
		return nil, fmt.Errorf("completion call: %w", err)
	}

	var parsed response
	if err := json.Unmarshal([]byte(cleanReply(raw)), &parsed); err != nil {
		return nil, fmt.Errorf("parsing completion reply: %w", err)
	}
	if len(parsed.Items) == 0 {
		return nil, fmt.Errorf("completion reply contained no items")
	}

	order := &models.Order{
		Items:          normalizeItems(parsed.Items),
		EstimatedTotal: parsed.Total,
		Summary:        parsed.Summary,
		AIProcessed:    true,
		Timestamp:      time.Now(),
	}
	// The model's total is display-only; the confirmed amount is always
	// recomputed from matched items.
	order.MenuTotal = order.ConfirmedTotal()
	for _, item := range order.Items {
		if !item.InMenu {
			order.HasUnmatchedItems = true
			break
		}
	}
	return order, nil
}

// normalizeItems applies the documented defaults: quantity at least 1,
// unmatched items zero-priced with a review note.
func normalizeItems(items []models.OrderItem) []models.OrderItem {
	for i := range items {
		if items[i].Quantity < 1 {
			items[i].Quantity = 1
		}
		if !items[i].InMenu {
			items[i].UnitPrice = 0
			items[i].LineTotal = 0
			if items[i].ReviewNote == nil {
				note := "Revisar manualmente"
				items[i].ReviewNote = &note
			}
		}
	}
	return items
}

func cleanReply(raw string) string {
	cleaned := fencedJSON.ReplaceAllString(raw, "$1")
	return strings.TrimSpace(cleaned)
}
