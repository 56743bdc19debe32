package interpreter

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/tmc/langchaingo/llms"

	"domibot/internal/models"
)

// fakeModel is a canned completion model.
type fakeModel struct {
	reply string
	err   error
}

func (f *fakeModel) GenerateContent(_ context.Context, _ []llms.MessageContent, _ ...llms.CallOption) (*llms.ContentResponse, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &llms.ContentResponse{
		Choices: []*llms.ContentChoice{{Content: f.reply}},
	}, nil
}

func (f *fakeModel) Call(_ context.Context, _ string, _ ...llms.CallOption) (string, error) {
	return f.reply, f.err
}

const goodReply = `{
  "items": [
    {"plato": "pizza", "tamaño": "grande", "cantidad": 2, "precio_unitario": 30000, "precio_total": 60000, "detalles_extra": null, "encontrado_en_menu": true},
    {"plato": "bandeja especial", "tamaño": null, "cantidad": 1, "precio_unitario": 15000, "precio_total": 15000, "detalles_extra": null, "encontrado_en_menu": false}
  ],
  "total_pedido": 75000,
  "resumen_legible": "2 pizzas grandes y una bandeja especial"
}`

func TestInterpretStructuredReply(t *testing.T) {
	svc := New(&fakeModel{reply: goodReply}, 0.1, nil)

	order := svc.Interpret(context.Background(), "2 pizzas grandes y una bandeja especial", models.Menu{})

	if !order.AIProcessed {
		t.Fatalf("Interpret() fell back on a valid reply: %+v", order)
	}
	if len(order.Items) != 2 {
		t.Fatalf("Interpret() returned %d items, want 2", len(order.Items))
	}
	if !order.HasUnmatchedItems {
		t.Error("unmatched item not flagged")
	}

	// The confirmed total ignores the model's total_pedido and the
	// unmatched item; only the matched pizza line counts.
	if order.MenuTotal != 60000 {
		t.Errorf("MenuTotal = %v, want 60000 recomputed from matched items", order.MenuTotal)
	}
	if order.EstimatedTotal != 75000 {
		t.Errorf("EstimatedTotal = %v, want the model's 75000", order.EstimatedTotal)
	}

	unmatched := order.Items[1]
	if unmatched.UnitPrice != 0 || unmatched.LineTotal != 0 {
		t.Errorf("unmatched item kept a price: %+v", unmatched)
	}
	if unmatched.ReviewNote == nil || *unmatched.ReviewNote != "Revisar manualmente" {
		t.Errorf("unmatched item missing review note: %+v", unmatched)
	}
}

func TestInterpretStripsCodeFences(t *testing.T) {
	fenced := "```json\n" + goodReply + "\n```"
	svc := New(&fakeModel{reply: fenced}, 0.1, nil)

	order := svc.Interpret(context.Background(), "2 pizzas", models.Menu{})
	if !order.AIProcessed {
		t.Fatalf("fenced JSON reply not parsed: %+v", order)
	}
}

func TestInterpretZeroQuantityDefaultsToOne(t *testing.T) {
	reply := `{"items": [{"plato": "pizza", "cantidad": 0, "precio_unitario": 30000, "precio_total": 30000, "encontrado_en_menu": true}], "total_pedido": 30000, "resumen_legible": "una pizza"}`
	svc := New(&fakeModel{reply: reply}, 0.1, nil)

	order := svc.Interpret(context.Background(), "una pizza", models.Menu{})
	if order.Items[0].Quantity != 1 {
		t.Errorf("Quantity = %d, want defaulted to 1", order.Items[0].Quantity)
	}
}

func TestInterpretFallsBack(t *testing.T) {
	tests := []struct {
		name  string
		model llms.Model
	}{
		{"api error", &fakeModel{err: errors.New("rate limited")}},
		{"malformed reply", &fakeModel{reply: "lo siento, no puedo ayudar con eso"}},
		{"empty items", &fakeModel{reply: `{"items": [], "total_pedido": 0, "resumen_legible": ""}`}},
		{"nil model", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := New(tt.model, 0.1, nil)
			order := svc.Interpret(context.Background(), "dos pizzas grandes", models.Menu{})

			if order.AIProcessed {
				t.Fatalf("expected fallback, got structured order: %+v", order)
			}
			if !order.NeedsManualReview {
				t.Error("fallback not flagged for manual review")
			}
			if order.OriginalText != "dos pizzas grandes" {
				t.Errorf("OriginalText = %q, want the raw order text", order.OriginalText)
			}
			if order.InterpretError == "" {
				t.Error("fallback missing the failure reason")
			}
		})
	}
}

func TestBuildPromptEmbedsMenuAndOrder(t *testing.T) {
	m := models.Menu{
		"pizzas": {{Nombre: "Pizza grande", Precio: 30000}},
	}
	prompt := buildPrompt("dos pizzas grandes", m)

	if !strings.Contains(prompt, "dos pizzas grandes") {
		t.Error("prompt missing the order text")
	}
	if !strings.Contains(prompt, "Pizza grande") {
		t.Error("prompt missing the menu")
	}
}
