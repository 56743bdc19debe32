package bot

import (
	"context"
	"strings"
	"testing"

	"domibot/internal/models"
	"domibot/internal/transport"
)

// fakeInterpreter returns a canned order and records the text it saw.
type fakeInterpreter struct {
	order *models.Order
	seen  []string
}

func (f *fakeInterpreter) Interpret(_ context.Context, orderText string, _ models.Menu) *models.Order {
	f.seen = append(f.seen, orderText)
	if f.order != nil {
		copied := *f.order
		return &copied
	}
	return &models.Order{
		OriginalText:      orderText,
		NeedsManualReview: true,
		AIProcessed:       false,
	}
}

// fakeSubmitter copies the session at submit time, since the engine
// resets it immediately after.
type fakeSubmitter struct {
	submitted []*models.Session
}

func (f *fakeSubmitter) Submit(s *models.Session) {
	copied := *s
	f.submitted = append(f.submitted, &copied)
}

type fakeMenu struct{ m models.Menu }

func (f fakeMenu) Current(_ context.Context) models.Menu { return f.m }

func strptr(s string) *string { return &s }

func structuredOrder() *models.Order {
	return &models.Order{
		Items: []models.OrderItem{
			{Dish: "pizza", Size: strptr(models.SizeLarge), Quantity: 2, UnitPrice: 30000, LineTotal: 60000, InMenu: true},
		},
		MenuTotal:      60000,
		EstimatedTotal: 60000,
		Summary:        "2 pizzas grandes",
		AIProcessed:    true,
	}
}

func testEngine(interp *fakeInterpreter, submitter *fakeSubmitter) *Engine {
	return New(interp, submitter, fakeMenu{m: models.Menu{}}, nil)
}

// send pushes one message and returns the concatenated reply bodies.
func send(t *testing.T, e *Engine, chatID, body string) string {
	t.Helper()
	replies := e.HandleMessage(context.Background(), transport.Inbound{ChatID: chatID, Body: body})
	bodies := make([]string, 0, len(replies))
	for _, r := range replies {
		bodies = append(bodies, r.Body)
	}
	return strings.Join(bodies, "\n")
}

func TestFullOrderFlow(t *testing.T) {
	interp := &fakeInterpreter{order: structuredOrder()}
	submitter := &fakeSubmitter{}
	e := testEngine(interp, submitter)

	out := send(t, e, "c1", "hola")
	if !strings.Contains(out, "DomiBot") || !strings.Contains(out, "1️⃣") {
		t.Fatalf("welcome did not present the options menu: %q", out)
	}

	out = send(t, e, "c1", "2")
	if !strings.Contains(out, "Escribe tu pedido") {
		t.Fatalf("option 2 did not enter the order flow: %q", out)
	}

	out = send(t, e, "c1", "2 pizzas grandes y algo mas")
	if !strings.Contains(out, "✅ Pedido:") {
		t.Fatalf("interpreted order not confirmed back: %q", out)
	}
	if !strings.Contains(out, "$30.000 c/u = $60.000") {
		t.Errorf("per-unit pricing missing for quantity > 1: %q", out)
	}
	if !strings.Contains(out, "Nombre y apellido") {
		t.Errorf("flow did not advance to the name step: %q", out)
	}
	if len(interp.seen) != 1 || interp.seen[0] != "2 pizzas grandes y algo mas" {
		t.Errorf("interpreter saw %v, want the raw order text", interp.seen)
	}

	send(t, e, "c1", "Ana García")

	out = send(t, e, "c1", "+57 300 123 4567")
	if !strings.Contains(out, "método de pago") {
		t.Fatalf("valid phone with country prefix rejected: %q", out)
	}
	if got := e.Session("c1").Phone; got != "3001234567" {
		t.Errorf("stored phone = %q, want normalized 3001234567", got)
	}

	out = send(t, e, "c1", "3")
	if !strings.Contains(out, "Método de pago registrado") {
		t.Fatalf("payment option 3 not accepted: %q", out)
	}

	out = send(t, e, "c1", "2x50000")
	if !strings.Contains(out, "💸 Cambio estimado: $40.000") {
		t.Fatalf("change not computed from tender 100000 vs total 60000: %q", out)
	}

	send(t, e, "c1", "Calle 10 #5-23")

	out = send(t, e, "c1", "no")
	if !strings.Contains(out, "No se ha agregado ninguna nota") {
		t.Errorf("note decline not acknowledged: %q", out)
	}
	if !strings.Contains(out, "Resumen completo de tu pedido") {
		t.Fatalf("summary not rendered before the decision step: %q", out)
	}
	if !strings.Contains(out, "💰 *Total confirmado:* $60.000") {
		t.Errorf("summary total not recomputed from items: %q", out)
	}

	out = send(t, e, "c1", "1")
	if !strings.Contains(out, "Pedido confirmado") {
		t.Fatalf("confirmation message missing: %q", out)
	}

	if len(submitter.submitted) != 1 {
		t.Fatalf("submitter called %d times, want 1", len(submitter.submitted))
	}
	got := submitter.submitted[0]
	if got.CustomerName != "Ana García" || got.Phone != "3001234567" || got.Address != "Calle 10 #5-23" {
		t.Errorf("submitted session missing captured fields: %+v", got)
	}
	if got.Payment == nil || got.Payment.Name != "Efectivo" {
		t.Errorf("submitted payment = %+v, want Efectivo", got.Payment)
	}
	if got.CashTendered == nil || *got.CashTendered != 100000 {
		t.Errorf("submitted tender = %v, want 100000", got.CashTendered)
	}

	if step := e.Session("c1").Step; step != models.StepIdle {
		t.Errorf("session step after confirm = %q, want idle", step)
	}
}

func TestInterpreterFailureStillAdvances(t *testing.T) {
	interp := &fakeInterpreter{} // always falls back
	e := testEngine(interp, &fakeSubmitter{})

	send(t, e, "c2", "hola")
	send(t, e, "c2", "2")
	out := send(t, e, "c2", "algo que la ia no entiende")

	if !strings.Contains(out, "No pude procesar el pedido") {
		t.Errorf("fallback warning missing: %q", out)
	}
	if !strings.Contains(out, "Nombre y apellido") {
		t.Errorf("flow stalled instead of advancing to the name step: %q", out)
	}

	s := e.Session("c2")
	if s.Order == nil || !s.Order.NeedsManualReview || s.Order.AIProcessed {
		t.Errorf("fallback order not stored: %+v", s.Order)
	}
}

func TestCancelFromEveryCaptureStep(t *testing.T) {
	steps := []struct {
		name  string
		setup []string
	}{
		{"order_text", []string{"hola", "2"}},
		{"name", []string{"hola", "2", "una pizza"}},
		{"phone", []string{"hola", "2", "una pizza", "Ana"}},
		{"payment", []string{"hola", "2", "una pizza", "Ana", "3001234567"}},
		{"cash", []string{"hola", "2", "una pizza", "Ana", "3001234567", "1"}},
		{"address", []string{"hola", "2", "una pizza", "Ana", "3001234567", "1", "no"}},
		{"note", []string{"hola", "2", "una pizza", "Ana", "3001234567", "1", "no", "Calle 10"}},
	}

	for _, tt := range steps {
		for _, phrase := range []string{"0", "salirse", "cancelar", "Cancelar Pedido"} {
			interp := &fakeInterpreter{order: structuredOrder()}
			e := testEngine(interp, &fakeSubmitter{})
			for _, msg := range tt.setup {
				send(t, e, "c3", msg)
			}

			out := send(t, e, "c3", phrase)
			if !strings.Contains(out, "cancelado") {
				t.Errorf("step %s: %q did not cancel: %q", tt.name, phrase, out)
			}

			s := e.Session("c3")
			if s.Step != models.StepIdle || s.Order != nil || s.CustomerName != "" {
				t.Errorf("step %s: cancel left state behind: %+v", tt.name, s)
			}
		}
	}
}

func TestPhoneValidation(t *testing.T) {
	interp := &fakeInterpreter{order: structuredOrder()}
	e := testEngine(interp, &fakeSubmitter{})
	for _, msg := range []string{"hola", "2", "una pizza", "Ana"} {
		send(t, e, "c4", msg)
	}

	out := send(t, e, "c4", "12345")
	if !strings.Contains(out, "Debe tener 10 dígitos. Tienes 5") {
		t.Errorf("short phone not rejected with digit count: %q", out)
	}
	if step := e.Session("c4").Step; step != models.StepPhone {
		t.Errorf("rejected phone advanced the flow to %q", step)
	}

	out = send(t, e, "c4", "4001234567")
	if !strings.Contains(out, "Debe empezar en 3") {
		t.Errorf("non-mobile prefix not rejected: %q", out)
	}

	out = send(t, e, "c4", "300-123-4567")
	if !strings.Contains(out, "método de pago") {
		t.Errorf("formatted valid phone rejected: %q", out)
	}
}

func TestRestartClearsStateAndReentersOrderText(t *testing.T) {
	interp := &fakeInterpreter{order: structuredOrder()}
	e := testEngine(interp, &fakeSubmitter{})
	for _, msg := range []string{"hola", "2", "una pizza", "Ana", "3001234567", "1", "no", "Calle 10", "no"} {
		send(t, e, "c5", msg)
	}

	out := send(t, e, "c5", "2")
	if !strings.Contains(out, "Reiniciando pedido") {
		t.Fatalf("decision 2 did not restart: %q", out)
	}

	s := e.Session("c5")
	if s.Step != models.StepOrderText {
		t.Errorf("restart step = %q, want order_text", s.Step)
	}
	if s.Order != nil || s.CustomerName != "" || s.Phone != "" || s.Payment != nil {
		t.Errorf("restart kept captured data: %+v", s)
	}

	// The flow is live again from the top.
	out = send(t, e, "c5", "otra pizza")
	if !strings.Contains(out, "Nombre y apellido") {
		t.Errorf("restarted flow did not capture a new order: %q", out)
	}
}

func TestDecisionRejectsUnknownOption(t *testing.T) {
	interp := &fakeInterpreter{order: structuredOrder()}
	submitter := &fakeSubmitter{}
	e := testEngine(interp, submitter)
	for _, msg := range []string{"hola", "2", "una pizza", "Ana", "3001234567", "1", "no", "Calle 10", "no"} {
		send(t, e, "c6", msg)
	}

	out := send(t, e, "c6", "si, confirmo")
	if !strings.Contains(out, "Escribe 1, 2 o 3") {
		t.Errorf("unknown decision not re-prompted: %q", out)
	}
	if len(submitter.submitted) != 0 {
		t.Errorf("unknown decision triggered a submission")
	}
	if step := e.Session("c6").Step; step != models.StepDecision {
		t.Errorf("unknown decision moved the flow to %q", step)
	}
}

func TestMainMenuOptions(t *testing.T) {
	interp := &fakeInterpreter{order: structuredOrder()}
	e := New(interp, &fakeSubmitter{}, fakeMenu{m: models.Menu{
		"pizzas": {{Nombre: "Pizza grande", Precio: 30000}},
	}}, nil)

	send(t, e, "c7", "hola")
	out := send(t, e, "c7", "99")
	if !strings.Contains(out, "Opción no válida") {
		t.Errorf("invalid option not rejected: %q", out)
	}

	out = send(t, e, "c7", "uno")
	if !strings.Contains(out, "MENÚ DISPONIBLE") || !strings.Contains(out, "Pizza grande - $30.000") {
		t.Errorf("option 1 did not render the menu: %q", out)
	}
	if step := e.Session("c7").Step; step != models.StepIdle {
		t.Errorf("menu display left step %q, want idle", step)
	}

	send(t, e, "c7", "hola")
	out = send(t, e, "c7", "4")
	if !strings.Contains(out, "Horario") {
		t.Errorf("option 4 did not send hours: %q", out)
	}
}

func TestLocationBecomesMapsLink(t *testing.T) {
	interp := &fakeInterpreter{order: structuredOrder()}
	e := testEngine(interp, &fakeSubmitter{})
	for _, msg := range []string{"hola", "2", "una pizza", "Ana", "3001234567", "1", "no"} {
		send(t, e, "c8", msg)
	}

	e.HandleMessage(context.Background(), transport.Inbound{
		ChatID:   "c8",
		Location: &transport.Location{Latitude: 8.9461, Longitude: -75.4478},
	})

	want := "Ubicación: https://www.google.com/maps?q=8.9461,-75.4478"
	if got := e.Session("c8").Address; got != want {
		t.Errorf("address = %q, want %q", got, want)
	}
}

func TestCashShortfallWarning(t *testing.T) {
	interp := &fakeInterpreter{order: structuredOrder()}
	e := testEngine(interp, &fakeSubmitter{})
	for _, msg := range []string{"hola", "2", "una pizza", "Ana", "3001234567", "3"} {
		send(t, e, "c9", msg)
	}

	out := send(t, e, "c9", "50000")
	if !strings.Contains(out, "Billete insuficiente (faltan $10.000)") {
		t.Errorf("shortfall against total 60000 not reported: %q", out)
	}
	// Insufficient cash is recorded, not rejected; the flow continues.
	if step := e.Session("c9").Step; step != models.StepAddress {
		t.Errorf("shortfall stalled the flow at %q", step)
	}
}

func TestCashDeclined(t *testing.T) {
	interp := &fakeInterpreter{order: structuredOrder()}
	e := testEngine(interp, &fakeSubmitter{})
	for _, msg := range []string{"hola", "2", "una pizza", "Ana", "3001234567", "1"} {
		send(t, e, "c10", msg)
	}

	out := send(t, e, "c10", "no")
	if !strings.Contains(out, "no pagarás en efectivo") {
		t.Errorf("cash decline not acknowledged: %q", out)
	}

	s := e.Session("c10")
	if !s.CashDeclined || s.CashTendered != nil {
		t.Errorf("decline not recorded: declined=%v tendered=%v", s.CashDeclined, s.CashTendered)
	}
}

func TestSessionsAreIndependent(t *testing.T) {
	interp := &fakeInterpreter{order: structuredOrder()}
	e := testEngine(interp, &fakeSubmitter{})

	send(t, e, "a", "hola")
	send(t, e, "a", "2")
	send(t, e, "b", "hola")

	if step := e.Session("a").Step; step != models.StepOrderText {
		t.Errorf("session a step = %q, want order_text", step)
	}
	if step := e.Session("b").Step; step != models.StepMainMenu {
		t.Errorf("session b step = %q, want main_menu", step)
	}
}
