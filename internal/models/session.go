package models

import "time"

// Step identifies the capture point a conversation is suspended at.
type Step string

const (
	StepIdle      Step = "idle"
	StepMainMenu  Step = "main_menu"
	StepOrderText Step = "order_text"
	StepName      Step = "name"
	StepPhone     Step = "phone"
	StepPayment   Step = "payment"
	StepCash      Step = "cash"
	StepAddress   Step = "address"
	StepNote      Step = "note"
	StepDecision  Step = "decision"
)

// Payment records the selected payment method and, for electronic
// methods, the account the customer should transfer to.
type Payment struct {
	Name    string `json:"nombre"`
	Account string `json:"cuenta,omitempty"`
}

// Session holds everything collected from a single conversation. It is
// owned exclusively by that conversation; the engine serializes access.
type Session struct {
	ChatID       string
	Step         Step
	Order        *Order
	CustomerName string
	Phone        string
	Payment      *Payment
	CashTendered *float64 // nil until answered; see CashDeclined
	CashDeclined bool     // customer answered "no" at the cash step
	Address      string
	Note         *string
	UpdatedAt    time.Time
}

// NewSession returns an idle session for the given conversation id.
func NewSession(chatID string) *Session {
	return &Session{
		ChatID:    chatID,
		Step:      StepIdle,
		UpdatedAt: time.Now(),
	}
}

// Reset discards every captured field, returning the session to a fresh
// state. Used by the restart decision and by cancellation.
func (s *Session) Reset() {
	s.Order = nil
	s.CustomerName = ""
	s.Phone = ""
	s.Payment = nil
	s.CashTendered = nil
	s.CashDeclined = false
	s.Address = ""
	s.Note = nil
	s.UpdatedAt = time.Now()
}
