// Package bot implements the conversation engine: a top-level router
// and the order-capture state machine, driven one inbound message at a
// time.
package bot

import (
	"context"
	"log"
	"sync"
	"time"

	"domibot/internal/models"
	"domibot/internal/monitoring"
	"domibot/internal/transport"
)

// Interpreter turns free-text order descriptions into structured
// orders, falling back to a manual-review record on failure.
type Interpreter interface {
	Interpret(ctx context.Context, orderText string, m models.Menu) *models.Order
}

// Submitter dispatches a confirmed order downstream. It must capture
// everything it needs before returning; the session is reset right
// after the call.
type Submitter interface {
	Submit(s *models.Session)
}

// MenuSource supplies the current menu.
type MenuSource interface {
	Current(ctx context.Context) models.Menu
}

// Engine owns all conversation state. Each session is processed one
// message at a time; distinct sessions may interleave freely.
type Engine struct {
	mu       sync.RWMutex
	sessions map[string]*session

	interp    Interpreter
	submitter Submitter
	menus     MenuSource
	monitor   *monitoring.Monitor
}

type session struct {
	sync.Mutex
	state *models.Session
}

// New creates an engine wired to its collaborators.
func New(interp Interpreter, submitter Submitter, menus MenuSource, monitor *monitoring.Monitor) *Engine {
	return &Engine{
		sessions:  make(map[string]*session),
		interp:    interp,
		submitter: submitter,
		menus:     menus,
		monitor:   monitor,
	}
}

// HandleMessage resumes the conversation suspended at the session's
// current step. Any panic inside a step handler is caught here, logged
// and converted into a re-prompt so a single bad message can never take
// the process down.
func (e *Engine) HandleMessage(ctx context.Context, in transport.Inbound) (replies []transport.Outbound) {
	sess := e.session(in.ChatID)
	sess.Lock()
	defer sess.Unlock()

	defer func() {
		if r := recover(); r != nil {
			log.Printf("bot: recovered panic in step %s for %s: %v", sess.state.Step, in.ChatID, r)
			replies = say("😊 Parece que hubo un problema. Intenta nuevamente.")
		}
	}()

	s := sess.state
	s.UpdatedAt = time.Now()

	switch s.Step {
	case models.StepIdle:
		return e.handleWelcome(s)
	case models.StepMainMenu:
		return e.handleMainMenu(ctx, s, in)
	case models.StepOrderText:
		return e.handleOrderText(ctx, s, in)
	case models.StepName:
		return e.handleName(s, in)
	case models.StepPhone:
		return e.handlePhone(s, in)
	case models.StepPayment:
		return e.handlePayment(s, in)
	case models.StepCash:
		return e.handleCash(s, in)
	case models.StepAddress:
		return e.handleAddress(s, in)
	case models.StepNote:
		return e.handleNote(s, in)
	case models.StepDecision:
		return e.handleDecision(s, in)
	default:
		log.Printf("bot: session %s in unknown step %q, resetting", in.ChatID, s.Step)
		e.endFlow(s)
		return e.handleWelcome(s)
	}
}

// session returns the state holder for a chat, creating it on first
// contact.
func (e *Engine) session(chatID string) *session {
	e.mu.RLock()
	sess, ok := e.sessions[chatID]
	e.mu.RUnlock()
	if ok {
		return sess
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if sess, ok = e.sessions[chatID]; ok {
		return sess
	}
	sess = &session{state: models.NewSession(chatID)}
	e.sessions[chatID] = sess
	e.monitor.SetActiveSessions(len(e.sessions))
	return sess
}

// Session exposes a copy of the stored state for a chat id, or nil.
// Used by tests and diagnostics; the copy cannot mutate live state.
func (e *Engine) Session(chatID string) *models.Session {
	e.mu.RLock()
	defer e.mu.RUnlock()
	if sess, ok := e.sessions[chatID]; ok {
		copied := *sess.state
		return &copied
	}
	return nil
}

// endFlow discards all accumulated state and returns the session to the
// idle/welcome state.
func (e *Engine) endFlow(s *models.Session) {
	s.Reset()
	s.Step = models.StepIdle
}

// cancelIfRequested applies the cancellation checker; on a match the
// whole flow terminates and the session goes idle.
func (e *Engine) cancelIfRequested(s *models.Session, text string) ([]transport.Outbound, bool) {
	notice, cancelled := CheckCancel(text)
	if !cancelled {
		return nil, false
	}
	e.monitor.OrderCancelled()
	e.endFlow(s)
	return say(notice), true
}

func say(bodies ...string) []transport.Outbound {
	out := make([]transport.Outbound, 0, len(bodies))
	for _, b := range bodies {
		out = append(out, transport.Outbound{Body: b})
	}
	return out
}
