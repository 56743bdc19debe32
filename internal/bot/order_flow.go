package bot

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"domibot/internal/models"
	"domibot/internal/money"
	"domibot/internal/transport"
)

const orderIntroMessage = "🤖 ¡Hola! Has activado el *servicio automático de pedidos* 📝\n" +
	"Escribe tu pedido (plato, tamaño y detalles).\n\n" +
	"❌ Para cancelar: *0* o *salirse*."

const (
	promptOrderText = "📌 1/7 | Escribe tu pedido completo (platos, tamaños, cantidades y detalles)."
	promptName      = "📝 2/7 Nombre y apellido:"
	promptPhone     = "📞 3/7 Escribe tu *número de contacto* (10 dígitos, inicia en 3):"
	promptPayment   = `💳 4/7 Elige tu *método de pago*:
1️⃣ Nequi: 324 665 5962
2️⃣ Bancolombia: 320 649 1370
3️⃣ Efectivo 💵
4️⃣ Pagar en restaurante 🍽️

👉 Al final del proceso envía el comprobante de pago (si aplica) para procesar tu pedido.`
	promptCash = "💵 5/7 ¿Vas a pagar en efectivo?\n" +
		"👉 Escribe los billetes que usarás (ej: 20000, 50000 o 2x100000).\n" +
		"👉 Si no, escribe *no*."
	promptAddress = "📍 6/7 Dirección de entrega: Escríbela o envía tu ubicación por WhatsApp.\n" +
		"👉 Si vas a recoger tu pedido en el restaurante, simplemente escribe \"Local\"."
	promptNote     = "📝 7/7 Si deseas dejar una nota adicional para tu pedido, escríbela aquí. Si no, simplemente escribe *no*."
	promptDecision = `
*¿Qué deseas hacer?*

1️⃣ *Confirmar pedido*
2️⃣ *Reiniciar pedido*
3️⃣ *Cancelar pedido*

👉 *Escribe el número de tu opción:*`
)

// paymentAliases maps a reply (numeral or name, case-insensitive) to a
// payment method key.
var paymentAliases = map[string]string{
	"1": "nequi", "nequi": "nequi",
	"2": "bancolombia", "bancolombia": "bancolombia",
	"3": "efectivo", "efectivo": "efectivo",
	"4": "pagar en restaurante", "pagar en restaurante": "pagar en restaurante",
}

// paymentMethods carries the display name and, for the electronic
// methods, the receiving account.
var paymentMethods = map[string]models.Payment{
	"nequi":                {Name: "Nequi", Account: "324 665 5962"},
	"bancolombia":          {Name: "Bancolombia", Account: "320 649 1370"},
	"efectivo":             {Name: "Efectivo"},
	"pagar en restaurante": {Name: "Pagar en restaurante"},
}

// noteDeclines are the replies that mean "no note".
var noteDeclines = map[string]bool{"no": true, "sin nota": true, "ninguna": true}

// handleOrderText interprets the free-text order. Interpretation
// failure is not a dead end: the fallback record is stored and the flow
// advances so the order can be reviewed manually.
func (e *Engine) handleOrderText(ctx context.Context, s *models.Session, in transport.Inbound) []transport.Outbound {
	if replies, cancelled := e.cancelIfRequested(s, in.Body); cancelled {
		return replies
	}

	order := e.interp.Interpret(ctx, in.Body, e.menus.Current(ctx))
	s.Order = order
	s.Step = models.StepName

	if !order.AIProcessed {
		return say(
			fmt.Sprintf("⚠️ No pude procesar el pedido automático.\n📝 %q\nSerá revisado manualmente.", in.Body),
			promptName,
		)
	}
	return say(renderInterpreted(order), promptName)
}

func (e *Engine) handleName(s *models.Session, in transport.Inbound) []transport.Outbound {
	if replies, cancelled := e.cancelIfRequested(s, in.Body); cancelled {
		return replies
	}

	s.CustomerName = strings.TrimSpace(in.Body)
	s.Step = models.StepPhone
	return say(promptPhone)
}

// NormalizePhone strips formatting and a leading 57 country prefix from
// a Colombian mobile number. The second return is the rejection message
// for invalid input, empty when the number is accepted.
func NormalizePhone(raw string) (string, string) {
	var digits strings.Builder
	for _, r := range raw {
		if r >= '0' && r <= '9' {
			digits.WriteRune(r)
		}
	}
	clean := digits.String()

	if strings.HasPrefix(clean, "57") && len(clean) == 12 {
		clean = clean[2:]
	}
	if len(clean) != 10 {
		return "", fmt.Sprintf("⚠️ Debe tener 10 dígitos. Tienes %d. Ej: 3001234567", len(clean))
	}
	if !strings.HasPrefix(clean, "3") {
		return "", "⚠️ Debe empezar en 3. Ej: 3001234567"
	}
	return clean, ""
}

func (e *Engine) handlePhone(s *models.Session, in transport.Inbound) []transport.Outbound {
	if replies, cancelled := e.cancelIfRequested(s, in.Body); cancelled {
		return replies
	}

	clean, rejection := NormalizePhone(in.Body)
	if rejection != "" {
		return say(rejection)
	}

	s.Phone = clean
	s.Step = models.StepPayment
	return say(promptPayment)
}

func (e *Engine) handlePayment(s *models.Session, in transport.Inbound) []transport.Outbound {
	if replies, cancelled := e.cancelIfRequested(s, in.Body); cancelled {
		return replies
	}

	key, ok := paymentAliases[strings.ToLower(strings.TrimSpace(in.Body))]
	if !ok {
		return say("⚠️ Opción inválida. Elige el número o el nombre de la opción.")
	}

	payment := paymentMethods[key]
	s.Payment = &payment
	s.Step = models.StepCash
	return say("✅ Método de pago registrado.", promptCash)
}

func (e *Engine) handleCash(s *models.Session, in transport.Inbound) []transport.Outbound {
	if replies, cancelled := e.cancelIfRequested(s, in.Body); cancelled {
		return replies
	}

	entry := strings.ToLower(strings.TrimSpace(in.Body))
	if entry == "no" {
		s.CashDeclined = true
		s.CashTendered = nil
		s.Step = models.StepAddress
		return say("✅ Registrado: no pagarás en efectivo.", promptAddress)
	}

	tender, err := money.ParseTender(entry)
	if err != nil {
		return say("⚠️ No entendí los billetes. Ej: 20000, 50000 o 2x100000. Por favor intenta de nuevo.")
	}

	s.CashTendered = &tender
	s.CashDeclined = false
	s.Step = models.StepAddress

	msg := "✅ Registrado: pagarás con " + money.FormatCOP(tender)
	if total := s.Order.ConfirmedTotal(); total > 0 {
		if tender >= total {
			msg += "\n💸 Cambio estimado: " + money.FormatCOP(tender-total)
		} else {
			msg += "\n⚠️ Billete insuficiente (faltan " + money.FormatCOP(total-tender) + ")"
		}
	}
	return say(msg, promptAddress)
}

func (e *Engine) handleAddress(s *models.Session, in transport.Inbound) []transport.Outbound {
	if replies, cancelled := e.cancelIfRequested(s, in.Body); cancelled {
		return replies
	}

	if in.Location != nil {
		s.Address = fmt.Sprintf("Ubicación: https://www.google.com/maps?q=%s,%s",
			strconv.FormatFloat(in.Location.Latitude, 'f', -1, 64),
			strconv.FormatFloat(in.Location.Longitude, 'f', -1, 64))
	} else {
		s.Address = strings.TrimSpace(in.Body)
	}

	s.Step = models.StepNote
	return say(promptNote)
}

// handleNote captures the optional note and, since the summary step has
// no capture of its own, immediately renders the recap and the decision
// prompt.
func (e *Engine) handleNote(s *models.Session, in transport.Inbound) []transport.Outbound {
	if replies, cancelled := e.cancelIfRequested(s, in.Body); cancelled {
		return replies
	}

	entry := strings.TrimSpace(in.Body)
	var ack string
	if noteDeclines[strings.ToLower(entry)] {
		s.Note = nil
		ack = "ℹ️ No se ha agregado ninguna nota."
	} else {
		s.Note = &entry
		ack = fmt.Sprintf("✅ Nota registrada: %q", entry)
	}

	s.Step = models.StepDecision
	return say(ack, "🎉 *Último paso*", renderSummary(s), promptDecision)
}

func (e *Engine) handleDecision(s *models.Session, in transport.Inbound) []transport.Outbound {
	option := strings.ToLower(strings.TrimSpace(in.Body))

	if _, cancelled := CheckCancel(option); cancelled || option == "3" {
		e.monitor.OrderCancelled()
		e.endFlow(s)
		return say("❌ Pedido cancelado. Reactiva con *Hola*")
	}

	switch option {
	case "1":
		confirmation := renderConfirmation(s)
		e.monitor.OrderConfirmed()
		e.submitter.Submit(s)
		e.endFlow(s)
		return say(confirmation)
	case "2":
		e.monitor.OrderRestarted()
		s.Reset()
		s.Step = models.StepOrderText
		return say("🔄 Reiniciando pedido...", orderIntroMessage, promptOrderText)
	default:
		return say("⚠️ Escribe 1, 2 o 3")
	}
}
