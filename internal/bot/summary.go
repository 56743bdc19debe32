package bot

import (
	"fmt"
	"strings"
	"time"

	"domibot/internal/models"
	"domibot/internal/money"
)

// renderInterpreted is the short order confirmation sent right after
// interpretation, one line per item plus the locally recomputed total.
func renderInterpreted(order *models.Order) string {
	var lines []string
	for _, item := range order.Items {
		detail := ""
		if item.ExtraDetails != nil && *item.ExtraDetails != "" {
			detail = fmt.Sprintf(" [%s]", *item.ExtraDetails)
		}

		if !item.InMenu {
			lines = append(lines, fmt.Sprintf("🍽️ %s%s ⚠️", item.Label(), detail))
			continue
		}
		if item.Quantity > 1 {
			lines = append(lines, fmt.Sprintf("🍽️ %s%s\n   💵 %s c/u = %s",
				item.Label(), detail, money.FormatCOP(item.UnitPrice), money.FormatCOP(item.LineTotal)))
		} else {
			lines = append(lines, fmt.Sprintf("🍽️ %s%s - %s",
				item.Label(), detail, money.FormatCOP(item.LineTotal)))
		}
	}

	msg := "✅ Pedido:\n" + strings.Join(lines, "\n")
	if total := order.ConfirmedTotal(); total > 0 {
		msg += "\n💰 Total: " + money.FormatCOP(total)
	}
	if order.HasUnmatchedItems {
		msg += "\n🔍 Algunos platos deben revisarse."
	}
	return msg
}

// renderSummary assembles the full recap shown before the decision
// step. Totals and change are recomputed from the stored items, never
// read from a cached scalar; absent fields show documented
// placeholders instead of failing.
func renderSummary(s *models.Session) string {
	paymentInfo := "No especificado"
	if s.Payment != nil {
		paymentInfo = s.Payment.Name
		if s.Payment.Account != "" {
			paymentInfo += fmt.Sprintf(" (%s)", s.Payment.Account)
		}
	}

	var cashInfo string
	if s.CashTendered != nil {
		cashInfo = "\n💵 *Billete:* " + money.FormatCOP(*s.CashTendered)
	}

	orderDetail, totalInfo, warnings := renderOrderSection(s.Order)

	var changeInfo string
	if total := s.Order.ConfirmedTotal(); s.CashTendered != nil && total > 0 {
		if *s.CashTendered >= total {
			changeInfo = "\n💸 *Cambio:* " + money.FormatCOP(*s.CashTendered-total)
		} else {
			changeInfo = "\n⚠️ *Billete insuficiente* (faltan " + money.FormatCOP(total-*s.CashTendered) + ")"
		}
	}

	now := time.Now()
	return fmt.Sprintf(`🛎️ *Resumen completo de tu pedido*
══════════════════════
%s%s%s

👤 *Cliente:* %s
📞 *Teléfono:* %s
💳 *Método de pago:* %s%s
📍 *Dirección:* %s
📝 *Notas:* %s%s

📅 *Fecha:* %s - %s`,
		orderDetail, totalInfo, changeInfo,
		orDefault(s.CustomerName, "No especificado"),
		orDefault(s.Phone, "No especificado"),
		paymentInfo, cashInfo,
		orDefault(s.Address, "No especificada"),
		noteOrDefault(s.Note), warnings,
		now.Format("2/1/2006"), now.Format("15:04"))
}

// renderOrderSection formats the order part of the recap for the three
// shapes an order can have: structured, fallback, absent.
func renderOrderSection(order *models.Order) (detail, totalInfo, warnings string) {
	switch {
	case order == nil:
		return "🍽️ *Pedido:* No especificado", "", ""
	case !order.AIProcessed || len(order.Items) == 0:
		text := order.OriginalText
		if text == "" {
			text = order.Summary
		}
		return "🍽️ *Pedido:* " + orDefault(text, "No especificado"), "", "\n🔍 *Pedido será procesado manualmente*"
	}

	var b strings.Builder
	b.WriteString("🍽️ *Pedido detallado:*\n")
	for i, item := range order.Items {
		if len(order.Items) > 1 {
			b.WriteString(fmt.Sprintf("%d. ", i+1))
		}
		b.WriteString("▫️ " + item.Label())
		if item.ExtraDetails != nil && *item.ExtraDetails != "" {
			b.WriteString("\n   📝 " + *item.ExtraDetails)
		}

		if item.InMenu && item.LineTotal > 0 {
			if item.Quantity > 1 {
				b.WriteString(fmt.Sprintf("\n   💵 %s c/u = %s",
					money.FormatCOP(item.UnitPrice), money.FormatCOP(item.LineTotal)))
			} else {
				b.WriteString(" - " + money.FormatCOP(item.LineTotal))
			}
		} else {
			b.WriteString(" - *Precio pendiente*")
		}
		b.WriteString("\n")
	}
	detail = strings.TrimRight(b.String(), "\n")

	if total := order.ConfirmedTotal(); total > 0 {
		totalInfo = "\n💰 *Total confirmado:* " + money.FormatCOP(total)
		if order.EstimatedTotal > total {
			totalInfo += fmt.Sprintf("\n📊 *Total estimado:* %s (+%s pendiente)",
				money.FormatCOP(order.EstimatedTotal), money.FormatCOP(order.EstimatedTotal-total))
		}
	}
	if order.HasUnmatchedItems {
		warnings = "\n⚠️ *Algunos platos serán revisados manualmente*"
	}
	return detail, totalInfo, warnings
}

// renderConfirmation is the message sent immediately on confirm,
// independent of submission outcome.
func renderConfirmation(s *models.Session) string {
	now := time.Now()
	return fmt.Sprintf("✅ *Pedido confirmado*\n📅 %s - %s\n💰 Total: %s\n🙏 ¡Gracias por tu pedido! Reactiva con *Hola*",
		now.Format("2/1/2006"), now.Format("15:04:05"), money.FormatCOP(s.Order.ConfirmedTotal()))
}

func orDefault(v, fallback string) string {
	if strings.TrimSpace(v) == "" {
		return fallback
	}
	return v
}

func noteOrDefault(note *string) string {
	if note == nil || strings.TrimSpace(*note) == "" {
		return "Sin notas adicionales"
	}
	return *note
}
