package bot

import (
	"context"
	"strings"

	"domibot/internal/menu"
	"domibot/internal/models"
	"domibot/internal/transport"
)

const welcomeMessage = "¡Hola! Soy DomiBot 🤖, el asistente del restaurante.\n*Elige* tu pregunta:"

const optionsMessage = `1️⃣ Ver el menú 📜
2️⃣ Hacer un pedido a domicilio 📝
3️⃣ Hablar con un asesor 📞
4️⃣ Horario y ubicación 📍`

const invalidOptionMessage = "❌ Opción no válida. Elige un número del menú (1-4) para continuar. ¡Estamos para ayudarte! 😊"

const advisorMessage = `📞 *Asesor* disponible
¿Necesitas ayuda? Un asesor te atenderá pronto.
Si es urgente, cuéntanos tu consulta.`

const hoursMessage = `⏰ *Horario*: Todos los días, 5:00 PM - 12:00 AM.
📍 *Ubicación*: Centro de Sahagún, frente a Plaza Bolívar.
🔗 Google Maps: https://www.google.com/maps/place/Parque+Simon+Bolivar+(Central)/`

// optionAliases normalizes a main-menu reply to its option number.
var optionAliases = map[string]string{
	"1": "1", "uno": "1",
	"2": "2", "dos": "2",
	"3": "3", "tres": "3",
	"4": "4", "cuatro": "4",
}

// handleWelcome greets the participant and presents the numbered menu.
// Any inbound text reaches here while the session is idle.
func (e *Engine) handleWelcome(s *models.Session) []transport.Outbound {
	s.Step = models.StepMainMenu
	return say(welcomeMessage, optionsMessage)
}

// handleMainMenu dispatches the selected option. Options 1, 3 and 4 are
// terminal informational flows; option 2 enters the order capture flow.
func (e *Engine) handleMainMenu(ctx context.Context, s *models.Session, in transport.Inbound) []transport.Outbound {
	option := optionAliases[strings.ToLower(strings.TrimSpace(in.Body))]

	switch option {
	case "1":
		current := e.menus.Current(ctx)
		e.endFlow(s)
		return say(
			"📜 *Menú digital cargando...*",
			menu.Render(current),
			"✅ Listo. Escribe *Hola* para continuar",
		)
	case "2":
		s.Step = models.StepOrderText
		return say(orderIntroMessage, promptOrderText)
	case "3":
		e.endFlow(s)
		return say(advisorMessage)
	case "4":
		e.endFlow(s)
		return say(hoursMessage)
	default:
		return say(invalidOptionMessage)
	}
}
