package bot

import "strings"

// cancelPhrases terminate the active flow from any capture step. The
// match is exact after trimming and lower-casing, so ordinary order
// text containing these words is not affected.
var cancelPhrases = map[string]bool{
	"0":               true,
	"salirse":         true,
	"cancelar":        true,
	"cancelar pedido": true,
}

// cancelNotice is the user-facing confirmation of a cancellation.
const cancelNotice = "❌ Pedido *cancelado*. Bot apagado. Reactiva con *Hola* 🔛"

// CheckCancel reports whether the text is a cancellation phrase and, if
// so, returns the notice to send. It runs before any other validation
// in every capture step so cancelling always wins.
func CheckCancel(text string) (string, bool) {
	if cancelPhrases[strings.ToLower(strings.TrimSpace(text))] {
		return cancelNotice, true
	}
	return "", false
}
