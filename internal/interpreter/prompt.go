package interpreter

import (
	"encoding/json"
	"fmt"

	"domibot/internal/models"
)

// buildPrompt produces the structured-extraction instruction for the
// completion model: segment the order text, match against the supplied
// menu, price matched items, flag unmatched ones, answer JSON only.
func buildPrompt(orderText string, m models.Menu) string {
	menuJSON, err := json.Marshal(m)
	if err != nil {
		menuJSON = []byte("{}")
	}

	return fmt.Sprintf(`Eres un asistente de restaurante que interpreta pedidos.

Devuelve SOLO un JSON válido con este formato:

{
  "items": [
    {
      "plato": "string",
      "tamaño": "pequeño | mediano | grande | null",
      "cantidad": number,
      "precio_unitario": number,
      "precio_total": number,
      "detalles_extra": "string | null",
      "encontrado_en_menu": true/false,
      "notas_revision": "string | null"
    }
  ],
  "total_pedido": number,
  "resumen_legible": "string"
}

REGLAS:
1. MENÚ: %s
2. Si plato en menú → usar precio
3. Si no está en menú → precio=0, nota="Revisar manualmente"
4. Faltantes = null (no cadenas vacías)
5. Separa cada plato en items
6. Total_pedido = suma de precio_total
7. Resumen_legible = frase corta

Pedido del cliente: %q

RESPONDE SOLO EL JSON.
`, menuJSON, orderText)
}
