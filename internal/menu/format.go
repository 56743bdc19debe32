package menu

import (
	"regexp"
	"sort"
	"strconv"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"domibot/internal/models"
	"domibot/internal/money"
)

var nonSlug = regexp.MustCompile(`[^a-z0-9_\s]`)
var spaces = regexp.MustCompile(`\s+`)

// deaccent strips combining marks so "Bebidas Frías" slugs the same as
// "Bebidas Frias".
var deaccent = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// Slug normalizes a category name to its menu key: lower case, accents
// removed, punctuation dropped, spaces collapsed to underscores.
func Slug(category string) string {
	s := strings.ToLower(category)
	if clean, _, err := transform.String(deaccent, s); err == nil {
		s = clean
	}
	s = nonSlug.ReplaceAllString(s, "")
	s = strings.TrimSpace(s)
	return spaces.ReplaceAllString(s, "_")
}

// title converts a slug back to a readable heading ("bebidas_frias" ->
// "Bebidas Frias").
func title(slug string) string {
	words := strings.Split(slug, "_")
	for i, w := range words {
		if w == "" {
			continue
		}
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}

// Match is a product found by Search, tagged with its category slug.
type Match struct {
	models.Product
	Category string
}

// Search returns every product whose name contains the term,
// case-insensitive.
func Search(m models.Menu, term string) []Match {
	var results []Match
	needle := strings.ToLower(term)
	for category, products := range m {
		for _, p := range products {
			if strings.Contains(strings.ToLower(p.Nombre), needle) {
				results = append(results, Match{Product: p, Category: category})
			}
		}
	}
	sort.Slice(results, func(i, j int) bool {
		if results[i].Category != results[j].Category {
			return results[i].Category < results[j].Category
		}
		return results[i].Nombre < results[j].Nombre
	})
	return results
}

// ByCategory returns the products under a category name or slug.
func ByCategory(m models.Menu, category string) []models.Product {
	return m[Slug(category)]
}

// Render builds the full chat menu message. Categories are emitted in
// sorted order so the message is stable between fetches.
func Render(m models.Menu) string {
	if m.Empty() {
		return "⚠️ No hay opciones disponibles por el momento."
	}

	slugs := make([]string, 0, len(m))
	for s := range m {
		slugs = append(slugs, s)
	}
	sort.Strings(slugs)

	var b strings.Builder
	b.WriteString("📋 *MENÚ DISPONIBLE* 📋\n\n")
	for _, slug := range slugs {
		b.WriteString("🔸 *" + title(slug) + "*\n")
		for i, p := range m[slug] {
			b.WriteString(fmtLine(i+1, p))
		}
		b.WriteString("\n")
	}
	return strings.TrimRight(b.String(), "\n")
}

// RenderCategory builds the message for a single category.
func RenderCategory(m models.Menu, category string) string {
	products := ByCategory(m, category)
	if len(products) == 0 {
		return "❌ No se encontraron productos en esa categoría."
	}

	var b strings.Builder
	b.WriteString("🔸 *" + title(Slug(category)) + "*\n\n")
	for i, p := range products {
		b.WriteString(fmtLine(i+1, p))
	}
	return strings.TrimRight(b.String(), "\n")
}

func fmtLine(n int, p models.Product) string {
	var b strings.Builder
	b.WriteString(strconv.Itoa(n) + ". " + p.Nombre + " - " + money.FormatCOP(p.Precio) + "\n")
	if p.Descripcion != "" {
		b.WriteString("   _" + p.Descripcion + "_\n")
	}
	return b.String()
}
