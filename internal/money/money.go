// Package money formats Colombian peso amounts and parses cash-tender
// declarations ("20000, 2x50000").
package money

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var printer = message.NewPrinter(language.MustParse("es-CO"))

// billToken matches the repeated-bill notation <count>x<denomination>.
var billToken = regexp.MustCompile(`^(\d+)x(\d+)$`)

// stripNonTender removes everything that is not a digit, an "x" or a
// comma, mirroring the tolerant cleanup the bot applies before parsing.
var stripNonTender = regexp.MustCompile(`[^\dx,]`)

// FormatCOP renders an amount with es-CO digit grouping, e.g. "$60.000".
// Peso amounts are whole numbers; fractions are rounded away.
func FormatCOP(amount float64) string {
	return "$" + printer.Sprintf("%d", int64(math.Round(amount)))
}

// ParseTender parses a comma-separated list of bill declarations. Each
// token is either a bare integer or <count>x<denomination>. A single
// unparseable token rejects the whole input.
func ParseTender(input string) (float64, error) {
	cleaned := stripNonTender.ReplaceAllString(strings.ToLower(strings.TrimSpace(input)), "")

	var total float64
	var bills int
	for _, part := range strings.Split(cleaned, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		if m := billToken.FindStringSubmatch(part); m != nil {
			count, err := strconv.Atoi(m[1])
			if err != nil {
				return 0, fmt.Errorf("invalid bill count %q", m[1])
			}
			denom, err := strconv.Atoi(m[2])
			if err != nil {
				return 0, fmt.Errorf("invalid denomination %q", m[2])
			}
			total += float64(count * denom)
			bills++
			continue
		}
		value, err := strconv.Atoi(part)
		if err != nil {
			return 0, fmt.Errorf("unrecognized bill token %q", part)
		}
		total += float64(value)
		bills++
	}

	if bills == 0 {
		return 0, fmt.Errorf("no valid bills in %q", input)
	}
	return total, nil
}
