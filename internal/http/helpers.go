package http

import (
	"html/template"
	"math"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"zaad/internal/core"
)

var amountPrinter = message.NewPrinter(language.English)

// formatAmount renders a value with thousands separators and two decimals,
// e.g. "12,500.00". Negative values keep their sign.
func formatAmount(v float64) string {
	return amountPrinter.Sprintf("%.2f", core.Round2(v))
}

// barWidth scales v against max to a percentage, never below 2 for a
// non-zero value so small bars stay visible.
func barWidth(v, max float64) int {
	v, max = math.Abs(v), math.Abs(max)
	if max == 0 || v == 0 {
		return 0
	}
	w := int(math.Round(v * 100 / max))
	switch {
	case w < 2:
		return 2
	case w > 100:
		return 100
	}
	return w
}

// title upper-cases the first letter of each word. Casers keep state, so
// each call builds its own.
func title(s string) string {
	return cases.Title(language.English).String(s)
}

func templateFuncs() template.FuncMap {
	return template.FuncMap{
		"amount":   formatAmount,
		"barWidth": barWidth,
		"negative": func(v float64) bool { return v < 0 },
		"title":    title,
	}
}

// sanitizeInput trims and drops control characters except tab and newlines.
func sanitizeInput(s string) string {
	s = strings.TrimSpace(s)
	return strings.Map(func(r rune) rune {
		if r < 32 && r != 9 && r != 10 && r != 13 {
			return -1
		}
		return r
	}, s)
}
