package utils

import (
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var ptBR = message.NewPrinter(language.BrazilianPortuguese)

// FormatBRL renders cents as "R$ 1.234,50"
func FormatBRL(cents int64) string {
	sign := ""
	if cents < 0 {
		sign = "-"
		cents = -cents
	}
	return sign + ptBR.Sprintf("R$ %d,%02d", cents/100, cents%100)
}

// FormatCount renders a follower count the way Brazilian UIs do: 950, 12,3 mil, 1,2 mi
func FormatCount(n int64) string {
	switch {
	case n >= 1_000_000:
		return ptBR.Sprintf("%.1f mi", float64(n)/1_000_000)
	case n >= 10_000:
		return ptBR.Sprintf("%.1f mil", float64(n)/1_000)
	default:
		return ptBR.Sprintf("%d", n)
	}
}

// FormatPercent renders a percentage with two decimals: 3,45%
func FormatPercent(v float64) string {
	return ptBR.Sprintf("%.2f%%", v)
}
