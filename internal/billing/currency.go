package billing

import (
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var brl = message.NewPrinter(language.BrazilianPortuguese)

// FormatBRL renders a value as Brazilian Real, decimal comma and thousands
// dot: FormatBRL(1250.5) == "R$ 1.250,50".
func FormatBRL(v float64) string {
	return brl.Sprintf("R$ %.2f", v)
}
