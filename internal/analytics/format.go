package analytics

import (
	"fmt"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var countPrinter = message.NewPrinter(language.English)

// FormatPercent renders a [0,1] ratio as a percentage with one
// decimal place, e.g. 0.402 becomes "40.2%".
func FormatPercent(ratio float64) string {
	return fmt.Sprintf("%.1f%%", ratio*100)
}

// FormatCount renders a counter with thousands separators,
// e.g. 1234567 becomes "1,234,567".
func FormatCount(n int64) string {
	return countPrinter.Sprintf("%d", n)
}
