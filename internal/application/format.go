package application

import (
	"math"
	"strconv"
	"strings"
)

// FormatPrice renders a price in dong with dot-grouped thousands.
func FormatPrice(price float64) string {
	n := int64(math.Round(price))
	neg := n < 0
	if neg {
		n = -n
	}
	digits := strconv.FormatInt(n, 10)
	var b strings.Builder
	if neg {
		b.WriteByte('-')
	}
	for i, r := range digits {
		if i > 0 && (len(digits)-i)%3 == 0 {
			b.WriteByte('.')
		}
		b.WriteRune(r)
	}
	b.WriteString(" ₫")
	return b.String()
}
