package addform

import (
	"strconv"
	"strings"
)

// keepPriceChars drops everything but digits and '.'.
func keepPriceChars(s string) string {
	var b strings.Builder
	for _, r := range s {
		if (r >= '0' && r <= '9') || r == '.' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// MaskPrice applies keystroke masking to raw price input. Input that would
// contain more than one decimal point is rejected and prev is returned.
// Leading zeros are stripped and the fraction is cut to two digits.
func MaskPrice(prev, raw string) string {
	value := keepPriceChars(raw)
	if strings.Count(value, ".") > 1 {
		return prev
	}
	if value == "" {
		return value
	}
	value = strings.TrimLeft(value, "0")
	if whole, frac, ok := strings.Cut(value, "."); ok {
		if len(frac) > 2 {
			frac = frac[:2]
		}
		value = whole + "." + frac
	}
	return value
}

// BlurPrice formats numeric text to exactly two decimals with no currency
// symbol. Anything else is returned as typed.
func BlurPrice(value string) string {
	if value == "" {
		return value
	}
	f, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return value
	}
	return strconv.FormatFloat(f, 'f', 2, 64)
}
