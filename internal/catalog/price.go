package catalog

import (
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
)

// leadingNumber matches the numeric prefix a lenient float parser would accept.
var leadingNumber = regexp.MustCompile(`^[+-]?(\d+\.?\d*|\.\d+)([eE][+-]?\d+)?`)

// fixedLimit is the magnitude from which prices render in exponent form
// instead of fixed-point.
const fixedLimit = 1e21

// parseLeadingFloat reads the numeric prefix of raw as a float64. Prefixes
// beyond float64 range come back as ±Inf or 0.
func parseLeadingFloat(raw string) (float64, bool) {
	m := leadingNumber.FindString(strings.TrimSpace(raw))
	if m == "" {
		return 0, false
	}
	f, err := strconv.ParseFloat(m, 64)
	if err != nil && !errors.Is(err, strconv.ErrRange) {
		return 0, false
	}
	return f, true
}

// ParsePrice reads the leading numeric portion of raw. Text without a finite
// numeric prefix parses as zero and ok is false.
func ParsePrice(raw string) (d decimal.Decimal, ok bool) {
	f, ok := parseLeadingFloat(raw)
	if !ok || math.IsInf(f, 0) {
		return decimal.Zero, false
	}
	return decimal.NewFromFloat(f), true
}

// FormatPrice renders raw as currency followed by exactly two decimals.
// Unparseable input formats as zero. Out of range values render as
// Infinity, and magnitudes of 1e21 and above in exponent form.
func FormatPrice(currency, raw string) string {
	f, _ := parseLeadingFloat(raw)
	switch {
	case math.IsInf(f, 1):
		return currency + "Infinity"
	case math.IsInf(f, -1):
		return currency + "-Infinity"
	case math.Abs(f) >= fixedLimit:
		return currency + strconv.FormatFloat(f, 'g', -1, 64)
	}
	return currency + decimal.NewFromFloat(f).StringFixed(2)
}

// StripPrice removes the currency prefix from a stored price, leaving the
// numeric text used while editing.
func StripPrice(currency, stored string) string {
	return strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(stored), currency))
}

// PriceValue returns the numeric value of a stored price.
func PriceValue(currency, stored string) float64 {
	d, _ := ParsePrice(StripPrice(currency, stored))
	f, _ := d.Float64()
	return f
}
