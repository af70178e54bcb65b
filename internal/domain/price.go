package domain

import (
	"fmt"
	"strconv"
	"strings"
)

// PriceQuote holds the reference prices for a pair, as integers scaled by
// 10^decimals of the base unit. Fixed point throughout: on-chain amounts are
// integers and float rounding would drift against them.
type PriceQuote struct {
	AskPrice int64
	BidPrice int64
	Price    int64
	Spread   int64
}

// Pow10 returns 10^n as int64. n is a token decimal count, always small.
func Pow10(n int) int64 {
	p := int64(1)
	for i := 0; i < n; i++ {
		p *= 10
	}
	return p
}

// ParseScaled parses a decimal string into an integer scaled by 10^decimals,
// rounding to nearest (half away from zero) when the input carries more
// fractional digits than the scale. Values representable within the scale
// round-trip exactly.
func ParseScaled(s string, decimals int) (int64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, fmt.Errorf("domain.ParseScaled: empty value")
	}

	sign := int64(1)
	if strings.HasPrefix(s, "-") {
		sign = -1
		s = s[1:]
	} else if strings.HasPrefix(s, "+") {
		s = s[1:]
	}

	intPart, fracPart, _ := strings.Cut(s, ".")
	if strings.Contains(fracPart, ".") {
		return 0, fmt.Errorf("domain.ParseScaled: invalid decimal %q", s)
	}

	var intVal int64
	if intPart != "" {
		v, err := strconv.ParseInt(intPart, 10, 64)
		if err != nil {
			return 0, fmt.Errorf("domain.ParseScaled: %q: %w", s, err)
		}
		intVal = v
	}

	roundUp := false
	if len(fracPart) > decimals {
		if fracPart[decimals] >= '5' {
			roundUp = true
		}
		fracPart = fracPart[:decimals]
	} else {
		fracPart += strings.Repeat("0", decimals-len(fracPart))
	}

	var fracVal int64
	if fracPart != "" {
		v, err := strconv.ParseInt(fracPart, 10, 64)
		if err != nil {
			return 0, fmt.Errorf("domain.ParseScaled: %q: %w", s, err)
		}
		fracVal = v
	}

	total := intVal*Pow10(decimals) + fracVal
	if roundUp {
		total++
	}
	return sign * total, nil
}

// FormatScaled renders a scaled integer back to its decimal string. Exact
// inverse of ParseScaled for values within the scale.
func FormatScaled(v int64, decimals int) string {
	sign := ""
	if v < 0 {
		sign = "-"
		v = -v
	}
	scale := Pow10(decimals)
	if decimals == 0 {
		return sign + strconv.FormatInt(v, 10)
	}
	return fmt.Sprintf("%s%d.%0*d", sign, v/scale, decimals, v%scale)
}
