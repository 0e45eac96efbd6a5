package models

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"
)

// Money is a monetary amount in integer cents. Keeping cents for all
// arithmetic avoids the floating-point drift that plagues float64 sums.
type Money struct {
	Cents int64
}

// String formats the amount with two decimals, e.g. "3.50". Currency
// symbols are a presentation concern and are left to the caller.
func (m Money) String() string {
	sign := ""
	cents := m.Cents
	if cents < 0 {
		sign = "-"
		cents = -cents
	}
	return fmt.Sprintf("%s%d.%02d", sign, cents/100, cents%100)
}

// Add returns the sum of two amounts.
func (m Money) Add(other Money) Money {
	return Money{Cents: m.Cents + other.Cents}
}

// ParseAmount converts a decimal string to Money with half-up rounding on
// the third decimal place. Both dot (12.34) and comma (12,34) separators
// are accepted. Negative amounts and non-numeric input are rejected; zero
// is allowed.
func ParseAmount(s string) (Money, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Money{}, invalid("amount", "empty")
	}
	s = strings.ReplaceAll(s, ",", ".")
	if strings.HasPrefix(s, "+") || strings.HasPrefix(s, "-") {
		return Money{}, invalid("amount", "must be non-negative and unsigned")
	}
	parts := strings.Split(s, ".")
	if len(parts) > 2 {
		return Money{}, invalid("amount", "not a decimal number")
	}
	intPart := parts[0]
	fracPart := ""
	if len(parts) == 2 {
		fracPart = parts[1]
	}
	// A separator with no digits on either side is not a number; a
	// trailing or leading separator next to digits is fine.
	if intPart == "" && fracPart == "" {
		return Money{}, invalid("amount", "not a decimal number")
	}
	if intPart == "" {
		intPart = "0"
	}
	for _, r := range intPart {
		if !unicode.IsDigit(r) {
			return Money{}, invalid("amount", "not a decimal number")
		}
	}
	for _, r := range fracPart {
		if !unicode.IsDigit(r) {
			return Money{}, invalid("amount", "not a decimal number")
		}
	}
	iv, err := strconv.ParseInt(intPart, 10, 64)
	if err != nil {
		return Money{}, invalid("amount", "out of range")
	}
	const maxSafe = (1<<63 - 1) / 100
	if iv > maxSafe {
		return Money{}, invalid("amount", "out of range")
	}
	// First two fractional digits are cents; the third decides half-up
	// rounding.
	var fracCents int64
	if len(fracPart) > 0 {
		fracCents = int64(fracPart[0]-'0') * 10
		if len(fracPart) > 1 {
			fracCents += int64(fracPart[1] - '0')
			if len(fracPart) > 2 && fracPart[2] >= '5' {
				fracCents++
			}
		}
	}
	return Money{Cents: iv*100 + fracCents}, nil
}
