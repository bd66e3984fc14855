// Package core holds the ledger's record types and the value types they are
// built from. Amounts are kept as integer paise to keep arithmetic exact;
// floats exist only at display boundaries.
package core

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"unicode"
)

// Money is a rupee amount in paise (hundredths).
type Money struct {
	Paise int64
}

// ParseAmount converts a decimal string such as "12.34" or "12,34" into Money
// with half-up rounding on the third decimal place. Only strictly positive
// amounts are accepted; record amounts are always positive, the sign lives in
// the record type.
func ParseAmount(s string) (Money, error) {
	s = strings.TrimSpace(strings.ReplaceAll(s, ",", "."))
	if s == "" || strings.HasPrefix(s, "+") || strings.HasPrefix(s, "-") {
		return Money{}, ErrInvalidAmount
	}
	parts := strings.SplitN(s, ".", 3)
	if len(parts) > 2 {
		return Money{}, ErrInvalidAmount
	}
	intPart := parts[0]
	fracPart := ""
	if len(parts) == 2 {
		fracPart = parts[1]
	}
	if intPart == "" {
		intPart = "0"
	}
	for _, r := range intPart + fracPart {
		if !unicode.IsDigit(r) {
			return Money{}, ErrInvalidAmount
		}
	}
	iv, err := strconv.ParseInt(intPart, 10, 64)
	if err != nil || iv > (1<<63-1)/100 {
		return Money{}, ErrInvalidAmount
	}
	var frac int64
	if len(fracPart) > 0 {
		frac = int64(fracPart[0]-'0') * 10
		if len(fracPart) > 1 {
			frac += int64(fracPart[1] - '0')
			if len(fracPart) > 2 && fracPart[2] >= '5' {
				frac++
			}
		}
	}
	m := Money{Paise: iv*100 + frac}
	if err := m.Validate(); err != nil {
		return Money{}, err
	}
	return m, nil
}

func (m Money) Validate() error {
	if m.Paise <= 0 {
		return ErrInvalidAmount
	}
	return nil
}

// Rupees returns the amount as a float64 for display only.
func (m Money) Rupees() float64 { return float64(m.Paise) / 100.0 }

// String formats the amount with two decimals, e.g. "1234.50".
func (m Money) String() string {
	sign := ""
	p := m.Paise
	if p < 0 {
		sign = "-"
		p = -p
	}
	return fmt.Sprintf("%s%d.%02d", sign, p/100, p%100)
}

// Money serializes as a bare number of paise.
func (m Money) MarshalJSON() ([]byte, error) {
	return json.Marshal(m.Paise)
}

func (m *Money) UnmarshalJSON(b []byte) error {
	return json.Unmarshal(b, &m.Paise)
}
