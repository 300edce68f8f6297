package money

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

var (
	ErrEmpty     = errors.New("valor obrigatório")
	ErrInvalid   = errors.New("valor inválido")
	ErrNegative  = errors.New("valor não pode ser negativo")
	ErrPrecision = errors.New("use no máximo duas casas decimais")
)

// ParseCents converts "49.90", "49,90", "49.9" or "49" into 4990, 4990, 4990, 4900.
// A thousands separator is accepted when both '.' and ',' are present ("1.299,90").
func ParseCents(raw string) (int64, error) {
	value := strings.TrimSpace(raw)
	value = strings.TrimPrefix(value, "R$")
	value = strings.TrimSpace(value)
	if value == "" {
		return 0, ErrEmpty
	}
	if strings.HasPrefix(value, "-") {
		return 0, ErrNegative
	}

	if strings.Contains(value, ".") && strings.Contains(value, ",") {
		if strings.LastIndex(value, ",") > strings.LastIndex(value, ".") {
			value = strings.ReplaceAll(value, ".", "")
		} else {
			value = strings.ReplaceAll(value, ",", "")
		}
	}
	value = strings.ReplaceAll(value, ",", ".")

	whole, frac, hasFrac := strings.Cut(value, ".")
	if whole == "" {
		whole = "0"
	}
	if hasFrac {
		if len(frac) > 2 {
			return 0, ErrPrecision
		}
		if frac == "" {
			return 0, ErrInvalid
		}
	}
	for len(frac) < 2 {
		frac += "0"
	}

	if !digitsOnly(whole) || !digitsOnly(frac) {
		return 0, ErrInvalid
	}
	units, err := strconv.ParseInt(whole, 10, 64)
	if err != nil || units > maxUnits {
		return 0, ErrInvalid
	}
	cents, err := strconv.ParseInt(frac, 10, 64)
	if err != nil {
		return 0, ErrInvalid
	}
	return units*100 + cents, nil
}

// maxUnits keeps units*100+99 inside int64.
const maxUnits = (math.MaxInt64 - 99) / 100

func digitsOnly(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// FormatCents renders cents as the form value, e.g. 4990 -> "49.90".
func FormatCents(cents int64) string {
	sign := ""
	if cents < 0 {
		sign = "-"
		cents = -cents
	}
	return fmt.Sprintf("%s%d.%02d", sign, cents/100, cents%100)
}

// FormatBRL renders cents for display in reports, e.g. 129990 -> "R$ 1.299,90".
func FormatBRL(cents int64) string {
	plain := FormatCents(cents)
	negative := strings.HasPrefix(plain, "-")
	plain = strings.TrimPrefix(plain, "-")
	whole, frac, _ := strings.Cut(plain, ".")

	var grouped strings.Builder
	for i, r := range whole {
		if i > 0 && (len(whole)-i)%3 == 0 {
			grouped.WriteByte('.')
		}
		grouped.WriteRune(r)
	}
	out := "R$ " + grouped.String() + "," + frac
	if negative {
		out = "-" + out
	}
	return out
}

// ToReais converts cents to a float for range filters only.
func ToReais(cents int64) float64 {
	return float64(cents) / 100
}
