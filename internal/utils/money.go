package utils

import (
	"fmt"
	"strconv"
	"strings"
)

// ParseDecimal parses a form number. Both "12.5" and "12,5" are accepted.
func ParseDecimal(s string) (float64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, fmt.Errorf("empty number")
	}
	if strings.Contains(s, ",") && !strings.Contains(s, ".") {
		s = strings.Replace(s, ",", ".", 1)
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, err
	}
	return v, nil
}

// IsDecimal reports whether s parses with ParseDecimal to a finite value.
func IsDecimal(s string) bool {
	v, err := ParseDecimal(s)
	if err != nil {
		return false
	}
	return v == v && v <= 1e15 && v >= -1e15
}

// FormatDecimalBR renders a value with two decimals and a comma separator.
// Empty or unparsable input renders as "0,00".
func FormatDecimalBR(s string) string {
	v, err := ParseDecimal(s)
	if err != nil || !IsDecimal(s) {
		return "0,00"
	}
	return strings.Replace(strconv.FormatFloat(v, 'f', 2, 64), ".", ",", 1)
}
