package utils

import (
	"encoding/json"
	"net/http"

	"github.com/shopspring/decimal"
)

func WriteJSON(w http.ResponseWriter, code int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(payload)
}

func WriteJSONError(w http.ResponseWriter, message string, code int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": message})
}

// FormatBaht renders an amount the way slips and receipts print it: ฿1,250.00
func FormatBaht(amount decimal.Decimal) string {
	s := amount.StringFixed(2)

	intPart := s
	frac := ""
	if i := len(s) - 3; i >= 0 && s[i] == '.' {
		intPart, frac = s[:i], s[i:]
	}

	neg := false
	if len(intPart) > 0 && intPart[0] == '-' {
		neg = true
		intPart = intPart[1:]
	}

	var out []byte
	for i, c := range []byte(intPart) {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			out = append(out, ',')
		}
		out = append(out, c)
	}

	result := "฿" + string(out) + frac
	if neg {
		result = "-" + result
	}
	return result
}
