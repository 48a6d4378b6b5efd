package proposal

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Amount is a quoted value kept both as the text it was given in and as a
// parsed number.
type Amount struct {
	Raw    string
	Number float64
	Valid  bool
}

// ParseAmount reads Brazilian ("R$ 1.234,56") and plain ("1234.56") money
// notations. Text that holds no number yields an invalid Amount that still
// keeps Raw.
func ParseAmount(raw string) Amount {
	amount := Amount{Raw: strings.TrimSpace(raw)}
	if !Filled(amount.Raw) {
		return amount
	}
	number, ok := parseNumber(amount.Raw)
	if !ok {
		return amount
	}
	amount.Number = number
	amount.Valid = true
	return amount
}

// AmountFromNumber builds a valid Amount from a numeric value.
func AmountFromNumber(v float64) Amount {
	return Amount{Raw: FormatBRL(v), Number: v, Valid: true}
}

// Filled reports whether the amount carries any usable text.
func (a Amount) Filled() bool {
	return Filled(a.Raw)
}

// Display returns the canonical "R$ 1.234,56" rendering for parsed amounts
// and the original text otherwise.
func (a Amount) Display() string {
	if a.Valid {
		return FormatBRL(a.Number)
	}
	return a.Raw
}

// MarshalJSON encodes the amount as its original text.
func (a Amount) MarshalJSON() ([]byte, error) {
	return json.Marshal(a.Raw)
}

// UnmarshalJSON accepts either a string or a bare number.
func (a *Amount) UnmarshalJSON(data []byte) error {
	trimmed := strings.TrimSpace(string(data))
	if trimmed == "null" || trimmed == "" {
		*a = Amount{}
		return nil
	}
	var text string
	if err := json.Unmarshal(data, &text); err == nil {
		*a = ParseAmount(text)
		return nil
	}
	var number float64
	if err := json.Unmarshal(data, &number); err != nil {
		return fmt.Errorf("proposal: amount must be a string or number: %w", err)
	}
	*a = AmountFromNumber(number)
	return nil
}

// FormatBRL renders v as Brazilian currency with two decimals.
func FormatBRL(v float64) string {
	sign := ""
	if v < 0 {
		sign = "-"
		v = -v
	}
	cents := int64(math.Round(v * 100))
	whole := strconv.FormatInt(cents/100, 10)

	var grouped strings.Builder
	for i, r := range whole {
		if i > 0 && (len(whole)-i)%3 == 0 {
			grouped.WriteByte('.')
		}
		grouped.WriteRune(r)
	}
	return fmt.Sprintf("%sR$ %s,%02d", sign, grouped.String(), cents%100)
}

// parseNumber reads the first contiguous numeric run of raw. Separators
// count only between digits. A minus sign counts only when it touches the
// run or the currency symbol in front of it.
func parseNumber(raw string) (float64, bool) {
	runes := []rune(raw)
	start := -1
	for i, r := range runes {
		if isDigit(r) {
			start = i
			break
		}
	}
	if start < 0 {
		return 0, false
	}
	end := start
	for end < len(runes) {
		r := runes[end]
		if isDigit(r) || ((r == '.' || r == ',') && end+1 < len(runes) && isDigit(runes[end+1])) {
			end++
			continue
		}
		break
	}
	digits := string(runes[start:end])
	negative := signedPrefix(string(runes[:start]))

	lastComma := strings.LastIndex(digits, ",")
	lastDot := strings.LastIndex(digits, ".")
	switch {
	case lastComma >= 0 && lastDot >= 0:
		if lastComma > lastDot {
			digits = strings.ReplaceAll(digits, ".", "")
			digits = strings.Replace(digits, ",", ".", 1)
		} else {
			digits = strings.ReplaceAll(digits, ",", "")
		}
	case lastComma >= 0:
		if strings.Count(digits, ",") > 1 {
			digits = strings.ReplaceAll(digits, ",", "")
		} else {
			digits = strings.Replace(digits, ",", ".", 1)
		}
	case lastDot >= 0:
		if strings.Count(digits, ".") > 1 || len(digits)-lastDot-1 == 3 {
			digits = strings.ReplaceAll(digits, ".", "")
		}
	}

	number, err := strconv.ParseFloat(digits, 64)
	if err != nil {
		return 0, false
	}
	if negative {
		number = -number
	}
	return number, true
}

func isDigit(r rune) bool {
	return r >= '0' && r <= '9'
}

func signedPrefix(prefix string) bool {
	if strings.HasSuffix(prefix, "-") {
		return true
	}
	trimmed := strings.TrimRight(prefix, " \t")
	if !strings.HasSuffix(trimmed, "R$") {
		return false
	}
	return strings.HasSuffix(strings.TrimSuffix(trimmed, "R$"), "-")
}
