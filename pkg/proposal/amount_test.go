package proposal

import (
	"encoding/json"
	"testing"
)

func TestParseAmount(t *testing.T) {
	t.Parallel()

	cases := []struct {
		raw   string
		want  float64
		valid bool
	}{
		{raw: "R$ 1.234,56", want: 1234.56, valid: true},
		{raw: "R$ 100", want: 100, valid: true},
		{raw: "1234.56", want: 1234.56, valid: true},
		{raw: "1.234", want: 1234, valid: true},
		{raw: "100,5", want: 100.5, valid: true},
		{raw: "1,234,567", want: 1234567, valid: true},
		{raw: "1.234.567,89", want: 1234567.89, valid: true},
		{raw: "R$ -10,00", want: -10, valid: true},
		{raw: "-R$ 1.500,00", want: -1500, valid: true},
		{raw: "Total - R$ 500,00", want: 500, valid: true},
		{raw: "R$ 100 + frete R$ 20", want: 100, valid: true},
		{raw: "R$ 1.234,56 (à vista)", want: 1234.56, valid: true},
		{raw: "a combinar", valid: false},
		{raw: "não informado", valid: false},
		{raw: "", valid: false},
	}
	for _, tc := range cases {
		got := ParseAmount(tc.raw)
		if got.Valid != tc.valid {
			t.Fatalf("ParseAmount(%q).Valid = %v, want %v", tc.raw, got.Valid, tc.valid)
		}
		if tc.valid && got.Number != tc.want {
			t.Fatalf("ParseAmount(%q).Number = %v, want %v", tc.raw, got.Number, tc.want)
		}
	}
}

func TestAmountDisplay(t *testing.T) {
	t.Parallel()

	cases := map[string]string{
		"R$ 1.234,56": "R$ 1.234,56",
		"1234567.8":   "R$ 1.234.567,80",
		"950":         "R$ 950,00",
		"a combinar":  "a combinar",
		"R$ 0,5":      "R$ 0,50",
		"-1500":       "-R$ 1.500,00",
	}
	for raw, want := range cases {
		if got := ParseAmount(raw).Display(); got != want {
			t.Fatalf("ParseAmount(%q).Display() = %q, want %q", raw, got, want)
		}
	}
}

func TestAmountJSONAcceptsNumbersAndStrings(t *testing.T) {
	t.Parallel()

	var payload struct {
		A Amount `json:"a"`
		B Amount `json:"b"`
		C Amount `json:"c"`
	}
	if err := json.Unmarshal([]byte(`{"a":"R$ 10,00","b":25.5,"c":null}`), &payload); err != nil {
		t.Fatalf("Unmarshal returned error: %v", err)
	}
	if !payload.A.Valid || payload.A.Number != 10 {
		t.Fatalf("unexpected string amount %+v", payload.A)
	}
	if !payload.B.Valid || payload.B.Number != 25.5 || payload.B.Raw != "R$ 25,50" {
		t.Fatalf("unexpected numeric amount %+v", payload.B)
	}
	if payload.C.Filled() {
		t.Fatalf("null amount should be empty, got %+v", payload.C)
	}

	raw, err := json.Marshal(payload.A)
	if err != nil {
		t.Fatalf("Marshal returned error: %v", err)
	}
	if string(raw) != `"R$ 10,00"` {
		t.Fatalf("Marshal() = %s", raw)
	}
}

func TestFilledRecognisesSentinels(t *testing.T) {
	t.Parallel()

	for _, value := range []string{"", "  ", "Não informado", "NAO INFORMADA.", "n/a", "-", "N/D"} {
		if Filled(value) {
			t.Fatalf("Filled(%q) = true, want false", value)
		}
	}
	for _, value := range []string{"ACME Ltda", "12.345.678/0001-90", "0"} {
		if !Filled(value) {
			t.Fatalf("Filled(%q) = false, want true", value)
		}
	}
}
