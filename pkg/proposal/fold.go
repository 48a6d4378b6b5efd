package proposal

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Fold lowercases s, strips diacritics and collapses whitespace so
// "Não  Informado" and "nao informado" compare equal.
func Fold(s string) string {
	stripper := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	plain, _, err := transform.String(stripper, s)
	if err != nil {
		plain = s
	}
	return strings.Join(strings.Fields(cases.Fold().String(plain)), " ")
}

var notInformed = map[string]struct{}{
	"-":                {},
	"--":               {},
	"—":                {},
	"?":                {},
	"n/a":              {},
	"n/d":              {},
	"n.d":              {},
	"nd":               {},
	"null":             {},
	"none":             {},
	"nil":              {},
	"nenhum":           {},
	"nenhuma":          {},
	"desconhecido":     {},
	"nao informado":    {},
	"nao informada":    {},
	"nao consta":       {},
	"nao identificado": {},
	"nao identificada": {},
	"nao disponivel":   {},
	"sem informacao":   {},
	"nao se aplica":    {},
	"nao localizado":   {},
	"nao encontrado":   {},
	"nao especificado": {},
	"nao especificada": {},
	"ilegivel":         {},
}

// IsNotInformed reports whether s is a placeholder the oracle or a user
// writes instead of leaving a field blank.
func IsNotInformed(s string) bool {
	folded := strings.TrimRight(Fold(s), ".")
	_, ok := notInformed[folded]
	return ok
}

// Filled reports whether s carries an actual value.
func Filled(s string) bool {
	if strings.TrimSpace(s) == "" {
		return false
	}
	return !IsNotInformed(s)
}
