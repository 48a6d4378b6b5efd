package docxtpl

import (
	"regexp"
	"strings"
)

// Delimiter identifies the brace style a template was authored with.
type Delimiter int

const (
	// DelimiterDouble is the canonical `{{name}}` style.
	DelimiterDouble Delimiter = iota
	// DelimiterSingle is the legacy `{name}` style rewritten by Normalize.
	DelimiterSingle
)

func (d Delimiter) String() string {
	if d == DelimiterSingle {
		return "single"
	}
	return "double"
}

// maxSpanBytes bounds how far a candidate placeholder may stretch through
// markup before the scanner gives up on it.
const maxSpanBytes = 4096

const paragraphClose = "</w:p>"

var (
	proofErrPattern = regexp.MustCompile(`</?w:proofErr\b[^>]*>`)
	tagPattern      = regexp.MustCompile(`<[^>]*>`)
	identPattern    = regexp.MustCompile(`^[\p{L}\p{N}_.\-]+$`)

	repeatedOpen  = regexp.MustCompile(`\{{3,}`)
	repeatedClose = regexp.MustCompile(`\}{3,}`)
	paddedOpen    = regexp.MustCompile(`\{\{[ \t\x{00A0}]+`)
	paddedClose   = regexp.MustCompile(`[ \t\x{00A0}]+\}\}`)

	doublePattern = regexp.MustCompile(`\{\{\s*[#/]?\s*[\p{L}\p{N}_.\-]+\s*\}\}`)
	singlePattern = regexp.MustCompile(`(?:^|[^{])\{\s*[#/]?\s*[\p{L}\p{N}_.\-]+\s*\}(?:[^}]|$)`)

	zeroWidth = strings.NewReplacer(
		"\u200b", "",
		"\u200c", "",
		"\u200d", "",
		"\u2060", "",
		"\ufeff", "",
	)
)

// Normalize repairs placeholder syntax in one document part. It strips
// proofing markers and zero-width characters, collapses repeated braces,
// reassembles placeholders split across runs and rewrites single-brace
// templates to the double-brace form. Sequences that cannot be reassembled are
// kept verbatim. Normalize never fails and is idempotent.
func Normalize(markup string) string {
	if markup == "" {
		return ""
	}
	cleaned := stripNoise(markup)
	cleaned = collapseBraces(cleaned)
	style := DetectDelimiter(cleaned)
	return reassemble(cleaned, style)
}

// DetectDelimiter reports the brace style used by markup. Double braces win
// whenever both styles are present; markup without any placeholder defaults to
// DelimiterDouble.
func DetectDelimiter(markup string) Delimiter {
	text := zeroWidth.Replace(tagPattern.ReplaceAllString(markup, ""))
	if doublePattern.MatchString(text) {
		return DelimiterDouble
	}
	if singlePattern.MatchString(text) {
		return DelimiterSingle
	}
	return DelimiterDouble
}

func stripNoise(markup string) string {
	out := proofErrPattern.ReplaceAllString(markup, "")
	return zeroWidth.Replace(out)
}

// collapseBraces repeats until stable since trimming padding can expose a
// new run of braces.
func collapseBraces(markup string) string {
	for {
		out := repeatedOpen.ReplaceAllString(markup, "{{")
		out = repeatedClose.ReplaceAllString(out, "}}")
		out = paddedOpen.ReplaceAllString(out, "{{")
		out = paddedClose.ReplaceAllString(out, "}}")
		if out == markup {
			return out
		}
		markup = out
	}
}

func reassemble(markup string, style Delimiter) string {
	var b strings.Builder
	b.Grow(len(markup))

	inTag := false
	for i := 0; i < len(markup); {
		c := markup[i]
		switch {
		case inTag:
			if c == '>' {
				inTag = false
			}
		case c == '<':
			inTag = true
		case c == '{':
			if end, token, ok := scanSpan(markup, i, style); ok {
				b.WriteString(token)
				i = end
				continue
			}
		}
		b.WriteByte(c)
		i++
	}
	return b.String()
}

// scanSpan tries to read one placeholder starting at markup[start] == '{'.
// It returns the index just past the span and its replacement text.
func scanSpan(markup string, start int, style Delimiter) (int, string, bool) {
	opens, closes := 0, 0
	inTag := false

	for j := start; j < len(markup) && j-start < maxSpanBytes; j++ {
		c := markup[j]
		if inTag {
			if c == '>' {
				inTag = false
			}
			continue
		}

		switch c {
		case '<':
			if strings.HasPrefix(markup[j:], paragraphClose) {
				return 0, "", false
			}
			inTag = true
		case '{':
			opens++
			if closes > 0 || opens > 2 {
				return 0, "", false
			}
		case '}':
			closes++
			if closes > opens {
				return 0, "", false
			}
			if opens == 1 && closes == 1 {
				if j+1 < len(markup) && markup[j+1] == '}' {
					continue
				}
				raw := markup[start : j+1]
				if style != DelimiterSingle {
					return j + 1, raw, true
				}
				token, ok := canonicalToken(raw, false)
				if !ok {
					return 0, "", false
				}
				return j + 1, token, true
			}
			if opens == 2 && closes == 2 {
				token, ok := canonicalToken(markup[start:j+1], true)
				if !ok {
					return 0, "", false
				}
				return j + 1, token, true
			}
		}
	}
	return 0, "", false
}

func canonicalToken(raw string, double bool) (string, bool) {
	text := tagPattern.ReplaceAllString(raw, "")

	left, right := "{", "}"
	if double {
		left, right = "{{", "}}"
	}
	if len(text) < len(left)+len(right) || !strings.HasPrefix(text, left) || !strings.HasSuffix(text, right) {
		return "", false
	}

	inner := strings.Join(strings.Fields(text[len(left):len(text)-len(right)]), "")
	sigil := ""
	if strings.HasPrefix(inner, "#") || strings.HasPrefix(inner, "/") {
		sigil, inner = inner[:1], inner[1:]
	}
	if !identPattern.MatchString(inner) {
		return "", false
	}
	return "{{" + sigil + inner + "}}", true
}
