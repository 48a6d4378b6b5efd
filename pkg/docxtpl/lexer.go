package docxtpl

import "strings"

// TokenKind classifies a lexed template fragment.
type TokenKind int

const (
	TokenText TokenKind = iota
	TokenScalar
	TokenLoopStart
	TokenLoopEnd
	// TokenInvalid is a `{{...}}` sequence whose content is not an
	// identifier. It renders as nothing.
	TokenInvalid
)

func (k TokenKind) String() string {
	switch k {
	case TokenText:
		return "text"
	case TokenScalar:
		return "scalar"
	case TokenLoopStart:
		return "loop-start"
	case TokenLoopEnd:
		return "loop-end"
	case TokenInvalid:
		return "invalid"
	default:
		return "unknown"
	}
}

// Token is one lexed fragment. Name holds the path or loop key for
// placeholder tokens; Raw always holds the original source text.
type Token struct {
	Kind   TokenKind
	Name   string
	Raw    string
	Offset int
}

// Lex splits normalized markup into literal text and placeholder tokens.
// A placeholder never spans markup tags; `{{` without a matching `}}` stays
// literal text.
func Lex(markup string) []Token {
	var tokens []Token
	textStart := 0

	flushText := func(end int) {
		if end > textStart {
			tokens = append(tokens, Token{Kind: TokenText, Raw: markup[textStart:end], Offset: textStart})
		}
	}

	for pos := 0; pos < len(markup); {
		idx := strings.Index(markup[pos:], "{{")
		if idx < 0 {
			break
		}
		start := pos + idx
		end, ok := closingDelim(markup, start+2)
		if !ok {
			pos = start + 1
			continue
		}

		flushText(start)
		raw := markup[start : end+2]
		tokens = append(tokens, classify(raw, start))
		pos = end + 2
		textStart = pos
	}
	flushText(len(markup))
	return tokens
}

// closingDelim returns the index of the `}}` that closes a placeholder whose
// content starts at from.
func closingDelim(markup string, from int) (int, bool) {
	for j := from; j < len(markup); j++ {
		switch markup[j] {
		case '}':
			if j+1 < len(markup) && markup[j+1] == '}' {
				return j, true
			}
			return 0, false
		case '{', '<', '>':
			return 0, false
		}
	}
	return 0, false
}

func classify(raw string, offset int) Token {
	inner := strings.TrimSpace(raw[2 : len(raw)-2])
	kind := TokenScalar
	switch {
	case strings.HasPrefix(inner, "#"):
		kind = TokenLoopStart
		inner = strings.TrimSpace(inner[1:])
	case strings.HasPrefix(inner, "/"):
		kind = TokenLoopEnd
		inner = strings.TrimSpace(inner[1:])
	}
	if !identPattern.MatchString(inner) {
		return Token{Kind: TokenInvalid, Raw: raw, Offset: offset}
	}
	return Token{Kind: kind, Name: inner, Raw: raw, Offset: offset}
}
