package docxtpl

import (
	"fmt"
	"strings"
)

// Node is an element of a parsed template tree.
type Node interface {
	node()
}

// TextNode is literal markup copied to the output unchanged.
type TextNode struct {
	Text string
}

// ScalarNode is a `{{path}}` placeholder.
type ScalarNode struct {
	Path string
}

// LoopNode is a `{{#key}}...{{/key}}` region rendered once per row.
type LoopNode struct {
	Key  string
	Body []Node
}

func (TextNode) node()   {}
func (ScalarNode) node() {}
func (LoopNode) node()   {}

// Tree is the parsed form of a template part.
type Tree struct {
	Nodes []Node
}

// SyntaxIssue describes one structural problem found while parsing.
type SyntaxIssue struct {
	Offset  int
	Token   string
	Message string
}

func (i SyntaxIssue) String() string {
	return fmt.Sprintf("offset %d: %s (%s)", i.Offset, i.Message, i.Token)
}

// SyntaxError collects every structural issue of a template. Parse still
// returns a usable tree alongside it.
type SyntaxError struct {
	Issues []SyntaxIssue
}

func (e *SyntaxError) Error() string {
	if e == nil || len(e.Issues) == 0 {
		return "docxtpl: syntax error"
	}
	parts := make([]string, 0, len(e.Issues))
	for _, issue := range e.Issues {
		parts = append(parts, issue.String())
	}
	return "docxtpl: syntax error: " + strings.Join(parts, "; ")
}

type frame struct {
	key   string
	token Token
	nodes []Node
}

// Parse lexes normalized markup and nests loop bodies into a tree.
//
// Recovery rules: a stray loop close is dropped, a loop open that is never
// closed is dropped while its content is kept in place, and a loop that
// reopens an enclosing key is ignored so the first same-key close ends the
// outer region. Each recovery is reported through the returned *SyntaxError.
func Parse(markup string) (*Tree, error) {
	stack := []*frame{{}}
	var issues []SyntaxIssue

	report := func(tok Token, msg string) {
		issues = append(issues, SyntaxIssue{Offset: tok.Offset, Token: tok.Raw, Message: msg})
	}
	top := func() *frame { return stack[len(stack)-1] }
	appendNodes := func(nodes ...Node) {
		f := top()
		f.nodes = append(f.nodes, nodes...)
	}

	for _, tok := range Lex(markup) {
		switch tok.Kind {
		case TokenText:
			appendNodes(TextNode{Text: tok.Raw})
		case TokenScalar:
			appendNodes(ScalarNode{Path: tok.Name})
		case TokenInvalid:
			report(tok, "placeholder is not an identifier")
		case TokenLoopStart:
			if openIndex(stack, tok.Name) > 0 {
				report(tok, fmt.Sprintf("loop %q reopened inside itself", tok.Name))
				continue
			}
			stack = append(stack, &frame{key: tok.Name, token: tok})
		case TokenLoopEnd:
			idx := openIndex(stack, tok.Name)
			if idx <= 0 {
				report(tok, fmt.Sprintf("loop %q closed without being opened", tok.Name))
				continue
			}
			for len(stack)-1 > idx {
				unclosed := stack[len(stack)-1]
				stack = stack[:len(stack)-1]
				report(unclosed.token, fmt.Sprintf("loop %q is never closed", unclosed.key))
				appendNodes(unclosed.nodes...)
			}
			closed := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			appendNodes(LoopNode{Key: closed.key, Body: closed.nodes})
		}
	}

	for len(stack) > 1 {
		unclosed := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		report(unclosed.token, fmt.Sprintf("loop %q is never closed", unclosed.key))
		appendNodes(unclosed.nodes...)
	}

	tree := &Tree{Nodes: stack[0].nodes}
	if len(issues) > 0 {
		return tree, &SyntaxError{Issues: issues}
	}
	return tree, nil
}

// Validate reports the structural issues of markup after normalization.
func Validate(markup string) error {
	_, err := Parse(Normalize(markup))
	return err
}

// Keys lists the distinct scalar paths and loop keys referenced by markup, in
// order of first appearance.
func Keys(markup string) []string {
	var keys []string
	seen := make(map[string]struct{})
	for _, tok := range Lex(markup) {
		if tok.Kind == TokenText || tok.Kind == TokenInvalid || tok.Kind == TokenLoopEnd {
			continue
		}
		if _, ok := seen[tok.Name]; ok {
			continue
		}
		seen[tok.Name] = struct{}{}
		keys = append(keys, tok.Name)
	}
	return keys
}

func openIndex(stack []*frame, key string) int {
	for i := len(stack) - 1; i > 0; i-- {
		if stack[i].key == key {
			return i
		}
	}
	return -1
}
