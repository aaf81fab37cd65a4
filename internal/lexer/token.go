package lexer

import "github.com/pipe01/trellis/internal/diag"

type TokenType int

const (
	TokenTagOpen TokenType = iota
	TokenTagEnd
	TokenSelfClose
	TokenTagClose

	TokenAttributeName
	TokenEquals
	TokenAttributeValue

	TokenText

	TokenEOF
)

func (t TokenType) String() string {
	switch t {
	case TokenTagOpen:
		return "Tag open"
	case TokenTagEnd:
		return "Tag end"
	case TokenSelfClose:
		return "Self close"
	case TokenTagClose:
		return "Tag close"

	case TokenAttributeName:
		return "Attribute name"
	case TokenEquals:
		return "Equals"
	case TokenAttributeValue:
		return "Attribute value"

	case TokenText:
		return "Text"

	case TokenEOF:
		return "EOF"
	}

	return "<unknown>"
}

// Token is a markup token. For tags Contents holds the tag name, for attribute
// values the raw text between the quotes.
type Token struct {
	Type     TokenType
	Span     diag.Span
	Contents string
}
