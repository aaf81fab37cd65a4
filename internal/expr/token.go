package expr

import "github.com/pipe01/trellis/internal/diag"

type TokenType int

const (
	TokenEOF TokenType = iota

	TokenIdent
	TokenInt
	TokenFloat
	TokenString

	TokenTrue
	TokenFalse
	TokenNull

	TokenPlus
	TokenMinus
	TokenStar
	TokenSlash
	TokenPercent

	TokenEq
	TokenNotEq
	TokenLess
	TokenLessEq
	TokenGreater
	TokenGreaterEq

	TokenAndAnd
	TokenOrOr
	TokenNot

	TokenQuestion
	TokenColon

	TokenParenOpen
	TokenParenClose
	TokenBracketOpen
	TokenBracketClose
	TokenComma
	TokenDot
)

var tokenStrings = [...]string{
	TokenEOF: "end of expression",

	TokenIdent:  "identifier",
	TokenInt:    "integer",
	TokenFloat:  "float",
	TokenString: "string",

	TokenTrue:  "true",
	TokenFalse: "false",
	TokenNull:  "null",

	TokenPlus:    "+",
	TokenMinus:   "-",
	TokenStar:    "*",
	TokenSlash:   "/",
	TokenPercent: "%",

	TokenEq:        "==",
	TokenNotEq:     "!=",
	TokenLess:      "<",
	TokenLessEq:    "<=",
	TokenGreater:   ">",
	TokenGreaterEq: ">=",

	TokenAndAnd: "&&",
	TokenOrOr:   "||",
	TokenNot:    "!",

	TokenQuestion: "?",
	TokenColon:    ":",

	TokenParenOpen:    "(",
	TokenParenClose:   ")",
	TokenBracketOpen:  "[",
	TokenBracketClose: "]",
	TokenComma:        ",",
	TokenDot:          ".",
}

func (t TokenType) String() string {
	if t < 0 || int(t) >= len(tokenStrings) {
		return "<unknown>"
	}
	return tokenStrings[t]
}

var keywords = map[string]TokenType{
	"true":  TokenTrue,
	"false": TokenFalse,
	"null":  TokenNull,
}

// Precedence returns the binding power of a binary operator token, or 0 if
// the token is not a binary operator.
func (t TokenType) Precedence() int {
	switch t {
	case TokenOrOr:
		return 1
	case TokenAndAnd:
		return 2
	case TokenEq, TokenNotEq:
		return 3
	case TokenLess, TokenLessEq, TokenGreater, TokenGreaterEq:
		return 4
	case TokenPlus, TokenMinus:
		return 5
	case TokenStar, TokenSlash, TokenPercent:
		return 6
	}
	return 0
}

type Token struct {
	Type TokenType
	Span diag.Span

	// Literal holds the identifier name, the number as written or the decoded
	// string contents.
	Literal string
}

func (t Token) describe() string {
	switch t.Type {
	case TokenIdent, TokenInt, TokenFloat:
		return "'" + t.Literal + "'"
	case TokenString:
		return "string literal"
	case TokenEOF:
		return t.Type.String()
	}
	return "'" + t.Type.String() + "'"
}
