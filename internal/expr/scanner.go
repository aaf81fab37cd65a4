package expr

import (
	"strings"
	"unicode/utf8"

	"github.com/pipe01/trellis/internal/diag"
)

// Scanner tokenizes the contents of a single binding.
type Scanner struct {
	src    string
	source string

	offset    int
	line, col int

	buf strings.Builder
}

// NewScanner creates a scanner over src, whose first character sits at start
// in the markup source named source.
func NewScanner(src string, start diag.Location, source string) *Scanner {
	return &Scanner{
		src:    src,
		source: source,
		line:   start.Line,
		col:    start.Column,
	}
}

func (s *Scanner) loc() diag.Location {
	return diag.Location{Line: s.line, Column: s.col}
}

func (s *Scanner) spanFrom(start diag.Location) diag.Span {
	return diag.Span{Source: s.source, Start: start, End: s.loc()}
}

func (s *Scanner) peek() (rune, bool) {
	if s.offset >= len(s.src) {
		return 0, false
	}

	r, _ := utf8.DecodeRuneInString(s.src[s.offset:])
	return r, true
}

func (s *Scanner) peekAt(n int) (rune, bool) {
	off := s.offset
	for i := 0; i < n; i++ {
		if off >= len(s.src) {
			return 0, false
		}
		_, size := utf8.DecodeRuneInString(s.src[off:])
		off += size
	}

	if off >= len(s.src) {
		return 0, false
	}

	r, _ := utf8.DecodeRuneInString(s.src[off:])
	return r, true
}

func (s *Scanner) advance() rune {
	r, size := utf8.DecodeRuneInString(s.src[s.offset:])
	s.offset += size

	if r == '\n' {
		s.line++
		s.col = 0
	} else if r != '\r' {
		s.col++
	}

	return r
}

// Scan returns the next token. At the end of input it keeps returning EOF.
func (s *Scanner) Scan() (Token, error) {
	for {
		r, ok := s.peek()
		if !ok || !isWhitespace(r) {
			break
		}
		s.advance()
	}

	start := s.loc()

	r, ok := s.peek()
	if !ok {
		return Token{Type: TokenEOF, Span: s.spanFrom(start)}, nil
	}

	switch {
	case isIdentStart(r):
		return s.scanIdent(start), nil

	case isDigit(r):
		return s.scanNumber(start), nil

	case r == '"' || r == '\'':
		return s.scanString(start)
	}

	return s.scanOperator(start)
}

func (s *Scanner) scanIdent(start diag.Location) Token {
	begin := s.offset

	for {
		r, ok := s.peek()
		if !ok || !(isIdentStart(r) || isDigit(r)) {
			break
		}
		s.advance()
	}

	lit := s.src[begin:s.offset]

	typ := TokenIdent
	if kw, ok := keywords[lit]; ok {
		typ = kw
	}

	return Token{Type: typ, Literal: lit, Span: s.spanFrom(start)}
}

func (s *Scanner) scanDigits() {
	for {
		r, ok := s.peek()
		if !ok || !isDigit(r) {
			return
		}
		s.advance()
	}
}

func (s *Scanner) scanNumber(start diag.Location) Token {
	begin := s.offset
	typ := TokenInt

	s.scanDigits()

	// a dot only continues the number when a digit follows it
	if r, ok := s.peek(); ok && r == '.' {
		if next, ok := s.peekAt(1); ok && isDigit(next) {
			typ = TokenFloat
			s.advance()
			s.scanDigits()
		}
	}

	if r, ok := s.peek(); ok && (r == 'e' || r == 'E') {
		next, ok := s.peekAt(1)
		digitAt := 1
		if ok && (next == '+' || next == '-') {
			next, ok = s.peekAt(2)
			digitAt = 2
		}

		if ok && isDigit(next) {
			typ = TokenFloat
			for i := 0; i < digitAt; i++ {
				s.advance()
			}
			s.scanDigits()
		}
	}

	return Token{Type: typ, Literal: s.src[begin:s.offset], Span: s.spanFrom(start)}
}

func (s *Scanner) scanString(start diag.Location) (Token, error) {
	quote := s.advance()
	s.buf.Reset()

	for {
		escStart := s.loc()

		r, ok := s.peek()
		if !ok {
			return Token{}, diag.Errorf(diag.UnterminatedString, s.spanFrom(start), "unterminated string literal")
		}
		s.advance()

		if r == quote {
			break
		}

		if r != '\\' {
			s.buf.WriteRune(r)
			continue
		}

		esc, ok := s.peek()
		if !ok {
			return Token{}, diag.Errorf(diag.UnterminatedString, s.spanFrom(start), "unterminated string literal")
		}
		s.advance()

		switch esc {
		case '\\', '\'', '"', '{', '}':
			s.buf.WriteRune(esc)
		case 'n':
			s.buf.WriteByte('\n')
		case 't':
			s.buf.WriteByte('\t')
		case 'r':
			s.buf.WriteByte('\r')
		default:
			return Token{}, diag.Errorf(diag.UnexpectedChar, s.spanFrom(escStart), "unknown escape sequence '\\%c'", esc)
		}
	}

	return Token{Type: TokenString, Literal: s.buf.String(), Span: s.spanFrom(start)}, nil
}

var singleCharTokens = map[rune]TokenType{
	'+': TokenPlus,
	'-': TokenMinus,
	'*': TokenStar,
	'/': TokenSlash,
	'%': TokenPercent,
	'?': TokenQuestion,
	':': TokenColon,
	'(': TokenParenOpen,
	')': TokenParenClose,
	'[': TokenBracketOpen,
	']': TokenBracketClose,
	',': TokenComma,
	'.': TokenDot,
}

func (s *Scanner) scanOperator(start diag.Location) (Token, error) {
	r := s.advance()

	tok := func(typ TokenType) (Token, error) {
		return Token{Type: typ, Literal: typ.String(), Span: s.spanFrom(start)}, nil
	}

	// followedBy consumes the next rune if it is want
	followedBy := func(want rune) bool {
		if next, ok := s.peek(); ok && next == want {
			s.advance()
			return true
		}
		return false
	}

	if typ, ok := singleCharTokens[r]; ok {
		return tok(typ)
	}

	switch r {
	case '=':
		if followedBy('=') {
			return tok(TokenEq)
		}
		return Token{}, diag.Errorf(diag.UnexpectedChar, s.spanFrom(start), "unexpected '=', expressions cannot assign").WithSuggestion("==")

	case '!':
		if followedBy('=') {
			return tok(TokenNotEq)
		}
		return tok(TokenNot)

	case '<':
		if followedBy('=') {
			return tok(TokenLessEq)
		}
		return tok(TokenLess)

	case '>':
		if followedBy('=') {
			return tok(TokenGreaterEq)
		}
		return tok(TokenGreater)

	case '&':
		if followedBy('&') {
			return tok(TokenAndAnd)
		}
		return Token{}, diag.Errorf(diag.UnexpectedChar, s.spanFrom(start), "unexpected '&'").WithSuggestion("&&")

	case '|':
		if followedBy('|') {
			return tok(TokenOrOr)
		}
		return Token{}, diag.Errorf(diag.UnexpectedChar, s.spanFrom(start), "unexpected '|'").WithSuggestion("||")
	}

	return Token{}, diag.Errorf(diag.UnexpectedChar, s.spanFrom(start), "unexpected character %q", r)
}

// Tokenize scans the whole of src.
func Tokenize(src string, start diag.Location, source string) ([]Token, error) {
	s := NewScanner(src, start, source)
	tks := []Token{}

	for {
		t, err := s.Scan()
		if err != nil {
			return nil, err
		}

		tks = append(tks, t)

		if t.Type == TokenEOF {
			return tks, nil
		}
	}
}

func isWhitespace(r rune) bool {
	return r == ' ' || r == '\t' || r == '\n' || r == '\r'
}

func isIdentStart(r rune) bool {
	return (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || r == '_'
}

func isDigit(r rune) bool {
	return r >= '0' && r <= '9'
}
