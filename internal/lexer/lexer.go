package lexer

import (
	"fmt"
	"unicode"
	"unicode/utf8"

	"github.com/pipe01/trellis/internal/diag"
)

const debugPrint = false

type stateFunc func() stateFunc

type state struct {
	str      []rune
	strStart diag.Location

	byteIndex int
	line, col int
}

// Lexer splits markup into tokens. Tokens are produced on demand by Next; to
// lex the same source again, create a new Lexer.
type Lexer struct {
	source string
	file   []byte

	next    stateFunc
	pending []Token

	state

	// start of the tag currently being lexed, used for error positions
	tagStart diag.Location

	err *diag.Error
}

func New(file []byte, source string) *Lexer {
	l := &Lexer{
		source: source,
		file:   file,
	}
	l.next = l.lexText

	return l
}

// Next returns the next token. Once the end of input is reached every call
// returns an EOF token. Lexer errors are fatal: after one is returned, every
// following call returns it again.
func (l *Lexer) Next() (*Token, error) {
	for len(l.pending) == 0 {
		if l.err != nil {
			return nil, l.err
		}

		if l.next == nil {
			return &Token{
				Type: TokenEOF,
				Span: l.spanFrom(l.loc()),
			}, nil
		}

		l.next = l.next()
	}

	if l.err != nil {
		return nil, l.err
	}

	t := l.pending[0]
	l.pending = l.pending[1:]

	return &t, nil
}

// Collect lexes the whole input. The last token is always EOF.
func (l *Lexer) Collect() ([]Token, error) {
	tks := []Token{}

	for {
		t, err := l.Next()
		if err != nil {
			return nil, err
		}

		tks = append(tks, *t)

		if t.Type == TokenEOF {
			return tks, nil
		}
	}
}

func (l *Lexer) loc() diag.Location {
	return diag.Location{
		Line:   l.line,
		Column: l.col,
	}
}

func (l *Lexer) spanFrom(start diag.Location) diag.Span {
	return diag.Span{
		Source: l.source,
		Start:  start,
		End:    l.loc(),
	}
}

func (l *Lexer) take() (r rune, eof bool) {
	if l.byteIndex < len(l.file) && l.file[l.byteIndex] == '\r' {
		l.byteIndex++
	}

	if l.byteIndex >= len(l.file) {
		return 0, true
	}

	r, size := utf8.DecodeRune(l.file[l.byteIndex:])

	l.str = append(l.str, r)

	l.col++
	l.byteIndex += size

	if r == '\n' {
		l.line++
		l.col = 0
	}

	if debugPrint {
		fmt.Printf("take %q\n", r)
	}

	return r, false
}

func (l *Lexer) peek() (r rune, eof bool) {
	idx := l.byteIndex
	if idx < len(l.file) && l.file[idx] == '\r' {
		idx++
	}

	if idx >= len(l.file) {
		return 0, true
	}

	r, _ = utf8.DecodeRune(l.file[idx:])
	return
}

func (l *Lexer) hasPrefix(s string) bool {
	return len(l.file)-l.byteIndex >= len(s) && string(l.file[l.byteIndex:l.byteIndex+len(s)]) == s
}

func (l *Lexer) takeWhitespace() {
	for {
		r, eof := l.peek()
		if eof || !unicode.IsSpace(r) {
			return
		}

		l.take()
	}
}

func (l *Lexer) takeName() {
	for {
		r, eof := l.peek()
		if eof || !isNameChar(r) {
			return
		}

		l.take()
	}
}

func (l *Lexer) emit(typ TokenType) {
	l.emitContents(typ, string(l.str))
}

func (l *Lexer) emitContents(typ TokenType, contents string) {
	l.pending = append(l.pending, Token{
		Type:     typ,
		Span:     l.spanFrom(l.strStart),
		Contents: contents,
	})

	l.discard()
}

func (l *Lexer) discard() {
	l.strStart = l.loc()
	l.str = l.str[:0]
}

func (l *Lexer) isEmpty() bool {
	return len(l.str) == 0
}

func (l *Lexer) fail(kind diag.Kind, span diag.Span, format string, a ...any) stateFunc {
	l.err = diag.Errorf(kind, span, format, a...)
	return nil
}

func (l *Lexer) failUnexpected(expected string) stateFunc {
	start := l.loc()

	r, eof := l.peek()
	if eof {
		return l.fail(diag.UnterminatedTag, l.spanFrom(l.tagStart), "unterminated tag")
	}

	l.take()

	return l.fail(diag.UnexpectedChar, l.spanFrom(start), "expected %s, found %q", expected, r)
}

func (l *Lexer) lexText() stateFunc {
	for {
		r, eof := l.peek()
		if eof {
			if !l.isEmpty() {
				l.emit(TokenText)
			}
			return nil
		}

		if r == '<' {
			if !l.isEmpty() {
				l.emit(TokenText)
			}

			l.tagStart = l.loc()

			switch {
			case l.hasPrefix("<!--"):
				return l.lexSkipUntil("-->", "comment")

			case l.hasPrefix("<?"):
				return l.lexSkipUntil("?>", "processing instruction")

			case l.hasPrefix("</"):
				return l.lexCloseTag
			}

			return l.lexOpenTag
		}

		l.take()
	}
}

func (l *Lexer) lexSkipUntil(end, what string) stateFunc {
	return func() stateFunc {
		for !l.hasPrefix(end) {
			if _, eof := l.take(); eof {
				return l.fail(diag.UnterminatedTag, l.spanFrom(l.tagStart), "unterminated %s", what)
			}
		}

		for range end {
			l.take()
		}
		l.discard()

		return l.lexText
	}
}

func (l *Lexer) lexOpenTag() stateFunc {
	l.take() // <

	if r, eof := l.peek(); eof || !isNameStart(r) {
		return l.failUnexpected("a tag name")
	}

	l.takeName()
	l.strStart = l.tagStart
	l.emitContents(TokenTagOpen, string(l.str[1:]))

	return l.lexInsideTag
}

func (l *Lexer) lexCloseTag() stateFunc {
	l.take() // <
	l.take() // /
	l.discard()

	if r, eof := l.peek(); eof || !isNameStart(r) {
		return l.failUnexpected("a tag name")
	}

	l.takeName()
	name := string(l.str)

	l.takeWhitespace()

	if r, eof := l.peek(); eof || r != '>' {
		return l.failUnexpected("'>'")
	}
	l.take()

	l.strStart = l.tagStart
	l.emitContents(TokenTagClose, name)

	return l.lexText
}

func (l *Lexer) lexInsideTag() stateFunc {
	l.takeWhitespace()
	l.discard()

	r, eof := l.peek()
	if eof {
		return l.fail(diag.UnterminatedTag, l.spanFrom(l.tagStart), "unterminated tag")
	}

	switch {
	case r == '>':
		l.take()
		l.emit(TokenTagEnd)
		return l.lexText

	case r == '/':
		l.take()

		if r, eof := l.peek(); eof || r != '>' {
			return l.failUnexpected("'>'")
		}
		l.take()

		l.emit(TokenSelfClose)
		return l.lexText

	case isNameStart(r):
		return l.lexAttribute
	}

	return l.failUnexpected("an attribute name, '>' or '/>'")
}

func (l *Lexer) lexAttribute() stateFunc {
	l.takeName()
	l.emit(TokenAttributeName)

	l.takeWhitespace()
	l.discard()

	if r, eof := l.peek(); eof || r != '=' {
		return l.failUnexpected("'=' after attribute name")
	}
	l.take()
	l.emit(TokenEquals)

	l.takeWhitespace()
	l.discard()

	quote, eof := l.peek()
	if eof || (quote != '"' && quote != '\'') {
		return l.failUnexpected("a quoted attribute value")
	}

	quoteStart := l.loc()
	l.take()
	l.discard()

	for {
		r, eof := l.peek()
		if eof {
			return l.fail(diag.UnterminatedAttribute, l.spanFrom(quoteStart), "unterminated attribute value")
		}
		if r == quote {
			break
		}

		l.take()
	}

	l.emit(TokenAttributeValue)

	l.take() // closing quote
	l.discard()

	return l.lexInsideTag
}

func isNameStart(r rune) bool {
	return unicode.IsLetter(r) || r == '_'
}

func isNameChar(r rune) bool {
	return isNameStart(r) || unicode.IsDigit(r) || r == '-' || r == '.' || r == ':'
}
