package parser

import (
	"strings"
	"unicode/utf8"

	"github.com/pipe01/trellis/internal/diag"
	"github.com/pipe01/trellis/internal/expr"
	. "github.com/pipe01/trellis/internal/parser/ast"
)

type classifier struct {
	raw    string
	source string

	offset    int
	line, col int

	lit   strings.Builder
	parts []Part
}

// ClassifyAttribute decides whether a raw attribute value is static text, a
// single binding or an interpolation, parsing every embedded binding. start is
// the location of the first character of raw in the markup source.
func ClassifyAttribute(raw string, start diag.Location, source string) (AttributeValue, *diag.Error) {
	c := classifier{
		raw:    raw,
		source: source,
		line:   start.Line,
		col:    start.Column,
	}

	bindings := 0
	onlySpaceOutside := true

	for c.offset < len(c.raw) {
		r := c.peek(0)

		switch {
		case r == '\\' && (c.peek(1) == '{' || c.peek(1) == '}'):
			c.advance()
			c.lit.WriteRune(c.advance())
			onlySpaceOutside = false

		case r == '{':
			n, err := c.binding()
			if err != nil {
				return nil, err
			}

			c.flushLiteral()
			c.parts = append(c.parts, ExprPart{Expr: n})
			bindings++

		default:
			c.lit.WriteRune(c.advance())
			if !isSpace(r) {
				onlySpaceOutside = false
			}
		}
	}

	if bindings == 0 {
		return Static{Text: c.lit.String()}, nil
	}

	if bindings == 1 && onlySpaceOutside {
		for _, p := range c.parts {
			if e, ok := p.(ExprPart); ok {
				return Binding{Expr: e.Expr}, nil
			}
		}
	}

	c.flushLiteral()

	return Interpolated{Parts: c.parts}, nil
}

func (c *classifier) loc() diag.Location {
	return diag.Location{Line: c.line, Column: c.col}
}

// peek returns the rune n runes ahead, or utf8.RuneError past the end.
func (c *classifier) peek(n int) rune {
	off := c.offset
	for ; n > 0 && off < len(c.raw); n-- {
		_, size := utf8.DecodeRuneInString(c.raw[off:])
		off += size
	}
	if off >= len(c.raw) {
		return utf8.RuneError
	}

	r, _ := utf8.DecodeRuneInString(c.raw[off:])
	return r
}

func (c *classifier) advance() rune {
	r, size := utf8.DecodeRuneInString(c.raw[c.offset:])
	c.offset += size

	if r == '\n' {
		c.line++
		c.col = 0
	} else if r != '\r' {
		c.col++
	}

	return r
}

func (c *classifier) flushLiteral() {
	if c.lit.Len() > 0 {
		c.parts = append(c.parts, LiteralPart{Text: c.lit.String()})
		c.lit.Reset()
	}
}

// binding consumes a "{...}" group starting at the current '{' and parses its
// contents. Braces inside quoted strings do not count towards nesting.
func (c *classifier) binding() (expr.Node, *diag.Error) {
	open := c.loc()
	c.advance()

	innerStart := c.loc()
	innerOffset := c.offset

	depth := 1
	var quote rune

	for c.offset < len(c.raw) {
		r := c.advance()

		if quote != 0 {
			switch r {
			case '\\':
				if c.offset < len(c.raw) {
					c.advance()
				}
			case quote:
				quote = 0
			}
			continue
		}

		switch r {
		case '\'', '"':
			quote = r

		case '{':
			depth++

		case '}':
			depth--
			if depth == 0 {
				inner := c.raw[innerOffset : c.offset-1]

				n, err := expr.Parse(inner, innerStart, c.source)
				if err != nil {
					return nil, asDiag(err)
				}
				return n, nil
			}
		}
	}

	span := diag.Span{
		Source: c.source,
		Start:  open,
		End:    diag.Location{Line: open.Line, Column: open.Column + 1},
	}

	return nil, diag.Errorf(diag.UnterminatedBinding, span, "unterminated binding, expected '}'")
}

func asDiag(err error) *diag.Error {
	if derr, ok := err.(*diag.Error); ok {
		return derr
	}

	return diag.Errorf(diag.UnexpectedToken, diag.Span{}, "%s", err)
}

func isSpace(r rune) bool {
	return r == ' ' || r == '\t' || r == '\n' || r == '\r'
}
