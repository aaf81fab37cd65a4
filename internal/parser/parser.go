package parser

import (
	"errors"
	"strings"
	"unicode/utf8"

	"github.com/pipe01/trellis/internal/diag"
	"github.com/pipe01/trellis/internal/lexer"
	. "github.com/pipe01/trellis/internal/parser/ast"
)

var ErrLastTokenEOF = errors.New("last token must be EOF")

// TextAttribute is the attribute that holds the contents of a text run turned
// into a text widget.
const TextAttribute = "value"

type parser struct {
	tokens []lexer.Token
	index  int
	source string

	diags []*diag.Error
}

// Parse builds the widget forest of a markup document. Problems confined to a
// single attribute or text run are collected in Document.Diagnostics and
// parsing continues; a broken element structure or a lexer error is returned
// as a *diag.Error and no document is produced.
func Parse(src []byte, source string) (*Document, error) {
	tokens, err := lexer.New(src, source).Collect()
	if err != nil {
		return nil, err
	}

	return ParseTokens(tokens, source)
}

// ParseTokens is like Parse but works on an already lexed token stream.
func ParseTokens(tokens []lexer.Token, source string) (*Document, error) {
	if len(tokens) == 0 || tokens[len(tokens)-1].Type != lexer.TokenEOF {
		return nil, ErrLastTokenEOF
	}

	p := parser{
		tokens: tokens,
		source: source,
	}

	roots, ferr := p.parseDocument()
	if ferr != nil {
		return nil, ferr
	}

	diag.Sort(p.diags)

	return &Document{
		Source:      source,
		Roots:       roots,
		Diagnostics: p.diags,
	}, nil
}

func (p *parser) take() (tk *lexer.Token) {
	if p.index >= len(p.tokens) {
		return &p.tokens[len(p.tokens)-1] // Last token should be EOF
	}

	tk = &p.tokens[p.index]
	p.index++

	return tk
}

func (p *parser) peek() *lexer.Token {
	if p.index >= len(p.tokens) {
		return &p.tokens[len(p.tokens)-1]
	}

	return &p.tokens[p.index]
}

func (p *parser) mustTake(typ lexer.TokenType) (tk *lexer.Token, found bool) {
	tk = p.take()
	if tk.Type != typ {
		p.addError(unexpectedToken(tk, typ.String()))
		return nil, false
	}

	return tk, true
}

func (p *parser) addError(err *diag.Error) {
	p.diags = append(p.diags, err)
}

func unexpectedToken(got *lexer.Token, expected string) *diag.Error {
	return diag.Errorf(diag.UnexpectedToken, got.Span, "expected %s, found %q (%s)", expected, got.Contents, got.Type)
}

// parseDocument walks the token stream keeping the chain of open elements on
// an explicit stack, so deeply nested markup does not grow the call stack.
func (p *parser) parseDocument() ([]*WidgetNode, *diag.Error) {
	var roots []*WidgetNode
	var stack []*WidgetNode

	appendNode := func(n *WidgetNode) {
		if len(stack) == 0 {
			roots = append(roots, n)
		} else {
			parent := stack[len(stack)-1]
			parent.Children = append(parent.Children, n)
		}
	}

	for {
		tk := p.take()

		switch tk.Type {
		case lexer.TokenEOF:
			if len(stack) > 0 {
				open := stack[len(stack)-1]
				return nil, diag.Errorf(diag.UnclosedElement, open.Span(), "element <%s> is never closed", open.Name)
			}
			return roots, nil

		case lexer.TokenText:
			if n := p.parseText(tk, len(stack) == 0); n != nil {
				appendNode(n)
			}

		case lexer.TokenTagOpen:
			n, selfClosed := p.parseTag(tk)
			appendNode(n)

			if !selfClosed {
				stack = append(stack, n)
			}

		case lexer.TokenTagClose:
			if len(stack) == 0 {
				return nil, diag.Errorf(diag.MismatchedClosingTag, tk.Span, "found closing tag </%s> without a matching opening tag", tk.Contents)
			}

			open := stack[len(stack)-1]
			if open.Name != tk.Contents {
				return nil, diag.Errorf(diag.MismatchedClosingTag, tk.Span, "closing tag </%s> does not match <%s> opened at %s", tk.Contents, open.Name, open.Span().Start)
			}

			open.Pos = Pos(open.Span().Join(tk.Span))
			stack = stack[:len(stack)-1]

		default:
			return nil, unexpectedToken(tk, "a tag or text")
		}
	}
}

// parseTag parses the attributes of the tag opened by open, up to and
// including the closing '>' or '/>'.
func (p *parser) parseTag(open *lexer.Token) (n *WidgetNode, selfClosed bool) {
	n = &WidgetNode{
		Pos:  Pos(open.Span),
		Kind: LookupKind(open.Contents),
		Name: open.Contents,
	}

	seen := map[string]diag.Span{}

	for {
		tk := p.take()

		switch tk.Type {
		case lexer.TokenTagEnd:
			n.Pos = Pos(n.Span().Join(tk.Span))
			return n, false

		case lexer.TokenSelfClose:
			n.Pos = Pos(n.Span().Join(tk.Span))
			return n, true

		case lexer.TokenAttributeName:
			attr, ok := p.parseAttribute(tk)
			if !ok {
				continue
			}

			if first, dup := seen[attr.Name]; dup {
				p.addError(diag.Errorf(diag.DuplicateAttribute, tk.Span, "attribute %q is already set at %s", attr.Name, first.Start))
				continue
			}
			seen[attr.Name] = tk.Span

			if attr.Value != nil {
				n.Attributes = append(n.Attributes, *attr)
			}

		default:
			p.addError(unexpectedToken(tk, "an attribute or the end of the tag"))
			if tk.Type == lexer.TokenEOF {
				return n, true
			}
		}
	}
}

// parseAttribute parses `name="value"`. A value that fails to classify is
// reported and left nil, so the attribute is dropped but still counts as set.
func (p *parser) parseAttribute(tkName *lexer.Token) (*Attribute, bool) {
	if _, ok := p.mustTake(lexer.TokenEquals); !ok {
		return nil, false
	}

	tkValue, ok := p.mustTake(lexer.TokenAttributeValue)
	if !ok {
		return nil, false
	}

	end := tkValue.Span.End
	end.Column++ // closing quote

	attr := &Attribute{
		Pos:  Pos(diag.Span{Source: p.source, Start: tkName.Span.Start, End: end}),
		Name: tkName.Contents,
	}

	val, err := ClassifyAttribute(tkValue.Contents, tkValue.Span.Start, p.source)
	if err != nil {
		p.addError(err)
		return attr, true
	}

	attr.Value = val
	return attr, true
}

// parseText turns a non-blank text run into a text widget whose value is the
// classified, trimmed text.
func (p *parser) parseText(tk *lexer.Token, topLevel bool) *WidgetNode {
	trimmed := strings.TrimSpace(tk.Contents)
	if trimmed == "" {
		return nil
	}

	leading := tk.Contents[:strings.Index(tk.Contents, trimmed)]
	start := advance(tk.Span.Start, leading)
	span := diag.Span{Source: p.source, Start: start, End: advance(start, trimmed)}

	if topLevel {
		p.addError(diag.Errorf(diag.UnexpectedToken, span, "text outside of any element"))
		return nil
	}

	n := &WidgetNode{
		Pos:  Pos(span),
		Kind: KindText,
		Name: KindText.String(),
	}

	val, err := ClassifyAttribute(trimmed, start, p.source)
	if err != nil {
		p.addError(err)
		return n
	}

	n.Attributes = []Attribute{{
		Pos:   Pos(span),
		Name:  TextAttribute,
		Value: val,
	}}

	return n
}

// advance returns the location reached after reading s starting at loc.
func advance(loc diag.Location, s string) diag.Location {
	for len(s) > 0 {
		r, size := utf8.DecodeRuneInString(s)
		s = s[size:]

		switch r {
		case '\n':
			loc.Line++
			loc.Column = 0
		case '\r':
		default:
			loc.Column++
		}
	}

	return loc
}
