package expr

import (
	"strconv"

	"github.com/pipe01/trellis/internal/diag"
	"github.com/pipe01/trellis/internal/value"
)

// MaxDepth is how deeply expressions may nest before parsing gives up.
const MaxDepth = 200

type bailout struct {
	err error
}

type parser struct {
	scanner *Scanner
	tok     Token
	depth   int
}

// Parse parses the text of one binding (without its braces). start is the
// location of the first character of src in the markup source. The first
// error aborts parsing and is returned as a *diag.Error.
func Parse(src string, start diag.Location, source string) (n Node, err error) {
	p := parser{
		scanner: NewScanner(src, start, source),
	}

	defer func() {
		if r := recover(); r != nil {
			b, ok := r.(bailout)
			if !ok {
				panic(r)
			}

			n, err = nil, b.err
		}
	}()

	p.next()

	if p.tok.Type == TokenEOF {
		p.fail(diag.ExpectedExpression, p.tok.Span, "expected expression, binding is empty")
	}

	n = p.expr()

	if p.tok.Type != TokenEOF {
		p.fail(diag.UnexpectedToken, p.tok.Span, "unexpected %s after expression", p.tok.describe())
	}

	return n, nil
}

func (p *parser) next() {
	tok, err := p.scanner.Scan()
	if err != nil {
		panic(bailout{err})
	}

	p.tok = tok
}

func (p *parser) fail(kind diag.Kind, span diag.Span, format string, a ...any) {
	panic(bailout{diag.Errorf(kind, span, format, a...)})
}

func (p *parser) enter() {
	p.depth++
	if p.depth > MaxDepth {
		p.fail(diag.UnexpectedToken, p.tok.Span, "expression is nested too deeply")
	}
}

func (p *parser) leave() {
	p.depth--
}

// closeParen consumes the ')' matching the '(' at open.
func (p *parser) closeParen(open diag.Span) diag.Span {
	switch p.tok.Type {
	case TokenParenClose:
		span := p.tok.Span
		p.next()
		return span

	case TokenEOF:
		p.fail(diag.UnclosedParen, open, "unclosed '('")
	}

	p.fail(diag.UnexpectedToken, p.tok.Span, "expected ')', found %s", p.tok.describe())
	return diag.Span{}
}

func (p *parser) expr() Node {
	p.enter()
	defer p.leave()

	cond := p.binaryExpr(0)

	if p.tok.Type != TokenQuestion {
		return cond
	}
	p.next()

	then := p.expr()

	if p.tok.Type != TokenColon {
		p.fail(diag.UnexpectedToken, p.tok.Span, "expected ':' in conditional expression, found %s", p.tok.describe())
	}
	p.next()

	els := p.expr()

	return &Conditional{
		Pos:  Pos(cond.Span().Join(els.Span())),
		Cond: cond,
		Then: then,
		Else: els,
	}
}

// binaryExpr parses a chain of binary operators binding tighter than prec.
func (p *parser) binaryExpr(prec int) Node {
	x := p.unaryExpr()

	for {
		oprec := p.tok.Type.Precedence()
		if oprec <= prec {
			return x
		}

		op := binaryOps[p.tok.Type]
		p.next()

		y := p.binaryExpr(oprec)

		x = &Binary{
			Pos:   Pos(x.Span().Join(y.Span())),
			Op:    op,
			Left:  x,
			Right: y,
		}
	}
}

func (p *parser) unaryExpr() Node {
	var op UnaryOp

	switch p.tok.Type {
	case TokenNot:
		op = OpNot
	case TokenMinus:
		op = OpNeg
	default:
		return p.postfixExpr()
	}

	p.enter()
	defer p.leave()

	start := p.tok.Span
	p.next()

	x := p.unaryExpr()
	span := start.Join(x.Span())

	if lit, ok := x.(*Literal); ok && op == OpNeg {
		switch v := lit.Value.(type) {
		case value.Int:
			return &Literal{Pos: Pos(span), Value: -v}
		case value.Float:
			return &Literal{Pos: Pos(span), Value: -v}
		}
	}

	return &Unary{
		Pos:     Pos(span),
		Op:      op,
		Operand: x,
	}
}

func (p *parser) postfixExpr() Node {
	x := p.operand()

	for {
		switch p.tok.Type {
		case TokenDot:
			x = p.selector(x)

		case TokenBracketOpen:
			p.next()

			idx := p.expr()

			if p.tok.Type != TokenBracketClose {
				p.fail(diag.UnexpectedToken, p.tok.Span, "expected ']', found %s", p.tok.describe())
			}
			end := p.tok.Span
			p.next()

			x = &Index{
				Pos:   Pos(x.Span().Join(end)),
				Base:  x,
				Index: idx,
			}

		default:
			return x
		}
	}
}

// selector parses ".name" or ".name(args...)" applied to x.
func (p *parser) selector(x Node) Node {
	p.next() // .

	if p.tok.Type != TokenIdent {
		p.fail(diag.UnexpectedToken, p.tok.Span, "expected a field or method name after '.', found %s", p.tok.describe())
	}
	name := p.tok
	p.next()

	if p.tok.Type == TokenParenOpen {
		open := p.tok.Span
		p.next()

		var args []Node
		for p.tok.Type != TokenParenClose {
			if p.tok.Type == TokenEOF {
				p.fail(diag.UnclosedParen, open, "unclosed '(' in call to %s", name.Literal)
			}

			args = append(args, p.expr())

			if p.tok.Type != TokenComma {
				break
			}
			p.next()
		}

		end := p.closeParen(open)

		return &MethodCall{
			Pos:    Pos(x.Span().Join(end)),
			Base:   x,
			Method: name.Literal,
			Args:   args,
		}
	}

	if fa, ok := x.(*FieldAccess); ok {
		segments := make([]string, len(fa.Segments), len(fa.Segments)+1)
		copy(segments, fa.Segments)

		return &FieldAccess{
			Pos:      Pos(fa.Span().Join(name.Span)),
			Base:     fa.Base,
			Segments: append(segments, name.Literal),
		}
	}

	return &FieldAccess{
		Pos:      Pos(x.Span().Join(name.Span)),
		Base:     x,
		Segments: []string{name.Literal},
	}
}

func (p *parser) operand() Node {
	tok := p.tok

	switch tok.Type {
	case TokenIdent:
		p.next()
		return &FieldAccess{
			Pos:      Pos(tok.Span),
			Segments: []string{tok.Literal},
		}

	case TokenInt:
		i, err := strconv.ParseInt(tok.Literal, 10, 64)
		if err != nil {
			p.fail(diag.UnexpectedToken, tok.Span, "integer literal %s is out of range", tok.Literal)
		}
		p.next()
		return &Literal{Pos: Pos(tok.Span), Value: value.Int(i)}

	case TokenFloat:
		f, err := strconv.ParseFloat(tok.Literal, 64)
		if err != nil {
			p.fail(diag.UnexpectedToken, tok.Span, "float literal %s is out of range", tok.Literal)
		}
		p.next()
		return &Literal{Pos: Pos(tok.Span), Value: value.Float(f)}

	case TokenString:
		p.next()
		return &Literal{Pos: Pos(tok.Span), Value: value.String(tok.Literal)}

	case TokenTrue, TokenFalse:
		p.next()
		return &Literal{Pos: Pos(tok.Span), Value: value.Bool(tok.Type == TokenTrue)}

	case TokenNull:
		p.next()
		return &Literal{Pos: Pos(tok.Span), Value: value.None{}}

	case TokenParenOpen:
		p.next()

		x := p.expr()
		p.closeParen(tok.Span)

		return x
	}

	p.fail(diag.ExpectedExpression, tok.Span, "expected expression, found %s", tok.describe())
	return nil
}
