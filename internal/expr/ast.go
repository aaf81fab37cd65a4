package expr

import (
	"github.com/pipe01/trellis/internal/diag"
	"github.com/pipe01/trellis/internal/value"
)

type Pos diag.Span

func (p Pos) Span() diag.Span {
	return diag.Span(p)
}

// Node is an expression tree node. Nodes are never modified after parsing.
type Node interface {
	Span() diag.Span
	node()
}

type Literal struct {
	Pos
	Value value.Value
}

// FieldAccess reads a dotted path. A nil Base reads from the model root.
type FieldAccess struct {
	Pos
	Base     Node
	Segments []string
}

type Index struct {
	Pos
	Base  Node
	Index Node
}

type MethodCall struct {
	Pos
	Base   Node
	Method string
	Args   []Node
}

type UnaryOp int

const (
	OpNot UnaryOp = iota
	OpNeg
)

func (op UnaryOp) String() string {
	if op == OpNot {
		return "!"
	}
	return "-"
}

type Unary struct {
	Pos
	Op      UnaryOp
	Operand Node
}

type BinaryOp int

const (
	OpAdd BinaryOp = iota
	OpSub
	OpMul
	OpDiv
	OpRem

	OpEq
	OpNotEq
	OpLess
	OpLessEq
	OpGreater
	OpGreaterEq

	OpAnd
	OpOr
)

var binaryOps = map[TokenType]BinaryOp{
	TokenPlus:      OpAdd,
	TokenMinus:     OpSub,
	TokenStar:      OpMul,
	TokenSlash:     OpDiv,
	TokenPercent:   OpRem,
	TokenEq:        OpEq,
	TokenNotEq:     OpNotEq,
	TokenLess:      OpLess,
	TokenLessEq:    OpLessEq,
	TokenGreater:   OpGreater,
	TokenGreaterEq: OpGreaterEq,
	TokenAndAnd:    OpAnd,
	TokenOrOr:      OpOr,
}

var binaryOpStrings = [...]string{
	OpAdd:       "+",
	OpSub:       "-",
	OpMul:       "*",
	OpDiv:       "/",
	OpRem:       "%",
	OpEq:        "==",
	OpNotEq:     "!=",
	OpLess:      "<",
	OpLessEq:    "<=",
	OpGreater:   ">",
	OpGreaterEq: ">=",
	OpAnd:       "&&",
	OpOr:        "||",
}

func (op BinaryOp) String() string {
	if op < 0 || int(op) >= len(binaryOpStrings) {
		return "<unknown>"
	}
	return binaryOpStrings[op]
}

type Binary struct {
	Pos
	Op          BinaryOp
	Left, Right Node
}

type Conditional struct {
	Pos
	Cond, Then, Else Node
}

func (*Literal) node()     {}
func (*FieldAccess) node() {}
func (*Index) node()       {}
func (*MethodCall) node()  {}
func (*Unary) node()       {}
func (*Binary) node()      {}
func (*Conditional) node() {}
