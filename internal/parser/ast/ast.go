package ast

import (
	"github.com/pipe01/trellis/internal/diag"
	"github.com/pipe01/trellis/internal/expr"
	"golang.org/x/exp/slices"
)

type Pos diag.Span

func (p Pos) Span() diag.Span {
	return diag.Span(p)
}

// Document is the result of parsing one markup source.
type Document struct {
	Source string
	Roots  []*WidgetNode

	// Diagnostics holds the non-fatal errors found while parsing, sorted by
	// position.
	Diagnostics []*diag.Error
}

type WidgetNode struct {
	Pos

	Kind WidgetKind
	Name string

	Attributes []Attribute
	Children   []*WidgetNode
}

// Attr returns the attribute called name, if present.
func (n *WidgetNode) Attr(name string) (*Attribute, bool) {
	idx := slices.IndexFunc(n.Attributes, func(a Attribute) bool {
		return a.Name == name
	})
	if idx < 0 {
		return nil, false
	}

	return &n.Attributes[idx], true
}

type Attribute struct {
	Pos

	Name  string
	Value AttributeValue
}

// AttributeValue is one of Static, Binding or Interpolated.
type AttributeValue interface {
	attributeValue()
}

type Static struct {
	Text string
}

type Binding struct {
	Expr expr.Node
}

type Interpolated struct {
	Parts []Part
}

func (Static) attributeValue()       {}
func (Binding) attributeValue()      {}
func (Interpolated) attributeValue() {}

// Part is one of LiteralPart or ExprPart.
type Part interface {
	part()
}

type LiteralPart struct {
	Text string
}

type ExprPart struct {
	Expr expr.Node
}

func (LiteralPart) part() {}
func (ExprPart) part()    {}

// Walk calls fn for every node in the forest, parents before children. It stops
// descending into a node when fn returns false.
func Walk(roots []*WidgetNode, fn func(n *WidgetNode, depth int) bool) {
	type item struct {
		node  *WidgetNode
		depth int
	}

	stack := make([]item, 0, len(roots))
	for i := len(roots) - 1; i >= 0; i-- {
		stack = append(stack, item{roots[i], 0})
	}

	for len(stack) > 0 {
		it := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if !fn(it.node, it.depth) {
			continue
		}

		for i := len(it.node.Children) - 1; i >= 0; i-- {
			stack = append(stack, item{it.node.Children[i], it.depth + 1})
		}
	}
}
