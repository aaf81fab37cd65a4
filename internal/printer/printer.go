// Package printer writes an indented outline of a widget tree.
package printer

import (
	"io"
	"strings"

	"github.com/pipe01/trellis/internal/eval"
	"github.com/pipe01/trellis/internal/expr"
	"github.com/pipe01/trellis/internal/parser/ast"
	"github.com/pipe01/trellis/internal/value"
)

type Options struct {
	// Model, when set, is used to print every attribute with its resolved
	// value instead of its source form.
	Model eval.Model

	// OnError is called for each attribute that fails to evaluate. The
	// attribute is printed as an empty string.
	OnError func(n *ast.WidgetNode, attr *ast.Attribute, err error)

	// Indent is written once per nesting level. Defaults to a tab.
	Indent string

	// ShowDiagnostics adds the document's diagnostics as trailing comments.
	ShowDiagnostics bool
}

// Visit prints doc to w, one widget per line.
func Visit(w io.Writer, doc *ast.Document, opts Options) error {
	if opts.Indent == "" {
		opts.Indent = "\t"
	}

	ctx := context{
		w:    newOutputWriter(w, opts.Indent),
		opts: opts,
	}

	ctx.visitDocument(doc)

	return ctx.w.Flush()
}

type context struct {
	w    *outputWriter
	opts Options
}

func (c *context) visitDocument(doc *ast.Document) {
	ast.Walk(doc.Roots, func(n *ast.WidgetNode, depth int) bool {
		c.w.indentation = depth
		c.visitNode(n)
		return true
	})

	c.w.indentation = 0

	if c.opts.ShowDiagnostics {
		for _, d := range doc.Diagnostics {
			c.w.WriteComment("%s: %s", d.Kind, d.Render())
		}
	}
}

func (c *context) visitNode(n *ast.WidgetNode) {
	c.w.WriteNodeStart(n.Name)

	for i := range n.Attributes {
		attr := &n.Attributes[i]

		if c.opts.Model != nil {
			c.visitResolved(n, attr)
		} else {
			c.visitSource(attr)
		}
	}

	c.w.WriteNodeEnd()
}

func (c *context) visitResolved(n *ast.WidgetNode, attr *ast.Attribute) {
	v, err := eval.Attribute(attr.Value, c.opts.Model)
	if err != nil {
		if c.opts.OnError != nil {
			c.opts.OnError(n, attr, err)
		}
		v = value.String("")
	}

	if s, ok := v.(value.String); ok {
		c.w.WriteAttributeQuoted(attr.Name, string(s))
	} else {
		c.w.WriteAttribute(attr.Name, value.Display(v))
	}
}

func (c *context) visitSource(attr *ast.Attribute) {
	switch v := attr.Value.(type) {
	case ast.Static:
		c.w.WriteAttributeQuoted(attr.Name, escapeBraces(v.Text))

	case ast.Binding:
		c.w.WriteAttribute(attr.Name, "{"+expr.String(v.Expr)+"}")

	case ast.Interpolated:
		var b strings.Builder

		for _, p := range v.Parts {
			switch p := p.(type) {
			case ast.LiteralPart:
				b.WriteString(escapeBraces(p.Text))
			case ast.ExprPart:
				b.WriteString("{" + expr.String(p.Expr) + "}")
			}
		}

		c.w.WriteAttributeQuoted(attr.Name, b.String())
	}
}

var braceEscaper = strings.NewReplacer("{", `\{`, "}", `\}`)

func escapeBraces(s string) string {
	return braceEscaper.Replace(s)
}
