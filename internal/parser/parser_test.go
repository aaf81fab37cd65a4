package parser

import (
	"errors"
	"reflect"
	"strings"
	"testing"

	"github.com/pipe01/trellis/internal/diag"
	"github.com/pipe01/trellis/internal/expr"
	"github.com/pipe01/trellis/internal/lexer"
	. "github.com/pipe01/trellis/internal/parser/ast"
)

type TestDocument struct {
	*Document
	T *testing.T
}

func (t *TestDocument) OnlyNode() TestNode {
	if len(t.Roots) != 1 {
		t.T.Fatalf("expected 1 node, got %d", len(t.Roots))
	}

	return TestNode{
		WidgetNode: t.Roots[0],
		T:          t.T,
	}
}

func (t *TestDocument) NodeAt(idx int) TestNode {
	if len(t.Roots) <= idx {
		t.T.Fatalf("expected at least %d nodes, got %d", idx+1, len(t.Roots))
	}

	return TestNode{
		WidgetNode: t.Roots[idx],
		T:          t.T,
	}
}

func (t *TestDocument) ExpectDiagnostics(kinds ...diag.Kind) {
	if len(t.Document.Diagnostics) != len(kinds) {
		t.T.Fatalf("expected %d diagnostics, got %d: %v", len(kinds), len(t.Document.Diagnostics), t.Document.Diagnostics)
	}

	for i, k := range kinds {
		assert(t.T, k, t.Document.Diagnostics[i].Kind, "diagnostic kind")
	}
}

type TestNode struct {
	*WidgetNode
	T *testing.T
}

func (t TestNode) Child(idx int) TestNode {
	if len(t.Children) <= idx {
		t.T.Fatalf("<%s>: expected at least %d children, got %d", t.Name, idx+1, len(t.Children))
	}

	return TestNode{
		WidgetNode: t.Children[idx],
		T:          t.T,
	}
}

func (t TestNode) Static(name, expected string) {
	attr, ok := t.Attr(name)
	if !ok {
		t.T.Fatalf("<%s>: missing attribute %q", t.Name, name)
	}

	v, ok := attr.Value.(Static)
	if !ok {
		t.T.Fatalf("<%s>: expected %q to be static, got %T", t.Name, name, attr.Value)
	}

	assert(t.T, expected, v.Text, "static "+name)
}

func (t TestNode) Binding(name, expected string) {
	attr, ok := t.Attr(name)
	if !ok {
		t.T.Fatalf("<%s>: missing attribute %q", t.Name, name)
	}

	v, ok := attr.Value.(Binding)
	if !ok {
		t.T.Fatalf("<%s>: expected %q to be a binding, got %T", t.Name, name, attr.Value)
	}

	assert(t.T, expected, expr.String(v.Expr), "binding "+name)
}

func (t TestNode) Absent(name string) {
	if _, ok := t.Attr(name); ok {
		t.T.Fatalf("<%s>: expected no attribute %q", t.Name, name)
	}
}

func assert[T comparable](t *testing.T, expected, got T, msg string) {
	t.Helper()

	if got != expected {
		t.Fatalf("%s: expected %v, got %v", msg, expected, got)
	}
}

func TestParser(t *testing.T) {
	type testCase struct {
		name   string
		src    string
		verify func(d *TestDocument)
	}

	cases := []testCase{
		{
			name: "self closing widget",
			src:  `<text value="hello"/>`,
			verify: func(d *TestDocument) {
				n := d.OnlyNode()
				assert(d.T, KindText, n.Kind, "kind")
				assert(d.T, "text", n.Name, "name")
				assert(d.T, 0, len(n.Children), "children")
				n.Static("value", "hello")
				d.ExpectDiagnostics()
			},
		},
		{
			name: "nested widgets",
			src: `<column spacing="4">
	<text value="Hello, {name}!"/>
	<button on_press="save">Save</button>
</column>`,
			verify: func(d *TestDocument) {
				col := d.OnlyNode()
				assert(d.T, KindColumn, col.Kind, "kind")
				assert(d.T, 2, len(col.Children), "children")
				col.Static("spacing", "4")

				txt := col.Child(0)
				assert(d.T, KindText, txt.Kind, "text kind")
				if _, ok := txt.Attributes[0].Value.(Interpolated); !ok {
					d.T.Fatalf("expected interpolated value, got %T", txt.Attributes[0].Value)
				}

				btn := col.Child(1)
				assert(d.T, KindButton, btn.Kind, "button kind")
				btn.Static("on_press", "save")

				label := btn.Child(0)
				assert(d.T, KindText, label.Kind, "label kind")
				label.Static(TextAttribute, "Save")
			},
		},
		{
			name: "attribute order is kept",
			src:  `<slider min="0" max="{limit}" value="{level}"/>`,
			verify: func(d *TestDocument) {
				n := d.OnlyNode()
				assert(d.T, KindSlider, n.Kind, "kind")
				assert(d.T, 3, len(n.Attributes), "attributes")

				for i, name := range []string{"min", "max", "value"} {
					assert(d.T, name, n.Attributes[i].Name, "attribute name")
				}
				n.Binding("max", "limit")
			},
		},
		{
			name: "custom widget keeps its name",
			src:  `<my_card title="x"></my_card>`,
			verify: func(d *TestDocument) {
				n := d.OnlyNode()
				assert(d.T, KindCustom, n.Kind, "kind")
				assert(d.T, "my_card", n.Name, "name")
			},
		},
		{
			name: "multiple roots",
			src:  `<row/><space/>`,
			verify: func(d *TestDocument) {
				assert(d.T, KindRow, d.NodeAt(0).Kind, "first")
				assert(d.T, KindSpace, d.NodeAt(1).Kind, "second")
			},
		},
		{
			name: "whitespace text is dropped",
			src:  "\n<column>\n   \n\t<space/>\n</column>\n",
			verify: func(d *TestDocument) {
				col := d.OnlyNode()
				assert(d.T, 1, len(col.Children), "children")
				assert(d.T, KindSpace, col.Child(0).Kind, "child kind")
			},
		},
		{
			name: "text is trimmed and classified",
			src:  "<button>\n    Count: {count}  \n</button>",
			verify: func(d *TestDocument) {
				label := d.OnlyNode().Child(0)
				attr, _ := label.Attr(TextAttribute)

				v, ok := attr.Value.(Interpolated)
				if !ok {
					d.T.Fatalf("expected interpolation, got %T", attr.Value)
				}
				assert(d.T, 2, len(v.Parts), "parts")
				assert(d.T, "Count: ", partString(v.Parts[0]), "literal part")
				assert(d.T, diag.Location{Line: 1, Column: 4}, label.Span().Start, "label start")
				assert(d.T, diag.Location{Line: 1, Column: 18}, label.Span().End, "label end")
			},
		},
		{
			name: "comments are ignored",
			src:  `<column><!-- <text value="{broken"/> --><space/></column>`,
			verify: func(d *TestDocument) {
				assert(d.T, 1, len(d.OnlyNode().Children), "children")
				d.ExpectDiagnostics()
			},
		},
		{
			name: "malformed binding is isolated",
			src: `<column>
	<text value="{1 +}"/>
	<text value="{count}"/>
</column>`,
			verify: func(d *TestDocument) {
				col := d.OnlyNode()
				assert(d.T, 2, len(col.Children), "children")

				col.Child(0).Absent("value")
				col.Child(1).Binding("value", "count")

				d.ExpectDiagnostics(diag.ExpectedExpression)
				assert(d.T, 1, d.Document.Diagnostics[0].Span.Start.Line, "diagnostic line")
			},
		},
		{
			name: "sibling attributes survive a bad one",
			src:  `<slider min="{(0}" max="10" value="{x"/>`,
			verify: func(d *TestDocument) {
				n := d.OnlyNode()
				n.Absent("min")
				n.Static("max", "10")
				n.Absent("value")

				d.ExpectDiagnostics(diag.UnclosedParen, diag.UnterminatedBinding)
			},
		},
		{
			name: "diagnostics are sorted by position",
			src: `<column>
	<text value="{b c}"/>
</column>
<text value="{a b}"/>`,
			verify: func(d *TestDocument) {
				d.ExpectDiagnostics(diag.UnexpectedToken, diag.UnexpectedToken)
				assert(d.T, 1, d.Document.Diagnostics[0].Span.Start.Line, "first line")
				assert(d.T, 3, d.Document.Diagnostics[1].Span.Start.Line, "second line")
			},
		},
		{
			name: "duplicate attribute keeps the first",
			src:  `<text value="a" value="b"/>`,
			verify: func(d *TestDocument) {
				n := d.OnlyNode()
				assert(d.T, 1, len(n.Attributes), "attributes")
				n.Static("value", "a")

				d.ExpectDiagnostics(diag.DuplicateAttribute)
				assert(d.T, 16, d.Document.Diagnostics[0].Span.Start.Column, "duplicate column")
			},
		},
		{
			name: "duplicate of a malformed attribute",
			src:  `<text value="{" value="b"/>`,
			verify: func(d *TestDocument) {
				d.OnlyNode().Absent("value")
				d.ExpectDiagnostics(diag.UnterminatedBinding, diag.DuplicateAttribute)
			},
		},
		{
			name: "top level text",
			src:  "stray <space/>",
			verify: func(d *TestDocument) {
				assert(d.T, KindSpace, d.OnlyNode().Kind, "kind")
				d.ExpectDiagnostics(diag.UnexpectedToken)
			},
		},
		{
			name: "bad text binding keeps the text widget",
			src:  "<button>{oops</button>",
			verify: func(d *TestDocument) {
				label := d.OnlyNode().Child(0)
				assert(d.T, KindText, label.Kind, "kind")
				label.Absent(TextAttribute)
				d.ExpectDiagnostics(diag.UnterminatedBinding)
			},
		},
	}

	for _, c := range cases {
		c := c

		t.Run(c.name, func(t *testing.T) {
			doc, err := Parse([]byte(c.src), "test.ui")
			if err != nil {
				t.Fatalf("failed to parse: %s", err)
			}

			assert(t, "test.ui", doc.Source, "source")

			c.verify(&TestDocument{
				Document: doc,
				T:        t,
			})
		})
	}
}

func TestParserSpans(t *testing.T) {
	doc, err := Parse([]byte("<column>\n  <text value=\"{a}\"/>\n</column>"), "main.ui")
	if err != nil {
		t.Fatalf("failed to parse: %s", err)
	}

	col := doc.Roots[0]
	assert(t, diag.Span{Source: "main.ui", Start: diag.Location{Line: 0, Column: 0}, End: diag.Location{Line: 2, Column: 9}}, col.Span(), "column span")

	txt := col.Children[0]
	assert(t, diag.Location{Line: 1, Column: 2}, txt.Span().Start, "text start")
	assert(t, diag.Location{Line: 1, Column: 21}, txt.Span().End, "text end")

	attr, _ := txt.Attr("value")
	assert(t, diag.Location{Line: 1, Column: 8}, attr.Span().Start, "attribute start")
	assert(t, diag.Location{Line: 1, Column: 19}, attr.Span().End, "attribute end")

	b := attr.Value.(Binding)
	assert(t, diag.Location{Line: 1, Column: 16}, b.Expr.Span().Start, "expression start")
}

func TestParserFatal(t *testing.T) {
	cases := []struct {
		name string
		src  string
		kind diag.Kind
		at   diag.Location
	}{
		{"mismatched closing tag", "<row>\n</column>", diag.MismatchedClosingTag, diag.Location{Line: 1, Column: 0}},
		{"stray closing tag", "<space/></row>", diag.MismatchedClosingTag, diag.Location{Column: 8}},
		{"crossed tags", "<row><column></row></column>", diag.MismatchedClosingTag, diag.Location{Column: 13}},
		{"unclosed element", "<column>\n  <row>\n</column>", diag.MismatchedClosingTag, diag.Location{Line: 2, Column: 0}},
		{"unclosed at eof", "<column><row></row>", diag.UnclosedElement, diag.Location{}},
		{"unclosed nested at eof", "<column>\n  <row>", diag.UnclosedElement, diag.Location{Line: 1, Column: 2}},
		{"unterminated tag", `<column spacing="4"`, diag.UnterminatedTag, diag.Location{}},
		{"unterminated attribute", `<text value="abc`, diag.UnterminatedAttribute, diag.Location{Column: 12}},
	}

	for _, c := range cases {
		c := c

		t.Run(c.name, func(t *testing.T) {
			doc, err := Parse([]byte(c.src), "test.ui")
			if err == nil {
				t.Fatalf("expected error")
			}
			if doc != nil {
				t.Fatalf("expected no document on fatal error")
			}

			var derr *diag.Error
			if !errors.As(err, &derr) {
				t.Fatalf("expected *diag.Error, got %T", err)
			}

			assert(t, c.kind, derr.Kind, "kind")
			assert(t, c.at, derr.Span.Start, "location")
		})
	}
}

func TestParserIsDeterministic(t *testing.T) {
	src := []byte(`<column spacing="{gap * 2}">
	<text value="Hello, {user.name.to_upper()}!"/>
	<button enabled="{items.len() > 0 && !busy}">Go {count}</button>
	<my_widget data="{items[0]}" label='plain'/>
	<text value="{bad"/>
</column>`)

	a, err := Parse(src, "test.ui")
	if err != nil {
		t.Fatalf("failed to parse: %s", err)
	}

	b, err := Parse(src, "test.ui")
	if err != nil {
		t.Fatalf("failed to parse: %s", err)
	}

	if !reflect.DeepEqual(a, b) {
		t.Fatalf("parsing the same source twice gave different documents")
	}
	if a == b || a.Roots[0] == b.Roots[0] {
		t.Fatalf("expected independent trees")
	}
}

func TestParserDeepNesting(t *testing.T) {
	const depth = 5000

	src := strings.Repeat("<column>", depth) + strings.Repeat("</column>", depth)

	doc, err := Parse([]byte(src), "")
	if err != nil {
		t.Fatalf("failed to parse: %s", err)
	}

	maxDepth := 0
	Walk(doc.Roots, func(_ *WidgetNode, d int) bool {
		if d > maxDepth {
			maxDepth = d
		}
		return true
	})

	assert(t, depth-1, maxDepth, "depth")
}

func TestParseTokens(t *testing.T) {
	_, err := ParseTokens([]lexer.Token{{Type: lexer.TokenTagOpen, Contents: "row"}}, "")
	if !errors.Is(err, ErrLastTokenEOF) {
		t.Fatalf("expected ErrLastTokenEOF, got %v", err)
	}

	tks, err := lexer.New([]byte(`<row/>`), "").Collect()
	if err != nil {
		t.Fatalf("failed to lex: %s", err)
	}

	doc, err := ParseTokens(tks, "")
	if err != nil {
		t.Fatalf("failed to parse: %s", err)
	}
	assert(t, 1, len(doc.Roots), "roots")
}
