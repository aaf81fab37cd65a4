// Package eval resolves bindings against an application model.
package eval

import (
	"fmt"
	"strings"

	"github.com/pipe01/trellis/internal/diag"
	"github.com/pipe01/trellis/internal/expr"
	"github.com/pipe01/trellis/internal/parser/ast"
	"github.com/pipe01/trellis/internal/value"
)

// Model gives read access to the data bindings are evaluated against.
type Model interface {
	// GetField returns the value at path, or false if there is none.
	GetField(path []string) (value.Value, bool)

	// ListFields returns the dotted paths of every known field. It is only used
	// to suggest corrections for unknown fields.
	ListFields() []string
}

type evaluator struct {
	model Model
}

// Evaluate computes the value of n. It does not modify the model. Errors are
// returned as *diag.Error located at the failing node.
func Evaluate(n expr.Node, m Model) (value.Value, error) {
	e := evaluator{model: m}

	v, err := e.eval(n)
	if err != nil {
		return nil, err
	}

	return v, nil
}

// Attribute evaluates an attribute value. Static text and interpolations
// produce a String. A nil value, as left by an attribute that failed to
// parse, evaluates to None.
func Attribute(v ast.AttributeValue, m Model) (value.Value, error) {
	switch v := v.(type) {
	case nil:
		return value.None{}, nil

	case ast.Static:
		return value.String(v.Text), nil

	case ast.Binding:
		return Evaluate(v.Expr, m)

	case ast.Interpolated:
		var b strings.Builder

		for _, p := range v.Parts {
			switch p := p.(type) {
			case ast.LiteralPart:
				b.WriteString(p.Text)

			case ast.ExprPart:
				pv, err := Evaluate(p.Expr, m)
				if err != nil {
					return nil, err
				}
				b.WriteString(value.Display(pv))
			}
		}

		return value.String(b.String()), nil
	}

	return nil, fmt.Errorf("unknown attribute value %T", v)
}

func typeMismatch(n expr.Node, format string, a ...any) *diag.Error {
	return diag.Errorf(diag.TypeMismatch, n.Span(), format, a...)
}

func (e *evaluator) eval(n expr.Node) (value.Value, *diag.Error) {
	switch n := n.(type) {
	case *expr.Literal:
		if n.Value == nil {
			return value.None{}, nil
		}
		return n.Value, nil

	case *expr.FieldAccess:
		return e.evalFieldAccess(n)

	case *expr.Index:
		return e.evalIndex(n)

	case *expr.MethodCall:
		return e.evalMethodCall(n)

	case *expr.Unary:
		return e.evalUnary(n)

	case *expr.Binary:
		return e.evalBinary(n)

	case *expr.Conditional:
		cond, err := e.evalBool(n.Cond, "condition")
		if err != nil {
			return nil, err
		}

		if cond {
			return e.eval(n.Then)
		}
		return e.eval(n.Else)
	}

	return nil, diag.Errorf(diag.TypeMismatch, diag.Span{}, "unknown expression %T", n)
}

func (e *evaluator) evalBool(n expr.Node, what string) (bool, *diag.Error) {
	v, err := e.eval(n)
	if err != nil {
		return false, err
	}

	b, ok := v.(value.Bool)
	if !ok {
		return false, typeMismatch(n, "%s must be a bool, found %s", what, value.KindOf(v))
	}

	return bool(b), nil
}

func (e *evaluator) evalFieldAccess(n *expr.FieldAccess) (value.Value, *diag.Error) {
	if n.Base == nil {
		v, ok := e.model.GetField(n.Segments)
		if !ok {
			return nil, e.unknownRootField(n)
		}
		if v == nil {
			v = value.None{}
		}
		return v, nil
	}

	v, err := e.eval(n.Base)
	if err != nil {
		return nil, err
	}

	for _, seg := range n.Segments {
		obj, ok := v.(value.Object)
		if !ok {
			return nil, typeMismatch(n, "cannot access field %q on %s", seg, value.KindOf(v))
		}

		v, ok = obj[seg]
		if !ok {
			return nil, diag.Errorf(diag.UnknownField, n.Span(), "unknown field %q", seg).
				WithSuggestion(diag.Suggest(seg, obj.Keys()))
		}
		if v == nil {
			v = value.None{}
		}
	}

	return v, nil
}

// unknownRootField builds the error for a model path that does not resolve.
// The suggestion is taken from the siblings of the first failing segment.
func (e *evaluator) unknownRootField(n *expr.FieldAccess) *diag.Error {
	path := n.Segments

	known := 0
	for k := len(path) - 1; k > 0; k-- {
		if _, ok := e.model.GetField(path[:k]); ok {
			known = k
			break
		}
	}

	failing := path[known]
	prefix := strings.Join(path[:known], ".")

	var siblings []string
	for _, f := range e.model.ListFields() {
		rest := f
		if prefix != "" {
			if !strings.HasPrefix(f, prefix+".") {
				continue
			}
			rest = f[len(prefix)+1:]
		}

		if rest != "" && !strings.Contains(rest, ".") {
			siblings = append(siblings, rest)
		}
	}

	return diag.Errorf(diag.UnknownField, n.Span(), "unknown field %q", strings.Join(path[:known+1], ".")).
		WithSuggestion(diag.Suggest(failing, siblings))
}

func (e *evaluator) evalIndex(n *expr.Index) (value.Value, *diag.Error) {
	base, err := e.eval(n.Base)
	if err != nil {
		return nil, err
	}

	idx, err := e.eval(n.Index)
	if err != nil {
		return nil, err
	}

	switch base := base.(type) {
	case value.List:
		i, ok := idx.(value.Int)
		if !ok {
			return nil, typeMismatch(n.Index, "list index must be an int, found %s", value.KindOf(idx))
		}

		if i < 0 || int64(i) >= int64(len(base)) {
			return nil, diag.Errorf(diag.IndexOutOfRange, n.Span(), "index %d is out of range for list of length %d", i, len(base))
		}

		if v := base[i]; v != nil {
			return v, nil
		}
		return value.None{}, nil

	case value.Object:
		key, ok := idx.(value.String)
		if !ok {
			return nil, typeMismatch(n.Index, "object key must be a string, found %s", value.KindOf(idx))
		}

		v, ok := base[string(key)]
		if !ok {
			return nil, diag.Errorf(diag.UnknownField, n.Span(), "unknown key %q", string(key)).
				WithSuggestion(diag.Suggest(string(key), base.Keys()))
		}
		if v == nil {
			v = value.None{}
		}
		return v, nil
	}

	return nil, typeMismatch(n.Base, "cannot index into %s", value.KindOf(base))
}

func (e *evaluator) evalUnary(n *expr.Unary) (value.Value, *diag.Error) {
	if n.Op == expr.OpNot {
		b, err := e.evalBool(n.Operand, "operand of '!'")
		if err != nil {
			return nil, err
		}
		return value.Bool(!b), nil
	}

	v, err := e.eval(n.Operand)
	if err != nil {
		return nil, err
	}

	switch v := v.(type) {
	case value.Int:
		return -v, nil
	case value.Float:
		return -v, nil
	}

	return nil, typeMismatch(n, "cannot negate %s", value.KindOf(v))
}
