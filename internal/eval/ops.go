package eval

import (
	"math"

	"github.com/pipe01/trellis/internal/diag"
	"github.com/pipe01/trellis/internal/expr"
	"github.com/pipe01/trellis/internal/value"
)

func (e *evaluator) evalBinary(n *expr.Binary) (value.Value, *diag.Error) {
	switch n.Op {
	case expr.OpAnd, expr.OpOr:
		return e.evalLogical(n)
	}

	l, err := e.eval(n.Left)
	if err != nil {
		return nil, err
	}

	r, err := e.eval(n.Right)
	if err != nil {
		return nil, err
	}

	switch n.Op {
	case expr.OpEq:
		return value.Bool(value.Equal(l, r)), nil

	case expr.OpNotEq:
		return value.Bool(!value.Equal(l, r)), nil

	case expr.OpLess, expr.OpLessEq, expr.OpGreater, expr.OpGreaterEq:
		return compare(n, l, r)

	case expr.OpAdd:
		if isString(l) || isString(r) {
			if !isText(l) || !isText(r) {
				return nil, typeMismatch(n, "cannot add %s and %s", value.KindOf(l), value.KindOf(r))
			}
			return value.String(value.Display(l) + value.Display(r)), nil
		}
	}

	return arithmetic(n, l, r)
}

func (e *evaluator) evalLogical(n *expr.Binary) (value.Value, *diag.Error) {
	l, err := e.evalBool(n.Left, "left operand of '"+n.Op.String()+"'")
	if err != nil {
		return nil, err
	}

	if n.Op == expr.OpAnd && !l {
		return value.Bool(false), nil
	}
	if n.Op == expr.OpOr && l {
		return value.Bool(true), nil
	}

	r, err := e.evalBool(n.Right, "right operand of '"+n.Op.String()+"'")
	if err != nil {
		return nil, err
	}

	return value.Bool(r), nil
}

func isString(v value.Value) bool {
	return value.KindOf(v) == value.KindString
}

// isText reports whether v can take part in a string concatenation.
func isText(v value.Value) bool {
	return isString(v) || value.IsNumber(v)
}

func compare(n *expr.Binary, l, r value.Value) (value.Value, *diag.Error) {
	var c int

	switch {
	case value.KindOf(l) == value.KindInt && value.KindOf(r) == value.KindInt:
		a, b := l.(value.Int), r.(value.Int)
		c = cmp(a < b, a > b)

	case value.IsNumber(l) && value.IsNumber(r):
		a, b := value.ToFloat(l), value.ToFloat(r)
		if math.IsNaN(a) || math.IsNaN(b) {
			return value.Bool(false), nil
		}
		c = cmp(a < b, a > b)

	case isString(l) && isString(r):
		a, b := l.(value.String), r.(value.String)
		c = cmp(a < b, a > b)

	default:
		return nil, typeMismatch(n, "cannot compare %s and %s with '%s'", value.KindOf(l), value.KindOf(r), n.Op)
	}

	var res bool
	switch n.Op {
	case expr.OpLess:
		res = c < 0
	case expr.OpLessEq:
		res = c <= 0
	case expr.OpGreater:
		res = c > 0
	case expr.OpGreaterEq:
		res = c >= 0
	}

	return value.Bool(res), nil
}

func cmp(less, greater bool) int {
	switch {
	case less:
		return -1
	case greater:
		return 1
	}
	return 0
}

func arithmetic(n *expr.Binary, l, r value.Value) (value.Value, *diag.Error) {
	if !value.IsNumber(l) || !value.IsNumber(r) {
		return nil, typeMismatch(n, "cannot apply '%s' to %s and %s", n.Op, value.KindOf(l), value.KindOf(r))
	}

	li, lInt := l.(value.Int)
	ri, rInt := r.(value.Int)

	if lInt && rInt {
		switch n.Op {
		case expr.OpAdd:
			return li + ri, nil
		case expr.OpSub:
			return li - ri, nil
		case expr.OpMul:
			return li * ri, nil
		case expr.OpDiv, expr.OpRem:
			if ri == 0 {
				return nil, diag.Errorf(diag.DivisionByZero, n.Span(), "integer division by zero")
			}
			if n.Op == expr.OpDiv {
				return li / ri, nil
			}
			return li % ri, nil
		}
	}

	lf, rf := value.ToFloat(l), value.ToFloat(r)

	switch n.Op {
	case expr.OpAdd:
		return value.Float(lf + rf), nil
	case expr.OpSub:
		return value.Float(lf - rf), nil
	case expr.OpMul:
		return value.Float(lf * rf), nil
	case expr.OpDiv, expr.OpRem:
		if rf == 0 {
			return nil, diag.Errorf(diag.DivisionByZero, n.Span(), "division by zero")
		}
		if n.Op == expr.OpDiv {
			return value.Float(lf / rf), nil
		}
		return value.Float(math.Mod(lf, rf)), nil
	}

	return nil, typeMismatch(n, "unknown operator '%s'", n.Op)
}
