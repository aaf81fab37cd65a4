package eval

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/pipe01/trellis/internal/diag"
	"github.com/pipe01/trellis/internal/expr"
	"github.com/pipe01/trellis/internal/value"
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

type method struct {
	args int
	call func(recv value.Value, args []value.Value) (value.Value, error)
}

var methods = map[string]method{
	"len":         {0, methodLen},
	"is_empty":    {0, methodIsEmpty},
	"contains":    {1, methodContains},
	"to_upper":    {0, stringMethod(toUpper)},
	"to_lower":    {0, stringMethod(toLower)},
	"trim":        {0, stringMethod(strings.TrimSpace)},
	"starts_with": {1, stringPredicate(strings.HasPrefix)},
	"ends_with":   {1, stringPredicate(strings.HasSuffix)},
	"join":        {1, methodJoin},
	"keys":        {0, methodKeys},
}

// Methods returns the names of the methods bindings may call, sorted.
func Methods() []string {
	names := maps.Keys(methods)
	slices.Sort(names)
	return names
}

func (e *evaluator) evalMethodCall(n *expr.MethodCall) (value.Value, *diag.Error) {
	m, ok := methods[n.Method]
	if !ok {
		return nil, diag.Errorf(diag.UnknownMethod, n.Span(), "unknown method %q", n.Method).
			WithSuggestion(diag.Suggest(n.Method, Methods()))
	}

	if len(n.Args) != m.args {
		return nil, typeMismatch(n, "method %s takes %d argument(s), got %d", n.Method, m.args, len(n.Args))
	}

	recv, err := e.eval(n.Base)
	if err != nil {
		return nil, err
	}

	args := make([]value.Value, len(n.Args))
	for i, a := range n.Args {
		if args[i], err = e.eval(a); err != nil {
			return nil, err
		}
	}

	v, cerr := m.call(recv, args)
	if cerr != nil {
		return nil, typeMismatch(n, "%s: %s", n.Method, cerr)
	}

	return v, nil
}

func notDefinedOn(recv value.Value) error {
	return fmt.Errorf("not defined on %s", value.KindOf(recv))
}

func length(recv value.Value) (int, error) {
	switch recv := recv.(type) {
	case value.String:
		return utf8.RuneCountInString(string(recv)), nil
	case value.List:
		return len(recv), nil
	case value.Object:
		return len(recv), nil
	}

	return 0, notDefinedOn(recv)
}

func methodLen(recv value.Value, _ []value.Value) (value.Value, error) {
	l, err := length(recv)
	if err != nil {
		return nil, err
	}
	return value.Int(l), nil
}

func methodIsEmpty(recv value.Value, _ []value.Value) (value.Value, error) {
	if value.KindOf(recv) == value.KindNone {
		return value.Bool(true), nil
	}

	l, err := length(recv)
	if err != nil {
		return nil, err
	}
	return value.Bool(l == 0), nil
}

func methodContains(recv value.Value, args []value.Value) (value.Value, error) {
	switch recv := recv.(type) {
	case value.String:
		sub, ok := args[0].(value.String)
		if !ok {
			return nil, fmt.Errorf("expected a string argument, found %s", value.KindOf(args[0]))
		}
		return value.Bool(strings.Contains(string(recv), string(sub))), nil

	case value.List:
		return value.Bool(slices.ContainsFunc(recv, func(e value.Value) bool {
			return value.Equal(e, args[0])
		})), nil

	case value.Object:
		key, ok := args[0].(value.String)
		if !ok {
			return nil, fmt.Errorf("expected a string key, found %s", value.KindOf(args[0]))
		}
		_, has := recv[string(key)]
		return value.Bool(has), nil
	}

	return nil, notDefinedOn(recv)
}

// Casers keep state between calls, so every call gets its own.
func toUpper(s string) string {
	return cases.Upper(language.Und).String(s)
}

func toLower(s string) string {
	return cases.Lower(language.Und).String(s)
}

func stringMethod(fn func(string) string) func(value.Value, []value.Value) (value.Value, error) {
	return func(recv value.Value, _ []value.Value) (value.Value, error) {
		s, ok := recv.(value.String)
		if !ok {
			return nil, notDefinedOn(recv)
		}
		return value.String(fn(string(s))), nil
	}
}

func stringPredicate(fn func(s, arg string) bool) func(value.Value, []value.Value) (value.Value, error) {
	return func(recv value.Value, args []value.Value) (value.Value, error) {
		s, ok := recv.(value.String)
		if !ok {
			return nil, notDefinedOn(recv)
		}

		arg, ok := args[0].(value.String)
		if !ok {
			return nil, fmt.Errorf("expected a string argument, found %s", value.KindOf(args[0]))
		}

		return value.Bool(fn(string(s), string(arg))), nil
	}
}

func methodJoin(recv value.Value, args []value.Value) (value.Value, error) {
	list, ok := recv.(value.List)
	if !ok {
		return nil, notDefinedOn(recv)
	}

	sep, ok := args[0].(value.String)
	if !ok {
		return nil, fmt.Errorf("expected a string separator, found %s", value.KindOf(args[0]))
	}

	parts := make([]string, len(list))
	for i, e := range list {
		parts[i] = value.Display(e)
	}

	return value.String(strings.Join(parts, string(sep))), nil
}

func methodKeys(recv value.Value, _ []value.Value) (value.Value, error) {
	obj, ok := recv.(value.Object)
	if !ok {
		return nil, notDefinedOn(recv)
	}

	keys := obj.Keys()
	list := make(value.List, len(keys))
	for i, k := range keys {
		list[i] = value.String(k)
	}

	return list, nil
}
