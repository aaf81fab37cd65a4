// Package model provides ready-made models for evaluating bindings.
package model

import (
	"fmt"

	"github.com/pipe01/trellis/internal/value"
	"golang.org/x/exp/slices"
	"gopkg.in/yaml.v3"
)

// Map is a read-only model over a tree of objects.
type Map struct {
	root   value.Object
	fields []string
}

func NewMap(root value.Object) *Map {
	if root == nil {
		root = value.Object{}
	}

	m := &Map{root: root}
	m.fields = collectFields(root)

	return m
}

// FromGo builds a model from plain Go data such as decoded JSON.
func FromGo(data map[string]any) (*Map, error) {
	v, err := value.FromGo(data)
	if err != nil {
		return nil, err
	}

	obj, _ := v.(value.Object)
	return NewMap(obj), nil
}

// FromYAML decodes a YAML (or JSON) document whose top level is a mapping.
func FromYAML(data []byte) (*Map, error) {
	var raw any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("decode model: %w", err)
	}

	if raw == nil {
		return NewMap(nil), nil
	}

	v, err := value.FromGo(raw)
	if err != nil {
		return nil, fmt.Errorf("convert model: %w", err)
	}

	obj, ok := v.(value.Object)
	if !ok {
		return nil, fmt.Errorf("model must be a mapping, found %s", v.Kind())
	}

	return NewMap(obj), nil
}

func (m *Map) Root() value.Object {
	return m.root
}

func (m *Map) GetField(path []string) (value.Value, bool) {
	var v value.Value = m.root

	for _, seg := range path {
		obj, ok := v.(value.Object)
		if !ok {
			return nil, false
		}

		v, ok = obj[seg]
		if !ok {
			return nil, false
		}
	}

	if v == nil {
		return value.None{}, true
	}
	return v, true
}

// ListFields returns the dotted path of every field, including the objects
// on the way to nested fields, sorted.
func (m *Map) ListFields() []string {
	return slices.Clone(m.fields)
}

func collectFields(root value.Object) []string {
	var fields []string

	type item struct {
		prefix string
		obj    value.Object
	}

	stack := []item{{"", root}}
	for len(stack) > 0 {
		it := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		for k, v := range it.obj {
			path := k
			if it.prefix != "" {
				path = it.prefix + "." + k
			}
			fields = append(fields, path)

			if obj, ok := v.(value.Object); ok {
				stack = append(stack, item{path, obj})
			}
		}
	}

	slices.Sort(fields)
	return fields
}
