package model

import (
	"errors"
	"fmt"
	"math"
	"reflect"

	"github.com/iancoleman/strcase"
	"github.com/pipe01/trellis/internal/value"
)

// MaxDepth bounds how deeply Reflect follows nested values, which also stops
// it from looping on pointer cycles.
const MaxDepth = 32

var ErrTooDeep = errors.New("value is nested too deeply")

// Reflect builds a model from a struct or a map with string keys. Exported
// struct fields are named after their `ui` tag, or else the snake_case form of
// the field name; a `ui:"-"` tag hides the field. Embedded structs without a
// tag have their fields promoted.
func Reflect(v any) (*Map, error) {
	rv, err := fromReflect(reflect.ValueOf(v), 0)
	if err != nil {
		return nil, err
	}

	obj, ok := rv.(value.Object)
	if !ok {
		return nil, fmt.Errorf("model must be a struct or a map, found %T", v)
	}

	return NewMap(obj), nil
}

var stringerType = reflect.TypeOf((*fmt.Stringer)(nil)).Elem()

func fromReflect(rv reflect.Value, depth int) (value.Value, error) {
	if depth > MaxDepth {
		return nil, ErrTooDeep
	}
	if !rv.IsValid() {
		return value.None{}, nil
	}

	switch rv.Kind() {
	case reflect.Pointer, reflect.Interface:
		if rv.IsNil() {
			return value.None{}, nil
		}
		return fromReflect(rv.Elem(), depth+1)

	case reflect.Bool:
		return value.Bool(rv.Bool()), nil

	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return value.Int(rv.Int()), nil

	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		u := rv.Uint()
		if u > math.MaxInt64 {
			return nil, fmt.Errorf("integer %d overflows int64", u)
		}
		return value.Int(u), nil

	case reflect.Float32, reflect.Float64:
		return value.Float(rv.Float()), nil

	case reflect.String:
		return value.String(rv.String()), nil

	case reflect.Slice, reflect.Array:
		if rv.Kind() == reflect.Slice && rv.IsNil() {
			return value.None{}, nil
		}

		list := make(value.List, rv.Len())
		for i := range list {
			e, err := fromReflect(rv.Index(i), depth+1)
			if err != nil {
				return nil, fmt.Errorf("index %d: %w", i, err)
			}
			list[i] = e
		}
		return list, nil

	case reflect.Map:
		if rv.Type().Key().Kind() != reflect.String {
			return nil, fmt.Errorf("unsupported map key type %s", rv.Type().Key())
		}
		if rv.IsNil() {
			return value.None{}, nil
		}

		obj := make(value.Object, rv.Len())
		iter := rv.MapRange()
		for iter.Next() {
			k := iter.Key().String()

			e, err := fromReflect(iter.Value(), depth+1)
			if err != nil {
				return nil, fmt.Errorf("key %q: %w", k, err)
			}
			obj[k] = e
		}
		return obj, nil

	case reflect.Struct:
		if rv.Type().Implements(stringerType) {
			return value.String(rv.Interface().(fmt.Stringer).String()), nil
		}

		obj := value.Object{}
		if err := addStructFields(obj, rv, depth); err != nil {
			return nil, err
		}
		return obj, nil
	}

	return nil, fmt.Errorf("unsupported type %s", rv.Type())
}

func addStructFields(obj value.Object, rv reflect.Value, depth int) error {
	typ := rv.Type()

	for i := 0; i < typ.NumField(); i++ {
		field := typ.Field(i)
		if !field.IsExported() || !supported(field.Type) {
			continue
		}

		tag := field.Tag.Get("ui")
		if tag == "-" {
			continue
		}

		fv := rv.Field(i)

		if field.Anonymous && tag == "" && field.Type.Kind() == reflect.Struct {
			if err := addStructFields(obj, fv, depth+1); err != nil {
				return err
			}
			continue
		}

		name := tag
		if name == "" {
			name = strcase.ToSnake(field.Name)
		}

		v, err := fromReflect(fv, depth+1)
		if err != nil {
			return fmt.Errorf("field %s: %w", field.Name, err)
		}

		if _, exists := obj[name]; !exists {
			obj[name] = v
		}
	}

	return nil
}

// supported reports whether fields of type t can hold model data.
func supported(t reflect.Type) bool {
	switch t.Kind() {
	case reflect.Func, reflect.Chan, reflect.UnsafePointer, reflect.Complex64, reflect.Complex128:
		return false
	}
	return true
}
