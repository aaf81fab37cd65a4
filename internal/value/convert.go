package value

import (
	"fmt"
	"math"
)

// FromGo converts plain Go data, as produced by decoding JSON or YAML, into a
// Value. Maps must have string keys.
func FromGo(v any) (Value, error) {
	switch v := v.(type) {
	case nil:
		return None{}, nil
	case Value:
		return v, nil

	case bool:
		return Bool(v), nil
	case string:
		return String(v), nil

	case int:
		return Int(v), nil
	case int8:
		return Int(v), nil
	case int16:
		return Int(v), nil
	case int32:
		return Int(v), nil
	case int64:
		return Int(v), nil
	case uint:
		return fromUint(uint64(v))
	case uint8:
		return Int(v), nil
	case uint16:
		return Int(v), nil
	case uint32:
		return Int(v), nil
	case uint64:
		return fromUint(v)

	case float32:
		return Float(v), nil
	case float64:
		return Float(v), nil

	case []any:
		list := make(List, len(v))
		for i, e := range v {
			ev, err := FromGo(e)
			if err != nil {
				return nil, fmt.Errorf("index %d: %w", i, err)
			}
			list[i] = ev
		}
		return list, nil

	case map[string]any:
		obj := make(Object, len(v))
		for k, e := range v {
			ev, err := FromGo(e)
			if err != nil {
				return nil, fmt.Errorf("key %q: %w", k, err)
			}
			obj[k] = ev
		}
		return obj, nil

	case map[any]any:
		obj := make(Object, len(v))
		for k, e := range v {
			ks, ok := k.(string)
			if !ok {
				return nil, fmt.Errorf("unsupported map key %v (%T)", k, k)
			}
			ev, err := FromGo(e)
			if err != nil {
				return nil, fmt.Errorf("key %q: %w", ks, err)
			}
			obj[ks] = ev
		}
		return obj, nil
	}

	return nil, fmt.Errorf("unsupported type %T", v)
}

func fromUint(v uint64) (Value, error) {
	if v > math.MaxInt64 {
		return nil, fmt.Errorf("integer %d overflows int64", v)
	}
	return Int(v), nil
}
