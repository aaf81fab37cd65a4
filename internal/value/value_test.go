package value

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDisplay(t *testing.T) {
	cases := []struct {
		name     string
		value    Value
		expected string
	}{
		{"none", None{}, ""},
		{"nil", nil, ""},
		{"bool", Bool(true), "true"},
		{"int", Int(-42), "-42"},
		{"float", Float(3.5), "3.5"},
		{"whole float", Float(2), "2"},
		{"tiny float", Float(1e-9), "1e-09"},
		{"infinity", Float(math.Inf(1)), "inf"},
		{"string", String("hi"), "hi"},
		{"list", List{Int(1), String("a"), None{}}, `[1, "a", null]`},
		{"object", Object{"b": Int(2), "a": Bool(false)}, "{a: false, b: 2}"},
	}

	for _, c := range cases {
		c := c

		t.Run(c.name, func(t *testing.T) {
			assert.Equal(t, c.expected, Display(c.value))
		})
	}
}

func TestEqual(t *testing.T) {
	assert.True(t, Equal(Int(1), Float(1)))
	assert.True(t, Equal(String("a"), String("a")))
	assert.True(t, Equal(None{}, nil))
	assert.True(t, Equal(List{Int(1), List{String("x")}}, List{Float(1), List{String("x")}}))
	assert.True(t, Equal(Object{"a": Int(1)}, Object{"a": Int(1)}))

	assert.False(t, Equal(Int(1), String("1")))
	assert.False(t, Equal(Bool(true), Int(1)))
	assert.False(t, Equal(List{Int(1)}, List{Int(1), Int(2)}))
	assert.False(t, Equal(Object{"a": Int(1)}, Object{"b": Int(1)}))
	assert.False(t, Equal(Float(math.NaN()), Float(math.NaN())))
}

func TestFromGo(t *testing.T) {
	v, err := FromGo(map[string]any{
		"name":  "Alice",
		"age":   30,
		"score": 9.5,
		"tags":  []any{"a", true, nil},
		"nested": map[any]any{
			"ok": uint8(1),
		},
	})
	require.NoError(t, err)

	assert.Equal(t, Object{
		"name":  String("Alice"),
		"age":   Int(30),
		"score": Float(9.5),
		"tags":  List{String("a"), Bool(true), None{}},
		"nested": Object{
			"ok": Int(1),
		},
	}, v)
}

func TestFromGoErrors(t *testing.T) {
	_, err := FromGo(map[string]any{"c": make(chan int)})
	assert.ErrorContains(t, err, `key "c": unsupported type chan int`)

	_, err = FromGo(uint64(math.MaxUint64))
	assert.ErrorContains(t, err, "overflows int64")

	_, err = FromGo(map[any]any{1: "x"})
	assert.ErrorContains(t, err, "unsupported map key")
}

func TestObjectKeys(t *testing.T) {
	assert.Equal(t, []string{"a", "b", "c"}, Object{"c": None{}, "a": None{}, "b": None{}}.Keys())
}
