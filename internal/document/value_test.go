package document

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUnmarshal_Scalars(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  Value
	}{
		{"null", `null`, Null{}},
		{"true", `true`, Bool(true)},
		{"false", `false`, Bool(false)},
		{"int", `42`, Int(42)},
		{"negative int", `-7`, Int(-7)},
		{"float", `3.25`, Float(3.25)},
		{"exponent", `1e3`, Float(1000)},
		{"string", `"hello"`, String("hello")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Unmarshal([]byte(tt.input))
			require.NoError(t, err)
			assert.True(t, Equal(tt.want, got), "want %#v, got %#v", tt.want, got)
		})
	}
}

func TestUnmarshal_Nested(t *testing.T) {
	got, err := Unmarshal([]byte(`{"name":"Alice","age":30,"skills":["python","git"],"meta":{"active":true}}`))
	require.NoError(t, err)

	obj, ok := got.(Object)
	require.True(t, ok, "top level should decode as Object")
	assert.Equal(t, String("Alice"), obj["name"])
	assert.Equal(t, Int(30), obj["age"])
	assert.Equal(t, Array{String("python"), String("git")}, obj["skills"])
	assert.Equal(t, Object{"active": Bool(true)}, obj["meta"])
}

func TestMarshal_SortedKeys(t *testing.T) {
	obj := Object{
		"zeta":  Int(1),
		"alpha": Int(2),
		"mid":   Int(3),
	}

	data, err := Marshal(obj)
	require.NoError(t, err)
	assert.Equal(t, `{"alpha":2,"mid":3,"zeta":1}`, string(data))
}

func TestMarshal_RoundTrip(t *testing.T) {
	original := Object{
		"id":     String("user1"),
		"age":    Int(30),
		"score":  Float(99.5),
		"tags":   Array{String("a"), String("b"), Null{}},
		"nested": Object{"ok": Bool(true), "n": Int(-1)},
	}

	data, err := Marshal(original)
	require.NoError(t, err)

	decoded, err := Unmarshal(data)
	require.NoError(t, err)
	assert.True(t, Equal(original, decoded), "round trip should preserve structure")
}

func TestFromGo_YAMLShapes(t *testing.T) {
	// yaml.v3 decodes mappings into map[string]any and sequences into []any.
	got, err := FromGo(map[string]any{
		"count": 5,
		"ratio": 0.5,
		"list":  []any{"x", 10},
		"none":  nil,
	})
	require.NoError(t, err)

	obj, ok := got.(Object)
	require.True(t, ok)
	assert.Equal(t, Int(5), obj["count"])
	assert.Equal(t, Float(0.5), obj["ratio"])
	assert.Equal(t, Array{String("x"), Int(10)}, obj["list"])
	assert.Equal(t, Null{}, obj["none"])
}

func TestFromGo_Unsupported(t *testing.T) {
	_, err := FromGo(struct{ X int }{1})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported")
}

func TestInterface_RoundTrip(t *testing.T) {
	v := Object{"a": Array{Int(1), Float(2.5)}, "b": Null{}}

	plain := Interface(v)
	back, err := FromGo(plain)
	require.NoError(t, err)
	assert.True(t, Equal(v, back))
}

func TestEqual_Distinguishes(t *testing.T) {
	assert.False(t, Equal(Int(1), Float(1)), "Int and Float are distinct variants")
	assert.False(t, Equal(Null{}, Bool(false)))
	assert.False(t, Equal(Object{"a": Int(1)}, Object{"a": Int(2)}))
	assert.False(t, Equal(Array{Int(1)}, Array{Int(1), Int(2)}))
	assert.True(t, Equal(Object{}, Object{}))
}
