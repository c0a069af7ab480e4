package jform

import (
	"testing"

	json "github.com/go-json-experiment/json"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

func parse(t *testing.T, src string) any {
	t.Helper()
	v, err := Parse([]byte(src))
	require.NoError(t, err)
	return v
}

func assertObject(t *testing.T, v any) Object {
	t.Helper()
	o, ok := v.(Object)
	require.True(t, ok, "expected Object, got %T", v)
	return o
}

func assertArray(t *testing.T, v any) Array {
	t.Helper()
	a, ok := v.(Array)
	require.True(t, ok, "expected Array, got %T", v)
	return a
}

func TestParse(t *testing.T) {
	t.Run("empty object -> empty Object", func(t *testing.T) {
		o := assertObject(t, parse(t, `{}`))
		require.Len(t, o, 0)
	})

	t.Run("empty array -> empty Array", func(t *testing.T) {
		a := assertArray(t, parse(t, `[]`))
		require.Len(t, a, 0)
	})

	t.Run("regular object ordering preserved", func(t *testing.T) {
		o := assertObject(t, parse(t, `{"b":1,"a":2}`))
		require.Equal(t, Object{{Key: "b", Value: float64(1)}, {Key: "a", Value: float64(2)}}, o)
	})

	t.Run("nested array wraps objects", func(t *testing.T) {
		a := assertArray(t, parse(t, `[1,{"x":2}]`))
		require.Len(t, a, 2)
		require.Equal(t, float64(1), a[0])
		o := assertObject(t, a[1])
		require.Equal(t, "x", o[0].Key)
	})

	t.Run("duplicate key keeps first position and last value", func(t *testing.T) {
		o := assertObject(t, parse(t, `{"a":1,"b":2,"a":3}`))
		require.Equal(t, Object{{Key: "a", Value: float64(3)}, {Key: "b", Value: float64(2)}}, o)
	})

	t.Run("primitive value", func(t *testing.T) {
		require.Equal(t, float64(123), parse(t, `123`))
		require.Equal(t, "s", parse(t, `"s"`))
		require.Nil(t, parse(t, `null`))
	})

	t.Run("malformed input", func(t *testing.T) {
		for _, src := range []string{``, `{`, `[1,]`, `{"a" 1}`, `[1] [2]`} {
			_, err := Parse([]byte(src))
			require.ErrorIs(t, err, ErrSyntax, "input %q", src)
		}
	})
}

func TestTypedUnmarshalers(t *testing.T) {
	t.Run("into *Object", func(t *testing.T) {
		var o Object
		err := json.Unmarshal([]byte(`{"z":{"y":[true]}}`), &o, json.WithUnmarshalers(Unmarshalers()))
		require.NoError(t, err)
		inner := assertObject(t, o[0].Value)
		require.Equal(t, Array{true}, inner[0].Value)
	})

	t.Run("into *Array", func(t *testing.T) {
		var a Array
		err := json.Unmarshal([]byte(`[{"k":"v"}]`), &a, json.WithUnmarshalers(Unmarshalers()))
		require.NoError(t, err)
		require.Equal(t, Array{Object{{Key: "k", Value: "v"}}}, a)
	})
}

func TestFormat(t *testing.T) {
	t.Run("two space indent with trailing newline", func(t *testing.T) {
		v := Array{Object{
			{Key: "name", Value: "x"},
			{Key: "n", Value: 42.0},
			{Key: "tags", Value: Array{"a"}},
			{Key: "empty", Value: Object{}},
		}}
		out, err := Format(v)
		require.NoError(t, err)
		want := "[\n" +
			"  {\n" +
			"    \"name\": \"x\",\n" +
			"    \"n\": 42,\n" +
			"    \"tags\": [\n" +
			"      \"a\"\n" +
			"    ],\n" +
			"    \"empty\": {}\n" +
			"  }\n" +
			"]\n"
		require.Equal(t, want, string(out))
	})

	t.Run("compact keeps order", func(t *testing.T) {
		o := Object{{Key: "b", Value: 1.5}, {Key: "a", Value: nil}}
		require.Equal(t, `{"b":1.5,"a":null}`, Compact(o))
	})

	t.Run("round trip is identical", func(t *testing.T) {
		src := `[{"id":"a","n":1,"f":2.25,"ok":false,"nil":null,"tags":["x",1,true],"deep":{"k":{"j":[]}}},{"z":{}}]`
		first := parse(t, src)
		out, err := Format(first)
		require.NoError(t, err)
		second := parse(t, string(out))
		if diff := cmp.Diff(first, second); diff != "" {
			t.Fatalf("round trip mismatch (-first +second):\n%s", diff)
		}
	})
}
