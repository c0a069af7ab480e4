package jform

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestObject(t *testing.T) {
	t.Run("empty object", func(t *testing.T) {
		var o Object
		require.Len(t, o, 0)
		require.Nil(t, o) // zero value of Object is nil slice
	})

	t.Run("multiple entry object preserves order", func(t *testing.T) {
		o := Object{
			{Key: "first", Value: 1.0},
			{Key: "second", Value: 2.0},
			{Key: "third", Value: 3.0},
		}
		require.Equal(t, []string{"first", "second", "third"}, o.Keys())
	})

	t.Run("set replaces in place", func(t *testing.T) {
		o := Object{{Key: "a", Value: 1.0}, {Key: "b", Value: 2.0}}
		o.Set("a", "x")
		require.Equal(t, Object{{Key: "a", Value: "x"}, {Key: "b", Value: 2.0}}, o)
	})

	t.Run("set appends new keys", func(t *testing.T) {
		var o Object
		o.Set("a", true)
		o.Set("b", nil)
		require.Equal(t, []string{"a", "b"}, o.Keys())
		v, ok := o.Get("b")
		require.True(t, ok)
		require.Nil(t, v)
	})

	t.Run("delete", func(t *testing.T) {
		o := Object{{Key: "a", Value: 1.0}, {Key: "b", Value: 2.0}, {Key: "c", Value: 3.0}}
		require.True(t, o.Delete("b"))
		require.False(t, o.Delete("b"))
		require.Equal(t, []string{"a", "c"}, o.Keys())
	})

	t.Run("object can contain any value types", func(t *testing.T) {
		nested := Object{{Key: "nested", Value: "value"}}
		arr := Array{1.0, 2.0, 3.0}
		o := Object{
			{Key: "string", Value: "text"},
			{Key: "number", Value: 42.0},
			{Key: "boolean", Value: true},
			{Key: "null", Value: nil},
			{Key: "object", Value: nested},
			{Key: "array", Value: arr},
		}
		require.Len(t, o, 6)
		require.Equal(t, nested, o[4].Value)
		require.Equal(t, arr, o[5].Value)
	})
}

func TestClone(t *testing.T) {
	t.Run("deep copy is independent", func(t *testing.T) {
		o := Object{
			{Key: "inner", Value: Object{{Key: "x", Value: 1.0}}},
			{Key: "list", Value: Array{"a", Object{{Key: "y", Value: 2.0}}}},
		}
		c := o.Clone()
		require.Equal(t, o, c)

		inner := c[0].Value.(Object)
		inner[0].Value = 99.0
		list := c[1].Value.(Array)
		list[0] = "changed"

		require.Equal(t, 1.0, o[0].Value.(Object)[0].Value)
		require.Equal(t, "a", o[1].Value.(Array)[0])
	})

	t.Run("nil stays nil", func(t *testing.T) {
		var o Object
		require.Nil(t, o.Clone())
		var a Array
		require.Nil(t, a.Clone())
	})
}

func TestIsPrimitiveArray(t *testing.T) {
	require.True(t, Array{}.IsPrimitiveArray())
	require.True(t, Array{"a", 1.0, true, nil}.IsPrimitiveArray())
	require.False(t, Array{"a", Object{}}.IsPrimitiveArray())
	require.False(t, Array{Array{}}.IsPrimitiveArray())
}

func TestKindOf(t *testing.T) {
	tests := []struct {
		value any
		want  Kind
	}{
		{"s", KindString},
		{42.0, KindNumber},
		{7, KindNumber},
		{false, KindBool},
		{nil, KindNull},
		{Array{}, KindArray},
		{Object{}, KindObject},
	}
	for _, tt := range tests {
		t.Run(tt.want.String(), func(t *testing.T) {
			require.Equal(t, tt.want, KindOf(tt.value))
		})
	}

	t.Run("parse kind names", func(t *testing.T) {
		for k := KindString; k <= KindObject; k++ {
			got, err := ParseKind(k.String())
			require.NoError(t, err)
			require.Equal(t, k, got)
		}
		_, err := ParseKind("date")
		require.Error(t, err)
	})
}
