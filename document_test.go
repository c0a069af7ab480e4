package jform

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustDocument(t *testing.T, data string) *Document {
	t.Helper()
	d, err := ParseDocument([]byte(data))
	require.NoError(t, err)
	return d
}

func TestParseDocument(t *testing.T) {
	t.Run("array of objects", func(t *testing.T) {
		d := mustDocument(t, `[{"a":1},{"b":2}]`)
		assert.Equal(t, 2, d.Len())
	})

	t.Run("top level object rejected", func(t *testing.T) {
		_, err := ParseDocument([]byte(`{"a":1}`))
		require.ErrorIs(t, err, ErrNotArray)
	})

	t.Run("empty array rejected", func(t *testing.T) {
		_, err := ParseDocument([]byte(`[]`))
		require.ErrorIs(t, err, ErrEmpty)
	})

	t.Run("non object element", func(t *testing.T) {
		_, err := ParseDocument([]byte(`[{"a":1},[1],{"c":3}]`))
		require.ErrorIs(t, err, ErrNotObject)

		var elemErr *ElementError
		require.True(t, errors.As(err, &elemErr))
		assert.Equal(t, 1, elemErr.Index)
		assert.Contains(t, err.Error(), "item at index 1")
	})

	t.Run("syntax error", func(t *testing.T) {
		_, err := ParseDocument([]byte(`[{"a":}]`))
		require.ErrorIs(t, err, ErrSyntax)
	})
}

func TestDocument_RoundTrip(t *testing.T) {
	d := Sample()
	out, err := d.Marshal()
	require.NoError(t, err)

	again, err := ParseDocument(out)
	require.NoError(t, err)
	if diff := cmp.Diff(d.Objects(), again.Objects()); diff != "" {
		t.Errorf("round trip mismatch (-want +got):\n%s", diff)
	}

	out2, err := again.Marshal()
	require.NoError(t, err)
	assert.Equal(t, string(out), string(out2))
}

func TestDocument_SetField(t *testing.T) {
	d := mustDocument(t, `[{"port":8080,"ssl":false,"name":"x","tags":["a"],"none":null}]`)

	t.Run("number stays number", func(t *testing.T) {
		v, err := d.SetField(0, Path{"port"}, "42", KindNumber)
		require.NoError(t, err)
		assert.Equal(t, 42.0, v)
	})

	t.Run("bool case insensitive", func(t *testing.T) {
		v, err := d.SetField(0, Path{"ssl"}, "True", KindBool)
		require.NoError(t, err)
		assert.Equal(t, true, v)

		v, err = d.SetField(0, Path{"ssl"}, "FALSE", KindBool)
		require.NoError(t, err)
		assert.Equal(t, false, v)
	})

	t.Run("array text", func(t *testing.T) {
		_, err := d.SetField(0, Path{"tags"}, `["a", "b"]`, KindArray)
		require.NoError(t, err)
		got, err := d.Get(0, Path{"tags"})
		require.NoError(t, err)
		assert.Equal(t, Array{"a", "b"}, got)
	})

	t.Run("null leaves text", func(t *testing.T) {
		v, err := d.SetField(0, Path{"none"}, "value", KindNull)
		require.NoError(t, err)
		assert.Equal(t, "value", v)
	})

	t.Run("order preserved", func(t *testing.T) {
		obj, err := d.At(0)
		require.NoError(t, err)
		assert.Equal(t, []string{"port", "ssl", "name", "tags", "none"}, obj.Keys())
	})

	t.Run("custom registry", func(t *testing.T) {
		r := MustNewRegistry(NewCoercer(KindNumber, func(string) (float64, error) { return 7, nil }))
		d := mustDocument(t, `[{"n":1}]`).WithRegistry(r)
		v, err := d.SetField(0, Path{"n"}, "1", KindNumber)
		require.NoError(t, err)
		assert.Equal(t, 7.0, v)
	})
}

func TestDocument_Objects(t *testing.T) {
	t.Run("add object", func(t *testing.T) {
		d := mustDocument(t, `[{"a":1}]`)
		i, err := d.AddObject(" key ", "12")
		require.NoError(t, err)
		assert.Equal(t, 1, i)
		obj, _ := d.At(i)
		assert.Equal(t, `{"key":12}`, Compact(obj))

		i, err = d.AddObject("s", "not json")
		require.NoError(t, err)
		obj, _ = d.At(i)
		assert.Equal(t, `{"s":"not json"}`, Compact(obj))

		_, err = d.AddObject("  ", "1")
		require.ErrorIs(t, err, ErrEmptyKey)
	})

	t.Run("copy last is deep", func(t *testing.T) {
		d := mustDocument(t, `[{"a":{"b":1}}]`)
		i := d.CopyLast()
		require.NoError(t, d.Set(i, ParsePath("a.b"), 2.0))
		first, _ := d.At(0)
		assert.Equal(t, `{"a":{"b":1}}`, Compact(first))
	})

	t.Run("delete keeps one object", func(t *testing.T) {
		d := mustDocument(t, `[{"a":1},{"a":2}]`)
		require.NoError(t, d.DeleteObject(0))
		require.ErrorIs(t, d.DeleteObject(0), ErrLastObject)
		require.ErrorIs(t, d.DeleteObject(5), ErrIndex)
		assert.Equal(t, 1, d.Len())
		obj, _ := d.At(0)
		assert.Equal(t, `{"a":2}`, Compact(obj))
	})

	t.Run("delete rows", func(t *testing.T) {
		d := mustDocument(t, `[{"i":0},{"i":1},{"i":2},{"i":3}]`)
		require.ErrorIs(t, d.DeleteRows(nil), ErrNoSelection)
		require.ErrorIs(t, d.DeleteRows([]int{0, 1, 2, 3}), ErrLastObject)
		require.ErrorIs(t, d.DeleteRows([]int{9}), ErrIndex)
		require.NoError(t, d.DeleteRows([]int{3, 1, 1}))
		assert.Equal(t, `[{"i":0},{"i":2}]`, Compact(d.Objects()))
	})

	t.Run("new row mirrors first", func(t *testing.T) {
		d := mustDocument(t, `[{"s":"x","n":3,"b":true,"l":[1],"o":{"k":"v"},"z":null}]`)
		i := d.NewRow()
		obj, _ := d.At(i)
		assert.Equal(t, `{"s":"","n":0,"b":false,"l":[],"o":{"k":""},"z":null}`, Compact(obj))
	})

	t.Run("replace object", func(t *testing.T) {
		d := mustDocument(t, `[{"a":1}]`)
		require.NoError(t, d.ReplaceObject(0, `{"b": [1, 2]}`))
		obj, _ := d.At(0)
		assert.Equal(t, `{"b":[1,2]}`, Compact(obj))

		require.ErrorIs(t, d.ReplaceObject(0, `[1]`), ErrNotObject)
		require.ErrorIs(t, d.ReplaceObject(0, `{"b":`), ErrSyntax)
		obj, _ = d.At(0)
		assert.Equal(t, `{"b":[1,2]}`, Compact(obj))
	})

	t.Run("clone is independent", func(t *testing.T) {
		d := mustDocument(t, `[{"a":[1]}]`)
		c := d.Clone()
		require.NoError(t, c.AppendItem(0, Path{"a"}))
		obj, _ := d.At(0)
		assert.Equal(t, `{"a":[1]}`, Compact(obj))
	})
}

func TestDocument_Properties(t *testing.T) {
	t.Run("add property keywords", func(t *testing.T) {
		d := mustDocument(t, `[{"cfg":{}}]`)
		for key, raw := range map[string]string{"o": "object", "e": "{}", "t": "TRUE", "f": "False", "n": "3.5", "s": "hello"} {
			require.NoError(t, d.AddProperty(0, Path{"cfg"}, key, raw))
		}
		v, _ := d.Get(0, ParsePath("cfg.o"))
		assert.Equal(t, Object{}, v)
		v, _ = d.Get(0, ParsePath("cfg.e"))
		assert.Equal(t, Object{}, v)
		v, _ = d.Get(0, ParsePath("cfg.t"))
		assert.Equal(t, true, v)
		v, _ = d.Get(0, ParsePath("cfg.f"))
		assert.Equal(t, false, v)
		v, _ = d.Get(0, ParsePath("cfg.n"))
		assert.Equal(t, 3.5, v)
		v, _ = d.Get(0, ParsePath("cfg.s"))
		assert.Equal(t, "hello", v)
	})

	t.Run("add property overwrites in place", func(t *testing.T) {
		d := mustDocument(t, `[{"a":1,"b":2}]`)
		require.NoError(t, d.AddProperty(0, nil, "a", "9"))
		obj, _ := d.At(0)
		assert.Equal(t, `{"a":9,"b":2}`, Compact(obj))
	})

	t.Run("add property errors", func(t *testing.T) {
		d := mustDocument(t, `[{"a":1}]`)
		require.ErrorIs(t, d.AddProperty(0, nil, "", "1"), ErrEmptyKey)
		require.ErrorIs(t, d.AddProperty(0, Path{"a"}, "x", "1"), ErrNotContainer)
		require.ErrorIs(t, d.AddProperty(0, Path{"zz"}, "x", "1"), ErrNotFound)
	})

	t.Run("delete and list", func(t *testing.T) {
		d := mustDocument(t, `[{"a":{"b":1,"c":[1,2]},"d":true}]`)
		paths, err := d.Properties(0)
		require.NoError(t, err)
		var got []string
		for _, p := range paths {
			got = append(got, p.String())
		}
		assert.Equal(t, []string{"a", "a.b", "a.c", "d"}, got)

		require.NoError(t, d.DeleteProperty(0, ParsePath("a.b")))
		require.ErrorIs(t, d.DeleteProperty(0, ParsePath("a.b")), ErrNotFound)
		obj, _ := d.At(0)
		assert.Equal(t, `{"a":{"c":[1,2]},"d":true}`, Compact(obj))
	})

	t.Run("array items", func(t *testing.T) {
		d := mustDocument(t, `[{"n":[1],"s":["x"],"e":[],"v":1}]`)
		require.NoError(t, d.AppendItem(0, Path{"n"}))
		require.NoError(t, d.AppendItem(0, Path{"s"}))
		require.NoError(t, d.AppendItem(0, Path{"e"}))
		require.ErrorIs(t, d.AppendItem(0, Path{"v"}), ErrNotContainer)
		require.NoError(t, d.RemoveItem(0, Path{"s"}, 0))
		require.ErrorIs(t, d.RemoveItem(0, Path{"s"}, 4), ErrNotFound)
		obj, _ := d.At(0)
		assert.Equal(t, `{"n":[1,0],"s":[""],"e":[""],"v":1}`, Compact(obj))
	})
}

func TestDocument_SetCell(t *testing.T) {
	d := mustDocument(t, `[{"id":1,"tags":["a"]},{"id":2}]`)

	v, err := d.SetCell(1, ParsePath("meta.owner"), "ops")
	require.NoError(t, err)
	assert.Equal(t, "ops", v)

	v, err = d.SetCell(0, Path{"tags"}, "a, b")
	require.NoError(t, err)
	assert.Equal(t, Array{"a", "b"}, v)

	v, err = d.SetCell(0, Path{"id"}, "10")
	require.NoError(t, err)
	assert.Equal(t, 10.0, v)

	assert.Equal(t, `[{"id":10,"tags":["a","b"]},{"id":2,"meta":{"owner":"ops"}}]`, Compact(d.Objects()))
}

func TestDocument_Sort(t *testing.T) {
	d := mustDocument(t, `[{"n":3,"s":"b"},{"n":null,"s":"a"},{"n":1,"s":"C"},{"s":"d"},{"n":2,"s":"a"}]`)

	ids := func() []string {
		var out []string
		for _, o := range d.Objects() {
			v, _ := o.Get("s")
			out = append(out, v.(string))
		}
		return out
	}

	t.Run("numeric ascending missing last", func(t *testing.T) {
		d.Sort(Path{"n"}, Ascending)
		assert.Equal(t, []string{"C", "a", "b", "a", "d"}, ids())

		var last float64 = -1
		for _, o := range d.Objects()[:3] {
			v, _ := o.Get("n")
			assert.GreaterOrEqual(t, v.(float64), last)
			last = v.(float64)
		}
	})

	t.Run("numeric descending missing last", func(t *testing.T) {
		d.Sort(Path{"n"}, Descending)
		assert.Equal(t, []string{"b", "a", "C", "a", "d"}, ids())
	})

	t.Run("text uses collation and is stable", func(t *testing.T) {
		d.Sort(Path{"s"}, Ascending)
		got := ids()
		assert.Equal(t, []string{"a", "a", "b", "C", "d"}, got)
		first, _ := d.Objects()[0].Get("n")
		assert.Equal(t, 2.0, first)
	})

	t.Run("direction parsing", func(t *testing.T) {
		dir, err := ParseSortDirection("DESC")
		require.NoError(t, err)
		assert.Equal(t, Descending, dir)
		assert.Equal(t, Ascending, dir.Flip())
		assert.Equal(t, "asc", dir.Flip().String())
		_, err = ParseSortDirection("sideways")
		require.Error(t, err)
	})
}

func TestSample(t *testing.T) {
	d := Sample()
	require.Equal(t, 2, d.Len())
	v, err := d.Get(0, Path{"id"})
	require.NoError(t, err)
	assert.Equal(t, "app_001", v)
}
