package jform

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
)

func TestFlatten(t *testing.T) {
	obj := parse(t, `{"id":1,"cfg":{"host":"h","ports":[1,2],"empty":{}},"n":null}`).(Object)

	got := Flatten(obj)
	want := []Field{
		{Path: Path{"id"}, Value: 1.0},
		{Path: Path{"cfg", "host"}, Value: "h"},
		{Path: Path{"cfg", "ports"}, Value: Array{1.0, 2.0}},
		{Path: Path{"cfg", "empty"}, Value: Object{}},
		{Path: Path{"n"}, Value: nil},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Flatten mismatch (-want +got):\n%s", diff)
	}
}

func TestUnflatten(t *testing.T) {
	t.Run("inverts flatten", func(t *testing.T) {
		docs := []string{
			`{}`,
			`{"a":1}`,
			`{"a":{"b":{"c":[1,{"d":2}]}},"e":{},"f":null,"g":"x"}`,
			`{"a.b":{"c\\d":true},"z":[]}`,
		}
		for _, doc := range docs {
			obj := parse(t, doc).(Object)
			if diff := cmp.Diff(obj, Unflatten(Flatten(obj))); diff != "" {
				t.Errorf("%s: round trip mismatch (-want +got):\n%s", doc, diff)
			}
		}
	})

	t.Run("copies values", func(t *testing.T) {
		arr := Array{"a"}
		obj := Unflatten([]Field{{Path: Path{"x"}, Value: arr}})
		arr[0] = "changed"
		assert.Equal(t, `{"x":["a"]}`, Compact(obj))
	})

	t.Run("skips the root path", func(t *testing.T) {
		obj := Unflatten([]Field{{Path: Path{}, Value: 1.0}, {Path: Path{"k"}, Value: 2.0}})
		assert.Equal(t, `{"k":2}`, Compact(obj))
	})
}

func TestColumns(t *testing.T) {
	objs := []Object{
		parse(t, `{"id":1,"meta":{"a":1}}`).(Object),
		parse(t, `{"id":2,"extra":true,"meta":{"b":2},"blank":{}}`).(Object),
	}
	var got []string
	for _, c := range Columns(objs) {
		got = append(got, c.String())
	}
	assert.Equal(t, []string{"id", "meta.a", "extra", "meta.b"}, got)
}
