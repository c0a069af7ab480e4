package mcptools

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/calumari/jform"
	"github.com/calumari/jform/internal/fileio"
	"github.com/calumari/jform/internal/session"
	"github.com/go-json-experiment/json"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const doc = `[
  {"name": "beta", "port": 80, "tags": ["a"], "server": {"host": "x"}},
  {"name": "alpha", "port": 8080}
]`

func newTools(t *testing.T) (*Tools, string) {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "data.json")
	require.NoError(t, os.WriteFile(path, []byte(doc), 0o644))

	d, err := fileio.Load(path)
	require.NoError(t, err)
	sess := session.New(d, path)
	saver := &fileio.Saver{DownloadsDir: filepath.Join(dir, "downloads")}
	return New(sess, saver, nil), path
}

func call[T any](t *testing.T, name string, handler func(context.Context, mcp.CallToolRequest, T) (*mcp.CallToolResult, error), args T) (string, bool) {
	t.Helper()
	request := mcp.CallToolRequest{
		Request: mcp.Request{Method: "tools/call"},
		Params:  mcp.CallToolParams{Name: name, Arguments: args},
	}
	result, err := handler(context.Background(), request, args)
	require.NoError(t, err)
	require.NotNil(t, result)
	require.Len(t, result.Content, 1)
	text, ok := result.Content[0].(mcp.TextContent)
	require.True(t, ok)
	return text.Text, result.IsError
}

func TestNewServer(t *testing.T) {
	tools, _ := newTools(t)
	require.NotNil(t, tools.NewServer())
}

func TestListObjects(t *testing.T) {
	tools, path := newTools(t)

	text, isErr := call(t, "list_objects", tools.listObjects, ListObjectsRequest{})
	require.False(t, isErr)

	var resp ListObjectsResponse
	require.NoError(t, json.Unmarshal([]byte(text), &resp))
	assert.Equal(t, path, resp.File)
	assert.Equal(t, 2, resp.Count)
	require.Len(t, resp.Objects, 2)
	assert.Equal(t, []string{"name", "port", "tags", "server"}, resp.Objects[0].Keys)
	assert.Equal(t, 1, resp.Objects[1].Index)
}

func TestGetObject(t *testing.T) {
	tools, _ := newTools(t)

	t.Run("in range", func(t *testing.T) {
		text, isErr := call(t, "get_object", tools.getObject, GetObjectRequest{Index: 1})
		require.False(t, isErr)
		obj, err := jform.ParseObject([]byte(text))
		require.NoError(t, err)
		v, _ := obj.Get("name")
		assert.Equal(t, "alpha", v)
	})

	t.Run("out of range", func(t *testing.T) {
		_, isErr := call(t, "get_object", tools.getObject, GetObjectRequest{Index: 5})
		assert.True(t, isErr)
	})
}

func TestSetField(t *testing.T) {
	t.Run("keeps the current kind", func(t *testing.T) {
		tools, _ := newTools(t)
		text, isErr := call(t, "set_field", tools.setField, SetFieldRequest{Index: 0, Path: "port", Value: "443abc"})
		require.False(t, isErr)
		assert.Equal(t, "443", text)

		v, err := tools.sess.Document().Get(0, jform.Path{"port"})
		require.NoError(t, err)
		assert.Equal(t, 443.0, v)
		assert.True(t, tools.sess.Dirty())
	})

	t.Run("nested path", func(t *testing.T) {
		tools, _ := newTools(t)
		_, isErr := call(t, "set_field", tools.setField, SetFieldRequest{Index: 0, Path: "server.host", Value: "y"})
		require.False(t, isErr)
		v, err := tools.sess.Document().Get(0, jform.Path{"server", "host"})
		require.NoError(t, err)
		assert.Equal(t, "y", v)
	})

	t.Run("explicit kind", func(t *testing.T) {
		tools, _ := newTools(t)
		text, isErr := call(t, "set_field", tools.setField, SetFieldRequest{Index: 1, Path: "name", Value: "TRUE", Kind: "boolean"})
		require.False(t, isErr)
		assert.Equal(t, "true", text)
	})

	t.Run("validation", func(t *testing.T) {
		tools, _ := newTools(t)
		_, isErr := call(t, "set_field", tools.setField, SetFieldRequest{Index: 0, Value: "x"})
		assert.True(t, isErr)
		_, isErr = call(t, "set_field", tools.setField, SetFieldRequest{Index: 0, Path: "missing", Value: "x"})
		assert.True(t, isErr)
		_, isErr = call(t, "set_field", tools.setField, SetFieldRequest{Index: 0, Path: "port", Value: "1", Kind: "date"})
		assert.True(t, isErr)
		assert.False(t, tools.sess.Dirty())
	})
}

func TestObjectTools(t *testing.T) {
	tools, _ := newTools(t)

	_, isErr := call(t, "add_object", tools.addObject, AddObjectRequest{Key: "name", Value: "gamma"})
	require.False(t, isErr)
	assert.Equal(t, 3, tools.sess.Len())

	_, isErr = call(t, "delete_object", tools.deleteObject, DeleteObjectRequest{Index: 0})
	require.False(t, isErr)
	_, isErr = call(t, "delete_object", tools.deleteObject, DeleteObjectRequest{Index: 0})
	require.False(t, isErr)
	require.Equal(t, 1, tools.sess.Len())

	text, isErr := call(t, "delete_object", tools.deleteObject, DeleteObjectRequest{Index: 0})
	assert.True(t, isErr)
	assert.NotEmpty(t, text)
	assert.Equal(t, 1, tools.sess.Len())
}

func TestPropertyTools(t *testing.T) {
	tools, _ := newTools(t)

	text, isErr := call(t, "add_property", tools.addProperty, AddPropertyRequest{Index: 0, Parent: "server", Key: "tls", Value: "true"})
	require.False(t, isErr)
	assert.Contains(t, text, `"tls":true`)

	_, isErr = call(t, "add_property", tools.addProperty, AddPropertyRequest{Index: 0, Parent: "name", Key: "first", Value: "dup"})
	assert.True(t, isErr)

	text, isErr = call(t, "delete_property", tools.deleteProperty, DeletePropertyRequest{Index: 0, Path: "server.host"})
	require.False(t, isErr)
	assert.NotContains(t, text, `"host"`)
}

func TestSort(t *testing.T) {
	tools, _ := newTools(t)

	_, isErr := call(t, "sort", tools.sort, SortRequest{Column: "port", Direction: "desc"})
	require.False(t, isErr)
	v, err := tools.sess.Document().Get(0, jform.Path{"port"})
	require.NoError(t, err)
	assert.Equal(t, 8080.0, v)

	_, isErr = call(t, "sort", tools.sort, SortRequest{Column: "name"})
	require.False(t, isErr)
	v, err = tools.sess.Document().Get(0, jform.Path{"name"})
	require.NoError(t, err)
	assert.Equal(t, "alpha", v)

	_, isErr = call(t, "sort", tools.sort, SortRequest{Column: "name", Direction: "sideways"})
	assert.True(t, isErr)
}

func TestSave(t *testing.T) {
	tools, path := newTools(t)

	_, isErr := call(t, "set_field", tools.setField, SetFieldRequest{Index: 1, Path: "name", Value: "omega"})
	require.False(t, isErr)

	text, isErr := call(t, "save", tools.save, SaveRequest{})
	require.False(t, isErr)

	var resp SaveResponse
	require.NoError(t, json.Unmarshal([]byte(text), &resp))
	assert.Equal(t, "direct", resp.Sink)
	assert.Equal(t, path, resp.Path)
	assert.False(t, tools.sess.Dirty())

	saved, err := fileio.Load(path)
	require.NoError(t, err)
	v, err := saved.Get(1, jform.Path{"name"})
	require.NoError(t, err)
	assert.Equal(t, "omega", v)
}
