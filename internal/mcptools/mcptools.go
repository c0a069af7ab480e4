// Package mcptools exposes a document being edited to MCP clients.
package mcptools

import (
	"context"
	"fmt"
	"sync"

	"github.com/calumari/jform"
	"github.com/calumari/jform/internal/fileio"
	"github.com/calumari/jform/internal/session"
	"github.com/go-json-experiment/json"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"go.uber.org/zap"
)

const Version = "0.1.0"

type ListObjectsRequest struct{}

type ObjectSummary struct {
	Index int      `json:"index"`
	Keys  []string `json:"keys"`
}

type ListObjectsResponse struct {
	File    string          `json:"file"`
	Count   int             `json:"count"`
	Objects []ObjectSummary `json:"objects"`
}

type GetObjectRequest struct {
	Index int `json:"index"` // Position of the object in the array
}

type SetFieldRequest struct {
	Index int    `json:"index"`
	Path  string `json:"path"`  // Dot-delimited path, '\' escapes a literal dot
	Value string `json:"value"` // Text as typed into the form
	Kind  string `json:"kind"`  // Optional; defaults to the kind of the current value
}

type AddObjectRequest struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

type DeleteObjectRequest struct {
	Index int `json:"index"`
}

type AddPropertyRequest struct {
	Index  int    `json:"index"`
	Parent string `json:"parent"` // Empty for the top level
	Key    string `json:"key"`
	Value  string `json:"value"`
}

type DeletePropertyRequest struct {
	Index int    `json:"index"`
	Path  string `json:"path"`
}

type SortRequest struct {
	Column    string `json:"column"`
	Direction string `json:"direction"` // asc or desc
}

type SaveRequest struct{}

type SaveResponse struct {
	Sink string `json:"sink"`
	Path string `json:"path"`
}

// Tools serves MCP tool calls against one session. Calls are serialized.
type Tools struct {
	mu     sync.Mutex
	sess   *session.Session
	saver  *fileio.Saver
	logger *zap.Logger
}

// New returns Tools operating on sess and saving through saver.
func New(sess *session.Session, saver *fileio.Saver, logger *zap.Logger) *Tools {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Tools{sess: sess, saver: saver, logger: logger}
}

// NewServer creates an MCP server with every document tool registered.
func (t *Tools) NewServer() *server.MCPServer {
	s := server.NewMCPServer(
		"jform",
		Version,
		server.WithToolCapabilities(false),
	)

	s.AddTool(mcp.NewTool("list_objects",
		mcp.WithDescription("List the objects of the document with their top-level keys"),
	), mcp.NewTypedToolHandler(t.listObjects))

	s.AddTool(mcp.NewTool("get_object",
		mcp.WithDescription("Get one object as indented JSON"),
		mcp.WithNumber("index", mcp.Required(), mcp.Description("Zero-based object index")),
	), mcp.NewTypedToolHandler(t.getObject))

	s.AddTool(mcp.NewTool("set_field",
		mcp.WithDescription("Set a field of an object, keeping the field's type"),
		mcp.WithNumber("index", mcp.Required(), mcp.Description("Zero-based object index")),
		mcp.WithString("path", mcp.Required(), mcp.Description("Dot-delimited field path, e.g. configuration.server.port")),
		mcp.WithString("value", mcp.Required(), mcp.Description("New value as text")),
		mcp.WithString("kind", mcp.Description("Type to read the text as: string, number, boolean, null, array, object")),
	), mcp.NewTypedToolHandler(t.setField))

	s.AddTool(mcp.NewTool("add_object",
		mcp.WithDescription("Append an object holding a single property"),
		mcp.WithString("key", mcp.Required(), mcp.Description("Property name")),
		mcp.WithString("value", mcp.Required(), mcp.Description("JSON value, or plain text for a string")),
	), mcp.NewTypedToolHandler(t.addObject))

	s.AddTool(mcp.NewTool("delete_object",
		mcp.WithDescription("Delete an object; the last object cannot be deleted"),
		mcp.WithNumber("index", mcp.Required(), mcp.Description("Zero-based object index")),
	), mcp.NewTypedToolHandler(t.deleteObject))

	s.AddTool(mcp.NewTool("add_property",
		mcp.WithDescription("Add a property to an object or one of its nested objects"),
		mcp.WithNumber("index", mcp.Required(), mcp.Description("Zero-based object index")),
		mcp.WithString("parent", mcp.Description("Path of the nested object; empty for the top level")),
		mcp.WithString("key", mcp.Required(), mcp.Description("Property name")),
		mcp.WithString("value", mcp.Required(), mcp.Description("'object' or {} for an empty object, true/false, JSON, or text")),
	), mcp.NewTypedToolHandler(t.addProperty))

	s.AddTool(mcp.NewTool("delete_property",
		mcp.WithDescription("Delete a property or array item"),
		mcp.WithNumber("index", mcp.Required(), mcp.Description("Zero-based object index")),
		mcp.WithString("path", mcp.Required(), mcp.Description("Dot-delimited path of the property")),
	), mcp.NewTypedToolHandler(t.deleteProperty))

	s.AddTool(mcp.NewTool("sort",
		mcp.WithDescription("Sort the objects by a column; missing values go last"),
		mcp.WithString("column", mcp.Required(), mcp.Description("Dot-delimited column path")),
		mcp.WithString("direction", mcp.Description("asc (default) or desc")),
	), mcp.NewTypedToolHandler(t.sort))

	s.AddTool(mcp.NewTool("save",
		mcp.WithDescription("Write the document back to its file"),
	), mcp.NewTypedToolHandler(t.save))

	return s
}

func textJSON(v any) (*mcp.CallToolResult, error) {
	data, err := json.Marshal(v, json.WithMarshalers(jform.Marshalers()))
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to marshal response: %v", err)), nil
	}
	return mcp.NewToolResultText(string(data)), nil
}

func (t *Tools) listObjects(ctx context.Context, request mcp.CallToolRequest, args ListObjectsRequest) (*mcp.CallToolResult, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	doc := t.sess.Document()
	resp := ListObjectsResponse{File: t.sess.FileName(), Count: doc.Len()}
	for i, obj := range doc.Objects() {
		resp.Objects = append(resp.Objects, ObjectSummary{Index: i, Keys: obj.Keys()})
	}
	return textJSON(resp)
}

func (t *Tools) getObject(ctx context.Context, request mcp.CallToolRequest, args GetObjectRequest) (*mcp.CallToolResult, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	text, err := t.sess.Document().ObjectText(args.Index)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(text), nil
}

func (t *Tools) setField(ctx context.Context, request mcp.CallToolRequest, args SetFieldRequest) (*mcp.CallToolResult, error) {
	if args.Path == "" {
		return mcp.NewToolResultError("path is required"), nil
	}
	t.mu.Lock()
	defer t.mu.Unlock()

	path := jform.ParsePath(args.Path)
	var kind jform.Kind
	if args.Kind != "" {
		k, err := jform.ParseKind(args.Kind)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		kind = k
	} else {
		current, err := t.sess.Document().Get(args.Index, path)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		kind = jform.KindOf(current)
	}

	if err := t.sess.SetIndex(ctx, args.Index); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	v, err := t.sess.EditField(ctx, session.Field{Path: path, Kind: kind}, args.Value)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	t.logger.Info("field set", zap.Int("index", args.Index), zap.String("path", args.Path))
	return mcp.NewToolResultText(jform.Compact(v)), nil
}

func (t *Tools) addObject(ctx context.Context, request mcp.CallToolRequest, args AddObjectRequest) (*mcp.CallToolResult, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if err := t.sess.AddObject(ctx, args.Key, args.Value); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("added object %d", t.sess.Index())), nil
}

func (t *Tools) deleteObject(ctx context.Context, request mcp.CallToolRequest, args DeleteObjectRequest) (*mcp.CallToolResult, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if err := t.sess.SetIndex(ctx, args.Index); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if err := t.sess.DeleteCurrent(ctx); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("deleted object %d, %d remaining", args.Index, t.sess.Len())), nil
}

func (t *Tools) addProperty(ctx context.Context, request mcp.CallToolRequest, args AddPropertyRequest) (*mcp.CallToolResult, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if err := t.sess.SetIndex(ctx, args.Index); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if err := t.sess.AddProperty(ctx, jform.ParsePath(args.Parent), args.Key, args.Value); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(jform.Compact(t.sess.Current())), nil
}

func (t *Tools) deleteProperty(ctx context.Context, request mcp.CallToolRequest, args DeletePropertyRequest) (*mcp.CallToolResult, error) {
	if args.Path == "" {
		return mcp.NewToolResultError("path is required"), nil
	}
	t.mu.Lock()
	defer t.mu.Unlock()

	if err := t.sess.SetIndex(ctx, args.Index); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if err := t.sess.DeleteProperty(ctx, jform.ParsePath(args.Path)); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(jform.Compact(t.sess.Current())), nil
}

func (t *Tools) sort(ctx context.Context, request mcp.CallToolRequest, args SortRequest) (*mcp.CallToolResult, error) {
	if args.Column == "" {
		return mcp.NewToolResultError("column is required"), nil
	}
	dir, err := jform.ParseSortDirection(args.Direction)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	t.mu.Lock()
	defer t.mu.Unlock()

	col := jform.ParsePath(args.Column)
	t.sess.ToggleSort(ctx, col)
	if _, cur := t.sess.SortState(); cur != dir {
		t.sess.ToggleSort(ctx, col)
	}
	return mcp.NewToolResultText(fmt.Sprintf("sorted by %s %s", args.Column, dir)), nil
}

func (t *Tools) save(ctx context.Context, request mcp.CallToolRequest, args SaveRequest) (*mcp.CallToolResult, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	data, err := t.sess.Document().Marshal()
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	res, err := t.saver.Save(ctx, t.sess.FileName(), data)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to save: %v", err)), nil
	}
	t.sess.MarkSaved(ctx, res.Path)
	return textJSON(SaveResponse{Sink: res.Sink.String(), Path: res.Path})
}
