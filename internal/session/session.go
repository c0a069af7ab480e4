// Package session owns the state of one editing session: the document, the
// object being viewed, the view mode and the per-view state, and mirrors it
// to a persistent store after every change.
package session

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/calumari/jform"
	"github.com/calumari/jform/internal/logging"
	"github.com/calumari/jform/internal/store"
	"go.uber.org/zap"
)

// Mode selects the form or table view.
type Mode string

const (
	ModeForm  Mode = "form"
	ModeTable Mode = "table"
)

// ParseMode accepts "form" and "table"; anything else is the form view.
func ParseMode(s string) Mode {
	if Mode(s) == ModeTable {
		return ModeTable
	}
	return ModeForm
}

// Mirror persists session state. Errors are logged, never surfaced as
// failures of the edit that triggered them.
type Mirror interface {
	SaveState(ctx context.Context, st store.State) error
}

// Session is the single owner of a document while it is edited. It is not
// safe for concurrent use.
type Session struct {
	doc       *jform.Document
	name      string
	index     int
	mode      Mode
	collapsed map[string]bool
	selected  map[int]bool
	sortCol   jform.Path
	sortDir   jform.SortDirection
	dirty     bool
	preview   preview
	mirror    Mirror
	logger    *zap.Logger
}

// Option configures a Session.
type Option func(*Session)

// WithMirror mirrors every change to m.
func WithMirror(m Mirror) Option {
	return func(s *Session) { s.mirror = m }
}

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(s *Session) { s.logger = logging.OrNop(l) }
}

// New starts a session on doc. name is the file the document came from, or
// empty when it has none.
func New(doc *jform.Document, name string, opts ...Option) *Session {
	s := &Session{
		doc:       doc,
		name:      name,
		mode:      ModeForm,
		collapsed: make(map[string]bool),
		selected:  make(map[int]bool),
		logger:    zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Document returns the document being edited.
func (s *Session) Document() *jform.Document { return s.doc }

// FileName returns the path the document was loaded from.
func (s *Session) FileName() string { return s.name }

// SetFileName records a new origin, e.g. after a save-as.
func (s *Session) SetFileName(ctx context.Context, name string) {
	s.name = name
	s.sync(ctx)
}

// Index returns the position of the current object.
func (s *Session) Index() int { return s.index }

// Len returns the number of objects.
func (s *Session) Len() int { return s.doc.Len() }

// Mode returns the active view.
func (s *Session) Mode() Mode { return s.mode }

// Dirty reports unsaved changes.
func (s *Session) Dirty() bool { return s.dirty }

// Current returns the object being viewed.
func (s *Session) Current() jform.Object {
	obj, _ := s.doc.At(s.index)
	return obj
}

// Open loads the file at path. On failure the session keeps its document.
func (s *Session) Open(ctx context.Context, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}
	return s.Load(ctx, path, data)
}

// Load replaces the document with the one encoded in data. On failure the
// session keeps its document and view state.
func (s *Session) Load(ctx context.Context, name string, data []byte) error {
	doc, err := jform.ParseDocument(data)
	if err != nil {
		return err
	}
	s.replace(doc, name)
	s.dirty = false
	s.logger.Info("document loaded", zap.String("file", name), zap.Int("objects", doc.Len()))
	s.sync(ctx)
	return nil
}

// Reload re-reads the current file.
func (s *Session) Reload(ctx context.Context) error {
	if s.name == "" {
		return errors.New("no file to reload")
	}
	keep := s.index
	if err := s.Open(ctx, s.name); err != nil {
		return err
	}
	if keep < s.doc.Len() {
		s.index = keep
		s.sync(ctx)
	}
	return nil
}

func (s *Session) replace(doc *jform.Document, name string) {
	s.doc = doc
	s.name = name
	s.index = 0
	s.collapsed = make(map[string]bool)
	s.selected = make(map[int]bool)
	s.sortCol = nil
	s.sortDir = jform.Ascending
	s.resetPreview()
}

// Restore resumes a mirrored session.
func (s *Session) Restore(ctx context.Context, st store.State) error {
	doc, err := jform.ParseDocument(st.Document)
	if err != nil {
		return fmt.Errorf("restore: %w", err)
	}
	s.replace(doc, st.File)
	if st.Index >= 0 && st.Index < doc.Len() {
		s.index = st.Index
	}
	s.mode = ParseMode(st.Mode)
	if st.SortColumn != "" {
		s.sortCol = jform.ParsePath(st.SortColumn)
		if st.SortDesc {
			s.sortDir = jform.Descending
		}
	}
	s.logger.Info("session restored", zap.String("file", st.File), zap.Int("index", s.index))
	return nil
}

// State captures what the mirror stores.
func (s *Session) State() (store.State, error) {
	data, err := s.doc.Marshal()
	if err != nil {
		return store.State{}, err
	}
	st := store.State{
		Document: data,
		Index:    s.index,
		Mode:     string(s.mode),
		File:     s.name,
		SortDesc: s.sortDir == jform.Descending,
	}
	if s.sortCol != nil {
		st.SortColumn = s.sortCol.String()
	}
	return st, nil
}

// sync mirrors the current state. Failures are logged only.
func (s *Session) sync(ctx context.Context) {
	if s.mirror == nil {
		return
	}
	st, err := s.State()
	if err != nil {
		s.logger.Error("snapshot session", zap.Error(err))
		return
	}
	if err := s.mirror.SaveState(ctx, st); err != nil {
		s.logger.Warn("mirror session", zap.Error(err))
	}
}

// changed marks the document modified and mirrors it.
func (s *Session) changed(ctx context.Context) {
	s.dirty = true
	s.resetPreview()
	s.sync(ctx)
}

// MarkSaved clears the dirty flag after a successful save to name.
func (s *Session) MarkSaved(ctx context.Context, name string) {
	s.dirty = false
	if name != "" {
		s.name = name
	}
	s.sync(ctx)
}

// DisplayName is the base name of the file, or a placeholder.
func (s *Session) DisplayName() string {
	if s.name == "" {
		return "untitled"
	}
	return filepath.Base(s.name)
}

// Navigate moves delta objects forward or back, wrapping at both ends.
func (s *Session) Navigate(ctx context.Context, delta int) {
	n := s.doc.Len()
	s.index = ((s.index+delta)%n + n) % n
	s.resetPreview()
	s.sync(ctx)
}

// SetIndex jumps to object i.
func (s *Session) SetIndex(ctx context.Context, i int) error {
	if _, err := s.doc.At(i); err != nil {
		return err
	}
	s.index = i
	s.resetPreview()
	s.sync(ctx)
	return nil
}

// SwitchMode changes the view. Entering the table clears the row selection.
func (s *Session) SwitchMode(ctx context.Context, m Mode) {
	if s.mode == m {
		return
	}
	s.mode = m
	if m == ModeTable {
		s.selected = make(map[int]bool)
	}
	s.sync(ctx)
}

// ToggleCollapse folds or unfolds the section at path.
func (s *Session) ToggleCollapse(path jform.Path) {
	key := path.String()
	if s.collapsed[key] {
		delete(s.collapsed, key)
		return
	}
	s.collapsed[key] = true
}

// IsCollapsed reports whether the section at path is folded.
func (s *Session) IsCollapsed(path jform.Path) bool {
	return s.collapsed[path.String()]
}

// AddObject appends {key: raw} and shows it.
func (s *Session) AddObject(ctx context.Context, key, raw string) error {
	i, err := s.doc.AddObject(key, raw)
	if err != nil {
		return err
	}
	s.index = i
	s.changed(ctx)
	return nil
}

// CopyLast appends a copy of the last object and shows it.
func (s *Session) CopyLast(ctx context.Context) {
	s.index = s.doc.CopyLast()
	s.changed(ctx)
}

// DeleteCurrent removes the current object. The last object cannot be
// removed.
func (s *Session) DeleteCurrent(ctx context.Context) error {
	if err := s.doc.DeleteObject(s.index); err != nil {
		return err
	}
	if s.index >= s.doc.Len() {
		s.index = s.doc.Len() - 1
	}
	s.changed(ctx)
	return nil
}

// AddProperty adds key under parent in the current object.
func (s *Session) AddProperty(ctx context.Context, parent jform.Path, key, raw string) error {
	if err := s.doc.AddProperty(s.index, parent, key, raw); err != nil {
		return err
	}
	s.changed(ctx)
	return nil
}

// DeleteProperty removes the property at path from the current object.
func (s *Session) DeleteProperty(ctx context.Context, path jform.Path) error {
	if err := s.doc.DeleteProperty(s.index, path); err != nil {
		return err
	}
	delete(s.collapsed, path.String())
	s.changed(ctx)
	return nil
}

// Properties lists the key paths of the current object.
func (s *Session) Properties() []jform.Path {
	paths, _ := s.doc.Properties(s.index)
	return paths
}

// AppendItem adds an item to the primitive array at path.
func (s *Session) AppendItem(ctx context.Context, path jform.Path) error {
	if err := s.doc.AppendItem(s.index, path); err != nil {
		return err
	}
	s.changed(ctx)
	return nil
}

// RemoveItem removes item k of the array at path.
func (s *Session) RemoveItem(ctx context.Context, path jform.Path, k int) error {
	if err := s.doc.RemoveItem(s.index, path, k); err != nil {
		return err
	}
	s.changed(ctx)
	return nil
}
