// Package tui is the terminal editor: a form for one object at a time, a
// table of every object, and a raw JSON preview of the current object.
package tui

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/calumari/jform"
	"github.com/calumari/jform/internal/fileio"
	"github.com/calumari/jform/internal/highlight"
	"github.com/calumari/jform/internal/logging"
	"github.com/calumari/jform/internal/session"
	"github.com/calumari/jform/internal/watch"
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const defaultDebounce = 500 * time.Millisecond

// History records snapshots of saved and reloaded documents.
type History interface {
	AddSnapshot(ctx context.Context, file, reason string, doc []byte) (uuid.UUID, error)
}

type (
	previewCommitMsg struct{ gen uint64 }
	fileChangedMsg   watch.Event
	saveAsRequestMsg struct{ suggested string }
	savedMsg         struct {
		result fileio.Result
		err    error
		data   []byte
	}
	downloadedMsg struct {
		result fileio.Result
		err    error
	}
)

// savePrompt connects a running save to the save-as dialog.
type savePrompt struct {
	requests chan string
	replies  chan saveAsReply
}

type saveAsReply struct {
	path string
	err  error
}

// Option configures a Model.
type Option func(*Model)

// WithHighlighter sets the preview highlighter.
func WithHighlighter(h *highlight.Highlighter) Option {
	return func(m *Model) { m.hl = h }
}

// WithSaver sets the save chain. The save-as step is always the in-app
// prompt.
func WithSaver(s *fileio.Saver) Option {
	return func(m *Model) { m.saver = s }
}

// WithWatcher reports external changes to the opened file.
func WithWatcher(w *watch.Watcher) Option {
	return func(m *Model) { m.watcher = w }
}

// WithHistory records a snapshot after every save and reload.
func WithHistory(h History) Option {
	return func(m *Model) { m.history = h }
}

// WithDebounce sets the delay before raw edits are applied.
func WithDebounce(d time.Duration) Option {
	return func(m *Model) { m.debounce = d }
}

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(m *Model) { m.logger = logging.OrNop(l) }
}

// Model is the bubbletea model of the editor.
type Model struct {
	ctx      context.Context
	sess     *session.Session
	keys     keyMap
	st       styles
	hl       *highlight.Highlighter
	saver    *fileio.Saver
	watcher  *watch.Watcher
	history  History
	debounce time.Duration
	logger   *zap.Logger

	width  int
	height int

	// form
	focus     int
	offset    int
	editing   bool
	editor    textinput.Model
	editField session.Field

	// table
	row       int
	col       int
	rowOffset int
	colOffset int

	// preview
	previewFocused bool
	previewGen     uint64
	raw            textarea.Model

	dialog       *dialog
	dialogParent jform.Path
	dialogTarget jform.Path
	dialogPaths  []jform.Path
	saving       *savePrompt

	showHelp bool
	helpView viewport.Model
	help     help.Model

	status    string
	statusErr bool
}

// New returns an editor for sess. ctx bounds store and file operations.
func New(ctx context.Context, sess *session.Session, opts ...Option) Model {
	editor := textinput.New()
	editor.Prompt = ""

	raw := textarea.New()
	raw.ShowLineNumbers = false
	raw.CharLimit = 0
	raw.MaxHeight = 0

	m := Model{
		ctx:      ctx,
		sess:     sess,
		keys:     newKeyMap(),
		st:       newStyles(),
		debounce: defaultDebounce,
		logger:   zap.NewNop(),
		width:    80,
		height:   24,
		editor:   editor,
		raw:      raw,
		helpView: viewport.New(80, 20),
		help:     help.New(),
	}
	for _, opt := range opts {
		opt(&m)
	}
	if m.hl == nil {
		m.hl = highlight.New("")
	}
	if m.saver == nil {
		m.saver = &fileio.Saver{Logger: m.logger}
	}
	if sess.Mode() == session.ModeTable {
		m.row = sess.Index()
	}
	m.resize()
	return m
}

// Init starts listening for external file changes.
func (m Model) Init() tea.Cmd {
	return waitForChange(m.watcher)
}

func waitForChange(w *watch.Watcher) tea.Cmd {
	if w == nil {
		return nil
	}
	return func() tea.Msg {
		ev, ok := <-w.Events()
		if !ok {
			return nil
		}
		return fileChangedMsg(ev)
	}
}

func waitSaveAs(sp *savePrompt) tea.Cmd {
	return func() tea.Msg {
		suggested, ok := <-sp.requests
		if !ok {
			return nil
		}
		return saveAsRequestMsg{suggested: suggested}
	}
}

// Update handles messages.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.resize()
		return m, nil

	case previewCommitMsg:
		changed, err := m.sess.CommitPreview(m.ctx, msg.gen)
		if err != nil {
			m.setError(err)
		} else if changed {
			m.setStatus("raw edit applied")
		}
		return m, nil

	case fileChangedMsg:
		// The watcher stays on the file given at launch.
		if !samePath(msg.Path, m.sess.FileName()) {
			return m, waitForChange(m.watcher)
		}
		m.setStatus(fmt.Sprintf("%s changed on disk (%s), ctrl+r to reload", m.sess.DisplayName(), msg.Op))
		return m, waitForChange(m.watcher)

	case saveAsRequestMsg:
		d := newDialog(dialogSaveAs, "Save as", "path")
		d.setValue(msg.suggested)
		d.note = "esc cancels without saving"
		m.dialog = d
		return m, textinput.Blink

	case savedMsg:
		m.finishSave(msg)
		return m, nil

	case downloadedMsg:
		if msg.err != nil {
			m.setError(fmt.Errorf("download failed: %w", msg.err))
		} else {
			m.setStatus("downloaded to " + msg.result.Path)
		}
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	// Cursor blinks and other internal messages.
	var cmd tea.Cmd
	switch {
	case m.dialog != nil:
		cmd = m.dialog.update(msg)
	case m.previewFocused:
		m.raw, cmd = m.raw.Update(msg)
	case m.editing:
		m.editor, cmd = m.editor.Update(msg)
	}
	return m, cmd
}

func (m *Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.dialog != nil {
		return *m, m.handleDialogKey(msg)
	}
	if m.showHelp {
		if key.Matches(msg, m.keys.help, m.keys.cancel) {
			m.showHelp = false
			return *m, nil
		}
		var cmd tea.Cmd
		m.helpView, cmd = m.helpView.Update(msg)
		return *m, cmd
	}
	if m.previewFocused {
		return *m, m.handlePreviewKey(msg)
	}
	if m.editing {
		if m.sess.Mode() == session.ModeTable {
			return *m, m.handleCellEditKey(msg)
		}
		return *m, m.handleFieldEditKey(msg)
	}

	switch {
	case key.Matches(msg, m.keys.quit):
		return *m, m.requestQuit()
	case key.Matches(msg, m.keys.save):
		return *m, m.startSave()
	case key.Matches(msg, m.keys.download):
		return *m, m.startDownload()
	case key.Matches(msg, m.keys.open):
		d := newDialog(dialogOpen, "Open file", "path")
		d.setValue(m.sess.FileName())
		if m.sess.Dirty() {
			d.note = "unsaved changes are discarded"
		}
		m.dialog = d
		return *m, textinput.Blink
	case key.Matches(msg, m.keys.reload):
		m.requestReload()
		return *m, nil
	case key.Matches(msg, m.keys.help):
		m.showHelp = true
		m.helpView.SetContent(renderHelp(m.width, m.logger))
		m.helpView.GotoTop()
		return *m, nil
	case key.Matches(msg, m.keys.tableView):
		m.switchMode(session.ModeTable)
		return *m, nil
	case key.Matches(msg, m.keys.formView):
		m.switchMode(session.ModeForm)
		return *m, nil
	case key.Matches(msg, m.keys.addObject):
		m.dialog = newDialog(dialogAddObject, "New object", "key", "value")
		return *m, textinput.Blink
	}

	if m.sess.Mode() == session.ModeTable {
		return *m, m.handleTableKey(msg)
	}
	return *m, m.handleFormKey(msg)
}

func (m *Model) switchMode(mode session.Mode) {
	if m.sess.Mode() == mode {
		return
	}
	if mode == session.ModeForm && m.row < m.sess.Len() {
		if err := m.sess.SetIndex(m.ctx, m.row); err != nil {
			m.setError(err)
		}
	}
	m.sess.SwitchMode(m.ctx, mode)
	if mode == session.ModeTable {
		m.row = m.sess.Index()
		m.rowOffset = 0
	} else {
		m.focus = 0
		m.offset = 0
	}
	m.setStatus(string(mode) + " view")
}

func (m *Model) requestQuit() tea.Cmd {
	if m.sess.Dirty() {
		m.dialog = newDialog(dialogConfirmQuit, "Quit without saving?")
		return nil
	}
	return tea.Quit
}

func (m *Model) requestReload() {
	if m.sess.FileName() == "" {
		m.setError(errors.New("no file to reload"))
		return
	}
	if m.sess.Dirty() {
		m.dialog = newDialog(dialogConfirmReload, "Reload and discard unsaved changes?")
		return
	}
	m.reload()
}

// open replaces the document with the file at path. A file that is not an
// array of objects is rejected and the current document stays.
func (m *Model) open(path string) {
	if err := m.sess.Open(m.ctx, path); err != nil {
		m.setError(err)
		return
	}
	m.focus, m.offset = 0, 0
	m.row, m.col, m.rowOffset, m.colOffset = 0, 0, 0, 0
	m.record("open")
	m.setStatus("opened " + m.sess.DisplayName())
}

func samePath(a, b string) bool {
	if a == "" || b == "" {
		return false
	}
	absA, errA := filepath.Abs(a)
	absB, errB := filepath.Abs(b)
	return errA == nil && errB == nil && absA == absB
}

func (m *Model) reload() {
	if err := m.sess.Reload(m.ctx); err != nil {
		m.setError(err)
		return
	}
	m.focus, m.offset = 0, 0
	m.row, m.col, m.rowOffset, m.colOffset = 0, 0, 0, 0
	m.record("reload")
	m.setStatus("reloaded " + m.sess.DisplayName())
}

// record stores a snapshot of the document in the history.
func (m *Model) record(reason string) {
	if m.history == nil {
		return
	}
	data, err := m.sess.Document().Marshal()
	if err != nil {
		m.logger.Error("marshal snapshot", zap.Error(err))
		return
	}
	m.snapshot(reason, data)
}

func (m *Model) snapshot(reason string, data []byte) {
	if m.history == nil {
		return
	}
	if _, err := m.history.AddSnapshot(m.ctx, m.sess.FileName(), reason, data); err != nil {
		m.logger.Warn("record snapshot", zap.String("reason", reason), zap.Error(err))
	}
}

// startSave runs the save chain off the update loop. The document is
// encoded first so the session is never touched concurrently.
func (m *Model) startSave() tea.Cmd {
	if m.saving != nil {
		return nil
	}
	data, err := m.sess.Document().Marshal()
	if err != nil {
		m.setError(err)
		return nil
	}

	sp := &savePrompt{requests: make(chan string), replies: make(chan saveAsReply, 1)}
	m.saving = sp
	saver := *m.saver
	saver.SaveAs = func(ctx context.Context, suggested string) (string, error) {
		select {
		case sp.requests <- suggested:
		case <-ctx.Done():
			return "", ctx.Err()
		}
		select {
		case r := <-sp.replies:
			return r.path, r.err
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}
	if m.watcher != nil {
		m.watcher.Suppress(time.Second)
	}

	ctx, name := m.ctx, m.sess.FileName()
	save := func() tea.Msg {
		defer close(sp.requests)
		res, err := saver.Save(ctx, name, data)
		return savedMsg{result: res, err: err, data: data}
	}
	m.setStatus("saving…")
	return tea.Batch(save, waitSaveAs(sp))
}

// startDownload writes a copy into the downloads folder. The document stays
// bound to its file and keeps its modified state.
func (m *Model) startDownload() tea.Cmd {
	data, err := m.sess.Document().Marshal()
	if err != nil {
		m.setError(err)
		return nil
	}
	saver, name := m.saver, m.sess.FileName()
	return func() tea.Msg {
		res, err := saver.Download(name, data)
		return downloadedMsg{result: res, err: err}
	}
}

func (m *Model) finishSave(msg savedMsg) {
	m.saving = nil
	switch {
	case errors.Is(msg.err, fileio.ErrCancelled):
		m.setStatus("save cancelled")
		return
	case msg.err != nil:
		m.setError(fmt.Errorf("save failed: %w", msg.err))
		return
	}

	name := msg.result.Path
	if msg.result.Sink == fileio.SinkDownload {
		// A download is a copy; keep editing the original file.
		name = ""
	}
	m.sess.MarkSaved(m.ctx, name)
	m.snapshot("save", msg.data)
	m.setStatus(fmt.Sprintf("saved to %s (%s)", msg.result.Path, msg.result.Sink))
}

func (m *Model) handleDialogKey(msg tea.KeyMsg) tea.Cmd {
	d := m.dialog
	if d.confirm() {
		switch msg.String() {
		case "y", "Y", "enter":
			m.dialog = nil
			switch d.kind {
			case dialogConfirmQuit:
				return tea.Quit
			case dialogConfirmReload:
				m.reload()
			case dialogConfirmDeleteObject:
				m.deleteCurrent()
			case dialogConfirmDeleteRows:
				m.deleteRows()
			case dialogConfirmRemoveItem:
				m.removeItem(m.dialogTarget)
			}
		case "n", "N", "esc", "ctrl+c":
			m.dialog = nil
		}
		return nil
	}

	if d.picker() {
		switch {
		case key.Matches(msg, m.keys.up):
			d.move(-1)
		case key.Matches(msg, m.keys.down):
			d.move(1)
		case msg.Type == tea.KeyEnter:
			m.dialog = nil
			if d.kind == dialogDeleteProperty {
				m.deleteProperty(m.dialogPaths[d.choice])
			}
		case msg.Type == tea.KeyEsc, msg.Type == tea.KeyCtrlC:
			m.dialog = nil
		}
		return nil
	}

	switch msg.Type {
	case tea.KeyEsc, tea.KeyCtrlC:
		m.dialog = nil
		if d.kind == dialogSaveAs && m.saving != nil {
			m.saving.replies <- saveAsReply{err: fileio.ErrCancelled}
		}
		return nil
	case tea.KeyEnter:
		if !d.submit() {
			return nil
		}
		m.dialog = nil
		m.completeDialog(d)
		return nil
	}
	return d.update(msg)
}

func (m *Model) completeDialog(d *dialog) {
	switch d.kind {
	case dialogAddObject:
		if err := m.sess.AddObject(m.ctx, d.values[0], d.values[1]); err != nil {
			m.setError(err)
			return
		}
		m.focus, m.offset = 0, 0
		m.row = m.sess.Index()
		m.setStatus(fmt.Sprintf("added object %d", m.sess.Index()+1))

	case dialogAddProperty:
		if err := m.sess.AddProperty(m.ctx, m.dialogParent, d.values[0], d.values[1]); err != nil {
			m.setError(err)
			return
		}
		m.setStatus("added " + m.dialogParent.Child(strings.TrimSpace(d.values[0])).String())

	case dialogOpen:
		if path := strings.TrimSpace(d.values[0]); path != "" {
			m.open(path)
		}

	case dialogSaveAs:
		if m.saving == nil {
			return
		}
		path := strings.TrimSpace(d.values[0])
		if path == "" {
			m.saving.replies <- saveAsReply{err: fileio.ErrCancelled}
			return
		}
		m.saving.replies <- saveAsReply{path: path}
	}
}

func (m *Model) setStatus(s string) {
	m.status, m.statusErr = s, false
}

func (m *Model) setError(err error) {
	m.status, m.statusErr = err.Error(), true
	m.logger.Debug("user facing error", zap.Error(err))
}

// resize lays the panes out for the terminal size.
func (m *Model) resize() {
	bodyH := m.bodyHeight()
	_, previewW := m.paneWidths()
	m.raw.SetWidth(max(previewW-2, 10))
	m.raw.SetHeight(max(bodyH-3, 3))
	m.helpView.Width = m.width
	m.helpView.Height = bodyH
	m.help.Width = m.width
	m.editor.Width = max(m.width/2-10, 10)
}

// bodyHeight leaves room for the header, status and key help lines.
func (m *Model) bodyHeight() int {
	return max(m.height-3, 5)
}

func (m *Model) paneWidths() (form, preview int) {
	form = m.width / 2
	return form, m.width - form
}

// View renders the editor.
func (m Model) View() string {
	var body string
	switch {
	case m.showHelp:
		body = m.helpView.View()
	case m.dialog != nil:
		body = lipgloss.Place(m.width, m.bodyHeight(), lipgloss.Center, lipgloss.Center, m.dialog.view(m.st, m.width))
	case m.sess.Mode() == session.ModeTable:
		body = m.tableView()
	default:
		body = m.formView()
	}

	bindings := m.keys.formHelp()
	if m.sess.Mode() == session.ModeTable {
		bindings = m.keys.tableHelp()
	}
	return lipgloss.JoinVertical(lipgloss.Left,
		m.headerView(),
		body,
		m.statusView(),
		m.help.ShortHelpView(bindings),
	)
}

func (m Model) headerView() string {
	parts := []string{
		highlight.Title("jform"),
		m.st.label.Render(m.sess.DisplayName()),
	}
	if m.sess.Mode() == session.ModeTable {
		parts = append(parts, m.st.info.Render(fmt.Sprintf("%d objects", m.sess.Len())))
	} else {
		parts = append(parts, m.st.info.Render(fmt.Sprintf("Object %d / %d", m.sess.Index()+1, m.sess.Len())))
	}
	parts = append(parts, m.st.info.Render("["+string(m.sess.Mode())+"]"))
	if m.sess.Dirty() {
		parts = append(parts, m.st.dirty.Render("● modified"))
	}
	return m.st.header.Render(strings.Join(parts, "  "))
}

func (m Model) statusView() string {
	s := truncate(m.status, m.width-2)
	if m.statusErr {
		return m.st.err.Render(s)
	}
	return m.st.status.Render(s)
}
