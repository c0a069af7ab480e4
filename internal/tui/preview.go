package tui

import (
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
)

func (m *Model) focusPreview() tea.Cmd {
	m.previewFocused = true
	m.raw.SetValue(m.sess.PreviewText())
	m.raw.CursorStart()
	return m.raw.Focus()
}

// leavePreview applies a valid pending edit at once and drops an invalid
// one.
func (m *Model) leavePreview() {
	m.previewFocused = false
	m.raw.Blur()
	pending, err := m.sess.PreviewPending()
	if !pending {
		return
	}
	if err != nil {
		m.sess.DiscardPreview()
		m.setError(err)
		return
	}
	if _, err := m.sess.CommitPreview(m.ctx, m.previewGen); err != nil {
		m.setError(err)
		return
	}
	m.setStatus("raw edit applied")
}

func (m *Model) handlePreviewKey(msg tea.KeyMsg) tea.Cmd {
	switch {
	case key.Matches(msg, m.keys.cancel):
		m.leavePreview()
		return nil
	case key.Matches(msg, m.keys.save):
		m.leavePreview()
		return m.startSave()
	case msg.Type == tea.KeyCtrlC:
		m.leavePreview()
		return m.requestQuit()
	}

	before := m.raw.Value()
	var cmd tea.Cmd
	m.raw, cmd = m.raw.Update(msg)
	if m.raw.Value() == before {
		return cmd
	}
	gen, _ := m.sess.EditPreview(m.raw.Value())
	m.previewGen = gen
	return tea.Batch(cmd, commitAfter(m.debounce, gen))
}

func commitAfter(d time.Duration, gen uint64) tea.Cmd {
	return tea.Tick(d, func(time.Time) tea.Msg {
		return previewCommitMsg{gen: gen}
	})
}

// previewContent is the raw JSON pane: highlighted when idle, an editor
// while focused.
func (m Model) previewContent(width, height int) string {
	title := m.st.label.Render("Raw JSON")
	if pending, err := m.sess.PreviewPending(); pending {
		if err != nil {
			title += "  " + m.st.invalid.Render("INVALID JSON")
		} else {
			title += "  " + m.st.valid.Render("valid, applying…")
		}
	}
	if m.previewFocused {
		return title + "\n" + m.raw.View()
	}

	lines := strings.Split(m.hl.Highlight(m.sess.PreviewText()), "\n")
	if len(lines) > height-1 {
		lines = append(lines[:max(height-2, 0)], m.st.info.Render("…"))
	}
	return title + "\n" + strings.Join(lines, "\n")
}
