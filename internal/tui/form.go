package tui

import (
	"errors"
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/calumari/jform"
	"github.com/calumari/jform/internal/session"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"
)

func (m *Model) focusedField(fields []session.Field) (session.Field, bool) {
	if len(fields) == 0 {
		return session.Field{}, false
	}
	m.focus = min(max(m.focus, 0), len(fields)-1)
	return fields[m.focus], true
}

// containerOf returns the object a new property goes into when f is
// focused: the section itself, or the object holding the field.
func containerOf(f session.Field, ok bool) jform.Path {
	if !ok {
		return nil
	}
	switch f.Type {
	case session.FieldSection:
		return f.Path
	case session.FieldItem:
		return f.Path.Parent().Parent()
	default:
		return f.Path.Parent()
	}
}

func (m *Model) handleFormKey(msg tea.KeyMsg) tea.Cmd {
	fields := m.sess.Fields()
	f, ok := m.focusedField(fields)

	switch {
	case key.Matches(msg, m.keys.prevObject):
		m.sess.Navigate(m.ctx, -1)
		m.focus, m.offset = 0, 0
	case key.Matches(msg, m.keys.nextObject):
		m.sess.Navigate(m.ctx, 1)
		m.focus, m.offset = 0, 0
	case key.Matches(msg, m.keys.up):
		if m.focus > 0 {
			m.focus--
		}
	case key.Matches(msg, m.keys.down):
		if m.focus < len(fields)-1 {
			m.focus++
		}
	case key.Matches(msg, m.keys.collapse):
		if ok && f.Type == session.FieldSection {
			m.sess.ToggleCollapse(f.Path)
		}
	case key.Matches(msg, m.keys.edit):
		if !ok {
			return nil
		}
		switch f.Type {
		case session.FieldSection:
			m.sess.ToggleCollapse(f.Path)
		case session.FieldArray:
			if err := m.sess.AppendItem(m.ctx, f.Path); err != nil {
				m.setError(err)
			}
		default:
			return m.startFieldEdit(f)
		}
	case key.Matches(msg, m.keys.addProperty):
		m.dialogParent = containerOf(f, ok)
		where := "root"
		if len(m.dialogParent) > 0 {
			where = m.dialogParent.String()
		}
		d := newDialog(dialogAddProperty, "Add property to "+where, "key", "value")
		d.note = `value: "object" or {} for a nested object, true/false, JSON, or text`
		m.dialog = d
		return textinput.Blink
	case key.Matches(msg, m.keys.delProperty):
		if ok && f.Type == session.FieldItem {
			m.dialogTarget = f.Path
			m.dialog = newDialog(dialogConfirmRemoveItem, fmt.Sprintf("Remove item %s?", f.Path))
			return nil
		}
		m.openDeletePicker(f, ok)
	case key.Matches(msg, m.keys.delObject):
		m.dialog = newDialog(dialogConfirmDeleteObject,
			fmt.Sprintf("Delete object %d of %d?", m.sess.Index()+1, m.sess.Len()))
	case key.Matches(msg, m.keys.copyLast):
		m.sess.CopyLast(m.ctx)
		m.focus, m.offset = 0, 0
		m.setStatus(fmt.Sprintf("copied to object %d", m.sess.Index()+1))
	case key.Matches(msg, m.keys.preview):
		return m.focusPreview()
	}
	m.offset = follow(m.focus, m.offset, m.bodyHeight()-2)
	return nil
}

// openDeletePicker lists every property of the current object, starting at
// the focused field.
func (m *Model) openDeletePicker(f session.Field, ok bool) {
	paths := m.sess.Properties()
	if len(paths) == 0 {
		m.setError(errors.New("the object has no properties"))
		return
	}
	choice := 0
	if ok {
		choice = max(slices.IndexFunc(paths, f.Path.Equal), 0)
	}
	options := make([]string, len(paths))
	for i, p := range paths {
		options[i] = p.String()
	}
	m.dialogPaths = paths
	d := newPicker(dialogDeleteProperty, "Delete property", options, choice)
	d.note = "enter deletes, esc cancels"
	m.dialog = d
}

func (m *Model) deleteProperty(path jform.Path) {
	if err := m.sess.DeleteProperty(m.ctx, path); err != nil {
		m.setError(err)
		return
	}
	m.setStatus("deleted " + path.String())
}

// removeItem removes the primitive array item addressed by path.
func (m *Model) removeItem(path jform.Path) {
	k, err := strconv.Atoi(path.Last())
	if err == nil {
		err = m.sess.RemoveItem(m.ctx, path.Parent(), k)
	}
	if err != nil {
		m.setError(err)
		return
	}
	m.setStatus("removed " + path.String())
}

func (m *Model) deleteCurrent() {
	if err := m.sess.DeleteCurrent(m.ctx); err != nil {
		m.setError(err)
		return
	}
	m.focus, m.offset = 0, 0
	m.setStatus("object deleted")
}

// follow returns the first visible line so pos stays inside a window of
// height lines.
func follow(pos, offset, height int) int {
	if height < 1 {
		height = 1
	}
	if pos < offset {
		return pos
	}
	if pos >= offset+height {
		return pos - height + 1
	}
	return offset
}

func (m *Model) startFieldEdit(f session.Field) tea.Cmd {
	m.editing = true
	m.editField = f
	m.editor.SetValue(f.Text)
	m.editor.CursorEnd()
	return m.editor.Focus()
}

func (m *Model) stopEditing() {
	m.editing = false
	m.editor.Blur()
	m.editor.Reset()
}

func (m *Model) handleFieldEditKey(msg tea.KeyMsg) tea.Cmd {
	switch msg.Type {
	case tea.KeyEsc:
		m.stopEditing()
		return nil
	case tea.KeyEnter:
		v, err := m.sess.EditField(m.ctx, m.editField, m.editor.Value())
		m.stopEditing()
		if err != nil {
			m.setError(err)
			return nil
		}
		m.setStatus(fmt.Sprintf("%s = %s", m.editField.Path, jform.Compact(v)))
		return nil
	}
	var cmd tea.Cmd
	m.editor, cmd = m.editor.Update(msg)
	return cmd
}

// formView renders the form and the preview side by side.
func (m Model) formView() string {
	formW, previewW := m.paneWidths()
	h := m.bodyHeight()

	formPane := m.st.activePane
	previewPane := m.st.pane
	if m.previewFocused {
		formPane, previewPane = m.st.pane, m.st.activePane
	}
	left := formPane.Width(formW - 2).Height(h - 2).Render(m.formLines(formW-2, h-2))
	right := previewPane.Width(previewW - 2).Height(h - 2).Render(m.previewContent(previewW-2, h-2))
	return lipgloss.JoinHorizontal(lipgloss.Top, left, right)
}

func (m Model) formLines(width, height int) string {
	fields := m.sess.Fields()
	if len(fields) == 0 {
		return m.st.empty.Render("{empty object}  a adds a property")
	}
	focus := min(max(m.focus, 0), len(fields)-1)
	offset := follow(focus, min(m.offset, focus), height)

	var lines []string
	for i := offset; i < len(fields) && len(lines) < height; i++ {
		lines = append(lines, m.fieldLine(fields[i], i == focus, width))
	}
	return strings.Join(lines, "\n")
}

func (m Model) fieldLine(f session.Field, focused bool, width int) string {
	indent := strings.Repeat("  ", f.Depth)

	if focused && m.editing {
		prefix := indent + f.Label + ": "
		if f.Type == session.FieldItem {
			prefix = indent + "- "
		}
		return truncate(prefix, width/2) + m.editor.View()
	}

	var label, text string
	switch f.Type {
	case session.FieldSection:
		marker := "▾ "
		if f.Collapsed {
			marker = "▸ "
		}
		label = indent + marker + f.Label
		if f.Empty && !f.Collapsed {
			text = " {empty object}"
		}
	case session.FieldArray:
		label = indent + f.Label
		v, _ := f.Path.Get(m.sess.Current())
		arr, _ := v.(jform.Array)
		text = fmt.Sprintf(" [%d items]", len(arr))
	case session.FieldItem:
		label = indent + "- "
		text = firstLine(f.Text)
	default:
		label = indent + f.Label + ": "
		text = firstLine(f.Text)
	}

	if focused {
		return m.st.focused.Render(pad(label+text, width))
	}

	label = truncate(label, width)
	text = truncate(text, width-runewidth.StringWidth(label))
	switch f.Type {
	case session.FieldSection:
		return m.st.section(f.Depth).Render(label) + m.st.empty.Render(text)
	case session.FieldArray:
		return m.st.label.Render(label) + m.st.info.Render(text)
	case session.FieldItem:
		return m.st.info.Render(label) + text
	default:
		return m.st.label.Render(label) + text
	}
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i] + " …"
	}
	return s
}
