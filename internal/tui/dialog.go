package tui

import (
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

type dialogKind int

const (
	dialogAddObject dialogKind = iota
	dialogAddProperty
	dialogSaveAs
	dialogConfirmQuit
	dialogConfirmReload
	dialogOpen
	dialogConfirmDeleteObject
	dialogConfirmDeleteRows
	dialogConfirmRemoveItem
	dialogDeleteProperty
)

// pickerRows is how many options a picker shows at once.
const pickerRows = 10

// dialog is a modal prompt of one or more text steps, a list to pick one
// option from, or a yes/no question when it has neither.
type dialog struct {
	kind    dialogKind
	title   string
	prompts []string
	step    int
	values  []string
	input   textinput.Model
	note    string

	options []string
	choice  int
}

func newDialog(kind dialogKind, title string, prompts ...string) *dialog {
	ti := textinput.New()
	ti.Prompt = "> "
	ti.Width = 40
	d := &dialog{kind: kind, title: title, prompts: prompts, input: ti}
	if len(prompts) > 0 {
		d.input.Placeholder = prompts[0]
		d.input.Focus()
	}
	return d
}

// newPicker returns a dialog choosing one of options, starting at choice.
func newPicker(kind dialogKind, title string, options []string, choice int) *dialog {
	d := newDialog(kind, title)
	d.options = options
	d.choice = min(max(choice, 0), len(options)-1)
	return d
}

func (d *dialog) confirm() bool { return len(d.prompts) == 0 && len(d.options) == 0 }

func (d *dialog) picker() bool { return len(d.options) > 0 }

// move shifts the picker choice by delta, stopping at either end.
func (d *dialog) move(delta int) {
	d.choice = min(max(d.choice+delta, 0), len(d.options)-1)
}

// setValue prefills the current step.
func (d *dialog) setValue(s string) {
	d.input.SetValue(s)
	d.input.CursorEnd()
}

// submit records the current step. It reports true once every step has a
// value.
func (d *dialog) submit() bool {
	d.values = append(d.values, d.input.Value())
	d.step++
	if d.step >= len(d.prompts) {
		return true
	}
	d.input.Reset()
	d.input.Placeholder = d.prompts[d.step]
	return false
}

func (d *dialog) update(msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	d.input, cmd = d.input.Update(msg)
	return cmd
}

func (d *dialog) view(st styles, width int) string {
	var sb strings.Builder
	sb.WriteString(st.label.Render(d.title))
	sb.WriteString("\n")
	switch {
	case d.confirm():
		sb.WriteString("y / n")
	case d.picker():
		first := min(max(d.choice-pickerRows/2, 0), max(len(d.options)-pickerRows, 0))
		for i := first; i < len(d.options) && i < first+pickerRows; i++ {
			if i > first {
				sb.WriteString("\n")
			}
			if i == d.choice {
				sb.WriteString(st.focused.Render("> " + d.options[i]))
			} else {
				sb.WriteString("  " + d.options[i])
			}
		}
	default:
		for i := 0; i < d.step; i++ {
			sb.WriteString(st.info.Render(d.prompts[i] + ": " + d.values[i]))
			sb.WriteString("\n")
		}
		sb.WriteString(d.prompts[d.step] + ":\n")
		sb.WriteString(d.input.View())
	}
	if d.note != "" {
		sb.WriteString("\n")
		sb.WriteString(st.info.Render(d.note))
	}
	box := st.dialog.Render(sb.String())
	return lipgloss.PlaceHorizontal(width, lipgloss.Center, box)
}
