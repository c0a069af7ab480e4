package tui

import (
	"github.com/charmbracelet/glamour"
	"go.uber.org/zap"
)

const helpMarkdown = `# jform

Edit a JSON array of objects one object at a time, or all at once as a table.

## Form

| Key | Action |
|---|---|
| ← / → | previous / next object (wraps) |
| ↑ / ↓ | move between fields |
| enter | edit field, toggle a section, add an array item |
| space | fold or unfold a section |
| a | add a property to the focused object |
| d | delete a property (picker starts at the focused one), or the focused item |
| D | delete the current object (asks first) |
| n | new object |
| c | copy the last object |
| p | edit the raw JSON of the object |

Edits keep the field's type: a number stays a number, a boolean stays a boolean.

## Table

| Key | Action |
|---|---|
| arrows | move between cells |
| enter | edit cell |
| tab / shift+tab | commit and move to the next / previous cell |
| s | sort by the focused column, again to reverse |
| x / X | select row / all rows |
| N | new row shaped like the first |
| delete | delete selected rows (asks first) |

## Everywhere

| Key | Action |
|---|---|
| t / f | table / form view |
| ctrl+s | save |
| ctrl+d | download a copy into the downloads folder |
| o | open another file |
| ctrl+r | reload from disk |
| ? | toggle this help |
| q | quit |
`

// renderHelp renders the key reference for width columns. Rendering errors
// fall back to the markdown source.
func renderHelp(width int, logger *zap.Logger) string {
	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(max(width-4, 20)),
	)
	if err != nil {
		logger.Warn("create help renderer", zap.Error(err))
		return helpMarkdown
	}
	out, err := r.Render(helpMarkdown)
	if err != nil {
		logger.Warn("render help", zap.Error(err))
		return helpMarkdown
	}
	return out
}
