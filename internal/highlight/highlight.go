// Package highlight colours JSON text for the terminal preview and provides
// the palette used for nested form sections.
package highlight

import (
	"strings"

	"github.com/alecthomas/chroma/v2"
	"github.com/alecthomas/chroma/v2/lexers"
	"github.com/alecthomas/chroma/v2/styles"
	"github.com/charmbracelet/lipgloss"
)

const defaultStyleName = "monokai"

// Highlighter renders JSON with a chroma style.
type Highlighter struct {
	lexer chroma.Lexer
	style *chroma.Style
	cache map[chroma.TokenType]lipgloss.Style
}

// New returns a Highlighter using the named chroma style, falling back to
// the default for unknown names.
func New(styleName string) *Highlighter {
	if styleName == "" {
		styleName = defaultStyleName
	}
	lexer := lexers.Get("json")
	if lexer == nil {
		lexer = lexers.Fallback
	}
	return &Highlighter{
		lexer: chroma.Coalesce(lexer),
		style: styles.Get(styleName),
		cache: make(map[chroma.TokenType]lipgloss.Style),
	}
}

// Highlight returns text with ANSI colours applied per token. Text that
// cannot be tokenised is returned unchanged.
func (h *Highlighter) Highlight(text string) string {
	tokens, err := chroma.Tokenise(h.lexer, nil, text)
	if err != nil {
		return text
	}

	var (
		sb      strings.Builder
		indent  int
		atStart = true
	)
	for _, tok := range tokens {
		if tok.Type == chroma.EOFType {
			break
		}
		st := h.tokenStyle(tok.Type)
		if tok.Type == chroma.NameTag {
			// Keys take the colour of their nesting level, counted from the
			// members of the root object.
			st = st.Foreground(DepthColor(indent/2 - 1))
		}
		indent, atStart = trackIndent(tok.Value, indent, atStart)
		// Styling across a newline would pad the rendered block; colour each
		// line fragment separately.
		for i, part := range strings.Split(tok.Value, "\n") {
			if i > 0 {
				sb.WriteByte('\n')
			}
			if part != "" {
				sb.WriteString(st.Render(part))
			}
		}
	}
	return sb.String()
}

// trackIndent advances the indentation of the current line past text.
func trackIndent(text string, indent int, atStart bool) (int, bool) {
	for _, r := range text {
		switch {
		case r == '\n':
			indent, atStart = 0, true
		case r == ' ' && atStart:
			indent++
		default:
			atStart = false
		}
	}
	return indent, atStart
}

func (h *Highlighter) tokenStyle(tt chroma.TokenType) lipgloss.Style {
	if st, ok := h.cache[tt]; ok {
		return st
	}
	entry := h.style.Get(tt)
	st := lipgloss.NewStyle()
	if entry.Colour.IsSet() {
		st = st.Foreground(lipgloss.Color(entry.Colour.String()))
	}
	if entry.Bold == chroma.Yes {
		st = st.Bold(true)
	}
	if entry.Italic == chroma.Yes {
		st = st.Italic(true)
	}
	if entry.Underline == chroma.Yes {
		st = st.Underline(true)
	}
	h.cache[tt] = st
	return st
}

// Palette colours nested sections by depth, as bracket-pair colourisation
// does in editors.
var Palette = []lipgloss.AdaptiveColor{
	{Light: "#0431FA", Dark: "#FFD700"},
	{Light: "#319331", Dark: "#DA70D6"},
	{Light: "#9E5300", Dark: "#00BFFF"},
	{Light: "#7B3814", Dark: "#FFA500"},
	{Light: "#B52E31", Dark: "#00FA9A"},
	{Light: "#7F3E96", Dark: "#FF1493"},
	{Light: "#0078D4", Dark: "#64B5F6"},
}

// DepthColor returns the palette colour for a nesting depth.
func DepthColor(depth int) lipgloss.AdaptiveColor {
	if depth < 0 {
		depth = 0
	}
	return Palette[depth%len(Palette)]
}

// TitleColors cycles over the letters of the application title.
var TitleColors = []lipgloss.Color{"#64B5F6", "#81C784", "#F48FB1", "#E57373", "#FFB74D"}

// Title colours each non-space rune of s in turn.
func Title(s string) string {
	var sb strings.Builder
	for i, r := range []rune(s) {
		if r == ' ' {
			sb.WriteRune(r)
			continue
		}
		sb.WriteString(lipgloss.NewStyle().Bold(true).Foreground(TitleColors[i%len(TitleColors)]).Render(string(r)))
	}
	return sb.String()
}
