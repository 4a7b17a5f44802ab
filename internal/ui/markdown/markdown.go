// Package markdown renders short markdown notices for the terminal.
package markdown

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/glamour"
)

// noMarginStyle drops glamour's document margins so notices can be boxed.
const noMarginStyle = `{
	"document": {
		"margin": 0,
		"block_prefix": "",
		"block_suffix": ""
	}
}`

// Renderer wraps a glamour renderer with a fixed wrap width.
type Renderer struct {
	renderer *glamour.TermRenderer
	width    int
}

// New creates a renderer. style is a glamour style name ("dark", "light",
// "notty"); empty means "dark". Auto detection is avoided because it queries
// the terminal and the answer leaks into the input stream.
func New(width int, style string) (*Renderer, error) {
	if style == "" {
		style = "dark"
	}
	if width < 10 {
		width = 10
	}

	r, err := glamour.NewTermRenderer(
		glamour.WithStylePath(style),
		glamour.WithStylesFromJSONBytes([]byte(noMarginStyle)),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return nil, fmt.Errorf("creating markdown renderer: %w", err)
	}
	return &Renderer{renderer: r, width: width}, nil
}

// Width returns the wrap width.
func (r *Renderer) Width() int {
	return r.width
}

// Render transforms markdown to styled terminal output.
func (r *Renderer) Render(md string) (string, error) {
	return r.renderer.Render(md)
}

// Notice renders a heading followed by body paragraphs.
func (r *Renderer) Notice(title string, paragraphs ...string) (string, error) {
	var b strings.Builder
	b.WriteString("# ")
	b.WriteString(title)
	for _, p := range paragraphs {
		b.WriteString("\n\n")
		b.WriteString(p)
	}
	out, err := r.Render(b.String())
	if err != nil {
		return "", err
	}
	return strings.Trim(out, "\n"), nil
}
