// Package dialog renders blocking notices: a bordered box with a title, a
// few wrapped paragraphs, and a dismissal hint.
package dialog

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/wordwrap"

	"github.com/ceald/senhas/internal/ui/overlay"
	"github.com/ceald/senhas/internal/ui/styles"
)

const (
	minWidth = 30
	maxWidth = 56
)

// Kind selects the border and title color.
type Kind int

const (
	KindInfo Kind = iota
	KindSuccess
	KindError
)

// Dialog is the content of one notice.
type Dialog struct {
	Kind  Kind
	Title string
	Body  []string
	// Emphasis is shown large and bold between the title and the body,
	// e.g. the attendance number.
	Emphasis string
	Hint     string
}

// Render draws the dialog for a screen width columns wide.
func (d Dialog) Render(width int) string {
	inner := min(max(width-8, minWidth), maxWidth)

	border := styles.BorderDefaultColor
	title := styles.TitleStyle
	switch d.Kind {
	case KindSuccess:
		border = styles.StatusSuccessColor
		title = title.Foreground(styles.StatusSuccessColor)
	case KindError:
		border = styles.StatusErrorColor
		title = title.Foreground(styles.StatusErrorColor)
	}

	var parts []string
	if d.Title != "" {
		parts = append(parts, title.Render(wordwrap.String(d.Title, inner)))
	}
	if d.Emphasis != "" {
		parts = append(parts, "", lipgloss.NewStyle().Bold(true).Render(d.Emphasis))
	}
	for _, p := range d.Body {
		parts = append(parts, "", wordwrap.String(p, inner))
	}
	if d.Hint != "" {
		parts = append(parts, "", styles.HintStyle.Render(d.Hint))
	}

	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(border).
		Padding(1, 2).
		Width(inner + 4).
		Render(strings.Join(parts, "\n"))
}

// Overlay centers the dialog over bg.
func (d Dialog) Overlay(bg string, width, height int) string {
	return overlay.Place(overlay.Config{Width: width, Height: height}, d.Render(width), bg)
}
