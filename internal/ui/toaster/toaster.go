// Package toaster shows a short notification at the bottom of the screen.
package toaster

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/ceald/senhas/internal/ui/overlay"
	"github.com/ceald/senhas/internal/ui/styles"
)

// DefaultDuration is how long a toast stays up when the caller does not say.
const DefaultDuration = 4 * time.Second

// Kind selects the toast's icon and border color.
type Kind int

const (
	KindSuccess Kind = iota
	KindError
	KindInfo
)

// Model holds the toast currently shown, if any.
type Model struct {
	message string
	kind    Kind
	visible bool
	seq     int
}

// New creates a hidden toaster.
func New() Model {
	return Model{}
}

// Show displays message and returns the command that hides it after d.
// A later Show supersedes the pending dismissal of an earlier one.
func (m Model) Show(message string, kind Kind, d time.Duration) (Model, tea.Cmd) {
	if d <= 0 {
		d = DefaultDuration
	}
	m.message = message
	m.kind = kind
	m.visible = true
	m.seq++
	seq := m.seq
	return m, tea.Tick(d, func(time.Time) tea.Msg { return DismissMsg{seq: seq} })
}

// Hide dismisses the toast.
func (m Model) Hide() Model {
	m.visible = false
	m.message = ""
	return m
}

// Visible reports whether a toast is showing.
func (m Model) Visible() bool {
	return m.visible
}

// Message returns the text of the visible toast.
func (m Model) Message() string {
	if !m.visible {
		return ""
	}
	return m.message
}

// Update hides the toast when its own dismissal arrives.
func (m Model) Update(msg tea.Msg) Model {
	if d, ok := msg.(DismissMsg); ok && d.seq == m.seq {
		return m.Hide()
	}
	return m
}

// View renders the toast box.
func (m Model) View() string {
	if !m.visible || m.message == "" {
		return ""
	}

	style := lipgloss.NewStyle().
		Padding(0, 1).
		Border(lipgloss.RoundedBorder())

	switch m.kind {
	case KindError:
		return style.BorderForeground(styles.StatusErrorColor).Render("✗ " + m.message)
	case KindInfo:
		return style.BorderForeground(styles.StatusInfoColor).Render("• " + m.message)
	default:
		return style.BorderForeground(styles.StatusSuccessColor).Render("✓ " + m.message)
	}
}

// Overlay draws the toast near the bottom of bg.
func (m Model) Overlay(bg string, width, height int) string {
	if !m.visible || m.message == "" {
		return bg
	}
	return overlay.Place(overlay.Config{
		Width:    width,
		Height:   height,
		Position: overlay.Bottom,
		PadY:     1,
	}, m.View(), bg)
}

// DismissMsg hides the toast that scheduled it.
type DismissMsg struct {
	seq int
}
