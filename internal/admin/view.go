package admin

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/ceald/senhas/internal/keys"
	"github.com/ceald/senhas/internal/ui/styles"
)

// View renders the password prompt or the guest list.
func (m Model) View() string {
	if !m.unlocked {
		return m.place(m.passwordView())
	}

	header := lipgloss.JoinHorizontal(lipgloss.Top,
		styles.TitleStyle.Render(ListTitle),
		"  ",
		styles.StatusBarStyle.Render(m.status()),
	)
	body := strings.Join([]string{
		header,
		"",
		m.table.View(),
		"",
		m.help.View(keys.Admin),
	}, "\n")

	if m.width == 0 || m.height == 0 {
		return m.toaster.Overlay(body, lipgloss.Width(body), lipgloss.Height(body))
	}
	screen := lipgloss.NewStyle().Padding(1, 2).Render(body)
	return m.toaster.Overlay(screen, m.width, m.height)
}

func (m Model) status() string {
	switch {
	case m.loading:
		return RefreshingText
	case m.exporting:
		return ExportingText
	default:
		return fmt.Sprintf("%d assistidos", len(m.guests))
	}
}

func (m Model) passwordView() string {
	rows := []string{
		styles.TitleStyle.Render(PasswordTitle),
		"",
		styles.FocusedInputStyle.Render(m.password.View()),
	}
	if m.authErr != "" {
		rows = append(rows, styles.ErrorStyle.Render(m.authErr))
	}
	hint := "Enter para entrar • Esc para sair"
	if m.authenticating {
		hint = "Verificando..."
	}
	rows = append(rows, "", styles.HintStyle.Render(hint))
	return styles.CardStyle.Render(strings.Join(rows, "\n"))
}

func (m Model) place(content string) string {
	if m.width == 0 || m.height == 0 {
		return content
	}
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, content)
}
