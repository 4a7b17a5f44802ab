package dialog

import (
	"strings"
	"testing"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
	"github.com/stretchr/testify/require"
)

func TestRender_Content(t *testing.T) {
	out := ansi.Strip(Dialog{
		Kind:     KindSuccess,
		Title:    "Senha retirada com sucesso!",
		Emphasis: "Sua senha é: 7",
		Body:     []string{"Tenha um ótimo atendimento!"},
		Hint:     "Enter para continuar",
	}.Render(80))

	require.Contains(t, out, "Senha retirada com sucesso!")
	require.Contains(t, out, "Sua senha é: 7")
	require.Contains(t, out, "Tenha um ótimo atendimento!")
	require.Contains(t, out, "Enter para continuar")
}

func TestRender_WidthIsClamped(t *testing.T) {
	long := strings.Repeat("palavra ", 40)

	wide := Dialog{Body: []string{long}}.Render(200)
	require.LessOrEqual(t, lipgloss.Width(wide), maxWidth+4+2)

	narrow := Dialog{Body: []string{long}}.Render(10)
	require.GreaterOrEqual(t, lipgloss.Width(narrow), minWidth)
}

func TestOverlay_Centers(t *testing.T) {
	bg := strings.Repeat(strings.Repeat(" ", 80)+"\n", 23) + strings.Repeat(" ", 80)

	out := Dialog{Title: "Erro"}.Overlay(bg, 80, 24)

	lines := strings.Split(out, "\n")
	require.Len(t, lines, 24)
	require.NotContains(t, lines[0], "Erro")
	require.Contains(t, out, "Erro")
}
