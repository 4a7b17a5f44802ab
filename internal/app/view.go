package app

import (
	"github.com/charmbracelet/lipgloss"
	zone "github.com/lrstanley/bubblezone"

	"github.com/ceald/senhas/internal/log"
	"github.com/ceald/senhas/internal/ui/dialog"
	"github.com/ceald/senhas/internal/ui/markdown"
	"github.com/ceald/senhas/internal/ui/styles"
)

// User-facing text.
const (
	ClosedTitle      = "Horário Encerrado"
	ClosedText       = "O intervalo para a retirada de senhas se encerrou. Por favor, volte em outro horário."
	RecheckHint      = "r para verificar novamente"
	ReloadedText     = "Configuração recarregada"
	ReloadFailedText = "Configuração inválida, mantendo a anterior"
)

// noticeWidth is the wrap width of the closed notice.
const noticeWidth = 52

func (m Model) newNoticeRenderer() *markdown.Renderer {
	width := noticeWidth
	if m.width > 0 {
		width = min(noticeWidth, m.width-10)
	}
	r, err := markdown.New(width, m.markdownStyle)
	if err != nil {
		log.ErrorErr(log.CatConfig, "markdown renderer unavailable, using plain notice", err, "style", m.markdownStyle)
		return nil
	}
	return r
}

// View implements tea.Model.
func (m Model) View() string {
	var view string
	switch {
	case !m.known:
		view = ""
	case m.status.Open:
		view = m.form.View()
	default:
		view = m.closedView()
	}

	if m.toaster.Visible() {
		view = m.toaster.Overlay(view, m.width, m.height)
	}
	if m.debug && m.logs.Visible() {
		view = m.logs.Overlay(view)
	}
	return zone.Scan(view)
}

func (m Model) closedView() string {
	width, height := m.width, m.height

	notice := m.renderNotice()
	if width == 0 || height == 0 {
		return notice
	}
	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, notice)
}

// renderNotice prefers the markdown rendering and falls back to a plain
// dialog when no renderer could be built.
func (m Model) renderNotice() string {
	notice := m.notice
	if notice == nil {
		notice = m.newNoticeRenderer()
	}
	if notice != nil {
		body, err := notice.Notice(ClosedTitle, ClosedText)
		if err == nil {
			return styles.CardStyle.Render(body + "\n\n" + styles.HintStyle.Render(RecheckHint))
		}
		log.ErrorErr(log.CatConfig, "rendering closed notice", err)
	}
	return dialog.Dialog{
		Kind:  dialog.KindInfo,
		Title: ClosedTitle,
		Body:  []string{ClosedText},
		Hint:  RecheckHint,
	}.Render(m.width)
}
