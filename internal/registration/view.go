package registration

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	zone "github.com/lrstanley/bubblezone"

	"github.com/ceald/senhas/internal/ui/dialog"
	"github.com/ceald/senhas/internal/ui/styles"
)

// User-facing text.
const (
	Title            = "CEALD"
	NameLabel        = "Insira seu nome completo:"
	PhoneLabel       = "Número de celular (com DDD):"
	SubmitText       = "Retire sua senha"
	SubmittingText   = "Gerando..."
	SlowNetworkText  = "A conexão está lenta, aguarde um instante..."
	SuccessTitle     = "Senha retirada com sucesso!"
	SuccessReminder  = "Por gentileza, lembre-se de sua senha. Tenha um ótimo atendimento!"
	ErrorTitle       = "Erro"
	DuplicatePhone   = "O número de celular deve ser único por consulente."
	CapacityTitle    = "Limite de senhas atingido"
	CapacityText     = "Todas as senhas de hoje já foram distribuídas. Por favor, volte em outro dia."
	GenericErrorText = "Erro ao gerar senha. Tente novamente."
	DismissHint      = "Enter ou Esc para fechar"
)

// View renders the form, centered, with the outcome dialog on top.
func (m Model) View() string {
	form := m.renderForm()

	width, height := m.width, m.height
	if width == 0 || height == 0 {
		width, height = lipgloss.Width(form), lipgloss.Height(form)
	}
	screen := lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, form)

	if d, ok := m.outcomeDialog(); ok {
		return d.Overlay(screen, width, height)
	}
	return screen
}

func (m Model) renderForm() string {
	var rows []string
	rows = append(rows, styles.TitleStyle.Render(Title), "")
	rows = append(rows, m.renderField(fieldName, NameLabel)...)
	if m.policy.RequirePhone {
		rows = append(rows, "")
		rows = append(rows, m.renderField(fieldPhone, PhoneLabel)...)
	}
	rows = append(rows, "", zone.Mark(m.submitZone, m.renderButton()))

	if m.slow {
		rows = append(rows, "", styles.WarnStyle.Render(SlowNetworkText))
	}
	if m.invalid != "" {
		rows = append(rows, "", styles.ErrorStyle.Render(string(m.invalid)))
	}

	return styles.CardStyle.Render(strings.Join(rows, "\n"))
}

func (m Model) renderField(i int, label string) []string {
	labelStyle, boxStyle := styles.LabelStyle, styles.InputStyle
	if m.focus == i && m.state == Idle {
		labelStyle, boxStyle = styles.FocusedLabelStyle, styles.FocusedInputStyle
	}
	return []string{
		labelStyle.Render(label),
		boxStyle.Width(m.inputs[i].Width + 2).Render(m.inputs[i].View()),
	}
}

func (m Model) renderButton() string {
	if m.state == Submitting {
		return styles.DisabledButtonStyle.Render(m.spinner.View() + " " + SubmittingText)
	}
	if m.focus == m.buttonIndex() {
		return styles.PrimaryButtonFocusedStyle.Render(SubmitText)
	}
	return styles.PrimaryButtonStyle.Render(SubmitText)
}

// ButtonText is the label the submit button currently shows.
func (m Model) ButtonText() string {
	if m.state == Submitting {
		return SubmittingText
	}
	return SubmitText
}

func (m Model) outcomeDialog() (dialog.Dialog, bool) {
	switch m.outcome.Kind {
	case OutcomeSuccess:
		return dialog.Dialog{
			Kind:     dialog.KindSuccess,
			Title:    SuccessTitle,
			Emphasis: fmt.Sprintf("Sua senha é: %d", m.outcome.Position),
			Body:     []string{SuccessReminder},
			Hint:     DismissHint,
		}, true
	case OutcomeDuplicatePhone:
		return dialog.Dialog{Kind: dialog.KindError, Title: ErrorTitle, Body: []string{DuplicatePhone}, Hint: DismissHint}, true
	case OutcomeCapacityExceeded:
		return dialog.Dialog{Kind: dialog.KindError, Title: CapacityTitle, Body: []string{CapacityText}, Hint: DismissHint}, true
	case OutcomeGenericError:
		return dialog.Dialog{Kind: dialog.KindError, Title: ErrorTitle, Body: []string{GenericErrorText}, Hint: DismissHint}, true
	default:
		return dialog.Dialog{}, false
	}
}
