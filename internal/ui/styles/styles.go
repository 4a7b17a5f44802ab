// Package styles contains Lip Gloss style definitions shared by the kiosk and
// admin screens.
package styles

import "github.com/charmbracelet/lipgloss"

var (
	// Text hierarchy
	TextPrimaryColor     = lipgloss.AdaptiveColor{Light: "#27272A", Dark: "#E4E4E7"} // zinc-800 / zinc-200
	TextSecondaryColor   = lipgloss.AdaptiveColor{Light: "#3F3F46", Dark: "#D4D4D8"} // labels
	TextMutedColor       = lipgloss.AdaptiveColor{Light: "#A1A1AA", Dark: "#71717A"} // hints, footers
	TextPlaceholderColor = lipgloss.AdaptiveColor{Light: "#A1A1AA", Dark: "#777777"}

	// Borders
	BorderDefaultColor = lipgloss.AdaptiveColor{Light: "#D4D4D8", Dark: "#52525B"}
	BorderFocusColor   = lipgloss.AdaptiveColor{Light: "#3B82F6", Dark: "#60A5FA"}

	// Status
	StatusSuccessColor = lipgloss.AdaptiveColor{Light: "#16A34A", Dark: "#73F59F"}
	StatusWarningColor = lipgloss.AdaptiveColor{Light: "#CA8A04", Dark: "#FECA57"}
	StatusErrorColor   = lipgloss.AdaptiveColor{Light: "#DC2626", Dark: "#FF8787"}
	StatusInfoColor    = lipgloss.AdaptiveColor{Light: "#2563EB", Dark: "#54A0FF"}

	// Buttons
	ButtonTextColor         = lipgloss.AdaptiveColor{Light: "#FFFFFF", Dark: "#FFFFFF"}
	ButtonPrimaryBgColor    = lipgloss.AdaptiveColor{Light: "#3B82F6", Dark: "#3B82F6"} // blue-500
	ButtonFocusBgColor      = lipgloss.AdaptiveColor{Light: "#2563EB", Dark: "#2563EB"} // blue-600
	ButtonSecondaryBgColor  = lipgloss.AdaptiveColor{Light: "#E5E7EB", Dark: "#3F3F46"}
	ButtonSecondaryTxtColor = lipgloss.AdaptiveColor{Light: "#1F2937", Dark: "#E4E4E7"}
	ButtonDisabledBgColor   = lipgloss.AdaptiveColor{Light: "#9CA3AF", Dark: "#2D2D2D"}

	SpinnerColor = lipgloss.AdaptiveColor{Light: "#3B82F6", Dark: "#FFFFFF"}

	baseButtonStyle = lipgloss.NewStyle().Padding(0, 3).Bold(true)

	PrimaryButtonStyle = baseButtonStyle.
				Foreground(ButtonTextColor).
				Background(ButtonPrimaryBgColor)

	PrimaryButtonFocusedStyle = baseButtonStyle.
					Foreground(ButtonTextColor).
					Background(ButtonFocusBgColor).
					Underline(true).
					UnderlineSpaces(true)

	SecondaryButtonStyle = baseButtonStyle.
				Foreground(ButtonSecondaryTxtColor).
				Background(ButtonSecondaryBgColor)

	DisabledButtonStyle = baseButtonStyle.
				Foreground(ButtonTextColor).
				Background(ButtonDisabledBgColor)

	// Card is the white panel that holds the registration form.
	CardStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(BorderDefaultColor).
			Padding(1, 3)

	TitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(TextPrimaryColor)

	LabelStyle        = lipgloss.NewStyle().Foreground(TextSecondaryColor)
	FocusedLabelStyle = lipgloss.NewStyle().Foreground(BorderFocusColor).Bold(true)

	InputStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(BorderDefaultColor).
			Padding(0, 1)

	FocusedInputStyle = InputStyle.BorderForeground(BorderFocusColor)

	HintStyle  = lipgloss.NewStyle().Foreground(TextMutedColor).Italic(true)
	ErrorStyle = lipgloss.NewStyle().Foreground(StatusErrorColor).Bold(true)
	WarnStyle  = lipgloss.NewStyle().Foreground(StatusWarningColor)

	// Status bar
	StatusBarStyle = lipgloss.NewStyle().
			Foreground(TextMutedColor).
			Padding(0, 1)
)

// ApplyTheme overrides the accent and status colors from configuration.
// Empty strings keep the defaults.
func ApplyTheme(accent, errorColor, success string) {
	if accent != "" {
		c := lipgloss.AdaptiveColor{Light: accent, Dark: accent}
		ButtonPrimaryBgColor = c
		BorderFocusColor = c
		PrimaryButtonStyle = PrimaryButtonStyle.Background(c)
		FocusedInputStyle = FocusedInputStyle.BorderForeground(c)
		FocusedLabelStyle = FocusedLabelStyle.Foreground(c)
	}
	if errorColor != "" {
		StatusErrorColor = lipgloss.AdaptiveColor{Light: errorColor, Dark: errorColor}
		ErrorStyle = ErrorStyle.Foreground(StatusErrorColor)
	}
	if success != "" {
		StatusSuccessColor = lipgloss.AdaptiveColor{Light: success, Dark: success}
	}
}
