// Package keys contains keybinding definitions.
package keys

import "github.com/charmbracelet/bubbles/key"

// KioskKeyMap holds the bindings the kiosk shell handles before the form.
type KioskKeyMap struct {
	Quit    key.Binding
	Logs    key.Binding
	Recheck key.Binding
}

// FormKeyMap holds the registration form bindings.
type FormKeyMap struct {
	Next    key.Binding
	Prev    key.Binding
	Submit  key.Binding
	Dismiss key.Binding
}

// AdminKeyMap holds the staff screen bindings.
type AdminKeyMap struct {
	Enter   key.Binding
	Refresh key.Binding
	Export  key.Binding
	Up      key.Binding
	Down    key.Binding
	Quit    key.Binding
}

// ShortHelp returns the bindings shown under the guest table.
func (k AdminKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Up, k.Down, k.Refresh, k.Export, k.Quit}
}

// FullHelp returns keybindings for the full help view.
func (k AdminKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{k.ShortHelp()}
}

// Kiosk is the global kiosk keymap. The kiosk has no visible help: guests
// only ever need enter and tab.
var Kiosk = KioskKeyMap{
	Quit: key.NewBinding(
		key.WithKeys("ctrl+c"),
		key.WithHelp("ctrl+c", "quit"),
	),
	Logs: key.NewBinding(
		key.WithKeys("ctrl+x"),
		key.WithHelp("ctrl+x", "toggle logs"),
	),
	Recheck: key.NewBinding(
		key.WithKeys("r"),
		key.WithHelp("r", "verificar novamente"),
	),
}

// Form is the registration form keymap.
var Form = FormKeyMap{
	Next: key.NewBinding(
		key.WithKeys("tab", "down"),
		key.WithHelp("tab", "próximo campo"),
	),
	Prev: key.NewBinding(
		key.WithKeys("shift+tab", "up"),
		key.WithHelp("shift+tab", "campo anterior"),
	),
	Submit: key.NewBinding(
		key.WithKeys("enter"),
		key.WithHelp("enter", "retirar senha"),
	),
	Dismiss: key.NewBinding(
		key.WithKeys("enter", "esc"),
		key.WithHelp("enter/esc", "fechar"),
	),
}

// Admin is the staff screen keymap.
var Admin = AdminKeyMap{
	Enter: key.NewBinding(
		key.WithKeys("enter"),
		key.WithHelp("enter", "entrar"),
	),
	Refresh: key.NewBinding(
		key.WithKeys("r"),
		key.WithHelp("r", "atualizar"),
	),
	Export: key.NewBinding(
		key.WithKeys("p"),
		key.WithHelp("p", "imprimir"),
	),
	Up: key.NewBinding(
		key.WithKeys("up", "k"),
		key.WithHelp("↑/k", "subir"),
	),
	Down: key.NewBinding(
		key.WithKeys("down", "j"),
		key.WithHelp("↓/j", "descer"),
	),
	Quit: key.NewBinding(
		key.WithKeys("q", "esc", "ctrl+c"),
		key.WithHelp("q", "sair"),
	),
}
