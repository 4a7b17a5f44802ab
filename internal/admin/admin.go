// Package admin is the staff screen: unlock with the admin password, review
// today's guest list, refresh it, and export it to PDF.
package admin

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/ceald/senhas/internal/clock"
	"github.com/ceald/senhas/internal/keys"
	"github.com/ceald/senhas/internal/log"
	"github.com/ceald/senhas/internal/report"
	"github.com/ceald/senhas/internal/ticketing"
	"github.com/ceald/senhas/internal/ui/styles"
	"github.com/ceald/senhas/internal/ui/toaster"
)

// User-facing text.
const (
	PasswordTitle   = "Senha de Administrador"
	PasswordHint    = "Digite a senha"
	WrongPassword   = "Senha incorreta"
	ListTitle       = "Lista de Assistidos"
	RefreshingText  = "Atualizando..."
	ExportingText   = "Gerando..."
	ListFailedText  = "Erro ao buscar lista de assistidos."
	ExportFailedFmt = "Erro ao gerar PDF: %v"
	ExportedFmt     = "PDF salvo em %s"
)

// Service is the part of the queue API the admin screen uses.
type Service interface {
	Authenticate(ctx context.Context, password string) error
	GuestList(ctx context.Context) ([]ticketing.Guest, error)
}

// ExportFunc writes guests to a PDF and returns its path.
type ExportFunc func(guests []ticketing.Guest, date time.Time) (string, error)

type authResultMsg struct{ err error }

type guestListMsg struct {
	guests []ticketing.Guest
	err    error
}

type exportedMsg struct {
	path string
	err  error
}

// Option configures a Model.
type Option func(*Model)

// WithExportDir sets where PDFs are written.
func WithExportDir(dir string) Option {
	return func(m *Model) {
		m.export = func(guests []ticketing.Guest, date time.Time) (string, error) {
			return report.WriteFile(dir, guests, date)
		}
	}
}

// WithExporter replaces the PDF writer.
func WithExporter(fn ExportFunc) Option {
	return func(m *Model) { m.export = fn }
}

// WithClock sets the clock used to date exports.
func WithClock(clk clock.Clock) Option {
	return func(m *Model) { m.clock = clk }
}

// WithContext sets the context API calls run under.
func WithContext(ctx context.Context) Option {
	return func(m *Model) { m.ctx = ctx }
}

// Model is the admin screen.
type Model struct {
	svc    Service
	export ExportFunc
	clock  clock.Clock
	ctx    context.Context

	password       textinput.Model
	authenticating bool
	authErr        string
	unlocked       bool

	guests    []ticketing.Guest
	table     table.Model
	loading   bool
	exporting bool

	toaster toaster.Model
	help    help.Model
	width   int
	height  int
}

// New creates a locked admin screen.
func New(svc Service, opts ...Option) Model {
	pw := textinput.New()
	pw.Placeholder = PasswordHint
	pw.Prompt = "> "
	pw.EchoMode = textinput.EchoPassword
	pw.EchoCharacter = '•'
	pw.Width = 30
	pw.Focus()

	tbl := table.New(
		table.WithColumns(columns(80)),
		table.WithFocused(true),
		table.WithHeight(10),
	)
	ts := table.DefaultStyles()
	ts.Header = ts.Header.Bold(true).BorderForeground(styles.BorderDefaultColor)
	ts.Selected = ts.Selected.Foreground(styles.ButtonTextColor).Background(styles.ButtonPrimaryBgColor)
	tbl.SetStyles(ts)

	m := Model{
		svc:      svc,
		clock:    clock.Real(),
		ctx:      context.Background(),
		password: pw,
		table:    tbl,
		toaster:  toaster.New(),
		help:     help.New(),
	}
	WithExportDir(".")(&m)
	for _, opt := range opts {
		opt(&m)
	}
	return m
}

func columns(width int) []table.Column {
	return []table.Column{
		{Title: "#", Width: 5},
		{Title: "Nome", Width: max(width-12, 10)},
	}
}

// Init starts the cursor blink.
func (m Model) Init() tea.Cmd {
	return textinput.Blink
}

// Unlocked reports whether the password was accepted.
func (m Model) Unlocked() bool { return m.unlocked }

// Guests returns the list as last loaded.
func (m Model) Guests() []ticketing.Guest { return m.guests }

// Loading reports whether a list refresh is in flight.
func (m Model) Loading() bool { return m.loading }

// AuthError returns the message under the password field.
func (m Model) AuthError() string { return m.authErr }

// Update handles one message.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.table.SetColumns(columns(msg.Width))
		m.table.SetHeight(max(msg.Height-8, 3))
		m.help.Width = msg.Width
		return m, nil

	case authResultMsg:
		m.authenticating = false
		if msg.err != nil {
			// Any failure reads as a wrong password.
			m.authErr = WrongPassword
			if !errors.Is(msg.err, ticketing.ErrUnauthorized) {
				log.ErrorErr(log.CatAdmin, "admin authentication failed", msg.err)
			}
			return m, nil
		}
		log.Info(log.CatAdmin, "admin unlocked")
		m.authErr = ""
		m.unlocked = true
		m.password.Reset()
		m.password.Blur()
		return m.refresh()

	case guestListMsg:
		m.loading = false
		if msg.err != nil {
			log.ErrorErr(log.CatAdmin, "loading guest list failed", msg.err)
			var cmd tea.Cmd
			m.toaster, cmd = m.toaster.Show(ListFailedText, toaster.KindError, 0)
			return m, cmd
		}
		m.guests = msg.guests
		m.table.SetRows(rows(msg.guests))
		log.Info(log.CatAdmin, "guest list loaded", "guests", len(msg.guests))
		return m, nil

	case exportedMsg:
		m.exporting = false
		var cmd tea.Cmd
		if msg.err != nil {
			log.ErrorErr(log.CatAdmin, "export failed", msg.err)
			m.toaster, cmd = m.toaster.Show(fmt.Sprintf(ExportFailedFmt, msg.err), toaster.KindError, 0)
		} else {
			log.Info(log.CatAdmin, "guest list exported", "path", msg.path)
			m.toaster, cmd = m.toaster.Show(fmt.Sprintf(ExportedFmt, msg.path), toaster.KindSuccess, 0)
		}
		return m, cmd

	case toaster.DismissMsg:
		m.toaster = m.toaster.Update(msg)
		return m, nil

	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC {
			return m, tea.Quit
		}
		if m.unlocked {
			return m.handleListKey(msg)
		}
		return m.handlePasswordKey(msg)
	}

	if !m.unlocked {
		var cmd tea.Cmd
		m.password, cmd = m.password.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m Model) handlePasswordKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case msg.Type == tea.KeyEsc:
		return m, tea.Quit
	case key.Matches(msg, keys.Admin.Enter):
		if m.authenticating {
			return m, nil
		}
		m.authenticating = true
		svc, ctx, password := m.svc, m.ctx, m.password.Value()
		return m, func() tea.Msg {
			return authResultMsg{err: svc.Authenticate(ctx, password)}
		}
	}

	var cmd tea.Cmd
	m.password, cmd = m.password.Update(msg)
	if m.password.Value() == "" {
		m.authErr = ""
	}
	return m, cmd
}

func (m Model) handleListKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.Admin.Quit):
		return m, tea.Quit
	case key.Matches(msg, keys.Admin.Refresh):
		return m.refresh()
	case key.Matches(msg, keys.Admin.Export):
		return m.startExport()
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)
	return m, cmd
}

func (m Model) refresh() (tea.Model, tea.Cmd) {
	if m.loading {
		return m, nil
	}
	m.loading = true
	svc, ctx := m.svc, m.ctx
	return m, func() tea.Msg {
		guests, err := svc.GuestList(ctx)
		return guestListMsg{guests: guests, err: err}
	}
}

func (m Model) startExport() (tea.Model, tea.Cmd) {
	if m.exporting {
		return m, nil
	}
	m.exporting = true
	guests := append([]ticketing.Guest(nil), m.guests...)
	export, date := m.export, m.clock.Now()
	return m, func() tea.Msg {
		path, err := export(guests, date)
		return exportedMsg{path: path, err: err}
	}
}

func rows(guests []ticketing.Guest) []table.Row {
	out := make([]table.Row, len(guests))
	for i, g := range guests {
		out[i] = table.Row{fmt.Sprintf("%d", i+1), report.DisplayName(g)}
	}
	return out
}
