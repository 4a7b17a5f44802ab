// Package app contains the kiosk's root model. It shows the registration
// form while the gate is open and the closed notice otherwise.
package app

import (
	"context"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/ceald/senhas/internal/gate"
	"github.com/ceald/senhas/internal/keys"
	"github.com/ceald/senhas/internal/log"
	"github.com/ceald/senhas/internal/pubsub"
	"github.com/ceald/senhas/internal/registration"
	"github.com/ceald/senhas/internal/ui/logview"
	"github.com/ceald/senhas/internal/ui/markdown"
	"github.com/ceald/senhas/internal/ui/toaster"
	"github.com/ceald/senhas/internal/watcher"
)

// Reload is a freshly loaded configuration, already converted for the
// components it affects.
type Reload struct {
	Policy registration.Policy
	Gate   gate.Policy
}

// ReloadFunc reads the config file again.
type ReloadFunc func() (Reload, error)

// ConfigReloadedMsg applies a new configuration.
type ConfigReloadedMsg struct {
	Reload
}

// ConfigReloadFailedMsg reports a config file that no longer loads. The
// running configuration is kept.
type ConfigReloadFailedMsg struct {
	Err error
}

// Option configures a Model.
type Option func(*Model)

// WithFormOptions passes options through to every registration form the
// kiosk creates.
func WithFormOptions(opts ...registration.Option) Option {
	return func(m *Model) { m.formOpts = append(m.formOpts, opts...) }
}

// WithMarkdownStyle selects the glamour style of the closed notice.
func WithMarkdownStyle(style string) Option {
	return func(m *Model) { m.markdownStyle = style }
}

// WithDebug enables the log viewer (ctrl+x).
func WithDebug(debug bool) Option {
	return func(m *Model) { m.debug = debug }
}

// WithConfigWatcher reloads the configuration whenever w reports a change.
func WithConfigWatcher(w *watcher.Watcher, reload ReloadFunc) Option {
	return func(m *Model) {
		m.watcher = w
		m.reload = reload
	}
}

// Model is the root application state.
type Model struct {
	registrar registration.Registrar
	policy    registration.Policy
	formOpts  []registration.Option
	form      registration.Model

	monitor      *gate.Monitor
	gateListener *pubsub.ContinuousListener[gate.Status]
	status       gate.Status
	known        bool

	markdownStyle string
	notice        *markdown.Renderer

	toaster toaster.Model

	debug       bool
	logs        logview.Model
	logListener *log.LogListener

	watcher         *watcher.Watcher
	reload          ReloadFunc
	watcherListener *pubsub.ContinuousListener[watcher.WatcherEvent]

	ctx    context.Context
	cancel context.CancelFunc
	width  int
	height int
}

// New creates the kiosk. The monitor is started by Init and stopped by Close.
func New(registrar registration.Registrar, policy registration.Policy, monitor *gate.Monitor, opts ...Option) Model {
	ctx, cancel := context.WithCancel(context.Background())
	m := Model{
		registrar: registrar,
		policy:    policy,
		monitor:   monitor,
		toaster:   toaster.New(),
		logs:      logview.New(),
		ctx:       ctx,
		cancel:    cancel,
	}
	for _, opt := range opts {
		opt(&m)
	}

	m.form = m.newForm()
	m.gateListener = pubsub.NewContinuousListener(ctx, monitor.Broker())
	if m.watcher != nil {
		m.watcherListener = pubsub.NewContinuousListener(ctx, m.watcher.Broker())
	}
	if m.debug {
		m.logListener = log.NewListener(ctx)
	}
	return m
}

func (m Model) newForm() registration.Model {
	opts := append([]registration.Option{registration.WithContext(m.ctx)}, m.formOpts...)
	return registration.New(m.registrar, m.policy, opts...).SetSize(m.width, m.height)
}

// Init starts the gate monitor and the listeners.
func (m Model) Init() tea.Cmd {
	monitor, ctx := m.monitor, m.ctx
	cmds := []tea.Cmd{
		func() tea.Msg {
			monitor.Start(ctx)
			return nil
		},
		m.gateListener.Listen(),
	}
	if m.watcherListener != nil {
		cmds = append(cmds, m.watcherListener.Listen())
	}
	if m.logListener != nil {
		cmds = append(cmds, m.logListener.Listen())
	}
	return tea.Batch(cmds...)
}

// Open reports the latest gate answer; false until one arrives.
func (m Model) Open() bool { return m.known && m.status.Open }

// Known reports whether the gate has answered yet.
func (m Model) Known() bool { return m.known }

// Form returns the registration form.
func (m Model) Form() registration.Model { return m.form }

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.form = m.form.SetSize(msg.Width, msg.Height)
		m.logs = m.logs.SetSize(msg.Width, msg.Height)
		m.notice = m.newNoticeRenderer()
		return m, nil

	case pubsub.Event[gate.Status]:
		return m.applyStatus(msg.Payload)

	case pubsub.Event[watcher.WatcherEvent]:
		return m.handleWatcher(msg.Payload)

	case ConfigReloadedMsg:
		return m.applyReload(msg.Reload)

	case ConfigReloadFailedMsg:
		log.ErrorErr(log.CatConfig, "config reload failed, keeping current settings", msg.Err)
		var cmd tea.Cmd
		m.toaster, cmd = m.toaster.Show(ReloadFailedText, toaster.KindError, toaster.DefaultDuration)
		return m, cmd

	case log.LogEvent:
		if m.logListener == nil {
			return m, nil
		}
		m.logs = m.logs.Append(msg.Payload)
		return m, m.logListener.Listen()

	case toaster.DismissMsg:
		m.toaster = m.toaster.Update(msg)
		return m, nil

	case tea.KeyMsg:
		if key.Matches(msg, keys.Kiosk.Quit) {
			return m, tea.Quit
		}
		if m.debug && key.Matches(msg, keys.Kiosk.Logs) {
			m.logs = m.logs.Toggle()
			return m, nil
		}
		if m.logs.Visible() {
			var cmd tea.Cmd
			m.logs, cmd = m.logs.Update(msg)
			return m, cmd
		}
		if m.known && !m.status.Open && key.Matches(msg, keys.Kiosk.Recheck) {
			monitor, ctx := m.monitor, m.ctx
			log.Info(log.CatGate, "manual re-check requested")
			return m, func() tea.Msg {
				monitor.Refresh(ctx)
				return nil
			}
		}
	}

	if !m.Open() {
		return m, nil
	}
	var cmd tea.Cmd
	m.form, cmd = m.form.Update(msg)
	return m, cmd
}

func (m Model) applyStatus(status gate.Status) (tea.Model, tea.Cmd) {
	wasOpen := m.Open()
	m.status = status
	m.known = true
	listen := m.gateListener.Listen()

	switch {
	case wasOpen && !status.Open:
		log.Info(log.CatGate, "window closed, hiding form", "policy", status.Policy)
		m.form = m.form.Teardown()
		return m, listen
	case !wasOpen && status.Open:
		log.Info(log.CatGate, "window open, showing form", "policy", status.Policy)
		m.form = m.newForm()
		return m, tea.Batch(listen, m.form.Init())
	}
	return m, listen
}

func (m Model) handleWatcher(ev watcher.WatcherEvent) (tea.Model, tea.Cmd) {
	listen := m.watcherListener.Listen()
	switch ev.Type {
	case watcher.ConfigChanged:
		if m.reload == nil {
			return m, listen
		}
		reload := m.reload
		return m, tea.Batch(listen, func() tea.Msg {
			r, err := reload()
			if err != nil {
				return ConfigReloadFailedMsg{Err: err}
			}
			return ConfigReloadedMsg{Reload: r}
		})
	case watcher.WatcherError:
		log.Warn(log.CatWatcher, "watcher error received", "error", ev.Error)
	}
	return m, listen
}

func (m Model) applyReload(r Reload) (tea.Model, tea.Cmd) {
	log.Info(log.CatConfig, "applying reloaded config", "gate", policyName(r.Gate))
	m.policy = r.Policy
	m.form = m.form.SetPolicy(r.Policy)

	var cmds []tea.Cmd
	if r.Gate != nil {
		monitor, ctx, policy := m.monitor, m.ctx, r.Gate
		cmds = append(cmds, func() tea.Msg {
			monitor.SetPolicy(ctx, policy)
			return nil
		})
	}
	var toast tea.Cmd
	m.toaster, toast = m.toaster.Show(ReloadedText, toaster.KindInfo, toaster.DefaultDuration)
	cmds = append(cmds, toast)
	return m, tea.Batch(cmds...)
}

func policyName(p gate.Policy) string {
	if p == nil {
		return "unchanged"
	}
	return p.Name()
}

// Close stops the monitor, the watcher and every listener.
func (m *Model) Close() error {
	m.cancel()
	m.monitor.Stop()
	if m.watcher != nil {
		return m.watcher.Stop()
	}
	return nil
}
