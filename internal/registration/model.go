package registration

import (
	"context"
	"errors"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	zone "github.com/lrstanley/bubblezone"

	"github.com/ceald/senhas/internal/keys"
	"github.com/ceald/senhas/internal/log"
	"github.com/ceald/senhas/internal/phone"
	"github.com/ceald/senhas/internal/ticketing"
	"github.com/ceald/senhas/internal/ui/styles"
)

// DefaultSubmitZone is the bubblezone id of the submit button.
const DefaultSubmitZone = "registration-submit"

const (
	fieldName = iota
	fieldPhone
)

// TickFunc schedules msg after d. tea.Tick in production; tests pass a
// function that lets them fire the timer by hand.
type TickFunc func(d time.Duration, fn func(time.Time) tea.Msg) tea.Cmd

// formSeq hands out form instance ids. Zero is never issued.
var formSeq atomic.Uint64

// registeredMsg carries the API answer for one attempt of one form.
type registeredMsg struct {
	form    uint64
	attempt int
	ticket  ticketing.Ticket
	err     error
}

// slowNetworkMsg is the deferred hint timer for one attempt.
type slowNetworkMsg struct {
	form    uint64
	attempt int
}

// Option configures a Model.
type Option func(*Model)

// WithTick replaces tea.Tick for the slow network timer.
func WithTick(tick TickFunc) Option {
	return func(m *Model) { m.tick = tick }
}

// WithContext sets the context submissions run under.
func WithContext(ctx context.Context) Option {
	return func(m *Model) { m.ctx = ctx }
}

// WithSubmitZone sets the bubblezone id of the submit button.
func WithSubmitZone(id string) Option {
	return func(m *Model) { m.submitZone = id }
}

// Model is the registration form.
type Model struct {
	registrar  Registrar
	policy     Policy
	inputs     []textinput.Model
	focus      int // index into inputs; len(visible inputs) is the button
	state      State
	outcome    Outcome
	invalid    ValidationError
	slow       bool
	id         uint64 // answers from other form instances are dropped
	attempt    int
	spinner    spinner.Model
	tick       TickFunc
	ctx        context.Context
	submitZone string
	width      int
	height     int
}

// New creates an idle form with the name field focused.
func New(registrar Registrar, policy Policy, opts ...Option) Model {
	name := textinput.New()
	name.Placeholder = "Seu nome"
	name.Prompt = ""
	name.CharLimit = 80
	name.Width = 36
	name.PlaceholderStyle = name.PlaceholderStyle.Foreground(styles.TextPlaceholderColor)

	tel := textinput.New()
	tel.Placeholder = "(99) 91234-5678"
	tel.Prompt = ""
	tel.CharLimit = len("(99) 91234-5678")
	tel.Width = 36
	tel.PlaceholderStyle = tel.PlaceholderStyle.Foreground(styles.TextPlaceholderColor)

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = sp.Style.Foreground(styles.SpinnerColor)

	m := Model{
		registrar:  registrar,
		id:         formSeq.Add(1),
		policy:     policy.normalized(),
		inputs:     []textinput.Model{name, tel},
		spinner:    sp,
		tick:       tea.Tick,
		ctx:        context.Background(),
		submitZone: DefaultSubmitZone,
	}
	for _, opt := range opts {
		opt(&m)
	}
	m.inputs[fieldName].Focus()
	return m
}

// Init starts the cursor blink.
func (m Model) Init() tea.Cmd {
	return textinput.Blink
}

// State returns the submission state.
func (m Model) State() State { return m.state }

// Outcome returns the dialog currently shown.
func (m Model) Outcome() Outcome { return m.outcome }

// ValidationError returns the message of the last failed validation, or "".
func (m Model) ValidationError() ValidationError { return m.invalid }

// SlowNetwork reports whether the slow connection hint is showing.
func (m Model) SlowNetwork() bool { return m.slow }

// SubmitEnabled reports whether the submit button accepts input.
func (m Model) SubmitEnabled() bool { return m.state == Idle }

// Policy returns the active policy.
func (m Model) Policy() Policy { return m.policy }

// Draft returns the current field values.
func (m Model) Draft() Draft {
	d := Draft{Name: m.inputs[fieldName].Value()}
	if m.policy.RequirePhone {
		d.Phone = m.inputs[fieldPhone].Value()
	}
	return d
}

// SetDraft replaces the field values. The phone is formatted.
func (m Model) SetDraft(d Draft) Model {
	m.inputs[fieldName].SetValue(d.Name)
	m.inputs[fieldPhone].SetValue(phone.Format(d.Phone))
	return m
}

// SetPolicy applies a reloaded policy. A submission in flight keeps being
// interpreted under the new rules.
func (m Model) SetPolicy(p Policy) Model {
	m.policy = p.normalized()
	if !m.policy.RequirePhone {
		m.inputs[fieldPhone].SetValue("")
		if m.focus > fieldName {
			m = m.focusField(m.buttonIndex())
		}
	}
	return m
}

// SetSize records the screen size used to center the form.
func (m Model) SetSize(width, height int) Model {
	m.width = width
	m.height = height
	return m
}

// Teardown invalidates the pending slow network timer and any answer still
// in flight. Call it when the form leaves the screen.
func (m Model) Teardown() Model {
	m.attempt++
	m.slow = false
	m.state = Idle
	return m
}

// Update handles one message.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		return m.SetSize(msg.Width, msg.Height), nil

	case registeredMsg:
		return m.settle(msg)

	case slowNetworkMsg:
		if m.current(msg.form, msg.attempt) && m.state == Submitting {
			m.slow = true
			log.Warn(log.CatForm, "submission is slow", "attempt", msg.attempt, "after", m.policy.SlowNetworkAfter)
		}
		return m, nil

	case spinner.TickMsg:
		if m.state != Submitting {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tea.MouseMsg:
		if m.state == Submitting || m.outcome.Kind != OutcomeNone {
			return m, nil
		}
		if msg.Button == tea.MouseButtonLeft && msg.Action == tea.MouseActionRelease {
			if z := zone.Get(m.submitZone); z != nil && z.InBounds(msg) {
				return m.submit()
			}
		}
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	if m.state == Idle && m.outcome.Kind == OutcomeNone {
		return m.updateFocused(msg)
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	// Fields and button are disabled while the request runs.
	if m.state == Submitting {
		return m, nil
	}

	if m.outcome.Kind != OutcomeNone {
		if key.Matches(msg, keys.Form.Dismiss) {
			m.outcome = Outcome{}
		}
		return m, nil
	}

	switch {
	case key.Matches(msg, keys.Form.Next):
		return m.focusField((m.focus + 1) % (m.buttonIndex() + 1)), nil
	case key.Matches(msg, keys.Form.Prev):
		n := m.buttonIndex() + 1
		return m.focusField((m.focus - 1 + n) % n), nil
	case key.Matches(msg, keys.Form.Submit):
		if m.focus < m.buttonIndex()-1 {
			return m.focusField(m.focus + 1), nil
		}
		return m.submit()
	case msg.Type == tea.KeyEsc:
		m.invalid = ""
		return m, nil
	}

	return m.updateFocused(msg)
}

// updateFocused forwards msg to the focused text field and keeps the phone in
// display form.
func (m Model) updateFocused(msg tea.Msg) (Model, tea.Cmd) {
	if m.focus >= m.buttonIndex() {
		return m, nil
	}

	before := m.inputs[m.focus].Value()
	var cmd tea.Cmd
	m.inputs[m.focus], cmd = m.inputs[m.focus].Update(msg)

	if m.focus == fieldPhone {
		if formatted := phone.Format(m.inputs[fieldPhone].Value()); formatted != m.inputs[fieldPhone].Value() {
			m.inputs[fieldPhone].SetValue(formatted)
			m.inputs[fieldPhone].CursorEnd()
		}
	}
	if m.inputs[m.focus].Value() != before {
		m.invalid = ""
	}
	return m, cmd
}

// buttonIndex is the focus index of the submit button.
func (m Model) buttonIndex() int {
	if m.policy.RequirePhone {
		return 2
	}
	return 1
}

func (m Model) focusField(i int) Model {
	for j := range m.inputs {
		m.inputs[j].Blur()
	}
	m.focus = i
	if i < m.buttonIndex() {
		m.inputs[i].Focus()
	}
	return m
}

func (m Model) submit() (Model, tea.Cmd) {
	if m.state == Submitting {
		return m, nil
	}

	draft := m.Draft()
	if err := m.policy.Validate(draft); err != nil {
		var verr ValidationError
		if !errors.As(err, &verr) {
			verr = ValidationError(err.Error())
		}
		m.invalid = verr
		log.Debug(log.CatForm, "draft rejected", "reason", string(verr))
		return m, nil
	}

	m.invalid = ""
	m.outcome = Outcome{}
	m.state = Submitting
	m.slow = false
	m.attempt++
	for j := range m.inputs {
		m.inputs[j].Blur()
	}

	form, attempt := m.id, m.attempt
	reg := m.policy.Request(draft)
	registrar := m.registrar
	ctx := m.ctx
	log.Info(log.CatForm, "submitting registration", "attempt", attempt, "with_phone", reg.PhoneNumber != "")

	register := func() tea.Msg {
		ticket, err := registrar.Register(ctx, reg)
		return registeredMsg{form: form, attempt: attempt, ticket: ticket, err: err}
	}
	hint := m.tick(m.policy.SlowNetworkAfter, func(time.Time) tea.Msg {
		return slowNetworkMsg{form: form, attempt: attempt}
	})
	return m, tea.Batch(register, hint, m.spinner.Tick)
}

// current reports whether a message belongs to this form's latest attempt.
func (m Model) current(form uint64, attempt int) bool {
	return form == m.id && attempt == m.attempt
}

func (m Model) settle(msg registeredMsg) (Model, tea.Cmd) {
	if !m.current(msg.form, msg.attempt) || m.state != Submitting {
		log.Debug(log.CatForm, "ignoring stale registration answer",
			"form", msg.form, "attempt", msg.attempt, "current_form", m.id, "current", m.attempt)
		return m, nil
	}

	m.state = Idle
	m.slow = false
	m.outcome = m.policy.Interpret(msg.ticket, msg.err)

	if m.outcome.ClearsDraft() {
		m.inputs[fieldName].SetValue("")
		m.inputs[fieldPhone].SetValue("")
	}
	m = m.focusField(fieldName)

	if m.outcome.Err != nil {
		log.ErrorErr(log.CatForm, "registration failed", m.outcome.Err, "attempt", msg.attempt, "outcome", m.outcome.Kind)
	} else {
		log.Info(log.CatForm, "registration settled", "attempt", msg.attempt, "outcome", m.outcome.Kind, "position", msg.ticket.Position)
	}
	return m, nil
}
