package registration

import (
	"context"
	"os"
	"sync"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
	zone "github.com/lrstanley/bubblezone"
	"github.com/muesli/termenv"
	"github.com/stretchr/testify/require"

	"github.com/ceald/senhas/internal/clock"
	"github.com/ceald/senhas/internal/ticketing"
)

func TestMain(m *testing.M) {
	zone.NewGlobal()
	lipgloss.SetColorProfile(termenv.Ascii)
	os.Exit(m.Run())
}

type stubRegistrar struct {
	mu     sync.Mutex
	ticket ticketing.Ticket
	err    error
	calls  []ticketing.Registration
}

func (s *stubRegistrar) Register(_ context.Context, reg ticketing.Registration) (ticketing.Ticket, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = append(s.calls, reg)
	return s.ticket, s.err
}

func (s *stubRegistrar) callCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.calls)
}

// clockTicker schedules the slow network hint on a fake clock. Fired
// messages are queued for the test to deliver.
type clockTicker struct {
	clk   *clock.FakeClock
	fired chan tea.Msg
}

func newClockTicker() *clockTicker {
	return &clockTicker{
		clk:   clock.Fake(time.Date(2026, 3, 2, 13, 0, 0, 0, time.UTC)),
		fired: make(chan tea.Msg, 8),
	}
}

func (c *clockTicker) tick(d time.Duration, fn func(time.Time) tea.Msg) tea.Cmd {
	c.clk.AfterFunc(d, func() { c.fired <- fn(c.clk.Now()) })
	return nil
}

func (c *clockTicker) pending() []tea.Msg {
	var out []tea.Msg
	for {
		select {
		case msg := <-c.fired:
			out = append(out, msg)
		default:
			return out
		}
	}
}

// drain runs cmd and every command it batches, returning the messages.
func drain(cmd tea.Cmd) []tea.Msg {
	if cmd == nil {
		return nil
	}
	msg := cmd()
	if batch, ok := msg.(tea.BatchMsg); ok {
		var out []tea.Msg
		for _, c := range batch {
			out = append(out, drain(c)...)
		}
		return out
	}
	return []tea.Msg{msg}
}

func answerOf(t *testing.T, cmd tea.Cmd) registeredMsg {
	t.Helper()
	for _, msg := range drain(cmd) {
		if r, ok := msg.(registeredMsg); ok {
			return r
		}
	}
	t.Fatal("command did not call the registrar")
	return registeredMsg{}
}

func typeText(m Model, s string) Model {
	for _, r := range s {
		m, _ = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
	}
	return m
}

func press(m Model, k tea.KeyType) (Model, tea.Cmd) {
	return m.Update(tea.KeyMsg{Type: k})
}

func newForm(reg Registrar, p Policy, ticker *clockTicker) Model {
	m := New(reg, p, WithTick(ticker.tick))
	return m.SetSize(80, 30)
}

// fill types a valid name and phone and leaves focus on the phone field.
func fill(m Model) Model {
	m = typeText(m, "Maria Silva")
	m, _ = press(m, tea.KeyTab)
	return typeText(m, "11912345678")
}

func cappedPolicy() Policy {
	p := DefaultPolicy()
	p.CapacityLimit = 60
	return p
}

func TestModel_PhoneFormattedAsTyped(t *testing.T) {
	m := newForm(&stubRegistrar{}, DefaultPolicy(), newClockTicker())
	m, _ = press(m, tea.KeyTab)

	steps := []struct {
		typed string
		want  string
	}{
		{"1", "1"},
		{"1", "11"},
		{"9", "(11) 9"},
		{"1234", "(11) 91234"},
		{"5", "(11) 91234-5"},
		{"678", "(11) 91234-5678"},
		{"9", "(11) 91234-5678"},
	}
	for _, s := range steps {
		m = typeText(m, s.typed)
		require.Equal(t, s.want, m.Draft().Phone, "after typing %q", s.typed)
	}
}

func TestModel_PhonePasteIsFormatted(t *testing.T) {
	m := newForm(&stubRegistrar{}, DefaultPolicy(), newClockTicker())
	m, _ = press(m, tea.KeyTab)
	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("11 9-1234 5678")})
	require.Equal(t, "(11) 91234-5678", m.Draft().Phone)
}

func TestModel_SuccessClearsDraft(t *testing.T) {
	reg := &stubRegistrar{ticket: ticketing.Ticket{Position: 5}}
	m := fill(newForm(reg, DefaultPolicy(), newClockTicker()))

	m, cmd := press(m, tea.KeyEnter)
	require.Equal(t, Submitting, m.State())
	require.False(t, m.SubmitEnabled())
	require.Equal(t, SubmittingText, m.ButtonText())
	require.False(t, m.SlowNetwork())

	m, _ = m.Update(answerOf(t, cmd))

	require.Equal(t, Idle, m.State())
	require.True(t, m.SubmitEnabled())
	require.Equal(t, Outcome{Kind: OutcomeSuccess, Position: 5}, m.Outcome())
	require.True(t, m.Draft().Empty())
	require.Equal(t, []ticketing.Registration{{Name: "Maria Silva", PhoneNumber: "(11) 91234-5678"}}, reg.calls)
	require.Contains(t, ansi.Strip(m.View()), "Sua senha é: 5")
}

func TestModel_CapacityExceededHidesPosition(t *testing.T) {
	reg := &stubRegistrar{ticket: ticketing.Ticket{Position: 61}}
	m := fill(newForm(reg, cappedPolicy(), newClockTicker()))

	m, cmd := press(m, tea.KeyEnter)
	m, _ = m.Update(answerOf(t, cmd))

	require.Equal(t, OutcomeCapacityExceeded, m.Outcome().Kind)
	require.Zero(t, m.Outcome().Position)
	require.True(t, m.Draft().Empty())
	require.Equal(t, Idle, m.State())

	view := ansi.Strip(m.View())
	require.Contains(t, view, CapacityTitle)
	require.NotContains(t, view, "61")
}

func TestModel_DuplicatePhoneKeepsDraft(t *testing.T) {
	reg := &stubRegistrar{err: ticketing.ErrDuplicatePhone}
	m := fill(newForm(reg, DefaultPolicy(), newClockTicker()))
	before := m.Draft()

	m, cmd := press(m, tea.KeyEnter)
	m, _ = m.Update(answerOf(t, cmd))

	require.Equal(t, OutcomeDuplicatePhone, m.Outcome().Kind)
	require.Equal(t, before, m.Draft())
	require.Equal(t, Idle, m.State())
	require.Contains(t, ansi.Strip(m.View()), DuplicatePhone)
}

func TestModel_OtherFailuresAreGeneric(t *testing.T) {
	for name, err := range map[string]error{
		"server error": &ticketing.StatusError{Operation: "register", StatusCode: 500, Body: "boom"},
		"timeout":      context.DeadlineExceeded,
	} {
		t.Run(name, func(t *testing.T) {
			reg := &stubRegistrar{err: err}
			m := fill(newForm(reg, DefaultPolicy(), newClockTicker()))
			before := m.Draft()

			m, cmd := press(m, tea.KeyEnter)
			m, _ = m.Update(answerOf(t, cmd))

			require.Equal(t, OutcomeGenericError, m.Outcome().Kind)
			require.Equal(t, before, m.Draft())
			require.True(t, m.SubmitEnabled())
			require.Contains(t, ansi.Strip(m.View()), GenericErrorText)
		})
	}
}

func TestModel_SlowNetworkHintTiming(t *testing.T) {
	ticker := newClockTicker()
	reg := &stubRegistrar{ticket: ticketing.Ticket{Position: 9}}
	m := fill(newForm(reg, DefaultPolicy(), ticker))

	m, cmd := press(m, tea.KeyEnter)
	require.False(t, m.SlowNetwork())

	ticker.clk.Advance(2999 * time.Millisecond)
	require.Empty(t, ticker.pending())
	require.False(t, m.SlowNetwork())

	ticker.clk.Advance(time.Millisecond)
	fired := ticker.pending()
	require.Len(t, fired, 1)
	m, _ = m.Update(fired[0])
	require.True(t, m.SlowNetwork())
	require.Contains(t, ansi.Strip(m.View()), SlowNetworkText)

	m, _ = m.Update(answerOf(t, cmd))
	require.False(t, m.SlowNetwork())
	require.NotContains(t, ansi.Strip(m.View()), SlowNetworkText)
}

func TestModel_FastAnswerNeverShowsHint(t *testing.T) {
	ticker := newClockTicker()
	reg := &stubRegistrar{ticket: ticketing.Ticket{Position: 2}}
	m := fill(newForm(reg, DefaultPolicy(), ticker))

	m, cmd := press(m, tea.KeyEnter)
	ticker.clk.Advance(500 * time.Millisecond)
	m, _ = m.Update(answerOf(t, cmd))

	// The timer still fires; it belongs to a settled attempt.
	ticker.clk.Advance(5 * time.Second)
	fired := ticker.pending()
	require.Len(t, fired, 1)
	m, _ = m.Update(fired[0])
	require.False(t, m.SlowNetwork())
}

func TestModel_StaleTimerDoesNotLeakIntoNextAttempt(t *testing.T) {
	ticker := newClockTicker()
	reg := &stubRegistrar{err: ticketing.ErrDuplicatePhone}
	m := fill(newForm(reg, DefaultPolicy(), ticker))

	m, cmd := press(m, tea.KeyEnter)
	m, _ = m.Update(answerOf(t, cmd))
	m, _ = press(m, tea.KeyEsc)
	require.Equal(t, OutcomeNone, m.Outcome().Kind)

	// Second attempt starts one second later.
	ticker.clk.Advance(time.Second)
	m, _ = press(m, tea.KeyTab)
	m, _ = press(m, tea.KeyEnter)
	require.Equal(t, Submitting, m.State())

	// First timer fires two seconds into the second attempt.
	ticker.clk.Advance(2 * time.Second)
	fired := ticker.pending()
	require.Len(t, fired, 1)
	m, _ = m.Update(fired[0])
	require.False(t, m.SlowNetwork())

	ticker.clk.Advance(time.Second)
	fired = ticker.pending()
	require.Len(t, fired, 1)
	m, _ = m.Update(fired[0])
	require.True(t, m.SlowNetwork())
}

func TestModel_InputIgnoredWhileSubmitting(t *testing.T) {
	reg := &stubRegistrar{ticket: ticketing.Ticket{Position: 1}}
	m := fill(newForm(reg, DefaultPolicy(), newClockTicker()))
	before := m.Draft()

	m, cmd := press(m, tea.KeyEnter)
	require.NotNil(t, cmd)

	m = typeText(m, "xyz")
	require.Equal(t, before, m.Draft())

	m, again := press(m, tea.KeyEnter)
	require.Nil(t, again)
	m, again = press(m, tea.KeyTab)
	require.Nil(t, again)
	require.Equal(t, Submitting, m.State())

	_, again = m.submit()
	require.Nil(t, again)

	_ = answerOf(t, cmd)
	require.Equal(t, 1, reg.callCount())
}

func TestModel_ValidationBlocksSubmission(t *testing.T) {
	reg := &stubRegistrar{}
	m := newForm(reg, DefaultPolicy(), newClockTicker())

	m, _ = press(m, tea.KeyTab)
	m, cmd := press(m, tea.KeyEnter)
	require.Nil(t, cmd)
	require.Equal(t, ErrNameRequired, m.ValidationError())
	require.Equal(t, Idle, m.State())
	require.Contains(t, ansi.Strip(m.View()), string(ErrNameRequired))

	m, _ = press(m, tea.KeyShiftTab)
	m = typeText(m, "Maria")
	require.Empty(t, m.ValidationError())

	m, _ = press(m, tea.KeyTab)
	m = typeText(m, "1112345678")
	m, cmd = press(m, tea.KeyEnter)
	require.Nil(t, cmd)
	require.Equal(t, ErrPhoneInvalid, m.ValidationError())
	require.Zero(t, reg.callCount())
}

func TestModel_EnterOnNameMovesToPhone(t *testing.T) {
	m := newForm(&stubRegistrar{}, DefaultPolicy(), newClockTicker())
	m = typeText(m, "Maria")

	m, cmd := press(m, tea.KeyEnter)
	require.Nil(t, cmd)
	require.Equal(t, fieldPhone, m.focus)
	require.Empty(t, m.ValidationError())
}

func TestModel_FocusCycles(t *testing.T) {
	m := newForm(&stubRegistrar{}, DefaultPolicy(), newClockTicker())
	require.Equal(t, fieldName, m.focus)

	for _, want := range []int{fieldPhone, 2, fieldName} {
		m, _ = press(m, tea.KeyTab)
		require.Equal(t, want, m.focus)
	}
	m, _ = press(m, tea.KeyShiftTab)
	require.Equal(t, 2, m.focus)
}

func TestModel_DialogDismissal(t *testing.T) {
	reg := &stubRegistrar{ticket: ticketing.Ticket{Position: 3}}
	m := fill(newForm(reg, DefaultPolicy(), newClockTicker()))
	m, cmd := press(m, tea.KeyEnter)
	m, _ = m.Update(answerOf(t, cmd))
	require.Equal(t, OutcomeSuccess, m.Outcome().Kind)

	// Typing does not reach the fields behind the dialog.
	m = typeText(m, "abc")
	require.True(t, m.Draft().Empty())
	require.Equal(t, OutcomeSuccess, m.Outcome().Kind)

	m, cmd = press(m, tea.KeyEnter)
	require.Nil(t, cmd)
	require.Equal(t, OutcomeNone, m.Outcome().Kind)
	require.NotContains(t, ansi.Strip(m.View()), SuccessTitle)
}

func TestModel_NewAttemptClearsPriorOutcome(t *testing.T) {
	reg := &stubRegistrar{err: ticketing.ErrDuplicatePhone}
	m := fill(newForm(reg, DefaultPolicy(), newClockTicker()))
	m, cmd := press(m, tea.KeyEnter)
	m, _ = m.Update(answerOf(t, cmd))
	require.Equal(t, OutcomeDuplicatePhone, m.Outcome().Kind)

	m, _ = m.submit()
	require.Equal(t, OutcomeNone, m.Outcome().Kind)
	require.Equal(t, Submitting, m.State())
}

func TestModel_StaleAnswerIgnored(t *testing.T) {
	reg := &stubRegistrar{ticket: ticketing.Ticket{Position: 4}}
	m := fill(newForm(reg, DefaultPolicy(), newClockTicker()))

	m, _ = press(m, tea.KeyEnter)
	m, _ = m.Update(registeredMsg{form: m.id, attempt: m.attempt - 1, ticket: ticketing.Ticket{Position: 99}})
	require.Equal(t, Submitting, m.State())
	require.Equal(t, OutcomeNone, m.Outcome().Kind)
}

func TestModel_TeardownInvalidatesPending(t *testing.T) {
	ticker := newClockTicker()
	reg := &stubRegistrar{ticket: ticketing.Ticket{Position: 8}}
	m := fill(newForm(reg, DefaultPolicy(), ticker))

	m, cmd := press(m, tea.KeyEnter)
	answer := answerOf(t, cmd)
	m = m.Teardown()

	ticker.clk.Advance(3 * time.Second)
	for _, msg := range ticker.pending() {
		m, _ = m.Update(msg)
	}
	m, _ = m.Update(answer)

	require.False(t, m.SlowNetwork())
	require.Equal(t, OutcomeNone, m.Outcome().Kind)
	require.Equal(t, Idle, m.State())
}

func TestModel_AnswerFromReplacedFormIgnored(t *testing.T) {
	ticker := newClockTicker()
	first := fill(newForm(&stubRegistrar{ticket: ticketing.Ticket{Position: 7}}, DefaultPolicy(), ticker))
	first, cmd := press(first, tea.KeyEnter)
	late := answerOf(t, cmd)
	_ = first.Teardown()

	reg := &stubRegistrar{ticket: ticketing.Ticket{Position: 42}}
	second := fill(newForm(reg, DefaultPolicy(), ticker))
	second, cmd = press(second, tea.KeyEnter)
	require.Equal(t, late.attempt, second.attempt, "both forms are on their first attempt")

	second, _ = second.Update(late)
	require.Equal(t, Submitting, second.State())
	require.Equal(t, OutcomeNone, second.Outcome().Kind)
	require.Equal(t, "Maria Silva", second.Draft().Name)

	ticker.clk.Advance(3 * time.Second)
	for _, msg := range ticker.pending() {
		second, _ = second.Update(msg)
	}
	second, _ = second.Update(answerOf(t, cmd))
	require.Equal(t, Outcome{Kind: OutcomeSuccess, Position: 42}, second.Outcome())
}

func TestModel_NameOnlyPolicy(t *testing.T) {
	reg := &stubRegistrar{ticket: ticketing.Ticket{Position: 12}}
	m := newForm(reg, Policy{RequireLastName: true}, newClockTicker())

	require.NotContains(t, ansi.Strip(m.View()), PhoneLabel)

	m = typeText(m, "Maria")
	m, cmd := press(m, tea.KeyEnter)
	require.Nil(t, cmd)
	require.Equal(t, ErrLastNameRequired, m.ValidationError())

	m = typeText(m, " Silva")
	m, cmd = press(m, tea.KeyEnter)
	m, _ = m.Update(answerOf(t, cmd))

	require.Equal(t, Outcome{Kind: OutcomeSuccess, Position: 12}, m.Outcome())
	require.Equal(t, []ticketing.Registration{{Name: "Maria Silva"}}, reg.calls)
}

func TestModel_SetPolicyDropsPhone(t *testing.T) {
	m := fill(newForm(&stubRegistrar{}, DefaultPolicy(), newClockTicker()))
	require.Equal(t, fieldPhone, m.focus)

	m = m.SetPolicy(Policy{})
	require.Empty(t, m.Draft().Phone)
	require.Equal(t, 1, m.focus)
	require.Equal(t, DefaultSlowNetworkAfter, m.Policy().SlowNetworkAfter)
}

func TestModel_ViewShowsForm(t *testing.T) {
	m := newForm(&stubRegistrar{}, DefaultPolicy(), newClockTicker())
	view := ansi.Strip(zone.Scan(m.View()))

	require.Contains(t, view, NameLabel)
	require.Contains(t, view, PhoneLabel)
	require.Contains(t, view, SubmitText)
	require.Equal(t, 30, lipgloss.Height(view))
}

func TestModel_ClickSubmits(t *testing.T) {
	reg := &stubRegistrar{ticket: ticketing.Ticket{Position: 6}}
	m := fill(newForm(reg, DefaultPolicy(), newClockTicker()))

	var z *zone.ZoneInfo
	require.Eventually(t, func() bool {
		_ = zone.Scan(m.View())
		z = zone.Get(DefaultSubmitZone)
		return z != nil && !z.IsZero()
	}, time.Second, 5*time.Millisecond)

	m, cmd := m.Update(tea.MouseMsg{
		X:      z.StartX + (z.EndX-z.StartX)/2,
		Y:      z.StartY,
		Button: tea.MouseButtonLeft,
		Action: tea.MouseActionRelease,
	})
	require.NotNil(t, cmd)
	require.Equal(t, Submitting, m.State())

	m, _ = m.Update(answerOf(t, cmd))
	require.Equal(t, Outcome{Kind: OutcomeSuccess, Position: 6}, m.Outcome())
}

func TestModel_ClickOutsideButtonIgnored(t *testing.T) {
	m := fill(newForm(&stubRegistrar{}, DefaultPolicy(), newClockTicker()))
	m, cmd := m.Update(tea.MouseMsg{X: 0, Y: 0, Button: tea.MouseButtonLeft, Action: tea.MouseActionRelease})
	require.Nil(t, cmd)
	require.Equal(t, Idle, m.State())
}
