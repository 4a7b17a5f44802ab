package gate

import (
	"context"
	"sync"
	"time"

	"github.com/ceald/senhas/internal/clock"
	"github.com/ceald/senhas/internal/log"
	"github.com/ceald/senhas/internal/pubsub"
)

// DefaultCheckTimeout bounds a single policy evaluation.
const DefaultCheckTimeout = 15 * time.Second

// invalidator is implemented by policies that cache their answer.
type invalidator interface {
	Invalidate(ctx context.Context)
}

// Monitor keeps the current Status published and owns the re-check timer.
// Stop releases the timer; a stopped Monitor publishes nothing further.
type Monitor struct {
	mu      sync.Mutex
	policy  Policy
	clock   clock.Clock
	timer   clock.Timer
	timeout time.Duration
	broker  *pubsub.Broker[Status]
	stopped bool
}

// NewMonitor creates a monitor for policy. Nothing runs until Start.
func NewMonitor(policy Policy, clk clock.Clock) *Monitor {
	if clk == nil {
		clk = clock.Real()
	}
	return &Monitor{
		policy:  policy,
		clock:   clk,
		timeout: DefaultCheckTimeout,
		broker:  pubsub.NewBroker[Status](pubsub.WithReplay()),
	}
}

// Broker publishes every Status. New subscribers receive the latest one first.
func (m *Monitor) Broker() *pubsub.Broker[Status] {
	return m.broker
}

// Current returns the latest published Status, if any.
func (m *Monitor) Current() (Status, bool) {
	return m.broker.Latest()
}

// Start evaluates the policy once, publishes the result, and schedules the
// next evaluation.
func (m *Monitor) Start(ctx context.Context) Status {
	return m.run(ctx, false)
}

// Refresh re-evaluates now, bypassing any cached answer, and reschedules.
func (m *Monitor) Refresh(ctx context.Context) Status {
	return m.run(ctx, true)
}

// SetPolicy swaps the policy (after a config reload) and re-evaluates.
func (m *Monitor) SetPolicy(ctx context.Context, policy Policy) Status {
	m.mu.Lock()
	m.policy = policy
	m.mu.Unlock()
	return m.run(ctx, true)
}

// Stop cancels the pending re-check and closes the broker.
func (m *Monitor) Stop() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.stopped {
		return
	}
	m.stopped = true
	if m.timer != nil {
		m.timer.Stop()
		m.timer = nil
	}
	m.broker.Close()
}

func (m *Monitor) run(ctx context.Context, fresh bool) Status {
	m.mu.Lock()
	if m.stopped {
		m.mu.Unlock()
		return Status{}
	}
	policy := m.policy
	m.mu.Unlock()

	status := m.evaluate(ctx, policy, fresh)

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.stopped {
		return status
	}
	m.broker.Publish(pubsub.UpdatedEvent, status)
	m.scheduleLocked(policy)
	return status
}

func (m *Monitor) evaluate(ctx context.Context, policy Policy, fresh bool) Status {
	ctx, cancel := context.WithTimeout(ctx, m.timeout)
	defer cancel()

	if inv, ok := policy.(invalidator); ok && fresh {
		inv.Invalidate(ctx)
	}

	open, err := policy.IsOpen(ctx)
	if err != nil {
		// An unreachable API keeps the kiosk closed.
		log.ErrorErr(log.CatGate, "window check failed", err, "policy", policy.Name())
		open = false
	}

	status := Status{
		Open:      open,
		CheckedAt: m.clock.Now(),
		Policy:    policy.Name(),
		Err:       err,
	}
	log.Info(log.CatGate, "window checked", "policy", status.Policy, "open", status.Open)
	return status
}

func (m *Monitor) scheduleLocked(policy Policy) {
	if m.timer != nil {
		m.timer.Stop()
		m.timer = nil
	}

	now := m.clock.Now()
	next := policy.NextCheck(now)
	if !next.After(now) {
		return
	}

	delay := next.Sub(now)
	log.Debug(log.CatGate, "next window check scheduled", "at", next.Format(time.RFC3339), "in", delay)
	m.timer = m.clock.AfterFunc(delay, func() {
		m.run(context.Background(), true)
	})
}
