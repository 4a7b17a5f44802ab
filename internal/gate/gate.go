// Package gate decides whether the kiosk accepts registrations right now.
//
// A Policy answers "is it open" and says when the answer may next change.
// Monitor evaluates a Policy, publishes the result, and re-checks at the time
// the Policy names using a cancellable timer.
package gate

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/ceald/senhas/internal/clock"
)

// Policy modes accepted by NewPolicy.
const (
	ModeHours  = "hours"
	ModeRemote = "remote"
	ModeAlways = "always"
)

// Policy is one way of deciding whether registrations are open.
type Policy interface {
	// Name identifies the policy in logs and status output.
	Name() string

	// IsOpen reports whether registrations are accepted now.
	IsOpen(ctx context.Context) (bool, error)

	// NextCheck returns when the answer may change after now. The zero time
	// means it never changes.
	NextCheck(now time.Time) time.Time
}

// Status is one evaluation of a Policy.
type Status struct {
	Open      bool
	CheckedAt time.Time
	Policy    string
	Err       error
}

// OpenChecker is the remote endpoint consulted by the Remote policy.
type OpenChecker interface {
	IsOpen(ctx context.Context) (bool, error)
}

// Spec describes a policy in configuration terms.
type Spec struct {
	Mode            string
	StartHour       int
	EndHour         int
	RecheckSchedule string
}

// NewPolicy builds the policy described by spec. checker is only used in
// remote mode.
func NewPolicy(spec Spec, checker OpenChecker, clk clock.Clock) (Policy, error) {
	switch spec.Mode {
	case ModeHours:
		return NewHours(spec.StartHour, spec.EndHour, clk)
	case ModeRemote:
		if checker == nil {
			return nil, fmt.Errorf("remote window needs an API client")
		}
		return NewRemote(checker, spec.RecheckSchedule, clk)
	case ModeAlways, "":
		return Always{}, nil
	default:
		return nil, fmt.Errorf("unknown window mode %q (want %s, %s or %s)", spec.Mode, ModeHours, ModeRemote, ModeAlways)
	}
}

// ParseSchedule parses a standard five-field cron expression.
func ParseSchedule(spec string) (cron.Schedule, error) {
	schedule, err := cron.ParseStandard(spec)
	if err != nil {
		return nil, fmt.Errorf("parsing recheck schedule %q: %w", spec, err)
	}
	return schedule, nil
}

// Always is open around the clock.
type Always struct{}

func (Always) Name() string                          { return ModeAlways }
func (Always) IsOpen(context.Context) (bool, error) { return true, nil }
func (Always) NextCheck(time.Time) time.Time        { return time.Time{} }
