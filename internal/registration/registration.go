// Package registration is the guest-facing ticket form: it keeps the draft,
// validates it, submits it to the queue API, and turns the answer into one of
// a fixed set of outcomes.
package registration

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/ceald/senhas/internal/phone"
	"github.com/ceald/senhas/internal/ticketing"
)

// DefaultSlowNetworkAfter is how long a submission may run before the slow
// connection hint appears.
const DefaultSlowNetworkAfter = 3 * time.Second

// Registrar is the remote side of a submission.
type Registrar interface {
	Register(ctx context.Context, reg ticketing.Registration) (ticketing.Ticket, error)
}

// Policy captures the rules that varied between kiosk deployments.
type Policy struct {
	// RequirePhone shows the phone field and requires a valid mobile number.
	RequirePhone bool
	// RequireLastName requires at least two words in the name.
	RequireLastName bool
	// DetectDuplicatePhone shows a dedicated dialog when the phone number
	// already holds a ticket. Without it the rejection is a generic error.
	DetectDuplicatePhone bool
	// CapacityLimit is the last position handed out today. Zero disables it.
	CapacityLimit int
	// SlowNetworkAfter delays the slow connection hint.
	SlowNetworkAfter time.Duration
}

// DefaultPolicy collects a name and a phone. It sets no capacity limit; the
// deployed cap of 60 comes from config.Defaults via Config.Policy.
func DefaultPolicy() Policy {
	return Policy{
		RequirePhone:         true,
		DetectDuplicatePhone: true,
		SlowNetworkAfter:     DefaultSlowNetworkAfter,
	}
}

func (p Policy) normalized() Policy {
	if p.SlowNetworkAfter <= 0 {
		p.SlowNetworkAfter = DefaultSlowNetworkAfter
	}
	if p.CapacityLimit < 0 {
		p.CapacityLimit = 0
	}
	return p
}

// Draft is what the guest has typed so far. Phone is always in display form.
type Draft struct {
	Name  string
	Phone string
}

// Empty reports whether both fields are blank.
func (d Draft) Empty() bool {
	return d.Name == "" && d.Phone == ""
}

// State is the submission state of the form.
type State int

const (
	Idle State = iota
	Submitting
)

func (s State) String() string {
	if s == Submitting {
		return "submitting"
	}
	return "idle"
}

// OutcomeKind enumerates the dialogs a submission can end in.
type OutcomeKind int

const (
	OutcomeNone OutcomeKind = iota
	OutcomeSuccess
	OutcomeDuplicatePhone
	OutcomeCapacityExceeded
	OutcomeGenericError
)

func (k OutcomeKind) String() string {
	switch k {
	case OutcomeSuccess:
		return "success"
	case OutcomeDuplicatePhone:
		return "duplicate_phone"
	case OutcomeCapacityExceeded:
		return "capacity_exceeded"
	case OutcomeGenericError:
		return "generic_error"
	default:
		return "none"
	}
}

// Outcome is the dialog left by the last submission. Position is only set
// for OutcomeSuccess; Err only for the error kinds.
type Outcome struct {
	Kind     OutcomeKind
	Position int
	Err      error
}

// ClearsDraft reports whether the registration went through on the server.
func (o Outcome) ClearsDraft() bool {
	return o.Kind == OutcomeSuccess || o.Kind == OutcomeCapacityExceeded
}

// ValidationError is a local problem with the draft, phrased for the guest.
type ValidationError string

func (e ValidationError) Error() string { return string(e) }

const (
	ErrNameRequired     ValidationError = "Por favor, insira um nome."
	ErrLastNameRequired ValidationError = "Por favor, insira seu nome completo (nome e sobrenome)."
	ErrPhoneRequired    ValidationError = "Por favor, insira um número de celular com DDD."
	ErrPhoneInvalid     ValidationError = ValidationError(phone.InvalidMessage)
)

// Validate checks d against the policy. The returned error, if any, is a
// ValidationError.
func (p Policy) Validate(d Draft) error {
	name := strings.TrimSpace(d.Name)
	if name == "" {
		return ErrNameRequired
	}
	if p.RequireLastName && len(strings.Fields(name)) < 2 {
		return ErrLastNameRequired
	}
	if !p.RequirePhone {
		return nil
	}
	if strings.TrimSpace(d.Phone) == "" {
		return ErrPhoneRequired
	}
	if !phone.Valid(d.Phone) {
		return ErrPhoneInvalid
	}
	return nil
}

// Request builds the API payload for a validated draft.
func (p Policy) Request(d Draft) ticketing.Registration {
	reg := ticketing.Registration{Name: strings.TrimSpace(d.Name)}
	if p.RequirePhone {
		reg.PhoneNumber = phone.Format(d.Phone)
	}
	return reg
}

// Interpret maps the API answer to an outcome.
func (p Policy) Interpret(ticket ticketing.Ticket, err error) Outcome {
	if err != nil {
		if p.DetectDuplicatePhone && errors.Is(err, ticketing.ErrDuplicatePhone) {
			return Outcome{Kind: OutcomeDuplicatePhone, Err: err}
		}
		return Outcome{Kind: OutcomeGenericError, Err: err}
	}
	if p.CapacityLimit > 0 && ticket.Position > p.CapacityLimit {
		return Outcome{Kind: OutcomeCapacityExceeded}
	}
	return Outcome{Kind: OutcomeSuccess, Position: ticket.Position}
}
