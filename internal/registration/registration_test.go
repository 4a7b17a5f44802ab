package registration

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/ceald/senhas/internal/ticketing"
)

func TestPolicy_Validate(t *testing.T) {
	full := Policy{RequirePhone: true, RequireLastName: true}
	nameOnly := Policy{}

	tests := []struct {
		name   string
		policy Policy
		draft  Draft
		want   error
	}{
		{"empty name", full, Draft{Name: "", Phone: "(11) 91234-5678"}, ErrNameRequired},
		{"whitespace name", nameOnly, Draft{Name: "   \t"}, ErrNameRequired},
		{"single name accepted without surname rule", nameOnly, Draft{Name: "Maria"}, nil},
		{"single name rejected with surname rule", full, Draft{Name: " Maria ", Phone: "(11) 91234-5678"}, ErrLastNameRequired},
		{"full name", full, Draft{Name: "Maria Silva", Phone: "(11) 91234-5678"}, nil},
		{"missing phone", full, Draft{Name: "Maria Silva"}, ErrPhoneRequired},
		{"landline", full, Draft{Name: "Maria Silva", Phone: "(11) 1234-5678"}, ErrPhoneInvalid},
		{"partial phone", full, Draft{Name: "Maria Silva", Phone: "(11) 91234"}, ErrPhoneInvalid},
		{"phone ignored when not collected", nameOnly, Draft{Name: "Maria", Phone: "abc"}, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.policy.Validate(tt.draft)
			if tt.want == nil {
				require.NoError(t, err)
				return
			}
			require.ErrorIs(t, err, tt.want)
			var verr ValidationError
			require.ErrorAs(t, err, &verr)
		})
	}
}

func TestPolicy_Request(t *testing.T) {
	withPhone := Policy{RequirePhone: true}.Request(Draft{Name: "  Maria Silva ", Phone: "(11) 91234-5678"})
	require.Equal(t, ticketing.Registration{Name: "Maria Silva", PhoneNumber: "(11) 91234-5678"}, withPhone)

	withoutPhone := Policy{}.Request(Draft{Name: "Maria", Phone: "(11) 91234-5678"})
	require.Equal(t, ticketing.Registration{Name: "Maria"}, withoutPhone)
}

func TestPolicy_Interpret(t *testing.T) {
	capped := Policy{DetectDuplicatePhone: true, CapacityLimit: 60}
	uncapped := Policy{DetectDuplicatePhone: true}
	noDup := Policy{}

	serverErr := &ticketing.StatusError{Operation: "register", StatusCode: 500}

	tests := []struct {
		name     string
		policy   Policy
		ticket   ticketing.Ticket
		err      error
		want     OutcomeKind
		position int
	}{
		{"success without cap", uncapped, ticketing.Ticket{Position: 5}, nil, OutcomeSuccess, 5},
		{"success under cap", capped, ticketing.Ticket{Position: 59}, nil, OutcomeSuccess, 59},
		{"success at cap", capped, ticketing.Ticket{Position: 60}, nil, OutcomeSuccess, 60},
		{"over cap", capped, ticketing.Ticket{Position: 61}, nil, OutcomeCapacityExceeded, 0},
		{"large position without cap", uncapped, ticketing.Ticket{Position: 500}, nil, OutcomeSuccess, 500},
		{"duplicate phone", uncapped, ticketing.Ticket{}, ticketing.ErrDuplicatePhone, OutcomeDuplicatePhone, 0},
		{"wrapped duplicate phone", uncapped, ticketing.Ticket{}, fmt.Errorf("register: %w", ticketing.ErrDuplicatePhone), OutcomeDuplicatePhone, 0},
		{"duplicate without detection", noDup, ticketing.Ticket{}, ticketing.ErrDuplicatePhone, OutcomeGenericError, 0},
		{"server error", capped, ticketing.Ticket{}, serverErr, OutcomeGenericError, 0},
		{"timeout", capped, ticketing.Ticket{}, context.DeadlineExceeded, OutcomeGenericError, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.policy.Interpret(tt.ticket, tt.err)
			require.Equal(t, tt.want, got.Kind)
			require.Equal(t, tt.position, got.Position)
			if tt.err != nil {
				require.ErrorIs(t, got.Err, tt.err)
			}
		})
	}
}

func TestOutcome_ClearsDraft(t *testing.T) {
	require.True(t, Outcome{Kind: OutcomeSuccess}.ClearsDraft())
	require.True(t, Outcome{Kind: OutcomeCapacityExceeded}.ClearsDraft())
	require.False(t, Outcome{Kind: OutcomeDuplicatePhone}.ClearsDraft())
	require.False(t, Outcome{Kind: OutcomeGenericError}.ClearsDraft())
	require.False(t, Outcome{}.ClearsDraft())
}

func TestPolicy_Normalized(t *testing.T) {
	p := Policy{CapacityLimit: -3}.normalized()
	require.Equal(t, 0, p.CapacityLimit)
	require.Equal(t, DefaultSlowNetworkAfter, p.SlowNetworkAfter)

	p = Policy{SlowNetworkAfter: time.Second}.normalized()
	require.Equal(t, time.Second, p.SlowNetworkAfter)
}

func TestValidationError_Message(t *testing.T) {
	require.Equal(t, "Por favor, insira um nome.", ErrNameRequired.Error())
	require.True(t, errors.Is(ErrPhoneInvalid, ErrPhoneInvalid))
	require.Contains(t, ErrPhoneInvalid.Error(), "(XX) 9XXXX-XXXX")
}
