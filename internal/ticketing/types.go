// Package ticketing is the client for the remote queue API that assigns
// attendance numbers, reports opening hours, and serves the admin guest list.
package ticketing

import (
	"errors"
	"fmt"
)

// Endpoint paths relative to the configured base URL.
const (
	PathGuest         = "/guest"
	PathIsOpen        = "/is-open"
	PathAdminPassword = "/admin-password"
	PathGuestList     = "/guestList"
)

// DuplicatePhoneMessage is the exact 400 body the API sends when the phone
// number already holds a ticket.
const DuplicatePhoneMessage = "Guest with this phone number already exists"

var (
	// ErrDuplicatePhone is returned by Register when the phone number is taken.
	ErrDuplicatePhone = errors.New("guest with this phone number already exists")

	// ErrUnauthorized is returned by Authenticate for a rejected password.
	ErrUnauthorized = errors.New("admin password rejected")
)

// StatusError is a non-2xx response that has no more specific meaning.
type StatusError struct {
	Operation  string
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("%s: HTTP %d", e.Operation, e.StatusCode)
	}
	return fmt.Sprintf("%s: HTTP %d: %s", e.Operation, e.StatusCode, e.Body)
}

// Registration is the body of a ticket request. PhoneNumber is omitted when the
// kiosk does not collect phones.
type Registration struct {
	Name        string `json:"name"`
	PhoneNumber string `json:"phoneNumber,omitempty"`
}

// Ticket is the API's answer to a successful registration.
type Ticket struct {
	Position    int    `json:"position"`
	Name        string `json:"name,omitempty"`
	PhoneNumber string `json:"phoneNumber,omitempty"`
}

// Guest is one entry of the admin guest list.
type Guest struct {
	Name        string `json:"name"`
	PhoneNumber string `json:"phoneNumber,omitempty"`
	Position    int    `json:"position,omitempty"`
}
