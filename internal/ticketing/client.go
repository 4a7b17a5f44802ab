package ticketing

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"

	"github.com/ceald/senhas/internal/log"
	"github.com/ceald/senhas/internal/tracing"
)

// maxBodySize caps how much of any response is read.
const maxBodySize = 1 << 20

// DefaultTimeout bounds a single request when no http.Client is supplied.
const DefaultTimeout = 15 * time.Second

// RequestIDHeader carries a fresh uuid on every request.
const RequestIDHeader = "X-Request-ID"

// Client talks to the ticketing API. It never retries: every failure is
// returned to the caller, which decides what the user sees.
type Client struct {
	baseURL    string
	httpClient *http.Client
	tracer     trace.Tracer
	newID      func() string
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the default http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithTimeout sets the per-request timeout of the default http.Client.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.httpClient = &http.Client{Timeout: d}
		}
	}
}

// WithTracer records a client span per request.
func WithTracer(t trace.Tracer) Option {
	return func(c *Client) {
		if t != nil {
			c.tracer = t
		}
	}
}

// New creates a client for the API rooted at baseURL.
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: DefaultTimeout},
		tracer:     noop.NewTracerProvider().Tracer("noop"),
		newID:      func() string { return uuid.NewString() },
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// BaseURL returns the API root without a trailing slash.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Register requests a ticket. A 400 carrying DuplicatePhoneMessage yields
// ErrDuplicatePhone; any other failure is a *StatusError or a transport error.
func (c *Client) Register(ctx context.Context, reg Registration) (Ticket, error) {
	var ticket Ticket
	err := c.do(ctx, "register", http.MethodPost, PathGuest, reg, func(status int, body []byte) error {
		if status == http.StatusBadRequest && isDuplicatePhone(body) {
			return ErrDuplicatePhone
		}
		if !success(status) {
			return &StatusError{Operation: "register", StatusCode: status, Body: trimBody(body)}
		}

		var payload struct {
			Position    *int   `json:"position"`
			Name        string `json:"name"`
			PhoneNumber string `json:"phoneNumber"`
		}
		if err := json.Unmarshal(body, &payload); err != nil {
			return fmt.Errorf("register: decoding response: %w", err)
		}
		if payload.Position == nil {
			return fmt.Errorf("register: response has no position")
		}
		ticket = Ticket{Position: *payload.Position, Name: payload.Name, PhoneNumber: payload.PhoneNumber}
		trace.SpanFromContext(ctx).SetAttributes(attribute.Int(tracing.AttrPosition, ticket.Position))
		return nil
	})
	return ticket, err
}

// IsOpen asks whether the API is accepting registrations right now.
func (c *Client) IsOpen(ctx context.Context) (bool, error) {
	var open bool
	err := c.do(ctx, "is_open", http.MethodGet, PathIsOpen, nil, func(status int, body []byte) error {
		if !success(status) {
			return &StatusError{Operation: "is open", StatusCode: status, Body: trimBody(body)}
		}
		var payload struct {
			IsOpen *bool `json:"isOpen"`
		}
		if err := json.Unmarshal(body, &payload); err != nil {
			return fmt.Errorf("is open: decoding response: %w", err)
		}
		if payload.IsOpen == nil {
			return fmt.Errorf("is open: response has no isOpen")
		}
		open = *payload.IsOpen
		return nil
	})
	return open, err
}

// Authenticate checks the admin password. Only HTTP 200 unlocks.
func (c *Client) Authenticate(ctx context.Context, password string) error {
	body := struct {
		Password string `json:"password"`
	}{Password: password}

	return c.do(ctx, "authenticate", http.MethodPost, PathAdminPassword, body, func(status int, _ []byte) error {
		if status != http.StatusOK {
			return ErrUnauthorized
		}
		return nil
	})
}

// GuestList returns today's registrants in queue order.
func (c *Client) GuestList(ctx context.Context) ([]Guest, error) {
	var guests []Guest
	err := c.do(ctx, "guest_list", http.MethodGet, PathGuestList, nil, func(status int, body []byte) error {
		if !success(status) {
			return &StatusError{Operation: "guest list", StatusCode: status, Body: trimBody(body)}
		}
		if err := json.Unmarshal(body, &guests); err != nil {
			return fmt.Errorf("guest list: decoding response: %w", err)
		}
		trace.SpanFromContext(ctx).SetAttributes(attribute.Int(tracing.AttrGuestCount, len(guests)))
		return nil
	})
	if guests == nil && err == nil {
		guests = []Guest{}
	}
	return guests, err
}

// do sends one request inside a client span and hands the status and body to
// handle. Transport errors are returned wrapped with the operation name.
func (c *Client) do(ctx context.Context, op, method, path string, payload any, handle func(status int, body []byte) error) error {
	ctx, span := c.tracer.Start(ctx, tracing.SpanPrefixAPI+op, trace.WithSpanKind(trace.SpanKindClient))
	defer span.End()

	requestID := c.newID()
	span.SetAttributes(
		attribute.String(tracing.AttrHTTPMethod, method),
		attribute.String(tracing.AttrHTTPRoute, path),
		attribute.String(tracing.AttrRequestID, requestID),
	)

	var reader io.Reader
	if payload != nil {
		encoded, err := json.Marshal(payload)
		if err != nil {
			return c.fail(span, op, fmt.Errorf("%s: encoding request body: %w", op, err))
		}
		reader = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return c.fail(span, op, fmt.Errorf("%s: building request: %w", op, err))
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set(RequestIDHeader, requestID)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return c.fail(span, op, fmt.Errorf("%s: %w", op, err))
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return c.fail(span, op, fmt.Errorf("%s: reading response: %w", op, err))
	}

	span.SetAttributes(attribute.Int(tracing.AttrHTTPStatusCode, resp.StatusCode))
	log.Debug(log.CatAPI, "response",
		"op", op,
		"status", resp.StatusCode,
		"request_id", requestID,
		"duration", time.Since(start))

	if err := handle(resp.StatusCode, body); err != nil {
		return c.fail(span, op, err)
	}
	span.SetStatus(codes.Ok, "")
	return nil
}

func (c *Client) fail(span trace.Span, op string, err error) error {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	log.ErrorErr(log.CatAPI, "request failed", err, "op", op)
	return err
}

func success(status int) bool {
	return status >= 200 && status < 300
}

// isDuplicatePhone accepts the message as a raw text body or as a JSON string.
func isDuplicatePhone(body []byte) bool {
	text := strings.TrimSpace(string(body))
	var decoded string
	if err := json.Unmarshal([]byte(text), &decoded); err == nil {
		text = decoded
	}
	return text == DuplicatePhoneMessage
}

func trimBody(body []byte) string {
	const limit = 200
	text := strings.TrimSpace(string(body))
	if len(text) <= limit {
		return text
	}
	cut := limit
	for cut > 0 && !utf8.RuneStart(text[cut]) {
		cut--
	}
	return text[:cut] + "..."
}
