package gate

import (
	"context"
	"fmt"
	"time"

	"github.com/ceald/senhas/internal/clock"
)

// Hours is open from Start:00 up to, but not including, End:00 local time.
// No network call is made.
type Hours struct {
	Start int
	End   int
	clock clock.Clock
}

// NewHours validates 0 <= start < end <= 24.
func NewHours(start, end int, clk clock.Clock) (*Hours, error) {
	if start < 0 || end > 24 || start >= end {
		return nil, fmt.Errorf("invalid opening hours %d-%d: need 0 <= start < end <= 24", start, end)
	}
	if clk == nil {
		clk = clock.Real()
	}
	return &Hours{Start: start, End: end, clock: clk}, nil
}

func (h *Hours) Name() string {
	return fmt.Sprintf("%s %02d:00-%02d:00", ModeHours, h.Start, h.End)
}

// IsOpen never fails.
func (h *Hours) IsOpen(context.Context) (bool, error) {
	return h.openAt(h.clock.Now()), nil
}

func (h *Hours) openAt(t time.Time) bool {
	hour := t.Hour()
	return hour >= h.Start && hour < h.End
}

// NextCheck returns the next opening or closing boundary strictly after now.
func (h *Hours) NextCheck(now time.Time) time.Time {
	y, mo, d := now.Date()
	loc := now.Location()
	// Wall-clock boundaries; hour 24 normalizes to the next midnight.
	candidates := []time.Time{
		time.Date(y, mo, d, h.Start, 0, 0, 0, loc),
		time.Date(y, mo, d, h.End, 0, 0, 0, loc),
		time.Date(y, mo, d+1, h.Start, 0, 0, 0, loc),
	}
	for _, c := range candidates {
		if c.After(now) {
			return c
		}
	}
	return candidates[len(candidates)-1]
}
