package gate

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/ceald/senhas/internal/cachemanager"
	"github.com/ceald/senhas/internal/clock"
)

// DefaultRecheckSchedule re-asks the API daily at 20:00, when it closes.
const DefaultRecheckSchedule = "0 20 * * *"

const isOpenKey = "is-open"

// Remote asks the ticketing API. The answer is cached until the next
// scheduled boundary, so repeated checks between boundaries cost nothing.
type Remote struct {
	schedule cron.Schedule
	spec     string
	clock    clock.Clock
	cache    *cachemanager.ReadThroughCache[string, bool, struct{}]
}

// NewRemote creates a Remote policy re-checked on the cron schedule spec.
func NewRemote(checker OpenChecker, spec string, clk clock.Clock) (*Remote, error) {
	if spec == "" {
		spec = DefaultRecheckSchedule
	}
	schedule, err := ParseSchedule(spec)
	if err != nil {
		return nil, err
	}
	if clk == nil {
		clk = clock.Real()
	}

	store := cachemanager.NewInMemoryCacheManager[string, bool]("is-open", time.Hour, cachemanager.DefaultCleanupInterval)
	return &Remote{
		schedule: schedule,
		spec:     spec,
		clock:    clk,
		cache: cachemanager.NewReadThroughCache[string, bool, struct{}](
			store,
			func(ctx context.Context, _ struct{}) (bool, error) {
				return checker.IsOpen(ctx)
			},
			false,
		),
	}, nil
}

func (r *Remote) Name() string {
	return fmt.Sprintf("%s (%s)", ModeRemote, r.spec)
}

// IsOpen returns the cached answer or asks the API. Errors are not cached.
func (r *Remote) IsOpen(ctx context.Context) (bool, error) {
	now := r.clock.Now()
	ttl := r.schedule.Next(now).Sub(now)
	return r.cache.Get(ctx, isOpenKey, struct{}{}, ttl)
}

// Invalidate forgets the cached answer.
func (r *Remote) Invalidate(ctx context.Context) {
	r.cache.Invalidate(ctx, isOpenKey)
}

// NextCheck returns the next firing of the cron schedule.
func (r *Remote) NextCheck(now time.Time) time.Time {
	return r.schedule.Next(now)
}
