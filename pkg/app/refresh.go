package app

import (
	"context"
	"sync"
	"time"

	"tableflip.dev/adhdo/pkg/suggest"
)

// DefaultRefreshDelay coalesces bursts of edits into one suggestion request.
const DefaultRefreshDelay = 1500 * time.Millisecond

// Refresher re-runs Suggest after the task set changes. Requests are not
// cancelled or sequenced: whichever finishes last is delivered last.
type Refresher struct {
	Service *Service
	Delay   time.Duration
	// Deliver receives every result, including errors.
	Deliver func(*suggest.Suggestion, error)

	mu    sync.Mutex
	timer *time.Timer
}

// Run watches persistence until ctx is done.
func (r *Refresher) Run(ctx context.Context) error {
	events, err := r.Service.Watch(ctx)
	if err != nil {
		return err
	}
	defer r.stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case _, ok := <-events:
			if !ok {
				return nil
			}
			r.Poke(ctx)
		}
	}
}

// Poke schedules a refresh after the delay, restarting any pending wait.
func (r *Refresher) Poke(ctx context.Context) {
	delay := r.Delay
	if delay <= 0 {
		delay = DefaultRefreshDelay
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.timer != nil {
		r.timer.Stop()
	}
	r.timer = time.AfterFunc(delay, func() {
		if ctx.Err() != nil {
			return
		}
		s, err := r.Service.Suggest(ctx)
		if r.Deliver != nil {
			r.Deliver(s, err)
		}
	})
}

func (r *Refresher) stop() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.timer != nil {
		r.timer.Stop()
		r.timer = nil
	}
}
