// Package deadline owns the per-order payment deadlines. The durable
// record is the instrument's expired_at column; this registry only arms
// in-process timers so expiry fires promptly while the service is up.
// Deadlines that elapse with no timer armed (e.g. across a restart) are
// caught by the periodic sweep job.
package deadline

import (
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"
)

type Registry struct {
	clock    clockwork.Clock
	onExpire func(orderID string)

	mu     sync.Mutex
	timers map[string]clockwork.Timer
}

func CreateRegistry(clock clockwork.Clock, onExpire func(orderID string)) *Registry {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &Registry{
		clock:    clock,
		onExpire: onExpire,
		timers:   make(map[string]clockwork.Timer),
	}
}

// Arm schedules expiry for the order at the given instant, replacing any
// previously armed timer. A deadline already in the past fires immediately.
func (r *Registry) Arm(orderID string, at time.Time) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if existing, ok := r.timers[orderID]; ok {
		existing.Stop()
	}

	d := at.Sub(r.clock.Now())
	if d < 0 {
		d = 0
	}

	r.timers[orderID] = r.clock.AfterFunc(d, func() {
		r.mu.Lock()
		delete(r.timers, orderID)
		r.mu.Unlock()

		log.Info().Str("component", "deadline.Registry").Str("order_id", orderID).Msg("payment deadline reached")
		r.onExpire(orderID)
	})
}

// Cancel disarms the order's timer. Called whenever the order leaves
// waiting_payment or cod_pending so a stale expiry can never fire after
// the payment reached a terminal state.
func (r *Registry) Cancel(orderID string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if timer, ok := r.timers[orderID]; ok {
		timer.Stop()
		delete(r.timers, orderID)
	}
}

// Armed reports whether a timer is currently armed for the order.
func (r *Registry) Armed(orderID string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	_, ok := r.timers[orderID]
	return ok
}
