// Package reconcile implements the polling observer: there is no push
// channel from the authoritative store, so observed state is refreshed on
// a fixed interval and replaced wholesale on every successful read.
package reconcile

import (
	"context"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"
	"github.com/sony/gobreaker/v2"

	"github.com/lumakart/fulfillment-service/internal/domain"
)

type watchState struct {
	failures  int
	skipUntil time.Time
}

type Loop struct {
	fetcher  Fetcher
	breaker  *gobreaker.CircuitBreaker[Snapshot]
	clock    clockwork.Clock
	interval time.Duration

	mu       sync.Mutex
	watched  map[string]*watchState
	observed map[string]Snapshot
	subs     map[string][]chan Snapshot
}

func CreateLoop(fetcher Fetcher, breaker *gobreaker.CircuitBreaker[Snapshot], clock clockwork.Clock, interval time.Duration) *Loop {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &Loop{
		fetcher:  fetcher,
		breaker:  breaker,
		clock:    clock,
		interval: interval,
		watched:  make(map[string]*watchState),
		observed: make(map[string]Snapshot),
		subs:     make(map[string][]chan Snapshot),
	}
}

// Watch adds an order to the polling set. Watching an already-watched
// order is a no-op.
func (l *Loop) Watch(orderID string) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if _, ok := l.watched[orderID]; !ok {
		l.watched[orderID] = &watchState{}
	}
}

func (l *Loop) Unwatch(orderID string) {
	l.mu.Lock()
	defer l.mu.Unlock()

	delete(l.watched, orderID)
}

// Observed returns the freshest successfully fetched snapshot. A failed
// fetch never replaces it.
func (l *Loop) Observed(orderID string) (Snapshot, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()

	snap, ok := l.observed[orderID]
	return snap, ok
}

// Subscribe returns a channel receiving each new snapshot for the order.
// Slow subscribers miss intermediate snapshots rather than block a tick.
func (l *Loop) Subscribe(orderID string) <-chan Snapshot {
	l.mu.Lock()
	defer l.mu.Unlock()

	ch := make(chan Snapshot, 1)
	l.subs[orderID] = append(l.subs[orderID], ch)
	return ch
}

// Run polls until the context is cancelled.
func (l *Loop) Run(ctx context.Context) {
	ticker := l.clock.NewTicker(l.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.Chan():
			l.Tick(ctx)
		}
	}
}

// Tick refreshes every watched order that is not in a backoff window.
func (l *Loop) Tick(ctx context.Context) {
	l.mu.Lock()
	now := l.clock.Now()
	due := make([]string, 0, len(l.watched))
	for orderID, st := range l.watched {
		if now.Before(st.skipUntil) {
			continue
		}
		due = append(due, orderID)
	}
	l.mu.Unlock()

	for _, orderID := range due {
		l.refresh(ctx, orderID)
	}
}

func (l *Loop) refresh(ctx context.Context, orderID string) {
	snap, err := l.breaker.Execute(func() (Snapshot, error) {
		return l.fetcher.Fetch(ctx, orderID)
	})
	if err != nil {
		l.mu.Lock()
		defer l.mu.Unlock()

		st, ok := l.watched[orderID]
		if !ok {
			return
		}

		// Backoff only on failed fetches; successful-but-unchanged reads
		// keep the normal cadence.
		st.failures++
		backoff := l.interval * (1 << uint(st.failures))
		if backoff > time.Minute {
			backoff = time.Minute
		}
		st.skipUntil = l.clock.Now().Add(backoff)

		log.Warn().Err(err).Str("component", "reconcile.Loop").Str("order_id", orderID).Int("consecutive_failures", st.failures).Msg("authoritative fetch failed; keeping last observed snapshot")
		return
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	st, ok := l.watched[orderID]
	if !ok {
		return
	}

	st.failures = 0
	st.skipUntil = time.Time{}

	l.observed[orderID] = snap

	for _, ch := range l.subs[orderID] {
		select {
		case ch <- snap:
		default:
		}
	}

	// Nothing more will change once the order is terminal.
	if domain.IsOrderTerminal(snap.Order.OrderStatus) {
		delete(l.watched, orderID)
	}
}
