package reconcile

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lumakart/fulfillment-service/internal/domain"
	circuitbreaker "github.com/lumakart/fulfillment-service/internal/infrastructure/circuit-breaker"
	"github.com/lumakart/fulfillment-service/internal/repository"
	"github.com/lumakart/fulfillment-service/pkg/errs"
)

type stubFetcher struct {
	mu    sync.Mutex
	snap  Snapshot
	err   error
	calls int
}

func (f *stubFetcher) Fetch(ctx context.Context, orderID string) (Snapshot, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.calls++
	if f.err != nil {
		return Snapshot{}, f.err
	}
	return f.snap, nil
}

func (f *stubFetcher) set(snap Snapshot, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.snap = snap
	f.err = err
}

func (f *stubFetcher) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()

	return f.calls
}

func newTestLoop(fetcher Fetcher) (*Loop, clockwork.FakeClock) {
	clock := clockwork.NewFakeClock()
	breaker := circuitbreaker.CreateCircuitBreaker[Snapshot]("loop-test")
	return CreateLoop(fetcher, breaker, clock, 3*time.Second), clock
}

func orderSnapshot(orderID string, orderStatus string, paymentStatus string) Snapshot {
	return Snapshot{
		Order: domain.Order{
			ID:            orderID,
			OrderStatus:   orderStatus,
			PaymentStatus: paymentStatus,
		},
	}
}

func TestTickReplacesSnapshotWholesale(t *testing.T) {
	fetcher := &stubFetcher{}
	loop, _ := newTestLoop(fetcher)
	ctx := context.Background()

	first := orderSnapshot("o-1", domain.OrderWaitingPayment, domain.PaymentWaiting)
	first.Refunds = []domain.Refund{{ID: "r-1", OrderID: "o-1", Status: domain.RefundPending}}
	fetcher.set(first, nil)

	loop.Watch("o-1")
	loop.Tick(ctx)

	snap, ok := loop.Observed("o-1")
	require.True(t, ok)
	assert.Len(t, snap.Refunds, 1)

	// The next read replaces everything, including fields the new read
	// no longer carries.
	fetcher.set(orderSnapshot("o-1", domain.OrderProcessing, domain.PaymentPaid), nil)
	loop.Tick(ctx)

	snap, ok = loop.Observed("o-1")
	require.True(t, ok)
	assert.Equal(t, domain.OrderProcessing, snap.Order.OrderStatus)
	assert.Empty(t, snap.Refunds)
}

func TestFailedFetchKeepsLastSnapshot(t *testing.T) {
	fetcher := &stubFetcher{}
	loop, clock := newTestLoop(fetcher)
	ctx := context.Background()

	fetcher.set(orderSnapshot("o-1", domain.OrderProcessing, domain.PaymentPaid), nil)
	loop.Watch("o-1")
	loop.Tick(ctx)

	fetcher.set(Snapshot{}, errs.ErrUpstreamUnavailable)
	loop.Tick(ctx)

	snap, ok := loop.Observed("o-1")
	require.True(t, ok)
	assert.Equal(t, domain.OrderProcessing, snap.Order.OrderStatus)

	// The failure opened a backoff window; a tick inside it skips the
	// order entirely.
	calls := fetcher.callCount()
	loop.Tick(ctx)
	assert.Equal(t, calls, fetcher.callCount())

	clock.Advance(time.Minute + time.Second)
	loop.Tick(ctx)
	assert.Equal(t, calls+1, fetcher.callCount())
}

func TestBackoffResetsOnSuccess(t *testing.T) {
	fetcher := &stubFetcher{}
	loop, clock := newTestLoop(fetcher)
	ctx := context.Background()

	fetcher.set(Snapshot{}, errors.New("boom"))
	loop.Watch("o-1")
	loop.Tick(ctx)

	clock.Advance(time.Minute + time.Second)
	fetcher.set(orderSnapshot("o-1", domain.OrderProcessing, domain.PaymentPaid), nil)
	loop.Tick(ctx)

	// After a success the next tick fetches on the normal cadence.
	calls := fetcher.callCount()
	loop.Tick(ctx)
	assert.Equal(t, calls+1, fetcher.callCount())
}

func TestTerminalOrderLeavesPollingSet(t *testing.T) {
	fetcher := &stubFetcher{}
	loop, _ := newTestLoop(fetcher)
	ctx := context.Background()

	fetcher.set(orderSnapshot("o-1", domain.OrderDelivered, domain.PaymentPaid), nil)
	loop.Watch("o-1")
	loop.Tick(ctx)

	snap, ok := loop.Observed("o-1")
	require.True(t, ok)
	assert.Equal(t, domain.OrderDelivered, snap.Order.OrderStatus)

	// No further fetches once the order reached a terminal state.
	calls := fetcher.callCount()
	loop.Tick(ctx)
	assert.Equal(t, calls, fetcher.callCount())
}

func TestSubscribeReceivesNewSnapshots(t *testing.T) {
	fetcher := &stubFetcher{}
	loop, _ := newTestLoop(fetcher)
	ctx := context.Background()

	loop.Watch("o-1")
	ch := loop.Subscribe("o-1")

	fetcher.set(orderSnapshot("o-1", domain.OrderProcessing, domain.PaymentPaid), nil)
	loop.Tick(ctx)

	select {
	case snap := <-ch:
		assert.Equal(t, domain.OrderProcessing, snap.Order.OrderStatus)
	default:
		t.Fatal("expected a snapshot on the subscription channel")
	}
}

func TestSlowSubscriberMissesIntermediateSnapshots(t *testing.T) {
	fetcher := &stubFetcher{}
	loop, _ := newTestLoop(fetcher)
	ctx := context.Background()

	loop.Watch("o-1")
	ch := loop.Subscribe("o-1")

	fetcher.set(orderSnapshot("o-1", domain.OrderProcessing, domain.PaymentPaid), nil)
	loop.Tick(ctx)
	fetcher.set(orderSnapshot("o-1", domain.OrderPacked, domain.PaymentPaid), nil)
	loop.Tick(ctx)
	fetcher.set(orderSnapshot("o-1", domain.OrderShipped, domain.PaymentPaid), nil)
	loop.Tick(ctx)

	// Only the first undelivered snapshot is buffered; the rest are
	// dropped rather than blocking ticks.
	snap := <-ch
	assert.Equal(t, domain.OrderProcessing, snap.Order.OrderStatus)

	// The loop itself always holds the freshest state.
	latest, ok := loop.Observed("o-1")
	require.True(t, ok)
	assert.Equal(t, domain.OrderShipped, latest.Order.OrderStatus)
}

func TestRepositoryFetcher(t *testing.T) {
	orders := repository.CreateMemoryOrderRepository()
	refunds := repository.CreateMemoryRefundRepository()
	ctx := context.Background()

	require.NoError(t, orders.AddOrder(ctx, domain.Order{
		ID:            "o-1",
		OrderStatus:   domain.OrderDelivered,
		PaymentStatus: domain.PaymentPaid,
	}))
	require.NoError(t, refunds.AddRefund(ctx, domain.Refund{
		ID:      "r-1",
		OrderID: "o-1",
		Status:  domain.RefundPending,
	}))

	fetcher := CreateRepositoryFetcher(orders, refunds)

	snap, err := fetcher.Fetch(ctx, "o-1")
	require.NoError(t, err)
	assert.Equal(t, domain.OrderDelivered, snap.Order.OrderStatus)
	require.Len(t, snap.Refunds, 1)
	assert.Equal(t, "r-1", snap.Refunds[0].ID)

	_, err = fetcher.Fetch(ctx, "missing")
	assert.ErrorIs(t, err, errs.ErrNotFound)
}
