package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lumakart/fulfillment-service/internal/domain"
)

func TestConfirmPayment(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	order := env.createOrder(t, domain.MethodQRIS, nil)
	_, err := env.paymentSvc.StartAttempt(ctx, order.ID, domain.MethodQRIS)
	require.NoError(t, err)

	require.NoError(t, env.coordinator.ConfirmPayment(ctx, order.ID))

	stored := env.mustGetOrder(t, order.ID)
	assert.Equal(t, domain.PaymentPaid, stored.PaymentStatus)
	assert.Equal(t, domain.OrderProcessing, stored.OrderStatus)
	require.NotNil(t, stored.PaidAt)
	assert.Equal(t, env.clock.Now().Unix(), *stored.PaidAt)
	assert.False(t, env.deadlines.Armed(order.ID))

	_, found, err := env.orders.GetActiveInstrument(ctx, order.ID)
	require.NoError(t, err)
	assert.False(t, found)
}

func TestConfirmPaymentIsIdempotent(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	order := env.createOrder(t, domain.MethodQRIS, nil)

	require.NoError(t, env.coordinator.ConfirmPayment(ctx, order.ID))
	require.NoError(t, env.coordinator.ConfirmPayment(ctx, order.ID))
	require.NoError(t, env.coordinator.ConfirmPayment(ctx, order.ID))

	stored := env.mustGetOrder(t, order.ID)
	assert.Equal(t, domain.PaymentPaid, stored.PaymentStatus)
	assert.Equal(t, 1, historyCount(stored, domain.PaymentPaid))
	assert.Equal(t, 1, historyCount(stored, domain.OrderProcessing))
}

func TestConcurrentConfirmationsCollapse(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	order := env.createOrder(t, domain.MethodQRIS, nil)

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.NoError(t, env.coordinator.ConfirmPayment(ctx, order.ID))
		}()
	}
	wg.Wait()

	stored := env.mustGetOrder(t, order.ID)
	assert.Equal(t, domain.PaymentPaid, stored.PaymentStatus)
	assert.Equal(t, 1, historyCount(stored, domain.PaymentPaid))
}

func TestConfirmAfterExpiryIsNoOp(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	order := env.createOrder(t, domain.MethodQRIS, nil)
	_, err := env.paymentSvc.StartAttempt(ctx, order.ID, domain.MethodQRIS)
	require.NoError(t, err)

	require.NoError(t, env.paymentSvc.ExpirePayment(ctx, order.ID))
	require.NoError(t, env.coordinator.ConfirmPayment(ctx, order.ID))

	stored := env.mustGetOrder(t, order.ID)
	assert.Equal(t, domain.PaymentExpired, stored.PaymentStatus)
	assert.Equal(t, domain.OrderWaitingPayment, stored.OrderStatus)
	assert.Nil(t, stored.PaidAt)
}

func TestConfirmCancelsArmedDeadline(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	order := env.createOrder(t, domain.MethodQRIS, nil)
	_, err := env.paymentSvc.StartAttempt(ctx, order.ID, domain.MethodQRIS)
	require.NoError(t, err)
	require.True(t, env.deadlines.Armed(order.ID))

	require.NoError(t, env.coordinator.ConfirmPayment(ctx, order.ID))
	assert.False(t, env.deadlines.Armed(order.ID))

	// The window elapsing afterwards must not disturb the confirmed state.
	env.clock.Advance(time.Hour)

	stored := env.mustGetOrder(t, order.ID)
	assert.Equal(t, domain.PaymentPaid, stored.PaymentStatus)
	assert.Equal(t, domain.OrderProcessing, stored.OrderStatus)
}
