package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lumakart/fulfillment-service/internal/domain"
	"github.com/lumakart/fulfillment-service/pkg/errs"
)

func TestAddOrder(t *testing.T) {
	env := newTestEnv(t)

	resp := env.createOrder(t, domain.MethodQRIS, nil)

	assert.Equal(t, domain.OrderWaitingPayment, resp.OrderStatus)
	assert.Equal(t, domain.PaymentWaiting, resp.PaymentStatus)
	assert.Equal(t, float64(450000+2*25000), resp.Subtotal)
	assert.Equal(t, resp.Subtotal+10000, resp.Total)

	stored := env.mustGetOrder(t, resp.ID)
	assert.Len(t, stored.Items, 2)
	assert.Equal(t, 1, historyCount(stored, domain.OrderWaitingPayment))
}

func TestAddOrderCODStartsCodPending(t *testing.T) {
	env := newTestEnv(t)

	resp := env.createOrder(t, domain.MethodCOD, nil)

	assert.Equal(t, domain.OrderWaitingPayment, resp.OrderStatus)
	assert.Equal(t, domain.PaymentCODPending, resp.PaymentStatus)
}

func TestAddOrderConsumesVoucher(t *testing.T) {
	env := newTestEnv(t)
	env.addVoucher(t, "HEMAT10", 10000)

	code := "HEMAT10"
	resp := env.createOrder(t, domain.MethodQRIS, &code)

	assert.Equal(t, float64(10000), resp.VoucherDiscount)
	assert.Equal(t, resp.Subtotal+10000-10000, resp.Total)

	voucher, found, err := env.vouchers.GetVoucherByCode(context.Background(), "HEMAT10")
	require.NoError(t, err)
	require.True(t, found)
	assert.True(t, voucher.Consumed)
	require.NotNil(t, voucher.OrderID)
	assert.Equal(t, resp.ID, *voucher.OrderID)
}

func TestAddOrderRejectsConsumedVoucher(t *testing.T) {
	env := newTestEnv(t)
	env.addVoucher(t, "HEMAT10", 10000)

	code := "HEMAT10"
	env.createOrder(t, domain.MethodQRIS, &code)

	_, err := env.orderSvc.AddOrder(context.Background(), orderRequestWithVoucher(&code))
	assert.ErrorIs(t, err, errs.ErrVoucherConsumed)
}

func TestRequestTransitionRequiresPaymentUnlessCOD(t *testing.T) {
	env := newTestEnv(t)

	t.Run("non-COD unpaid is rejected", func(t *testing.T) {
		order := env.createOrder(t, domain.MethodQRIS, nil)

		err := env.orderSvc.RequestTransition(context.Background(), order.ID, domain.OrderProcessing, "", "admin")
		assert.ErrorIs(t, err, errs.ErrPreconditionNotMet)
	})

	t.Run("non-COD paid proceeds", func(t *testing.T) {
		order := env.createOrder(t, domain.MethodQRIS, nil)

		require.NoError(t, env.coordinator.ConfirmPayment(context.Background(), order.ID))

		stored := env.mustGetOrder(t, order.ID)
		assert.Equal(t, domain.OrderProcessing, stored.OrderStatus)
	})

	t.Run("COD proceeds unpaid", func(t *testing.T) {
		order := env.createOrder(t, domain.MethodCOD, nil)

		err := env.orderSvc.RequestTransition(context.Background(), order.ID, domain.OrderProcessing, "", "admin")
		require.NoError(t, err)

		stored := env.mustGetOrder(t, order.ID)
		assert.Equal(t, domain.OrderProcessing, stored.OrderStatus)
		assert.Equal(t, domain.PaymentCODPending, stored.PaymentStatus)
	})
}

func TestRequestTransitionRejectsIllegalEdge(t *testing.T) {
	env := newTestEnv(t)
	order := env.createOrder(t, domain.MethodQRIS, nil)

	err := env.orderSvc.RequestTransition(context.Background(), order.ID, domain.OrderShipped, "", "admin")
	assert.ErrorIs(t, err, errs.ErrInvalidTransition)

	stored := env.mustGetOrder(t, order.ID)
	assert.Equal(t, domain.OrderWaitingPayment, stored.OrderStatus)
}

func TestTerminalOrderRejectsEverything(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	order := env.createOrder(t, domain.MethodCOD, nil)
	for _, status := range []string{domain.OrderProcessing, domain.OrderPacked, domain.OrderShipped, domain.OrderDelivered} {
		require.NoError(t, env.orderSvc.RequestTransition(ctx, order.ID, status, "", "admin"))
	}

	for _, target := range []string{domain.OrderProcessing, domain.OrderPacked, domain.OrderShipped, domain.OrderDelivered, domain.OrderCancelled} {
		err := env.orderSvc.RequestTransition(ctx, order.ID, target, "", "admin")
		assert.ErrorIs(t, err, errs.ErrInvalidTransition, "target %s", target)
	}
}

func TestDeliveredCODMarksPaid(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	order := env.createOrder(t, domain.MethodCOD, nil)
	for _, status := range []string{domain.OrderProcessing, domain.OrderPacked, domain.OrderShipped, domain.OrderDelivered} {
		require.NoError(t, env.orderSvc.RequestTransition(ctx, order.ID, status, "", "admin"))
	}

	stored := env.mustGetOrder(t, order.ID)
	assert.Equal(t, domain.OrderDelivered, stored.OrderStatus)
	assert.Equal(t, domain.PaymentPaid, stored.PaymentStatus)
	require.NotNil(t, stored.PaidAt)
	assert.Equal(t, 1, historyCount(stored, domain.PaymentPaid))
}

func TestCancelRestoresVoucherAndMarksRefundEligibleWhenPaid(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.addVoucher(t, "HEMAT10", 10000)

	code := "HEMAT10"
	order := env.createOrder(t, domain.MethodQRIS, &code)

	require.NoError(t, env.coordinator.ConfirmPayment(ctx, order.ID))
	require.NoError(t, env.orderSvc.RequestTransition(ctx, order.ID, domain.OrderCancelled, "out of stock", "admin"))

	stored := env.mustGetOrder(t, order.ID)
	assert.Equal(t, domain.OrderCancelled, stored.OrderStatus)
	assert.True(t, stored.RefundEligible)

	voucher, found, err := env.vouchers.GetVoucherByCode(ctx, "HEMAT10")
	require.NoError(t, err)
	require.True(t, found)
	assert.False(t, voucher.Consumed)
}

func TestCancelUnpaidRestoresVoucherOnly(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.addVoucher(t, "HEMAT10", 10000)

	code := "HEMAT10"
	order := env.createOrder(t, domain.MethodQRIS, &code)

	require.NoError(t, env.orderSvc.RequestTransition(ctx, order.ID, domain.OrderCancelled, "changed mind", "admin"))

	stored := env.mustGetOrder(t, order.ID)
	assert.False(t, stored.RefundEligible)

	voucher, _, err := env.vouchers.GetVoucherByCode(ctx, "HEMAT10")
	require.NoError(t, err)
	assert.False(t, voucher.Consumed)
}
