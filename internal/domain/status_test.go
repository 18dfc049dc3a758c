package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestCanTransitionOrder(t *testing.T) {
	testCases := []struct {
		name    string
		from    string
		to      string
		allowed bool
	}{
		{"waiting payment to processing", OrderWaitingPayment, OrderProcessing, true},
		{"waiting payment to cancelled", OrderWaitingPayment, OrderCancelled, true},
		{"waiting payment to shipped", OrderWaitingPayment, OrderShipped, false},
		{"processing to packed", OrderProcessing, OrderPacked, true},
		{"processing to cancelled", OrderProcessing, OrderCancelled, true},
		{"processing to delivered", OrderProcessing, OrderDelivered, false},
		{"packed to shipped", OrderPacked, OrderShipped, true},
		{"shipped to delivered", OrderShipped, OrderDelivered, true},
		{"delivered is terminal", OrderDelivered, OrderCancelled, false},
		{"cancelled is terminal", OrderCancelled, OrderWaitingPayment, false},
		{"no skipping ahead", OrderProcessing, OrderShipped, false},
		{"no going back", OrderShipped, OrderPacked, false},
		{"unknown status", "unknown", OrderProcessing, false},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.allowed, CanTransitionOrder(tc.from, tc.to))
		})
	}
}

func TestCanTransitionRefund(t *testing.T) {
	testCases := []struct {
		name    string
		from    string
		to      string
		allowed bool
	}{
		{"pending to approved", RefundPending, RefundApproved, true},
		{"pending to rejected", RefundPending, RefundRejected, true},
		{"pending straight to refunded", RefundPending, RefundRefunded, false},
		{"approved to shipping", RefundApproved, RefundShipping, true},
		{"shipping to received", RefundShipping, RefundReceived, true},
		{"received to refunded", RefundReceived, RefundRefunded, true},
		{"refunded to completed", RefundRefunded, RefundCompleted, true},
		{"rejected is terminal", RefundRejected, RefundApproved, false},
		{"completed is terminal", RefundCompleted, RefundPending, false},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.allowed, CanTransitionRefund(tc.from, tc.to))
		})
	}
}

func TestTerminalStates(t *testing.T) {
	assert.True(t, IsOrderTerminal(OrderDelivered))
	assert.True(t, IsOrderTerminal(OrderCancelled))
	assert.False(t, IsOrderTerminal(OrderShipped))

	assert.True(t, IsPaymentTerminal(PaymentPaid))
	assert.True(t, IsPaymentTerminal(PaymentExpired))
	assert.True(t, IsPaymentTerminal(PaymentFailed))
	assert.False(t, IsPaymentTerminal(PaymentWaiting))
	assert.False(t, IsPaymentTerminal(PaymentCODPending))

	assert.True(t, IsRefundTerminal(RefundRejected))
	assert.True(t, IsRefundTerminal(RefundCompleted))
	assert.False(t, IsRefundTerminal(RefundRefunded))
}

func TestPaymentWindow(t *testing.T) {
	assert.Equal(t, 10*time.Minute, PaymentWindow(MethodQRIS))
	assert.Equal(t, 10*time.Minute, PaymentWindow(MethodEWallet))
	assert.Equal(t, 24*time.Hour, PaymentWindow(MethodVirtualAccount))
	assert.Equal(t, time.Duration(0), PaymentWindow(MethodCOD))
}
