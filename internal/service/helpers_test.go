package service

import (
	"context"
	"testing"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/require"

	"github.com/lumakart/fulfillment-service/internal/deadline"
	"github.com/lumakart/fulfillment-service/internal/domain"
	"github.com/lumakart/fulfillment-service/internal/dto"
	paymentgateway "github.com/lumakart/fulfillment-service/internal/infrastructure/payment-gateway"
	"github.com/lumakart/fulfillment-service/internal/repository"
	"github.com/lumakart/fulfillment-service/pkg/keylock"
)

type testEnv struct {
	clock       clockwork.FakeClock
	orders      *repository.MemoryOrderRepository
	refunds     *repository.MemoryRefundRepository
	vouchers    *repository.MemoryVoucherRepository
	deadlines   *deadline.Registry
	coordinator *ConfirmationCoordinator
	orderSvc    OrderService
	paymentSvc  PaymentService
	refundSvc   RefundService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	env := &testEnv{
		clock:    clockwork.NewFakeClock(),
		orders:   repository.CreateMemoryOrderRepository(),
		refunds:  repository.CreateMemoryRefundRepository(),
		vouchers: repository.CreateMemoryVoucherRepository(),
	}

	locks := keylock.New()
	notifier := NoopNotifier{}
	provider := paymentgateway.CreateLocalProvider(env.clock)

	env.deadlines = deadline.CreateRegistry(env.clock, func(orderID string) {
		_ = env.paymentSvc.ExpirePayment(context.Background(), orderID)
	})

	env.coordinator = CreateConfirmationCoordinator(env.orders, locks, env.deadlines, notifier, env.clock)
	env.orderSvc = CreateOrderService(env.orders, env.vouchers, locks, env.deadlines, notifier, env.clock)
	env.paymentSvc = CreatePaymentService(env.orders, env.vouchers, provider, env.coordinator, locks, env.deadlines, notifier, env.clock)
	env.refundSvc = CreateRefundService(env.refunds, env.orders, env.orderSvc, locks, notifier, env.clock)

	return env
}

func (env *testEnv) createOrder(t *testing.T, method string, voucherCode *string) dto.OrderResponse {
	t.Helper()

	resp, err := env.orderSvc.AddOrder(context.Background(), dto.OrderRequest{
		UserID:          "user-1",
		ShippingAddress: "Jl. Sudirman 1, Jakarta",
		ShippingMethod:  "regular",
		ShippingCost:    10000,
		VoucherCode:     voucherCode,
		PaymentMethod:   method,
		OrderItems: []dto.OrderItemRequest{
			{ProductID: "p-1", ProductName: "Mechanical Keyboard", UnitPrice: 450000, Quantity: 1},
			{ProductID: "p-2", ProductName: "USB Cable", UnitPrice: 25000, Quantity: 2},
		},
	})
	require.NoError(t, err)

	return resp
}

func orderRequestWithVoucher(voucherCode *string) dto.OrderRequest {
	return dto.OrderRequest{
		UserID:          "user-2",
		ShippingAddress: "Jl. Thamrin 5, Jakarta",
		ShippingMethod:  "regular",
		ShippingCost:    10000,
		VoucherCode:     voucherCode,
		PaymentMethod:   domain.MethodQRIS,
		OrderItems: []dto.OrderItemRequest{
			{ProductID: "p-3", ProductName: "Desk Mat", UnitPrice: 120000, Quantity: 1},
		},
	}
}

func (env *testEnv) addVoucher(t *testing.T, code string, discount float64) {
	t.Helper()

	err := env.vouchers.AddVoucher(context.Background(), domain.Voucher{
		Code:     code,
		Discount: discount,
	})
	require.NoError(t, err)
}

func (env *testEnv) mustGetOrder(t *testing.T, id string) domain.Order {
	t.Helper()

	order, err := env.orders.GetOrderByID(context.Background(), id)
	require.NoError(t, err)

	return order
}

// historyCount counts entries recorded for the given status value.
func historyCount(order domain.Order, status string) int {
	count := 0
	for _, entry := range order.StatusHistory {
		if entry.Status == status {
			count++
		}
	}
	return count
}
