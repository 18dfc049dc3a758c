package repository

import (
	"context"

	"github.com/lumakart/fulfillment-service/internal/domain"
	pkgdto "github.com/lumakart/fulfillment-service/pkg/dto"
)

type OrderRepository interface {
	HandleTrx(ctx context.Context, fn func(ctx context.Context, repo OrderRepository) error) error

	AddOrder(ctx context.Context, data domain.Order) (err error)
	AddOrderItems(ctx context.Context, data []domain.OrderItem) (err error)
	GetOrderByID(ctx context.Context, id string) (data domain.Order, err error)
	GetOrders(ctx context.Context, filter pkgdto.Filter) (data []domain.Order, err error)
	UpdateOrderStatus(ctx context.Context, orderID string, status string) (err error)
	UpdatePaymentStatus(ctx context.Context, orderID string, status string, paidAt *int64) (err error)
	MarkRefundEligible(ctx context.Context, orderID string) (err error)
	AddStatusHistory(ctx context.Context, entry domain.StatusHistoryEntry) (err error)
	AddPaymentInstrument(ctx context.Context, data domain.PaymentInstrument) (err error)
	GetActiveInstrument(ctx context.Context, orderID string) (data domain.PaymentInstrument, found bool, err error)
	DeactivateInstruments(ctx context.Context, orderID string) (err error)
	GetExpiredWaitingOrders(ctx context.Context, now int64) (data []domain.Order, err error)
}

type RefundRepository interface {
	AddRefund(ctx context.Context, data domain.Refund) (err error)
	AddRefundEvidence(ctx context.Context, data []domain.RefundEvidence) (err error)
	AddRefundStatusHistory(ctx context.Context, entry domain.RefundStatusEntry) (err error)
	GetRefundByID(ctx context.Context, id string) (data domain.Refund, err error)
	GetRefunds(ctx context.Context, filter pkgdto.Filter) (data []domain.Refund, err error)
	GetActiveRefundByOrderID(ctx context.Context, orderID string) (data domain.Refund, found bool, err error)
	GetRefundsByOrderID(ctx context.Context, orderID string) (data []domain.Refund, err error)
	UpdateRefund(ctx context.Context, data domain.Refund) (err error)
}

type VoucherRepository interface {
	AddVoucher(ctx context.Context, data domain.Voucher) (err error)
	GetVoucherByCode(ctx context.Context, code string) (data domain.Voucher, found bool, err error)
	ConsumeVoucher(ctx context.Context, code string, orderID string) (consumed bool, err error)
	RestoreVoucherByOrderID(ctx context.Context, orderID string) (restored bool, err error)
}
