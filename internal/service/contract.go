package service

import (
	"context"

	"github.com/lumakart/fulfillment-service/internal/domain"
	"github.com/lumakart/fulfillment-service/internal/dto"
	pkgdto "github.com/lumakart/fulfillment-service/pkg/dto"
)

type OrderService interface {
	AddOrder(ctx context.Context, req dto.OrderRequest) (resp dto.OrderResponse, err error)
	GetOrder(ctx context.Context, id string) (resp dto.OrderResponse, err error)
	GetOrders(ctx context.Context, filter pkgdto.Filter) (resp pkgdto.Pagination, err error)
	RequestTransition(ctx context.Context, orderID string, targetStatus string, note string, actor string) (err error)
}

type PaymentService interface {
	StartAttempt(ctx context.Context, orderID string, method string) (resp dto.PaymentAttemptResponse, err error)
	ExpirePayment(ctx context.Context, orderID string) (err error)
	FailPayment(ctx context.Context, orderID string, reason string) (err error)
	HandleProviderNotification(ctx context.Context, req dto.PaymentNotification) (err error)
	SweepExpiredPayments()
}

type RefundService interface {
	CreateUserRequest(ctx context.Context, orderID string, req dto.RefundRequest, actor string) (resp dto.RefundResponse, err error)
	CreateAdminCancellation(ctx context.Context, orderID string, reason string, actor string) (resp dto.RefundResponse, err error)
	ReviewDecision(ctx context.Context, refundID string, decision string, note string, reviewer string) (err error)
	AdvanceShipping(ctx context.Context, refundID string, info domain.ReturnShippingInfo, actor string) (err error)
	RecordReceived(ctx context.Context, refundID string, actor string) (err error)
	MarkRefunded(ctx context.Context, refundID string, method string, actor string) (err error)
	Complete(ctx context.Context, refundID string, actor string) (err error)
	GetRefund(ctx context.Context, id string) (resp dto.RefundResponse, err error)
	GetRefunds(ctx context.Context, filter pkgdto.Filter) (resp pkgdto.Pagination, err error)
}
