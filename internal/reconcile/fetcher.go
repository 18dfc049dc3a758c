package reconcile

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/lumakart/fulfillment-service/internal/domain"
	"github.com/lumakart/fulfillment-service/internal/dto"
	"github.com/lumakart/fulfillment-service/internal/repository"
	"github.com/lumakart/fulfillment-service/pkg/errs"
	"github.com/lumakart/fulfillment-service/pkg/httpclient"
)

// Snapshot is one authoritative read of an order and its refunds. Ticks
// replace the observed snapshot wholesale; fields are never merged.
type Snapshot struct {
	Order   domain.Order
	Refunds []domain.Refund
}

// Fetcher reads authoritative state. The loop treats any error as
// "try again next tick", never as data.
type Fetcher interface {
	Fetch(ctx context.Context, orderID string) (Snapshot, error)
}

// RepositoryFetcher reads straight from the local store.
type RepositoryFetcher struct {
	orders  repository.OrderRepository
	refunds repository.RefundRepository
}

func CreateRepositoryFetcher(orders repository.OrderRepository, refunds repository.RefundRepository) *RepositoryFetcher {
	return &RepositoryFetcher{orders: orders, refunds: refunds}
}

func (f *RepositoryFetcher) Fetch(ctx context.Context, orderID string) (Snapshot, error) {
	order, err := f.orders.GetOrderByID(ctx, orderID)
	if err != nil {
		return Snapshot{}, err
	}

	refunds, err := f.refunds.GetRefundsByOrderID(ctx, orderID)
	if err != nil {
		return Snapshot{}, err
	}

	return Snapshot{Order: order, Refunds: refunds}, nil
}

// HTTPFetcher polls a hosted backend's order endpoint. Used when the
// authoritative store lives behind another deployment.
type HTTPFetcher struct {
	baseURL string
}

func CreateHTTPFetcher(baseURL string) *HTTPFetcher {
	return &HTTPFetcher{baseURL: baseURL}
}

func (f *HTTPFetcher) Fetch(ctx context.Context, orderID string) (Snapshot, error) {
	req := httpclient.HttpRequest{
		URL:    fmt.Sprintf("%s/api/v1/orders/%s", f.baseURL, orderID),
		Method: http.MethodGet,
		Headers: map[string]string{
			"Accept": "application/json",
		},
	}

	statusCode, body, err := httpclient.SendRequest(ctx, req)
	if err != nil {
		return Snapshot{}, errs.ErrUpstreamUnavailable
	}

	if statusCode == http.StatusNotFound {
		return Snapshot{}, errs.ErrNotFound
	}

	if statusCode != http.StatusOK {
		return Snapshot{}, errs.ErrUpstreamUnavailable
	}

	var payload struct {
		Data dto.OrderResponse `json:"data"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return Snapshot{}, errs.ErrUpstreamUnavailable
	}

	return Snapshot{Order: orderFromResponse(payload.Data)}, nil
}

func orderFromResponse(resp dto.OrderResponse) domain.Order {
	order := domain.Order{
		ID:              resp.ID,
		UserID:          resp.UserID,
		ShippingAddress: resp.ShippingAddress,
		ShippingMethod:  resp.ShippingMethod,
		ShippingCost:    resp.ShippingCost,
		VoucherCode:     resp.VoucherCode,
		VoucherDiscount: resp.VoucherDiscount,
		Subtotal:        resp.Subtotal,
		Total:           resp.Total,
		PaymentMethod:   resp.PaymentMethod,
		OrderStatus:     resp.OrderStatus,
		PaymentStatus:   resp.PaymentStatus,
		PaidAt:          resp.PaidAt,
		RefundEligible:  resp.RefundEligible,
		CreatedAt:       resp.CreatedAt,
	}

	for _, item := range resp.Items {
		order.Items = append(order.Items, domain.OrderItem{
			OrderID:     resp.ID,
			ProductID:   item.ProductID,
			ProductName: item.ProductName,
			UnitPrice:   item.UnitPrice,
			Quantity:    item.Quantity,
		})
	}

	for _, entry := range resp.StatusHistory {
		order.StatusHistory = append(order.StatusHistory, domain.StatusHistoryEntry{
			OrderID:   resp.ID,
			Status:    entry.Status,
			Note:      entry.Note,
			Actor:     entry.Actor,
			CreatedAt: entry.CreatedAt,
		})
	}

	return order
}
