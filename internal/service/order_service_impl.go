package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"

	"github.com/lumakart/fulfillment-service/internal/deadline"
	"github.com/lumakart/fulfillment-service/internal/domain"
	"github.com/lumakart/fulfillment-service/internal/dto"
	"github.com/lumakart/fulfillment-service/internal/repository"
	pkgdto "github.com/lumakart/fulfillment-service/pkg/dto"
	"github.com/lumakart/fulfillment-service/pkg/errs"
	"github.com/lumakart/fulfillment-service/pkg/keylock"
)

type OrderServiceImpl struct {
	orderRepo   repository.OrderRepository
	voucherRepo repository.VoucherRepository
	locks       *keylock.KeyLock
	deadlines   *deadline.Registry
	notifier    Notifier
	clock       clockwork.Clock
}

func CreateOrderService(orderRepo repository.OrderRepository, voucherRepo repository.VoucherRepository, locks *keylock.KeyLock, deadlines *deadline.Registry, notifier Notifier, clock clockwork.Clock) OrderService {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &OrderServiceImpl{
		orderRepo:   orderRepo,
		voucherRepo: voucherRepo,
		locks:       locks,
		deadlines:   deadlines,
		notifier:    notifier,
		clock:       clock,
	}
}

// AddOrder stores the checkout snapshot. The snapshot fields never change
// after this point; only the status fields and history do.
func (s *OrderServiceImpl) AddOrder(ctx context.Context, req dto.OrderRequest) (resp dto.OrderResponse, err error) {
	if !domain.IsValidPaymentMethod(req.PaymentMethod) {
		return resp, errs.ErrClient
	}

	if len(req.OrderItems) == 0 {
		return resp, errs.ErrClient
	}

	orderID, err := uuid.NewV7()
	if err != nil {
		return resp, fmt.Errorf("error generating order id: %v", err)
	}

	now := s.clock.Now().Unix()

	var subtotal float64
	items := make([]domain.OrderItem, 0, len(req.OrderItems))
	for _, item := range req.OrderItems {
		subtotal += item.UnitPrice * float64(item.Quantity)
		items = append(items, domain.OrderItem{
			OrderID:     orderID.String(),
			ProductID:   item.ProductID,
			ProductName: item.ProductName,
			UnitPrice:   item.UnitPrice,
			Quantity:    item.Quantity,
			CreatedAt:   now,
		})
	}

	var discount float64
	voucherConsumed := false
	if req.VoucherCode != nil && *req.VoucherCode != "" {
		voucher, found, verr := s.voucherRepo.GetVoucherByCode(ctx, *req.VoucherCode)
		if verr != nil {
			return resp, verr
		}
		if !found {
			return resp, errs.ErrNotFound
		}

		voucherConsumed, verr = s.voucherRepo.ConsumeVoucher(ctx, *req.VoucherCode, orderID.String())
		if verr != nil {
			return resp, verr
		}
		if !voucherConsumed {
			return resp, errs.ErrVoucherConsumed
		}
		discount = voucher.Discount
	}

	paymentStatus := domain.PaymentWaiting
	if req.PaymentMethod == domain.MethodCOD {
		paymentStatus = domain.PaymentCODPending
	}

	order := domain.Order{
		ID:              orderID.String(),
		UserID:          req.UserID,
		ShippingAddress: req.ShippingAddress,
		ShippingMethod:  req.ShippingMethod,
		ShippingCost:    req.ShippingCost,
		VoucherCode:     req.VoucherCode,
		VoucherDiscount: discount,
		Subtotal:        subtotal,
		Total:           subtotal + req.ShippingCost - discount,
		PaymentMethod:   req.PaymentMethod,
		OrderStatus:     domain.OrderWaitingPayment,
		PaymentStatus:   paymentStatus,
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	err = s.orderRepo.HandleTrx(ctx, func(ctx context.Context, repo repository.OrderRepository) error {
		if trxErr := repo.AddOrder(ctx, order); trxErr != nil {
			return trxErr
		}

		if trxErr := repo.AddOrderItems(ctx, items); trxErr != nil {
			return trxErr
		}

		return repo.AddStatusHistory(ctx, domain.StatusHistoryEntry{
			OrderID:   order.ID,
			Status:    domain.OrderWaitingPayment,
			Note:      "order created",
			Actor:     "system",
			CreatedAt: now,
		})
	})
	if err != nil {
		// Compensate the consumed voucher; the conditional restore makes
		// this safe to repeat.
		if voucherConsumed {
			if _, rerr := s.voucherRepo.RestoreVoucherByOrderID(ctx, order.ID); rerr != nil {
				log.Error().Err(rerr).Str("component", "AddOrder").Str("order_id", order.ID).Msg("failed to restore voucher after aborted checkout")
			}
		}
		return resp, err
	}

	order.Items = items
	return toOrderResponse(order), nil
}

func (s *OrderServiceImpl) GetOrder(ctx context.Context, id string) (resp dto.OrderResponse, err error) {
	order, err := s.orderRepo.GetOrderByID(ctx, id)
	if err != nil {
		return resp, err
	}

	return toOrderResponse(order), nil
}

func (s *OrderServiceImpl) GetOrders(ctx context.Context, filter pkgdto.Filter) (resp pkgdto.Pagination, err error) {
	orders, err := s.orderRepo.GetOrders(ctx, filter)
	if err != nil {
		return resp, err
	}

	records := make([]dto.OrderResponse, 0, len(orders))
	for _, order := range orders {
		records = append(records, toOrderResponse(order))
	}

	resp.Records = records
	resp.TotalCount = len(records)
	resp.Page = filter.Page
	resp.Limit = filter.Limit

	return resp, nil
}

// RequestTransition applies one order-status transition under the
// per-order lock. Every caller goes through the same allow-list.
func (s *OrderServiceImpl) RequestTransition(ctx context.Context, orderID string, targetStatus string, note string, actor string) (err error) {
	s.locks.Lock(orderID)
	defer s.locks.Unlock(orderID)

	order, err := s.orderRepo.GetOrderByID(ctx, orderID)
	if err != nil {
		return err
	}

	if !domain.CanTransitionOrder(order.OrderStatus, targetStatus) {
		return errs.ErrInvalidTransition
	}

	// Processing requires payment, except COD which is paid on delivery.
	if order.OrderStatus == domain.OrderWaitingPayment && targetStatus == domain.OrderProcessing {
		if order.PaymentStatus != domain.PaymentPaid && order.PaymentMethod != domain.MethodCOD {
			return errs.ErrPreconditionNotMet
		}
	}

	now := s.clock.Now().Unix()

	if err = s.orderRepo.UpdateOrderStatus(ctx, orderID, targetStatus); err != nil {
		return err
	}

	if err = s.orderRepo.AddStatusHistory(ctx, domain.StatusHistoryEntry{
		OrderID:   orderID,
		Status:    targetStatus,
		Note:      note,
		Actor:     actor,
		CreatedAt: now,
	}); err != nil {
		return err
	}

	paymentStatus := order.PaymentStatus

	switch targetStatus {
	case domain.OrderDelivered:
		// COD is paid on delivery; this is the only way out of cod_pending.
		if order.PaymentStatus == domain.PaymentCODPending {
			paidAt := now
			if err = s.orderRepo.UpdatePaymentStatus(ctx, orderID, domain.PaymentPaid, &paidAt); err != nil {
				return err
			}
			if err = s.orderRepo.AddStatusHistory(ctx, domain.StatusHistoryEntry{
				OrderID:   orderID,
				Status:    domain.PaymentPaid,
				Note:      "payment collected on delivery",
				Actor:     "system",
				CreatedAt: now,
			}); err != nil {
				return err
			}
			paymentStatus = domain.PaymentPaid
		}
		s.deadlines.Cancel(orderID)
	case domain.OrderCancelled:
		s.deadlines.Cancel(orderID)

		if derr := s.orderRepo.DeactivateInstruments(ctx, orderID); derr != nil {
			log.Error().Err(derr).Str("component", "RequestTransition").Str("order_id", orderID).Msg("")
		}

		restored, rerr := s.voucherRepo.RestoreVoucherByOrderID(ctx, orderID)
		if rerr != nil {
			log.Error().Err(rerr).Str("component", "RequestTransition").Str("order_id", orderID).Msg("voucher restore failed")
		} else if restored {
			log.Info().Str("component", "RequestTransition").Str("order_id", orderID).Msg("voucher restored")
		}

		if order.PaymentStatus == domain.PaymentPaid {
			if merr := s.orderRepo.MarkRefundEligible(ctx, orderID); merr != nil {
				log.Error().Err(merr).Str("component", "RequestTransition").Str("order_id", orderID).Msg("")
			}
		}
	}

	s.notifier.NotifyStatusChange(dto.StatusChangeEvent{
		OrderID:       orderID,
		Status:        targetStatus,
		PaymentStatus: paymentStatus,
		Actor:         actor,
		OccurredAt:    now,
	})

	return nil
}

func toOrderResponse(order domain.Order) dto.OrderResponse {
	items := make([]dto.OrderItemResponse, 0, len(order.Items))
	for _, item := range order.Items {
		items = append(items, dto.OrderItemResponse{
			ProductID:   item.ProductID,
			ProductName: item.ProductName,
			UnitPrice:   item.UnitPrice,
			Quantity:    item.Quantity,
		})
	}

	history := make([]dto.StatusHistoryResponse, 0, len(order.StatusHistory))
	for _, entry := range order.StatusHistory {
		history = append(history, dto.StatusHistoryResponse{
			Status:    entry.Status,
			Note:      entry.Note,
			Actor:     entry.Actor,
			CreatedAt: entry.CreatedAt,
		})
	}

	return dto.OrderResponse{
		ID:              order.ID,
		UserID:          order.UserID,
		ShippingAddress: order.ShippingAddress,
		ShippingMethod:  order.ShippingMethod,
		ShippingCost:    order.ShippingCost,
		VoucherCode:     order.VoucherCode,
		VoucherDiscount: order.VoucherDiscount,
		Subtotal:        order.Subtotal,
		Total:           order.Total,
		PaymentMethod:   order.PaymentMethod,
		OrderStatus:     order.OrderStatus,
		PaymentStatus:   order.PaymentStatus,
		PaidAt:          order.PaidAt,
		RefundEligible:  order.RefundEligible,
		Items:           items,
		StatusHistory:   history,
		CreatedAt:       order.CreatedAt,
	}
}
