package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"

	"github.com/lumakart/fulfillment-service/internal/domain"
	"github.com/lumakart/fulfillment-service/internal/dto"
	"github.com/lumakart/fulfillment-service/internal/repository"
	pkgdto "github.com/lumakart/fulfillment-service/pkg/dto"
	"github.com/lumakart/fulfillment-service/pkg/errs"
	"github.com/lumakart/fulfillment-service/pkg/keylock"
)

type RefundServiceImpl struct {
	refundRepo repository.RefundRepository
	orderRepo  repository.OrderRepository
	orderSvc   OrderService
	locks      *keylock.KeyLock
	notifier   Notifier
	clock      clockwork.Clock
}

func CreateRefundService(refundRepo repository.RefundRepository, orderRepo repository.OrderRepository, orderSvc OrderService, locks *keylock.KeyLock, notifier Notifier, clock clockwork.Clock) RefundService {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &RefundServiceImpl{
		refundRepo: refundRepo,
		orderRepo:  orderRepo,
		orderSvc:   orderSvc,
		locks:      locks,
		notifier:   notifier,
		clock:      clock,
	}
}

// CreateUserRequest opens a refund for a delivered order. Evidence is
// mandatory for user requests, and an order can hold only one refund that
// is not yet rejected or completed.
func (s *RefundServiceImpl) CreateUserRequest(ctx context.Context, orderID string, req dto.RefundRequest, actor string) (resp dto.RefundResponse, err error) {
	order, err := s.orderRepo.GetOrderByID(ctx, orderID)
	if err != nil {
		return resp, err
	}

	if order.OrderStatus != domain.OrderDelivered {
		return resp, errs.ErrPreconditionNotMet
	}

	if len(req.Evidence) == 0 {
		return resp, errs.ErrEvidenceRequired
	}

	refund, err := s.createRefund(ctx, order, domain.RefundTypeUserRequest, req.Reason, req.Description, req.Evidence, actor)
	if err != nil {
		return resp, err
	}

	return toRefundResponse(refund), nil
}

// CreateAdminCancellation cancels the order and opens an admin refund in
// one user-visible action. The order is cancelled first; if refund
// creation then fails, the cancellation stands and the refund is retried
// by the operator — a cancellation is never rolled back.
func (s *RefundServiceImpl) CreateAdminCancellation(ctx context.Context, orderID string, reason string, actor string) (resp dto.RefundResponse, err error) {
	order, err := s.orderRepo.GetOrderByID(ctx, orderID)
	if err != nil {
		return resp, err
	}

	if domain.IsOrderTerminal(order.OrderStatus) {
		return resp, errs.ErrInvalidTransition
	}

	if _, found, aerr := s.refundRepo.GetActiveRefundByOrderID(ctx, orderID); aerr != nil {
		return resp, aerr
	} else if found {
		return resp, errs.ErrActiveRefundExists
	}

	if reason == "" {
		reason = "cancelled by admin"
	}

	if err = s.orderSvc.RequestTransition(ctx, orderID, domain.OrderCancelled, reason, actor); err != nil {
		return resp, err
	}

	refund, err := s.createRefund(ctx, order, domain.RefundTypeAdminCancel, reason, "", nil, actor)
	if err != nil {
		return resp, err
	}

	return toRefundResponse(refund), nil
}

func (s *RefundServiceImpl) createRefund(ctx context.Context, order domain.Order, refundType string, reason string, description string, evidence []dto.RefundEvidenceRequest, actor string) (refund domain.Refund, err error) {
	s.locks.Lock("refund:" + order.ID)
	defer s.locks.Unlock("refund:" + order.ID)

	if _, found, aerr := s.refundRepo.GetActiveRefundByOrderID(ctx, order.ID); aerr != nil {
		return refund, aerr
	} else if found {
		return refund, errs.ErrActiveRefundExists
	}

	refundID, err := uuid.NewV7()
	if err != nil {
		return refund, fmt.Errorf("error generating refund id: %v", err)
	}

	now := s.clock.Now().Unix()

	refund = domain.Refund{
		ID:          refundID.String(),
		OrderID:     order.ID,
		Type:        refundType,
		Reason:      reason,
		Description: description,
		Amount:      order.Total,
		Status:      domain.RefundPending,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err = s.refundRepo.AddRefund(ctx, refund); err != nil {
		return refund, err
	}

	if len(evidence) > 0 {
		items := make([]domain.RefundEvidence, 0, len(evidence))
		for _, ev := range evidence {
			items = append(items, domain.RefundEvidence{
				RefundID:   refund.ID,
				MediaKind:  ev.MediaKind,
				URL:        ev.URL,
				SizeBytes:  ev.SizeBytes,
				UploadedAt: now,
			})
		}
		if err = s.refundRepo.AddRefundEvidence(ctx, items); err != nil {
			return refund, err
		}
		refund.Evidence = items
	}

	if err = s.refundRepo.AddRefundStatusHistory(ctx, domain.RefundStatusEntry{
		RefundID:  refund.ID,
		Status:    domain.RefundPending,
		Note:      reason,
		Actor:     actor,
		CreatedAt: now,
	}); err != nil {
		return refund, err
	}

	s.notifier.NotifyStatusChange(dto.StatusChangeEvent{
		OrderID:    order.ID,
		RefundID:   refund.ID,
		Status:     domain.RefundPending,
		Actor:      actor,
		OccurredAt: now,
	})

	return refund, nil
}

func (s *RefundServiceImpl) ReviewDecision(ctx context.Context, refundID string, decision string, note string, reviewer string) (err error) {
	if decision != domain.RefundApproved && decision != domain.RefundRejected {
		return errs.ErrClient
	}

	return s.transition(ctx, refundID, decision, note, reviewer, func(refund *domain.Refund, now int64) {
		refund.ReviewedBy = &reviewer
		refund.ReviewedAt = &now
		if note != "" {
			refund.ReviewNote = &note
		}
	})
}

func (s *RefundServiceImpl) AdvanceShipping(ctx context.Context, refundID string, info domain.ReturnShippingInfo, actor string) (err error) {
	if info.Courier == "" || info.TrackingNumber == "" {
		return errs.ErrClient
	}

	return s.transition(ctx, refundID, domain.RefundShipping, fmt.Sprintf("return shipped via %s", info.Courier), actor, func(refund *domain.Refund, now int64) {
		refund.ReturnCourier = &info.Courier
		refund.ReturnTracking = &info.TrackingNumber
		refund.ShippedAt = &now
	})
}

func (s *RefundServiceImpl) RecordReceived(ctx context.Context, refundID string, actor string) (err error) {
	return s.transition(ctx, refundID, domain.RefundReceived, "returned goods received", actor, func(refund *domain.Refund, now int64) {
		refund.ReceivedAt = &now
	})
}

func (s *RefundServiceImpl) MarkRefunded(ctx context.Context, refundID string, method string, actor string) (err error) {
	if method == "" {
		return errs.ErrClient
	}

	return s.transition(ctx, refundID, domain.RefundRefunded, fmt.Sprintf("refunded via %s", method), actor, func(refund *domain.Refund, now int64) {
		refund.RefundedAt = &now
		refund.RefundMethod = &method
	})
}

func (s *RefundServiceImpl) Complete(ctx context.Context, refundID string, actor string) (err error) {
	return s.transition(ctx, refundID, domain.RefundCompleted, "refund completed", actor, nil)
}

// transition applies one refund-status edge under the per-refund lock.
// Unlike payment confirmation these edges are not idempotent: an illegal
// edge is an InvalidTransition error, never a silent no-op.
func (s *RefundServiceImpl) transition(ctx context.Context, refundID string, targetStatus string, note string, actor string, apply func(refund *domain.Refund, now int64)) (err error) {
	s.locks.Lock("refund:" + refundID)
	defer s.locks.Unlock("refund:" + refundID)

	refund, err := s.refundRepo.GetRefundByID(ctx, refundID)
	if err != nil {
		return err
	}

	if !domain.CanTransitionRefund(refund.Status, targetStatus) {
		return errs.ErrInvalidTransition
	}

	now := s.clock.Now().Unix()

	refund.Status = targetStatus
	refund.UpdatedAt = now
	if apply != nil {
		apply(&refund, now)
	}

	if err = s.refundRepo.UpdateRefund(ctx, refund); err != nil {
		return err
	}

	if err = s.refundRepo.AddRefundStatusHistory(ctx, domain.RefundStatusEntry{
		RefundID:  refundID,
		Status:    targetStatus,
		Note:      note,
		Actor:     actor,
		CreatedAt: now,
	}); err != nil {
		return err
	}

	s.notifier.NotifyStatusChange(dto.StatusChangeEvent{
		OrderID:    refund.OrderID,
		RefundID:   refundID,
		Status:     targetStatus,
		Actor:      actor,
		OccurredAt: now,
	})

	return nil
}

func (s *RefundServiceImpl) GetRefund(ctx context.Context, id string) (resp dto.RefundResponse, err error) {
	refund, err := s.refundRepo.GetRefundByID(ctx, id)
	if err != nil {
		return resp, err
	}

	return toRefundResponse(refund), nil
}

func (s *RefundServiceImpl) GetRefunds(ctx context.Context, filter pkgdto.Filter) (resp pkgdto.Pagination, err error) {
	refunds, err := s.refundRepo.GetRefunds(ctx, filter)
	if err != nil {
		return resp, err
	}

	records := make([]dto.RefundResponse, 0, len(refunds))
	for _, refund := range refunds {
		records = append(records, toRefundResponse(refund))
	}

	resp.Records = records
	resp.TotalCount = len(records)
	resp.Page = filter.Page
	resp.Limit = filter.Limit

	return resp, nil
}

func toRefundResponse(refund domain.Refund) dto.RefundResponse {
	evidence := make([]dto.RefundEvidenceResponse, 0, len(refund.Evidence))
	for _, ev := range refund.Evidence {
		evidence = append(evidence, dto.RefundEvidenceResponse{
			MediaKind:  ev.MediaKind,
			URL:        ev.URL,
			SizeBytes:  ev.SizeBytes,
			UploadedAt: ev.UploadedAt,
		})
	}

	history := make([]dto.StatusHistoryResponse, 0, len(refund.StatusHistory))
	for _, entry := range refund.StatusHistory {
		history = append(history, dto.StatusHistoryResponse{
			Status:    entry.Status,
			Note:      entry.Note,
			Actor:     entry.Actor,
			CreatedAt: entry.CreatedAt,
		})
	}

	return dto.RefundResponse{
		ID:             refund.ID,
		OrderID:        refund.OrderID,
		Type:           refund.Type,
		Reason:         refund.Reason,
		Description:    refund.Description,
		Amount:         refund.Amount,
		Status:         refund.Status,
		ReviewedBy:     refund.ReviewedBy,
		ReviewedAt:     refund.ReviewedAt,
		ReviewNote:     refund.ReviewNote,
		ReturnCourier:  refund.ReturnCourier,
		ReturnTracking: refund.ReturnTracking,
		ShippedAt:      refund.ShippedAt,
		ReceivedAt:     refund.ReceivedAt,
		RefundedAt:     refund.RefundedAt,
		RefundMethod:   refund.RefundMethod,
		Evidence:       evidence,
		StatusHistory:  history,
		CreatedAt:      refund.CreatedAt,
	}
}
