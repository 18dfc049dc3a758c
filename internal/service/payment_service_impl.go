package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"

	"github.com/lumakart/fulfillment-service/internal/deadline"
	"github.com/lumakart/fulfillment-service/internal/domain"
	"github.com/lumakart/fulfillment-service/internal/dto"
	paymentgateway "github.com/lumakart/fulfillment-service/internal/infrastructure/payment-gateway"
	"github.com/lumakart/fulfillment-service/internal/repository"
	"github.com/lumakart/fulfillment-service/pkg/errs"
	"github.com/lumakart/fulfillment-service/pkg/keylock"
)

type PaymentServiceImpl struct {
	orderRepo   repository.OrderRepository
	voucherRepo repository.VoucherRepository
	provider    paymentgateway.Provider
	coordinator *ConfirmationCoordinator
	locks       *keylock.KeyLock
	deadlines   *deadline.Registry
	notifier    Notifier
	clock       clockwork.Clock
}

func CreatePaymentService(orderRepo repository.OrderRepository, voucherRepo repository.VoucherRepository, provider paymentgateway.Provider, coordinator *ConfirmationCoordinator, locks *keylock.KeyLock, deadlines *deadline.Registry, notifier Notifier, clock clockwork.Clock) PaymentService {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &PaymentServiceImpl{
		orderRepo:   orderRepo,
		voucherRepo: voucherRepo,
		provider:    provider,
		coordinator: coordinator,
		locks:       locks,
		deadlines:   deadlines,
		notifier:    notifier,
		clock:       clock,
	}
}

// StartAttempt charges the provider and records a fresh instrument with a
// method-specific deadline. A paid or COD order never gets an instrument;
// an expired or failed payment may retry, which moves the payment back to
// waiting_payment.
func (s *PaymentServiceImpl) StartAttempt(ctx context.Context, orderID string, method string) (resp dto.PaymentAttemptResponse, err error) {
	if method == domain.MethodCOD || !domain.IsValidPaymentMethod(method) {
		return resp, errs.ErrClient
	}

	s.locks.Lock(orderID)
	defer s.locks.Unlock(orderID)

	order, err := s.orderRepo.GetOrderByID(ctx, orderID)
	if err != nil {
		return resp, err
	}

	if order.PaymentStatus == domain.PaymentPaid || order.PaymentStatus == domain.PaymentCODPending {
		return resp, errs.ErrPreconditionNotMet
	}

	if domain.IsOrderTerminal(order.OrderStatus) {
		return resp, errs.ErrPreconditionNotMet
	}

	charge, err := s.provider.Charge(orderID, method, order.Total)
	if err != nil {
		log.Error().Err(err).Str("component", "StartAttempt").Str("order_id", orderID).Msg("")
		return resp, errs.ErrUpstreamUnavailable
	}

	now := s.clock.Now().Unix()

	instrumentID, err := uuid.NewV7()
	if err != nil {
		return resp, fmt.Errorf("error generating instrument id: %v", err)
	}

	// Any previous attempt is superseded by this one.
	if derr := s.orderRepo.DeactivateInstruments(ctx, orderID); derr != nil {
		return resp, derr
	}

	instrument := domain.PaymentInstrument{
		ID:        instrumentID.String(),
		OrderID:   orderID,
		Kind:      method,
		Amount:    order.Total,
		Reference: charge.Reference,
		ExpiredAt: charge.ExpiredAt,
		CreatedAt: now,
	}

	if err = s.orderRepo.AddPaymentInstrument(ctx, instrument); err != nil {
		return resp, err
	}

	if order.PaymentStatus != domain.PaymentWaiting {
		if err = s.orderRepo.UpdatePaymentStatus(ctx, orderID, domain.PaymentWaiting, nil); err != nil {
			return resp, err
		}

		if err = s.orderRepo.AddStatusHistory(ctx, domain.StatusHistoryEntry{
			OrderID:   orderID,
			Status:    domain.PaymentWaiting,
			Note:      "payment retry",
			Actor:     "system",
			CreatedAt: now,
		}); err != nil {
			return resp, err
		}
	}

	s.deadlines.Arm(orderID, time.Unix(charge.ExpiredAt, 0))

	return dto.PaymentAttemptResponse{
		InstrumentID: instrument.ID,
		OrderID:      orderID,
		Kind:         method,
		Amount:       instrument.Amount,
		Reference:    instrument.Reference,
		ExpiredAt:    instrument.ExpiredAt,
	}, nil
}

// ExpirePayment fires when the deadline elapses. It only applies against
// waiting_payment: if a confirmation won the race, this is a no-op, and
// the other way around.
func (s *PaymentServiceImpl) ExpirePayment(ctx context.Context, orderID string) (err error) {
	return s.terminatePayment(ctx, orderID, domain.PaymentExpired, "payment window elapsed")
}

func (s *PaymentServiceImpl) FailPayment(ctx context.Context, orderID string, reason string) (err error) {
	if reason == "" {
		reason = "payment failed"
	}
	return s.terminatePayment(ctx, orderID, domain.PaymentFailed, reason)
}

func (s *PaymentServiceImpl) terminatePayment(ctx context.Context, orderID string, status string, note string) (err error) {
	s.locks.Lock(orderID)
	defer s.locks.Unlock(orderID)

	order, err := s.orderRepo.GetOrderByID(ctx, orderID)
	if err != nil {
		return err
	}

	if order.PaymentStatus != domain.PaymentWaiting {
		log.Info().Str("component", "terminatePayment").Str("order_id", orderID).Str("payment_status", order.PaymentStatus).Str("target", status).Msg("signal against non-waiting payment ignored")
		return nil
	}

	now := s.clock.Now().Unix()

	if err = s.orderRepo.UpdatePaymentStatus(ctx, orderID, status, nil); err != nil {
		return err
	}

	if err = s.orderRepo.AddStatusHistory(ctx, domain.StatusHistoryEntry{
		OrderID:   orderID,
		Status:    status,
		Note:      note,
		Actor:     "system",
		CreatedAt: now,
	}); err != nil {
		return err
	}

	s.deadlines.Cancel(orderID)

	if derr := s.orderRepo.DeactivateInstruments(ctx, orderID); derr != nil {
		log.Error().Err(derr).Str("component", "terminatePayment").Str("order_id", orderID).Msg("")
	}

	restored, rerr := s.voucherRepo.RestoreVoucherByOrderID(ctx, orderID)
	if rerr != nil {
		log.Error().Err(rerr).Str("component", "terminatePayment").Str("order_id", orderID).Msg("voucher restore failed")
	} else if restored {
		log.Info().Str("component", "terminatePayment").Str("order_id", orderID).Msg("voucher restored")
	}

	s.notifier.NotifyStatusChange(dto.StatusChangeEvent{
		OrderID:       orderID,
		Status:        order.OrderStatus,
		PaymentStatus: status,
		Actor:         "system",
		OccurredAt:    now,
	})

	return nil
}

// HandleProviderNotification maps a provider webhook onto the engine.
// The provider may deliver a notification zero, one, or many times.
func (s *PaymentServiceImpl) HandleProviderNotification(ctx context.Context, req dto.PaymentNotification) (err error) {
	switch req.TransactionStatus {
	case "capture", "settlement":
		return s.coordinator.ConfirmPayment(ctx, req.OrderID)
	case "expire":
		return s.ExpirePayment(ctx, req.OrderID)
	case "deny", "cancel", "failure":
		return s.FailPayment(ctx, req.OrderID, fmt.Sprintf("provider reported %s", req.TransactionStatus))
	default:
		log.Info().Str("component", "HandleProviderNotification").Str("order_id", req.OrderID).Str("transaction_status", req.TransactionStatus).Msg("notification ignored")
		return nil
	}
}

// SweepExpiredPayments catches deadlines that elapsed while no in-process
// timer was armed, e.g. across a restart. Runs on a fixed schedule.
func (s *PaymentServiceImpl) SweepExpiredPayments() {
	ctx := context.Background()

	orders, err := s.orderRepo.GetExpiredWaitingOrders(ctx, s.clock.Now().Unix())
	if err != nil {
		log.Error().Err(err).Str("component", "SweepExpiredPayments").Msg("")
		return
	}

	for _, order := range orders {
		if err := s.ExpirePayment(ctx, order.ID); err != nil {
			log.Error().Err(err).Str("component", "SweepExpiredPayments").Str("order_id", order.ID).Msg("")
		}
	}
}
