package service

import (
	"context"

	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"

	"github.com/lumakart/fulfillment-service/internal/deadline"
	"github.com/lumakart/fulfillment-service/internal/domain"
	"github.com/lumakart/fulfillment-service/internal/dto"
	"github.com/lumakart/fulfillment-service/internal/repository"
	"github.com/lumakart/fulfillment-service/pkg/keylock"
)

// ConfirmationCoordinator applies "payment confirmed" across the payment
// and order machines. Payment truth is written first; the fulfillment
// consequence (waiting_payment -> processing) follows and is safe to
// retry, so a confirmed payment is never rolled back to repair order
// state.
type ConfirmationCoordinator struct {
	orderRepo repository.OrderRepository
	locks     *keylock.KeyLock
	deadlines *deadline.Registry
	notifier  Notifier
	clock     clockwork.Clock
}

func CreateConfirmationCoordinator(orderRepo repository.OrderRepository, locks *keylock.KeyLock, deadlines *deadline.Registry, notifier Notifier, clock clockwork.Clock) *ConfirmationCoordinator {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &ConfirmationCoordinator{
		orderRepo: orderRepo,
		locks:     locks,
		deadlines: deadlines,
		notifier:  notifier,
		clock:     clock,
	}
}

// ConfirmPayment is idempotent: the provider may signal more than once,
// and two racing confirmations must collapse into a single transition
// with a single history entry.
func (c *ConfirmationCoordinator) ConfirmPayment(ctx context.Context, orderID string) (err error) {
	c.locks.Lock(orderID)
	defer c.locks.Unlock(orderID)

	order, err := c.orderRepo.GetOrderByID(ctx, orderID)
	if err != nil {
		return err
	}

	if domain.IsPaymentTerminal(order.PaymentStatus) {
		log.Info().Str("component", "ConfirmPayment").Str("order_id", orderID).Str("payment_status", order.PaymentStatus).Msg("duplicate confirmation signal ignored")
		return nil
	}

	now := c.clock.Now().Unix()
	paidAt := now

	if err = c.orderRepo.UpdatePaymentStatus(ctx, orderID, domain.PaymentPaid, &paidAt); err != nil {
		return err
	}

	if err = c.orderRepo.AddStatusHistory(ctx, domain.StatusHistoryEntry{
		OrderID:   orderID,
		Status:    domain.PaymentPaid,
		Note:      "payment confirmed",
		Actor:     "system",
		CreatedAt: now,
	}); err != nil {
		return err
	}

	c.deadlines.Cancel(orderID)

	if derr := c.orderRepo.DeactivateInstruments(ctx, orderID); derr != nil {
		log.Error().Err(derr).Str("component", "ConfirmPayment").Str("order_id", orderID).Msg("")
	}

	// Fulfillment consequence. A failure here leaves the payment paid;
	// the reconciliation loop or a later caller retries the order step.
	orderStatus := order.OrderStatus
	if order.OrderStatus == domain.OrderWaitingPayment {
		if terr := c.orderRepo.UpdateOrderStatus(ctx, orderID, domain.OrderProcessing); terr != nil {
			log.Error().Err(terr).Str("component", "ConfirmPayment").Str("order_id", orderID).Msg("order transition pending retry; payment stays confirmed")
		} else {
			orderStatus = domain.OrderProcessing
			if herr := c.orderRepo.AddStatusHistory(ctx, domain.StatusHistoryEntry{
				OrderID:   orderID,
				Status:    domain.OrderProcessing,
				Note:      "payment confirmed",
				Actor:     "system",
				CreatedAt: now,
			}); herr != nil {
				log.Error().Err(herr).Str("component", "ConfirmPayment").Str("order_id", orderID).Msg("")
			}
		}
	}

	c.notifier.NotifyStatusChange(dto.StatusChangeEvent{
		OrderID:       orderID,
		Status:        orderStatus,
		PaymentStatus: domain.PaymentPaid,
		Actor:         "system",
		OccurredAt:    now,
	})

	return nil
}
