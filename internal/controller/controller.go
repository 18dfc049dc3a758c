package controller

import (
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"

	"github.com/lumakart/fulfillment-service/internal/domain"
	"github.com/lumakart/fulfillment-service/internal/dto"
	"github.com/lumakart/fulfillment-service/internal/reconcile"
	"github.com/lumakart/fulfillment-service/internal/service"
	pkgdto "github.com/lumakart/fulfillment-service/pkg/dto"
	"github.com/lumakart/fulfillment-service/pkg/errs"
	"github.com/lumakart/fulfillment-service/pkg/response"
	"github.com/lumakart/fulfillment-service/pkg/utils"
)

type Controller struct {
	orderSvc   service.OrderService
	paymentSvc service.PaymentService
	refundSvc  service.RefundService
	loop       *reconcile.Loop
}

func CreateFulfillmentController(e *echo.Group, orderSvc service.OrderService, paymentSvc service.PaymentService, refundSvc service.RefundService, loop *reconcile.Loop) {
	c := Controller{
		orderSvc:   orderSvc,
		paymentSvc: paymentSvc,
		refundSvc:  refundSvc,
		loop:       loop,
	}

	e.POST("/orders", c.AddOrder)
	e.GET("/orders", c.GetOrders)
	e.GET("/orders/:id", c.GetOrder)
	e.GET("/orders/:id/observed", c.GetObservedOrder)
	e.PATCH("/orders/:id/status", c.RequestTransition)
	e.POST("/orders/:id/cancel", c.CancelOrder)
	e.POST("/orders/:id/payments", c.StartPaymentAttempt)
	e.POST("/orders/payments/notifications", c.PaymentWebhook)
	e.POST("/orders/:id/refunds", c.CreateRefundRequest)
	e.GET("/refunds", c.GetRefunds)
	e.GET("/refunds/:id", c.GetRefund)
	e.PATCH("/refunds/:id/review", c.ReviewRefund)
	e.PATCH("/refunds/:id/shipping", c.AdvanceRefundShipping)
	e.PATCH("/refunds/:id/received", c.RecordRefundReceived)
	e.PATCH("/refunds/:id/refunded", c.MarkRefunded)
	e.PATCH("/refunds/:id/complete", c.CompleteRefund)
}

func (c *Controller) AddOrder(e echo.Context) error {
	payload := dto.OrderRequest{}
	err := e.Bind(&payload)
	if err != nil {
		log.Error().Err(err).Str("component", "AddOrder").Msg("")
		return response.WriteErrorResponse(e, errs.ErrClient, nil)
	}

	resp, err := c.orderSvc.AddOrder(e.Request().Context(), payload)
	if err != nil {
		return response.WriteErrorResponse(e, err, nil)
	}

	return response.WriteSuccessResponse(e, "order created", resp)
}

func (c *Controller) GetOrders(e echo.Context) error {
	filter := pkgdto.Filter{}
	err := e.Bind(&filter)
	if err != nil {
		log.Error().Err(err).Str("component", "GetOrders").Msg("")
	}

	resp, err := c.orderSvc.GetOrders(e.Request().Context(), filter)
	if err != nil {
		return response.WriteErrorResponse(e, err, nil)
	}

	return response.WriteSuccessResponse(e, "successfully retrieved orders", resp)
}

func (c *Controller) GetOrder(e echo.Context) error {
	resp, err := c.orderSvc.GetOrder(e.Request().Context(), e.Param("id"))
	if err != nil {
		return response.WriteErrorResponse(e, err, nil)
	}

	return response.WriteSuccessResponse(e, "", resp)
}

// GetObservedOrder serves the reconciliation loop's last good snapshot and
// keeps the order in the polling set. Useful for screens that tolerate
// bounded staleness.
func (c *Controller) GetObservedOrder(e echo.Context) error {
	orderID := e.Param("id")
	c.loop.Watch(orderID)

	snap, ok := c.loop.Observed(orderID)
	if !ok {
		// Nothing observed yet; fall back to an authoritative read.
		resp, err := c.orderSvc.GetOrder(e.Request().Context(), orderID)
		if err != nil {
			return response.WriteErrorResponse(e, err, nil)
		}
		return response.WriteSuccessResponse(e, "", resp)
	}

	return response.WriteSuccessResponse(e, "", observedOrderResponse(snap.Order))
}

func observedOrderResponse(order domain.Order) dto.OrderResponse {
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

func (c *Controller) RequestTransition(e echo.Context) error {
	payload := dto.TransitionRequest{}
	err := e.Bind(&payload)
	if err != nil {
		log.Error().Err(err).Str("component", "RequestTransition").Msg("")
		return response.WriteErrorResponse(e, errs.ErrClient, nil)
	}

	actor := utils.ExtractActor(e)

	err = c.orderSvc.RequestTransition(e.Request().Context(), e.Param("id"), payload.TargetStatus, payload.Note, actor)
	if err != nil {
		return response.WriteErrorResponse(e, err, nil)
	}

	return response.WriteSuccessResponse(e, "status updated", nil)
}

// CancelOrder is the admin cancellation path: cancels the order and opens
// the admin refund in one action.
func (c *Controller) CancelOrder(e echo.Context) error {
	payload := dto.CancelRequest{}
	err := e.Bind(&payload)
	if err != nil {
		log.Error().Err(err).Str("component", "CancelOrder").Msg("")
		return response.WriteErrorResponse(e, errs.ErrClient, nil)
	}

	actor := utils.ExtractActor(e)

	resp, err := c.refundSvc.CreateAdminCancellation(e.Request().Context(), e.Param("id"), payload.Reason, actor)
	if err != nil {
		return response.WriteErrorResponse(e, err, nil)
	}

	return response.WriteSuccessResponse(e, "order cancelled", resp)
}

func (c *Controller) StartPaymentAttempt(e echo.Context) error {
	payload := dto.PaymentAttemptRequest{}
	err := e.Bind(&payload)
	if err != nil {
		log.Error().Err(err).Str("component", "StartPaymentAttempt").Msg("")
		return response.WriteErrorResponse(e, errs.ErrClient, nil)
	}

	resp, err := c.paymentSvc.StartAttempt(e.Request().Context(), e.Param("id"), payload.Method)
	if err != nil {
		return response.WriteErrorResponse(e, err, nil)
	}

	return response.WriteSuccessResponse(e, "payment attempt created", resp)
}

func (c *Controller) PaymentWebhook(e echo.Context) error {
	payload := dto.PaymentNotification{}
	err := e.Bind(&payload)
	if err != nil {
		log.Error().Err(err).Str("component", "PaymentWebhook").Msg("")
		return response.WriteErrorResponse(e, errs.ErrClient, nil)
	}

	err = c.paymentSvc.HandleProviderNotification(e.Request().Context(), payload)
	if err != nil {
		return response.WriteErrorResponse(e, err, nil)
	}

	return response.WriteSuccessResponse(e, "", nil)
}

func (c *Controller) CreateRefundRequest(e echo.Context) error {
	payload := dto.RefundRequest{}
	err := e.Bind(&payload)
	if err != nil {
		log.Error().Err(err).Str("component", "CreateRefundRequest").Msg("")
		return response.WriteErrorResponse(e, errs.ErrClient, nil)
	}

	actor := utils.ExtractActor(e)

	resp, err := c.refundSvc.CreateUserRequest(e.Request().Context(), e.Param("id"), payload, actor)
	if err != nil {
		return response.WriteErrorResponse(e, err, nil)
	}

	return response.WriteSuccessResponse(e, "refund request created", resp)
}

func (c *Controller) GetRefunds(e echo.Context) error {
	filter := pkgdto.Filter{}
	err := e.Bind(&filter)
	if err != nil {
		log.Error().Err(err).Str("component", "GetRefunds").Msg("")
	}

	resp, err := c.refundSvc.GetRefunds(e.Request().Context(), filter)
	if err != nil {
		return response.WriteErrorResponse(e, err, nil)
	}

	return response.WriteSuccessResponse(e, "successfully retrieved refunds", resp)
}

func (c *Controller) GetRefund(e echo.Context) error {
	resp, err := c.refundSvc.GetRefund(e.Request().Context(), e.Param("id"))
	if err != nil {
		return response.WriteErrorResponse(e, err, nil)
	}

	return response.WriteSuccessResponse(e, "", resp)
}

func (c *Controller) ReviewRefund(e echo.Context) error {
	payload := dto.RefundReviewRequest{}
	err := e.Bind(&payload)
	if err != nil {
		log.Error().Err(err).Str("component", "ReviewRefund").Msg("")
		return response.WriteErrorResponse(e, errs.ErrClient, nil)
	}

	reviewer := utils.ExtractActor(e)

	err = c.refundSvc.ReviewDecision(e.Request().Context(), e.Param("id"), payload.Decision, payload.Note, reviewer)
	if err != nil {
		return response.WriteErrorResponse(e, err, nil)
	}

	return response.WriteSuccessResponse(e, "refund reviewed", nil)
}

func (c *Controller) AdvanceRefundShipping(e echo.Context) error {
	payload := dto.RefundShippingRequest{}
	err := e.Bind(&payload)
	if err != nil {
		log.Error().Err(err).Str("component", "AdvanceRefundShipping").Msg("")
		return response.WriteErrorResponse(e, errs.ErrClient, nil)
	}

	actor := utils.ExtractActor(e)

	err = c.refundSvc.AdvanceShipping(e.Request().Context(), e.Param("id"), domain.ReturnShippingInfo{
		Courier:        payload.Courier,
		TrackingNumber: payload.TrackingNumber,
	}, actor)
	if err != nil {
		return response.WriteErrorResponse(e, err, nil)
	}

	return response.WriteSuccessResponse(e, "return shipping recorded", nil)
}

func (c *Controller) RecordRefundReceived(e echo.Context) error {
	actor := utils.ExtractActor(e)

	err := c.refundSvc.RecordReceived(e.Request().Context(), e.Param("id"), actor)
	if err != nil {
		return response.WriteErrorResponse(e, err, nil)
	}

	return response.WriteSuccessResponse(e, "return receipt recorded", nil)
}

func (c *Controller) MarkRefunded(e echo.Context) error {
	payload := dto.RefundCompletionRequest{}
	err := e.Bind(&payload)
	if err != nil {
		log.Error().Err(err).Str("component", "MarkRefunded").Msg("")
		return response.WriteErrorResponse(e, errs.ErrClient, nil)
	}

	actor := utils.ExtractActor(e)

	err = c.refundSvc.MarkRefunded(e.Request().Context(), e.Param("id"), payload.Method, actor)
	if err != nil {
		return response.WriteErrorResponse(e, err, nil)
	}

	return response.WriteSuccessResponse(e, "refund disbursed", nil)
}

func (c *Controller) CompleteRefund(e echo.Context) error {
	actor := utils.ExtractActor(e)

	err := c.refundSvc.Complete(e.Request().Context(), e.Param("id"), actor)
	if err != nil {
		return response.WriteErrorResponse(e, err, nil)
	}

	return response.WriteSuccessResponse(e, "refund completed", nil)
}
