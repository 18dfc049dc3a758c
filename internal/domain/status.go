package domain

import "time"

// Payment statuses. These strings are part of the external contract and
// must not be renamed.
const (
	PaymentWaiting    = "waiting_payment"
	PaymentPaid       = "paid"
	PaymentExpired    = "expired"
	PaymentFailed     = "failed"
	PaymentCODPending = "cod_pending"
)

// Order statuses.
const (
	OrderPending        = "pending"
	OrderWaitingPayment = "waiting_payment"
	OrderProcessing     = "processing"
	OrderPacked         = "packed"
	OrderShipped        = "shipped"
	OrderDelivered      = "delivered"
	OrderCancelled      = "cancelled"
)

// Refund statuses.
const (
	RefundPending   = "pending"
	RefundApproved  = "approved"
	RefundRejected  = "rejected"
	RefundShipping  = "shipping"
	RefundReceived  = "received"
	RefundRefunded  = "refunded"
	RefundCompleted = "completed"
)

// Payment methods.
const (
	MethodQRIS           = "qris"
	MethodVirtualAccount = "virtual_account"
	MethodEWallet        = "ewallet"
	MethodCOD            = "cod"
)

// Refund types.
const (
	RefundTypeUserRequest = "user_request"
	RefundTypeAdminCancel = "admin_cancel"
)

// orderTransitions is the single allow-list consulted by every caller,
// whether the transition comes from an admin action, the confirmation
// coordinator, or the expiry sweep.
var orderTransitions = map[string][]string{
	OrderPending:        {OrderWaitingPayment, OrderCancelled},
	OrderWaitingPayment: {OrderProcessing, OrderCancelled},
	OrderProcessing:     {OrderPacked, OrderCancelled},
	OrderPacked:         {OrderShipped, OrderCancelled},
	OrderShipped:        {OrderDelivered, OrderCancelled},
	OrderDelivered:      {},
	OrderCancelled:      {},
}

var refundTransitions = map[string][]string{
	RefundPending:   {RefundApproved, RefundRejected},
	RefundApproved:  {RefundShipping},
	RefundShipping:  {RefundReceived},
	RefundReceived:  {RefundRefunded},
	RefundRefunded:  {RefundCompleted},
	RefundRejected:  {},
	RefundCompleted: {},
}

func CanTransitionOrder(from, to string) bool {
	for _, next := range orderTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

func CanTransitionRefund(from, to string) bool {
	for _, next := range refundTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

func IsOrderTerminal(status string) bool {
	return status == OrderDelivered || status == OrderCancelled
}

func IsPaymentTerminal(status string) bool {
	return status == PaymentPaid || status == PaymentExpired || status == PaymentFailed
}

func IsRefundTerminal(status string) bool {
	return status == RefundRejected || status == RefundCompleted
}

// PaymentWindow returns how long a payment instrument of the given method
// stays payable. COD has no instrument and no window.
func PaymentWindow(method string) time.Duration {
	switch method {
	case MethodQRIS, MethodEWallet:
		return 10 * time.Minute
	case MethodVirtualAccount:
		return 24 * time.Hour
	default:
		return 0
	}
}

func IsValidPaymentMethod(method string) bool {
	switch method {
	case MethodQRIS, MethodVirtualAccount, MethodEWallet, MethodCOD:
		return true
	}
	return false
}
