package dto

type OrderItemRequest struct {
	ProductID   string  `json:"product_id"`
	ProductName string  `json:"product_name"`
	UnitPrice   float64 `json:"unit_price"`
	Quantity    int64   `json:"quantity"`
}

// OrderRequest carries the checkout snapshot produced by the checkout
// service. The engine stores it verbatim and treats it as immutable.
type OrderRequest struct {
	UserID          string             `json:"user_id"`
	ShippingAddress string             `json:"shipping_address"`
	ShippingMethod  string             `json:"shipping_method"`
	ShippingCost    float64            `json:"shipping_cost"`
	VoucherCode     *string            `json:"voucher_code"`
	PaymentMethod   string             `json:"payment_method"`
	OrderItems      []OrderItemRequest `json:"order_items"`
}

type TransitionRequest struct {
	TargetStatus string `json:"target_status"`
	Note         string `json:"note"`
}

type CancelRequest struct {
	Reason string `json:"reason"`
}

type PaymentAttemptRequest struct {
	Method string `json:"method"`
}
