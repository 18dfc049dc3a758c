package dto

type StatusHistoryResponse struct {
	Status    string `json:"status"`
	Note      string `json:"note"`
	Actor     string `json:"actor"`
	CreatedAt int64  `json:"created_at"`
}

type OrderItemResponse struct {
	ProductID   string  `json:"product_id"`
	ProductName string  `json:"product_name"`
	UnitPrice   float64 `json:"unit_price"`
	Quantity    int64   `json:"quantity"`
}

type OrderResponse struct {
	ID              string                  `json:"id"`
	UserID          string                  `json:"user_id"`
	ShippingAddress string                  `json:"shipping_address"`
	ShippingMethod  string                  `json:"shipping_method"`
	ShippingCost    float64                 `json:"shipping_cost"`
	VoucherCode     *string                 `json:"voucher_code,omitempty"`
	VoucherDiscount float64                 `json:"voucher_discount"`
	Subtotal        float64                 `json:"subtotal"`
	Total           float64                 `json:"total"`
	PaymentMethod   string                  `json:"payment_method"`
	OrderStatus     string                  `json:"order_status"`
	PaymentStatus   string                  `json:"payment_status"`
	PaidAt          *int64                  `json:"paid_at,omitempty"`
	RefundEligible  bool                    `json:"refund_eligible"`
	Items           []OrderItemResponse     `json:"items"`
	StatusHistory   []StatusHistoryResponse `json:"status_history"`
	CreatedAt       int64                   `json:"created_at"`
}

type PaymentAttemptResponse struct {
	InstrumentID string  `json:"instrument_id"`
	OrderID      string  `json:"order_id"`
	Kind         string  `json:"kind"`
	Amount       float64 `json:"amount"`
	Reference    string  `json:"reference"`
	ExpiredAt    int64   `json:"expired_at"`
}
