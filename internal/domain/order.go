package domain

// Order is the root aggregate. The checkout snapshot fields (address,
// shipping, voucher, items, amounts) are immutable after creation; only
// the status fields and history move afterwards.
type Order struct {
	ID              string  `db:"id"`
	UserID          string  `db:"user_id"`
	ShippingAddress string  `db:"shipping_address"`
	ShippingMethod  string  `db:"shipping_method"`
	ShippingCost    float64 `db:"shipping_cost"`
	VoucherCode     *string `db:"voucher_code"`
	VoucherDiscount float64 `db:"voucher_discount"`
	Subtotal        float64 `db:"subtotal"`
	Total           float64 `db:"total"`
	PaymentMethod   string  `db:"payment_method"`
	OrderStatus     string  `db:"order_status"`
	PaymentStatus   string  `db:"payment_status"`
	PaidAt          *int64  `db:"paid_at"`
	RefundEligible  bool    `db:"refund_eligible"`
	CreatedAt       int64   `db:"created_at"`
	UpdatedAt       int64   `db:"updated_at"`
	Items           []OrderItem          `db:"-"`
	StatusHistory   []StatusHistoryEntry `db:"-"`
}

type OrderItem struct {
	ID          int64   `db:"id"`
	OrderID     string  `db:"order_id"`
	ProductID   string  `db:"product_id"`
	ProductName string  `db:"product_name"`
	UnitPrice   float64 `db:"unit_price"`
	Quantity    int64   `db:"quantity"`
	CreatedAt   int64   `db:"created_at"`
}

// StatusHistoryEntry records one applied transition, payment or order.
type StatusHistoryEntry struct {
	ID        int64  `db:"id"`
	OrderID   string `db:"order_id"`
	Status    string `db:"status"`
	Note      string `db:"note"`
	Actor     string `db:"actor"`
	CreatedAt int64  `db:"created_at"`
}

// PaymentInstrument is one attempt to pay an order. A retry after failure
// creates a new instrument with a fresh deadline; instruments are
// deactivated once the payment reaches a terminal state.
type PaymentInstrument struct {
	ID        string  `db:"id"`
	OrderID   string  `db:"order_id"`
	Kind      string  `db:"kind"`
	Amount    float64 `db:"amount"`
	Reference string  `db:"reference"`
	ExpiredAt int64   `db:"expired_at"`
	CreatedAt int64   `db:"created_at"`
	DeletedAt *int64  `db:"deleted_at"`
}

// Voucher is a consumed resource referenced by at most one order.
type Voucher struct {
	Code      string  `db:"code"`
	Discount  float64 `db:"discount"`
	Consumed  bool    `db:"consumed"`
	OrderID   *string `db:"order_id"`
	CreatedAt int64   `db:"created_at"`
	UpdatedAt int64   `db:"updated_at"`
}
