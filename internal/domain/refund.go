package domain

// Refund is a separate aggregate referencing an order id. It never
// mutates the order's checkout snapshot. At most one non-terminal refund
// may exist per order.
type Refund struct {
	ID             string  `db:"id"`
	OrderID        string  `db:"order_id"`
	Type           string  `db:"type"`
	Reason         string  `db:"reason"`
	Description    string  `db:"description"`
	Amount         float64 `db:"amount"`
	Status         string  `db:"status"`
	ReviewedBy     *string `db:"reviewed_by"`
	ReviewedAt     *int64  `db:"reviewed_at"`
	ReviewNote     *string `db:"review_note"`
	ReturnCourier  *string `db:"return_courier"`
	ReturnTracking *string `db:"return_tracking"`
	ShippedAt      *int64  `db:"shipped_at"`
	ReceivedAt     *int64  `db:"received_at"`
	RefundedAt     *int64  `db:"refunded_at"`
	RefundMethod   *string `db:"refund_method"`
	CreatedAt      int64   `db:"created_at"`
	UpdatedAt      int64   `db:"updated_at"`
	Evidence       []RefundEvidence    `db:"-"`
	StatusHistory  []RefundStatusEntry `db:"-"`
}

// RefundEvidence is an uploaded media reference; the storage itself is an
// external collaborator, only the reference string lives here.
type RefundEvidence struct {
	ID         int64  `db:"id"`
	RefundID   string `db:"refund_id"`
	MediaKind  string `db:"media_kind"`
	URL        string `db:"url"`
	SizeBytes  int64  `db:"size_bytes"`
	UploadedAt int64  `db:"uploaded_at"`
}

type RefundStatusEntry struct {
	ID        int64  `db:"id"`
	RefundID  string `db:"refund_id"`
	Status    string `db:"status"`
	Note      string `db:"note"`
	Actor     string `db:"actor"`
	CreatedAt int64  `db:"created_at"`
}

// ReturnShippingInfo is supplied when an approved refund moves to shipping.
type ReturnShippingInfo struct {
	Courier        string
	TrackingNumber string
}
