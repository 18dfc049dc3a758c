package dto

type RefundEvidenceResponse struct {
	MediaKind  string `json:"media_kind"`
	URL        string `json:"url"`
	SizeBytes  int64  `json:"size_bytes"`
	UploadedAt int64  `json:"uploaded_at"`
}

type RefundResponse struct {
	ID             string                   `json:"id"`
	OrderID        string                   `json:"order_id"`
	Type           string                   `json:"type"`
	Reason         string                   `json:"reason"`
	Description    string                   `json:"description"`
	Amount         float64                  `json:"amount"`
	Status         string                   `json:"status"`
	ReviewedBy     *string                  `json:"reviewed_by,omitempty"`
	ReviewedAt     *int64                   `json:"reviewed_at,omitempty"`
	ReviewNote     *string                  `json:"review_note,omitempty"`
	ReturnCourier  *string                  `json:"return_courier,omitempty"`
	ReturnTracking *string                  `json:"return_tracking,omitempty"`
	ShippedAt      *int64                   `json:"shipped_at,omitempty"`
	ReceivedAt     *int64                   `json:"received_at,omitempty"`
	RefundedAt     *int64                   `json:"refunded_at,omitempty"`
	RefundMethod   *string                  `json:"refund_method,omitempty"`
	Evidence       []RefundEvidenceResponse `json:"evidence"`
	StatusHistory  []StatusHistoryResponse  `json:"status_history"`
	CreatedAt      int64                    `json:"created_at"`
}
