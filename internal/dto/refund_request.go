package dto

type RefundEvidenceRequest struct {
	MediaKind string `json:"media_kind"`
	URL       string `json:"url"`
	SizeBytes int64  `json:"size_bytes"`
}

type RefundRequest struct {
	Reason      string                  `json:"reason"`
	Description string                  `json:"description"`
	Evidence    []RefundEvidenceRequest `json:"evidence"`
}

type RefundReviewRequest struct {
	Decision string `json:"decision"`
	Note     string `json:"note"`
}

type RefundShippingRequest struct {
	Courier        string `json:"courier"`
	TrackingNumber string `json:"tracking_number"`
}

type RefundCompletionRequest struct {
	Method string `json:"method"`
}
