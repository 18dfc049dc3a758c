package dto

type KafkaMessage struct {
	EventType string      `json:"event_type"`
	Data      interface{} `json:"data"`
}

// StatusChangeEvent is published fire-and-forget on every applied
// transition so downstream notification consumers can fan out.
type StatusChangeEvent struct {
	OrderID       string `json:"order_id"`
	RefundID      string `json:"refund_id,omitempty"`
	Status        string `json:"status"`
	PaymentStatus string `json:"payment_status,omitempty"`
	Actor         string `json:"actor"`
	OccurredAt    int64  `json:"occurred_at"`
}
