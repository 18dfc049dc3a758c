package dto

type Filter struct {
	Limit         int    `query:"limit"`
	Page          int    `query:"page"`
	OrderStatus   string `query:"order_status"`
	PaymentStatus string `query:"payment_status"`
	UserID        string `query:"user_id"`
	Expired       bool   `query:"-"`
}

type Pagination struct {
	Records    interface{} `json:"records"`
	TotalCount int         `json:"total_count"`
	Page       int         `json:"page"`
	Limit      int         `json:"limit"`
}
