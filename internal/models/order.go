// internal/models/order.go
package models

import "time"

// Order statuses. Orders are immutable after checkout, so the only
// transitions happen outside this pipeline.
const (
	OrderStatusPending   = "pending"
	OrderStatusCompleted = "completed"
)

type Order struct {
	ID        string      `json:"id"`
	Code      string      `json:"code"`
	UserID    string      `json:"userId"`
	VendorID  string      `json:"vendorId,omitempty"` // empty unless explicitly attributed
	UserEmail string      `json:"userEmail"`
	UserName  string      `json:"userName"`
	Items     []OrderItem `json:"items"`
	Total     float64     `json:"total"`
	Status    string      `json:"status"`
	CreatedAt time.Time   `json:"createdAt"`
}

type OrderItem struct {
	ProductID string  `json:"productId"`
	Name      string  `json:"name"`
	Quantity  int     `json:"quantity"`
	Price     float64 `json:"price"`
}

type CartItem struct {
	ID        string    `json:"id"`
	UserID    string    `json:"userId"`
	ProductID string    `json:"productId"`
	Name      string    `json:"name"`
	Quantity  int       `json:"quantity"`
	Price     float64   `json:"price"`
	CreatedAt time.Time `json:"createdAt"`
}

type Investment struct {
	ID           string    `json:"id"`
	InvestorID   string    `json:"investorId"`
	BusinessName string    `json:"businessName"`
	Amount       float64   `json:"amount"`
	CreatedAt    time.Time `json:"createdAt"`
}
