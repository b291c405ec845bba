package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Order is a top-up purchase placed by a customer or reseller
type Order struct {
	ID            string          `json:"id"`
	OrderNumber   string          `json:"orderNumber"`
	UserID        string          `json:"userId"`
	ResellerID    string          `json:"resellerId,omitempty"`
	ProductID     string          `json:"productId"`
	GameAccountID string          `json:"gameAccountId"`
	Quantity      int             `json:"quantity"`
	Amount        decimal.Decimal `json:"amount"`
	Currency      string          `json:"currency,omitempty"`
	Status        OrderStatus     `json:"status"`
	PaymentMethod string          `json:"paymentMethod,omitempty"`
	Note          string          `json:"note,omitempty"`
	CreatedAt     time.Time       `json:"createdAt"`
	UpdatedAt     time.Time       `json:"updatedAt"`
}

type OrderStatus string

const (
	OrderStatusPending    OrderStatus = "pending"
	OrderStatusProcessing OrderStatus = "processing"
	OrderStatusCompleted  OrderStatus = "completed"
	OrderStatusFailed     OrderStatus = "failed"
	OrderStatusCancelled  OrderStatus = "cancelled"
	OrderStatusRefunded   OrderStatus = "refunded"
)

// Valid reports whether s is one of the known order statuses.
func (s OrderStatus) Valid() bool {
	switch s {
	case OrderStatusPending, OrderStatusProcessing, OrderStatusCompleted,
		OrderStatusFailed, OrderStatusCancelled, OrderStatusRefunded:
		return true
	}
	return false
}

// OrderStats summarises orders over a date range.
type OrderStats struct {
	Total      int                 `json:"total"`
	Revenue    decimal.Decimal     `json:"revenue"`
	ByStatus   map[OrderStatus]int `json:"byStatus"`
	AvgAmount  decimal.Decimal     `json:"averageAmount"`
	RangeStart time.Time           `json:"from"`
	RangeEnd   time.Time           `json:"to"`
}
