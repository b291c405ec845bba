package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// DateRange bounds analytics and stats queries.
type DateRange struct {
	From time.Time
	To   time.Time
}

// Dashboard is the headline numbers block of the admin home page.
type Dashboard struct {
	TotalRevenue   decimal.Decimal `json:"totalRevenue"`
	TotalOrders    int             `json:"totalOrders"`
	TotalUsers     int             `json:"totalUsers"`
	ActiveProducts int             `json:"activeProducts"`
	PendingOrders  int             `json:"pendingOrders"`
	UnreadMessages int             `json:"unreadMessages"`
}

// RevenuePoint is one bucket of a revenue series.
type RevenuePoint struct {
	Date    time.Time       `json:"date"`
	Revenue decimal.Decimal `json:"revenue"`
	Orders  int             `json:"orders"`
}

type TopProduct struct {
	ProductID string          `json:"productId"`
	Name      string          `json:"name"`
	Sold      int             `json:"sold"`
	Revenue   decimal.Decimal `json:"revenue"`
}
