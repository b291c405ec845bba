package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product is a purchasable credit pack for a game
type Product struct {
	ID          string          `json:"id"`
	GameID      string          `json:"gameId"`
	Name        string          `json:"name"`
	Description string          `json:"description,omitempty"`
	Price       decimal.Decimal `json:"price"`
	Currency    string          `json:"currency,omitempty"`
	Stock       int             `json:"stock"`
	Status      ProductStatus   `json:"status"`
	CreatedAt   time.Time       `json:"createdAt"`
	UpdatedAt   time.Time       `json:"updatedAt"`
}

type ProductStatus string

const (
	ProductStatusActive     ProductStatus = "active"
	ProductStatusInactive   ProductStatus = "inactive"
	ProductStatusOutOfStock ProductStatus = "out_of_stock"
)

type ProductInput struct {
	GameID      string          `json:"gameId"`
	Name        string          `json:"name"`
	Description string          `json:"description,omitempty"`
	Price       decimal.Decimal `json:"price"`
	Currency    string          `json:"currency,omitempty"`
	Stock       int             `json:"stock"`
	Status      ProductStatus   `json:"status,omitempty"`
}

// StockAdjustment moves a product's stock by Delta (negative to remove).
type StockAdjustment struct {
	Delta  int    `json:"delta"`
	Reason string `json:"reason,omitempty"`
}
