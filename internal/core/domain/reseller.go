package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Reseller is a partner account buying credit at a discount
type Reseller struct {
	ID          string          `json:"id"`
	CompanyName string          `json:"companyName"`
	ContactName string          `json:"contactName,omitempty"`
	Email       string          `json:"email"`
	Phone       string          `json:"phone,omitempty"`
	Discount    decimal.Decimal `json:"discountPercent"`
	Balance     decimal.Decimal `json:"balance"`
	Status      ResellerStatus  `json:"status"`
	CreatedAt   time.Time       `json:"createdAt"`
	UpdatedAt   time.Time       `json:"updatedAt"`
}

type ResellerStatus string

const (
	ResellerStatusPending   ResellerStatus = "pending"
	ResellerStatusApproved  ResellerStatus = "approved"
	ResellerStatusSuspended ResellerStatus = "suspended"
)

type ResellerInput struct {
	CompanyName string          `json:"companyName"`
	ContactName string          `json:"contactName,omitempty"`
	Email       string          `json:"email"`
	Phone       string          `json:"phone,omitempty"`
	Discount    decimal.Decimal `json:"discountPercent"`
}

// BalanceAdjustment credits (positive) or debits (negative) a reseller balance.
type BalanceAdjustment struct {
	Amount decimal.Decimal `json:"amount"`
	Note   string          `json:"note,omitempty"`
}
