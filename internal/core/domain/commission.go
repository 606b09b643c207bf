package domain

import (
	"time"

	"github.com/govalues/decimal"
)

// CommissionRecord is created exactly once, by the worker that wins the
// transition of an order into PAID. It is never recomputed.
type CommissionRecord struct {
	OrderID   uint64
	Currency  Currency
	Amount    decimal.Decimal
	CreatedAt time.Time
}

type PayoutStatus string

const (
	PayoutStatusPending PayoutStatus = "PENDING"
	PayoutStatusSent    PayoutStatus = "SENT"
)

// Payout is the vendor's share of a paid order, handed to the payout
// collaborator for actual settlement.
type Payout struct {
	ID        uint64
	OrderID   uint64
	Currency  Currency
	Amount    decimal.Decimal
	Status    PayoutStatus
	CreatedAt time.Time
}
