package domain

import (
	"time"

	"github.com/govalues/decimal"
)

type OrderStatus string

const (
	OrderStatusPending    OrderStatus = "PENDING"
	OrderStatusConfirming OrderStatus = "CONFIRMING"
	OrderStatusPaid       OrderStatus = "PAID"
	OrderStatusExpired    OrderStatus = "EXPIRED"
)

// Terminal reports whether no further transition may leave this status.
func (s OrderStatus) Terminal() bool {
	return s == OrderStatusPaid || s == OrderStatusExpired
}

// CanTransition encodes the order state machine. Transitions are monotonic:
// PENDING -> CONFIRMING -> PAID, PENDING -> PAID, PENDING/CONFIRMING -> EXPIRED.
// A same-status step is allowed for CONFIRMING so confirmation counts can
// advance under the same compare-and-set guard.
func (s OrderStatus) CanTransition(to OrderStatus) bool {
	if s.Terminal() {
		return false
	}
	switch to {
	case OrderStatusConfirming:
		return s == OrderStatusPending || s == OrderStatusConfirming
	case OrderStatusPaid, OrderStatusExpired:
		return true
	default:
		return false
	}
}

type Order struct {
	ID             uint64
	Currency       Currency
	ExpectedAmount decimal.Decimal
	// Address is the receiving address shown to the buyer: the vendor wallet
	// for public ledgers, an integrated wallet address for XMR.
	Address string
	// PaymentRef is the out-of-band correlator. For XMR it is the payment id
	// baked into the integrated address; public ledgers carry it for tracking
	// only and match by amount + time window instead.
	PaymentRef string
	// ObservedTxRef is set once a matching transaction is chosen and never
	// changes afterwards.
	ObservedTxRef string
	Confirmations int64
	Status        OrderStatus
	VendorWallet  string
	CreatedAt     time.Time
}
