package port

import (
	"context"

	"github.com/cryptomart/payment-core/internal/core/domain"
	"github.com/govalues/decimal"
)

// OrderUpdate carries the fields a state transition may set. Nil pointers
// leave the stored value untouched.
type OrderUpdate struct {
	ObservedTxRef *string
	Confirmations *int64
}

//go:generate mockgen -source=repository.go -destination=mock/repository.go -package=mock
type Repository interface {
	// Order
	CreateOrder(ctx context.Context, order *domain.Order) (*domain.Order, error)
	ReadOrder(ctx context.Context, orderID uint64) (*domain.Order, error)
	ListOrdersByStatus(ctx context.Context, statuses []domain.OrderStatus) ([]*domain.Order, error)
	// TransitionOrder applies a compare-and-set on (orderID, from). It returns
	// false without error when another worker already moved the order.
	TransitionOrder(ctx context.Context, orderID uint64,
		from, to domain.OrderStatus, update OrderUpdate) (bool, error)

	// Commission / payout
	CreateCommissionRecord(ctx context.Context, rec *domain.CommissionRecord) error
	CreatePayout(ctx context.Context, payout *domain.Payout) error
	PlatformEarnings(ctx context.Context) (map[domain.Currency]decimal.Decimal, error)
}
