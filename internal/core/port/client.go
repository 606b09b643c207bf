package port

import (
	"context"
	"time"

	"github.com/cryptomart/payment-core/internal/core/domain"
	"github.com/govalues/decimal"
)

//go:generate mockgen -source=client.go -destination=mock/client.go -package=mock

// ChainClient fetches transactions for an address from an external indexing
// API, normalized to the canonical decimal representation of the currency.
type ChainClient interface {
	FetchTransactions(ctx context.Context, address string, since time.Time) ([]domain.Transaction, error)
}

// WalletClient is the wallet-RPC surface needed for the privacy coin:
// integrated-address generation and payment lookup by payment id.
type WalletClient interface {
	MakeIntegratedAddress(ctx context.Context, paymentID string) (string, error)
	PaymentsByID(ctx context.Context, paymentID string) ([]domain.Transaction, error)
}

// RateSource fetches spot prices of one crypto in a set of fiat currencies.
type RateSource interface {
	FetchRates(ctx context.Context, crypto domain.Currency) (map[string]decimal.Decimal, error)
}

// Limiter gates outbound calls per provider. Acquire blocks until a request
// slot is available or the context deadline would be exceeded, in which case
// it returns domain.ErrRateLimitExceeded so the caller can fall back.
type Limiter interface {
	Acquire(ctx context.Context, providerID string) error
}
