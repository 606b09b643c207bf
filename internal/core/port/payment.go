package port

import (
	"context"

	"github.com/cryptomart/payment-core/internal/core/domain"
)

// ReceivingEndpoint is what the buyer is shown: where to send funds, the
// correlator (when the currency supports one) and how many confirmations the
// platform waits for.
type ReceivingEndpoint struct {
	Address               string
	PaymentRef            string
	RequiredConfirmations int64
}

//go:generate mockgen -source=payment.go -destination=mock/payment.go -package=mock
type PaymentService interface {
	CreateReceivingEndpoint(ctx context.Context, vendorWallet string) (*ReceivingEndpoint, error)
	Confirmations(ctx context.Context, order *domain.Order) (int64, error)
	// Evaluate decides the payment status of one order. It never mutates the
	// order; applying the verdict is the reconciler's job.
	Evaluate(ctx context.Context, order *domain.Order) (*domain.Evaluation, error)
}

// ServiceFactory maps a currency to its cached payment service instance and
// confirmation threshold.
type ServiceFactory interface {
	Service(currency domain.Currency) (PaymentService, error)
	RequiredConfirmations(currency domain.Currency) (int64, error)
}
