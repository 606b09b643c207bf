package service

import (
	"context"

	"github.com/cryptomart/payment-core/internal/core/domain"
	"github.com/cryptomart/payment-core/internal/core/port"
	"github.com/govalues/decimal"
	"go.uber.org/zap"
)

// moneroPaymentService verifies payments through the wallet RPC. Every order
// gets an integrated address carrying a unique payment id, so matching is by
// correlator instead of amount heuristics. Multiple transfers with the same
// payment id are summed.
type moneroPaymentService struct {
	wallet    port.WalletClient
	required  int64
	tolerance decimal.Decimal
	logger    *zap.Logger
}

func newMoneroPaymentService(wallet port.WalletClient, required int64, logger *zap.Logger) *moneroPaymentService {
	return &moneroPaymentService{
		wallet:    wallet,
		required:  required,
		tolerance: domain.DefaultTolerance(domain.CurrencyXMR),
		logger:    logger,
	}
}

// CreateReceivingEndpoint ignores the vendor wallet: funds land in the
// platform wallet and are paid out from there.
func (s *moneroPaymentService) CreateReceivingEndpoint(ctx context.Context, vendorWallet string) (*port.ReceivingEndpoint, error) {
	paymentID := newPaymentRef()

	address, err := s.wallet.MakeIntegratedAddress(ctx, paymentID)
	if err != nil {
		return nil, err
	}

	s.logger.Info("created integrated address", zap.String("payment_id", paymentID))

	return &port.ReceivingEndpoint{
		Address:               address,
		PaymentRef:            paymentID,
		RequiredConfirmations: s.required,
	}, nil
}

func (s *moneroPaymentService) Confirmations(ctx context.Context, order *domain.Order) (int64, error) {
	eval, err := s.Evaluate(ctx, order)
	if err != nil {
		return 0, err
	}
	return eval.Confirmations, nil
}

func (s *moneroPaymentService) Evaluate(ctx context.Context, order *domain.Order) (*domain.Evaluation, error) {
	if order.Status.Terminal() {
		return terminalEvaluation(order), nil
	}

	payments, err := s.wallet.PaymentsByID(ctx, order.PaymentRef)
	if err != nil {
		return nil, err
	}
	if len(payments) == 0 {
		return &domain.Evaluation{Outcome: domain.OutcomeNoMatch}, nil
	}

	total := decimal.Zero
	confirmations := payments[0].Confirmations
	txRef := payments[0].Ref
	for _, p := range payments {
		total, err = total.Add(p.Amount)
		if err != nil {
			return nil, err
		}
		// The payment is only as final as its least-buried transfer.
		if p.Confirmations < confirmations {
			confirmations = p.Confirmations
		}
	}
	if order.ObservedTxRef != "" {
		txRef = order.ObservedTxRef
	}

	floor, err := order.ExpectedAmount.Sub(s.tolerance)
	if err != nil {
		return nil, err
	}
	if total.Cmp(floor) < 0 {
		return &domain.Evaluation{
			Outcome:        domain.OutcomeUnderpaid,
			TxRef:          txRef,
			Confirmations:  confirmations,
			ReceivedAmount: total,
		}, nil
	}

	outcome := domain.OutcomeConfirming
	if confirmations >= s.required {
		outcome = domain.OutcomePaid
	}
	return &domain.Evaluation{
		Outcome:       outcome,
		TxRef:         txRef,
		Confirmations: confirmations,
	}, nil
}
