package service

import (
	"context"
	"fmt"

	"github.com/cryptomart/payment-core/internal/core/domain"
	"github.com/cryptomart/payment-core/internal/core/port"
	"github.com/govalues/decimal"
	"go.uber.org/zap"
)

// ledgerPaymentService verifies payments on a public ledger reachable through
// an indexing API. There is no per-order address rotation: funds go straight
// to the vendor wallet and matching relies on amount plus time window.
type ledgerPaymentService struct {
	currency  domain.Currency
	chain     port.ChainClient
	required  int64
	tolerance decimal.Decimal
	validate  func(string) bool
	logger    *zap.Logger
}

func newLedgerPaymentService(currency domain.Currency, chain port.ChainClient,
	required int64, validate func(string) bool, logger *zap.Logger) *ledgerPaymentService {
	return &ledgerPaymentService{
		currency:  currency,
		chain:     chain,
		required:  required,
		tolerance: domain.DefaultTolerance(currency),
		validate:  validate,
		logger:    logger,
	}
}

func (s *ledgerPaymentService) CreateReceivingEndpoint(ctx context.Context, vendorWallet string) (*port.ReceivingEndpoint, error) {
	if vendorWallet == "" {
		return nil, domain.ErrMissingVendorWallet
	}
	if !s.validate(vendorWallet) {
		return nil, fmt.Errorf("%w: %s address %q", domain.ErrInvalidAddress, s.currency, vendorWallet)
	}

	ref := newPaymentRef()
	s.logger.Info("created receiving endpoint",
		zap.String("currency", string(s.currency)),
		zap.String("payment_ref", ref))

	return &port.ReceivingEndpoint{
		Address:               vendorWallet,
		PaymentRef:            ref,
		RequiredConfirmations: s.required,
	}, nil
}

func (s *ledgerPaymentService) Confirmations(ctx context.Context, order *domain.Order) (int64, error) {
	eval, err := s.Evaluate(ctx, order)
	if err != nil {
		return 0, err
	}
	return eval.Confirmations, nil
}

func (s *ledgerPaymentService) Evaluate(ctx context.Context, order *domain.Order) (*domain.Evaluation, error) {
	if order.Status.Terminal() {
		return terminalEvaluation(order), nil
	}

	since := order.CreatedAt.Add(-matchClockSkew)
	txs, err := s.chain.FetchTransactions(ctx, order.Address, since)
	if err != nil {
		return nil, err
	}

	// Once a transaction reference was chosen it stays chosen; re-evaluation
	// only refreshes its confirmation count so a later-arriving transaction
	// cannot flip the order.
	if order.ObservedTxRef != "" {
		for i := range txs {
			if txs[i].Ref == order.ObservedTxRef {
				return s.decide(&txs[i]), nil
			}
		}
		s.logger.Debug("chosen transaction not in provider page, keeping last known state",
			zap.Uint64("order", order.ID),
			zap.String("tx_ref", order.ObservedTxRef))
		return &domain.Evaluation{
			Outcome:       domain.OutcomeConfirming,
			TxRef:         order.ObservedTxRef,
			Confirmations: order.Confirmations,
		}, nil
	}

	match, underpaid := selectMatch(txs, order.ExpectedAmount, s.tolerance, order.CreatedAt)
	if match == nil {
		if underpaid != nil {
			return &domain.Evaluation{
				Outcome:        domain.OutcomeUnderpaid,
				TxRef:          underpaid.Ref,
				Confirmations:  underpaid.Confirmations,
				ReceivedAmount: underpaid.Amount,
			}, nil
		}
		return &domain.Evaluation{Outcome: domain.OutcomeNoMatch}, nil
	}

	return s.decide(match), nil
}

func (s *ledgerPaymentService) decide(tx *domain.Transaction) *domain.Evaluation {
	outcome := domain.OutcomeConfirming
	if tx.Confirmations >= s.required {
		outcome = domain.OutcomePaid
	}
	return &domain.Evaluation{
		Outcome:       outcome,
		TxRef:         tx.Ref,
		Confirmations: tx.Confirmations,
	}
}
