package service

import (
	"strings"
	"time"

	"github.com/cryptomart/payment-core/internal/core/domain"
	"github.com/google/uuid"
	"github.com/govalues/decimal"
)

// matchClockSkew widens the match window backwards so a payment sent from a
// machine with a slightly fast clock still qualifies.
const matchClockSkew = 2 * time.Minute

// selectMatch scans normalized transactions for one paying the expected
// amount within the absolute tolerance. First-seen wins; equal observation
// times break toward the larger amount. A transaction below expected minus
// tolerance is returned separately as underpayment evidence.
func selectMatch(txs []domain.Transaction, expected, tolerance decimal.Decimal,
	createdAt time.Time) (match, underpaid *domain.Transaction) {
	windowStart := createdAt.Add(-matchClockSkew)

	for i := range txs {
		tx := &txs[i]
		if !tx.ObservedAt.IsZero() && tx.ObservedAt.Before(windowStart) {
			continue
		}

		diff, err := tx.Amount.Sub(expected)
		if err != nil {
			continue
		}

		if diff.Abs().Cmp(tolerance) <= 0 {
			switch {
			case match == nil:
				match = tx
			case tx.ObservedAt.Before(match.ObservedAt):
				match = tx
			case tx.ObservedAt.Equal(match.ObservedAt) && tx.Amount.Cmp(match.Amount) > 0:
				match = tx
			}
			continue
		}

		if diff.Sign() < 0 {
			if underpaid == nil || tx.Amount.Cmp(underpaid.Amount) > 0 {
				underpaid = tx
			}
		}
	}

	return match, underpaid
}

// terminalEvaluation maps a terminal order back to its stored verdict; a
// repeated Evaluate on such an order is a no-op.
func terminalEvaluation(order *domain.Order) *domain.Evaluation {
	outcome := domain.OutcomeNoMatch
	if order.Status == domain.OrderStatusPaid {
		outcome = domain.OutcomePaid
	}
	return &domain.Evaluation{
		Outcome:       outcome,
		TxRef:         order.ObservedTxRef,
		Confirmations: order.Confirmations,
	}
}

func newPaymentRef() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")[:16]
}
