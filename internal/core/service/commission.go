package service

import (
	"context"
	"fmt"
	"time"

	"github.com/cryptomart/payment-core/internal/adapter/config"
	"github.com/cryptomart/payment-core/internal/core/domain"
	"github.com/cryptomart/payment-core/internal/core/port"
	"github.com/govalues/decimal"
	"go.uber.org/zap"
)

// Ledger derives the platform commission per paid order and aggregates
// earnings per currency for reporting.
type Ledger struct {
	repo   port.Repository
	rate   decimal.Decimal
	logger *zap.Logger
	now    func() time.Time
}

func NewLedger(repo port.Repository, cfg *config.Payment, logger *zap.Logger) (*Ledger, error) {
	rate, err := decimal.Parse(cfg.CommissionRate)
	if err != nil {
		return nil, fmt.Errorf("error parsing commission rate %q: %w", cfg.CommissionRate, err)
	}
	if rate.Sign() < 0 || rate.Cmp(decimal.One) >= 0 {
		return nil, fmt.Errorf("commission rate %s out of range [0,1)", rate)
	}

	return &Ledger{
		repo:   repo,
		rate:   rate,
		logger: logger,
		now:    time.Now,
	}, nil
}

// Commission is expectedAmount * rate at the currency's precision.
func (l *Ledger) Commission(order *domain.Order) (decimal.Decimal, error) {
	c, err := order.ExpectedAmount.Mul(l.rate)
	if err != nil {
		return decimal.Decimal{}, err
	}
	return c.Round(order.Currency.Scale()), nil
}

// RecordPaid creates the commission record and the vendor payout for an
// order. The caller guarantees it won the transition into PAID, so this runs
// at most once per order.
func (l *Ledger) RecordPaid(ctx context.Context, order *domain.Order) error {
	commission, err := l.Commission(order)
	if err != nil {
		return err
	}
	vendorShare, err := order.ExpectedAmount.Sub(commission)
	if err != nil {
		return err
	}

	err = l.repo.CreateCommissionRecord(ctx, &domain.CommissionRecord{
		OrderID:   order.ID,
		Currency:  order.Currency,
		Amount:    commission,
		CreatedAt: l.now(),
	})
	if err != nil {
		return err
	}

	err = l.repo.CreatePayout(ctx, &domain.Payout{
		OrderID:   order.ID,
		Currency:  order.Currency,
		Amount:    vendorShare,
		Status:    domain.PayoutStatusPending,
		CreatedAt: l.now(),
	})
	if err != nil {
		return err
	}

	l.logger.Info("recorded commission and payout",
		zap.Uint64("order", order.ID),
		zap.String("currency", string(order.Currency)),
		zap.String("commission", commission.String()),
		zap.String("vendor_share", vendorShare.String()))

	return nil
}

func (l *Ledger) PlatformEarnings(ctx context.Context) (map[domain.Currency]decimal.Decimal, error) {
	return l.repo.PlatformEarnings(ctx)
}
