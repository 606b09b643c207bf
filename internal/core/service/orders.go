package service

import (
	"context"
	"time"

	"github.com/cryptomart/payment-core/internal/core/domain"
	"github.com/cryptomart/payment-core/internal/core/port"
	"github.com/govalues/decimal"
	"go.uber.org/zap"
)

// Orders is the surface the order-creation flow calls: it quotes an amount,
// provisions a receiving endpoint and persists the pending order. The
// reconciler takes over from there.
type Orders struct {
	repo      port.Repository
	factory   port.ServiceFactory
	converter *Converter
	logger    *zap.Logger
	now       func() time.Time
}

func NewOrders(repo port.Repository, factory port.ServiceFactory,
	converter *Converter, logger *zap.Logger) *Orders {
	return &Orders{
		repo:      repo,
		factory:   factory,
		converter: converter,
		logger:    logger,
		now:       time.Now,
	}
}

type CreateOrderInput struct {
	Currency     domain.Currency
	Amount       decimal.Decimal // crypto amount; zero when quoting from fiat
	FiatAmount   decimal.Decimal
	FiatCode     string
	VendorWallet string
}

type CreateOrderResult struct {
	Order                 *domain.Order
	RequiredConfirmations int64
	StaleRate             bool
}

func (s *Orders) Create(ctx context.Context, input CreateOrderInput) (*CreateOrderResult, error) {
	svc, err := s.factory.Service(input.Currency)
	if err != nil {
		return nil, err
	}

	amount := input.Amount
	stale := false
	if amount.IsZero() {
		conv, err := s.converter.FiatToCrypto(ctx, input.FiatAmount, input.FiatCode, input.Currency)
		if err != nil {
			return nil, err
		}
		amount = conv.Amount
		stale = conv.StaleRate
	}
	if amount.Sign() <= 0 {
		return nil, domain.ErrOrderBadAmount
	}

	// InvalidAddress and configuration errors block creation here, before
	// anything is persisted.
	endpoint, err := svc.CreateReceivingEndpoint(ctx, input.VendorWallet)
	if err != nil {
		return nil, err
	}

	order := &domain.Order{
		Currency:       input.Currency,
		ExpectedAmount: amount,
		Address:        endpoint.Address,
		PaymentRef:     endpoint.PaymentRef,
		Status:         domain.OrderStatusPending,
		VendorWallet:   input.VendorWallet,
		CreatedAt:      s.now(),
	}

	created, err := s.repo.CreateOrder(ctx, order)
	if err != nil {
		s.logger.Error("create order", zap.Error(err))
		return nil, err
	}

	s.logger.Info("order created",
		zap.Uint64("order", created.ID),
		zap.String("currency", string(created.Currency)),
		zap.String("expected", created.ExpectedAmount.String()))

	return &CreateOrderResult{
		Order:                 created,
		RequiredConfirmations: endpoint.RequiredConfirmations,
		StaleRate:             stale,
	}, nil
}

func (s *Orders) Get(ctx context.Context, orderID uint64) (*domain.Order, error) {
	return s.repo.ReadOrder(ctx, orderID)
}
