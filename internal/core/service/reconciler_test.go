package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/cryptomart/payment-core/internal/adapter/config"
	"github.com/cryptomart/payment-core/internal/core/domain"
	"github.com/cryptomart/payment-core/internal/core/port"
	"github.com/cryptomart/payment-core/internal/core/port/mock"
	"github.com/cryptomart/payment-core/internal/core/service"
	"github.com/golang/mock/gomock"
	"github.com/govalues/decimal"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

func reconcilerConfig() *config.Payment {
	return &config.Payment{
		CommissionRate:    "0.05",
		ExpiryWindow:      24 * time.Hour,
		ReconcileInterval: time.Second,
		CallTimeout:       5 * time.Second,
		Workers:           2,
		ConfirmationsBTC:  6,
		ConfirmationsETH:  12,
		ConfirmationsXMR:  10,
	}
}

func newReconciler(t *testing.T, repo port.Repository, factory port.ServiceFactory) *service.Reconciler {
	t.Helper()
	logger, _ := zap.NewProduction()

	ledger, err := service.NewLedger(repo, reconcilerConfig(), logger)
	assert.NoError(t, err)

	return service.NewReconciler(repo, factory, ledger, reconcilerConfig(), logger)
}

func pendingOrder(id uint64) *domain.Order {
	return &domain.Order{
		ID:             id,
		Currency:       domain.CurrencyBTC,
		ExpectedAmount: decimal.MustParse("0.02"),
		Address:        btcAddress,
		Status:         domain.OrderStatusPending,
		CreatedAt:      time.Now().Add(-time.Hour),
	}
}

type preparePass func(repo *mock.MockRepository, svc *mock.MockPaymentService)

func TestReconciler_ReconcileOnce(t *testing.T) {
	mockCtrl := gomock.NewController(t)
	defer mockCtrl.Finish()

	nonTerminal := []domain.OrderStatus{domain.OrderStatusPending, domain.OrderStatusConfirming}

	tests := []struct {
		name string
		mock preparePass
	}{
		{
			name: "paid verdict records commission and payout",
			mock: func(repo *mock.MockRepository, svc *mock.MockPaymentService) {
				order := pendingOrder(1)
				repo.EXPECT().ListOrdersByStatus(gomock.Any(), nonTerminal).
					Return([]*domain.Order{order}, nil)
				svc.EXPECT().Evaluate(gomock.Any(), order).
					Return(&domain.Evaluation{
						Outcome:       domain.OutcomePaid,
						TxRef:         "tx1",
						Confirmations: 6,
					}, nil)
				repo.EXPECT().TransitionOrder(gomock.Any(), uint64(1),
					domain.OrderStatusPending, domain.OrderStatusPaid, gomock.Any()).
					DoAndReturn(func(_ context.Context, _ uint64, _, _ domain.OrderStatus, update port.OrderUpdate) (bool, error) {
						assert.Equal(t, "tx1", *update.ObservedTxRef)
						assert.Equal(t, int64(6), *update.Confirmations)
						return true, nil
					})
				repo.EXPECT().CreateCommissionRecord(gomock.Any(), gomock.Any()).
					DoAndReturn(func(_ context.Context, rec *domain.CommissionRecord) error {
						assert.Equal(t, uint64(1), rec.OrderID)
						assert.Zero(t, rec.Amount.Cmp(decimal.MustParse("0.001")))
						return nil
					})
				repo.EXPECT().CreatePayout(gomock.Any(), gomock.Any()).
					DoAndReturn(func(_ context.Context, payout *domain.Payout) error {
						assert.Equal(t, uint64(1), payout.OrderID)
						assert.Zero(t, payout.Amount.Cmp(decimal.MustParse("0.019")))
						assert.Equal(t, domain.PayoutStatusPending, payout.Status)
						return nil
					})
			},
		},
		{
			name: "lost transition race skips side effects",
			mock: func(repo *mock.MockRepository, svc *mock.MockPaymentService) {
				order := pendingOrder(2)
				repo.EXPECT().ListOrdersByStatus(gomock.Any(), nonTerminal).
					Return([]*domain.Order{order}, nil)
				svc.EXPECT().Evaluate(gomock.Any(), order).
					Return(&domain.Evaluation{
						Outcome:       domain.OutcomePaid,
						TxRef:         "tx1",
						Confirmations: 6,
					}, nil)
				repo.EXPECT().TransitionOrder(gomock.Any(), uint64(2),
					domain.OrderStatusPending, domain.OrderStatusPaid, gomock.Any()).
					Return(false, nil)
				// No commission, no payout.
			},
		},
		{
			name: "confirming verdict updates progress",
			mock: func(repo *mock.MockRepository, svc *mock.MockPaymentService) {
				order := pendingOrder(3)
				repo.EXPECT().ListOrdersByStatus(gomock.Any(), nonTerminal).
					Return([]*domain.Order{order}, nil)
				svc.EXPECT().Evaluate(gomock.Any(), order).
					Return(&domain.Evaluation{
						Outcome:       domain.OutcomeConfirming,
						TxRef:         "tx1",
						Confirmations: 2,
					}, nil)
				repo.EXPECT().TransitionOrder(gomock.Any(), uint64(3),
					domain.OrderStatusPending, domain.OrderStatusConfirming, gomock.Any()).
					Return(true, nil)
			},
		},
		{
			name: "no match within expiry window leaves order alone",
			mock: func(repo *mock.MockRepository, svc *mock.MockPaymentService) {
				order := pendingOrder(4)
				repo.EXPECT().ListOrdersByStatus(gomock.Any(), nonTerminal).
					Return([]*domain.Order{order}, nil)
				svc.EXPECT().Evaluate(gomock.Any(), order).
					Return(&domain.Evaluation{Outcome: domain.OutcomeNoMatch}, nil)
			},
		},
		{
			name: "no match past expiry window expires order",
			mock: func(repo *mock.MockRepository, svc *mock.MockPaymentService) {
				order := pendingOrder(5)
				order.CreatedAt = time.Now().Add(-25 * time.Hour)
				repo.EXPECT().ListOrdersByStatus(gomock.Any(), nonTerminal).
					Return([]*domain.Order{order}, nil)
				svc.EXPECT().Evaluate(gomock.Any(), order).
					Return(&domain.Evaluation{Outcome: domain.OutcomeNoMatch}, nil)
				repo.EXPECT().TransitionOrder(gomock.Any(), uint64(5),
					domain.OrderStatusPending, domain.OrderStatusExpired, port.OrderUpdate{}).
					Return(true, nil)
			},
		},
		{
			name: "underpaid verdict is surfaced without state change",
			mock: func(repo *mock.MockRepository, svc *mock.MockPaymentService) {
				order := pendingOrder(6)
				repo.EXPECT().ListOrdersByStatus(gomock.Any(), nonTerminal).
					Return([]*domain.Order{order}, nil)
				svc.EXPECT().Evaluate(gomock.Any(), order).
					Return(&domain.Evaluation{
						Outcome:        domain.OutcomeUnderpaid,
						TxRef:          "tx1",
						Confirmations:  6,
						ReceivedAmount: decimal.MustParse("0.01"),
					}, nil)
			},
		},
		{
			name: "transient provider trouble leaves order for next pass",
			mock: func(repo *mock.MockRepository, svc *mock.MockPaymentService) {
				order := pendingOrder(7)
				repo.EXPECT().ListOrdersByStatus(gomock.Any(), nonTerminal).
					Return([]*domain.Order{order}, nil)
				svc.EXPECT().Evaluate(gomock.Any(), order).
					Return(nil, domain.ErrRateLimitExceeded)
			},
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			repo := mock.NewMockRepository(mockCtrl)
			svc := mock.NewMockPaymentService(mockCtrl)
			factory := mock.NewMockServiceFactory(mockCtrl)
			factory.EXPECT().Service(domain.CurrencyBTC).Return(svc, nil).AnyTimes()

			test.mock(repo, svc)

			r := newReconciler(t, repo, factory)

			err := r.ReconcileOnce(context.Background())
			assert.NoError(t, err)
		})
	}
}

func TestReconciler_ConfirmationsNeverRegress(t *testing.T) {
	mockCtrl := gomock.NewController(t)
	defer mockCtrl.Finish()

	order := pendingOrder(8)
	order.Status = domain.OrderStatusConfirming
	order.ObservedTxRef = "tx1"
	order.Confirmations = 5

	repo := mock.NewMockRepository(mockCtrl)
	svc := mock.NewMockPaymentService(mockCtrl)
	factory := mock.NewMockServiceFactory(mockCtrl)
	factory.EXPECT().Service(domain.CurrencyBTC).Return(svc, nil)

	repo.EXPECT().ListOrdersByStatus(gomock.Any(), gomock.Any()).
		Return([]*domain.Order{order}, nil)
	// A provider serving an older tip reports fewer confirmations.
	svc.EXPECT().Evaluate(gomock.Any(), order).
		Return(&domain.Evaluation{
			Outcome:       domain.OutcomeConfirming,
			TxRef:         "tx1",
			Confirmations: 3,
		}, nil)
	repo.EXPECT().TransitionOrder(gomock.Any(), uint64(8),
		domain.OrderStatusConfirming, domain.OrderStatusConfirming, gomock.Any()).
		DoAndReturn(func(_ context.Context, _ uint64, _, _ domain.OrderStatus, update port.OrderUpdate) (bool, error) {
			assert.Equal(t, int64(5), *update.Confirmations)
			return true, nil
		})

	r := newReconciler(t, repo, factory)

	err := r.ReconcileOnce(context.Background())
	assert.NoError(t, err)
}

func TestReconciler_RunStopsOnContextCancel(t *testing.T) {
	mockCtrl := gomock.NewController(t)
	defer mockCtrl.Finish()

	repo := mock.NewMockRepository(mockCtrl)
	repo.EXPECT().ListOrdersByStatus(gomock.Any(), gomock.Any()).
		Return([]*domain.Order{}, nil).AnyTimes()
	factory := mock.NewMockServiceFactory(mockCtrl)

	r := newReconciler(t, repo, factory)

	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan struct{})
	go func() {
		r.Run(ctx)
		close(done)
	}()

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("reconciler did not stop on context cancel")
	}
}
