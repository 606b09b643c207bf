package service_test

import (
	"context"
	"testing"

	"github.com/cryptomart/payment-core/internal/core/domain"
	"github.com/cryptomart/payment-core/internal/core/port"
	"github.com/cryptomart/payment-core/internal/core/port/mock"
	"github.com/cryptomart/payment-core/internal/core/service"
	"github.com/golang/mock/gomock"
	"github.com/govalues/decimal"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

func moneroService(t *testing.T, wallet port.WalletClient) port.PaymentService {
	t.Helper()
	logger, _ := zap.NewProduction()

	factory := service.NewFactory(service.FactoryDeps{Wallet: wallet},
		paymentConfig(), logger)
	svc, err := factory.Service(domain.CurrencyXMR)
	assert.NoError(t, err)
	return svc
}

func TestMoneroPayment_CreateReceivingEndpoint(t *testing.T) {
	mockCtrl := gomock.NewController(t)
	defer mockCtrl.Finish()

	wallet := mock.NewMockWalletClient(mockCtrl)
	wallet.EXPECT().MakeIntegratedAddress(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, paymentID string) (string, error) {
			assert.Len(t, paymentID, 16)
			return "4integrated" + paymentID, nil
		})

	svc := moneroService(t, wallet)

	// Vendor wallet is irrelevant: funds land in the platform wallet.
	endpoint, err := svc.CreateReceivingEndpoint(context.Background(), "")
	assert.NoError(t, err)
	assert.NotEmpty(t, endpoint.PaymentRef)
	assert.Equal(t, "4integrated"+endpoint.PaymentRef, endpoint.Address)
	assert.Equal(t, int64(10), endpoint.RequiredConfirmations)
}

func TestMoneroPayment_Evaluate(t *testing.T) {
	mockCtrl := gomock.NewController(t)
	defer mockCtrl.Finish()

	order := func() *domain.Order {
		return &domain.Order{
			ID:             7,
			Currency:       domain.CurrencyXMR,
			ExpectedAmount: decimal.MustParse("1.5"),
			PaymentRef:     "deadbeefdeadbeef",
			Status:         domain.OrderStatusPending,
		}
	}

	tests := []struct {
		name       string
		payments   []domain.Transaction
		expOutcome domain.Outcome
		expConfs   int64
	}{
		{
			name: "paid single transfer",
			payments: []domain.Transaction{
				{Ref: "tx1", Amount: decimal.MustParse("1.5"), Confirmations: 10},
			},
			expOutcome: domain.OutcomePaid,
			expConfs:   10,
		},
		{
			name: "split transfers summed, least buried counts",
			payments: []domain.Transaction{
				{Ref: "tx1", Amount: decimal.MustParse("1.0"), Confirmations: 12},
				{Ref: "tx2", Amount: decimal.MustParse("0.5"), Confirmations: 4},
			},
			expOutcome: domain.OutcomeConfirming,
			expConfs:   4,
		},
		{
			name: "underpaid total",
			payments: []domain.Transaction{
				{Ref: "tx1", Amount: decimal.MustParse("0.7"), Confirmations: 10},
			},
			expOutcome: domain.OutcomeUnderpaid,
			expConfs:   10,
		},
		{
			name:       "no payments",
			payments:   []domain.Transaction{},
			expOutcome: domain.OutcomeNoMatch,
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			wallet := mock.NewMockWalletClient(mockCtrl)
			wallet.EXPECT().PaymentsByID(gomock.Any(), "deadbeefdeadbeef").
				Return(test.payments, nil)

			svc := moneroService(t, wallet)

			eval, err := svc.Evaluate(context.Background(), order())
			assert.NoError(t, err)
			assert.Equal(t, test.expOutcome, eval.Outcome)
			assert.Equal(t, test.expConfs, eval.Confirmations)
		})
	}
}
