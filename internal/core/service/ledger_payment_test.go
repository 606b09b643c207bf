package service_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/cryptomart/payment-core/internal/core/domain"
	"github.com/cryptomart/payment-core/internal/core/port"
	"github.com/cryptomart/payment-core/internal/core/port/mock"
	"github.com/cryptomart/payment-core/internal/core/service"
	"github.com/golang/mock/gomock"
	"github.com/govalues/decimal"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

const (
	btcAddress = "bc1qw508d6qejxtdg4y5r3zarvary0c5xw7kv8f3t4"
	ethAddress = "0x52908400098527886E0F7030069857D2E4169EE7"
)

func bitcoinService(t *testing.T, chain port.ChainClient) port.PaymentService {
	t.Helper()
	logger, _ := zap.NewProduction()

	factory := service.NewFactory(service.FactoryDeps{BitcoinChain: chain},
		paymentConfig(), logger)
	svc, err := factory.Service(domain.CurrencyBTC)
	assert.NoError(t, err)
	return svc
}

func TestLedgerPayment_CreateReceivingEndpoint(t *testing.T) {
	mockCtrl := gomock.NewController(t)
	defer mockCtrl.Finish()

	svc := bitcoinService(t, mock.NewMockChainClient(mockCtrl))

	tests := []struct {
		name     string
		wallet   string
		expError error
	}{
		{name: "bech32 address", wallet: btcAddress},
		{name: "legacy address", wallet: "1A1zP1eP5QGefi2DMPTfTL5SLmv7DivfNa"},
		{name: "missing wallet", wallet: "", expError: domain.ErrMissingVendorWallet},
		{name: "ethereum address rejected", wallet: ethAddress, expError: domain.ErrInvalidAddress},
		{name: "garbage rejected", wallet: "not-an-address", expError: domain.ErrInvalidAddress},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			endpoint, err := svc.CreateReceivingEndpoint(context.Background(), test.wallet)

			if test.expError != nil {
				assert.ErrorIs(t, err, test.expError)
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, test.wallet, endpoint.Address)
			assert.NotEmpty(t, endpoint.PaymentRef)
			assert.Equal(t, int64(6), endpoint.RequiredConfirmations)
		})
	}
}

func TestLedgerPayment_Evaluate(t *testing.T) {
	mockCtrl := gomock.NewController(t)
	defer mockCtrl.Finish()

	createdAt := time.Now().Add(-time.Hour)
	order := func() *domain.Order {
		return &domain.Order{
			ID:             1,
			Currency:       domain.CurrencyBTC,
			ExpectedAmount: decimal.MustParse("0.02"),
			Address:        btcAddress,
			Status:         domain.OrderStatusPending,
			CreatedAt:      createdAt,
		}
	}

	tests := []struct {
		name       string
		order      *domain.Order
		txs        []domain.Transaction
		fetchErr   error
		expOutcome domain.Outcome
		expTxRef   string
		expConfs   int64
		expError   error
	}{
		{
			name:  "paid at threshold",
			order: order(),
			txs: []domain.Transaction{
				{Ref: "tx1", Amount: decimal.MustParse("0.02"), Confirmations: 6, ObservedAt: createdAt.Add(time.Minute)},
			},
			expOutcome: domain.OutcomePaid,
			expTxRef:   "tx1",
			expConfs:   6,
		},
		{
			name:  "confirming below threshold",
			order: order(),
			txs: []domain.Transaction{
				{Ref: "tx1", Amount: decimal.MustParse("0.02"), Confirmations: 3, ObservedAt: createdAt.Add(time.Minute)},
			},
			expOutcome: domain.OutcomeConfirming,
			expTxRef:   "tx1",
			expConfs:   3,
		},
		{
			name:       "no transactions",
			order:      order(),
			txs:        []domain.Transaction{},
			expOutcome: domain.OutcomeNoMatch,
		},
		{
			name:  "underpaid",
			order: order(),
			txs: []domain.Transaction{
				{Ref: "tx1", Amount: decimal.MustParse("0.01"), Confirmations: 6, ObservedAt: createdAt.Add(time.Minute)},
			},
			expOutcome: domain.OutcomeUnderpaid,
			expTxRef:   "tx1",
			expConfs:   6,
		},
		{
			name: "chosen transaction stays chosen",
			order: func() *domain.Order {
				o := order()
				o.Status = domain.OrderStatusConfirming
				o.ObservedTxRef = "tx1"
				o.Confirmations = 2
				return o
			}(),
			txs: []domain.Transaction{
				{Ref: "tx1", Amount: decimal.MustParse("0.02"), Confirmations: 4, ObservedAt: createdAt.Add(time.Minute)},
				{Ref: "tx2", Amount: decimal.MustParse("0.02"), Confirmations: 9, ObservedAt: createdAt.Add(2 * time.Minute)},
			},
			expOutcome: domain.OutcomeConfirming,
			expTxRef:   "tx1",
			expConfs:   4,
		},
		{
			name: "chosen transaction missing from page keeps last known state",
			order: func() *domain.Order {
				o := order()
				o.Status = domain.OrderStatusConfirming
				o.ObservedTxRef = "tx1"
				o.Confirmations = 5
				return o
			}(),
			txs:        []domain.Transaction{},
			expOutcome: domain.OutcomeConfirming,
			expTxRef:   "tx1",
			expConfs:   5,
		},
		{
			name:     "provider error propagates",
			order:    order(),
			fetchErr: domain.ErrProviderUnavailable,
			expError: domain.ErrProviderUnavailable,
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			chain := mock.NewMockChainClient(mockCtrl)
			chain.EXPECT().FetchTransactions(gomock.Any(), btcAddress, gomock.Any()).
				Return(test.txs, test.fetchErr)

			svc := bitcoinService(t, chain)

			eval, err := svc.Evaluate(context.Background(), test.order)

			if test.expError != nil {
				assert.ErrorIs(t, err, test.expError)
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, test.expOutcome, eval.Outcome)
			assert.Equal(t, test.expTxRef, eval.TxRef)
			assert.Equal(t, test.expConfs, eval.Confirmations)
		})
	}
}

func TestLedgerPayment_EvaluateTerminalOrder(t *testing.T) {
	mockCtrl := gomock.NewController(t)
	defer mockCtrl.Finish()

	// No FetchTransactions expectation: a terminal order never reaches the chain.
	svc := bitcoinService(t, mock.NewMockChainClient(mockCtrl))

	eval, err := svc.Evaluate(context.Background(), &domain.Order{
		Status:        domain.OrderStatusPaid,
		ObservedTxRef: "tx1",
		Confirmations: 7,
	})
	assert.NoError(t, err)
	assert.Equal(t, domain.OutcomePaid, eval.Outcome)
	assert.Equal(t, "tx1", eval.TxRef)
}

func TestLedgerPayment_Confirmations(t *testing.T) {
	mockCtrl := gomock.NewController(t)
	defer mockCtrl.Finish()

	createdAt := time.Now().Add(-time.Hour)
	chain := mock.NewMockChainClient(mockCtrl)
	chain.EXPECT().FetchTransactions(gomock.Any(), btcAddress, gomock.Any()).
		Return([]domain.Transaction{
			{Ref: "tx1", Amount: decimal.MustParse("0.02"), Confirmations: 4, ObservedAt: createdAt.Add(time.Minute)},
		}, nil)

	svc := bitcoinService(t, chain)

	confs, err := svc.Confirmations(context.Background(), &domain.Order{
		Currency:       domain.CurrencyBTC,
		ExpectedAmount: decimal.MustParse("0.02"),
		Address:        btcAddress,
		Status:         domain.OrderStatusConfirming,
		CreatedAt:      createdAt,
	})
	assert.NoError(t, err)
	assert.Equal(t, int64(4), confs)
}

func TestLedgerPayment_EvaluateFetchError(t *testing.T) {
	mockCtrl := gomock.NewController(t)
	defer mockCtrl.Finish()

	chain := mock.NewMockChainClient(mockCtrl)
	chain.EXPECT().FetchTransactions(gomock.Any(), btcAddress, gomock.Any()).
		Return(nil, errors.New("boom"))

	svc := bitcoinService(t, chain)

	_, err := svc.Evaluate(context.Background(), &domain.Order{
		Currency:       domain.CurrencyBTC,
		ExpectedAmount: decimal.MustParse("0.02"),
		Address:        btcAddress,
		Status:         domain.OrderStatusPending,
		CreatedAt:      time.Now(),
	})
	assert.Error(t, err)
}
