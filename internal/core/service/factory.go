package service

import (
	"fmt"
	"sync"

	"github.com/cryptomart/payment-core/internal/adapter/config"
	"github.com/cryptomart/payment-core/internal/core/domain"
	"github.com/cryptomart/payment-core/internal/core/port"
	"go.uber.org/zap"
)

// FactoryDeps are the external data sources the payment services wrap.
// Wallet may be nil when no wallet RPC is configured; XMR is then rejected
// at construction time rather than at evaluation time.
type FactoryDeps struct {
	BitcoinChain  port.ChainClient
	EthereumChain port.ChainClient
	Wallet        port.WalletClient
}

// Factory hands out one payment service instance per currency for the
// process lifetime. Construction is memoized behind a mutex so concurrent
// reconciliation workers share instances.
type Factory struct {
	mu         sync.Mutex
	deps       FactoryDeps
	thresholds map[domain.Currency]int64
	services   map[domain.Currency]port.PaymentService
	logger     *zap.Logger
}

func NewFactory(deps FactoryDeps, cfg *config.Payment, logger *zap.Logger) *Factory {
	return &Factory{
		deps: deps,
		thresholds: map[domain.Currency]int64{
			domain.CurrencyBTC: cfg.ConfirmationsBTC,
			domain.CurrencyETH: cfg.ConfirmationsETH,
			domain.CurrencyXMR: cfg.ConfirmationsXMR,
		},
		services: make(map[domain.Currency]port.PaymentService),
		logger:   logger,
	}
}

func (f *Factory) Service(currency domain.Currency) (port.PaymentService, error) {
	currency, err := domain.ParseCurrency(string(currency))
	if err != nil {
		return nil, fmt.Errorf("%w: %q", domain.ErrUnsupportedCurrency, currency)
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	if svc, ok := f.services[currency]; ok {
		return svc, nil
	}

	var svc port.PaymentService
	switch currency {
	case domain.CurrencyBTC:
		svc = newLedgerPaymentService(currency, f.deps.BitcoinChain,
			f.thresholds[currency], ValidateBitcoinAddress, f.logger.Named("BTC"))
	case domain.CurrencyETH:
		svc = newLedgerPaymentService(currency, f.deps.EthereumChain,
			f.thresholds[currency], ValidateEthereumAddress, f.logger.Named("ETH"))
	case domain.CurrencyXMR:
		if f.deps.Wallet == nil {
			return nil, fmt.Errorf("%w: XMR requires a wallet RPC endpoint", domain.ErrUnsupportedCurrency)
		}
		svc = newMoneroPaymentService(f.deps.Wallet, f.thresholds[currency], f.logger.Named("XMR"))
	}

	f.services[currency] = svc
	f.logger.Info("created payment service", zap.String("currency", string(currency)))

	return svc, nil
}

func (f *Factory) RequiredConfirmations(currency domain.Currency) (int64, error) {
	currency, err := domain.ParseCurrency(string(currency))
	if err != nil {
		return 0, fmt.Errorf("%w: %q", domain.ErrUnsupportedCurrency, currency)
	}
	return f.thresholds[currency], nil
}
