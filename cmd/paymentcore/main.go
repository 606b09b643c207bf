package main

import (
	"context"
	"fmt"

	"github.com/cryptomart/payment-core/internal/adapter/auth"
	"github.com/cryptomart/payment-core/internal/adapter/client/bitcoin"
	"github.com/cryptomart/payment-core/internal/adapter/client/ethereum"
	"github.com/cryptomart/payment-core/internal/adapter/client/rates"
	"github.com/cryptomart/payment-core/internal/adapter/config"
	"github.com/cryptomart/payment-core/internal/adapter/handler/http"
	"github.com/cryptomart/payment-core/internal/adapter/logger"
	"github.com/cryptomart/payment-core/internal/adapter/ratelimit"
	"github.com/cryptomart/payment-core/internal/adapter/storage"
	"github.com/cryptomart/payment-core/internal/adapter/storage/repository"
	"github.com/cryptomart/payment-core/internal/adapter/wallet"
	"github.com/cryptomart/payment-core/internal/core/port"
	"github.com/cryptomart/payment-core/internal/core/service"
	"go.uber.org/zap"
)

func main() {
	conf, err := config.NewConfig()
	if err != nil {
		fmt.Printf("config error:%s", err)
		return
	}

	log := logger.NewLogger(conf.App)
	if log == nil {
		fmt.Printf("error creating log")
		return
	}
	defer func() {
		err := log.Sync()
		if err != nil {
			fmt.Printf("log error: %s", err)
		}
	}()

	ctx := context.Background()

	db, err := storage.NewDBStorage(ctx, conf.Database)
	if err != nil {
		log.Error("database error", zap.Error(err))
		return
	}
	err = db.RunMigrations()
	if err != nil {
		log.Error("database migration error", zap.Error(err))
		return
	}

	repo, err := repository.NewRepository(db)
	if err != nil {
		log.Error("repository creating error", zap.Error(err))
		return
	}
	tokenService, err := auth.New(conf.HTTP.AdminTokenKey)
	if err != nil {
		log.Error("token service creating error", zap.Error(err))
		return
	}
	if conf.HTTP.AdminTokenKey == "" {
		// Without a configured key the admin surface would be unreachable, so
		// issue a process-scoped operator token on startup.
		operatorToken, err := tokenService.CreateToken("operator")
		if err != nil {
			log.Error("operator token creating error", zap.Error(err))
			return
		}
		log.Warn("ADMIN_TOKEN_KEY not set, issued process-scoped operator token",
			zap.String("token", operatorToken))
	}

	limiter := ratelimit.New(log.Named("RateLimit"))
	limiter.Configure(bitcoin.ProviderBlockchainInfo, conf.Providers.BitcoinRateEvery, 1)
	limiter.Configure(bitcoin.ProviderBlockCypher, conf.Providers.BitcoinRateEvery, 1)
	limiter.Configure(ethereum.ProviderEtherscan, conf.Providers.EthereumRateEvery, 1)
	limiter.Configure(ethereum.ProviderEtherscanMirror, conf.Providers.EthereumRateEvery, 1)
	limiter.Configure(rates.ProviderCoinGecko, conf.Providers.RateRateEvery, 1)

	btcClient := bitcoin.NewClient(conf.Providers, limiter, log.Named("Bitcoin"))
	ethClient := ethereum.NewClient(conf.Providers, limiter, log.Named("Ethereum"))
	rateClient := rates.NewClient(conf.Providers, limiter, log.Named("Rates"))

	var walletClient port.WalletClient
	if conf.Providers.MoneroRPCURL != "" {
		moneroClient, err := wallet.NewMoneroClient(conf.Providers, log.Named("Monero"))
		if err != nil {
			log.Error("monero wallet client creating error", zap.Error(err))
			return
		}
		walletClient = moneroClient
	}

	factory := service.NewFactory(service.FactoryDeps{
		BitcoinChain:  btcClient,
		EthereumChain: ethClient,
		Wallet:        walletClient,
	}, conf.Payment, log.Named("Factory"))

	converter := service.NewConverter(rateClient, conf.Providers.RateCacheTTL, log.Named("Converter"))

	ledger, err := service.NewLedger(repo, conf.Payment, log.Named("Ledger"))
	if err != nil {
		log.Error("commission ledger creating error", zap.Error(err))
		return
	}

	orders := service.NewOrders(repo, factory, converter, log.Named("Orders"))

	reconciler := service.NewReconciler(repo, factory, ledger, conf.Payment, log.Named("Reconciler"))
	go reconciler.Run(ctx)

	orderHandler, err := http.NewOrderHandler(orders, log.Named("Order handler"))
	if err != nil {
		log.Error("order handler creating error", zap.Error(err))
		return
	}
	earningsHandler, err := http.NewEarningsHandler(ledger, log.Named("Earnings handler"))
	if err != nil {
		log.Error("earnings handler creating error", zap.Error(err))
		return
	}

	r, err := http.NewRouter(conf.HTTP, tokenService, db, orderHandler, earningsHandler, log.Named("Router"))
	if err != nil {
		log.Error("router creating error", zap.Error(err))
		return
	}

	err = r.Serve(conf.HTTP.HostString)
	if err != nil {
		log.Error("router serve error", zap.Error(err))
		return
	}
}
