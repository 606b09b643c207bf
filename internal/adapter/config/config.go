package config

import (
	"flag"
	"fmt"
	"time"

	"github.com/caarlos0/env/v6"
)

type Config struct {
	Database  *Database
	HTTP      *HTTP
	App       *App
	Payment   *Payment
	Providers *Providers
}

const AppModeProduction = "PROD"
const AppModeDevelop = "DEV"

type App struct {
	LogLevel string `env:"LOG_LEVEL"`
	Mode     string
}

type Database struct {
	DSN string `env:"DATABASE_URI"`
}

type HTTP struct {
	HostString string `env:"RUN_ADDRESS"`
	// AdminTokenKey is the hex-encoded symmetric key for admin tokens. Tokens
	// minted against it keep working across restarts.
	AdminTokenKey string `env:"ADMIN_TOKEN_KEY"`
}

// Payment holds the reconciliation knobs. Confirmation thresholds default to
// the fixed per-currency table and are overridable, never per order.
type Payment struct {
	CommissionRate    string        `env:"COMMISSION_RATE" envDefault:"0.05"`
	ExpiryWindow      time.Duration `env:"PAYMENT_EXPIRY_WINDOW" envDefault:"24h"`
	ReconcileInterval time.Duration `env:"RECONCILE_INTERVAL" envDefault:"30s"`
	CallTimeout       time.Duration `env:"PROVIDER_CALL_TIMEOUT" envDefault:"30s"`
	Workers           int           `env:"RECONCILE_WORKERS" envDefault:"5"`
	ConfirmationsBTC  int64         `env:"CONFIRMATIONS_BTC" envDefault:"6"`
	ConfirmationsETH  int64         `env:"CONFIRMATIONS_ETH" envDefault:"12"`
	ConfirmationsXMR  int64         `env:"CONFIRMATIONS_XMR" envDefault:"10"`
}

// Providers configures the external data sources. A missing fallback URL
// simply yields a provider list of length one.
type Providers struct {
	BitcoinAPIURL      string        `env:"BITCOIN_API_URL" envDefault:"https://blockchain.info"`
	BitcoinFallbackURL string        `env:"BITCOIN_FALLBACK_URL" envDefault:"https://api.blockcypher.com/v1/btc/main"`
	BlockCypherToken   string        `env:"BLOCKCYPHER_TOKEN"`
	BitcoinRateEvery   time.Duration `env:"BITCOIN_RATE_EVERY" envDefault:"10s"`

	EtherscanAPIURL      string        `env:"ETHERSCAN_API_URL" envDefault:"https://api.etherscan.io/api"`
	EtherscanFallbackURL string        `env:"ETHERSCAN_FALLBACK_URL"`
	EtherscanAPIKey      string        `env:"ETHERSCAN_API_KEY"`
	EthereumRateEvery    time.Duration `env:"ETHEREUM_RATE_EVERY" envDefault:"200ms"`

	MoneroRPCURL string `env:"MONERO_RPC_URL"`

	RatesAPIURL   string        `env:"RATES_API_URL" envDefault:"https://api.coingecko.com/api/v3"`
	RateCacheTTL  time.Duration `env:"RATE_CACHE_TTL" envDefault:"5m"`
	RateRateEvery time.Duration `env:"RATES_RATE_EVERY" envDefault:"2s"`
}

func NewConfig() (*Config, error) {
	var db Database
	var httpConf HTTP
	var app App
	var payment Payment
	var providers Providers

	flag.StringVar(&db.DSN, "d", "", "Database string")
	flag.StringVar(&httpConf.HostString, "a", `localhost:8080`, "HTTP server endpoint")
	flag.StringVar(&app.LogLevel, "l", `error`, "Log level")
	flag.StringVar(&app.Mode, "m", `DEV`, "PROD / DEV")
	flag.Parse()

	err := env.Parse(&db)
	if err != nil {
		return nil, fmt.Errorf("error parsing env database config: %w", err)
	}
	err = env.Parse(&httpConf)
	if err != nil {
		return nil, fmt.Errorf("error parsing http config: %w", err)
	}
	err = env.Parse(&app)
	if err != nil {
		return nil, fmt.Errorf("error parsing app config: %w", err)
	}
	err = env.Parse(&payment)
	if err != nil {
		return nil, fmt.Errorf("error parsing payment config: %w", err)
	}
	err = env.Parse(&providers)
	if err != nil {
		return nil, fmt.Errorf("error parsing providers config: %w", err)
	}

	config := Config{
		Database:  &db,
		HTTP:      &httpConf,
		App:       &app,
		Payment:   &payment,
		Providers: &providers,
	}

	return &config, nil
}
