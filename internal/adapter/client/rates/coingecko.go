package rates

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/cryptomart/payment-core/internal/adapter/config"
	"github.com/cryptomart/payment-core/internal/core/domain"
	"github.com/cryptomart/payment-core/internal/core/port"
	"github.com/govalues/decimal"
	"go.uber.org/zap"
)

const ProviderCoinGecko = "coingecko"

var coinIDs = map[domain.Currency]string{
	domain.CurrencyBTC: "bitcoin",
	domain.CurrencyETH: "ethereum",
	domain.CurrencyXMR: "monero",
}

var fiatCodes = []string{"usd", "gbp", "eur"}

// Client fetches spot prices from the CoinGecko simple-price API.
type Client struct {
	httpClient *http.Client
	limiter    port.Limiter
	logger     *zap.Logger
	baseURL    string
}

func NewClient(cfg *config.Providers, limiter port.Limiter, log *zap.Logger) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: 15 * time.Second},
		limiter:    limiter,
		logger:     log,
		baseURL:    strings.TrimRight(cfg.RatesAPIURL, "/"),
	}
}

func (c *Client) FetchRates(ctx context.Context, crypto domain.Currency) (map[string]decimal.Decimal, error) {
	coinID, ok := coinIDs[crypto]
	if !ok {
		return nil, domain.ErrUnsupportedCurrency
	}

	if err := c.limiter.Acquire(ctx, ProviderCoinGecko); err != nil {
		return nil, err
	}

	params := url.Values{}
	params.Set("ids", coinID)
	params.Set("vs_currencies", strings.Join(fiatCodes, ","))
	params.Set("precision", "8")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		c.baseURL+"/simple/price?"+params.Encode(), http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("error building rates request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: coingecko: %s", domain.ErrProviderUnavailable, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode == http.StatusTooManyRequests {
		return nil, fmt.Errorf("%w: %s", domain.ErrRateLimitExceeded, ProviderCoinGecko)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: coingecko returned status %d",
			domain.ErrProviderUnavailable, resp.StatusCode)
	}

	var data map[string]map[string]float64
	if err := json.NewDecoder(resp.Body).Decode(&data); err != nil {
		return nil, fmt.Errorf("error on response decode: %w", err)
	}

	prices, ok := data[coinID]
	if !ok {
		return nil, fmt.Errorf("%w: coingecko response missing %s",
			domain.ErrProviderUnavailable, coinID)
	}

	result := make(map[string]decimal.Decimal, len(prices))
	for fiat, price := range prices {
		rate, err := decimal.NewFromFloat64(price)
		if err != nil {
			return nil, fmt.Errorf("error normalizing rate: %w", err)
		}
		result[strings.ToUpper(fiat)] = rate
	}

	c.logger.Debug("fetched exchange rates",
		zap.String("crypto", string(crypto)), zap.Int("fiat_count", len(result)))

	return result, nil
}
