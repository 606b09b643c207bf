package ethereum

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/cryptomart/payment-core/internal/adapter/config"
	"github.com/cryptomart/payment-core/internal/core/domain"
	"github.com/cryptomart/payment-core/internal/core/port"
	"github.com/govalues/decimal"
	"go.uber.org/zap"
)

const (
	ProviderEtherscan       = "etherscan"
	ProviderEtherscanMirror = "etherscan-mirror"
)

// Client queries an Etherscan-style account API and normalizes wei string
// values into canonical ETH decimals. The fallback, when configured, is a
// second Etherscan-compatible endpoint; plain JSON-RPC nodes cannot list
// transactions by address, so there is no node fallback.
type Client struct {
	httpClient  *http.Client
	limiter     port.Limiter
	logger      *zap.Logger
	primaryURL  string
	fallbackURL string
	apiKey      string
}

func NewClient(cfg *config.Providers, limiter port.Limiter, log *zap.Logger) *Client {
	return &Client{
		httpClient:  &http.Client{Timeout: 30 * time.Second},
		limiter:     limiter,
		logger:      log,
		primaryURL:  cfg.EtherscanAPIURL,
		fallbackURL: cfg.EtherscanFallbackURL,
		apiKey:      cfg.EtherscanAPIKey,
	}
}

func (c *Client) FetchTransactions(ctx context.Context, address string, since time.Time) ([]domain.Transaction, error) {
	txs, err := c.fetch(ctx, ProviderEtherscan, c.primaryURL, address, since)
	if err == nil {
		return txs, nil
	}
	if c.fallbackURL == "" {
		return nil, fmt.Errorf("%w: etherscan: %s", domain.ErrProviderUnavailable, err)
	}

	c.logger.Warn("primary ethereum provider failed, trying fallback", zap.Error(err))

	txs, err2 := c.fetch(ctx, ProviderEtherscanMirror, c.fallbackURL, address, since)
	if err2 != nil {
		return nil, fmt.Errorf("%w: etherscan: %s; mirror: %s",
			domain.ErrProviderUnavailable, err, err2)
	}
	return txs, nil
}

type txListResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
	Result  []struct {
		Hash          string `json:"hash"`
		To            string `json:"to"`
		Value         string `json:"value"`
		TimeStamp     string `json:"timeStamp"`
		Confirmations string `json:"confirmations"`
		IsError       string `json:"isError"`
	} `json:"result"`
}

func (c *Client) fetch(ctx context.Context, providerID, baseURL, address string, since time.Time) ([]domain.Transaction, error) {
	if err := c.limiter.Acquire(ctx, providerID); err != nil {
		return nil, err
	}

	params := url.Values{}
	params.Set("module", "account")
	params.Set("action", "txlist")
	params.Set("address", address)
	params.Set("startblock", "0")
	params.Set("endblock", "99999999")
	params.Set("page", "1")
	params.Set("offset", "100")
	params.Set("sort", "desc")
	if c.apiKey != "" {
		params.Set("apikey", c.apiKey)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, baseURL+"?"+params.Encode(), http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("error on %s : %w", baseURL, err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request error %s : %w", baseURL, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode == http.StatusTooManyRequests {
		return nil, fmt.Errorf("%w: %s", domain.ErrRateLimitExceeded, providerID)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%s returned status %d", providerID, resp.StatusCode)
	}

	var data txListResponse
	if err := json.NewDecoder(resp.Body).Decode(&data); err != nil {
		return nil, fmt.Errorf("error on response decode: %w", err)
	}
	// Etherscan reports "no transactions found" as status 0 with empty result.
	if data.Status != "1" && len(data.Result) > 0 {
		return nil, fmt.Errorf("%s error: %s", providerID, data.Message)
	}

	txs := make([]domain.Transaction, 0, len(data.Result))
	for _, raw := range data.Result {
		if raw.IsError == "1" {
			continue
		}
		// Incoming transfers only.
		if !strings.EqualFold(raw.To, address) {
			continue
		}

		ts, err := strconv.ParseInt(raw.TimeStamp, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("error parsing timestamp: %w", err)
		}
		observed := time.Unix(ts, 0).UTC()
		if observed.Before(since) {
			continue
		}

		amount, err := WeiToEth(raw.Value)
		if err != nil {
			return nil, fmt.Errorf("error normalizing amount: %w", err)
		}

		confirmations, err := strconv.ParseInt(raw.Confirmations, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("error parsing confirmations: %w", err)
		}

		txs = append(txs, domain.Transaction{
			Ref:           raw.Hash,
			Amount:        amount,
			Confirmations: confirmations,
			ObservedAt:    observed,
		})
	}
	return txs, nil
}

// WeiToEth converts a wei integer string into an ETH decimal. The decimal
// point is placed by string surgery so values above the int64 range survive.
func WeiToEth(wei string) (decimal.Decimal, error) {
	wei = strings.TrimLeft(wei, "0")
	if wei == "" {
		return decimal.Zero, nil
	}
	for _, r := range wei {
		if r < '0' || r > '9' {
			return decimal.Decimal{}, fmt.Errorf("invalid wei value %q", wei)
		}
	}
	if len(wei) <= 18 {
		return decimal.Parse("0." + strings.Repeat("0", 18-len(wei)) + wei)
	}
	return decimal.Parse(wei[:len(wei)-18] + "." + wei[len(wei)-18:])
}
