package bitcoin

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/cryptomart/payment-core/internal/adapter/config"
	"github.com/cryptomart/payment-core/internal/core/domain"
	"github.com/cryptomart/payment-core/internal/core/port"
	"github.com/govalues/decimal"
	"go.uber.org/zap"
)

// Provider ids used for rate-limit bucket lookup.
const (
	ProviderBlockchainInfo = "blockchain.info"
	ProviderBlockCypher    = "blockcypher"
)

// Client normalizes blockchain.info responses into domain transactions,
// falling back to BlockCypher once when the primary fails or is out of
// request budget. Satoshi amounts never leave this package.
type Client struct {
	httpClient  *http.Client
	limiter     port.Limiter
	logger      *zap.Logger
	primaryURL  string
	fallbackURL string
	token       string
}

func NewClient(cfg *config.Providers, limiter port.Limiter, log *zap.Logger) *Client {
	return &Client{
		httpClient:  &http.Client{Timeout: 30 * time.Second},
		limiter:     limiter,
		logger:      log,
		primaryURL:  strings.TrimRight(cfg.BitcoinAPIURL, "/"),
		fallbackURL: strings.TrimRight(cfg.BitcoinFallbackURL, "/"),
		token:       cfg.BlockCypherToken,
	}
}

func (c *Client) FetchTransactions(ctx context.Context, address string, since time.Time) ([]domain.Transaction, error) {
	txs, err := c.fromBlockchainInfo(ctx, address, since)
	if err == nil {
		return txs, nil
	}
	if c.fallbackURL == "" {
		return nil, fmt.Errorf("%w: blockchain.info: %s", domain.ErrProviderUnavailable, err)
	}

	c.logger.Warn("primary bitcoin provider failed, trying fallback", zap.Error(err))

	txs, err2 := c.fromBlockCypher(ctx, address, since)
	if err2 != nil {
		return nil, fmt.Errorf("%w: blockchain.info: %s; blockcypher: %s",
			domain.ErrProviderUnavailable, err, err2)
	}
	return txs, nil
}

type rawAddrResponse struct {
	Txs []struct {
		Hash        string `json:"hash"`
		Time        int64  `json:"time"`
		BlockHeight int64  `json:"block_height"`
		Out         []struct {
			Addr  string `json:"addr"`
			Value int64  `json:"value"`
		} `json:"out"`
	} `json:"txs"`
}

func (c *Client) fromBlockchainInfo(ctx context.Context, address string, since time.Time) ([]domain.Transaction, error) {
	tip, err := c.blockCount(ctx)
	if err != nil {
		return nil, err
	}

	if err := c.limiter.Acquire(ctx, ProviderBlockchainInfo); err != nil {
		return nil, err
	}

	url := fmt.Sprintf("%s/rawaddr/%s?limit=50", c.primaryURL, address)
	resp, err := c.get(ctx, url)
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode == http.StatusTooManyRequests {
		return nil, fmt.Errorf("%w: %s", domain.ErrRateLimitExceeded, ProviderBlockchainInfo)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("blockchain.info returned status %d", resp.StatusCode)
	}

	var data rawAddrResponse
	if err := json.NewDecoder(resp.Body).Decode(&data); err != nil {
		return nil, fmt.Errorf("error on response decode: %w", err)
	}

	txs := make([]domain.Transaction, 0, len(data.Txs))
	for _, raw := range data.Txs {
		observed := time.Unix(raw.Time, 0).UTC()
		if observed.Before(since) {
			continue
		}

		var sats int64
		for _, out := range raw.Out {
			if out.Addr == address {
				sats += out.Value
			}
		}
		if sats == 0 {
			continue
		}
		amount, err := decimal.New(sats, 8)
		if err != nil {
			return nil, fmt.Errorf("error normalizing amount: %w", err)
		}

		var confirmations int64
		if raw.BlockHeight > 0 && tip >= raw.BlockHeight {
			confirmations = tip - raw.BlockHeight + 1
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

func (c *Client) blockCount(ctx context.Context) (int64, error) {
	if err := c.limiter.Acquire(ctx, ProviderBlockchainInfo); err != nil {
		return 0, err
	}

	resp, err := c.get(ctx, c.primaryURL+"/q/getblockcount")
	if err != nil {
		return 0, err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode == http.StatusTooManyRequests {
		return 0, fmt.Errorf("%w: %s", domain.ErrRateLimitExceeded, ProviderBlockchainInfo)
	}
	if resp.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("blockchain.info returned status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 32))
	if err != nil {
		return 0, fmt.Errorf("error reading block count: %w", err)
	}
	height, err := strconv.ParseInt(strings.TrimSpace(string(body)), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("error parsing block count: %w", err)
	}
	return height, nil
}

type blockCypherResponse struct {
	Txs []struct {
		Hash          string    `json:"hash"`
		Received      time.Time `json:"received"`
		Confirmations int64     `json:"confirmations"`
		Outputs       []struct {
			Addresses []string `json:"addresses"`
			Value     int64    `json:"value"`
		} `json:"outputs"`
	} `json:"txs"`
}

func (c *Client) fromBlockCypher(ctx context.Context, address string, since time.Time) ([]domain.Transaction, error) {
	if err := c.limiter.Acquire(ctx, ProviderBlockCypher); err != nil {
		return nil, err
	}

	url := fmt.Sprintf("%s/addrs/%s/full?limit=50", c.fallbackURL, address)
	if c.token != "" {
		url += "&token=" + c.token
	}
	resp, err := c.get(ctx, url)
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode == http.StatusTooManyRequests {
		return nil, fmt.Errorf("%w: %s", domain.ErrRateLimitExceeded, ProviderBlockCypher)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("blockcypher returned status %d", resp.StatusCode)
	}

	var data blockCypherResponse
	if err := json.NewDecoder(resp.Body).Decode(&data); err != nil {
		return nil, fmt.Errorf("error on response decode: %w", err)
	}

	txs := make([]domain.Transaction, 0, len(data.Txs))
	for _, raw := range data.Txs {
		observed := raw.Received.UTC()
		if observed.Before(since) {
			continue
		}

		var sats int64
		for _, out := range raw.Outputs {
			for _, addr := range out.Addresses {
				if addr == address {
					sats += out.Value
				}
			}
		}
		if sats == 0 {
			continue
		}
		amount, err := decimal.New(sats, 8)
		if err != nil {
			return nil, fmt.Errorf("error normalizing amount: %w", err)
		}

		txs = append(txs, domain.Transaction{
			Ref:           raw.Hash,
			Amount:        amount,
			Confirmations: raw.Confirmations,
			ObservedAt:    observed,
		})
	}
	return txs, nil
}

func (c *Client) get(ctx context.Context, url string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("error on %s : %w", url, err)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request error %s : %w", url, err)
	}
	return resp, nil
}
