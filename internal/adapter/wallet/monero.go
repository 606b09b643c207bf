package wallet

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/cryptomart/payment-core/internal/adapter/config"
	"github.com/cryptomart/payment-core/internal/core/domain"
	"github.com/govalues/decimal"
	"go.uber.org/zap"
)

// MoneroClient talks to a monero-wallet-rpc endpoint. It never holds keys
// itself; the wallet process does. Amounts arrive in atomic units (1e12 per
// XMR) and are normalized here.
type MoneroClient struct {
	httpClient *http.Client
	logger     *zap.Logger
	rpcURL     string
}

func NewMoneroClient(cfg *config.Providers, log *zap.Logger) (*MoneroClient, error) {
	if cfg.MoneroRPCURL == "" {
		return nil, fmt.Errorf("%w: monero wallet RPC url is not configured", domain.ErrUnsupportedCurrency)
	}
	return &MoneroClient{
		httpClient: &http.Client{Timeout: 30 * time.Second},
		logger:     log,
		rpcURL:     cfg.MoneroRPCURL,
	}, nil
}

type rpcRequest struct {
	JSONRPC string `json:"jsonrpc"`
	ID      string `json:"id"`
	Method  string `json:"method"`
	Params  any    `json:"params,omitempty"`
}

type rpcError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func (c *MoneroClient) call(ctx context.Context, method string, params any, result any) error {
	payload, err := json.Marshal(rpcRequest{JSONRPC: "2.0", ID: "0", Method: method, Params: params})
	if err != nil {
		return fmt.Errorf("error encoding rpc request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.rpcURL, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("error building rpc request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: wallet rpc: %s", domain.ErrProviderUnavailable, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: wallet rpc returned status %d", domain.ErrProviderUnavailable, resp.StatusCode)
	}

	var envelope struct {
		Result json.RawMessage `json:"result"`
		Error  *rpcError       `json:"error"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return fmt.Errorf("error on rpc response decode: %w", err)
	}
	if envelope.Error != nil {
		return fmt.Errorf("%w: wallet rpc error %d: %s",
			domain.ErrProviderUnavailable, envelope.Error.Code, envelope.Error.Message)
	}
	if result != nil {
		if err := json.Unmarshal(envelope.Result, result); err != nil {
			return fmt.Errorf("error on rpc result decode: %w", err)
		}
	}
	return nil
}

// MakeIntegratedAddress asks the wallet for an address embedding the given
// short payment id (16 hex characters).
func (c *MoneroClient) MakeIntegratedAddress(ctx context.Context, paymentID string) (string, error) {
	var result struct {
		IntegratedAddress string `json:"integrated_address"`
		PaymentID         string `json:"payment_id"`
	}
	err := c.call(ctx, "make_integrated_address",
		map[string]string{"payment_id": paymentID}, &result)
	if err != nil {
		return "", err
	}
	if result.IntegratedAddress == "" {
		return "", fmt.Errorf("%w: wallet returned empty integrated address", domain.ErrProviderUnavailable)
	}
	return result.IntegratedAddress, nil
}

// PaymentsByID returns the incoming transfers carrying the payment id,
// normalized with confirmation counts derived from the wallet height.
func (c *MoneroClient) PaymentsByID(ctx context.Context, paymentID string) ([]domain.Transaction, error) {
	var heightResult struct {
		Height int64 `json:"height"`
	}
	if err := c.call(ctx, "get_height", nil, &heightResult); err != nil {
		return nil, err
	}

	var paymentsResult struct {
		Payments []struct {
			TxHash      string `json:"tx_hash"`
			Amount      int64  `json:"amount"`
			BlockHeight int64  `json:"block_height"`
		} `json:"payments"`
	}
	err := c.call(ctx, "get_payments", map[string]string{"payment_id": paymentID}, &paymentsResult)
	if err != nil {
		return nil, err
	}

	txs := make([]domain.Transaction, 0, len(paymentsResult.Payments))
	for _, p := range paymentsResult.Payments {
		amount, err := decimal.New(p.Amount, 12)
		if err != nil {
			return nil, fmt.Errorf("error normalizing amount: %w", err)
		}

		var confirmations int64
		if p.BlockHeight > 0 && heightResult.Height >= p.BlockHeight {
			confirmations = heightResult.Height - p.BlockHeight + 1
		}

		txs = append(txs, domain.Transaction{
			Ref:           p.TxHash,
			Amount:        amount,
			Confirmations: confirmations,
			// The wallet does not report receipt time; payments are matched
			// by payment id, so the window check does not apply.
			ObservedAt: time.Time{},
		})
	}
	return txs, nil
}
