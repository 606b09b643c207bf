package rates_test

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/cryptomart/payment-core/internal/adapter/client/rates"
	"github.com/cryptomart/payment-core/internal/adapter/config"
	"github.com/cryptomart/payment-core/internal/core/domain"
	"github.com/cryptomart/payment-core/internal/core/port/mock"
	"github.com/golang/mock/gomock"
	"github.com/govalues/decimal"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

func newClient(t *testing.T, baseURL string) *rates.Client {
	t.Helper()
	mockCtrl := gomock.NewController(t)
	limiter := mock.NewMockLimiter(mockCtrl)
	limiter.EXPECT().Acquire(gomock.Any(), rates.ProviderCoinGecko).Return(nil).AnyTimes()

	logger, _ := zap.NewProduction()
	return rates.NewClient(&config.Providers{RatesAPIURL: baseURL}, limiter, logger)
}

func TestFetchRates(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/simple/price", r.URL.Path)
		assert.Equal(t, "bitcoin", r.URL.Query().Get("ids"))
		assert.Equal(t, "usd,gbp,eur", r.URL.Query().Get("vs_currencies"))

		fmt.Fprint(w, `{"bitcoin": {"usd": 50000.25, "gbp": 39000.5, "eur": 46000}}`)
	}))
	defer server.Close()

	client := newClient(t, server.URL)

	result, err := client.FetchRates(context.Background(), domain.CurrencyBTC)
	assert.NoError(t, err)
	assert.Len(t, result, 3)
	assert.Zero(t, result["USD"].Cmp(decimal.MustParse("50000.25")))
	assert.Zero(t, result["GBP"].Cmp(decimal.MustParse("39000.5")))
	assert.Zero(t, result["EUR"].Cmp(decimal.MustParse("46000")))
}

func TestFetchRates_UnsupportedCurrency(t *testing.T) {
	client := newClient(t, "http://127.0.0.1:0")

	_, err := client.FetchRates(context.Background(), domain.Currency("DOGE"))
	assert.ErrorIs(t, err, domain.ErrUnsupportedCurrency)
}

func TestFetchRates_UpstreamDown(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	client := newClient(t, server.URL)

	_, err := client.FetchRates(context.Background(), domain.CurrencyETH)
	assert.ErrorIs(t, err, domain.ErrProviderUnavailable)
}

func TestFetchRates_RateLimited(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer server.Close()

	client := newClient(t, server.URL)

	_, err := client.FetchRates(context.Background(), domain.CurrencyXMR)
	assert.ErrorIs(t, err, domain.ErrRateLimitExceeded)
}
