package service

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/cryptomart/payment-core/internal/core/domain"
	"github.com/cryptomart/payment-core/internal/core/port"
	"github.com/govalues/decimal"
	"go.uber.org/zap"
)

const fiatScale = 2

// Conversion carries the result and whether it was computed from a rate past
// its freshness window. A stale rate is preferable to blocking checkout.
type Conversion struct {
	Amount    decimal.Decimal
	StaleRate bool
}

type cachedRates struct {
	rates     map[string]decimal.Decimal
	fetchedAt time.Time
}

// Converter translates between fiat and crypto amounts using a time-boxed
// rate cache. Rounding to the target scale happens only at the final step so
// no intermediate rounding bias accumulates.
type Converter struct {
	mu     sync.Mutex
	source port.RateSource
	cache  map[domain.Currency]cachedRates
	ttl    time.Duration
	logger *zap.Logger
	now    func() time.Time
}

func NewConverter(source port.RateSource, ttl time.Duration, logger *zap.Logger) *Converter {
	return &Converter{
		source: source,
		cache:  make(map[domain.Currency]cachedRates),
		ttl:    ttl,
		logger: logger,
		now:    time.Now,
	}
}

func (c *Converter) FiatToCrypto(ctx context.Context, amount decimal.Decimal,
	fiatCode string, crypto domain.Currency) (*Conversion, error) {
	if amount.Sign() <= 0 {
		return nil, domain.ErrOrderBadAmount
	}

	rate, stale, err := c.rate(ctx, crypto, fiatCode)
	if err != nil {
		return nil, err
	}

	converted, err := amount.Quo(rate)
	if err != nil {
		return nil, err
	}

	return &Conversion{
		Amount:    converted.Round(crypto.Scale()),
		StaleRate: stale,
	}, nil
}

func (c *Converter) CryptoToFiat(ctx context.Context, amount decimal.Decimal,
	crypto domain.Currency, fiatCode string) (*Conversion, error) {
	if amount.Sign() <= 0 {
		return nil, domain.ErrOrderBadAmount
	}

	rate, stale, err := c.rate(ctx, crypto, fiatCode)
	if err != nil {
		return nil, err
	}

	converted, err := amount.Mul(rate)
	if err != nil {
		return nil, err
	}

	return &Conversion{
		Amount:    converted.Round(fiatScale),
		StaleRate: stale,
	}, nil
}

// rate returns the cached rate when fresh, refreshes synchronously when not,
// and falls back to the last-known rate (tagged stale) when the refresh
// fails.
func (c *Converter) rate(ctx context.Context, crypto domain.Currency, fiatCode string) (decimal.Decimal, bool, error) {
	fiatCode = strings.ToUpper(fiatCode)

	c.mu.Lock()
	entry, ok := c.cache[crypto]
	c.mu.Unlock()

	if ok && c.now().Sub(entry.fetchedAt) < c.ttl {
		if rate, found := entry.rates[fiatCode]; found {
			return rate, false, nil
		}
	}

	fresh, err := c.source.FetchRates(ctx, crypto)
	if err != nil {
		if ok {
			if rate, found := entry.rates[fiatCode]; found {
				c.logger.Warn("rate refresh failed, reusing last-known rate",
					zap.String("crypto", string(crypto)),
					zap.String("fiat", fiatCode),
					zap.Error(err))
				return rate, true, nil
			}
		}
		return decimal.Decimal{}, false, err
	}

	c.mu.Lock()
	c.cache[crypto] = cachedRates{rates: fresh, fetchedAt: c.now()}
	c.mu.Unlock()

	rate, found := fresh[fiatCode]
	if !found {
		return decimal.Decimal{}, false, domain.ErrStaleRate
	}
	return rate, false, nil
}
