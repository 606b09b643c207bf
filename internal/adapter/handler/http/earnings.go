package http

import (
	"github.com/cryptomart/payment-core/internal/core/service"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type EarningsHandler struct {
	Handler
	ledger *service.Ledger
}

func NewEarningsHandler(ledger *service.Ledger, logger *zap.Logger) (*EarningsHandler, error) {
	return &EarningsHandler{
		Handler: *NewHandler(logger),
		ledger:  ledger,
	}, nil
}

type earningsResp struct {
	Currency string `json:"currency"`
	Total    string `json:"total"`
}

// PlatformEarnings reports accumulated commission per currency.
func (eh *EarningsHandler) PlatformEarnings(ctx *gin.Context) {
	earnings, err := eh.ledger.PlatformEarnings(ctx)
	if err != nil {
		eh.handleError(ctx, err)
		return
	}

	result := make([]earningsResp, 0, len(earnings))
	for currency, total := range earnings {
		result = append(result, earningsResp{
			Currency: string(currency),
			Total:    total.String(),
		})
	}

	eh.handleSuccess(ctx, result)
}
