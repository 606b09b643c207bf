package http

import (
	"net/http"
	"strconv"
	"time"

	"github.com/cryptomart/payment-core/internal/core/domain"
	"github.com/cryptomart/payment-core/internal/core/service"
	"github.com/gin-gonic/gin"
	"github.com/govalues/decimal"
	"go.uber.org/zap"
)

type OrderHandler struct {
	Handler
	orders *service.Orders
}

func NewOrderHandler(orders *service.Orders, logger *zap.Logger) (*OrderHandler, error) {
	return &OrderHandler{
		Handler: *NewHandler(logger),
		orders:  orders,
	}, nil
}

type createOrderReq struct {
	Currency     string `json:"currency"`
	Amount       string `json:"amount"`
	FiatAmount   string `json:"fiat_amount"`
	FiatCode     string `json:"fiat_code"`
	VendorWallet string `json:"vendor_wallet"`
}

type orderResp struct {
	ID                    uint64    `json:"id"`
	Currency              string    `json:"currency"`
	ExpectedAmount        string    `json:"expected_amount"`
	Address               string    `json:"address"`
	PaymentRef            string    `json:"payment_ref,omitempty"`
	ObservedTxRef         string    `json:"observed_tx_ref,omitempty"`
	Confirmations         int64     `json:"confirmations"`
	RequiredConfirmations int64     `json:"required_confirmations,omitempty"`
	Status                string    `json:"status"`
	StaleRate             bool      `json:"stale_rate,omitempty"`
	CreatedAt             time.Time `json:"created_at"`
}

func orderView(o *domain.Order) orderResp {
	return orderResp{
		ID:             o.ID,
		Currency:       string(o.Currency),
		ExpectedAmount: o.ExpectedAmount.String(),
		Address:        o.Address,
		PaymentRef:     o.PaymentRef,
		ObservedTxRef:  o.ObservedTxRef,
		Confirmations:  o.Confirmations,
		Status:         string(o.Status),
		CreatedAt:      o.CreatedAt,
	}
}

func (oh *OrderHandler) CreateOrder(ctx *gin.Context) {
	var req createOrderReq
	if err := ctx.ShouldBindJSON(&req); err != nil {
		oh.handleValidationError(ctx, domain.ErrBadRequest)
		return
	}

	currency, err := domain.ParseCurrency(req.Currency)
	if err != nil {
		oh.handleError(ctx, err)
		return
	}

	input := service.CreateOrderInput{
		Currency:     currency,
		VendorWallet: req.VendorWallet,
	}

	if req.Amount != "" {
		input.Amount, err = decimal.Parse(req.Amount)
		if err != nil {
			oh.handleValidationError(ctx, domain.ErrBadRequest)
			return
		}
	} else {
		if req.FiatAmount == "" || req.FiatCode == "" {
			oh.handleValidationError(ctx, domain.ErrBadRequest)
			return
		}
		input.FiatAmount, err = decimal.Parse(req.FiatAmount)
		if err != nil {
			oh.handleValidationError(ctx, domain.ErrBadRequest)
			return
		}
		input.FiatCode = req.FiatCode
	}

	result, err := oh.orders.Create(ctx, input)
	if err != nil {
		oh.handleError(ctx, err)
		return
	}

	resp := orderView(result.Order)
	resp.RequiredConfirmations = result.RequiredConfirmations
	resp.StaleRate = result.StaleRate

	oh.handleSuccessWithStatus(ctx, resp, http.StatusCreated)
}

func (oh *OrderHandler) GetOrder(ctx *gin.Context) {
	orderID, err := strconv.ParseUint(ctx.Param("id"), 10, 64)
	if err != nil {
		oh.handleValidationError(ctx, domain.ErrBadRequest)
		return
	}

	order, err := oh.orders.Get(ctx, orderID)
	if err != nil {
		oh.handleError(ctx, err)
		return
	}

	oh.handleSuccess(ctx, orderView(order))
}
