package http

import (
	"errors"
	"net/http"

	"github.com/cryptomart/payment-core/internal/core/domain"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

var errorStatusMap = map[error]int{
	domain.ErrInternal:        http.StatusInternalServerError,
	domain.ErrDataNotFound:    http.StatusNotFound,
	domain.ErrConflictingData: http.StatusConflict,

	domain.ErrUnauthorized:               http.StatusUnauthorized,
	domain.ErrEmptyAuthorizationHeader:   http.StatusUnauthorized,
	domain.ErrInvalidAuthorizationHeader: http.StatusUnauthorized,
	domain.ErrInvalidAuthorizationType:   http.StatusUnauthorized,
	domain.ErrInvalidToken:               http.StatusUnauthorized,
	domain.ErrExpiredToken:               http.StatusUnauthorized,

	domain.ErrBadRequest: http.StatusBadRequest,

	domain.ErrUnsupportedCurrency: http.StatusUnprocessableEntity,
	domain.ErrInvalidAddress:      http.StatusUnprocessableEntity,
	domain.ErrMissingVendorWallet: http.StatusUnprocessableEntity,
	domain.ErrOrderBadAmount:      http.StatusUnprocessableEntity,
	domain.ErrStaleRate:           http.StatusServiceUnavailable,
	domain.ErrProviderUnavailable: http.StatusServiceUnavailable,
	domain.ErrRateLimitExceeded:   http.StatusServiceUnavailable,
}

func statusFor(err error) (int, bool) {
	if code, ok := errorStatusMap[err]; ok {
		return code, true
	}
	// Services wrap sentinels with context.
	for sentinel, code := range errorStatusMap {
		if errors.Is(err, sentinel) {
			return code, true
		}
	}
	return http.StatusInternalServerError, false
}

type Handler struct {
	logger *zap.Logger
}

func NewHandler(logger *zap.Logger) *Handler {
	return &Handler{logger: logger}
}

// handleValidationError sends an error response for some specific request validation error
func (h *Handler) handleValidationError(ctx *gin.Context, err error) {
	ctx.Status(http.StatusBadRequest)
}

// handleAbort sends an error response and aborts the request with the specified status code and error message
func (h *Handler) handleAbort(ctx *gin.Context, err error) {
	statusCode, known := statusFor(err)
	if !known {
		h.logger.Error("aborting request", zap.Error(err))
	}
	ctx.AbortWithError(statusCode, err)
}

func (h *Handler) handleError(ctx *gin.Context, err error) {
	statusCode, known := statusFor(err)
	if !known {
		h.logger.Error("error processing request", zap.Error(err))
	}
	ctx.Status(statusCode)
}

// handleSuccess sends a success response with the specified status code and optional data
func (h *Handler) handleSuccessWithStatus(ctx *gin.Context, data any, status int) {
	if data != nil {
		ctx.JSON(status, data)
	} else {
		ctx.Status(status)
	}
}

func (h *Handler) handleSuccess(ctx *gin.Context, data any) {
	h.handleSuccessWithStatus(ctx, data, http.StatusOK)
}
