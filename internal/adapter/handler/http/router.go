package http

import (
	"github.com/cryptomart/payment-core/internal/adapter/config"
	"github.com/cryptomart/payment-core/internal/core/port"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type Router struct {
	*gin.Engine
}

func NewRouter(
	conf *config.HTTP,
	tokenService port.TokenService,
	db Pinger,
	orderHandler *OrderHandler,
	earningsHandler *EarningsHandler,
	logger *zap.Logger) (*Router, error) {

	router := gin.New()

	router.GET("/healthz", healthCheck(db))

	api := router.Group("/api")
	{
		orders := api.Group("/orders")
		{
			orders.POST("", orderHandler.CreateOrder)
			orders.GET("/:id", orderHandler.GetOrder)
		}

		admin := api.Group("/admin")
		{
			admin.Use(authCheck(tokenService, NewHandler(logger)))
			admin.GET("/earnings", earningsHandler.PlatformEarnings)
		}
	}

	return &Router{router}, nil
}

// Serve starts the HTTP server
func (r *Router) Serve(listenAddr string) error {
	return r.Run(listenAddr)
}
