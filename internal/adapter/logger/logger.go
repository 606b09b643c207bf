package logger

import (
	"github.com/cryptomart/payment-core/internal/adapter/config"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// NewLogger builds the process logger. Develop mode gets a colored console
// encoder, anything else logs production JSON. Returns nil when the
// configured level does not parse.
func NewLogger(conf *config.App) *zap.Logger {
	lvl, err := zap.ParseAtomicLevel(conf.LogLevel)
	if err != nil {
		zap.L().Error("error parsing log level", zap.Error(err))
		return nil
	}

	var cfg zap.Config
	switch conf.Mode {
	case config.AppModeDevelop:
		cfg = zap.NewDevelopmentConfig()
		cfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	default:
		cfg = zap.NewProductionConfig()
	}
	cfg.Level = lvl

	return zap.Must(cfg.Build())
}
