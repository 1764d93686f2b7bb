// Package logger wraps zap with service-wide defaults and a context-carried
// per-request sub-logger, following the conventions used across this codebase's
// services.
package logger

import (
	"context"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config controls logger construction.
type Config struct {
	Environment string // "production" or "development"
	LogLevel    string // "debug", "info", "warn", "error"
	ServiceName string
}

// DefaultConfig returns sane development defaults.
func DefaultConfig() Config {
	return Config{Environment: "development", LogLevel: "info", ServiceName: "uiautomation"}
}

// New builds a *zap.Logger from cfg. Falls back to zap.NewProduction on build
// failure so callers never have to special-case logger construction errors at
// boot.
func New(cfg Config) *zap.Logger {
	var zapCfg zap.Config
	if strings.EqualFold(cfg.Environment, "production") {
		zapCfg = zap.NewProductionConfig()
	} else {
		zapCfg = zap.NewDevelopmentConfig()
		zapCfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
		zapCfg.Encoding = "console"
	}
	zapCfg.Level = zap.NewAtomicLevelAt(parseLevel(cfg.LogLevel))
	if cfg.ServiceName != "" {
		zapCfg.InitialFields = map[string]interface{}{"service": cfg.ServiceName}
	}

	l, err := zapCfg.Build(zap.AddCaller(), zap.AddStacktrace(zapcore.ErrorLevel))
	if err != nil {
		l, _ = zap.NewProduction() //nolint:errcheck // fallback must not itself fail observably
	}
	return l
}

func parseLevel(s string) zapcore.Level {
	switch strings.ToLower(s) {
	case "debug":
		return zapcore.DebugLevel
	case "warn", "warning":
		return zapcore.WarnLevel
	case "error":
		return zapcore.ErrorLevel
	default:
		return zapcore.InfoLevel
	}
}

type ctxKey struct{}

// WithMethod returns a context carrying the gRPC method name for log correlation.
func WithMethod(ctx context.Context, method string) context.Context {
	return context.WithValue(ctx, ctxKey{}, method)
}

// FromContext returns a logger enriched with the method name stashed by
// WithMethod, falling back to base unchanged.
func FromContext(ctx context.Context, base *zap.Logger) *zap.Logger {
	if m, ok := ctx.Value(ctxKey{}).(string); ok && m != "" {
		return base.With(zap.String("rpc_method", m))
	}
	return base
}
