// Package config reads the server's environment-variable configuration once
// at startup into an immutable Config, matching the teacher's os.Getenv-at-boot
// style in cmd/server/main.go rather than a file-based or hot-reloaded scheme.
package config

import (
	"os"
	"strconv"
)

// Config is the fully-resolved, immutable process configuration (spec §6).
type Config struct {
	// Transport: either TCP (ListenAddress/Port) or, if UnixSocket is set, a
	// Unix domain socket at that path instead.
	ListenAddress string
	Port          string
	UnixSocket    string

	Environment string
	LogLevel    string
	ServiceName string

	MetricsPort string

	// OTelDisabled mirrors the teacher's OTEL_SDK_DISABLED gate.
	OTelDisabled bool
}

// Load reads Config from the environment, applying spec-default fallbacks.
func Load() Config {
	return Config{
		ListenAddress: getEnv("GRPC_LISTEN_ADDRESS", "127.0.0.1"),
		Port:          getEnv("GRPC_PORT", "8080"),
		UnixSocket:    os.Getenv("GRPC_UNIX_SOCKET"),

		Environment: getEnv("ENVIRONMENT", "development"),
		LogLevel:    getEnv("LOG_LEVEL", "info"),
		ServiceName: getEnv("SERVICE_NAME", "desktop-automation-service"),

		MetricsPort: getEnv("METRICS_PORT", "9090"),

		OTelDisabled: getEnvBool("OTEL_SDK_DISABLED", false),
	}
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getEnvBool(key string, def bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return def
	}
	return b
}
