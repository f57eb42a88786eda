// Package config loads the server's runtime configuration from environment variables.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"investhorizon_backend/internal/platform/db"
	"investhorizon_backend/internal/platform/password"
	"investhorizon_backend/internal/platform/redis"
)

const (
	defaultPort            = "5000"
	defaultWSPort          = "5001"
	defaultAllowedOrigins  = "https://investhorizon.onrender.com"
	defaultLogLevel        = "info"
	defaultConnectTimeout  = 60 * time.Second
	defaultInvestmentsTTL  = 30 * time.Second
	defaultShutdownDelay   = 10 * time.Second
	allowedOriginsEnvVar   = "ALLOWED_ORIGINS"
	connectTimeoutEnvVar   = "DB_CONNECT_TIMEOUT"
	runMigrationsEnvVar    = "RUN_MIGRATIONS"
	bcryptCostEnvVar       = "BCRYPT_COST"
	investmentsTTLEnvVar   = "INVESTMENTS_CACHE_TTL"
	shutdownDurationEnvVar = "SHUTDOWN_TIMEOUT"
)

// Config captures application runtime configuration loaded from environment variables.
type Config struct {
	Port             string
	WSPort           string
	AllowedOrigins   []string
	LogLevel         string
	DB               db.Config
	DBConnectTimeout time.Duration
	RunMigrations    bool
	BcryptCost       int
	Redis            redis.Config
	InvestmentsTTL   time.Duration
	ShutdownPeriod   time.Duration
}

// Load reads configuration values from the environment and populates a Config instance.
func Load() (Config, error) {
	cfg := Config{
		Port:             getEnv("PORT", defaultPort),
		WSPort:           getEnv("WS_PORT", defaultWSPort),
		AllowedOrigins:   splitOrigins(defaultAllowedOrigins),
		LogLevel:         strings.ToLower(getEnv("LOG_LEVEL", defaultLogLevel)),
		DB:               db.LoadConfigFromEnv(),
		DBConnectTimeout: defaultConnectTimeout,
		BcryptCost:       password.DefaultCost,
		Redis:            redis.LoadConfigFromEnv(),
		InvestmentsTTL:   defaultInvestmentsTTL,
		ShutdownPeriod:   defaultShutdownDelay,
	}

	// 明示的に空文字が設定された場合は全Originを許可する
	if v, ok := os.LookupEnv(allowedOriginsEnvVar); ok {
		cfg.AllowedOrigins = splitOrigins(v)
	}

	var err error
	if cfg.DBConnectTimeout, err = durationEnv(connectTimeoutEnvVar, cfg.DBConnectTimeout); err != nil {
		return Config{}, err
	}
	if cfg.InvestmentsTTL, err = durationEnv(investmentsTTLEnvVar, cfg.InvestmentsTTL); err != nil {
		return Config{}, err
	}
	if cfg.ShutdownPeriod, err = durationEnv(shutdownDurationEnvVar, cfg.ShutdownPeriod); err != nil {
		return Config{}, err
	}

	if v := os.Getenv(runMigrationsEnvVar); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return Config{}, fmt.Errorf("invalid %s: %w", runMigrationsEnvVar, err)
		}
		cfg.RunMigrations = b
	}

	if v := os.Getenv(bcryptCostEnvVar); v != "" {
		cost, err := strconv.Atoi(v)
		if err != nil {
			return Config{}, fmt.Errorf("invalid %s: %w", bcryptCostEnvVar, err)
		}
		cfg.BcryptCost = cost
	}

	if cfg.Port == cfg.WSPort {
		return Config{}, fmt.Errorf("PORT and WS_PORT must differ (both %s)", cfg.Port)
	}

	return cfg, nil
}

// Address returns the HTTP listen address.
func (c Config) Address() string {
	return listenAddr(c.Port)
}

// WSAddress returns the WebSocket listen address.
func (c Config) WSAddress() string {
	return listenAddr(c.WSPort)
}

func listenAddr(port string) string {
	if strings.HasPrefix(port, ":") {
		return port
	}
	return fmt.Sprintf(":%s", port)
}

func splitOrigins(v string) []string {
	var out []string
	for _, o := range strings.Split(v, ",") {
		if o = strings.TrimSpace(o); o != "" {
			out = append(out, o)
		}
	}
	return out
}

func durationEnv(key string, fallback time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return d, nil
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
