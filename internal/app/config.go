package app

import (
	"time"

	"github.com/promovista/promovista-backend/internal/modules/decomposition"
	"github.com/promovista/promovista-backend/internal/platform/envutil"
	"github.com/promovista/promovista-backend/internal/platform/logger"
)

type Config struct {
	LogMode string

	PostgresHost     string
	PostgresPort     string
	PostgresUser     string
	PostgresPassword string
	PostgresName     string

	// Empty RedisAddr disables the distributed lock; the engine then
	// relies on the optimistic status transition alone.
	RedisAddr       string
	BaselineLockTTL time.Duration

	// How often cmd/main re-checks active baselines for refresh and the
	// staleness cutoff that triggers one.
	RefreshInterval  time.Duration
	RefreshStaleness time.Duration

	Rates decomposition.Rates
}

// envLogMode is read before the logger exists.
func envLogMode() string {
	return envutil.String("LOG_MODE", "development")
}

func LoadConfig(log *logger.Logger) Config {
	cfg := Config{
		LogMode:          envutil.String("LOG_MODE", "development"),
		PostgresHost:     envutil.String("POSTGRES_HOST", "localhost"),
		PostgresPort:     envutil.String("POSTGRES_PORT", "5432"),
		PostgresUser:     envutil.String("POSTGRES_USER", "postgres"),
		PostgresPassword: envutil.String("POSTGRES_PASSWORD", ""),
		PostgresName:     envutil.String("POSTGRES_NAME", "promovista"),
		RedisAddr:        envutil.String("REDIS_ADDR", ""),
		BaselineLockTTL:  envutil.Duration("BASELINE_LOCK_TTL", 5*time.Minute),
		RefreshInterval:  envutil.Duration("BASELINE_REFRESH_INTERVAL", time.Hour),
		RefreshStaleness: envutil.Duration("BASELINE_REFRESH_STALENESS", 24*time.Hour),
		Rates:            decomposition.DefaultRates(),
	}

	if path := envutil.String("DECOMPOSITION_RATES_FILE", ""); path != "" {
		rates, err := decomposition.LoadRatesFile(path)
		if err != nil {
			log.Warn("failed to load decomposition rates file, using defaults", "path", path, "error", err)
		}
		cfg.Rates = rates
	}
	return cfg
}
