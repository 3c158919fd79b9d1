package app

import (
	"fmt"

	"gorm.io/gorm"

	redisclient "github.com/promovista/promovista-backend/internal/clients/redis"
	"github.com/promovista/promovista-backend/internal/db"
	"github.com/promovista/promovista-backend/internal/modules/baseline"
	"github.com/promovista/promovista-backend/internal/modules/decomposition"
	"github.com/promovista/promovista-backend/internal/platform/logger"
	"github.com/promovista/promovista-backend/internal/repos"
)

// Repos groups every repository the engine touches.
type Repos struct {
	Baselines      repos.BaselineRepo
	Periods        repos.BaselinePeriodRepo
	Observations   repos.SalesObservationRepo
	Promotions     repos.PromotionRepo
	Spends         repos.PromotionSpendRepo
	Decompositions repos.VolumeDecompositionRepo
}

type App struct {
	Log    *logger.Logger
	Config Config
	DB     *gorm.DB
	Locker redisclient.BaselineLocker
	Repos  Repos

	Baselines      baseline.Usecases
	Decompositions decomposition.Usecases
}

func New() (*App, error) {
	log, err := logger.New(envLogMode())
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}

	cfg := LoadConfig(log)

	pg, err := db.NewPostgresService(log, cfg.PostgresHost, cfg.PostgresPort, cfg.PostgresUser, cfg.PostgresPassword, cfg.PostgresName)
	if err != nil {
		return nil, err
	}
	if err := pg.AutoMigrateAll(); err != nil {
		return nil, err
	}
	gdb := pg.DB()

	var locker redisclient.BaselineLocker = redisclient.NoopLocker{}
	if cfg.RedisAddr != "" {
		locker, err = redisclient.NewBaselineLocker(log, cfg.RedisAddr, cfg.BaselineLockTTL)
		if err != nil {
			return nil, err
		}
	} else {
		log.Warn("REDIS_ADDR not set, baseline lock runs in-status-check-only mode")
	}

	r := Repos{
		Baselines:      repos.NewBaselineRepo(gdb, log),
		Periods:        repos.NewBaselinePeriodRepo(gdb, log),
		Observations:   repos.NewSalesObservationRepo(gdb, log),
		Promotions:     repos.NewPromotionRepo(gdb, log),
		Spends:         repos.NewPromotionSpendRepo(gdb, log),
		Decompositions: repos.NewVolumeDecompositionRepo(gdb, log),
	}

	return &App{
		Log:    log,
		Config: cfg,
		DB:     gdb,
		Locker: locker,
		Repos:  r,
		Baselines: baseline.New(baseline.UsecasesDeps{
			DB:           gdb,
			Log:          log,
			Locker:       locker,
			Baselines:    r.Baselines,
			Periods:      r.Periods,
			Observations: r.Observations,
			Promotions:   r.Promotions,
		}),
		Decompositions: decomposition.New(decomposition.UsecasesDeps{
			DB:             gdb,
			Log:            log,
			Rates:          cfg.Rates,
			Baselines:      r.Baselines,
			Periods:        r.Periods,
			Promotions:     r.Promotions,
			Spends:         r.Spends,
			Decompositions: r.Decompositions,
		}),
	}, nil
}

func (a *App) Close() {
	if a == nil {
		return
	}
	if a.Locker != nil {
		_ = a.Locker.Close()
	}
	if a.Log != nil {
		a.Log.Sync()
	}
}
