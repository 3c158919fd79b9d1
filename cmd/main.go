package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"

	"github.com/promovista/promovista-backend/internal/app"
	"github.com/promovista/promovista-backend/internal/platform/apierr"
	"github.com/promovista/promovista-backend/internal/types"
)

func main() {
	application, err := app.New()
	if err != nil {
		fmt.Printf("init app: %v\n", err)
		os.Exit(1)
	}
	defer application.Close()

	log := application.Log
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	log.Info("baseline refresh loop starting",
		"interval", application.Config.RefreshInterval.String(),
		"staleness", application.Config.RefreshStaleness.String())

	ticker := time.NewTicker(application.Config.RefreshInterval)
	defer ticker.Stop()

	refreshStale(ctx, application)
	for {
		select {
		case <-ctx.Done():
			log.Info("shutting down")
			return
		case <-ticker.C:
			refreshStale(ctx, application)
		}
	}
}

// refreshStale recalculates every active baseline whose last calculation
// is older than the configured staleness cutoff.
func refreshStale(ctx context.Context, application *app.App) {
	log := application.Log
	cutoff := time.Now().UTC().Add(-application.Config.RefreshStaleness)

	var rows []*types.Baseline
	err := application.DB.WithContext(ctx).
		Where("status = ?", types.BaselineStatusActive).
		Where("calculated_at IS NULL OR calculated_at < ?", cutoff).
		Find(&rows).Error
	if err != nil {
		log.Error("list stale baselines", "error", err)
		return
	}
	if len(rows) == 0 {
		return
	}
	log.Info("refreshing stale baselines", "count", len(rows))

	for _, row := range rows {
		if row == nil || row.ID == uuid.Nil {
			continue
		}
		if _, err := application.Baselines.Calculate(ctx, row.TenantID, row.ID); err != nil {
			if apierr.IsConflict(err) {
				log.Debug("baseline already recalculating elsewhere", "baseline_id", row.ID)
				continue
			}
			log.Error("baseline refresh failed", "baseline_id", row.ID, "error", err)
		}
	}
}
