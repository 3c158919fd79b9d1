package decomposition

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/promovista/promovista-backend/internal/modules/baseline/steps"
	"github.com/promovista/promovista-backend/internal/pkg/dbctx"
	"github.com/promovista/promovista-backend/internal/platform/apierr"
	"github.com/promovista/promovista-backend/internal/platform/logger"
	"github.com/promovista/promovista-backend/internal/repos"
	"github.com/promovista/promovista-backend/internal/types"
)

type UsecasesDeps struct {
	DB  *gorm.DB
	Log *logger.Logger

	Rates Rates

	Baselines      repos.BaselineRepo
	Periods        repos.BaselinePeriodRepo
	Promotions     repos.PromotionRepo
	Spends         repos.PromotionSpendRepo
	Decompositions repos.VolumeDecompositionRepo
}

type Usecases struct {
	deps UsecasesDeps
}

func New(deps UsecasesDeps) Usecases {
	if deps.Rates == (Rates{}) {
		deps.Rates = DefaultRates()
	}
	return Usecases{deps: deps}
}

// Decompose splits a promotion's actual sales over a baseline into base
// volume plus categorized incremental components, derives ROI and an
// efficiency score, and replaces any prior decomposition for the same
// (baseline, promotion) pair. Zero denominators and missing actuals
// degrade to defined fallbacks; only missing entities error.
func (u Usecases) Decompose(ctx context.Context, tenantID, baselineID, promotionID uuid.UUID, overrides *RateOverrides) (*types.VolumeDecomposition, error) {
	log := u.deps.Log.With("usecase", "VolumeDecompose", "baseline_id", baselineID, "promotion_id", promotionID)
	dbc := dbctx.New(ctx)

	base, err := u.deps.Baselines.GetByID(dbc, tenantID, baselineID)
	if err != nil {
		return nil, fmt.Errorf("load baseline: %w", err)
	}
	if base == nil {
		return nil, apierr.NotFound(apierr.CodeBaselineNotFound, fmt.Errorf("baseline %s not found", baselineID))
	}
	promo, err := u.deps.Promotions.GetByID(dbc, tenantID, promotionID)
	if err != nil {
		return nil, fmt.Errorf("load promotion: %w", err)
	}
	if promo == nil {
		return nil, apierr.NotFound(apierr.CodePromotionNotFound, fmt.Errorf("promotion %s not found", promotionID))
	}

	overlapping, err := u.deps.Periods.GetOverlapping(dbc, baselineID, promo.StartDate, promo.EndDate)
	if err != nil {
		return nil, fmt.Errorf("load overlapping periods: %w", err)
	}
	var totalBase float64
	for _, p := range overlapping {
		totalBase += p.BaseVolume
	}

	totalSpend, err := u.deps.Spends.SumByPromotionID(dbc, promotionID)
	if err != nil {
		return nil, fmt.Errorf("sum promotion spend: %w", err)
	}

	rates := u.deps.Rates.withOverrides(overrides)

	estimationMode := types.EstimationModeMeasured
	var totalActual float64
	if promo.ActualRevenue != nil {
		totalActual = *promo.ActualRevenue
	} else {
		// No settlement data yet: estimate volume from spend. The mode
		// is recorded so reporting can flag the number as estimated.
		totalActual = totalSpend * rates.RevenueToSpendProxy
		estimationMode = types.EstimationModeSpendProxy
	}

	incremental := totalActual - totalBase
	if incremental < 0 {
		incremental = 0
	}
	liftPct := 0.0
	if totalBase > 0 {
		liftPct = incremental / totalBase * 100
	}

	cannibalization := incremental * rates.Cannibalization
	pantryLoading := incremental * rates.PantryLoading
	halo := incremental * rates.Halo
	pullForward := incremental * rates.PullForward
	trueIncremental := incremental - cannibalization - pantryLoading - pullForward + halo

	incrementalRevenue := trueIncremental
	incrementalProfit := incrementalRevenue - totalSpend
	roi := 0.0
	if totalSpend > 0 {
		roi = incrementalRevenue / totalSpend
	}

	efficiency := roi * 25
	if liftPct > 10 {
		efficiency += 20
	}
	if rates.Cannibalization < 0.10 {
		efficiency += 15
	}
	efficiency = steps.Clamp(efficiency, 0, 100)

	row := &types.VolumeDecomposition{
		TenantID:           tenantID,
		BaselineID:         baselineID,
		PromotionID:        promotionID,
		CustomerID:         promo.CustomerID,
		ProductID:          promo.ProductID,
		StartDate:          promo.StartDate,
		EndDate:            promo.EndDate,
		TotalVolume:        steps.Sanitize(totalActual),
		BaseVolume:         steps.Sanitize(totalBase),
		IncrementalVolume:  steps.Sanitize(incremental),
		TrueIncremental:    steps.Sanitize(trueIncremental),
		Cannibalization:    steps.Sanitize(cannibalization),
		PantryLoading:      steps.Sanitize(pantryLoading),
		PullForward:        steps.Sanitize(pullForward),
		Halo:               steps.Sanitize(halo),
		TradeSpend:         steps.Sanitize(totalSpend),
		IncrementalRevenue: steps.Sanitize(incrementalRevenue),
		IncrementalProfit:  steps.Sanitize(incrementalProfit),
		ROI:                steps.Sanitize(roi),
		LiftPct:            steps.Sanitize(liftPct),
		EfficiencyScore:    efficiency,
		EstimationMode:     estimationMode,
	}

	err = u.deps.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return u.deps.Decompositions.Replace(dbc.WithTx(tx), row)
	})
	if err != nil {
		return nil, fmt.Errorf("store decomposition: %w", err)
	}

	log.Info("promotion decomposed",
		"incremental_volume", row.IncrementalVolume,
		"true_incremental", row.TrueIncremental,
		"roi", row.ROI,
		"lift_pct", row.LiftPct,
		"estimation_mode", row.EstimationMode)

	return row, nil
}
