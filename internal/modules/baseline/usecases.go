package baseline

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	redisclient "github.com/promovista/promovista-backend/internal/clients/redis"
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

	Locker redisclient.BaselineLocker

	Baselines    repos.BaselineRepo
	Periods      repos.BaselinePeriodRepo
	Observations repos.SalesObservationRepo
	Promotions   repos.PromotionRepo
}

type Usecases struct {
	deps UsecasesDeps
}

func New(deps UsecasesDeps) Usecases {
	if deps.Locker == nil {
		deps.Locker = redisclient.NoopLocker{}
	}
	return Usecases{deps: deps}
}

// BaselineWithPeriods is the result of a calculation: the refreshed
// baseline summary plus its regenerated periods.
type BaselineWithPeriods struct {
	Baseline *types.Baseline
	Periods  []*types.BaselinePeriod
}

// Calculate runs the full baseline pipeline: generate periods, aggregate
// history, filter outliers, fit seasonality and trend, score accuracy,
// then atomically replace the stored periods and summary. Concurrent
// calculations of the same baseline are rejected; statistical edge cases
// degrade to documented fallbacks instead of erroring.
func (u Usecases) Calculate(ctx context.Context, tenantID, baselineID uuid.UUID) (*BaselineWithPeriods, error) {
	log := u.deps.Log.With("usecase", "BaselineCalculate", "baseline_id", baselineID)
	dbc := dbctx.New(ctx)

	row, err := u.deps.Baselines.GetByID(dbc, tenantID, baselineID)
	if err != nil {
		return nil, fmt.Errorf("load baseline: %w", err)
	}
	if row == nil {
		return nil, apierr.NotFound(apierr.CodeBaselineNotFound, fmt.Errorf("baseline %s not found", baselineID))
	}

	release, acquired, err := u.deps.Locker.Acquire(ctx, baselineID)
	if err != nil {
		return nil, fmt.Errorf("baseline lock: %w", err)
	}
	if !acquired {
		return nil, apierr.Conflict(apierr.CodeBaselineCalculating, fmt.Errorf("baseline %s is already calculating", baselineID))
	}
	defer release()

	if row.Status == types.BaselineStatusCalculating {
		return nil, apierr.Conflict(apierr.CodeBaselineCalculating, fmt.Errorf("baseline %s is already calculating", baselineID))
	}
	previousStatus := row.Status
	moved, err := u.deps.Baselines.TransitionStatus(dbc, tenantID, baselineID, previousStatus, types.BaselineStatusCalculating)
	if err != nil {
		return nil, fmt.Errorf("mark baseline calculating: %w", err)
	}
	if !moved {
		return nil, apierr.Conflict(apierr.CodeBaselineCalculating, fmt.Errorf("baseline %s changed status concurrently", baselineID))
	}

	result, err := u.calculate(dbc, log, row)
	if err != nil {
		// A failed calculation must not leave the baseline stuck in
		// calculating; restore whatever it was before.
		if revertErr := u.deps.Baselines.SetStatus(dbc, tenantID, baselineID, previousStatus); revertErr != nil {
			log.Error("failed to revert baseline status after calculation error", "error", revertErr)
		}
		return nil, err
	}
	return result, nil
}

func (u Usecases) calculate(dbc dbctx.Context, log *logger.Logger, row *types.Baseline) (*BaselineWithPeriods, error) {
	start, end := calculationWindow(row)
	periods, err := steps.GeneratePeriods(start, end, row.Granularity)
	if err != nil {
		return nil, fmt.Errorf("generate periods: %w", err)
	}

	scope := repos.ObservationScope{
		CustomerID: row.CustomerID,
		ProductID:  row.ProductID,
		CategoryID: row.CategoryID,
		BrandID:    row.BrandID,
		Channel:    row.Channel,
		Region:     row.Region,
	}
	observations, err := u.deps.Observations.ListForScope(dbc, row.TenantID, scope, start, end)
	if err != nil {
		return nil, fmt.Errorf("load observations: %w", err)
	}
	promotions, err := u.deps.Promotions.ListOverlapping(dbc, row.TenantID, row.CustomerID, row.ProductID, start, end)
	if err != nil {
		return nil, fmt.Errorf("load promotions: %w", err)
	}

	buckets := steps.AggregateObservations(periods, observations, promotions)
	cleaned := steps.NonPromotedPositive(buckets)
	if row.RemoveOutliers {
		cleaned = steps.FilterOutliers(cleaned, row.OutlierThreshold)
	}

	seasonality := steps.EstimateSeasonality(cleaned, buckets, row.IncludeSeasonality, len(periods))
	trend := steps.EstimateTrend(cleaned, row.IncludeTrend)
	accuracy := steps.ScoreAccuracy(buckets, seasonality.AverageBase, seasonality.Index, trend.Slope)

	if seasonality.UsedPromotedFallback {
		log.Warn("too few non-promoted periods, averaging over all positive periods",
			"non_promoted", len(cleaned), "periods", len(periods))
	}

	now := time.Now().UTC()
	rows := make([]*types.BaselinePeriod, 0, len(periods))
	var totalBase float64
	for i, p := range periods {
		bucket := buckets[i]
		predicted := steps.Sanitize(steps.Predict(p.Number, seasonality.AverageBase, seasonality.Index, trend.Slope))
		if predicted < 0 {
			predicted = 0
		}

		variance := 0.0
		variancePct := 0.0
		if bucket.Amount > 0 {
			variance = bucket.Amount - predicted
			if predicted > 0 {
				variancePct = variance / predicted * 100
			}
		}
		incremental := 0.0
		if bucket.IsPromoted && bucket.Amount > predicted {
			incremental = bucket.Amount - predicted
		}

		totalBase += predicted
		rows = append(rows, &types.BaselinePeriod{
			BaselineID:        row.ID,
			PeriodNumber:      p.Number,
			Label:             p.Label,
			StartDate:         p.Start,
			EndDate:           p.End,
			BaseVolume:        predicted,
			BaseRevenue:       predicted,
			SeasonalFactor:    seasonality.Index[p.Number],
			TrendAdjustment:   steps.Sanitize(trend.Slope * float64(p.Number-1)),
			ActualVolume:      steps.Sanitize(bucket.Amount),
			Variance:          steps.Sanitize(variance),
			VariancePct:       steps.Sanitize(variancePct),
			IsPromoted:        bucket.IsPromoted,
			IncrementalVolume: steps.Sanitize(incremental),
		})
	}

	indexJSON, err := marshalSeasonalityIndex(seasonality.Index)
	if err != nil {
		return nil, fmt.Errorf("encode seasonality index: %w", err)
	}

	row.TotalBaseVolume = steps.Sanitize(totalBase)
	row.TotalBaseRevenue = steps.Sanitize(totalBase)
	row.AvgPeriodVolume = 0
	if len(rows) > 0 {
		row.AvgPeriodVolume = steps.Sanitize(totalBase / float64(len(rows)))
	}
	row.SeasonalityIndex = indexJSON
	row.TrendCoefficient = steps.Sanitize(trend.Slope)
	row.RSquared = steps.Sanitize(trend.RSquared)
	row.MAPE = accuracy.MAPE
	row.Confidence = accuracy.Confidence
	row.Status = types.BaselineStatusActive
	row.CalculatedAt = &now

	err = u.deps.DB.WithContext(dbc.Ctx).Transaction(func(tx *gorm.DB) error {
		txc := dbc.WithTx(tx)
		if err := u.deps.Periods.ReplaceForBaseline(txc, row.ID, rows); err != nil {
			return fmt.Errorf("replace baseline periods: %w", err)
		}
		if err := u.deps.Baselines.Update(txc, row); err != nil {
			return fmt.Errorf("update baseline summary: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	log.Info("baseline calculated",
		"periods", len(rows),
		"total_base_volume", row.TotalBaseVolume,
		"mape", row.MAPE,
		"confidence", row.Confidence)

	return &BaselineWithPeriods{Baseline: row, Periods: rows}, nil
}

// Approve marks an active (or already approved) baseline as approved.
func (u Usecases) Approve(ctx context.Context, tenantID, baselineID, approverID uuid.UUID) (*types.Baseline, error) {
	dbc := dbctx.New(ctx)
	row, err := u.deps.Baselines.GetByID(dbc, tenantID, baselineID)
	if err != nil {
		return nil, fmt.Errorf("load baseline: %w", err)
	}
	if row == nil {
		return nil, apierr.NotFound(apierr.CodeBaselineNotFound, fmt.Errorf("baseline %s not found", baselineID))
	}
	if row.Status != types.BaselineStatusActive && row.Status != types.BaselineStatusApproved {
		return nil, apierr.New(422, apierr.CodeBaselineStatusInvalid,
			fmt.Errorf("baseline %s cannot be approved from status %s", baselineID, row.Status))
	}

	now := time.Now().UTC()
	row.Status = types.BaselineStatusApproved
	row.ApprovedByID = &approverID
	row.ApprovedAt = &now
	if err := u.deps.Baselines.Update(dbc, row); err != nil {
		return nil, fmt.Errorf("approve baseline: %w", err)
	}
	return row, nil
}

// Archive retires a baseline from any status except calculating.
func (u Usecases) Archive(ctx context.Context, tenantID, baselineID uuid.UUID) (*types.Baseline, error) {
	dbc := dbctx.New(ctx)
	row, err := u.deps.Baselines.GetByID(dbc, tenantID, baselineID)
	if err != nil {
		return nil, fmt.Errorf("load baseline: %w", err)
	}
	if row == nil {
		return nil, apierr.NotFound(apierr.CodeBaselineNotFound, fmt.Errorf("baseline %s not found", baselineID))
	}
	if row.Status == types.BaselineStatusCalculating {
		return nil, apierr.Conflict(apierr.CodeBaselineCalculating, fmt.Errorf("baseline %s is calculating", baselineID))
	}

	row.Status = types.BaselineStatusArchived
	if err := u.deps.Baselines.Update(dbc, row); err != nil {
		return nil, fmt.Errorf("archive baseline: %w", err)
	}
	return row, nil
}

// calculationWindow derives the observation range from the baseline's
// base year, granularity and period count.
func calculationWindow(row *types.Baseline) (time.Time, time.Time) {
	start := time.Date(row.BaseYear, time.January, 1, 0, 0, 0, 0, time.UTC)
	count := row.PeriodCount
	if count <= 0 {
		count = 1
	}
	var end time.Time
	switch row.Granularity {
	case types.GranularityDaily:
		end = start.AddDate(0, 0, count-1)
	case types.GranularityMonthly:
		end = start.AddDate(0, count, 0).AddDate(0, 0, -1)
	case types.GranularityQuarterly:
		end = start.AddDate(0, count*3, 0).AddDate(0, 0, -1)
	default: // weekly
		end = start.AddDate(0, 0, count*7-1)
	}
	return start, end
}

func marshalSeasonalityIndex(index map[int]float64) (datatypes.JSON, error) {
	out := make(map[string]float64, len(index))
	for k, v := range index {
		out[strconv.Itoa(k)] = v
	}
	raw, err := json.Marshal(out)
	if err != nil {
		return nil, err
	}
	return datatypes.JSON(raw), nil
}
