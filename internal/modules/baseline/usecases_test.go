package baseline

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/promovista/promovista-backend/internal/platform/apierr"
	"github.com/promovista/promovista-backend/internal/platform/logger"
	"github.com/promovista/promovista-backend/internal/repos"
	"github.com/promovista/promovista-backend/internal/types"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	gdb, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := gdb.DB()
	if err != nil {
		t.Fatalf("sql db: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	err = gdb.AutoMigrate(
		&types.Baseline{},
		&types.BaselinePeriod{},
		&types.VolumeDecomposition{},
		&types.SalesObservation{},
		&types.Promotion{},
		&types.PromotionSpend{},
	)
	if err != nil {
		t.Fatalf("automigrate: %v", err)
	}
	return gdb
}

func newTestUsecases(t *testing.T, gdb *gorm.DB) Usecases {
	t.Helper()
	log := logger.NewNop()
	return New(UsecasesDeps{
		DB:           gdb,
		Log:          log,
		Baselines:    repos.NewBaselineRepo(gdb, log),
		Periods:      repos.NewBaselinePeriodRepo(gdb, log),
		Observations: repos.NewSalesObservationRepo(gdb, log),
		Promotions:   repos.NewPromotionRepo(gdb, log),
	})
}

func seedBaseline(t *testing.T, gdb *gorm.DB, tenantID uuid.UUID, periodCount int) *types.Baseline {
	t.Helper()
	row := &types.Baseline{
		TenantID:           tenantID,
		Name:               "test baseline",
		CalculationMethod:  types.CalculationMethodStatistical,
		Granularity:        types.GranularityWeekly,
		BaseYear:           2024,
		PeriodCount:        periodCount,
		IncludeSeasonality: true,
		IncludeTrend:       true,
		RemoveOutliers:     true,
		OutlierThreshold:   2.0,
		TargetConfidence:   0.8,
		Status:             types.BaselineStatusDraft,
	}
	if err := gdb.Create(row).Error; err != nil {
		t.Fatalf("seed baseline: %v", err)
	}
	return row
}

func seedObservation(t *testing.T, gdb *gorm.DB, tenantID uuid.UUID, amount float64, at time.Time, promoID *uuid.UUID) {
	t.Helper()
	row := &types.SalesObservation{
		TenantID:    tenantID,
		Amount:      amount,
		OccurredAt:  at,
		PromotionID: promoID,
	}
	if err := gdb.Create(row).Error; err != nil {
		t.Fatalf("seed observation: %v", err)
	}
}

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestCalculate_EndToEndWeekly(t *testing.T) {
	gdb := newTestDB(t)
	u := newTestUsecases(t, gdb)
	tenantID := uuid.New()
	row := seedBaseline(t, gdb, tenantID, 5)

	// four flat non-promoted weeks plus one promoted week at 1500
	for week := 0; week < 4; week++ {
		seedObservation(t, gdb, tenantID, 1000, day(2024, time.January, 2+7*week), nil)
	}
	promoID := uuid.New()
	seedObservation(t, gdb, tenantID, 1500, day(2024, time.January, 30), &promoID)

	out, err := u.Calculate(context.Background(), tenantID, row.ID)
	if err != nil {
		t.Fatalf("calculate: %v", err)
	}
	if len(out.Periods) != 5 {
		t.Fatalf("expected 5 periods, got %d", len(out.Periods))
	}
	for _, p := range out.Periods {
		if math.Abs(p.BaseVolume-1000) > 1e-6 {
			t.Fatalf("period %d base volume %v, want 1000", p.PeriodNumber, p.BaseVolume)
		}
	}

	promoted := out.Periods[4]
	if !promoted.IsPromoted {
		t.Fatalf("week 5 should be flagged promoted")
	}
	if math.Abs(promoted.IncrementalVolume-500) > 1e-6 {
		t.Fatalf("promoted incremental %v, want 500", promoted.IncrementalVolume)
	}
	for _, p := range out.Periods[:4] {
		if p.IsPromoted || p.IncrementalVolume != 0 {
			t.Fatalf("week %d should be non-promoted with zero incremental", p.PeriodNumber)
		}
	}

	b := out.Baseline
	if b.Status != types.BaselineStatusActive {
		t.Fatalf("expected active status, got %s", b.Status)
	}
	if math.Abs(b.TotalBaseVolume-5000) > 1e-6 {
		t.Fatalf("total base volume %v, want 5000", b.TotalBaseVolume)
	}
	if math.Abs(b.AvgPeriodVolume-1000) > 1e-6 {
		t.Fatalf("avg period volume %v, want 1000", b.AvgPeriodVolume)
	}
	if math.Abs(b.TrendCoefficient) > 1e-9 {
		t.Fatalf("flat series should have zero trend, got %v", b.TrendCoefficient)
	}

	// MAPE: only the promoted week misses, by 500/1500
	wantMAPE := 500.0 / 1500.0 / 5.0 * 100.0
	if math.Abs(b.MAPE-wantMAPE) > 1e-6 {
		t.Fatalf("MAPE %v, want %v", b.MAPE, wantMAPE)
	}
	if math.Abs(b.Confidence-(1-wantMAPE/100)) > 1e-6 {
		t.Fatalf("confidence %v", b.Confidence)
	}

	var index map[string]float64
	if err := json.Unmarshal(b.SeasonalityIndex, &index); err != nil {
		t.Fatalf("decode seasonality index: %v", err)
	}
	if index["1"] != 1.0 || index["5"] != 1.0 {
		t.Fatalf("unexpected seasonality index: %v", index)
	}
	if b.CalculatedAt == nil {
		t.Fatalf("calculated_at should be set")
	}
}

func TestCalculate_ReplacesPeriodsOnRecalculation(t *testing.T) {
	gdb := newTestDB(t)
	u := newTestUsecases(t, gdb)
	tenantID := uuid.New()
	row := seedBaseline(t, gdb, tenantID, 4)
	for week := 0; week < 4; week++ {
		seedObservation(t, gdb, tenantID, 500, day(2024, time.January, 2+7*week), nil)
	}

	if _, err := u.Calculate(context.Background(), tenantID, row.ID); err != nil {
		t.Fatalf("first calculate: %v", err)
	}
	if _, err := u.Calculate(context.Background(), tenantID, row.ID); err != nil {
		t.Fatalf("second calculate: %v", err)
	}

	var count int64
	if err := gdb.Model(&types.BaselinePeriod{}).Where("baseline_id = ?", row.ID).Count(&count).Error; err != nil {
		t.Fatalf("count periods: %v", err)
	}
	if count != 4 {
		t.Fatalf("recalculation must replace periods, found %d rows", count)
	}
}

func TestCalculate_NoObservationsStillCompletes(t *testing.T) {
	gdb := newTestDB(t)
	u := newTestUsecases(t, gdb)
	tenantID := uuid.New()
	row := seedBaseline(t, gdb, tenantID, 4)

	out, err := u.Calculate(context.Background(), tenantID, row.ID)
	if err != nil {
		t.Fatalf("calculate with no data should not error: %v", err)
	}
	if out.Baseline.TotalBaseVolume != 0 || out.Baseline.Confidence != 0 {
		t.Fatalf("empty window should produce zero volume and confidence, got %v / %v",
			out.Baseline.TotalBaseVolume, out.Baseline.Confidence)
	}
	if len(out.Periods) != 4 {
		t.Fatalf("period sequence must stay complete, got %d", len(out.Periods))
	}
}

func TestCalculate_NotFound(t *testing.T) {
	gdb := newTestDB(t)
	u := newTestUsecases(t, gdb)

	_, err := u.Calculate(context.Background(), uuid.New(), uuid.New())
	if !apierr.IsNotFound(err) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestCalculate_TenantScoped(t *testing.T) {
	gdb := newTestDB(t)
	u := newTestUsecases(t, gdb)
	row := seedBaseline(t, gdb, uuid.New(), 4)

	_, err := u.Calculate(context.Background(), uuid.New(), row.ID)
	if !apierr.IsNotFound(err) {
		t.Fatalf("other tenant must not see the baseline, got %v", err)
	}
}

func TestCalculate_RejectsConcurrentCalculation(t *testing.T) {
	gdb := newTestDB(t)
	u := newTestUsecases(t, gdb)
	tenantID := uuid.New()
	row := seedBaseline(t, gdb, tenantID, 4)

	if err := gdb.Model(row).Update("status", types.BaselineStatusCalculating).Error; err != nil {
		t.Fatalf("force calculating status: %v", err)
	}

	_, err := u.Calculate(context.Background(), tenantID, row.ID)
	if !apierr.IsConflict(err) {
		t.Fatalf("expected conflict while calculating, got %v", err)
	}
}

func TestApprove_RequiresActiveBaseline(t *testing.T) {
	gdb := newTestDB(t)
	u := newTestUsecases(t, gdb)
	tenantID := uuid.New()
	row := seedBaseline(t, gdb, tenantID, 4)
	approver := uuid.New()

	if _, err := u.Approve(context.Background(), tenantID, row.ID, approver); err == nil {
		t.Fatalf("draft baseline must not be approvable")
	}

	for week := 0; week < 4; week++ {
		seedObservation(t, gdb, tenantID, 500, day(2024, time.January, 2+7*week), nil)
	}
	if _, err := u.Calculate(context.Background(), tenantID, row.ID); err != nil {
		t.Fatalf("calculate: %v", err)
	}

	approved, err := u.Approve(context.Background(), tenantID, row.ID, approver)
	if err != nil {
		t.Fatalf("approve: %v", err)
	}
	if approved.Status != types.BaselineStatusApproved {
		t.Fatalf("expected approved, got %s", approved.Status)
	}
	if approved.ApprovedByID == nil || *approved.ApprovedByID != approver || approved.ApprovedAt == nil {
		t.Fatalf("approval audit fields not set")
	}
}

func TestArchive(t *testing.T) {
	gdb := newTestDB(t)
	u := newTestUsecases(t, gdb)
	tenantID := uuid.New()
	row := seedBaseline(t, gdb, tenantID, 4)

	archived, err := u.Archive(context.Background(), tenantID, row.ID)
	if err != nil {
		t.Fatalf("archive: %v", err)
	}
	if archived.Status != types.BaselineStatusArchived {
		t.Fatalf("expected archived, got %s", archived.Status)
	}
}
