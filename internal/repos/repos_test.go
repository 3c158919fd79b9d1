package repos

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/promovista/promovista-backend/internal/pkg/dbctx"
	"github.com/promovista/promovista-backend/internal/platform/logger"
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
		&types.SalesObservation{},
		&types.Promotion{},
		&types.PromotionSpend{},
	)
	if err != nil {
		t.Fatalf("automigrate: %v", err)
	}
	return gdb
}

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestBaselineRepo_TransitionStatus(t *testing.T) {
	gdb := newTestDB(t)
	repo := NewBaselineRepo(gdb, logger.NewNop())
	dbc := dbctx.New(context.Background())
	tenantID := uuid.New()

	row := &types.Baseline{TenantID: tenantID, Name: "b", BaseYear: 2024, Status: types.BaselineStatusDraft}
	if err := repo.Create(dbc, row); err != nil {
		t.Fatalf("create: %v", err)
	}

	moved, err := repo.TransitionStatus(dbc, tenantID, row.ID, types.BaselineStatusDraft, types.BaselineStatusCalculating)
	if err != nil || !moved {
		t.Fatalf("expected transition from draft, moved=%v err=%v", moved, err)
	}

	// a second caller racing on the stale status must lose
	moved, err = repo.TransitionStatus(dbc, tenantID, row.ID, types.BaselineStatusDraft, types.BaselineStatusCalculating)
	if err != nil {
		t.Fatalf("transition: %v", err)
	}
	if moved {
		t.Fatalf("transition from stale status must not apply")
	}

	got, err := repo.GetByID(dbc, tenantID, row.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Status != types.BaselineStatusCalculating {
		t.Fatalf("status %s", got.Status)
	}
}

func TestBaselinePeriodRepo_ReplaceAndOverlap(t *testing.T) {
	gdb := newTestDB(t)
	baselines := NewBaselineRepo(gdb, logger.NewNop())
	periods := NewBaselinePeriodRepo(gdb, logger.NewNop())
	dbc := dbctx.New(context.Background())
	tenantID := uuid.New()

	base := &types.Baseline{TenantID: tenantID, Name: "b", BaseYear: 2024}
	if err := baselines.Create(dbc, base); err != nil {
		t.Fatalf("create baseline: %v", err)
	}

	mkPeriods := func(volumes ...float64) []*types.BaselinePeriod {
		rows := make([]*types.BaselinePeriod, len(volumes))
		for i, v := range volumes {
			rows[i] = &types.BaselinePeriod{
				BaselineID:   base.ID,
				PeriodNumber: i + 1,
				StartDate:    day(2024, time.January, 1+7*i),
				EndDate:      day(2024, time.January, 7+7*i),
				BaseVolume:   v,
			}
		}
		return rows
	}

	if err := periods.ReplaceForBaseline(dbc, base.ID, mkPeriods(100, 200, 300)); err != nil {
		t.Fatalf("first replace: %v", err)
	}
	if err := periods.ReplaceForBaseline(dbc, base.ID, mkPeriods(110, 210)); err != nil {
		t.Fatalf("second replace: %v", err)
	}

	all, err := periods.GetByBaselineID(dbc, base.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("replace must remove prior rows, got %d", len(all))
	}
	if all[0].BaseVolume != 110 || all[1].BaseVolume != 210 {
		t.Fatalf("unexpected volumes: %v / %v", all[0].BaseVolume, all[1].BaseVolume)
	}

	// a window touching only the second period's first day
	overlap, err := periods.GetOverlapping(dbc, base.ID, day(2024, time.January, 8), day(2024, time.January, 8))
	if err != nil {
		t.Fatalf("overlap: %v", err)
	}
	if len(overlap) != 1 || overlap[0].PeriodNumber != 2 {
		t.Fatalf("expected only period 2, got %d rows", len(overlap))
	}
}

func TestSalesObservationRepo_ScopeFilters(t *testing.T) {
	gdb := newTestDB(t)
	repo := NewSalesObservationRepo(gdb, logger.NewNop())
	dbc := dbctx.New(context.Background())
	tenantID := uuid.New()
	customerA := uuid.New()
	customerB := uuid.New()

	rows := []*types.SalesObservation{
		{TenantID: tenantID, CustomerID: &customerA, Amount: 100, OccurredAt: day(2024, time.January, 5)},
		{TenantID: tenantID, CustomerID: &customerB, Amount: 200, OccurredAt: day(2024, time.January, 6)},
		{TenantID: tenantID, CustomerID: &customerA, Amount: 300, OccurredAt: day(2024, time.March, 1)},
		{TenantID: uuid.New(), CustomerID: &customerA, Amount: 400, OccurredAt: day(2024, time.January, 7)},
	}
	if err := repo.CreateMany(dbc, rows); err != nil {
		t.Fatalf("create: %v", err)
	}

	got, err := repo.ListForScope(dbc, tenantID, ObservationScope{CustomerID: &customerA},
		day(2024, time.January, 1), day(2024, time.January, 31))
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(got) != 1 || got[0].Amount != 100 {
		t.Fatalf("scope filter failed, got %d rows", len(got))
	}
}

func TestPromotionSpendRepo_Sum(t *testing.T) {
	gdb := newTestDB(t)
	promotions := NewPromotionRepo(gdb, logger.NewNop())
	spends := NewPromotionSpendRepo(gdb, logger.NewNop())
	dbc := dbctx.New(context.Background())
	tenantID := uuid.New()

	promo := &types.Promotion{
		TenantID:  tenantID,
		Name:      "p",
		StartDate: day(2024, time.February, 1),
		EndDate:   day(2024, time.February, 14),
	}
	if err := promotions.Create(dbc, promo); err != nil {
		t.Fatalf("create promotion: %v", err)
	}
	err := spends.CreateMany(dbc, []*types.PromotionSpend{
		{TenantID: tenantID, PromotionID: promo.ID, Amount: 150},
		{TenantID: tenantID, PromotionID: promo.ID, Amount: 250},
	})
	if err != nil {
		t.Fatalf("create spends: %v", err)
	}

	total, err := spends.SumByPromotionID(dbc, promo.ID)
	if err != nil {
		t.Fatalf("sum: %v", err)
	}
	if total != 400 {
		t.Fatalf("expected 400, got %v", total)
	}

	total, err = spends.SumByPromotionID(dbc, uuid.New())
	if err != nil {
		t.Fatalf("sum empty: %v", err)
	}
	if total != 0 {
		t.Fatalf("expected 0 for unknown promotion, got %v", total)
	}
}

func TestPromotionRepo_ListOverlapping(t *testing.T) {
	gdb := newTestDB(t)
	repo := NewPromotionRepo(gdb, logger.NewNop())
	dbc := dbctx.New(context.Background())
	tenantID := uuid.New()

	mk := func(start, end time.Time) *types.Promotion {
		p := &types.Promotion{TenantID: tenantID, Name: "p", StartDate: start, EndDate: end}
		if err := repo.Create(dbc, p); err != nil {
			t.Fatalf("create: %v", err)
		}
		return p
	}
	inside := mk(day(2024, time.January, 10), day(2024, time.January, 20))
	mk(day(2024, time.March, 1), day(2024, time.March, 10))

	got, err := repo.ListOverlapping(dbc, tenantID, nil, nil, day(2024, time.January, 1), day(2024, time.January, 31))
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(got) != 1 || got[0].ID != inside.ID {
		t.Fatalf("expected only the january promotion, got %d rows", len(got))
	}
}
