package repos

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/promovista/promovista-backend/internal/pkg/dbctx"
	"github.com/promovista/promovista-backend/internal/platform/logger"
	"github.com/promovista/promovista-backend/internal/types"
)

type BaselinePeriodRepo interface {
	// ReplaceForBaseline deletes every period row of the baseline and
	// inserts the new set. Callers run it inside a transaction so a failed
	// calculation never leaves partial periods behind.
	ReplaceForBaseline(dbc dbctx.Context, baselineID uuid.UUID, rows []*types.BaselinePeriod) error
	GetByBaselineID(dbc dbctx.Context, baselineID uuid.UUID) ([]*types.BaselinePeriod, error)
	// GetOverlapping returns the baseline's periods whose [start_date, end_date]
	// window intersects [start, end], ordered by period number.
	GetOverlapping(dbc dbctx.Context, baselineID uuid.UUID, start, end time.Time) ([]*types.BaselinePeriod, error)
}

type baselinePeriodRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewBaselinePeriodRepo(db *gorm.DB, baseLog *logger.Logger) BaselinePeriodRepo {
	return &baselinePeriodRepo{db: db, log: baseLog.With("repo", "BaselinePeriodRepo")}
}

func (r *baselinePeriodRepo) handle(dbc dbctx.Context) *gorm.DB {
	if dbc.Tx != nil {
		return dbc.Tx.WithContext(dbc.Ctx)
	}
	return r.db.WithContext(dbc.Ctx)
}

func (r *baselinePeriodRepo) ReplaceForBaseline(dbc dbctx.Context, baselineID uuid.UUID, rows []*types.BaselinePeriod) error {
	if baselineID == uuid.Nil {
		return nil
	}
	h := r.handle(dbc)
	if err := h.Where("baseline_id = ?", baselineID).Delete(&types.BaselinePeriod{}).Error; err != nil {
		return err
	}
	if len(rows) == 0 {
		return nil
	}
	return h.Create(&rows).Error
}

func (r *baselinePeriodRepo) GetByBaselineID(dbc dbctx.Context, baselineID uuid.UUID) ([]*types.BaselinePeriod, error) {
	var rows []*types.BaselinePeriod
	if baselineID == uuid.Nil {
		return rows, nil
	}
	err := r.handle(dbc).
		Where("baseline_id = ?", baselineID).
		Order("period_number ASC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *baselinePeriodRepo) GetOverlapping(dbc dbctx.Context, baselineID uuid.UUID, start, end time.Time) ([]*types.BaselinePeriod, error) {
	var rows []*types.BaselinePeriod
	if baselineID == uuid.Nil {
		return rows, nil
	}
	err := r.handle(dbc).
		Where("baseline_id = ? AND start_date <= ? AND end_date >= ?", baselineID, end, start).
		Order("period_number ASC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}
