package repos

import (
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/promovista/promovista-backend/internal/pkg/dbctx"
	"github.com/promovista/promovista-backend/internal/platform/logger"
	"github.com/promovista/promovista-backend/internal/types"
)

type BaselineRepo interface {
	Create(dbc dbctx.Context, row *types.Baseline) error
	GetByID(dbc dbctx.Context, tenantID, id uuid.UUID) (*types.Baseline, error)
	ListByStatus(dbc dbctx.Context, tenantID uuid.UUID, status string) ([]*types.Baseline, error)
	Update(dbc dbctx.Context, row *types.Baseline) error
	// TransitionStatus moves the baseline from one status to another and
	// reports whether the row was actually in the expected status. Used as
	// the optimistic guard against concurrent recalculation.
	TransitionStatus(dbc dbctx.Context, tenantID, id uuid.UUID, from, to string) (bool, error)
	SetStatus(dbc dbctx.Context, tenantID, id uuid.UUID, status string) error
}

type baselineRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewBaselineRepo(db *gorm.DB, baseLog *logger.Logger) BaselineRepo {
	return &baselineRepo{db: db, log: baseLog.With("repo", "BaselineRepo")}
}

func (r *baselineRepo) handle(dbc dbctx.Context) *gorm.DB {
	if dbc.Tx != nil {
		return dbc.Tx.WithContext(dbc.Ctx)
	}
	return r.db.WithContext(dbc.Ctx)
}

func (r *baselineRepo) Create(dbc dbctx.Context, row *types.Baseline) error {
	if row == nil {
		return nil
	}
	return r.handle(dbc).Create(row).Error
}

func (r *baselineRepo) GetByID(dbc dbctx.Context, tenantID, id uuid.UUID) (*types.Baseline, error) {
	if id == uuid.Nil {
		return nil, nil
	}
	var row types.Baseline
	err := r.handle(dbc).
		Where("tenant_id = ? AND id = ?", tenantID, id).
		First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &row, nil
}

func (r *baselineRepo) ListByStatus(dbc dbctx.Context, tenantID uuid.UUID, status string) ([]*types.Baseline, error) {
	var rows []*types.Baseline
	err := r.handle(dbc).
		Where("tenant_id = ? AND status = ?", tenantID, status).
		Order("created_at ASC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *baselineRepo) Update(dbc dbctx.Context, row *types.Baseline) error {
	if row == nil || row.ID == uuid.Nil {
		return nil
	}
	return r.handle(dbc).Save(row).Error
}

func (r *baselineRepo) TransitionStatus(dbc dbctx.Context, tenantID, id uuid.UUID, from, to string) (bool, error) {
	res := r.handle(dbc).
		Model(&types.Baseline{}).
		Where("tenant_id = ? AND id = ? AND status = ?", tenantID, id, from).
		Update("status", to)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *baselineRepo) SetStatus(dbc dbctx.Context, tenantID, id uuid.UUID, status string) error {
	return r.handle(dbc).
		Model(&types.Baseline{}).
		Where("tenant_id = ? AND id = ?", tenantID, id).
		Update("status", status).Error
}
