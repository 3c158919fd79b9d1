package repos

import (
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/promovista/promovista-backend/internal/pkg/dbctx"
	"github.com/promovista/promovista-backend/internal/platform/logger"
	"github.com/promovista/promovista-backend/internal/types"
)

type VolumeDecompositionRepo interface {
	// Replace removes any prior decomposition for the (baseline, promotion)
	// pair and inserts the new row.
	Replace(dbc dbctx.Context, row *types.VolumeDecomposition) error
	GetByPair(dbc dbctx.Context, baselineID, promotionID uuid.UUID) (*types.VolumeDecomposition, error)
	ListByBaselineID(dbc dbctx.Context, baselineID uuid.UUID) ([]*types.VolumeDecomposition, error)
}

type volumeDecompositionRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewVolumeDecompositionRepo(db *gorm.DB, baseLog *logger.Logger) VolumeDecompositionRepo {
	return &volumeDecompositionRepo{db: db, log: baseLog.With("repo", "VolumeDecompositionRepo")}
}

func (r *volumeDecompositionRepo) handle(dbc dbctx.Context) *gorm.DB {
	if dbc.Tx != nil {
		return dbc.Tx.WithContext(dbc.Ctx)
	}
	return r.db.WithContext(dbc.Ctx)
}

func (r *volumeDecompositionRepo) Replace(dbc dbctx.Context, row *types.VolumeDecomposition) error {
	if row == nil {
		return nil
	}
	h := r.handle(dbc)
	err := h.Where("baseline_id = ? AND promotion_id = ?", row.BaselineID, row.PromotionID).
		Delete(&types.VolumeDecomposition{}).Error
	if err != nil {
		return err
	}
	return h.Create(row).Error
}

func (r *volumeDecompositionRepo) GetByPair(dbc dbctx.Context, baselineID, promotionID uuid.UUID) (*types.VolumeDecomposition, error) {
	var row types.VolumeDecomposition
	err := r.handle(dbc).
		Where("baseline_id = ? AND promotion_id = ?", baselineID, promotionID).
		First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &row, nil
}

func (r *volumeDecompositionRepo) ListByBaselineID(dbc dbctx.Context, baselineID uuid.UUID) ([]*types.VolumeDecomposition, error) {
	var rows []*types.VolumeDecomposition
	if baselineID == uuid.Nil {
		return rows, nil
	}
	err := r.handle(dbc).
		Where("baseline_id = ?", baselineID).
		Order("created_at ASC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}
