package repos

import (
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/promovista/promovista-backend/internal/pkg/dbctx"
	"github.com/promovista/promovista-backend/internal/platform/logger"
	"github.com/promovista/promovista-backend/internal/types"
)

type PromotionSpendRepo interface {
	CreateMany(dbc dbctx.Context, rows []*types.PromotionSpend) error
	GetByPromotionID(dbc dbctx.Context, promotionID uuid.UUID) ([]*types.PromotionSpend, error)
	SumByPromotionID(dbc dbctx.Context, promotionID uuid.UUID) (float64, error)
}

type promotionSpendRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewPromotionSpendRepo(db *gorm.DB, baseLog *logger.Logger) PromotionSpendRepo {
	return &promotionSpendRepo{db: db, log: baseLog.With("repo", "PromotionSpendRepo")}
}

func (r *promotionSpendRepo) handle(dbc dbctx.Context) *gorm.DB {
	if dbc.Tx != nil {
		return dbc.Tx.WithContext(dbc.Ctx)
	}
	return r.db.WithContext(dbc.Ctx)
}

func (r *promotionSpendRepo) CreateMany(dbc dbctx.Context, rows []*types.PromotionSpend) error {
	if len(rows) == 0 {
		return nil
	}
	return r.handle(dbc).Create(&rows).Error
}

func (r *promotionSpendRepo) GetByPromotionID(dbc dbctx.Context, promotionID uuid.UUID) ([]*types.PromotionSpend, error) {
	var rows []*types.PromotionSpend
	if promotionID == uuid.Nil {
		return rows, nil
	}
	err := r.handle(dbc).
		Where("promotion_id = ?", promotionID).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *promotionSpendRepo) SumByPromotionID(dbc dbctx.Context, promotionID uuid.UUID) (float64, error) {
	if promotionID == uuid.Nil {
		return 0, nil
	}
	var total float64
	err := r.handle(dbc).
		Model(&types.PromotionSpend{}).
		Where("promotion_id = ?", promotionID).
		Select("COALESCE(SUM(amount), 0)").
		Scan(&total).Error
	if err != nil {
		return 0, err
	}
	return total, nil
}
