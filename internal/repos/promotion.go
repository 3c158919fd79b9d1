package repos

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/promovista/promovista-backend/internal/pkg/dbctx"
	"github.com/promovista/promovista-backend/internal/platform/logger"
	"github.com/promovista/promovista-backend/internal/types"
)

type PromotionRepo interface {
	Create(dbc dbctx.Context, row *types.Promotion) error
	GetByID(dbc dbctx.Context, tenantID, id uuid.UUID) (*types.Promotion, error)
	// ListOverlapping returns promotions whose window intersects [from, to],
	// optionally narrowed to a customer and/or product.
	ListOverlapping(dbc dbctx.Context, tenantID uuid.UUID, customerID, productID *uuid.UUID, from, to time.Time) ([]*types.Promotion, error)
}

type promotionRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewPromotionRepo(db *gorm.DB, baseLog *logger.Logger) PromotionRepo {
	return &promotionRepo{db: db, log: baseLog.With("repo", "PromotionRepo")}
}

func (r *promotionRepo) handle(dbc dbctx.Context) *gorm.DB {
	if dbc.Tx != nil {
		return dbc.Tx.WithContext(dbc.Ctx)
	}
	return r.db.WithContext(dbc.Ctx)
}

func (r *promotionRepo) Create(dbc dbctx.Context, row *types.Promotion) error {
	if row == nil {
		return nil
	}
	return r.handle(dbc).Create(row).Error
}

func (r *promotionRepo) GetByID(dbc dbctx.Context, tenantID, id uuid.UUID) (*types.Promotion, error) {
	if id == uuid.Nil {
		return nil, nil
	}
	var row types.Promotion
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

func (r *promotionRepo) ListOverlapping(dbc dbctx.Context, tenantID uuid.UUID, customerID, productID *uuid.UUID, from, to time.Time) ([]*types.Promotion, error) {
	q := r.handle(dbc).
		Where("tenant_id = ?", tenantID).
		Where("start_date <= ? AND end_date >= ?", to, from)
	if customerID != nil && *customerID != uuid.Nil {
		q = q.Where("customer_id = ?", *customerID)
	}
	if productID != nil && *productID != uuid.Nil {
		q = q.Where("product_id = ?", *productID)
	}

	var rows []*types.Promotion
	if err := q.Order("start_date ASC").Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}
