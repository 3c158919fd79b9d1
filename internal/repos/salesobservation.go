package repos

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/promovista/promovista-backend/internal/pkg/dbctx"
	"github.com/promovista/promovista-backend/internal/platform/logger"
	"github.com/promovista/promovista-backend/internal/types"
)

// ObservationScope narrows the historical series a baseline is built from.
// Nil/empty fields are not filtered on.
type ObservationScope struct {
	CustomerID *uuid.UUID
	ProductID  *uuid.UUID
	CategoryID *uuid.UUID
	BrandID    *uuid.UUID
	Channel    string
	Region     string
}

type SalesObservationRepo interface {
	CreateMany(dbc dbctx.Context, rows []*types.SalesObservation) error
	// ListForScope returns observations inside [from, to] matching the scope,
	// ordered by occurrence time.
	ListForScope(dbc dbctx.Context, tenantID uuid.UUID, scope ObservationScope, from, to time.Time) ([]*types.SalesObservation, error)
}

type salesObservationRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewSalesObservationRepo(db *gorm.DB, baseLog *logger.Logger) SalesObservationRepo {
	return &salesObservationRepo{db: db, log: baseLog.With("repo", "SalesObservationRepo")}
}

func (r *salesObservationRepo) handle(dbc dbctx.Context) *gorm.DB {
	if dbc.Tx != nil {
		return dbc.Tx.WithContext(dbc.Ctx)
	}
	return r.db.WithContext(dbc.Ctx)
}

func (r *salesObservationRepo) CreateMany(dbc dbctx.Context, rows []*types.SalesObservation) error {
	if len(rows) == 0 {
		return nil
	}
	return r.handle(dbc).Create(&rows).Error
}

func (r *salesObservationRepo) ListForScope(dbc dbctx.Context, tenantID uuid.UUID, scope ObservationScope, from, to time.Time) ([]*types.SalesObservation, error) {
	q := r.handle(dbc).
		Where("tenant_id = ?", tenantID).
		Where("occurred_at >= ? AND occurred_at <= ?", from, to)

	if scope.CustomerID != nil && *scope.CustomerID != uuid.Nil {
		q = q.Where("customer_id = ?", *scope.CustomerID)
	}
	if scope.ProductID != nil && *scope.ProductID != uuid.Nil {
		q = q.Where("product_id = ?", *scope.ProductID)
	}
	if scope.CategoryID != nil && *scope.CategoryID != uuid.Nil {
		q = q.Where("category_id = ?", *scope.CategoryID)
	}
	if scope.BrandID != nil && *scope.BrandID != uuid.Nil {
		q = q.Where("brand_id = ?", *scope.BrandID)
	}
	if scope.Channel != "" {
		q = q.Where("channel = ?", scope.Channel)
	}
	if scope.Region != "" {
		q = q.Where("region = ?", scope.Region)
	}

	var rows []*types.SalesObservation
	if err := q.Order("occurred_at ASC").Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}
