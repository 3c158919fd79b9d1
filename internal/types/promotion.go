package types

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Promotion is the read-side view of a trade promotion consumed by the
// decomposition engine. ActualRevenue is nil until settlement data lands;
// the engine then falls back to a spend-multiple proxy.
type Promotion struct {
	ID       uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	TenantID uuid.UUID `gorm:"type:uuid;not null;index" json:"tenant_id"`

	Name       string     `gorm:"column:name;not null" json:"name"`
	CustomerID *uuid.UUID `gorm:"type:uuid;index" json:"customer_id,omitempty"`
	ProductID  *uuid.UUID `gorm:"type:uuid;index" json:"product_id,omitempty"`

	StartDate time.Time `gorm:"column:start_date;not null" json:"start_date"`
	EndDate   time.Time `gorm:"column:end_date;not null" json:"end_date"`

	ActualRevenue *float64 `gorm:"column:actual_revenue" json:"actual_revenue,omitempty"`

	Spends []PromotionSpend `gorm:"foreignKey:PromotionID;references:ID" json:"spends,omitempty"`

	CreatedAt time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`
}

func (Promotion) TableName() string { return "promotion" }

func (p *Promotion) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}
