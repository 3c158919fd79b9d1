package types

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// SalesObservation is one historical sales record. The baseline engine
// only reads these; they are written by the ingestion side of the
// surrounding service.
type SalesObservation struct {
	ID       uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	TenantID uuid.UUID `gorm:"type:uuid;not null;index" json:"tenant_id"`

	CustomerID *uuid.UUID `gorm:"type:uuid;index" json:"customer_id,omitempty"`
	ProductID  *uuid.UUID `gorm:"type:uuid;index" json:"product_id,omitempty"`
	CategoryID *uuid.UUID `gorm:"type:uuid" json:"category_id,omitempty"`
	BrandID    *uuid.UUID `gorm:"type:uuid" json:"brand_id,omitempty"`
	Channel    string     `gorm:"column:channel" json:"channel,omitempty"`
	Region     string     `gorm:"column:region" json:"region,omitempty"`

	Amount     float64   `gorm:"column:amount;not null;default:0" json:"amount"`
	OccurredAt time.Time `gorm:"column:occurred_at;not null;index" json:"occurred_at"`

	// Set when the sale was recorded inside a known promotional window.
	PromotionID *uuid.UUID `gorm:"type:uuid;index" json:"promotion_id,omitempty"`

	CreatedAt time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`
}

func (SalesObservation) TableName() string { return "sales_observation" }

func (o *SalesObservation) BeforeCreate(tx *gorm.DB) error {
	if o.ID == uuid.Nil {
		o.ID = uuid.New()
	}
	return nil
}
