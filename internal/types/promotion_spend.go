package types

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// PromotionSpend is one trade spend line linked to a promotion.
type PromotionSpend struct {
	ID          uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	TenantID    uuid.UUID  `gorm:"type:uuid;not null;index" json:"tenant_id"`
	PromotionID uuid.UUID  `gorm:"type:uuid;not null;index" json:"promotion_id"`
	Promotion   *Promotion `gorm:"constraint:OnDelete:CASCADE;foreignKey:PromotionID;references:ID" json:"promotion,omitempty"`

	SpendType string  `gorm:"column:spend_type" json:"spend_type"`
	Amount    float64 `gorm:"column:amount;not null;default:0" json:"amount"`

	CreatedAt time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`
}

func (PromotionSpend) TableName() string { return "promotion_spend" }

func (s *PromotionSpend) BeforeCreate(tx *gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return nil
}
