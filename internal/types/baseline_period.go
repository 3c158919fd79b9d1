package types

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// BaselinePeriod is one forecasted period of a Baseline. Rows are never
// edited individually: recalculation deletes and reinserts the full set
// inside one transaction.
type BaselinePeriod struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	BaselineID uuid.UUID `gorm:"type:uuid;not null;index:idx_baseline_period,unique" json:"baseline_id"`
	Baseline   *Baseline `gorm:"constraint:OnDelete:CASCADE;foreignKey:BaselineID;references:ID" json:"baseline,omitempty"`

	PeriodNumber int       `gorm:"column:period_number;not null;index:idx_baseline_period,unique" json:"period_number"`
	Label        string    `gorm:"column:label" json:"label"`
	StartDate    time.Time `gorm:"column:start_date;not null" json:"start_date"`
	EndDate      time.Time `gorm:"column:end_date;not null" json:"end_date"`

	BaseVolume      float64 `gorm:"column:base_volume;not null;default:0" json:"base_volume"`
	BaseRevenue     float64 `gorm:"column:base_revenue;not null;default:0" json:"base_revenue"`
	SeasonalFactor  float64 `gorm:"column:seasonal_factor;not null;default:1" json:"seasonal_factor"`
	TrendAdjustment float64 `gorm:"column:trend_adjustment;not null;default:0" json:"trend_adjustment"`

	ActualVolume      float64 `gorm:"column:actual_volume;not null;default:0" json:"actual_volume"`
	Variance          float64 `gorm:"column:variance;not null;default:0" json:"variance"`
	VariancePct       float64 `gorm:"column:variance_pct;not null;default:0" json:"variance_pct"`
	IsPromoted        bool    `gorm:"column:is_promoted;not null;default:false" json:"is_promoted"`
	IncrementalVolume float64 `gorm:"column:incremental_volume;not null;default:0" json:"incremental_volume"`

	CreatedAt time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`
}

func (BaselinePeriod) TableName() string { return "baseline_period" }

func (p *BaselinePeriod) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}
