package types

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Baseline lifecycle statuses. Approval is only reachable from an
// active or already approved baseline.
const (
	BaselineStatusDraft       = "draft"
	BaselineStatusCalculating = "calculating"
	BaselineStatusActive      = "active"
	BaselineStatusApproved    = "approved"
	BaselineStatusArchived    = "archived"
)

// Granularity values accepted by the period generator.
const (
	GranularityDaily     = "daily"
	GranularityWeekly    = "weekly"
	GranularityMonthly   = "monthly"
	GranularityQuarterly = "quarterly"
)

const CalculationMethodStatistical = "statistical"

// Baseline is a named forecasting configuration plus the computed summary
// the calculation writes back. Child BaselinePeriod rows are regenerated
// wholesale on every recalculation.
type Baseline struct {
	ID       uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	TenantID uuid.UUID `gorm:"type:uuid;not null;index" json:"tenant_id"`

	Name       string     `gorm:"column:name;not null" json:"name"`
	CustomerID *uuid.UUID `gorm:"type:uuid;index" json:"customer_id,omitempty"`
	ProductID  *uuid.UUID `gorm:"type:uuid;index" json:"product_id,omitempty"`
	CategoryID *uuid.UUID `gorm:"type:uuid" json:"category_id,omitempty"`
	BrandID    *uuid.UUID `gorm:"type:uuid" json:"brand_id,omitempty"`
	Channel    string     `gorm:"column:channel" json:"channel,omitempty"`
	Region     string     `gorm:"column:region" json:"region,omitempty"`

	CalculationMethod  string  `gorm:"column:calculation_method;not null;default:'statistical'" json:"calculation_method"`
	Granularity        string  `gorm:"column:granularity;not null;default:'weekly'" json:"granularity"`
	BaseYear           int     `gorm:"column:base_year;not null" json:"base_year"`
	PeriodCount        int     `gorm:"column:period_count;not null;default:52" json:"period_count"`
	IncludeSeasonality bool    `gorm:"column:include_seasonality;not null;default:true" json:"include_seasonality"`
	IncludeTrend       bool    `gorm:"column:include_trend;not null;default:true" json:"include_trend"`
	RemoveOutliers     bool    `gorm:"column:remove_outliers;not null;default:true" json:"remove_outliers"`
	OutlierThreshold   float64 `gorm:"column:outlier_threshold;not null;default:2.0" json:"outlier_threshold"`
	TargetConfidence   float64 `gorm:"column:target_confidence;not null;default:0.8" json:"target_confidence"`

	Status string `gorm:"column:status;not null;default:'draft';index" json:"status"`

	TotalBaseVolume  float64        `gorm:"column:total_base_volume;not null;default:0" json:"total_base_volume"`
	TotalBaseRevenue float64        `gorm:"column:total_base_revenue;not null;default:0" json:"total_base_revenue"`
	AvgPeriodVolume  float64        `gorm:"column:avg_period_volume;not null;default:0" json:"avg_period_volume"`
	SeasonalityIndex datatypes.JSON `gorm:"column:seasonality_index;type:jsonb" json:"seasonality_index"` // map[period number]index
	TrendCoefficient float64        `gorm:"column:trend_coefficient;not null;default:0" json:"trend_coefficient"`
	RSquared         float64        `gorm:"column:r_squared;not null;default:0" json:"r_squared"`
	MAPE             float64        `gorm:"column:mape;not null;default:0" json:"mape"`
	Confidence       float64        `gorm:"column:confidence;not null;default:0" json:"confidence"`

	CreatedByID  *uuid.UUID `gorm:"type:uuid" json:"created_by_id,omitempty"`
	ApprovedByID *uuid.UUID `gorm:"type:uuid" json:"approved_by_id,omitempty"`
	ApprovedAt   *time.Time `gorm:"column:approved_at" json:"approved_at,omitempty"`
	CalculatedAt *time.Time `gorm:"column:calculated_at" json:"calculated_at,omitempty"`

	Periods []BaselinePeriod `gorm:"foreignKey:BaselineID;references:ID" json:"periods,omitempty"`

	CreatedAt time.Time      `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time      `gorm:"not null" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (Baseline) TableName() string { return "baseline" }

func (b *Baseline) BeforeCreate(tx *gorm.DB) error {
	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	}
	return nil
}
