package types

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// How total actual volume was determined for a decomposition.
// EstimationModeSpendProxy marks the spend-multiple fallback used when the
// promotion has no recorded actual revenue; reporting surfaces must flag it.
const (
	EstimationModeMeasured   = "measured"
	EstimationModeSpendProxy = "spend_proxy"
)

// VolumeDecomposition is the result of decomposing one promotion against
// one baseline. At most one row exists per (baseline, promotion) pair;
// recomputation replaces the prior row.
type VolumeDecomposition struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	TenantID   uuid.UUID `gorm:"type:uuid;not null;index" json:"tenant_id"`
	BaselineID uuid.UUID `gorm:"type:uuid;not null;index:idx_baseline_promotion,unique" json:"baseline_id"`
	Baseline   *Baseline `gorm:"constraint:OnDelete:CASCADE;foreignKey:BaselineID;references:ID" json:"baseline,omitempty"`

	PromotionID uuid.UUID  `gorm:"type:uuid;not null;index:idx_baseline_promotion,unique" json:"promotion_id"`
	Promotion   *Promotion `gorm:"constraint:OnDelete:CASCADE;foreignKey:PromotionID;references:ID" json:"promotion,omitempty"`

	CustomerID *uuid.UUID `gorm:"type:uuid" json:"customer_id,omitempty"`
	ProductID  *uuid.UUID `gorm:"type:uuid" json:"product_id,omitempty"`
	StartDate  time.Time  `gorm:"column:start_date;not null" json:"start_date"`
	EndDate    time.Time  `gorm:"column:end_date;not null" json:"end_date"`

	TotalVolume       float64 `gorm:"column:total_volume;not null;default:0" json:"total_volume"`
	BaseVolume        float64 `gorm:"column:base_volume;not null;default:0" json:"base_volume"`
	IncrementalVolume float64 `gorm:"column:incremental_volume;not null;default:0" json:"incremental_volume"`

	TrueIncremental float64 `gorm:"column:true_incremental;not null;default:0" json:"true_incremental"`
	Cannibalization float64 `gorm:"column:cannibalization;not null;default:0" json:"cannibalization"`
	PantryLoading   float64 `gorm:"column:pantry_loading;not null;default:0" json:"pantry_loading"`
	PullForward     float64 `gorm:"column:pull_forward;not null;default:0" json:"pull_forward"`
	Halo            float64 `gorm:"column:halo;not null;default:0" json:"halo"`

	TradeSpend         float64 `gorm:"column:trade_spend;not null;default:0" json:"trade_spend"`
	IncrementalRevenue float64 `gorm:"column:incremental_revenue;not null;default:0" json:"incremental_revenue"`
	IncrementalProfit  float64 `gorm:"column:incremental_profit;not null;default:0" json:"incremental_profit"`
	ROI                float64 `gorm:"column:roi;not null;default:0" json:"roi"`
	LiftPct            float64 `gorm:"column:lift_pct;not null;default:0" json:"lift_pct"`
	EfficiencyScore    float64 `gorm:"column:efficiency_score;not null;default:0" json:"efficiency_score"`

	EstimationMode string `gorm:"column:estimation_mode;not null;default:'measured'" json:"estimation_mode"`

	CreatedAt time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`
}

func (VolumeDecomposition) TableName() string { return "volume_decomposition" }

func (d *VolumeDecomposition) BeforeCreate(tx *gorm.DB) error {
	if d.ID == uuid.Nil {
		d.ID = uuid.New()
	}
	return nil
}
