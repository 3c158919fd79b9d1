package decomposition

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Default heuristic rates applied against incremental volume, and the
// revenue proxy multiple used when a promotion has no recorded actual
// revenue. These are business heuristics, not fitted parameters; deploys
// override them via a rates file or per-request overrides.
const (
	DefaultCannibalizationRate = 0.08
	DefaultPantryLoadingRate   = 0.05
	DefaultHaloRate            = 0.03
	DefaultPullForwardRate     = 0.04

	// DefaultRevenueToSpendProxy estimates total actual volume as
	// spend multiplied by this factor. Results computed this way carry
	// EstimationModeSpendProxy and must be flagged in reporting.
	DefaultRevenueToSpendProxy = 3.0
)

// Rates configures the heuristic split of incremental volume.
type Rates struct {
	Cannibalization     float64 `yaml:"cannibalization"`
	PantryLoading       float64 `yaml:"pantry_loading"`
	Halo                float64 `yaml:"halo"`
	PullForward         float64 `yaml:"pull_forward"`
	RevenueToSpendProxy float64 `yaml:"revenue_to_spend_proxy"`
}

func DefaultRates() Rates {
	return Rates{
		Cannibalization:     DefaultCannibalizationRate,
		PantryLoading:       DefaultPantryLoadingRate,
		Halo:                DefaultHaloRate,
		PullForward:         DefaultPullForwardRate,
		RevenueToSpendProxy: DefaultRevenueToSpendProxy,
	}
}

// LoadRatesFile reads a YAML rates override file on top of the defaults.
// Zero-valued fields in the file keep their defaults.
func LoadRatesFile(path string) (Rates, error) {
	rates := DefaultRates()
	raw, err := os.ReadFile(path)
	if err != nil {
		return rates, fmt.Errorf("read rates file: %w", err)
	}
	var overrides Rates
	if err := yaml.Unmarshal(raw, &overrides); err != nil {
		return rates, fmt.Errorf("parse rates file: %w", err)
	}
	rates.apply(overrides)
	return rates, nil
}

// RateOverrides carries request-supplied overrides; nil fields keep the
// configured value.
type RateOverrides struct {
	Cannibalization *float64 `json:"cannibalization,omitempty"`
	PantryLoading   *float64 `json:"pantry_loading,omitempty"`
	Halo            *float64 `json:"halo,omitempty"`
	PullForward     *float64 `json:"pull_forward,omitempty"`
}

func (r Rates) withOverrides(o *RateOverrides) Rates {
	if o == nil {
		return r
	}
	if o.Cannibalization != nil {
		r.Cannibalization = *o.Cannibalization
	}
	if o.PantryLoading != nil {
		r.PantryLoading = *o.PantryLoading
	}
	if o.Halo != nil {
		r.Halo = *o.Halo
	}
	if o.PullForward != nil {
		r.PullForward = *o.PullForward
	}
	return r
}

func (r *Rates) apply(o Rates) {
	if o.Cannibalization > 0 {
		r.Cannibalization = o.Cannibalization
	}
	if o.PantryLoading > 0 {
		r.PantryLoading = o.PantryLoading
	}
	if o.Halo > 0 {
		r.Halo = o.Halo
	}
	if o.PullForward > 0 {
		r.PullForward = o.PullForward
	}
	if o.RevenueToSpendProxy > 0 {
		r.RevenueToSpendProxy = o.RevenueToSpendProxy
	}
}
