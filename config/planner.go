package config

import "fmt"

// PlannerConfig tunes the planning engine.
type PlannerConfig struct {
	// MaxDaysAhead bounds forward searches for the next workday.
	MaxDaysAhead int `json:"max_days_ahead"`
	// PreloadStrategy selects the plate estimator: "demand" or "time".
	PreloadStrategy string `json:"preload_strategy"`
	// AverageCycleHours feeds the time-based preload estimator.
	AverageCycleHours float64 `json:"average_cycle_hours"`
}

// SetDefaults applies sane defaults.
func (c *PlannerConfig) SetDefaults() {
	if c.MaxDaysAhead == 0 {
		c.MaxDaysAhead = 14
	}
	if c.PreloadStrategy == "" {
		c.PreloadStrategy = "demand"
	}
	if c.AverageCycleHours == 0 {
		c.AverageCycleHours = 8
	}
}

// Validate checks mandatory fields.
func (c PlannerConfig) Validate() error {
	if c.MaxDaysAhead < 1 {
		return fmt.Errorf("max_days_ahead must be positive")
	}
	if c.PreloadStrategy != "demand" && c.PreloadStrategy != "time" {
		return fmt.Errorf("unknown preload strategy %s", c.PreloadStrategy)
	}
	if c.AverageCycleHours <= 0 {
		return fmt.Errorf("average_cycle_hours must be positive")
	}
	return nil
}
