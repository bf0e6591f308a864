package domain

import (
	"time"
)

// PlatformRule tunes how one platform's rows are treated. Excluded platforms
// stay in storage but are skipped by velocity, weighted-price and
// optimal-price computation. GrossUp of 0 inherits the global factor.
type PlatformRule struct {
	Excluded bool    `json:"excluded"`
	GrossUp  float64 `json:"grossUp"`
}

// EngineConfig is the persisted tuning of the whole engine. A single row in
// storage; edits trigger a full recalculation.
type EngineConfig struct {
	ID                     uint                    `gorm:"primaryKey" json:"-"`
	LookbackDays           int                     `json:"lookbackDays"`
	AnchorWeekday          time.Weekday            `json:"anchorWeekday"`
	CriticalMultiplier     float64                 `json:"criticalMultiplier"`
	WarningMultiplier      float64                 `json:"warningMultiplier"`
	OverstockThresholdDays float64                 `json:"overstockThresholdDays"`
	GrossUpFactor          float64                 `json:"grossUpFactor"`
	IncludeIncoming        bool                    `json:"includeIncoming"`
	DefaultRule            PlatformRule            `gorm:"type:jsonb;serializer:json" json:"defaultRule"`
	PlatformRules          map[string]PlatformRule `gorm:"type:jsonb;serializer:json" json:"platformRules"`
	UpdatedAt              time.Time               `json:"updatedAt"`
}

func DefaultConfig() EngineConfig {
	return EngineConfig{
		ID:                     1,
		LookbackDays:           30,
		AnchorWeekday:          time.Monday,
		CriticalMultiplier:     1.0,
		WarningMultiplier:      1.5,
		OverstockThresholdDays: 90,
		GrossUpFactor:          1.0,
		PlatformRules:          map[string]PlatformRule{},
	}
}

// Rule returns the rule for a platform, falling back to DefaultRule.
func (c EngineConfig) Rule(platform string) PlatformRule {
	if r, ok := c.PlatformRules[platform]; ok {
		return r
	}
	return c.DefaultRule
}

// Excluded reports whether a platform's logs are omitted from metrics.
func (c EngineConfig) Excluded(platform string) bool {
	return c.Rule(platform).Excluded
}

// GrossUp returns the net-to-gross factor effective for a platform.
func (c EngineConfig) GrossUp(platform string) float64 {
	if r := c.Rule(platform); r.GrossUp > 0 {
		return r.GrossUp
	}
	if c.GrossUpFactor > 0 {
		return c.GrossUpFactor
	}
	return 1.0
}
