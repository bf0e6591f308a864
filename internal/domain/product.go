package domain

import (
	"time"
)

type StockStatus string

const (
	StatusCritical  StockStatus = "critical"
	StatusWarning   StockStatus = "warning"
	StatusHealthy   StockStatus = "healthy"
	StatusOverstock StockStatus = "overstock"
)

type Recommendation string

const (
	RecommendIncrease Recommendation = "consider_increase"
	RecommendDecrease Recommendation = "consider_decrease"
	RecommendMaintain Recommendation = "maintain"
)

// Channel is one sales channel a product is listed on. Alias is the raw
// identifier that channel's reports use for the product.
type Channel struct {
	Platform string `json:"platform"`
	Manager  string `json:"manager"`
	Alias    string `json:"alias"`
}

// Product is a canonical catalog entry. SKU is the master identifier every
// imported row must resolve to. The derived block is owned by the metrics
// recalculation and overwritten on every pass; CostPrice, FloorPrice and
// CeilingPrice are manual overrides and never touched by it.
type Product struct {
	SKU          string    `gorm:"primaryKey;size:120" json:"sku"`
	Name         string    `gorm:"size:180" json:"name"`
	Subcategory  string    `gorm:"size:100" json:"subcategory"`
	StockLevel   int       `json:"stockLevel"`
	LeadTimeDays int       `json:"leadTimeDays"`
	CostPrice    float64   `gorm:"type:decimal(12,4)" json:"costPrice"`
	FloorPrice   float64   `gorm:"type:decimal(12,4)" json:"floorPrice"`
	CeilingPrice float64   `gorm:"type:decimal(12,4)" json:"ceilingPrice"`
	Channels     []Channel `gorm:"type:jsonb;serializer:json" json:"channels"`

	// derived
	AverageDailySales  float64        `gorm:"type:decimal(12,4)" json:"averageDailySales"`
	PreviousDailySales float64        `gorm:"type:decimal(12,4)" json:"previousDailySales"`
	ReturnRate         float64        `gorm:"type:decimal(8,2)" json:"returnRate"`
	OptimalPrice       float64        `gorm:"type:decimal(12,4)" json:"optimalPrice"`
	RunwayDays         float64        `gorm:"type:decimal(10,2)" json:"runwayDays"`
	Status             StockStatus    `gorm:"size:20;index" json:"status"`
	Recommendation     Recommendation `gorm:"size:30" json:"recommendation"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// HasChannel reports whether a (platform, alias) pair is already recorded.
func (p *Product) HasChannel(platform, alias string) bool {
	for _, c := range p.Channels {
		if c.Platform == platform && c.Alias == alias {
			return true
		}
	}
	return false
}
