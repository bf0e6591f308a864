package domain

import (
	"time"
)

type FeeCategory string

const (
	FeeSelling      FeeCategory = "selling"
	FeeAds          FeeCategory = "ads"
	FeePostage      FeeCategory = "postage"
	FeeExtraFreight FeeCategory = "extra_freight"
	FeeOther        FeeCategory = "other"
	FeeSubscription FeeCategory = "subscription"
	FeeFulfillment  FeeCategory = "fulfillment"
)

// FeeCategories lists every category in a stable order.
var FeeCategories = []FeeCategory{
	FeeSelling, FeeAds, FeePostage, FeeExtraFreight, FeeOther, FeeSubscription, FeeFulfillment,
}

// FeeSet carries the row-level fee amounts. ExtraFreight is income, the rest
// are costs; missing columns default to zero.
type FeeSet struct {
	Selling      float64 `json:"selling"`
	Ads          float64 `json:"ads"`
	Postage      float64 `json:"postage"`
	ExtraFreight float64 `json:"extraFreight"`
	Other        float64 `json:"other"`
	Subscription float64 `json:"subscription"`
	Fulfillment  float64 `json:"fulfillment"`
}

// ByCategory returns the amounts keyed by category.
func (f FeeSet) ByCategory() map[FeeCategory]float64 {
	return map[FeeCategory]float64{
		FeeSelling:      f.Selling,
		FeeAds:          f.Ads,
		FeePostage:      f.Postage,
		FeeExtraFreight: f.ExtraFreight,
		FeeOther:        f.Other,
		FeeSubscription: f.Subscription,
		FeeFulfillment:  f.Fulfillment,
	}
}

// CostTotal sums the cost-side categories (everything but ExtraFreight).
func (f FeeSet) CostTotal() float64 {
	return f.Selling + f.Ads + f.Postage + f.Other + f.Subscription + f.Fulfillment
}

// Add accumulates another set into f.
func (f *FeeSet) Add(o FeeSet) {
	f.Selling += o.Selling
	f.Ads += o.Ads
	f.Postage += o.Postage
	f.ExtraFreight += o.ExtraFreight
	f.Other += o.Other
	f.Subscription += o.Subscription
	f.Fulfillment += o.Fulfillment
}

// SalesRow is one normalized report row as yielded by a row reader.
// SKU and OrderTime are required; everything else defaults to zero/empty.
type SalesRow struct {
	SKU         string
	OrderID     string
	OrderTime   time.Time
	Quantity    float64
	Revenue     float64
	UnitCost    float64
	Platform    string
	Manager     string
	Subcategory string
	Fees        FeeSet
}

// RefundRow is one normalized refund-report row.
type RefundRow struct {
	SKU      string
	OrderID  string
	Date     time.Time
	Amount   float64
	Quantity float64
}

// ShipmentRow is one normalized shipment-report row.
type ShipmentRow struct {
	ContainerID string
	SKU         string
	Quantity    float64
	ETA         time.Time
}

// ImportReport summarizes one import run. Kept in memory on the engine and
// exposed over the API, in the spirit of a back-office audit trail.
type ImportReport struct {
	Timestamp       time.Time      `json:"timestamp"`
	RowsRead        int            `json:"rowsRead"`
	RowsSkipped     int            `json:"rowsSkipped"`
	ResolvedExact   int            `json:"resolvedExact"`
	ResolvedLearned int            `json:"resolvedLearned"`
	ResolvedReview  int            `json:"resolvedReview"`
	NewProducts     int            `json:"newProducts"`
	CreatedProducts int            `json:"createdProducts"`
	UpdatedProducts int            `json:"updatedProducts"`
	LogsWritten     int            `json:"logsWritten"`
	NeedsReview     bool           `json:"needsReview"`
	PendingAliases  []string       `json:"pendingAliases,omitempty"`
	SkippedReasons  map[string]int `json:"skippedReasons,omitempty"`
}
