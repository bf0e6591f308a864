package usecase

import (
	"math"
	"testing"
	"time"

	"github.com/phenrril/reconcell/internal/domain"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestWeightedUnitPriceNotNaiveMean(t *testing.T) {
	cfg := domain.DefaultConfig()
	rows := []domain.SalesRow{
		{SKU: "A", OrderTime: date(2024, 5, 10), Quantity: 100, Revenue: 1000},
		{SKU: "A", OrderTime: date(2024, 5, 10), Quantity: 1, Revenue: 50},
	}
	agg := NewAggregator(cfg, rows)
	for _, r := range rows {
		agg.Add(r, "A")
	}
	res := agg.Results()
	if len(res) != 1 {
		t.Fatalf("results: got %d, want 1", len(res))
	}
	avg, ok := res[0].WeightedUnitPrice()
	if !ok {
		t.Fatal("weighted price undefined")
	}
	want := 1050.0 / 101.0 // ≈ 10.39, never the naive mean 30
	if math.Abs(avg-want) > 1e-9 {
		t.Errorf("weighted price: got %.4f, want %.4f", avg, want)
	}
}

func TestZeroQuantityBucketIsUndefinedNotZero(t *testing.T) {
	cfg := domain.DefaultConfig()
	rows := []domain.SalesRow{{SKU: "A", OrderTime: date(2024, 5, 10)}}
	agg := NewAggregator(cfg, rows)
	agg.Add(rows[0], "A")
	res := agg.Results()
	if _, ok := res[0].WeightedUnitPrice(); ok {
		t.Error("zero-quantity bucket must yield an undefined average")
	}
}

func TestPeriodIndexAnchoredToDataTime(t *testing.T) {
	// newest row is Wednesday 2024-05-15; with a Monday anchor, period 0
	// starts Monday 2024-05-13
	p0 := periodStart(date(2024, 5, 15), time.Monday)
	if !p0.Equal(date(2024, 5, 13)) {
		t.Fatalf("period start: got %s", p0)
	}
	cases := []struct {
		d    time.Time
		want int
	}{
		{date(2024, 5, 15), 0},
		{date(2024, 5, 13), 0},
		{date(2024, 5, 12), 1}, // Sunday, one day before the boundary
		{date(2024, 5, 6), 1},
		{date(2024, 5, 5), 2},
	}
	for _, tc := range cases {
		if got := periodIndex(p0, tc.d); got != tc.want {
			t.Errorf("index(%s): got %d, want %d", tc.d.Format("2006-01-02"), got, tc.want)
		}
	}
}

func TestAggregatorSplitsChannelsAndWeeks(t *testing.T) {
	cfg := domain.DefaultConfig()
	rows := []domain.SalesRow{
		{SKU: "A", OrderTime: date(2024, 5, 15), Quantity: 2, Revenue: 40, Platform: "ebay"},
		{SKU: "A", OrderTime: date(2024, 5, 15), Quantity: 3, Revenue: 60, Platform: "amazon"},
		{SKU: "A", OrderTime: date(2024, 5, 6), Quantity: 5, Revenue: 90, Platform: "ebay"},
	}
	agg := NewAggregator(cfg, rows)
	for _, r := range rows {
		agg.Add(r, "A")
	}
	res := agg.Results()[0]

	if got := res.Channels["ebay"].Quantity; got != 7 {
		t.Errorf("ebay qty: got %v, want 7", got)
	}
	if got := res.Channels["amazon"].Revenue; got != 60 {
		t.Errorf("amazon revenue: got %v, want 60", got)
	}
	if got := res.Weeks[0].Quantity; got != 5 {
		t.Errorf("week 0 qty: got %v, want 5", got)
	}
	if got := res.Weeks[1].Quantity; got != 5 {
		t.Errorf("week 1 qty: got %v, want 5", got)
	}
}

func TestAggregatorDailyEntriesCollapsePerPlatform(t *testing.T) {
	cfg := domain.DefaultConfig()
	rows := []domain.SalesRow{
		{SKU: "A", OrderTime: date(2024, 5, 10), Quantity: 2, Revenue: 20, Platform: "ebay"},
		{SKU: "A", OrderTime: date(2024, 5, 10), Quantity: 3, Revenue: 36, Platform: "ebay"},
		{SKU: "A", OrderTime: date(2024, 5, 10), Quantity: 1, Revenue: 15, Platform: "amazon"},
	}
	agg := NewAggregator(cfg, rows)
	for _, r := range rows {
		agg.Add(r, "A")
	}
	res := agg.Results()[0]
	if len(res.Entries) != 2 {
		t.Fatalf("entries: got %d, want 2 (one per platform-day)", len(res.Entries))
	}
	for _, e := range res.Entries {
		if e.Platform == "ebay" {
			if math.Abs(e.Price-56.0/5.0) > 1e-9 {
				t.Errorf("ebay weighted price: got %v", e.Price)
			}
			if e.Velocity != 5 {
				t.Errorf("ebay velocity: got %v, want 5", e.Velocity)
			}
		}
	}
}

func TestAggregatorOrderRowsKeepOrderID(t *testing.T) {
	cfg := domain.DefaultConfig()
	rows := []domain.SalesRow{
		{SKU: "A", OrderID: "ORD-1", OrderTime: date(2024, 5, 10), Quantity: 1, Revenue: 12, Platform: "ebay"},
	}
	agg := NewAggregator(cfg, rows)
	agg.Add(rows[0], "A")
	res := agg.Results()[0]
	if len(res.Entries) != 1 || res.Entries[0].OrderID != "ORD-1" {
		t.Fatalf("order entry missing: %+v", res.Entries)
	}
}

func TestGrossUpConvertsNetToGross(t *testing.T) {
	cfg := domain.DefaultConfig()
	cfg.GrossUpFactor = 1.2
	rows := []domain.SalesRow{
		{SKU: "A", OrderTime: date(2024, 5, 10), Quantity: 2, Revenue: 20, Platform: "ebay"},
	}
	agg := NewAggregator(cfg, rows)
	agg.Add(rows[0], "A")
	res := agg.Results()[0]
	if math.Abs(res.Entries[0].Price-12.0) > 1e-9 {
		t.Errorf("gross price: got %v, want 12", res.Entries[0].Price)
	}
}

func TestFeeBoundsTrackPerUnitOutliers(t *testing.T) {
	cfg := domain.DefaultConfig()
	rows := []domain.SalesRow{
		{SKU: "A", OrderTime: date(2024, 5, 10), Quantity: 2, Revenue: 20, Fees: domain.FeeSet{Selling: 4}},
		{SKU: "A", OrderTime: date(2024, 5, 11), Quantity: 1, Revenue: 10, Fees: domain.FeeSet{Selling: 9}},
	}
	agg := NewAggregator(cfg, rows)
	for _, r := range rows {
		agg.Add(r, "A")
	}
	b := agg.Results()[0].FeeBounds[domain.FeeSelling]
	if b.Min != 2 || b.Max != 9 {
		t.Errorf("selling fee bounds: got [%v, %v], want [2, 9]", b.Min, b.Max)
	}
}
