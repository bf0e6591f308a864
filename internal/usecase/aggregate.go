package usecase

import (
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/phenrril/reconcell/internal/domain"
)

// FeeBound tracks the observed per-unit fee range of one category, used to
// flag outlier rows in review screens.
type FeeBound struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

type ChannelTotals struct {
	Quantity float64 `json:"quantity"`
	Revenue  float64 `json:"revenue"`
}

type PeriodTotals struct {
	Quantity float64 `json:"quantity"`
	Revenue  float64 `json:"revenue"`
}

// AggregationResult is the per-master-SKU output of one import: running
// totals, channel and weekly splits, fee bounds, the raw aliases seen, and
// the log entries to hand to the merger.
type AggregationResult struct {
	SKU         string
	Subcategory string
	Quantity    float64
	Revenue    float64
	CostVolume float64
	Fees       domain.FeeSet
	FeeBounds  map[domain.FeeCategory]FeeBound
	Channels   map[string]ChannelTotals
	Weeks      map[int]PeriodTotals
	Aliases    []string
	Managers   map[string]string // platform -> manager
	Entries    []domain.PriceLog
}

// WeightedUnitPrice is Σ(revenue)/Σ(qty), net. Undefined (ok=false) when no
// quantity was observed; callers fall back to the last known value rather
// than treating it as zero.
func (r *AggregationResult) WeightedUnitPrice() (float64, bool) {
	if r.Quantity <= 0 {
		return 0, false
	}
	return r.Revenue / r.Quantity, true
}

// WeightedUnitCost is Σ(unitCost×qty)/Σ(qty).
func (r *AggregationResult) WeightedUnitCost() (float64, bool) {
	if r.Quantity <= 0 {
		return 0, false
	}
	return r.CostVolume / r.Quantity, true
}

func day(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// periodStart returns the start of period 0: the last anchor weekday at or
// before the newest date seen in the import. Data time, not wall clock.
func periodStart(newest time.Time, anchor time.Weekday) time.Time {
	d := day(newest)
	off := (int(d.Weekday()) - int(anchor) + 7) % 7
	return d.AddDate(0, 0, -off)
}

// periodIndex places a date in a non-overlapping 7-day window walking
// backward from the period-0 start. Index 0 is the most recent period.
func periodIndex(p0 time.Time, t time.Time) int {
	d := day(t)
	if !d.Before(p0) {
		return 0
	}
	days := int(p0.Sub(d).Hours() / 24)
	return (days + 6) / 7
}

type dailyKey struct {
	sku      string
	date     time.Time
	platform string
}

type dailyBucket struct {
	qty      float64
	revenue  float64
	cost     float64
	fees     domain.FeeSet
	platform string
}

// Aggregator folds resolved rows into per-SKU buckets. It is transient:
// built for one import, read once, discarded after the merge.
type Aggregator struct {
	cfg     domain.EngineConfig
	p0      time.Time
	buckets map[string]*AggregationResult
	daily   map[dailyKey]*dailyBucket
	order   []string
}

// NewAggregator anchors the period grid on the newest order time present in
// the rows, so re-importing an old report reproduces the same buckets.
func NewAggregator(cfg domain.EngineConfig, rows []domain.SalesRow) *Aggregator {
	var newest time.Time
	for _, r := range rows {
		if r.OrderTime.After(newest) {
			newest = r.OrderTime
		}
	}
	if newest.IsZero() {
		newest = time.Now().UTC()
	}
	return &Aggregator{
		cfg:     cfg,
		p0:      periodStart(newest, cfg.AnchorWeekday),
		buckets: map[string]*AggregationResult{},
		daily:   map[dailyKey]*dailyBucket{},
	}
}

func (a *Aggregator) bucket(sku string) *AggregationResult {
	b, ok := a.buckets[sku]
	if !ok {
		b = &AggregationResult{
			SKU:       sku,
			FeeBounds: map[domain.FeeCategory]FeeBound{},
			Channels:  map[string]ChannelTotals{},
			Weeks:     map[int]PeriodTotals{},
			Managers:  map[string]string{},
		}
		a.buckets[sku] = b
		a.order = append(a.order, sku)
	}
	return b
}

// Add accumulates one row under its resolved master SKU.
func (a *Aggregator) Add(row domain.SalesRow, sku string) {
	b := a.bucket(sku)

	if b.Subcategory == "" {
		b.Subcategory = row.Subcategory
	}
	b.Quantity += row.Quantity
	b.Revenue += row.Revenue
	b.CostVolume += row.UnitCost * row.Quantity
	b.Fees.Add(row.Fees)

	if row.Quantity > 0 {
		for cat, amount := range row.Fees.ByCategory() {
			perUnit := amount / row.Quantity
			bound, ok := b.FeeBounds[cat]
			if !ok {
				b.FeeBounds[cat] = FeeBound{Min: perUnit, Max: perUnit}
				continue
			}
			if perUnit < bound.Min {
				bound.Min = perUnit
			}
			if perUnit > bound.Max {
				bound.Max = perUnit
			}
			b.FeeBounds[cat] = bound
		}
	}

	ch := b.Channels[row.Platform]
	ch.Quantity += row.Quantity
	ch.Revenue += row.Revenue
	b.Channels[row.Platform] = ch
	if row.Manager != "" {
		b.Managers[row.Platform] = row.Manager
	}

	idx := periodIndex(a.p0, row.OrderTime)
	wk := b.Weeks[idx]
	wk.Quantity += row.Quantity
	wk.Revenue += row.Revenue
	b.Weeks[idx] = wk

	if row.SKU != sku {
		seen := false
		for _, al := range b.Aliases {
			if al == row.SKU {
				seen = true
				break
			}
		}
		if !seen {
			b.Aliases = append(b.Aliases, row.SKU)
		}
	}

	if row.OrderID != "" {
		b.Entries = append(b.Entries, a.entry(sku, row))
		return
	}
	// orderless rows collapse into one aggregate entry per (sku, day, platform)
	k := dailyKey{sku: sku, date: day(row.OrderTime), platform: row.Platform}
	db, ok := a.daily[k]
	if !ok {
		db = &dailyBucket{platform: row.Platform}
		a.daily[k] = db
	}
	db.qty += row.Quantity
	db.revenue += row.Revenue
	db.cost += row.UnitCost * row.Quantity
	db.fees.Add(row.Fees)
}

func (a *Aggregator) entry(sku string, row domain.SalesRow) domain.PriceLog {
	price := 0.0
	if row.Quantity > 0 {
		price = row.Revenue / row.Quantity * a.cfg.GrossUp(row.Platform)
	}
	return domain.PriceLog{
		ID:       logID(sku, "order", row.OrderID),
		SKU:      sku,
		Date:     day(row.OrderTime),
		Price:    price,
		Velocity: row.Quantity,
		Margin:   unitMargin(price, row.UnitCost, row.Fees, row.Quantity),
		Platform: row.Platform,
		OrderID:  row.OrderID,
	}
}

// logID derives the entry ID from its dedup key, so re-importing the same
// report reproduces the exact same log rows.
func logID(sku, kind, key string) uuid.UUID {
	return uuid.NewSHA1(uuid.NameSpaceOID, []byte(sku+"|"+kind+"|"+key))
}

// unitMargin is the net margin percentage of one bucket:
// ((price + extraFreight) - (cogs + cost fees)) / price * 100, per unit.
func unitMargin(price, unitCost float64, fees domain.FeeSet, qty float64) float64 {
	if price <= 0 || qty <= 0 {
		return 0
	}
	income := price + fees.ExtraFreight/qty
	costs := unitCost + fees.CostTotal()/qty
	return (income - costs) / price * 100
}

// Results finalizes the orderless daily buckets into aggregate entries and
// returns one result per master SKU, in first-seen order.
func (a *Aggregator) Results() []AggregationResult {
	keys := make([]dailyKey, 0, len(a.daily))
	for k := range a.daily {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].sku != keys[j].sku {
			return keys[i].sku < keys[j].sku
		}
		if !keys[i].date.Equal(keys[j].date) {
			return keys[i].date.Before(keys[j].date)
		}
		return keys[i].platform < keys[j].platform
	})
	for _, k := range keys {
		db := a.daily[k]
		price := 0.0
		unitCost := 0.0
		if db.qty > 0 {
			price = db.revenue / db.qty * a.cfg.GrossUp(db.platform)
			unitCost = db.cost / db.qty
		}
		a.buckets[k.sku].Entries = append(a.buckets[k.sku].Entries, domain.PriceLog{
			ID:       logID(k.sku, "daily", k.date.Format("2006-01-02")+"|"+k.platform),
			SKU:      k.sku,
			Date:     k.date,
			Price:    price,
			Velocity: db.qty,
			Margin:   unitMargin(price, unitCost, db.fees, db.qty),
			Platform: k.platform,
		})
	}
	a.daily = map[dailyKey]*dailyBucket{}

	out := make([]AggregationResult, 0, len(a.order))
	for _, sku := range a.order {
		out = append(out, *a.buckets[sku])
	}
	return out
}
