package usecase

import (
	"time"

	"github.com/phenrril/reconcell/internal/domain"
)

// RunwayDaysInfinite is the serializable stand-in for "no velocity, stock
// never runs out". JSON cannot carry Inf.
const RunwayDaysInfinite = 99999

// Recalculate derives every product's operating metrics from the logs. Pure
// over its inputs: safe to run back to back, nothing accumulates between
// passes. Windows are anchored to the newest log date (data time), so a
// restored backup reproduces the same figures it was exported with.
func Recalculate(catalog []domain.Product, priceLogs []domain.PriceLog, refundLogs []domain.RefundLog,
	shipments []domain.ShipmentLog, cfg domain.EngineConfig) (updated []domain.Product, changed int) {

	lookback := cfg.LookbackDays
	if lookback <= 0 {
		lookback = 30
	}

	var anchor time.Time
	for _, l := range priceLogs {
		if l.Date.After(anchor) {
			anchor = l.Date
		}
	}
	currentFrom := anchor.AddDate(0, 0, -lookback)
	previousFrom := anchor.AddDate(0, 0, -2*lookback)

	logsBySKU := map[string][]domain.PriceLog{}
	for _, l := range priceLogs {
		logsBySKU[l.SKU] = append(logsBySKU[l.SKU], l)
	}
	refundsBySKU := map[string][]domain.RefundLog{}
	for _, r := range refundLogs {
		refundsBySKU[r.SKU] = append(refundsBySKU[r.SKU], r)
	}
	incoming := map[string]float64{}
	if cfg.IncludeIncoming {
		incoming = domain.IncomingBySKU(shipments)
	}

	updated = make([]domain.Product, len(catalog))
	for i, p := range catalog {
		before := derivedView(p)

		var curUnits, prevUnits float64
		for _, l := range logsBySKU[p.SKU] {
			if cfg.Excluded(l.Platform) {
				continue
			}
			switch {
			case l.Date.After(currentFrom) && !l.Date.After(anchor):
				curUnits += l.Velocity
			case l.Date.After(previousFrom) && !l.Date.After(currentFrom):
				prevUnits += l.Velocity
			}
		}
		p.AverageDailySales = curUnits / float64(lookback)
		p.PreviousDailySales = prevUnits / float64(lookback)

		var refundQty float64
		for _, r := range refundsBySKU[p.SKU] {
			if r.Date.After(currentFrom) && !r.Date.After(anchor) {
				refundQty += r.Quantity
			}
		}
		// estimated units sold in the window; return rate may legitimately
		// exceed 100% when refunds lag a sales slump
		if est := p.AverageDailySales * float64(lookback); est > 0 {
			p.ReturnRate = refundQty / est * 100
		} else {
			p.ReturnRate = 0
		}

		effectiveStock := float64(p.StockLevel) + incoming[p.SKU]
		if p.AverageDailySales > 0 {
			p.RunwayDays = effectiveStock / p.AverageDailySales
		} else {
			p.RunwayDays = RunwayDaysInfinite
		}

		p.Status, p.Recommendation = classify(p.StockLevel, p.RunwayDays, float64(p.LeadTimeDays), cfg)
		p.OptimalPrice = optimalPrice(logsBySKU[p.SKU], cfg, p.OptimalPrice)

		updated[i] = p
		if derivedView(p) != before {
			changed++
		}
	}
	return updated, changed
}

// classify applies the status ladder, first match wins. Boundaries are
// strict: runway exactly at a threshold does not trip it.
func classify(stock int, runway, leadTime float64, cfg domain.EngineConfig) (domain.StockStatus, domain.Recommendation) {
	switch {
	case stock <= 0:
		return domain.StatusCritical, domain.RecommendIncrease
	case runway < leadTime*cfg.CriticalMultiplier:
		return domain.StatusCritical, domain.RecommendIncrease
	case runway > cfg.OverstockThresholdDays:
		return domain.StatusOverstock, domain.RecommendDecrease
	case runway < leadTime*cfg.WarningMultiplier:
		return domain.StatusWarning, domain.RecommendIncrease
	default:
		return domain.StatusHealthy, domain.RecommendMaintain
	}
}

// optimalPrice scans the observed history for the price with the best daily
// profit. Discrete: only prices that actually occurred are ever proposed.
// First-seen wins ties. Excluded platforms are skipped, consistent with the
// velocity and weighted-price computations.
func optimalPrice(logs []domain.PriceLog, cfg domain.EngineConfig, fallback float64) float64 {
	best := fallback
	bestProfit := -1.0
	found := false
	for _, l := range logs {
		if cfg.Excluded(l.Platform) {
			continue
		}
		profit := l.Price * (l.Margin / 100) * l.Velocity
		if !found || profit > bestProfit {
			best = l.Price
			bestProfit = profit
			found = true
		}
	}
	return best
}

// derivedView is the comparable projection of the recomputed fields, used
// for change detection so unchanged products skip the write path.
type derived struct {
	avg, prev, rr, opt, runway float64
	status                     domain.StockStatus
	rec                        domain.Recommendation
}

func derivedView(p domain.Product) derived {
	return derived{
		avg:    p.AverageDailySales,
		prev:   p.PreviousDailySales,
		rr:     p.ReturnRate,
		opt:    p.OptimalPrice,
		runway: p.RunwayDays,
		status: p.Status,
		rec:    p.Recommendation,
	}
}
