package usecase

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/phenrril/reconcell/internal/domain"
)

// Engine owns the catalog, the logs, the learned aliases and the config, and
// runs the whole reconciliation pipeline: detect, review gate, aggregate,
// merge, recalculate. One import runs at a time; the review gate is the only
// suspension point and holds until every candidate is decided or the import
// is cancelled. Nothing is written before commit, so cancelling is free.
type Engine struct {
	mu        sync.Mutex
	catalog   domain.CatalogRepo
	prices    domain.PriceLogRepo
	refunds   domain.RefundLogRepo
	shipments domain.ShipmentLogRepo
	aliases   domain.AliasRepo
	config    domain.ConfigRepo
	snapshots domain.SnapshotStore

	open       *pendingImport
	lastReport *domain.ImportReport
	dirty      bool
}

type pendingImport struct {
	rows        []domain.SalesRow
	resolutions map[string]Resolution
	review      *reviewSet
	report      *domain.ImportReport
	startedAt   time.Time
}

func NewEngine(catalog domain.CatalogRepo, prices domain.PriceLogRepo, refunds domain.RefundLogRepo,
	shipments domain.ShipmentLogRepo, aliases domain.AliasRepo, config domain.ConfigRepo,
	snapshots domain.SnapshotStore) *Engine {
	return &Engine{
		catalog:   catalog,
		prices:    prices,
		refunds:   refunds,
		shipments: shipments,
		aliases:   aliases,
		config:    config,
		snapshots: snapshots,
	}
}

// ImportSales runs the detect phase over an already-parsed report. When
// heuristic matches need confirmation the import parks at the review gate
// and the report comes back with NeedsReview set; otherwise it commits.
func (e *Engine) ImportSales(ctx context.Context, rows []domain.SalesRow, skipped int) (*domain.ImportReport, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.open != nil {
		return nil, domain.ErrImportOpen
	}

	catalog, err := e.catalogSet(ctx)
	if err != nil {
		return nil, err
	}
	aliases, err := e.aliases.All(ctx)
	if err != nil {
		return nil, err
	}

	report := &domain.ImportReport{
		Timestamp:   time.Now().UTC(),
		RowsRead:    len(rows) + skipped,
		RowsSkipped: skipped,
	}

	resolutions := map[string]Resolution{}
	rowsPerSKU := map[string]int{}
	for _, r := range rows {
		rowsPerSKU[r.SKU]++
	}
	review := newReviewSet()
	for raw, n := range rowsPerSKU {
		res := Resolve(raw, catalog, aliases)
		resolutions[raw] = res
		switch res.Status {
		case ResolveExact:
			report.ResolvedExact += n
		case ResolveLearned:
			report.ResolvedLearned += n
		case ResolveHeuristic:
			report.ResolvedReview += n
			review.add(raw, res.SKU, n)
		case ResolveUnresolved:
			report.NewProducts += n
		}
	}

	if review.pendingCount() > 0 {
		report.NeedsReview = true
		for _, c := range review.candidates() {
			report.PendingAliases = append(report.PendingAliases, c.ImportSKU)
		}
		e.open = &pendingImport{
			rows:        rows,
			resolutions: resolutions,
			review:      review,
			report:      report,
			startedAt:   time.Now().UTC(),
		}
		log.Info().Int("candidates", review.pendingCount()).Msg("import parked for mapping review")
		return report, nil
	}
	return e.commitLocked(ctx, rows, resolutions, review, report)
}

// PendingCandidates lists the open import's candidates, review order.
func (e *Engine) PendingCandidates() ([]MappingCandidate, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.open == nil {
		return nil, domain.ErrNoOpenImport
	}
	return e.open.review.candidates(), nil
}

// Decide records one human decision. When the last pending candidate is
// decided, the parked import commits and the final report is returned;
// until then the returned report keeps NeedsReview set.
func (e *Engine) Decide(ctx context.Context, importSKU string, approve bool) (*domain.ImportReport, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.open == nil {
		return nil, domain.ErrNoOpenImport
	}
	if err := e.open.review.decide(importSKU, approve); err != nil {
		return nil, err
	}
	if e.open.review.pendingCount() > 0 {
		return e.open.report, nil
	}
	imp := e.open
	e.open = nil
	return e.commitLocked(ctx, imp.rows, imp.resolutions, imp.review, imp.report)
}

// CancelImport drops the parked import. Prior state is untouched because
// nothing is persisted before commit.
func (e *Engine) CancelImport() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.open == nil {
		return domain.ErrNoOpenImport
	}
	e.open = nil
	log.Info().Msg("import cancelled before commit")
	return nil
}

func (e *Engine) commitLocked(ctx context.Context, rows []domain.SalesRow, resolutions map[string]Resolution,
	review *reviewSet, report *domain.ImportReport) (*domain.ImportReport, error) {

	cfg, err := e.config.Get(ctx)
	if err != nil {
		return nil, err
	}

	canonicalFor := func(raw string) string {
		res := resolutions[raw]
		switch res.Status {
		case ResolveExact, ResolveLearned:
			return res.SKU
		case ResolveHeuristic:
			if sku, ok := review.canonical(raw); ok {
				return sku
			}
			return raw
		default:
			return raw
		}
	}

	agg := NewAggregator(cfg, rows)
	for _, r := range rows {
		agg.Add(r, canonicalFor(r.SKU))
	}
	results := agg.Results()

	var entries []domain.PriceLog
	for i := range results {
		if err := e.upsertProduct(ctx, &results[i], report); err != nil {
			return nil, err
		}
		entries = append(entries, results[i].Entries...)
	}

	existing, err := e.prices.All(ctx)
	if err != nil {
		return nil, err
	}
	merged := MergePriceLogs(existing, entries)
	if err := e.prices.ReplaceAll(ctx, merged); err != nil {
		return nil, err
	}
	report.LogsWritten = len(entries)

	for _, c := range review.approved() {
		a := domain.LearnedAlias{Alias: domain.NormalizeAlias(c.ImportSKU), SKU: c.Proposed}
		if err := e.aliases.Save(ctx, a); err != nil {
			return nil, fmt.Errorf("learn alias %s: %w", c.ImportSKU, err)
		}
	}

	e.dirty = true
	if err := e.recalcLocked(ctx, cfg); err != nil {
		return nil, err
	}

	report.NeedsReview = false
	report.PendingAliases = nil
	e.lastReport = report
	log.Info().
		Int("rows", report.RowsRead).
		Int("skipped", report.RowsSkipped).
		Int("logs", report.LogsWritten).
		Int("created", report.CreatedProducts).
		Int("updated", report.UpdatedProducts).
		Msg("import merged")
	return report, nil
}

// upsertProduct folds one aggregation result into the catalog: creates the
// product when the SKU is new, refreshes channel info, and fills cost only
// when no manual cost exists.
func (e *Engine) upsertProduct(ctx context.Context, res *AggregationResult, report *domain.ImportReport) error {
	p, err := e.catalog.Get(ctx, res.SKU)
	if err != nil && err != domain.ErrNotFound {
		return err
	}
	if p == nil {
		p = &domain.Product{SKU: res.SKU, Name: res.SKU, Subcategory: res.Subcategory}
	}
	if p.Subcategory == "" {
		p.Subcategory = res.Subcategory
	}
	for platform := range res.Channels {
		aliasSeen := res.SKU
		for _, al := range res.Aliases {
			aliasSeen = al
			break
		}
		if !p.HasChannel(platform, aliasSeen) {
			p.Channels = append(p.Channels, domain.Channel{
				Platform: platform,
				Manager:  res.Managers[platform],
				Alias:    aliasSeen,
			})
		}
	}
	if p.CostPrice == 0 {
		if c, ok := res.WeightedUnitCost(); ok {
			p.CostPrice = c
		}
	}
	created, err := e.catalog.Upsert(ctx, p)
	if err != nil {
		return err
	}
	if created {
		report.CreatedProducts++
	} else {
		report.UpdatedProducts++
	}
	return nil
}

// ImportRefunds merges a refund report. Deterministic IDs make this
// idempotent without a review gate; unresolved SKUs stay as reported.
func (e *Engine) ImportRefunds(ctx context.Context, rows []domain.RefundRow, skipped int) (*domain.ImportReport, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	catalog, err := e.catalogSet(ctx)
	if err != nil {
		return nil, err
	}
	aliases, err := e.aliases.All(ctx)
	if err != nil {
		return nil, err
	}

	incoming := make([]domain.RefundLog, 0, len(rows))
	for _, r := range rows {
		sku := r.SKU
		if res := Resolve(r.SKU, catalog, aliases); res.Status == ResolveExact || res.Status == ResolveLearned {
			sku = res.SKU
		}
		incoming = append(incoming, domain.RefundLog{
			ID:       domain.RefundLogID(sku, r.Date, r.OrderID, r.Amount),
			SKU:      sku,
			Date:     day(r.Date),
			Amount:   r.Amount,
			Quantity: r.Quantity,
		})
	}

	existing, err := e.refunds.All(ctx)
	if err != nil {
		return nil, err
	}
	if err := e.refunds.ReplaceAll(ctx, MergeRefundLogs(existing, incoming)); err != nil {
		return nil, err
	}

	cfg, err := e.config.Get(ctx)
	if err != nil {
		return nil, err
	}
	e.dirty = true
	if err := e.recalcLocked(ctx, cfg); err != nil {
		return nil, err
	}

	report := &domain.ImportReport{
		Timestamp:   time.Now().UTC(),
		RowsRead:    len(rows) + skipped,
		RowsSkipped: skipped,
		LogsWritten: len(incoming),
	}
	e.lastReport = report
	log.Info().Int("refunds", len(incoming)).Int("skipped", skipped).Msg("refund report merged")
	return report, nil
}

// ImportShipments merges a shipment report, one log per container.
func (e *Engine) ImportShipments(ctx context.Context, rows []domain.ShipmentRow, skipped int) (*domain.ImportReport, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	byContainer := map[string]*domain.ShipmentLog{}
	var order []string
	for _, r := range rows {
		s, ok := byContainer[r.ContainerID]
		if !ok {
			s = &domain.ShipmentLog{ContainerID: r.ContainerID, ETA: r.ETA}
			byContainer[r.ContainerID] = s
			order = append(order, r.ContainerID)
		}
		if r.ETA.After(s.ETA) {
			s.ETA = r.ETA
		}
		s.Details = append(s.Details, domain.ShipmentDetail{SKU: r.SKU, Quantity: r.Quantity})
	}
	incoming := make([]domain.ShipmentLog, 0, len(order))
	for _, id := range order {
		incoming = append(incoming, *byContainer[id])
	}

	existing, err := e.shipments.All(ctx)
	if err != nil {
		return nil, err
	}
	if err := e.shipments.ReplaceAll(ctx, MergeShipmentLogs(existing, incoming)); err != nil {
		return nil, err
	}

	cfg, err := e.config.Get(ctx)
	if err != nil {
		return nil, err
	}
	e.dirty = true
	if err := e.recalcLocked(ctx, cfg); err != nil {
		return nil, err
	}

	report := &domain.ImportReport{
		Timestamp:   time.Now().UTC(),
		RowsRead:    len(rows) + skipped,
		RowsSkipped: skipped,
		LogsWritten: len(incoming),
	}
	e.lastReport = report
	log.Info().Int("containers", len(incoming)).Msg("shipment report merged")
	return report, nil
}

// Recalculate rederives every product's metrics. With force unset the call
// is coalesced: back-to-back triggers after an import that already
// recalculated are no-ops until something marks the state dirty again.
func (e *Engine) Recalculate(ctx context.Context, force bool) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if !force && !e.dirty {
		return nil
	}
	cfg, err := e.config.Get(ctx)
	if err != nil {
		return err
	}
	return e.recalcLocked(ctx, cfg)
}

func (e *Engine) recalcLocked(ctx context.Context, cfg domain.EngineConfig) error {
	catalog, err := e.catalog.All(ctx)
	if err != nil {
		return err
	}
	priceLogs, err := e.prices.All(ctx)
	if err != nil {
		return err
	}
	refundLogs, err := e.refunds.All(ctx)
	if err != nil {
		return err
	}
	shipmentLogs, err := e.shipments.All(ctx)
	if err != nil {
		return err
	}

	updated, changed := Recalculate(catalog, priceLogs, refundLogs, shipmentLogs, cfg)
	if changed > 0 {
		if err := e.catalog.SaveAll(ctx, updated); err != nil {
			return err
		}
	}
	e.dirty = false
	log.Debug().Int("products", len(updated)).Int("changed", changed).Msg("metrics recalculated")
	return nil
}

// Products returns the derived catalog.
func (e *Engine) Products(ctx context.Context) ([]domain.Product, error) {
	return e.catalog.All(ctx)
}

// Product returns one catalog entry with its raw price logs.
func (e *Engine) Product(ctx context.Context, sku string) (*domain.Product, []domain.PriceLog, error) {
	p, err := e.catalog.Get(ctx, sku)
	if err != nil {
		return nil, nil, err
	}
	logs, err := e.prices.BySKU(ctx, sku)
	if err != nil {
		return nil, nil, err
	}
	return p, logs, nil
}

func (e *Engine) PriceLogs(ctx context.Context, sku string) ([]domain.PriceLog, error) {
	if sku == "" {
		return e.prices.All(ctx)
	}
	return e.prices.BySKU(ctx, sku)
}

func (e *Engine) Config(ctx context.Context) (domain.EngineConfig, error) {
	return e.config.Get(ctx)
}

// UpdateConfig saves the new tuning and recomputes everything under it.
func (e *Engine) UpdateConfig(ctx context.Context, cfg domain.EngineConfig) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	cfg.ID = 1
	if err := e.config.Save(ctx, cfg); err != nil {
		return err
	}
	e.dirty = true
	return e.recalcLocked(ctx, cfg)
}

// LastReport returns the most recent committed import report.
func (e *Engine) LastReport() *domain.ImportReport {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.lastReport
}

func (e *Engine) catalogSet(ctx context.Context) (map[string]struct{}, error) {
	products, err := e.catalog.All(ctx)
	if err != nil {
		return nil, err
	}
	set := make(map[string]struct{}, len(products))
	for _, p := range products {
		set[p.SKU] = struct{}{}
	}
	return set, nil
}
