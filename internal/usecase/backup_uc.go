package usecase

import (
	"context"
	"encoding/json"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/phenrril/reconcell/internal/domain"
)

// bundle keys a restore refuses to proceed without
var requiredBundleKeys = []string{"products", "priceLogs", "refundLogs", "learnedAliases", "config"}

// Export produces the full backup bundle.
func (e *Engine) Export(ctx context.Context) (*domain.Snapshot, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	s, err := e.snapshots.Export(ctx)
	if err != nil {
		return nil, err
	}
	s.ExportedAt = time.Now().UTC()
	return s, nil
}

// Restore validates and applies a backup bundle. The whole set swaps
// atomically; any format problem aborts before a single write, leaving the
// loaded state untouched. A successful restore ends with a full
// recalculation so no screen ever shows half-restored figures.
func (e *Engine) Restore(ctx context.Context, data []byte) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return &domain.ParseError{Msg: "backup bundle", Err: err}
	}
	var missing []string
	for _, k := range requiredBundleKeys {
		if _, ok := raw[k]; !ok {
			missing = append(missing, k)
		}
	}
	if len(missing) > 0 {
		return &domain.RestoreFormatError{Missing: missing}
	}

	var snap domain.Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return &domain.ParseError{Msg: "backup bundle", Err: err}
	}
	if snap.Config.LookbackDays <= 0 {
		snap.Config = domain.DefaultConfig()
	}
	snap.Config.ID = 1

	if err := e.snapshots.RestoreAll(ctx, &snap); err != nil {
		return err
	}
	e.open = nil
	e.dirty = true
	if err := e.recalcLocked(ctx, snap.Config); err != nil {
		return err
	}
	log.Info().
		Int("products", len(snap.Products)).
		Int("priceLogs", len(snap.PriceLogs)).
		Time("exportedAt", snap.ExportedAt).
		Msg("backup restored")
	return nil
}
