package domain

import (
	"context"
	"time"
)

// CatalogRepo persists the canonical product catalog.
type CatalogRepo interface {
	All(ctx context.Context) ([]Product, error)
	Get(ctx context.Context, sku string) (*Product, error)
	// Upsert saves a product, reporting whether it was created or updated.
	Upsert(ctx context.Context, p *Product) (created bool, err error)
	SaveAll(ctx context.Context, ps []Product) error
}

// PriceLogRepo persists the durable sales log. The engine merges in memory
// and writes the whole set back, last writer wins.
type PriceLogRepo interface {
	All(ctx context.Context) ([]PriceLog, error)
	BySKU(ctx context.Context, sku string) ([]PriceLog, error)
	ReplaceAll(ctx context.Context, logs []PriceLog) error
}

type RefundLogRepo interface {
	All(ctx context.Context) ([]RefundLog, error)
	ReplaceAll(ctx context.Context, logs []RefundLog) error
}

type ShipmentLogRepo interface {
	All(ctx context.Context) ([]ShipmentLog, error)
	ReplaceAll(ctx context.Context, logs []ShipmentLog) error
}

// AliasRepo persists the learned-alias cache.
type AliasRepo interface {
	All(ctx context.Context) (map[string]string, error)
	Save(ctx context.Context, a LearnedAlias) error
}

type ConfigRepo interface {
	Get(ctx context.Context) (EngineConfig, error)
	Save(ctx context.Context, c EngineConfig) error
}

// Snapshot is the backup/restore bundle: the whole catalog/log/alias/config
// set plus the export timestamp.
type Snapshot struct {
	Products       []Product      `json:"products"`
	PriceLogs      []PriceLog     `json:"priceLogs"`
	RefundLogs     []RefundLog    `json:"refundLogs"`
	ShipmentLogs   []ShipmentLog  `json:"shipmentLogs"`
	LearnedAliases []LearnedAlias `json:"learnedAliases"`
	Config         EngineConfig   `json:"config"`
	ExportedAt     time.Time      `json:"exportedAt"`
}

// SnapshotStore exports the full state and restores it atomically: either
// every collection is swapped or none is.
type SnapshotStore interface {
	Export(ctx context.Context) (*Snapshot, error)
	RestoreAll(ctx context.Context, s *Snapshot) error
}
