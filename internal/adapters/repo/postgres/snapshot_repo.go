package postgres

import (
	"context"

	"gorm.io/gorm"

	"github.com/phenrril/reconcell/internal/domain"
)

type SnapshotStore struct{ db *gorm.DB }

func NewSnapshotStore(db *gorm.DB) *SnapshotStore { return &SnapshotStore{db: db} }

// Export reads every collection into one bundle.
func (s *SnapshotStore) Export(ctx context.Context) (*domain.Snapshot, error) {
	var snap domain.Snapshot
	db := s.db.WithContext(ctx)
	if err := db.Order("sku asc").Find(&snap.Products).Error; err != nil {
		return nil, err
	}
	if err := db.Order("date asc").Find(&snap.PriceLogs).Error; err != nil {
		return nil, err
	}
	if err := db.Order("date asc").Find(&snap.RefundLogs).Error; err != nil {
		return nil, err
	}
	if err := db.Order("eta asc").Find(&snap.ShipmentLogs).Error; err != nil {
		return nil, err
	}
	if err := db.Find(&snap.LearnedAliases).Error; err != nil {
		return nil, err
	}
	var c domain.EngineConfig
	if err := db.First(&c, "id = ?", 1).Error; err != nil {
		c = domain.DefaultConfig()
	}
	snap.Config = c
	return &snap, nil
}

// RestoreAll swaps every collection inside one transaction. Either the
// whole bundle lands or the previous state stays as it was.
func (s *SnapshotStore) RestoreAll(ctx context.Context, snap *domain.Snapshot) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, model := range []any{
			&domain.Product{}, &domain.PriceLog{}, &domain.RefundLog{},
			&domain.ShipmentLog{}, &domain.LearnedAlias{}, &domain.EngineConfig{},
		} {
			if err := tx.Where("1 = 1").Delete(model).Error; err != nil {
				return err
			}
		}
		if len(snap.Products) > 0 {
			if err := tx.CreateInBatches(snap.Products, 500).Error; err != nil {
				return err
			}
		}
		if len(snap.PriceLogs) > 0 {
			if err := tx.CreateInBatches(snap.PriceLogs, 500).Error; err != nil {
				return err
			}
		}
		if len(snap.RefundLogs) > 0 {
			if err := tx.CreateInBatches(snap.RefundLogs, 500).Error; err != nil {
				return err
			}
		}
		if len(snap.ShipmentLogs) > 0 {
			if err := tx.CreateInBatches(snap.ShipmentLogs, 500).Error; err != nil {
				return err
			}
		}
		if len(snap.LearnedAliases) > 0 {
			if err := tx.CreateInBatches(snap.LearnedAliases, 500).Error; err != nil {
				return err
			}
		}
		cfg := snap.Config
		cfg.ID = 1
		return tx.Create(&cfg).Error
	})
}
