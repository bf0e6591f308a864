package postgres

import (
	"context"

	"gorm.io/gorm"

	"github.com/phenrril/reconcell/internal/domain"
)

// The log repos share one shape: read the whole set, replace the whole set.
// The engine merges in memory and writes back, last writer wins.

type PriceLogRepo struct{ db *gorm.DB }

func NewPriceLogRepo(db *gorm.DB) *PriceLogRepo { return &PriceLogRepo{db: db} }

func (r *PriceLogRepo) All(ctx context.Context) ([]domain.PriceLog, error) {
	var list []domain.PriceLog
	if err := r.db.WithContext(ctx).Order("date asc").Find(&list).Error; err != nil {
		return nil, err
	}
	return list, nil
}

func (r *PriceLogRepo) BySKU(ctx context.Context, sku string) ([]domain.PriceLog, error) {
	var list []domain.PriceLog
	if err := r.db.WithContext(ctx).Where("sku = ?", sku).Order("date asc").Find(&list).Error; err != nil {
		return nil, err
	}
	return list, nil
}

func (r *PriceLogRepo) ReplaceAll(ctx context.Context, logs []domain.PriceLog) error {
	return replaceAll(r.db.WithContext(ctx), &domain.PriceLog{}, logs)
}

type RefundLogRepo struct{ db *gorm.DB }

func NewRefundLogRepo(db *gorm.DB) *RefundLogRepo { return &RefundLogRepo{db: db} }

func (r *RefundLogRepo) All(ctx context.Context) ([]domain.RefundLog, error) {
	var list []domain.RefundLog
	if err := r.db.WithContext(ctx).Order("date asc").Find(&list).Error; err != nil {
		return nil, err
	}
	return list, nil
}

func (r *RefundLogRepo) ReplaceAll(ctx context.Context, logs []domain.RefundLog) error {
	return replaceAll(r.db.WithContext(ctx), &domain.RefundLog{}, logs)
}

type ShipmentLogRepo struct{ db *gorm.DB }

func NewShipmentLogRepo(db *gorm.DB) *ShipmentLogRepo { return &ShipmentLogRepo{db: db} }

func (r *ShipmentLogRepo) All(ctx context.Context) ([]domain.ShipmentLog, error) {
	var list []domain.ShipmentLog
	if err := r.db.WithContext(ctx).Order("eta asc").Find(&list).Error; err != nil {
		return nil, err
	}
	return list, nil
}

func (r *ShipmentLogRepo) ReplaceAll(ctx context.Context, logs []domain.ShipmentLog) error {
	return replaceAll(r.db.WithContext(ctx), &domain.ShipmentLog{}, logs)
}

func replaceAll[T any](db *gorm.DB, model any, rows []T) error {
	return db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("1 = 1").Delete(model).Error; err != nil {
			return err
		}
		if len(rows) == 0 {
			return nil
		}
		return tx.CreateInBatches(rows, 500).Error
	})
}
