package postgres

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/phenrril/reconcell/internal/domain"
)

type ConfigRepo struct{ db *gorm.DB }

func NewConfigRepo(db *gorm.DB) *ConfigRepo { return &ConfigRepo{db: db} }

// Get returns the singleton config row, falling back to defaults when none
// has been saved yet.
func (r *ConfigRepo) Get(ctx context.Context) (domain.EngineConfig, error) {
	var c domain.EngineConfig
	if err := r.db.WithContext(ctx).First(&c, "id = ?", 1).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.DefaultConfig(), nil
		}
		return domain.EngineConfig{}, err
	}
	return c, nil
}

func (r *ConfigRepo) Save(ctx context.Context, c domain.EngineConfig) error {
	c.ID = 1
	return r.db.WithContext(ctx).Save(&c).Error
}
