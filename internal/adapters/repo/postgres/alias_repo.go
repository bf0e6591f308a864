package postgres

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/phenrril/reconcell/internal/domain"
)

type AliasRepo struct{ db *gorm.DB }

func NewAliasRepo(db *gorm.DB) *AliasRepo { return &AliasRepo{db: db} }

func (r *AliasRepo) All(ctx context.Context) (map[string]string, error) {
	var list []domain.LearnedAlias
	if err := r.db.WithContext(ctx).Find(&list).Error; err != nil {
		return nil, err
	}
	out := make(map[string]string, len(list))
	for _, a := range list {
		out[a.Alias] = a.SKU
	}
	return out, nil
}

func (r *AliasRepo) Save(ctx context.Context, a domain.LearnedAlias) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "alias"}}, UpdateAll: true}).
		Create(&a).Error
}
