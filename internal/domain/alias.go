package domain

import (
	"strings"
	"time"
)

// LearnedAlias maps a normalized raw report identifier to a master SKU.
// Entries are written only through an approved mapping review, so every
// learned alias has been confirmed by a human once.
type LearnedAlias struct {
	Alias     string    `gorm:"size:120;primaryKey" json:"alias"`
	SKU       string    `gorm:"size:120;index" json:"sku"`
	CreatedAt time.Time `json:"createdAt"`
}

// NormalizeAlias is the canonical form used both when learning an alias and
// when looking one up. Resolution must go through this or cache hits drift.
func NormalizeAlias(s string) string {
	return strings.ToUpper(strings.TrimSpace(s))
}
