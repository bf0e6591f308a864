package usecase

import (
	"regexp"
	"strings"

	"github.com/phenrril/reconcell/internal/domain"
)

type ResolutionStatus string

const (
	ResolveExact      ResolutionStatus = "exact"
	ResolveLearned    ResolutionStatus = "learned"
	ResolveHeuristic  ResolutionStatus = "heuristic"
	ResolveUnresolved ResolutionStatus = "unresolved"
)

// Resolution is the outcome of matching one raw report identifier against
// the catalog. Heuristic outcomes are candidates only and must pass the
// mapping review before they affect aggregation.
type Resolution struct {
	Status ResolutionStatus
	SKU    string
}

// trailing "_UK", "-de", "_2", "-031" style channel suffixes
var channelSuffixRe = regexp.MustCompile(`[_-]([A-Za-z]{2}|[0-9]+)$`)

// Resolve maps a raw import identifier to a master SKU. Ladder, first hit
// wins: exact catalog match, learned-alias cache, suffix strip, prefix
// candidate. Anything else is unresolved and becomes a new product.
func Resolve(importSKU string, catalog map[string]struct{}, aliases map[string]string) Resolution {
	raw := strings.TrimSpace(importSKU)
	if raw == "" {
		return Resolution{Status: ResolveUnresolved}
	}
	if _, ok := catalog[raw]; ok {
		return Resolution{Status: ResolveExact, SKU: raw}
	}
	if sku, ok := aliases[domain.NormalizeAlias(raw)]; ok {
		return Resolution{Status: ResolveLearned, SKU: sku}
	}
	if m := channelSuffixRe.FindStringIndex(raw); m != nil {
		base := raw[:m[0]]
		if _, ok := catalog[base]; ok {
			return Resolution{Status: ResolveHeuristic, SKU: base}
		}
	}
	// Prefix rule: a catalog SKU is a candidate only when the import SKU
	// continues with a separator right after it, so "BF10" can never claim
	// "BF100". Longest catalog SKU wins among several candidates.
	best := ""
	for sku := range catalog {
		if len(raw) <= len(sku) || !strings.HasPrefix(raw, sku) {
			continue
		}
		if c := raw[len(sku)]; c != '_' && c != '-' {
			continue
		}
		if len(sku) > len(best) {
			best = sku
		}
	}
	if best != "" {
		return Resolution{Status: ResolveHeuristic, SKU: best}
	}
	return Resolution{Status: ResolveUnresolved}
}
