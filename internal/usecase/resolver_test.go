package usecase

import (
	"testing"
)

func catalogSet(skus ...string) map[string]struct{} {
	out := map[string]struct{}{}
	for _, s := range skus {
		out[s] = struct{}{}
	}
	return out
}

func TestResolveLadder(t *testing.T) {
	catalog := catalogSet("MASTER-UK", "BF100", "ABC")
	aliases := map[string]string{"SHOP-ABC-OLD": "ABC"}

	cases := []struct {
		name   string
		in     string
		status ResolutionStatus
		sku    string
	}{
		{"exact", "BF100", ResolveExact, "BF100"},
		{"learned", "shop-abc-old", ResolveLearned, "ABC"},
		{"suffix digits", "MASTER-UK_1", ResolveHeuristic, "MASTER-UK"},
		{"suffix region", "ABC-DE", ResolveHeuristic, "ABC"},
		{"prefix with separator", "ABC_BUNDLE2024", ResolveHeuristic, "ABC"},
		{"unresolved", "ZZZ999", ResolveUnresolved, ""},
		{"empty", "  ", ResolveUnresolved, ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := Resolve(tc.in, catalog, aliases)
			if got.Status != tc.status {
				t.Errorf("status: got %s, want %s", got.Status, tc.status)
			}
			if got.SKU != tc.sku {
				t.Errorf("sku: got %q, want %q", got.SKU, tc.sku)
			}
		})
	}
}

func TestResolveShortCodeNeverClaimsLongerSKU(t *testing.T) {
	// "BF10" is a prefix of "BF100" but there is no separator, so it must
	// stay unresolved rather than corrupt BF100's history.
	catalog := catalogSet("BF10")
	got := Resolve("BF100", catalog, nil)
	if got.Status != ResolveUnresolved {
		t.Fatalf("got %s/%s, want unresolved", got.Status, got.SKU)
	}
}

func TestResolvePrefersLongestPrefixCandidate(t *testing.T) {
	catalog := catalogSet("BF", "BF100")
	got := Resolve("BF100_US", catalog, nil)
	if got.Status != ResolveHeuristic || got.SKU != "BF100" {
		t.Fatalf("got %s/%s, want heuristic/BF100", got.Status, got.SKU)
	}
}

func TestResolveExactBeatsAlias(t *testing.T) {
	catalog := catalogSet("A1")
	aliases := map[string]string{"A1": "OTHER"}
	got := Resolve("A1", catalog, aliases)
	if got.Status != ResolveExact || got.SKU != "A1" {
		t.Fatalf("got %s/%s, want exact/A1", got.Status, got.SKU)
	}
}
