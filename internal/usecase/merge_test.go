package usecase

import (
	"reflect"
	"testing"

	"github.com/phenrril/reconcell/internal/domain"
)

func TestMergePriceLogsIdempotent(t *testing.T) {
	cfg := domain.DefaultConfig()
	rows := []domain.SalesRow{
		{SKU: "A", OrderID: "O1", OrderTime: date(2024, 5, 10), Quantity: 1, Revenue: 10, Platform: "ebay"},
		{SKU: "A", OrderTime: date(2024, 5, 9), Quantity: 4, Revenue: 44, Platform: "ebay"},
	}
	build := func() []domain.PriceLog {
		agg := NewAggregator(cfg, rows)
		for _, r := range rows {
			agg.Add(r, "A")
		}
		var entries []domain.PriceLog
		for _, res := range agg.Results() {
			entries = append(entries, res.Entries...)
		}
		return entries
	}

	once := MergePriceLogs(nil, build())
	twice := MergePriceLogs(once, build())
	if !reflect.DeepEqual(once, twice) {
		t.Fatalf("re-import changed the log:\nonce:  %+v\ntwice: %+v", once, twice)
	}
}

func TestMergeReplacesAggregateOnSameKey(t *testing.T) {
	existing := []domain.PriceLog{
		{ID: logID("A", "daily", "2024-05-09|ebay"), SKU: "A", Date: date(2024, 5, 9), Price: 10, Velocity: 4, Platform: "ebay"},
		{ID: logID("A", "daily", "2024-05-09|amazon"), SKU: "A", Date: date(2024, 5, 9), Price: 11, Velocity: 2, Platform: "amazon"},
	}
	// corrected re-import for the ebay bucket only
	incoming := []domain.PriceLog{
		{ID: logID("A", "daily", "2024-05-09|ebay"), SKU: "A", Date: date(2024, 5, 9), Price: 12, Velocity: 5, Platform: "ebay"},
	}
	merged := MergePriceLogs(existing, incoming)
	if len(merged) != 2 {
		t.Fatalf("merged: got %d entries, want 2", len(merged))
	}
	for _, e := range merged {
		if e.Platform == "ebay" && (e.Price != 12 || e.Velocity != 5) {
			t.Errorf("ebay bucket not overwritten: %+v", e)
		}
		if e.Platform == "amazon" && e.Price != 11 {
			t.Errorf("amazon bucket touched: %+v", e)
		}
	}
}

func TestOrderLevelImportSupersedesAggregateForSameDate(t *testing.T) {
	existing := []domain.PriceLog{
		// old aggregate guesses, any platform
		{SKU: "A", Date: date(2024, 5, 9), Price: 10, Velocity: 4, Platform: "ebay"},
		{SKU: "A", Date: date(2024, 5, 9), Price: 11, Velocity: 2, Platform: "amazon"},
		// different date stays
		{SKU: "A", Date: date(2024, 5, 8), Price: 9, Velocity: 1, Platform: "ebay"},
	}
	incoming := []domain.PriceLog{
		{SKU: "A", Date: date(2024, 5, 9), Price: 12, Velocity: 1, Platform: "ebay", OrderID: "O1"},
		{SKU: "A", Date: date(2024, 5, 9), Price: 12, Velocity: 2, Platform: "ebay", OrderID: "O2"},
	}
	merged := MergePriceLogs(existing, incoming)
	if len(merged) != 3 {
		t.Fatalf("merged: got %d entries, want 3", len(merged))
	}
	for _, e := range merged {
		if e.OrderID == "" && e.Date.Equal(date(2024, 5, 9)) {
			t.Errorf("aggregate guess survived order-level import: %+v", e)
		}
	}
}

func TestMergeKeepsOtherSKUsIntact(t *testing.T) {
	existing := []domain.PriceLog{
		{SKU: "B", Date: date(2024, 5, 9), Price: 20, Velocity: 1, Platform: "ebay"},
	}
	incoming := []domain.PriceLog{
		{SKU: "A", Date: date(2024, 5, 9), Price: 10, Velocity: 1, Platform: "ebay"},
	}
	merged := MergePriceLogs(existing, incoming)
	if len(merged) != 2 {
		t.Fatalf("merged: got %d, want 2", len(merged))
	}
}

func TestMergeRefundLogsIdempotent(t *testing.T) {
	mk := func() []domain.RefundLog {
		return []domain.RefundLog{{
			ID:       domain.RefundLogID("A", date(2024, 5, 9), "O1", 10),
			SKU:      "A",
			Date:     date(2024, 5, 9),
			Amount:   10,
			Quantity: 1,
		}}
	}
	once := MergeRefundLogs(nil, mk())
	twice := MergeRefundLogs(once, mk())
	if !reflect.DeepEqual(once, twice) {
		t.Fatal("refund re-import duplicated entries")
	}
}
