package usecase

import (
	"time"

	"github.com/phenrril/reconcell/internal/domain"
)

type orderKey struct {
	sku     string
	orderID string
}

type aggKey struct {
	sku      string
	date     time.Time
	platform string
}

type dateKey struct {
	sku  string
	date time.Time
}

// MergePriceLogs folds freshly aggregated entries into the durable log.
// Idempotent: the same report merged twice leaves the log unchanged.
// Dedup precedence:
//   - entries with an order ID replace existing entries sharing (sku, orderId)
//   - aggregate entries replace existing aggregate entries sharing
//     (sku, date, platform) — a corrected re-import overwrites the old guess
//   - an order-level import supersedes stored aggregate entries for the same
//     (sku, date) on any platform; order detail outranks an aggregate guess
func MergePriceLogs(existing, incoming []domain.PriceLog) []domain.PriceLog {
	orderKeys := map[orderKey]struct{}{}
	aggKeys := map[aggKey]struct{}{}
	orderDates := map[dateKey]struct{}{}
	for _, e := range incoming {
		if e.OrderID != "" {
			orderKeys[orderKey{e.SKU, e.OrderID}] = struct{}{}
			orderDates[dateKey{e.SKU, day(e.Date)}] = struct{}{}
		} else {
			aggKeys[aggKey{e.SKU, day(e.Date), e.Platform}] = struct{}{}
		}
	}

	out := make([]domain.PriceLog, 0, len(existing)+len(incoming))
	for _, e := range existing {
		if e.OrderID != "" {
			if _, hit := orderKeys[orderKey{e.SKU, e.OrderID}]; hit {
				continue
			}
			out = append(out, e)
			continue
		}
		if _, hit := aggKeys[aggKey{e.SKU, day(e.Date), e.Platform}]; hit {
			continue
		}
		if _, hit := orderDates[dateKey{e.SKU, day(e.Date)}]; hit {
			continue
		}
		out = append(out, e)
	}
	return append(out, incoming...)
}

// MergeRefundLogs replaces by deterministic ID, so refund re-imports are
// naturally idempotent.
func MergeRefundLogs(existing, incoming []domain.RefundLog) []domain.RefundLog {
	ids := map[string]struct{}{}
	for _, r := range incoming {
		ids[r.ID] = struct{}{}
	}
	out := make([]domain.RefundLog, 0, len(existing)+len(incoming))
	for _, r := range existing {
		if _, hit := ids[r.ID]; hit {
			continue
		}
		out = append(out, r)
	}
	return append(out, incoming...)
}

// MergeShipmentLogs replaces by container ID.
func MergeShipmentLogs(existing, incoming []domain.ShipmentLog) []domain.ShipmentLog {
	ids := map[string]struct{}{}
	for _, s := range incoming {
		ids[s.ContainerID] = struct{}{}
	}
	out := make([]domain.ShipmentLog, 0, len(existing)+len(incoming))
	for _, s := range existing {
		if _, hit := ids[s.ContainerID]; hit {
			continue
		}
		out = append(out, s)
	}
	return append(out, incoming...)
}
