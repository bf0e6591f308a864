package domain

import (
	"crypto/sha1"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// PriceLog is one observed sale (order-level) or one aggregated daily bucket
// (OrderID empty). Velocity is the number of units the entry represents.
type PriceLog struct {
	ID       uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	SKU      string    `gorm:"size:120;index" json:"sku"`
	Date     time.Time `gorm:"index" json:"date"`
	Price    float64   `gorm:"type:decimal(12,4)" json:"price"`
	Velocity float64   `gorm:"type:decimal(12,4)" json:"velocity"`
	Margin   float64   `gorm:"type:decimal(8,2)" json:"margin"`
	Platform string    `gorm:"size:60;index" json:"platform"`
	OrderID  string    `gorm:"size:120" json:"orderId,omitempty"`
}

// RefundLog is one refund observation. IDs are derived from the source
// fields so re-importing the same refund report never duplicates entries.
type RefundLog struct {
	ID       string    `gorm:"size:40;primaryKey" json:"id"`
	SKU      string    `gorm:"size:120;index" json:"sku"`
	Date     time.Time `gorm:"index" json:"date"`
	Amount   float64   `gorm:"type:decimal(12,4)" json:"amount"`
	Quantity float64   `gorm:"type:decimal(12,4)" json:"quantity"`
}

// RefundLogID builds the deterministic identifier for a refund observation.
func RefundLogID(sku string, date time.Time, orderID string, amount float64) string {
	h := sha1.Sum([]byte(fmt.Sprintf("%s|%s|%s|%.4f", sku, date.Format("2006-01-02"), orderID, amount)))
	return hex.EncodeToString(h[:])
}

type ShipmentDetail struct {
	SKU      string  `json:"sku"`
	Quantity float64 `json:"quantity"`
}

// ShipmentLog is an inbound container and its contents. Quantities count as
// incoming stock for runway when EngineConfig.IncludeIncoming is set.
type ShipmentLog struct {
	ContainerID string           `gorm:"size:120;primaryKey" json:"containerId"`
	ETA         time.Time        `json:"eta"`
	Details     []ShipmentDetail `gorm:"type:jsonb;serializer:json" json:"details"`
	CreatedAt   time.Time        `json:"createdAt"`
}

// IncomingBySKU sums undelivered shipment quantities per SKU.
func IncomingBySKU(shipments []ShipmentLog) map[string]float64 {
	out := map[string]float64{}
	for _, s := range shipments {
		for _, d := range s.Details {
			out[d.SKU] += d.Quantity
		}
	}
	return out
}
