// Package xlsxreport reads uploaded XLSX reports into normalized rows.
// Column mapping is header-name driven so channel exports with shuffled or
// missing optional columns still parse; only sku and order time are required.
package xlsxreport

import (
	"bytes"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/phenrril/reconcell/internal/domain"
)

var headerAliases = map[string]string{
	"sku":              "sku",
	"seller sku":       "sku",
	"product sku":      "sku",
	"order time":       "date",
	"order date":       "date",
	"date":             "date",
	"order id":         "order_id",
	"order":            "order_id",
	"quantity":         "qty",
	"qty":              "qty",
	"units":            "qty",
	"revenue":          "revenue",
	"total revenue":    "revenue",
	"amount":           "revenue",
	"unit cost":        "unit_cost",
	"cost":             "unit_cost",
	"platform":         "platform",
	"channel":          "platform",
	"manager":          "manager",
	"subcategory":      "subcategory",
	"selling fee":      "fee_selling",
	"ads fee":          "fee_ads",
	"advertising fee":  "fee_ads",
	"postage":          "fee_postage",
	"postage fee":      "fee_postage",
	"extra freight":    "fee_extra_freight",
	"freight income":   "fee_extra_freight",
	"other fee":        "fee_other",
	"subscription fee": "fee_subscription",
	"fulfillment fee":  "fee_fulfillment",
	"container id":     "container_id",
	"container":        "container_id",
	"eta":              "eta",
	"refund amount":    "revenue",
	"refund quantity":  "qty",
}

var dateLayouts = []string{
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05Z07:00",
	"2006-01-02",
	"02/01/2006 15:04",
	"02/01/2006",
	"1/2/06 15:04",
}

// ParseSales reads a sales report. Returns the parsed rows and the number
// of rows skipped for missing sku or unparseable date; only an unreadable
// file is an error.
func ParseSales(data []byte) ([]domain.SalesRow, int, error) {
	rows, skipped, err := tables(data)
	if err != nil {
		return nil, 0, err
	}
	out := make([]domain.SalesRow, 0, len(rows))
	for _, rec := range rows {
		sku := rec.str("sku")
		date, ok := rec.date("date")
		if sku == "" || !ok {
			skipped++
			continue
		}
		out = append(out, domain.SalesRow{
			SKU:         sku,
			OrderID:     rec.str("order_id"),
			OrderTime:   date,
			Quantity:    rec.num("qty"),
			Revenue:     rec.num("revenue"),
			UnitCost:    rec.num("unit_cost"),
			Platform:    rec.str("platform"),
			Manager:     rec.str("manager"),
			Subcategory: rec.str("subcategory"),
			Fees: domain.FeeSet{
				Selling:      rec.num("fee_selling"),
				Ads:          rec.num("fee_ads"),
				Postage:      rec.num("fee_postage"),
				ExtraFreight: rec.num("fee_extra_freight"),
				Other:        rec.num("fee_other"),
				Subscription: rec.num("fee_subscription"),
				Fulfillment:  rec.num("fee_fulfillment"),
			},
		})
	}
	return out, skipped, nil
}

// ParseRefunds reads a refund report.
func ParseRefunds(data []byte) ([]domain.RefundRow, int, error) {
	rows, skipped, err := tables(data)
	if err != nil {
		return nil, 0, err
	}
	out := make([]domain.RefundRow, 0, len(rows))
	for _, rec := range rows {
		sku := rec.str("sku")
		date, ok := rec.date("date")
		if sku == "" || !ok {
			skipped++
			continue
		}
		out = append(out, domain.RefundRow{
			SKU:      sku,
			OrderID:  rec.str("order_id"),
			Date:     date,
			Amount:   rec.num("revenue"),
			Quantity: rec.num("qty"),
		})
	}
	return out, skipped, nil
}

// ParseShipments reads a shipment report.
func ParseShipments(data []byte) ([]domain.ShipmentRow, int, error) {
	rows, skipped, err := tables(data)
	if err != nil {
		return nil, 0, err
	}
	out := make([]domain.ShipmentRow, 0, len(rows))
	for _, rec := range rows {
		sku := rec.str("sku")
		container := rec.str("container_id")
		if sku == "" || container == "" {
			skipped++
			continue
		}
		eta, _ := rec.date("eta")
		out = append(out, domain.ShipmentRow{
			ContainerID: container,
			SKU:         sku,
			Quantity:    rec.num("qty"),
			ETA:         eta,
		})
	}
	return out, skipped, nil
}

type record map[string]string

func (r record) str(key string) string { return strings.TrimSpace(r[key]) }

func (r record) num(key string) float64 {
	s := strings.ReplaceAll(r.str(key), ",", "")
	if s == "" {
		return 0
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return v
}

func (r record) date(key string) (time.Time, bool) {
	s := r.str(key)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), true
		}
	}
	// excelize can hand back the raw serial for unformatted cells
	if serial, err := strconv.ParseFloat(s, 64); err == nil && serial > 20000 {
		if t, err := excelize.ExcelDateToTime(serial, false); err == nil {
			return t.UTC(), true
		}
	}
	return time.Time{}, false
}

// tables flattens every sheet into keyed records using the first non-empty
// row of each sheet as its header.
func tables(data []byte) ([]record, int, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, 0, &domain.ParseError{Msg: "open workbook", Err: err}
	}
	defer f.Close()

	var out []record
	skipped := 0
	for _, sh := range f.GetSheetList() {
		rows, err := f.GetRows(sh)
		if err != nil || len(rows) == 0 {
			continue
		}
		var cols []string
		for _, row := range rows {
			if cols == nil {
				if len(row) == 0 {
					continue
				}
				cols = headerColumns(row)
				continue
			}
			if len(row) == 0 {
				continue
			}
			rec := record{}
			for i, cell := range row {
				if i >= len(cols) || cols[i] == "" {
					continue
				}
				rec[cols[i]] = cell
			}
			if len(rec) == 0 {
				skipped++
				continue
			}
			out = append(out, rec)
		}
	}
	return out, skipped, nil
}

func headerColumns(row []string) []string {
	cols := make([]string, len(row))
	for i, cell := range row {
		key := strings.ToLower(strings.TrimSpace(cell))
		if mapped, ok := headerAliases[key]; ok {
			cols[i] = mapped
		}
	}
	return cols
}
