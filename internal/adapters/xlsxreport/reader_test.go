package xlsxreport

import (
	"bytes"
	"testing"
	"time"

	"github.com/xuri/excelize/v2"
)

func workbook(t *testing.T, rows [][]interface{}) []byte {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			t.Fatal(err)
		}
		if err := f.SetSheetRow("Sheet1", cell, &row); err != nil {
			t.Fatal(err)
		}
	}
	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

func TestParseSalesMapsAliasedHeaders(t *testing.T) {
	data := workbook(t, [][]interface{}{
		{"Seller SKU", "Order Date", "Order ID", "Units", "Total Revenue", "Cost", "Channel", "Manager", "Selling Fee", "Extra Freight"},
		{"BF100", "2024-05-10", "O-1", "3", "36.50", "5", "ebay", "anna", "1.20", "0.80"},
	})

	rows, skipped, err := ParseSales(data)
	if err != nil {
		t.Fatal(err)
	}
	if skipped != 0 || len(rows) != 1 {
		t.Fatalf("rows=%d skipped=%d", len(rows), skipped)
	}
	r := rows[0]
	if r.SKU != "BF100" || r.OrderID != "O-1" || r.Platform != "ebay" || r.Manager != "anna" {
		t.Errorf("identity fields: %+v", r)
	}
	if r.Quantity != 3 || r.Revenue != 36.50 || r.UnitCost != 5 {
		t.Errorf("numeric fields: %+v", r)
	}
	if r.Fees.Selling != 1.20 || r.Fees.ExtraFreight != 0.80 {
		t.Errorf("fees: %+v", r.Fees)
	}
	want := time.Date(2024, 5, 10, 0, 0, 0, 0, time.UTC)
	if !r.OrderTime.Equal(want) {
		t.Errorf("order time: got %v, want %v", r.OrderTime, want)
	}
}

func TestParseSalesSkipsBadRows(t *testing.T) {
	data := workbook(t, [][]interface{}{
		{"SKU", "Order Time", "Quantity", "Revenue"},
		{"", "2024-05-10 09:30:00", "1", "10"},   // no sku
		{"A", "yesterday-ish", "1", "10"},        // bad date
		{"A", "2024-05-10 09:30:00", "1", "10"},  // good
		{"B", "45423", "2", "20"},                // excel serial date
	})

	rows, skipped, err := ParseSales(data)
	if err != nil {
		t.Fatal(err)
	}
	if skipped != 2 {
		t.Errorf("skipped: got %d, want 2", skipped)
	}
	if len(rows) != 2 {
		t.Fatalf("rows: got %d, want 2", len(rows))
	}
	if rows[1].OrderTime.Year() != 2024 {
		t.Errorf("serial date not converted: %v", rows[1].OrderTime)
	}
}

func TestParseRefunds(t *testing.T) {
	data := workbook(t, [][]interface{}{
		{"SKU", "Date", "Order ID", "Refund Amount", "Refund Quantity"},
		{"A", "2024-05-10", "O-9", "12.34", "1"},
	})
	rows, skipped, err := ParseRefunds(data)
	if err != nil {
		t.Fatal(err)
	}
	if skipped != 0 || len(rows) != 1 {
		t.Fatalf("rows=%d skipped=%d", len(rows), skipped)
	}
	if rows[0].OrderID != "O-9" || rows[0].Amount != 12.34 || rows[0].Quantity != 1 {
		t.Errorf("refund row: %+v", rows[0])
	}
}

func TestParseShipmentsRequiresContainer(t *testing.T) {
	data := workbook(t, [][]interface{}{
		{"Container ID", "SKU", "Qty", "ETA"},
		{"C-77", "A", "120", "2024-06-01"},
		{"", "B", "10", "2024-06-01"},
	})
	rows, skipped, err := ParseShipments(data)
	if err != nil {
		t.Fatal(err)
	}
	if skipped != 1 || len(rows) != 1 {
		t.Fatalf("rows=%d skipped=%d", len(rows), skipped)
	}
	if rows[0].ContainerID != "C-77" || rows[0].Quantity != 120 {
		t.Errorf("shipment row: %+v", rows[0])
	}
	if rows[0].ETA.IsZero() {
		t.Error("eta not parsed")
	}
}

func TestParseSalesUnreadableFile(t *testing.T) {
	if _, _, err := ParseSales([]byte("not a workbook")); err == nil {
		t.Fatal("expected parse error")
	}
}
