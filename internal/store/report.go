package store

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/xuri/excelize/v2"

	"SellerLedger/internal/model"
)

const reportSheet = "Replenishment"

var reportHeader = []interface{}{
	"sku", "stock_remote", "stock_local", "total_stock",
	"units_sold_trailing", "date_last_sale", "daily_avg", "days_of_supply",
	"sixty_day_demand", "sales_until_replenishment",
	"units_available_at_leadtime", "suggested_order_quantity",
	"inventory_age_bucket",
}

// WriteInventoryReport writes the per-SKU replenishment report as an xlsx
// workbook, one file per run date.
func WriteInventoryReport(dir string, runDate time.Time, snaps []model.InventorySnapshot) (string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("create report dir: %w", err)
	}
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), reportSheet); err != nil {
		return "", fmt.Errorf("report sheet: %w", err)
	}
	if err := f.SetSheetRow(reportSheet, "A1", &reportHeader); err != nil {
		return "", fmt.Errorf("report header: %w", err)
	}
	for i, s := range snaps {
		lastSale := ""
		if !s.DateLastSale.IsZero() {
			lastSale = s.DateLastSale.Format(dateLayout)
		}
		row := []interface{}{
			s.SKU, s.StockRemote, s.StockLocal, s.TotalStock,
			s.UnitsSoldTrailing, lastSale, s.DailyAvg, s.DaysOfSupply,
			s.SixtyDayDemand, s.SalesUntilReplenishment,
			s.UnitsAvailableAtLeadtime, s.SuggestedOrderQuantity,
			s.InventoryAgeBucket,
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return "", err
		}
		if err := f.SetSheetRow(reportSheet, cell, &row); err != nil {
			return "", fmt.Errorf("report row %d: %w", i+2, err)
		}
	}

	path := filepath.Join(dir, fmt.Sprintf("replenishment_%s.xlsx", runDate.Format("20060102")))
	if err := f.SaveAs(path); err != nil {
		return "", fmt.Errorf("save report: %w", err)
	}
	return path, nil
}
