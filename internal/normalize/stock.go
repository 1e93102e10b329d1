package normalize

import (
	"log"

	"SellerLedger/internal/model"
)

// Stock converts a stock snapshot (remote fulfillment or local bodega) into
// StockRows. Duplicate SKUs within one snapshot are summed.
func Stock(rows [][]string, source string) ([]model.StockRow, error) {
	if len(rows) == 0 {
		return nil, &model.SchemaMismatchError{Source: source, Column: fieldSKU}
	}
	idx, err := resolveHeader(source, rows[0], stockLabels, stockRequired)
	if err != nil {
		return nil, err
	}

	byNew := make(map[string]int)
	out := make([]model.StockRow, 0, len(rows)-1)
	for n, row := range rows[1:] {
		if isEmptyRow(row) {
			continue
		}
		sku := idx.cell(row, fieldSKU)
		if sku == "" {
			log.Printf("[WARN] %s row %d: empty sku, row skipped", source, n+2)
			continue
		}
		units := parseUnits(idx.cell(row, fieldStock))
		if i, seen := byNew[sku]; seen {
			out[i].Stock += units
			continue
		}
		byNew[sku] = len(out)
		out = append(out, model.StockRow{SKU: sku, Stock: units})
	}
	return out, nil
}
