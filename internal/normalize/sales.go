package normalize

import (
	"log"
	"time"

	"SellerLedger/internal/extract"
	"SellerLedger/internal/model"
)

// header probe window for the units-sold report; its exports pad a varying
// number of title rows above the header.
const salesHeaderProbeRows = 10

// Sales converts the units-sold report into SalesRecords. The header row
// offset varies per export and is probed.
func Sales(rows [][]string, ingestionDate time.Time) ([]model.SalesRecord, error) {
	headerIdx, err := extract.ProbeHeader(rows, salesLabels, salesHeaderProbeRows)
	if err != nil {
		return nil, &model.SchemaMismatchError{Source: "sales", Column: fieldOrderNumber}
	}
	idx, err := resolveHeader("sales", rows[headerIdx], salesLabels, salesRequired)
	if err != nil {
		return nil, err
	}

	recs := make([]model.SalesRecord, 0, len(rows)-headerIdx-1)
	for n, row := range rows[headerIdx+1:] {
		if isEmptyRow(row) {
			continue
		}
		orderNumber := coerceID(idx.cell(row, fieldOrderNumber))
		if orderNumber == "" {
			log.Printf("[WARN] sales row %d: empty order number, row skipped", headerIdx+n+2)
			continue
		}
		recs = append(recs, model.SalesRecord{
			OrderNumber:   orderNumber,
			ListingID:     coerceID(idx.cell(row, fieldListingID)),
			Units:         parseUnits(idx.cell(row, fieldUnits)),
			SalesChannel:  idx.cell(row, fieldSalesChannel),
			Title:         idx.cell(row, fieldTitle),
			Buyer:         idx.cell(row, fieldBuyer),
			IngestionDate: ingestionDate,
		})
	}
	return recs, nil
}
