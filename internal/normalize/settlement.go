package normalize

import (
	"log"
	"time"

	"SellerLedger/internal/model"
)

// Settlement converts the settlement report into SettlementRecords. Fee and
// net figures keep the processor's sign; the reconciler applies the ledger
// sign convention when it copies them onto a leg.
func Settlement(rows [][]string, ingestionDate time.Time) ([]model.SettlementRecord, error) {
	if len(rows) == 0 {
		return nil, &model.SchemaMismatchError{Source: "settlement", Column: fieldSourceID}
	}
	idx, err := resolveHeader("settlement", rows[0], settlementLabels, settlementRequired)
	if err != nil {
		return nil, err
	}

	recs := make([]model.SettlementRecord, 0, len(rows)-1)
	for n, row := range rows[1:] {
		if isEmptyRow(row) {
			continue
		}
		sourceID := coerceID(idx.cell(row, fieldSourceID))
		if sourceID == "" {
			log.Printf("[WARN] settlement row %d: empty source id, row skipped", n+2)
			continue
		}
		recs = append(recs, model.SettlementRecord{
			SourceID:            sourceID,
			TransactionType:     idx.cell(row, fieldTransactionType),
			FeeAmount:           parseAmount(idx.cell(row, fieldFeeAmount)),
			SettlementNetAmount: parseAmount(idx.cell(row, fieldSettlementNetAmount)),
			TaxesAmount:         parseAmount(idx.cell(row, fieldTaxesAmount)),
			PackID:              coerceID(idx.cell(row, fieldPackID)),
			IngestionDate:       ingestionDate,
		})
	}
	return recs, nil
}
