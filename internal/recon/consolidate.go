package recon

import "SellerLedger/internal/model"

// Consolidate pivots each nonzero monetary field of each aggregated event
// into its own long-form row tagged with the field's name. Zero-amount
// fields are omitted. The fan-out is lossless: summing amount across one
// event's rows reconstructs its monetary footprint.
func Consolidate(events []model.AggregatedEvent) []model.ConsolidatedRecord {
	out := make([]model.ConsolidatedRecord, 0, len(events))
	for _, ev := range events {
		for _, f := range ev.MonetaryFields() {
			if f.Amount.IsZero() {
				continue
			}
			out = append(out, model.ConsolidatedRecord{
				Key:             ev.Key,
				EventDate:       ev.EventDate,
				IngestionDate:   ev.IngestionDate,
				Amount:          f.Amount,
				TransactionType: f.Name,
			})
		}
	}
	return out
}
