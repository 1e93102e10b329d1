// Package recon implements the reconciliation pipeline: deduplication
// against the historical ledger, cross-source field repair, shipping
// apportionment, refund overrides, quantity enrichment and aggregation into
// one row per commercial event.
package recon

import (
	"log"

	"SellerLedger/internal/model"
)

// SeenSet is the exact-match membership index of identifying values already
// present in the historical ledger. Re-ingesting an already-processed file
// must be a no-op.
type SeenSet map[string]struct{}

func NewSeenSet(ids []string) SeenSet {
	s := make(SeenSet, len(ids))
	for _, id := range ids {
		if id != "" {
			s[id] = struct{}{}
		}
	}
	return s
}

func (s SeenSet) Has(id string) bool {
	_, ok := s[id]
	return ok
}

// FilterNewLegs retains activity legs whose operation_id is not yet ledgered.
// Repeats within the incoming batch (the same extract delivered twice in one
// run) are true duplicates and are dropped as well.
func FilterNewLegs(legs []model.TransactionLeg, seen SeenSet) []model.TransactionLeg {
	out := make([]model.TransactionLeg, 0, len(legs))
	batch := make(map[string]struct{}, len(legs))
	dropped := 0
	for _, leg := range legs {
		if seen.Has(leg.OperationID) {
			dropped++
			continue
		}
		if _, dup := batch[leg.OperationID]; dup {
			dropped++
			continue
		}
		batch[leg.OperationID] = struct{}{}
		out = append(out, leg)
	}
	if dropped > 0 {
		log.Printf("[DEBUG] dedupe: dropped %d of %d activity legs already ledgered", dropped, len(legs))
	}
	return out
}

// FilterNewSettlements retains settlement rows whose source_id does not match
// an already-ledgered operation.
func FilterNewSettlements(recs []model.SettlementRecord, seen SeenSet) []model.SettlementRecord {
	out := make([]model.SettlementRecord, 0, len(recs))
	dropped := 0
	for _, r := range recs {
		if seen.Has(r.SourceID) {
			dropped++
			continue
		}
		out = append(out, r)
	}
	if dropped > 0 {
		log.Printf("[DEBUG] dedupe: dropped %d of %d settlement rows already ledgered", dropped, len(recs))
	}
	return out
}
