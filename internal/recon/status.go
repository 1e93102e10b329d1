package recon

import (
	"log"

	"SellerLedger/internal/model"
)

// SplitExcluded diverts legs whose status is excluded (cancelled, rejected,
// pending) out of the main pipeline. They accumulate in the rejected-sales
// archive instead of the ledger.
func SplitExcluded(legs []model.TransactionLeg, isExcluded func(status string) bool) (kept, excluded []model.TransactionLeg) {
	kept = make([]model.TransactionLeg, 0, len(legs))
	for _, leg := range legs {
		if isExcluded(leg.Status) {
			excluded = append(excluded, leg)
			continue
		}
		kept = append(kept, leg)
	}
	if len(excluded) > 0 {
		log.Printf("[DEBUG] status split: %d legs diverted to rejected-sales archive", len(excluded))
	}
	return kept, excluded
}
