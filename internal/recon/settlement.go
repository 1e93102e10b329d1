package recon

import (
	"log"

	"SellerLedger/internal/model"
)

// RepairFees fills fee and net figures on activity legs the marketplace
// reported with a zero fee, using the payment processor's settlement report
// as the authoritative source. Only non-shipping legs are repaired, and
// refund-variant settlement rows are never used as a fee source.
//
// Reconciliation never overwrites a previously ledgered amount: this runs on
// the current batch only, before merge.
func RepairFees(legs []model.TransactionLeg, settlements []model.SettlementRecord) ([]model.TransactionLeg, error) {
	bySource := make(map[string][]model.SettlementRecord, len(settlements))
	for _, s := range settlements {
		if s.IsRefundVariant() {
			continue
		}
		bySource[s.SourceID] = append(bySource[s.SourceID], s)
	}

	out := make([]model.TransactionLeg, len(legs))
	copy(out, legs)
	repaired := 0
	for i := range out {
		leg := &out[i]
		if leg.OperationType == model.OperationTypeShipping || !leg.MarketplaceFee.IsZero() {
			continue
		}
		matches := bySource[leg.OperationID]
		if len(matches) == 0 {
			continue
		}
		if len(matches) > 1 {
			return nil, &model.JoinAmbiguityError{
				Key:     "source_id",
				Value:   leg.OperationID,
				Matches: len(matches),
			}
		}
		s := matches[0]
		leg.NetReceivedAmount = s.SettlementNetAmount
		leg.MarketplaceFee = s.FeeAmount.Neg()
		repaired++
	}
	if repaired > 0 {
		log.Printf("[DEBUG] fee repair: filled %d legs from settlement report", repaired)
	}
	return out, nil
}
