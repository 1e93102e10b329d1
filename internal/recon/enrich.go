package recon

import (
	"log"

	"SellerLedger/internal/model"
)

type salesKey struct {
	orderNumber string
	listingID   string
}

// Enrich attaches unit quantity and sales channel from the units-sold report.
// Primary join: (order_id, item_id) against (order_number, listing_id).
// When that resolves to zero units, a secondary join on pack_id ==
// order_number covers multi-item packs. Unmatched legs default to zero units
// and the configured fallback channel.
func Enrich(legs []model.TransactionLeg, sales []model.SalesRecord, defaultChannel string) []model.TransactionLeg {
	byOrderItem := make(map[salesKey]model.SalesRecord, len(sales))
	byOrder := make(map[string]model.SalesRecord, len(sales))
	for _, s := range sales {
		k := salesKey{s.OrderNumber, s.ListingID}
		if _, seen := byOrderItem[k]; !seen {
			byOrderItem[k] = s
		}
		if _, seen := byOrder[s.OrderNumber]; !seen {
			byOrder[s.OrderNumber] = s
		}
	}

	out := make([]model.TransactionLeg, len(legs))
	copy(out, legs)
	unmatched := 0
	for i := range out {
		leg := &out[i]
		rec, ok := byOrderItem[salesKey{leg.OrderID, leg.ItemID}]
		if !ok || rec.Units == 0 {
			if packRec, packOK := byOrder[leg.PackID]; packOK && leg.PackID != "" {
				rec, ok = packRec, true
			}
		}
		if !ok {
			leg.Quantity = 0
			leg.Marketplace = defaultChannel
			unmatched++
			continue
		}
		leg.Quantity = rec.Units
		if rec.SalesChannel != "" {
			leg.Marketplace = rec.SalesChannel
		} else {
			leg.Marketplace = defaultChannel
		}
	}
	if unmatched > 0 {
		log.Printf("[DEBUG] enrich: %d of %d legs had no units-sold match, defaulted to channel %q", unmatched, len(legs), defaultChannel)
	}
	return out
}
