package recon

import (
	"log"

	"github.com/shopspring/decimal"

	"SellerLedger/internal/model"
)

// ApplyRefunds overrides the monetary breakdown of refunded legs. Once a leg
// is refunded its original fee/shipping/coupon split is no longer meaningful:
// every monetary field is zeroed and the transaction amount becomes the
// refunded amount. Runs after fee repair and shipping apportionment (it
// overrides their output) and before aggregation.
func ApplyRefunds(legs []model.TransactionLeg) []model.TransactionLeg {
	out := make([]model.TransactionLeg, len(legs))
	copy(out, legs)
	refunded := 0
	for i := range out {
		leg := &out[i]
		if leg.AmountRefunded.IsZero() {
			continue
		}
		leg.TransactionAmount = leg.AmountRefunded
		leg.SaleAmount = decimal.Zero
		leg.MarketplaceFee = decimal.Zero
		leg.ShippingCostBySeller = decimal.Zero
		leg.ShippingCostByCustomer = decimal.Zero
		leg.CouponFee = decimal.Zero
		leg.TaxesAmount = decimal.Zero
		leg.NetReceivedAmount = decimal.Zero
		refunded++
	}
	if refunded > 0 {
		log.Printf("[DEBUG] refund handler: overrode %d refunded legs", refunded)
	}
	return out
}
