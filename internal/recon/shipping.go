package recon

import (
	"log"

	"github.com/shopspring/decimal"

	"SellerLedger/internal/config"
	"SellerLedger/internal/model"
)

// ApportionShipping absorbs shipping-only legs into the sale legs they fund,
// joined on external_reference. The charge of a shipping leg is its
// transaction amount; once absorbed, the shipping leg is dropped.
//
// Policy decides the distribution across qualifying sale legs:
// first-leg-absorbs-all copies the whole charge to the first sale leg in row
// order; equal-split divides it (2dp rounding, remainder to the first leg).
// Sale legs that already carry the same shipping cost value as the one being
// assigned are reset to zero so the charge is never counted twice.
//
// A shipping leg with no eligible sale leg is an orphan: kept in the output
// and reported, never silently dropped.
func ApportionShipping(legs []model.TransactionLeg, policy string) ([]model.TransactionLeg, []*model.OrphanReferenceError) {
	type refGroup struct {
		shipping []int // indices into legs
		sales    []int
	}
	groups := make(map[string]*refGroup)
	order := make([]string, 0)
	for i, leg := range legs {
		g, ok := groups[leg.ExternalReference]
		if !ok {
			g = &refGroup{}
			groups[leg.ExternalReference] = g
			order = append(order, leg.ExternalReference)
		}
		if leg.OperationType == model.OperationTypeShipping {
			g.shipping = append(g.shipping, i)
		} else {
			g.sales = append(g.sales, i)
		}
	}

	absorbed := make(map[int]bool) // shipping leg indices dropped from output
	var orphans []*model.OrphanReferenceError

	for _, ref := range order {
		g := groups[ref]
		if len(g.shipping) == 0 {
			continue
		}
		if ref == "" || len(g.sales) == 0 {
			for _, si := range g.shipping {
				orphans = append(orphans, &model.OrphanReferenceError{
					ExternalReference: ref,
					OperationID:       legs[si].OperationID,
				})
			}
			continue
		}

		charge := decimal.Zero
		for _, si := range g.shipping {
			charge = charge.Add(legs[si].TransactionAmount)
			absorbed[si] = true
		}

		signed := charge.Neg() // stored as a signed adjustment

		// double-charge guard: sale legs pre-stamped with the value being
		// assigned are cleared first, so the group keeps exactly one copy.
		for _, li := range g.sales {
			if legs[li].ShippingCostBySeller.Equal(signed) && !signed.IsZero() {
				legs[li].ShippingCostBySeller = decimal.Zero
			}
		}

		switch policy {
		case config.ShippingPolicyEqualSplit:
			n := int64(len(g.sales))
			share := charge.DivRound(decimal.NewFromInt(n), 2)
			first := charge.Sub(share.Mul(decimal.NewFromInt(n - 1)))
			for k, li := range g.sales {
				part := share
				if k == 0 {
					part = first
				}
				legs[li].ShippingCostBySeller = legs[li].ShippingCostBySeller.Add(part.Neg())
				legs[li].NetReceivedAmount = legs[li].NetReceivedAmount.Sub(part)
			}
		default: // config.ShippingPolicyFirstLeg
			li := g.sales[0]
			legs[li].ShippingCostBySeller = legs[li].ShippingCostBySeller.Add(signed)
			legs[li].NetReceivedAmount = legs[li].NetReceivedAmount.Sub(charge)
		}
	}

	out := make([]model.TransactionLeg, 0, len(legs))
	for i, leg := range legs {
		if absorbed[i] {
			continue
		}
		out = append(out, leg)
	}
	for _, o := range orphans {
		log.Printf("[WARN] %v", o)
	}
	return out, orphans
}
