package recon

import (
	"github.com/shopspring/decimal"

	"SellerLedger/internal/model"
)

// CheckBalance verifies that aggregation collapsed rows without altering
// totals: every monetary column must sum to the same value over the input
// legs and over the aggregated events, within the rounding tolerance.
func CheckBalance(legs []model.TransactionLeg, events []model.AggregatedEvent, tolerance float64) error {
	before := make(map[string]decimal.Decimal)
	for _, leg := range legs {
		before[model.ColTransactionAmount] = before[model.ColTransactionAmount].Add(leg.TransactionAmount)
		before[model.ColSaleAmount] = before[model.ColSaleAmount].Add(leg.SaleAmount)
		before[model.ColMarketplaceFee] = before[model.ColMarketplaceFee].Add(leg.MarketplaceFee)
		before[model.ColShippingCostBySeller] = before[model.ColShippingCostBySeller].Add(leg.ShippingCostBySeller)
		before[model.ColShippingCostByCustomer] = before[model.ColShippingCostByCustomer].Add(leg.ShippingCostByCustomer)
		before[model.ColCouponFee] = before[model.ColCouponFee].Add(leg.CouponFee)
		before[model.ColTaxesAmount] = before[model.ColTaxesAmount].Add(leg.TaxesAmount)
		before[model.ColNetReceivedAmount] = before[model.ColNetReceivedAmount].Add(leg.NetReceivedAmount)
		before[model.ColAmountRefunded] = before[model.ColAmountRefunded].Add(leg.AmountRefunded)
	}

	after := make(map[string]decimal.Decimal)
	for _, ev := range events {
		for _, f := range ev.MonetaryFields() {
			after[f.Name] = after[f.Name].Add(f.Amount)
		}
	}

	tol := decimal.NewFromFloat(tolerance)
	for field, b := range before {
		if after[field].Sub(b).Abs().GreaterThan(tol) {
			return &model.BalanceInvariantError{
				Field:  field,
				Before: b.String(),
				After:  after[field].String(),
			}
		}
	}
	return nil
}
