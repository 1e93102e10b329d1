package recon

import (
	"sort"
	"strings"

	"SellerLedger/internal/model"
)

// Aggregate collapses reconciled, enriched legs into one row per commercial
// event. Monetary fields are summed (aggregation must not alter totals, only
// collapse rows), quantity takes the mean (legs under one key carry equal
// quantity, the mean guards against minor join duplication), event and
// ingestion dates take the max, and payment types and operation ids are
// comma-joined to keep traceability to the raw legs.
func Aggregate(legs []model.TransactionLeg) []model.AggregatedEvent {
	type acc struct {
		ev    model.AggregatedEvent
		count int
		qty   float64
		pays  []string
		ops   []string
	}

	byKey := make(map[model.EventKey]*acc)
	order := make([]model.EventKey, 0)

	for _, leg := range legs {
		key := model.EventKey{
			OrderID:           leg.OrderID,
			SKU:               leg.SKU,
			Reason:            leg.Reason,
			ItemID:            leg.ItemID,
			ExternalReference: leg.ExternalReference,
			Marketplace:       leg.Marketplace,
			Status:            leg.Status,
			StatusDetail:      leg.StatusDetail,
			OperationType:     leg.OperationType,
			ShipmentStatus:    leg.ShipmentStatus,
			PackID:            leg.PackID,
		}
		a, ok := byKey[key]
		if !ok {
			a = &acc{ev: model.AggregatedEvent{Key: key}}
			byKey[key] = a
			order = append(order, key)
		}
		a.ev.TransactionAmount = a.ev.TransactionAmount.Add(leg.TransactionAmount)
		a.ev.SaleAmount = a.ev.SaleAmount.Add(leg.SaleAmount)
		a.ev.MarketplaceFee = a.ev.MarketplaceFee.Add(leg.MarketplaceFee)
		a.ev.ShippingCostBySeller = a.ev.ShippingCostBySeller.Add(leg.ShippingCostBySeller)
		a.ev.ShippingCostByCustomer = a.ev.ShippingCostByCustomer.Add(leg.ShippingCostByCustomer)
		a.ev.CouponFee = a.ev.CouponFee.Add(leg.CouponFee)
		a.ev.TaxesAmount = a.ev.TaxesAmount.Add(leg.TaxesAmount)
		a.ev.NetReceivedAmount = a.ev.NetReceivedAmount.Add(leg.NetReceivedAmount)
		a.ev.AmountRefunded = a.ev.AmountRefunded.Add(leg.AmountRefunded)

		a.qty += leg.Quantity
		a.count++
		if laterEvent(leg, a.ev) {
			a.ev.EventDate = leg.EventDate
			a.ev.EventTime = leg.EventTime
		}
		if leg.IngestionDate.After(a.ev.IngestionDate) {
			a.ev.IngestionDate = leg.IngestionDate
		}
		if leg.PaymentType != "" {
			a.pays = append(a.pays, leg.PaymentType)
		}
		a.ops = append(a.ops, leg.OperationID)
	}

	out := make([]model.AggregatedEvent, 0, len(order))
	for _, key := range order {
		a := byKey[key]
		a.ev.Quantity = a.qty / float64(a.count)
		a.ev.PaymentTypes = strings.Join(a.pays, ",")
		a.ev.OperationIDs = strings.Join(a.ops, ",")
		out = append(out, a.ev)
	}

	// deterministic, chronologically ordered ledger
	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].IngestionDate.Equal(out[j].IngestionDate) {
			return out[i].IngestionDate.Before(out[j].IngestionDate)
		}
		if !out[i].EventDate.Equal(out[j].EventDate) {
			return out[i].EventDate.Before(out[j].EventDate)
		}
		return out[i].EventTime < out[j].EventTime
	})
	return out
}

// laterEvent reports whether leg's event timestamp is after the accumulated
// event's current max.
func laterEvent(leg model.TransactionLeg, ev model.AggregatedEvent) bool {
	if leg.EventDate.After(ev.EventDate) {
		return true
	}
	if leg.EventDate.Equal(ev.EventDate) {
		return leg.EventTime > ev.EventTime // "15:04:05" compares lexically
	}
	return false
}
