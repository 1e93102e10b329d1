// Package inventory derives per-SKU replenishment signals from trailing
// sales velocity in the historical ledger against the current stock
// snapshots. The whole report is recomputed on every run; nothing here is
// persisted incrementally.
package inventory

import (
	"sort"
	"time"

	"SellerLedger/internal/model"
)

// Params are the replenishment business constants, sourced from config.
type Params struct {
	TrailingWindowDays int
	LeadTimeDays       int
	MaxDaysOfSupply    float64
}

// Bucket labels, ascending by days of supply.
const (
	BucketExhausted = "exhausted"
	BucketWeek      = "0-7d"
	BucketTwoWeeks  = "7-15d"
	BucketMonth     = "15-30d"
	BucketTwoMonths = "1-2mo"
	BucketQuarter   = "2-3mo"
	BucketHalfYear  = "3-6mo"
	BucketOverSixMo = ">6mo"
)

// AgeBucket classifies days of supply into the ordered buckets with
// half-open upper bounds {0,7,15,30,60,90,180}; the first match wins, so the
// classification is non-decreasing in days of supply.
func AgeBucket(daysOfSupply float64) string {
	switch {
	case daysOfSupply == 0:
		return BucketExhausted
	case daysOfSupply < 7:
		return BucketWeek
	case daysOfSupply < 15:
		return BucketTwoWeeks
	case daysOfSupply < 30:
		return BucketMonth
	case daysOfSupply < 60:
		return BucketTwoMonths
	case daysOfSupply < 90:
		return BucketQuarter
	case daysOfSupply < 180:
		return BucketHalfYear
	default:
		return BucketOverSixMo
	}
}

// Compute builds the replenishment report over the union of stocked and
// historically sold SKUs. Only the stock snapshots and the merged ledger are
// required; reconciliation failures in the same run do not block this.
func Compute(ledger []model.AggregatedEvent, remote, local []model.StockRow, p Params) []model.InventorySnapshot {
	remoteBySKU := stockBySKU(remote)
	localBySKU := stockBySKU(local)

	type history struct {
		lastSale time.Time
		events   []model.AggregatedEvent
	}
	histBySKU := make(map[string]*history)
	for _, ev := range ledger {
		if ev.Key.SKU == "" {
			continue
		}
		h, ok := histBySKU[ev.Key.SKU]
		if !ok {
			h = &history{}
			histBySKU[ev.Key.SKU] = h
		}
		h.events = append(h.events, ev)
		if ev.EventDate.After(h.lastSale) {
			h.lastSale = ev.EventDate
		}
	}

	skus := make(map[string]struct{})
	for sku := range remoteBySKU {
		skus[sku] = struct{}{}
	}
	for sku := range localBySKU {
		skus[sku] = struct{}{}
	}
	for sku := range histBySKU {
		skus[sku] = struct{}{}
	}

	windowDays := float64(p.TrailingWindowDays)
	out := make([]model.InventorySnapshot, 0, len(skus))
	for sku := range skus {
		snap := model.InventorySnapshot{
			SKU:         sku,
			StockRemote: remoteBySKU[sku],
			StockLocal:  localBySKU[sku],
		}
		snap.TotalStock = snap.StockRemote + snap.StockLocal

		if h, ok := histBySKU[sku]; ok {
			snap.DateLastSale = h.lastSale
			windowStart := h.lastSale.AddDate(0, 0, -p.TrailingWindowDays)
			for _, ev := range h.events {
				if !ev.EventDate.Before(windowStart) && !ev.EventDate.After(h.lastSale) {
					snap.UnitsSoldTrailing += ev.Quantity
				}
			}
		}

		snap.DailyAvg = snap.UnitsSoldTrailing / windowDays

		switch {
		case snap.DailyAvg != 0:
			snap.DaysOfSupply = snap.TotalStock / snap.DailyAvg
			if snap.DaysOfSupply > p.MaxDaysOfSupply {
				snap.DaysOfSupply = p.MaxDaysOfSupply
			}
		case snap.TotalStock == 0:
			snap.DaysOfSupply = 0
		default:
			// stock but no sales velocity: maximally slow-moving, not infinite
			snap.DaysOfSupply = p.MaxDaysOfSupply
		}

		snap.SixtyDayDemand = snap.DailyAvg * 60
		snap.SalesUntilReplenishment = snap.DailyAvg * float64(p.LeadTimeDays)
		snap.UnitsAvailableAtLeadtime = snap.TotalStock - snap.SalesUntilReplenishment

		if snap.UnitsAvailableAtLeadtime > 0 {
			if q := snap.SixtyDayDemand - snap.UnitsAvailableAtLeadtime; q > 0 {
				snap.SuggestedOrderQuantity = q
			}
		} else {
			// stock exhausted before replenishment arrives: order full demand
			snap.SuggestedOrderQuantity = snap.SixtyDayDemand
		}

		snap.InventoryAgeBucket = AgeBucket(snap.DaysOfSupply)
		out = append(out, snap)
	}

	sort.Slice(out, func(i, j int) bool { return out[i].SKU < out[j].SKU })
	return out
}

func stockBySKU(rows []model.StockRow) map[string]float64 {
	m := make(map[string]float64, len(rows))
	for _, r := range rows {
		m[r.SKU] += r.Stock
	}
	return m
}
