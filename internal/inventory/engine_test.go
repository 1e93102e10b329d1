package inventory

import (
	"math"
	"testing"
	"time"

	"SellerLedger/internal/model"
)

func defaultParams() Params {
	return Params{TrailingWindowDays: 30, LeadTimeDays: 20, MaxDaysOfSupply: 365}
}

func saleEvent(sku string, date string, qty float64) model.AggregatedEvent {
	d, err := time.Parse("2006-01-02", date)
	if err != nil {
		panic(err)
	}
	return model.AggregatedEvent{
		Key:       model.EventKey{SKU: sku, OperationType: "sale"},
		EventDate: d,
		Quantity:  qty,
	}
}

func TestAgeBucket(t *testing.T) {
	cases := []struct {
		days float64
		want string
	}{
		{0, BucketExhausted},
		{0.5, BucketWeek},
		{6.9, BucketWeek},
		{7, BucketTwoWeeks},
		{15, BucketMonth},
		{30, BucketTwoMonths},
		{60, BucketQuarter},
		{90, BucketHalfYear},
		{180, BucketOverSixMo},
		{400, BucketOverSixMo},
	}
	for _, c := range cases {
		if got := AgeBucket(c.days); got != c.want {
			t.Errorf("AgeBucket(%v) = %q, want %q", c.days, got, c.want)
		}
	}
}

func TestAgeBucket_NonDecreasing(t *testing.T) {
	order := map[string]int{
		BucketExhausted: 0, BucketWeek: 1, BucketTwoWeeks: 2, BucketMonth: 3,
		BucketTwoMonths: 4, BucketQuarter: 5, BucketHalfYear: 6, BucketOverSixMo: 7,
	}
	prev := -1
	for days := 0.0; days <= 200; days += 0.5 {
		rank := order[AgeBucket(days)]
		if rank < prev {
			t.Fatalf("bucket rank decreased at %v days of supply", days)
		}
		prev = rank
	}
}

func TestCompute_TrailingWindow(t *testing.T) {
	ledger := []model.AggregatedEvent{
		saleEvent("SKU-A", "2024-05-01", 30), // last sale, in window
		saleEvent("SKU-A", "2024-04-15", 30), // in window
		saleEvent("SKU-A", "2024-03-01", 99), // before window start, excluded
	}
	remote := []model.StockRow{{SKU: "SKU-A", Stock: 100}}

	snaps := Compute(ledger, remote, nil, defaultParams())
	if len(snaps) != 1 {
		t.Fatalf("expected 1 snapshot, got %d", len(snaps))
	}
	s := snaps[0]
	if s.UnitsSoldTrailing != 60 {
		t.Errorf("units sold trailing = %v, want 60", s.UnitsSoldTrailing)
	}
	if s.DailyAvg != 2 {
		t.Errorf("daily avg = %v, want 2", s.DailyAvg)
	}
	if s.DaysOfSupply != 50 {
		t.Errorf("days of supply = %v, want 50", s.DaysOfSupply)
	}
	if s.InventoryAgeBucket != BucketTwoMonths {
		t.Errorf("bucket = %q, want %q", s.InventoryAgeBucket, BucketTwoMonths)
	}
	if !s.DateLastSale.Equal(time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("date of last sale = %s", s.DateLastSale)
	}
}

func TestCompute_SupplyEdgeCases(t *testing.T) {
	p := defaultParams()

	t.Run("no stock no sales", func(t *testing.T) {
		snaps := Compute([]model.AggregatedEvent{saleEvent("SKU-X", "2023-01-01", 0)}, nil, nil, p)
		s := snaps[0]
		if s.DaysOfSupply != 0 || s.InventoryAgeBucket != BucketExhausted {
			t.Errorf("supply = %v bucket = %q, want 0 / exhausted", s.DaysOfSupply, s.InventoryAgeBucket)
		}
	})

	t.Run("stock without velocity caps at max", func(t *testing.T) {
		snaps := Compute(nil, []model.StockRow{{SKU: "SKU-Y", Stock: 10}}, nil, p)
		s := snaps[0]
		if s.DaysOfSupply != p.MaxDaysOfSupply {
			t.Errorf("supply = %v, want cap %v", s.DaysOfSupply, p.MaxDaysOfSupply)
		}
		if s.SuggestedOrderQuantity != 0 {
			t.Errorf("no velocity must not suggest an order, got %v", s.SuggestedOrderQuantity)
		}
	})

	t.Run("high stock low velocity caps at max", func(t *testing.T) {
		ledger := []model.AggregatedEvent{saleEvent("SKU-Z", "2024-05-01", 1)}
		snaps := Compute(ledger, []model.StockRow{{SKU: "SKU-Z", Stock: 100000}}, nil, p)
		if got := snaps[0].DaysOfSupply; got != p.MaxDaysOfSupply {
			t.Errorf("supply = %v, want cap %v", got, p.MaxDaysOfSupply)
		}
	})
}

func TestCompute_SuggestedOrder(t *testing.T) {
	// 3/day velocity: 90 trailing units over the 30d window
	ledger := []model.AggregatedEvent{saleEvent("SKU-A", "2024-05-01", 90)}
	p := defaultParams()

	t.Run("stock survives lead time", func(t *testing.T) {
		snaps := Compute(ledger, []model.StockRow{{SKU: "SKU-A", Stock: 100}}, nil, p)
		s := snaps[0]
		// available at leadtime: 100 - 3*20 = 40; demand 180; order 140
		if s.UnitsAvailableAtLeadtime != 40 {
			t.Errorf("units at leadtime = %v, want 40", s.UnitsAvailableAtLeadtime)
		}
		if s.SuggestedOrderQuantity != 140 {
			t.Errorf("suggested order = %v, want 140", s.SuggestedOrderQuantity)
		}
	})

	t.Run("stock exhausted before replenishment", func(t *testing.T) {
		snaps := Compute(ledger, []model.StockRow{{SKU: "SKU-A", Stock: 30}}, nil, p)
		s := snaps[0]
		if s.SuggestedOrderQuantity != s.SixtyDayDemand {
			t.Errorf("suggested order = %v, want full demand %v", s.SuggestedOrderQuantity, s.SixtyDayDemand)
		}
	})

	t.Run("overstocked suggests nothing", func(t *testing.T) {
		snaps := Compute(ledger, []model.StockRow{{SKU: "SKU-A", Stock: 1000}}, nil, p)
		if got := snaps[0].SuggestedOrderQuantity; got != 0 {
			t.Errorf("suggested order = %v, want 0", got)
		}
	})
}

func TestCompute_UnionAndOrder(t *testing.T) {
	ledger := []model.AggregatedEvent{saleEvent("SKU-C", "2024-05-01", 5)}
	remote := []model.StockRow{{SKU: "SKU-A", Stock: 3}}
	local := []model.StockRow{{SKU: "SKU-B", Stock: 4}, {SKU: "SKU-A", Stock: 1}}

	snaps := Compute(ledger, remote, local, defaultParams())
	if len(snaps) != 3 {
		t.Fatalf("expected union of 3 SKUs, got %d", len(snaps))
	}
	for i, want := range []string{"SKU-A", "SKU-B", "SKU-C"} {
		if snaps[i].SKU != want {
			t.Fatalf("position %d: %q, want %q (sorted by SKU)", i, snaps[i].SKU, want)
		}
	}
	if snaps[0].StockRemote != 3 || snaps[0].StockLocal != 1 || snaps[0].TotalStock != 4 {
		t.Errorf("SKU-A stock merge: %+v", snaps[0])
	}
	if want := 5.0 / 30.0; math.Abs(snaps[2].DailyAvg-want) > 1e-9 {
		t.Errorf("SKU-C daily avg = %v, want %v", snaps[2].DailyAvg, want)
	}
}
