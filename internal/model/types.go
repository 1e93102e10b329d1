package model

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// ------------------------- Canonical records -------------------------

// Monetary sign convention: marketplace fee, shipping, coupon and taxes are
// stored as signed adjustments (negative for deductions), so that
// NetReceivedAmount = TransactionAmount + MarketplaceFee + ShippingCostBySeller
// + ShippingCostByCustomer + CouponFee + TaxesAmount holds for a settled leg.

// TransactionLeg is one raw financial event for an order or a shipment,
// normalized from the activity extract.
type TransactionLeg struct {
	EventDate         time.Time `json:"event_date"`
	EventTime         string    `json:"event_time"` // clock part, "15:04:05"
	ItemID            string    `json:"item_id"`
	Reason            string    `json:"reason"`
	ExternalReference string    `json:"external_reference"`
	SKU               string    `json:"sku"`
	OperationID       string    `json:"operation_id"`
	Status            string    `json:"status"`
	StatusDetail      string    `json:"status_detail"`
	OperationType     string    `json:"operation_type"` // "sale", "shipping", ...
	PaymentType       string    `json:"payment_type"`
	OrderID           string    `json:"order_id"`
	PackID            string    `json:"pack_id"`
	ShipmentStatus    string    `json:"shipment_status"`
	IngestionDate     time.Time `json:"ingestion_date"`

	TransactionAmount      decimal.Decimal `json:"transaction_amount"`
	SaleAmount             decimal.Decimal `json:"sale_amount"`
	MarketplaceFee         decimal.Decimal `json:"marketplace_fee"`
	ShippingCostBySeller   decimal.Decimal `json:"shipping_cost_by_seller"`
	ShippingCostByCustomer decimal.Decimal `json:"shipping_cost_by_customer"`
	CouponFee              decimal.Decimal `json:"coupon_fee"`
	TaxesAmount            decimal.Decimal `json:"taxes_amount"`
	NetReceivedAmount      decimal.Decimal `json:"net_received_amount"`
	AmountRefunded         decimal.Decimal `json:"amount_refunded"`

	// Enriched from the units-sold source.
	Quantity    float64 `json:"quantity"`
	Marketplace string  `json:"marketplace"`
}

const (
	OperationTypeSale     = "sale"
	OperationTypeShipping = "shipping"
)

// SettlementRecord carries the payment processor's authoritative figures for
// one operation.
type SettlementRecord struct {
	SourceID            string          `json:"source_id"` // joins TransactionLeg.OperationID
	TransactionType     string          `json:"transaction_type"`
	FeeAmount           decimal.Decimal `json:"fee_amount"`
	SettlementNetAmount decimal.Decimal `json:"settlement_net_amount"`
	TaxesAmount         decimal.Decimal `json:"taxes_amount"`
	PackID              string          `json:"pack_id"`
	IngestionDate       time.Time       `json:"ingestion_date"`
}

// IsRefundVariant reports whether the settlement row describes a refund and
// must not be used as a fee source.
func (s SettlementRecord) IsRefundVariant() bool {
	switch strings.ToUpper(strings.TrimSpace(s.TransactionType)) {
	case "REFUND", "REFUND_SHIPPING":
		return true
	}
	return false
}

// SalesRecord is one row per order (or per pack) from the units-sold report.
type SalesRecord struct {
	OrderNumber   string    `json:"order_number"`
	ListingID     string    `json:"listing_id"`
	Units         float64   `json:"units"`
	SalesChannel  string    `json:"sales_channel"`
	Title         string    `json:"title"`
	Buyer         string    `json:"buyer"`
	IngestionDate time.Time `json:"ingestion_date"`
}

// StockRow is one SKU's stock figure from one snapshot file.
type StockRow struct {
	SKU   string  `json:"sku"`
	Stock float64 `json:"stock"`
}

// ------------------------- Aggregated ledger -------------------------

// EventKey identifies one commercial event in the aggregated ledger.
type EventKey struct {
	OrderID           string `json:"order_id"`
	SKU               string `json:"sku"`
	Reason            string `json:"reason"`
	ItemID            string `json:"item_id"`
	ExternalReference string `json:"external_reference"`
	Marketplace       string `json:"marketplace"`
	Status            string `json:"status"`
	StatusDetail      string `json:"status_detail"`
	OperationType     string `json:"operation_type"`
	ShipmentStatus    string `json:"shipment_status"`
	PackID            string `json:"pack_id"`
}

// AggregatedEvent is one ledger row per EventKey: the monetary sums over the
// raw legs that share the key, with traceability back to them.
type AggregatedEvent struct {
	Key EventKey `json:"key"`

	TransactionAmount      decimal.Decimal `json:"transaction_amount"`
	SaleAmount             decimal.Decimal `json:"sale_amount"`
	MarketplaceFee         decimal.Decimal `json:"marketplace_fee"`
	ShippingCostBySeller   decimal.Decimal `json:"shipping_cost_by_seller"`
	ShippingCostByCustomer decimal.Decimal `json:"shipping_cost_by_customer"`
	CouponFee              decimal.Decimal `json:"coupon_fee"`
	TaxesAmount            decimal.Decimal `json:"taxes_amount"`
	NetReceivedAmount      decimal.Decimal `json:"net_received_amount"`
	AmountRefunded         decimal.Decimal `json:"amount_refunded"`

	Quantity      float64   `json:"quantity"` // mean over contributing legs
	EventDate     time.Time `json:"event_date"`
	EventTime     string    `json:"event_time"`
	IngestionDate time.Time `json:"ingestion_date"`
	PaymentTypes  string    `json:"payment_types"` // comma-joined
	OperationIDs  string    `json:"operation_ids"` // comma-joined
}

// Monetary column names shared by the ledger schema and the consolidated
// pivot. Order is the persisted column order.
const (
	ColTransactionAmount      = "transaction_amount"
	ColSaleAmount             = "sale_amount"
	ColMarketplaceFee         = "marketplace_fee"
	ColShippingCostBySeller   = "shipping_cost_by_seller"
	ColShippingCostByCustomer = "shipping_cost_by_customer"
	ColCouponFee              = "coupon_fee"
	ColTaxesAmount            = "taxes_amount"
	ColNetReceivedAmount      = "net_received_amount"
	ColAmountRefunded         = "amount_refunded"
)

// MonetaryField is one named amount of an AggregatedEvent.
type MonetaryField struct {
	Name   string
	Amount decimal.Decimal
}

// MonetaryFields returns the event's amounts in persisted column order.
func (e AggregatedEvent) MonetaryFields() []MonetaryField {
	return []MonetaryField{
		{ColTransactionAmount, e.TransactionAmount},
		{ColSaleAmount, e.SaleAmount},
		{ColMarketplaceFee, e.MarketplaceFee},
		{ColShippingCostBySeller, e.ShippingCostBySeller},
		{ColShippingCostByCustomer, e.ShippingCostByCustomer},
		{ColCouponFee, e.CouponFee},
		{ColTaxesAmount, e.TaxesAmount},
		{ColNetReceivedAmount, e.NetReceivedAmount},
		{ColAmountRefunded, e.AmountRefunded},
	}
}

// OperationIDList splits the comma-joined OperationIDs back into members.
func (e AggregatedEvent) OperationIDList() []string {
	if e.OperationIDs == "" {
		return nil
	}
	parts := strings.Split(e.OperationIDs, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// ConsolidatedRecord is the long-form projection of one nonzero monetary
// field of one AggregatedEvent.
type ConsolidatedRecord struct {
	Key             EventKey        `json:"key"`
	EventDate       time.Time       `json:"event_date"`
	IngestionDate   time.Time       `json:"ingestion_date"`
	Amount          decimal.Decimal `json:"amount"`
	TransactionType string          `json:"transaction_type"` // monetary column name
}

// ------------------------- Inventory -------------------------

// InventorySnapshot is the per-SKU replenishment report row, recomputed in
// full on every run.
type InventorySnapshot struct {
	SKU                      string    `json:"sku"`
	StockRemote              float64   `json:"stock_remote"`
	StockLocal               float64   `json:"stock_local"`
	TotalStock               float64   `json:"total_stock"`
	UnitsSoldTrailing        float64   `json:"units_sold_trailing"`
	DateLastSale             time.Time `json:"date_last_sale"`
	DailyAvg                 float64   `json:"daily_avg"`
	DaysOfSupply             float64   `json:"days_of_supply"`
	SixtyDayDemand           float64   `json:"sixty_day_demand"`
	SalesUntilReplenishment  float64   `json:"sales_until_replenishment"`
	UnitsAvailableAtLeadtime float64   `json:"units_available_at_leadtime"`
	SuggestedOrderQuantity   float64   `json:"suggested_order_quantity"`
	InventoryAgeBucket       string    `json:"inventory_age_bucket"`
}
