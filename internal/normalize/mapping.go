// Package normalize maps each raw extract's native columns onto the
// canonical record types. Column mapping is a declared table per source
// version ({source label: canonical field}), so schema drift in the
// marketplace exports is an edit here, not a parsing heuristic.
package normalize

import (
	"strings"

	"SellerLedger/internal/model"
)

// Canonical field names, used as mapping targets and in schema errors.
const (
	fieldEventTimestamp      = "event_timestamp"
	fieldOperationID         = "operation_id"
	fieldReason              = "reason"
	fieldExternalReference   = "external_reference"
	fieldSKU                 = "sku"
	fieldItemID              = "item_id"
	fieldStatus              = "status"
	fieldStatusDetail        = "status_detail"
	fieldOperationType       = "operation_type"
	fieldTransactionAmount   = "transaction_amount"
	fieldSaleAmount          = "sale_amount"
	fieldMarketplaceFee      = "marketplace_fee"
	fieldShippingCost        = "shipping_cost"
	fieldShippingByCustomer  = "shipping_cost_by_customer"
	fieldCouponFee           = "coupon_fee"
	fieldTaxesAmount         = "taxes_amount"
	fieldNetReceivedAmount   = "net_received_amount"
	fieldPaymentType         = "payment_type"
	fieldAmountRefunded      = "amount_refunded"
	fieldOrderID             = "order_id"
	fieldPackID              = "pack_id"
	fieldShipmentStatus      = "shipment_status"
	fieldSourceID            = "source_id"
	fieldTransactionType     = "transaction_type"
	fieldFeeAmount           = "fee_amount"
	fieldSettlementNetAmount = "settlement_net_amount"
	fieldOrderNumber         = "order_number"
	fieldListingID           = "listing_id"
	fieldUnits               = "units"
	fieldSalesChannel        = "sales_channel"
	fieldTitle               = "title"
	fieldBuyer               = "buyer"
	fieldStock               = "stock"
)

// activityLabels: Mercado Pago activities export (machine-named columns).
var activityLabels = map[string]string{
	"DATE":                      fieldEventTimestamp,
	"OPERATION_ID":              fieldOperationID,
	"REASON":                    fieldReason,
	"EXTERNAL_REFERENCE":        fieldExternalReference,
	"SKU":                       fieldSKU,
	"ITEM_ID":                   fieldItemID,
	"STATUS":                    fieldStatus,
	"STATUS_DETAIL":             fieldStatusDetail,
	"OPERATION_TYPE":            fieldOperationType,
	"TRANSACTION_AMOUNT":        fieldTransactionAmount,
	"SALE_AMOUNT":               fieldSaleAmount,
	"MARKETPLACE_FEE":           fieldMarketplaceFee,
	"SHIPPING_COST":             fieldShippingCost,
	"SHIPPING_COST_BY_CUSTOMER": fieldShippingByCustomer,
	"COUPON_FEE":                fieldCouponFee,
	"TAXES_AMOUNT":              fieldTaxesAmount,
	"NET_RECEIVED_AMOUNT":       fieldNetReceivedAmount,
	"PAYMENT_TYPE":              fieldPaymentType,
	"AMOUNT_REFUNDED":           fieldAmountRefunded,
	"ORDER_ID":                  fieldOrderID,
	"PACK_ID":                   fieldPackID,
	"SHIPMENT_STATUS":           fieldShipmentStatus,
}

var activityRequired = []string{
	fieldEventTimestamp,
	fieldOperationID,
	fieldExternalReference,
	fieldOperationType,
	fieldTransactionAmount,
	fieldMarketplaceFee,
	fieldNetReceivedAmount,
	fieldOrderID,
}

// settlementLabels: payment processor settlement report.
var settlementLabels = map[string]string{
	"SOURCE_ID":             fieldSourceID,
	"TRANSACTION_TYPE":      fieldTransactionType,
	"FEE_AMOUNT":            fieldFeeAmount,
	"SETTLEMENT_NET_AMOUNT": fieldSettlementNetAmount,
	"TAXES_AMOUNT":          fieldTaxesAmount,
	"PACK_ID":               fieldPackID,
}

var settlementRequired = []string{
	fieldSourceID,
	fieldTransactionType,
	fieldFeeAmount,
	fieldSettlementNetAmount,
}

// salesLabels: units-sold report. The export uses human Spanish labels with
// the canonical name in parentheses; both the full label and the bare human
// label are declared so a re-export without the suffix still maps.
var salesLabels = map[string]string{
	"# de venta (order_number)":        fieldOrderNumber,
	"# de venta":                       fieldOrderNumber,
	"Publicación (listing_id)":         fieldListingID,
	"Publicación":                      fieldListingID,
	"Unidades (units)":                 fieldUnits,
	"Unidades":                         fieldUnits,
	"Canal de venta (sales_channel)":   fieldSalesChannel,
	"Canal de venta":                   fieldSalesChannel,
	"Título de la publicación (title)": fieldTitle,
	"Título de la publicación":         fieldTitle,
	"Comprador (buyer)":                fieldBuyer,
	"Comprador":                        fieldBuyer,
}

var salesRequired = []string{
	fieldOrderNumber,
	fieldListingID,
	fieldUnits,
	fieldSalesChannel,
}

// stockLabels: stock snapshot exports (remote fulfillment and local bodega
// share one layout).
var stockLabels = map[string]string{
	"SKU":                  fieldSKU,
	"Stock":                fieldStock,
	"Unidades disponibles": fieldStock,
}

var stockRequired = []string{fieldSKU, fieldStock}

// columnIndex resolves canonical field -> column position for one header row.
type columnIndex map[string]int

// resolveHeader maps a header row through a label table and verifies the
// required canonical fields are all present.
func resolveHeader(source string, header []string, labels map[string]string, required []string) (columnIndex, error) {
	idx := make(columnIndex, len(header))
	for col, cell := range header {
		label := strings.TrimSpace(cell)
		canonical, ok := labels[label]
		if !ok {
			continue
		}
		if _, seen := idx[canonical]; !seen {
			idx[canonical] = col
		}
	}
	for _, field := range required {
		if _, ok := idx[field]; !ok {
			return nil, &model.SchemaMismatchError{Source: source, Column: field}
		}
	}
	return idx, nil
}

// cell returns the trimmed value of one canonical field in a data row, or ""
// when the column is absent or the row is short.
func (ci columnIndex) cell(row []string, field string) string {
	col, ok := ci[field]
	if !ok || col >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[col])
}

// SalesHeaderLabels exposes the sales label table for header probing (the
// units-sold report pads the sheet top with title rows).
func SalesHeaderLabels() map[string]string {
	return salesLabels
}
