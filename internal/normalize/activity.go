package normalize

import (
	"fmt"
	"log"
	"strings"
	"time"

	"SellerLedger/internal/model"
)

// Activity converts the raw activity extract into TransactionLegs.
// Deduction columns (fee, shipping, coupon, taxes) arrive as positive amounts
// and are negated into signed adjustments, so that
// net = transaction_amount + fee + shipping + coupon + taxes holds as stored.
func Activity(rows [][]string, ingestionDate time.Time) ([]model.TransactionLeg, error) {
	if len(rows) == 0 {
		return nil, &model.SchemaMismatchError{Source: "activity", Column: fieldEventTimestamp}
	}
	idx, err := resolveHeader("activity", rows[0], activityLabels, activityRequired)
	if err != nil {
		return nil, err
	}

	legs := make([]model.TransactionLeg, 0, len(rows)-1)
	for n, row := range rows[1:] {
		if isEmptyRow(row) {
			continue
		}
		eventDate, eventClock, ok := splitTimestamp(idx.cell(row, fieldEventTimestamp))
		if !ok {
			log.Printf("[WARN] activity row %d: unparseable timestamp %q, row skipped", n+2, idx.cell(row, fieldEventTimestamp))
			continue
		}
		opID := coerceID(idx.cell(row, fieldOperationID))
		if opID == "" {
			log.Printf("[WARN] activity row %d: empty operation id, row skipped", n+2)
			continue
		}
		leg := model.TransactionLeg{
			EventDate:         eventDate,
			EventTime:         eventClock,
			ItemID:            coerceID(idx.cell(row, fieldItemID)),
			Reason:            idx.cell(row, fieldReason),
			ExternalReference: coerceID(idx.cell(row, fieldExternalReference)),
			SKU:               idx.cell(row, fieldSKU),
			OperationID:       opID,
			Status:            strings.ToLower(idx.cell(row, fieldStatus)),
			StatusDetail:      strings.ToLower(idx.cell(row, fieldStatusDetail)),
			OperationType:     strings.ToLower(idx.cell(row, fieldOperationType)),
			PaymentType:       idx.cell(row, fieldPaymentType),
			OrderID:           coerceID(idx.cell(row, fieldOrderID)),
			PackID:            coerceID(idx.cell(row, fieldPackID)),
			ShipmentStatus:    strings.ToLower(idx.cell(row, fieldShipmentStatus)),
			IngestionDate:     ingestionDate,

			TransactionAmount:      parseAmount(idx.cell(row, fieldTransactionAmount)),
			SaleAmount:             parseAmount(idx.cell(row, fieldSaleAmount)),
			MarketplaceFee:         parseAmount(idx.cell(row, fieldMarketplaceFee)).Neg(),
			ShippingCostBySeller:   parseAmount(idx.cell(row, fieldShippingCost)).Neg(),
			ShippingCostByCustomer: parseAmount(idx.cell(row, fieldShippingByCustomer)).Neg(),
			CouponFee:              parseAmount(idx.cell(row, fieldCouponFee)).Neg(),
			TaxesAmount:            parseAmount(idx.cell(row, fieldTaxesAmount)).Neg(),
			NetReceivedAmount:      parseAmount(idx.cell(row, fieldNetReceivedAmount)),
			AmountRefunded:         parseAmount(idx.cell(row, fieldAmountRefunded)),
		}
		legs = append(legs, leg)
	}
	if len(legs) == 0 {
		return nil, fmt.Errorf("activity extract: no usable data rows")
	}
	return legs, nil
}

func isEmptyRow(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
