package store

import (
	"fmt"
	"os"

	"SellerLedger/internal/model"
)

var rejectedColumns = []string{
	"operation_id", "order_id", "sku", "item_id", "external_reference",
	"reason", "status", "status_detail", "operation_type", "shipment_status",
	"pack_id", "payment_type",
	model.ColTransactionAmount, model.ColMarketplaceFee,
	model.ColNetReceivedAmount, model.ColAmountRefunded,
	"event_date", "event_time", "ingestion_date",
}

// RejectedStore accumulates legs with excluded statuses (cancelled, rejected,
// pending) removed from the main ledger before aggregation.
type RejectedStore struct {
	path string
	rows []model.TransactionLeg
}

func OpenRejected(path string) (*RejectedStore, error) {
	s := &RejectedStore{path: path}
	records, err := readCSVFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return s, nil
		}
		return nil, fmt.Errorf("load rejected archive: %w", err)
	}
	if len(records) < 2 {
		return s, nil
	}
	cols := headerIndex(records[0])
	for _, rec := range records[1:] {
		get := func(name string) string { return colValue(rec, cols, name) }
		s.rows = append(s.rows, model.TransactionLeg{
			OperationID:       get("operation_id"),
			OrderID:           get("order_id"),
			SKU:               get("sku"),
			ItemID:            get("item_id"),
			ExternalReference: get("external_reference"),
			Reason:            get("reason"),
			Status:            get("status"),
			StatusDetail:      get("status_detail"),
			OperationType:     get("operation_type"),
			ShipmentStatus:    get("shipment_status"),
			PackID:            get("pack_id"),
			PaymentType:       get("payment_type"),
			TransactionAmount: parseDec(get(model.ColTransactionAmount)),
			MarketplaceFee:    parseDec(get(model.ColMarketplaceFee)),
			NetReceivedAmount: parseDec(get(model.ColNetReceivedAmount)),
			AmountRefunded:    parseDec(get(model.ColAmountRefunded)),
			EventDate:         parseDate(get("event_date")),
			EventTime:         get("event_time"),
			IngestionDate:     parseDate(get("ingestion_date")),
		})
	}
	return s, nil
}

func (s *RejectedStore) Rows() []model.TransactionLeg {
	return s.rows
}

// OperationIDs returns the operation ids already archived. Excluded legs
// never reach the ledger, so the dedupe gate needs this set too.
func (s *RejectedStore) OperationIDs() []string {
	var ids []string
	for _, leg := range s.rows {
		if leg.OperationID != "" {
			ids = append(ids, leg.OperationID)
		}
	}
	return ids
}

func (s *RejectedStore) Append(legs []model.TransactionLeg) {
	s.rows = append(s.rows, legs...)
}

func (s *RejectedStore) Save() error {
	records := make([][]string, 0, len(s.rows)+1)
	records = append(records, rejectedColumns)
	for _, leg := range s.rows {
		records = append(records, []string{
			leg.OperationID, leg.OrderID, leg.SKU, leg.ItemID,
			leg.ExternalReference, leg.Reason, leg.Status, leg.StatusDetail,
			leg.OperationType, leg.ShipmentStatus, leg.PackID, leg.PaymentType,
			leg.TransactionAmount.String(), leg.MarketplaceFee.String(),
			leg.NetReceivedAmount.String(), leg.AmountRefunded.String(),
			formatDate(leg.EventDate), leg.EventTime, formatDate(leg.IngestionDate),
		})
	}
	return writeCSVFile(s.path, records)
}
