package store

import (
	"fmt"
	"os"

	"SellerLedger/internal/model"
)

var consolidatedColumns = []string{
	"order_id", "sku", "reason", "item_id", "external_reference",
	"marketplace", "status", "status_detail", "operation_type",
	"shipment_status", "pack_id",
	"event_date", "ingestion_date", "amount", "transaction_type",
}

// ConsolidatedStore is the long-form export: one CSV row per (event, nonzero
// monetary field).
type ConsolidatedStore struct {
	path string
	rows []model.ConsolidatedRecord
}

func OpenConsolidated(path string) (*ConsolidatedStore, error) {
	s := &ConsolidatedStore{path: path}
	records, err := readCSVFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return s, nil
		}
		return nil, fmt.Errorf("load consolidated: %w", err)
	}
	if len(records) < 2 {
		return s, nil
	}
	cols := headerIndex(records[0])
	for _, rec := range records[1:] {
		get := func(name string) string { return colValue(rec, cols, name) }
		s.rows = append(s.rows, model.ConsolidatedRecord{
			Key: model.EventKey{
				OrderID:           get("order_id"),
				SKU:               get("sku"),
				Reason:            get("reason"),
				ItemID:            get("item_id"),
				ExternalReference: get("external_reference"),
				Marketplace:       get("marketplace"),
				Status:            get("status"),
				StatusDetail:      get("status_detail"),
				OperationType:     get("operation_type"),
				ShipmentStatus:    get("shipment_status"),
				PackID:            get("pack_id"),
			},
			EventDate:       parseDate(get("event_date")),
			IngestionDate:   parseDate(get("ingestion_date")),
			Amount:          parseDec(get("amount")),
			TransactionType: get("transaction_type"),
		})
	}
	return s, nil
}

func (s *ConsolidatedStore) Rows() []model.ConsolidatedRecord {
	return s.rows
}

func (s *ConsolidatedStore) Append(rows []model.ConsolidatedRecord) {
	s.rows = append(s.rows, rows...)
}

func (s *ConsolidatedStore) Save() error {
	records := make([][]string, 0, len(s.rows)+1)
	records = append(records, consolidatedColumns)
	for _, r := range s.rows {
		records = append(records, []string{
			r.Key.OrderID, r.Key.SKU, r.Key.Reason, r.Key.ItemID,
			r.Key.ExternalReference, r.Key.Marketplace, r.Key.Status,
			r.Key.StatusDetail, r.Key.OperationType, r.Key.ShipmentStatus,
			r.Key.PackID,
			formatDate(r.EventDate), formatDate(r.IngestionDate),
			r.Amount.String(), r.TransactionType,
		})
	}
	return writeCSVFile(s.path, records)
}
