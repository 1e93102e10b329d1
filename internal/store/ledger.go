// Package store owns the persisted tabular state: the historical ledger, the
// consolidated long-form export, the rejected-sales archive and the
// replenishment report. A run loads state once at start and rewrites it
// atomically once at end; nothing is written mid-run.
package store

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"SellerLedger/internal/model"
)

const dateLayout = "2006-01-02"

var ledgerColumns = []string{
	"order_id", "sku", "reason", "item_id", "external_reference",
	"marketplace", "status", "status_detail", "operation_type",
	"shipment_status", "pack_id",
	model.ColTransactionAmount, model.ColSaleAmount, model.ColMarketplaceFee,
	model.ColShippingCostBySeller, model.ColShippingCostByCustomer,
	model.ColCouponFee, model.ColTaxesAmount, model.ColNetReceivedAmount,
	model.ColAmountRefunded,
	"quantity", "event_date", "event_time", "ingestion_date",
	"payment_types", "operation_ids",
}

// legacyAliases maps column names from the pre-consolidation ledger era onto
// the canonical schema, so an older persisted ledger loads without a manual
// migration. Columns the old era lacked read as zero/empty.
var legacyAliases = map[string]string{
	"shipping_cost": model.ColShippingCostBySeller,
	"payment_type":  "payment_types",
	"operation_id":  "operation_ids",
	"date":          "event_date",
}

// LedgerStore is the append-only historical ledger backed by one CSV table.
type LedgerStore struct {
	path string
	rows []model.AggregatedEvent
}

// OpenLedger loads the historical ledger, or initializes an empty one on the
// first run.
func OpenLedger(path string) (*LedgerStore, error) {
	s := &LedgerStore{path: path}
	records, err := readCSVFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return s, nil
		}
		return nil, fmt.Errorf("load ledger: %w", err)
	}
	if len(records) < 2 {
		return s, nil
	}
	cols := headerIndexWithAliases(records[0])
	for _, rec := range records[1:] {
		s.rows = append(s.rows, ledgerRowFromRecord(rec, cols))
	}
	return s, nil
}

// Rows returns the persisted events plus anything appended this run.
func (s *LedgerStore) Rows() []model.AggregatedEvent {
	return s.rows
}

// OperationIDs returns every operation id ledgered so far, splitting the
// comma-joined membership lists. This feeds the deduplication gate.
func (s *LedgerStore) OperationIDs() []string {
	var ids []string
	for _, ev := range s.rows {
		ids = append(ids, ev.OperationIDList()...)
	}
	return ids
}

// Append adds aggregated rows to the in-memory ledger. Pure append: existing
// rows are never updated.
func (s *LedgerStore) Append(events []model.AggregatedEvent) {
	s.rows = append(s.rows, events...)
}

// Save rewrites the ledger file atomically (temp file + rename), so a failed
// run can never leave a partially appended ledger behind.
func (s *LedgerStore) Save() error {
	records := make([][]string, 0, len(s.rows)+1)
	records = append(records, ledgerColumns)
	for _, ev := range s.rows {
		records = append(records, ledgerRowToRecord(ev))
	}
	return writeCSVFile(s.path, records)
}

func ledgerRowToRecord(ev model.AggregatedEvent) []string {
	return []string{
		ev.Key.OrderID, ev.Key.SKU, ev.Key.Reason, ev.Key.ItemID,
		ev.Key.ExternalReference, ev.Key.Marketplace, ev.Key.Status,
		ev.Key.StatusDetail, ev.Key.OperationType, ev.Key.ShipmentStatus,
		ev.Key.PackID,
		ev.TransactionAmount.String(), ev.SaleAmount.String(),
		ev.MarketplaceFee.String(), ev.ShippingCostBySeller.String(),
		ev.ShippingCostByCustomer.String(), ev.CouponFee.String(),
		ev.TaxesAmount.String(), ev.NetReceivedAmount.String(),
		ev.AmountRefunded.String(),
		formatFloat(ev.Quantity), formatDate(ev.EventDate), ev.EventTime,
		formatDate(ev.IngestionDate), ev.PaymentTypes, ev.OperationIDs,
	}
}

func ledgerRowFromRecord(rec []string, cols map[string]int) model.AggregatedEvent {
	get := func(name string) string { return colValue(rec, cols, name) }
	return model.AggregatedEvent{
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
		TransactionAmount:      parseDec(get(model.ColTransactionAmount)),
		SaleAmount:             parseDec(get(model.ColSaleAmount)),
		MarketplaceFee:         parseDec(get(model.ColMarketplaceFee)),
		ShippingCostBySeller:   parseDec(get(model.ColShippingCostBySeller)),
		ShippingCostByCustomer: parseDec(get(model.ColShippingCostByCustomer)),
		CouponFee:              parseDec(get(model.ColCouponFee)),
		TaxesAmount:            parseDec(get(model.ColTaxesAmount)),
		NetReceivedAmount:      parseDec(get(model.ColNetReceivedAmount)),
		AmountRefunded:         parseDec(get(model.ColAmountRefunded)),
		Quantity:               parseFloat(get("quantity")),
		EventDate:              parseDate(get("event_date")),
		EventTime:              get("event_time"),
		IngestionDate:          parseDate(get("ingestion_date")),
		PaymentTypes:           get("payment_types"),
		OperationIDs:           get("operation_ids"),
	}
}

// ------------------------- shared helpers -------------------------

func headerIndex(header []string) map[string]int {
	cols := make(map[string]int, len(header))
	for i, h := range header {
		name := strings.TrimSpace(h)
		if _, seen := cols[name]; !seen {
			cols[name] = i
		}
	}
	return cols
}

// headerIndexWithAliases additionally folds legacy ledger column names onto
// the canonical schema. Only the historical ledger ever carried the old
// names; the other stores use it for nothing and must not ("operation_id" is
// a canonical column of the rejected archive, not an alias).
func headerIndexWithAliases(header []string) map[string]int {
	cols := make(map[string]int, len(header))
	for i, h := range header {
		name := strings.TrimSpace(h)
		if canonical, ok := legacyAliases[name]; ok {
			name = canonical
		}
		if _, seen := cols[name]; !seen {
			cols[name] = i
		}
	}
	return cols
}

func colValue(rec []string, cols map[string]int, name string) string {
	i, ok := cols[name]
	if !ok || i >= len(rec) {
		return ""
	}
	return rec[i]
}

func readCSVFile(path string) ([][]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	return r.ReadAll()
}

func writeCSVFile(path string, records [][]string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("create state dir: %w", err)
	}
	tmp, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".tmp*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	w := csv.NewWriter(tmp)
	if err := w.WriteAll(records); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("write %s: %w", path, err)
	}
	w.Flush()
	if err := w.Error(); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("flush %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return err
	}
	return os.Rename(tmp.Name(), path)
}

func parseDec(s string) decimal.Decimal {
	if s == "" {
		return decimal.Zero
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero
	}
	return d
}

func parseFloat(s string) float64 {
	f, _ := strconv.ParseFloat(s, 64)
	return f
}

func parseDate(s string) time.Time {
	t, _ := time.Parse(dateLayout, s)
	return t
}

func formatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(dateLayout)
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
