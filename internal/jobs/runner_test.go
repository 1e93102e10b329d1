package jobs

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/shopspring/decimal"

	"SellerLedger/internal/config"
	"SellerLedger/internal/store"
)

func testConfig(t *testing.T) config.Config {
	t.Helper()
	base := t.TempDir()
	cfg := config.Default()
	cfg.Paths.InputDir = filepath.Join(base, "in")
	cfg.Paths.ArchiveDir = filepath.Join(base, "archive")
	cfg.Paths.StateDir = filepath.Join(base, "state")
	cfg.Paths.ReportDir = filepath.Join(base, "reports")
	if err := os.MkdirAll(cfg.Paths.InputDir, 0755); err != nil {
		t.Fatal(err)
	}
	return cfg
}

func writeInput(t *testing.T, cfg config.Config, name, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(cfg.Paths.InputDir, name), []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
}

func seedInputs(t *testing.T, cfg config.Config) {
	writeInput(t, cfg, "activities-collection-2024-05-03.csv",
		"DATE,OPERATION_ID,SKU,ITEM_ID,EXTERNAL_REFERENCE,STATUS,OPERATION_TYPE,TRANSACTION_AMOUNT,MARKETPLACE_FEE,NET_RECEIVED_AMOUNT,AMOUNT_REFUNDED,ORDER_ID\n"+
			"2024-05-02 10:30:00,op1,SKU-A,MLA1,ref1,approved,sale,100,0,0,0,o1\n"+
			"2024-05-02 10:31:00,op2,,,ref1,approved,shipping,12,0,0,0,o1\n")
	writeInput(t, cfg, "settlement-report-2024-05-03.csv",
		"SOURCE_ID,TRANSACTION_TYPE,FEE_AMOUNT,SETTLEMENT_NET_AMOUNT\n"+
			"op1,SETTLEMENT,10,85\n")
	writeInput(t, cfg, "Ventas_CO_03-05-2024.csv",
		"# de venta (order_number),Publicación (listing_id),Unidades (units),Canal de venta (sales_channel)\n"+
			"o1,MLA1,2,Mercado Libre\n")
	writeInput(t, cfg, "Stock_general_Full_20240503.csv", "SKU,Stock\nSKU-A,100\n")
	writeInput(t, cfg, "Stock_local_20240503.csv", "SKU,Stock\nSKU-A,20\n")
}

func TestRunner_FullRun(t *testing.T) {
	cfg := testConfig(t)
	seedInputs(t, cfg)

	sum, err := NewRunner(cfg).Run()
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if !sum.Reconciled {
		t.Fatal("run did not reconcile")
	}
	if sum.NewLedgerRows != 1 {
		t.Errorf("new ledger rows = %d, want 1", sum.NewLedgerRows)
	}
	// transaction_amount, marketplace_fee, shipping_cost_by_seller, net
	if sum.NewLongRows != 4 {
		t.Errorf("new long rows = %d, want 4", sum.NewLongRows)
	}
	if sum.RejectedRows != 0 || sum.OrphanShipping != 0 {
		t.Errorf("rejected = %d orphans = %d, want 0/0", sum.RejectedRows, sum.OrphanShipping)
	}
	if sum.InventoryRows != 1 {
		t.Errorf("inventory rows = %d, want 1", sum.InventoryRows)
	}
	if _, err := os.Stat(sum.ReportPath); err != nil {
		t.Errorf("replenishment report missing: %v", err)
	}

	ledger, err := store.OpenLedger(filepath.Join(cfg.Paths.StateDir, "historical_ledger.csv"))
	if err != nil {
		t.Fatalf("reload ledger: %v", err)
	}
	rows := ledger.Rows()
	if len(rows) != 1 {
		t.Fatalf("persisted ledger rows = %d, want 1", len(rows))
	}
	ev := rows[0]
	if !ev.MarketplaceFee.Equal(decimal.RequireFromString("-10")) {
		t.Errorf("fee = %s, want -10 (repaired from settlement)", ev.MarketplaceFee)
	}
	if !ev.ShippingCostBySeller.Equal(decimal.RequireFromString("-12")) {
		t.Errorf("shipping = %s, want -12 (absorbed shipping leg)", ev.ShippingCostBySeller)
	}
	if !ev.NetReceivedAmount.Equal(decimal.RequireFromString("73")) {
		t.Errorf("net = %s, want 73", ev.NetReceivedAmount)
	}
	if ev.Quantity != 2 || ev.Key.Marketplace != "Mercado Libre" {
		t.Errorf("enrichment: quantity=%v marketplace=%q", ev.Quantity, ev.Key.Marketplace)
	}

	// processed extracts moved out of the input dir
	left, err := os.ReadDir(cfg.Paths.InputDir)
	if err != nil {
		t.Fatal(err)
	}
	if len(left) != 0 {
		t.Errorf("input dir still holds %d files after a successful run", len(left))
	}
	archived, err := os.ReadDir(cfg.Paths.ArchiveDir)
	if err != nil {
		t.Fatal(err)
	}
	if len(archived) != 5 {
		t.Errorf("archived files = %d, want 5", len(archived))
	}
}

func TestRunner_SecondRunIsNoOp(t *testing.T) {
	cfg := testConfig(t)
	seedInputs(t, cfg)

	if _, err := NewRunner(cfg).Run(); err != nil {
		t.Fatalf("first run: %v", err)
	}

	// empty input dir: reconciliation and inventory are skipped, not fatal
	sum, err := NewRunner(cfg).Run()
	if err != nil {
		t.Fatalf("second run: %v", err)
	}
	if sum.Reconciled || sum.NewLedgerRows != 0 {
		t.Errorf("second run changed the ledger: %+v", sum)
	}

	ledger, err := store.OpenLedger(filepath.Join(cfg.Paths.StateDir, "historical_ledger.csv"))
	if err != nil {
		t.Fatal(err)
	}
	if len(ledger.Rows()) != 1 {
		t.Errorf("ledger rows = %d, want 1", len(ledger.Rows()))
	}
}

func TestRunner_ReIngestKeepsRejectedArchiveStable(t *testing.T) {
	cfg := testConfig(t)
	seed := func() {
		writeInput(t, cfg, "activities-collection-2024-05-03.csv",
			"DATE,OPERATION_ID,SKU,ITEM_ID,EXTERNAL_REFERENCE,STATUS,OPERATION_TYPE,TRANSACTION_AMOUNT,MARKETPLACE_FEE,NET_RECEIVED_AMOUNT,AMOUNT_REFUNDED,ORDER_ID\n"+
				"2024-05-02 10:30:00,op1,SKU-A,MLA1,ref1,approved,sale,100,10,90,0,o1\n"+
				"2024-05-02 11:00:00,op9,SKU-B,MLA2,ref9,cancelled,sale,40,0,0,0,o9\n")
		writeInput(t, cfg, "settlement-report-2024-05-03.csv",
			"SOURCE_ID,TRANSACTION_TYPE,FEE_AMOUNT,SETTLEMENT_NET_AMOUNT\nop1,SETTLEMENT,10,90\n")
		writeInput(t, cfg, "Ventas_CO_03-05-2024.csv",
			"# de venta (order_number),Publicación (listing_id),Unidades (units),Canal de venta (sales_channel)\n"+
				"o1,MLA1,1,Mercado Libre\n")
		writeInput(t, cfg, "Stock_general_Full_20240503.csv", "SKU,Stock\nSKU-A,100\n")
		writeInput(t, cfg, "Stock_local_20240503.csv", "SKU,Stock\nSKU-A,20\n")
	}

	seed()
	sum, err := NewRunner(cfg).Run()
	if err != nil {
		t.Fatalf("first run: %v", err)
	}
	if sum.RejectedRows != 1 {
		t.Fatalf("first run rejected = %d, want 1", sum.RejectedRows)
	}

	// the same extracts delivered again: excluded legs are ledgered nowhere,
	// the gate must still treat them as processed
	seed()
	if _, err := NewRunner(cfg).Run(); err != nil {
		t.Fatalf("second run: %v", err)
	}

	rejected, err := store.OpenRejected(filepath.Join(cfg.Paths.StateDir, "rejected_sales.csv"))
	if err != nil {
		t.Fatal(err)
	}
	if got := len(rejected.Rows()); got != 1 {
		t.Errorf("rejected archive rows = %d after re-ingest, want 1", got)
	}
	ledger, err := store.OpenLedger(filepath.Join(cfg.Paths.StateDir, "historical_ledger.csv"))
	if err != nil {
		t.Fatal(err)
	}
	if got := len(ledger.Rows()); got != 1 {
		t.Errorf("ledger rows = %d after re-ingest, want 1", got)
	}
}

func TestRunner_DuplicateContentSkipped(t *testing.T) {
	cfg := testConfig(t)
	seedInputs(t, cfg)
	// the same activity export downloaded twice under another date
	data, err := os.ReadFile(filepath.Join(cfg.Paths.InputDir, "activities-collection-2024-05-03.csv"))
	if err != nil {
		t.Fatal(err)
	}
	writeInput(t, cfg, "activities-collection-2024-05-04.csv", string(data))

	sum, err := NewRunner(cfg).Run()
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if sum.NewLedgerRows != 1 {
		t.Errorf("duplicate content inflated the ledger: %d rows", sum.NewLedgerRows)
	}
	// the duplicate is archived alongside its twin
	left, err := os.ReadDir(cfg.Paths.InputDir)
	if err != nil {
		t.Fatal(err)
	}
	if len(left) != 0 {
		t.Errorf("input dir still holds %d files", len(left))
	}
}
