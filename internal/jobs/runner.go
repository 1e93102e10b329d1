package jobs

import (
	"fmt"
	"log"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"SellerLedger/internal/checksum"
	"SellerLedger/internal/config"
	"SellerLedger/internal/extract"
	"SellerLedger/internal/inventory"
	"SellerLedger/internal/model"
	"SellerLedger/internal/normalize"
	"SellerLedger/internal/recon"
	"SellerLedger/internal/store"
)

// Summary reports what one batch run did.
type Summary struct {
	RunID          string
	Reconciled     bool
	NewLedgerRows  int
	NewLongRows    int
	RejectedRows   int
	OrphanShipping int
	InventoryRows  int
	ReportPath     string
}

// Runner executes one synchronous batch run: ingest whatever extracts are in
// the input directory, reconcile, and write outputs. Persisted state is read
// once at start and written once at the very end of a successful
// reconciliation, so a failed run never partially appends the ledger.
type Runner struct {
	cfg config.Config
}

func NewRunner(cfg config.Config) *Runner {
	return &Runner{cfg: cfg}
}

// Run performs one batch run. Per-source failures are caught and logged: the
// ledger update is skipped unless activity, settlement and sales all
// succeeded, while the inventory report only needs the stock snapshots.
func (r *Runner) Run() (Summary, error) {
	runID := uuid.New().String()
	started := time.Now()
	sum := Summary{RunID: runID}
	log.Printf("[AUDIT] run %s started", runID)

	lock, err := store.AcquireRunLock(r.cfg.Paths.StateDir)
	if err != nil {
		return sum, err
	}
	defer lock.Release()

	files, err := extract.Discover(r.cfg.Paths.InputDir, r.cfg.Sources)
	if err != nil {
		return sum, err
	}
	files, dups := dropIdenticalFiles(files)
	bySource := extract.BySource(files)
	log.Printf("[DEBUG] run %s: discovered %d extract files", runID, len(files))

	ledger, err := store.OpenLedger(filepath.Join(r.cfg.Paths.StateDir, "historical_ledger.csv"))
	if err != nil {
		return sum, err
	}

	reconFiles, err := r.reconcile(runID, bySource, ledger, &sum)
	if err != nil {
		// skip this run's ledger update, never crash the batch
		log.Printf("[ERROR] run %s: reconciliation skipped: %v", runID, err)
	}

	stockFiles, err := r.replenish(runID, bySource, ledger, &sum)
	if err != nil {
		log.Printf("[ERROR] run %s: inventory report skipped: %v", runID, err)
	}

	processed := append(reconFiles, stockFiles...)
	processed = append(processed, processedDuplicates(dups, processed)...)
	if err := extract.ArchiveProcessed(processed, r.cfg.Paths.ArchiveDir, started); err != nil {
		log.Printf("[ERROR] run %s: archiving failed: %v", runID, err)
	}

	log.Printf("[AUDIT] run %s finished in %s: reconciled=%v new_ledger_rows=%d long_rows=%d rejected=%d inventory_rows=%d",
		runID, time.Since(started).Round(time.Millisecond), sum.Reconciled,
		sum.NewLedgerRows, sum.NewLongRows, sum.RejectedRows, sum.InventoryRows)
	return sum, nil
}

// duplicateFile is an input file skipped because a kept file (the twin) has
// identical content.
type duplicateFile struct {
	file extract.ExtractFile
	twin string
}

// dropIdenticalFiles skips extracts whose content digest matches an earlier
// file in the batch, e.g. one export downloaded twice under different names.
// Files that cannot be digested are kept.
func dropIdenticalFiles(files []extract.ExtractFile) ([]extract.ExtractFile, []duplicateFile) {
	seen := make(map[string]string, len(files)) // digest -> kept file name
	kept := make([]extract.ExtractFile, 0, len(files))
	var dups []duplicateFile
	for _, f := range files {
		digest, err := checksum.FileDigest(f.Path)
		if err != nil {
			log.Printf("[WARN] cannot digest %s, keeping it: %v", f.Name, err)
			kept = append(kept, f)
			continue
		}
		if twin, ok := seen[digest]; ok {
			log.Printf("[WARN] %s has the same content as %s, skipped", f.Name, twin)
			dups = append(dups, duplicateFile{file: f, twin: twin})
			continue
		}
		seen[digest] = f.Name
		kept = append(kept, f)
	}
	return kept, dups
}

// processedDuplicates returns the skipped duplicates whose twin was actually
// processed this run; they are archived with it.
func processedDuplicates(dups []duplicateFile, processed []extract.ExtractFile) []extract.ExtractFile {
	byName := make(map[string]bool, len(processed))
	for _, f := range processed {
		byName[f.Name] = true
	}
	var out []extract.ExtractFile
	for _, d := range dups {
		if byName[d.twin] {
			out = append(out, d.file)
		}
	}
	return out
}

// reconcile runs the reconciliation pipeline and, on success, persists the
// ledger, the consolidated export and the rejected-sales archive. It returns
// the extract files that may be archived.
func (r *Runner) reconcile(runID string, bySource map[extract.SourceKind][]extract.ExtractFile, ledger *store.LedgerStore, sum *Summary) ([]extract.ExtractFile, error) {
	actFiles := bySource[extract.SourceActivity]
	setFiles := bySource[extract.SourceSettlement]
	salFiles := bySource[extract.SourceSales]
	if len(actFiles) == 0 || len(setFiles) == 0 || len(salFiles) == 0 {
		return nil, fmt.Errorf("required sources incomplete: activity=%d settlement=%d sales=%d files",
			len(actFiles), len(setFiles), len(salFiles))
	}

	var legs []model.TransactionLeg
	for _, f := range actFiles {
		rows, err := extract.ReadTable(f.Path)
		if err != nil {
			return nil, fmt.Errorf("activity source: %w", err)
		}
		batch, err := normalize.Activity(rows, f.CaptureDate)
		if err != nil {
			return nil, fmt.Errorf("activity source %s: %w", f.Name, err)
		}
		legs = append(legs, batch...)
	}

	var settlements []model.SettlementRecord
	for _, f := range setFiles {
		rows, err := extract.ReadTable(f.Path)
		if err != nil {
			return nil, fmt.Errorf("settlement source: %w", err)
		}
		batch, err := normalize.Settlement(rows, f.CaptureDate)
		if err != nil {
			return nil, fmt.Errorf("settlement source %s: %w", f.Name, err)
		}
		settlements = append(settlements, batch...)
	}

	var sales []model.SalesRecord
	for _, f := range salFiles {
		rows, err := extract.ReadTable(f.Path)
		if err != nil {
			return nil, fmt.Errorf("sales source: %w", err)
		}
		batch, err := normalize.Sales(rows, f.CaptureDate)
		if err != nil {
			return nil, fmt.Errorf("sales source %s: %w", f.Name, err)
		}
		sales = append(sales, batch...)
	}

	rejected, err := store.OpenRejected(filepath.Join(r.cfg.Paths.StateDir, "rejected_sales.csv"))
	if err != nil {
		return nil, err
	}

	// excluded legs live in the rejected archive, not the ledger; both sets
	// gate re-ingestion
	seen := recon.NewSeenSet(append(ledger.OperationIDs(), rejected.OperationIDs()...))
	legs = recon.FilterNewLegs(legs, seen)
	settlements = recon.FilterNewSettlements(settlements, seen)
	if len(legs) == 0 {
		log.Printf("[DEBUG] run %s: no new activity legs, ledger unchanged", runID)
		return append(append(append([]extract.ExtractFile{}, actFiles...), setFiles...), salFiles...), nil
	}

	legs, err = recon.RepairFees(legs, settlements)
	if err != nil {
		return nil, err
	}
	legs, orphans := recon.ApportionShipping(legs, r.cfg.Business.ShippingPolicy)
	sum.OrphanShipping = len(orphans)
	legs = recon.ApplyRefunds(legs)
	legs = recon.Enrich(legs, sales, r.cfg.Business.DefaultChannel)
	kept, excluded := recon.SplitExcluded(legs, r.cfg.IsExcludedStatus)

	events := recon.Aggregate(kept)
	if err := recon.CheckBalance(kept, events, r.cfg.Business.BalanceTolerance); err != nil {
		return nil, err
	}
	long := recon.Consolidate(events)

	consolidated, err := store.OpenConsolidated(filepath.Join(r.cfg.Paths.StateDir, "consolidated.csv"))
	if err != nil {
		return nil, err
	}

	ledger.Append(events)
	consolidated.Append(long)
	rejected.Append(excluded)

	// write-at-end: the first failed save aborts before any inconsistent pair
	// of files can be taken as a successful run
	if err := ledger.Save(); err != nil {
		return nil, fmt.Errorf("save ledger: %w", err)
	}
	if err := consolidated.Save(); err != nil {
		return nil, fmt.Errorf("save consolidated: %w", err)
	}
	if err := rejected.Save(); err != nil {
		return nil, fmt.Errorf("save rejected archive: %w", err)
	}

	sum.Reconciled = true
	sum.NewLedgerRows = len(events)
	sum.NewLongRows = len(long)
	sum.RejectedRows = len(excluded)
	return append(append(append([]extract.ExtractFile{}, actFiles...), setFiles...), salFiles...), nil
}

// replenish computes the per-SKU replenishment report from the merged ledger
// and the current stock snapshots.
func (r *Runner) replenish(runID string, bySource map[extract.SourceKind][]extract.ExtractFile, ledger *store.LedgerStore, sum *Summary) ([]extract.ExtractFile, error) {
	remoteFiles := bySource[extract.SourceStockRemote]
	localFiles := bySource[extract.SourceStockLocal]
	if len(remoteFiles) == 0 && len(localFiles) == 0 {
		return nil, fmt.Errorf("no stock snapshots in input dir")
	}

	remote, err := r.readStock(remoteFiles, "stock_remote")
	if err != nil {
		return nil, err
	}
	local, err := r.readStock(localFiles, "stock_local")
	if err != nil {
		return nil, err
	}

	snaps := inventory.Compute(ledger.Rows(), remote, local, inventory.Params{
		TrailingWindowDays: r.cfg.Business.TrailingWindowDays,
		LeadTimeDays:       r.cfg.Business.LeadTimeDays,
		MaxDaysOfSupply:    r.cfg.Business.MaxDaysOfSupply,
	})
	path, err := store.WriteInventoryReport(r.cfg.Paths.ReportDir, time.Now(), snaps)
	if err != nil {
		return nil, err
	}
	sum.InventoryRows = len(snaps)
	sum.ReportPath = path
	log.Printf("[DEBUG] run %s: replenishment report %s (%d SKUs)", runID, path, len(snaps))
	return append(append([]extract.ExtractFile{}, remoteFiles...), localFiles...), nil
}

// readStock reads the newest snapshot of one stock feed; older snapshots in
// the same run are superseded, not summed.
func (r *Runner) readStock(files []extract.ExtractFile, source string) ([]model.StockRow, error) {
	if len(files) == 0 {
		return nil, nil
	}
	newest := files[len(files)-1] // Discover orders by capture date ascending
	rows, err := extract.ReadTable(newest.Path)
	if err != nil {
		return nil, fmt.Errorf("%s source: %w", source, err)
	}
	stock, err := normalize.Stock(rows, source)
	if err != nil {
		return nil, fmt.Errorf("%s source %s: %w", source, newest.Name, err)
	}
	return stock, nil
}
