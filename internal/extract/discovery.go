package extract

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"SellerLedger/internal/config"
)

// SourceKind identifies which extract a discovered file belongs to.
type SourceKind string

const (
	SourceActivity    SourceKind = "activity"
	SourceSettlement  SourceKind = "settlement"
	SourceSales       SourceKind = "sales"
	SourceStockRemote SourceKind = "stock_remote"
	SourceStockLocal  SourceKind = "stock_local"
)

// ExtractFile is one input file matched to a source, with the capture date
// parsed from its name. The capture date becomes the ingestion_date of every
// record read from the file.
type ExtractFile struct {
	Path        string
	Name        string
	Source      SourceKind
	CaptureDate time.Time
}

var allowedExts = map[string]bool{".csv": true, ".xlsx": true, ".xls": true}

// capture date layouts tried per source, after the prefix and extension are
// stripped. The marketplace is not consistent across its own exports.
var dateLayouts = map[SourceKind][]string{
	SourceActivity:    {"2006-01-02", "20060102"},
	SourceSettlement:  {"2006-01-02", "20060102"},
	SourceSales:       {"02-01-2006", "2006-01-02"},
	SourceStockRemote: {"20060102", "2006-01-02"},
	SourceStockLocal:  {"20060102", "2006-01-02"},
}

// Discover scans dir for extract files matching the configured per-source
// filename prefixes. Files whose capture date cannot be parsed are skipped
// with a warning. Results are ordered by source, then capture date ascending.
func Discover(dir string, src config.Sources) ([]ExtractFile, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read input dir %s: %w", dir, err)
	}

	prefixes := []struct {
		prefix string
		kind   SourceKind
	}{
		{src.StockLocalPrefix, SourceStockLocal}, // before remote: prefixes may share a stem
		{src.StockRemotePrefix, SourceStockRemote},
		{src.ActivityPrefix, SourceActivity},
		{src.SettlementPrefix, SourceSettlement},
		{src.SalesPrefix, SourceSales},
	}

	var files []ExtractFile
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		name := e.Name()
		ext := strings.ToLower(filepath.Ext(name))
		if !allowedExts[ext] {
			continue
		}
		for _, p := range prefixes {
			if p.prefix == "" || !strings.HasPrefix(name, p.prefix) {
				continue
			}
			capture, err := ParseCaptureDate(p.kind, p.prefix, name)
			if err != nil {
				log.Printf("[WARN] skipping %s: %v", name, err)
				break
			}
			files = append(files, ExtractFile{
				Path:        filepath.Join(dir, name),
				Name:        name,
				Source:      p.kind,
				CaptureDate: capture,
			})
			break
		}
	}

	sort.Slice(files, func(i, j int) bool {
		if files[i].Source != files[j].Source {
			return files[i].Source < files[j].Source
		}
		if !files[i].CaptureDate.Equal(files[j].CaptureDate) {
			return files[i].CaptureDate.Before(files[j].CaptureDate)
		}
		return files[i].Name < files[j].Name
	})
	return files, nil
}

// ParseCaptureDate extracts the capture date encoded in an extract filename,
// e.g. "activities-collection-2024-05-03.csv" or "Stock_general_Full_20240503.xlsx".
func ParseCaptureDate(kind SourceKind, prefix, filename string) (time.Time, error) {
	stem := strings.TrimSuffix(filename, filepath.Ext(filename))
	stem = strings.TrimPrefix(stem, prefix)
	stem = strings.Trim(stem, "-_ .")
	if stem == "" {
		return time.Time{}, fmt.Errorf("no capture date in filename %q", filename)
	}
	for _, layout := range dateLayouts[kind] {
		if t, err := time.Parse(layout, stem); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized capture date %q in filename %q", stem, filename)
}

// BySource groups discovered files per source, keeping capture-date order.
func BySource(files []ExtractFile) map[SourceKind][]ExtractFile {
	out := make(map[SourceKind][]ExtractFile)
	for _, f := range files {
		out[f.Source] = append(out[f.Source], f)
	}
	return out
}
