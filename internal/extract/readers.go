package extract

import (
	"encoding/csv"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/extrame/xls"
	"github.com/xuri/excelize/v2"
)

// ReadTable loads an extract file into rows of cells, dispatching on the
// file extension. Only the first sheet of a workbook is read.
func ReadTable(path string) ([][]string, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		return readCSV(path)
	case ".xlsx":
		return readXLSX(path)
	case ".xls":
		return readXLS(path)
	}
	return nil, fmt.Errorf("unsupported file type: %s", path)
}

func readCSV(path string) ([][]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	r := csv.NewReader(f)
	r.FieldsPerRecord = -1 // ragged rows happen in marketplace exports
	rows, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read csv %s: %w", path, err)
	}
	return rows, nil
}

func readXLSX(path string) ([][]string, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("open xlsx %s: %w", path, err)
	}
	defer f.Close()
	sheet := f.GetSheetName(0)
	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("read xlsx %s: %w", path, err)
	}
	return rows, nil
}

func readXLS(path string) ([][]string, error) {
	wb, err := xls.Open(path, "utf-8")
	if err != nil {
		return nil, fmt.Errorf("open xls %s: %w", path, err)
	}
	sheet := wb.GetSheet(0)
	if sheet == nil {
		return nil, fmt.Errorf("xls %s: no sheets", path)
	}
	rows := make([][]string, 0, int(sheet.MaxRow)+1)
	for i := 0; i <= int(sheet.MaxRow); i++ {
		row := sheet.Row(i)
		if row == nil {
			rows = append(rows, nil)
			continue
		}
		cells := make([]string, 0, row.LastCol())
		for j := 0; j < row.LastCol(); j++ {
			cells = append(cells, strings.TrimSpace(row.Col(j)))
		}
		rows = append(rows, cells)
	}
	return rows, nil
}

// ErrHeaderNotFound is returned by ProbeHeader when no row within the probe
// window contains any of the expected labels.
var ErrHeaderNotFound = errors.New("header row not found")

// ProbeHeader locates the header row of a sheet whose header offset varies
// (the units-sold report pads the top with title rows). The first row within
// maxProbe rows containing at least one known source label wins.
func ProbeHeader(rows [][]string, knownLabels map[string]string, maxProbe int) (int, error) {
	if maxProbe > len(rows) {
		maxProbe = len(rows)
	}
	for i := 0; i < maxProbe; i++ {
		for _, cell := range rows[i] {
			if _, ok := knownLabels[strings.TrimSpace(cell)]; ok {
				return i, nil
			}
		}
	}
	return 0, ErrHeaderNotFound
}
