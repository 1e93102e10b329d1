package normalize

import (
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// parseAmount reads a monetary cell. Marketplace exports mix thousand
// separators and currency signs; empty cells mean zero.
func parseAmount(s string) decimal.Decimal {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "$")
	s = strings.ReplaceAll(s, ",", "")
	s = strings.TrimSpace(s)
	if s == "" || s == "-" {
		return decimal.Zero
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero
	}
	return d
}

func parseUnits(s string) float64 {
	s = strings.ReplaceAll(strings.TrimSpace(s), ",", "")
	if s == "" {
		return 0
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return f
}

// coerceID normalizes an identifier-like cell to an opaque string. Spreadsheet
// round-trips render big ids as floats ("123456789.0", "1.23457E+8" stays
// untouched); the trailing ".0" is stripped so ids join across sources.
func coerceID(s string) string {
	s = strings.TrimSpace(s)
	if i := strings.IndexByte(s, '.'); i > 0 {
		frac := s[i+1:]
		if frac != "" && strings.Trim(frac, "0") == "" && isDigits(s[:i]) {
			return s[:i]
		}
	}
	return s
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

var timestampLayouts = []string{
	"2006-01-02T15:04:05.000-07:00",
	"2006-01-02T15:04:05-07:00",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"02/01/2006 15:04:05",
	"02/01/2006 15:04",
	"2006-01-02",
}

// splitTimestamp separates a combined event timestamp into its date part and
// a "15:04:05" clock string. A date-only cell yields a midnight clock.
func splitTimestamp(s string) (time.Time, string, bool) {
	s = strings.TrimSpace(s)
	for _, layout := range timestampLayouts {
		t, err := time.Parse(layout, s)
		if err != nil {
			continue
		}
		date := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
		return date, t.Format("15:04:05"), true
	}
	return time.Time{}, "", false
}
