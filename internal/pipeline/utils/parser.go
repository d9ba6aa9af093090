package utils

import (
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"
)

// Text layouts accepted for expense dates, tried in order.
var dateLayouts = []string{
	"2006-01-02",
	"02/01/2006",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"02/01/2006 15:04:05",
	"02-01-2006",
	"2006/01/02",
}

// ParseDate reads an expense date given either as an Excel serial number or
// as text. Only the calendar date is kept.
func ParseDate(dateStr string) (time.Time, bool) {
	dateStr = strings.TrimSpace(dateStr)
	if dateStr == "" {
		return time.Time{}, false
	}

	if serial, err := strconv.ParseFloat(dateStr, 64); err == nil {
		if serial <= 0 || math.IsNaN(serial) || math.IsInf(serial, 0) {
			return time.Time{}, false
		}
		t, err := excelize.ExcelDateToTime(serial, false)
		if err != nil {
			return time.Time{}, false
		}
		return dateOnly(t), true
	}

	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, dateStr); err == nil {
			return dateOnly(t), true
		}
	}
	return time.Time{}, false
}

func dateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// ParseFloat reads a numeric cell. Raw values such as "1234.5" or "-3E-02"
// are tried first, then the Brazilian display format "1.234,56".
func ParseFloat(valStr string) (float64, bool) {
	valStr = strings.TrimSpace(valStr)
	if valStr == "" {
		return 0, false
	}

	if val, err := strconv.ParseFloat(valStr, 64); err == nil {
		return finite(val)
	}

	// Remove thousands separator (.) and replace decimal separator (,) with (.)
	cleanStr := strings.ReplaceAll(valStr, ".", "")
	cleanStr = strings.ReplaceAll(cleanStr, ",", ".")
	cleanStr = strings.TrimPrefix(strings.TrimSpace(strings.TrimPrefix(cleanStr, "R$")), "+")
	val, err := strconv.ParseFloat(cleanStr, 64)
	if err != nil {
		return 0, false
	}
	return finite(val)
}

func finite(val float64) (float64, bool) {
	if math.IsNaN(val) || math.IsInf(val, 0) {
		return 0, false
	}
	return val, true
}
