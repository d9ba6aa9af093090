package utils

import (
	"strings"

	"github.com/go-gota/gota/dataframe"
)

func containsString(slice []string, s string) bool {
	for _, v := range slice {
		if v == s {
			return true
		}
	}
	return false
}

// GetStr returns the trimmed cell of a string column, or "" when the column
// is absent or the cell is missing.
func GetStr(col string, rowIdx int, df *dataframe.DataFrame) string {
	if df == nil || col == "" {
		return ""
	}

	if containsString(df.Names(), col) {
		elem := df.Col(col).Elem(rowIdx)
		if elem.IsNA() {
			return ""
		}
		val := strings.TrimSpace(elem.String())
		if val == "NaN" {
			return ""
		}
		return val
	}
	return ""
}

// FindColumn returns the first candidate present among the dataframe's
// column names.
func FindColumn(df *dataframe.DataFrame, candidates ...string) (string, bool) {
	if df == nil {
		return "", false
	}
	names := df.Names()
	for _, c := range candidates {
		if containsString(names, c) {
			return c, true
		}
	}
	return "", false
}

// Cell returns the trimmed value at idx of a sheet row. Rows read from a
// workbook are ragged, so a missing index is an empty cell.
func Cell(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}
