package extract

import (
	"sort"

	"github.com/farxc/dre_warehouse/internal/pipeline/types"
	"github.com/farxc/dre_warehouse/internal/pipeline/utils"
)

// MonthColumns maps a column index to the month abbreviation in its header.
type MonthColumns map[int]string

// Indexes returns the month columns from left to right.
func (m MonthColumns) Indexes() []int {
	idx := make([]int, 0, len(m))
	for i := range m {
		idx = append(idx, i)
	}
	sort.Ints(idx)
	return idx
}

// DetectMonthColumns looks for month abbreviations in the first maxHeaderRows
// rows and uses the first row that has any. It returns the header row index,
// or -1 when no row qualifies.
func DetectMonthColumns(rows [][]string, maxHeaderRows int) (MonthColumns, int) {
	for r := 0; r < maxHeaderRows && r < len(rows); r++ {
		cols := MonthColumns{}
		for c := range rows[r] {
			if m, ok := types.LookupMonth(utils.Cell(rows[r], c)); ok {
				cols[c] = m.Abbrev
			}
		}
		if len(cols) > 0 {
			return cols, r
		}
	}
	return MonthColumns{}, -1
}
