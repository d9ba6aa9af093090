package extract

import (
	"github.com/farxc/dre_warehouse/internal/pipeline/types"
	"github.com/farxc/dre_warehouse/internal/pipeline/utils"
	"github.com/farxc/dre_warehouse/internal/store"
)

// Statement and tax-rate sheets may carry a title above the month header.
const reportHeaderRows = 3

// readStatement keeps the rows whose label is one of the known statement
// lines, stored under the line's canonical spelling.
func readStatement(rows [][]string, prov store.Provenance) []store.RawStatementLine {
	months, _ := DetectMonthColumns(rows, reportHeaderRows)
	columns := months.Indexes()

	var records []store.RawStatementLine
	for idx, row := range rows {
		line, ok := types.LookupStatementLine(utils.Cell(row, 0))
		if !ok {
			continue
		}

		for _, col := range columns {
			value, ok := utils.ParseFloat(utils.Cell(row, col))
			if !ok {
				continue
			}
			rec := store.RawStatementLine{
				Line:       line.Name,
				Category:   line.Category,
				Order:      line.Order,
				Month:      months[col],
				Value:      value,
				Provenance: prov,
			}
			rec.SourceRow = idx + 1
			records = append(records, rec)
		}
	}
	return records
}
