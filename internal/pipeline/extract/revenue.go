package extract

import (
	"github.com/farxc/dre_warehouse/internal/pipeline/utils"
	"github.com/farxc/dre_warehouse/internal/store"
)

// readRevenue walks a revenue report: month header on the first row, then
// SALES and SERVICE blocks listing one unit per row.
func readRevenue(rows [][]string, prov store.Provenance, scenario string) []store.RawRevenue {
	if len(rows) == 0 {
		return nil
	}

	months, _ := DetectMonthColumns(rows, 1)
	columns := months.Indexes()
	machine := NewSectionMachine()

	var records []store.RawRevenue
	for idx := 1; idx < len(rows); idx++ {
		row := rows[idx]
		label := utils.Cell(row, 0)
		if machine.Step(label) != ActionData {
			continue
		}

		for _, col := range columns {
			value, ok := utils.ParseFloat(utils.Cell(row, col))
			if !ok {
				continue
			}
			rec := store.RawRevenue{
				Scenario:    scenario,
				RevenueType: string(machine.Current()),
				Unit:        label,
				Month:       months[col],
				Value:       value,
				Provenance:  prov,
			}
			rec.SourceRow = idx + 1
			records = append(records, rec)
		}
	}
	return records
}
