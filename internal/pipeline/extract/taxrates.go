package extract

import (
	"github.com/farxc/dre_warehouse/internal/pipeline/types"
	"github.com/farxc/dre_warehouse/internal/pipeline/utils"
	"github.com/farxc/dre_warehouse/internal/store"
)

func readTaxRates(rows [][]string, prov store.Provenance) []store.RawTaxRate {
	months, _ := DetectMonthColumns(rows, reportHeaderRows)
	columns := months.Indexes()

	var records []store.RawTaxRate
	for idx, row := range rows {
		label := utils.Cell(row, 0)
		if !types.IsTaxRateLabel(label) {
			continue
		}

		for _, col := range columns {
			rate, ok := utils.ParseFloat(utils.Cell(row, col))
			if !ok {
				continue
			}
			rec := store.RawTaxRate{
				TaxType:    label,
				Month:      months[col],
				Rate:       rate,
				Provenance: prov,
			}
			rec.SourceRow = idx + 1
			records = append(records, rec)
		}
	}
	return records
}
