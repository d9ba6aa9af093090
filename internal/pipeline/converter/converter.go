package converter

import (
	"github.com/farxc/dre_warehouse/internal/pipeline/types"
	"github.com/farxc/dre_warehouse/internal/pipeline/utils"
	"github.com/go-gota/gota/dataframe"
)

// Header names accepted for each expense field, after lower-casing. The
// first one present wins.
var (
	DateColumns    = []string{"data", "date", "dt"}
	UnitColumns    = []string{"unidade", "unit", "centro"}
	PackageColumns = []string{"pacote", "package", "grupo"}
	AccountColumns = []string{"conta", "account", "descrição", "descricao"}
	ValueColumns   = []string{"valor", "value", "amount", "vlr"}
)

// ExpenseColumns holds the resolved header of each expense field. An empty
// name means the sheet has no such column.
type ExpenseColumns struct {
	Date    string
	Unit    string
	Package string
	Account string
	Value   string
}

// ResolveExpenseColumns maps the sheet header onto the expense fields and
// reports the required ones it could not find.
func ResolveExpenseColumns(df *dataframe.DataFrame) (ExpenseColumns, []string) {
	var cols ExpenseColumns
	var missing []string

	resolve := func(field string, candidates []string, required bool) string {
		name, ok := utils.FindColumn(df, candidates...)
		if !ok && required {
			missing = append(missing, field)
		}
		return name
	}

	cols.Date = resolve("data", DateColumns, true)
	cols.Unit = resolve("unidade", UnitColumns, false)
	cols.Package = resolve("pacote", PackageColumns, false)
	cols.Account = resolve("conta", AccountColumns, false)
	cols.Value = resolve("valor", ValueColumns, true)

	return cols, missing
}

func DfRowToExpense(df dataframe.DataFrame, rowIdx int, cols ExpenseColumns) types.ExpenseRow {
	return types.ExpenseRow{
		Date:    utils.GetStr(cols.Date, rowIdx, &df),
		Unit:    utils.GetStr(cols.Unit, rowIdx, &df),
		Package: utils.GetStr(cols.Package, rowIdx, &df),
		Account: utils.GetStr(cols.Account, rowIdx, &df),
		Value:   utils.GetStr(cols.Value, rowIdx, &df),
	}
}
