package types

import (
	"fmt"
	"strings"
)

// Sheet keys used in the etl.sheets section of the configuration.
const (
	SheetRevenueRealized = "receita_realizado"
	SheetRevenueBudgeted = "receita_orcado"
	SheetExpenseRealized = "despesas_realizado"
	SheetExpenseBudgeted = "despesas_orcado"
	SheetStatementModel  = "modelo_dre"
	SheetTaxRates        = "aliquotas"
)

var SheetKeys = []string{
	SheetRevenueRealized,
	SheetRevenueBudgeted,
	SheetExpenseRealized,
	SheetExpenseBudgeted,
	SheetStatementModel,
	SheetTaxRates,
}

// Revenue sections found in the revenue sheets.
const (
	RevenueSales   = "SALES"
	RevenueService = "SERVICE"
)

type Month struct {
	Abbrev   string
	Number   int
	Name     string
	Quarter  string
	Semester string
}

var Months = [12]Month{
	{Abbrev: "JAN", Number: 1, Name: "Janeiro", Quarter: "Q1", Semester: "S1"},
	{Abbrev: "FEV", Number: 2, Name: "Fevereiro", Quarter: "Q1", Semester: "S1"},
	{Abbrev: "MAR", Number: 3, Name: "Março", Quarter: "Q1", Semester: "S1"},
	{Abbrev: "ABR", Number: 4, Name: "Abril", Quarter: "Q2", Semester: "S1"},
	{Abbrev: "MAI", Number: 5, Name: "Maio", Quarter: "Q2", Semester: "S1"},
	{Abbrev: "JUN", Number: 6, Name: "Junho", Quarter: "Q2", Semester: "S1"},
	{Abbrev: "JUL", Number: 7, Name: "Julho", Quarter: "Q3", Semester: "S2"},
	{Abbrev: "AGO", Number: 8, Name: "Agosto", Quarter: "Q3", Semester: "S2"},
	{Abbrev: "SET", Number: 9, Name: "Setembro", Quarter: "Q3", Semester: "S2"},
	{Abbrev: "OUT", Number: 10, Name: "Outubro", Quarter: "Q4", Semester: "S2"},
	{Abbrev: "NOV", Number: 11, Name: "Novembro", Quarter: "Q4", Semester: "S2"},
	{Abbrev: "DEZ", Number: 12, Name: "Dezembro", Quarter: "Q4", Semester: "S2"},
}

var monthsByAbbrev = func() map[string]Month {
	m := make(map[string]Month, len(Months))
	for _, month := range Months {
		m[month.Abbrev] = month
	}
	return m
}()

// LookupMonth resolves a month abbreviation, ignoring case and surrounding spaces.
func LookupMonth(abbrev string) (Month, bool) {
	m, ok := monthsByAbbrev[strings.ToUpper(strings.TrimSpace(abbrev))]
	return m, ok
}

// DataKey builds the calendar key joining facts to dim_calendario.
func DataKey(year, month int) string {
	return fmt.Sprintf("%d-%02d", year, month)
}

// ResolveMonth returns the month number and calendar key for an abbreviation.
func ResolveMonth(abbrev string, year int) (int, string, bool) {
	m, ok := LookupMonth(abbrev)
	if !ok {
		return 0, "", false
	}
	return m.Number, DataKey(year, m.Number), true
}

// Statement line hierarchy levels.
const (
	LevelTotal  = 1
	LevelMajor  = 2
	LevelDetail = 3
)

type StatementLine struct {
	Name     string
	Category string
	Order    int
	Level    int
}

var StatementLines = []StatementLine{
	{Name: "Receita Bruta", Category: "Receita", Order: 1, Level: LevelMajor},
	{Name: "Imposto Sobre Faturamento", Category: "Imposto", Order: 2, Level: LevelDetail},
	{Name: "Comissões de Venda", Category: "Dedução", Order: 3, Level: LevelDetail},
	{Name: "Receita Líquida", Category: "Receita", Order: 4, Level: LevelTotal},
	{Name: "Custos", Category: "Custo", Order: 5, Level: LevelMajor},
	{Name: "EBITDA META", Category: "Resultado", Order: 6, Level: LevelTotal},
	{Name: "PLR", Category: "Custo", Order: 7, Level: LevelDetail},
	{Name: "EBITDA", Category: "Resultado", Order: 8, Level: LevelTotal},
	{Name: "Resultado Não Operacional", Category: "Resultado", Order: 9, Level: LevelDetail},
	{Name: "Resultado Financeiro", Category: "Resultado", Order: 10, Level: LevelDetail},
	{Name: "EBT", Category: "Resultado", Order: 11, Level: LevelTotal},
	{Name: "IR & CSLL", Category: "Imposto", Order: 12, Level: LevelDetail},
	{Name: "Lucro Líquido", Category: "Resultado", Order: 13, Level: LevelTotal},
}

// Line names referenced by the quality rules and the query API.
const (
	LineGrossRevenue = "Receita Bruta"
	LineNetRevenue   = "Receita Líquida"
	LineEBITDA       = "EBITDA"
	LineNetIncome    = "Lucro Líquido"
)

// LookupStatementLine matches a row label exactly, ignoring case and surrounding spaces.
func LookupStatementLine(label string) (StatementLine, bool) {
	key := strings.ToUpper(strings.TrimSpace(label))
	if key == "" {
		return StatementLine{}, false
	}
	for _, line := range StatementLines {
		if strings.ToUpper(line.Name) == key {
			return line, true
		}
	}
	return StatementLine{}, false
}

// LineNamesAtLevel lists the canonical line names of one hierarchy level, in statement order.
func LineNamesAtLevel(level int) []string {
	var names []string
	for _, line := range StatementLines {
		if line.Level == level {
			names = append(names, line.Name)
		}
	}
	return names
}

// Tax-rate row labels are kept when they contain one of these fragments.
var TaxRateLabels = []string{"IMPOSTO SOBRE FATURAMENTO", "IR & CSLL", "IR E CSLL"}

func IsTaxRateLabel(label string) bool {
	upper := strings.ToUpper(strings.TrimSpace(label))
	if upper == "" {
		return false
	}
	for _, fragment := range TaxRateLabels {
		if strings.Contains(upper, fragment) {
			return true
		}
	}
	return false
}

// ExpenseRow is one line of a tabular expense sheet, still as cell text.
type ExpenseRow struct {
	Date    string
	Unit    string
	Package string
	Account string
	Value   string
}
