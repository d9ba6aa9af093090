package quality

import (
	"fmt"

	"github.com/farxc/dre_warehouse/internal/config"
	"github.com/farxc/dre_warehouse/internal/pipeline/types"
)

// Rule is one numbered check. Query returns a single row with the columns
// status, actual_value, expected_value and message, and is written with '?'
// placeholders bound from Args.
type Rule struct {
	ID          int
	Name        string
	Description string
	Query       string
	Args        []any
}

// Reference values of the sanity rules, kept from the business baseline.
const (
	expectedMarginPercent  = 27.5
	expectedServicePercent = 77.0
)

// toleranceQuery compares a SUM against a configured total. The relative
// difference uses the absolute expected value as denominator, so negative
// expense totals compare the same way as revenue. A missing total fails.
func toleranceQuery(totals, label string) string {
	return fmt.Sprintf(`WITH totals AS (
		%s
	)
	SELECT
		CASE
			WHEN ABS(total - CAST(? AS NUMERIC)) / NULLIF(ABS(CAST(? AS NUMERIC)), 0) <= CAST(? AS NUMERIC) THEN 'PASS'
			ELSE 'FAIL'
		END AS status,
		ROUND(total, 2) AS actual_value,
		CAST(? AS NUMERIC) AS expected_value,
		'%s: R$ ' || COALESCE(CAST(ROUND(total, 2) AS TEXT), 'sem dados') AS message
	FROM totals`, totals, label)
}

func toleranceArgs(filter []any, expected, tolerance float64) []any {
	return append(filter, expected, expected, tolerance, expected)
}

func notEmptyQuery(table string) string {
	return fmt.Sprintf(`SELECT
		CASE WHEN COUNT(*) > 0 THEN 'PASS' ELSE 'FAIL' END AS status,
		COUNT(*) AS actual_value,
		1 AS expected_value,
		'Total de registros: ' || CAST(COUNT(*) AS TEXT) AS message
	FROM %s`, table)
}

// Rules builds the twelve quality rules from the configured thresholds.
func Rules(cfg config.QualityConfig) []Rule {
	tol := cfg.TolerancePercent
	revenueTotals := `SELECT SUM(valor) AS total
		FROM dw.fact_receita
		WHERE cenario = ?
			AND tipo_receita IN (?, ?)`
	expenseTotals := `SELECT SUM(valor) AS total
		FROM dw.fact_despesa
		WHERE cenario = ?`

	return []Rule{
		{
			ID:          1,
			Name:        "receita_realizado_total",
			Description: "Valida total de Receita Bruta Realizado",
			Query:       toleranceQuery(revenueTotals, "Receita Realizado"),
			Args:        toleranceArgs([]any{types.ScenarioRealized, types.RevenueSales, types.RevenueService}, cfg.RevenueRealized, tol),
		},
		{
			ID:          2,
			Name:        "receita_orcado_total",
			Description: "Valida total de Receita Bruta Orçado",
			Query:       toleranceQuery(revenueTotals, "Receita Orçado"),
			Args:        toleranceArgs([]any{types.ScenarioBudgeted, types.RevenueSales, types.RevenueService}, cfg.RevenueBudgeted, tol),
		},
		{
			ID:          3,
			Name:        "despesas_realizado_total",
			Description: "Valida total de Despesas Realizado",
			Query:       toleranceQuery(expenseTotals, "Despesas Realizado"),
			Args:        toleranceArgs([]any{types.ScenarioRealized}, cfg.ExpensesRealized, tol),
		},
		{
			ID:          4,
			Name:        "despesas_orcado_total",
			Description: "Valida total de Despesas Orçado",
			Query:       toleranceQuery(expenseTotals, "Despesas Orçado"),
			Args:        toleranceArgs([]any{types.ScenarioBudgeted}, cfg.ExpensesBudgeted, tol),
		},
		{
			ID:          5,
			Name:        "lucro_liquido_dre",
			Description: "Valida Lucro Líquido no modelo DRE",
			Query: toleranceQuery(`SELECT SUM(valor) AS total
		FROM dw.fact_dre
		WHERE linha_dre = ?`, "Lucro Líquido"),
			Args: toleranceArgs([]any{types.LineNetIncome}, cfg.NetIncome, tol),
		},
		{
			ID:          6,
			Name:        "fact_receita_not_empty",
			Description: "Verifica se fact_receita tem dados",
			Query:       notEmptyQuery("dw.fact_receita"),
		},
		{
			ID:          7,
			Name:        "fact_despesa_not_empty",
			Description: "Verifica se fact_despesa tem dados",
			Query:       notEmptyQuery("dw.fact_despesa"),
		},
		{
			ID:          8,
			Name:        "fact_dre_not_empty",
			Description: "Verifica se fact_dre tem dados",
			Query:       notEmptyQuery("dw.fact_dre"),
		},
		{
			ID:          9,
			Name:        "all_months_present_receita",
			Description: "Verifica se todos os 12 meses estão presentes em receita",
			Query: fmt.Sprintf(`SELECT
		CASE WHEN COUNT(DISTINCT data_key) = %[1]d THEN 'PASS' ELSE 'FAIL' END AS status,
		COUNT(DISTINCT data_key) AS actual_value,
		%[1]d AS expected_value,
		'Meses únicos: ' || CAST(COUNT(DISTINCT data_key) AS TEXT) AS message
	FROM dw.fact_receita`, len(types.Months)),
		},
		{
			ID:          10,
			Name:        "data_keys_valid",
			Description: "Verifica se todas as data_keys referenciam dim_calendario",
			Query: `SELECT
		CASE WHEN COUNT(*) = 0 THEN 'PASS' ELSE 'FAIL' END AS status,
		COUNT(*) AS actual_value,
		0 AS expected_value,
		CASE
			WHEN COUNT(*) = 0 THEN 'Todas as data_keys são válidas'
			ELSE 'Encontradas ' || CAST(COUNT(*) AS TEXT) || ' data_keys órfãs'
		END AS message
	FROM dw.fact_receita f
	LEFT JOIN dw.dim_calendario d ON f.data_key = d.data_key
	WHERE d.data_key IS NULL`,
		},
		{
			ID:          11,
			Name:        "margem_liquida_sanity",
			Description: fmt.Sprintf("Verifica se margem líquida está em range razoável (%g-%g%%)", cfg.MarginMin*100, cfg.MarginMax*100),
			Query: `WITH metrics AS (
		SELECT
			(SELECT SUM(valor) FROM dw.fact_dre WHERE linha_dre = ?) AS lucro,
			(SELECT SUM(valor) FROM dw.fact_dre WHERE linha_dre = ?) AS receita
	)
	SELECT
		CASE
			WHEN 1.0 * lucro / NULLIF(receita, 0) BETWEEN CAST(? AS NUMERIC) AND CAST(? AS NUMERIC) THEN 'PASS'
			ELSE 'WARN'
		END AS status,
		ROUND(100.0 * lucro / NULLIF(receita, 0), 2) AS actual_value,
		CAST(? AS NUMERIC) AS expected_value,
		'Margem Líquida: ' || COALESCE(CAST(ROUND(100.0 * lucro / NULLIF(receita, 0), 2) AS TEXT), 'sem dados') || '%' AS message
	FROM metrics`,
			Args: []any{types.LineNetIncome, types.LineGrossRevenue, cfg.MarginMin, cfg.MarginMax, expectedMarginPercent},
		},
		{
			ID:          12,
			Name:        "service_maior_que_sales",
			Description: "Verifica se SERVICE > SALES (esperado no negócio)",
			Query: `WITH kinds AS (
		SELECT
			SUM(CASE WHEN tipo_receita = ? THEN valor ELSE 0 END) AS sales,
			SUM(CASE WHEN tipo_receita = ? THEN valor ELSE 0 END) AS service
		FROM dw.fact_receita
		WHERE cenario = ?
	)
	SELECT
		CASE WHEN service > sales THEN 'PASS' ELSE 'WARN' END AS status,
		ROUND(100.0 * service / NULLIF(sales + service, 0), 1) AS actual_value,
		CAST(? AS NUMERIC) AS expected_value,
		'SERVICE representa ' || COALESCE(CAST(ROUND(100.0 * service / NULLIF(sales + service, 0), 1) AS TEXT), 'sem dados') || '% da receita' AS message
	FROM kinds`,
			Args: []any{types.RevenueSales, types.RevenueService, types.ScenarioRealized, expectedServicePercent},
		},
	}
}
