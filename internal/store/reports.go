package store

import (
	"context"
	"fmt"

	"github.com/farxc/dre_warehouse/internal/pipeline/types"
	"github.com/jmoiron/sqlx"
)

type ReportStore struct {
	db *sqlx.DB
}

type StatementSummary struct {
	GrossRevenue float64  `db:"receita_bruta" json:"gross_revenue"`
	NetRevenue   float64  `db:"receita_liquida" json:"net_revenue"`
	EBITDA       float64  `db:"ebitda" json:"ebitda"`
	NetIncome    float64  `db:"lucro_liquido" json:"net_income"`
	EBITDAMargin *float64 `db:"-" json:"ebitda_margin"`
	NetMargin    *float64 `db:"-" json:"net_margin"`
}

type MonthlyStatementRow struct {
	DataKey string  `db:"data_key" json:"data_key"`
	Month   int     `db:"mes_num" json:"month"`
	Abbrev  string  `db:"mes_abrev" json:"month_abbrev"`
	Line    string  `db:"linha_dre" json:"line"`
	Order   int     `db:"ordem" json:"order"`
	Value   float64 `db:"valor" json:"value"`
}

type MonthlyFilter struct {
	// Line is a LIKE pattern matched case-insensitively against the line name.
	Line string
}

type RevenueBreakdown struct {
	Scenario    string  `db:"cenario" json:"scenario"`
	RevenueType string  `db:"tipo_receita" json:"revenue_type"`
	Total       float64 `db:"total" json:"total"`
	Records     int     `db:"registros" json:"records"`
}

type ExpenseBreakdown struct {
	Scenario string  `db:"cenario" json:"scenario"`
	Package  string  `db:"pacote" json:"package"`
	Total    float64 `db:"total" json:"total"`
	Records  int     `db:"registros" json:"records"`
}

type BreakdownFilter struct {
	Scenario string
	Limit    int
}

// StatementSummary aggregates the headline statement lines over the whole
// year. Margins are relative to gross revenue and left nil when it is zero.
func (rs *ReportStore) StatementSummary(ctx context.Context) (StatementSummary, error) {
	var s StatementSummary

	query := rs.db.Rebind(`SELECT
		COALESCE(SUM(CASE WHEN linha_dre = ? THEN valor END), 0) AS receita_bruta,
		COALESCE(SUM(CASE WHEN linha_dre = ? THEN valor END), 0) AS receita_liquida,
		COALESCE(SUM(CASE WHEN linha_dre = ? THEN valor END), 0) AS ebitda,
		COALESCE(SUM(CASE WHEN linha_dre = ? THEN valor END), 0) AS lucro_liquido
	FROM dw.fact_dre`)

	err := rs.db.GetContext(ctx, &s, query,
		types.LineGrossRevenue, types.LineNetRevenue, types.LineEBITDA, types.LineNetIncome)
	if err != nil {
		return s, fmt.Errorf("failed to query statement summary: %w", err)
	}

	if s.GrossRevenue != 0 {
		ebitda := s.EBITDA / s.GrossRevenue * 100
		net := s.NetIncome / s.GrossRevenue * 100
		s.EBITDAMargin = &ebitda
		s.NetMargin = &net
	}
	return s, nil
}

func (rs *ReportStore) MonthlyStatement(ctx context.Context, f MonthlyFilter) ([]MonthlyStatementRow, error) {
	query := `SELECT
		c.data_key,
		c.mes_num,
		c.mes_abrev,
		f.linha_dre,
		COALESCE(d.ordem, 0) AS ordem,
		SUM(f.valor) AS valor
	FROM dw.fact_dre f
	JOIN dw.dim_calendario c ON c.data_key = f.data_key
	LEFT JOIN dw.dim_linha_dre d ON d.linha_dre = f.linha_dre`

	var args []any
	if f.Line != "" {
		query += `
	WHERE UPPER(f.linha_dre) LIKE UPPER(?)`
		args = append(args, f.Line)
	}
	query += `
	GROUP BY c.data_key, c.mes_num, c.mes_abrev, f.linha_dre, d.ordem
	ORDER BY c.mes_num, ordem, f.linha_dre`

	rows := []MonthlyStatementRow{}
	if err := rs.db.SelectContext(ctx, &rows, rs.db.Rebind(query), args...); err != nil {
		return nil, fmt.Errorf("failed to query monthly statement: %w", err)
	}
	return rows, nil
}

func (rs *ReportStore) RevenueByScenario(ctx context.Context, f BreakdownFilter) ([]RevenueBreakdown, error) {
	query := `SELECT
		cenario,
		tipo_receita,
		SUM(valor) AS total,
		COUNT(*) AS registros
	FROM dw.fact_receita`

	var args []any
	if f.Scenario != "" {
		query += `
	WHERE cenario = ?`
		args = append(args, f.Scenario)
	}
	query += `
	GROUP BY cenario, tipo_receita
	ORDER BY cenario, tipo_receita`

	rows := []RevenueBreakdown{}
	if err := rs.db.SelectContext(ctx, &rows, rs.db.Rebind(query), args...); err != nil {
		return nil, fmt.Errorf("failed to query revenue breakdown: %w", err)
	}
	return rows, nil
}

// TopExpensePackages ranks packages by absolute spend, since expenses are
// stored as negative values.
func (rs *ReportStore) TopExpensePackages(ctx context.Context, f BreakdownFilter) ([]ExpenseBreakdown, error) {
	query := `SELECT
		cenario,
		pacote,
		SUM(valor) AS total,
		COUNT(*) AS registros
	FROM dw.fact_despesa`

	var args []any
	if f.Scenario != "" {
		query += `
	WHERE cenario = ?`
		args = append(args, f.Scenario)
	}
	query += `
	GROUP BY cenario, pacote
	ORDER BY ABS(SUM(valor)) DESC, pacote
	LIMIT ?`
	args = append(args, f.Limit)

	rows := []ExpenseBreakdown{}
	if err := rs.db.SelectContext(ctx, &rows, rs.db.Rebind(query), args...); err != nil {
		return nil, fmt.Errorf("failed to query expense breakdown: %w", err)
	}
	return rows, nil
}
