package store_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/farxc/dre_warehouse/internal/pipeline/types"
	"github.com/farxc/dre_warehouse/internal/store"
	"github.com/farxc/dre_warehouse/internal/store/storetest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const year = 2025

func expense(scenario string, date time.Time, unit, pkg string, value float64) store.RawExpense {
	return store.RawExpense{
		Scenario:   scenario,
		Date:       date,
		Unit:       unit,
		Package:    pkg,
		Account:    "Conta",
		Value:      value,
		Provenance: store.Provenance{SourceFile: "test.xlsx", SourceSheet: "despesas", BatchID: "test"},
	}
}

func TestRaw_ReplaceIsFullReplacement(t *testing.T) {
	ctx := context.Background()
	conn, s := storetest.Open(t)

	n, err := s.Raw.ReplaceRevenue(ctx, []store.RawRevenue{
		storetest.Revenue("Realizado", "SALES", "Matriz", "JAN", 10),
		storetest.Revenue("Realizado", "SALES", "Matriz", "FEV", 20),
	})
	require.NoError(t, err)
	assert.EqualValues(t, 2, n)

	n, err = s.Raw.ReplaceRevenue(ctx, []store.RawRevenue{
		storetest.Revenue("Orçado", "SERVICE", "Filial", "MAR", 30),
	})
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)
	assert.EqualValues(t, 1, storetest.Count(t, conn, "raw.receita"))

	n, err = s.Raw.ReplaceRevenue(ctx, nil)
	require.NoError(t, err)
	assert.Zero(t, n)
	assert.Zero(t, storetest.Count(t, conn, "raw.receita"))
}

func TestRaw_ReplaceChunksLargeBatches(t *testing.T) {
	ctx := context.Background()
	_, s := storetest.Open(t)

	rows := make([]store.RawRevenue, 1234)
	for i := range rows {
		rows[i] = storetest.Revenue("Realizado", "SALES", "Matriz", "JAN", float64(i+1))
		rows[i].SourceRow = i + 1
	}

	n, err := s.Raw.ReplaceRevenue(ctx, rows)
	require.NoError(t, err)
	assert.EqualValues(t, 1234, n)

	total, err := s.Raw.Count(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 1234, total)
}

func TestStaging_RevenueAdmissionFilter(t *testing.T) {
	ctx := context.Background()
	conn, s := storetest.Open(t)

	insert := `INSERT INTO raw.receita (cenario, tipo_receita, unidade, mes, valor, batch_id) VALUES (?, ?, ?, ?, ?, 'b')`
	storetest.Exec(t, conn, insert, "Realizado", "sales", " Matriz ", "mar", 150.5)
	storetest.Exec(t, conn, insert, "Realizado", "SALES", "Matriz", "ABR", 0)
	storetest.Exec(t, conn, insert, "Realizado", "SALES", "Matriz", "MAI", nil)
	storetest.Exec(t, conn, insert, "Realizado", "SALES", nil, "JUN", 10)
	storetest.Exec(t, conn, insert, "Realizado", nil, "Matriz", "JUL", 10)
	storetest.Exec(t, conn, insert, "Realizado", "SALES", "Matriz", "XYZ", 10)

	n, err := s.Staging.LoadRevenue(ctx, store.StagingParams{Year: year})
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)

	var row struct {
		Scenario    string  `db:"cenario"`
		RevenueType string  `db:"tipo_receita"`
		Unit        string  `db:"unidade"`
		Month       string  `db:"mes"`
		MonthNumber int     `db:"mes_num"`
		DataKey     string  `db:"data_key"`
		Value       float64 `db:"valor"`
	}
	require.NoError(t, conn.Get(&row, `SELECT cenario, tipo_receita, unidade, mes, mes_num, data_key, valor FROM stg.receita`))
	assert.Equal(t, types.ScenarioRealized, row.Scenario)
	assert.Equal(t, "SALES", row.RevenueType)
	assert.Equal(t, "Matriz", row.Unit)
	assert.Equal(t, "MAR", row.Month)
	assert.Equal(t, 3, row.MonthNumber)
	assert.Equal(t, "2025-03", row.DataKey)
	assert.InDelta(t, 150.5, row.Value, 1e-9)
}

func TestStaging_ScenarioNormalization(t *testing.T) {
	ctx := context.Background()
	conn, s := storetest.Open(t)

	_, err := s.Raw.ReplaceRevenue(ctx, []store.RawRevenue{
		storetest.Revenue(" realizado ", "SALES", "Matriz", "JAN", 1),
		storetest.Revenue("Orçado", "SALES", "Matriz", "JAN", 2),
		storetest.Revenue("ORCADO 2025", "SALES", "Matriz", "JAN", 3),
		storetest.Revenue(" Forecast ", "SALES", "Matriz", "JAN", 4),
	})
	require.NoError(t, err)

	_, err = s.Staging.LoadRevenue(ctx, store.StagingParams{Year: year})
	require.NoError(t, err)

	var scenarios []string
	require.NoError(t, conn.Select(&scenarios, `SELECT cenario FROM stg.receita ORDER BY valor`))
	assert.Equal(t, []string{types.ScenarioRealized, types.ScenarioBudgeted, types.ScenarioBudgeted, "Forecast"}, scenarios)
}

func TestStaging_RebuildIsIdempotent(t *testing.T) {
	ctx := context.Background()
	conn, s := storetest.Open(t)

	_, err := s.Raw.ReplaceRevenue(ctx, []store.RawRevenue{
		storetest.Revenue("Realizado", "SALES", "Matriz", "JAN", 10),
		storetest.Revenue("Realizado", "SERVICE", "Matriz", "JAN", 20),
	})
	require.NoError(t, err)

	load := func() []string {
		_, err := s.Staging.LoadRevenue(ctx, store.StagingParams{Year: year})
		require.NoError(t, err)
		var keys []string
		require.NoError(t, conn.Select(&keys, `SELECT cenario || '|' || tipo_receita || '|' || data_key || '|' || CAST(valor AS TEXT) FROM stg.receita ORDER BY tipo_receita`))
		return keys
	}

	first := load()
	second := load()
	assert.Len(t, first, 2)
	assert.Equal(t, first, second)
}

func TestStaging_Expenses(t *testing.T) {
	ctx := context.Background()
	conn, s := storetest.Open(t)

	march := time.Date(2024, time.March, 15, 0, 0, 0, 0, time.UTC)
	_, err := s.Raw.ReplaceExpenses(ctx, []store.RawExpense{
		expense("Realizado", march, "Matriz", " Pessoal ", -100),
		expense("Realizado", march, "Matriz", "   ", -50),
		expense("Realizado", march, "Matriz", "Pessoal", 0),
	})
	require.NoError(t, err)

	n, err := s.Staging.LoadExpenses(ctx, store.StagingParams{Year: year})
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)

	var row struct {
		Package     string `db:"pacote"`
		MonthNumber int    `db:"mes_num"`
		DataKey     string `db:"data_key"`
	}
	require.NoError(t, conn.Get(&row, `SELECT pacote, mes_num, data_key FROM stg.despesa`))
	assert.Equal(t, "Pessoal", row.Package)
	assert.Equal(t, 3, row.MonthNumber)
	assert.Equal(t, "2025-03", row.DataKey, "calendar key uses the reference year")
}

func TestStaging_ExpensesRequireUnit(t *testing.T) {
	ctx := context.Background()
	conn, s := storetest.Open(t)

	march := time.Date(2025, time.March, 15, 0, 0, 0, 0, time.UTC)
	_, err := s.Raw.ReplaceExpenses(ctx, []store.RawExpense{
		expense("Realizado", march, "", "Pessoal", -100),
		expense("Realizado", march, "  ", "Pessoal", -80),
		expense("Realizado", march, "Matriz", "Pessoal", -50),
	})
	require.NoError(t, err)

	n, err := s.Staging.LoadExpenses(ctx, store.StagingParams{Year: year})
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)

	var blank int
	require.NoError(t, conn.Get(&blank, `SELECT COUNT(*) FROM stg.despesa WHERE TRIM(unidade) = ''`))
	assert.Zero(t, blank)

	_, err = s.Warehouse.LoadUnits(ctx)
	require.NoError(t, err)
	var units []string
	require.NoError(t, conn.Select(&units, `SELECT unidade FROM dw.dim_unidade ORDER BY unidade`))
	assert.Equal(t, []string{"Matriz"}, units)
}

func TestStaging_StatementLevels(t *testing.T) {
	ctx := context.Background()
	conn, s := storetest.Open(t)

	_, err := s.Raw.ReplaceStatement(ctx, []store.RawStatementLine{
		storetest.StatementLine("EBITDA", "Resultado", 8, "JAN", 5),
		storetest.StatementLine("Receita Bruta", "Receita", 1, "JAN", 10),
		storetest.StatementLine("PLR", "Custo", 7, "JAN", -1),
		storetest.StatementLine("Lucro Líquido", "Resultado", 13, "JAN", 0),
	})
	require.NoError(t, err)

	n, err := s.Staging.LoadStatement(ctx, store.StagingParams{Year: year})
	require.NoError(t, err)
	assert.EqualValues(t, 3, n, "zero-valued lines are not admitted")

	levels := map[string]int{}
	rows, err := conn.Queryx(`SELECT linha_dre, nivel FROM stg.dre`)
	require.NoError(t, err)
	defer rows.Close()
	for rows.Next() {
		var line string
		var level int
		require.NoError(t, rows.Scan(&line, &level))
		levels[line] = level
	}
	assert.Equal(t, map[string]int{"EBITDA": 1, "Receita Bruta": 2, "PLR": 3}, levels)
}

func TestStaging_TaxRatesKeepZero(t *testing.T) {
	ctx := context.Background()
	conn, s := storetest.Open(t)

	_, err := s.Raw.ReplaceTaxRates(ctx, []store.RawTaxRate{
		{TaxType: "Imposto Sobre Faturamento", Month: "JAN", Rate: 0.0925},
		{TaxType: "IR & CSLL", Month: "JAN", Rate: 0},
	})
	require.NoError(t, err)

	n, err := s.Staging.LoadTaxRates(ctx, store.StagingParams{Year: year})
	require.NoError(t, err)
	assert.EqualValues(t, 2, n)
	assert.EqualValues(t, 2, storetest.Count(t, conn, "stg.aliquota"))
}

func stageSample(t *testing.T, s *store.Storage) {
	t.Helper()
	ctx := context.Background()

	_, err := s.Raw.ReplaceRevenue(ctx, []store.RawRevenue{
		storetest.Revenue("Realizado", "SALES", "Matriz", "JAN", 10),
		storetest.Revenue("Realizado", "SERVICE", "Filial", "FEV", 20),
	})
	require.NoError(t, err)
	_, err = s.Raw.ReplaceExpenses(ctx, []store.RawExpense{
		expense("Realizado", time.Date(2025, 1, 10, 0, 0, 0, 0, time.UTC), "Matriz", "Pessoal", -5),
		expense("Orçado", time.Date(2025, 2, 10, 0, 0, 0, 0, time.UTC), "Loja", "Marketing", -7),
	})
	require.NoError(t, err)
	_, err = s.Raw.ReplaceStatement(ctx, []store.RawStatementLine{
		storetest.StatementLine("Receita Bruta", "Receita", 1, "JAN", 100),
		storetest.StatementLine("Receita Bruta", "Receita", 1, "FEV", 120),
		storetest.StatementLine("Lucro Líquido", "Resultado", 13, "JAN", 30),
	})
	require.NoError(t, err)

	params := store.StagingParams{Year: year}
	_, err = s.Staging.LoadRevenue(ctx, params)
	require.NoError(t, err)
	_, err = s.Staging.LoadExpenses(ctx, params)
	require.NoError(t, err)
	_, err = s.Staging.LoadStatement(ctx, params)
	require.NoError(t, err)
}

func TestWarehouse_CalendarSeededOnce(t *testing.T) {
	ctx := context.Background()
	conn, s := storetest.Open(t)

	n, err := s.Warehouse.LoadCalendar(ctx, year)
	require.NoError(t, err)
	assert.EqualValues(t, 12, n)

	n, err = s.Warehouse.LoadCalendar(ctx, year)
	require.NoError(t, err)
	assert.Zero(t, n)

	var quarter string
	require.NoError(t, conn.Get(&quarter, `SELECT trimestre FROM dw.dim_calendario WHERE data_key = '2025-08'`))
	assert.Equal(t, "2025-Q3", quarter)
}

func TestWarehouse_UpsertAsymmetry(t *testing.T) {
	ctx := context.Background()
	conn, s := storetest.Open(t)
	stageSample(t, s)

	storetest.Exec(t, conn, `INSERT INTO dw.dim_unidade (unidade, is_active, dw_loaded_at) VALUES ('Matriz', FALSE, '2000-01-01 00:00:00')`)
	storetest.Exec(t, conn, `INSERT INTO dw.dim_linha_dre (linha_dre, categoria, ordem, nivel, is_total, dw_loaded_at) VALUES ('Receita Bruta', 'Antiga', 99, 3, TRUE, '2000-01-01 00:00:00')`)

	n, err := s.Warehouse.LoadUnits(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 2, n, "only Filial and Loja are new")

	var unit struct {
		Active   bool      `db:"is_active"`
		LoadedAt time.Time `db:"dw_loaded_at"`
	}
	require.NoError(t, conn.Get(&unit, `SELECT is_active, dw_loaded_at FROM dw.dim_unidade WHERE unidade = 'Matriz'`))
	assert.False(t, unit.Active, "existing units are never overwritten")
	assert.Equal(t, 2000, unit.LoadedAt.Year())

	_, err = s.Warehouse.LoadStatementLines(ctx)
	require.NoError(t, err)

	var line struct {
		Category string    `db:"categoria"`
		Order    int       `db:"ordem"`
		Level    int       `db:"nivel"`
		IsTotal  bool      `db:"is_total"`
		LoadedAt time.Time `db:"dw_loaded_at"`
	}
	require.NoError(t, conn.Get(&line, `SELECT categoria, ordem, nivel, is_total, dw_loaded_at FROM dw.dim_linha_dre WHERE linha_dre = 'Receita Bruta'`))
	assert.Equal(t, "Receita", line.Category, "statement lines are refreshed")
	assert.Equal(t, 1, line.Order)
	assert.Equal(t, types.LevelMajor, line.Level)
	assert.False(t, line.IsTotal)
	assert.Greater(t, line.LoadedAt.Year(), 2000)

	var total bool
	require.NoError(t, conn.Get(&total, `SELECT is_total FROM dw.dim_linha_dre WHERE linha_dre = 'Lucro Líquido'`))
	assert.True(t, total)

	n, err = s.Warehouse.LoadPackages(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 2, n)
	n, err = s.Warehouse.LoadPackages(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestWarehouse_BlankUnitsAndPackagesSkipped(t *testing.T) {
	ctx := context.Background()
	conn, s := storetest.Open(t)

	insert := `INSERT INTO stg.despesa (cenario, data, mes_num, data_key, unidade, pacote, conta, valor)
		VALUES ('Realized', '2025-03-15', 3, '2025-03', ?, ?, 'Conta', -10)`
	storetest.Exec(t, conn, insert, "", "Pessoal")
	storetest.Exec(t, conn, insert, "Matriz", "   ")

	n, err := s.Warehouse.LoadUnits(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)
	assert.EqualValues(t, 1, storetest.Count(t, conn, "dw.dim_unidade"))

	n, err = s.Warehouse.LoadPackages(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)

	var pkg string
	require.NoError(t, conn.Get(&pkg, `SELECT pacote FROM dw.dim_pacote`))
	assert.Equal(t, "Pessoal", pkg)
}

func TestWarehouse_FactReloadIsIdempotent(t *testing.T) {
	ctx := context.Background()
	conn, s := storetest.Open(t)
	stageSample(t, s)

	for i := 0; i < 2; i++ {
		n, err := s.Warehouse.LoadRevenueFacts(ctx)
		require.NoError(t, err)
		assert.EqualValues(t, 2, n)

		n, err = s.Warehouse.LoadExpenseFacts(ctx)
		require.NoError(t, err)
		assert.EqualValues(t, 2, n)

		n, err = s.Warehouse.LoadStatementFacts(ctx, types.ScenarioRealized)
		require.NoError(t, err)
		assert.EqualValues(t, 3, n)
	}

	assert.EqualValues(t, 2, storetest.Count(t, conn, "dw.fact_receita"))
	assert.EqualValues(t, 3, storetest.Count(t, conn, "dw.fact_dre"))

	var scenarios []string
	require.NoError(t, conn.Select(&scenarios, `SELECT DISTINCT cenario FROM dw.fact_dre`))
	assert.Equal(t, []string{types.ScenarioRealized}, scenarios)
}

func TestRuns_Lifecycle(t *testing.T) {
	ctx := context.Background()
	_, s := storetest.Open(t)

	started := time.Now().UTC().Truncate(time.Second)
	run := &store.Run{StartedAt: started, TriggeredBy: store.TriggerManual}
	require.NoError(t, s.Runs.Start(ctx, run))
	require.NotZero(t, run.RunID)

	got, err := s.Runs.Get(ctx, run.RunID)
	require.NoError(t, err)
	assert.Equal(t, store.StatusRunning, got.Status)
	assert.Equal(t, store.PipelineName, got.PipelineName)
	assert.Nil(t, got.FinishedAt)

	msg := "boom"
	require.NoError(t, s.Runs.LogStep(ctx, &store.StepLog{
		RunID: run.RunID, StepName: "extract_excel", StepOrder: 1, Status: store.StatusFailed,
		StartedAt: started, FinishedAt: started.Add(time.Second), ErrorMessage: &msg,
	}))

	outcome := store.RunOutcome{Status: store.StatusFailed, FinishedAt: started.Add(2 * time.Second), DurationSeconds: 2, ErrorMessage: msg}
	require.NoError(t, s.Runs.Finish(ctx, run.RunID, outcome))

	err = s.Runs.Finish(ctx, run.RunID, store.RunOutcome{Status: store.StatusSuccess, FinishedAt: time.Now()})
	assert.True(t, errors.Is(err, store.ErrRunNotRunning))

	got, err = s.Runs.Get(ctx, run.RunID)
	require.NoError(t, err)
	assert.Equal(t, store.StatusFailed, got.Status)
	require.NotNil(t, got.ErrorMessage)
	assert.Equal(t, "boom", *got.ErrorMessage)
	require.NotNil(t, got.DurationSeconds)
	assert.InDelta(t, 2.0, *got.DurationSeconds, 1e-9)

	steps, err := s.Runs.Steps(ctx, run.RunID)
	require.NoError(t, err)
	require.Len(t, steps, 1)
	assert.Equal(t, "extract_excel", steps[0].StepName)

	_, err = s.Runs.Get(ctx, run.RunID+100)
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestRuns_GetLatestNewestFirst(t *testing.T) {
	ctx := context.Background()
	_, s := storetest.Open(t)

	for i := 0; i < 3; i++ {
		require.NoError(t, s.Runs.Start(ctx, &store.Run{StartedAt: time.Now().UTC(), TriggeredBy: store.TriggerAPI}))
	}

	runs, err := s.Runs.GetLatest(ctx, 2)
	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.Greater(t, runs[0].RunID, runs[1].RunID)
}

func TestQuality_OneResultPerRulePerRun(t *testing.T) {
	ctx := context.Background()
	_, s := storetest.Open(t)

	run := &store.Run{StartedAt: time.Now().UTC(), TriggeredBy: store.TriggerManual}
	require.NoError(t, s.Runs.Start(ctx, run))

	actual := 12.0
	result := &store.QualityResult{
		RunID: run.RunID, RuleID: 9, RuleName: "all_months_present_receita",
		Status: store.QualityPass, ActualValue: &actual, Message: "12 months", CheckedAt: time.Now().UTC(),
	}
	require.NoError(t, s.Quality.Save(ctx, result))
	assert.NotZero(t, result.ResultID)

	dup := *result
	assert.Error(t, s.Quality.Save(ctx, &dup))

	results, err := s.Quality.Results(ctx, run.RunID)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Nil(t, results[0].ExpectedValue)
	require.NotNil(t, results[0].ActualValue)
	assert.InDelta(t, 12.0, *results[0].ActualValue, 1e-9)
}

func TestQuality_MeasureBindsArguments(t *testing.T) {
	_, s := storetest.Open(t)

	m, err := s.Quality.Measure(context.Background(),
		`SELECT CASE WHEN CAST(? AS NUMERIC) > 1 THEN 'PASS' ELSE 'FAIL' END AS status,
			CAST(? AS NUMERIC) AS actual_value,
			NULL AS expected_value,
			'ok' AS message`, 2.5, 2.5)
	require.NoError(t, err)
	assert.Equal(t, store.QualityPass, m.Status)
	assert.True(t, m.Actual.Valid)
	assert.False(t, m.Expected.Valid)
	assert.Equal(t, "ok", m.Message.String)
}

func TestReports(t *testing.T) {
	ctx := context.Background()
	_, s := storetest.Open(t)
	stageSample(t, s)

	_, err := s.Warehouse.LoadCalendar(ctx, year)
	require.NoError(t, err)
	_, err = s.Warehouse.LoadStatementLines(ctx)
	require.NoError(t, err)
	_, err = s.Warehouse.LoadRevenueFacts(ctx)
	require.NoError(t, err)
	_, err = s.Warehouse.LoadExpenseFacts(ctx)
	require.NoError(t, err)
	_, err = s.Warehouse.LoadStatementFacts(ctx, types.ScenarioRealized)
	require.NoError(t, err)

	summary, err := s.Reports.StatementSummary(ctx)
	require.NoError(t, err)
	assert.InDelta(t, 220, summary.GrossRevenue, 1e-9)
	assert.InDelta(t, 30, summary.NetIncome, 1e-9)
	require.NotNil(t, summary.NetMargin)
	assert.InDelta(t, 30.0/220*100, *summary.NetMargin, 1e-9)

	monthly, err := s.Reports.MonthlyStatement(ctx, store.MonthlyFilter{Line: "%bruta%"})
	require.NoError(t, err)
	require.Len(t, monthly, 2)
	assert.Equal(t, "2025-01", monthly[0].DataKey)
	assert.Equal(t, "FEV", monthly[1].Abbrev)

	revenue, err := s.Reports.RevenueByScenario(ctx, store.BreakdownFilter{Scenario: types.ScenarioRealized})
	require.NoError(t, err)
	require.Len(t, revenue, 2)
	assert.Equal(t, "SALES", revenue[0].RevenueType)

	expenses, err := s.Reports.TopExpensePackages(ctx, store.BreakdownFilter{Limit: 1})
	require.NoError(t, err)
	require.Len(t, expenses, 1)
	assert.Equal(t, "Marketing", expenses[0].Package)
}
