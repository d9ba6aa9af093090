// Package storetest opens throwaway warehouses for tests.
package storetest

import (
	"testing"

	"github.com/farxc/dre_warehouse/internal/db"
	"github.com/farxc/dre_warehouse/internal/store"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"
)

// Open returns an empty in-memory SQLite warehouse with every layer created.
// It is closed when the test ends.
func Open(t testing.TB) (*sqlx.DB, *store.Storage) {
	t.Helper()

	conn, err := db.New(db.DriverSQLite, ":memory:", 1, 1, "")
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })

	return conn, store.NewStorage(conn)
}

// Count returns the number of rows of a schema-qualified table.
func Count(t testing.TB, conn *sqlx.DB, table string) int64 {
	t.Helper()

	var n int64
	require.NoError(t, conn.Get(&n, "SELECT COUNT(*) FROM "+table))
	return n
}

// Exec runs a statement written with '?' placeholders.
func Exec(t testing.TB, conn *sqlx.DB, query string, args ...any) {
	t.Helper()

	_, err := conn.Exec(conn.Rebind(query), args...)
	require.NoError(t, err)
}

func Revenue(scenario, revenueType, unit, month string, value float64) store.RawRevenue {
	return store.RawRevenue{
		Scenario:    scenario,
		RevenueType: revenueType,
		Unit:        unit,
		Month:       month,
		Value:       value,
		Provenance:  store.Provenance{SourceFile: "test.xlsx", SourceSheet: "receita", BatchID: "test"},
	}
}

func StatementLine(line, category string, order int, month string, value float64) store.RawStatementLine {
	return store.RawStatementLine{
		Line:       line,
		Category:   category,
		Order:      order,
		Month:      month,
		Value:      value,
		Provenance: store.Provenance{SourceFile: "test.xlsx", SourceSheet: "dre", BatchID: "test"},
	}
}
