package db

import (
	"fmt"

	"github.com/jmoiron/sqlx"
)

// Dialect covers the few statements that cannot be written the same way on
// both engines. Everything else uses portable SQL with db.Rebind.
type Dialect interface {
	Name() string
	// Truncate empties a table inside the current transaction.
	Truncate(table string) string
	// MonthOf extracts the month number of a date column as an integer.
	MonthOf(column string) string
}

type postgresDialect struct{}

func (postgresDialect) Name() string { return DriverPostgres }

func (postgresDialect) Truncate(table string) string {
	return fmt.Sprintf("TRUNCATE TABLE %s", table)
}

func (postgresDialect) MonthOf(column string) string {
	return fmt.Sprintf("CAST(EXTRACT(MONTH FROM %s) AS INTEGER)", column)
}

type sqliteDialect struct{}

func (sqliteDialect) Name() string { return DriverSQLite }

func (sqliteDialect) Truncate(table string) string {
	return fmt.Sprintf("DELETE FROM %s", table)
}

func (sqliteDialect) MonthOf(column string) string {
	return fmt.Sprintf("CAST(strftime('%%m', %s) AS INTEGER)", column)
}

func DialectFor(driverName string) Dialect {
	if driverName == DriverSQLite {
		return sqliteDialect{}
	}
	return postgresDialect{}
}

func DialectOf(db *sqlx.DB) Dialect {
	return DialectFor(db.DriverName())
}
