package db

import (
	"context"
	"database/sql"
	"database/sql/driver"
	_ "embed"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/mattn/go-sqlite3"
)

// Schemas are the warehouse layers. On SQLite each one is a separate
// database attached under its own name so queries can keep the
// schema-qualified table names used on Postgres.
var Schemas = []string{"raw", "stg", "dw"}

//go:embed schema/sqlite.sql
var sqliteSchema string

const memoryDSN = ":memory:"

type sqliteConnector struct {
	driver *sqlite3.SQLiteDriver
	dsn    string
}

func (c *sqliteConnector) Connect(context.Context) (driver.Conn, error) {
	return c.driver.Open(c.dsn)
}

func (c *sqliteConnector) Driver() driver.Driver {
	return c.driver
}

func newSQLite(path string) (*sqlx.DB, error) {
	if path == "" {
		path = memoryDSN
	}

	drv := &sqlite3.SQLiteDriver{
		ConnectHook: func(conn *sqlite3.SQLiteConn) error {
			for _, schema := range Schemas {
				if _, err := conn.Exec("ATTACH DATABASE ? AS "+schema, []driver.Value{attachPath(path, schema)}); err != nil {
					return fmt.Errorf("attach %s: %w", schema, err)
				}
			}
			return nil
		},
	}

	sqldb := sql.OpenDB(&sqliteConnector{driver: drv, dsn: path})
	// Attached in-memory databases live only as long as their connection.
	sqldb.SetMaxOpenConns(1)
	sqldb.SetMaxIdleConns(1)
	sqldb.SetConnMaxLifetime(0)
	sqldb.SetConnMaxIdleTime(0)

	db := sqlx.NewDb(sqldb, DriverSQLite)
	if err := Ping(context.Background(), db); err != nil {
		db.Close()
		return nil, err
	}

	if _, err := db.Exec(sqliteSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create sqlite schema: %w", err)
	}

	return db, nil
}

// attachPath places each layer next to the main database file, e.g.
// warehouse.db -> warehouse_raw.db.
func attachPath(path, schema string) string {
	if path == memoryDSN || strings.HasPrefix(path, "file::memory:") {
		return memoryDSN
	}
	base := strings.TrimSuffix(path, filepath.Ext(path))
	return base + "_" + schema + ".db"
}
