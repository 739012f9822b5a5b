// Package sqlstore provides the database/sql implementation of driven.EventStore.
//
// Three drivers are supported behind the same query code:
//
//   - MySQL (github.com/go-sql-driver/mysql) for the production event database
//   - PostgreSQL (github.com/jackc/pgx/v5/stdlib) for reporting replicas
//   - SQLite (modernc.org/sqlite) for local development and tests
//
// Identifier quoting and bind markers come from a per-driver dialect, and
// every cell is rendered to text the same way regardless of driver.
//
// # Schema
//
// The MySQL and PostgreSQL schemas are owned by the ingestion pipelines
// that write events.
// SQLite databases are created from versioned migrations embedded from the
// migrations/ directory.
//
// # Testing
//
// Tests tagged "integration" run the store against MySQL and PostgreSQL
// containers seeded from testdata/.
//
// # Data Location
//
// By default, the SQLite database is stored at ~/.urbanbot/data/events.db
//
// # Thread Safety
//
// All operations are thread-safe. Connections are pooled by *sql.DB.
package sqlstore
