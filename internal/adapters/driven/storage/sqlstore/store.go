package sqlstore

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"io/fs"
	"net"
	"net/url"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/go-sql-driver/mysql"
	_ "github.com/jackc/pgx/v5/stdlib" // PostgreSQL driver
	_ "modernc.org/sqlite"             // SQLite driver

	"github.com/custodia-labs/urbanbot/internal/adapters/driven/storage/sqlstore/migrations"
	"github.com/custodia-labs/urbanbot/internal/core/domain"
)

// Connection defaults.
const (
	DefaultMySQLPort    = 3306
	DefaultPostgresPort = 5432
	DefaultDialTimeout  = 5 * time.Second
	sqliteFileName      = "events.db"
)

// Store is a database/sql backed event store.
type Store struct {
	db      *sql.DB
	driver  domain.StoreDriver
	dialect dialect
	path    string
}

// Open connects to the event database selected by cfg.Driver.
func Open(cfg domain.DatabaseSettings) (*Store, error) {
	switch cfg.Driver {
	case domain.StoreDriverMySQL, "":
		return OpenMySQL(cfg)
	case domain.StoreDriverPostgres:
		return OpenPostgres(cfg)
	case domain.StoreDriverSQLite:
		return OpenSQLite(cfg.Path)
	default:
		return nil, fmt.Errorf("%w: database driver %q", domain.ErrUnsupportedProvider, cfg.Driver)
	}
}

// OpenMySQL opens a pooled MySQL connection. The connection is lazy; call
// Ping to verify reachability. Values are read without time parsing so
// DATETIME columns come back in their stored text form.
func OpenMySQL(cfg domain.DatabaseSettings) (*Store, error) {
	db, err := sql.Open("mysql", mysqlDSN(cfg))
	if err != nil {
		return nil, fmt.Errorf("opening mysql: %w", err)
	}
	return pooled(db, domain.StoreDriverMySQL), nil
}

// OpenPostgres opens a pooled PostgreSQL connection through pgx. Like
// OpenMySQL the pool is lazy.
func OpenPostgres(cfg domain.DatabaseSettings) (*Store, error) {
	db, err := sql.Open("pgx", postgresDSN(cfg))
	if err != nil {
		return nil, fmt.Errorf("opening postgres: %w", err)
	}
	return pooled(db, domain.StoreDriverPostgres), nil
}

func pooled(db *sql.DB, driver domain.StoreDriver) *Store {
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)
	return &Store{db: db, driver: driver, dialect: dialectFor(driver)}
}

func mysqlDSN(cfg domain.DatabaseSettings) string {
	port := cfg.Port
	if port == 0 {
		port = DefaultMySQLPort
	}

	mc := mysql.NewConfig()
	mc.User = cfg.User
	mc.Passwd = cfg.Password
	mc.Net = "tcp"
	mc.Addr = net.JoinHostPort(cfg.Host, strconv.Itoa(port))
	mc.DBName = cfg.Name
	mc.Timeout = DefaultDialTimeout
	mc.ParseTime = false
	return mc.FormatDSN()
}

func postgresDSN(cfg domain.DatabaseSettings) string {
	// The settings default is the MySQL port.
	port := cfg.Port
	if port == 0 || port == DefaultMySQLPort {
		port = DefaultPostgresPort
	}

	u := url.URL{
		Scheme: "postgres",
		User:   url.UserPassword(cfg.User, cfg.Password),
		Host:   net.JoinHostPort(cfg.Host, strconv.Itoa(port)),
		Path:   "/" + cfg.Name,
	}
	q := url.Values{}
	q.Set("connect_timeout", strconv.Itoa(int(DefaultDialTimeout.Seconds())))
	u.RawQuery = q.Encode()
	return u.String()
}

// OpenSQLite opens (creating if needed) a SQLite event database and runs
// pending migrations. If path is empty, defaults to ~/.urbanbot/data/events.db.
func OpenSQLite(path string) (*Store, error) {
	if path == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("getting home directory: %w", err)
		}
		path = filepath.Join(home, ".urbanbot", "data", sqliteFileName)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	// WAL mode lets readers proceed during writes from ingestion jobs.
	db, err := sql.Open("sqlite", path+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Store{
		db:      db,
		driver:  domain.StoreDriverSQLite,
		dialect: sqliteDialect,
		path:    path,
	}

	if err := s.migrate(migrations.FS); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return s, nil
}

// Driver returns the backing database driver.
func (s *Store) Driver() domain.StoreDriver {
	return s.driver
}

// Path returns the SQLite file path, or "" for network drivers.
func (s *Store) Path() string {
	return s.path
}

// Ping verifies the database is reachable.
func (s *Store) Ping(ctx context.Context) error {
	if err := s.db.PingContext(ctx); err != nil {
		return fmt.Errorf("%s: ping: %w", s.driver, err)
	}
	return nil
}

// Close closes the database connection pool.
func (s *Store) Close() error {
	return s.db.Close()
}

// migrate runs all pending migrations.
func (s *Store) migrate(fsys embed.FS) error {
	// Ensure schema_migrations table exists
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return fmt.Errorf("creating schema_migrations table: %w", err)
	}

	var currentVersion int
	row := s.db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_migrations")
	if err := row.Scan(&currentVersion); err != nil {
		return fmt.Errorf("getting current version: %w", err)
	}

	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return fmt.Errorf("reading migrations directory: %w", err)
	}

	var upFiles []string
	for _, entry := range entries {
		name := entry.Name()
		if strings.HasSuffix(name, ".up.sql") {
			upFiles = append(upFiles, name)
		}
	}
	sort.Strings(upFiles)

	for _, name := range upFiles {
		// Extract version number (e.g., "001_events.up.sql" -> 1)
		var version int
		if _, err := fmt.Sscanf(name, "%d_", &version); err != nil {
			continue
		}

		if version <= currentVersion {
			continue
		}

		content, err := fs.ReadFile(fsys, name)
		if err != nil {
			return fmt.Errorf("reading migration %s: %w", name, err)
		}

		if _, err := s.db.Exec(string(content)); err != nil {
			return fmt.Errorf("executing migration %s: %w", name, err)
		}
	}

	return nil
}
