package store

import (
	"context"
	"fmt"
	"strings"

	"github.com/go-sql-driver/mysql"
	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"github.com/cesargomez89/mixtape/internal/constants"
)

type DB struct {
	*sqlx.DB
	dialect dialect
}

// Open connects to the configured database and applies the schema.
func Open(ctx context.Context, driver, dsn string) (*DB, error) {
	d, ok := dialects[driver]
	if !ok {
		return nil, fmt.Errorf("unsupported db driver %q", driver)
	}

	dsn, err := d.prepareDSN(dsn)
	if err != nil {
		return nil, fmt.Errorf("invalid dsn: %w", err)
	}

	conn, err := sqlx.Open(d.driverName, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open db: %w", err)
	}

	if err := conn.PingContext(ctx); err != nil {
		conn.Close() //nolint:errcheck // already failing
		return nil, fmt.Errorf("failed to ping db: %w", err)
	}

	db := &DB{DB: conn, dialect: d}
	if err := db.Migrate(ctx); err != nil {
		conn.Close() //nolint:errcheck // already failing
		return nil, err
	}
	return db, nil
}

// Migrate applies the schema and records its version. Safe to run repeatedly.
func (db *DB) Migrate(ctx context.Context) error {
	for _, stmt := range db.dialect.schema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to apply schema: %w", err)
		}
	}

	if _, err := db.ExecContext(ctx, db.dialect.recordMigration, SchemaVersion, SchemaDescription); err != nil {
		return fmt.Errorf("failed to record schema version: %w", err)
	}
	return nil
}

// AppliedVersion returns the newest recorded schema version.
func (db *DB) AppliedVersion(ctx context.Context) (int, error) {
	var version int
	err := db.GetContext(ctx, &version, `SELECT COALESCE(MAX(version), 0) FROM schema_migrations`)
	if err != nil {
		return 0, fmt.Errorf("failed to read schema version: %w", err)
	}
	return version, nil
}

func (db *DB) Close() error {
	return db.DB.Close()
}

type dialect struct {
	prepareDSN      func(string) (string, error)
	driverName      string
	recordMigration string
	upsertUser      string
	schema          []string
}

var dialects = map[string]dialect{
	constants.DriverSQLite: {
		driverName:      "sqlite",
		prepareDSN:      sqliteDSN,
		schema:          sqliteSchema,
		recordMigration: `INSERT OR IGNORE INTO schema_migrations (version, description) VALUES (?, ?)`,
		upsertUser: `INSERT INTO users (email, display_name, created_at) VALUES (?, ?, ?)
			ON CONFLICT(email) DO UPDATE SET display_name = excluded.display_name`,
	},
	constants.DriverMySQL: {
		driverName:      "mysql",
		prepareDSN:      mysqlDSN,
		schema:          mysqlSchema,
		recordMigration: `INSERT IGNORE INTO schema_migrations (version, description) VALUES (?, ?)`,
		upsertUser: `INSERT INTO users (email, display_name, created_at) VALUES (?, ?, ?)
			ON DUPLICATE KEY UPDATE display_name = VALUES(display_name)`,
	},
}

// sqliteDSN turns on WAL, a busy timeout and foreign keys for every pooled connection.
func sqliteDSN(dsn string) (string, error) {
	if strings.Contains(dsn, "_pragma=") {
		return dsn, nil
	}
	sep := "?"
	if strings.Contains(dsn, "?") {
		sep = "&"
	}
	return dsn + sep + "_pragma=journal_mode(WAL)&_pragma=busy_timeout(30000)&_pragma=foreign_keys(1)", nil
}

// mysqlDSN forces the options the repository relies on: parsed DATETIME columns and
// matched (not changed) row counts so an idempotent update still finds its row.
func mysqlDSN(dsn string) (string, error) {
	cfg, err := mysql.ParseDSN(dsn)
	if err != nil {
		return "", err
	}
	cfg.ParseTime = true
	cfg.ClientFoundRows = true
	return cfg.FormatDSN(), nil
}
