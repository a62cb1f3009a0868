// Package database wraps database/sql with reader/writer separation and the
// driver-registration glue the catalog store needs, adapted from the
// connection-pool pattern of the service this project's conventions are
// drawn from.
package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/kestrelgames/gamestore/pkg/config"
	_ "github.com/go-sql-driver/mysql" // MySQL driver
	_ "github.com/lib/pq"              // PostgreSQL driver
	_ "github.com/mattn/go-sqlite3"    // SQLite driver
)

// Connection holds a writer handle and, for external mode, an optional
// separate reader handle.
type Connection struct {
	writer *sql.DB
	reader *sql.DB
	dbType string
}

// Open opens a database connection according to cfg.
func Open(cfg *config.DatabaseConfig) (*Connection, error) {
	if cfg == nil {
		return nil, fmt.Errorf("database configuration is nil")
	}

	switch cfg.Mode {
	case config.DatabaseModeExternal:
		return openExternal(cfg)
	case config.DatabaseModeEmbedded, "":
		return openEmbedded(cfg)
	default:
		return nil, fmt.Errorf("unsupported database mode: %s", cfg.Mode)
	}
}

func openEmbedded(cfg *config.DatabaseConfig) (*Connection, error) {
	if cfg.Embedded == nil {
		return nil, fmt.Errorf("embedded database configuration is required")
	}

	dsn := cfg.Embedded.Path
	if cfg.Embedded.WALMode {
		dsn += "?_journal_mode=WAL&_foreign_keys=on"
	} else {
		dsn += "?_foreign_keys=on"
	}

	db, err := sql.Open(driverName(cfg.GetDatabaseType()), dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	// SQLite does not benefit from concurrent writers.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	return &Connection{writer: db, reader: db, dbType: "sqlite"}, nil
}

func openExternal(cfg *config.DatabaseConfig) (*Connection, error) {
	if cfg.External == nil {
		return nil, fmt.Errorf("external database configuration is required")
	}
	driver := driverName(cfg.GetDatabaseType())

	writer, err := sql.Open(driver, cfg.External.WriterDSN)
	if err != nil {
		return nil, fmt.Errorf("failed to open writer database: %w", err)
	}
	if err := writer.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping writer database: %w", err)
	}
	configurePool(writer, cfg.External)

	reader := writer
	if cfg.External.ReaderDSN != "" {
		reader, err = sql.Open(driver, cfg.External.ReaderDSN)
		if err != nil {
			return nil, fmt.Errorf("failed to open reader database: %w", err)
		}
		if err := reader.Ping(); err != nil {
			return nil, fmt.Errorf("failed to ping reader database: %w", err)
		}
		configurePool(reader, cfg.External)
	}

	return &Connection{writer: writer, reader: reader, dbType: cfg.GetDatabaseType()}, nil
}

func configurePool(db *sql.DB, cfg *config.ExternalDBConfig) {
	if cfg.MaxConnections > 0 {
		db.SetMaxOpenConns(cfg.MaxConnections)
	}
	if cfg.MaxIdleConns > 0 {
		db.SetMaxIdleConns(cfg.MaxIdleConns)
	}
	if cfg.ConnMaxLifetime != "" {
		if lifetime, err := time.ParseDuration(cfg.ConnMaxLifetime); err == nil {
			db.SetConnMaxLifetime(lifetime)
		}
	}
}

// Writer returns the connection used for all mutations.
func (c *Connection) Writer() *sql.DB { return c.writer }

// Reader returns the connection used for reads (equal to Writer in embedded
// mode, or when no reader DSN is configured).
func (c *Connection) Reader() *sql.DB { return c.reader }

// DriverType reports the SQL dialect in use, for callers that must vary
// schema DDL (e.g. AUTOINCREMENT vs SERIAL).
func (c *Connection) DriverType() string { return c.dbType }

// Close closes both handles, avoiding a double-close when reader == writer.
func (c *Connection) Close() error {
	var err error
	if c.writer != nil {
		err = c.writer.Close()
	}
	if c.reader != nil && c.reader != c.writer {
		if rerr := c.reader.Close(); rerr != nil && err == nil {
			err = rerr
		}
	}
	return err
}

// PingContext checks both handles are reachable.
func (c *Connection) PingContext(ctx context.Context) error {
	if err := c.writer.PingContext(ctx); err != nil {
		return fmt.Errorf("writer ping failed: %w", err)
	}
	if c.reader != c.writer {
		if err := c.reader.PingContext(ctx); err != nil {
			return fmt.Errorf("reader ping failed: %w", err)
		}
	}
	return nil
}

// driverName maps the configured dialect name to the database/sql driver
// name registered by the imported drivers above.
func driverName(dbType string) string {
	switch dbType {
	case "postgresql", "postgres":
		return "postgres"
	case "mysql":
		return "mysql"
	case "sqlite", "":
		return "sqlite3"
	default:
		return dbType
	}
}
