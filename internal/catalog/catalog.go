// Package catalog is the relational store the scanner writes to: a single
// SQLite database, opened the way the teacher's Library opens its own
// database (sql.Open + Ping + CREATE TABLE IF NOT EXISTS), generalized to
// the full schema spec §3 requires and migrated via glebarez/go-sqlite
// (the teacher's own declared direct dependency; mattn/go-sqlite3's cgo
// requirement is dropped, see DESIGN.md).
package catalog

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/glebarez/go-sqlite"

	"github.com/bleemesser/gpcat/internal/catalogerr"
)

// Catalog owns one SQLite store. Per spec §3's ownership rule, the
// writer thread holds the single write connection exclusively; readPool
// is a separate connection pool for concurrent read queries (the I/O
// workers' change-detection lookups, the error summary) that must not
// block on writer transactions.
type Catalog struct {
	write    *sql.DB
	readPool *sql.DB
	path     string
}

// Open opens (creating if absent) the SQLite store at path, enables
// write-ahead logging, sets a busy timeout so concurrent readers don't
// immediately fail against the writer's transactions, and applies any
// pending migrations.
func Open(path string) (*Catalog, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, catalogerr.NewFatal(catalogerr.StoreUnreachable, "create catalog directory", err)
		}
	}

	write, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, catalogerr.NewFatal(catalogerr.StoreUnreachable, "open catalog store", err)
	}
	write.SetMaxOpenConns(1)

	readPool, err := sql.Open("sqlite", path)
	if err != nil {
		write.Close()
		return nil, catalogerr.NewFatal(catalogerr.StoreUnreachable, "open catalog read pool", err)
	}

	c := &Catalog{write: write, readPool: readPool, path: path}

	if err := c.write.Ping(); err != nil {
		c.Close()
		return nil, catalogerr.NewFatal(catalogerr.StoreUnreachable, "ping catalog store", err)
	}

	for _, pragma := range []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA busy_timeout = 5000",
		"PRAGMA foreign_keys = ON",
	} {
		if _, err := c.write.Exec(pragma); err != nil {
			c.Close()
			return nil, catalogerr.NewFatal(catalogerr.StoreUnreachable, fmt.Sprintf("apply %s", pragma), err)
		}
	}
	if _, err := c.readPool.Exec("PRAGMA busy_timeout = 5000"); err != nil {
		c.Close()
		return nil, catalogerr.NewFatal(catalogerr.StoreUnreachable, "configure read pool", err)
	}

	if err := c.migrate(); err != nil {
		c.Close()
		return nil, err
	}

	return c, nil
}

// Close releases both connection pools.
func (c *Catalog) Close() error {
	var firstErr error
	if c.write != nil {
		firstErr = c.write.Close()
	}
	if c.readPool != nil {
		if err := c.readPool.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// migrate applies pending migrations in lexicographic version order.
// Every migration statement uses IF NOT EXISTS, so re-applying an
// already-migrated store is a no-op, satisfying §3's idempotency
// requirement.
func (c *Catalog) migrate() error {
	if _, err := c.write.Exec(`CREATE TABLE IF NOT EXISTS schema_version (
		version TEXT PRIMARY KEY,
		applied_at TEXT NOT NULL
	)`); err != nil {
		return catalogerr.NewFatal(catalogerr.SchemaMismatch, "create schema_version table", err)
	}

	applied := make(map[string]bool)
	rows, err := c.write.Query("SELECT version FROM schema_version")
	if err != nil {
		return catalogerr.NewFatal(catalogerr.SchemaMismatch, "read schema_version", err)
	}
	for rows.Next() {
		var v string
		if err := rows.Scan(&v); err != nil {
			rows.Close()
			return catalogerr.NewFatal(catalogerr.SchemaMismatch, "scan schema_version", err)
		}
		applied[v] = true
	}
	rows.Close()

	for _, m := range migrations {
		if applied[m.version] {
			continue
		}
		tx, err := c.write.Begin()
		if err != nil {
			return catalogerr.NewFatal(catalogerr.SchemaMismatch, "begin migration "+m.version, err)
		}
		for _, stmt := range m.stmts {
			if _, err := tx.Exec(stmt); err != nil {
				tx.Rollback()
				return catalogerr.NewFatal(catalogerr.SchemaMismatch, "apply migration "+m.version, err)
			}
		}
		if _, err := tx.Exec("INSERT INTO schema_version (version, applied_at) VALUES (?, ?)", m.version, time.Now().UTC().Format(time.RFC3339Nano)); err != nil {
			tx.Rollback()
			return catalogerr.NewFatal(catalogerr.SchemaMismatch, "record migration "+m.version, err)
		}
		if err := tx.Commit(); err != nil {
			return catalogerr.NewFatal(catalogerr.SchemaMismatch, "commit migration "+m.version, err)
		}
	}

	return nil
}

// WriteConn exposes the single write connection for the writer thread.
// Only the writer goroutine may use it, per spec §3/§5.
func (c *Catalog) WriteConn() *sql.DB { return c.write }

// ReadConn exposes the read-only connection pool for concurrent queries
// that must not contend with writer transactions.
func (c *Catalog) ReadConn() *sql.DB { return c.readPool }

// Ping verifies the store is still reachable, returning a
// store_unreachable fatal error when it is not (§7: "store
// unreachable/corrupt" is fatal).
func (c *Catalog) Ping(ctx context.Context) error {
	if err := c.write.PingContext(ctx); err != nil {
		return catalogerr.NewFatal(catalogerr.StoreUnreachable, "catalog store unreachable", err)
	}
	return nil
}
