package db

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"log"
	"strconv"
	"strings"
	"sync"

	_ "github.com/jackc/pgx/v5/stdlib"
	_ "github.com/mattn/go-sqlite3"
	"github.com/pressly/goose/v3"
)

//go:embed migrations/sqlite/*.sql migrations/postgres/*.sql
var migrationsFS embed.FS

// Dialect identifies the SQL flavour of a connection.
type Dialect string

const (
	SQLite   Dialect = "sqlite3"
	Postgres Dialect = "postgres"
)

// DialectFor maps a database/sql driver name to its dialect.
func DialectFor(driver string) (Dialect, error) {
	switch driver {
	case "sqlite3":
		return SQLite, nil
	case "pgx", "postgres":
		return Postgres, nil
	}
	return "", fmt.Errorf("unsupported driver %q", driver)
}

// DriverName returns the registered database/sql driver for the dialect.
func (d Dialect) DriverName() string {
	if d == Postgres {
		return "pgx"
	}
	return "sqlite3"
}

func (d Dialect) migrationsDir() string {
	if d == Postgres {
		return "migrations/postgres"
	}
	return "migrations/sqlite"
}

// Rebind rewrites ? placeholders into the positional form the dialect expects.
func (d Dialect) Rebind(query string) string {
	if d != Postgres || !strings.Contains(query, "?") {
		return query
	}
	var b strings.Builder
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// goose keeps its dialect and filesystem in package state.
var migrateMu sync.Mutex

// InitDB runs the embedded migrations for the dialect. A nil logger silences goose.
func InitDB(ctx context.Context, db *sql.DB, dialect Dialect, logger *log.Logger) error {
	migrateMu.Lock()
	defer migrateMu.Unlock()

	if err := goose.SetDialect(string(dialect)); err != nil {
		return err
	}
	if logger != nil {
		goose.SetLogger(logger)
	} else {
		goose.SetLogger(goose.NopLogger())
	}
	goose.SetBaseFS(migrationsFS)
	defer goose.SetBaseFS(nil)
	if err := goose.UpContext(ctx, db, dialect.migrationsDir()); err != nil {
		return fmt.Errorf("migrate %s: %w", dialect, err)
	}
	return nil
}

// Open opens a connection for driver and dsn and migrates it. In-memory sqlite
// databases are pinned to a single connection so every query sees the same data.
func Open(ctx context.Context, driver, dsn string, logger *log.Logger) (*sql.DB, Dialect, error) {
	dialect, err := DialectFor(driver)
	if err != nil {
		return nil, "", err
	}
	conn, err := sql.Open(dialect.DriverName(), dsn)
	if err != nil {
		return nil, "", fmt.Errorf("open %s: %w", driver, err)
	}
	if dialect == SQLite {
		conn.SetMaxOpenConns(1)
	}
	if err := InitDB(ctx, conn, dialect, logger); err != nil {
		conn.Close()
		return nil, "", err
	}
	return conn, dialect, nil
}
