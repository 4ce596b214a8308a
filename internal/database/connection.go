package database

import (
	"context"
	"embed"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/Masterminds/squirrel"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
	"github.com/pressly/goose/v3"
	"go.uber.org/zap"

	"github.com/example/wordcards/internal/config"
)

//go:embed migrations/*.sql
var migrations embed.FS

// DB wraps the state database connection together with a query builder
// using the placeholder style of the selected driver.
type DB struct {
	db     *sqlx.DB
	driver string
	psql   squirrel.StatementBuilderType
}

// Connect establishes a connection to the database selected by cfg
func Connect(cfg config.DatabaseConfig) (*DB, error) {
	switch cfg.Driver {
	case "sqlite3":
		return connectSQLite(cfg.DSN)
	case "postgres", "pgx":
		return connectPostgres(cfg.Driver, cfg.DSN)
	}
	return nil, fmt.Errorf("connect to database (driver: %s): unsupported driver", cfg.Driver)
}

func connectSQLite(dsn string) (*DB, error) {
	if dir := sqliteDir(dsn); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create data directory (dir: %s): %w", dir, err)
		}
	}

	db, err := sqlx.Connect("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("connect to database (dsn: %s): %w", dsn, err)
	}

	// SQLite doesn't support multiple writers; one connection also keeps
	// an in-memory database alive for the lifetime of the pool
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if _, err = db.Exec("PRAGMA busy_timeout = 5000"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set busy timeout: %w", err)
	}

	return &DB{
		db:     db,
		driver: "sqlite3",
		psql:   squirrel.StatementBuilder.PlaceholderFormat(squirrel.Question),
	}, nil
}

func connectPostgres(driver, dsn string) (*DB, error) {
	db, err := sqlx.Connect(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("connect to database (driver: %s): %w", driver, err)
	}

	db.SetMaxIdleConns(2)
	db.SetMaxOpenConns(5)
	db.SetConnMaxLifetime(time.Hour)
	db.SetConnMaxIdleTime(time.Minute * 10)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second*5)
	defer cancel()
	if err = db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	return &DB{
		db:     db,
		driver: driver,
		psql:   squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}, nil
}

// sqliteDir returns the directory that has to exist for a file-backed DSN
func sqliteDir(dsn string) string {
	if dsn == "" || strings.Contains(dsn, ":memory:") || strings.Contains(dsn, "mode=memory") {
		return ""
	}
	path := strings.TrimPrefix(dsn, "file:")
	if i := strings.IndexByte(path, '?'); i >= 0 {
		path = path[:i]
	}
	dir := filepath.Dir(path)
	if dir == "." {
		return ""
	}
	return dir
}

// Close closes the database connection
func (d *DB) Close() error {
	if d == nil || d.db == nil {
		return nil
	}
	return d.db.Close()
}

// Up applies all pending schema migrations
func (d *DB) Up(ctx context.Context) error {
	dialect := goose.DialectPostgres
	if d.driver == "sqlite3" {
		dialect = goose.DialectSQLite3
	}

	fsys, err := fs.Sub(migrations, "migrations")
	if err != nil {
		return fmt.Errorf("open migrations: %w", err)
	}

	provider, err := goose.NewProvider(dialect, d.db.DB, fsys)
	if err != nil {
		return fmt.Errorf("create migration provider (driver: %s): %w", d.driver, err)
	}

	results, err := provider.Up(ctx)
	if err != nil {
		return fmt.Errorf("run migrations (driver: %s): %w", d.driver, err)
	}
	for _, r := range results {
		zap.S().Infow("migration applied", "source", r.Source.Path, "duration", r.Duration)
	}

	return nil
}

// RunInTx runs fn inside a transaction, rolling back when it fails
func (d *DB) RunInTx(ctx context.Context, fn func(tx *sqlx.Tx) error) error {
	tx, err := d.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}

	if err = fn(tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			zap.S().Errorw("rollback transaction", "error", rbErr)
		}
		return err
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}
