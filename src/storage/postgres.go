package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"tariff-observer/src/helpers"
	"tariff-observer/src/logger"
	"tariff-observer/src/models"

	_ "github.com/lib/pq"
)

var schemaNameRegex = regexp.MustCompile(`[^a-z0-9_]+`)

// -----------------------------------------------------------------------------

type PostgresDB struct {
	Config *models.MConfig
	DB     *sql.DB
	Schema string
	Logger *logger.Logger
}

// -----------------------------------------------------------------------------

func NewPostgresDB(cfg *models.MConfig, log *logger.Logger) (*PostgresDB, error) {
	return &PostgresDB{
		Config: cfg,
		Schema: SchemaName(cfg.Name),
		Logger: log,
	}, nil
}

// SchemaName derives a safe schema identifier from the application name.
func SchemaName(name string) string {
	s := schemaNameRegex.ReplaceAllString(strings.ToLower(strings.TrimSpace(name)), "_")
	s = strings.Trim(s, "_")
	if s == "" {
		return "tariff_observer"
	}
	return s
}

// -----------------------------------------------------------------------------

func (d *PostgresDB) Initialize(ctx context.Context) error {
	dsn := d.Config.Cache.DBConnectionString
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return helpers.NewCacheError("open postgres cache", err)
	}

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return helpers.NewCacheError("ping postgres cache", err)
	}

	d.DB = db

	// Create Schema
	if _, err := d.DB.ExecContext(ctx, fmt.Sprintf(`CREATE SCHEMA IF NOT EXISTS "%s"`, d.Schema)); err != nil {
		return fmt.Errorf("failed to create schema %s: %w", d.Schema, err)
	}

	if err := d.createTables(ctx); err != nil {
		return err
	}

	d.Logger.Info("PostgresDB initialized successfully (Schema: %s)", d.Schema)
	return nil
}

// -----------------------------------------------------------------------------

func (d *PostgresDB) table(name string) string {
	return fmt.Sprintf(`"%s"."%s"`, d.Schema, name)
}

func (d *PostgresDB) createTables(ctx context.Context) error {
	query := fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS %s (
			location TEXT,
			bucket BIGINT,
			data BYTEA,
			fetched_at BIGINT,
			PRIMARY KEY (location, bucket)
		);
	`, d.table("fetch_cache"))
	if _, err := d.DB.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("failed to create fetch_cache: %w", err)
	}

	query = fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS %s (
			name TEXT PRIMARY KEY,
			kind TEXT,
			panel TEXT,
			location TEXT,
			updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		);
	`, d.table("sources"))
	if _, err := d.DB.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("failed to create sources: %w", err)
	}

	return nil
}

// -----------------------------------------------------------------------------

func (d *PostgresDB) Get(ctx context.Context, location string, bucket int64) ([]byte, bool, error) {
	var data []byte
	query := fmt.Sprintf(`SELECT data FROM %s WHERE location = $1 AND bucket = $2`, d.table("fetch_cache"))
	err := d.DB.QueryRowContext(ctx, query, location, bucket).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, helpers.NewCacheError("read fetch cache", err)
	}
	return data, true, nil
}

// -----------------------------------------------------------------------------

func (d *PostgresDB) Put(ctx context.Context, location string, bucket int64, data []byte) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (location, bucket, data, fetched_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (location, bucket) DO UPDATE SET
			data = EXCLUDED.data,
			fetched_at = EXCLUDED.fetched_at
	`, d.table("fetch_cache"))
	if _, err := d.DB.ExecContext(ctx, query, location, bucket, data, time.Now().UTC().Unix()); err != nil {
		return helpers.NewCacheError("write fetch cache", err)
	}
	return nil
}

// -----------------------------------------------------------------------------

// RegisterSources upserts the declared sources so the cache tables can be
// joined back to their configuration.
func (d *PostgresDB) RegisterSources(ctx context.Context, sources []models.MSourceConfig) error {
	if len(sources) == 0 {
		return nil
	}

	tx, err := d.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	query := fmt.Sprintf(`
		INSERT INTO %s (name, kind, panel, location, updated_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (name) DO UPDATE SET
			kind = EXCLUDED.kind,
			panel = EXCLUDED.panel,
			location = EXCLUDED.location,
			updated_at = EXCLUDED.updated_at
	`, d.table("sources"))

	stmt, err := tx.PrepareContext(ctx, query)
	if err != nil {
		return err
	}
	defer stmt.Close()

	now := time.Now().UTC()
	for _, s := range sources {
		if _, err := stmt.ExecContext(ctx, s.Name, string(s.Kind), s.Panel, s.Location, now); err != nil {
			return err
		}
	}

	return tx.Commit()
}

// -----------------------------------------------------------------------------

func (d *PostgresDB) CleanupOldData(ctx context.Context, oldest int64) error {
	query := fmt.Sprintf(`DELETE FROM %s WHERE bucket < $1`, d.table("fetch_cache"))
	if _, err := d.DB.ExecContext(ctx, query, oldest); err != nil {
		d.Logger.Error("Cleanup fetch_cache error: %v", err)
		return helpers.NewCacheError("cleanup fetch cache", err)
	}
	d.Logger.Info("Cleanup completed")
	return nil
}

// -----------------------------------------------------------------------------

func (d *PostgresDB) Close() error {
	if d.DB != nil {
		return d.DB.Close()
	}
	return nil
}
