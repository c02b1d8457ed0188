package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"tariff-observer/src/helpers"
	"tariff-observer/src/logger"
	"tariff-observer/src/models"

	_ "modernc.org/sqlite"
)

// -----------------------------------------------------------------------------

type AsyncSQLiteDB struct {
	Config *models.MConfig
	DB     *sql.DB
	Logger *logger.Logger
}

// -----------------------------------------------------------------------------

func NewAsyncSQLiteDB(cfg *models.MConfig, log *logger.Logger) (*AsyncSQLiteDB, error) {
	return &AsyncSQLiteDB{
		Config: cfg,
		Logger: log,
	}, nil
}

// -----------------------------------------------------------------------------

func (d *AsyncSQLiteDB) Initialize(ctx context.Context) error {
	dsn := d.Config.Cache.DBPath

	// Open DB
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return helpers.NewCacheError("open sqlite cache", err)
	}
	// every connection to ":memory:" would see its own database
	db.SetMaxOpenConns(1)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return helpers.NewCacheError("ping sqlite cache", err)
	}

	d.DB = db

	// PRAGMA optimizations
	if _, err := db.ExecContext(ctx, "PRAGMA journal_mode = WAL;"); err != nil {
		d.Logger.Warning("Failed to set WAL mode: %v", err)
	}
	if _, err := db.ExecContext(ctx, "PRAGMA synchronous = NORMAL;"); err != nil {
		d.Logger.Warning("Failed to set synchronous mode: %v", err)
	}

	return d.createTables(ctx)
}

// -----------------------------------------------------------------------------

func (d *AsyncSQLiteDB) createTables(ctx context.Context) error {
	query := `
		CREATE TABLE IF NOT EXISTS fetch_cache (
			location TEXT,
			bucket INTEGER,
			data BLOB,
			fetched_at INTEGER,
			PRIMARY KEY (location, bucket)
		);
	`
	if _, err := d.DB.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("failed to create fetch_cache: %w", err)
	}

	query = `
		CREATE TABLE IF NOT EXISTS sources (
			name TEXT PRIMARY KEY,
			kind TEXT,
			panel TEXT,
			location TEXT,
			updated_at INTEGER
		);
	`
	if _, err := d.DB.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("failed to create sources: %w", err)
	}
	return nil
}

// -----------------------------------------------------------------------------

func (d *AsyncSQLiteDB) Get(ctx context.Context, location string, bucket int64) ([]byte, bool, error) {
	var data []byte
	err := d.DB.QueryRowContext(ctx,
		"SELECT data FROM fetch_cache WHERE location = ? AND bucket = ?", location, bucket).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, helpers.NewCacheError("read fetch cache", err)
	}
	return data, true, nil
}

// -----------------------------------------------------------------------------

func (d *AsyncSQLiteDB) Put(ctx context.Context, location string, bucket int64, data []byte) error {
	_, err := d.DB.ExecContext(ctx, `
		INSERT INTO fetch_cache (location, bucket, data, fetched_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT (location, bucket) DO UPDATE SET
			data = excluded.data,
			fetched_at = excluded.fetched_at
	`, location, bucket, data, time.Now().UTC().Unix())
	if err != nil {
		return helpers.NewCacheError("write fetch cache", err)
	}
	return nil
}

// -----------------------------------------------------------------------------

func (d *AsyncSQLiteDB) RegisterSources(ctx context.Context, sources []models.MSourceConfig) error {
	tx, err := d.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO sources (name, kind, panel, location, updated_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT (name) DO UPDATE SET
			kind = excluded.kind,
			panel = excluded.panel,
			location = excluded.location,
			updated_at = excluded.updated_at
	`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	now := time.Now().UTC().Unix()
	for _, s := range sources {
		if _, err := stmt.ExecContext(ctx, s.Name, string(s.Kind), s.Panel, s.Location, now); err != nil {
			return err
		}
	}

	return tx.Commit()
}

// -----------------------------------------------------------------------------

func (d *AsyncSQLiteDB) CleanupOldData(ctx context.Context, oldest int64) error {
	res, err := d.DB.ExecContext(ctx, "DELETE FROM fetch_cache WHERE bucket < ?", oldest)
	if err != nil {
		d.Logger.Error("Cleanup fetch_cache error: %v", err)
		return helpers.NewCacheError("cleanup fetch cache", err)
	}
	if n, err := res.RowsAffected(); err == nil && n > 0 {
		d.Logger.Info("Cleanup removed %d cached fetches older than bucket %d", n, oldest)
	}
	return nil
}

// -----------------------------------------------------------------------------

func (d *AsyncSQLiteDB) Close() error {
	if d.DB != nil {
		return d.DB.Close()
	}
	return nil
}
