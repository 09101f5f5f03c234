// Package bootstrap turns a shared.Config into live adapters for the binaries.
package bootstrap

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/go-sql-driver/mysql"
	"github.com/rs/zerolog/log"

	"culture_hotspots/internal/adapters/ckan"
	"culture_hotspots/internal/adapters/csvsource"
	redisad "culture_hotspots/internal/adapters/redis"
	"culture_hotspots/internal/domain"
	"culture_hotspots/internal/shared"
	"culture_hotspots/internal/storage/memory"
	mysqlrepo "culture_hotspots/internal/storage/mysql"
	"culture_hotspots/internal/storage/sqlite"
)

// OpenStore opens the configured store. The returned func releases it.
func OpenStore(ctx context.Context, cfg shared.Config) (domain.HotspotStore, func(), error) {
	switch cfg.StoreDriver {
	case shared.DriverMySQL:
		db, err := sql.Open("mysql", cfg.MySQLDSN)
		if err != nil {
			return nil, nil, fmt.Errorf("sql.Open: %w", err)
		}
		db.SetMaxOpenConns(cfg.Workers + 4)
		db.SetConnMaxLifetime(5 * time.Minute)
		if err := db.PingContext(ctx); err != nil {
			_ = db.Close()
			return nil, nil, fmt.Errorf("db ping: %w", err)
		}
		if err := mysqlrepo.EnsureSchema(ctx, db); err != nil {
			_ = db.Close()
			return nil, nil, fmt.Errorf("ensure schema: %w", err)
		}
		log.Info().Msg("database connection ok")
		return mysqlrepo.New(db), func() { _ = db.Close() }, nil

	case shared.DriverSQLite:
		repo, err := sqlite.Open(ctx, cfg.SQLitePath)
		if err != nil {
			return nil, nil, err
		}
		log.Info().Str("path", cfg.SQLitePath).Msg("sqlite store ready")
		return repo, func() { _ = repo.Close() }, nil

	default:
		log.Warn().Msg("using in-memory store; data is lost on exit")
		return memory.New(), func() {}, nil
	}
}

// OpenCache returns nil (caching disabled) when Redis is not configured or
// does not answer.
func OpenCache(ctx context.Context, cfg shared.Config) (domain.Cache, func()) {
	if cfg.RedisAddr == "" {
		return nil, func() {}
	}
	c := redisad.New(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)
	pctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := c.Ping(pctx); err != nil {
		log.Warn().Err(err).Str("addr", cfg.RedisAddr).Msg("redis unavailable; running without cache")
		_ = c.Close()
		return nil, func() {}
	}
	return c, func() { _ = c.Close() }
}

// Source picks the ingestion source: an explicit CSV path wins, then CKAN
// when configured, then CSV_PATH.
func Source(cfg shared.Config, csvPath string) (domain.RowSource, error) {
	if csvPath != "" {
		return csvsource.File{Path: csvPath}, nil
	}
	if cfg.UseCKAN() {
		cl, err := ckan.New(cfg.CKANBase, cfg.CKANKey, cfg.CKANRPS)
		if err != nil {
			return nil, err
		}
		if cfg.CKANResourceID != "" {
			return cl.Source(cfg.CKANResourceID), nil
		}
		return cl.PackageSource(cfg.CKANPackageID), nil
	}
	return csvsource.File{Path: cfg.CSVPath}, nil
}
