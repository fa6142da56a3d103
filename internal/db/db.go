package db

import (
	"context"
	"errors"
	"fmt"
	"time"

	"quill/internal/config"
	"quill/internal/logger"
	"quill/internal/models"

	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	gormlogger "gorm.io/gorm/logger"
)

// Connect opens a gorm connection for the sqlite or postgres driver and
// migrates the record table.
func Connect(driver, dsn string) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch driver {
	case config.DriverPostgres:
		dialector = postgres.Open(dsn)
	case config.DriverSQLite:
		dialector = sqlite.Open(dsn)
	default:
		return nil, fmt.Errorf("db: %q is not a SQL driver", driver)
	}

	conn, err := gorm.Open(dialector, &gorm.Config{Logger: gormlogger.Default.LogMode(gormlogger.Warn)})
	if err != nil {
		return nil, fmt.Errorf("db: connect: %w", err)
	}
	logger.Info("Database connection established", zap.String("driver", driver))

	if err := conn.AutoMigrate(&models.KVRecord{}); err != nil {
		return nil, fmt.Errorf("db: migrate: %w", err)
	}
	return conn, nil
}

// GormKV keeps each key as one row of kv_records.
type GormKV struct {
	db *gorm.DB
}

func NewGormKV(db *gorm.DB) *GormKV {
	return &GormKV{db: db}
}

func (g *GormKV) Get(ctx context.Context, key string) ([]byte, error) {
	var rec models.KVRecord
	err := g.db.WithContext(ctx).Where("record_key = ?", key).First(&rec).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrKeyNotFound
	}
	if err != nil {
		return nil, err
	}
	return []byte(rec.Value), nil
}

func (g *GormKV) Put(ctx context.Context, key string, value []byte) error {
	rec := models.KVRecord{Key: key, Value: string(value), UpdatedAt: time.Now()}
	return g.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "record_key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
	}).Create(&rec).Error
}

// Open builds the configured backend. The returned close func releases any
// connection it holds and is never nil.
func Open(ctx context.Context, cfg config.Storage) (KV, func() error, error) {
	noop := func() error { return nil }

	switch cfg.Driver {
	case config.DriverMemory:
		logger.Warn("Using in-memory storage, posts will not survive a restart")
		return NewMemoryKV(), noop, nil
	case config.DriverFile:
		kv, err := NewFileKV(cfg.DataDir)
		if err != nil {
			return nil, noop, err
		}
		return kv, noop, nil
	case config.DriverSQLite, config.DriverPostgres:
		conn, err := Connect(cfg.Driver, cfg.DatabaseURL)
		if err != nil {
			return nil, noop, err
		}
		sqlDB, err := conn.DB()
		if err != nil {
			return nil, noop, err
		}
		return NewGormKV(conn), sqlDB.Close, nil
	case config.DriverRedis:
		rdb, err := OpenRedis(ctx, cfg.RedisURL)
		if err != nil {
			return nil, noop, err
		}
		return NewRedisKV(rdb, cfg.KeyPrefix), rdb.Close, nil
	}
	return nil, noop, fmt.Errorf("db: unknown storage driver %q", cfg.Driver)
}
