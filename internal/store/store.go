// Package store persists dataset snapshots in sqlite and serves them back to
// the report pipeline. Imports replace the previous snapshot wholesale; reads
// always see one consistent dataset.
package store

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"shoplens/internal/entities"
)

const createBatchSize = 500

// Store wraps the sqlite connection with snapshot import and read methods.
type Store struct {
	db     *gorm.DB
	logger *slog.Logger
}

// Open connects to the sqlite file at path, creating it if needed. WAL mode
// keeps imports from blocking report reads.
func Open(path string, logger *slog.Logger) (*Store, error) {
	dsn := fmt.Sprintf("%s?_journal_mode=WAL&_busy_timeout=5000&_foreign_keys=on", path)
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("store: open %s: %w", path, err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("store: access connection pool: %w", err)
	}
	sqlDB.SetMaxOpenConns(1)
	sqlDB.SetConnMaxLifetime(time.Hour)

	return &Store{db: db, logger: logger}, nil
}

// OpenWithDB wraps an existing gorm connection. Tests use it with an
// in-memory database.
func OpenWithDB(db *gorm.DB, logger *slog.Logger) *Store {
	return &Store{db: db, logger: logger}
}

// Migrate creates or updates the seven snapshot tables.
func (s *Store) Migrate() error {
	err := s.db.Transaction(func(tx *gorm.DB) error {
		return tx.AutoMigrate(
			&entities.Order{},
			&entities.OrderItem{},
			&entities.Refund{},
			&entities.Product{},
			&entities.Pageview{},
			&entities.Session{},
			&entities.Customer{},
		)
	})
	if err != nil {
		s.logger.Error("database migration failed", "error", err)
		return fmt.Errorf("store: migrate: %w", err)
	}
	s.logger.Info("database migration completed")
	return nil
}

// Import validates the dataset and replaces the stored snapshot with it in a
// single transaction.
func (s *Store) Import(ctx context.Context, ds *entities.Dataset) error {
	if err := ds.Validate(); err != nil {
		return fmt.Errorf("store: import rejected: %w", err)
	}

	started := time.Now()
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, model := range []any{
			&entities.Order{}, &entities.OrderItem{}, &entities.Refund{},
			&entities.Product{}, &entities.Pageview{}, &entities.Session{},
			&entities.Customer{},
		} {
			if err := tx.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(model).Error; err != nil {
				return err
			}
		}
		for _, rows := range []any{
			ds.Orders, ds.OrderItems, ds.Refunds, ds.Products,
			ds.Pageviews, ds.Sessions, ds.Customers,
		} {
			if err := tx.CreateInBatches(rows, createBatchSize).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("store: import: %w", err)
	}

	s.logger.Info("snapshot imported",
		"orders", len(ds.Orders),
		"sessions", len(ds.Sessions),
		"pageviews", len(ds.Pageviews),
		"duration_ms", time.Since(started).Milliseconds(),
	)
	return nil
}

// Snapshot loads the full stored dataset.
func (s *Store) Snapshot(ctx context.Context) (*entities.Dataset, error) {
	db := s.db.WithContext(ctx)
	ds := &entities.Dataset{
		Orders:     []entities.Order{},
		OrderItems: []entities.OrderItem{},
		Refunds:    []entities.Refund{},
		Products:   []entities.Product{},
		Pageviews:  []entities.Pageview{},
		Sessions:   []entities.Session{},
		Customers:  []entities.Customer{},
	}
	for table, dest := range map[string]any{
		"orders":      &ds.Orders,
		"order_items": &ds.OrderItems,
		"refunds":     &ds.Refunds,
		"products":    &ds.Products,
		"pageviews":   &ds.Pageviews,
		"sessions":    &ds.Sessions,
		"customers":   &ds.Customers,
	} {
		if err := db.Find(dest).Error; err != nil {
			return nil, fmt.Errorf("store: load %s: %w", table, err)
		}
	}
	return ds, nil
}

// Ping verifies the connection is alive.
func (s *Store) Ping(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

// Close releases the underlying connection pool.
func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
