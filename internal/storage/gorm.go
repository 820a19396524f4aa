package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/glebarez/sqlite"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"
)

var _ Store = (*GormStore)(nil)

type exchangeRateRow struct {
	Key   string             `gorm:"primaryKey;column:doc_key"`
	Date  string             `gorm:"column:rate_date;index"`
	Base  string             `gorm:"column:base"`
	Rates map[string]float64 `gorm:"column:rates;type:text;serializer:json"`
}

// GormStore keeps documents in a SQL table, one row per document
type GormStore struct {
	db    *gorm.DB
	table string
}

func NewGormStore(driver, dsn, table string) (*GormStore, error) {
	var gormDialector gorm.Dialector
	switch driver {
	case "postgres":
		gormDialector = postgres.Open(dsn)
	case "sqlite":
		gormDialector = sqlite.Open(dsn)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedDriver, driver)
	}

	db, err := gorm.Open(gormDialector, &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("gorm open: %w", err)
	}

	return &GormStore{db: db, table: table}, nil
}

func (s *GormStore) Migrate(ctx context.Context) error {
	if err := s.db.WithContext(ctx).Table(s.table).AutoMigrate(&exchangeRateRow{}); err != nil {
		return fmt.Errorf("auto migrate %s: %w", s.table, err)
	}

	return nil
}

func (s *GormStore) Exists(ctx context.Context, key string) (bool, error) {
	var row exchangeRateRow
	result := s.db.WithContext(ctx).Table(s.table).Select("doc_key").First(&row, "doc_key = ?", key)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return false, nil
		}

		return false, fmt.Errorf("find %s: %w", key, result.Error)
	}

	return true, nil
}

// Get returns the stored document
func (s *GormStore) Get(ctx context.Context, key string) (Document, bool, error) {
	var row exchangeRateRow
	result := s.db.WithContext(ctx).Table(s.table).First(&row, "doc_key = ?", key)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return Document{}, false, nil
		}

		return Document{}, false, fmt.Errorf("find %s: %w", key, result.Error)
	}

	return Document{Key: row.Key, Date: row.Date, Base: row.Base, Rates: row.Rates}, true, nil
}

func (s *GormStore) StaleKeys(ctx context.Context, keepDates []string, limit int) ([]string, error) {
	query := s.db.WithContext(ctx).Table(s.table)
	if len(keepDates) > 0 {
		query = query.Where("rate_date NOT IN ?", keepDates)
	}

	if limit > 0 {
		query = query.Limit(limit)
	}

	var keys []string
	if err := query.Order("doc_key").Pluck("doc_key", &keys).Error; err != nil {
		return nil, fmt.Errorf("query stale keys: %w", err)
	}

	return keys, nil
}

func (s *GormStore) Commit(ctx context.Context, batch Batch) error {
	if batch.Empty() {
		return nil
	}

	rows := make([]exchangeRateRow, 0, len(batch.Sets))
	for _, doc := range batch.Sets {
		rows = append(rows, exchangeRateRow{Key: doc.Key, Date: doc.Date, Base: doc.Base, Rates: doc.Rates})
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if len(rows) > 0 {
			if err := tx.Table(s.table).Clauses(clause.OnConflict{
				Columns:   []clause.Column{{Name: "doc_key"}},
				UpdateAll: true,
			}).Create(&rows).Error; err != nil {
				return fmt.Errorf("upsert documents: %w", err)
			}
		}

		if len(batch.Deletes) > 0 {
			if err := tx.Table(s.table).Where("doc_key IN ?", batch.Deletes).Delete(&exchangeRateRow{}).Error; err != nil {
				return fmt.Errorf("delete documents: %w", err)
			}
		}

		return nil
	})
}

func (s *GormStore) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return fmt.Errorf("gorm db: %w", err)
	}

	return sqlDB.Close()
}
