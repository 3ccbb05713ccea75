package storage

import (
	"fmt"
	"time"

	"github.com/raykavin/aegis/core"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// SQLTradeStore implements core.TradeStore over GORM/SQLite: an
// append-only trade-history table plus the order audit trail.
type SQLTradeStore struct {
	db *gorm.DB
}

// OpenSQLTradeStore opens (creating if absent) the SQLite file at path.
func OpenSQLTradeStore(path string) (*SQLTradeStore, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("open trade store: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("trade store connection: %w", err)
	}
	sqlDB.SetMaxOpenConns(1) // SQLite: one writer at a time
	sqlDB.SetConnMaxLifetime(time.Hour)

	if err := db.AutoMigrate(&core.TradeRecord{}, &core.Order{}); err != nil {
		return nil, fmt.Errorf("trade store migrate: %w", err)
	}

	return &SQLTradeStore{db: db}, nil
}

// AppendTrade inserts a new, immutable trade-history row.
func (s *SQLTradeStore) AppendTrade(record *core.TradeRecord) error {
	if result := s.db.Create(record); result.Error != nil {
		return fmt.Errorf("append trade: %w", result.Error)
	}
	return nil
}

// RecentTrades returns the most recent limit trade records, newest first.
func (s *SQLTradeStore) RecentTrades(limit int) ([]core.TradeRecord, error) {
	var records []core.TradeRecord
	result := s.db.Order("timestamp DESC").Limit(limit).Find(&records)
	if result.Error != nil {
		return nil, fmt.Errorf("recent trades: %w", result.Error)
	}
	return records, nil
}

// TradesSince returns every trade recorded at or after since, newest first.
func (s *SQLTradeStore) TradesSince(since time.Time) ([]core.TradeRecord, error) {
	var records []core.TradeRecord
	result := s.db.Where("timestamp >= ?", since).Order("timestamp DESC").Find(&records)
	if result.Error != nil {
		return nil, fmt.Errorf("trades since: %w", result.Error)
	}
	return records, nil
}

// CreateOrder inserts a new order audit-trail row.
func (s *SQLTradeStore) CreateOrder(order *core.Order) error {
	if result := s.db.Create(order); result.Error != nil {
		return fmt.Errorf("create order: %w", result.Error)
	}
	return nil
}

// UpdateOrder saves changes to an existing order row.
func (s *SQLTradeStore) UpdateOrder(order *core.Order) error {
	result := s.db.Save(order)
	if result.Error != nil {
		return fmt.Errorf("update order: %w", result.Error)
	}
	return nil
}

// Close closes the underlying database connection.
func (s *SQLTradeStore) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return fmt.Errorf("trade store connection: %w", err)
	}
	return sqlDB.Close()
}
