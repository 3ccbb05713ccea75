// Package storage implements core.PositionStore (BuntDB, atomic
// full-snapshot) and core.TradeStore (GORM over SQLite, append-only).
package storage

import (
	"encoding/json"
	"fmt"

	"github.com/raykavin/aegis/core"
	"github.com/tidwall/buntdb"
)

// positionSnapshotKey is the single BuntDB key holding the full open
// position set, rewritten atomically on every state change.
const positionSnapshotKey = "positions"

// BuntPositionStore implements core.PositionStore.
type BuntPositionStore struct {
	db *buntdb.DB
}

// OpenBuntPositionStore opens (creating if absent) the BuntDB file at
// path. path may be ":memory:" for ephemeral use in tests.
func OpenBuntPositionStore(path string) (*BuntPositionStore, error) {
	db, err := buntdb.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open position store: %w", err)
	}
	return &BuntPositionStore{db: db}, nil
}

// Load returns every persisted position. Invariant validation and
// quarantine of malformed records is the caller's responsibility (spec
// §4.F "startup reconciliation").
func (s *BuntPositionStore) Load() ([]core.Position, error) {
	var raw string
	err := s.db.View(func(tx *buntdb.Tx) error {
		v, err := tx.Get(positionSnapshotKey)
		if err != nil {
			if err == buntdb.ErrNotFound {
				return nil
			}
			return err
		}
		raw = v
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("load positions: %w", err)
	}
	if raw == "" {
		return nil, nil
	}

	bysymbol := make(map[string]core.Position)
	if err := json.Unmarshal([]byte(raw), &bysymbol); err != nil {
		return nil, fmt.Errorf("unmarshal position snapshot: %w", err)
	}

	positions := make([]core.Position, 0, len(bysymbol))
	for _, p := range bysymbol {
		positions = append(positions, p)
	}
	return positions, nil
}

// SaveAll atomically rewrites the full position snapshot.
func (s *BuntPositionStore) SaveAll(positions map[string]*core.Position) error {
	flat := make(map[string]core.Position, len(positions))
	for symbol, p := range positions {
		flat[symbol] = *p
	}

	content, err := json.Marshal(flat)
	if err != nil {
		return fmt.Errorf("marshal position snapshot: %w", err)
	}

	return s.db.Update(func(tx *buntdb.Tx) error {
		_, _, err := tx.Set(positionSnapshotKey, string(content), nil)
		return err
	})
}

// Close closes the underlying database.
func (s *BuntPositionStore) Close() error {
	return s.db.Close()
}
