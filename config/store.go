package config

import (
	"sync/atomic"

	"github.com/raykavin/aegis/logger"
)

// Store holds the currently-active Snapshot behind a single atomic.Pointer.
// Reload installs a new validated snapshot; tick work already in flight
// keeps running against the snapshot it read at the start of the tick.
type Store struct {
	current atomic.Pointer[Snapshot]
	path    string
	log     logger.Logger
	fixed   bool // built by NewTestStore; Reload leaves the snapshot as is
}

// NewStore loads path once and returns a Store primed with the result.
func NewStore(path string, log logger.Logger) (*Store, error) {
	snap, err := Load(path)
	if err != nil {
		return nil, err
	}
	s := &Store{path: path, log: log}
	s.current.Store(snap)
	return s, nil
}

// NewTestStore wraps an already-built Snapshot in a Store, bypassing file
// and env loading. Reload is a no-op on a store built this way. Exported
// for tests in other packages that need a *Store without a config file on
// disk.
func NewTestStore(snap *Snapshot) *Store {
	s := &Store{fixed: true}
	s.current.Store(snap)
	return s
}

// Snapshot returns the currently-active configuration.
func (s *Store) Snapshot() *Snapshot {
	return s.current.Load()
}

// Reload re-reads the config file and, if valid, atomically swaps it in. On
// validation failure the previous snapshot remains in force and the error
// is logged loudly rather than propagated to a caller that may not check it.
func (s *Store) Reload() error {
	if s.fixed {
		return nil
	}
	snap, err := Load(s.path)
	if err != nil {
		s.log.WithError(err).Error("config reload rejected, keeping previous snapshot")
		return err
	}
	s.current.Store(snap)
	s.log.Info("configuration reloaded")
	return nil
}
