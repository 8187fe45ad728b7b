// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package cache persists lint results in BadgerDB.
//
// Keys combine the linter fingerprint with a hash of the file path and
// content, so any change to the file, the rule set or the severity
// overrides misses. Values are msgpack-encoded engine.FileResult records.
//
// License: BadgerDB is Apache 2.0 licensed (github.com/dgraph-io/badger).
package cache

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/vmihailenco/msgpack/v5"

	"github.com/AleutianAI/tracelint/services/lint/engine"
)

// keyPrefix namespaces result entries.
const keyPrefix = "result/"

var (
	// ErrClosed is returned by operations on a closed Store.
	ErrClosed = errors.New("cache closed")

	// ErrCorrupt indicates a stored value could not be decoded.
	ErrCorrupt = errors.New("cache entry corrupt")
)

// Config holds configuration for a result cache.
type Config struct {
	// Dir is the directory for BadgerDB files. A leading "~/" expands to
	// the user's home directory. Ignored when InMemory is true.
	Dir string

	// InMemory keeps everything in RAM. Useful for tests and watch mode.
	InMemory bool

	// SyncWrites fsyncs every write.
	SyncWrites bool

	// TTL expires entries after this long. Zero keeps them forever.
	TTL time.Duration

	// GCInterval is how often value log garbage collection runs. Zero
	// disables it.
	GCInterval time.Duration

	// GCDiscardRatio is the minimum garbage ratio that triggers a rewrite.
	GCDiscardRatio float64

	// Logger receives BadgerDB's internal logs. Nil silences them.
	Logger *slog.Logger
}

// DefaultConfig returns the configuration used for an on-disk cache.
//
// Description:
//
//	Returns a Config with:
//	- Writes not synced; a lost entry only costs a re-lint
//	- Entries kept for one week
//	- 10-minute GC interval at a 50% discard ratio
func DefaultConfig(dir string) Config {
	return Config{
		Dir:            dir,
		TTL:            7 * 24 * time.Hour,
		GCInterval:     10 * time.Minute,
		GCDiscardRatio: 0.5,
	}
}

// InMemoryConfig returns a configuration with no disk I/O and no GC.
func InMemoryConfig() Config {
	return Config{InMemory: true}
}

// badgerLogger adapts slog.Logger to BadgerDB's Logger interface.
type badgerLogger struct {
	logger *slog.Logger
}

func (l *badgerLogger) Errorf(format string, args ...interface{}) {
	l.logger.Error(strings.TrimSpace(fmt.Sprintf(format, args...)))
}

func (l *badgerLogger) Warningf(format string, args ...interface{}) {
	l.logger.Warn(strings.TrimSpace(fmt.Sprintf(format, args...)))
}

func (l *badgerLogger) Infof(format string, args ...interface{}) {
	l.logger.Debug(strings.TrimSpace(fmt.Sprintf(format, args...)))
}

func (l *badgerLogger) Debugf(format string, args ...interface{}) {
	l.logger.Debug(strings.TrimSpace(fmt.Sprintf(format, args...)))
}

// =============================================================================
// STORE
// =============================================================================

// Store is a BadgerDB-backed engine.Cache.
//
// Thread Safety: Safe for concurrent use.
type Store struct {
	db     *badger.DB
	ttl    time.Duration
	dir    string
	logger *slog.Logger

	stopGC chan struct{}
	gcDone chan struct{}

	mu     sync.RWMutex
	closed bool
}

var _ engine.Cache = (*Store)(nil)

// Open opens or creates a result cache.
//
// Description:
//
//	Opens a BadgerDB database at cfg.Dir, creating the directory if needed,
//	or in memory when cfg.InMemory is set. When GCInterval is positive a
//	background goroutine runs value log GC until Close.
//
// Inputs:
//
//	cfg - Cache configuration. Dir is required unless InMemory is true.
//
// Outputs:
//
//	*Store - The cache. Caller must call Close() when done.
//	error  - Non-nil if the directory is missing or the database cannot be
//	         opened.
//
// Thread Safety: The returned Store is safe for concurrent use.
func Open(cfg Config) (*Store, error) {
	if !cfg.InMemory && cfg.Dir == "" {
		return nil, errors.New("dir is required for persistent cache")
	}

	var opts badger.Options
	dir := ""
	if cfg.InMemory {
		opts = badger.DefaultOptions("").WithInMemory(true)
	} else {
		var err error
		dir, err = ExpandHome(cfg.Dir)
		if err != nil {
			return nil, err
		}
		if err := os.MkdirAll(dir, 0750); err != nil {
			return nil, fmt.Errorf("create cache directory %s: %w", dir, err)
		}
		opts = badger.DefaultOptions(dir)
	}

	opts = opts.WithSyncWrites(cfg.SyncWrites).WithNumVersionsToKeep(1)
	if cfg.Logger != nil {
		opts = opts.WithLogger(&badgerLogger{logger: cfg.Logger})
	} else {
		opts = opts.WithLogger(nil)
	}

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open badger database: %w", err)
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	s := &Store{
		db:     db,
		ttl:    cfg.TTL,
		dir:    dir,
		logger: logger,
	}

	if cfg.GCInterval > 0 && !cfg.InMemory {
		ratio := cfg.GCDiscardRatio
		if ratio <= 0 || ratio >= 1 {
			ratio = 0.5
		}
		s.stopGC = make(chan struct{})
		s.gcDone = make(chan struct{})
		go s.runGC(cfg.GCInterval, ratio)
	}

	return s, nil
}

// ExpandHome replaces a leading "~/" with the user's home directory.
func ExpandHome(path string) (string, error) {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home directory: %w", err)
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~")), nil
}

// Dir returns the database directory, or "" for an in-memory cache.
func (s *Store) Dir() string {
	return s.dir
}

// Lookup returns the cached result for key.
//
// Outputs:
//
//	*engine.FileResult - The result. Nil on a miss.
//	bool               - True on a hit.
//	error              - ErrClosed, ErrCorrupt or a storage error.
//
// Thread Safety: Safe for concurrent use.
func (s *Store) Lookup(ctx context.Context, key string) (*engine.FileResult, bool, error) {
	if err := ctx.Err(); err != nil {
		return nil, false, fmt.Errorf("context cancelled: %w", err)
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return nil, false, ErrClosed
	}

	var res engine.FileResult
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(keyPrefix + key))
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			if err := msgpack.Unmarshal(val, &res); err != nil {
				return fmt.Errorf("%w: %v", ErrCorrupt, err)
			}
			return nil
		})
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return &res, true, nil
}

// Store saves res under key, replacing any previous entry.
//
// Thread Safety: Safe for concurrent use.
func (s *Store) Store(ctx context.Context, key string, res *engine.FileResult) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("context cancelled: %w", err)
	}
	if res == nil {
		return errors.New("result must not be nil")
	}
	val, err := msgpack.Marshal(res)
	if err != nil {
		return fmt.Errorf("encode result: %w", err)
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return ErrClosed
	}

	return s.db.Update(func(txn *badger.Txn) error {
		e := badger.NewEntry([]byte(keyPrefix+key), val)
		if s.ttl > 0 {
			e = e.WithTTL(s.ttl)
		}
		return txn.SetEntry(e)
	})
}

// Len returns the number of live entries.
func (s *Store) Len() (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return 0, ErrClosed
	}

	n := 0
	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		opts.Prefix = []byte(keyPrefix)
		it := txn.NewIterator(opts)
		defer it.Close()
		for it.Rewind(); it.Valid(); it.Next() {
			n++
		}
		return nil
	})
	return n, err
}

// Purge removes every entry.
func (s *Store) Purge() error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return ErrClosed
	}
	return s.db.DropPrefix([]byte(keyPrefix))
}

// Close stops GC and closes the database. Safe to call multiple times.
func (s *Store) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	s.mu.Unlock()

	if s.stopGC != nil {
		close(s.stopGC)
		<-s.gcDone
	}
	return s.db.Close()
}

func (s *Store) runGC(interval time.Duration, ratio float64) {
	defer close(s.gcDone)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-s.stopGC:
			return
		case <-ticker.C:
			err := s.db.RunValueLogGC(ratio)
			if err == nil {
				s.logger.Debug("cache value log GC completed")
			} else if !errors.Is(err, badger.ErrNoRewrite) {
				s.logger.Warn("cache value log GC error", slog.String("error", err.Error()))
			}
		}
	}
}
