// Quotebook - Weekly Reading Reports and Book Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/quotebook

// Package store persists quotes, profiles, reports and reference data in BadgerDB.
//
// Values are JSON documents under prefixed keys:
//
//	catalog:<slug>                              CatalogEntry
//	promo:<code>                                PromoCode
//	utm:<id>                                    UTMTemplate
//	profile:<user>                              UserProfile
//	quote:<user>:<id>                           Quote
//	quote_week:<yyyy>:<ww>:<user>:<id>          week index, value is the quote ID
//	report:<user>:<yyyy>:<ww>                   WeeklyReport
//
// <user> is the hex-encoded user ID, so a user ID containing ':' can never
// extend another user's key prefix.
// Week components are zero-padded so prefix scans return keys in week order.
// Reference data (catalog, promo codes, UTM templates) is written by Seed and
// only read by the report pipeline.
package store

import (
	"encoding/hex"
	"errors"
	"fmt"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/goccy/go-json"

	"github.com/tomtom215/quotebook/internal/cache"
	"github.com/tomtom215/quotebook/internal/calendar"
)

// Key prefixes for BadgerDB storage
const (
	catalogKeyPrefix   = "catalog:"
	promoKeyPrefix     = "promo:"
	utmKeyPrefix       = "utm:"
	profileKeyPrefix   = "profile:"
	quoteKeyPrefix     = "quote:"
	quoteWeekKeyPrefix = "quote_week:"
	reportKeyPrefix    = "report:"
)

const themeCorpusKey = "target_themes"

// ErrNotFound is returned when a key does not exist.
var ErrNotFound = errors.New("store: not found")

// Options configures Open.
type Options struct {
	// Path is the BadgerDB directory. Ignored when InMemory is set.
	Path string

	// InMemory keeps all data in memory.
	InMemory bool

	// ThemeCorpusTTL is how long TargetThemes results are cached. Zero disables caching.
	ThemeCorpusTTL time.Duration
}

// Store is the BadgerDB-backed persistence collaborator.
type Store struct {
	db     *badger.DB
	cal    *calendar.Calendar
	themes *cache.TTL[[]string]
	now    func() time.Time

	mu  sync.Mutex
	rng *rand.Rand

	ownsDB bool
}

// Open opens a BadgerDB and wraps it in a Store that owns it.
func Open(opts Options, cal *calendar.Calendar) (*Store, error) {
	var bopts badger.Options
	if opts.InMemory {
		bopts = badger.DefaultOptions("").WithInMemory(true)
	} else {
		if opts.Path == "" {
			return nil, errors.New("store: path is required unless in_memory is set")
		}
		bopts = badger.DefaultOptions(opts.Path)
	}
	bopts.Logger = nil // Suppress BadgerDB logs

	db, err := badger.Open(bopts)
	if err != nil {
		return nil, fmt.Errorf("open badger db: %w", err)
	}

	s, err := New(db, cal, opts.ThemeCorpusTTL)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	s.ownsDB = true
	return s, nil
}

// New wraps an existing BadgerDB. The caller keeps ownership of db.
func New(db *badger.DB, cal *calendar.Calendar, themeCorpusTTL time.Duration) (*Store, error) {
	if db == nil {
		return nil, errors.New("store: db is required")
	}
	if cal == nil {
		return nil, errors.New("store: calendar is required")
	}

	s := &Store{
		db:  db,
		cal: cal,
		now: time.Now,
		rng: rand.New(rand.NewPCG(uint64(time.Now().UnixNano()), 0x9e3779b9)), //nolint:gosec // promo choice is not security sensitive
	}
	if themeCorpusTTL > 0 {
		s.themes = cache.NewTTL[[]string](themeCorpusTTL)
	}
	return s, nil
}

// Close closes the database if the Store opened it.
func (s *Store) Close() error {
	if s.ownsDB {
		return s.db.Close()
	}
	return nil
}

// Ping checks that the database accepts reads.
func (s *Store) Ping() error {
	if s.db.IsClosed() {
		return errors.New("store: database closed")
	}
	return s.db.View(func(*badger.Txn) error { return nil })
}

func (s *Store) putJSON(txn *badger.Txn, key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshal %s: %w", key, err)
	}
	if err := txn.Set([]byte(key), data); err != nil {
		return fmt.Errorf("set %s: %w", key, err)
	}
	return nil
}

func (s *Store) getJSON(txn *badger.Txn, key string, v any) error {
	item, err := txn.Get([]byte(key))
	if errors.Is(err, badger.ErrKeyNotFound) {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("get %s: %w", key, err)
	}
	return item.Value(func(val []byte) error {
		return json.Unmarshal(val, v)
	})
}

// scanJSON decodes every value under prefix into a new T and passes it to fn.
func scanJSON[T any](txn *badger.Txn, prefix string, fn func(*T) error) error {
	opts := badger.DefaultIteratorOptions
	opts.PrefetchValues = true
	opts.Prefix = []byte(prefix)
	it := txn.NewIterator(opts)
	defer it.Close()

	for it.Seek(opts.Prefix); it.ValidForPrefix(opts.Prefix); it.Next() {
		var v T
		err := it.Item().Value(func(val []byte) error {
			return json.Unmarshal(val, &v)
		})
		if err != nil {
			return fmt.Errorf("decode %s: %w", it.Item().Key(), err)
		}
		if err := fn(&v); err != nil {
			return err
		}
	}
	return nil
}

// scanKeys passes every key under prefix, without the prefix, to fn.
func scanKeys(txn *badger.Txn, prefix string, fn func(suffix string) error) error {
	opts := badger.DefaultIteratorOptions
	opts.PrefetchValues = false
	opts.Prefix = []byte(prefix)
	it := txn.NewIterator(opts)
	defer it.Close()

	for it.Seek(opts.Prefix); it.ValidForPrefix(opts.Prefix); it.Next() {
		if err := fn(string(it.Item().Key()[len(prefix):])); err != nil {
			return err
		}
	}
	return nil
}

func userSegment(userID string) string {
	return hex.EncodeToString([]byte(userID))
}

func weekKey(year, week int) string {
	return fmt.Sprintf("%04d:%02d", year, week)
}
