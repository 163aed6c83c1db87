package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	badger "github.com/dgraph-io/badger/v4"
	"github.com/sirupsen/logrus"

	"github.com/Sriram-PR/pydoc-parser/pkg/log"
	"github.com/Sriram-PR/pydoc-parser/pkg/models"
	"github.com/Sriram-PR/pydoc-parser/pkg/utils"
)

const (
	responseKeyPrefix = "resp:"     // Prefix for cached response keys in DB
	cacheDBDir        = "responses" // Subdirectory name within cacheDir for Badger DB files
)

// BadgerCache implements ResponseCache using BadgerDB
type BadgerCache struct {
	db  *badger.DB
	ttl time.Duration // 0 = entries never expire
	log *logrus.Entry
}

// NewBadgerCache opens (or creates) the response cache under cacheDir
func NewBadgerCache(cacheDir string, ttl time.Duration, logger *logrus.Entry) (*BadgerCache, error) {
	dbPath := filepath.Join(cacheDir, cacheDBDir)
	logger.Infof("Opening response cache at: %s (TTL: %v)", dbPath, ttl)

	if err := os.MkdirAll(dbPath, 0755); err != nil {
		return nil, fmt.Errorf("%w: cannot create cache directory %s: %w", utils.ErrFilesystem, dbPath, err)
	}

	opts := badger.DefaultOptions(dbPath).
		WithLogger(log.NewBadgerLogrusAdapter(logger.WithField("component", "badgerdb"))).
		WithNumVersionsToKeep(1)

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to open badger database at %s: %w", utils.ErrDatabase, dbPath, err)
	}

	return &BadgerCache{db: db, ttl: ttl, log: logger}, nil
}

func cacheKey(normalizedURL string) []byte {
	return []byte(responseKeyPrefix + utils.CalculateStringSHA256(normalizedURL))
}

const maxConflictRetries = 10

// dbUpdate wraps db.Update with a retry loop for BadgerDB transaction conflicts
func (c *BadgerCache) dbUpdate(fn func(txn *badger.Txn) error) error {
	for i := range maxConflictRetries {
		err := c.db.Update(fn)
		if !errors.Is(err, badger.ErrConflict) {
			return err
		}
		c.log.Debugf("BadgerDB transaction conflict (attempt %d/%d), retrying", i+1, maxConflictRetries)
	}
	return fmt.Errorf("%w: transaction conflict not resolved after %d retries", utils.ErrDatabase, maxConflictRetries)
}

// Get implements ResponseReader
func (c *BadgerCache) Get(normalizedURL string) (*models.CachedResponse, bool, error) {
	var resp *models.CachedResponse
	key := cacheKey(normalizedURL)

	err := c.db.View(func(txn *badger.Txn) error {
		item, errGet := txn.Get(key)
		if errors.Is(errGet, badger.ErrKeyNotFound) {
			return nil
		}
		if errGet != nil {
			return errGet
		}
		return item.Value(func(val []byte) error {
			var decoded models.CachedResponse
			if errJSON := json.Unmarshal(val, &decoded); errJSON != nil {
				// Treat a corrupt entry as a miss; the next Put overwrites it
				c.log.Warnf("Failed to decode cached response for '%s': %v", normalizedURL, errJSON)
				return nil
			}
			resp = &decoded
			return nil
		})
	})
	if err != nil {
		c.log.WithField("url", normalizedURL).Errorf("DB View error in Get: %v", err)
		return nil, false, fmt.Errorf("%w: reading cached response for '%s': %w", utils.ErrDatabase, normalizedURL, err)
	}
	return resp, resp != nil, nil
}

// Put implements ResponseWriter
func (c *BadgerCache) Put(normalizedURL string, resp *models.CachedResponse) error {
	data, err := json.Marshal(resp)
	if err != nil {
		return fmt.Errorf("%w: encoding cached response for '%s': %w", utils.ErrCache, normalizedURL, err)
	}
	key := cacheKey(normalizedURL)

	err = c.dbUpdate(func(txn *badger.Txn) error {
		e := badger.NewEntry(key, data)
		if c.ttl > 0 {
			e = e.WithTTL(c.ttl)
		}
		return txn.SetEntry(e)
	})
	if err != nil {
		c.log.WithField("url", normalizedURL).Errorf("DB Update error in Put: %v", err)
		return fmt.Errorf("%w: storing response for '%s': %w", utils.ErrDatabase, normalizedURL, err)
	}
	return nil
}

// Clear implements CacheAdmin
func (c *BadgerCache) Clear() error {
	if err := c.db.DropPrefix([]byte(responseKeyPrefix)); err != nil {
		return fmt.Errorf("%w: clearing response cache: %w", utils.ErrDatabase, err)
	}
	c.log.Info("Response cache cleared.")
	return nil
}

// Count implements CacheAdmin
func (c *BadgerCache) Count() (int, error) {
	count := 0
	err := c.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		opts.Prefix = []byte(responseKeyPrefix)
		it := txn.NewIterator(opts)
		defer it.Close()
		for it.Rewind(); it.Valid(); it.Next() {
			count++
		}
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("%w: counting cached responses: %w", utils.ErrDatabase, err)
	}
	return count, nil
}

// Close implements CacheAdmin. A value-log GC pass runs first to reclaim space left by expired entries.
func (c *BadgerCache) Close() error {
	if c.db == nil || c.db.IsClosed() {
		return nil
	}
	if err := c.db.RunValueLogGC(0.5); err != nil && !errors.Is(err, badger.ErrNoRewrite) {
		c.log.Debugf("Value log GC skipped: %v", err)
	}
	c.log.Info("Closing response cache...")
	if err := c.db.Close(); err != nil {
		return fmt.Errorf("%w: closing badger database: %w", utils.ErrDatabase, err)
	}
	return nil
}
