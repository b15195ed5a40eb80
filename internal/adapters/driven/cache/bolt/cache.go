// Package bolt provides a TTL cache backed by a bbolt file.
//
// Each value is stored with an 8 byte big-endian expiry (unix nanoseconds)
// in front of it. Expired entries are ignored on read and pruned on open.
package bolt

import (
	"context"
	"encoding/binary"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go.etcd.io/bbolt"

	"github.com/custodia-labs/dossier/internal/core/domain"
	"github.com/custodia-labs/dossier/internal/core/ports/driven"
)

// Ensure Cache implements the interface.
var _ driven.Cache = (*Cache)(nil)

// CacheFile is the cache filename inside the data directory.
const CacheFile = "cache.db"

// OpenTimeout bounds how long Open waits for another process's file lock.
const OpenTimeout = time.Second

var bucketEntries = []byte("entries")

// Cache is a persistent key/value cache with per-entry expiry.
type Cache struct {
	db  *bbolt.DB
	now func() time.Time
}

// Open opens or creates the cache at path.
func Open(path string) (*Cache, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return nil, fmt.Errorf("create cache directory: %w", err)
	}

	db, err := bbolt.Open(path, 0600, &bbolt.Options{Timeout: OpenTimeout})
	if err != nil {
		return nil, fmt.Errorf("open cache: %w", err)
	}

	c := &Cache{db: db, now: time.Now}

	err = db.Update(func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(bucketEntries)
		return err
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("create cache bucket: %w", err)
	}

	if _, err := c.Prune(); err != nil {
		db.Close()
		return nil, err
	}
	return c, nil
}

// Get returns the value and true if present and not expired.
func (c *Cache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	if err := ctx.Err(); err != nil {
		return nil, false, err
	}

	var (
		value []byte
		found bool
	)
	err := c.db.View(func(tx *bbolt.Tx) error {
		raw := tx.Bucket(bucketEntries).Get([]byte(key))
		if raw == nil || c.expired(raw) {
			return nil
		}
		// Values are only valid for the life of the transaction.
		value = append([]byte{}, raw[8:]...)
		found = true
		return nil
	})
	if err != nil {
		return nil, false, fmt.Errorf("read cache: %w", err)
	}
	return value, found, nil
}

// Set stores a value that expires after ttl.
func (c *Cache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if key == "" {
		return fmt.Errorf("%w: empty cache key", domain.ErrInvalidArgument)
	}
	if ttl <= 0 {
		return fmt.Errorf("%w: cache ttl must be positive", domain.ErrInvalidArgument)
	}

	raw := make([]byte, 8+len(value))
	binary.BigEndian.PutUint64(raw, uint64(c.now().Add(ttl).UnixNano()))
	copy(raw[8:], value)

	return c.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket(bucketEntries).Put([]byte(key), raw)
	})
}

// Prune deletes expired entries and returns how many were removed.
func (c *Cache) Prune() (int, error) {
	removed := 0
	err := c.db.Update(func(tx *bbolt.Tx) error {
		b := tx.Bucket(bucketEntries)
		var stale [][]byte
		err := b.ForEach(func(k, v []byte) error {
			if c.expired(v) {
				stale = append(stale, append([]byte(nil), k...))
			}
			return nil
		})
		if err != nil {
			return err
		}
		for _, k := range stale {
			if err := b.Delete(k); err != nil {
				return err
			}
		}
		removed = len(stale)
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("prune cache: %w", err)
	}
	return removed, nil
}

// Close releases the file lock.
func (c *Cache) Close() error {
	return c.db.Close()
}

// expired treats malformed entries as expired.
func (c *Cache) expired(raw []byte) bool {
	if len(raw) < 8 {
		return true
	}
	expiry := int64(binary.BigEndian.Uint64(raw[:8]))
	return c.now().UnixNano() >= expiry
}
