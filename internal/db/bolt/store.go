// Package bolt implements the db.Store facade on an embedded bbolt file.
// It backs single-node deployments and local development where no Redis is
// available; semantics mirror the redis driver, including lazy TTL expiry.
package bolt

import (
	"context"
	"encoding/binary"
	"fmt"
	"os"
	"time"

	bbolt "go.etcd.io/bbolt"

	"github.com/shoplens/shopsearch/internal/db"
)

// Compile-time check: Store implements db.Store.
var _ db.Store = (*Store)(nil)

var (
	bucketHashes = []byte("hashes")
	bucketKV     = []byte("kv")
	bucketTTL    = []byte("ttl")
)

// Config holds parameters for an embedded store.
type Config struct {
	Path string
}

// Store implements db.Store on a single bbolt file.
type Store struct {
	db *bbolt.DB
}

// NewStore opens (or creates) the database file and ensures the root buckets.
func NewStore(cfg Config) (*Store, error) {
	if cfg.Path == "" {
		return nil, fmt.Errorf("path is required")
	}

	bdb, err := bbolt.Open(cfg.Path, 0o600, &bbolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("failed to open database file: %w", err)
	}

	err = bdb.Update(func(tx *bbolt.Tx) error {
		for _, name := range [][]byte{bucketHashes, bucketKV, bucketTTL} {
			if _, err := tx.CreateBucketIfNotExists(name); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		_ = bdb.Close()
		return nil, fmt.Errorf("failed to create buckets: %w", err)
	}

	return &Store{db: bdb}, nil
}

// Ping verifies the backing file is still accessible.
func (s *Store) Ping(_ context.Context) error {
	if _, err := os.Stat(s.db.Path()); err != nil {
		return fmt.Errorf("ping: %w", err)
	}
	return nil
}

// Close releases the file lock.
func (s *Store) Close() {
	_ = s.db.Close()
}

// WaitForReady is immediate for an embedded store; it only checks the file.
func (s *Store) WaitForReady(ctx context.Context, _ time.Duration) error {
	return s.Ping(ctx)
}

func encodeDeadline(t time.Time) []byte {
	buf := make([]byte, 8)
	binary.BigEndian.PutUint64(buf, uint64(t.UnixNano()))
	return buf
}

func decodeDeadline(b []byte) (time.Time, bool) {
	if len(b) != 8 {
		return time.Time{}, false
	}
	return time.Unix(0, int64(binary.BigEndian.Uint64(b))), true
}

// expired reports whether key has a TTL deadline in the past.
func expired(tx *bbolt.Tx, key []byte, now time.Time) bool {
	raw := tx.Bucket(bucketTTL).Get(key)
	if raw == nil {
		return false
	}
	deadline, ok := decodeDeadline(raw)
	return ok && now.After(deadline)
}

// purge removes a key from every bucket. Used on expired reads.
func purge(tx *bbolt.Tx, key []byte) error {
	if b := tx.Bucket(bucketHashes).Bucket(key); b != nil {
		if err := tx.Bucket(bucketHashes).DeleteBucket(key); err != nil {
			return err
		}
	}
	if err := tx.Bucket(bucketKV).Delete(key); err != nil {
		return err
	}
	return tx.Bucket(bucketTTL).Delete(key)
}

// matchPattern implements the glob subset used for key scans: '*' matches any
// run of characters, '?' matches exactly one.
func matchPattern(pattern, s string) bool {
	if pattern == "" {
		return s == ""
	}
	switch pattern[0] {
	case '*':
		for i := 0; i <= len(s); i++ {
			if matchPattern(pattern[1:], s[i:]) {
				return true
			}
		}
		return false
	case '?':
		return s != "" && matchPattern(pattern[1:], s[1:])
	default:
		return s != "" && s[0] == pattern[0] && matchPattern(pattern[1:], s[1:])
	}
}
