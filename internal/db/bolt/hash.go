package bolt

import (
	"context"
	"fmt"
	"strconv"
	"time"

	bbolt "go.etcd.io/bbolt"

	"github.com/shoplens/shopsearch/internal/db"
)

// Each hash lives in a nested bucket under the hashes root, keyed by the
// hash key; fields are plain key/value pairs inside it.

// HSet sets hash fields.
func (s *Store) HSet(ctx context.Context, key string, fields map[string]string) error {
	err := s.db.Update(func(tx *bbolt.Tx) error {
		return hset(tx, key, fields)
	})
	if err != nil {
		return &db.Error{Op: db.OpHSet, Err: err}
	}
	return nil
}

// HSetMulti stores multiple hashes in a single transaction.
func (s *Store) HSetMulti(ctx context.Context, items []db.HashSetItem) error {
	if len(items) == 0 {
		return nil
	}
	err := s.db.Update(func(tx *bbolt.Tx) error {
		for _, item := range items {
			if err := hset(tx, item.Key, item.Fields); err != nil {
				return fmt.Errorf("key %s: %w", item.Key, err)
			}
		}
		return nil
	})
	if err != nil {
		return &db.Error{Op: db.OpHSet, Err: err}
	}
	return nil
}

func hset(tx *bbolt.Tx, key string, fields map[string]string) error {
	b, err := tx.Bucket(bucketHashes).CreateBucketIfNotExists([]byte(key))
	if err != nil {
		return err
	}
	for k, v := range fields {
		if err := b.Put([]byte(k), []byte(v)); err != nil {
			return err
		}
	}
	return nil
}

// HGetAll returns all fields of a hash. Missing hashes yield an empty map,
// matching the Redis HGETALL contract.
func (s *Store) HGetAll(ctx context.Context, key string) (map[string]string, error) {
	out := map[string]string{}
	err := s.db.View(func(tx *bbolt.Tx) error {
		if expired(tx, []byte(key), time.Now()) {
			return nil
		}
		b := tx.Bucket(bucketHashes).Bucket([]byte(key))
		if b == nil {
			return nil
		}
		return b.ForEach(func(k, v []byte) error {
			out[string(k)] = string(v)
			return nil
		})
	})
	if err != nil {
		return nil, &db.Error{Op: db.OpHGetAll, Err: err}
	}
	return out, nil
}

// HGetAllMulti fetches all fields for multiple hashes in one transaction.
func (s *Store) HGetAllMulti(ctx context.Context, keys []string) ([]map[string]string, error) {
	if len(keys) == 0 {
		return nil, nil
	}
	out := make([]map[string]string, len(keys))
	err := s.db.View(func(tx *bbolt.Tx) error {
		now := time.Now()
		for i, key := range keys {
			m := map[string]string{}
			out[i] = m
			if expired(tx, []byte(key), now) {
				continue
			}
			b := tx.Bucket(bucketHashes).Bucket([]byte(key))
			if b == nil {
				continue
			}
			err := b.ForEach(func(k, v []byte) error {
				m[string(k)] = string(v)
				return nil
			})
			if err != nil {
				return fmt.Errorf("key %s: %w", key, err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, &db.Error{Op: db.OpHGetAll, Err: err}
	}
	return out, nil
}

// HIncrBy increments a numeric hash field and returns the new value.
// A missing hash or field starts from zero.
func (s *Store) HIncrBy(ctx context.Context, key, field string, delta int64) (int64, error) {
	var val int64
	err := s.db.Update(func(tx *bbolt.Tx) error {
		b, err := tx.Bucket(bucketHashes).CreateBucketIfNotExists([]byte(key))
		if err != nil {
			return err
		}
		if raw := b.Get([]byte(field)); raw != nil {
			cur, err := strconv.ParseInt(string(raw), 10, 64)
			if err != nil {
				return fmt.Errorf("field %s is not an integer", field)
			}
			val = cur
		}
		val += delta
		return b.Put([]byte(field), []byte(strconv.FormatInt(val, 10)))
	})
	if err != nil {
		return 0, &db.Error{Op: db.OpHIncrBy, Err: err}
	}
	return val, nil
}

// Del deletes a key from every bucket.
func (s *Store) Del(ctx context.Context, key string) error {
	err := s.db.Update(func(tx *bbolt.Tx) error {
		return purge(tx, []byte(key))
	})
	if err != nil {
		return &db.Error{Op: db.OpDel, Err: err}
	}
	return nil
}

// Exists checks if a key exists as a hash or a plain value.
func (s *Store) Exists(ctx context.Context, key string) (bool, error) {
	var found bool
	err := s.db.View(func(tx *bbolt.Tx) error {
		if expired(tx, []byte(key), time.Now()) {
			return nil
		}
		found = tx.Bucket(bucketHashes).Bucket([]byte(key)) != nil ||
			tx.Bucket(bucketKV).Get([]byte(key)) != nil
		return nil
	})
	if err != nil {
		return false, &db.Error{Op: db.OpExists, Err: err}
	}
	return found, nil
}

// Scan returns hash and plain keys matching the pattern.
func (s *Store) Scan(ctx context.Context, pattern string) ([]string, error) {
	var keys []string
	err := s.db.View(func(tx *bbolt.Tx) error {
		now := time.Now()
		seen := map[string]struct{}{}
		collect := func(k []byte) {
			key := string(k)
			if _, dup := seen[key]; dup {
				return
			}
			if expired(tx, k, now) {
				return
			}
			if matchPattern(pattern, key) {
				seen[key] = struct{}{}
				keys = append(keys, key)
			}
		}
		err := tx.Bucket(bucketHashes).ForEachBucket(func(k []byte) error {
			collect(k)
			return nil
		})
		if err != nil {
			return err
		}
		return tx.Bucket(bucketKV).ForEach(func(k, _ []byte) error {
			collect(k)
			return nil
		})
	})
	if err != nil {
		return nil, &db.Error{Op: db.OpScan, Err: err}
	}
	return keys, nil
}
