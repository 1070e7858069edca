package bolt

import (
	"context"
	"strconv"
	"time"

	bbolt "go.etcd.io/bbolt"

	"github.com/shoplens/shopsearch/internal/db"
)

// Get retrieves a value by key. Expired keys are purged and reported missing.
func (s *Store) Get(ctx context.Context, key string) ([]byte, error) {
	var out []byte
	err := s.db.Update(func(tx *bbolt.Tx) error {
		if expired(tx, []byte(key), time.Now()) {
			return purge(tx, []byte(key))
		}
		if raw := tx.Bucket(bucketKV).Get([]byte(key)); raw != nil {
			out = append([]byte(nil), raw...)
		}
		return nil
	})
	if err != nil {
		return nil, &db.Error{Op: db.OpGet, Err: err}
	}
	if out == nil {
		return nil, db.ErrKeyNotFound
	}
	return out, nil
}

// Set stores a value at the given key and clears any previous TTL.
func (s *Store) Set(ctx context.Context, key string, value []byte) error {
	err := s.db.Update(func(tx *bbolt.Tx) error {
		if err := tx.Bucket(bucketTTL).Delete([]byte(key)); err != nil {
			return err
		}
		return tx.Bucket(bucketKV).Put([]byte(key), value)
	})
	if err != nil {
		return &db.Error{Op: db.OpSet, Err: err}
	}
	return nil
}

// SetWithTTL stores a value with an expiration deadline.
func (s *Store) SetWithTTL(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	err := s.db.Update(func(tx *bbolt.Tx) error {
		if err := tx.Bucket(bucketKV).Put([]byte(key), value); err != nil {
			return err
		}
		return tx.Bucket(bucketTTL).Put([]byte(key), encodeDeadline(time.Now().Add(ttl)))
	})
	if err != nil {
		return &db.Error{Op: db.OpSet, Err: err}
	}
	return nil
}

// IncrBy increments an integer value stored at key. Missing keys start at zero.
func (s *Store) IncrBy(ctx context.Context, key string, val int64) error {
	err := s.db.Update(func(tx *bbolt.Tx) error {
		var cur int64
		if raw := tx.Bucket(bucketKV).Get([]byte(key)); raw != nil {
			parsed, err := strconv.ParseInt(string(raw), 10, 64)
			if err != nil {
				return err
			}
			cur = parsed
		}
		cur += val
		return tx.Bucket(bucketKV).Put([]byte(key), []byte(strconv.FormatInt(cur, 10)))
	})
	if err != nil {
		return &db.Error{Op: db.OpIncrBy, Err: err}
	}
	return nil
}

// Expire sets a TTL deadline on a key. When nx=true the deadline is only set
// if the key has no deadline yet.
func (s *Store) Expire(ctx context.Context, key string, ttl time.Duration, nx bool) error {
	err := s.db.Update(func(tx *bbolt.Tx) error {
		b := tx.Bucket(bucketTTL)
		if nx && b.Get([]byte(key)) != nil {
			return nil
		}
		return b.Put([]byte(key), encodeDeadline(time.Now().Add(ttl)))
	})
	if err != nil {
		return &db.Error{Op: db.OpExpire, Err: err}
	}
	return nil
}
