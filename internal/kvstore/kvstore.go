package kvstore

import (
	"encoding/json"
	"fmt"

	"storefront-core/internal/util"

	"go.uber.org/zap"
)

// Backend is the raw durable key/value medium. Implementations must be
// synchronous: when Write returns nil the payload is persisted.
type Backend interface {
	// Read returns the payload for key, or ok=false if the key is absent.
	Read(key string) ([]byte, bool, error)
	// Write persists the payload for key, replacing any previous value.
	Write(key string, data []byte) error
	// Delete removes the key. Deleting an absent key is not an error.
	Delete(key string) error
}

// WriteError reports that a write was rejected by the medium (quota,
// serialization, I/O). Callers performing safety-critical writes must treat
// this as "the mutation did not happen".
type WriteError struct {
	Key string
	Err error
}

func (e *WriteError) Error() string {
	return fmt.Sprintf("storage write failed for %q: %v", e.Key, e.Err)
}

func (e *WriteError) Unwrap() error {
	return e.Err
}

// Store bundles a backend with the change feed and logger shared by all
// buckets created on top of it.
type Store struct {
	backend  Backend
	notifier *Notifier
	logger   *zap.Logger
}

// New creates a store over the given backend.
func New(backend Backend) *Store {
	return &Store{
		backend:  backend,
		notifier: NewNotifier(),
		logger:   util.GetLogger(),
	}
}

// Notifier returns the change feed fed by every successful bucket write.
func (s *Store) Notifier() *Notifier {
	return s.notifier
}

// Bucket is a typed view over one key of the store. Load never fails:
// a missing key or malformed payload self-heals by writing the fallback
// back and returning it. Save reports failure as a *WriteError.
type Bucket[T any] struct {
	store    *Store
	key      string
	fallback func() T
}

// NewBucket creates a typed bucket for key. fallback produces the value
// used when the key is absent or its payload cannot be decoded.
func NewBucket[T any](store *Store, key string, fallback func() T) *Bucket[T] {
	return &Bucket[T]{store: store, key: key, fallback: fallback}
}

// Key returns the storage key this bucket reads and writes.
func (b *Bucket[T]) Key() string {
	return b.key
}

// Load reads the current value. On a missing key or corrupt payload it
// resets the key to the fallback and returns that, so callers never see
// an error from a read.
func (b *Bucket[T]) Load() T {
	data, ok, err := b.store.backend.Read(b.key)
	if err != nil {
		b.store.logger.Warn("Storage read failed, using fallback",
			zap.String("key", b.key), zap.Error(err))
		return b.fallback()
	}
	if !ok {
		return b.heal(nil)
	}

	var v T
	if err := json.Unmarshal(data, &v); err != nil {
		return b.heal(err)
	}
	return v
}

// heal resets the key to the fallback value. A failed heal write is logged
// and dropped: the read contract is that Load never fails.
func (b *Bucket[T]) heal(cause error) T {
	if cause != nil {
		util.StorageCorruptionsHealed.Inc()
		b.store.logger.Warn("Corrupt payload, resetting to fallback",
			zap.String("key", b.key), zap.Error(cause))
	}
	v := b.fallback()
	if err := b.Save(v); err != nil {
		b.store.logger.Warn("Failed to persist fallback",
			zap.String("key", b.key), zap.Error(err))
	}
	return v
}

// Save serializes v and writes it under the bucket key. On success the
// store's change feed is notified.
func (b *Bucket[T]) Save(v T) error {
	data, err := json.Marshal(v)
	if err != nil {
		util.StorageWriteFailures.WithLabelValues("marshal").Inc()
		return &WriteError{Key: b.key, Err: err}
	}
	if err := b.store.backend.Write(b.key, data); err != nil {
		util.StorageWriteFailures.WithLabelValues("backend").Inc()
		return &WriteError{Key: b.key, Err: err}
	}
	b.store.notifier.publish(b.key)
	return nil
}

// Clear removes the bucket key entirely, so the next Load sees the fallback.
func (b *Bucket[T]) Clear() error {
	if err := b.store.backend.Delete(b.key); err != nil {
		util.StorageWriteFailures.WithLabelValues("backend").Inc()
		return &WriteError{Key: b.key, Err: err}
	}
	b.store.notifier.publish(b.key)
	return nil
}
