package storage

import (
	"fmt"
	"sort"
	"strings"
)

// Staging buffers writes on top of an inner DB. Reads see the staged
// writes; nothing reaches the inner DB until Commit. Discard drops every
// staged write, which is how a failed call leaves state untouched.
type Staging struct {
	inner  DB
	writes map[string]stagedWrite
}

type stagedWrite struct {
	value   []byte
	deleted bool
}

// NewStaging creates an empty staging overlay over inner.
func NewStaging(inner DB) *Staging {
	return &Staging{inner: inner, writes: make(map[string]stagedWrite)}
}

// Get retrieves a value, preferring staged writes.
func (s *Staging) Get(key []byte) ([]byte, error) {
	if w, ok := s.writes[string(key)]; ok {
		if w.deleted {
			return nil, ErrNotFound
		}
		return append([]byte{}, w.value...), nil
	}
	return s.inner.Get(key)
}

// Put stages a key-value pair.
func (s *Staging) Put(key, value []byte) error {
	v := append([]byte{}, value...)
	if v == nil {
		v = []byte{}
	}
	s.writes[string(key)] = stagedWrite{value: v}
	return nil
}

// Delete stages a key removal.
func (s *Staging) Delete(key []byte) error {
	s.writes[string(key)] = stagedWrite{deleted: true}
	return nil
}

// Has checks if a key exists, preferring staged writes.
func (s *Staging) Has(key []byte) (bool, error) {
	if w, ok := s.writes[string(key)]; ok {
		return !w.deleted, nil
	}
	return s.inner.Has(key)
}

// ForEach iterates over the merged view of staged and committed keys in
// ascending key order.
func (s *Staging) ForEach(prefix []byte, fn func(key, value []byte) error) error {
	merged := make(map[string][]byte)
	err := s.inner.ForEach(prefix, func(key, value []byte) error {
		if _, staged := s.writes[string(key)]; !staged {
			merged[string(key)] = append([]byte{}, value...)
		}
		return nil
	})
	if err != nil {
		return err
	}
	p := string(prefix)
	for k, w := range s.writes {
		if !w.deleted && strings.HasPrefix(k, p) {
			merged[k] = append([]byte{}, w.value...)
		}
	}

	keys := make([]string, 0, len(merged))
	for k := range merged {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if err := fn([]byte(k), merged[k]); err != nil {
			return err
		}
	}
	return nil
}

// Pending returns the number of staged writes.
func (s *Staging) Pending() int {
	return len(s.writes)
}

// Commit applies all staged writes to the inner DB. When the inner DB
// supports batches the writes land atomically.
func (s *Staging) Commit() error {
	if len(s.writes) == 0 {
		return nil
	}
	keys := make([]string, 0, len(s.writes))
	for k := range s.writes {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var w interface {
		Put(key, value []byte) error
		Delete(key []byte) error
	} = s.inner
	var batch Batch
	if b, ok := s.inner.(Batcher); ok {
		batch = b.NewBatch()
		w = batch
	}

	for _, k := range keys {
		op := s.writes[k]
		var err error
		if op.deleted {
			err = w.Delete([]byte(k))
		} else {
			err = w.Put([]byte(k), op.value)
		}
		if err != nil {
			return fmt.Errorf("staging commit %q: %w", k, err)
		}
	}
	if batch != nil {
		if err := batch.Commit(); err != nil {
			return err
		}
	}
	s.writes = make(map[string]stagedWrite)
	return nil
}

// Discard drops every staged write.
func (s *Staging) Discard() {
	s.writes = make(map[string]stagedWrite)
}

// Close is a no-op; the inner DB manages its own lifecycle.
func (s *Staging) Close() error {
	return nil
}
