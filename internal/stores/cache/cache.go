// Package cache provides a read-through, write-through cache in front of an
// annotation store. It uses patrickmn/go-cache for TTL based expiry.
package cache

import (
	"context"
	"sync/atomic"
	"time"

	gocache "github.com/patrickmn/go-cache"

	"github.com/agentstation/annomerge/pkg/assessment"
	"github.com/agentstation/annomerge/pkg/constants"
	"github.com/agentstation/annomerge/pkg/errors"
)

// AnnotationStore is the store being cached.
type AnnotationStore interface {
	Location() string
	DocIDs(ctx context.Context) ([]assessment.DocID, error)
	Read(ctx context.Context, docID assessment.DocID) (assessment.AnswerKey, error)
	ReadOrEmpty(ctx context.Context, docID assessment.DocID) (assessment.AnswerKey, error)
	Write(ctx context.Context, key assessment.AnswerKey) error
	Close() error
}

type entry struct {
	key   assessment.AnswerKey
	found bool
}

// Store caches answer keys read from or written to an inner store.
type Store struct {
	inner  AnnotationStore
	store  *gocache.Cache
	hits   atomic.Int64
	misses atomic.Int64
}

// Wrap returns a cached view of inner. Entries expire after ttl.
func Wrap(inner AnnotationStore, ttl time.Duration) *Store {
	if ttl <= 0 {
		ttl = constants.CacheTTL
	}
	return &Store{
		inner: inner,
		store: gocache.New(ttl, constants.CacheCleanupInterval),
	}
}

// Location returns the inner store's location.
func (s *Store) Location() string {
	return s.inner.Location()
}

// DocIDs is not cached.
func (s *Store) DocIDs(ctx context.Context) ([]assessment.DocID, error) {
	return s.inner.DocIDs(ctx)
}

// Read returns the cached key or reads it from the inner store.
func (s *Store) Read(ctx context.Context, docID assessment.DocID) (assessment.AnswerKey, error) {
	e, err := s.lookup(ctx, docID)
	if err != nil {
		return assessment.AnswerKey{}, err
	}
	if !e.found {
		return assessment.AnswerKey{}, errors.NewStoreError("read", s.Location(), string(docID),
			errors.NewNotFoundError("document", string(docID)))
	}
	return e.key, nil
}

// ReadOrEmpty returns the cached key, reading through on a miss.
func (s *Store) ReadOrEmpty(ctx context.Context, docID assessment.DocID) (assessment.AnswerKey, error) {
	e, err := s.lookup(ctx, docID)
	if err != nil {
		return assessment.AnswerKey{}, err
	}
	return e.key, nil
}

func (s *Store) lookup(ctx context.Context, docID assessment.DocID) (entry, error) {
	if cached, ok := s.store.Get(string(docID)); ok {
		s.hits.Add(1)
		return cached.(entry), nil
	}
	s.misses.Add(1)

	key, err := s.inner.Read(ctx, docID)
	switch {
	case err == nil:
		e := entry{key: key, found: true}
		s.store.Set(string(docID), e, gocache.DefaultExpiration)
		return e, nil
	case errors.IsNotFound(err):
		e := entry{key: assessment.EmptyAnswerKey(docID)}
		s.store.Set(string(docID), e, gocache.DefaultExpiration)
		return e, nil
	default:
		return entry{}, err
	}
}

// Write writes to the inner store and caches the key once the write succeeded.
func (s *Store) Write(ctx context.Context, key assessment.AnswerKey) error {
	if err := s.inner.Write(ctx, key); err != nil {
		s.store.Delete(string(key.DocID()))
		return err
	}
	s.store.Set(string(key.DocID()), entry{key: key, found: true}, gocache.DefaultExpiration)
	return nil
}

// Close flushes the cache and closes the inner store.
func (s *Store) Close() error {
	s.store.Flush()
	return s.inner.Close()
}

// Stats reports cache effectiveness.
type Stats struct {
	Hits      int64 `json:"hits"`
	Misses    int64 `json:"misses"`
	ItemCount int   `json:"item_count"`
}

// GetStats returns current cache statistics.
func (s *Store) GetStats() Stats {
	return Stats{
		Hits:      s.hits.Load(),
		Misses:    s.misses.Load(),
		ItemCount: s.store.ItemCount(),
	}
}
