// Package memory provides in-process system output and annotation stores.
// They are safe for concurrent use.
package memory

import (
	"context"
	"maps"
	"slices"
	"sync"

	"github.com/agentstation/annomerge/pkg/assessment"
	"github.com/agentstation/annomerge/pkg/errors"
)

// ArgumentStore holds system output in memory.
type ArgumentStore struct {
	mu       sync.RWMutex
	location string
	docs     map[assessment.DocID]assessment.ArgumentOutput
}

// NewArgumentStore returns a store holding outputs.
func NewArgumentStore(location string, outputs ...assessment.ArgumentOutput) *ArgumentStore {
	s := &ArgumentStore{location: location, docs: make(map[assessment.DocID]assessment.ArgumentOutput)}
	for _, o := range outputs {
		s.Put(o)
	}
	return s
}

// Put adds or replaces the output for its document.
func (s *ArgumentStore) Put(output assessment.ArgumentOutput) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.docs[output.DocID()] = output
}

// Location returns the name the store was created with.
func (s *ArgumentStore) Location() string {
	return s.location
}

// DocIDs returns the stored doc ids in sorted order.
func (s *ArgumentStore) DocIDs(ctx context.Context) ([]assessment.DocID, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Sorted(maps.Keys(s.docs)), nil
}

// Read returns the output for docID.
func (s *ArgumentStore) Read(ctx context.Context, docID assessment.DocID) (assessment.ArgumentOutput, error) {
	if err := ctx.Err(); err != nil {
		return assessment.ArgumentOutput{}, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	output, ok := s.docs[docID]
	if !ok {
		return assessment.ArgumentOutput{}, errors.NewStoreError("read", s.location, string(docID),
			errors.NewNotFoundError("document", string(docID)))
	}
	return output, nil
}

// Close is a no-op.
func (s *ArgumentStore) Close() error {
	return nil
}

// AnnotationStore holds answer keys in memory.
type AnnotationStore struct {
	mu       sync.RWMutex
	location string
	docs     map[assessment.DocID]assessment.AnswerKey
	writes   int
}

// NewAnnotationStore returns a store holding keys.
func NewAnnotationStore(location string, keys ...assessment.AnswerKey) *AnnotationStore {
	s := &AnnotationStore{location: location, docs: make(map[assessment.DocID]assessment.AnswerKey)}
	for _, k := range keys {
		s.docs[k.DocID()] = k
	}
	return s
}

// Location returns the name the store was created with.
func (s *AnnotationStore) Location() string {
	return s.location
}

// DocIDs returns the stored doc ids in sorted order.
func (s *AnnotationStore) DocIDs(ctx context.Context) ([]assessment.DocID, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Sorted(maps.Keys(s.docs)), nil
}

// Read returns the key for docID or a not found error.
func (s *AnnotationStore) Read(ctx context.Context, docID assessment.DocID) (assessment.AnswerKey, error) {
	if err := ctx.Err(); err != nil {
		return assessment.AnswerKey{}, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	key, ok := s.docs[docID]
	if !ok {
		return assessment.AnswerKey{}, errors.NewStoreError("read", s.location, string(docID),
			errors.NewNotFoundError("document", string(docID)))
	}
	return key, nil
}

// ReadOrEmpty returns the key for docID or an empty key.
func (s *AnnotationStore) ReadOrEmpty(ctx context.Context, docID assessment.DocID) (assessment.AnswerKey, error) {
	key, err := s.Read(ctx, docID)
	if errors.IsNotFound(err) {
		return assessment.EmptyAnswerKey(docID), nil
	}
	return key, err
}

// Write stores key, replacing any previous key for its document.
func (s *AnnotationStore) Write(ctx context.Context, key assessment.AnswerKey) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if key.DocID() == "" {
		return errors.NewValidationError("doc_id", key.DocID(), "cannot be empty")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.docs[key.DocID()] = key
	s.writes++
	return nil
}

// Writes returns how many writes the store has accepted.
func (s *AnnotationStore) Writes() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.writes
}

// Close is a no-op.
func (s *AnnotationStore) Close() error {
	return nil
}
