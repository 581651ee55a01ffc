package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentstation/annomerge/pkg/assessment"
	"github.com/agentstation/annomerge/pkg/errors"
	"github.com/agentstation/annomerge/pkg/stores/memory"
)

type countingStore struct {
	*memory.AnnotationStore
	reads int
	fail  error
}

func (c *countingStore) Read(ctx context.Context, docID assessment.DocID) (assessment.AnswerKey, error) {
	c.reads++
	return c.AnnotationStore.Read(ctx, docID)
}

func (c *countingStore) Write(ctx context.Context, key assessment.AnswerKey) error {
	if c.fail != nil {
		return c.fail
	}
	return c.AnnotationStore.Write(ctx, key)
}

func pending(t *testing.T, doc assessment.DocID) assessment.AnswerKey {
	t.Helper()
	key, err := assessment.NewAnswerKey(doc, nil, []assessment.Response{{
		DocID:      doc,
		Type:       "Life.Die",
		Role:       "Victim",
		CAS:        "soldier",
		CASOffsets: assessment.Span{Start: 1, End: 7},
		BaseFiller: assessment.Span{Start: 1, End: 7},
		Realis:     assessment.RealisActual,
	}})
	require.NoError(t, err)
	return key
}

func TestStoreReadThrough(t *testing.T) {
	ctx := context.Background()
	inner := &countingStore{AnnotationStore: memory.NewAnnotationStore("mem", pending(t, "doc1"))}
	s := Wrap(inner, time.Minute)

	for range 3 {
		key, err := s.Read(ctx, "doc1")
		require.NoError(t, err)
		assert.Equal(t, 1, key.NumUnannotated())
	}
	assert.Equal(t, 1, inner.reads)

	stats := s.GetStats()
	assert.Equal(t, int64(2), stats.Hits)
	assert.Equal(t, int64(1), stats.Misses)
	assert.Equal(t, 1, stats.ItemCount)
}

func TestStoreRemembersMissingDocuments(t *testing.T) {
	ctx := context.Background()
	inner := &countingStore{AnnotationStore: memory.NewAnnotationStore("mem")}
	s := Wrap(inner, time.Minute)

	key, err := s.ReadOrEmpty(ctx, "doc1")
	require.NoError(t, err)
	assert.Equal(t, assessment.DocID("doc1"), key.DocID())

	_, err = s.Read(ctx, "doc1")
	assert.True(t, errors.IsNotFound(err), "Read still reports a missing document")
	assert.Equal(t, 1, inner.reads)
}

func TestStoreWriteThrough(t *testing.T) {
	ctx := context.Background()
	inner := &countingStore{AnnotationStore: memory.NewAnnotationStore("mem")}
	s := Wrap(inner, time.Minute)

	_, err := s.ReadOrEmpty(ctx, "doc1")
	require.NoError(t, err)

	require.NoError(t, s.Write(ctx, pending(t, "doc1")))
	key, err := s.Read(ctx, "doc1")
	require.NoError(t, err)
	assert.Equal(t, 1, key.NumUnannotated())
	assert.Equal(t, 1, inner.reads, "served from cache after write")
	assert.Equal(t, 1, inner.Writes())
}

func TestStoreFailedWriteEvicts(t *testing.T) {
	ctx := context.Background()
	inner := &countingStore{AnnotationStore: memory.NewAnnotationStore("mem")}
	s := Wrap(inner, time.Minute)

	_, err := s.ReadOrEmpty(ctx, "doc1")
	require.NoError(t, err)

	inner.fail = errors.New("disk full")
	assert.Error(t, s.Write(ctx, pending(t, "doc1")))
	assert.Equal(t, 0, s.GetStats().ItemCount)
}

func TestWrapDefaultsTTL(t *testing.T) {
	s := Wrap(memory.NewAnnotationStore("mem"), 0)
	assert.Equal(t, "mem", s.Location())
	assert.NoError(t, s.Close())
}
