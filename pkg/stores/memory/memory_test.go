package memory_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentstation/annomerge/pkg/assessment"
	"github.com/agentstation/annomerge/pkg/errors"
	"github.com/agentstation/annomerge/pkg/stores"
	"github.com/agentstation/annomerge/pkg/stores/memory"
)

var (
	_ stores.ArgumentStore   = (*memory.ArgumentStore)(nil)
	_ stores.AnnotationStore = (*memory.AnnotationStore)(nil)
)

func TestArgumentStore(t *testing.T) {
	ctx := context.Background()
	s := memory.NewArgumentStore("mem:sys",
		assessment.EmptyArgumentOutput("doc2"),
		assessment.EmptyArgumentOutput("doc1"))

	ids, err := s.DocIDs(ctx)
	require.NoError(t, err)
	assert.Equal(t, []assessment.DocID{"doc1", "doc2"}, ids)

	out, err := s.Read(ctx, "doc1")
	require.NoError(t, err)
	assert.Equal(t, assessment.DocID("doc1"), out.DocID())

	_, err = s.Read(ctx, "doc3")
	assert.True(t, errors.IsNotFound(err))
}

func TestAnnotationStore(t *testing.T) {
	ctx := context.Background()
	s := memory.NewAnnotationStore("mem:ann")

	key, err := s.ReadOrEmpty(ctx, "doc1")
	require.NoError(t, err)
	assert.Equal(t, 0, key.NumUnannotated())

	_, err = s.Read(ctx, "doc1")
	assert.True(t, errors.IsNotFound(err))

	require.NoError(t, s.Write(ctx, assessment.EmptyAnswerKey("doc1")))
	assert.Equal(t, 1, s.Writes())

	_, err = s.Read(ctx, "doc1")
	assert.NoError(t, err)

	assert.Error(t, s.Write(ctx, assessment.AnswerKey{}))
}
