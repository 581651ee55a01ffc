package assessment

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewArgumentOutput(t *testing.T) {
	a := testResponse("doc1", "Attacker", "rebels", 10)
	b := testResponse("doc1", "Target", "village", 40)

	t.Run("duplicates keep highest confidence", func(t *testing.T) {
		out, err := NewArgumentOutput("doc1", []ScoredResponse{
			{Response: a, Confidence: 0.2},
			{Response: b, Confidence: 0.5},
			{Response: a, Confidence: 0.9},
			{Response: a, Confidence: 0.4},
		})
		require.NoError(t, err)
		assert.Equal(t, 2, out.Size())
		c, ok := out.Confidence(a)
		require.True(t, ok)
		assert.Equal(t, 0.9, c)
	})

	t.Run("foreign document rejected", func(t *testing.T) {
		other := testResponse("doc2", "Attacker", "rebels", 10)
		_, err := NewArgumentOutput("doc1", []ScoredResponse{{Response: other}})
		assert.Error(t, err)
	})

	t.Run("empty doc id rejected", func(t *testing.T) {
		_, err := NewArgumentOutput("", nil)
		assert.Error(t, err)
	})

	t.Run("responses ordered by key", func(t *testing.T) {
		out, err := NewArgumentOutput("doc1", []ScoredResponse{{Response: b}, {Response: a}})
		require.NoError(t, err)
		rs := out.Responses()
		require.Len(t, rs, 2)
		assert.Less(t, rs[0].Key(), rs[1].Key())
	})
}

func TestArgumentOutputKeep(t *testing.T) {
	a := testResponse("doc1", "Attacker", "rebels", 10)
	b := testResponse("doc1", "Target", "village", 40)
	out, err := NewArgumentOutput("doc1", []ScoredResponse{
		{Response: a, Confidence: 0.2},
		{Response: b, Confidence: 0.8},
	})
	require.NoError(t, err)

	kept := out.Keep(func(sr ScoredResponse) bool { return sr.Confidence > 0.5 })
	assert.Equal(t, 1, kept.Size())
	assert.Equal(t, 2, out.Size(), "original is unchanged")
	assert.Equal(t, DocID("doc1"), kept.DocID())
}

func TestEmptyArgumentOutput(t *testing.T) {
	out := EmptyArgumentOutput("doc1")
	assert.False(t, out.IsZero())
	assert.Equal(t, 0, out.Size())
	assert.Empty(t, out.Responses())
	assert.True(t, ArgumentOutput{}.IsZero())
}
