package assessment

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOptional(t *testing.T) {
	some := Some(3)
	v, ok := some.Get()
	assert.True(t, ok)
	assert.Equal(t, 3, v)
	assert.Equal(t, 3, some.MustGet())

	none := None[int]()
	assert.False(t, none.IsPresent())
	assert.Equal(t, 7, none.OrElse(7))
	assert.Panics(t, func() { none.MustGet() })
}

func TestScoringDataBuilder(t *testing.T) {
	key := EmptyAnswerKey("doc1")
	output := EmptyArgumentOutput("doc1")
	linking, err := NewResponseLinking("doc1", nil, nil)
	require.NoError(t, err)

	t.Run("empty build has nothing present", func(t *testing.T) {
		data := NewScoringDataBuilder().Build()
		assert.False(t, data.AnswerKey().IsPresent())
		assert.False(t, data.SystemOutput().IsPresent())
		assert.False(t, data.SystemLinking().IsPresent())
		assert.False(t, data.ReferenceLinking().IsPresent())
	})

	t.Run("set fields are present", func(t *testing.T) {
		data := NewScoringDataBuilder().WithAnswerKey(key).WithSystemOutput(output).Build()
		assert.True(t, data.AnswerKey().IsPresent())
		assert.True(t, data.SystemOutput().IsPresent())
		assert.False(t, data.SystemLinking().IsPresent())
		assert.Equal(t, DocID("doc1"), data.AnswerKey().MustGet().DocID())
	})

	t.Run("modified copy round trips", func(t *testing.T) {
		data := NewScoringDataBuilder().WithAnswerKey(key).WithReferenceLinking(linking).Build()
		copied := data.ModifiedCopy().Build()
		assert.Equal(t, data.AnswerKey().IsPresent(), copied.AnswerKey().IsPresent())
		assert.Equal(t, data.SystemOutput().IsPresent(), copied.SystemOutput().IsPresent())
		assert.Equal(t, data.SystemLinking().IsPresent(), copied.SystemLinking().IsPresent())
		assert.Equal(t, data.ReferenceLinking().IsPresent(), copied.ReferenceLinking().IsPresent())
	})

	t.Run("modified copy leaves source unchanged", func(t *testing.T) {
		data := NewScoringDataBuilder().WithAnswerKey(key).Build()
		changed := data.ModifiedCopy().WithSystemLinking(linking).Build()
		assert.True(t, changed.SystemLinking().IsPresent())
		assert.False(t, data.SystemLinking().IsPresent())
	})

	t.Run("zero values panic", func(t *testing.T) {
		b := NewScoringDataBuilder()
		assert.Panics(t, func() { b.WithAnswerKey(AnswerKey{}) })
		assert.Panics(t, func() { b.WithSystemOutput(ArgumentOutput{}) })
		assert.Panics(t, func() { b.WithSystemLinking(ResponseLinking{}) })
		assert.Panics(t, func() { b.WithReferenceLinking(ResponseLinking{}) })
	})
}
