package assessment

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewResponseLinking(t *testing.T) {
	a := testResponse("doc1", "Attacker", "rebels", 10)
	b := testResponse("doc1", "Target", "village", 40)
	c := testResponse("doc1", "Place", "valley", 70)

	linking, err := NewResponseLinking("doc1", [][]Response{{a, b}}, []Response{c})
	require.NoError(t, err)
	assert.Equal(t, DocID("doc1"), linking.DocID())
	assert.Len(t, linking.ResponseSets(), 1)
	assert.Len(t, linking.Incomplete(), 1)

	_, err = NewResponseLinking("doc1", [][]Response{{a}, {a}}, nil)
	assert.Error(t, err, "response in two sets")

	_, err = NewResponseLinking("doc1", [][]Response{{a}}, []Response{a})
	assert.Error(t, err, "response linked and incomplete")

	_, err = NewResponseLinking("doc2", [][]Response{{a}}, nil)
	assert.Error(t, err, "foreign response")

	assert.True(t, ResponseLinking{}.IsZero())
}

func TestResponseLinkingReturnsCopies(t *testing.T) {
	a := testResponse("doc1", "Attacker", "rebels", 10)
	linking, err := NewResponseLinking("doc1", [][]Response{{a}}, nil)
	require.NoError(t, err)

	sets := linking.ResponseSets()
	sets[0][0].Role = "Changed"
	assert.Equal(t, "Attacker", linking.ResponseSets()[0][0].Role)
}
