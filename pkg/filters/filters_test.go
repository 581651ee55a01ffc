package filters

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentstation/annomerge/pkg/assessment"
	"github.com/agentstation/annomerge/pkg/errors"
)

func response(role, cas string, start int) assessment.Response {
	return assessment.Response{
		DocID:                   "doc1",
		Type:                    "Conflict.Attack",
		Role:                    role,
		CAS:                     cas,
		CASOffsets:              assessment.Span{Start: start, End: start + 5},
		BaseFiller:              assessment.Span{Start: start, End: start + 5},
		PredicateJustifications: []assessment.Span{{Start: start, End: start + 30}},
		Realis:                  assessment.RealisActual,
	}
}

func output(t *testing.T, scored ...assessment.ScoredResponse) assessment.ArgumentOutput {
	t.Helper()
	out, err := assessment.NewArgumentOutput("doc1", scored)
	require.NoError(t, err)
	return out
}

func TestIdentity(t *testing.T) {
	in := output(t,
		assessment.ScoredResponse{Response: response("Attacker", "rebels", 0), Confidence: 0.3},
		assessment.ScoredResponse{Response: response("Attacker", "rebels", 100), Confidence: 0.6},
	)
	assert.Equal(t, in.Responses(), Identity(in).Responses())
}

func TestKeepBestJustificationOnly(t *testing.T) {
	low := response("Attacker", "rebels", 0)
	high := response("Attacker", "Rebels", 100)
	other := response("Target", "village", 50)

	in := output(t,
		assessment.ScoredResponse{Response: low, Confidence: 0.3},
		assessment.ScoredResponse{Response: high, Confidence: 0.6},
		assessment.ScoredResponse{Response: other, Confidence: 0.1},
	)

	got := KeepBestJustificationOnly(in)
	assert.Equal(t, 2, got.Size())
	_, ok := got.Confidence(high)
	assert.True(t, ok, "highest confidence justification kept")
	_, ok = got.Confidence(low)
	assert.False(t, ok, "case-folded CAS makes both the same answer")
	_, ok = got.Confidence(other)
	assert.True(t, ok)
	assert.Equal(t, 3, in.Size(), "input is not modified")
}

func TestKeepBestJustificationOnlyTies(t *testing.T) {
	a := response("Attacker", "rebels", 0)
	b := response("Attacker", "rebels", 100)
	in := output(t,
		assessment.ScoredResponse{Response: a, Confidence: 0.5},
		assessment.ScoredResponse{Response: b, Confidence: 0.5},
	)

	want := a
	if b.Key() < a.Key() {
		want = b
	}
	got := KeepBestJustificationOnly(in)
	require.Equal(t, 1, got.Size())
	assert.True(t, got.Responses()[0].Equal(want))

	// Deterministic regardless of how often it is applied.
	assert.Equal(t, got.Responses(), KeepBestJustificationOnly(got).Responses())
}

func TestKeepBestJustificationOnlyRealisSeparates(t *testing.T) {
	a := response("Attacker", "rebels", 0)
	b := response("Attacker", "rebels", 100)
	b.Realis = assessment.RealisGeneric
	in := output(t,
		assessment.ScoredResponse{Response: a, Confidence: 0.5},
		assessment.ScoredResponse{Response: b, Confidence: 0.9},
	)
	assert.Equal(t, 2, KeepBestJustificationOnly(in).Size())
}

func TestByName(t *testing.T) {
	f, err := ByName("best")
	require.NoError(t, err)
	assert.NotNil(t, f)

	_, err = ByName("worst")
	assert.True(t, errors.IsConfigError(err))
}

func TestSelectors(t *testing.T) {
	assert.True(t, AcceptAll("anything"))

	sel := InSet([]assessment.DocID{"doc1", "doc3"})
	assert.True(t, sel("doc1"))
	assert.False(t, sel("doc2"))
}

func TestLoadRestrictionList(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "restrict.txt")
	require.NoError(t, os.WriteFile(path, []byte("\ufeffdoc1\n\n  doc2 \n"), 0o600))

	sel, err := LoadRestrictionList(path)
	require.NoError(t, err)
	assert.True(t, sel("doc1"))
	assert.True(t, sel("doc2"))
	assert.False(t, sel("doc3"))

	_, err = LoadRestrictionList(filepath.Join(dir, "missing.txt"))
	require.Error(t, err)
	assert.True(t, errors.IsConfigError(err))
}
