package assessment

import (
	"maps"
	"slices"

	"github.com/agentstation/annomerge/pkg/errors"
)

// ArgumentOutput is the set of responses one system proposed for one document.
type ArgumentOutput struct {
	docID     DocID
	responses map[string]ScoredResponse
}

// NewArgumentOutput builds the output for docID. A response listed more than
// once keeps its highest confidence.
func NewArgumentOutput(docID DocID, scored []ScoredResponse) (ArgumentOutput, error) {
	if docID == "" {
		return ArgumentOutput{}, errors.NewValidationError("doc_id", docID, "cannot be empty")
	}
	responses := make(map[string]ScoredResponse, len(scored))
	for _, sr := range scored {
		if sr.DocID != docID {
			return ArgumentOutput{}, errors.NewValidationError("doc_id", sr.DocID,
				"response belongs to a different document than "+string(docID))
		}
		key := sr.Key()
		if existing, ok := responses[key]; ok && existing.Confidence >= sr.Confidence {
			continue
		}
		responses[key] = sr
	}
	return ArgumentOutput{docID: docID, responses: responses}, nil
}

// EmptyArgumentOutput returns an output with no responses.
func EmptyArgumentOutput(docID DocID) ArgumentOutput {
	return ArgumentOutput{docID: docID, responses: map[string]ScoredResponse{}}
}

// DocID returns the document the output belongs to.
func (o ArgumentOutput) DocID() DocID {
	return o.docID
}

// IsZero reports whether o is the zero value rather than a constructed output.
func (o ArgumentOutput) IsZero() bool {
	return o.docID == "" && o.responses == nil
}

// Size returns the number of distinct responses.
func (o ArgumentOutput) Size() int {
	return len(o.responses)
}

// Responses returns the responses ordered by key.
func (o ArgumentOutput) Responses() []Response {
	out := make([]Response, 0, len(o.responses))
	for _, key := range o.sortedKeys() {
		out = append(out, o.responses[key].Response)
	}
	return out
}

// Scored returns the scored responses ordered by key.
func (o ArgumentOutput) Scored() []ScoredResponse {
	out := make([]ScoredResponse, 0, len(o.responses))
	for _, key := range o.sortedKeys() {
		out = append(out, o.responses[key])
	}
	return out
}

// Confidence returns the confidence for r, if r is part of the output.
func (o ArgumentOutput) Confidence(r Response) (float64, bool) {
	sr, ok := o.responses[r.Key()]
	return sr.Confidence, ok
}

// Keep returns a copy holding only the responses for which keep returns true.
func (o ArgumentOutput) Keep(keep func(ScoredResponse) bool) ArgumentOutput {
	kept := make(map[string]ScoredResponse, len(o.responses))
	for key, sr := range o.responses {
		if keep(sr) {
			kept[key] = sr
		}
	}
	return ArgumentOutput{docID: o.docID, responses: kept}
}

func (o ArgumentOutput) sortedKeys() []string {
	return slices.Sorted(maps.Keys(o.responses))
}
