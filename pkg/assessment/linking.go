package assessment

import (
	"github.com/agentstation/annomerge/pkg/errors"
)

// ResponseLinking groups the responses of a document into event frames.
// Responses that could not be linked are kept in the incomplete set.
type ResponseLinking struct {
	docID      DocID
	sets       [][]Response
	incomplete []Response
}

// NewResponseLinking builds a linking. A response may belong to at most one
// set and may not be both linked and incomplete.
func NewResponseLinking(docID DocID, sets [][]Response, incomplete []Response) (ResponseLinking, error) {
	if docID == "" {
		return ResponseLinking{}, errors.NewValidationError("doc_id", docID, "cannot be empty")
	}
	seen := make(map[string]struct{})
	check := func(r Response) error {
		if r.DocID != docID {
			return errors.NewValidationError("doc_id", r.DocID, "linked response belongs to a different document than "+string(docID))
		}
		key := r.Key()
		if _, dup := seen[key]; dup {
			return errors.NewValidationError("linking", r.String(), "response appears more than once")
		}
		seen[key] = struct{}{}
		return nil
	}

	copied := make([][]Response, 0, len(sets))
	for _, set := range sets {
		for _, r := range set {
			if err := check(r); err != nil {
				return ResponseLinking{}, err
			}
		}
		copied = append(copied, append([]Response(nil), set...))
	}
	for _, r := range incomplete {
		if err := check(r); err != nil {
			return ResponseLinking{}, err
		}
	}
	return ResponseLinking{
		docID:      docID,
		sets:       copied,
		incomplete: append([]Response(nil), incomplete...),
	}, nil
}

// DocID returns the linked document.
func (l ResponseLinking) DocID() DocID {
	return l.docID
}

// IsZero reports whether l is the zero value rather than a constructed linking.
func (l ResponseLinking) IsZero() bool {
	return l.docID == ""
}

// ResponseSets returns a copy of the linked sets.
func (l ResponseLinking) ResponseSets() [][]Response {
	out := make([][]Response, len(l.sets))
	for i, set := range l.sets {
		out[i] = append([]Response(nil), set...)
	}
	return out
}

// Incomplete returns the responses that were not linked.
func (l ResponseLinking) Incomplete() []Response {
	return append([]Response(nil), l.incomplete...)
}
