package assessment

import (
	"maps"
	"slices"

	"github.com/agentstation/annomerge/pkg/errors"
)

// FieldAssessment is an annotator's judgment of one aspect of a response.
type FieldAssessment string

// Field assessment values.
const (
	Correct   FieldAssessment = "CORRECT"
	Incorrect FieldAssessment = "INCORRECT"
	Inexact   FieldAssessment = "INEXACT"
)

// ParseFieldAssessment parses CORRECT, INCORRECT or INEXACT. An empty string
// or "NIL" means the aspect was not assessed.
func ParseFieldAssessment(text string) (FieldAssessment, error) {
	switch FieldAssessment(text) {
	case Correct, Incorrect, Inexact:
		return FieldAssessment(text), nil
	case "", "NIL":
		return "", nil
	default:
		return "", errors.NewValidationError("assessment", text, "expected CORRECT, INCORRECT or INEXACT")
	}
}

// Assessment records how an annotator judged a response.
type Assessment struct {
	EventType  FieldAssessment
	Role       FieldAssessment
	Filler     FieldAssessment
	BaseFiller FieldAssessment
	Realis     Realis
}

// AssessedResponse is a response together with its human assessment.
type AssessedResponse struct {
	Response   Response
	Assessment Assessment
}

// AnswerKey is the annotation state of one document. Every response known for
// the document is either annotated or waiting for annotation, never both.
type AnswerKey struct {
	docID       DocID
	annotated   map[string]AssessedResponse
	unannotated map[string]Response
}

// NewAnswerKey builds an answer key, rejecting responses from other documents
// and responses listed in both partitions.
func NewAnswerKey(docID DocID, annotated []AssessedResponse, unannotated []Response) (AnswerKey, error) {
	if docID == "" {
		return AnswerKey{}, errors.NewValidationError("doc_id", docID, "cannot be empty")
	}
	key := AnswerKey{
		docID:       docID,
		annotated:   make(map[string]AssessedResponse, len(annotated)),
		unannotated: make(map[string]Response, len(unannotated)),
	}
	for _, ar := range annotated {
		if ar.Response.DocID != docID {
			return AnswerKey{}, errors.NewValidationError("doc_id", ar.Response.DocID,
				"annotated response belongs to a different document than "+string(docID))
		}
		key.annotated[ar.Response.Key()] = ar
	}
	for _, r := range unannotated {
		if r.DocID != docID {
			return AnswerKey{}, errors.NewValidationError("doc_id", r.DocID,
				"unannotated response belongs to a different document than "+string(docID))
		}
		k := r.Key()
		if _, dup := key.annotated[k]; dup {
			return AnswerKey{}, errors.NewValidationError("unannotated", r.String(),
				"response is also annotated")
		}
		key.unannotated[k] = r
	}
	return key, nil
}

// EmptyAnswerKey returns the answer key of a document nobody has touched.
func EmptyAnswerKey(docID DocID) AnswerKey {
	return AnswerKey{
		docID:       docID,
		annotated:   map[string]AssessedResponse{},
		unannotated: map[string]Response{},
	}
}

// DocID returns the document the key belongs to.
func (k AnswerKey) DocID() DocID {
	return k.docID
}

// IsZero reports whether k is the zero value rather than a constructed key.
func (k AnswerKey) IsZero() bool {
	return k.docID == "" && k.annotated == nil && k.unannotated == nil
}

// NumAnnotated returns the size of the annotated partition.
func (k AnswerKey) NumAnnotated() int {
	return len(k.annotated)
}

// NumUnannotated returns the size of the unannotated partition.
func (k AnswerKey) NumUnannotated() int {
	return len(k.unannotated)
}

// AnnotatedResponses returns the annotated partition ordered by response key.
func (k AnswerKey) AnnotatedResponses() []AssessedResponse {
	out := make([]AssessedResponse, 0, len(k.annotated))
	for _, key := range slices.Sorted(maps.Keys(k.annotated)) {
		out = append(out, k.annotated[key])
	}
	return out
}

// UnannotatedResponses returns the unannotated partition ordered by response key.
func (k AnswerKey) UnannotatedResponses() []Response {
	out := make([]Response, 0, len(k.unannotated))
	for _, key := range slices.Sorted(maps.Keys(k.unannotated)) {
		out = append(out, k.unannotated[key])
	}
	return out
}

// Contains reports whether r is present in either partition.
func (k AnswerKey) Contains(r Response) bool {
	key := r.Key()
	if _, ok := k.annotated[key]; ok {
		return true
	}
	_, ok := k.unannotated[key]
	return ok
}

// Assessment returns the assessment of r if r is annotated.
func (k AnswerKey) Assessment(r Response) (Assessment, bool) {
	ar, ok := k.annotated[r.Key()]
	return ar.Assessment, ok
}

// CopyAddingPossiblyUnannotated returns a new key in which every given response
// that is not yet present in either partition has been added as unannotated.
// Responses already present keep their partition and assessment, so applying
// the same responses twice yields the same key. Responses of other documents
// are skipped.
func (k AnswerKey) CopyAddingPossiblyUnannotated(responses []Response) AnswerKey {
	unannotated := maps.Clone(k.unannotated)
	if unannotated == nil {
		unannotated = map[string]Response{}
	}
	for _, r := range responses {
		if r.DocID != k.docID {
			continue
		}
		key := r.Key()
		if _, ok := k.annotated[key]; ok {
			continue
		}
		if _, ok := unannotated[key]; ok {
			continue
		}
		unannotated[key] = r
	}
	annotated := k.annotated
	if annotated == nil {
		annotated = map[string]AssessedResponse{}
	}
	return AnswerKey{docID: k.docID, annotated: annotated, unannotated: unannotated}
}

// Equal reports whether both keys hold the same document, partitions and
// assessments.
func (k AnswerKey) Equal(other AnswerKey) bool {
	if k.docID != other.docID ||
		len(k.annotated) != len(other.annotated) ||
		len(k.unannotated) != len(other.unannotated) {
		return false
	}
	for key, ar := range k.annotated {
		o, ok := other.annotated[key]
		if !ok || o.Assessment != ar.Assessment {
			return false
		}
	}
	for key := range k.unannotated {
		if _, ok := other.unannotated[key]; !ok {
			return false
		}
	}
	return true
}
