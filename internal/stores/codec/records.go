// Package codec converts documents between the domain model and their stored
// encodings. Every backend stores one encoded document per doc id.
package codec

import (
	"strconv"

	"github.com/agentstation/utc"

	"github.com/agentstation/annomerge/pkg/assessment"
	"github.com/agentstation/annomerge/pkg/errors"
)

// QuotedString is free text that YAML always writes double-quoted, so tabs,
// control characters and edge whitespace read back unchanged.
type QuotedString string

// MarshalYAML implements yaml.BytesMarshaler.
func (q QuotedString) MarshalYAML() ([]byte, error) {
	return []byte(strconv.Quote(string(q))), nil
}

// ResponseRecord is the stored form of a response.
type ResponseRecord struct {
	Type                        QuotedString `yaml:"type" json:"type"`
	Role                        QuotedString `yaml:"role" json:"role"`
	CAS                         QuotedString `yaml:"cas" json:"cas"`
	CASOffsets                  string       `yaml:"cas_offsets" json:"cas_offsets"`
	BaseFiller                  string       `yaml:"base_filler" json:"base_filler"`
	PredicateJustifications     string       `yaml:"predicate_justifications" json:"predicate_justifications"`
	AdditionalArgJustifications string       `yaml:"additional_arg_justifications,omitempty" json:"additional_arg_justifications,omitempty"`
	Realis                      string       `yaml:"realis" json:"realis"`
	Confidence                  float64      `yaml:"confidence,omitempty" json:"confidence,omitempty"`
}

// AssessmentRecord is the stored form of an assessment.
type AssessmentRecord struct {
	EventType  string `yaml:"event_type,omitempty" json:"event_type,omitempty"`
	Role       string `yaml:"role,omitempty" json:"role,omitempty"`
	Filler     string `yaml:"filler,omitempty" json:"filler,omitempty"`
	BaseFiller string `yaml:"base_filler,omitempty" json:"base_filler,omitempty"`
	Realis     string `yaml:"realis,omitempty" json:"realis,omitempty"`
}

// AnnotatedRecord is an assessed response.
type AnnotatedRecord struct {
	Response   ResponseRecord   `yaml:"response" json:"response"`
	Assessment AssessmentRecord `yaml:"assessment" json:"assessment"`
}

// SystemOutputDocument is the stored form of one document's system output.
type SystemOutputDocument struct {
	DocID     string           `yaml:"doc_id" json:"doc_id"`
	Responses []ResponseRecord `yaml:"responses" json:"responses"`
}

// AnswerKeyDocument is the stored form of one document's annotation state.
type AnswerKeyDocument struct {
	DocID       string            `yaml:"doc_id" json:"doc_id"`
	UpdatedAt   utc.Time          `yaml:"updated_at" json:"updated_at"`
	Annotated   []AnnotatedRecord `yaml:"annotated" json:"annotated"`
	Unannotated []ResponseRecord  `yaml:"unannotated" json:"unannotated"`
}

// NewResponseRecord converts a response.
func NewResponseRecord(r assessment.Response, confidence float64) ResponseRecord {
	return ResponseRecord{
		Type:                        QuotedString(r.Type),
		Role:                        QuotedString(r.Role),
		CAS:                         QuotedString(r.CAS),
		CASOffsets:                  r.CASOffsets.String(),
		BaseFiller:                  r.BaseFiller.String(),
		PredicateJustifications:     assessment.FormatSpans(r.PredicateJustifications),
		AdditionalArgJustifications: assessment.FormatSpans(r.AdditionalArgJustifications),
		Realis:                      string(r.Realis),
		Confidence:                  confidence,
	}
}

// Response converts the record back, attaching docID.
func (rec ResponseRecord) Response(docID assessment.DocID) (assessment.Response, error) {
	casOffsets, err := assessment.ParseSpan(rec.CASOffsets)
	if err != nil {
		return assessment.Response{}, err
	}
	baseFiller, err := assessment.ParseSpan(rec.BaseFiller)
	if err != nil {
		return assessment.Response{}, err
	}
	pj, err := assessment.ParseSpans(rec.PredicateJustifications)
	if err != nil {
		return assessment.Response{}, err
	}
	aj, err := assessment.ParseSpans(rec.AdditionalArgJustifications)
	if err != nil {
		return assessment.Response{}, err
	}
	realis, err := assessment.ParseRealis(rec.Realis)
	if err != nil {
		return assessment.Response{}, err
	}
	r := assessment.Response{
		DocID:                       docID,
		Type:                        string(rec.Type),
		Role:                        string(rec.Role),
		CAS:                         string(rec.CAS),
		CASOffsets:                  casOffsets,
		BaseFiller:                  baseFiller,
		PredicateJustifications:     pj,
		AdditionalArgJustifications: aj,
		Realis:                      realis,
	}
	return r, r.Validate()
}

// NewAssessmentRecord converts an assessment.
func NewAssessmentRecord(a assessment.Assessment) AssessmentRecord {
	return AssessmentRecord{
		EventType:  string(a.EventType),
		Role:       string(a.Role),
		Filler:     string(a.Filler),
		BaseFiller: string(a.BaseFiller),
		Realis:     string(a.Realis),
	}
}

// Assessment converts the record back.
func (rec AssessmentRecord) Assessment() (assessment.Assessment, error) {
	var a assessment.Assessment
	var err error
	if a.EventType, err = assessment.ParseFieldAssessment(rec.EventType); err != nil {
		return a, err
	}
	if a.Role, err = assessment.ParseFieldAssessment(rec.Role); err != nil {
		return a, err
	}
	if a.Filler, err = assessment.ParseFieldAssessment(rec.Filler); err != nil {
		return a, err
	}
	if a.BaseFiller, err = assessment.ParseFieldAssessment(rec.BaseFiller); err != nil {
		return a, err
	}
	if rec.Realis != "" && rec.Realis != "NIL" {
		if a.Realis, err = assessment.ParseRealis(rec.Realis); err != nil {
			return a, err
		}
	}
	return a, nil
}

// NewSystemOutputDocument converts an argument output.
func NewSystemOutputDocument(output assessment.ArgumentOutput) SystemOutputDocument {
	doc := SystemOutputDocument{
		DocID:     string(output.DocID()),
		Responses: make([]ResponseRecord, 0, output.Size()),
	}
	for _, sr := range output.Scored() {
		doc.Responses = append(doc.Responses, NewResponseRecord(sr.Response, sr.Confidence))
	}
	return doc
}

// ArgumentOutput converts the document back.
func (doc SystemOutputDocument) ArgumentOutput(docID assessment.DocID) (assessment.ArgumentOutput, error) {
	if err := checkDocID(docID, doc.DocID); err != nil {
		return assessment.ArgumentOutput{}, err
	}
	scored := make([]assessment.ScoredResponse, 0, len(doc.Responses))
	for _, rec := range doc.Responses {
		r, err := rec.Response(docID)
		if err != nil {
			return assessment.ArgumentOutput{}, err
		}
		scored = append(scored, assessment.ScoredResponse{Response: r, Confidence: rec.Confidence})
	}
	return assessment.NewArgumentOutput(docID, scored)
}

// NewAnswerKeyDocument converts an answer key, stamping it with updatedAt.
func NewAnswerKeyDocument(key assessment.AnswerKey, updatedAt utc.Time) AnswerKeyDocument {
	doc := AnswerKeyDocument{
		DocID:       string(key.DocID()),
		UpdatedAt:   updatedAt,
		Annotated:   make([]AnnotatedRecord, 0, key.NumAnnotated()),
		Unannotated: make([]ResponseRecord, 0, key.NumUnannotated()),
	}
	for _, ar := range key.AnnotatedResponses() {
		doc.Annotated = append(doc.Annotated, AnnotatedRecord{
			Response:   NewResponseRecord(ar.Response, 0),
			Assessment: NewAssessmentRecord(ar.Assessment),
		})
	}
	for _, r := range key.UnannotatedResponses() {
		doc.Unannotated = append(doc.Unannotated, NewResponseRecord(r, 0))
	}
	return doc
}

// AnswerKey converts the document back.
func (doc AnswerKeyDocument) AnswerKey(docID assessment.DocID) (assessment.AnswerKey, error) {
	if err := checkDocID(docID, doc.DocID); err != nil {
		return assessment.AnswerKey{}, err
	}
	annotated := make([]assessment.AssessedResponse, 0, len(doc.Annotated))
	for _, rec := range doc.Annotated {
		r, err := rec.Response.Response(docID)
		if err != nil {
			return assessment.AnswerKey{}, err
		}
		a, err := rec.Assessment.Assessment()
		if err != nil {
			return assessment.AnswerKey{}, err
		}
		annotated = append(annotated, assessment.AssessedResponse{Response: r, Assessment: a})
	}
	unannotated := make([]assessment.Response, 0, len(doc.Unannotated))
	for _, rec := range doc.Unannotated {
		r, err := rec.Response(docID)
		if err != nil {
			return assessment.AnswerKey{}, err
		}
		unannotated = append(unannotated, r)
	}
	return assessment.NewAnswerKey(docID, annotated, unannotated)
}

// An empty stored doc id is accepted and means "named by its location".
func checkDocID(want assessment.DocID, stored string) error {
	if stored != "" && stored != string(want) {
		return errors.NewValidationError("doc_id", stored, "document is stored under "+string(want))
	}
	return nil
}
