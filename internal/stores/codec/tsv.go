package codec

import (
	"bytes"
	"encoding/csv"
	"io"
	"strconv"

	"github.com/agentstation/utc"

	"github.com/agentstation/annomerge/pkg/assessment"
	"github.com/agentstation/annomerge/pkg/errors"
)

// Unannotated marks a TSV annotation line that has not been assessed yet.
const Unannotated = "UNANNOTATED"

const (
	responseColumns   = 10 // id docid type role cas cas_offsets pj bf aj realis
	assessmentColumns = 5  // type role filler bf realis
	nilField          = "NIL"
)

// TSV stores documents as tab separated lines, one response per line:
//
//	id docid type role cas cas_offsets pj bf aj realis confidence
//
// Annotation files replace the confidence column with five assessment
// columns (event type, role, filler, base filler, realis) or with the
// single token UNANNOTATED. Lines starting with '#' are comments.
type TSV struct{}

// Name implements Codec.
func (TSV) Name() string { return "tsv" }

// Extension implements Codec.
func (TSV) Extension() string { return ".tsv" }

func newTSVWriter(buf *bytes.Buffer) *csv.Writer {
	w := csv.NewWriter(buf)
	w.Comma = '\t'
	return w
}

func newTSVReader(data []byte) *csv.Reader {
	r := csv.NewReader(bytes.NewReader(data))
	r.Comma = '\t'
	r.Comment = '#'
	r.FieldsPerRecord = -1
	r.LazyQuotes = true
	return r
}

func responseFields(r assessment.Response) []string {
	rec := NewResponseRecord(r, 0)
	return []string{
		r.Key(),
		string(r.DocID),
		string(rec.Type),
		string(rec.Role),
		string(rec.CAS),
		rec.CASOffsets,
		orNil(rec.PredicateJustifications),
		rec.BaseFiller,
		orNil(rec.AdditionalArgJustifications),
		rec.Realis,
	}
}

func parseResponseFields(docID assessment.DocID, fields []string) (assessment.Response, error) {
	if fields[1] != string(docID) {
		return assessment.Response{}, errors.NewValidationError("doc_id", fields[1], "document is stored under "+string(docID))
	}
	rec := ResponseRecord{
		Type:                        QuotedString(fields[2]),
		Role:                        QuotedString(fields[3]),
		CAS:                         QuotedString(fields[4]),
		CASOffsets:                  fields[5],
		PredicateJustifications:     fields[6],
		BaseFiller:                  fields[7],
		AdditionalArgJustifications: fields[8],
		Realis:                      fields[9],
	}
	return rec.Response(docID)
}

func orNil(s string) string {
	if s == "" {
		return nilField
	}
	return s
}

// EncodeSystemOutput implements Codec.
func (TSV) EncodeSystemOutput(output assessment.ArgumentOutput) ([]byte, error) {
	var buf bytes.Buffer
	w := newTSVWriter(&buf)
	for _, sr := range output.Scored() {
		fields := append(responseFields(sr.Response), strconv.FormatFloat(sr.Confidence, 'f', -1, 64))
		if err := w.Write(fields); err != nil {
			return nil, err
		}
	}
	w.Flush()
	return buf.Bytes(), w.Error()
}

// DecodeSystemOutput implements Codec.
func (c TSV) DecodeSystemOutput(docID assessment.DocID, data []byte) (assessment.ArgumentOutput, error) {
	var scored []assessment.ScoredResponse
	err := c.eachLine(docID, data, func(fields []string) error {
		if len(fields) != responseColumns+1 {
			return errors.New("expected " + strconv.Itoa(responseColumns+1) + " columns, got " + strconv.Itoa(len(fields)))
		}
		r, err := parseResponseFields(docID, fields)
		if err != nil {
			return err
		}
		confidence, err := strconv.ParseFloat(fields[responseColumns], 64)
		if err != nil {
			return err
		}
		scored = append(scored, assessment.ScoredResponse{Response: r, Confidence: confidence})
		return nil
	})
	if err != nil {
		return assessment.ArgumentOutput{}, err
	}
	output, err := assessment.NewArgumentOutput(docID, scored)
	if err != nil {
		return assessment.ArgumentOutput{}, errors.WrapParse(c.Name(), string(docID)+c.Extension(), err)
	}
	return output, nil
}

// EncodeAnswerKey implements Codec.
func (TSV) EncodeAnswerKey(key assessment.AnswerKey, updatedAt utc.Time) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteString("# updated_at " + updatedAt.String() + "\n")
	w := newTSVWriter(&buf)
	for _, ar := range key.AnnotatedResponses() {
		a := NewAssessmentRecord(ar.Assessment)
		fields := append(responseFields(ar.Response),
			orNil(a.EventType), orNil(a.Role), orNil(a.Filler), orNil(a.BaseFiller), orNil(a.Realis))
		if err := w.Write(fields); err != nil {
			return nil, err
		}
	}
	for _, r := range key.UnannotatedResponses() {
		if err := w.Write(append(responseFields(r), Unannotated)); err != nil {
			return nil, err
		}
	}
	w.Flush()
	return buf.Bytes(), w.Error()
}

// DecodeAnswerKey implements Codec.
func (c TSV) DecodeAnswerKey(docID assessment.DocID, data []byte) (assessment.AnswerKey, error) {
	var annotated []assessment.AssessedResponse
	var unannotated []assessment.Response
	err := c.eachLine(docID, data, func(fields []string) error {
		switch {
		case len(fields) == responseColumns+1 && fields[responseColumns] == Unannotated:
			r, err := parseResponseFields(docID, fields)
			if err != nil {
				return err
			}
			unannotated = append(unannotated, r)
		case len(fields) == responseColumns+assessmentColumns:
			r, err := parseResponseFields(docID, fields)
			if err != nil {
				return err
			}
			cols := fields[responseColumns:]
			a, err := AssessmentRecord{
				EventType:  cols[0],
				Role:       cols[1],
				Filler:     cols[2],
				BaseFiller: cols[3],
				Realis:     cols[4],
			}.Assessment()
			if err != nil {
				return err
			}
			annotated = append(annotated, assessment.AssessedResponse{Response: r, Assessment: a})
		default:
			return errors.New("expected an assessment or " + Unannotated + ", got " + strconv.Itoa(len(fields)) + " columns")
		}
		return nil
	})
	if err != nil {
		return assessment.AnswerKey{}, err
	}
	key, err := assessment.NewAnswerKey(docID, annotated, unannotated)
	if err != nil {
		return assessment.AnswerKey{}, errors.WrapParse(c.Name(), string(docID)+c.Extension(), err)
	}
	return key, nil
}

func (c TSV) eachLine(docID assessment.DocID, data []byte, fn func([]string) error) error {
	r := newTSVReader(data)
	for {
		fields, err := r.Read()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return errors.WrapParse(c.Name(), string(docID)+c.Extension(), err)
		}
		line, _ := r.FieldPos(0)
		if len(fields) < responseColumns {
			return &errors.ParseError{Format: c.Name(), File: string(docID) + c.Extension(), Line: line,
				Message: "expected at least " + strconv.Itoa(responseColumns) + " columns"}
		}
		if err := fn(fields); err != nil {
			return &errors.ParseError{Format: c.Name(), File: string(docID) + c.Extension(), Line: line, Message: err.Error(), Err: err}
		}
	}
}
