package assessment

import (
	"crypto/sha1"
	"encoding/hex"
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/agentstation/annomerge/pkg/errors"
)

// DocID identifies a source document.
type DocID string

// String returns the document id.
func (d DocID) String() string {
	return string(d)
}

// Span is an inclusive character offset range within a document.
type Span struct {
	Start int
	End   int
}

// String renders the span as "start-end".
func (s Span) String() string {
	return strconv.Itoa(s.Start) + "-" + strconv.Itoa(s.End)
}

// Validate checks offsets are non-negative and ordered.
func (s Span) Validate() error {
	if s.Start < 0 || s.End < s.Start {
		return errors.NewValidationError("span", s.String(), "offsets must satisfy 0 <= start <= end")
	}
	return nil
}

// ParseSpan parses "start-end".
func ParseSpan(text string) (Span, error) {
	start, end, ok := strings.Cut(strings.TrimSpace(text), "-")
	if !ok {
		return Span{}, errors.NewValidationError("span", text, "expected start-end")
	}
	s, err := strconv.Atoi(start)
	if err != nil {
		return Span{}, errors.WrapValidation("span", err)
	}
	e, err := strconv.Atoi(end)
	if err != nil {
		return Span{}, errors.WrapValidation("span", err)
	}
	span := Span{Start: s, End: e}
	return span, span.Validate()
}

// ParseSpans parses a comma separated span list. An empty string yields no spans.
func ParseSpans(text string) ([]Span, error) {
	text = strings.TrimSpace(text)
	if text == "" || text == "NIL" {
		return nil, nil
	}
	parts := strings.Split(text, ",")
	spans := make([]Span, 0, len(parts))
	for _, p := range parts {
		span, err := ParseSpan(p)
		if err != nil {
			return nil, err
		}
		spans = append(spans, span)
	}
	return spans, nil
}

// FormatSpans renders spans as a sorted comma separated list.
func FormatSpans(spans []Span) string {
	sorted := sortedSpans(spans)
	parts := make([]string, len(sorted))
	for i, s := range sorted {
		parts[i] = s.String()
	}
	return strings.Join(parts, ",")
}

func sortedSpans(spans []Span) []Span {
	sorted := slices.Clone(spans)
	slices.SortFunc(sorted, func(a, b Span) int {
		if a.Start != b.Start {
			return a.Start - b.Start
		}
		return a.End - b.End
	})
	return slices.Compact(sorted)
}

// Realis is the realis label of an event mention.
type Realis string

// Realis values.
const (
	RealisActual  Realis = "Actual"
	RealisGeneric Realis = "Generic"
	RealisOther   Realis = "Other"
)

// ParseRealis parses a realis label, case-insensitively.
func ParseRealis(text string) (Realis, error) {
	for _, r := range []Realis{RealisActual, RealisGeneric, RealisOther} {
		if strings.EqualFold(text, string(r)) {
			return r, nil
		}
	}
	return "", errors.NewValidationError("realis", text, "expected Actual, Generic or Other")
}

// Response is one candidate event argument proposed for a document.
// Justification span lists are treated as sets.
type Response struct {
	DocID                       DocID
	Type                        string
	Role                        string
	CAS                         string
	CASOffsets                  Span
	BaseFiller                  Span
	PredicateJustifications     []Span
	AdditionalArgJustifications []Span
	Realis                      Realis
}

// Key returns a stable identifier for the response. Two responses are the
// same response exactly when their keys are equal.
func (r Response) Key() string {
	canonical := strings.Join([]string{
		string(r.DocID),
		r.Type,
		r.Role,
		r.CAS,
		r.CASOffsets.String(),
		FormatSpans(r.PredicateJustifications),
		r.BaseFiller.String(),
		FormatSpans(r.AdditionalArgJustifications),
		string(r.Realis),
	}, "\t")
	sum := sha1.Sum([]byte(canonical))
	return hex.EncodeToString(sum[:])
}

// Equal reports whether both values denote the same response.
func (r Response) Equal(other Response) bool {
	return r.Key() == other.Key()
}

// Validate checks the fields every store encoding needs.
func (r Response) Validate() error {
	if r.DocID == "" {
		return errors.NewValidationError("doc_id", r.DocID, "cannot be empty")
	}
	if r.Type == "" || r.Role == "" {
		return errors.NewValidationError("type/role", r.Type+"/"+r.Role, "cannot be empty")
	}
	if _, err := ParseRealis(string(r.Realis)); err != nil {
		return err
	}
	spans := append([]Span{r.CASOffsets, r.BaseFiller}, r.PredicateJustifications...)
	for _, s := range append(spans, r.AdditionalArgJustifications...) {
		if err := s.Validate(); err != nil {
			return err
		}
	}
	return nil
}

// String renders a short human readable form.
func (r Response) String() string {
	return fmt.Sprintf("%s/%s/%s[%s]/%s", r.DocID, r.Type, r.Role, r.CAS, r.Realis)
}

// ScoredResponse pairs a response with the system's confidence in it.
type ScoredResponse struct {
	Response
	Confidence float64
}
