// Package filters holds the per-document record filters and document
// selectors applied before system output is merged into annotation stores.
package filters

import (
	"strconv"

	"golang.org/x/text/cases"

	"github.com/agentstation/annomerge/internal/textlist"
	"github.com/agentstation/annomerge/pkg/assessment"
	"github.com/agentstation/annomerge/pkg/errors"
)

// Filter maps a document's system output to the subset that should be
// imported. Filters must not depend on anything but their input.
type Filter func(assessment.ArgumentOutput) assessment.ArgumentOutput

// Identity imports every response.
func Identity(output assessment.ArgumentOutput) assessment.ArgumentOutput {
	return output
}

type justificationClass struct {
	eventType string
	role      string
	cas       string
	realis    assessment.Realis
}

func classOf(fold cases.Caser, r assessment.Response) justificationClass {
	return justificationClass{
		eventType: r.Type,
		role:      r.Role,
		cas:       fold.String(r.CAS),
		realis:    r.Realis,
	}
}

// KeepBestJustificationOnly keeps, for every (type, role, CAS, realis) answer,
// only the response a scorer would select: the highest confidence one, with
// ties going to the smallest response key. CAS strings are compared after
// Unicode case folding.
func KeepBestJustificationOnly(output assessment.ArgumentOutput) assessment.ArgumentOutput {
	// Casers carry state and are not shared between calls.
	fold := cases.Fold()
	best := make(map[justificationClass]assessment.ScoredResponse)
	for _, sr := range output.Scored() {
		class := classOf(fold, sr.Response)
		current, ok := best[class]
		if !ok || better(sr, current) {
			best[class] = sr
		}
	}
	keep := make(map[string]struct{}, len(best))
	for _, sr := range best {
		keep[sr.Key()] = struct{}{}
	}
	return output.Keep(func(sr assessment.ScoredResponse) bool {
		_, ok := keep[sr.Key()]
		return ok
	})
}

func better(a, b assessment.ScoredResponse) bool {
	if a.Confidence != b.Confidence {
		return a.Confidence > b.Confidence
	}
	return a.Key() < b.Key()
}

// ByName returns the filter for "best" or "all".
func ByName(name string) (Filter, error) {
	switch name {
	case "best", "best-only":
		return KeepBestJustificationOnly, nil
	case "all", "identity":
		return Identity, nil
	default:
		return nil, errors.NewConfigError("filter", "unknown filter "+strconv.Quote(name), nil)
	}
}

// Selector decides whether a document takes part in a run.
type Selector func(assessment.DocID) bool

// AcceptAll selects every document.
func AcceptAll(assessment.DocID) bool {
	return true
}

// InSet selects exactly the listed documents.
func InSet(ids []assessment.DocID) Selector {
	set := make(map[assessment.DocID]struct{}, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}
	return func(id assessment.DocID) bool {
		_, ok := set[id]
		return ok
	}
}

// LoadRestrictionList reads a newline-delimited list of document ids and
// returns a selector accepting only those documents.
func LoadRestrictionList(path string) (Selector, error) {
	lines, err := textlist.ReadFile(path)
	if err != nil {
		return nil, errors.NewConfigError("restriction list", "cannot read "+path, err)
	}
	ids := make([]assessment.DocID, len(lines))
	for i, line := range lines {
		ids[i] = assessment.DocID(line)
	}
	return InSet(ids), nil
}
