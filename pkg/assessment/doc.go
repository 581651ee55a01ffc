// Package assessment defines the values exchanged between system output
// stores, annotation stores and scoring: responses proposed by a system,
// per-document system output, answer keys partitioned into annotated and
// unannotated responses, response linkings, and the ScoringData bundle.
//
// All values are immutable once constructed. Operations that "modify" a value
// return a new one.
package assessment
