// Package reconcile merges system output into annotation stores.
//
// For every selected document of every system output store, the filtered
// responses are added to each annotation store as unannotated responses.
// Existing annotations are never removed or re-classified, and running the
// same import twice changes nothing the second time.
package reconcile

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/agentstation/annomerge/pkg/assessment"
	"github.com/agentstation/annomerge/pkg/errors"
	"github.com/agentstation/annomerge/pkg/logging"
	"github.com/agentstation/annomerge/pkg/stores"
)

// Reconciler runs imports.
type Reconciler struct {
	opts *options
}

// New creates a Reconciler.
func New(opts ...Option) (*Reconciler, error) {
	o, err := newOptions(opts...)
	if err != nil {
		return nil, err
	}
	return &Reconciler{opts: o}, nil
}

// storeState tracks one annotation store across the run. In a dry run,
// pending holds the answer keys that would have been written so later
// system outputs merge against them instead of the unchanged store.
type storeState struct {
	store   stores.AnnotationStore
	tally   StoreTally
	seen    map[assessment.DocID]struct{}
	pending map[assessment.DocID]assessment.AnswerKey
	failed  bool
}

// outcome is the result of merging one document into one store.
type outcome struct {
	ran     bool
	current assessment.AnswerKey
	added   int
	err     error
}

// Reconcile imports every selected document of systemOutputs into every
// annotation store. Stores listed more than once are used once. The result
// is returned even when err is non-nil and reflects the work done so far.
func (r *Reconciler) Reconcile(ctx context.Context, systemOutputs []stores.ArgumentStore, annotationStores []stores.AnnotationStore) (*Result, error) {
	result := NewResult()
	result.Metadata.DryRun = r.opts.dryRun
	result.Metadata.Policy = r.opts.policy
	result.Metadata.Parallelism = r.opts.parallelism
	defer result.Finalize()

	logger := r.opts.logger
	if logger == nil {
		logger = logging.FromContext(ctx)
	}
	ctx = logging.WithLogger(ctx, logger)
	if r.opts.dryRun {
		ctx = logging.WithDryRun(ctx)
	}

	outputs, err := distinctOutputs(systemOutputs)
	if err != nil {
		return result, r.fail(result, err)
	}
	states, err := distinctStates(annotationStores)
	if err != nil {
		return result, r.fail(result, err)
	}
	for _, s := range outputs {
		result.Metadata.SystemOutputs = append(result.Metadata.SystemOutputs, s.Location())
	}
	defer func() {
		result.Stores = make([]StoreTally, len(states))
		for i, st := range states {
			result.Stores[i] = st.tally
		}
	}()

	for _, st := range states {
		logging.FromContext(logging.WithStore(ctx, st.tally.Location)).Info().Msg("Using annotation store")
	}

	for _, systemOutput := range outputs {
		if err := r.importStore(ctx, systemOutput, states, result); err != nil {
			return result, err
		}
	}

	logger.Info().
		Int("documents", result.Metadata.Stats.DocumentsProcessed).
		Int("added", totalAdded(states)).
		Bool("dry_run", r.opts.dryRun).
		Msg("Import complete")
	return result, nil
}

func (r *Reconciler) importStore(ctx context.Context, systemOutput stores.ArgumentStore, states []*storeState, result *Result) error {
	ctx = logging.WithSystemOutput(ctx, systemOutput.Location())
	logging.FromContext(ctx).Info().Msg("Processing system output")

	docIDs, err := systemOutput.DocIDs(ctx)
	if err != nil {
		return r.fail(result, errors.WrapStore("list", systemOutput.Location(), "", err))
	}

	for _, docID := range docIDs {
		if err := ctx.Err(); err != nil {
			return r.fail(result, errors.NewStoreError("import", systemOutput.Location(), string(docID),
				errors.WrapCanceled(err)))
		}
		if !r.opts.selector(docID) {
			result.Metadata.Stats.DocumentsSkipped++
			r.opts.metrics.skipped()
			continue
		}

		started := time.Now()
		docCtx := logging.WithDocument(ctx, string(docID))
		output, err := systemOutput.Read(docCtx, docID)
		if err != nil {
			return r.fail(result, err)
		}
		if output.DocID() != docID {
			return r.fail(result, errors.NewStoreError("read", systemOutput.Location(), string(docID),
				errors.NewValidationError("doc_id", output.DocID(), "output does not belong to the requested document")))
		}
		responses := r.opts.filter(output).Responses()
		logging.FromContext(docCtx).Info().
			Int("responses", len(responses)).
			Msg("Processing document")

		if err := r.mergeDocument(docCtx, docID, responses, states, result); err != nil {
			return err
		}

		result.Metadata.Stats.DocumentsProcessed++
		result.Metadata.Stats.ResponsesImported += len(responses)
		r.opts.metrics.processed()
		r.opts.metrics.observe(time.Since(started).Seconds())
	}
	return nil
}

// mergeDocument merges responses into every active store and folds the
// per-store outcomes into the tallies in store order.
func (r *Reconciler) mergeDocument(ctx context.Context, docID assessment.DocID, responses []assessment.Response, states []*storeState, result *Result) error {
	outcomes := make([]outcome, len(states))

	if r.opts.parallelism <= 1 {
		for i, st := range states {
			if st.failed {
				continue
			}
			outcomes[i] = r.mergeOne(ctx, st, docID, responses)
			if outcomes[i].err != nil && r.opts.policy == FailAbort {
				break
			}
		}
	} else {
		var g errgroup.Group
		g.SetLimit(r.opts.parallelism)
		for i, st := range states {
			if st.failed {
				continue
			}
			g.Go(func() error {
				outcomes[i] = r.mergeOne(ctx, st, docID, responses)
				return nil
			})
		}
		_ = g.Wait()
	}

	for i, st := range states {
		o := outcomes[i]
		if st.failed || !o.ran {
			continue
		}
		logger := logging.FromContext(logging.WithStore(ctx, st.tally.Location))
		if o.err != nil {
			st.failed = true
			st.tally.Failed = true
			st.tally.Err = o.err
			r.opts.metrics.failed(st.tally.Location)
			if r.opts.policy == FailAbort {
				return r.fail(result, o.err)
			}
			result.Errors = append(result.Errors, o.err)
			logger.Warn().Err(o.err).Msg("Annotation store failed; skipping it for the rest of the run")
			continue
		}

		if _, ok := st.seen[docID]; !ok {
			st.seen[docID] = struct{}{}
			st.tally.Documents++
			st.tally.PreviouslyAnnotated += o.current.NumAnnotated()
			st.tally.PreviouslyUnannotated += o.current.NumUnannotated()
		}
		st.tally.Added += o.added
		r.opts.metrics.added(st.tally.Location, o.added)

		logger.Info().
			Int("annotated", o.current.NumAnnotated()).
			Int("unannotated", o.current.NumUnannotated()).
			Int("added", o.added).
			Msg("Merged document")
	}
	return nil
}

// mergeOne only touches st, so calls for different stores may run
// concurrently.
func (r *Reconciler) mergeOne(ctx context.Context, st *storeState, docID assessment.DocID, responses []assessment.Response) outcome {
	ctx = logging.WithStore(ctx, st.tally.Location)
	current, ok := st.pending[docID]
	if !ok {
		var err error
		current, err = st.store.ReadOrEmpty(ctx, docID)
		if err != nil {
			return outcome{ran: true, err: err}
		}
	}
	updated := current.CopyAddingPossiblyUnannotated(responses)
	o := outcome{
		ran:     true,
		current: current,
		added:   updated.NumUnannotated() - current.NumUnannotated(),
	}
	if r.opts.dryRun {
		st.pending[docID] = updated
		return o
	}
	if err := st.store.Write(ctx, updated); err != nil {
		o.err = err
	}
	return o
}

func (r *Reconciler) fail(result *Result, err error) error {
	result.Errors = append(result.Errors, err)
	return err
}

func distinctOutputs(in []stores.ArgumentStore) ([]stores.ArgumentStore, error) {
	if len(in) == 0 {
		return nil, errors.NewConfigError("reconcile", "at least one system output store is required", nil)
	}
	seen := make(map[string]struct{}, len(in))
	out := make([]stores.ArgumentStore, 0, len(in))
	for _, s := range in {
		if s == nil {
			return nil, &errors.ValidationError{Field: "system_outputs", Message: "cannot contain nil"}
		}
		if _, dup := seen[s.Location()]; dup {
			continue
		}
		seen[s.Location()] = struct{}{}
		out = append(out, s)
	}
	return out, nil
}

func distinctStates(in []stores.AnnotationStore) ([]*storeState, error) {
	if len(in) == 0 {
		return nil, errors.NewConfigError("reconcile", "at least one annotation store is required", nil)
	}
	seen := make(map[string]struct{}, len(in))
	states := make([]*storeState, 0, len(in))
	for _, s := range in {
		if s == nil {
			return nil, &errors.ValidationError{Field: "annotation_stores", Message: "cannot contain nil"}
		}
		if _, dup := seen[s.Location()]; dup {
			continue
		}
		seen[s.Location()] = struct{}{}
		states = append(states, &storeState{
			store:   s,
			tally:   StoreTally{Location: s.Location()},
			seen:    make(map[assessment.DocID]struct{}),
			pending: make(map[assessment.DocID]assessment.AnswerKey),
		})
	}
	return states, nil
}

func totalAdded(states []*storeState) int {
	total := 0
	for _, st := range states {
		total += st.tally.Added
	}
	return total
}
