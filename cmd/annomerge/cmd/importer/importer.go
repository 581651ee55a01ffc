// Package importer implements the import command, which merges system
// output into annotation stores.
package importer

import (
	"context"
	"fmt"
	"io"
	"strconv"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/agentstation/annomerge/cmd/application"
	"github.com/agentstation/annomerge/internal/cmd/output"
	"github.com/agentstation/annomerge/pkg/errors"
	"github.com/agentstation/annomerge/pkg/filters"
	"github.com/agentstation/annomerge/pkg/logging"
	"github.com/agentstation/annomerge/pkg/reconcile"
	"github.com/agentstation/annomerge/pkg/stores"
	"github.com/agentstation/annomerge/pkg/stores/memory"
)

// NewCommand creates the import command.
func NewCommand(app application.Application, defaults Defaults) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "import",
		Short: "Import system output into annotation stores",
		Long: `Import adds every response of the given system output to each annotation
store as unannotated, leaving existing assessments untouched.

Parameters can be given as flags, as ANNOMERGE_<NAME> environment variables
(for example ANNOMERGE_ANNOTATION_FORMAT) or as keys of a YAML --params file.
Flags win over the environment, which wins over the file.`,
		Example: `  annomerge import --system-output ./runs/sys1 --annotation-store ./assessments
  annomerge import --system-outputs-list systems.txt --annotation-stores-list stores.txt --isolate-failures
  annomerge import --params import.yaml --dry-run -o json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			v, err := newViper(cmd.Flags())
			if err != nil {
				return err
			}
			p, err := resolveParams(v)
			if err != nil {
				return err
			}
			return run(cmd.Context(), app, p, cmd.OutOrStdout())
		},
	}
	addFlags(cmd.Flags(), defaults)
	return cmd
}

func run(ctx context.Context, app application.Application, p *params, w io.Writer) error {
	ctx = logging.WithOperation(logging.WithLogger(ctx, app.Logger()), "import")
	logger := logging.FromContext(ctx)
	for _, warning := range p.Warnings {
		logger.Warn().Msg(warning)
	}

	filter := filters.Identity
	if p.BestOnly {
		filter = filters.KeepBestJustificationOnly
	}
	selector := filters.AcceptAll
	if p.RestrictTo != "" {
		var err error
		if selector, err = filters.LoadRestrictionList(p.RestrictTo); err != nil {
			return err
		}
	}
	policy := reconcile.FailAbort
	if p.IsolateFailures {
		policy = reconcile.FailIsolate
	}

	opts := []reconcile.Option{
		reconcile.WithFilter(filter),
		reconcile.WithSelector(selector),
		reconcile.WithParallelism(p.Parallelism),
		reconcile.WithFailurePolicy(policy),
		reconcile.WithDryRun(p.DryRun),
		reconcile.WithLogger(logger),
	}
	var metrics *reconcile.Metrics
	if p.MetricsTextfile != "" {
		metrics = reconcile.NewMetrics()
		opts = append(opts, reconcile.WithMetrics(metrics))
	}
	reconciler, err := reconcile.New(opts...)
	if err != nil {
		return err
	}

	systemOutputs, annotationStores, closeAll, err := openStores(ctx, app, p, logger)
	defer closeAll()
	if err != nil {
		return err
	}

	result, runErr := reconciler.Reconcile(ctx, systemOutputs, annotationStores)
	if result != nil {
		if err := output.NewFormatter(output.DetectFormat(app.OutputFormat())).Format(w, newSummary(result)); err != nil {
			return errors.WrapIO("write", "output", err)
		}
		logger.Info().Msg(result.Summary())
	}
	if metrics != nil {
		if err := metrics.WriteTextfile(p.MetricsTextfile); err != nil {
			logger.Error().Err(err).Str("path", p.MetricsTextfile).Msg("Failed to write metrics")
		}
	}

	if runErr != nil {
		return runErr
	}
	if !result.IsSuccess() {
		return fmt.Errorf("import failed for %d annotation stores: %w", len(result.FailedStores()), result.Errors[0])
	}
	return nil
}

// openStores opens every configured store. The returned close function is
// always safe to call.
func openStores(ctx context.Context, app application.Application, p *params, logger *zerolog.Logger) ([]stores.ArgumentStore, []stores.AnnotationStore, func(), error) {
	var closers []interface{ Close() error }
	closeAll := func() {
		for _, c := range closers {
			if err := c.Close(); err != nil {
				logger.Warn().Err(err).Msg("Failed to close store")
			}
		}
	}

	systemOutputs := make([]stores.ArgumentStore, 0, len(p.SystemOutputs))
	for _, location := range p.SystemOutputs {
		store, err := app.SystemOutputStore(ctx, location, p.SystemFormat)
		if err != nil {
			return nil, nil, closeAll, err
		}
		closers = append(closers, store)
		systemOutputs = append(systemOutputs, store)
	}

	var opts []stores.Option
	if p.CacheTTL > 0 {
		opts = append(opts, stores.WithCache(p.CacheTTL))
	}
	annotationStores := make([]stores.AnnotationStore, 0, len(p.AnnotationStores))
	for _, location := range p.AnnotationStores {
		store, err := openAnnotationStore(ctx, app, location, p, opts, logger)
		if err != nil {
			return nil, nil, closeAll, err
		}
		closers = append(closers, store)
		annotationStores = append(annotationStores, store)
	}
	return systemOutputs, annotationStores, closeAll, nil
}

// openAnnotationStore creates missing stores, except on a dry run where a
// missing store stands in as an empty in-memory one so nothing is created.
func openAnnotationStore(ctx context.Context, app application.Application, location string, p *params, opts []stores.Option, logger *zerolog.Logger) (stores.AnnotationStore, error) {
	store, err := app.AnnotationStore(ctx, location, p.AnnotationFormat, !p.DryRun, opts...)
	if p.DryRun && errors.IsNotFound(err) {
		logger.Info().Str("store", location).Msg("Annotation store does not exist yet, treating it as empty")
		return memory.NewAnnotationStore(location), nil
	}
	return store, err
}

// summary is what the command prints.
type summary struct {
	Stores             []reconcile.StoreTally `json:"stores" yaml:"stores"`
	SystemOutputs      []string               `json:"system_outputs" yaml:"system_outputs"`
	DocumentsProcessed int                    `json:"documents_processed" yaml:"documents_processed"`
	DocumentsSkipped   int                    `json:"documents_skipped" yaml:"documents_skipped"`
	ResponsesAdded     int                    `json:"responses_added" yaml:"responses_added"`
	DryRun             bool                   `json:"dry_run" yaml:"dry_run"`
	Errors             []string               `json:"errors,omitempty" yaml:"errors,omitempty"`
}

func newSummary(r *reconcile.Result) summary {
	s := summary{
		Stores:             r.Stores,
		SystemOutputs:      r.Metadata.SystemOutputs,
		DocumentsProcessed: r.Metadata.Stats.DocumentsProcessed,
		DocumentsSkipped:   r.Metadata.Stats.DocumentsSkipped,
		ResponsesAdded:     r.TotalAdded(),
		DryRun:             r.Metadata.DryRun,
	}
	for _, err := range r.Errors {
		s.Errors = append(s.Errors, err.Error())
	}
	return s
}

// Table renders one row per annotation store.
func (s summary) Table(wide bool) output.Data {
	added := "Added"
	if s.DryRun {
		added = "Would Add"
	}
	data := output.Data{
		Headers:         []string{"Annotation Store", "Previously Annotated", "Previously Unannotated", added},
		ColumnAlignment: []output.Align{output.AlignLeft, output.AlignRight, output.AlignRight, output.AlignRight},
	}
	if wide {
		data.Headers = append(data.Headers, "Documents", "Status")
		data.ColumnAlignment = append(data.ColumnAlignment, output.AlignRight, output.AlignLeft)
	}
	for _, t := range s.Stores {
		row := []string{
			t.Location,
			strconv.Itoa(t.PreviouslyAnnotated),
			strconv.Itoa(t.PreviouslyUnannotated),
			strconv.Itoa(t.Added),
		}
		if wide {
			status := "ok"
			if t.Failed {
				status = "failed: " + t.Error()
			}
			row = append(row, strconv.Itoa(t.Documents), status)
		}
		data.Rows = append(data.Rows, row)
	}
	return data
}
