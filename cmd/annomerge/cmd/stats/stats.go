// Package stats implements the stats command, which reports how much of
// each annotation store has been assessed.
package stats

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/agentstation/annomerge/cmd/application"
	"github.com/agentstation/annomerge/internal/cmd/output"
	"github.com/agentstation/annomerge/pkg/constants"
	"github.com/agentstation/annomerge/pkg/errors"
	"github.com/agentstation/annomerge/pkg/logging"
	"github.com/agentstation/annomerge/pkg/stores"
)

// StoreStats counts the documents and responses of one annotation store.
type StoreStats struct {
	Location    string `json:"location" yaml:"location"`
	Documents   int    `json:"documents" yaml:"documents"`
	Annotated   int    `json:"annotated" yaml:"annotated"`
	Unannotated int    `json:"unannotated" yaml:"unannotated"`
}

// NewCommand creates the stats command.
func NewCommand(app application.Application) *cobra.Command {
	var (
		storeFormat string
		listFile    string
	)
	cmd := &cobra.Command{
		Use:   "stats [location...]",
		Short: "Count annotated and unannotated responses per annotation store",
		Example: `  annomerge stats ./assessments
  annomerge stats --annotation-format redis redis://localhost:6379/0?prefix=eval
  annomerge stats --annotation-stores-list stores.txt -o json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			format, err := stores.ParseFormat(storeFormat)
			if err != nil {
				return err
			}
			locations := args
			if listFile != "" {
				listed, err := stores.LoadLocations(listFile)
				if err != nil {
					return err
				}
				locations = append(locations, listed...)
			}
			if len(locations) == 0 {
				return errors.NewConfigError("stats", "at least one annotation store is required", nil)
			}

			results := make([]StoreStats, 0, len(locations))
			for _, location := range locations {
				s, err := collect(cmd.Context(), app, location, format)
				if err != nil {
					return err
				}
				results = append(results, s)
			}
			return output.NewFormatter(output.DetectFormat(app.OutputFormat())).Format(cmd.OutOrStdout(), results)
		},
	}
	cmd.Flags().StringVar(&storeFormat, "annotation-format", constants.DefaultStoreFormat, "annotation store format")
	cmd.Flags().StringVar(&listFile, "annotation-stores-list", "", "file listing annotation store locations, one per line")
	return cmd
}

// collect reads every document of an existing store.
func collect(ctx context.Context, app application.Application, location string, format stores.Format) (StoreStats, error) {
	ctx = logging.WithStore(logging.WithOperation(logging.WithLogger(ctx, app.Logger()), "stats"), location)
	store, err := app.AnnotationStore(ctx, location, format, false)
	if err != nil {
		return StoreStats{}, err
	}
	defer store.Close()

	ids, err := store.DocIDs(ctx)
	if err != nil {
		return StoreStats{}, err
	}
	s := StoreStats{Location: location, Documents: len(ids)}
	for _, id := range ids {
		if err := ctx.Err(); err != nil {
			return StoreStats{}, errors.WrapCanceled(err)
		}
		key, err := store.Read(ctx, id)
		if err != nil {
			return StoreStats{}, err
		}
		s.Annotated += key.NumAnnotated()
		s.Unannotated += key.NumUnannotated()
	}
	logging.FromContext(ctx).Debug().Int("documents", s.Documents).Msg("Counted annotation store")
	return s, nil
}
