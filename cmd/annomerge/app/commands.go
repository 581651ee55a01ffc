package app

import (
	"github.com/spf13/cobra"

	"github.com/agentstation/annomerge/cmd/annomerge/cmd/importer"
	"github.com/agentstation/annomerge/cmd/annomerge/cmd/stats"
)

// NewImportCommand creates the import command with app dependencies.
func (a *App) NewImportCommand() *cobra.Command {
	return importer.NewCommand(a, importer.Defaults{
		SystemFormat:     a.config.SystemFormat,
		AnnotationFormat: a.config.AnnotationFormat,
		CacheTTL:         a.config.CacheTTL,
	})
}

// NewStatsCommand creates the stats command with app dependencies.
func (a *App) NewStatsCommand() *cobra.Command {
	return stats.NewCommand(a)
}

// NewVersionCommand creates the version command.
func (a *App) NewVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			cmd.Printf("annomerge %s\n", a.version)
			if a.config.Verbose {
				cmd.Printf("  commit:   %s\n", a.commit)
				cmd.Printf("  built:    %s\n", a.date)
				cmd.Printf("  built by: %s\n", a.builtBy)
			}
		},
	}
}
