package cmd

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/USDepartmentofLabor/cdf-warn/internal/config"
)

func newSourcesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "sources",
		Short: "Lists the configured state sources",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, logger, err := loadEnvironment()
			if err != nil {
				return err
			}
			defer func() { _ = logger.Sync() }()

			sources, err := config.LoadSources(cfg.Scraper.SourcesFile)
			if err != nil {
				return fmt.Errorf("load sources: %w", err)
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "STATE\tFORMAT\tADAPTER\tURL")
			for _, src := range sources {
				format := string(src.Format)
				if src.JobLink {
					format = "joblink"
				}
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", src.StateAbbrev, format, src.Adapter, src.URL)
			}
			return w.Flush()
		},
	}
}
