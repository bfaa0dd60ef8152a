package cli

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"dealflow-workers/internal/matching"
	rsm "dealflow-workers/internal/workers/matching/rank-startup-matches"
)

func newRankCmd(opts *globalOptions) *cobra.Command {
	var (
		thesisPath, startupsPath, existingPath string
		input                                  rsm.Input
		concurrency                            int
	)

	cmd := &cobra.Command{
		Use:   "rank",
		Short: "Rank a pool of startups against a thesis",
		Long: `Score every startup in a JSON array against one thesis and print the best matches.

Examples:
  matchctl rank --thesis thesis.json --startups pool.json
  matchctl rank --thesis thesis.json --startups pool.json --limit 5 --include-excluded`,
		RunE: func(cmd *cobra.Command, args []string) error {
			input.Thesis = &matching.InvestorThesis{}
			if err := readJSON(thesisPath, input.Thesis); err != nil {
				return err
			}
			if err := readJSON(startupsPath, &input.Startups); err != nil {
				return err
			}
			if existingPath != "" {
				if err := readJSON(existingPath, &input.ExistingMatches); err != nil {
					return err
				}
			}
			if len(input.Startups) == 0 {
				return fmt.Errorf("%s contains no startups", startupsPath)
			}

			engine, err := opts.engine()
			if err != nil {
				return err
			}
			cfg := rsm.DefaultConfig()
			if concurrency > 0 {
				cfg.Concurrency = concurrency
			}
			if input.Limit > cfg.MaxResults {
				cfg.MaxResults = input.Limit
				cfg.CandidatePoolSize = input.Limit
			}
			handler, err := rsm.NewHandler(rsm.HandlerOptions{
				CustomConfig: cfg,
				Engine:       engine,
				Logger:       opts.logger(),
			})
			if err != nil {
				return err
			}

			output, err := handler.Execute(cmd.Context(), &input)
			if err != nil {
				return err
			}
			return render(cmd.OutOrStdout(), opts.output, output, func(tw *tabwriter.Writer) {
				fmt.Fprintln(tw, "RANK\tSTARTUP\tSCORE\tCONFIDENCE\tREASON")
				for _, m := range output.Matches {
					fmt.Fprintf(tw, "%d\t%s\t%d\t%s\t%s\n", m.Rank, m.StartupID, m.OverallScore, m.ConfidenceLevel, m.MatchReason)
				}
				fmt.Fprintf(tw, "\nscored %d, excluded %d, shown %d\n", output.TotalScored, output.ExcludedCount, len(output.Matches))
			})
		},
	}

	cmd.Flags().StringVar(&thesisPath, "thesis", "", "investor thesis JSON file")
	cmd.Flags().StringVar(&startupsPath, "startups", "", "JSON array of startup profiles")
	cmd.Flags().StringVar(&existingPath, "existing", "", "JSON array of the investor's existing matches")
	cmd.Flags().IntVar(&input.Limit, "limit", 0, "maximum matches to print (default 50)")
	cmd.Flags().BoolVar(&input.IncludeExcluded, "include-excluded", false, "keep startups hit by an exclude keyword")
	cmd.Flags().IntVar(&concurrency, "concurrency", 0, "scoring goroutines (default 8)")
	_ = cmd.MarkFlagRequired("thesis")
	_ = cmd.MarkFlagRequired("startups")
	return cmd
}
