package cli

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"dealflow-workers/internal/matching"
	csm "dealflow-workers/internal/workers/matching/calculate-startup-match"
)

func newScoreCmd(opts *globalOptions) *cobra.Command {
	var startupPath, thesisPath, existingPath string
	var quick bool

	cmd := &cobra.Command{
		Use:   "score",
		Short: "Score one startup against one thesis",
		Long: `Score one startup against one investor thesis and print the factor breakdown.

With --quick only the weighted base factors are computed. Keywords, recency,
diversity and confidence are skipped.

Examples:
  matchctl score --startup startup.json --thesis thesis.json
  matchctl score --startup startup.json --thesis thesis.json --quick
  matchctl score --startup startup.json --thesis thesis.json --existing matches.json -o json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			var input csm.Input
			input.Startup = &matching.StartupProfile{}
			input.Thesis = &matching.InvestorThesis{}
			if err := readJSON(startupPath, input.Startup); err != nil {
				return err
			}
			if err := readJSON(thesisPath, input.Thesis); err != nil {
				return err
			}
			if existingPath != "" {
				if err := readJSON(existingPath, &input.ExistingMatches); err != nil {
					return err
				}
			}

			engine, err := opts.engine()
			if err != nil {
				return err
			}

			if quick {
				result := engine.QuickScore(*input.Startup, *input.Thesis)
				return render(cmd.OutOrStdout(), opts.output, result, func(tw *tabwriter.Writer) {
					printQuickMatch(tw, result)
				})
			}

			handler, err := csm.NewHandler(csm.HandlerOptions{
				CustomConfig: csm.DefaultConfig(),
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
				printMatch(tw, output.Match)
			})
		},
	}

	cmd.Flags().StringVar(&startupPath, "startup", "", "startup profile JSON file")
	cmd.Flags().StringVar(&thesisPath, "thesis", "", "investor thesis JSON file")
	cmd.Flags().StringVar(&existingPath, "existing", "", "JSON array of the investor's existing matches")
	cmd.Flags().BoolVar(&quick, "quick", false, "base factor scores only")
	_ = cmd.MarkFlagRequired("startup")
	_ = cmd.MarkFlagRequired("thesis")
	cmd.MarkFlagsMutuallyExclusive("quick", "existing")
	return cmd
}

func printQuickMatch(tw *tabwriter.Writer, m matching.QuickMatch) {
	fmt.Fprintf(tw, "Startup:\t%s\n", m.StartupID)
	fmt.Fprintf(tw, "Thesis:\t%s\n", m.ThesisID)
	fmt.Fprintf(tw, "Quick score:\t%d\n", m.OverallScore)
	fmt.Fprintln(tw, "\t")
	fmt.Fprintln(tw, "FACTOR\tSCORE")
	fmt.Fprintf(tw, "industry\t%.0f\n", m.Scores.Industry)
	fmt.Fprintf(tw, "stage\t%.0f\n", m.Scores.Stage)
	fmt.Fprintf(tw, "funding\t%.0f\n", m.Scores.Funding)
	fmt.Fprintf(tw, "location\t%.0f\n", m.Scores.Location)
	fmt.Fprintf(tw, "traction\t%.0f\n", m.Scores.Traction)
	fmt.Fprintf(tw, "team\t%.0f\n", m.Scores.Team)
}

func printMatch(tw *tabwriter.Writer, m matching.MatchResult) {
	fmt.Fprintf(tw, "Startup:\t%s\n", m.StartupID)
	fmt.Fprintf(tw, "Thesis:\t%s\n", m.ThesisID)
	fmt.Fprintf(tw, "Overall:\t%d (%s)\n", m.OverallScore, m.ConfidenceLevel)
	if m.Excluded {
		fmt.Fprintf(tw, "Excluded:\t%s\n", m.MatchReason)
		return
	}
	fmt.Fprintln(tw, "\t")
	fmt.Fprintln(tw, "FACTOR\tSCORE")
	fmt.Fprintf(tw, "industry\t%d\n", m.IndustryScore)
	fmt.Fprintf(tw, "stage\t%d\n", m.StageScore)
	fmt.Fprintf(tw, "funding\t%d\n", m.FundingScore)
	fmt.Fprintf(tw, "location\t%d\n", m.LocationScore)
	fmt.Fprintf(tw, "traction\t%d\n", m.TractionScore)
	fmt.Fprintf(tw, "team\t%d\n", m.TeamScore)
	fmt.Fprintf(tw, "keywords\t%d\n", m.KeywordScore)
	fmt.Fprintf(tw, "recency\t%.2f\n", m.RecencyFactor)
	fmt.Fprintf(tw, "diversity\t+%d\n", m.DiversityBonus)
	fmt.Fprintln(tw, "\t")
	fmt.Fprintf(tw, "Reason:\t%s\n", m.MatchReason)
}
