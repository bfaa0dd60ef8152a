package cli

import (
	"fmt"
	"sort"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"dealflow-workers/internal/matching"
	sm "dealflow-workers/internal/workers/matching/summarize-matches"
)

func newSummarizeCmd(opts *globalOptions) *cobra.Command {
	var matchesPath string

	cmd := &cobra.Command{
		Use:   "summarize",
		Short: "Summarize a set of matches",
		Long: `Build score distributions, insights and recommendations for a JSON array of matches.

Examples:
  matchctl summarize --matches matches.json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			input := sm.Input{Matches: []matching.MatchRecord{}}
			if err := readJSON(matchesPath, &input.Matches); err != nil {
				return err
			}
			if input.Matches == nil {
				input.Matches = []matching.MatchRecord{}
			}

			handler, err := sm.NewHandler(sm.HandlerOptions{
				CustomConfig: sm.DefaultConfig(),
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
				s := output.Summary
				fmt.Fprintf(tw, "Matches:\t%d\n", s.TotalMatches)
				fmt.Fprintf(tw, "Average score:\t%.1f\n", s.AverageScore)
				fmt.Fprintf(tw, "High confidence:\t%d\n", s.HighConfidenceMatches)
				fmt.Fprintf(tw, "Excellent/Good/Fair/Poor:\t%d/%d/%d/%d\n",
					s.ScoreDistribution.Excellent, s.ScoreDistribution.Good, s.ScoreDistribution.Fair, s.ScoreDistribution.Poor)
				printDistribution(tw, "Industries:", s.IndustryDistribution)
				printDistribution(tw, "Stages:", s.StageDistribution)
				for _, line := range output.Insights {
					fmt.Fprintf(tw, "* %s\n", line)
				}
				for _, line := range output.Recommendations {
					fmt.Fprintf(tw, "> %s\n", line)
				}
			})
		},
	}

	cmd.Flags().StringVar(&matchesPath, "matches", "", "JSON array of match records")
	_ = cmd.MarkFlagRequired("matches")
	return cmd
}

func printDistribution(tw *tabwriter.Writer, label string, dist map[string]int) {
	if len(dist) == 0 {
		return
	}
	keys := make([]string, 0, len(dist))
	for k := range dist {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	fmt.Fprintln(tw, label)
	for _, k := range keys {
		fmt.Fprintf(tw, "  %s\t%d\n", k, dist[k])
	}
}
