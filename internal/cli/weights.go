package cli

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"dealflow-workers/internal/matching"
	vtw "dealflow-workers/internal/workers/matching/validate-thesis-weights"
)

func newValidateWeightsCmd(opts *globalOptions) *cobra.Command {
	var thesisPath string

	cmd := &cobra.Command{
		Use:   "validate-weights",
		Short: "Check a thesis's factor weights",
		Long: `Check that every factor weight of a thesis lies in [0,1] and that they sum to 1.0.
Exits non-zero when the weights are invalid.

Examples:
  matchctl validate-weights --thesis thesis.json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			var thesis matching.InvestorThesis
			if err := readJSON(thesisPath, &thesis); err != nil {
				return err
			}

			engine, err := opts.engine()
			if err != nil {
				return err
			}
			handler, err := vtw.NewHandler(vtw.HandlerOptions{
				CustomConfig: vtw.DefaultConfig(),
				Engine:       engine,
				Logger:       opts.logger(),
			})
			if err != nil {
				return err
			}

			output := handler.Execute(&vtw.Input{ThesisID: thesis.ID, Weights: thesis.Weights})
			if err := render(cmd.OutOrStdout(), opts.output, output, func(tw *tabwriter.Writer) {
				fmt.Fprintf(tw, "Thesis:\t%s\n", output.ThesisID)
				fmt.Fprintf(tw, "Sum:\t%.3f\n", output.WeightSum)
				if output.WeightsValid {
					fmt.Fprintln(tw, "Valid:\tyes")
				} else {
					fmt.Fprintf(tw, "Valid:\tno (%s)\n", output.Error)
				}
			}); err != nil {
				return err
			}
			if err := output.Err(); err != nil {
				return fmt.Errorf("invalid weights: %s: %w", output.Error, err)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&thesisPath, "thesis", "", "investor thesis JSON file")
	_ = cmd.MarkFlagRequired("thesis")
	return cmd
}
