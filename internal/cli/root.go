// Package cli implements matchctl, which runs the matching workers' logic
// against local JSON files without a Zeebe broker.
package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"dealflow-workers/internal/common/logger"
	"dealflow-workers/internal/matching"
)

var (
	version   = "dev"
	commit    = "unknown"
	buildTime = "unknown"
)

// SetVersionInfo sets version information from build flags
func SetVersionInfo(v, c, b string) {
	version = v
	commit = c
	buildTime = b
}

type globalOptions struct {
	output   string
	synonyms string
	now      string
	verbose  bool
}

// NewRootCmd builds a fresh command tree. Tests build one per case so flag
// state never leaks between runs.
func NewRootCmd() *cobra.Command {
	opts := &globalOptions{}

	root := &cobra.Command{
		Use:   "matchctl",
		Short: "Score startups against investor theses from the command line",
		Long: `matchctl runs the same scoring, ranking, weight validation and analytics
the dealflow workers run, reading startups, theses and matches from JSON files.

Examples:
  matchctl score --startup startup.json --thesis thesis.json
  matchctl rank --thesis thesis.json --startups pool.json --limit 10
  matchctl summarize --matches matches.json -o json`,
		SilenceUsage: true,
	}

	root.PersistentFlags().StringVarP(&opts.output, "output", "o", "table", "output format (table, json)")
	root.PersistentFlags().StringVar(&opts.synonyms, "synonyms", "", "YAML synonym table replacing the built-in one")
	root.PersistentFlags().StringVar(&opts.now, "now", "", "score as of this RFC3339 time instead of the current time")
	root.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "log to stderr")

	root.AddCommand(
		newScoreCmd(opts),
		newRankCmd(opts),
		newSummarizeCmd(opts),
		newValidateWeightsCmd(opts),
		newRegistryCmd(opts),
		newVersionCmd(),
	)
	return root
}

// Execute runs the root command
func Execute() error {
	return NewRootCmd().Execute()
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "matchctl %s\n", version)
			fmt.Fprintf(out, "  commit: %s\n", commit)
			fmt.Fprintf(out, "  built:  %s\n", buildTime)
		},
	}
}

func (o *globalOptions) engine() (*matching.Engine, error) {
	cfg := matching.DefaultConfig()
	if o.synonyms != "" {
		synonyms, err := matching.LoadSynonymsFile(o.synonyms)
		if err != nil {
			return nil, err
		}
		cfg = cfg.WithSynonyms(synonyms)
	}

	var engineOpts []matching.Option
	if o.now != "" {
		now, err := time.Parse(time.RFC3339, o.now)
		if err != nil {
			return nil, fmt.Errorf("invalid --now: %w", err)
		}
		engineOpts = append(engineOpts, matching.WithClock(func() time.Time { return now }))
	}
	return matching.NewEngine(cfg, engineOpts...), nil
}

func (o *globalOptions) logger() logger.Logger {
	if o.verbose {
		return logger.NewStructured("debug", "console")
	}
	return logger.NewNoOpLogger()
}

func readJSON(path string, v interface{}) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}
	return nil
}
