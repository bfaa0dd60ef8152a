package cli

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"dealflow-workers/pkg/registry"
)

func newRegistryCmd(opts *globalOptions) *cobra.Command {
	var path string

	cmd := &cobra.Command{
		Use:   "registry",
		Short: "Inspect the activity registry",
		Long: `Inspect the activity registry that defines each task type's input schema,
error codes, timeout and retries. Without --path the built-in registry is used.`,
	}
	cmd.PersistentFlags().StringVar(&path, "path", "", "registry JSON file (default: built-in)")

	list := &cobra.Command{
		Use:   "list",
		Short: "List registered activities",
		RunE: func(cmd *cobra.Command, args []string) error {
			reg, err := registry.Load(path)
			if err != nil {
				return err
			}
			return render(cmd.OutOrStdout(), opts.output, reg.Activities, func(tw *tabwriter.Writer) {
				fmt.Fprintln(tw, "TASK TYPE\tCATEGORY\tTIMEOUT\tRETRIES\tSTATUS")
				for _, a := range reg.Activities {
					fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%s\n", a.TaskType, a.Category, a.Timeout, a.Retries, a.ImplementationStatus)
				}
			})
		},
	}

	validate := &cobra.Command{
		Use:   "validate",
		Short: "Check required fields, timeouts and input schemas",
		RunE: func(cmd *cobra.Command, args []string) error {
			reg, err := registry.Load(path)
			if err != nil {
				return err
			}
			if err := reg.Validate(); err != nil {
				return fmt.Errorf("registry validation failed: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Registry validation passed. Found %d activities.\n", len(reg.Activities))
			return nil
		},
	}

	var to string
	export := &cobra.Command{
		Use:   "export",
		Short: "Write the registry to a file",
		Long: `Write the registry to a file, typically to start a customized copy of the
built-in one for registry_path.

Examples:
  matchctl registry export --to configs/activity-registry.json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			reg, err := registry.Load(path)
			if err != nil {
				return err
			}
			if err := reg.Save(to); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Wrote %d activities to %s\n", len(reg.Activities), to)
			return nil
		},
	}
	export.Flags().StringVar(&to, "to", "", "destination file")
	_ = export.MarkFlagRequired("to")

	var taskType, varsPath string
	check := &cobra.Command{
		Use:   "check",
		Short: "Validate job variables against a task type's input schema",
		Long: `Validate a JSON document of job variables against a task type's input schema,
the same check a worker runs before decoding a job.

Examples:
  matchctl registry check --task calculate-startup-match --vars variables.json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			reg, err := registry.Load(path)
			if err != nil {
				return err
			}
			if _, ok := reg.Find(taskType); !ok {
				return fmt.Errorf("unknown task type %q", taskType)
			}
			validator, err := reg.Validator()
			if err != nil {
				return err
			}

			var variables map[string]interface{}
			if err := readJSON(varsPath, &variables); err != nil {
				return err
			}
			result, err := validator.Validate(taskType, variables)
			if err != nil {
				return err
			}

			if err := render(cmd.OutOrStdout(), opts.output, result, func(tw *tabwriter.Writer) {
				if result.Valid {
					fmt.Fprintf(tw, "%s: variables are valid\n", taskType)
					return
				}
				fmt.Fprintln(tw, "FIELD\tPROBLEM")
				for _, e := range result.Errors {
					fmt.Fprintf(tw, "%s\t%s\n", e.Field, e.Message)
				}
			}); err != nil {
				return err
			}
			if !result.Valid {
				return fmt.Errorf("variables do not match %s: %s", taskType, strings.Join(result.GetErrorMessages(), "; "))
			}
			return nil
		},
	}
	check.Flags().StringVar(&taskType, "task", "", "task type to check against")
	check.Flags().StringVar(&varsPath, "vars", "", "job variables JSON file")
	_ = check.MarkFlagRequired("task")
	_ = check.MarkFlagRequired("vars")

	cmd.AddCommand(list, validate, export, check)
	return cmd
}
