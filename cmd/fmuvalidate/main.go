// Command fmuvalidate checks exported metadata documents against the
// versioned results schema.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/fmuio/fmu-go/validate"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var opts validate.Options

	cmd := &cobra.Command{
		Use:   "fmuvalidate <path | glob> ...",
		Short: "Validate exported metadata documents against their schema",
		Long: `Validate exported metadata documents against their schema.

Each argument may be a data file, its metadata sidecar, or a glob matching
either. Data files are resolved to the hidden .<name>.yml sidecar next to
them. Documents are checked against the schema they name in their own
$schema field unless --schema overrides it.`,
		Args:          cobra.MinimumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			results, err := validate.Files(args, opts)
			if err != nil {
				return err
			}

			failed := 0
			for _, r := range results {
				if r.Err != nil {
					failed++
					fmt.Fprintf(cmd.OutOrStdout(), "FAIL  %s\n      %v\n", r.Path, r.Err)
				} else {
					fmt.Fprintf(cmd.OutOrStdout(), "ok    %s\n", r.Path)
				}
			}
			if failed > 0 {
				return fmt.Errorf("%d of %d documents are invalid", failed, len(results))
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&opts.SchemaRef, "schema", "",
		"schema URL or file overriding each document's own $schema")
	cmd.Flags().BoolVar(&opts.ExitFirst, "exit-first", false,
		"stop at the first invalid document")
	return cmd
}
