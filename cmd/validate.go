package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/imishinist/perfdiff/internal/parser"
	"github.com/imishinist/perfdiff/internal/validate"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate a performance report",
	Long:  "Check that a report can be compared and print any errors and advisory warnings",
	RunE:  runValidate,
}

func init() {
	rootCmd.AddCommand(validateCmd)

	validateCmd.Flags().String("file", "", "Report file to validate (required)")
	validateCmd.Flags().String("name", "", "Report name used when the file has none")
	validateCmd.Flags().Bool("json", false, "Print the full validation result as JSON")
	validateCmd.MarkFlagRequired("file")
}

func runValidate(cmd *cobra.Command, args []string) error {
	path, _ := cmd.Flags().GetString("file")
	name, _ := cmd.Flags().GetString("name")
	asJSON, _ := cmd.Flags().GetBool("json")

	doc, err := parser.ParseFile(path)
	if err != nil {
		return fmt.Errorf("failed to load report: %w", err)
	}

	result := validate.Validate(doc, name)

	out := cmd.OutOrStdout()
	if asJSON {
		if err := writeJSON(out, result); err != nil {
			return err
		}
	} else {
		for _, e := range result.Errors {
			fmt.Fprintf(out, "error: %s\n", e)
		}
		for _, w := range result.Warnings {
			fmt.Fprintf(out, "warning: %s\n", w)
		}
		if result.Valid {
			fmt.Fprintf(out, "%s: valid %s report with %d metric(s)\n",
				result.Sanitized.Name, result.Format, len(result.Sanitized.Metrics))
		}
	}

	if !result.Valid {
		return fmt.Errorf("%s is not a valid report", path)
	}
	return nil
}
