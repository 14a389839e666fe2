package cmd

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/imishinist/perfdiff/internal/compare"
	"github.com/imishinist/perfdiff/internal/metrics"
	"github.com/imishinist/perfdiff/internal/models"
)

var validOutputFormats = map[string]bool{
	"table": true, "json": true,
}

var compareCmd = &cobra.Command{
	Use:   "compare",
	Short: "Compare a current performance report against a baseline",
	Long: `Compare two performance reports (JSON or YAML). Each metric present in
either report is classified as improved, worse, same or unknown.`,
	RunE: runCompare,
}

func init() {
	rootCmd.AddCommand(compareCmd)

	compareCmd.Flags().String("baseline", "", "Baseline report file (required)")
	compareCmd.Flags().String("current", "", "Current report file (required)")
	compareCmd.Flags().String("context", "", "Free-form description of the system under test")
	compareCmd.Flags().String("context-file", "", "Read the system description from a file")
	compareCmd.Flags().Bool("insights", false, "Attach insights explaining the changes")
	compareCmd.Flags().String("format", "table", "Output format (table/json)")
	compareCmd.Flags().String("output", "", "Write the result to a file instead of stdout")
	compareCmd.Flags().String("metrics-textfile", "", "Also write the result as a Prometheus textfile")
	compareCmd.Flags().Bool("fail-on-regression", false, "Exit with an error when any metric got worse")
	compareCmd.MarkFlagRequired("baseline")
	compareCmd.MarkFlagRequired("current")
}

func runCompare(cmd *cobra.Command, args []string) error {
	baselinePath, _ := cmd.Flags().GetString("baseline")
	currentPath, _ := cmd.Flags().GetString("current")
	withInsights, _ := cmd.Flags().GetBool("insights")
	format, _ := cmd.Flags().GetString("format")
	outputPath, _ := cmd.Flags().GetString("output")
	textfile, _ := cmd.Flags().GetString("metrics-textfile")
	failOnRegression, _ := cmd.Flags().GetBool("fail-on-regression")

	if !validOutputFormats[format] {
		return fmt.Errorf("invalid format: %s (valid: table, json)", format)
	}

	systemContext, err := readSystemContext(cmd)
	if err != nil {
		return err
	}

	analyzer, closeAnalyzer, err := newInsightService(appConfig)
	if err != nil {
		return err
	}
	defer closeAnalyzer()

	recorder, err := newRecorder(appConfig)
	if err != nil {
		return err
	}

	svc := compare.NewService(analyzer, recorder, logger)
	result, err := svc.Compare(cmd.Context(), compare.Request{
		Baseline:      compare.Input{Path: baselinePath},
		Current:       compare.Input{Path: currentPath},
		SystemContext: systemContext,
		Insights:      withInsights,
	})
	if err != nil {
		var verr *compare.ValidationError
		if errors.As(err, &verr) {
			for _, side := range []string{compare.SideBaseline, compare.SideCurrent} {
				for _, msg := range verr.Reports[side] {
					fmt.Fprintf(cmd.ErrOrStderr(), "%s: %s\n", side, msg)
				}
			}
		}
		return err
	}

	if err := writeResult(cmd.OutOrStdout(), outputPath, format, result); err != nil {
		return err
	}

	if textfile != "" {
		if err := metrics.WriteTextfile(textfile, result); err != nil {
			return err
		}
		logger.Debug("wrote metrics textfile", zap.String("path", textfile))
	}

	if failOnRegression && result.Summary.Worse > 0 {
		return fmt.Errorf("%d metric(s) regressed", result.Summary.Worse)
	}
	return nil
}

func readSystemContext(cmd *cobra.Command) (string, error) {
	text, _ := cmd.Flags().GetString("context")
	path, _ := cmd.Flags().GetString("context-file")
	if path == "" {
		return text, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read context file: %w", err)
	}
	return strings.TrimSpace(strings.Join([]string{text, string(data)}, "\n")), nil
}

func writeResult(stdout io.Writer, path, format string, result *models.ComparisonResult) error {
	if path == "" {
		return render(stdout, format, result)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	if err := render(f, format, result); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("failed to close output file: %w", err)
	}
	return nil
}

func render(w io.Writer, format string, result *models.ComparisonResult) error {
	if format == "json" {
		return writeJSON(w, result)
	}
	return writeTable(w, result)
}
