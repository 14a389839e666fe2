package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/imishinist/perfdiff/internal/insight"
	"github.com/imishinist/perfdiff/internal/models"
)

var insightsCmd = &cobra.Command{
	Use:   "insights",
	Short: "Work with generated insights",
}

var insightsRecoverCmd = &cobra.Command{
	Use:   "recover",
	Short: "Recover structured insights from saved generator output",
	Long: `Run the insight recovery parser over a saved raw completion and print the
resulting insights as JSON. Useful for replaying responses that did not parse.`,
	RunE: runInsightsRecover,
}

func init() {
	rootCmd.AddCommand(insightsCmd)
	insightsCmd.AddCommand(insightsRecoverCmd)

	insightsRecoverCmd.Flags().String("from-file", "", "File holding the raw generator output (required)")
	insightsRecoverCmd.Flags().String("diffs", "", "Comparison JSON whose diffs give context to the fallback")
	insightsRecoverCmd.MarkFlagRequired("from-file")
}

func runInsightsRecover(cmd *cobra.Command, args []string) error {
	rawPath, _ := cmd.Flags().GetString("from-file")
	diffsPath, _ := cmd.Flags().GetString("diffs")

	raw, err := os.ReadFile(rawPath)
	if err != nil {
		return fmt.Errorf("failed to read generator output: %w", err)
	}

	var diffs []models.MetricDiff
	if diffsPath != "" {
		diffs, err = loadDiffs(diffsPath)
		if err != nil {
			return err
		}
	}

	recoverer := insight.NewRecoverer(logger)
	return writeJSON(cmd.OutOrStdout(), recoverer.Recover(string(raw), diffs))
}

// loadDiffs reads the diffs of a comparison previously written with
// "compare --format json".
func loadDiffs(path string) ([]models.MetricDiff, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open diffs file: %w", err)
	}
	defer f.Close()

	var result models.ComparisonResult
	if err := json.NewDecoder(f).Decode(&result); err != nil {
		return nil, fmt.Errorf("failed to decode diffs file: %w", err)
	}
	return result.Diffs, nil
}
