package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/olekukonko/tablewriter"

	"github.com/imishinist/perfdiff/internal/models"
)

var trendMarks = map[models.Trend]string{
	models.TrendImproved: "improved",
	models.TrendWorse:    "WORSE",
	models.TrendSame:     "same",
	models.TrendUnknown:  "n/a",
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("failed to encode output: %w", err)
	}
	return nil
}

func writeTable(w io.Writer, result *models.ComparisonResult) error {
	fmt.Fprintf(w, "%s -> %s\n\n", result.Baseline.Name, result.Current.Name)

	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"Metric", "Baseline", "Current", "Change", "Better", "Trend"})
	table.SetAutoWrapText(false)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	for _, d := range result.Diffs {
		table.Append([]string{
			d.Label,
			formatValue(d.Baseline),
			formatValue(d.Current),
			formatPct(d.Pct),
			string(d.BetterWhen),
			trendMarks[d.Trend],
		})
	}
	table.Render()

	s := result.Summary
	fmt.Fprintf(w, "\n%d metrics: %d improved, %d worse, %d same, %d unknown\n",
		s.Total, s.Improved, s.Worse, s.Same, s.Unknown)

	writeWarnings(w, "baseline", result.Warnings.Baseline)
	writeWarnings(w, "current", result.Warnings.Current)

	if len(result.Insights) > 0 {
		fmt.Fprintln(w, "\nInsights:")
		for _, in := range result.Insights {
			fmt.Fprintf(w, "  [%s] %s\n", strings.ToUpper(string(in.Severity)), in.Title)
			if in.Description != "" {
				fmt.Fprintf(w, "      %s\n", in.Description)
			}
			for _, step := range in.ActionableSteps {
				fmt.Fprintf(w, "      - %s\n", step)
			}
		}
	}
	return nil
}

func writeWarnings(w io.Writer, side string, warnings []string) {
	if len(warnings) == 0 {
		return
	}
	fmt.Fprintf(w, "\nWarnings (%s):\n", side)
	for _, warning := range warnings {
		fmt.Fprintf(w, "  - %s\n", warning)
	}
}

func formatValue(v *float64) string {
	if v == nil {
		return "-"
	}
	return fmt.Sprintf("%g", *v)
}

func formatPct(v *float64) string {
	if v == nil {
		return "-"
	}
	return fmt.Sprintf("%+.2f%%", *v)
}
