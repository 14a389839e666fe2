package insight

import (
	"fmt"
	"strings"

	"github.com/imishinist/perfdiff/internal/models"
)

const responseInstructions = `Respond with a JSON array only. Each element must be an object with:
  "type": short category such as "regression", "improvement" or "bottleneck"
  "severity": one of "low", "medium", "high", "critical"
  "confidence": number between 0 and 1
  "title": one-line summary
  "description": explanation referencing the numbers above
  "affected_metrics": array of metric keys from the table
  "actionable_steps": array of concrete next steps`

// BuildPrompt renders the comparison for the generator.
func BuildPrompt(systemContext string, diffs []models.MetricDiff) string {
	var b strings.Builder

	b.WriteString("You are a performance engineer reviewing a comparison between a baseline and a current test run.\n\n")

	if ctx := strings.TrimSpace(systemContext); ctx != "" {
		b.WriteString("System context:\n")
		b.WriteString(ctx)
		b.WriteString("\n\n")
	}

	b.WriteString("Metric changes (key | label | baseline -> current | change | better when | trend):\n")
	for _, d := range diffs {
		fmt.Fprintf(&b, "- %s | %s | %s -> %s | %s | %s | %s\n",
			d.Key, d.Label, number(d.Baseline), number(d.Current), percent(d.Pct), d.BetterWhen, d.Trend)
	}
	if len(diffs) == 0 {
		b.WriteString("- (no metrics)\n")
	}

	b.WriteString("\n")
	b.WriteString(responseInstructions)
	b.WriteString("\n")
	return b.String()
}

func number(f *float64) string {
	if f == nil {
		return "n/a"
	}
	return fmt.Sprintf("%g", *f)
}

func percent(f *float64) string {
	if f == nil {
		return "n/a"
	}
	return fmt.Sprintf("%+.2f%%", *f)
}
