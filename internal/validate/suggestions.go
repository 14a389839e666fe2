package validate

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/imishinist/perfdiff/internal/extract"
	"github.com/imishinist/perfdiff/internal/models"
)

const maxNamedExamples = 3

var (
	snakeCase   = regexp.MustCompile(`^[a-z][a-z0-9]*(_[a-z0-9]+)+$`)
	percentLike = regexp.MustCompile(`(?i)percent|pct`)
	nameWords   = regexp.MustCompile(`[A-Z]+[a-z0-9]*|[a-z0-9]+`)
	// Per-second rates are throughput, not ratios.
	perSecond = regexp.MustCompile(`(?i)throughput|rps|tps|per_?sec|bytes`)
)

// suggestions returns advisory warnings about metric naming and value ranges.
// They never make a report invalid.
func suggestions(format extract.Format, metrics models.Metrics) []string {
	keys := make([]string, 0, len(metrics))
	for k := range metrics {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var out []string

	// Runner output is snake_case by construction, so only hand-written
	// reports get the naming hint.
	if format == extract.FormatSimple || format == extract.FormatFlat {
		var snake []string
		for _, k := range keys {
			if snakeCase.MatchString(k) {
				snake = append(snake, k)
			}
		}
		if len(snake) > 0 {
			examples := snake
			if len(examples) > maxNamedExamples {
				examples = examples[:maxNamedExamples]
			}
			out = append(out, fmt.Sprintf(
				"%d metric name(s) use snake_case (%s); camelCase such as %q is conventional",
				len(snake), strings.Join(examples, ", "), camelCase(snake[0])))
		}
	}

	for _, k := range keys {
		v := metrics[k]
		switch {
		case percentLike.MatchString(k):
			if v < 0 || v > 100 {
				out = append(out, fmt.Sprintf("metric %q: value %g is outside the expected 0-100 percentage range", k, v))
			}
		case isRatioName(k) && !perSecond.MatchString(k):
			if v > 1 && v <= 100 {
				out = append(out, fmt.Sprintf("metric %q: value %g looks like a percentage; rates are expected as 0-1 ratios", k, v))
			} else if v > 100 {
				out = append(out, fmt.Sprintf("metric %q: value %g is outside the expected 0-1 ratio range", k, v))
			}
		}
	}

	return out
}

// isRatioName reports whether rate or ratio appears as a whole word of the
// name, so "errorRate" counts and "iteration_duration_ms" does not.
func isRatioName(name string) bool {
	for _, w := range nameWords.FindAllString(name, -1) {
		switch strings.ToLower(w) {
		case "rate", "ratio":
			return true
		}
	}
	return false
}

func camelCase(snake string) string {
	parts := strings.Split(snake, "_")
	for i := 1; i < len(parts); i++ {
		if parts[i] != "" {
			parts[i] = strings.ToUpper(parts[i][:1]) + parts[i][1:]
		}
	}
	return strings.Join(parts, "")
}
