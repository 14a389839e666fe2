package insight

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/samber/lo"

	"github.com/imishinist/perfdiff/internal/diff"
	"github.com/imishinist/perfdiff/internal/models"
)

const (
	maxScrapedMetrics = 10
	scrapedConfidence = 0.7
	rawPreviewLen     = 500
)

var (
	insightArrayStart = regexp.MustCompile(`\[\s*\{\s*"(?:type|title|severity)"`)

	titleField       = quotedField("title")
	severityField    = quotedField("severity")
	typeField        = quotedField("type")
	descriptionField = quotedField("description")

	affectedList   = regexp.MustCompile(`"affected_metrics"\s*:\s*\[([^\]]*)\]`)
	metricKeyField = regexp.MustCompile(`"metric_key"\s*:\s*"([^"\\]+)"`)
	quotedItem     = regexp.MustCompile(`"([^"\\]+)"`)
	metricToken    = regexp.MustCompile(`\b[A-Za-z][A-Za-z0-9_]*(?:_response_time|_load_time|_usage|_rate)\b`)
)

// scrapeFields builds a single insight from quoted fields found anywhere in
// the text. A title is required.
func (r *Recoverer) scrapeFields(raw string) ([]models.Insight, bool) {
	title, ok := firstMatch(titleField, raw)
	if !ok || title == "" {
		return nil, false
	}

	in := models.Insight{
		Type:            "performance",
		Severity:        models.SeverityMedium,
		Confidence:      scrapedConfidence,
		Title:           title,
		AffectedMetrics: scrapeMetricNames(raw),
		ActionableSteps: []string{"Review the full analysis output in the logs"},
	}
	if t, ok := firstMatch(typeField, raw); ok && t != "" {
		in.Type = t
	}
	if s, ok := firstMatch(severityField, raw); ok && s != "" {
		in.Severity = models.Severity(strings.ToLower(s))
	}
	if d, ok := firstMatch(descriptionField, raw); ok {
		in.Description = d
	}
	return []models.Insight{in}, true
}

func quotedField(name string) *regexp.Regexp {
	return regexp.MustCompile(`"` + name + `"\s*:\s*"((?:[^"\\]|\\.)*)"`)
}

func firstMatch(re *regexp.Regexp, raw string) (string, bool) {
	m := re.FindStringSubmatch(raw)
	if m == nil {
		return "", false
	}
	if s, err := strconv.Unquote(`"` + m[1] + `"`); err == nil {
		return s, true
	}
	return m[1], true
}

// scrapeMetricNames collects metric names mentioned in the text, deduplicated
// and capped.
func scrapeMetricNames(raw string) []string {
	var names []string
	for _, m := range affectedList.FindAllStringSubmatch(raw, -1) {
		for _, item := range quotedItem.FindAllStringSubmatch(m[1], -1) {
			names = append(names, item[1])
		}
	}
	for _, m := range metricKeyField.FindAllStringSubmatch(raw, -1) {
		names = append(names, m[1])
	}
	names = append(names, metricToken.FindAllString(raw, -1)...)

	names = lo.Uniq(names)
	if len(names) > maxScrapedMetrics {
		names = names[:maxScrapedMetrics]
	}
	return names
}

// parsingIssue is the terminal fallback when nothing structured can be
// recovered.
func parsingIssue(raw string, diffs []models.MetricDiff) models.Insight {
	affected := scrapeMetricNames(raw)
	if len(affected) == 0 {
		affected = lo.Map(diff.Regressions(diffs), func(d models.MetricDiff, _ int) string {
			return d.Key
		})
		if len(affected) > maxScrapedMetrics {
			affected = affected[:maxScrapedMetrics]
		}
	}

	description := "The analysis response could not be parsed into structured insights."
	if p := preview(strings.TrimSpace(raw)); p != "" {
		description = fmt.Sprintf("%s Response began with: %s", description, p)
	}

	return models.Insight{
		Type:            "parsing_issue",
		Severity:        models.SeverityMedium,
		Confidence:      0,
		Title:           "Analysis output could not be parsed",
		Description:     description,
		AffectedMetrics: affected,
		ActionableSteps: []string{
			"Review the raw analysis output in the logs",
			"Re-run the comparison to request a fresh analysis",
		},
	}
}

func preview(raw string) string {
	runes := []rune(raw)
	if len(runes) > rawPreviewLen {
		return string(runes[:rawPreviewLen]) + "..."
	}
	return string(runes)
}
