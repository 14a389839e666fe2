package insight

import (
	"strings"
	"time"

	"github.com/valyala/fastjson"
	"go.uber.org/zap"

	"github.com/imishinist/perfdiff/internal/models"
	"github.com/imishinist/perfdiff/internal/timeutils"
)

// Sources name the strategy that produced an insight.
const (
	SourceDirect         = "direct"
	SourceArraySubstring = "array_substring"
	SourceTypePattern    = "type_pattern"
	SourceFieldScrape    = "field_scrape"
	SourceFallback       = "fallback"
	SourceRules          = "rules"
)

// strategy tries to turn raw generated text into insights. ok is false when
// the strategy does not apply.
type strategy struct {
	name string
	run  func(raw string) (insights []models.Insight, ok bool)
}

// Recoverer turns loosely formatted generated text into insights, trying
// increasingly lenient strategies in order.
type Recoverer struct {
	logger     *zap.Logger
	now        func() time.Time
	strategies []strategy
}

func NewRecoverer(logger *zap.Logger) *Recoverer {
	if logger == nil {
		logger = zap.NewNop()
	}
	r := &Recoverer{logger: logger, now: time.Now}
	r.strategies = []strategy{
		{SourceDirect, r.parseDirect},
		{SourceArraySubstring, r.parseArraySubstring},
		{SourceTypePattern, r.parseTypePattern},
		{SourceFieldScrape, r.scrapeFields},
	}
	return r
}

var defaultRecoverer = NewRecoverer(nil)

// Recover never fails: when no strategy yields insights it returns a single
// parsing_issue insight.
func Recover(raw string, diffs []models.MetricDiff) []models.Insight {
	return defaultRecoverer.Recover(raw, diffs)
}

func (r *Recoverer) Recover(raw string, diffs []models.MetricDiff) []models.Insight {
	generatedAt := timeutils.Format(r.now())

	for _, s := range r.strategies {
		insights, ok := s.run(raw)
		if !ok {
			r.logger.Debug("insight strategy did not apply", zap.String("strategy", s.name))
			continue
		}
		r.logger.Debug("insight strategy succeeded",
			zap.String("strategy", s.name), zap.Int("insights", len(insights)))
		return finalize(insights, s.name, generatedAt)
	}

	r.logger.Warn("generated text could not be parsed into insights", zap.Int("length", len(raw)))
	return finalize([]models.Insight{parsingIssue(raw, diffs)}, SourceFallback, generatedAt)
}

func (r *Recoverer) parseDirect(raw string) ([]models.Insight, bool) {
	return parseArray(strings.TrimSpace(raw))
}

// parseArraySubstring parses the text between the first '[' and the last ']'.
func (r *Recoverer) parseArraySubstring(raw string) ([]models.Insight, bool) {
	start := strings.Index(raw, "[")
	end := strings.LastIndex(raw, "]")
	if start < 0 || end <= start {
		return nil, false
	}
	return parseArray(raw[start : end+1])
}

// parseTypePattern looks for an array whose first element is an insight-like
// object and parses up to its matching bracket, ignoring brackets in the
// surrounding prose.
func (r *Recoverer) parseTypePattern(raw string) ([]models.Insight, bool) {
	for _, loc := range insightArrayStart.FindAllStringIndex(raw, -1) {
		end := matchingBracket(raw, loc[0])
		if end < 0 {
			continue
		}
		if insights, ok := parseArray(raw[loc[0] : end+1]); ok {
			return insights, true
		}
	}
	return nil, false
}

func parseArray(s string) ([]models.Insight, bool) {
	if s == "" {
		return nil, false
	}
	var p fastjson.Parser
	v, err := p.Parse(s)
	if err != nil || v.Type() != fastjson.TypeArray {
		return nil, false
	}
	items, _ := v.Array()
	insights := make([]models.Insight, 0, len(items))
	for _, item := range items {
		insights = append(insights, fromValue(item))
	}
	if len(insights) == 0 {
		insights = append(insights, noFindings())
	}
	return insights, true
}

// matchingBracket returns the index of the ']' closing the '[' at start,
// skipping brackets inside JSON strings, or -1.
func matchingBracket(s string, start int) int {
	depth := 0
	inString, escaped := false, false
	for i := start; i < len(s); i++ {
		c := s[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case '[':
			depth++
		case ']':
			depth--
			if depth == 0 {
				return i
			}
		}
	}
	return -1
}

func finalize(insights []models.Insight, source, generatedAt string) []models.Insight {
	for i := range insights {
		if insights[i].Source == "" {
			insights[i].Source = source
		}
		insights[i].GeneratedAt = generatedAt
		if insights[i].AffectedMetrics == nil {
			insights[i].AffectedMetrics = []string{}
		}
	}
	return ensureSerializable(insights)
}

func noFindings() models.Insight {
	return models.Insight{
		Type:        "summary",
		Severity:    models.SeverityLow,
		Confidence:  1,
		Title:       "No findings reported",
		Description: "The analysis returned an empty list of insights.",
	}
}
