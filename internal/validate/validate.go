package validate

import (
	"fmt"
	"strings"
	"time"

	"github.com/imishinist/perfdiff/internal/extract"
	"github.com/imishinist/perfdiff/internal/models"
	"github.com/imishinist/perfdiff/internal/timeutils"
)

const defaultReportName = "report"

// Result is the outcome of validating one raw report. Sanitized is only set
// when Valid is true.
type Result struct {
	Valid     bool                      `json:"valid"`
	Errors    []string                  `json:"errors"`
	Warnings  []string                  `json:"warnings"`
	Format    extract.Format            `json:"format"`
	Sanitized *models.PerformanceReport `json:"sanitized,omitempty"`
}

type Validator struct {
	now func() time.Time
}

// NewValidator returns a Validator that stamps reports without a usable
// timestamp with now(). A nil now uses time.Now.
func NewValidator(now func() time.Time) *Validator {
	if now == nil {
		now = time.Now
	}
	return &Validator{now: now}
}

var defaultValidator = NewValidator(nil)

// Validate checks raw with the default validator.
func Validate(raw any, name string) Result {
	return defaultValidator.Validate(raw, name)
}

// Validate turns a decoded document into a sanitized report or a list of
// structural errors. name is used when the document does not carry its own.
func (v *Validator) Validate(raw any, name string) Result {
	result := Result{Errors: []string{}, Warnings: []string{}}

	doc, ok := raw.(map[string]any)
	if !ok {
		result.Errors = append(result.Errors, extract.ErrNotObject.Error())
		return result
	}

	if errs := structuralErrors(doc); len(errs) > 0 {
		result.Errors = append(result.Errors, errs...)
		return result
	}

	extracted, err := extract.Extract(doc)
	result.Format = extracted.Format
	result.Warnings = append(result.Warnings, extracted.Warnings...)
	if err != nil {
		result.Errors = append(result.Errors, err.Error())
	}

	ts, status := timeutils.Normalize(doc["timestamp"], v.now())
	if status == timeutils.StatusInvalid {
		result.Warnings = append(result.Warnings,
			fmt.Sprintf("timestamp %v could not be parsed; using current time", doc["timestamp"]))
	}

	result.Warnings = append(result.Warnings, suggestions(extracted.Format, extracted.Metrics)...)

	result.Valid = len(result.Errors) == 0 && len(extracted.Metrics) > 0
	if result.Valid {
		result.Sanitized = &models.PerformanceReport{
			Name:      reportName(doc, name),
			Timestamp: timeutils.Format(ts),
			Metrics:   extracted.Metrics,
		}
	}
	return result
}

func reportName(doc map[string]any, fallback string) string {
	if name, ok := doc["name"].(string); ok && strings.TrimSpace(name) != "" {
		return strings.TrimSpace(name)
	}
	if strings.TrimSpace(fallback) != "" {
		return strings.TrimSpace(fallback)
	}
	return defaultReportName
}
