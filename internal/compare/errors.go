package compare

import (
	"fmt"
	"sort"
	"strings"
)

const (
	SideBaseline = "baseline"
	SideCurrent  = "current"
)

// ValidationError reports the structural errors of each report that failed
// validation, keyed by side.
type ValidationError struct {
	Reports map[string][]string
}

func (e *ValidationError) Error() string {
	sides := make([]string, 0, len(e.Reports))
	for side := range e.Reports {
		sides = append(sides, side)
	}
	sort.Strings(sides)

	parts := make([]string, 0, len(sides))
	for _, side := range sides {
		parts = append(parts, fmt.Sprintf("invalid %s report: %s", side, strings.Join(e.Reports[side], "; ")))
	}
	return strings.Join(parts, ", ")
}
