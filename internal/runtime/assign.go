package runtime

import (
	"strconv"
	"strings"

	"github.com/Aryanpatel2001/VoiceFlow-sub001/internal/template"
	"github.com/Aryanpatel2001/VoiceFlow-sub001/pkg/domain"
)

// applyAssignments executes a set_variable node's assignments in order.
// Each right-hand value is substituted against the bindings as they stand
// at that point, so a later assignment reads an earlier one's result.
func applyAssignments(vars domain.Bindings, assignments []domain.Assignment) {
	for _, a := range assignments {
		if a.Variable == "" {
			continue
		}
		value := template.Substitute(a.Value, vars)

		switch strings.ToLower(a.Operation) {
		case domain.OpAppend:
			vars[a.Variable] = domain.Stringify(vars[a.Variable]) + value
		case domain.OpIncrement:
			vars[a.Variable] = numeric(vars[a.Variable]) + delta(value)
		case domain.OpDecrement:
			vars[a.Variable] = numeric(vars[a.Variable]) - delta(value)
		default: // OpSet, and anything unrecognized behaves as set
			vars[a.Variable] = value
		}
	}
}

// numeric coerces the current value; non-numeric counts as zero so malformed
// authoring degrades instead of failing the call.
func numeric(v any) float64 {
	n, err := strconv.ParseFloat(strings.TrimSpace(domain.Stringify(v)), 64)
	if err != nil {
		return 0
	}
	return n
}

// delta parses the assignment value, defaulting to a step of one.
func delta(value string) float64 {
	if strings.TrimSpace(value) == "" {
		return 1
	}
	n, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
	if err != nil {
		return 1
	}
	return n
}
