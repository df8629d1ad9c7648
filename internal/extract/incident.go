package extract

import (
	"strings"

	"call-insights-go/internal/types"
)

const incidentMarker = "INC"

// IncidentNumber scans a finished state for a ticket reference: the literal
// "INC" marker followed (after any non-digit run) by at least one digit.
// The call summary is searched first, then every string carried by the
// action items, in encounter order. Empty string means no reference found.
func IncidentNumber(st types.State) string {
	if ref := findIncident(st.CallSummary); ref != "" {
		return ref
	}
	for _, item := range st.ActionItems {
		for _, v := range item.StringValues() {
			if ref := findIncident(v); ref != "" {
				return ref
			}
		}
	}
	return ""
}

func findIncident(text string) string {
	if text == "" {
		return ""
	}
	idx := strings.Index(text, incidentMarker)
	if idx < 0 {
		return ""
	}
	i := idx + len(incidentMarker)

	// Skip forward to the first digit after the marker.
	for i < len(text) && !isDigit(text[i]) {
		i++
	}

	// Consume the maximal digit run.
	start := i
	for i < len(text) && isDigit(text[i]) {
		i++
	}
	if i == start {
		return ""
	}
	return incidentMarker + text[start:i]
}

func isDigit(b byte) bool { return b >= '0' && b <= '9' }
