package record

import (
	"strconv"
	"strings"
)

// ParseEstimateHours parses a task estimate into hours. Estimates arrive as
// plain decimals ("8", "8.5") or as "H:MM" strings ("8:30"). The second
// return is false when the value is empty, "0", or unparsable; callers that
// sum estimates treat those as non-contributing.
func ParseEstimateHours(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if s == "" || s == "0" {
		return 0, false
	}

	if strings.Contains(s, ":") {
		parts := strings.SplitN(s, ":", 2)
		hours, err := strconv.ParseFloat(parts[0], 64)
		if err != nil {
			return 0, false
		}
		mins, err := strconv.ParseFloat(parts[1], 64)
		if err != nil {
			return 0, false
		}
		return hours + mins/60, true
	}

	hours, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return hours, true
}
