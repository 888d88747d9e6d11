package core

import (
	"strconv"
	"strings"
)

// AgeRange is an optional inclusive age filter parsed from a "min-max" token.
type AgeRange struct {
	Min *int
	Max *int
}

func (r AgeRange) IsZero() bool { return r.Min == nil && r.Max == nil }

// Contains reports whether age falls within the (possibly half-open) range.
func (r AgeRange) Contains(age int) bool {
	if r.Min != nil && age < *r.Min {
		return false
	}
	if r.Max != nil && age > *r.Max {
		return false
	}
	return true
}

// ParseAgeRange parses tokens of the form "5-18", "5-" or "-18".
// Malformed tokens yield an empty range rather than an error; age filtering is
// a refinement, not a contract.
func ParseAgeRange(token string) AgeRange {
	var r AgeRange
	token = strings.TrimSpace(token)
	if token == "" {
		return r
	}
	parts := strings.SplitN(token, "-", 2)
	if min, err := strconv.Atoi(strings.TrimSpace(parts[0])); err == nil {
		r.Min = &min
	}
	if len(parts) > 1 {
		if max, err := strconv.Atoi(strings.TrimSpace(parts[1])); err == nil {
			r.Max = &max
		}
	}
	return r
}
