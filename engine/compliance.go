package engine

import (
	"strconv"
	"strings"
)

// limit is a parsed discharge standard such as "<= 30" or "6-9"
type limit struct {
	min, max         float64
	hasMin, hasMax   bool
	minOpen, maxOpen bool // strict inequality
}

func (l limit) allows(v float64) bool {
	if l.hasMin && (v < l.min || (l.minOpen && v == l.min)) {
		return false
	}
	if l.hasMax && (v > l.max || (l.maxOpen && v == l.max)) {
		return false
	}
	return true
}

var comparators = []struct {
	prefix string
	build  func(float64) limit
}{
	{"<=", func(f float64) limit { return limit{max: f, hasMax: true} }},
	{"≤", func(f float64) limit { return limit{max: f, hasMax: true} }},
	{">=", func(f float64) limit { return limit{min: f, hasMin: true} }},
	{"≥", func(f float64) limit { return limit{min: f, hasMin: true} }},
	{"<", func(f float64) limit { return limit{max: f, hasMax: true, maxOpen: true} }},
	{">", func(f float64) limit { return limit{min: f, hasMin: true, minOpen: true} }},
}

// parseStandard understands comparator limits, ranges written with "-" or
// "~", and a bare number, which is read as an upper limit.
func parseStandard(standard string) (limit, bool) {
	s := strings.TrimSpace(standard)
	if s == "" {
		return limit{}, false
	}
	for _, c := range comparators {
		if rest, ok := strings.CutPrefix(s, c.prefix); ok {
			f, err := strconv.ParseFloat(strings.TrimSpace(rest), 64)
			if err != nil {
				return limit{}, false
			}
			return c.build(f), true
		}
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return limit{max: f, hasMax: true}, true
	}
	for _, sep := range []string{"~", "-"} {
		// skip index 0 so a leading minus is not taken as the separator
		i := strings.Index(s[1:], sep)
		if i < 0 {
			continue
		}
		lo, errLo := strconv.ParseFloat(strings.TrimSpace(s[:i+1]), 64)
		hi, errHi := strconv.ParseFloat(strings.TrimSpace(s[i+1+len(sep):]), 64)
		if errLo != nil || errHi != nil || lo > hi {
			return limit{}, false
		}
		return limit{min: lo, max: hi, hasMin: true, hasMax: true}, true
	}
	return limit{}, false
}

// EvaluateCompliance reports whether value meets standard. ok is false when
// the standard is not a numeric limit, in which case the caller keeps
// whatever flag the client supplied.
func EvaluateCompliance(standard string, value float64) (compliant, ok bool) {
	l, ok := parseStandard(standard)
	if !ok {
		return false, false
	}
	return l.allows(value), true
}
