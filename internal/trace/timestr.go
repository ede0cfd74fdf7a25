package trace

import (
	"math"
	"strconv"
	"strings"
)

// ParseTime parses a profiler time string such as "6609483.000 us".
// Only the first whitespace-separated token is read; the unit suffix is
// ignored. Non-numeric and non-finite values are rejected.
func ParseTime(s string) (float64, bool) {
	fields := strings.Fields(s)
	if len(fields) == 0 {
		return 0, false
	}
	token := strings.TrimSuffix(fields[0], "us")
	v, err := strconv.ParseFloat(token, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}

// NormalizeName strips a trailing bracketed timing suffix from an operation
// name, e.g. "MEMCPY_DtoH[2.464 us]" becomes "MEMCPY_DtoH". Names without
// such a suffix are returned unchanged.
func NormalizeName(name string) string {
	pos := strings.LastIndexByte(name, '[')
	if pos < 0 {
		return name
	}
	suffix := name[pos:]
	if strings.HasSuffix(suffix, " us]") || strings.HasSuffix(suffix, " ms]") {
		return name[:pos]
	}
	return name
}

// StepDurationHint extracts the informational duration in milliseconds from a
// boundary name of the form "ProfileStep#<id>[<duration> ms]".
func StepDurationHint(name string) (float64, bool) {
	open := strings.LastIndexByte(name, '[')
	if open < 0 || !strings.HasSuffix(name, " ms]") {
		return 0, false
	}
	v, err := strconv.ParseFloat(strings.TrimSpace(name[open+1:len(name)-len(" ms]")]), 64)
	if err != nil {
		return 0, false
	}
	return v, true
}
