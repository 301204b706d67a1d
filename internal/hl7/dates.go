package hl7

import (
	"fmt"
	"regexp"
	"strconv"
)

var (
	compactDatePattern   = regexp.MustCompile(`^\d{8}$`)
	separatedDatePattern = regexp.MustCompile(`^(\d{1,2})[-/](\d{1,2})[-/](\d{4})$`)
)

// NormalizeDate converts an accepted date shape into the fixed-width
// YYYYMMDD token the wire format requires.
//
// An already-compact 8-digit token is returned unchanged, which makes the
// function idempotent: values may arrive pre-normalized from an earlier
// conversion or raw from OCR, and both must be safe to pass through.
// Separated shapes are read as month, day, year with either "-" or "/" as
// the separator. Anything else degrades to the empty token; at this level
// an unusable date means "field not populated", never an error.
func NormalizeDate(raw string) string {
	if compactDatePattern.MatchString(raw) {
		return raw
	}
	m := separatedDatePattern.FindStringSubmatch(raw)
	if m == nil {
		return ""
	}
	month, _ := strconv.Atoi(m[1])
	day, _ := strconv.Atoi(m[2])
	return fmt.Sprintf("%s%02d%02d", m[3], month, day)
}
