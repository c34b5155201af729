package core

import (
	"strconv"
	"strings"

	pep440 "github.com/aquasecurity/go-pep440-version"
)

// RangeAccepts reports whether version satisfies rangeExpr, using
// flymake's dependency version-range grammar:
//
//	"*"       matches any version, including an unpinned "*"
//	"N"       matches any N.x.y
//	"N.N"     matches any N.N.y
//	"N.N.N"   matches exactly that version
//
// Both sides are split into integer release segments by splitSegments
// and the range's segments must equal the version's leading segments.
func RangeAccepts(rangeExpr string, version string) bool {
	rangeExpr = strings.TrimSpace(rangeExpr)
	if rangeExpr == "" || rangeExpr == "*" {
		return true
	}

	wantSegments, err := splitSegments(rangeExpr)
	if err != nil {
		return false
	}
	gotSegments, err := splitSegments(version)
	if err != nil {
		return false
	}
	if len(gotSegments) < len(wantSegments) {
		return false
	}
	for i, want := range wantSegments {
		if gotSegments[i] != want {
			return false
		}
	}
	return true
}

// splitSegments parses a dotted version/range string into integer
// release segments, rejecting anything with a pre-release/local suffix
// so flymake's plain N/N.N/N.N.N grammar stays unambiguous.
func splitSegments(value string) ([]int, error) {
	parts := strings.Split(value, ".")
	segments := make([]int, 0, len(parts))
	for _, part := range parts {
		n, err := strconv.Atoi(strings.TrimSpace(part))
		if err != nil {
			return nil, err
		}
		segments = append(segments, n)
	}
	return segments, nil
}

// CompareVersions orders two concrete version strings using PEP 440's
// release-segment comparison, returning -1, 0, or 1. Strings that do
// not parse as versions are compared lexically.
func CompareVersions(a, b string) int {
	va, errA := pep440.Parse(a)
	vb, errB := pep440.Parse(b)
	if errA != nil || errB != nil {
		return strings.Compare(a, b)
	}
	return va.Compare(vb)
}
