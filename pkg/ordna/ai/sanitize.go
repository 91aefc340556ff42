package ai

import "strings"

// maxPathDepth caps how many folder levels an externally suggested
// destination may have. High granularity asks the service for three
// levels, so anything deeper is truncated rather than rejected.
const maxPathDepth = 3

// invalidSegmentChars are characters stripped from folder names. The
// set covers everything that is illegal on at least one supported
// filesystem, so suggested names stay portable.
const invalidSegmentChars = `<>:"|?*`

// SanitizePath normalizes a destination folder suggested by the
// external service into a safe relative path. Classification output is
// untrusted input: traversal elements, absolute prefixes, and illegal
// characters are removed, and depth is capped at maxPathDepth levels.
// The empty string is returned when nothing usable remains, which the
// caller treats as no classification.
func SanitizePath(p string) string {
	p = strings.ReplaceAll(p, `\`, "/")

	var segments []string
	for _, seg := range strings.Split(p, "/") {
		seg = cleanSegment(seg)
		if seg == "" || seg == "." || seg == ".." {
			continue
		}
		segments = append(segments, seg)
		if len(segments) == maxPathDepth {
			break
		}
	}

	return strings.Join(segments, "/")
}

// cleanSegment strips illegal and control characters from one path
// component and trims surrounding whitespace and trailing dots.
func cleanSegment(seg string) string {
	var b strings.Builder
	for _, r := range seg {
		if r < 0x20 || strings.ContainsRune(invalidSegmentChars, r) {
			continue
		}
		b.WriteRune(r)
	}
	seg = strings.TrimSpace(b.String())
	return strings.TrimRight(seg, ".")
}
