//go:build !unix

package mover

// isCrossDevice always reports false on platforms without EXDEV; the
// rename error is surfaced as a per-item failure instead.
func isCrossDevice(err error) bool {
	return false
}
