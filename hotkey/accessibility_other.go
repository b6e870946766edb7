//go:build !darwin

package hotkey

// IsAccessibilityEnabled reports whether the process may monitor global
// input. Platforms other than macOS gate this elsewhere, so assume yes.
func IsAccessibilityEnabled(prompt bool) bool {
	return true
}
