//go:build !darwin

package screenshot

import "errors"

// HasPermission checks if the app has screen recording permission.
func HasPermission() bool {
	return false
}

// RequestPermission requests screen recording permission from the system.
func RequestPermission() {}

// CapturePrimary captures the primary display to a temp PNG file.
func CapturePrimary() (string, error) {
	return "", errors.New("screenshot not supported on this platform")
}
