package screenshot

/*
#cgo CFLAGS: -x objective-c
#cgo LDFLAGS: -framework CoreGraphics -framework Foundation
#import <CoreGraphics/CoreGraphics.h>
#import <Foundation/Foundation.h>

bool hasScreenRecordingPermission() {
    if (@available(macOS 11.0, *)) {
        return CGPreflightScreenCaptureAccess();
    }
    return true;
}

void requestScreenRecordingPermission() {
    if (@available(macOS 11.0, *)) {
        CGRequestScreenCaptureAccess();
    }
}
*/
import "C"
import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"time"
)

// HasPermission checks if the app has screen recording permission.
func HasPermission() bool {
	return bool(C.hasScreenRecordingPermission())
}

// RequestPermission requests screen recording permission from the system.
func RequestPermission() {
	C.requestScreenRecordingPermission()
}

// CapturePrimary captures the primary display to a temp PNG file and
// returns its path. The caller is responsible for removing the file.
func CapturePrimary() (string, error) {
	tmpDir := os.TempDir()
	fileName := fmt.Sprintf("veil_screenshot_%d.png", time.Now().UnixNano())
	filePath := filepath.Join(tmpDir, fileName)

	// -x: no sound, -m: main display only
	cmd := exec.Command("screencapture", "-x", "-m", filePath)
	if err := cmd.Run(); err != nil {
		return "", fmt.Errorf("screencapture failed: %w", err)
	}

	if _, err := os.Stat(filePath); err != nil {
		return "", fmt.Errorf("screenshot file missing: %w", err)
	}
	return filePath, nil
}
