//go:build darwin

package hotkey

/*
#cgo CFLAGS: -x objective-c
#cgo LDFLAGS: -framework ApplicationServices -framework Foundation
#import <ApplicationServices/ApplicationServices.h>
#import <Foundation/Foundation.h>

bool isAccessibilityEnabled(bool prompt) {
    NSDictionary *options = @{(__bridge NSString *)kAXTrustedCheckOptionPrompt : @(prompt)};
    return AXIsProcessTrustedWithOptions((__bridge CFDictionaryRef)options);
}
*/
import "C"

// IsAccessibilityEnabled reports whether the process may monitor global
// input. When prompt is true and permission is missing, the system
// permission dialog is shown.
func IsAccessibilityEnabled(prompt bool) bool {
	return bool(C.isAccessibilityEnabled(C.bool(prompt)))
}
