//go:build darwin

package audiocapture

/*
#cgo CFLAGS: -x objective-c -fobjc-arc -mmacosx-version-min=13.0
#cgo LDFLAGS: -framework ScreenCaptureKit -framework CoreMedia -framework CoreAudio -framework Foundation -framework AVFoundation

#include <stdlib.h>

extern int startAudioCapture(int targetSampleRate, char** errOut);
extern void stopAudioCapture(void);
*/
import "C"

import (
	"errors"
	"strings"
	"sync"
	"unsafe"
)

// Global handler for CGO callback. Only one capture at a time.
var (
	globalHandler   AudioHandler
	globalHandlerMu sync.RWMutex
)

//export goAudioCallback
func goAudioCallback(samples *C.float, count C.int) {
	n := int(count)
	if n <= 0 {
		return
	}

	globalHandlerMu.RLock()
	h := globalHandler
	globalHandlerMu.RUnlock()

	if h == nil {
		return
	}

	// Convert C array to Go slice without extra allocation.
	// Safe because we process samples before this function returns.
	goSamples := unsafe.Slice((*float32)(unsafe.Pointer(samples)), n)
	h(goSamples)
}

// capturer is the macOS implementation using ScreenCaptureKit.
type capturer struct {
	sampleRate int
	mu         sync.Mutex
	running    bool
}

// New creates a Capturer for macOS.
func New(sampleRate int) (Capturer, error) {
	if sampleRate <= 0 {
		sampleRate = DefaultSampleRate
	}
	return &capturer{sampleRate: sampleRate}, nil
}

func (c *capturer) Start(handler AudioHandler) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.running {
		return ErrAlreadyCapturing
	}

	globalHandlerMu.Lock()
	globalHandler = handler
	globalHandlerMu.Unlock()

	var errOut *C.char
	if C.startAudioCapture(C.int(c.sampleRate), &errOut) != 0 {
		globalHandlerMu.Lock()
		globalHandler = nil
		globalHandlerMu.Unlock()

		msg := "start capture failed"
		if errOut != nil {
			msg = C.GoString(errOut)
			C.free(unsafe.Pointer(errOut))
		}
		return classifyStartError(msg)
	}

	c.running = true
	return nil
}

func (c *capturer) Stop() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.running {
		return nil
	}

	C.stopAudioCapture()
	c.running = false

	globalHandlerMu.Lock()
	globalHandler = nil
	globalHandlerMu.Unlock()
	return nil
}

func (c *capturer) IsCapturing() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.running
}

func (c *capturer) SampleRate() int { return c.sampleRate }

// classifyStartError maps ScreenCaptureKit failure strings to sentinel
// errors so callers can show a specific reason.
func classifyStartError(msg string) error {
	lower := strings.ToLower(msg)
	switch {
	case strings.Contains(lower, "declined") || strings.Contains(lower, "denied") ||
		strings.Contains(lower, "not permitted"):
		return ErrPermissionDenied
	case strings.Contains(lower, "no display") || strings.Contains(lower, "not found"):
		return ErrDeviceNotFound
	default:
		return errors.New(msg)
	}
}
