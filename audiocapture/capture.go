// Package audiocapture provides continuous system audio capture.
package audiocapture

import "errors"

// DefaultSampleRate is the capture rate expected by the transcription
// server (16 kHz mono, the rate Whisper models are trained on).
const DefaultSampleRate = 16000

var (
	// ErrUnsupported is returned on platforms without a capture backend.
	ErrUnsupported = errors.New("audio capture not supported on this platform")

	// ErrAlreadyCapturing is returned when Start is called twice.
	ErrAlreadyCapturing = errors.New("already capturing audio")

	// ErrPermissionDenied is returned when the user declined the audio or
	// screen recording permission prompt.
	ErrPermissionDenied = errors.New("audio capture permission denied")

	// ErrDeviceNotFound is returned when no capturable audio source exists.
	ErrDeviceNotFound = errors.New("no audio capture device found")
)

// AudioHandler receives PCM samples in the range [-1, 1].
type AudioHandler func(samples []float32)

// Capturer captures continuous system audio and delivers it in chunks to
// a handler. Implementations are platform-specific; New returns the one
// for the current platform.
type Capturer interface {
	// Start begins capture, invoking handler for every chunk of samples.
	Start(handler AudioHandler) error

	// Stop ends capture and releases the audio source.
	Stop() error

	// IsCapturing reports whether capture is running.
	IsCapturing() bool

	// SampleRate returns the capture sample rate in Hz.
	SampleRate() int
}
