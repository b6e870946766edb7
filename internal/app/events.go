// Package app provides the core application service for Wails bindings.
package app

// Event names for frontend communication.
const (
	EventChatDelta         = "chat-delta"
	EventTranscript        = "transcript-update"
	EventSuggestion        = "suggestion"
	EventSuggestionDismiss = "suggestion-dismiss"
	EventListenStatus      = "listening-status"
	EventScreenContext     = "screen-context"
	EventSettingsChanged   = "settings-changed"
	EventNotice            = "notice"
	EventAccessibilityPerm = "accessibility-permission"

	// Fire-and-forget mode notifications triggered by global hotkeys.
	EventQuickActionMode   = "quick-action-mode"
	EventCaptureScreenMode = "capture-screen-mode"
	EventListeningToggle   = "listening-mode-toggle"
)

// Notice is an informational message surfaced to the user.
type Notice struct {
	Level   string `json:"level"` // info, error
	Message string `json:"message"`
}

// TranscriptUpdate is emitted for every accepted passive transcription chunk.
type TranscriptUpdate struct {
	Chunk      string `json:"chunk"`
	Transcript string `json:"transcript"` // rolling transcript
}
