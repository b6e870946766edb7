// Package types provides shared type definitions for the application.
package types

// Settings holds the user preferences persisted across restarts.
type Settings struct {
	Personality string  `json:"personality"`
	Theme       string  `json:"theme"`
	Opacity     float64 `json:"opacity"`
	HideOnBlur  bool    `json:"hideOnBlur"`
}

// Known personality values understood by the server.
const (
	PersonalityConcise = "concise"
	PersonalityCasual  = "casual"
	PersonalityFormal  = "formal"
	PersonalityTeacher = "teacher"
)

// Playbook is an immutable behavioral profile sent with analysis requests.
type Playbook struct {
	Key           string `json:"key"`
	Name          string `json:"name"`
	Icon          string `json:"icon"`
	Description   string `json:"description"`
	SystemPrompt  string `json:"systemPrompt"`
	ContextPrompt string `json:"contextPrompt"`
}

// ContextSnapshot carries the most recent screen text and rolling transcript
// used to ground analysis and suggestion requests.
type ContextSnapshot struct {
	ScreenContext     string `json:"screenContext"`
	TranscriptContext string `json:"transcriptContext"`
	Timestamp         int64  `json:"timestamp"` // Unix milliseconds, 0 when unset
}

// ChatDelta is emitted for every content fragment of a streaming chat response.
type ChatDelta struct {
	RequestID uint64 `json:"requestId"`
	Content   string `json:"content"` // fragment, not accumulated
	Text      string `json:"text"`    // accumulated text so far
	Done      bool   `json:"done"`
	Error     string `json:"error,omitempty"`
}

// QuickActionResult is the outcome of a single-shot clipboard transform.
type QuickActionResult struct {
	Action   string `json:"action"`
	Response string `json:"response"`
	// Language of the source text, populated for the translate action.
	SourceLang string `json:"sourceLang,omitempty"`
	CacheHit   bool   `json:"cacheHit"`
}

// ScreenAnalysis is the outcome of a screen capture + OCR pass.
type ScreenAnalysis struct {
	Text     string `json:"text"`
	Analysis string `json:"analysis,omitempty"`
}

// Suggestion is a passive auto-suggest card shown to the user.
type Suggestion struct {
	ID           uint64 `json:"id"`
	Text         string `json:"text"`
	DetectedType string `json:"detectedType"` // question, code, action, other
}

// ListenStatus reports the state of the passive listening loop.
type ListenStatus struct {
	Active     bool   `json:"active"`
	Duration   int64  `json:"duration"`   // seconds since start
	ChunkCount int    `json:"chunkCount"` // transcription batches accepted
	Transcript string `json:"transcript"` // rolling transcript
}

// ServerHealth mirrors the backend /health response.
type ServerHealth struct {
	Status  string `json:"status"`
	Whisper string `json:"whisper"`
	Device  string `json:"device"`
}

// DetectResult represents the result of language detection.
type DetectResult struct {
	Code string `json:"code"`
	Name string `json:"name"`
}
