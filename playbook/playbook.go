// Package playbook manages behavioral profiles and the captured context
// snapshots used to ground backend requests.
package playbook

import (
	"strings"
	"sync"
	"time"

	"github.com/calehart/veil/internal/types"
)

// DefaultKey is the playbook active before the user picks one.
const DefaultKey = "general"

// registry is the fixed set of available playbooks. Playbooks are
// immutable; selection only changes which key is active.
var registry = map[string]types.Playbook{
	"general": {
		Key:           "general",
		Name:          "General",
		Icon:          "💬",
		Description:   "Everyday assistant for any situation",
		SystemPrompt:  "You are a helpful AI assistant. Be concise and direct.",
		ContextPrompt: "Use the captured screen and audio context to ground your answer.",
	},
	"interview": {
		Key:           "interview",
		Name:          "Interview",
		Icon:          "🎯",
		Description:   "Coaching for job interviews",
		SystemPrompt:  "You are an interview coach. Suggest strong, structured answers and highlight what the interviewer is probing for.",
		ContextPrompt: "The transcript is an ongoing interview. Identify the current question and propose an answer outline.",
	},
	"sales": {
		Key:           "sales",
		Name:          "Sales",
		Icon:          "📈",
		Description:   "Support for sales calls",
		SystemPrompt:  "You are a sales assistant. Surface objections, buying signals and next steps.",
		ContextPrompt: "The transcript is a live sales conversation. Track objections and suggest responses.",
	},
	"meeting": {
		Key:           "meeting",
		Name:          "Meeting",
		Icon:          "🗓️",
		Description:   "Notes and actions for meetings",
		SystemPrompt:  "You are a meeting assistant. Capture decisions, open questions and action items.",
		ContextPrompt: "The transcript is a meeting in progress. Summarize decisions and flag unresolved points.",
	},
	"learning": {
		Key:           "learning",
		Name:          "Learning",
		Icon:          "📚",
		Description:   "Patient explanations while studying",
		SystemPrompt:  "You are a patient teacher. Explain concepts clearly with examples.",
		ContextPrompt: "The screen shows study material. Explain the visible concepts simply.",
	},
	"coding": {
		Key:           "coding",
		Name:          "Coding",
		Icon:          "⌨️",
		Description:   "Help while reading or writing code",
		SystemPrompt:  "You are a senior engineer. Explain code precisely and suggest idiomatic improvements.",
		ContextPrompt: "The screen shows source code. Explain what it does and point out problems.",
	},
}

// keys in stable presentation order.
var order = []string{"general", "interview", "sales", "meeting", "learning", "coding"}

// All returns every playbook in presentation order.
func All() []types.Playbook {
	result := make([]types.Playbook, 0, len(order))
	for _, k := range order {
		result = append(result, registry[k])
	}
	return result
}

// Get returns the playbook for key. The second value reports whether the
// key is known.
func Get(key string) (types.Playbook, bool) {
	p, ok := registry[key]
	return p, ok
}

// Manager holds the active playbook selection and the two context
// snapshots. Timer callbacks and request handlers read it concurrently.
type Manager struct {
	mu         sync.RWMutex
	activeKey  string
	screen     string
	transcript string
	timestamp  time.Time
}

// NewManager creates a Manager with the default playbook active.
func NewManager() *Manager {
	return &Manager{activeKey: DefaultKey}
}

// SetActive switches the active playbook. Unknown keys are ignored and
// reported as false; accumulated context is never invalidated by a switch.
func (m *Manager) SetActive(key string) bool {
	if _, ok := registry[key]; !ok {
		return false
	}
	m.mu.Lock()
	m.activeKey = key
	m.mu.Unlock()
	return true
}

// Active returns the currently selected playbook.
func (m *Manager) Active() types.Playbook {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return registry[m.activeKey]
}

// SetScreenContext replaces the screen context wholesale and refreshes
// the snapshot timestamp.
func (m *Manager) SetScreenContext(text string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.screen = text
	m.timestamp = time.Now()
}

// AppendTranscript extends the transcript context (space-joined) and
// refreshes the snapshot timestamp. Empty chunks are ignored.
func (m *Manager) AppendTranscript(chunk string) {
	chunk = strings.TrimSpace(chunk)
	if chunk == "" {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.transcript == "" {
		m.transcript = chunk
	} else {
		m.transcript += " " + chunk
	}
	m.timestamp = time.Now()
}

// Snapshot returns the current context snapshot.
func (m *Manager) Snapshot() types.ContextSnapshot {
	m.mu.RLock()
	defer m.mu.RUnlock()

	snap := types.ContextSnapshot{
		ScreenContext:     m.screen,
		TranscriptContext: m.transcript,
	}
	if !m.timestamp.IsZero() {
		snap.Timestamp = m.timestamp.UnixMilli()
	}
	return snap
}

// ClearContext resets both context strings and the timestamp in one
// operation.
func (m *Manager) ClearContext() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.screen = ""
	m.transcript = ""
	m.timestamp = time.Time{}
}

// HasContext reports whether at least one context string is non-empty.
func (m *Manager) HasContext() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.screen != "" || m.transcript != ""
}
