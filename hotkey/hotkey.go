// Package hotkey registers the application's global hotkeys.
package hotkey

import (
	"errors"
	"log/slog"
	"sync"

	hook "github.com/robotn/gohook"
)

// Fixed bindings. Not remappable at runtime.
var (
	bindToggle        = []string{"h", "ctrl", "shift"}
	bindToggleAlt     = []string{"g", "ctrl", "shift"}
	bindQuickAction   = []string{"q", "ctrl", "shift"}
	bindCaptureScreen = []string{"s", "ctrl", "shift"}
	bindListening     = []string{"l", "ctrl", "shift"}
)

// Callbacks are invoked from the hook listener goroutine; heavy work must
// be dispatched elsewhere by the callee.
type Callbacks struct {
	ToggleVisibility func()
	QuickAction      func()
	CaptureScreen    func()
	ToggleListening  func()
}

// Manager owns the global hotkey listener.
type Manager struct {
	mu       sync.Mutex
	cbs      Callbacks
	statusCb func(granted bool)
	running  bool
}

// NewManager creates a hotkey manager with the given callbacks.
func NewManager(cbs Callbacks) *Manager {
	return &Manager{cbs: cbs}
}

// SetStatusCallback registers a callback reporting whether the OS granted
// the input-monitoring permission hotkeys need.
func (m *Manager) SetStatusCallback(fn func(granted bool)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.statusCb = fn
}

// Start registers all bindings and begins listening.
func (m *Manager) Start() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.running {
		return errors.New("hotkey manager already running")
	}

	granted := IsAccessibilityEnabled(true)
	if m.statusCb != nil {
		m.statusCb(granted)
	}
	if !granted {
		return errors.New("accessibility permission not granted")
	}

	register(bindToggle, m.cbs.ToggleVisibility)
	register(bindToggleAlt, m.cbs.ToggleVisibility)
	register(bindQuickAction, m.cbs.QuickAction)
	register(bindCaptureScreen, m.cbs.CaptureScreen)
	register(bindListening, m.cbs.ToggleListening)

	go func() {
		evs := hook.Start()
		<-hook.Process(evs)
		slog.Info("hotkey listener exited")
	}()

	m.running = true
	slog.Info("global hotkeys registered")
	return nil
}

// Stop ends the hotkey listener.
func (m *Manager) Stop() {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.running {
		return
	}
	hook.End()
	m.running = false
}

func register(binding []string, fn func()) {
	if fn == nil {
		return
	}
	hook.Register(hook.KeyDown, binding, func(hook.Event) {
		fn()
	})
}
