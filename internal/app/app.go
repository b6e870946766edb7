package app

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/wailsapp/wails/v3/pkg/application"

	"github.com/calehart/veil/backend"
	"github.com/calehart/veil/cache"
	"github.com/calehart/veil/config"
	"github.com/calehart/veil/hotkey"
	"github.com/calehart/veil/playbook"
)

// Service provides application functionality bound to Wails.
// This struct focuses on orchestration; business logic lives in sub-components.
type Service struct {
	cfg       *config.Config
	cache     *cache.Cache
	hotkey    *hotkey.Manager
	client    *backend.Client
	playbooks *playbook.Manager

	// UI references - set via Init
	app    *application.App
	window application.Window

	listener *ListenAdapter

	// Session groups conversation turns on the server. Created once per
	// run, never rotated.
	sessionID string

	// chatGen identifies the current chat stream; deltas from superseded
	// streams are dropped at the display layer.
	chatGen atomic.Uint64

	mu            sync.Mutex
	windowVisible bool

	version string
}

// New creates a new Service. Call Init() after the Wails app is created.
func New(version string) *Service {
	return &Service{version: version}
}

// GetVersion returns the application version.
func (s *Service) GetVersion() string {
	return s.version
}

// GetSessionID returns this run's conversation session identifier.
func (s *Service) GetSessionID() string {
	return s.sessionID
}

// Init initializes the service with app and window references.
// Must be called after the Wails application is created.
func (s *Service) Init(app *application.App, window application.Window) {
	s.app = app
	s.window = window
	s.windowVisible = true
	s.sessionID = uuid.NewString()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("load config", "error", err)
		cfg = &config.Config{Settings: config.DefaultSettings()}
	}
	s.cfg = cfg

	s.client = backend.New(cfg.ServerURL)
	s.playbooks = playbook.NewManager()
	s.listener = NewListenAdapter(s.client, s.playbooks, s.emit)

	s.setupCache()
	s.setupHotkey()

	go s.checkHealth()

	slog.Info("service initialized", "session", s.sessionID, "server", cfg.ServerURL)
}

// Shutdown cleans up resources.
func (s *Service) Shutdown() {
	if s.hotkey != nil {
		s.hotkey.Stop()
	}
	if s.listener != nil {
		_ = s.listener.Stop()
	}
	if s.cache != nil {
		if err := s.cache.Close(); err != nil {
			slog.Error("close cache", "error", err)
		}
	}
}

func (s *Service) setupCache() {
	configDir, err := os.UserConfigDir()
	if err != nil {
		slog.Error("get config dir for cache", "error", err)
		return
	}

	cachePath := filepath.Join(configDir, "veil", "cache")
	c, err := cache.New(cachePath)
	if err != nil {
		slog.Error("init cache", "error", err)
		return
	}
	s.cache = c
	slog.Info("cache initialized", "path", cachePath)
}

func (s *Service) setupHotkey() {
	s.hotkey = hotkey.NewManager(hotkey.Callbacks{
		ToggleVisibility: func() { s.ToggleWindowVisibility() },
		QuickAction: func() {
			s.ShowWindow()
			s.emit(EventQuickActionMode, nil)
		},
		CaptureScreen: func() {
			s.emit(EventCaptureScreenMode, nil)
		},
		ToggleListening: func() {
			s.emit(EventListeningToggle, nil)
			go func() {
				if err := s.ToggleListening(); err != nil {
					slog.Error("toggle listening", "error", err)
				}
			}()
		},
	})

	s.hotkey.SetStatusCallback(func(granted bool) {
		s.emit(EventAccessibilityPerm, granted)
		if granted {
			slog.Info("accessibility permission granted")
		} else {
			slog.Warn("accessibility permission denied")
		}
	})

	if err := s.hotkey.Start(); err != nil {
		slog.Error("start hotkey", "error", err)
	}
}

// checkHealth probes the backend once at startup.
func (s *Service) checkHealth() {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	health, err := s.client.Health(ctx)
	if err != nil {
		slog.Warn("backend unreachable", "error", err)
		s.notice("error", "AI server is not reachable; start it and restart the overlay")
		return
	}
	slog.Info("backend healthy", "status", health.Status, "whisper", health.Whisper, "device", health.Device)
	if health.Whisper != "available" {
		s.notice("info", "speech-to-text is not available on the server")
	}
}

// emit is a safe wrapper around app.Event.Emit.
func (s *Service) emit(name string, data any) {
	if s.app != nil {
		s.app.Event.Emit(name, data)
	}
}

// notice surfaces an informational or error message to the user.
func (s *Service) notice(level, message string) {
	s.emit(EventNotice, Notice{Level: level, Message: message})
}

// ─────────────────────────────────────────────────────────────────────────────
// Window control
// ─────────────────────────────────────────────────────────────────────────────

// ToggleWindowVisibility flips the overlay between shown and hidden.
func (s *Service) ToggleWindowVisibility() {
	s.mu.Lock()
	visible := s.windowVisible
	s.windowVisible = !visible
	s.mu.Unlock()

	if s.window == nil {
		return
	}
	if visible {
		s.window.Hide()
	} else {
		s.window.Show()
		s.window.Focus()
	}
}

// ShowWindow brings the overlay to the front.
func (s *Service) ShowWindow() {
	s.mu.Lock()
	s.windowVisible = true
	s.mu.Unlock()

	if s.window != nil {
		s.window.Show()
		s.window.Focus()
	}
}

// HideWindow hides the overlay.
func (s *Service) HideWindow() {
	s.mu.Lock()
	s.windowVisible = false
	s.mu.Unlock()

	if s.window != nil {
		s.window.Hide()
	}
}
