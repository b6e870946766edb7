package app

import (
	"fmt"
	"log/slog"

	"github.com/calehart/veil/internal/types"
	"github.com/calehart/veil/playbook"
)

// GetSettings returns the current user settings.
func (s *Service) GetSettings() types.Settings {
	return s.cfg.Settings
}

// SaveSettings persists new settings and notifies the frontend.
func (s *Service) SaveSettings(settings types.Settings) error {
	if err := s.cfg.UpdateSettings(settings); err != nil {
		slog.Error("save settings", "error", err)
		return fmt.Errorf("save settings: %w", err)
	}
	s.emit(EventSettingsChanged, s.cfg.Settings)
	return nil
}

// GetPlaybooks returns every available playbook in presentation order.
func (s *Service) GetPlaybooks() []types.Playbook {
	return playbook.All()
}

// GetActivePlaybook returns the currently selected playbook.
func (s *Service) GetActivePlaybook() types.Playbook {
	return s.playbooks.Active()
}

// SetPlaybook switches the active playbook. Unknown keys leave the
// selection unchanged.
func (s *Service) SetPlaybook(key string) error {
	if !s.playbooks.SetActive(key) {
		return fmt.Errorf("unknown playbook %q", key)
	}
	pb := s.playbooks.Active()
	slog.Info("playbook selected", "key", pb.Key)
	s.notice("info", pb.Name+" playbook active")
	return nil
}

// GetContext returns the current context snapshot.
func (s *Service) GetContext() types.ContextSnapshot {
	return s.playbooks.Snapshot()
}

// HasContext reports whether any screen or transcript context is captured.
func (s *Service) HasContext() bool {
	return s.playbooks.HasContext()
}

// ClearContext discards the captured screen and transcript context.
func (s *Service) ClearContext() {
	s.playbooks.ClearContext()
	s.emit(EventScreenContext, "")
	s.notice("info", "context cleared")
}
