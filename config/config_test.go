package config

import (
	"testing"

	"github.com/calehart/veil/internal/types"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	want := DefaultSettings()
	if cfg.Settings != want {
		t.Errorf("Load() settings = %+v, want %+v", cfg.Settings, want)
	}
	if cfg.ServerURL != defaultServerURL {
		t.Errorf("Load() server url = %q, want %q", cfg.ServerURL, defaultServerURL)
	}
}

func TestSettingsRoundTrip(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	updated := cfg.Settings
	updated.Opacity = 0.7
	updated.HideOnBlur = false
	if err := cfg.UpdateSettings(updated); err != nil {
		t.Fatalf("UpdateSettings() error = %v", err)
	}

	reloaded, err := Load()
	if err != nil {
		t.Fatalf("Load() after save error = %v", err)
	}

	if reloaded.Settings.Opacity != 0.7 {
		t.Errorf("opacity = %v, want 0.7", reloaded.Settings.Opacity)
	}
	if reloaded.Settings.HideOnBlur {
		t.Error("hideOnBlur = true, want false")
	}
	if reloaded.Settings.Personality != types.PersonalityConcise {
		t.Errorf("personality = %q, want %q", reloaded.Settings.Personality, types.PersonalityConcise)
	}
}

func TestNormalize(t *testing.T) {
	tests := []struct {
		name string
		in   types.Settings
		want types.Settings
	}{
		{
			name: "unknown personality falls back",
			in:   types.Settings{Personality: "sassy", Theme: "dark", Opacity: 0.5, HideOnBlur: true},
			want: types.Settings{Personality: "concise", Theme: "dark", Opacity: 0.5, HideOnBlur: true},
		},
		{
			name: "opacity out of range repaired",
			in:   types.Settings{Personality: "formal", Theme: "dark", Opacity: 1.5},
			want: types.Settings{Personality: "formal", Theme: "dark", Opacity: 0.95},
		},
		{
			name: "empty theme repaired",
			in:   types.Settings{Personality: "teacher", Opacity: 0.8},
			want: types.Settings{Personality: "teacher", Theme: "dark", Opacity: 0.8},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &Config{Settings: tt.in}
			cfg.normalize()
			if cfg.Settings != tt.want {
				t.Errorf("normalize() = %+v, want %+v", cfg.Settings, tt.want)
			}
		})
	}
}

func TestServerURLOverride(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv(serverURLEnv, "http://127.0.0.1:9999")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.ServerURL != "http://127.0.0.1:9999" {
		t.Errorf("server url = %q, want override", cfg.ServerURL)
	}
}
