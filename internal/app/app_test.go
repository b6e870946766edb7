package app

import (
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/calehart/veil/backend"
	"github.com/calehart/veil/cache"
	"github.com/calehart/veil/config"
	"github.com/calehart/veil/playbook"
)

// newTestService wires a Service against a fake backend. The Wails app
// and window stay nil; emit is a no-op then.
func newTestService(t *testing.T, handler http.Handler) (*Service, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	s := New("test")
	s.cfg = &config.Config{Settings: config.DefaultSettings(), ServerURL: srv.URL}
	s.client = backend.New(srv.URL)
	s.playbooks = playbook.NewManager()
	s.sessionID = "test-session"
	return s, srv
}

func TestSendMessageValidation(t *testing.T) {
	s, _ := newTestService(t, http.NotFoundHandler())

	for _, msg := range []string{"", "   ", "\n\t"} {
		if err := s.SendMessage(msg); err == nil {
			t.Errorf("SendMessage(%q) = nil, want error", msg)
		}
	}
}

func TestQuickActionUnknown(t *testing.T) {
	s, _ := newTestService(t, http.NotFoundHandler())

	if _, err := s.QuickAction("rewrite"); err == nil {
		t.Fatal("QuickAction with unknown action should fail")
	}
}

func TestAnalyzeContext(t *testing.T) {
	var got map[string]string
	s, _ := newTestService(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/analyze-context" {
			http.NotFound(w, r)
			return
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decode request: %v", err)
		}
		json.NewEncoder(w).Encode(map[string]string{"analysis": "looks fine"})
	}))

	// No context captured yet.
	if _, err := s.AnalyzeContext("what is this?"); err == nil {
		t.Fatal("AnalyzeContext without context should fail")
	}

	s.playbooks.SetScreenContext("func main() {}")
	s.playbooks.SetActive("coding")

	analysis, err := s.AnalyzeContext("what is this?")
	if err != nil {
		t.Fatalf("AnalyzeContext: %v", err)
	}
	if analysis != "looks fine" {
		t.Errorf("analysis = %q, want %q", analysis, "looks fine")
	}
	if got["screen_context"] != "func main() {}" {
		t.Errorf("screen_context = %q", got["screen_context"])
	}
	if got["playbook_name"] != "Coding" {
		t.Errorf("playbook_name = %q, want Coding", got["playbook_name"])
	}
}

func TestTranscribeAudio(t *testing.T) {
	tests := []struct {
		name     string
		response string
		want     string
	}{
		{"normal speech", "hello there", "hello there"},
		{"padded", "  hello  ", "hello"},
		{"silence", "   ", ""},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, _ := newTestService(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				json.NewEncoder(w).Encode(map[string]string{"text": tt.response})
			}))

			encoded := base64.StdEncoding.EncodeToString([]byte("RIFF fake wav"))
			got, err := s.TranscribeAudio(encoded)
			if err != nil {
				t.Fatalf("TranscribeAudio: %v", err)
			}
			if got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestTranscribeAudioBadEncoding(t *testing.T) {
	s, _ := newTestService(t, http.NotFoundHandler())

	if _, err := s.TranscribeAudio("not base64!!!"); err == nil {
		t.Fatal("TranscribeAudio with invalid base64 should fail")
	}
}

func TestSetPlaybook(t *testing.T) {
	s, _ := newTestService(t, http.NotFoundHandler())

	if err := s.SetPlaybook("interview"); err != nil {
		t.Fatalf("SetPlaybook(interview): %v", err)
	}
	if got := s.GetActivePlaybook().Key; got != "interview" {
		t.Errorf("active playbook = %q, want interview", got)
	}

	if err := s.SetPlaybook("nonexistent"); err == nil {
		t.Fatal("SetPlaybook with unknown key should fail")
	}
	if got := s.GetActivePlaybook().Key; got != "interview" {
		t.Errorf("active playbook after bad key = %q, want interview", got)
	}
}

func TestSaveSettings(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	s, _ := newTestService(t, http.NotFoundHandler())

	settings := s.GetSettings()
	settings.Theme = "light"
	settings.Opacity = 0.7
	if err := s.SaveSettings(settings); err != nil {
		t.Fatalf("SaveSettings: %v", err)
	}

	got := s.GetSettings()
	if got.Theme != "light" || got.Opacity != 0.7 {
		t.Errorf("settings = %+v", got)
	}

	// Out-of-range opacity is repaired, not persisted verbatim.
	settings.Opacity = 3.0
	if err := s.SaveSettings(settings); err != nil {
		t.Fatalf("SaveSettings: %v", err)
	}
	if got := s.GetSettings().Opacity; got != 0.95 {
		t.Errorf("opacity after repair = %v, want 0.95", got)
	}
}

func TestClearContext(t *testing.T) {
	s, _ := newTestService(t, http.NotFoundHandler())

	s.playbooks.SetScreenContext("some screen text")
	s.playbooks.AppendTranscript("some speech")
	if !s.HasContext() {
		t.Fatal("expected context after capture")
	}

	s.ClearContext()
	if s.HasContext() {
		t.Error("expected no context after clear")
	}
	snap := s.GetContext()
	if snap.ScreenContext != "" || snap.TranscriptContext != "" || snap.Timestamp != 0 {
		t.Errorf("snapshot not empty after clear: %+v", snap)
	}
}

func TestOCRCached(t *testing.T) {
	var calls int
	s, _ := newTestService(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		json.NewEncoder(w).Encode(map[string]string{"text": "recognized text"})
	}))

	c, err := cache.New(t.TempDir())
	if err != nil {
		t.Fatalf("cache.New: %v", err)
	}
	t.Cleanup(func() { c.Close() })
	s.cache = c

	dataURL := "data:image/png;base64,aGVsbG8="

	first, err := s.ocrCached(dataURL, false, "")
	if err != nil {
		t.Fatalf("ocrCached: %v", err)
	}
	second, err := s.ocrCached(dataURL, false, "")
	if err != nil {
		t.Fatalf("ocrCached (cached): %v", err)
	}

	if first.Text != "recognized text" || second.Text != "recognized text" {
		t.Errorf("texts = %q, %q", first.Text, second.Text)
	}
	if calls != 1 {
		t.Errorf("backend calls = %d, want 1 (second hit served from cache)", calls)
	}

	// Analysis requests always reach the backend.
	if _, err := s.ocrCached(dataURL, true, "explain"); err != nil {
		t.Fatalf("ocrCached analyze: %v", err)
	}
	if calls != 2 {
		t.Errorf("backend calls = %d, want 2 (analyze bypasses cache)", calls)
	}
}

func TestSupersededDeltaOrdering(t *testing.T) {
	s, _ := newTestService(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("data: {\"content\": \"hi\"}\n"))
		w.Write([]byte("data: {\"done\": true}\n"))
	}))

	// Each message claims a strictly higher request id.
	if err := s.SendMessage("first"); err != nil {
		t.Fatalf("SendMessage: %v", err)
	}
	firstID := s.chatGen.Load()
	if err := s.SendMessage("second"); err != nil {
		t.Fatalf("SendMessage: %v", err)
	}
	if secondID := s.chatGen.Load(); secondID <= firstID {
		t.Errorf("second request id %d not greater than first %d", secondID, firstID)
	}
}
