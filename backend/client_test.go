package backend

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/calehart/veil/internal/types"
)

func TestChatStream(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chat/stream" {
			t.Errorf("path = %q, want /chat/stream", r.URL.Path)
		}
		w.Header().Set("Content-Type", "text/event-stream")
		flusher := w.(http.Flusher)
		for _, line := range []string{
			"data: {\"content\": \"Hi\"}\n\n",
			"data: {\"content\": \" there\"}\n\n",
			"data: {\"done\": true}\n\n",
		} {
			_, _ = io.WriteString(w, line)
			flusher.Flush()
		}
	}))
	defer srv.Close()

	c := New(srv.URL)
	var frags []string
	text, err := c.ChatStream(context.Background(), ChatStreamRequest{
		Message:     "hello",
		SessionID:   "s1",
		Personality: "concise",
	}, func(fragment, _ string) {
		frags = append(frags, fragment)
	})
	if err != nil {
		t.Fatalf("ChatStream() error = %v", err)
	}
	if text != "Hi there" {
		t.Errorf("text = %q, want %q", text, "Hi there")
	}
	if len(frags) != 2 {
		t.Errorf("fragments = %q, want 2 entries", frags)
	}
}

func TestChatStreamServerErrorRecord(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, "data: {\"error\": \"model overloaded\"}\n")
	}))
	defer srv.Close()

	c := New(srv.URL)
	_, err := c.ChatStream(context.Background(), ChatStreamRequest{Message: "x"}, nil)

	var streamErr *StreamError
	if !errors.As(err, &streamErr) {
		t.Fatalf("error = %v, want *StreamError", err)
	}
	if streamErr.Message != "model overloaded" {
		t.Errorf("message = %q, want %q", streamErr.Message, "model overloaded")
	}
}

func TestChatQuick(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		want    string
		wantErr bool
	}{
		{
			name:   "success",
			status: http.StatusOK,
			body:   `{"response": "a summary"}`,
			want:   "a summary",
		},
		{
			name:    "error field",
			status:  http.StatusOK,
			body:    `{"error": "no text provided"}`,
			wantErr: true,
		},
		{
			name:    "server failure",
			status:  http.StatusInternalServerError,
			body:    `{"error": "boom"}`,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = io.WriteString(w, tt.body)
			}))
			defer srv.Close()

			c := New(srv.URL)
			got, err := c.ChatQuick(context.Background(), "summarize", "long text")
			if (err != nil) != tt.wantErr {
				t.Fatalf("ChatQuick() error = %v, wantErr %v", err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ChatQuick() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestTranscribeMultipart(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		file, header, err := r.FormFile("audio")
		if err != nil {
			t.Errorf("FormFile(audio) error = %v", err)
			http.Error(w, "bad form", http.StatusBadRequest)
			return
		}
		defer file.Close()
		if header.Filename != "chunk.wav" {
			t.Errorf("filename = %q, want chunk.wav", header.Filename)
		}
		data, _ := io.ReadAll(file)
		if len(data) == 0 {
			t.Error("empty audio payload")
		}
		_, _ = io.WriteString(w, `{"text": "hello world"}`)
	}))
	defer srv.Close()

	c := New(srv.URL)
	text, err := c.Transcribe(context.Background(), []byte("RIFFfakewav"))
	if err != nil {
		t.Fatalf("Transcribe() error = %v", err)
	}
	if text != "hello world" {
		t.Errorf("text = %q, want %q", text, "hello world")
	}
}

func TestHealth(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{"status": "ok", "whisper": "available", "device": "cpu"}`)
	}))
	defer srv.Close()

	c := New(srv.URL)
	got, err := c.Health(context.Background())
	if err != nil {
		t.Fatalf("Health() error = %v", err)
	}
	want := types.ServerHealth{Status: "ok", Whisper: "available", Device: "cpu"}
	if got != want {
		t.Errorf("Health() = %+v, want %+v", got, want)
	}
}

func TestAutoSuggest(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{"suggestion": "ask about their timeline", "detected_type": "question"}`)
	}))
	defer srv.Close()

	c := New(srv.URL)
	got, err := c.AutoSuggest(context.Background(), AutoSuggestRequest{Transcript: "t", Screen: "s"})
	if err != nil {
		t.Fatalf("AutoSuggest() error = %v", err)
	}
	if got.Suggestion != "ask about their timeline" || got.DetectedType != "question" {
		t.Errorf("AutoSuggest() = %+v", got)
	}
}

func TestClearHistory(t *testing.T) {
	var gotBody string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		data, _ := io.ReadAll(r.Body)
		gotBody = string(data)
		_, _ = io.WriteString(w, `{"status": "cleared"}`)
	}))
	defer srv.Close()

	c := New(srv.URL)
	if err := c.ClearHistory(context.Background(), "session-42"); err != nil {
		t.Fatalf("ClearHistory() error = %v", err)
	}
	if gotBody != `{"session_id":"session-42"}` {
		t.Errorf("request body = %q", gotBody)
	}
}
