package app

import (
	"context"
	"encoding/base64"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/calehart/veil/audiocapture"
	"github.com/calehart/veil/backend"
	"github.com/calehart/veil/internal/types"
	"github.com/calehart/veil/listen"
	"github.com/calehart/veil/playbook"
)

// ListenAdapter manages the passive listening service with proper
// synchronization. The underlying service is created on first use.
type ListenAdapter struct {
	mu        sync.Mutex
	svc       *listen.Service
	client    *backend.Client
	playbooks *playbook.Manager
	emit      func(name string, data any)
}

// NewListenAdapter creates a listening adapter.
func NewListenAdapter(client *backend.Client, playbooks *playbook.Manager, emit func(name string, data any)) *ListenAdapter {
	return &ListenAdapter{client: client, playbooks: playbooks, emit: emit}
}

// Start begins passive listening.
func (la *ListenAdapter) Start(ctx context.Context) error {
	la.mu.Lock()
	defer la.mu.Unlock()

	if la.svc == nil {
		svc, err := la.buildService()
		if err != nil {
			return err
		}
		la.svc = svc
	}

	if err := la.svc.Start(ctx); err != nil {
		return err
	}
	la.emit(EventListenStatus, la.svc.Status())
	return nil
}

// Stop ends passive listening.
func (la *ListenAdapter) Stop() error {
	la.mu.Lock()
	defer la.mu.Unlock()

	if la.svc == nil {
		return nil
	}
	err := la.svc.Stop()
	la.emit(EventListenStatus, la.svc.Status())
	return err
}

// IsListening reports whether passive listening is active.
func (la *ListenAdapter) IsListening() bool {
	la.mu.Lock()
	defer la.mu.Unlock()
	return la.svc != nil && la.svc.IsListening()
}

// Status returns the current listening status.
func (la *ListenAdapter) Status() types.ListenStatus {
	la.mu.Lock()
	defer la.mu.Unlock()
	if la.svc == nil {
		return types.ListenStatus{}
	}
	return la.svc.Status()
}

// Dismiss hides the suggestion card with the given id.
func (la *ListenAdapter) Dismiss(id uint64) {
	la.mu.Lock()
	svc := la.svc
	la.mu.Unlock()
	if svc != nil {
		svc.Dismiss(id)
	}
}

func (la *ListenAdapter) buildService() (*listen.Service, error) {
	capturer, err := audiocapture.New(audiocapture.DefaultSampleRate)
	if err != nil {
		return nil, fmt.Errorf("create audio capture: %w", err)
	}

	cfg := listen.DefaultConfig()
	cfg.Capture = capturer
	cfg.Context = la.playbooks
	cfg.Transcribe = func(ctx context.Context, wav []byte) (string, error) {
		return la.client.Transcribe(ctx, wav)
	}
	cfg.Suggest = func(ctx context.Context, transcript, screen string) (string, string, error) {
		pb := la.playbooks.Active()
		result, err := la.client.AutoSuggest(ctx, backend.AutoSuggestRequest{
			Transcript:      transcript,
			Screen:          screen,
			PlaybookName:    pb.Name,
			PlaybookSystem:  pb.SystemPrompt,
			PlaybookContext: pb.ContextPrompt,
		})
		if err != nil {
			return "", "", err
		}
		return result.Suggestion, result.DetectedType, nil
	}

	svc, err := listen.NewService(cfg)
	if err != nil {
		return nil, err
	}

	svc.OnTranscript(func(chunk, rolling string) {
		la.emit(EventTranscript, TranscriptUpdate{Chunk: chunk, Transcript: rolling})
	})
	svc.OnSuggestion(func(sg types.Suggestion) {
		la.emit(EventSuggestion, sg)
	})
	svc.OnDismiss(func(id uint64) {
		la.emit(EventSuggestionDismiss, id)
	})

	return svc, nil
}

// ─────────────────────────────────────────────────────────────────────────────
// Passive Listening
// ─────────────────────────────────────────────────────────────────────────────

// StartListening begins passive audio capture and transcription.
func (s *Service) StartListening() error {
	if err := s.listener.Start(context.Background()); err != nil {
		slog.Error("start listening", "error", err)
		s.notice("error", err.Error())
		return err
	}
	return nil
}

// StopListening ends passive audio capture.
func (s *Service) StopListening() error {
	return s.listener.Stop()
}

// ToggleListening flips the listening state.
func (s *Service) ToggleListening() error {
	if s.listener.IsListening() {
		return s.StopListening()
	}
	return s.StartListening()
}

// GetListenStatus returns the current listening status.
func (s *Service) GetListenStatus() types.ListenStatus {
	return s.listener.Status()
}

// DismissSuggestion hides a suggestion card.
func (s *Service) DismissSuggestion(id uint64) {
	s.listener.Dismiss(id)
}

// TranscribeAudio transcribes a user-recorded audio clip (base64 WAV) for
// the input field. Whitespace-only results are reported, not inserted.
func (s *Service) TranscribeAudio(encoded string) (string, error) {
	wav, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return "", fmt.Errorf("decode audio: %w", err)
	}

	text, err := s.client.Transcribe(context.Background(), wav)
	if err != nil {
		slog.Error("transcribe clip", "error", err)
		return "", fmt.Errorf("transcribe: %w", err)
	}

	text = strings.TrimSpace(text)
	if text == "" {
		s.notice("info", "no speech detected")
		return "", nil
	}
	return text, nil
}
