// Package listen implements passive audio capture with rolling
// transcription and periodic auto-suggestion analysis.
package listen

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/calehart/veil/audiocapture"
	"github.com/calehart/veil/internal/types"
	"github.com/calehart/veil/playbook"
)

// TranscribeFunc converts a WAV payload to text.
type TranscribeFunc func(ctx context.Context, wav []byte) (string, error)

// SuggestFunc analyzes the accumulated context and returns a suggestion
// with a detected category (question, code, action, other).
type SuggestFunc func(ctx context.Context, transcript, screen string) (text, detectedType string, err error)

// Config holds configuration for the listening service.
type Config struct {
	Capture    audiocapture.Capturer
	Transcribe TranscribeFunc
	Suggest    SuggestFunc
	Context    *playbook.Manager

	PollInterval    time.Duration // drain/transcribe period
	SuggestInterval time.Duration // auto-suggest period, also the debounce floor
	DismissAfter    time.Duration // suggestion card lifetime

	MinBatchSamples   int // batches below this are dropped as near-silence
	MinChunkRunes     int // transcription results below this are discarded
	MinSuggestContext int // combined context below this skips analysis
	MinSuggestionLen  int // suggestions below this are not shown
}

// DefaultConfig returns the default listening configuration.
func DefaultConfig() Config {
	return Config{
		PollInterval:      3 * time.Second,
		SuggestInterval:   15 * time.Second,
		DismissAfter:      30 * time.Second,
		MinBatchSamples:   audiocapture.DefaultSampleRate / 2, // half a second
		MinChunkRunes:     2,
		MinSuggestContext: 50,
		MinSuggestionLen:  10,
	}
}

// Service runs the passive listening loop. States are Idle and Listening;
// Start and Stop move between them. All buffers are cleared on Stop and
// results of in-flight work arriving after Stop are discarded.
type Service struct {
	cfg Config

	mu         sync.Mutex
	running    bool
	generation uint64 // bumped on Start and Stop; stale completions check it
	startTime  time.Time

	pending    []float32
	rolling    string
	chunkCount int

	lastAnalyzed  string
	lastSuggestAt time.Time
	suggestSeq    uint64
	activeCard    uint64 // 0 when no suggestion card is visible
	dismissTimer  *time.Timer

	ctx    context.Context
	cancel context.CancelFunc
	done   chan struct{}

	onTranscript func(chunk, rolling string)
	onSuggestion func(types.Suggestion)
	onDismiss    func(id uint64)
}

// NewService creates a listening service. cfg.Capture, cfg.Transcribe and
// cfg.Context are required; cfg.Suggest may be nil to disable suggestions.
func NewService(cfg Config) (*Service, error) {
	if cfg.Capture == nil {
		return nil, errors.New("no audio capturer")
	}
	if cfg.Transcribe == nil {
		return nil, errors.New("no transcribe func")
	}
	if cfg.Context == nil {
		return nil, errors.New("no context manager")
	}

	def := DefaultConfig()
	if cfg.PollInterval == 0 {
		cfg.PollInterval = def.PollInterval
	}
	if cfg.SuggestInterval == 0 {
		cfg.SuggestInterval = def.SuggestInterval
	}
	if cfg.DismissAfter == 0 {
		cfg.DismissAfter = def.DismissAfter
	}
	if cfg.MinBatchSamples == 0 {
		cfg.MinBatchSamples = def.MinBatchSamples
	}
	if cfg.MinChunkRunes == 0 {
		cfg.MinChunkRunes = def.MinChunkRunes
	}
	if cfg.MinSuggestContext == 0 {
		cfg.MinSuggestContext = def.MinSuggestContext
	}
	if cfg.MinSuggestionLen == 0 {
		cfg.MinSuggestionLen = def.MinSuggestionLen
	}

	return &Service{cfg: cfg}, nil
}

// OnTranscript registers a callback fired for every accepted transcription
// chunk with the updated rolling transcript.
func (s *Service) OnTranscript(fn func(chunk, rolling string)) { s.onTranscript = fn }

// OnSuggestion registers a callback fired when a suggestion card appears.
func (s *Service) OnSuggestion(fn func(types.Suggestion)) { s.onSuggestion = fn }

// OnDismiss registers a callback fired when a suggestion card goes away,
// either by timeout or because listening stopped.
func (s *Service) OnDismiss(fn func(id uint64)) { s.onDismiss = fn }

// Start moves the service from Idle to Listening. Permission failures are
// terminal for this attempt and leave the service Idle.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		return errors.New("already listening")
	}

	if err := s.cfg.Capture.Start(s.handleAudio); err != nil {
		switch {
		case errors.Is(err, audiocapture.ErrPermissionDenied):
			return fmt.Errorf("audio capture permission was denied: %w", err)
		case errors.Is(err, audiocapture.ErrDeviceNotFound):
			return fmt.Errorf("no audio source is available: %w", err)
		default:
			return fmt.Errorf("start audio capture: %w", err)
		}
	}

	s.ctx, s.cancel = context.WithCancel(ctx)
	s.generation++
	s.running = true
	s.startTime = time.Now()
	s.done = make(chan struct{})

	go s.run(s.generation, s.done)

	slog.Info("listening started")
	return nil
}

// Stop moves the service to Idle: timers are cancelled, the audio source
// released, all accumulated buffers cleared and the rolling transcript
// reset. A visible suggestion card is force-dismissed.
func (s *Service) Stop() error {
	s.mu.Lock()

	if !s.running {
		s.mu.Unlock()
		return nil
	}

	s.running = false
	s.generation++
	s.cancel()
	close(s.done)

	s.pending = nil
	s.rolling = ""
	s.chunkCount = 0
	s.lastAnalyzed = ""
	s.lastSuggestAt = time.Time{}

	if s.dismissTimer != nil {
		s.dismissTimer.Stop()
		s.dismissTimer = nil
	}
	card := s.activeCard
	s.activeCard = 0

	started := s.startTime
	s.mu.Unlock()

	if card != 0 && s.onDismiss != nil {
		s.onDismiss(card)
	}

	if err := s.cfg.Capture.Stop(); err != nil {
		slog.Error("stop audio capture", "error", err)
	}

	slog.Info("listening stopped", "duration", time.Since(started))
	return nil
}

// IsListening reports whether the service is in the Listening state.
func (s *Service) IsListening() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}

// Status returns the current listening status.
func (s *Service) Status() types.ListenStatus {
	s.mu.Lock()
	defer s.mu.Unlock()

	st := types.ListenStatus{Active: s.running}
	if s.running {
		st.Duration = int64(time.Since(s.startTime).Seconds())
		st.ChunkCount = s.chunkCount
		st.Transcript = s.rolling
	}
	return st
}

// handleAudio accumulates captured samples until the next poll drain.
func (s *Service) handleAudio(samples []float32) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.running {
		return
	}
	s.pending = append(s.pending, samples...)
}

// run drives the poll and suggest timers until Stop.
func (s *Service) run(gen uint64, done chan struct{}) {
	poll := time.NewTicker(s.cfg.PollInterval)
	defer poll.Stop()
	suggest := time.NewTicker(s.cfg.SuggestInterval)
	defer suggest.Stop()

	for {
		select {
		case <-done:
			return
		case <-poll.C:
			s.pollTick(gen)
		case <-suggest.C:
			go s.suggestTick(gen)
		}
	}
}

// pollTick drains accumulated samples and submits them for transcription.
// A failure is logged and the tick becomes a no-op; the loop never halts
// on a single failure.
func (s *Service) pollTick(gen uint64) {
	s.mu.Lock()
	if !s.running || s.generation != gen {
		s.mu.Unlock()
		return
	}
	// Swap the queue so the next tick cannot re-send drained samples.
	batch := s.pending
	s.pending = nil
	ctx := s.ctx
	s.mu.Unlock()

	if len(batch) == 0 {
		return
	}
	if len(batch) < s.cfg.MinBatchSamples {
		// Near-silent fragment, not worth a round trip.
		return
	}

	wav := audiocapture.EncodeWAV(batch, s.cfg.Capture.SampleRate())
	text, err := s.cfg.Transcribe(ctx, wav)
	if err != nil {
		slog.Error("transcribe batch", "error", err)
		return
	}

	text = strings.TrimSpace(text)
	if utf8.RuneCountInString(text) < s.cfg.MinChunkRunes {
		return
	}

	s.mu.Lock()
	// Discard results that complete after Stop or after a restart.
	if !s.running || s.generation != gen {
		s.mu.Unlock()
		return
	}
	if s.rolling == "" {
		s.rolling = text
	} else {
		s.rolling += " " + text
	}
	s.chunkCount++
	rolling := s.rolling
	s.mu.Unlock()

	s.cfg.Context.AppendTranscript(text)

	if s.onTranscript != nil {
		s.onTranscript(text, rolling)
	}
}

// suggestTick runs one auto-suggest analysis pass over the accumulated
// context, debounced against unchanged content and recent suggestions.
func (s *Service) suggestTick(gen uint64) {
	if s.cfg.Suggest == nil {
		return
	}

	snap := s.cfg.Context.Snapshot()
	combined := snap.TranscriptContext + "\n" + snap.ScreenContext

	s.mu.Lock()
	if !s.running || s.generation != gen {
		s.mu.Unlock()
		return
	}
	if len(snap.TranscriptContext)+len(snap.ScreenContext) < s.cfg.MinSuggestContext {
		s.mu.Unlock()
		return
	}
	if combined == s.lastAnalyzed {
		s.mu.Unlock()
		return
	}
	// Floor between suggestions, independent of the timer period.
	if !s.lastSuggestAt.IsZero() && time.Since(s.lastSuggestAt) < s.cfg.SuggestInterval {
		s.mu.Unlock()
		return
	}
	s.lastAnalyzed = combined
	ctx := s.ctx
	s.mu.Unlock()

	text, detected, err := s.cfg.Suggest(ctx, snap.TranscriptContext, snap.ScreenContext)
	if err != nil {
		slog.Error("auto suggest", "error", err)
		return
	}

	text = strings.TrimSpace(text)
	if len(text) < s.cfg.MinSuggestionLen {
		return
	}
	if detected == "" {
		detected = "other"
	}

	s.mu.Lock()
	if !s.running || s.generation != gen {
		s.mu.Unlock()
		return
	}
	s.lastSuggestAt = time.Now()
	s.suggestSeq++
	id := s.suggestSeq
	s.activeCard = id

	if s.dismissTimer != nil {
		s.dismissTimer.Stop()
	}
	s.dismissTimer = time.AfterFunc(s.cfg.DismissAfter, func() {
		s.dismiss(id)
	})
	s.mu.Unlock()

	if s.onSuggestion != nil {
		s.onSuggestion(types.Suggestion{ID: id, Text: text, DetectedType: detected})
	}
}

// Dismiss hides the suggestion card with the given id, if still visible.
func (s *Service) Dismiss(id uint64) { s.dismiss(id) }

func (s *Service) dismiss(id uint64) {
	s.mu.Lock()
	if s.activeCard != id {
		s.mu.Unlock()
		return
	}
	s.activeCard = 0
	s.mu.Unlock()

	if s.onDismiss != nil {
		s.onDismiss(id)
	}
}
