package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/calehart/veil/backend"
	"github.com/calehart/veil/internal/types"
)

// SendMessage starts a streaming chat completion. Fragments arrive as
// chat-delta events; the returned error only covers request validation.
// Starting a new message supersedes the previous stream at the display
// layer: its network request is not cancelled, but its remaining deltas
// are dropped.
func (s *Service) SendMessage(message string) error {
	message = strings.TrimSpace(message)
	if message == "" {
		return errors.New("empty message")
	}

	id := s.chatGen.Add(1)

	go func() {
		req := backend.ChatStreamRequest{
			Message:     message,
			SessionID:   s.sessionID,
			Personality: s.cfg.Settings.Personality,
		}

		text, err := s.client.ChatStream(context.Background(), req, func(fragment, accumulated string) {
			if s.chatGen.Load() != id {
				return
			}
			s.emit(EventChatDelta, types.ChatDelta{
				RequestID: id,
				Content:   fragment,
				Text:      accumulated,
			})
		})

		if s.chatGen.Load() != id {
			return
		}

		delta := types.ChatDelta{RequestID: id, Text: text, Done: true}
		if err != nil {
			slog.Error("chat stream", "error", err)
			var streamErr *backend.StreamError
			if errors.As(err, &streamErr) {
				// A server error record replaces the displayed content.
				delta.Text = ""
				delta.Error = streamErr.Message
			} else {
				delta.Error = err.Error()
			}
		}
		s.emit(EventChatDelta, delta)
	}()

	return nil
}

// AnalyzeContext asks the backend to answer a question grounded in the
// captured screen and transcript context, framed by the active playbook.
func (s *Service) AnalyzeContext(question string) (string, error) {
	if !s.playbooks.HasContext() {
		s.notice("info", "no captured context yet; capture the screen or start listening first")
		return "", errors.New("no context captured")
	}

	snap := s.playbooks.Snapshot()
	pb := s.playbooks.Active()

	analysis, err := s.client.AnalyzeContext(context.Background(), backend.AnalyzeContextRequest{
		ScreenContext:     snap.ScreenContext,
		TranscriptContext: snap.TranscriptContext,
		Question:          question,
		PlaybookName:      pb.Name,
		PlaybookSystem:    pb.SystemPrompt,
		PlaybookContext:   pb.ContextPrompt,
	})
	if err != nil {
		slog.Error("analyze context", "error", err)
		return "", fmt.Errorf("analyze context: %w", err)
	}
	return analysis, nil
}

// ClearHistory drops the server-side conversation history for this session.
func (s *Service) ClearHistory() error {
	if err := s.client.ClearHistory(context.Background(), s.sessionID); err != nil {
		slog.Error("clear history", "error", err)
		return err
	}
	s.notice("info", "conversation history cleared")
	return nil
}
