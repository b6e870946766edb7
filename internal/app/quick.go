package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/calehart/veil/cache"
	"github.com/calehart/veil/clipboard"
	"github.com/calehart/veil/internal/types"
	"github.com/calehart/veil/langdetect"
)

// quickActions are the transforms the server's /chat/quick endpoint knows.
var quickActions = map[string]bool{
	"summarize": true,
	"translate": true,
	"explain":   true,
	"code":      true,
}

// QuickAction applies a single-shot transform to the current clipboard
// text. Empty clipboard is a no-op with an informational message.
func (s *Service) QuickAction(action string) (types.QuickActionResult, error) {
	if !quickActions[action] {
		return types.QuickActionResult{}, fmt.Errorf("unknown quick action %q", action)
	}

	text, err := clipboard.GetText(s.app)
	if err != nil {
		slog.Error("read clipboard", "error", err)
		return types.QuickActionResult{}, fmt.Errorf("read clipboard: %w", err)
	}
	text = strings.TrimSpace(text)
	if text == "" {
		s.notice("info", "clipboard is empty; copy some text first")
		return types.QuickActionResult{}, errors.New("clipboard is empty")
	}

	result := types.QuickActionResult{Action: action}
	if action == "translate" {
		code, name := langdetect.Detect(text)
		if code != "auto" {
			result.SourceLang = name
		}
	}

	key := cache.GenerateKey("quick", action, text)
	if s.cache != nil {
		if entry, found := s.cache.Get(key); found {
			result.Response = entry.Response
			result.CacheHit = true
			return result, nil
		}
	}

	response, err := s.client.ChatQuick(context.Background(), action, text)
	if err != nil {
		slog.Error("quick action", "action", action, "error", err)
		return types.QuickActionResult{}, fmt.Errorf("quick action: %w", err)
	}

	if s.cache != nil {
		// Best effort.
		_ = s.cache.Set(key, &cache.Entry{Response: response, CreatedAt: time.Now()}, cache.DefaultTTL)
	}

	result.Response = response
	return result, nil
}

// CopyToClipboard writes text to the system clipboard.
func (s *Service) CopyToClipboard(text string) error {
	if err := clipboard.SetText(s.app, text); err != nil {
		slog.Error("write clipboard", "error", err)
		return err
	}
	return nil
}
