package app

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/calehart/veil/backend"
	"github.com/calehart/veil/cache"
	"github.com/calehart/veil/internal/types"
	"github.com/calehart/veil/screenshot"
)

// CaptureScreenAndAnalyze captures the primary screen behind the overlay,
// sends it for OCR (optionally with an analysis prompt) and replaces the
// screen context with the recognized text.
func (s *Service) CaptureScreenAndAnalyze(analyze bool, prompt string) (types.ScreenAnalysis, error) {
	// Hide the overlay so it does not capture itself.
	s.HideWindow()
	time.Sleep(100 * time.Millisecond)
	defer s.ShowWindow()

	if !screenshot.HasPermission() {
		screenshot.RequestPermission()
		s.notice("error", "screen recording permission required")
		return types.ScreenAnalysis{}, fmt.Errorf("screen recording permission required")
	}

	imagePath, err := screenshot.CapturePrimary()
	if err != nil {
		return types.ScreenAnalysis{}, fmt.Errorf("capture screen: %w", err)
	}
	defer os.Remove(imagePath)

	dataURL, err := screenshot.DataURL(imagePath)
	if err != nil {
		return types.ScreenAnalysis{}, err
	}

	result, err := s.ocrCached(dataURL, analyze, prompt)
	if err != nil {
		slog.Error("ocr screen", "error", err)
		return types.ScreenAnalysis{}, fmt.Errorf("ocr screen: %w", err)
	}

	if result.Text != "" {
		s.playbooks.SetScreenContext(result.Text)
		s.emit(EventScreenContext, s.playbooks.Snapshot())
	} else {
		s.notice("info", "no text detected on screen")
	}
	return result, nil
}

// ocrCached runs plain OCR through the response cache. Identical captures
// are common when the screen is static between hotkey presses. Analysis
// requests bypass the cache; their answers depend on the prompt context.
func (s *Service) ocrCached(dataURL string, analyze bool, prompt string) (types.ScreenAnalysis, error) {
	key := cache.GenerateKey("ocr", dataURL)
	if s.cache != nil && !analyze {
		if entry, found := s.cache.Get(key); found {
			return types.ScreenAnalysis{Text: entry.Response}, nil
		}
	}

	result, err := s.client.OCR(context.Background(), backend.OCRRequest{
		Image:   dataURL,
		Analyze: analyze,
		Prompt:  prompt,
	})
	if err != nil {
		return types.ScreenAnalysis{}, err
	}

	if s.cache != nil && !analyze && result.Text != "" {
		_ = s.cache.Set(key, &cache.Entry{Response: result.Text, CreatedAt: time.Now()}, cache.DefaultTTL)
	}
	return result, nil
}

// GetScreenRecordingPermission reports whether screen capture is allowed.
func (s *Service) GetScreenRecordingPermission() bool {
	return screenshot.HasPermission()
}

// RequestScreenRecordingPermission shows the system permission prompt.
func (s *Service) RequestScreenRecordingPermission() {
	screenshot.RequestPermission()
}
