// Package backend provides the HTTP client for the GhostAI server.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	"github.com/calehart/veil/internal/types"
)

// StreamError carries an error record delivered inside a chat stream.
type StreamError struct {
	Message string
}

func (e *StreamError) Error() string { return e.Message }

// Client talks to the GhostAI backend server.
type Client struct {
	baseURL string
	http    *http.Client
	// stream has no timeout: a chat completion may legitimately run long,
	// and the caller owns cancellation through the request context.
	stream *http.Client
}

// New creates a backend client for the given base URL.
func New(baseURL string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: 60 * time.Second},
		stream:  &http.Client{},
	}
}

// Health checks server availability and whisper/OCR readiness.
func (c *Client) Health(ctx context.Context) (types.ServerHealth, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/health", nil)
	if err != nil {
		return types.ServerHealth{}, fmt.Errorf("create request: %w", err)
	}

	var health types.ServerHealth
	if err := c.do(req, &health); err != nil {
		return types.ServerHealth{}, err
	}
	return health, nil
}

// ChatStreamRequest is the payload for a streaming chat completion.
type ChatStreamRequest struct {
	Message     string `json:"message"`
	SessionID   string `json:"session_id"`
	Personality string `json:"personality"`
}

// ChatStream sends a message and reassembles the streamed response.
// onUpdate receives every content fragment with the accumulated text, in
// receipt order. The returned string is the final accumulated text. A
// server-side error record is returned as *StreamError.
func (c *Client) ChatStream(ctx context.Context, req ChatStreamRequest, onUpdate func(fragment, accumulated string)) (string, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/stream", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "text/event-stream")

	resp, err := c.stream.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		data, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return "", fmt.Errorf("server error %d: %s", resp.StatusCode, data)
	}

	r := NewReassembler(onUpdate)
	buf := make([]byte, 4096)
	for {
		n, err := resp.Body.Read(buf)
		if n > 0 {
			r.Feed(buf[:n])
		}
		if err != nil {
			if !errors.Is(err, io.EOF) {
				return r.Text(), fmt.Errorf("read stream: %w", err)
			}
			break
		}
	}

	if msg := r.Err(); msg != "" {
		return r.Text(), &StreamError{Message: msg}
	}
	return r.Text(), nil
}

// ChatQuick performs a single-shot transform (summarize, translate,
// explain, code) on the given text.
func (c *Client) ChatQuick(ctx context.Context, action, text string) (string, error) {
	in := struct {
		Action string `json:"action"`
		Text   string `json:"text"`
	}{Action: action, Text: text}

	var out struct {
		Response string `json:"response"`
		Error    string `json:"error"`
	}
	if err := c.postJSON(ctx, "/chat/quick", in, &out); err != nil {
		return "", err
	}
	if out.Error != "" {
		return "", fmt.Errorf("quick action: %s", out.Error)
	}
	return out.Response, nil
}

// Transcribe sends a WAV payload for speech-to-text.
func (c *Client) Transcribe(ctx context.Context, wav []byte) (string, error) {
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	part, err := writer.CreateFormFile("audio", "chunk.wav")
	if err != nil {
		return "", fmt.Errorf("create form file: %w", err)
	}
	if _, err := part.Write(wav); err != nil {
		return "", fmt.Errorf("write audio data: %w", err)
	}
	if err := writer.Close(); err != nil {
		return "", fmt.Errorf("close multipart writer: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/transcribe", &buf)
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	var out struct {
		Text  string `json:"text"`
		Error string `json:"error"`
	}
	if err := c.do(req, &out); err != nil {
		return "", err
	}
	if out.Error != "" {
		return "", fmt.Errorf("transcribe: %s", out.Error)
	}
	return out.Text, nil
}

// OCRRequest asks the server to extract (and optionally analyze) text from
// a captured screen image.
type OCRRequest struct {
	Image   string `json:"image"` // data URL
	Analyze bool   `json:"analyze"`
	Prompt  string `json:"prompt,omitempty"`
}

// OCR extracts text from the given screen image.
func (c *Client) OCR(ctx context.Context, req OCRRequest) (types.ScreenAnalysis, error) {
	var out struct {
		Text     string `json:"text"`
		Analysis string `json:"analysis"`
		Error    string `json:"error"`
	}
	if err := c.postJSON(ctx, "/ocr", req, &out); err != nil {
		return types.ScreenAnalysis{}, err
	}
	if out.Error != "" {
		return types.ScreenAnalysis{}, fmt.Errorf("ocr: %s", out.Error)
	}
	return types.ScreenAnalysis{Text: out.Text, Analysis: out.Analysis}, nil
}

// AnalyzeContextRequest grounds a user question in the captured context.
type AnalyzeContextRequest struct {
	ScreenContext     string `json:"screen_context"`
	TranscriptContext string `json:"transcript_context"`
	Question          string `json:"question"`
	PlaybookName      string `json:"playbook_name"`
	PlaybookSystem    string `json:"playbook_system"`
	PlaybookContext   string `json:"playbook_context"`
}

// AnalyzeContext runs a grounded analysis over the captured context.
func (c *Client) AnalyzeContext(ctx context.Context, req AnalyzeContextRequest) (string, error) {
	var out struct {
		Analysis string `json:"analysis"`
		Error    string `json:"error"`
	}
	if err := c.postJSON(ctx, "/analyze-context", req, &out); err != nil {
		return "", err
	}
	if out.Error != "" {
		return "", fmt.Errorf("analyze context: %s", out.Error)
	}
	return out.Analysis, nil
}

// AutoSuggestRequest is the payload for the passive suggestion pass.
type AutoSuggestRequest struct {
	Transcript      string `json:"transcript"`
	Screen          string `json:"screen"`
	PlaybookName    string `json:"playbook_name"`
	PlaybookSystem  string `json:"playbook_system"`
	PlaybookContext string `json:"playbook_context"`
}

// AutoSuggestResult is the server's suggestion for the current context.
type AutoSuggestResult struct {
	Suggestion   string `json:"suggestion"`
	DetectedType string `json:"detected_type"`
}

// AutoSuggest asks the server for a proactive suggestion.
func (c *Client) AutoSuggest(ctx context.Context, req AutoSuggestRequest) (AutoSuggestResult, error) {
	var out struct {
		AutoSuggestResult
		Error string `json:"error"`
	}
	if err := c.postJSON(ctx, "/auto-suggest", req, &out); err != nil {
		return AutoSuggestResult{}, err
	}
	if out.Error != "" {
		return AutoSuggestResult{}, fmt.Errorf("auto suggest: %s", out.Error)
	}
	return out.AutoSuggestResult, nil
}

// ClearHistory drops the server-side conversation history for a session.
func (c *Client) ClearHistory(ctx context.Context, sessionID string) error {
	in := struct {
		SessionID string `json:"session_id"`
	}{SessionID: sessionID}

	var out struct {
		Status string `json:"status"`
	}
	return c.postJSON(ctx, "/history/clear", in, &out)
}

func (c *Client) postJSON(ctx context.Context, path string, in, out any) error {
	body, err := json.Marshal(in)
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	return c.do(req, out)
}

func (c *Client) do(req *http.Request, out any) error {
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("server error %d: %s", resp.StatusCode, data)
	}

	if out != nil {
		if err := json.Unmarshal(data, out); err != nil {
			return fmt.Errorf("parse response: %w", err)
		}
	}
	return nil
}
