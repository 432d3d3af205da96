package engine

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	apierrors "llamachat/internal/errors"
)

// Endpoints of the Ollama HTTP API
const (
	EndpointChat    = "/api/chat"
	EndpointTags    = "/api/tags"
	EndpointShow    = "/api/show"
	EndpointVersion = "/api/version"
)

// DefaultBaseURL is the address of a local Ollama server
const DefaultBaseURL = "http://localhost:11434"

// maxErrorBody caps how much of an error response is kept for diagnostics
const maxErrorBody = 4096

// Client talks to an Ollama server. The zero http.Client timeout is
// deliberate for Generate: a streaming response stays open for the whole
// generation and is bounded by the request context instead.
type Client struct {
	baseURL    string
	model      string
	sampling   map[string]any
	httpClient *http.Client
	logger     *zap.Logger
}

// Ensure Client implements Engine
var _ Engine = (*Client)(nil)

// ClientOption is a function that configures the client
type ClientOption func(*Client)

// WithBaseURL sets the server address
func WithBaseURL(baseURL string) ClientOption {
	return func(c *Client) {
		c.baseURL = strings.TrimRight(baseURL, "/")
	}
}

// WithModel sets the default model for the client
func WithModel(model string) ClientOption {
	return func(c *Client) {
		c.model = model
	}
}

// WithSampling sets the sampling options forwarded with every request
// (temperature, top_p, num_predict and friends)
func WithSampling(opts map[string]any) ClientOption {
	return func(c *Client) {
		c.sampling = opts
	}
}

// WithHTTPClient replaces the underlying HTTP client
func WithHTTPClient(httpClient *http.Client) ClientOption {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

// WithLogger sets the logger used for request diagnostics
func WithLogger(logger *zap.Logger) ClientOption {
	return func(c *Client) {
		c.logger = logger
	}
}

// NewClient creates a new Client
func NewClient(opts ...ClientOption) *Client {
	client := &Client{
		baseURL:    DefaultBaseURL,
		httpClient: &http.Client{},
		logger:     zap.NewNop(),
	}

	for _, opt := range opts {
		opt(client)
	}

	return client
}

// Model returns the client's default model
func (c *Client) Model() string {
	return c.model
}

// BaseURL returns the server address the client talks to
func (c *Client) BaseURL() string {
	return c.baseURL
}

// chatMessage is one wire message of the chat endpoint
type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// chatRequest is the body of POST /api/chat
type chatRequest struct {
	Model    string         `json:"model"`
	Messages []chatMessage  `json:"messages"`
	Stream   bool           `json:"stream"`
	Options  map[string]any `json:"options,omitempty"`
}

// chatChunk is one NDJSON line of a streaming chat response. The counter
// fields are only present on the final chunk (done true).
type chatChunk struct {
	Model     string      `json:"model"`
	CreatedAt string      `json:"created_at"`
	Message   chatMessage `json:"message"`
	Done      bool        `json:"done"`
	Error     string      `json:"error"`

	TotalDurationNs      int64 `json:"total_duration"`
	LoadDurationNs       int64 `json:"load_duration"`
	PromptEvalCount      int   `json:"prompt_eval_count"`
	PromptEvalDurationNs int64 `json:"prompt_eval_duration"`
	EvalCount            int   `json:"eval_count"`
	EvalDurationNs       int64 `json:"eval_duration"`
}

// stats converts the final chunk's counters into a Stats summary
func (ch *chatChunk) stats() Stats {
	s := Stats{
		PromptTokens:  ch.PromptEvalCount,
		OutputTokens:  ch.EvalCount,
		TotalDuration: time.Duration(ch.TotalDurationNs),
	}
	if ch.EvalDurationNs > 0 {
		s.TokensPerSec = float64(ch.EvalCount) / (float64(ch.EvalDurationNs) / float64(time.Second))
	}
	if ch.PromptEvalDurationNs > 0 {
		s.PromptTokensPerSec = float64(ch.PromptEvalCount) / (float64(ch.PromptEvalDurationNs) / float64(time.Second))
	}
	return s
}

// Generate starts a streaming chat request and returns its event channel
func (c *Client) Generate(ctx context.Context, req Request) <-chan Event {
	events := make(chan Event)
	go c.generate(ctx, req, events)
	return events
}

// emit delivers an event unless the request context is already gone
func emit(ctx context.Context, out chan<- Event, ev Event) bool {
	select {
	case out <- ev:
		return true
	case <-ctx.Done():
		return false
	}
}

func (c *Client) generate(ctx context.Context, req Request, events chan<- Event) {
	defer close(events)

	if c.model == "" {
		emit(ctx, events, ErrorEvent(apierrors.NewModelError("", "no model configured")))
		return
	}

	messages := make([]chatMessage, 0, len(req.History)+2)
	if req.System != "" {
		messages = append(messages, chatMessage{Role: string(RoleSystem), Content: req.System})
	}
	for _, turn := range req.History {
		messages = append(messages, chatMessage{Role: string(turn.Role), Content: turn.Content})
	}
	messages = append(messages, chatMessage{Role: string(RoleUser), Content: req.Prompt})

	payload, err := json.Marshal(chatRequest{
		Model:    c.model,
		Messages: messages,
		Stream:   true,
		Options:  c.sampling,
	})
	if err != nil {
		emit(ctx, events, ErrorEvent(fmt.Errorf("failed to build request: %w", err)))
		return
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+EndpointChat, bytes.NewReader(payload))
	if err != nil {
		emit(ctx, events, ErrorEvent(fmt.Errorf("failed to create request: %w", err)))
		return
	}
	httpReq.Header.Set("Content-Type", "application/json")

	started := time.Now()
	c.logger.Debug("generate request",
		zap.String("model", c.model),
		zap.Int("messages", len(messages)))

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		emit(ctx, events, ErrorEvent(c.transportError("generate", EndpointChat, err)))
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		emit(ctx, events, ErrorEvent(c.statusError(resp, EndpointChat, "generate failed")))
		return
	}

	scanner := bufio.NewScanner(resp.Body)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	for scanner.Scan() {
		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 {
			continue
		}

		var chunk chatChunk
		if err := json.Unmarshal(line, &chunk); err != nil {
			emit(ctx, events, ErrorEvent(apierrors.NewParseError("malformed stream chunk: "+err.Error(), EndpointChat)))
			return
		}

		if chunk.Error != "" {
			emit(ctx, events, ErrorEvent(apierrors.NewAPIError(0, EndpointChat, chunk.Error)))
			return
		}

		if chunk.Message.Content != "" {
			if !emit(ctx, events, TokensEvent(chunk.Message.Content)) {
				return
			}
		}

		if chunk.Done {
			stats := chunk.stats()
			c.logger.Debug("generate complete",
				zap.Int("output_tokens", stats.OutputTokens),
				zap.Float64("tokens_per_sec", stats.TokensPerSec),
				zap.Duration("elapsed", time.Since(started)))
			if stats.OutputTokens > 0 || stats.PromptTokens > 0 {
				if !emit(ctx, events, StatsEvent(stats)) {
					return
				}
			}
			emit(ctx, events, DoneEvent())
			return
		}
	}

	if err := scanner.Err(); err != nil {
		emit(ctx, events, ErrorEvent(c.transportError("generate", EndpointChat, err)))
		return
	}

	// Stream ended without a done chunk
	emit(ctx, events, ErrorEvent(apierrors.NewParseError("stream ended before completion", EndpointChat)))
}

// transportError maps a transport failure to the error taxonomy. A plain
// cancellation stays a cancellation so callers can tell it from a real fault.
func (c *Client) transportError(op, endpoint string, err error) error {
	switch {
	case errors.Is(err, context.Canceled):
		return context.Canceled
	case apierrors.IsTimeout(err):
		return apierrors.NewTimeoutError(endpoint, err)
	default:
		return apierrors.NewNetworkError(op, endpoint, err)
	}
}

// statusError maps a non-200 response to the error taxonomy, keeping a
// capped copy of the body for diagnostics
func (c *Client) statusError(resp *http.Response, endpoint, message string) error {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))

	// Ollama reports unknown models as 404 {"error":"model ... not found"}
	if resp.StatusCode == http.StatusNotFound {
		var payload struct {
			Error string `json:"error"`
		}
		if json.Unmarshal(body, &payload) == nil && strings.Contains(payload.Error, "not found") {
			return apierrors.NewModelError(c.model, payload.Error)
		}
	}

	return apierrors.NewAPIErrorWithBody(resp.StatusCode, endpoint, message, string(body))
}
