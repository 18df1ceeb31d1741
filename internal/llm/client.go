// Package llm is the OpenAI-compatible chat-completions client used for
// structured mindmap transformation, chat, and embeddings.
package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strings"
	"time"
)

// DefaultBaseURL is the OpenAI API endpoint.
const DefaultBaseURL = "https://api.openai.com/v1"

const maxCompletionTokens = 32000

// Client calls an OpenAI-compatible API.
type Client struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
	stats      *Stats
}

// NewClient creates a client with a bounded per-call wait: requests fail
// after timeout rather than hanging.
func NewClient(apiKey, baseURL string, timeout time.Duration) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if timeout <= 0 {
		timeout = 5 * time.Minute
	}
	return &Client{
		apiKey:  apiKey,
		baseURL: strings.TrimSuffix(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: timeout,
		},
		stats: NewStats(time.Hour),
	}
}

// Message is a chat turn.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model          string          `json:"model"`
	MaxTokens      int             `json:"max_tokens,omitempty"`
	Messages       []Message       `json:"messages"`
	ResponseFormat json.RawMessage `json:"response_format,omitempty"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Error *apiErrorBody `json:"error"`
}

type apiErrorBody struct {
	Type    string `json:"type"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

// APIError is a non-2xx or in-body error from the API.
type APIError struct {
	StatusCode int
	Type       string
	Code       string
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("llm api error (status %d, type %s): %s", e.StatusCode, e.Type, truncate(e.Message, 200))
}

// CompleteStructured issues a structured-output call: system prompt + user
// message + JSON schema in, raw schema-shaped JSON out. The caller decodes
// and validates.
func (c *Client) CompleteStructured(ctx context.Context, model, system, user string, schema json.RawMessage) (json.RawMessage, error) {
	format, err := json.Marshal(map[string]any{
		"type": "json_schema",
		"json_schema": map[string]any{
			"name":   "mindmap",
			"strict": true,
			"schema": schema,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("marshal response format: %w", err)
	}

	text, err := c.chat(ctx, chatRequest{
		Model:     model,
		MaxTokens: maxCompletionTokens,
		Messages: []Message{
			{Role: "system", Content: system},
			{Role: "user", Content: user},
		},
		ResponseFormat: format,
	})
	if err != nil {
		return nil, err
	}
	return json.RawMessage(stripCodeBlock(text)), nil
}

// Complete issues a plain chat completion.
func (c *Client) Complete(ctx context.Context, model string, messages []Message) (string, error) {
	return c.chat(ctx, chatRequest{
		Model:    model,
		Messages: messages,
	})
}

func (c *Client) chat(ctx context.Context, req chatRequest) (text string, err error) {
	op := OpChat
	if req.ResponseFormat != nil {
		op = OpStructured
	}
	start := time.Now()
	defer func() {
		c.stats.Record(op, req.Model, time.Since(start), err)
	}()

	body, err := json.Marshal(req)
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	respBody, status, err := c.post(ctx, "/chat/completions", body)
	if err != nil {
		return "", err
	}

	var apiResp chatResponse
	if err := json.Unmarshal(respBody, &apiResp); err != nil {
		return "", fmt.Errorf("decode response: %w", err)
	}
	if apiResp.Error != nil {
		return "", &APIError{StatusCode: status, Type: apiResp.Error.Type, Code: apiResp.Error.Code, Message: apiResp.Error.Message}
	}
	if status != http.StatusOK {
		return "", &APIError{StatusCode: status, Message: string(respBody)}
	}
	if len(apiResp.Choices) == 0 {
		return "", fmt.Errorf("empty response from llm")
	}

	return apiResp.Choices[0].Message.Content, nil
}

func (c *Client) post(ctx context.Context, path string, body []byte) ([]byte, int, error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return nil, 0, fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, 0, fmt.Errorf("llm api: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, 16<<20))
	if err != nil {
		return nil, 0, fmt.Errorf("read response: %w", err)
	}
	return respBody, resp.StatusCode, nil
}

// IsCapacityError reports whether err is a token/context-capacity failure
// worth one retry against a larger-context model. Provider error strings
// are fragile, so the matching lives here and nowhere else.
func IsCapacityError(err error) bool {
	if err == nil {
		return false
	}

	msg := strings.ToLower(err.Error())
	for _, marker := range []string{
		"maximum context",
		"request too large",
		"tokens per min",
		"tpm",
		"token",
		"context",
		"length",
	} {
		if strings.Contains(msg, marker) {
			return true
		}
	}

	var apiErr *APIError
	if errors.As(err, &apiErr) {
		typ := strings.ToLower(apiErr.Type)
		if strings.Contains(typ, "rate_limit") && strings.Contains(msg, "token") {
			return true
		}
	}
	return false
}

// IsCapacityError reports whether err is a token/context-capacity failure.
func (c *Client) IsCapacityError(err error) bool {
	return IsCapacityError(err)
}

// Stats exposes the client's rolling latency window.
func (c *Client) Stats() *Stats {
	return c.stats
}

// Close releases resources.
func (c *Client) Close() {
	c.httpClient.CloseIdleConnections()
}

var codeBlockRe = regexp.MustCompile("(?s)^```(?:json)?\\s*(.*?)\\s*```$")

// stripCodeBlock removes a markdown fence some models wrap JSON in.
func stripCodeBlock(s string) string {
	s = strings.TrimSpace(s)
	if m := codeBlockRe.FindStringSubmatch(s); len(m) > 1 {
		return m[1]
	}
	return s
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
