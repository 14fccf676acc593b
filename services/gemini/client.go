// Package gemini is a thin relay client for the Google generative
// language API. The backend forwards chat messages and returns the
// model's reply; no conversation state is kept server-side.
package gemini

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"
)

const (
	// GenerateBaseURL is the generative language API base URL
	GenerateBaseURL = "https://generativelanguage.googleapis.com/v1beta"
	// DefaultTimeout is longer for LLM inference requests
	DefaultTimeout = 60 * time.Second
	// DefaultModel is the default generation model
	DefaultModel = "gemini-1.5-flash"
)

// ErrMissingAPIKey is returned when no API key is configured
var ErrMissingAPIKey = errors.New("gemini api key is required")

// Client handles generateContent API calls
type Client struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
	model      string
}

// Config holds configuration for the Gemini client
type Config struct {
	APIKey  string
	BaseURL string
	Timeout time.Duration
	Model   string
}

// NewClient creates a new generative language client
func NewClient(config Config) (*Client, error) {
	if config.APIKey == "" {
		return nil, ErrMissingAPIKey
	}
	if config.BaseURL == "" {
		config.BaseURL = GenerateBaseURL
	}
	if config.Timeout == 0 {
		config.Timeout = DefaultTimeout
	}
	if config.Model == "" {
		config.Model = DefaultModel
	}

	return &Client{
		apiKey:  config.APIKey,
		baseURL: config.BaseURL,
		httpClient: &http.Client{
			Timeout: config.Timeout,
		},
		model: config.Model,
	}, nil
}

// Message is one turn of the conversation
type Message struct {
	Role string `json:"role"` // "user" or "model"
	Text string `json:"text"`
}

// part is a single content part in the wire format
type part struct {
	Text string `json:"text"`
}

// content is a role-tagged message in the wire format
type content struct {
	Role  string `json:"role,omitempty"`
	Parts []part `json:"parts"`
}

// generateRequest is the generateContent request body
type generateRequest struct {
	Contents []content `json:"contents"`
}

// generateResponse is the subset of the generateContent response we use
type generateResponse struct {
	Candidates []struct {
		Content      content `json:"content"`
		FinishReason string  `json:"finishReason"`
	} `json:"candidates"`
}

// GenerateContent relays the conversation and returns the model's reply text
func (c *Client) GenerateContent(ctx context.Context, messages []Message) (string, error) {
	req := generateRequest{}
	for _, m := range messages {
		role := m.Role
		if role != "model" {
			role = "user"
		}
		req.Contents = append(req.Contents, content{
			Role:  role,
			Parts: []part{{Text: m.Text}},
		})
	}

	payload, err := json.Marshal(req)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	url := fmt.Sprintf("%s/models/%s:generateContent?key=%s", c.baseURL, c.model, c.apiKey)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("generate content request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("generate content returned status %d: %s", resp.StatusCode, string(body))
	}

	var genResp generateResponse
	if err := json.Unmarshal(body, &genResp); err != nil {
		return "", fmt.Errorf("failed to decode response: %w", err)
	}

	if len(genResp.Candidates) == 0 || len(genResp.Candidates[0].Content.Parts) == 0 {
		return "", errors.New("generate content returned no candidates")
	}

	reply := ""
	for _, p := range genResp.Candidates[0].Content.Parts {
		reply += p.Text
	}
	return reply, nil
}
