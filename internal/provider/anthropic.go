package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"

	"github.com/tristan-mcinnis/ppt-translator/internal/types"
)

const (
	// anthropicVersion is the required anthropic-version header value.
	anthropicVersion = "2023-06-01"
	// anthropicMaxTokens bounds one translated reply.
	anthropicMaxTokens = 4096
	// messagesPath is appended to base URLs that do not carry it
	messagesPath = "/v1/messages"
)

// anthropicClient talks to Anthropic's Messages API. The wire format and the
// authentication headers differ from the chat completions shape the other
// HTTP providers share, so it carries its own request and response types.
type anthropicClient struct {
	model  string
	apiKey string
	apiURL string
	client *http.Client
}

func newAnthropicClient(opts Options, defaultBaseURL string) (*anthropicClient, error) {
	baseURL := opts.BaseURL
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	return &anthropicClient{
		model:  opts.Model,
		apiKey: opts.APIKey,
		apiURL: normalizeMessagesURL(baseURL),
		client: &http.Client{Timeout: DefaultTimeout},
	}, nil
}

// normalizeMessagesURL ensures the endpoint URL ends with /v1/messages.
func normalizeMessagesURL(url string) string {
	url = strings.TrimSuffix(url, "/")
	if strings.HasSuffix(url, messagesPath) {
		return url
	}
	return url + messagesPath
}

func (c *anthropicClient) Name() string { return "anthropic" }

// MessagesRequest is the request body for the Messages API.
type MessagesRequest struct {
	Model       string    `json:"model"`
	MaxTokens   int       `json:"max_tokens"`
	Temperature float64   `json:"temperature"`
	System      string    `json:"system"`
	Messages    []Message `json:"messages"`
}

// MessagesResponse is the response from the Messages API.
type MessagesResponse struct {
	ID      string         `json:"id"`
	Model   string         `json:"model"`
	Content []ContentBlock `json:"content"`
	Error   *APIError      `json:"error,omitempty"`
}

// ContentBlock is one block of a Messages API reply.
type ContentBlock struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

// Translate sends one Messages API request, retrying on transient errors.
func (c *anthropicClient) Translate(ctx context.Context, text, sourceLang, targetLang string) (string, error) {
	return translateWithRetries(ctx, "anthropic", func(ctx context.Context) (string, error) {
		return c.doTranslate(ctx, text, sourceLang, targetLang)
	})
}

func (c *anthropicClient) doTranslate(ctx context.Context, text, sourceLang, targetLang string) (string, error) {
	reqBody := MessagesRequest{
		Model:       c.model,
		MaxTokens:   anthropicMaxTokens,
		Temperature: 0.3,
		System:      translationSystemPrompt(sourceLang, targetLang),
		Messages:    []Message{{Role: "user", Content: text}},
	}
	jsonBody, err := json.Marshal(reqBody)
	if err != nil {
		return "", types.NewAppError(types.ErrInternal, "failed to marshal request body", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.apiURL, bytes.NewBuffer(jsonBody))
	if err != nil {
		return "", types.NewAppError(types.ErrInternal, "failed to create HTTP request", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-api-key", c.apiKey)
	req.Header.Set("anthropic-version", anthropicVersion)

	resp, err := c.client.Do(req)
	if err != nil {
		return "", types.NewAppError(types.ErrNetwork, "API request failed", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", types.NewAppError(types.ErrNetwork, "failed to read API response", err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", handleAPIHTTPError(resp.StatusCode, body)
	}

	var msgResp MessagesResponse
	if err := json.Unmarshal(body, &msgResp); err != nil {
		return "", types.NewAppError(types.ErrAPICall, "failed to parse API response", err)
	}
	if msgResp.Error != nil {
		return "", types.NewAppErrorWithDetails(types.ErrAPICall,
			"API returned error", msgResp.Error.Message, nil)
	}

	var parts []string
	for _, block := range msgResp.Content {
		if t := strings.TrimSpace(block.Text); t != "" {
			parts = append(parts, t)
		}
	}
	if len(parts) == 0 {
		return "", types.NewAppError(types.ErrAPICall, "API response contained no text content", nil)
	}
	return strings.Join(parts, " "), nil
}
