package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/tristan-mcinnis/ppt-translator/internal/logger"
	"github.com/tristan-mcinnis/ppt-translator/internal/types"
)

const (
	// DefaultTimeout is the HTTP client timeout for chat completion calls
	DefaultTimeout = 120 * time.Second
	// MaxRetries is the maximum number of attempts for retryable API errors
	MaxRetries = 3
	// BaseRetryDelay is the base delay between retries
	BaseRetryDelay = 2 * time.Second
	// chatCompletionsPath is appended to base URLs that do not carry it
	chatCompletionsPath = "/chat/completions"
)

// chatClient talks to an OpenAI-compatible chat completions endpoint.
// DeepSeek, OpenAI and Grok all share this wire format.
type chatClient struct {
	name   string
	model  string
	apiKey string
	apiURL string
	client *http.Client
}

func newChatClient(name string, opts Options, defaultBaseURL string) (*chatClient, error) {
	baseURL := opts.BaseURL
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	return &chatClient{
		name:   name,
		model:  opts.Model,
		apiKey: opts.APIKey,
		apiURL: normalizeAPIURL(baseURL),
		client: &http.Client{Timeout: DefaultTimeout},
	}, nil
}

// normalizeAPIURL ensures the endpoint URL ends with /chat/completions.
func normalizeAPIURL(url string) string {
	url = strings.TrimSuffix(url, "/")
	if strings.HasSuffix(url, chatCompletionsPath) {
		return url
	}
	return url + chatCompletionsPath
}

func (c *chatClient) Name() string { return c.name }

// ChatCompletionRequest is the request body for the chat completions API.
type ChatCompletionRequest struct {
	Model       string    `json:"model"`
	Messages    []Message `json:"messages"`
	Temperature float64   `json:"temperature"`
	Stream      bool      `json:"stream"`
}

// Message is a single chat message.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ChatCompletionResponse is the response from the chat completions API.
type ChatCompletionResponse struct {
	ID      string    `json:"id"`
	Model   string    `json:"model"`
	Choices []Choice  `json:"choices"`
	Usage   Usage     `json:"usage"`
	Error   *APIError `json:"error,omitempty"`
}

// Choice is one completion choice.
type Choice struct {
	Index        int     `json:"index"`
	Message      Message `json:"message"`
	FinishReason string  `json:"finish_reason"`
}

// Usage reports token consumption.
type Usage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// APIError is an error object embedded in an API response.
type APIError struct {
	Message string `json:"message"`
	Type    string `json:"type"`
	Code    string `json:"code"`
}

// Translate sends one chat completion request, retrying on transient errors.
func (c *chatClient) Translate(ctx context.Context, text, sourceLang, targetLang string) (string, error) {
	return translateWithRetries(ctx, c.name, func(ctx context.Context) (string, error) {
		return c.doTranslate(ctx, text, sourceLang, targetLang)
	})
}

// translateWithRetries runs one attempt function under the shared retry
// policy, with a linear backoff between retryable failures.
func translateWithRetries(ctx context.Context, name string, do func(context.Context) (string, error)) (string, error) {
	var lastErr error
	for attempt := 1; attempt <= MaxRetries; attempt++ {
		translated, err := do(ctx)
		if err == nil {
			return translated, nil
		}
		lastErr = err
		logger.Warn("translation attempt failed",
			logger.String("provider", name),
			logger.Int("attempt", attempt),
			logger.Err(err))
		if !isRetryableAPIError(err) {
			return "", err
		}
		if attempt < MaxRetries {
			delay := BaseRetryDelay * time.Duration(attempt)
			select {
			case <-time.After(delay):
			case <-ctx.Done():
				return "", types.NewAppError(types.ErrNetwork, "translation canceled", ctx.Err())
			}
		}
	}
	return "", types.NewAppErrorWithDetails(types.ErrAPICall,
		"translation failed after multiple retries",
		fmt.Sprintf("attempted %d times", MaxRetries), lastErr)
}

func (c *chatClient) doTranslate(ctx context.Context, text, sourceLang, targetLang string) (string, error) {
	reqBody := ChatCompletionRequest{
		Model: c.model,
		Messages: []Message{
			{Role: "system", Content: translationSystemPrompt(sourceLang, targetLang)},
			{Role: "user", Content: text},
		},
		Temperature: 0.3,
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
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

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

	var chatResp ChatCompletionResponse
	if err := json.Unmarshal(body, &chatResp); err != nil {
		return "", types.NewAppError(types.ErrAPICall, "failed to parse API response", err)
	}
	if chatResp.Error != nil {
		return "", types.NewAppErrorWithDetails(types.ErrAPICall,
			"API returned error", chatResp.Error.Message, nil)
	}
	if len(chatResp.Choices) == 0 {
		return "", types.NewAppError(types.ErrAPICall, "API response contained no choices", nil)
	}
	return strings.TrimSpace(chatResp.Choices[0].Message.Content), nil
}

// handleAPIHTTPError maps an HTTP error status to an AppError.
func handleAPIHTTPError(statusCode int, body []byte) error {
	var errResp struct {
		Error struct {
			Message string `json:"message"`
			Type    string `json:"type"`
			Code    string `json:"code"`
		} `json:"error"`
	}
	errorDetails := ""
	if err := json.Unmarshal(body, &errResp); err == nil && errResp.Error.Message != "" {
		errorDetails = errResp.Error.Message
	}

	switch statusCode {
	case http.StatusUnauthorized:
		return types.NewAppErrorWithDetails(types.ErrAPICall,
			"API authentication failed", "invalid API key or unauthorized access", nil)
	case http.StatusTooManyRequests:
		return types.NewAppErrorWithDetails(types.ErrAPIRateLimit,
			"API rate limit exceeded", errorDetails, nil)
	case http.StatusBadRequest:
		return types.NewAppErrorWithDetails(types.ErrAPICall,
			"invalid API request", errorDetails, nil)
	case http.StatusInternalServerError, http.StatusBadGateway, http.StatusServiceUnavailable:
		return types.NewAppErrorWithDetails(types.ErrAPICall,
			"API server error", fmt.Sprintf("status %d: %s", statusCode, errorDetails), nil)
	default:
		return types.NewAppErrorWithDetails(types.ErrAPICall,
			"unexpected API response", fmt.Sprintf("status %d: %s", statusCode, errorDetails), nil)
	}
}

// isRetryableAPIError reports whether an error is worth another attempt.
// Network failures, rate limits and server errors are; client errors are not.
func isRetryableAPIError(err error) bool {
	if err == nil {
		return false
	}
	appErr, ok := err.(*types.AppError)
	if !ok {
		return false
	}
	switch appErr.Code {
	case types.ErrNetwork, types.ErrAPIRateLimit:
		return true
	case types.ErrAPICall:
		return strings.Contains(appErr.Details, "status 5")
	default:
		return false
	}
}
