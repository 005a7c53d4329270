// Package provider implements the pluggable translation backends.
//
// A provider exposes a single synchronous operation that translates one piece
// of text between a language pair. Providers make no latency or idempotence
// guarantees; retries and caching live in the translation service above them.
package provider

import (
	"context"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/tristan-mcinnis/ppt-translator/internal/types"
)

// Provider is a translation backend.
type Provider interface {
	// Name returns the registry identifier of the provider.
	Name() string
	// Translate translates text from sourceLang to targetLang.
	Translate(ctx context.Context, text, sourceLang, targetLang string) (string, error)
}

// Options configures provider construction.
type Options struct {
	Model   string // overrides the provider's default model when set
	APIKey  string // overrides the provider's environment variable when set
	BaseURL string // overrides the provider's default API base URL when set
}

type factory func(opts Options) (Provider, error)

type registration struct {
	defaultModel string
	apiKeyEnv    string
	build        factory
}

var registry = map[string]registration{
	"anthropic": {
		defaultModel: "claude-3.7-sonnet",
		apiKeyEnv:    "ANTHROPIC_API_KEY",
		build: func(opts Options) (Provider, error) {
			return newAnthropicClient(opts, envOr("ANTHROPIC_API_BASE", "https://api.anthropic.com"))
		},
	},
	"deepseek": {
		defaultModel: "deepseek-chat",
		apiKeyEnv:    "DEEPSEEK_API_KEY",
		build: func(opts Options) (Provider, error) {
			return newChatClient("deepseek", opts, envOr("DEEPSEEK_API_BASE", "https://api.deepseek.com"))
		},
	},
	"openai": {
		defaultModel: "gpt-4o",
		apiKeyEnv:    "OPENAI_API_KEY",
		build: func(opts Options) (Provider, error) {
			return newChatClient("openai", opts, envOr("OPENAI_API_BASE", "https://api.openai.com/v1"))
		},
	},
	"grok": {
		defaultModel: "grok-beta",
		apiKeyEnv:    "GROK_API_KEY",
		build: func(opts Options) (Provider, error) {
			return newChatClient("grok", opts, envOr("GROK_API_BASE", "https://api.x.ai/v1"))
		},
	},
	"gemini": {
		defaultModel: "gemini-1.5-flash",
		apiKeyEnv:    "GEMINI_API_KEY",
		build: func(opts Options) (Provider, error) {
			return newGeminiProvider(opts)
		},
	},
}

// List returns the available provider identifiers in sorted order.
func List() []string {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// New instantiates a provider by registry name. Unknown names and missing
// credentials are configuration errors, reported before any file processing.
func New(name string, opts Options) (Provider, error) {
	reg, ok := registry[strings.ToLower(name)]
	if !ok {
		return nil, types.NewAppErrorWithDetails(types.ErrConfig,
			"unknown translation provider",
			fmt.Sprintf("%q is not one of: %s", name, strings.Join(List(), ", ")), nil)
	}
	if opts.Model == "" {
		opts.Model = reg.defaultModel
	}
	if opts.APIKey == "" {
		opts.APIKey = os.Getenv(reg.apiKeyEnv)
	}
	if opts.APIKey == "" {
		return nil, types.NewAppErrorWithDetails(types.ErrConfig,
			"missing API key for provider "+strings.ToLower(name),
			"set the "+reg.apiKeyEnv+" environment variable", nil)
	}
	return reg.build(opts)
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// translationSystemPrompt is the instruction sent with every request.
func translationSystemPrompt(sourceLang, targetLang string) string {
	return fmt.Sprintf(
		"You are a translation assistant. Translate the user provided text from %s to %s while preserving tone and formatting. Reply with the translation only.",
		sourceLang, targetLang)
}
