package provider

import (
	"sort"
	"testing"

	"github.com/tristan-mcinnis/ppt-translator/internal/types"
)

func TestListIsSorted(t *testing.T) {
	names := List()
	if !sort.StringsAreSorted(names) {
		t.Errorf("List() not sorted: %v", names)
	}
	want := map[string]bool{"anthropic": true, "deepseek": true, "openai": true, "grok": true, "gemini": true}
	for _, name := range names {
		if !want[name] {
			t.Errorf("unexpected provider %q", name)
		}
		delete(want, name)
	}
	for name := range want {
		t.Errorf("provider %q missing from List()", name)
	}
}

func TestNewUnknownProvider(t *testing.T) {
	_, err := New("aliyun", Options{APIKey: "key"})
	if err == nil {
		t.Fatal("expected error for unknown provider")
	}
	if types.CodeOf(err) != types.ErrConfig {
		t.Errorf("error code = %v, want %v", types.CodeOf(err), types.ErrConfig)
	}
}

func TestNewMissingAPIKey(t *testing.T) {
	t.Setenv("DEEPSEEK_API_KEY", "")

	_, err := New("deepseek", Options{})
	if err == nil {
		t.Fatal("expected error when no API key is available")
	}
	if types.CodeOf(err) != types.ErrConfig {
		t.Errorf("error code = %v, want %v", types.CodeOf(err), types.ErrConfig)
	}
}

func TestNewAPIKeyFromEnvironment(t *testing.T) {
	t.Setenv("DEEPSEEK_API_KEY", "env-key")

	p, err := New("deepseek", Options{})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	client, ok := p.(*chatClient)
	if !ok {
		t.Fatalf("provider type = %T, want *chatClient", p)
	}
	if client.apiKey != "env-key" {
		t.Errorf("apiKey = %q, want env-key", client.apiKey)
	}
	if client.model != "deepseek-chat" {
		t.Errorf("model = %q, want default deepseek-chat", client.model)
	}
}

func TestNewAnthropicDefaults(t *testing.T) {
	t.Setenv("ANTHROPIC_API_KEY", "env-key")

	p, err := New("anthropic", Options{})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	client, ok := p.(*anthropicClient)
	if !ok {
		t.Fatalf("provider type = %T, want *anthropicClient", p)
	}
	if client.model != "claude-3.7-sonnet" {
		t.Errorf("model = %q, want default claude-3.7-sonnet", client.model)
	}
	if client.apiKey != "env-key" {
		t.Errorf("apiKey = %q, want env-key", client.apiKey)
	}
	if client.apiURL != "https://api.anthropic.com/v1/messages" {
		t.Errorf("apiURL = %q", client.apiURL)
	}
}

func TestNewExplicitOptionsWin(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "env-key")

	p, err := New("openai", Options{Model: "gpt-4o-mini", APIKey: "explicit-key", BaseURL: "https://proxy.local/v1"})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	client := p.(*chatClient)
	if client.model != "gpt-4o-mini" {
		t.Errorf("model = %q, want gpt-4o-mini", client.model)
	}
	if client.apiKey != "explicit-key" {
		t.Errorf("apiKey = %q, want explicit-key", client.apiKey)
	}
	if client.apiURL != "https://proxy.local/v1/chat/completions" {
		t.Errorf("apiURL = %q", client.apiURL)
	}
}

func TestNewIsCaseInsensitive(t *testing.T) {
	p, err := New("DeepSeek", Options{APIKey: "key"})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	if p.Name() != "deepseek" {
		t.Errorf("Name = %q, want deepseek", p.Name())
	}
}
