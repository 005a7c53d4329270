package provider

import (
	"context"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"github.com/tristan-mcinnis/ppt-translator/internal/types"
)

// geminiProvider translates through Google's Gemini API. The SDK client is
// created once and shared across calls.
type geminiProvider struct {
	client *genai.Client
	model  string
}

func newGeminiProvider(opts Options) (*geminiProvider, error) {
	cl, err := genai.NewClient(context.Background(), option.WithAPIKey(opts.APIKey))
	if err != nil {
		return nil, types.NewAppError(types.ErrNetwork, "failed to create gemini client", err)
	}
	return &geminiProvider{
		client: cl,
		model:  opts.Model,
	}, nil
}

func (g *geminiProvider) Name() string { return "gemini" }

// Translate sends one generation request to the Gemini API. The model handle
// carries the per-call system instruction, so it is rebuilt from the shared
// client on every request; concurrent calls must not share one handle.
func (g *geminiProvider) Translate(ctx context.Context, text, sourceLang, targetLang string) (string, error) {
	m := g.client.GenerativeModel(g.model)
	m.GenerationConfig = genai.GenerationConfig{
		Temperature: ptrFloat32(0.3),
	}
	m.SystemInstruction = &genai.Content{
		Parts: []genai.Part{genai.Text(translationSystemPrompt(sourceLang, targetLang))},
	}

	resp, err := m.GenerateContent(ctx, genai.Text(text))
	if err != nil {
		return "", types.NewAppError(types.ErrAPICall, "gemini generation failed", err)
	}
	out := firstText(resp)
	if out == "" {
		return "", types.NewAppError(types.ErrAPICall, "gemini response contained no text", nil)
	}
	return strings.TrimSpace(out), nil
}

func firstText(resp *genai.GenerateContentResponse) string {
	if resp == nil || len(resp.Candidates) == 0 {
		return ""
	}
	for _, c := range resp.Candidates {
		if c.Content == nil {
			continue
		}
		for _, p := range c.Content.Parts {
			if t, ok := p.(genai.Text); ok {
				return string(t)
			}
		}
	}
	return ""
}

func ptrFloat32(v float32) *float32 { return &v }
