package translation

import (
	"context"
	"strings"
	"sync"

	"github.com/tristan-mcinnis/ppt-translator/internal/logger"
	"github.com/tristan-mcinnis/ppt-translator/internal/provider"
)

// cacheKey identifies one cached translation. Keying on the full language
// triple means one service instance can serve differing language pairs
// without returning stale results.
type cacheKey struct {
	sourceLang string
	targetLang string
	text       string
}

// Service translates text through a provider with chunking and an in-memory
// cache. The cache is shared across one run and never persisted. Entries are
// write-once: the first completed translation for a key wins.
//
// The mutex guards only cache lookups and inserts, never a provider call, so
// concurrent callers may race to translate the same first-seen text; the
// duplicate work is accepted.
type Service struct {
	provider     provider.Provider
	maxChunkSize int

	mu    sync.Mutex
	cache map[cacheKey]string
}

// NewService creates a Service around the given provider.
func NewService(p provider.Provider, maxChunkSize int) *Service {
	return &Service{
		provider:     p,
		maxChunkSize: maxChunkSize,
		cache:        make(map[cacheKey]string),
	}
}

// Translate returns the translation of text from sourceLang to targetLang.
// Blank input is returned unchanged without consulting the provider. Provider
// failure is recovered by returning the original text; it never aborts the
// surrounding pipeline.
func (s *Service) Translate(ctx context.Context, text, sourceLang, targetLang string) string {
	if strings.TrimSpace(text) == "" {
		return text
	}

	key := cacheKey{sourceLang: sourceLang, targetLang: targetLang, text: text}
	s.mu.Lock()
	if cached, ok := s.cache[key]; ok {
		s.mu.Unlock()
		return cached
	}
	s.mu.Unlock()

	chunks := Chunk(text, s.maxChunkSize)
	translated := make([]string, 0, len(chunks))
	for _, chunk := range chunks {
		if strings.TrimSpace(chunk) == "" {
			translated = append(translated, chunk)
			continue
		}
		out, err := s.provider.Translate(ctx, chunk, sourceLang, targetLang)
		if err != nil {
			logger.Error("provider translation failed, keeping original text", err,
				logger.String("provider", s.provider.Name()),
				logger.Int("textLength", len(text)))
			return text
		}
		translated = append(translated, strings.TrimSpace(out))
	}

	var parts []string
	for _, part := range translated {
		if part != "" {
			parts = append(parts, part)
		}
	}
	combined := strings.Join(parts, " ")
	if combined == "" {
		combined = text
	}

	s.mu.Lock()
	if existing, ok := s.cache[key]; ok {
		combined = existing
	} else {
		s.cache[key] = combined
	}
	s.mu.Unlock()
	return combined
}

// CacheSize returns the number of cached translations.
func (s *Service) CacheSize() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.cache)
}

// ClearCache drops all cached translations.
func (s *Service) ClearCache() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cache = make(map[cacheKey]string)
}
