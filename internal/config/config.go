// Package config provides configuration management for the presentation
// translator.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"golang.org/x/text/language"

	"github.com/tristan-mcinnis/ppt-translator/internal/logger"
	"github.com/tristan-mcinnis/ppt-translator/internal/types"
)

const (
	// DefaultConfigFileName is the default configuration file name
	DefaultConfigFileName = "ppt-translator-config.json"
	// DefaultProvider is the translation backend used when none is configured
	DefaultProvider = "deepseek"
	// DefaultSourceLang is the default source language code
	DefaultSourceLang = "zh"
	// DefaultTargetLang is the default target language code
	DefaultTargetLang = "en"
	// DefaultMaxChunkSize is the default maximum characters per translation request
	DefaultMaxChunkSize = 1000
	// DefaultMaxWorkers is the default slide extraction worker count
	DefaultMaxWorkers = 4
	// DefaultFontScale is the size ratio applied to text-shape fonts on reapply
	DefaultFontScale = 0.75
	// DefaultTableFontScale is the size ratio applied to table-cell fonts on reapply
	DefaultTableFontScale = 0.8
	// DefaultFallbackFont is the font family forced onto translated runs
	DefaultFallbackFont = "Arial"
)

// Manager loads, persists and validates the run configuration.
type Manager struct {
	configPath string
	config     *types.Config
}

// NewManager creates a Manager reading from configPath. If configPath is
// empty, the default path in the user's config directory is used.
func NewManager(configPath string) (*Manager, error) {
	if configPath == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return nil, types.NewAppError(types.ErrConfig, "failed to get user home directory", err)
		}
		configPath = filepath.Join(homeDir, ".config", "ppt-translator", DefaultConfigFileName)
	}
	return &Manager{
		configPath: configPath,
		config:     Default(),
	}, nil
}

// Default returns a configuration populated with the documented defaults.
func Default() *types.Config {
	return &types.Config{
		Provider:       DefaultProvider,
		SourceLang:     DefaultSourceLang,
		TargetLang:     DefaultTargetLang,
		MaxChunkSize:   DefaultMaxChunkSize,
		MaxWorkers:     DefaultMaxWorkers,
		FontScale:      DefaultFontScale,
		TableFontScale: DefaultTableFontScale,
		FallbackFont:   DefaultFallbackFont,
	}
}

// Load reads the configuration file if it exists; a missing file leaves the
// defaults in place. Fields left at their zero value after loading fall back
// to the defaults.
func (m *Manager) Load() error {
	data, err := os.ReadFile(m.configPath)
	if os.IsNotExist(err) {
		logger.Debug("config file not found, using defaults", logger.String("path", m.configPath))
		return nil
	}
	if err != nil {
		return types.NewAppError(types.ErrConfig, "failed to read config file", err)
	}

	cfg := Default()
	if err := json.Unmarshal(data, cfg); err != nil {
		return types.NewAppError(types.ErrConfig, "failed to parse config file", err)
	}
	applyFallbacks(cfg)
	m.config = cfg
	logger.Info("configuration loaded", logger.String("path", m.configPath))
	return nil
}

// Save persists the current configuration to the config file.
func (m *Manager) Save() error {
	if dir := filepath.Dir(m.configPath); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return types.NewAppError(types.ErrConfig, "failed to create config directory", err)
		}
	}
	data, err := json.MarshalIndent(m.config, "", "  ")
	if err != nil {
		return types.NewAppError(types.ErrInternal, "failed to marshal config", err)
	}
	if err := os.WriteFile(m.configPath, data, 0644); err != nil {
		return types.NewAppError(types.ErrConfig, "failed to write config file", err)
	}
	return nil
}

// Get returns the current configuration.
func (m *Manager) Get() *types.Config {
	return m.config
}

func applyFallbacks(cfg *types.Config) {
	if cfg.Provider == "" {
		cfg.Provider = DefaultProvider
	}
	if cfg.SourceLang == "" {
		cfg.SourceLang = DefaultSourceLang
	}
	if cfg.TargetLang == "" {
		cfg.TargetLang = DefaultTargetLang
	}
	if cfg.MaxChunkSize == 0 {
		cfg.MaxChunkSize = DefaultMaxChunkSize
	}
	if cfg.MaxWorkers == 0 {
		cfg.MaxWorkers = DefaultMaxWorkers
	}
	if cfg.FontScale == 0 {
		cfg.FontScale = DefaultFontScale
	}
	if cfg.TableFontScale == 0 {
		cfg.TableFontScale = DefaultTableFontScale
	}
	if cfg.FallbackFont == "" {
		cfg.FallbackFont = DefaultFallbackFont
	}
}

// Validate checks the configuration before any file processing begins.
// Violations are configuration errors and therefore fatal.
func Validate(cfg *types.Config) error {
	if cfg.MaxChunkSize <= 0 {
		return types.NewAppError(types.ErrConfig, "max chunk size must be positive", nil)
	}
	if cfg.MaxWorkers <= 0 {
		return types.NewAppError(types.ErrConfig, "max workers must be positive", nil)
	}
	if cfg.FontScale <= 0 || cfg.FontScale > 1 {
		return types.NewAppError(types.ErrConfig, "font scale must be in (0, 1]", nil)
	}
	if cfg.TableFontScale <= 0 || cfg.TableFontScale > 1 {
		return types.NewAppError(types.ErrConfig, "table font scale must be in (0, 1]", nil)
	}
	if _, err := language.Parse(cfg.SourceLang); err != nil {
		return types.NewAppErrorWithDetails(types.ErrConfig, "invalid source language code",
			fmt.Sprintf("%q", cfg.SourceLang), err)
	}
	if _, err := language.Parse(cfg.TargetLang); err != nil {
		return types.NewAppErrorWithDetails(types.ErrConfig, "invalid target language code",
			fmt.Sprintf("%q", cfg.TargetLang), err)
	}
	return nil
}
