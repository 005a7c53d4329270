// Package types defines shared configuration and error types for the
// presentation translator.
package types

// Config holds the runtime configuration for one translation run.
type Config struct {
	Provider         string  `json:"provider"` // translation backend: anthropic, deepseek, openai, grok, gemini
	Model            string  `json:"model"`    // optional model override for the chosen provider
	APIKey           string  `json:"api_key"`  // resolved from the provider's env var when empty
	BaseURL          string  `json:"base_url"` // optional API base URL override
	SourceLang       string  `json:"source_lang"`
	TargetLang       string  `json:"target_lang"`
	MaxChunkSize     int     `json:"max_chunk_size"`    // maximum characters per provider request
	MaxWorkers       int     `json:"max_workers"`       // slide extraction worker count
	FontScale        float64 `json:"font_scale"`        // size ratio applied to text-shape fonts on reapply
	TableFontScale   float64 `json:"table_font_scale"`  // size ratio applied to table-cell fonts on reapply
	FallbackFont     string  `json:"fallback_font"`     // font family forced onto translated runs
	KeepIntermediate bool    `json:"keep_intermediate"` // keep per-file XML snapshots after assembly
}

// ErrorCode classifies failures so callers can tell fatal configuration
// problems apart from recoverable per-shape or per-call errors.
type ErrorCode string

const (
	ErrConfig       ErrorCode = "CONFIG_ERROR"
	ErrProvider     ErrorCode = "PROVIDER_ERROR"
	ErrNetwork      ErrorCode = "NETWORK_ERROR"
	ErrAPICall      ErrorCode = "API_CALL_ERROR"
	ErrAPIRateLimit ErrorCode = "API_RATE_LIMIT"
	ErrFileNotFound ErrorCode = "FILE_NOT_FOUND"
	ErrInvalidInput ErrorCode = "INVALID_INPUT"
	ErrExtract      ErrorCode = "EXTRACT_ERROR"
	ErrAssemble     ErrorCode = "ASSEMBLE_ERROR"
	ErrInternal     ErrorCode = "INTERNAL_ERROR"
)

// AppError is the application error type carrying a code and optional cause.
type AppError struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
	Details string    `json:"details,omitempty"`
	Cause   error     `json:"-"`
}

// Error implements the error interface for AppError
func (e *AppError) Error() string {
	if e.Details != "" {
		return e.Message + ": " + e.Details
	}
	return e.Message
}

// Unwrap returns the underlying cause of the error
func (e *AppError) Unwrap() error {
	return e.Cause
}

// NewAppError creates a new AppError with the given code, message, and optional cause
func NewAppError(code ErrorCode, message string, cause error) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

// NewAppErrorWithDetails creates a new AppError with details
func NewAppErrorWithDetails(code ErrorCode, message, details string, cause error) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Details: details,
		Cause:   cause,
	}
}

// CodeOf returns the ErrorCode carried by err, or ErrInternal when err is
// not an AppError.
func CodeOf(err error) ErrorCode {
	if appErr, ok := err.(*AppError); ok {
		return appErr.Code
	}
	return ErrInternal
}
