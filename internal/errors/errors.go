package errors

import (
	"errors"
	"fmt"
	"strings"

	"github.com/mcncl/shapegen/internal/models"
)

// Standard application errors
var (
	ErrEmptyInput      = errors.New("input is empty or contains only whitespace")
	ErrInvalidJSON     = errors.New("invalid JSON format")
	ErrMultipleJSON    = errors.New("multiple JSON values found at the root, only one is allowed")
	ErrFileNotFound    = errors.New("file not found")
	ErrFileEmpty       = errors.New("file is empty")
	ErrNoInput         = errors.New("no input provided: please specify a file with -i or pipe JSON data to stdin")
	ErrInvalidFilePath = errors.New("invalid file path")
)

// ErrorType categorizes errors
type ErrorType string

const (
	ErrorTypeInput    ErrorType = "input"
	ErrorTypeParsing  ErrorType = "parsing"
	ErrorTypeQuery    ErrorType = "query"
	ErrorTypeConfig   ErrorType = "config"
	ErrorTypeAnalysis ErrorType = "analysis"
	ErrorTypeGenerate ErrorType = "generate"
	ErrorTypeFormat   ErrorType = "format"
	ErrorTypeOutput   ErrorType = "output"
	ErrorTypeUnknown  ErrorType = "unknown"
)

// AppError is an application-specific error with context
type AppError struct {
	Type    ErrorType
	Message string
	Err     error
}

// Error implements error interface
func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Type, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

// Unwrap returns wrapped error
func (e *AppError) Unwrap() error {
	return e.Err
}

// Is implements errors.Is for comparison
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	if !ok {
		return false
	}
	return e.Type == t.Type
}

// NewInputError creates a new error related to input processing
func NewInputError(message string, err error) *AppError {
	return &AppError{Type: ErrorTypeInput, Message: message, Err: err}
}

// NewParsingError creates a new error related to JSON parsing
func NewParsingError(message string, err error) *AppError {
	return &AppError{Type: ErrorTypeParsing, Message: message, Err: err}
}

// NewQueryError creates a new error related to sub-document selection
func NewQueryError(message string, err error) *AppError {
	return &AppError{Type: ErrorTypeQuery, Message: message, Err: err}
}

// NewConfigFileError creates a new error related to reading a configuration file
func NewConfigFileError(message string, err error) *AppError {
	return &AppError{Type: ErrorTypeConfig, Message: message, Err: err}
}

// NewAnalysisError creates a new error related to type analysis
func NewAnalysisError(message string, err error) *AppError {
	return &AppError{Type: ErrorTypeAnalysis, Message: message, Err: err}
}

// NewGenerateError creates a new error related to code generation
func NewGenerateError(message string, err error) *AppError {
	return &AppError{Type: ErrorTypeGenerate, Message: message, Err: err}
}

// NewFormatError creates a new error related to code formatting
func NewFormatError(message string, err error) *AppError {
	return &AppError{Type: ErrorTypeFormat, Message: message, Err: err}
}

// NewOutputError creates a new error related to output processing
func NewOutputError(message string, err error) *AppError {
	return &AppError{Type: ErrorTypeOutput, Message: message, Err: err}
}

// ConfigError reports an invalid configuration value. Key is the dotted
// configuration key, e.g. "types.pointer_strategy".
type ConfigError struct {
	Key    string
	Value  interface{}
	Reason string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("invalid configuration %s=%v: %s", e.Key, e.Value, e.Reason)
}

// UnsupportedLanguageError is returned when no generator is registered for
// the requested target language.
type UnsupportedLanguageError struct {
	Language  string
	Supported []string
}

func (e *UnsupportedLanguageError) Error() string {
	return fmt.Sprintf("unsupported language %q (supported: %s)", e.Language, strings.Join(e.Supported, ", "))
}

// ConflictError is returned in strict mode when a field has conflicting
// kinds that cannot be mapped to a single type.
type ConflictError struct {
	Schema string
	Field  string
	Kinds  []models.Kind
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("strict mode: cannot resolve type conflict for %s.%s (conflicting kinds: %s)",
		e.Schema, e.Field, strings.Join(models.KindNames(e.Kinds), ", "))
}

// UserFriendlyError returns a user-friendly error message
func UserFriendlyError(err error) string {
	var langErr *UnsupportedLanguageError
	if errors.As(err, &langErr) {
		return fmt.Sprintf("Error: %q is not a supported language. Choose one of: %s.",
			langErr.Language, strings.Join(langErr.Supported, ", "))
	}
	var cfgErr *ConfigError
	if errors.As(err, &cfgErr) {
		return fmt.Sprintf("Configuration error: %s has invalid value %v (%s).", cfgErr.Key, cfgErr.Value, cfgErr.Reason)
	}
	var conflictErr *ConflictError
	if errors.As(err, &conflictErr) {
		return fmt.Sprintf("Code generation error: field %s.%s has conflicting types (%s) and the conflict strategy is strict.",
			conflictErr.Schema, conflictErr.Field, strings.Join(models.KindNames(conflictErr.Kinds), ", "))
	}

	var appErr *AppError
	if errors.As(err, &appErr) {
		switch appErr.Type {
		case ErrorTypeInput:
			return fmt.Sprintf("Input error: %s", appErr.Message)
		case ErrorTypeParsing:
			return fmt.Sprintf("JSON parsing error: %s", appErr.Message)
		case ErrorTypeQuery:
			return fmt.Sprintf("Query error: %s", appErr.Message)
		case ErrorTypeConfig:
			return fmt.Sprintf("Configuration error: %s", appErr.Message)
		case ErrorTypeAnalysis:
			return fmt.Sprintf("Type analysis error: %s", appErr.Message)
		case ErrorTypeGenerate:
			return fmt.Sprintf("Code generation error: %s", appErr.Message)
		case ErrorTypeFormat:
			return fmt.Sprintf("Code formatting error: %s", appErr.Message)
		case ErrorTypeOutput:
			return fmt.Sprintf("Output error: %s", appErr.Message)
		default:
			return fmt.Sprintf("Error: %s", appErr.Message)
		}
	}

	// Handle standard errors
	if errors.Is(err, ErrEmptyInput) {
		return "Error: The input is empty. Please provide valid JSON data."
	}
	if errors.Is(err, ErrInvalidJSON) {
		return "Error: The input contains invalid JSON. Please check your JSON syntax."
	}
	if errors.Is(err, ErrMultipleJSON) {
		return "Error: Multiple JSON values found. Please provide a single JSON object or array."
	}
	if errors.Is(err, ErrFileNotFound) {
		return "Error: The specified file could not be found. Please check the file path."
	}
	if errors.Is(err, ErrFileEmpty) {
		return "Error: The specified file is empty. Please provide a file with valid JSON content."
	}
	if errors.Is(err, ErrNoInput) {
		return "Error: No input provided. Please specify a file with -i or pipe JSON data to stdin."
	}
	if errors.Is(err, ErrInvalidFilePath) {
		return "Error: Invalid file path. Please provide a valid file path."
	}

	return fmt.Sprintf("Error: %v", err)
}
