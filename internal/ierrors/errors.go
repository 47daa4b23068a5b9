// Package ierrors provides custom error types for importls.
// These error types enable callers to distinguish failures that must be
// reported (registry configuration problems) from failures that are absorbed
// during best-effort completion generation.
package ierrors

import (
	"fmt"
)

// Error is the base interface for all importls errors
type Error interface {
	error
	// Code returns a unique error code for programmatic error handling
	Code() string
}

// baseError provides common functionality for all importls errors
type baseError struct {
	code    string
	message string
	cause   error
}

func (e *baseError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %v", e.message, e.cause)
	}
	return e.message
}

func (e *baseError) Code() string {
	return e.code
}

func (e *baseError) Unwrap() error {
	return e.cause
}

// ConfigError represents an invalid registry configuration: wrong version,
// schema/variable mismatch, illegal variable reference order or self reference
type ConfigError struct {
	baseError
	Schema string
}

// NewConfigError creates a new configuration error
func NewConfigError(schema string, message string) *ConfigError {
	return &ConfigError{
		baseError: baseError{
			code:    "CONFIG_ERROR",
			message: message,
		},
		Schema: schema,
	}
}

// FetchError represents a network or transport failure while retrieving a
// registry configuration or a dynamic item list
type FetchError struct {
	baseError
	URL string
}

// NewFetchError creates a new fetch error
func NewFetchError(url string, message string, cause error) *FetchError {
	return &FetchError{
		baseError: baseError{
			code:    "FETCH_ERROR",
			message: message,
			cause:   cause,
		},
		URL: url,
	}
}

// DecodeError represents a response body that is not valid JSON or does not
// have the expected shape
type DecodeError struct {
	baseError
	URL string
}

// NewDecodeError creates a new decode error
func NewDecodeError(url string, message string, cause error) *DecodeError {
	return &DecodeError{
		baseError: baseError{
			code:    "DECODE_ERROR",
			message: message,
			cause:   cause,
		},
		URL: url,
	}
}

// TemplateError represents a variable URL template that did not expand to a
// valid absolute URL
type TemplateError struct {
	baseError
	Template string
}

// NewTemplateError creates a new template error
func NewTemplateError(template string, message string, cause error) *TemplateError {
	return &TemplateError{
		baseError: baseError{
			code:    "TEMPLATE_ERROR",
			message: message,
			cause:   cause,
		},
		Template: template,
	}
}
