package gen

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidConfig is matched by every ConfigError.
	ErrInvalidConfig = errors.New("cruddals: invalid configuration")
	// ErrGenerationFailed is matched by every GenerationError.
	ErrGenerationFailed = errors.New("cruddals: schema generation failed")
)

// ConfigError reports an assembler option that cannot be applied.
type ConfigError struct {
	Option  string
	Value   any
	Message string
}

// NewConfigError returns a ConfigError for option.
func NewConfigError(option string, value any, message string) *ConfigError {
	return &ConfigError{Option: option, Value: value, Message: message}
}

func (e *ConfigError) Error() string {
	if e.Value == nil {
		return fmt.Sprintf("cruddals: option %s: %s", e.Option, e.Message)
	}
	return fmt.Sprintf("cruddals: option %s (%v): %s", e.Option, e.Value, e.Message)
}

func (e *ConfigError) Is(target error) bool { return target == ErrInvalidConfig }

// GenerationError reports an assembled document that failed a phase,
// such as the validation of the rendered SDL.
type GenerationError struct {
	Phase   string
	Message string
	Cause   error
}

// NewGenerationError returns a GenerationError of phase.
func NewGenerationError(phase, message string, cause error) *GenerationError {
	return &GenerationError{Phase: phase, Message: message, Cause: cause}
}

func (e *GenerationError) Error() string {
	msg := "cruddals: " + e.Phase + ": " + e.Message
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	return msg
}

func (e *GenerationError) Unwrap() error { return e.Cause }

func (e *GenerationError) Is(target error) bool { return target == ErrGenerationFailed }

// IsConfigError reports whether err wraps a ConfigError.
func IsConfigError(err error) bool {
	var e *ConfigError
	return errors.As(err, &e)
}

// IsGenerationError reports whether err wraps a GenerationError.
func IsGenerationError(err error) bool {
	var e *GenerationError
	return errors.As(err, &e)
}
