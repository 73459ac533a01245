package config

import (
	"fmt"
)

// ValidationError reports a single config field that cannot work at runtime.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidateRequired fails when a string field is empty.
func ValidateRequired(field, value string) error {
	if value == "" {
		return &ValidationError{Field: field, Message: "is required"}
	}
	return nil
}

// ValidatePort fails when port is outside the valid TCP range.
func ValidatePort(field string, port int) error {
	if port < 1 || port > 65535 {
		return &ValidationError{Field: field, Message: "must be between 1 and 65535"}
	}
	return nil
}

// ValidateLogLevel fails when level is not one the logger understands.
func ValidateLogLevel(level string) error {
	switch level {
	case "debug", "info", "warn", "warning", "error", "fatal":
		return nil
	default:
		return &ValidationError{Field: "level", Message: "must be one of: debug, info, warn, error, fatal"}
	}
}

// Validator is implemented by config structs that check themselves after
// loading.
type Validator interface {
	Validate() error
}

// Validate runs cfg's Validate method when it implements Validator and is a
// no-op otherwise, so callers can validate any config type unconditionally.
func Validate(cfg any) error {
	if v, ok := cfg.(Validator); ok {
		return v.Validate()
	}
	return nil
}
