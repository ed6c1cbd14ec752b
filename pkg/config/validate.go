package config

import (
	"fmt"
	"net/url"
	"strings"
)

// FieldError represents a validation error for a specific configuration
// field.
type FieldError struct {
	// Field is the dotted path to the configuration field
	// (e.g. "http.base_url").
	Field string

	// Message is a human-readable error message.
	Message string
}

// Error returns the error message for this field error.
func (e FieldError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidationError represents one or more validation errors in a
// configuration.
type ValidationError struct {
	// Errors contains all validation errors found in the configuration.
	Errors []FieldError
}

// Error returns a formatted string containing all validation errors.
func (e ValidationError) Error() string {
	if len(e.Errors) == 0 {
		return "configuration validation failed"
	}
	if len(e.Errors) == 1 {
		return fmt.Sprintf("configuration validation failed: %s", e.Errors[0].Error())
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("configuration validation failed with %d errors:\n", len(e.Errors)))
	for _, err := range e.Errors {
		sb.WriteString(fmt.Sprintf("  - %s\n", err.Error()))
	}
	return sb.String()
}

// Validate checks the entire configuration and returns a ValidationError
// collecting every violation, or nil when the configuration is valid.
func Validate(cfg *Config) error {
	var errs []FieldError

	errs = append(errs, validateHTTP(&cfg.HTTP)...)
	errs = append(errs, validateRetry(&cfg.Retry)...)
	errs = append(errs, validateCategories(cfg.Categories)...)
	errs = append(errs, validateQueue(&cfg.Queue)...)
	errs = append(errs, validateTelemetry(&cfg.Telemetry)...)

	if len(errs) > 0 {
		return ValidationError{Errors: errs}
	}
	return nil
}

func validateHTTP(cfg *HTTPConfig) []FieldError {
	var errs []FieldError

	if cfg.BaseURL == "" {
		errs = append(errs, FieldError{Field: "http.base_url", Message: "must not be empty"})
	} else if u, err := url.Parse(cfg.BaseURL); err != nil || u.Scheme == "" || u.Host == "" {
		errs = append(errs, FieldError{Field: "http.base_url", Message: "must be an absolute URL"})
	}

	if cfg.Timeout < 0 {
		errs = append(errs, FieldError{Field: "http.timeout", Message: "must not be negative"})
	}
	if cfg.MaxIdleConns < 0 {
		errs = append(errs, FieldError{Field: "http.max_idle_conns", Message: "must not be negative"})
	}
	return errs
}

func validateRetry(cfg *RetryConfig) []FieldError {
	var errs []FieldError

	if cfg.MaxAttempts < 1 {
		errs = append(errs, FieldError{Field: "retry.max_attempts", Message: "must be at least 1"})
	}
	if cfg.BaseDelay <= 0 {
		errs = append(errs, FieldError{Field: "retry.base_delay", Message: "must be positive"})
	}
	return errs
}

func validateCategories(categories map[string]CategoryConfig) []FieldError {
	var errs []FieldError

	for name, cfg := range categories {
		if name == "" {
			errs = append(errs, FieldError{Field: "categories", Message: "category name must not be empty"})
			continue
		}
		if cfg.MaxRequests < 1 {
			errs = append(errs, FieldError{
				Field:   fmt.Sprintf("categories.%s.max_requests", name),
				Message: "must be at least 1",
			})
		}
		if cfg.Window <= 0 {
			errs = append(errs, FieldError{
				Field:   fmt.Sprintf("categories.%s.window", name),
				Message: "must be positive",
			})
		}
	}
	return errs
}

func validateQueue(cfg *QueueConfig) []FieldError {
	var errs []FieldError

	if cfg.Persist && cfg.JournalPath == "" {
		errs = append(errs, FieldError{Field: "queue.journal_path", Message: "required when queue.persist is true"})
	}
	if cfg.PruneIdleAfter < 0 {
		errs = append(errs, FieldError{Field: "queue.prune_idle_after", Message: "must not be negative"})
	}
	return errs
}

func validateTelemetry(cfg *TelemetryConfig) []FieldError {
	var errs []FieldError

	switch cfg.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		errs = append(errs, FieldError{
			Field:   "telemetry.logging.level",
			Message: fmt.Sprintf("unknown level %q (expected debug, info, warn, error)", cfg.Logging.Level),
		})
	}

	switch cfg.Logging.Format {
	case "json", "text":
	default:
		errs = append(errs, FieldError{
			Field:   "telemetry.logging.format",
			Message: fmt.Sprintf("unknown format %q (expected json, text)", cfg.Logging.Format),
		})
	}
	return errs
}
