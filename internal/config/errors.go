package config

import "fmt"

// ConfigurationError represents a single problem found while loading or
// validating the gateway's backend configuration file. It carries enough
// context (file path, the offending backend, the field) to produce an
// actionable message.
type ConfigurationError struct {
	// FilePath is the configuration file that was being read.
	FilePath string
	// Backend is the name of the offending backend entry, empty for
	// file-level problems (missing file, malformed JSON, non-object root).
	Backend string
	// Field is the specific field that failed validation, empty when the
	// problem applies to the whole backend entry.
	Field string
	// Message is a human-readable description of the problem.
	Message string
}

func (e *ConfigurationError) Error() string {
	switch {
	case e.Backend == "":
		return fmt.Sprintf("%s: %s", e.FilePath, e.Message)
	case e.Field == "":
		return fmt.Sprintf("%s: backend %q: %s", e.FilePath, e.Backend, e.Message)
	default:
		return fmt.Sprintf("%s: backend %q: field %q: %s", e.FilePath, e.Backend, e.Field, e.Message)
	}
}

// ConfigurationErrors collects every problem found during a single load, so
// a caller sees the full set of mistakes in a config file instead of only
// the first one.
type ConfigurationErrors struct {
	Errors []*ConfigurationError
}

func (e *ConfigurationErrors) Error() string {
	if len(e.Errors) == 1 {
		return e.Errors[0].Error()
	}
	return fmt.Sprintf("%d configuration errors, first: %s", len(e.Errors), e.Errors[0].Error())
}

// HasErrors reports whether any error has been collected.
func (e *ConfigurationErrors) HasErrors() bool {
	return len(e.Errors) > 0
}

// Add appends a new configuration error.
func (e *ConfigurationErrors) Add(backend, field, message string) {
	e.Errors = append(e.Errors, &ConfigurationError{Backend: backend, Field: field, Message: message})
}
