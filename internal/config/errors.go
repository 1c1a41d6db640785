package config

import "fmt"

// ConfigNotFoundError represents a missing config file.
type ConfigNotFoundError struct {
	Path string
	Hint string
}

func (e *ConfigNotFoundError) Error() string {
	return fmt.Sprintf("config file not found: %s\n\n💡 %s", e.Path, e.Hint)
}

// InvalidConfigError represents a malformed config file.
type InvalidConfigError struct {
	Path    string
	Message string
	Hint    string
}

func (e *InvalidConfigError) Error() string {
	msg := fmt.Sprintf("invalid config: %s\n", e.Path)
	if e.Message != "" {
		msg += e.Message + "\n"
	}
	if e.Hint != "" {
		msg += "💡 " + e.Hint
	}
	return msg
}

// InvalidSurveyError represents a survey definition that failed validation.
type InvalidSurveyError struct {
	Path    string
	Message string
}

func (e *InvalidSurveyError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("invalid survey definition: %s", e.Message)
	}
	return fmt.Sprintf("invalid survey definition %s: %s", e.Path, e.Message)
}
