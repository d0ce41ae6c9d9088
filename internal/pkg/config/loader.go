package config

import (
	"fmt"
	"os"
	"time"
)

// ConfigLoadResult carries a loaded value together with any fallback
// warnings. The loaders never fail: a missing variable silently takes
// the default, an invalid one takes the default with a warning that the
// caller is expected to log.
type ConfigLoadResult struct {
	Value           interface{}
	Warnings        []string
	FallbackApplied bool
}

func loaded(value interface{}) ConfigLoadResult {
	return ConfigLoadResult{Value: value}
}

func fellBack(value interface{}, warning string) ConfigLoadResult {
	return ConfigLoadResult{
		Value:           value,
		Warnings:        []string{warning},
		FallbackApplied: true,
	}
}

// LoadEnvString returns the variable's value, or defaultValue when it
// is unset or empty. No validation.
func LoadEnvString(envKey, defaultValue string) string {
	value := os.Getenv(envKey)
	if value == "" {
		return defaultValue
	}
	return value
}

// LoadEnvWithFallback loads a string and runs it through validator
// (nil skips validation). An invalid value falls back to the default.
func LoadEnvWithFallback(envKey, defaultValue string, validator func(string) error) ConfigLoadResult {
	value := os.Getenv(envKey)
	if value == "" {
		return loaded(defaultValue)
	}

	if validator != nil {
		if err := validator(value); err != nil {
			return fellBack(defaultValue, fmt.Sprintf(
				"Invalid %s='%s': %v, falling back to default '%s'",
				envKey, value, err, defaultValue))
		}
	}

	return loaded(value)
}

// LoadEnvDuration parses the variable with time.ParseDuration ("30s",
// "5m", "1h30m") and validates the result. Parse or validation failure
// falls back to the default.
func LoadEnvDuration(envKey string, defaultValue time.Duration, validator func(time.Duration) error) ConfigLoadResult {
	valueStr := os.Getenv(envKey)
	if valueStr == "" {
		return loaded(defaultValue)
	}

	parsed, err := time.ParseDuration(valueStr)
	if err != nil {
		return fellBack(defaultValue, fmt.Sprintf(
			"Invalid %s='%s': %v, falling back to default '%v'",
			envKey, valueStr, err, defaultValue))
	}

	if validator != nil {
		if err := validator(parsed); err != nil {
			return fellBack(defaultValue, fmt.Sprintf(
				"Invalid %s='%s': %v, falling back to default '%v'",
				envKey, valueStr, err, defaultValue))
		}
	}

	return loaded(parsed)
}

// LoadEnvInt parses the variable as a base-10 integer and validates
// the result. Parse or validation failure falls back to the default.
func LoadEnvInt(envKey string, defaultValue int, validator func(int) error) ConfigLoadResult {
	valueStr := os.Getenv(envKey)
	if valueStr == "" {
		return loaded(defaultValue)
	}

	var parsed int
	if _, err := fmt.Sscanf(valueStr, "%d", &parsed); err != nil {
		return fellBack(defaultValue, fmt.Sprintf(
			"Invalid %s='%s': invalid integer format, falling back to default '%d'",
			envKey, valueStr, defaultValue))
	}

	if validator != nil {
		if err := validator(parsed); err != nil {
			return fellBack(defaultValue, fmt.Sprintf(
				"Invalid %s='%s': %v, falling back to default '%d'",
				envKey, valueStr, err, defaultValue))
		}
	}

	return loaded(parsed)
}

// LoadEnvBool accepts the strconv.ParseBool spellings ("1", "t",
// "true", "0", "f", "false" in any of their cases). Anything else
// falls back to the default.
func LoadEnvBool(envKey string, defaultValue bool) ConfigLoadResult {
	valueStr := os.Getenv(envKey)
	if valueStr == "" {
		return loaded(defaultValue)
	}

	switch valueStr {
	case "1", "t", "T", "true", "TRUE", "True":
		return loaded(true)
	case "0", "f", "F", "false", "FALSE", "False":
		return loaded(false)
	default:
		return fellBack(defaultValue, fmt.Sprintf(
			"Invalid %s='%s': invalid boolean format, expected 'true' or 'false', falling back to default '%t'",
			envKey, valueStr, defaultValue))
	}
}
