package provider

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"
)

// ValidateConfigFields validates configuration against provided field definitions.
// Optional fields are only checked when a value is present.
func ValidateConfigFields(providerName string, config map[string]string, fields []ConfigField) error {
	for _, field := range fields {
		value := strings.TrimSpace(config[field.Key])

		if value == "" {
			if field.Required {
				return &CredentialError{Provider: providerName, Missing: []string{field.Key}}
			}
			continue
		}

		if err := validateFieldType(providerName, field, value); err != nil {
			return err
		}

		if err := validateFieldPattern(providerName, field, value); err != nil {
			return err
		}

		if err := validateFieldLength(providerName, field, value); err != nil {
			return err
		}
	}

	return nil
}

// validateFieldType validates field based on its type
func validateFieldType(providerName string, field ConfigField, value string) error {
	switch field.Type {
	case "url":
		u, err := url.Parse(value)
		if err != nil || u.Scheme == "" || u.Host == "" {
			return fmt.Errorf("%s: field '%s' must be an absolute URL", providerName, field.Key)
		}
	case "boolean":
		if value != "true" && value != "false" {
			return fmt.Errorf("%s: field '%s' must be 'true' or 'false'", providerName, field.Key)
		}
	}
	return nil
}

// validateFieldPattern validates field against regex pattern
func validateFieldPattern(providerName string, field ConfigField, value string) error {
	if field.Pattern == "" {
		return nil
	}

	matched, err := regexp.MatchString(field.Pattern, value)
	if err != nil {
		return fmt.Errorf("%s: invalid pattern for field '%s': %v", providerName, field.Key, err)
	}

	if !matched {
		return fmt.Errorf("%s: field '%s' does not match required pattern", providerName, field.Key)
	}

	return nil
}

// validateFieldLength validates field length constraints
func validateFieldLength(providerName string, field ConfigField, value string) error {
	if field.MinLength > 0 && len(value) < field.MinLength {
		return fmt.Errorf("%s: field '%s' must be at least %d characters", providerName, field.Key, field.MinLength)
	}

	if field.MaxLength > 0 && len(value) > field.MaxLength {
		return fmt.Errorf("%s: field '%s' must not exceed %d characters", providerName, field.Key, field.MaxLength)
	}

	return nil
}
