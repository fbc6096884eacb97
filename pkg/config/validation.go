package config

import (
	"fmt"

	"github.com/go-playground/validator/v10"
)

var validate *validator.Validate

func init() {
	validate = validator.New()
}

// Validate validates the configuration using struct tags and custom
// rules that cannot be expressed in tags.
func Validate(cfg *Config) error {
	if err := validate.Struct(cfg); err != nil {
		return formatValidationError(err)
	}
	return validateCustomRules(cfg)
}

// validateCustomRules checks invariants that cut across multiple
// fields: the backend count must match k+m (spec.md §6), and backend
// names must be unique since they identify shard→backend assignment.
func validateCustomRules(cfg *Config) error {
	if len(cfg.Backends) != cfg.K+cfg.M {
		return fmt.Errorf("backends: need exactly k+m=%d backends, got %d", cfg.K+cfg.M, len(cfg.Backends))
	}

	names := make(map[string]bool, len(cfg.Backends))
	for i, b := range cfg.Backends {
		if names[b.Name] {
			return fmt.Errorf("backends[%d]: duplicate backend name %q", i, b.Name)
		}
		names[b.Name] = true
	}

	return nil
}

// formatValidationError converts validator errors into a single
// user-facing message naming the first offending field.
func formatValidationError(err error) error {
	if validationErrs, ok := err.(validator.ValidationErrors); ok {
		if len(validationErrs) > 0 {
			e := validationErrs[0]
			return fmt.Errorf("%s: validation failed on '%s' tag (value: %v)",
				e.Namespace(), e.Tag(), e.Value())
		}
	}
	return err
}
