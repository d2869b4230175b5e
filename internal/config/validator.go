package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/robfig/cron/v3"
)

// ValidateConfig performs validation on the GlobalConfig structure.
func ValidateConfig(cfg *GlobalConfig) error {
	validate := newValidator()

	if err := validate.Struct(cfg); err != nil {
		return formatValidationError(err)
	}

	return validateDistinctDataDirs(cfg)
}

func newValidator() *validator.Validate {
	validate := validator.New()

	_ = validate.RegisterValidation("loglevel", func(fl validator.FieldLevel) bool {
		switch strings.ToLower(fl.Field().String()) {
		case "", "debug", "info", "warn", "error", "fatal", "panic":
			return true
		default:
			return false
		}
	})

	_ = validate.RegisterValidation("logformat", func(fl validator.FieldLevel) bool {
		switch strings.ToLower(fl.Field().String()) {
		case "", "console", "text", "json":
			return true
		default:
			return false
		}
	})

	_ = validate.RegisterValidation("mode", func(fl validator.FieldLevel) bool {
		switch strings.ToLower(fl.Field().String()) {
		case ModeOnetime, ModeAutomated:
			return true
		default:
			return false
		}
	})

	_ = validate.RegisterValidation("subjectkind", func(fl validator.FieldLevel) bool {
		return SubjectKind(fl.Field().String()).IsValid()
	})

	_ = validate.RegisterValidation("cronexpr", func(fl validator.FieldLevel) bool {
		_, err := cron.ParseStandard(fl.Field().String())
		return err == nil
	})

	validate.RegisterStructValidation(validateSubjectByKind, SubjectConfig{})

	return validate
}

// validateSubjectByKind enforces the fields each detector kind depends on.
func validateSubjectByKind(sl validator.StructLevel) {
	s := sl.Current().Interface().(SubjectConfig)

	require := func(ok bool, field, fieldName string) {
		if !ok {
			sl.ReportError(nil, field, fieldName, "required_for_"+string(s.Kind), "")
		}
	}

	switch s.Kind {
	case SubjectKindRSS:
		require(s.URL != "", "url", "URL")
	case SubjectKindPage:
		require(s.URL != "", "url", "URL")
		require(s.CSSSelector != "", "css_selector", "CSSSelector")
	case SubjectKindRenderedPage:
		require(s.URL != "", "url", "URL")
		require(s.CSSSelectorLoaded != "", "css_selector_loaded", "CSSSelectorLoaded")
		require(s.CSSSelectorContent != "", "css_selector_content", "CSSSelectorContent")
	case SubjectKindURLAvailability:
		require(s.URL != "", "url", "URL")
		require(s.ExpectedStatusCode != 0, "expected_status_code", "ExpectedStatusCode")
	case SubjectKindHostAvailability:
		require(s.Host != "", "host", "Host")
		require(len(s.ExpectedOpenPorts) > 0, "expected_open_ports", "ExpectedOpenPorts")
	}
}

func validateDistinctDataDirs(cfg *GlobalConfig) error {
	seen := make(map[string]string, len(cfg.Subjects))
	for _, s := range cfg.Subjects {
		dir := filepath.Clean(s.ResolveDataDir(cfg.StorageConfig.BaseDir))
		if other, ok := seen[dir]; ok {
			return fmt.Errorf("configuration validation failed:\n  subjects '%s' and '%s' share data directory '%s'", other, s.Name, dir)
		}
		seen[dir] = s.Name
	}
	return nil
}

func formatValidationError(err error) error {
	var errs validator.ValidationErrors
	if !errors.As(err, &errs) {
		return fmt.Errorf("configuration validation error: %w", err)
	}

	messages := make([]string, 0, len(errs))
	for _, e := range errs {
		fieldName := e.Namespace()
		if idx := strings.Index(fieldName, "."); idx >= 0 {
			fieldName = fieldName[idx+1:]
		}
		msg := fmt.Sprintf("Validation failed for '%s': rule '%s'", fieldName, e.Tag())
		if e.Param() != "" {
			msg += fmt.Sprintf(" (expected: %s)", e.Param())
		}
		if e.Value() != nil && e.Value() != "" {
			msg += fmt.Sprintf(", actual: '%v'", e.Value())
		}
		messages = append(messages, msg)
	}
	return fmt.Errorf("configuration validation failed:\n  %s", strings.Join(messages, "\n  "))
}
