package config

import (
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"

	"github.com/kbukum/dikit/di"
	"github.com/kbukum/dikit/errors"
	"github.com/kbukum/dikit/logger"
)

// ContainerSettings tunes the resolution engine.
type ContainerSettings struct {
	// Compilation controls whether hot resolution plans are compiled in
	// the background. Nil means enabled.
	Compilation *bool `yaml:"compilation" mapstructure:"compilation"`

	// CompileThreshold is the number of interpreted resolutions after
	// which a plan is compiled. Zero means the default.
	CompileThreshold uint32 `yaml:"compile_threshold" mapstructure:"compile_threshold"`
}

// Options converts the settings into engine options.
func (c ContainerSettings) Options() di.Options {
	opts := di.DefaultOptions()
	if c.Compilation != nil {
		opts.Compilation = *c.Compilation
	}
	if c.CompileThreshold > 0 {
		opts.CompileThreshold = c.CompileThreshold
	}
	return opts
}

// Settings is the root configuration for an application built on the
// container. Projects extend it by embedding:
//
//	type AppConfig struct {
//	    config.Settings `yaml:",inline" mapstructure:",squash"`
//	    Database        DatabaseConfig `yaml:"database" mapstructure:"database"`
//	}
type Settings struct {
	Name        string            `yaml:"name" mapstructure:"name" validate:"required"`
	Environment string            `yaml:"environment" mapstructure:"environment" validate:"required,oneof=development staging production"`
	Version     string            `yaml:"version" mapstructure:"version"`
	Debug       bool              `yaml:"debug" mapstructure:"debug"`
	Container   ContainerSettings `yaml:"container" mapstructure:"container"`
	Logging     logger.Config     `yaml:"logging" mapstructure:"logging"`
}

// GetSettings returns the embedded Settings. Promoted through embedding
// so larger config structs satisfy the bootstrap contract automatically.
func (s *Settings) GetSettings() *Settings {
	return s
}

// ApplyDefaults fills unset fields. Embedding structs that override it
// should call s.Settings.ApplyDefaults() first.
func (s *Settings) ApplyDefaults() {
	if s.Environment == "" {
		s.Environment = "development"
	}
	if s.Environment == "development" {
		s.Debug = true
	}
	if s.Logging.ServiceName == "" && s.Name != "" {
		s.Logging.ServiceName = s.Name
	}
	s.Logging.ApplyDefaults()
}

// Validate checks the settings via struct tags plus the logging config.
func (s *Settings) Validate() error {
	if err := ValidateStruct(s); err != nil {
		return err
	}
	if err := s.Logging.Validate(); err != nil {
		return errors.ConfigInvalid("logging: " + err.Error()).WithCause(err)
	}
	return nil
}

var (
	validate     *validator.Validate
	validateOnce sync.Once
)

func getValidator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
		validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("mapstructure"), ",", 2)[0]
			if name == "" || name == "-" || name == ",squash" {
				return strings.ToLower(fld.Name)
			}
			return name
		})
	})
	return validate
}

// ValidateStruct validates any struct carrying `validate` tags and maps
// failures to CONFIG_INVALID errors with per-field messages.
func ValidateStruct(s any) error {
	err := getValidator().Struct(s)
	if err == nil {
		return nil
	}

	fieldErrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return errors.ConfigInvalid("validation failed").WithCause(err)
	}

	messages := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		messages = append(messages, fe.Field()+" "+describeFailure(fe))
	}
	appErr := errors.ConfigInvalid(strings.Join(messages, "; "))
	appErr.Details = map[string]any{"fields": messages}
	return appErr
}

func describeFailure(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "oneof":
		return "must be one of [" + fe.Param() + "]"
	case "min":
		return "must be at least " + fe.Param()
	case "max":
		return "must be at most " + fe.Param()
	default:
		return "failed " + fe.Tag() + " validation"
	}
}
