package config

import (
	"reflect"
	"regexp"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"

	inkerrors "github.com/alexisbeaulieu97/inkwell/pkg/errors"
)

var (
	validatorOnce sync.Once
	validateInst  *validator.Validate

	semverPattern   = regexp.MustCompile(`^\d+\.\d+(?:\.\d+)?(?:-[0-9A-Za-z-.]+)?(?:\+[0-9A-Za-z-.]+)?$`)
	providerPattern = regexp.MustCompile(`^[a-z][a-z0-9-]*$`)
	extPattern      = regexp.MustCompile(`^\.?[A-Za-z0-9]+$`)
)

// validatorInstance configures and returns the shared validator instance used across the config package.
func validatorInstance() *validator.Validate {
	validatorOnce.Do(func() {
		v := validator.New()

		v.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("yaml"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			return name
		})

		_ = v.RegisterValidation("semver", func(fl validator.FieldLevel) bool {
			return semverPattern.MatchString(fl.Field().String())
		})

		_ = v.RegisterValidation("provider_name", func(fl validator.FieldLevel) bool {
			return providerPattern.MatchString(fl.Field().String())
		})

		_ = v.RegisterValidation("file_ext", func(fl validator.FieldLevel) bool {
			return extPattern.MatchString(strings.TrimSpace(fl.Field().String()))
		})

		validateInst = v
	})

	return validateInst
}

// ValidateConfig performs schema and cross-field validation on the configuration.
func ValidateConfig(cfg *Config) error {
	if cfg == nil {
		return inkerrors.NewValidationError("config", "configuration is nil", nil)
	}

	if err := validatorInstance().Struct(cfg); err != nil {
		return convertValidationError(err)
	}

	if cfg.Evaluator.Provider == "command" && strings.TrimSpace(cfg.Evaluator.Command.Run) == "" {
		return inkerrors.NewValidationError("evaluator.command.run", "command provider requires a run command", nil)
	}

	if len(cfg.Settings.Extensions()) == 0 {
		return inkerrors.NewValidationError("settings.accepted_extensions", "at least one extension is required", nil)
	}

	return nil
}
