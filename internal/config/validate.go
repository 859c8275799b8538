package config

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
)

var hexColorPattern = regexp.MustCompile(`^[0-9A-Fa-f]{6}([0-9A-Fa-f]{2})?$`)

var (
	validateOnce sync.Once
	structCheck  *validator.Validate
)

func configValidator() *validator.Validate {
	validateOnce.Do(func() {
		v := validator.New()
		v.RegisterTagNameFunc(func(field reflect.StructField) string {
			name := strings.SplitN(field.Tag.Get("toml"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			return name
		})
		_ = v.RegisterValidation("karaokecolor", func(fl validator.FieldLevel) bool {
			return hexColorPattern.MatchString(fl.Field().String())
		})
		structCheck = v
	})
	return structCheck
}

// Validate ensures the configuration is usable. Every failing field is
// reported, prefixed with its TOML key.
func (c *Config) Validate() error {
	err := configValidator().Struct(c)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return fmt.Errorf("validate config: %w", err)
	}
	problems := make([]error, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		problems = append(problems, errors.New(describeFieldError(fe)))
	}
	return errors.Join(problems...)
}

func describeFieldError(fe validator.FieldError) string {
	key := fe.Namespace()
	if idx := strings.Index(key, "."); idx >= 0 {
		key = key[idx+1:]
	}
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s must be set", key)
	case "karaokecolor":
		return fmt.Sprintf("%s must be a hex color such as 2DE471 or 2DE471FF (got %q)", key, fe.Value())
	case "min":
		return fmt.Sprintf("%s must be >= %s", key, fe.Param())
	case "max":
		return fmt.Sprintf("%s must be <= %s", key, fe.Param())
	case "gtefield":
		return fmt.Sprintf("%s must be >= mfa.beam", key)
	case "oneof":
		return fmt.Sprintf("%s must be one of [%s] (got %q)", key, strings.ReplaceAll(fe.Param(), " ", ", "), fe.Value())
	case "endswith":
		return fmt.Sprintf("%s must end with %s", key, fe.Param())
	default:
		return fmt.Sprintf("%s failed %s validation", key, fe.Tag())
	}
}
