package validation

import (
	"reflect"
	"regexp"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"

	"github.com/kbukum/rex/errors"
)

var (
	validate *validator.Validate
	once     sync.Once
)

// unitIDPattern matches task, job and deployment ids.
var unitIDPattern = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9_.:-]*$`)

// getValidator returns the singleton validator instance.
func getValidator() *validator.Validate {
	once.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())

		// rexfiles and runner config are YAML, so report yaml field names.
		validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
			tag := fld.Tag.Get("yaml")
			name := strings.SplitN(tag, ",", 2)[0]
			if name == "" && fld.Anonymous && strings.Contains(tag, ",inline") {
				return fld.Name
			}
			if name == "-" || name == "" {
				return toSnakeCase(fld.Name)
			}
			return name
		})

		_ = validate.RegisterValidation("unitid", func(fl validator.FieldLevel) bool {
			return unitIDPattern.MatchString(fl.Field().String())
		})
	})
	return validate
}

// Validate validates a struct using struct tags such as
// `validate:"required,unitid"`. Errors are reported with their namespace so
// nested fields are located, e.g. "tasks[2].id: is required".
func Validate(s any) error {
	v := getValidator()
	err := v.Struct(s)
	if err == nil {
		return nil
	}

	validationErrors, ok := err.(validator.ValidationErrors)
	if !ok {
		return errors.Validation("validation failed").WithCause(err)
	}

	collector := New()
	for _, e := range validationErrors {
		collector.AddError(fieldPath(e.Namespace()), formatValidationError(e))
	}
	return collector.Validate()
}

// fieldPath drops the root struct name and inlined structs, which keep
// their Go name, from a validator namespace.
func fieldPath(namespace string) string {
	segments := strings.Split(namespace, ".")
	if len(segments) == 1 {
		return namespace
	}
	var path []string
	for _, s := range segments[1:] {
		if s != "" && s[0] >= 'A' && s[0] <= 'Z' {
			continue
		}
		path = append(path, s)
	}
	return strings.Join(path, ".")
}

// formatValidationError creates a human-readable error message.
func formatValidationError(e validator.FieldError) string {
	switch e.Tag() {
	case "required":
		return "is required"
	case "min":
		if e.Kind() == reflect.String {
			return "must be at least " + e.Param() + " characters"
		}
		return "must be at least " + e.Param()
	case "max":
		if e.Kind() == reflect.String {
			return "must be at most " + e.Param() + " characters"
		}
		return "must be at most " + e.Param()
	case "gte":
		return "must be " + e.Param() + " or more"
	case "lte":
		return "must be " + e.Param() + " or less"
	case "oneof":
		return "must be one of: " + e.Param()
	case "unitid":
		return "must start with a letter or digit and contain only letters, digits, '_', '.', ':' or '-'"
	case "dive":
		return "is invalid"
	default:
		return "is invalid"
	}
}

// toSnakeCase converts a field name to snake_case.
func toSnakeCase(s string) string {
	var result strings.Builder
	for i, r := range s {
		if i > 0 && r >= 'A' && r <= 'Z' {
			result.WriteRune('_')
		}
		if r >= 'A' && r <= 'Z' {
			result.WriteRune(r + 32)
		} else {
			result.WriteRune(r)
		}
	}
	return result.String()
}
