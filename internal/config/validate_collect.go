package config

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

// issueAdder adds a validation issue to a shared collector.
type issueAdder func(field, message string)

// issueCollector accumulates validation issues.
type issueCollector struct {
	issues []Issue
}

// add records a new validation issue.
func (c *issueCollector) add(field, message string) {
	c.issues = append(c.issues, Issue{Field: field, Message: message})
}

// result returns a ValidationError when issues are present.
func (c *issueCollector) result() error {
	if len(c.issues) == 0 {
		return nil
	}
	return &ValidationError{Issues: c.issues}
}

var tagValidate = newTagValidator()

// newTagValidator reports fields by their YAML names.
func newTagValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name := strings.SplitN(field.Tag.Get("yaml"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// collectTagIssues runs the struct-tag rules and records each failure as an issue.
func collectTagIssues(cfg *Config, add issueAdder) {
	err := tagValidate.Struct(cfg)
	if err == nil {
		return
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		add("config", err.Error())
		return
	}
	for _, fieldErr := range fieldErrs {
		add(fieldPath(fieldErr.Namespace()), tagMessage(fieldErr))
	}
}

// fieldPath drops the root struct name from a validator namespace.
func fieldPath(namespace string) string {
	if idx := strings.Index(namespace, "."); idx >= 0 {
		return namespace[idx+1:]
	}
	return namespace
}

func tagMessage(fieldErr validator.FieldError) string {
	switch fieldErr.Tag() {
	case "required":
		return "is required"
	case "eq":
		return fmt.Sprintf("unsupported value %v (want %s)", fieldErr.Value(), fieldErr.Param())
	case "oneof":
		return fmt.Sprintf("unsupported value %q (want one of %s)", fmt.Sprint(fieldErr.Value()), fieldErr.Param())
	case "gte":
		return fmt.Sprintf("must be >= %s", fieldErr.Param())
	case "lte":
		return fmt.Sprintf("must be <= %s", fieldErr.Param())
	case "len":
		return fmt.Sprintf("must have exactly %s entries", fieldErr.Param())
	case "min":
		return fmt.Sprintf("must have at least %s entries", fieldErr.Param())
	case "unique":
		return "must not repeat values"
	default:
		return fmt.Sprintf("failed %q rule", fieldErr.Tag())
	}
}
