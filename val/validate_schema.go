package val

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/code19m/errx"
	"github.com/go-playground/validator/v10"
)

const (
	CodeValidationFailed = "VALIDATION_FAILED"
)

// ValidateSchema checks schema against its `validate` tags and reports
// every failing field at once in a single T_Validation error.
func ValidateSchema(schema any) error {
	err := validate.Struct(schema)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return errx.New(
			fmt.Sprintf("Unknown validation error: %s", err.Error()),
			errx.WithCode(CodeValidationFailed),
			errx.WithType(errx.T_Validation),
		)
	}

	fields := make(errx.M, len(verrs))
	for _, fe := range verrs {
		fields[fe.Field()] = describe(fe)
	}

	return errx.New(
		"Validation failed. See fields for details.",
		errx.WithCode(CodeValidationFailed),
		errx.WithType(errx.T_Validation),
		errx.WithFields(fields),
	)
}

// fixedMessages covers constraints whose description needs no
// parameter interpolation.
var fixedMessages = map[string]string{ //nolint:gochecknoglobals // static message table
	"required":      "This field is required",
	"email":         "Invalid email format",
	"alpha":         "Must contain only alphabetic characters",
	"alphanum":      "Must contain only alphanumeric characters",
	"numeric":       "Must be a valid number",
	"url":           "Must be a valid URL",
	"uri":           "Must be a valid URI",
	"uuid":          "Must be a valid UUID",
	"uuid4":         "Must be a valid UUID v4",
	"json":          "Must be valid JSON",
	"base64":        "Must be valid base64",
	"hostname":      "Must be a valid hostname",
	"hostname_port": "Must be a valid host:port pair",
	"fqdn":          "Must be a valid fully qualified domain name",
	"ip":            "Must be a valid IP address",
	"ipv4":          "Must be a valid IPv4 address",
}

// describe renders a readable message for one failed constraint. Sizes
// are phrased in characters for strings and plain magnitudes otherwise.
func describe(fe validator.FieldError) string {
	tag, param := fe.Tag(), fe.Param()

	if msg, ok := fixedMessages[tag]; ok {
		return msg
	}

	isString := fe.Kind() == reflect.String

	switch tag {
	case "min":
		if isString {
			return fmt.Sprintf("Must be at least %s characters", param)
		}
		return fmt.Sprintf("Must be at least %s", param)
	case "max":
		if isString {
			return fmt.Sprintf("Must be at most %s characters", param)
		}
		return fmt.Sprintf("Must be at most %s", param)
	case "len":
		if isString {
			return fmt.Sprintf("Must be exactly %s characters", param)
		}
		return fmt.Sprintf("Must have exactly %s items", param)
	case "gte":
		return fmt.Sprintf("Must be greater than or equal to %s", param)
	case "lte":
		return fmt.Sprintf("Must be less than or equal to %s", param)
	case "gt":
		return fmt.Sprintf("Must be greater than %s", param)
	case "lt":
		return fmt.Sprintf("Must be less than %s", param)
	case "oneof":
		return "Must be one of: " + strings.ReplaceAll(param, " ", ", ")
	case "startswith":
		return "Must start with: " + param
	case "endswith":
		return "Must end with: " + param
	case "datetime":
		return "Must be a valid datetime in format: " + param
	case "excludesall":
		return "Must not contain any of: " + param
	}

	return "Failed validation: " + tag
}
