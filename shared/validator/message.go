package validator

import (
	"errors"
	"strings"

	val "github.com/go-playground/validator/v10"
)

var (
	messages = map[string]string{
		"required":         "{field} is required",
		"required_if":      "{field} is required",
		"required_without": "{field} is required when {param} is missing",
		"gte":              "{field} must be greater than or equal to {param}",
		"lte":              "{field} must be less than or equal to {param}",
		"gt":               "{field} must be greater than {param}",
		"oneof":            "{field} must be one of {param}",
		"max":              "{field} must be less than or equal to {param}",
		"min":              "{field} must be greater than or equal to {param}",
		"email":            "{field} must be a valid email address",
		"uuid":             "{field} must be a valid id",
		"dive":             "{field} contains an invalid value",
		"date":             "{field} must be a date formatted as YYYY-MM-DD",
		"clock":            "{field} must be a time formatted as HH:MM",
		"rule":             "{field} is invalid",
		"nefield":          "{field} must differ from {param}",
	}
)

func message(err error) string {
	var valErrors val.ValidationErrors

	if !errors.As(err, &valErrors) {
		return err.Error()
	}

	for _, valErr := range valErrors {
		msg := messages[valErr.Tag()]
		if msg == "" {
			continue
		}

		msg = strings.ReplaceAll(msg, "{field}", valErr.Field())
		msg = strings.ReplaceAll(msg, "{param}", valErr.Param())

		return msg
	}

	return valErrors.Error()
}
