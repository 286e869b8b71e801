package validator

import (
	"encoding/json"
	"fmt"
	"io"
	"reflect"
	"strings"
	"time"

	"spacebook/config"
	"spacebook/shared/constant"
	"spacebook/shared/failure"

	val "github.com/go-playground/validator/v10"
)

var validate *val.Validate

// ruleValidation runs the field's own Validate(*config.Config) error method.
func ruleValidation(cfg *config.Config) val.Func {
	return func(fl val.FieldLevel) bool {
		method := fl.Field().MethodByName("Validate")
		if !method.IsValid() {
			return false
		}

		result := method.Call([]reflect.Value{reflect.ValueOf(cfg)})

		return result[0].IsNil()
	}
}

func layoutValidation(layout string) val.Func {
	return func(fl val.FieldLevel) bool {
		value := fl.Field().String()
		if value == "" {
			return true
		}

		parsed, err := time.Parse(layout, value)

		return err == nil && parsed.Format(layout) == value
	}
}

func jsonTagName(field reflect.StructField) string {
	name, _, _ := strings.Cut(field.Tag.Get("json"), ",")
	if name == "-" {
		return ""
	}

	if name == "" {
		return field.Name
	}

	return name
}

func init() {
	cfg := config.Get()

	validate = val.New(val.WithRequiredStructEnabled())
	validate.RegisterTagNameFunc(jsonTagName)

	rules := map[string]val.Func{
		"rule":  ruleValidation(cfg),
		"empty": func(fl val.FieldLevel) bool { return fl.Field().IsZero() },
		"date":  layoutValidation(constant.DateOnlyFormat),
		"clock": layoutValidation(constant.ClockFormat),
	}

	for tag, fn := range rules {
		if err := validate.RegisterValidation(tag, fn); err != nil {
			panic(err)
		}
	}
}

// Validate decodes a JSON body from r into data and validates it. Unknown
// fields are rejected so typos in booking requests do not pass silently.
func Validate[T any](r io.Reader, data *T) error {
	decoder := json.NewDecoder(r)
	decoder.DisallowUnknownFields()

	if err := decoder.Decode(data); err != nil {
		return failure.BadRequest(fmt.Errorf("failed to decode request body: %w", err)) //nolint:wrapcheck
	}

	return ValidateStruct(data)
}

func ValidateStruct[T any](data *T) error {
	if err := validate.Struct(data); err != nil {
		return failure.BadRequestFromString(message(err)) //nolint:wrapcheck
	}

	return nil
}

func ValidateVar(field any, tag string) error {
	if err := validate.Var(field, tag); err != nil {
		return failure.BadRequestFromString(message(err)) //nolint:wrapcheck
	}

	return nil
}
