package dto

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

// jsonTagSplit caps the SplitN over a json struct tag: the field name comes
// first, options such as omitempty follow.
const jsonTagSplit = 2

// Sentinel errors the binding helpers wrap. Handlers branch on them with
// errors.Is when deciding between a 400 BAD_REQUEST and a VALIDATION_ERROR.
var (
	// ErrValidation marks input that parsed but failed a rule.
	ErrValidation = errors.New("validation failed")

	// ErrBinding marks input that could not be decoded at all.
	ErrBinding = errors.New("binding failed")
)

var (
	validate     *validator.Validate
	validateOnce sync.Once
)

// Validator returns the process-wide validator. The first call teaches it to
// report fields by their JSON names and registers the notempty rule the
// quote payloads rely on.
func Validator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New()

		validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("json"), ",", jsonTagSplit)[0]
			if name == "-" {
				return ""
			}

			return name
		})

		_ = validate.RegisterValidation("notempty", validateNotEmpty)
	})

	return validate
}

// Validate runs struct-tag validation over v and wraps any failure in
// ErrValidation.
func Validate(v any) error {
	if err := Validator().Struct(v); err != nil {
		return fmt.Errorf("%w: %w", ErrValidation, err)
	}

	return nil
}

// BindAndValidate decodes a JSON body into v and validates it. Decode
// failures wrap ErrBinding, rule failures wrap ErrValidation;
// HandleBindingError renders either.
func BindAndValidate(c *gin.Context, v any) error {
	if err := c.ShouldBindJSON(v); err != nil {
		return fmt.Errorf("%w: %w", ErrBinding, err)
	}

	return Validate(v)
}

// BindQueryAndValidate is BindAndValidate for query strings, used by the
// list endpoints for pagination and category parameters.
func BindQueryAndValidate(c *gin.Context, v any) error {
	if err := c.ShouldBindQuery(v); err != nil {
		return fmt.Errorf("%w: %w", ErrBinding, err)
	}

	return Validate(v)
}

// ValidationErrors flattens a validator error into field-to-message pairs,
// keyed by the JSON spelling of each field. Non-validator errors yield an
// empty map.
func ValidationErrors(err error) map[string]string {
	fieldErrors := make(map[string]string)

	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) {
		for _, fieldErr := range validationErrs {
			fieldErrors[fieldErr.Field()] = validationMessage(fieldErr)
		}
	}

	return fieldErrors
}

// IsValidationError reports whether err carries field-level failures that
// ValidationErrors can flatten.
func IsValidationError(err error) bool {
	var validationErrs validator.ValidationErrors
	return errors.As(err, &validationErrs)
}

// validationMessages maps a validation tag to the message clients see.
// {param} stands in for the tag's parameter.
var validationMessages = map[string]string{
	"required": "this field is required",
	"notempty": "must not be empty",
	"email":    "must be a valid email address",
	"url":      "must be a valid URL",
	"oneof":    "must be one of: {param}",
	"gt":       "must be greater than {param}",
	"gte":      "must be greater than or equal to {param}",
	"lt":       "must be less than {param}",
	"lte":      "must be less than or equal to {param}",
}

// validationMessage renders one field failure as a client-facing sentence.
func validationMessage(fe validator.FieldError) string {
	tag := fe.Tag()

	// min and max read differently for strings than for numbers.
	if tag == "min" || tag == "max" {
		return minMaxMessage(tag, fe.Param(), fe.Type().Kind())
	}

	if msg, ok := validationMessages[tag]; ok {
		return strings.ReplaceAll(msg, "{param}", fe.Param())
	}

	return "failed validation: " + tag
}

// minMaxMessage phrases min/max failures, counting characters for strings
// and plain magnitude for everything else.
func minMaxMessage(tag, param string, kind reflect.Kind) string {
	var suffix string
	if kind == reflect.String {
		suffix = " characters"
	}

	if tag == "max" {
		return "must be at most " + param + suffix
	}

	return "must be at least " + param + suffix
}

// validateNotEmpty rejects strings that are blank once surrounding
// whitespace is stripped. Quote text and category fields bind with it.
func validateNotEmpty(fl validator.FieldLevel) bool {
	return strings.TrimSpace(fl.Field().String()) != ""
}

// Validatable lets a request type add checks beyond what struct tags can
// express.
type Validatable interface {
	Validate() error
}

// ValidateAll runs struct-tag validation, then the type's own Validate if
// it implements Validatable. Both failure paths wrap ErrValidation.
func ValidateAll(v any) error {
	if err := Validate(v); err != nil {
		return err
	}

	validatable, ok := v.(Validatable)
	if !ok {
		return nil
	}

	if err := validatable.Validate(); err != nil {
		return fmt.Errorf("%w: %w", ErrValidation, err)
	}

	return nil
}
