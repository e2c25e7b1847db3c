package service

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	errs "domainsale/internal/errors"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	// report JSON names so details line up with the request body
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// validateStruct runs struct tag validation and returns one FieldError per failing field.
func validateStruct(s interface{}) []errs.FieldError {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return []errs.FieldError{{Field: "", Message: err.Error()}}
	}

	out := make([]errs.FieldError, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		out = append(out, errs.FieldError{Field: fe.Field(), Message: fieldMessage(fe)})
	}
	return out
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email address"
	case "iscolor":
		return "must be a valid CSS color"
	case "min":
		return fmt.Sprintf("must be at least %s characters", fe.Param())
	case "max":
		return fmt.Sprintf("must be at most %s characters", fe.Param())
	default:
		return "is invalid"
	}
}

func validationError(fields []errs.FieldError) error {
	if len(fields) == 0 {
		return nil
	}
	return &errs.ValidationError{Fields: fields}
}

// Validate checks struct tags on i and reports failures as a ValidationError.
func Validate(i interface{}) error {
	return validationError(validateStruct(i))
}
