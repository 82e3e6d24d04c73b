package model

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// Validate checks a request struct against its `validate` tags. On failure it
// returns the JSON name of the first offending field together with an error
// wrapping ErrInvalidInput.
func Validate(req any) (string, error) {
	err := validate.Struct(req)
	if err == nil {
		return "", nil
	}

	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
		first := fieldErrs[0]
		return first.Field(), fmt.Errorf("%w: %s failed %q", ErrInvalidInput, first.Field(), first.Tag())
	}

	return "", fmt.Errorf("%w: %v", ErrInvalidInput, err)
}
