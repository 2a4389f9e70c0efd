package validation

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	_ = v.RegisterValidation("principal", func(fl validator.FieldLevel) bool {
		return IsValidPrincipal(fl.Field().String())
	})
	return v
}

// Struct validates a request body against its `validate` tags and returns a
// readable message naming the first failing field.
func Struct(req interface{}) error {
	err := validate.Struct(req)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return err
	}
	fe := verrs[0]
	field := strings.ToLower(fe.Field())
	switch fe.Tag() {
	case "required":
		return fmt.Errorf("%s is required", field)
	case "principal":
		return fmt.Errorf("%s is not a valid principal", field)
	case "gt":
		return fmt.Errorf("%s must be greater than %s", field, fe.Param())
	case "gte", "min":
		return fmt.Errorf("%s must be at least %s", field, fe.Param())
	case "max", "lte":
		return fmt.Errorf("%s must be at most %s", field, fe.Param())
	default:
		return fmt.Errorf("%s is invalid", field)
	}
}
