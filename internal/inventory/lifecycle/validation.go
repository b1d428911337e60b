package lifecycle

import (
	"fmt"
	"reflect"
	"strings"

	custom_error "itinventory/pkg/errors"
	"itinventory/pkg/metadata"

	"github.com/go-playground/validator/v10"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		tag := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if tag == "" || tag == "-" {
			return f.Name
		}
		return tag
	})
	_ = v.RegisterValidation("categorykey", isCategoryKey)
	return v
}

func isCategoryKey(fl validator.FieldLevel) bool {
	return metadata.IsCategoryKey(metadata.NormalizeCategory(fl.Field().String()))
}

func validateRequest(req any) error {
	if err := validate.Struct(req); err != nil {
		return formatValidationErrors(err)
	}
	return nil
}

func formatValidationErrors(err error) error {
	if errs, ok := err.(validator.ValidationErrors); ok {
		details := map[string]any{}
		for _, fieldErr := range errs {
			details[fieldPath(fieldErr)] = validationMessage(fieldErr)
		}
		return custom_error.New(custom_error.CodeValidation, "validation failed").WithDetails(details)
	}
	return custom_error.Wrap(custom_error.CodeValidation, err, "validation failed")
}

// fieldPath drops the struct name from the namespace: "items[0].id".
func fieldPath(fe validator.FieldError) string {
	if _, path, ok := strings.Cut(fe.Namespace(), "."); ok {
		return path
	}
	return fe.Field()
}

func validationMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "min":
		return fmt.Sprintf("must be at least %s", fe.Param())
	case "max":
		return fmt.Sprintf("must be at most %s", fe.Param())
	case "gte":
		return fmt.Sprintf("must be greater than or equal to %s", fe.Param())
	case "categorykey":
		return "must be a lowercase category key"
	case "datetime":
		return fmt.Sprintf("must match %s", fe.Param())
	}
	return "is invalid"
}
