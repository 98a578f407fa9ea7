package services

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/isdelr/contactbook/internal/models"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	// Report fields by their JSON names so messages match the request body.
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// validateUserInput checks a normalized UserInput.
func validateUserInput(in models.UserInput) error {
	if in.Username == "" {
		return &ValidationError{Message: "username cannot be empty"}
	}

	err := validate.Struct(in)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return err
	}

	fe := fieldErrs[0]
	switch fe.Tag() {
	case "max":
		return &ValidationError{Message: fmt.Sprintf("%s must be at most %s characters", fe.Field(), fe.Param())}
	case "required":
		return &ValidationError{Message: fmt.Sprintf("%s cannot be empty", fe.Field())}
	}
	return &ValidationError{Message: fmt.Sprintf("%s is invalid", fe.Field())}
}

// validateOperator applies the operator length limit used by UserInput.
func validateOperator(op string) error {
	if err := validate.Var(op, "max=50"); err != nil {
		return &ValidationError{Message: "operator must be at most 50 characters"}
	}
	return nil
}
