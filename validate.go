package rest

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

// SelfValidator is implemented by request data types that validate themselves.
type SelfValidator interface {
	Validate() error
}

// Validator validates request data before it is sent.
type Validator interface {
	Validate(v any) error
}

// ValidatorFunc adapts a function to the Validator interface.
type ValidatorFunc func(v any) error

// Validate calls f.
func (f ValidatorFunc) Validate(v any) error { return f(v) }

// StructValidator validates `validate` struct tags with go-playground/validator.
// Field names in errors follow the json tag.
type StructValidator struct {
	validate *validator.Validate
}

// NewStructValidator returns a StructValidator with JSON field naming.
func NewStructValidator() *StructValidator {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		if name == "" {
			return f.Name
		}
		return name
	})
	return &StructValidator{validate: v}
}

// Validate checks v. Non-struct values pass.
func (s *StructValidator) Validate(v any) error {
	rv := reflect.ValueOf(v)
	for rv.Kind() == reflect.Pointer {
		if rv.IsNil() {
			return nil
		}
		rv = rv.Elem()
	}
	if rv.Kind() != reflect.Struct {
		return nil
	}

	err := s.validate.Struct(v)
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}

	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, fe.Field()+" "+validationMessage(fe))
	}
	return fmt.Errorf("%s: %w", strings.Join(msgs, "; "), err)
}

func validationMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "min", "gte":
		return fmt.Sprintf("must be at least %s", fe.Param())
	case "max", "lte":
		return fmt.Sprintf("must be at most %s", fe.Param())
	case "email":
		return "must be a valid email"
	case "oneof":
		return fmt.Sprintf("must be one of [%s]", fe.Param())
	}
	return "is invalid"
}

// validateData runs SelfValidator and then v, if set.
func validateData(data any, v Validator) error {
	if sv, ok := data.(SelfValidator); ok {
		if err := sv.Validate(); err != nil {
			return wrap(ErrValidation, err)
		}
	}
	if v != nil {
		if err := v.Validate(data); err != nil {
			return wrap(ErrValidation, err)
		}
	}
	return nil
}
