package checkout

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
)

// local@domain.tld, nothing stricter
var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

var formValidator = newFormValidator()

// CustomerForm is what the shopper submits to capture an order.
type CustomerForm struct {
	Name  string `json:"name" validate:"required"`
	Email string `json:"email" validate:"required,basicemail"`
	Notes string `json:"notes"`
}

var fieldMessages = map[string]string{
	"name.required":    "Please enter your name",
	"email.required":   "Please enter your email address",
	"email.basicemail": "Please enter a valid email address",
}

func newFormValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	if err := v.RegisterValidation("basicemail", func(fl validator.FieldLevel) bool {
		return emailPattern.MatchString(fl.Field().String())
	}); err != nil {
		panic(fmt.Sprintf("register basicemail validation: %v", err))
	}
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// Normalized trims surrounding whitespace from every field.
func (f CustomerForm) Normalized() CustomerForm {
	return CustomerForm{
		Name:  strings.TrimSpace(f.Name),
		Email: strings.TrimSpace(f.Email),
		Notes: strings.TrimSpace(f.Notes),
	}
}

// Validate returns a *ValidationError naming each bad field, or nil.
func (f CustomerForm) Validate() error {
	err := formValidator.Struct(f)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}

	fields := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		msg, ok := fieldMessages[fe.Field()+"."+fe.Tag()]
		if !ok {
			msg = "is invalid"
		}
		fields[fe.Field()] = msg
	}
	return &ValidationError{Fields: fields}
}

// IsValidEmail reports whether email has the local@domain.tld shape.
func IsValidEmail(email string) bool {
	return emailPattern.MatchString(email)
}
