// Package validation checks form input before it is sent to the API.
package validation

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"sort"
	"strings"
	"unicode"

	"github.com/go-playground/validator/v10"
)

const passwordSymbols = "@$!%*?&"

var (
	mobilePhonePattern   = regexp.MustCompile(`^01[0125][0-9]{8}$`)
	shippingPhonePattern = regexp.MustCompile(`^01[0-9]{9}$`)

	validate = newValidator()
)

// Error lists the offending fields (by their JSON names) and a message for
// each. It is returned before any request is made.
type Error struct {
	Fields map[string]string
}

func NewError(field, message string) *Error {
	return &Error{Fields: map[string]string{field: message}}
}

func (e *Error) Error() string {
	names := make([]string, 0, len(e.Fields))
	for name := range e.Fields {
		names = append(names, name)
	}
	sort.Strings(names)

	parts := make([]string, len(names))
	for i, name := range names {
		parts[i] = name + ": " + e.Fields[name]
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// Struct validates v against its `validate` tags. It returns nil or an *Error.
func Struct(v any) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return fmt.Errorf("validate %T: %w", v, err)
	}

	out := &Error{Fields: make(map[string]string, len(fieldErrs))}
	for _, fe := range fieldErrs {
		if _, seen := out.Fields[fe.Field()]; seen {
			continue
		}
		out.Fields[fe.Field()] = message(fe)
	}
	return out
}

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return f.Name
		}
		return name
	})

	mustRegister(v, "mobilephone", func(fl validator.FieldLevel) bool {
		return mobilePhonePattern.MatchString(fl.Field().String())
	})
	mustRegister(v, "shippingphone", func(fl validator.FieldLevel) bool {
		return shippingPhonePattern.MatchString(fl.Field().String())
	})
	mustRegister(v, "strongpassword", func(fl validator.FieldLevel) bool {
		return StrongPassword(fl.Field().String())
	})
	return v
}

func mustRegister(v *validator.Validate, tag string, fn validator.Func) {
	if err := v.RegisterValidation(tag, fn); err != nil {
		panic(fmt.Sprintf("register %s validation: %v", tag, err))
	}
}

// StrongPassword reports whether p has at least 8 characters drawn from
// letters, digits and @$!%*?&, including an upper-case letter, a lower-case
// letter, a digit and one of the symbols.
func StrongPassword(p string) bool {
	if len(p) < 8 {
		return false
	}
	var upper, lower, digit, symbol bool
	for _, r := range p {
		switch {
		case r > unicode.MaxASCII:
			return false
		case unicode.IsUpper(r):
			upper = true
		case unicode.IsLower(r):
			lower = true
		case unicode.IsDigit(r):
			digit = true
		case strings.ContainsRune(passwordSymbols, r):
			symbol = true
		default:
			return false
		}
	}
	return upper && lower && digit && symbol
}

var messages = map[string]string{
	"name.min":                   "Name must be at least 3 characters",
	"password.min":               "Password must be at least 6 characters",
	"rePassword.eqfield":         "Passwords do not match",
	"phone.mobilephone":          "Enter a valid Egyptian mobile number",
	"phone.shippingphone":        "Phone must be 11 digits starting with 01",
	"resetCode.len":              "Reset code must be 6 digits",
	"resetCode.numeric":          "Reset code must be 6 digits",
	"newPassword.strongpassword": "Password must be at least 8 characters and include upper and lower case letters, a number and a special character",
	"details.min":                "Details must be at least 5 characters",
	"details.max":                "Details must be at most 200 characters",
	"city.min":                   "City must be at least 2 characters",
	"city.max":                   "City must be at most 50 characters",
}

func message(fe validator.FieldError) string {
	if msg, ok := messages[fe.Field()+"."+fe.Tag()]; ok {
		return msg
	}
	switch fe.Tag() {
	case "required":
		return fe.Field() + " is required"
	case "email":
		return "Enter a valid email"
	case "min":
		return fmt.Sprintf("%s must be at least %s characters", fe.Field(), fe.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s characters", fe.Field(), fe.Param())
	case "eqfield":
		return fe.Field() + " does not match"
	default:
		return fe.Field() + " is invalid"
	}
}
