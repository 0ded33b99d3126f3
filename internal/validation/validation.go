// Package validation wraps go-playground/validator with the storefront's
// custom tags and turns its failures into per-field issues.
package validation

import (
	"fmt"
	"reflect"
	"regexp"
	"strings"
	"sync"
	"unicode"

	"github.com/ecomkit/storefront/internal/apperr"
	"github.com/go-playground/validator/v10"
	"github.com/spf13/cast"
)

var (
	startAlphaRe = regexp.MustCompile(`^[A-Za-z]`)
	startAlnumRe = regexp.MustCompile(`^[A-Za-z0-9]`)
	phoneRe      = regexp.MustCompile(`^\+?[\d\s\-\(\)]+$`)
)

var (
	instance *validator.Validate
	once     sync.Once
)

// Validator returns the shared, configured validator.
func Validator() *validator.Validate {
	once.Do(func() {
		v := validator.New()
		v.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			if name == "" {
				return fld.Name
			}
			return name
		})
		mustRegister(v, "startalpha", func(fl validator.FieldLevel) bool {
			return startAlphaRe.MatchString(fl.Field().String())
		})
		mustRegister(v, "startalnum", func(fl validator.FieldLevel) bool {
			return startAlnumRe.MatchString(fl.Field().String())
		})
		mustRegister(v, "phone", func(fl validator.FieldLevel) bool {
			return phoneRe.MatchString(fl.Field().String())
		})
		mustRegister(v, "password", validPassword)
		mustRegister(v, "maxbytes", func(fl validator.FieldLevel) bool {
			return len(fl.Field().String()) <= cast.ToInt(fl.Param())
		})
		instance = v
	})
	return instance
}

func mustRegister(v *validator.Validate, tag string, fn validator.Func) {
	if err := v.RegisterValidation(tag, fn); err != nil {
		panic(err)
	}
}

// validPassword requires a lower case letter, an upper case letter and a digit.
func validPassword(fl validator.FieldLevel) bool {
	var lower, upper, digit bool
	for _, r := range fl.Field().String() {
		switch {
		case unicode.IsLower(r):
			lower = true
		case unicode.IsUpper(r):
			upper = true
		case unicode.IsDigit(r):
			digit = true
		}
	}
	return lower && upper && digit
}

// Struct validates v. Failures come back as an apperr Validation error whose
// details list one issue per failing field.
func Struct(v interface{}) error {
	return StructWithMessage(v, "Validation failed")
}

func StructWithMessage(v interface{}, message string) error {
	err := Validator().Struct(v)
	if err == nil {
		return nil
	}
	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return apperr.Wrap(err, "validation could not run")
	}
	return apperr.NewValidation(message, Issues(verrs))
}

// Var validates a single value against tag, reporting failures under field.
func Var(value interface{}, tag, field, message string) error {
	err := Validator().Var(value, tag)
	if err == nil {
		return nil
	}
	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return apperr.Wrap(err, "validation could not run")
	}
	issues := make([]apperr.FieldIssue, 0, len(verrs))
	for _, fe := range verrs {
		issues = append(issues, apperr.FieldIssue{Field: field, Message: render(field, fe)})
	}
	return apperr.NewValidation(message, issues)
}

func Issues(verrs validator.ValidationErrors) []apperr.FieldIssue {
	issues := make([]apperr.FieldIssue, 0, len(verrs))
	for _, fe := range verrs {
		issues = append(issues, apperr.FieldIssue{
			Field:   fe.Field(),
			Message: Message(fe),
		})
	}
	return issues
}

// Message renders one field error as a human readable sentence.
func Message(fe validator.FieldError) string {
	return render(fe.Field(), fe)
}

func render(field string, fe validator.FieldError) string {
	isString := fe.Kind() == reflect.String
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "email":
		return "Invalid email format"
	case "min":
		if isString {
			return fmt.Sprintf("%s must be at least %s characters", field, fe.Param())
		}
		return fmt.Sprintf("%s must be at least %s", field, fe.Param())
	case "max":
		if isString {
			return fmt.Sprintf("%s must be at most %s characters", field, fe.Param())
		}
		return fmt.Sprintf("%s must be at most %s", field, fe.Param())
	case "gte":
		if fe.Param() == "0" {
			return fmt.Sprintf("%s must not be negative", field)
		}
		return fmt.Sprintf("%s must be at least %s", field, fe.Param())
	case "lte":
		return fmt.Sprintf("%s must be at most %s", field, fe.Param())
	case "oneof":
		return fmt.Sprintf("%s must be one of %s", field, fe.Param())
	case "startalpha":
		return fmt.Sprintf("%s must start with a letter", field)
	case "startalnum":
		return fmt.Sprintf("%s must start with a letter or number", field)
	case "maxbytes":
		return fmt.Sprintf("%s must be at most %s bytes", field, fe.Param())
	case "password":
		return "Password must contain at least one uppercase letter, one lowercase letter, and one number"
	case "phone":
		return "Invalid phone number format"
	}
	return fmt.Sprintf("%s is invalid", field)
}
