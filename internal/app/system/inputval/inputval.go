// Package inputval validates request payloads with struct tags.
//
//	type createInput struct {
//	    Name string `validate:"required,max=200,plaintext" label:"Organization name"`
//	}
//	if r := inputval.Validate(in); r.HasErrors() { ... r.First() ... }
//
// Besides the validator built-ins, the tags "email" (replaced with
// IsValidEmail), "plaintext" (no markup) and "password" (bcrypt length
// limit) are registered.
package inputval

import (
	"errors"
	"fmt"
	"net/mail"
	"reflect"
	"strings"
	"sync"

	"github.com/dalemusser/orgmanager/internal/app/system/htmlsanitize"
	"github.com/go-playground/validator/v10"
)

// MaxPasswordBytes is the longest password bcrypt accepts.
const MaxPasswordBytes = 72

// FieldError is one failed rule, with a message fit for clients.
type FieldError struct {
	Field   string
	Message string
}

// Result collects the failures of one Validate call.
type Result struct {
	Errors []FieldError
}

func (r *Result) HasErrors() bool { return len(r.Errors) > 0 }

// First returns the first message, or "".
func (r *Result) First() string {
	if len(r.Errors) == 0 {
		return ""
	}
	return r.Errors[0].Message
}

// All joins every message with "; ".
func (r *Result) All() string {
	msgs := make([]string, len(r.Errors))
	for i, e := range r.Errors {
		msgs[i] = e.Message
	}
	return strings.Join(msgs, "; ")
}

var (
	once sync.Once
	v    *validator.Validate
)

func instance() *validator.Validate {
	once.Do(func() {
		v = validator.New(validator.WithRequiredStructEnabled())
		v.RegisterTagNameFunc(func(f reflect.StructField) string {
			if l := f.Tag.Get("label"); l != "" {
				return l
			}
			return f.Name
		})
		must(v.RegisterValidation("email", func(fl validator.FieldLevel) bool {
			return IsValidEmail(fl.Field().String())
		}))
		must(v.RegisterValidation("plaintext", func(fl validator.FieldLevel) bool {
			return htmlsanitize.IsPlainText(fl.Field().String())
		}))
		must(v.RegisterValidation("password", func(fl validator.FieldLevel) bool {
			return len(fl.Field().String()) <= MaxPasswordBytes
		}))
	})
	return v
}

func must(err error) {
	if err != nil {
		panic(err)
	}
}

// Validate checks s (a struct or pointer to struct) against its validate
// tags.
func Validate(s any) *Result {
	res := &Result{}
	err := instance().Struct(s)
	if err == nil {
		return res
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		res.Errors = append(res.Errors, FieldError{Message: err.Error()})
		return res
	}
	for _, fe := range verrs {
		res.Errors = append(res.Errors, FieldError{Field: fe.StructField(), Message: message(fe)})
	}
	return res
}

func message(fe validator.FieldError) string {
	label := fe.Field()
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required.", label)
	case "max":
		return fmt.Sprintf("%s must be at most %s characters.", label, fe.Param())
	case "min":
		return fmt.Sprintf("%s must be at least %s characters.", label, fe.Param())
	case "email":
		return "A valid email address is required."
	case "plaintext":
		return fmt.Sprintf("%s must not contain HTML.", label)
	case "password":
		return fmt.Sprintf("%s must be at most %d bytes.", label, MaxPasswordBytes)
	default:
		return fmt.Sprintf("%s is invalid.", label)
	}
}

// IsValidEmail reports whether s is a bare addr-spec ("user@host"). Display
// names, whitespace and misplaced dots are rejected. Single-label domains
// such as "localhost" are allowed.
func IsValidEmail(s string) bool {
	s = strings.TrimSpace(s)
	if s == "" || strings.ContainsAny(s, " \t\r\n<>") {
		return false
	}
	addr, err := mail.ParseAddress(s)
	if err != nil || addr.Address != s || addr.Name != "" {
		return false
	}
	local, domain, ok := strings.Cut(s, "@")
	if !ok {
		return false
	}
	return dotsOK(local) && dotsOK(domain)
}

func dotsOK(s string) bool {
	return s != "" &&
		!strings.HasPrefix(s, ".") &&
		!strings.HasSuffix(s, ".") &&
		!strings.Contains(s, "..")
}
