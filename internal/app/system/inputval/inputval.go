// Package inputval validates request DTOs using struct tags.
//
// Fields declare rules with `validate:"..."` and a Turkish display name
// with `label:"..."`:
//
//	type createGoalInput struct {
//	    Title string `json:"title" validate:"required,max=200" label:"Başlık"`
//	}
package inputval

import (
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
)

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
			name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
			if name == "" || name == "-" {
				return f.Name
			}
			return name
		})
		_ = v.RegisterValidation("objectid", func(fl validator.FieldLevel) bool {
			s := fl.Field().String()
			if len(s) != 24 {
				return false
			}
			for _, c := range s {
				if !strings.ContainsRune("0123456789abcdefABCDEF", c) {
					return false
				}
			}
			return true
		})
	})
	return v
}

// FieldError is one failed rule, already translated.
type FieldError struct {
	Field   string
	Message string
}

// Result collects the validation errors for one input.
type Result struct {
	Errors []FieldError
}

// HasErrors reports whether any rule failed.
func (r Result) HasErrors() bool { return len(r.Errors) > 0 }

// First returns the first message, or "" when valid.
func (r Result) First() string {
	if len(r.Errors) == 0 {
		return ""
	}
	return r.Errors[0].Message
}

// Validate runs the struct-tag rules on input.
func Validate(input any) Result {
	err := instance().Struct(input)
	if err == nil {
		return Result{}
	}
	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return Result{Errors: []FieldError{{Message: "Geçersiz veri."}}}
	}
	out := Result{Errors: make([]FieldError, 0, len(verrs))}
	for _, fe := range verrs {
		out.Errors = append(out.Errors, FieldError{
			Field:   fe.Field(),
			Message: translate(fe),
		})
	}
	return out
}

func translate(fe validator.FieldError) string {
	f := fe.Field()
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s alanı zorunludur.", f)
	case "email":
		return fmt.Sprintf("%s geçerli bir e-posta adresi olmalıdır.", f)
	case "max":
		return fmt.Sprintf("%s en fazla %s olabilir.", f, fe.Param())
	case "min":
		return fmt.Sprintf("%s en az %s olmalıdır.", f, fe.Param())
	case "gte":
		return fmt.Sprintf("%s en az %s olmalıdır.", f, fe.Param())
	case "lte":
		return fmt.Sprintf("%s en fazla %s olabilir.", f, fe.Param())
	case "oneof":
		return fmt.Sprintf("%s şunlardan biri olmalıdır: %s.", f, fe.Param())
	case "objectid":
		return fmt.Sprintf("%s geçerli bir kimlik değil.", f)
	default:
		return fmt.Sprintf("%s geçersiz.", f)
	}
}
