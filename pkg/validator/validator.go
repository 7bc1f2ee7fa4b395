package validator

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	govalidator "github.com/go-playground/validator/v10"
	enTranslations "github.com/go-playground/validator/v10/translations/en"
)

// Validator wraps go-playground/validator with English messages keyed by
// JSON field name.
type Validator struct {
	validate *govalidator.Validate
	trans    ut.Translator
}

// New builds a validator with English translations registered.
func New() (*Validator, error) {
	locale := en.New()
	uni := ut.New(locale, locale)
	trans, found := uni.GetTranslator("en")
	if !found {
		return nil, errors.New("english translator not available")
	}
	return newWithTranslator(trans)
}

// MustNew is New for package-level defaults; it panics when translations
// cannot be registered.
func MustNew() *Validator {
	v, err := New()
	if err != nil {
		panic(err)
	}
	return v
}

func newWithTranslator(trans ut.Translator) (*Validator, error) {
	validate := govalidator.New()
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	if err := enTranslations.RegisterDefaultTranslations(validate, trans); err != nil {
		return nil, fmt.Errorf("register validation translations: %w", err)
	}

	return &Validator{validate: validate, trans: trans}, nil
}

// Struct validates s and returns the underlying validation error, if any.
func (v *Validator) Struct(s interface{}) error {
	return v.validate.Struct(s)
}

// Translate maps a validation error to field → message. Errors that are not
// validation errors land under "detail".
func (v *Validator) Translate(err error) map[string]string {
	if err == nil {
		return nil
	}
	fields := make(map[string]string)

	var ve govalidator.ValidationErrors
	if errors.As(err, &ve) {
		for _, fe := range ve {
			fields[fe.Field()] = fe.Translate(v.trans)
		}
		return fields
	}

	fields["detail"] = err.Error()
	return fields
}
