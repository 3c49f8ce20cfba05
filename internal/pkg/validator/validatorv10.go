package validator

import (
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	enTranslations "github.com/go-playground/validator/v10/translations/en"

	"github.com/cratebin/cratebin/internal/pkg/strcase"
)

var (
	// Crate names start alphanumeric, then alphanumerics, '_' or '-',
	// 64 chars max.
	reCrateName = regexp.MustCompile(`^[a-zA-Z0-9][a-zA-Z0-9_\-]{0,63}$`)
)

// ErrTranslatorNotFound indicates the requested translator is unavailable.
var ErrTranslatorNotFound = errors.New("translator not found")

// V10Validator implements Validator using go-playground/validator v10.
type V10Validator struct {
	validate   *validator.Validate
	translator ut.Translator
}

// V10ValidationError is a field-to-message map returned when validation
// fails. Keys are snake_case field names to match JSON conventions.
type V10ValidationError map[string]string

// Error implements the error interface.
func (vs V10ValidationError) Error() string {
	if len(vs) == 0 {
		return "validation error"
	}

	b, err := json.Marshal(vs)
	if err != nil {
		return fmt.Sprintf("validation error (failed to marshal: %v)", err)
	}
	return string(b)
}

// Values returns the field error map.
func (vs V10ValidationError) Values() map[string]string {
	return vs
}

// NewV10Validator constructs a V10Validator with English translations and
// the registry's custom rules.
func NewV10Validator() (*V10Validator, error) {
	validate := validator.New(validator.WithRequiredStructEnabled())

	enLang := en.New()
	uni := ut.New(enLang, enLang)
	enTrans, ok := uni.GetTranslator("en")
	if !ok {
		return nil, ErrTranslatorNotFound
	}

	if err := enTranslations.RegisterDefaultTranslations(validate, enTrans); err != nil {
		return nil, err
	}

	v10CustomValidation(validate, enTrans)

	return &V10Validator{
		validate:   validate,
		translator: enTrans,
	}, nil
}

// Validate validates a struct and returns a V10ValidationError on failure.
func (v *V10Validator) Validate(data any) error {
	if err := v.validate.Struct(data); err != nil {
		var validateErrs validator.ValidationErrors
		if !errors.As(err, &validateErrs) {
			return err
		}

		errV10 := make(V10ValidationError)
		for _, fe := range validateErrs {
			errV10[strcase.ToLowerSnake(fe.Field())] = fe.Translate(v.translator)
		}

		return errV10
	}

	return nil
}

// ValidKeyword reports whether name is an acceptable keyword: an ASCII
// alphanumeric first character, then alphanumerics, '_', '-' or '+'.
func ValidKeyword(name string) bool {
	if name == "" {
		return false
	}

	first := name[0]
	if !isASCIIAlnum(first) {
		return false
	}

	for i := 1; i < len(name); i++ {
		c := name[i]
		if !isASCIIAlnum(c) && c != '_' && c != '-' && c != '+' {
			return false
		}
	}

	return true
}

// LowercaseKeyword canonicalizes a keyword for storage and lookup. Only
// lowercase keywords exist in the database.
func LowercaseKeyword(name string) string {
	return strings.ToLower(name)
}

func isASCIIAlnum(c byte) bool {
	return c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || c >= '0' && c <= '9'
}

//nolint:errcheck,gosec,forcetypeassert // make linter silent
func v10CustomValidation(validate *validator.Validate, enTrans ut.Translator) {
	validate.RegisterValidation("cratename", func(fl validator.FieldLevel) bool {
		name, ok := fl.Field().Interface().(string)
		if !ok {
			return false
		}

		return reCrateName.MatchString(name)
	})

	validate.RegisterTranslation("cratename", enTrans,
		func(ut ut.Translator) error {
			return ut.Add("cratename", "{0} must start with a letter or digit and contain only letters, digits, '_' or '-'", false)
		},
		func(ut ut.Translator, fe validator.FieldError) string {
			t, _ := ut.T(fe.Tag(), fe.Field())
			return t
		},
	)

	validate.RegisterValidation("keyword", func(fl validator.FieldLevel) bool {
		name, ok := fl.Field().Interface().(string)
		if !ok {
			return false
		}

		return ValidKeyword(name)
	})

	validate.RegisterTranslation("keyword", enTrans,
		func(ut ut.Translator) error {
			return ut.Add("keyword", "{0} must start with a letter or digit and contain only letters, digits, '_', '-' or '+'", false)
		},
		func(ut ut.Translator, fe validator.FieldError) string {
			t, _ := ut.T(fe.Tag(), fe.Field())
			return t
		},
	)
}
