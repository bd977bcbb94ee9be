package validator

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"reflect"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	enTranslations "github.com/go-playground/validator/v10/translations/en"
	"github.com/samber/lo"
)

// MaxPasswordBytes bounds plaintext credentials accepted from callers. The
// hashing strategies accept any length; this limit only protects the service.
const MaxPasswordBytes = 4096

// MaxStoredHashBytes bounds stored hashes accepted from callers.
const MaxStoredHashBytes = 2048

// Stored hashes are printable ASCII without whitespace (PHC strings, bcrypt
// and hex digests). RE2 caps repeat counts at 1000, so length is checked
// separately.
var reStoredHash = regexp.MustCompile(`^[\x21-\x7e]+$`)

// ErrTranslatorNotFound indicates the requested translator is unavailable.
var ErrTranslatorNotFound = errors.New("translator not found")

// V10Validator implements Validator using go-playground/validator v10.
type V10Validator struct {
	validate   *validator.Validate
	translator ut.Translator
}

// V10ValidationError is a field-to-message map returned when validation fails.
//
// Keys are field names in snake_case to match typical JSON conventions.
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

// NewV10Validator constructs a V10Validator with English translations and custom rules.
func NewV10Validator() (*V10Validator, error) {
	validate := validator.New(validator.WithRequiredStructEnabled())
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})

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
			errV10[lo.SnakeCase(fe.Field())] = fe.Translate(v.translator)
		}

		return errV10
	}

	return nil
}

//nolint:errcheck,gosec,forcetypeassert // make linter silent
func v10CustomValidation(validate *validator.Validate, enTrans ut.Translator) {
	validate.RegisterValidation("password", func(fl validator.FieldLevel) bool {
		p, ok := fl.Field().Interface().(string)
		if !ok {
			return false
		}

		return p != "" && len(p) <= MaxPasswordBytes && utf8.ValidString(p)
	})

	// plaintext is password without the non-empty rule, for candidates
	// checked against a stored hash.
	validate.RegisterValidation("plaintext", func(fl validator.FieldLevel) bool {
		p, ok := fl.Field().Interface().(string)
		if !ok {
			return false
		}

		return len(p) <= MaxPasswordBytes && utf8.ValidString(p)
	})

	validate.RegisterValidation("storedhash", func(fl validator.FieldLevel) bool {
		h, ok := fl.Field().Interface().(string)
		if !ok {
			return false
		}

		return len(h) <= MaxStoredHashBytes && reStoredHash.MatchString(h)
	})

	register := func(tag, msg string) {
		validate.RegisterTranslation(tag, enTrans,
			func(ut ut.Translator) error {
				return ut.Add(tag, msg, false)
			},
			func(ut ut.Translator, fe validator.FieldError) string {
				t, err := ut.T(fe.Tag(), fe.Field())
				if err != nil {
					slog.Warn("warning: error translating", "tag", fe.Tag(), "error", err)
					return fe.(error).Error()
				}

				return t
			},
		)
	}

	register("password", fmt.Sprintf("{0} must be valid UTF-8 of 1-%d bytes", MaxPasswordBytes))
	register("plaintext", fmt.Sprintf("{0} must be valid UTF-8 of at most %d bytes", MaxPasswordBytes))
	register("storedhash", "{0} must be a stored hash of printable ASCII without spaces")
}
