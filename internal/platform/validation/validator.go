// Package validation plugs go-playground/validator into gin binding with readable English messages.
package validation

import (
	"errors"
	"reflect"
	"strings"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	en_translations "github.com/go-playground/validator/v10/translations/en"
	"github.com/shopspring/decimal"
)

// Normalizer is implemented by forms that clean their own input (trimming, lowercasing)
// before validation.
type Normalizer interface {
	Normalize()
}

// FieldError is one failed rule on one form field.
type FieldError struct {
	Field   string
	Message string
}

// Errors is the ordered list of failed fields. Its order follows the struct's field order.
type Errors []FieldError

func (e Errors) Error() string {
	msgs := make([]string, len(e))
	for i, fe := range e {
		msgs[i] = fe.Message
	}
	return strings.Join(msgs, "; ")
}

// First returns the message of the first failed field.
func (e Errors) First() string {
	if len(e) == 0 {
		return ""
	}
	return e[0].Message
}

// Has reports whether field failed validation.
func (e Errors) Has(field string) bool {
	for _, fe := range e {
		if fe.Field == field {
			return true
		}
	}
	return false
}

// Fields returns the set of failed field names, for highlighting inputs in templates.
func (e Errors) Fields() map[string]bool {
	out := make(map[string]bool, len(e))
	for _, fe := range e {
		out[fe.Field] = true
	}
	return out
}

// FirstMessage returns the user-facing message of err, whatever its origin.
func FirstMessage(err error) string {
	var verrs Errors
	if errors.As(err, &verrs) {
		return verrs.First()
	}
	return "Invalid input."
}

// InvalidFields returns the failed field names of err, empty when err is not a validation error.
func InvalidFields(err error) map[string]bool {
	var verrs Errors
	if errors.As(err, &verrs) {
		return verrs.Fields()
	}
	return map[string]bool{}
}

// Validator is a gin binding.StructValidator using the `binding` tag.
// A `msg` tag on a field replaces the translated message for any rule on that field.
type Validator struct {
	validate *validator.Validate
	trans    ut.Translator
}

var _ binding.StructValidator = (*Validator)(nil)

// New builds a validator with English translations and the storefront's custom rules.
func New() (*Validator, error) {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.SetTagName("binding")
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("form"), ",")
		if name == "-" {
			return ""
		}
		if name == "" {
			return f.Name
		}
		return name
	})

	english := en.New()
	trans, _ := ut.New(english, english).GetTranslator("en")
	if err := en_translations.RegisterDefaultTranslations(v, trans); err != nil {
		return nil, err
	}

	if err := v.RegisterValidation("decgte", decimalGTE); err != nil {
		return nil, err
	}
	err := v.RegisterTranslation("decgte", trans,
		func(ut ut.Translator) error {
			return ut.Add("decgte", "{0} must be a number of at least {1}", true)
		},
		func(ut ut.Translator, fe validator.FieldError) string {
			msg, _ := ut.T("decgte", fe.Field(), fe.Param())
			return msg
		},
	)
	if err != nil {
		return nil, err
	}

	return &Validator{validate: v, trans: trans}, nil
}

// ValidateStruct normalizes and validates obj. Non-struct values pass.
func (v *Validator) ValidateStruct(obj any) error {
	if obj == nil {
		return nil
	}
	if n, ok := obj.(Normalizer); ok {
		n.Normalize()
	}

	val := reflect.ValueOf(obj)
	for val.Kind() == reflect.Pointer {
		if val.IsNil() {
			return nil
		}
		val = val.Elem()
	}
	if val.Kind() != reflect.Struct {
		return nil
	}

	err := v.validate.Struct(obj)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}

	out := make(Errors, 0, len(verrs))
	for _, fe := range verrs {
		out = append(out, FieldError{Field: fe.Field(), Message: v.message(val.Type(), fe)})
	}
	return out
}

func (v *Validator) Engine() any {
	return v.validate
}

func (v *Validator) message(t reflect.Type, fe validator.FieldError) string {
	if sf, ok := t.FieldByName(fe.StructField()); ok {
		if msg := sf.Tag.Get("msg"); msg != "" {
			return msg
		}
	}
	return fe.Translate(v.trans)
}

// decimalGTE checks a decimal string field against the rule's numeric parameter.
func decimalGTE(fl validator.FieldLevel) bool {
	field := fl.Field()
	if field.Kind() != reflect.String {
		return false
	}
	d, err := decimal.NewFromString(strings.TrimSpace(field.String()))
	if err != nil {
		return false
	}
	limit, err := decimal.NewFromString(fl.Param())
	if err != nil {
		return false
	}
	return d.GreaterThanOrEqual(limit)
}
