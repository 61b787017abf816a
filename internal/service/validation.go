package service

import (
	"errors"
	"fmt"
	"net/url"
	"reflect"
	"regexp"
	"sort"
	"strings"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	entranslations "github.com/go-playground/validator/v10/translations/en"
)

var (
	// ErrInvalidInput is wrapped by every *ValidationError.
	ErrInvalidInput = errors.New("invalid input")
	// ErrNotFound is wrapped by the per-entity not-found errors.
	ErrNotFound = errors.New("not found")
	// ErrConflict is wrapped when a unique value (slug, key, username) is taken.
	ErrConflict = errors.New("already exists")
)

var (
	slugPattern = regexp.MustCompile(`^[a-z0-9]+(?:-[a-z0-9]+)*$`)

	validate   *validator.Validate
	translator ut.Translator
)

func init() {
	validate = validator.New(validator.WithRequiredStructEnabled())

	english := en.New()
	translator, _ = ut.New(english, english).GetTranslator("en")
	_ = entranslations.RegisterDefaultTranslations(validate, translator)

	// 使用 JSON 字段名作为错误提示中的字段名
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	_ = validate.RegisterValidation("slug", func(fl validator.FieldLevel) bool {
		return slugPattern.MatchString(fl.Field().String())
	})
	registerTranslation("slug", "{0} may only contain lowercase letters, digits and single hyphens")

	_ = validate.RegisterValidation("weblink", func(fl validator.FieldLevel) bool {
		return isWebLink(fl.Field().String())
	})
	registerTranslation("weblink", "{0} must be an http(s) URL or a path starting with /")
}

func registerTranslation(tag, text string) {
	_ = validate.RegisterTranslation(
		tag, translator,
		func(t ut.Translator) error { return t.Add(tag, text, true) },
		func(t ut.Translator, fe validator.FieldError) string {
			s, _ := t.T(tag, fe.Field())
			return s
		},
	)
}

// ValidationError carries per-field messages keyed by JSON field name.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for key := range e.Fields {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, key := range keys {
		parts = append(parts, e.Fields[key])
	}
	return fmt.Sprintf("%s: %s", ErrInvalidInput, strings.Join(parts, "; "))
}

func (e *ValidationError) Unwrap() error {
	return ErrInvalidInput
}

func validateStruct(v any) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return err
	}

	fields := make(map[string]string, len(fieldErrs))
	for _, fe := range fieldErrs {
		if _, exists := fields[fe.Field()]; !exists {
			fields[fe.Field()] = fe.Translate(translator)
		}
	}
	return &ValidationError{Fields: fields}
}

func fieldError(field, message string) error {
	return &ValidationError{Fields: map[string]string{field: message}}
}

func isWebLink(raw string) bool {
	if strings.HasPrefix(raw, "/") {
		return !strings.HasPrefix(raw, "//")
	}
	u, err := url.Parse(raw)
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}

func validateIDs(ids []uint) error {
	if len(ids) == 0 {
		return fieldError("ids", "ids must contain at least one id")
	}
	for _, id := range ids {
		if id == 0 {
			return fieldError("ids", "ids must be positive")
		}
	}
	return nil
}
