// Package forms binds and validates the forms submitted through the portal.
package forms

import (
	"reflect"
	"regexp"
	"sort"
	"strings"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	ru_translations "github.com/go-playground/validator/v10/translations/ru"
	"github.com/jrsteele09/admissions-portal/internal/utils"
	"github.com/rs/zerolog/log"
)

var (
	// custom validation tags & texts
	yearTag   = "year"
	yearText  = "Введите корректный год"
	yearRegex = regexp.MustCompile(`^\d{4}$`)

	gradeTag  = "grade"
	gradeText = "Средний балл должен быть от 0 до 5.0"

	priceTag  = "price"
	priceText = "Введите корректную стоимость"

	requiredTag  = "required"
	requiredText = "Обязательное поле"

	eqFieldTag  = "eqfield"
	eqFieldText = "Пароли не совпадают"

	emailTag  = "email"
	emailText = "Введите корректный email"
)

// FieldErrors maps a form field name to its message.
type FieldErrors map[string]string

func (e FieldErrors) Error() string {
	fields := make([]string, 0, len(e))
	for f := range e {
		fields = append(fields, f)
	}
	sort.Strings(fields)

	parts := make([]string, 0, len(fields))
	for _, f := range fields {
		parts = append(parts, f+": "+e[f])
	}
	return strings.Join(parts, "; ")
}

// Validator checks form structs and renders failures in Russian.
type Validator struct {
	validate *validator.Validate
	trans    ut.Translator
}

// NewValidator registers the ru messages on trans, which is usually shared
// with the API error catalogue.
func NewValidator(trans ut.Translator) *Validator {
	validate := validator.New(validator.WithRequiredStructEnabled())
	if err := ru_translations.RegisterDefaultTranslations(validate, trans); err != nil {
		log.Err(err).Msg("Failed to register default validation translations")
	}

	// Use form field names in errors instead of Go struct names.
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("form"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	_ = validate.RegisterValidation(yearTag, yearValidation)
	RegisterCustomTranslation(validate, trans, yearTag, yearText)
	_ = validate.RegisterValidation(gradeTag, gradeValidation)
	RegisterCustomTranslation(validate, trans, gradeTag, gradeText)
	_ = validate.RegisterValidation(priceTag, priceValidation)
	RegisterCustomTranslation(validate, trans, priceTag, priceText)

	validate.RegisterStructValidation(staffValidation, Staff{})

	RegisterCustomTranslation(validate, trans, requiredTag, requiredText, true)
	RegisterCustomTranslation(validate, trans, eqFieldTag, eqFieldText, true)
	RegisterCustomTranslation(validate, trans, emailTag, emailText, true)

	return &Validator{validate: validate, trans: trans}
}

// RegisterCustomTranslation registers a custom translation for the specified validation tag.
func RegisterCustomTranslation(validate *validator.Validate, trans ut.Translator, tag, text string, override ...bool) {
	var ovrd bool
	if len(override) > 0 {
		ovrd = override[0]
	}
	_ = validate.RegisterTranslation(
		tag, trans,
		func(t ut.Translator) error { return t.Add(tag, text, ovrd) },
		func(t ut.Translator, fe validator.FieldError) string {
			s, _ := t.T(tag, fe.Field())
			return s
		},
	)
}

// Check validates form and returns FieldErrors, or nil when it is valid.
func (v *Validator) Check(form any) error {
	err := v.validate.Struct(form)
	if err == nil {
		return nil
	}

	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return err
	}
	fields := make(FieldErrors, len(verrs))
	for _, fe := range verrs {
		if _, seen := fields[fe.Field()]; !seen {
			fields[fe.Field()] = fe.Translate(v.trans)
		}
	}
	return fields
}

func yearValidation(fl validator.FieldLevel) bool {
	return yearRegex.MatchString(fl.Field().String())
}

// gradeValidation accepts an empty value or a number in [0, 5] written with a dot or a comma.
func gradeValidation(fl validator.FieldLevel) bool {
	s := fl.Field().String()
	if s == "" {
		return true
	}
	g, err := utils.ParseGrade(s)
	return err == nil && g >= 0 && g <= 5
}

func priceValidation(fl validator.FieldLevel) bool {
	p, err := utils.ParseGrade(fl.Field().String())
	return err == nil && p >= 0
}

// staffValidation requires a password when a new staff member is created.
func staffValidation(sl validator.StructLevel) {
	s := sl.Current().Interface().(Staff)
	if s.ID == 0 && s.Password == "" {
		sl.ReportError(s.Password, "password", "Password", requiredTag, "")
	}
}
