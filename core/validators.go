package core

import (
	"reflect"
	"regexp"
	"strings"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	en_translations "github.com/go-playground/validator/v10/translations/en"
)

var (
	// custom validation tags & texts
	ngPhoneTag   = "ngphone"
	ngPhoneText  = "must be a valid Nigerian phone number (+234XXXXXXXXXX or 0XXXXXXXXXX)"
	NGPhoneRegex = regexp.MustCompile(`^(\+234|0)[789][01]\d{8}$`)

	interviewerIDTag   = "interviewerid"
	interviewerIDText  = "must be 4-10 uppercase letters or digits"
	InterviewerIDRegex = regexp.MustCompile(`^[A-Z0-9]{4,10}$`)

	requiredTag     = "required"
	requiredWithTag = "required_with"
	requiredText    = "this field is required"
)

// InitValidators instantiates the validator for use.
func InitValidators(validate *validator.Validate, translator ut.Translator) {
	_ = en_translations.RegisterDefaultTranslations(validate, translator)

	// Use JSON tag names for errors instead of Go struct names.
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	// register custom validators
	_ = validate.RegisterValidation(ngPhoneTag, ngPhoneValidation)
	RegisterCustomTranslation(validate, translator, ngPhoneTag, ngPhoneText)

	_ = validate.RegisterValidation(interviewerIDTag, interviewerIDValidation)
	RegisterCustomTranslation(validate, translator, interviewerIDTag, interviewerIDText)

	RegisterCustomTranslation(validate, translator, requiredTag, requiredText, true)
	RegisterCustomTranslation(validate, translator, requiredWithTag, requiredText, true)
}

// RegisterCustomTranslation registers a custom translation for the specified validation tag.
func RegisterCustomTranslation(validate *validator.Validate, translator ut.Translator, tag, text string, override ...bool) {
	var ovrd bool
	if len(override) > 0 {
		ovrd = override[0]
	}
	_ = validate.RegisterTranslation(
		tag, translator,
		func(t ut.Translator) error { return t.Add(tag, text, ovrd) },
		func(t ut.Translator, fe validator.FieldError) string {
			s, _ := t.T(tag, fe.Field())
			return s
		},
	)
}

// Custom Global Validators

// ngPhoneValidation matches the Nigerian mobile number format.
func ngPhoneValidation(fl validator.FieldLevel) bool {
	return NGPhoneRegex.MatchString(fl.Field().String())
}

// interviewerIDValidation matches human-assigned interviewer identifiers.
func interviewerIDValidation(fl validator.FieldLevel) bool {
	return InterviewerIDRegex.MatchString(fl.Field().String())
}
