package services

import (
	"fmt"
	"reflect"
	"sort"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/terraincognita07/mindnet/internal/models"
	"github.com/terraincognita07/mindnet/internal/risk"
)

// ValidationErrors maps a form field name to a message shown next to that field.
type ValidationErrors map[string]string

func (errs ValidationErrors) Error() string {
	fields := make([]string, 0, len(errs))
	for field := range errs {
		fields = append(fields, field)
	}
	sort.Strings(fields)
	return "validation failed: " + strings.Join(fields, ", ")
}

var formValidator = newFormValidator()

func newFormValidator() *validator.Validate {
	validate := validator.New(validator.WithRequiredStructEnabled())
	validate.RegisterTagNameFunc(func(field reflect.StructField) string {
		name, _, _ := strings.Cut(field.Tag.Get("form"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	mustRegister(validate, "score", func(level validator.FieldLevel) bool {
		score, err := strconv.Atoi(strings.TrimSpace(level.Field().String()))
		return err == nil && risk.InRange(score)
	})
	mustRegister(validate, "distortion", func(level validator.FieldLevel) bool {
		return models.IsCatalogTag(models.CognitiveDistortions(), level.Field().String())
	})
	mustRegister(validate, "consequence", func(level validator.FieldLevel) bool {
		return models.IsCatalogTag(models.EmotionalConsequences(), level.Field().String())
	})
	return validate
}

func mustRegister(validate *validator.Validate, tag string, fn validator.Func) {
	if err := validate.RegisterValidation(tag, fn); err != nil {
		panic(fmt.Sprintf("register %s validation: %v", tag, err))
	}
}

// validateForm runs the struct tags of form and converts failures to field messages.
// Only the first failure per field is kept.
func validateForm(form any) ValidationErrors {
	err := formValidator.Struct(form)
	if err == nil {
		return nil
	}
	failures, ok := err.(validator.ValidationErrors)
	if !ok {
		return ValidationErrors{"form": "The form could not be validated."}
	}

	errs := ValidationErrors{}
	for _, failure := range failures {
		field, _, _ := strings.Cut(failure.Field(), "[")
		if _, seen := errs[field]; seen {
			continue
		}
		errs[field] = validationMessage(failure)
	}
	return errs
}

func validationMessage(failure validator.FieldError) string {
	switch failure.Tag() {
	case "required":
		return "This field is required."
	case "max":
		return fmt.Sprintf("Must be at most %s characters.", failure.Param())
	case "min":
		return fmt.Sprintf("Must be at least %s characters.", failure.Param())
	case "email":
		return "Enter a valid email address."
	case "score":
		return fmt.Sprintf("Must be a whole number between %d and %d.", risk.MinScore, risk.MaxScore)
	case "datetime":
		return "Enter a date as YYYY-MM-DD."
	case "distortion", "consequence":
		return "Choose only options from the list."
	default:
		return "Invalid value."
	}
}
