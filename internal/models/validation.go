package models

import (
	"fmt"
	"reflect"
	"strings"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"

	apperrors "github.com/equipskill/equipskill-dashboard/pkg/errors"
)

var (
	validate     *validator.Validate
	validateOnce sync.Once
)

// Validator returns the shared schema validator with the custom rules registered.
func Validator() *validator.Validate {
	validateOnce.Do(func() {
		v := validator.New(validator.WithRequiredStructEnabled())
		v.RegisterTagNameFunc(func(f reflect.StructField) string {
			name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
			if name == "-" || name == "" {
				return f.Name
			}
			return name
		})
		// nonblank rejects empty and whitespace-only strings
		if err := v.RegisterValidation("nonblank", func(fl validator.FieldLevel) bool {
			return strings.TrimSpace(fl.Field().String()) != ""
		}); err != nil {
			panic(fmt.Sprintf("models: register nonblank: %v", err))
		}
		if err := v.RegisterValidation("experience_level", func(fl validator.FieldLevel) bool {
			return IsExperienceLevel(fl.Field().String())
		}); err != nil {
			panic(fmt.Sprintf("models: register experience_level: %v", err))
		}
		validate = v
	})
	return validate
}

// ValidateEquipmentDraft checks d against its schema. Every empty required field
// is reported.
func ValidateEquipmentDraft(d EquipmentDraft) error {
	return toValidationError(Validator().Struct(d))
}

// ValidateProfileDraft checks d against its schema and, when an
// availableFromDate is set, that it is not before today.
// A busy profile without a date is accepted.
func ValidateProfileDraft(d ProfileDraft, today time.Time) error {
	verr := toValidationError(Validator().Struct(d))
	if verr != nil {
		return verr
	}
	if d.AvailableFromDate == "" {
		return nil
	}
	from, err := time.ParseInLocation(DateLayout, d.AvailableFromDate, today.Location())
	if err != nil {
		return &apperrors.ValidationError{Fields: []apperrors.FieldError{{Field: "availableFromDate", Reason: "must be a date (YYYY-MM-DD)"}}}
	}
	y, m, day := today.Date()
	if from.Before(time.Date(y, m, day, 0, 0, 0, 0, today.Location())) {
		return &apperrors.ValidationError{Fields: []apperrors.FieldError{{Field: "availableFromDate", Reason: "must not be in the past"}}}
	}
	return nil
}

// ValidateReviewDraft checks d against its schema.
func ValidateReviewDraft(d ReviewDraft) error {
	return toValidationError(Validator().Struct(d))
}

func toValidationError(err error) error {
	if err == nil {
		return nil
	}
	fieldErrors, ok := err.(validator.ValidationErrors)
	if !ok {
		return &apperrors.ValidationError{Fields: []apperrors.FieldError{{Field: "draft", Reason: err.Error()}}}
	}
	out := &apperrors.ValidationError{Fields: make([]apperrors.FieldError, 0, len(fieldErrors))}
	for _, fe := range fieldErrors {
		out.Fields = append(out.Fields, apperrors.FieldError{
			Field:  fieldPath(fe),
			Reason: reason(fe),
		})
	}
	return out
}

// fieldPath drops the struct type from the namespace: "expectedRate.amount".
func fieldPath(fe validator.FieldError) string {
	ns := fe.Namespace()
	if i := strings.Index(ns, "."); i >= 0 {
		return ns[i+1:]
	}
	return fe.Field()
}

func reason(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required", "nonblank":
		return "is required"
	case "max":
		if fe.Kind() == reflect.Slice {
			return "must not have more than " + fe.Param() + " entries"
		}
		if fe.Kind() == reflect.Int {
			return "must be at most " + fe.Param()
		}
		return "must not exceed " + fe.Param() + " characters"
	case "min":
		return "must be at least " + fe.Param()
	case "gte":
		return "must not be negative"
	case "oneof":
		return "must be one of: " + fe.Param()
	case "experience_level":
		return "must be one of: " + strings.Join(ExperienceLevels, ", ")
	case "datetime":
		return "must be a date (YYYY-MM-DD)"
	case "iso4217":
		return "must be an ISO 4217 currency code"
	default:
		return "is invalid"
	}
}
