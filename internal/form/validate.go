// Package form holds the user-editable forms: their defaults, trimming,
// validation rules and conversion to API input.
package form

import (
	stderrors "errors"
	"fmt"
	"reflect"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/saadjs/cycle-cli/internal/errors"
	"github.com/saadjs/cycle-cli/internal/model"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return f.Name
		}
		return name
	})
	_ = v.RegisterValidation("bbt", func(fl validator.FieldLevel) bool {
		t, err := strconv.ParseFloat(fl.Field().String(), 64)
		return err == nil && t >= model.MinBasalBodyTemperature && t <= model.MaxBasalBodyTemperature
	})
	v.RegisterStructValidation(func(sl validator.StructLevel) {
		p := sl.Current().Interface().(Period)
		if p.EndDate == "" {
			return
		}
		start, err1 := model.ParseDate(p.StartDate)
		end, err2 := model.ParseDate(p.EndDate)
		if err1 == nil && err2 == nil && end.Before(start) {
			sl.ReportError(p.EndDate, "end_date", "EndDate", "notbefore", "start_date")
		}
	}, Period{})
	return v
}

// check runs the validator and folds failures into one INPUT-001 error with
// a suggestion line per field.
func check(what string, v any) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}
	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return errors.Wrap(errors.ErrCodeValidation, "invalid "+what, err)
	}
	out := errors.New(errors.ErrCodeValidation, "invalid "+what)
	for _, fe := range verrs {
		out = out.WithSuggestion(fmt.Sprintf("%s %s", fe.Field(), describe(fe)))
	}
	return out
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "datetime":
		return "must be a date in YYYY-MM-DD format"
	case "oneof":
		return "must be one of: " + strings.ReplaceAll(fe.Param(), " ", ", ")
	case "email":
		return "must be a valid email address"
	case "bbt":
		return fmt.Sprintf("must be a number between %g and %g", model.MinBasalBodyTemperature, model.MaxBasalBodyTemperature)
	case "notbefore":
		return "must not be before " + fe.Param()
	case "min":
		return "must be at least " + fe.Param() + " characters"
	default:
		return "is invalid"
	}
}

// FieldProblems returns the per-field messages carried by a validation error.
func FieldProblems(err error) []string {
	var coded *errors.Error
	if !stderrors.As(err, &coded) || coded.Code != errors.ErrCodeValidation {
		return nil
	}
	return coded.Suggestions
}
