package store

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/chepyr/task-dashboard/internal/models"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// normalizeDraft trims the free-text fields and lower-cases the priority
// so "  " counts as empty and "High" as high.
func normalizeDraft(d models.Draft) models.Draft {
	d.Title = strings.TrimSpace(d.Title)
	d.Description = strings.TrimSpace(d.Description)
	d.DueDate = strings.TrimSpace(d.DueDate)
	d.Category = strings.TrimSpace(d.Category)
	d.Priority = models.Priority(strings.ToLower(strings.TrimSpace(string(d.Priority))))
	return d
}

func validateDraft(d models.Draft) error {
	err := validate.Struct(d)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	ve := &ValidationError{}
	for _, fe := range verrs {
		ve.Fields = append(ve.Fields, FieldError{
			Field:   fe.Field(),
			Message: formatFieldError(fe),
		})
	}
	return ve
}

func formatFieldError(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", fe.Field())
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", fe.Field(), strings.ReplaceAll(fe.Param(), " ", ", "))
	case "datetime":
		return fmt.Sprintf("%s must be a date in YYYY-MM-DD form", fe.Field())
	default:
		return fmt.Sprintf("%s is invalid", fe.Field())
	}
}
