package services

import (
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/adanyl0v/tracklin/internal/models"
)

const (
	ReasonRequired = "required"
	ReasonString   = "string"
	ReasonBoolean  = "boolean"
	ReasonDate     = "date"
	ReasonTime     = "format:HH.MM"
)

var (
	reasonMaxText = fmt.Sprintf("max:%d", models.MaxTaskTextLength)
	reasonMaxTime = fmt.Sprintf("max:%d", models.MaxTaskTimeLength)

	strictTimePattern = regexp.MustCompile(`^([01][0-9]|2[0-3])\.[0-5][0-9]$`)
)

type FieldError struct {
	Field  string
	Reason string
}

// ValidationErrors lists every invalid field of a payload.
type ValidationErrors []FieldError

func (e ValidationErrors) Error() string {
	parts := make([]string, len(e))
	for i, fe := range e {
		parts[i] = fe.Field + ": " + fe.Reason
	}
	return "validation failed: " + strings.Join(parts, ", ")
}

func (e ValidationErrors) Fields() map[string]string {
	fields := make(map[string]string, len(e))
	for _, fe := range e {
		if _, ok := fields[fe.Field]; !ok {
			fields[fe.Field] = fe.Reason
		}
	}
	return fields
}

func (e *ValidationErrors) add(field, reason string) {
	*e = append(*e, FieldError{Field: field, Reason: reason})
}

type taskValidator struct {
	strictTime bool
}

func (v taskValidator) text(errs *ValidationErrors, s string) string {
	trimmed := strings.TrimSpace(s)
	switch {
	case trimmed == "":
		errs.add("text", ReasonRequired)
	case utf8.RuneCountInString(trimmed) > models.MaxTaskTextLength:
		errs.add("text", reasonMaxText)
	}
	return trimmed
}

// date treats an empty string as absent.
func (v taskValidator) date(errs *ValidationErrors, s string) *models.Date {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	d, err := models.ParseDate(s)
	if err != nil {
		errs.add("date", ReasonDate)
		return nil
	}
	return &d
}

// time treats an empty string as absent.
func (v taskValidator) time(errs *ValidationErrors, s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	switch {
	case utf8.RuneCountInString(s) > models.MaxTaskTimeLength:
		errs.add("time", reasonMaxTime)
	case v.strictTime && !strictTimePattern.MatchString(s):
		errs.add("time", ReasonTime)
	}
	return &s
}

func (v taskValidator) create(params CreateTaskParams) (*models.Task, ValidationErrors) {
	var errs ValidationErrors
	task := &models.Task{}

	switch {
	case params.Text.Invalid:
		errs.add("text", ReasonString)
	case !params.Text.Set || params.Text.Null:
		errs.add("text", ReasonRequired)
	default:
		task.Text = v.text(&errs, params.Text.Value)
	}

	switch {
	case params.Date.Invalid:
		errs.add("date", ReasonDate)
	case params.Date.Set && !params.Date.Null:
		task.Date = v.date(&errs, params.Date.Value)
	}

	switch {
	case params.Time.Invalid:
		errs.add("time", ReasonString)
	case params.Time.Set && !params.Time.Null:
		task.Time = v.time(&errs, params.Time.Value)
	}
	return task, errs
}

func (v taskValidator) patch(patch models.TaskPatch) (models.TaskChanges, ValidationErrors) {
	var (
		errs    ValidationErrors
		changes models.TaskChanges
	)

	switch {
	case !patch.Text.Set:
	case patch.Text.Invalid, patch.Text.Null:
		errs.add("text", ReasonString)
	default:
		changes.Text = models.Some(v.text(&errs, patch.Text.Value))
	}

	switch {
	case !patch.Date.Set:
	case patch.Date.Invalid:
		errs.add("date", ReasonDate)
	case patch.Date.Null:
		changes.Date = models.Null[models.Date]()
	default:
		changes.Date = models.Null[models.Date]()
		if d := v.date(&errs, patch.Date.Value); d != nil {
			changes.Date = models.Some(*d)
		}
	}

	switch {
	case !patch.Time.Set:
	case patch.Time.Invalid:
		errs.add("time", ReasonString)
	case patch.Time.Null:
		changes.Time = models.Null[string]()
	default:
		changes.Time = models.Null[string]()
		if t := v.time(&errs, patch.Time.Value); t != nil {
			changes.Time = models.Some(*t)
		}
	}

	switch {
	case !patch.Completed.Set:
	case patch.Completed.Invalid, patch.Completed.Null:
		errs.add("completed", ReasonBoolean)
	default:
		changes.Completed = models.Some(patch.Completed.Value)
	}
	return changes, errs
}
