package editor

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/jonathan/resume-builder/internal/types"
)

// FieldError is a validation failure on a single form field.
// Field is a path such as "personalInfo.email" or "experience[<id>].endDate".
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationError collects every field-level failure of a document.
// It never blocks step navigation, only saving.
type ValidationError struct {
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	var sb strings.Builder
	sb.WriteString("validation failed:")
	for _, f := range e.Fields {
		sb.WriteString(fmt.Sprintf(" %s: %s;", f.Field, f.Message))
	}
	return strings.TrimSuffix(sb.String(), ";")
}

// Field returns the message for a field path, or "" when the field is valid.
func (e *ValidationError) Field(path string) string {
	for _, f := range e.Fields {
		if f.Field == path {
			return f.Message
		}
	}
	return ""
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

var fieldLabels = map[string]string{
	"firstName": "First name",
	"lastName":  "Last name",
	"email":     "Email",
	"endDate":   "End date",
	"level":     "Skill level",
}

func label(field string) string {
	if l, ok := fieldLabels[field]; ok {
		return l
	}
	return field
}

func message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return label(fe.Field()) + " is required"
	case "email":
		return "Invalid email address"
	case "excluded_if":
		return "End date must be empty for a current position"
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", label(fe.Field()), strings.ReplaceAll(fe.Param(), " ", ", "))
	default:
		return fmt.Sprintf("%s is invalid (%s)", label(fe.Field()), fe.Tag())
	}
}

// collect appends the failures of one struct under prefix.
func collect(fields []FieldError, prefix string, s any) []FieldError {
	err := validate.Struct(s)
	if err == nil {
		return fields
	}
	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return append(fields, FieldError{Field: prefix, Message: err.Error()})
	}
	for _, fe := range verrs {
		fields = append(fields, FieldError{
			Field:   prefix + "." + fe.Field(),
			Message: message(fe),
		})
	}
	return fields
}

// ValidateDocument checks the required personal fields, the email format, the
// current-position end date rule and the skill level of every skill.
func ValidateDocument(doc *types.ResumeDocument) error {
	if doc == nil {
		return &ValidationError{Fields: []FieldError{{Field: "document", Message: "document is required"}}}
	}

	var fields []FieldError
	fields = collect(fields, "personalInfo", doc.PersonalInfo)
	for i, exp := range doc.Experience {
		fields = collect(fields, entryPath("experience", exp.ID, i), exp)
	}
	for i, skill := range doc.Skills {
		fields = collect(fields, entryPath("skills", skill.ID, i), skill)
	}

	if len(fields) > 0 {
		return &ValidationError{Fields: fields}
	}
	return nil
}

func entryPath(section, id string, index int) string {
	if id == "" {
		return fmt.Sprintf("%s[%d]", section, index)
	}
	return fmt.Sprintf("%s[%s]", section, id)
}

// Validate checks the current document. It returns nil or a *ValidationError.
func (e *Editor) Validate() error {
	return ValidateDocument(e.Document())
}
