package validation

import (
	"errors"
	"fmt"
	"regexp"
	"sort"
	"strings"

	ozzo "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/willcldrr/exoticweeklywebiste/internal/models"
)

var slugRegex = regexp.MustCompile(`^[a-z0-9]+(?:-[a-z0-9]+)*$`)

// requiredFields are the create-time required fields, in report order
var requiredFields = []string{"title", "excerpt", "content", "author", "category"}

// ValidationError represents a single validation error
type ValidationError struct {
	Field   string      `json:"field"`
	Message string      `json:"message"`
	Value   interface{} `json:"value,omitempty"`
}

// Errors is an ordered list of validation errors
type Errors []ValidationError

// Error implements error
func (e Errors) Error() string {
	msgs := make([]string, len(e))
	for i, v := range e {
		msgs[i] = v.Message
	}
	return strings.Join(msgs, "; ")
}

// First returns the message of the first error
func (e Errors) First() string {
	if len(e) == 0 {
		return ""
	}
	return e[0].Message
}

// InvalidCategoryMessage lists the accepted categories
func InvalidCategoryMessage() string {
	names := make([]string, len(models.Categories))
	for i, c := range models.Categories {
		names[i] = string(c)
	}
	return "Invalid category. Must be one of: " + strings.Join(names, ", ")
}

// InvalidStatusMessage lists the accepted statuses
func InvalidStatusMessage() string {
	return fmt.Sprintf("Invalid status. Must be one of: %s, %s, %s",
		models.StatusDraft, models.StatusPublished, models.StatusArchived)
}

// ValidCategory reports whether c is one of the fixed categories
func ValidCategory(c string) bool {
	return models.ValidCategories[models.Category(c)]
}

// ValidStatus reports whether s is one of the fixed statuses
func ValidStatus(s string) bool {
	return models.ValidStatuses[models.Status(s)]
}

// ValidateCreate validates a story submitted for creation
func ValidateCreate(in *models.StoryInput) Errors {
	in.Normalize()

	err := ozzo.ValidateStruct(in,
		ozzo.Field(&in.Title, ozzo.Required.Error(missing("title"))),
		ozzo.Field(&in.Excerpt, ozzo.Required.Error(missing("excerpt"))),
		ozzo.Field(&in.Content, ozzo.Required.Error(missing("content"))),
		ozzo.Field(&in.Author, ozzo.Required.Error(missing("author"))),
		ozzo.Field(&in.Category, ozzo.Required.Error(missing("category")), categoryRule()),
		ozzo.Field(&in.Status, statusRule()),
		ozzo.Field(&in.Slug, slugRule()),
	)
	return collect(in, err)
}

// ValidatePatch validates a partial update. Only the fields present are
// checked, and present required fields may not be blanked.
func ValidatePatch(in *models.StoryInput) Errors {
	in.Normalize()

	err := ozzo.ValidateStruct(in,
		ozzo.Field(&in.Title, ozzo.NilOrNotEmpty.Error("title cannot be empty")),
		ozzo.Field(&in.Excerpt, ozzo.NilOrNotEmpty.Error("excerpt cannot be empty")),
		ozzo.Field(&in.Content, ozzo.NilOrNotEmpty.Error("content cannot be empty")),
		ozzo.Field(&in.Author, ozzo.NilOrNotEmpty.Error("author cannot be empty")),
		ozzo.Field(&in.Category, ozzo.NilOrNotEmpty.Error(InvalidCategoryMessage()), categoryRule()),
		ozzo.Field(&in.Status, ozzo.NilOrNotEmpty.Error(InvalidStatusMessage()), statusRule()),
		ozzo.Field(&in.Slug, ozzo.NilOrNotEmpty.Error("slug cannot be empty"), slugRule()),
	)
	return collect(in, err)
}

func categoryRule() ozzo.Rule {
	allowed := make([]interface{}, len(models.Categories))
	for i, c := range models.Categories {
		allowed[i] = c
	}
	return ozzo.In(allowed...).Error(InvalidCategoryMessage())
}

func statusRule() ozzo.Rule {
	return ozzo.In(models.StatusDraft, models.StatusPublished, models.StatusArchived).
		Error(InvalidStatusMessage())
}

func slugRule() ozzo.Rule {
	return ozzo.Match(slugRegex).Error("slug must be kebab-case (lowercase letters, numbers, hyphens)")
}

func missing(field string) string {
	return "Missing required field: " + field
}

// collect converts ozzo's field map into an ordered error list
func collect(in *models.StoryInput, err error) Errors {
	if err == nil {
		return nil
	}

	var fieldErrs ozzo.Errors
	if !errors.As(err, &fieldErrs) {
		return Errors{{Field: "body", Message: err.Error()}}
	}

	out := make(Errors, 0, len(fieldErrs))
	for field, fe := range fieldErrs {
		out = append(out, ValidationError{
			Field:   field,
			Message: fe.Error(),
			Value:   submittedValue(in, field),
		})
	}
	sort.SliceStable(out, func(i, j int) bool {
		return fieldRank(out[i].Field) < fieldRank(out[j].Field)
	})
	return out
}

func fieldRank(field string) int {
	for i, f := range requiredFields {
		if f == field {
			return i
		}
	}
	for i, m := range models.StoryFields {
		if m.Field == field {
			return len(requiredFields) + i
		}
	}
	return len(requiredFields) + len(models.StoryFields)
}

// submittedValue echoes back enumerated values so clients can see what
// was rejected
func submittedValue(in *models.StoryInput, field string) interface{} {
	switch field {
	case "category":
		if in.Category != nil && *in.Category != "" {
			return string(*in.Category)
		}
	case "status":
		if in.Status != nil && *in.Status != "" {
			return string(*in.Status)
		}
	case "slug":
		if in.Slug != nil && *in.Slug != "" {
			return *in.Slug
		}
	}
	return nil
}
