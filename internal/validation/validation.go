// Package validation evaluates declarative constraint sets over entities and
// query options before any repository call. Violations are collected per
// field so a caller can report every problem at once.
package validation

import (
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/filmgrid/movies-api/internal/domain"
)

// ValidSortFields lists the listing columns a caller may sort by,
// matched case-insensitively.
var ValidSortFields = []string{"title", "yearofrelease"}

// Violation is a single field-level constraint failure.
type Violation struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Error carries every violation found in one validation pass.
type Error struct {
	Violations []Violation
}

func (e *Error) Error() string {
	msgs := make([]string, 0, len(e.Violations))
	for _, v := range e.Violations {
		msgs = append(msgs, fmt.Sprintf("%s: %s", v.Field, v.Message))
	}
	return "validation failed: " + strings.Join(msgs, "; ")
}

// Validator wraps a configured validator instance. It is stateless and safe
// for concurrent use.
type Validator struct {
	validate *validator.Validate
}

// New builds a Validator with the custom rule set registered.
func New() *Validator {
	v := validator.New()

	// notfuture: integer year must not exceed the current UTC calendar year.
	_ = v.RegisterValidation("notfuture", func(fl validator.FieldLevel) bool {
		return fl.Field().Int() <= int64(time.Now().UTC().Year())
	})

	// sortfield: value must be one of ValidSortFields, case-insensitively.
	_ = v.RegisterValidation("sortfield", func(fl validator.FieldLevel) bool {
		field := fl.Field().String()
		for _, valid := range ValidSortFields {
			if strings.EqualFold(field, valid) {
				return true
			}
		}
		return false
	})

	return &Validator{validate: v}
}

// ValidateMovie checks the structural constraints of a movie entity.
func (v *Validator) ValidateMovie(movie domain.Movie) error {
	return v.wrap(v.validate.Struct(movie))
}

// ValidateOptions checks a listing query specification.
func (v *Validator) ValidateOptions(options domain.GetAllMoviesOptions) error {
	return v.wrap(v.validate.Struct(options))
}

// ValidateRating checks a submitted rating value.
func (v *Validator) ValidateRating(rating int) error {
	if rating < 1 || rating > 5 {
		return &Error{Violations: []Violation{{
			Field:   "Rating",
			Message: "rating must be between 1 and 5",
		}}}
	}
	return nil
}

func (v *Validator) wrap(err error) error {
	if err == nil {
		return nil
	}
	errs, ok := err.(validator.ValidationErrors)
	if !ok {
		return err
	}
	violations := make([]Violation, 0, len(errs))
	for _, fe := range errs {
		violations = append(violations, Violation{
			Field:   fe.Field(),
			Message: messageFor(fe),
		})
	}
	return &Error{Violations: violations}
}

func messageFor(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "notfuture":
		return "must not be in the future"
	case "sortfield":
		return "valid sort fields are: " + strings.Join(ValidSortFields, ", ")
	case "gte":
		return fmt.Sprintf("must be at least %s", fe.Param())
	case "lte":
		return fmt.Sprintf("must be at most %s", fe.Param())
	default:
		return fmt.Sprintf("failed on the %s rule", fe.Tag())
	}
}
