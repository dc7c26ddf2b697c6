package manuscript

import (
	"errors"
	"fmt"
	"sync"

	"github.com/go-playground/validator/v10"
)

// ErrInvalid marks input that fails structural validation
var ErrInvalid = errors.New("invalid manuscript")

// ValidationError describes the first structural problem found in an input
type ValidationError struct {
	Field   string
	Message string
	Value   interface{}
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed for %s: %s (value: %v)", e.Field, e.Message, e.Value)
}

func (e *ValidationError) Unwrap() error {
	return ErrInvalid
}

var (
	validateOnce sync.Once
	validate     *validator.Validate
)

func structValidator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New()
	})
	return validate
}

// Validate checks required fields and id uniqueness. It does not judge
// narrative content.
func Validate(in Input) error {
	if in.Project == nil {
		return &ValidationError{Field: "project", Message: "project is required", Value: nil}
	}
	v := structValidator()
	if err := v.Struct(in.Project); err != nil {
		return fieldError("project", err)
	}

	seen := make(map[string]bool, len(in.Scenes))
	for i := range in.Scenes {
		if err := v.Struct(&in.Scenes[i]); err != nil {
			return fieldError(fmt.Sprintf("scenes[%d]", i), err)
		}
		if seen[in.Scenes[i].ID] {
			return &ValidationError{Field: fmt.Sprintf("scenes[%d].id", i), Message: "duplicate scene id", Value: in.Scenes[i].ID}
		}
		seen[in.Scenes[i].ID] = true
	}

	chars := make(map[string]bool, len(in.Characters))
	for i := range in.Characters {
		if err := v.Struct(&in.Characters[i]); err != nil {
			return fieldError(fmt.Sprintf("characters[%d]", i), err)
		}
		if chars[in.Characters[i].ID] {
			return &ValidationError{Field: fmt.Sprintf("characters[%d].id", i), Message: "duplicate character id", Value: in.Characters[i].ID}
		}
		chars[in.Characters[i].ID] = true
	}

	locs := make(map[string]bool, len(in.Locations))
	for i := range in.Locations {
		if err := v.Struct(&in.Locations[i]); err != nil {
			return fieldError(fmt.Sprintf("locations[%d]", i), err)
		}
		if locs[in.Locations[i].ID] {
			return &ValidationError{Field: fmt.Sprintf("locations[%d].id", i), Message: "duplicate location id", Value: in.Locations[i].ID}
		}
		locs[in.Locations[i].ID] = true
	}

	for i := range in.Stories {
		if err := v.Struct(&in.Stories[i]); err != nil {
			return fieldError(fmt.Sprintf("stories[%d]", i), err)
		}
	}

	if in.Timeline != nil {
		if err := v.Struct(in.Timeline); err != nil {
			return fieldError("timeline", err)
		}
	}
	return nil
}

func fieldError(prefix string, err error) error {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		fe := verrs[0]
		return &ValidationError{
			Field:   prefix + "." + fe.Field(),
			Message: fmt.Sprintf("failed %q rule", fe.Tag()),
			Value:   fe.Value(),
		}
	}
	return &ValidationError{Field: prefix, Message: err.Error()}
}
