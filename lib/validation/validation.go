package validation

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
	"github.com/icco/moviefinder/models"
)

// EmptyDescriptionMessage is shown when the description is blank.
const EmptyDescriptionMessage = "Please enter a description for your movie preference."

var (
	validate     *validator.Validate
	validateOnce sync.Once
)

// InputError is a local validation failure. It never reaches the network.
type InputError struct {
	Field   string
	Message string
}

func (e *InputError) Error() string {
	return e.Message
}

// GetValidator returns the shared validator instance.
func GetValidator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
		// Not a built-in tag; "required" accepts whitespace-only strings.
		_ = validate.RegisterValidation("notblank", func(fl validator.FieldLevel) bool {
			return strings.TrimSpace(fl.Field().String()) != ""
		})
	})
	return validate
}

// ValidateQuery checks a query before submission. The description must be
// non-empty after trimming; the enum fields must hold one of their members.
// Only the first failure is reported.
func ValidateQuery(q models.PreferenceQuery) error {
	err := GetValidator().Struct(q)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return fmt.Errorf("failed to validate query: %w", err)
	}

	fe := fieldErrs[0]
	switch fe.Field() {
	case "Description":
		return &InputError{Field: "description", Message: EmptyDescriptionMessage}
	case "MovieType":
		return &InputError{Field: "movie_type", Message: fmt.Sprintf("Please choose a movie type (%s).", joinValues(models.MovieTypes))}
	case "ReleasePref":
		return &InputError{Field: "release_pref", Message: fmt.Sprintf("Please choose a release preference (%s).", joinValues(models.ReleasePrefs))}
	default:
		return &InputError{Field: strings.ToLower(fe.Field()), Message: fmt.Sprintf("%s failed %s validation", fe.Field(), fe.Tag())}
	}
}

func joinValues[T ~string](values []T) string {
	parts := make([]string, len(values))
	for i, v := range values {
		parts[i] = string(v)
	}
	return strings.Join(parts, ", ")
}
