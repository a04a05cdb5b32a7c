package server

import (
	"errors"
	"fmt"
	"net/http"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/jonathan/hiring-bias-game/internal/advisor"
	"github.com/jonathan/hiring-bias-game/internal/dashboard"
	"github.com/jonathan/hiring-bias-game/internal/game"
)

// ErrNotFound indicates a requested resource does not exist
type ErrNotFound struct {
	Resource string
	ID       string
}

func (e *ErrNotFound) Error() string {
	return fmt.Sprintf("%s not found: %s", e.Resource, e.ID)
}

// ErrValidation indicates request validation failure.
// Details maps request fields to "present", "missing" or the failed rule.
type ErrValidation struct {
	Message string
	Details map[string]string
}

func (e *ErrValidation) Error() string {
	return e.Message
}

// HTTPStatus returns the appropriate HTTP status code for an error
func HTTPStatus(err error) int {
	var notFound *ErrNotFound
	var validation *ErrValidation
	switch {
	case errors.As(err, &notFound), errors.Is(err, game.ErrSessionNotFound):
		return http.StatusNotFound
	case errors.As(err, &validation),
		errors.Is(err, advisor.ErrInvalidInput),
		errors.Is(err, game.ErrCandidateNotInRound),
		errors.Is(err, dashboard.ErrRoundOutOfRange):
		return http.StatusBadRequest
	case errors.Is(err, game.ErrInvalidTransition):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// validationError converts validator output on req into an ErrValidation keyed by JSON field names.
func validationError(req any, err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return &ErrValidation{Message: err.Error(), Details: map[string]string{}}
	}

	details := make(map[string]string, len(verrs))
	names := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		name := jsonFieldName(req, fe.StructField())
		rule := fe.Tag()
		if rule == "required" {
			rule = "missing"
		}
		details[name] = rule
		names = append(names, name)
	}
	return &ErrValidation{
		Message: "invalid request: " + strings.Join(names, ", "),
		Details: details,
	}
}

// jsonFieldName returns the JSON name of the named top-level field of req.
func jsonFieldName(req any, field string) string {
	t := reflect.TypeOf(req)
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t.Kind() != reflect.Struct {
		return field
	}
	sf, ok := t.FieldByName(field)
	if !ok {
		return field
	}
	name, _, _ := strings.Cut(sf.Tag.Get("json"), ",")
	if name == "" || name == "-" {
		return field
	}
	return name
}
