package rbac

import (
	"errors"
	"fmt"
	"net/http"
)

// Resources outside the requester's visibility scope are reported as
// ErrNotFound; ErrForbidden is only returned once the requester is allowed
// to know the resource exists.
var (
	ErrUnauthenticated = errors.New("unauthenticated")
	ErrForbidden       = errors.New("forbidden")
	ErrNotFound        = errors.New("not found")
	ErrConflict        = errors.New("conflict")
)

// ValidationError reports a role or state mismatch on a write.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string { return e.Msg }

func Invalid(format string, args ...any) error {
	return &ValidationError{Msg: fmt.Sprintf(format, args...)}
}

func denied(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrForbidden, fmt.Sprintf(format, args...))
}

// NotFound wraps ErrNotFound with the kind of entity that was looked up.
func NotFound(kind string) error {
	return fmt.Errorf("%s %w", kind, ErrNotFound)
}

func Conflict(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrConflict, fmt.Sprintf(format, args...))
}

// StatusCode maps an access-layer error to the HTTP status the caller
// should answer with. Unrecognised errors are internal failures.
func StatusCode(err error) int {
	var v *ValidationError
	switch {
	case err == nil:
		return http.StatusOK
	case errors.Is(err, ErrUnauthenticated):
		return http.StatusUnauthorized
	case errors.Is(err, ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrConflict):
		return http.StatusConflict
	case errors.As(err, &v):
		return http.StatusUnprocessableEntity
	}
	return http.StatusInternalServerError
}
