package apperr

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
)

// Kind classifies a failure so handlers can map it to an HTTP status
// without inspecting message strings.
type Kind int

const (
	Validation Kind = iota + 1
	NotFound
	Forbidden
	InvalidState
	InsufficientBudget
	InsufficientDepartmentBudget
	DepartmentInactive
	Internal
)

func (k Kind) String() string {
	switch k {
	case Validation:
		return "validation_error"
	case NotFound:
		return "not_found"
	case Forbidden:
		return "forbidden"
	case InvalidState:
		return "invalid_state"
	case InsufficientBudget:
		return "insufficient_budget"
	case InsufficientDepartmentBudget:
		return "insufficient_department_budget"
	case DepartmentInactive:
		return "department_inactive"
	default:
		return "server_error"
	}
}

func (k Kind) status() int {
	switch k {
	case Validation, InvalidState, InsufficientBudget, InsufficientDepartmentBudget, DepartmentInactive:
		return http.StatusBadRequest
	case NotFound:
		return http.StatusNotFound
	case Forbidden:
		return http.StatusForbidden
	default:
		return http.StatusInternalServerError
	}
}

type Error struct {
	Kind    Kind
	Message string
	// Details carries business payload such as requested vs available
	// amounts; rendered alongside the message in the JSON body.
	Details map[string]any
	cause   error
}

func (e *Error) Error() string {
	if e.cause != nil {
		return e.Message + ": " + e.cause.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.cause }

// WithDetail attaches one detail entry and returns the error for chaining.
func (e *Error) WithDetail(key string, value any) *Error {
	if e.Details == nil {
		e.Details = map[string]any{}
	}
	e.Details[key] = value
	return e
}

func New(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

func Validationf(format string, args ...any) *Error { return New(Validation, format, args...) }
func NotFoundf(format string, args ...any) *Error   { return New(NotFound, format, args...) }
func Forbiddenf(format string, args ...any) *Error  { return New(Forbidden, format, args...) }
func InvalidStatef(format string, args ...any) *Error {
	return New(InvalidState, format, args...)
}

// Internalf wraps an unexpected failure (usually a storage error). The
// cause is logged server-side but never rendered to the caller.
func Internalf(cause error, format string, args ...any) *Error {
	return &Error{Kind: Internal, Message: fmt.Sprintf(format, args...), cause: cause}
}

// Write renders err as a JSON error response. Unclassified errors are
// treated as Internal. logTag shows up in the server log, bracketed,
// only for internal errors.
func Write(w http.ResponseWriter, logTag string, err error) {
	var ae *Error
	if !errors.As(err, &ae) {
		ae = &Error{Kind: Internal, Message: "unexpected error", cause: err}
	}

	if ae.Kind == Internal {
		log.Printf("[%s] %v", logTag, ae)
	}

	body := map[string]any{"error": ae.Kind.String(), "message": ae.Message}
	for k, v := range ae.Details {
		body[k] = v
	}
	if ae.Kind == Internal {
		// Do not leak storage details.
		body["message"] = ae.Message
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(ae.Kind.status())
	json.NewEncoder(w).Encode(body)
}
