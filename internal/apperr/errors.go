package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

type Kind string

const (
	KindConfig    Kind = "config"
	KindModel     Kind = "model"
	KindInput     Kind = "input"
	KindInference Kind = "inference"
	KindStorage   Kind = "storage"
	KindNotFound  Kind = "not_found"
	KindUnknown   Kind = "unknown"
)

// ErrModelNotLoaded is returned when a prediction is requested before a model was loaded.
var ErrModelNotLoaded = New(KindModel, "model.load", "Model not loaded")

type Error struct {
	Kind    Kind
	Op      string
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s:%s] %s: %v", e.Kind, e.Op, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s:%s] %s", e.Kind, e.Op, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// Wrap tags err with a kind. An err that already carries a kind keeps it.
func Wrap(kind Kind, op, message string, err error) error {
	if err == nil {
		return nil
	}

	var typed *Error
	if errors.As(err, &typed) {
		return err
	}

	return &Error{
		Kind:    kind,
		Op:      op,
		Message: message,
		Cause:   err,
	}
}

func New(kind Kind, op, message string) *Error {
	return &Error{
		Kind:    kind,
		Op:      op,
		Message: message,
	}
}

// KindOf reports the kind of the first tagged error in the chain.
func KindOf(err error) Kind {
	var target *Error
	if errors.As(err, &target) {
		return target.Kind
	}
	return KindUnknown
}

func IsKind(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}

// Message returns the human readable message of the first tagged error,
// or err.Error() for untagged errors.
func Message(err error) string {
	var target *Error
	if errors.As(err, &target) {
		if target.Cause != nil {
			return fmt.Sprintf("%s: %v", target.Message, target.Cause)
		}
		return target.Message
	}
	return err.Error()
}

// HTTPStatus maps an error to the response status the API reports for it.
func HTTPStatus(err error) int {
	switch KindOf(err) {
	case KindInput:
		return http.StatusBadRequest
	case KindNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}
