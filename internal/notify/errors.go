package notify

import (
	"errors"
	"net/http"
	"strings"
)

// Code classifies a callable function failure.
type Code string

const (
	CodeInvalidArgument Code = "invalid-argument"
	CodeNotFound        Code = "not-found"
	CodeInternal        Code = "internal"
)

// FunctionError is the structured error returned by callable functions.
type FunctionError struct {
	Code    Code
	Message string
	Err     error
}

func (e *FunctionError) Error() string {
	if e.Err != nil {
		return string(e.Code) + ": " + e.Message + ": " + e.Err.Error()
	}
	return string(e.Code) + ": " + e.Message
}

func (e *FunctionError) Unwrap() error { return e.Err }

func invalidArgument(msg string) *FunctionError {
	return &FunctionError{Code: CodeInvalidArgument, Message: msg}
}

func internal(msg string, err error) *FunctionError {
	return &FunctionError{Code: CodeInternal, Message: msg, Err: err}
}

// Status is the wire form, e.g. "INVALID_ARGUMENT".
func (c Code) Status() string {
	return strings.ToUpper(strings.ReplaceAll(string(c), "-", "_"))
}

func (c Code) HTTPStatus() int {
	switch c {
	case CodeInvalidArgument:
		return http.StatusBadRequest
	case CodeNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// CodeFromStatus parses the wire form back into a Code.
func CodeFromStatus(status string) Code {
	return Code(strings.ToLower(strings.ReplaceAll(status, "_", "-")))
}

// AsFunctionError converts any error into a FunctionError, treating unknown errors as internal.
func AsFunctionError(err error) *FunctionError {
	var fe *FunctionError
	if errors.As(err, &fe) {
		return fe
	}
	return internal("internal error", err)
}

// IsCode reports whether err is a FunctionError with the given code.
func IsCode(err error, code Code) bool {
	var fe *FunctionError
	return errors.As(err, &fe) && fe.Code == code
}
