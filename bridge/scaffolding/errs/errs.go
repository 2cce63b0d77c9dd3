// Package errs provides types and support related to web error functionality.
package errs

import (
	"errors"
	"fmt"
	"net/http"
	"runtime"
)

// Code is the class of an error returned to a client.
type Code int

const (
	InvalidArgument Code = iota + 1
	AlreadyExists
	Unauthenticated
	NotFound
	PermissionDenied
	Internal
	// InternalOnlyLog is logged with full detail and shown to the client as a
	// plain Internal error.
	InternalOnlyLog
)

var httpStatus = map[Code]int{
	InvalidArgument:  http.StatusUnprocessableEntity,
	AlreadyExists:    http.StatusConflict,
	Unauthenticated:  http.StatusUnauthorized,
	NotFound:         http.StatusNotFound,
	PermissionDenied: http.StatusForbidden,
	Internal:         http.StatusInternalServerError,
	InternalOnlyLog:  http.StatusInternalServerError,
}

func (c Code) String() string {
	switch c {
	case InvalidArgument:
		return "invalid_argument"
	case AlreadyExists:
		return "already_exists"
	case Unauthenticated:
		return "unauthenticated"
	case NotFound:
		return "not_found"
	case PermissionDenied:
		return "permission_denied"
	case Internal, InternalOnlyLog:
		return "internal"
	}
	return "unknown"
}

// Error represents an error in the system.
type Error struct {
	Code     Code   `json:"code"`
	Message  string `json:"message"`
	FuncName string `json:"-"`
	FileName string `json:"-"`
}

// New constructs an error based on an app error.
func New(code Code, err error) *Error {
	pc, filename, line, _ := runtime.Caller(1)

	return &Error{
		Code:     code,
		Message:  err.Error(),
		FuncName: runtime.FuncForPC(pc).Name(),
		FileName: fmt.Sprintf("%s:%d", filename, line),
	}
}

// Newf constructs an error based on a error message.
func Newf(code Code, format string, v ...any) *Error {
	pc, filename, line, _ := runtime.Caller(1)

	return &Error{
		Code:     code,
		Message:  fmt.Sprintf(format, v...),
		FuncName: runtime.FuncForPC(pc).Name(),
		FileName: fmt.Sprintf("%s:%d", filename, line),
	}
}

// Error implements the error interface.
func (e *Error) Error() string {
	return e.Message
}

// Encode implements the encoder interface.
func (e *Error) Encode() ([]byte, string, error) {
	return []byte(e.Message + "\n"), "text/plain; charset=utf-8", nil
}

// HTTPStatus implements the web package httpStatus interface so the
// web framework can use the correct http status.
func (e *Error) HTTPStatus() int {
	if s, ok := httpStatus[e.Code]; ok {
		return s
	}
	return http.StatusInternalServerError
}

// Equal provides support for the go-cmp package and testing.
func (e *Error) Equal(e2 *Error) bool {
	return e.Code == e2.Code && e.Message == e2.Message
}

// IsError tests the concrete error is of the Error type.
func IsError(err error) bool {
	var er *Error
	return errors.As(err, &er)
}

// GetError returns a copy of the Error pointer.
func GetError(err error) *Error {
	var er *Error
	if !errors.As(err, &er) {
		return nil
	}
	return er
}
