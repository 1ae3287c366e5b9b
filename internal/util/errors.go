package util

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrorKind is the closed set of failure classes the handlers can produce.
// Every failure path ends up as a ResponseError carrying one of these, and
// the API layer translates kind -> HTTP status in a single place.
type ErrorKind int

const (
	KindValidation ErrorKind = iota
	KindConflict
	KindAuthentication
	KindNotFound
	KindPersistence
	KindSigning
)

type ResponseError struct {
	Kind   ErrorKind
	Status int
	Msg    string
}

func (e ResponseError) Error() string { return e.Msg }

func NewValidationError(format string, args ...interface{}) error {
	return ResponseError{Kind: KindValidation, Status: http.StatusBadRequest, Msg: fmt.Sprintf(format, args...)}
}

func NewConflictError(format string, args ...interface{}) error {
	return ResponseError{Kind: KindConflict, Status: http.StatusConflict, Msg: fmt.Sprintf(format, args...)}
}

func NewAuthenticationError(format string, args ...interface{}) error {
	return ResponseError{Kind: KindAuthentication, Status: http.StatusUnauthorized, Msg: fmt.Sprintf(format, args...)}
}

func NewNotFoundError(format string, args ...interface{}) error {
	return ResponseError{Kind: KindNotFound, Status: http.StatusNotFound, Msg: fmt.Sprintf(format, args...)}
}

func NewPersistenceError(format string, args ...interface{}) error {
	return ResponseError{Kind: KindPersistence, Status: http.StatusInternalServerError, Msg: fmt.Sprintf(format, args...)}
}

func NewSigningError(format string, args ...interface{}) error {
	return ResponseError{Kind: KindSigning, Status: http.StatusInternalServerError, Msg: fmt.Sprintf(format, args...)}
}

// IsKind reports whether err is a ResponseError of the given kind.
func IsKind(err error, kind ErrorKind) bool {
	var respErr ResponseError
	return errors.As(err, &respErr) && respErr.Kind == kind
}
