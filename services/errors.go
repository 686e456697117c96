package services

import (
	"errors"
	"fmt"
	"net/http"
)

type ErrorKind int

const (
	KindInternal ErrorKind = iota
	// KindInvalidInput covers malformed bodies, bad query values,
	// schema-mismatched batch files and unknown columns.
	KindInvalidInput
	KindUnauthorized
	// KindUpstream covers failures of remote datasets and the model registry.
	KindUpstream
	// KindModel covers undecodable artifacts and inference failures.
	KindModel
)

func (k ErrorKind) String() string {
	switch k {
	case KindInvalidInput:
		return "invalid_input"
	case KindUnauthorized:
		return "unauthorized"
	case KindUpstream:
		return "upstream"
	case KindModel:
		return "model"
	}
	return "internal"
}

// HTTPStatus maps an error kind to the status code returned to clients.
func (k ErrorKind) HTTPStatus() int {
	switch k {
	case KindInvalidInput:
		return http.StatusUnprocessableEntity
	case KindUnauthorized:
		return http.StatusUnauthorized
	case KindUpstream:
		return http.StatusBadGateway
	}
	return http.StatusInternalServerError
}

type AppError struct {
	Kind ErrorKind
	Msg  string
	Err  error
}

func (e *AppError) Error() string {
	if e.Err == nil {
		return e.Msg
	}
	return fmt.Sprintf("%s: %v", e.Msg, e.Err)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func InvalidInput(format string, args ...any) *AppError {
	return &AppError{Kind: KindInvalidInput, Msg: fmt.Sprintf(format, args...)}
}

func Upstream(msg string, err error) *AppError {
	return &AppError{Kind: KindUpstream, Msg: msg, Err: err}
}

func ModelFailure(msg string, err error) *AppError {
	return &AppError{Kind: KindModel, Msg: msg, Err: err}
}

// KindOf returns the kind of the first AppError in err's chain.
func KindOf(err error) ErrorKind {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return KindInternal
}
