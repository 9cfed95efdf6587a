package order

import (
	"errors"
	"fmt"
)

// Code is a stable numeric error code exposed to API clients.
type Code int

const (
	CodeValidation     Code = 1000
	CodeConnection     Code = 1001
	CodeTxInit         Code = 1002
	CodeSequenceLookup Code = 1003
	CodeInsert         Code = 1004
	CodeCommit         Code = 1005
	CodeNotFound       Code = 1006
	CodeInvalidState   Code = 1007
	CodeUpdate         Code = 1008
	CodeQuery          Code = 1009
	CodeInternal       Code = 1099
)

type Error struct {
	Code    Code
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches any *Error with the same code, so sentinels work with errors.Is.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Code == e.Code
}

var (
	ErrValidation     = &Error{Code: CodeValidation, Message: "validation failed"}
	ErrConnection     = &Error{Code: CodeConnection, Message: "Database connection failed"}
	ErrTxInit         = &Error{Code: CodeTxInit, Message: "Transaction initialization failed"}
	ErrSequenceLookup = &Error{Code: CodeSequenceLookup, Message: "Error fetching latest order_no"}
	ErrInsert         = &Error{Code: CodeInsert, Message: "Insert failed"}
	ErrCommit         = &Error{Code: CodeCommit, Message: "Transaction commit failed"}
	ErrOrderNotFound  = &Error{Code: CodeNotFound, Message: "Order not found"}
	ErrInvalidState   = &Error{Code: CodeInvalidState, Message: "Order is in an invalid state"}
	ErrUpdate         = &Error{Code: CodeUpdate, Message: "Failed to update order status"}
	ErrQuery          = &Error{Code: CodeQuery, Message: "Database query failed"}
)

func newError(code Code, message string, cause error) *Error {
	return &Error{Code: code, Message: message, Err: cause}
}

func validationError(format string, args ...any) *Error {
	return newError(CodeValidation, fmt.Sprintf(format, args...), nil)
}

// CodeOf returns the code carried by err, or CodeInternal for foreign errors.
func CodeOf(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return CodeInternal
}

// MessageOf returns the client-safe message for err. Causes are never exposed.
func MessageOf(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Message
	}
	return "Internal server error"
}
