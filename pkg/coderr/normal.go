// Copyright 2023 VortexDB Project Authors. Licensed under Apache-2.0.

package coderr

import "fmt"

var _ CodeError = &normalCodeError{}

// normalCodeError is actually the leaf error in the error chain, that is to say, the error is generated in our codebase.
type normalCodeError struct {
	code Code
	msg  string
}

func (e *normalCodeError) Error() string {
	return fmt.Sprintf("code:%d, msg:%s", e.code, e.msg)
}

func (e *normalCodeError) Code() Code {
	return e.code
}

func (e *normalCodeError) WithCausef(format string, a ...any) CodeError {
	return &wrappedCodeError{
		base:  e,
		cause: fmt.Sprintf(format, a...),
	}
}

func NewCodeError(code Code, msg string) CodeError {
	return &normalCodeError{
		code,
		msg,
	}
}

var _ CodeError = &wrappedCodeError{}

type wrappedCodeError struct {
	base  *normalCodeError
	cause string
}

func (e *wrappedCodeError) Error() string {
	return fmt.Sprintf("%s, cause:%s", e.base.Error(), e.cause)
}

func (e *wrappedCodeError) Code() Code {
	return e.base.code
}

func (e *wrappedCodeError) WithCausef(format string, a ...any) CodeError {
	return &wrappedCodeError{
		base:  e.base,
		cause: fmt.Sprintf(format, a...),
	}
}

// Unwrap makes errors.Is work against the package-level error values.
func (e *wrappedCodeError) Unwrap() error {
	return e.base
}
