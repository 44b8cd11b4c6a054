// Package apperror maps business and vendor failures onto stable error codes,
// localized messages and HTTP statuses.
package apperror

import "fmt"

// Error is a business error raised deliberately at a known failure point.
type Error struct {
	Code   Code
	Params Params
	Err    error
}

// New builds a business error. err may be nil.
func New(code Code, params Params, err error) *Error {
	return &Error{Code: code, Params: params, Err: err}
}

// QueryFailed tags a failed read with the resource it was computing.
func QueryFailed(resource string, err error) *Error {
	return New(CodeQueryFailed, Params{Resource: resource}, err)
}

// InvalidParameter reports a malformed request parameter.
func InvalidParameter(field, value string) *Error {
	return New(CodeInvalidParameter, Params{Field: field, Value: value}, nil)
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	label := string(e.Code)
	if e.Params.Resource != "" {
		label = fmt.Sprintf("%s(%s)", label, e.Params.Resource)
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", label, e.Err)
	}
	return label
}

// Unwrap exposes the vendor cause.
func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// Status returns the HTTP status associated with the error code.
func (e *Error) Status() int {
	return e.Code.Status()
}

// Message renders the localized message.
func (e *Error) Message() string {
	return e.Code.Message(e.Params)
}
