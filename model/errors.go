package model

import "fmt"

type ErrorCode string

const (
	ErrInvalidRequest ErrorCode = "INVALID_REQUEST"
	ErrInvalidDigest  ErrorCode = "INVALID_DIGEST"
	ErrMissingLedger  ErrorCode = "MISSING_LEDGER"
	ErrNotFound       ErrorCode = "NOT_FOUND"
	ErrLookupFailed   ErrorCode = "LOOKUP_FAILED"
	ErrInternal       ErrorCode = "INTERNAL"
)

// CodedError is a stable error with a machine-readable code and a human message.
//
// On the wire the message is carried in "error", the field lookup clients
// read when a request fails.
type CodedError struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"error"`
}

func (e *CodedError) Error() string {
	if e == nil {
		return ""
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func NewError(code ErrorCode, message string) *CodedError {
	return &CodedError{Code: code, Message: message}
}
