package payment

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strings"
)

// ErrorCode is the machine-checkable failure class of an Error.
type ErrorCode string

const (
	CodeConnectionFailed    ErrorCode = "CONNECTION_FAILED"
	CodeTimeout             ErrorCode = "TIMEOUT"
	CodeInvalidResponse     ErrorCode = "INVALID_RESPONSE"
	CodePaymentDeclined     ErrorCode = "PAYMENT_DECLINED"
	CodeTerminalDown        ErrorCode = "TERMINAL_DOWN"
	CodeTransactionNotFound ErrorCode = "TRANSACTION_NOT_FOUND"
	CodeAlreadyCancelled    ErrorCode = "ALREADY_CANCELLED"
	CodeUnknown             ErrorCode = "UNKNOWN_ERROR"
	CodeValidation          ErrorCode = "VALIDATION_ERROR"
)

// Error is the single error type returned by Client operations.
type Error struct {
	Code    ErrorCode
	Message string
	Err     error
}

// Sentinels for errors.Is; matching is by Code only.
var (
	ErrConnectionFailed = &Error{Code: CodeConnectionFailed}
	ErrTimeout          = &Error{Code: CodeTimeout}
	ErrInvalidResponse  = &Error{Code: CodeInvalidResponse}
	ErrUnknown          = &Error{Code: CodeUnknown}
	ErrValidation       = &Error{Code: CodeValidation}
)

func (e *Error) Error() string {
	msg := e.Message
	if msg == "" {
		msg = strings.ToLower(strings.ReplaceAll(string(e.Code), "_", " "))
	}
	if e.Err != nil {
		return fmt.Sprintf("payment: %s: %v", msg, e.Err)
	}
	return "payment: " + msg
}

func (e *Error) Unwrap() error {
	return e.Err
}

func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Code == e.Code
}

// CodeOf returns the ErrorCode carried by err, or CodeUnknown.
func CodeOf(err error) ErrorCode {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return CodeUnknown
}

func newError(code ErrorCode, message string, err error) *Error {
	return &Error{Code: code, Message: message, Err: err}
}

func validationError(format string, args ...any) *Error {
	return newError(CodeValidation, fmt.Sprintf(format, args...), nil)
}

func invalidResponse(format string, args ...any) *Error {
	return newError(CodeInvalidResponse, fmt.Sprintf(format, args...), nil)
}

// classifyTransportError maps a transport failure onto the taxonomy. Error
// text matching is best effort; anything unrecognized is CodeUnknown with the
// underlying message preserved.
func classifyTransportError(stage string, err error) *Error {
	var pe *Error
	if errors.As(err, &pe) {
		return pe
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return newError(CodeTimeout, stage+" timed out", err)
	}
	var ne net.Error
	if errors.As(err, &ne) && ne.Timeout() {
		return newError(CodeTimeout, stage+" timed out", err)
	}
	var oe *net.OpError
	if errors.As(err, &oe) && oe.Op == "dial" {
		return newError(CodeConnectionFailed, "connection to terminal failed", err)
	}
	text := strings.ToLower(err.Error())
	switch {
	case strings.Contains(text, "timeout"):
		return newError(CodeTimeout, stage+" timed out", err)
	case strings.Contains(text, "connect"):
		return newError(CodeConnectionFailed, "connection to terminal failed", err)
	default:
		return newError(CodeUnknown, err.Error(), err)
	}
}
