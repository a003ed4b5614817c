package errors

import (
	stdErrors "errors"
	"fmt"
)

type Code string

const (
	CodeValidation        Code = "VALIDATION_ERROR"
	CodeRateLimitBlocked  Code = "RATE_LIMIT_BLOCKED"
	CodeRateLimited       Code = "RATE_LIMITED"
	CodeCaptchaRequired   Code = "CAPTCHA_REQUIRED"
	CodeOrderRejected     Code = "ORDER_REJECTED"
	CodePaymentRejected   Code = "PAYMENT_REJECTED"
	CodeMalformedResponse Code = "MALFORMED_RESPONSE"
	CodeTransport         Code = "TRANSPORT_FAILURE"
	CodeNotFound          Code = "NOT_FOUND"
	CodeStorage           Code = "STORAGE_ERROR"
	CodeInternal          Code = "INTERNAL_ERROR"
)

// Metadata drives how a failure is presented. UserMessage is the
// fallback shown when the server supplied no message of its own;
// DetailsAllowed gates whether structured details may reach the UI.
type Metadata struct {
	Retryable      bool
	UserMessage    string
	DetailsAllowed bool
}

var metadataByCode = map[Code]Metadata{
	CodeValidation: {
		Retryable:      false,
		UserMessage:    "please fill in all required fields",
		DetailsAllowed: true,
	},
	CodeRateLimitBlocked: {
		Retryable:      true,
		UserMessage:    "too many requests, please wait before retrying",
		DetailsAllowed: true,
	},
	CodeRateLimited: {
		Retryable:      true,
		UserMessage:    "too many requests, please wait before retrying",
		DetailsAllowed: true,
	},
	CodeCaptchaRequired: {
		Retryable:      false,
		UserMessage:    "additional verification is required before ordering",
		DetailsAllowed: false,
	},
	CodeOrderRejected: {
		Retryable:      false,
		UserMessage:    "the order could not be created",
		DetailsAllowed: false,
	},
	CodePaymentRejected: {
		Retryable:      false,
		UserMessage:    "the payment could not be completed",
		DetailsAllowed: false,
	},
	CodeMalformedResponse: {
		Retryable:      false,
		UserMessage:    "an unexpected error occurred",
		DetailsAllowed: false,
	},
	CodeTransport: {
		Retryable:      true,
		UserMessage:    "connection problem, please try again",
		DetailsAllowed: false,
	},
	CodeNotFound: {
		Retryable:      false,
		UserMessage:    "resource not found",
		DetailsAllowed: false,
	},
	CodeStorage: {
		Retryable:      false,
		UserMessage:    "a local storage problem occurred",
		DetailsAllowed: false,
	},
	CodeInternal: {
		Retryable:      true,
		UserMessage:    "an unexpected error occurred",
		DetailsAllowed: false,
	},
}

func MetadataFor(code Code) Metadata {
	if meta, ok := metadataByCode[code]; ok {
		return meta
	}
	return metadataByCode[CodeInternal]
}

// UserFacing returns the message to surface for err: the error's own
// message when the code allows passing it through (server-declared
// rejections carry the server message verbatim), else the per-code
// fallback. Raw transport or decode detail never reaches the user.
func UserFacing(err error) string {
	typed := As(err)
	if typed == nil {
		return MetadataFor(CodeInternal).UserMessage
	}
	switch typed.Code() {
	case CodeValidation, CodeRateLimitBlocked, CodeRateLimited,
		CodeCaptchaRequired, CodeOrderRejected, CodePaymentRejected:
		if typed.Message() != "" {
			return typed.Message()
		}
	}
	return MetadataFor(typed.Code()).UserMessage
}

type Error struct {
	code    Code
	message string
	details any
	cause   error
}

func New(code Code, message string) *Error {
	return &Error{code: code, message: message}
}

func Wrap(code Code, err error, message string) *Error {
	if err == nil {
		return New(code, message)
	}
	return &Error{code: code, message: message, cause: err}
}

func (e *Error) Code() Code {
	if e == nil {
		return CodeInternal
	}
	return e.code
}

func (e *Error) Message() string {
	if e == nil {
		return ""
	}
	return e.message
}

func (e *Error) Details() any {
	if e == nil {
		return nil
	}
	return e.details
}

func (e *Error) WithDetails(details any) *Error {
	if e == nil {
		return nil
	}
	e.details = details
	return e
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	return fmt.Sprintf("%s: %s", e.code, e.message)
}

func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.cause
}

func As(err error) *Error {
	if err == nil {
		return nil
	}
	var typed *Error
	if stdErrors.As(err, &typed) {
		return typed
	}
	return nil
}

// HasCode reports whether err carries the given code.
func HasCode(err error, code Code) bool {
	typed := As(err)
	return typed != nil && typed.Code() == code
}
