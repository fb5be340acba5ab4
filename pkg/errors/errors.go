package errors

import (
	stdErrors "errors"
	"fmt"
	"net/http"
	"strings"
)

type Code string

const (
	CodeTransport    Code = "TRANSPORT"
	CodeDecode       Code = "DECODE"
	CodeValidation   Code = "VALIDATION_ERROR"
	CodeUnauthorized Code = "UNAUTHORIZED"
	CodeForbidden    Code = "FORBIDDEN"
	CodeNotFound     Code = "NOT_FOUND"
	CodeConflict     Code = "CONFLICT"
	CodeRateLimit    Code = "RATE_LIMIT_EXCEEDED"
	CodeInternal     Code = "INTERNAL_ERROR"
)

// GenericMessage is surfaced when a failure carries no backend-provided messages.
const GenericMessage = "An error occurred"

type Metadata struct {
	HTTPStatus     int
	PublicMessage  string
	DetailsAllowed bool
}

var metadataByCode = map[Code]Metadata{
	CodeTransport: {
		HTTPStatus:    http.StatusBadGateway,
		PublicMessage: GenericMessage,
	},
	CodeDecode: {
		HTTPStatus:    http.StatusBadGateway,
		PublicMessage: "unexpected response from server",
	},
	CodeValidation: {
		HTTPStatus:     http.StatusBadRequest,
		PublicMessage:  "validation failed",
		DetailsAllowed: true,
	},
	CodeUnauthorized: {
		HTTPStatus:    http.StatusUnauthorized,
		PublicMessage: "authentication required",
	},
	CodeForbidden: {
		HTTPStatus:    http.StatusForbidden,
		PublicMessage: "access denied",
	},
	CodeNotFound: {
		HTTPStatus:    http.StatusNotFound,
		PublicMessage: "resource not found",
	},
	CodeConflict: {
		HTTPStatus:     http.StatusConflict,
		PublicMessage:  "conflict detected",
		DetailsAllowed: true,
	},
	CodeRateLimit: {
		HTTPStatus:    http.StatusTooManyRequests,
		PublicMessage: "rate limit exceeded",
	},
	CodeInternal: {
		HTTPStatus:    http.StatusInternalServerError,
		PublicMessage: "internal server error",
	},
}

func MetadataFor(code Code) Metadata {
	if meta, ok := metadataByCode[code]; ok {
		return meta
	}
	return metadataByCode[CodeInternal]
}

// CodeForStatus maps a non-2xx HTTP status returned by the API onto the taxonomy.
func CodeForStatus(status int) Code {
	switch {
	case status == http.StatusBadRequest, status == http.StatusUnprocessableEntity:
		return CodeValidation
	case status == http.StatusUnauthorized:
		return CodeUnauthorized
	case status == http.StatusForbidden:
		return CodeForbidden
	case status == http.StatusNotFound:
		return CodeNotFound
	case status == http.StatusConflict:
		return CodeConflict
	case status == http.StatusTooManyRequests:
		return CodeRateLimit
	case status >= 500:
		return CodeInternal
	default:
		return CodeTransport
	}
}

type Error struct {
	code     Code
	message  string
	messages []string
	status   int
	details  any
	cause    error
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

// Messages returns the human-readable list reported by the API, if any.
func (e *Error) Messages() []string {
	if e == nil || len(e.messages) == 0 {
		return nil
	}
	out := make([]string, len(e.messages))
	copy(out, e.messages)
	return out
}

// WithMessages attaches the API error list, skipping blank entries.
func (e *Error) WithMessages(messages ...string) *Error {
	if e == nil {
		return nil
	}
	for _, m := range messages {
		if trimmed := strings.TrimSpace(m); trimmed != "" {
			e.messages = append(e.messages, trimmed)
		}
	}
	return e
}

// Status is the HTTP status of the failed response, zero when none was received.
func (e *Error) Status() int {
	if e == nil {
		return 0
	}
	return e.status
}

func (e *Error) WithStatus(status int) *Error {
	if e == nil {
		return nil
	}
	e.status = status
	return e
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
	if len(e.messages) > 0 {
		return fmt.Sprintf("%s: %s (%s)", e.code, e.message, strings.Join(e.messages, "; "))
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

// IsCode reports whether err is a typed error carrying code.
func IsCode(err error, code Code) bool {
	typed := As(err)
	return typed != nil && typed.code == code
}

// UserMessage normalizes any error into the single string shown to operators:
// the API's error list when present, otherwise the typed message, otherwise
// GenericMessage.
func UserMessage(err error) string {
	if err == nil {
		return ""
	}
	typed := As(err)
	if typed == nil {
		return GenericMessage
	}
	if len(typed.messages) > 0 {
		return strings.Join(typed.messages, "; ")
	}
	if msg := strings.TrimSpace(typed.message); msg != "" {
		return msg
	}
	return GenericMessage
}
