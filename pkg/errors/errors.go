package custom_error

import (
	stdErrors "errors"
	"fmt"
	"net/http"
)

type Code string

const (
	CodeValidation           Code = "validation_error"
	CodeNotFound             Code = "not_found"
	CodeConflict             Code = "conflict"
	CodeIllegalTransition    Code = "illegal_transition"
	CodeConfirmationRequired Code = "confirmation_required"
	CodeUnauthorized         Code = "unauthorized"
	CodeRemote               Code = "remote_error"
	CodeInternal             Code = "internal_error"
)

type Metadata struct {
	HTTPStatus    int
	PublicMessage string
}

var metadataByCode = map[Code]Metadata{
	CodeValidation:           {HTTPStatus: http.StatusBadRequest, PublicMessage: "validation failed"},
	CodeNotFound:             {HTTPStatus: http.StatusNotFound, PublicMessage: "resource not found"},
	CodeConflict:             {HTTPStatus: http.StatusConflict, PublicMessage: "conflict detected"},
	CodeIllegalTransition:    {HTTPStatus: http.StatusUnprocessableEntity, PublicMessage: "state transition disallowed"},
	CodeConfirmationRequired: {HTTPStatus: http.StatusPreconditionRequired, PublicMessage: "explicit confirmation required"},
	CodeUnauthorized:         {HTTPStatus: http.StatusUnauthorized, PublicMessage: "authentication required"},
	CodeRemote:               {HTTPStatus: http.StatusBadGateway, PublicMessage: "document store request failed"},
	CodeInternal:             {HTTPStatus: http.StatusInternalServerError, PublicMessage: "internal server error"},
}

func MetadataFor(code Code) Metadata {
	if meta, ok := metadataByCode[code]; ok {
		return meta
	}
	return metadataByCode[CodeInternal]
}

// Error carries a Code so handlers can pick a status without string matching.
type Error struct {
	code    Code
	message string
	details map[string]any
	cause   error
}

func New(code Code, message string) *Error {
	return &Error{code: code, message: message}
}

func Newf(code Code, format string, args ...any) *Error {
	return &Error{code: code, message: fmt.Sprintf(format, args...)}
}

func Wrap(code Code, cause error, message string) *Error {
	return &Error{code: code, message: message, cause: cause}
}

func (e *Error) WithDetails(details map[string]any) *Error {
	if e == nil {
		return nil
	}
	e.details = details
	return e
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

func (e *Error) Details() map[string]any {
	if e == nil {
		return nil
	}
	return e.details
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.code, e.message, e.cause)
	}
	return fmt.Sprintf("%s: %s", e.code, e.message)
}

func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.cause
}

// Is matches another *Error by code when the target carries no message,
// so errors.Is(err, custom_error.Sentinel(CodeConflict)) works.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok || e == nil {
		return false
	}
	return t.message == "" && t.code == e.code
}

func Sentinel(code Code) *Error {
	return &Error{code: code}
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

func CodeOf(err error) Code {
	if typed := As(err); typed != nil {
		return typed.code
	}
	var unique *UniqueViolationError
	if stdErrors.As(err, &unique) {
		return CodeConflict
	}
	return CodeInternal
}
