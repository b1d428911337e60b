package custom_error

import (
	stdErrors "errors"
	"fmt"
)

type CustomError interface {
	Error() string
}

// UniqueViolationError is a duplicate key reported by the database. The
// constraint names the index that rejected the row, for example
// users_email_key or documents_pkey.
type UniqueViolationError struct {
	message    string
	code       string // PostgreSQL error code (e.g., "23505")
	constraint string
}

type ForeignKeyViolationError struct {
	message    string
	code       string // PostgreSQL error code (e.g., "23503")
	constraint string
}

func (f *ForeignKeyViolationError) Error() string {
	return fmt.Sprintf("%s (code: %s)", f.message, f.code)
}

func (e *UniqueViolationError) Error() string {
	if e.constraint != "" {
		return fmt.Sprintf("%s (code: %s, constraint: %s)", e.message, e.code, e.constraint)
	}
	return fmt.Sprintf("%s (code: %s)", e.message, e.code)
}

func (e *UniqueViolationError) Constraint() string {
	return e.constraint
}

// Is lets a database unique violation match the Conflict code.
func (e *UniqueViolationError) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.code == CodeConflict && t.message == ""
}

func WrapDBError(message, code, constraint string) CustomError {
	switch code {
	case "23505":
		return &UniqueViolationError{
			message:    message,
			code:       code,
			constraint: constraint,
		}
	case "23503":
		return &ForeignKeyViolationError{
			message:    "Value is already used by other resources " + message,
			code:       code,
			constraint: constraint,
		}
	default:
		return fmt.Errorf("uncategorized error occurred with code %s: %s", code, message)
	}
}

// Conflict wraps a duplicate-key failure as a typed Conflict error. The
// violated constraint, when known, is carried in the details so clients can
// tell a taken email from a reused document id.
func Conflict(cause error, message string) *Error {
	err := Wrap(CodeConflict, cause, message)
	var unique *UniqueViolationError
	if stdErrors.As(cause, &unique) && unique.constraint != "" {
		return err.WithDetails(map[string]any{"constraint": unique.constraint})
	}
	return err
}
