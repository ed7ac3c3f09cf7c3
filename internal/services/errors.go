package services

import (
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"
)

// Kind is the stable, transport-neutral classification of a failure.
type Kind string

const (
	KindInvalidInput       Kind = "INVALID_INPUT"
	KindInvalidColor       Kind = "INVALID_COLOR"
	KindUserExists         Kind = "USER_EXISTS"
	KindInvalidCredentials Kind = "INVALID_CREDENTIALS"
	KindUnauthorized       Kind = "UNAUTHORIZED"
	KindNotFound           Kind = "NOT_FOUND"
	KindNoUpdateFields     Kind = "NO_UPDATE_FIELDS"
	KindDBError            Kind = "DB_ERROR"
	KindHashError          Kind = "HASH_ERROR"
	KindInternal           Kind = "INTERNAL"
)

// Error carries a Kind and a message that is safe to show to callers. The
// wrapped cause is only for logs.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Internal reports whether the error is a server-side failure whose cause
// should be logged and hidden.
func (e *Error) Internal() bool {
	switch e.Kind {
	case KindDBError, KindHashError, KindInternal:
		return true
	}
	return false
}

var (
	ErrInvalidCredentials = &Error{Kind: KindInvalidCredentials, Message: "invalid username or password"}
	ErrUnauthorized       = &Error{Kind: KindUnauthorized, Message: "authentication required"}
	ErrUserExists         = &Error{Kind: KindUserExists, Message: "username already exists"}
	ErrNoUpdateFields     = &Error{Kind: KindNoUpdateFields, Message: "no fields to update"}
	ErrInvalidColor       = &Error{Kind: KindInvalidColor, Message: "color must be a hex value like #RGB or #RRGGBB"}
)

// KindOf classifies any error; unknown errors are INTERNAL.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

// AsError converts err to an *Error, wrapping unknown errors as INTERNAL.
func AsError(err error) *Error {
	var e *Error
	if errors.As(err, &e) {
		return e
	}
	return &Error{Kind: KindInternal, Message: "internal server error", Err: err}
}

func invalidInput(format string, args ...any) *Error {
	return &Error{Kind: KindInvalidInput, Message: fmt.Sprintf(format, args...)}
}

func notFound(entity string) *Error {
	return &Error{Kind: KindNotFound, Message: entity + " not found"}
}

func dbError(op string, err error) *Error {
	return &Error{Kind: KindDBError, Message: "database error", Err: fmt.Errorf("%s: %w", op, err)}
}

// mapDBError turns gorm errors into service errors for the named entity.
func mapDBError(entity, op string, err error) error {
	if err == nil {
		return nil
	}
	var e *Error
	if errors.As(err, &e) {
		return e
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return notFound(entity)
	}
	return dbError(op+" "+entity, err)
}

func isDuplicateEntryError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "UNIQUE constraint failed") || // SQLite
		strings.Contains(msg, "duplicate key value violates unique constraint") // PostgreSQL
}
