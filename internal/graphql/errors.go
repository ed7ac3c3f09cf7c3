package graphql

import (
	"tracker/internal/services"
)

// Error is what resolvers hand back to graphql-go; it implements
// gqlerrors.ExtendedError so the kind ends up in extensions.code.
type Error struct {
	Code    string
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

func (e *Error) Extensions() map[string]interface{} {
	return map[string]interface{}{"code": e.Code}
}

// CodeFor maps an error kind onto the GraphQL extensions code.
func CodeFor(kind services.Kind) string {
	switch kind {
	case services.KindUnauthorized:
		return "UNAUTHENTICATED"
	case services.KindDBError, services.KindHashError, services.KindInternal:
		return "INTERNAL"
	default:
		return string(kind)
	}
}
