package handler

import (
	"errors"
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/chenterphai/storefront-api/internal/service"
)

// gqlError is the client facing form of a service failure.  graphql-go
// copies Extensions() into the "extensions" member of the error entry.
type gqlError struct {
	msg string
	ext map[string]interface{}
}

func (e *gqlError) Error() string                       { return e.msg }
func (e *gqlError) Extensions() map[string]interface{} { return e.ext }

var kindStatus = map[service.Kind]int{
	service.KindInvalidInput:    http.StatusBadRequest,
	service.KindConflict:        http.StatusConflict,
	service.KindUnauthorized:    http.StatusUnauthorized,
	service.KindInvalidToken:    http.StatusUnauthorized,
	service.KindForbidden:       http.StatusForbidden,
	service.KindNotFound:        http.StatusNotFound,
	service.KindInvalidDuration: http.StatusInternalServerError,
	service.KindInternal:        http.StatusInternalServerError,
}

// toGraphQLError maps every error kind the same way: the message shown is
// the service's client message and the extensions carry code, status and
// field.  Causes of server side failures are logged, never returned.
func toGraphQLError(err error) error {
	if err == nil {
		return nil
	}
	kind := service.KindOf(err)
	msg := "Internal server error."
	field := ""
	var se *service.Error
	if errors.As(err, &se) {
		msg, field = se.Msg, se.Field
	} else if kind == service.KindInvalidToken {
		msg = "Unauthorized: invalid token."
	}
	status := kindStatus[kind]
	if status == 0 {
		status = http.StatusInternalServerError
	}
	if status >= http.StatusInternalServerError {
		log.Error().Err(err).Str("code", string(kind)).Msg("request failed")
	}

	ext := map[string]interface{}{"code": string(kind), "status": status}
	if field != "" {
		ext["field"] = field
	}
	return &gqlError{msg: msg, ext: ext}
}
