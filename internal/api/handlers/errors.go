package handlers

import (
	"errors"
	"net/http"

	"github.com/isdelr/contactbook/internal/api/response"
	"github.com/isdelr/contactbook/internal/services"
	"github.com/rs/zerolog/log"
)

// writeServiceError maps a service error onto the response envelope.
// fields adds context to the log line, e.g. the user id.
func writeServiceError(w http.ResponseWriter, err error, msg string, fields map[string]interface{}) {
	var vErr *services.ValidationError
	var nfErr *services.NotFoundError

	switch {
	case errors.As(err, &vErr):
		log.Warn().Fields(fields).Err(err).Msg(msg)
		response.BadRequest(w, vErr.Message)
	case errors.As(err, &nfErr):
		log.Warn().Fields(fields).Err(err).Msg(msg)
		response.NotFound(w, nfErr.Error())
	default:
		log.Error().Fields(fields).Err(err).Msg(msg)
		response.InternalError(w, msg+": "+err.Error())
	}
}
