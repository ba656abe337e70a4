package api

import (
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/erazemk/zaloga/internal/apperr"
)

// writeError maps an application error to its HTTP status and renders the
// canonical {"error": "..."} envelope. Storage and unclassified errors are
// logged and hidden behind a generic message.
func writeError(w http.ResponseWriter, err error) {
	switch apperr.KindOf(err) {
	case apperr.KindValidation:
		jsonError(w, http.StatusBadRequest, err.Error())
	case apperr.KindAuthentication:
		jsonError(w, http.StatusUnauthorized, err.Error())
	case apperr.KindNotFound:
		jsonError(w, http.StatusNotFound, err.Error())
	case apperr.KindConflict:
		jsonError(w, http.StatusConflict, err.Error())
	case apperr.KindInvariant:
		jsonError(w, http.StatusUnprocessableEntity, err.Error())
	default:
		log.Error().Err(err).Msg("unhandled error")
		jsonError(w, http.StatusInternalServerError, "internal error")
	}
}
