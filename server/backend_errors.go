package server

import (
	"net/http"

	"github.com/articulink/admin-dashboard/apiclient"
	apperrors "github.com/articulink/admin-dashboard/internal/errors"
	"github.com/rs/zerolog/log"
)

// redirectIfInvalidated navigates to the login page when err says the backend
// invalidated the session. The interceptor has already cleared the store.
func redirectIfInvalidated(w http.ResponseWriter, r *http.Request, err error) bool {
	inv, ok := apiclient.AsInvalidated(err)
	if !ok {
		return false
	}
	log.Info().Str("path", r.URL.Path).Str("reason", string(inv.Reason)).Msg("Redirecting invalidated session to login")
	redirectSuccess(w, r, inv.LoginURL())
	return true
}

// actionFailed handles a failed form post: login for an invalidated session,
// otherwise back to page with the backend's message.
func actionFailed(w http.ResponseWriter, r *http.Request, page string, err error) {
	if redirectIfInvalidated(w, r, err) {
		return
	}
	log.Warn().Err(err).Str("path", r.URL.Path).Msg("Backend action failed")
	redirectWithError(w, r, page, apiclient.Message(err))
}

// writeAPIError maps a backend error onto a JSON response for scripts.
func (s *Server) writeAPIError(w http.ResponseWriter, r *http.Request, err error) {
	if inv, ok := apiclient.AsInvalidated(err); ok {
		s.denied(w, r, inv.LoginURL())
		return
	}
	var apiErr *apiclient.APIError
	switch {
	case apperrors.As(err, &apiErr):
		writeJSON(w, apiErr.Status, map[string]string{"detail": apiErr.Message})
	case apperrors.Is(err, apperrors.ErrNotFound):
		writeJSON(w, http.StatusNotFound, map[string]string{"detail": "Not found"})
	default:
		log.Warn().Err(err).Str("path", r.URL.Path).Msg("Chart request failed")
		writeJSON(w, http.StatusBadGateway, map[string]string{"detail": apiclient.Message(err)})
	}
}
