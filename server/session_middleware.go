package server

import (
	"context"
	"net/http"
	"strings"

	"github.com/articulink/admin-dashboard/apiclient"
	"github.com/articulink/admin-dashboard/guard"
	apperrors "github.com/articulink/admin-dashboard/internal/errors"
	"github.com/articulink/admin-dashboard/sessions"
	"github.com/rs/zerolog/log"
)

// ContextKey is a custom type for context keys to avoid collisions
type ContextKey string

// ContextKeyBrowserSession stores the *browserSession of an authorized request
const ContextKeyBrowserSession ContextKey = "browser_session"

// browserSession is one browser's view of the backend: its session store and
// an API client reading credentials from that store.
type browserSession struct {
	id     string
	store  sessions.Store
	client *apiclient.Client
	user   *sessions.UserProfile
}

// RequireSession runs the route guard for every protected request. An
// authorized request carries its browserSession in the context; anything else
// is sent to the login page the guard chose.
func (s *Server) RequireSession() func(http.HandlerFunc) http.HandlerFunc {
	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			b, ok := s.existingBrowserSession(r)
			if !ok {
				s.denied(w, r, apiclient.LoginURL(apiclient.ReasonUnauthenticated))
				return
			}

			d := s.guard.Run(r.Context(), b.store, b.client.Auth(), func(d guard.Decision) {
				log.Debug().Str("session_id", b.id).Str("path", r.URL.Path).Stringer("state", d.State).Msg("Route guard")
			})
			if d.State != guard.StateAuthorized {
				s.denied(w, r, d.Redirect)
				return
			}
			b.user = d.User
			if b.user == nil {
				b.user, _ = b.store.User()
			}

			ctx := context.WithValue(r.Context(), ContextKeyBrowserSession, b)
			next(w, r.WithContext(ctx))
		}
	}
}

func sessionFromContext(r *http.Request) *browserSession {
	b, _ := r.Context().Value(ContextKeyBrowserSession).(*browserSession)
	return b
}

// existingBrowserSession looks up the session named by the cookie.
func (s *Server) existingBrowserSession(r *http.Request) (*browserSession, bool) {
	cookie, err := r.Cookie(browserSessionCookieName)
	if err != nil || cookie.Value == "" {
		return nil, false
	}
	store, err := s.sessions.Get(cookie.Value)
	if err != nil {
		if !apperrors.Is(err, apperrors.ErrNotFound) {
			log.Err(err).Msg("Failed to load browser session")
		}
		return nil, false
	}
	return s.bind(cookie.Value, store), true
}

// browserSessionFor returns the browser's session, starting a new one (and
// setting its cookie) when there is none.
func (s *Server) browserSessionFor(w http.ResponseWriter, r *http.Request) (*browserSession, error) {
	if b, ok := s.existingBrowserSession(r); ok {
		return b, nil
	}
	id, store, err := s.sessions.Create()
	if err != nil {
		return nil, apperrors.Wrapf(apperrors.ErrStorage, "create browser session: %v", err)
	}
	s.SetBrowserSessionCookie(w, r, id, int(s.config.GetMaxSessionAge().Seconds()))
	return s.bind(id, store), nil
}

func (s *Server) bind(id string, store sessions.Store) *browserSession {
	return &browserSession{id: id, store: store, client: s.client.WithStore(store)}
}

// denied sends an unauthorized request to target. Chart requests come from
// scripts, so they get a JSON body naming the target instead.
func (s *Server) denied(w http.ResponseWriter, r *http.Request, target string) {
	if isAPIRequest(r) {
		status := http.StatusUnauthorized
		if strings.Contains(target, string(apiclient.ReasonAdminRequired)) {
			status = http.StatusForbidden
		}
		writeJSON(w, status, map[string]string{"detail": http.StatusText(status), "redirect": target})
		return
	}
	redirectSuccess(w, r, target)
}

func isAPIRequest(r *http.Request) bool {
	return strings.HasPrefix(r.URL.Path, "/api/")
}
