package server

import (
	"fmt"
	"html/template"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/articulink/admin-dashboard/apiclient"
	"github.com/articulink/admin-dashboard/guard"
	"github.com/articulink/admin-dashboard/internal/config"
	"github.com/articulink/admin-dashboard/login"
	"github.com/articulink/admin-dashboard/sessions"
	"github.com/rs/zerolog/log"
)

// Server is the dashboard shell. Each browser gets its own session store from
// the sessions repo; all backend calls go through one apiclient pipeline bound
// to that store.
type Server struct {
	env       string // Environment (e.g., "DEV", "PROD")
	mux       *http.ServeMux
	routes    []string
	config    config.Config
	sessions  sessions.Repo
	client    *apiclient.Client
	guard     *guard.Guard
	templates *template.Template

	// login flows by browser session id
	flows sync.Map

	unsubscribe func()
}

// New builds the shell. client is the parent API client; per browser clients
// are derived from it with WithStore and share its invalidation listeners.
func New(config config.Config, sessionRepo sessions.Repo, client *apiclient.Client) (*Server, error) {
	if sessionRepo == nil {
		return nil, fmt.Errorf("[Server New] session repo is required")
	}
	if client == nil {
		return nil, fmt.Errorf("[Server New] api client is required")
	}
	policy, err := guard.ParsePolicy(config.GetGuardPolicy())
	if err != nil {
		return nil, fmt.Errorf("[Server New] %w", err)
	}
	g, err := guard.New(policy)
	if err != nil {
		return nil, fmt.Errorf("[Server New] %w", err)
	}
	templates, err := parseTemplates()
	if err != nil {
		return nil, fmt.Errorf("[Server New] failed to parse templates: %w", err)
	}

	s := &Server{
		env:       config.GetEnv(),
		mux:       http.NewServeMux(),
		config:    config,
		sessions:  sessionRepo,
		client:    client,
		guard:     g,
		templates: templates,
	}
	s.unsubscribe = client.OnInvalidated(s.logInvalidation)

	s.initRoutes()
	s.logRoutes()
	log.Info().Str("policy", string(g.Policy())).Msg("Route guard configured")

	return s, nil
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

// Close stops listening for invalidation events.
func (s *Server) Close() {
	if s.unsubscribe != nil {
		s.unsubscribe()
	}
}

func (s *Server) RegisterRouteHandler(pattern string, handler http.Handler) {
	s.routes = append(s.routes, pattern)
	s.mux.Handle(pattern, handler)
}

func (s *Server) RegisterRouteFunc(pattern string, handler func(http.ResponseWriter, *http.Request)) {
	s.routes = append(s.routes, pattern)
	s.mux.HandleFunc(pattern, handler)
}

// PurgeExpired drops browser sessions created before the given time together
// with their cached login flows.
func (s *Server) PurgeExpired(before time.Time) error {
	if err := s.sessions.DeleteExpired(before); err != nil {
		return fmt.Errorf("[Server PurgeExpired] %w", err)
	}
	s.flows.Range(func(key, _ any) bool {
		if _, err := s.sessions.Get(key.(string)); err != nil {
			s.flows.Delete(key)
		}
		return true
	})
	return nil
}

// loginFlow returns the login flow of a browser session, so a double
// submitted form hits the in-flight check of the same flow.
func (s *Server) loginFlow(b *browserSession) (*login.Flow, error) {
	if f, ok := s.flows.Load(b.id); ok {
		return f.(*login.Flow), nil
	}
	f, err := login.New(b.store, b.client.Auth())
	if err != nil {
		return nil, err
	}
	actual, _ := s.flows.LoadOrStore(b.id, f)
	return actual.(*login.Flow), nil
}

func (s *Server) logInvalidation(inv apiclient.Invalidation) {
	log.Info().
		Str("reason", string(inv.Reason)).
		Int("status", inv.Status).
		Str("method", inv.Method).
		Str("path", inv.Path).
		Msg("Session invalidated by backend")
}

func (s *Server) logRoutes() {
	if s.env != "DEV" {
		return // Skip logging in non-development environments
	}
	for _, route := range s.routes {
		parts := strings.SplitN(route, " ", 2)

		if len(parts) > 1 {
			logRoute(parts[0], parts[1])
		} else {
			logRoute("", parts[0])
		}
	}
}

func logRoute(method, path string) {
	log.Info().Msg(fmt.Sprintf("[%-19s] %s", colouredMethod(method), path))
}

func logError(method, path, error string) {
	log.Error().Msg(fmt.Sprintf("[%-19s] %s %s", colouredMethod(method), path, Red+error+ResetColor))
}

func colouredMethod(method string) string {
	paddedMethod := fmt.Sprintf(" %-7s", method)
	if color, ok := methodColors[method]; ok {
		return color + paddedMethod + ResetColor
	}
	return Gray + paddedMethod + ResetColor
}

// Helper function to determine the scheme (http/https)
func getScheme(r *http.Request) string {
	if r.TLS != nil {
		return "https"
	}
	if scheme := r.Header.Get("X-Forwarded-Proto"); scheme != "" {
		return scheme
	}
	return "http"
}
