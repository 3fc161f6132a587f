package mockapi

import (
	"net/http"
	"sync"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog/log"

	"github.com/articulink/admin-dashboard/token"
	"github.com/articulink/admin-dashboard/users"
)

// Server is an in-memory stand in for the ArticuLink REST backend. It speaks
// the same paths, bodies and status codes, including 401 for bad tokens and
// 403 for non admin callers.
type Server struct {
	router *mux.Router
	users  users.UserRepo
	issuer *token.Issuer

	mediaLock sync.RWMutex
	media     map[string]mediaFile
}

type mediaFile struct {
	contentType string
	data        []byte
}

func New(repo users.UserRepo, issuer *token.Issuer) *Server {
	s := &Server{
		router: mux.NewRouter(),
		users:  repo,
		issuer: issuer,
		media:  make(map[string]mediaFile),
	}
	s.initRoutes()
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) initRoutes() {
	r := s.router
	r.Use(logRequests)
	r.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeDetail(w, http.StatusNotFound, "Not Found")
	})
	r.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeDetail(w, http.StatusMethodNotAllowed, "Method Not Allowed")
	})

	r.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}).Methods("GET")
	r.HandleFunc("/media/{name}", s.serveMedia).Methods("GET")

	auth := r.PathPrefix("/api/auth").Subrouter()
	auth.HandleFunc("/register", s.register).Methods("POST")
	auth.HandleFunc("/login", s.login).Methods("POST")

	me := r.PathPrefix("/api/auth").Subrouter()
	me.Use(s.requireUser)
	me.HandleFunc("/me", s.me).Methods("GET")
	me.HandleFunc("/profile", s.updateProfile).Methods("PUT")
	me.HandleFunc("/profile/picture", s.uploadProfilePicture).Methods("POST")
	me.HandleFunc("/profile/picture", s.deleteProfilePicture).Methods("DELETE")

	// Fixed paths first: {id} would otherwise swallow "bulk" and "stats".
	admin := r.PathPrefix("/api").Subrouter()
	admin.Use(s.requireUser, s.requireAdmin)
	admin.HandleFunc("/users/", s.listUsers).Methods("GET")
	admin.HandleFunc("/users/stats/count", s.userStats).Methods("GET")
	admin.HandleFunc("/users/bulk/status", s.bulkUpdateStatus).Methods("PUT")
	admin.HandleFunc("/users/auto-reactivate", s.autoReactivate).Methods("POST")
	admin.HandleFunc("/users/{id}", s.getUser).Methods("GET")
	admin.HandleFunc("/users/{id}", s.deleteUser).Methods("DELETE")
	admin.HandleFunc("/users/{id}/status", s.updateStatus).Methods("PUT")
	admin.HandleFunc("/users/{id}/role", s.updateRole).Methods("PUT")
	admin.HandleFunc("/users/{id}/deactivate", s.deactivateUser).Methods("PUT")
	admin.HandleFunc("/users/{id}/activate", s.activateUser).Methods("PUT")

	admin.HandleFunc("/dashboard/stats", s.dashboardStats).Methods("GET")
	admin.HandleFunc("/dashboard/analytics", s.analytics).Methods("GET")
	admin.HandleFunc("/dashboard/activities", s.activities).Methods("GET")
	admin.HandleFunc("/dashboard/gender-demographics", s.genderDemographics).Methods("GET")
	admin.HandleFunc("/dashboard/user-growth", s.userGrowth).Methods("GET")
	admin.HandleFunc("/dashboard/age-distribution", s.ageDistribution).Methods("GET")
}

func logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		log.Debug().Str("method", r.Method).Str("path", r.URL.Path).Int("status", rec.status).Msg("mockapi")
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}
