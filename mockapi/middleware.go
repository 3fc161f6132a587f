package mockapi

import (
	"context"
	"net/http"
	"strings"

	"github.com/articulink/admin-dashboard/sessions"
	"github.com/articulink/admin-dashboard/token"
	"github.com/articulink/admin-dashboard/users"
)

type contextKey string

const contextKeyUser contextKey = "user"

// requireUser resolves the bearer token to a user or answers 401.
func (s *Server) requireUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			writeDetail(w, http.StatusUnauthorized, "Not authenticated")
			return
		}
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") || parts[1] == "" {
			writeDetail(w, http.StatusUnauthorized, "Invalid or expired token")
			return
		}

		claims, err := s.issuer.Verify(parts[1], token.TypeAccess)
		if err != nil {
			writeDetail(w, http.StatusUnauthorized, "Invalid or expired token")
			return
		}
		user, err := s.users.GetByID(claims.UserID)
		if err != nil {
			writeDetail(w, http.StatusUnauthorized, "User not found")
			return
		}

		ctx := context.WithValue(r.Context(), contextKeyUser, user)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// requireAdmin answers 403 unless the current user is an admin. It must run
// after requireUser.
func (s *Server) requireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user := currentUser(r)
		if user == nil || user.Role != sessions.RoleAdmin {
			writeDetail(w, http.StatusForbidden, "Admin access required")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func currentUser(r *http.Request) *users.User {
	u, _ := r.Context().Value(contextKeyUser).(*users.User)
	return u
}
