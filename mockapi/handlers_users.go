package mockapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog/log"

	apperrors "github.com/articulink/admin-dashboard/internal/errors"
	"github.com/articulink/admin-dashboard/sessions"
	"github.com/articulink/admin-dashboard/users"
)

const (
	defaultListLimit = 100
	maxListLimit     = 1000
)

func (s *Server) listUsers(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := users.Filter{
		Role:   q.Get("role"),
		Status: q.Get("status"),
		Limit:  defaultListLimit,
	}
	if v := q.Get("skip"); v != "" {
		skip, err := strconv.Atoi(v)
		if err != nil || skip < 0 {
			writeValidation(w, "query", "skip", "ensure this value is greater than or equal to 0")
			return
		}
		filter.Skip = skip
	}
	if v := q.Get("limit"); v != "" {
		limit, err := strconv.Atoi(v)
		if err != nil || limit < 1 || limit > maxListLimit {
			writeValidation(w, "query", "limit", fmt.Sprintf("ensure this value is between 1 and %d", maxListLimit))
			return
		}
		filter.Limit = limit
	}

	list, err := s.users.List(filter)
	if err != nil {
		log.Err(err).Msg("Failed to list users")
		writeDetail(w, http.StatusInternalServerError, "Error fetching users from database")
		return
	}
	out := make([]sessions.UserProfile, 0, len(list))
	for _, u := range list {
		out = append(out, u.Profile())
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) userStats(w http.ResponseWriter, r *http.Request) {
	stats, err := s.users.Stats()
	if err != nil {
		writeDetail(w, http.StatusInternalServerError, "Error fetching user statistics from database")
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

// loadUser fetches the {id} user, answering 404 when it does not exist.
func (s *Server) loadUser(w http.ResponseWriter, r *http.Request) (*users.User, bool) {
	u, err := s.users.GetByID(mux.Vars(r)["id"])
	if err != nil {
		if apperrors.Is(err, apperrors.ErrNotFound) {
			writeDetail(w, http.StatusNotFound, "User not found")
		} else {
			writeDetail(w, http.StatusInternalServerError, "Error fetching user")
		}
		return nil, false
	}
	return u, true
}

func (s *Server) save(w http.ResponseWriter, u *users.User, failure string) bool {
	if err := s.users.Update(u); err != nil {
		log.Err(err).Str("user_id", u.ID).Msg(failure)
		writeDetail(w, http.StatusInternalServerError, failure)
		return false
	}
	return true
}

func (s *Server) getUser(w http.ResponseWriter, r *http.Request) {
	if u, ok := s.loadUser(w, r); ok {
		writeJSON(w, http.StatusOK, u.Profile())
	}
}

func (s *Server) deleteUser(w http.ResponseWriter, r *http.Request) {
	u, ok := s.loadUser(w, r)
	if !ok {
		return
	}
	if u.ID == currentUser(r).ID {
		writeDetail(w, http.StatusBadRequest, "You cannot delete your own account")
		return
	}
	if err := s.users.Delete(u.ID); err != nil {
		writeDetail(w, http.StatusInternalServerError, "Error deleting user")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "User deleted successfully", "user_id": u.ID})
}

func validStatus(status string) bool {
	return status == string(users.StatusActive) || status == string(users.StatusInactive)
}

func (s *Server) updateStatus(w http.ResponseWriter, r *http.Request) {
	status := r.URL.Query().Get("status")
	if status == "" {
		writeValidation(w, "query", "status", "field required")
		return
	}
	if !validStatus(status) {
		writeDetail(w, http.StatusBadRequest, "Status must be either 'active' or 'inactive'")
		return
	}
	u, ok := s.loadUser(w, r)
	if !ok {
		return
	}
	reason := r.URL.Query().Get("deactivation_reason")
	applyStatus(u, users.StatusType(status), reason)
	if !s.save(w, u, "Error updating user status") {
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"message":             fmt.Sprintf("User status updated to %s successfully", status),
		"user_id":             u.ID,
		"new_status":          status,
		"deactivation_reason": nullable(reason),
		"user":                u.Profile(),
	})
}

// applyStatus is the legacy status switch: inactive keeps the reason, active
// clears it.
func applyStatus(u *users.User, status users.StatusType, reason string) {
	if status == users.StatusActive {
		u.Activate()
		return
	}
	u.Status = users.StatusInactive
	u.DeactivationReason = reason
	u.UpdatedAt = users.NowTimeFunc()
}

func (s *Server) updateRole(w http.ResponseWriter, r *http.Request) {
	role := sessions.RoleType(r.URL.Query().Get("role"))
	if role != sessions.RoleAdmin && role != sessions.RoleUser {
		writeDetail(w, http.StatusBadRequest, "Role must be either 'admin' or 'user'")
		return
	}
	u, ok := s.loadUser(w, r)
	if !ok {
		return
	}
	u.Role = role
	u.UpdatedAt = users.NowTimeFunc()
	if !s.save(w, u, "Error updating user role") {
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"message": fmt.Sprintf("User role updated to %s successfully", role),
		"user":    u.Profile(),
	})
}

type deactivateRequest struct {
	DeactivationType   users.DeactivationType `json:"deactivation_type"`
	Duration           string                 `json:"duration"`
	DeactivationReason string                 `json:"deactivation_reason"`
}

func (s *Server) deactivateUser(w http.ResponseWriter, r *http.Request) {
	var req deactivateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeValidation(w, "body", "deactivation_type", "field required")
		return
	}
	u, ok := s.loadUser(w, r)
	if !ok {
		return
	}
	if err := u.Deactivate(req.DeactivationType, req.Duration, req.DeactivationReason); err != nil {
		writeDetail(w, http.StatusBadRequest, err.Error())
		return
	}
	if !s.save(w, u, "Error deactivating user") {
		return
	}
	resp := map[string]any{
		"message": fmt.Sprintf("User deactivated (%s)", req.DeactivationType),
		"user":    u.Profile(),
	}
	if !u.DeactivationEndDate.IsZero() {
		resp["deactivation_end_date"] = u.DeactivationEndDate.UTC()
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) activateUser(w http.ResponseWriter, r *http.Request) {
	u, ok := s.loadUser(w, r)
	if !ok {
		return
	}
	u.Activate()
	if !s.save(w, u, "Error activating user") {
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"message": "User activated successfully",
		"user":    u.Profile(),
	})
}

func (s *Server) autoReactivate(w http.ResponseWriter, r *http.Request) {
	n, err := s.ReactivateExpired()
	if err != nil {
		writeDetail(w, http.StatusInternalServerError, "Error during auto-reactivation")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"message":           fmt.Sprintf("Auto-reactivated %d users", n),
		"reactivated_count": n,
	})
}

// bulkUpdateStatus takes the ids as a JSON array body. Repeated user_ids
// query parameters are accepted as well.
func (s *Server) bulkUpdateStatus(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	status := q.Get("status")
	if !validStatus(status) {
		writeDetail(w, http.StatusBadRequest, "Status must be either 'active' or 'inactive'")
		return
	}

	var ids []string
	if err := json.NewDecoder(r.Body).Decode(&ids); err != nil && !errors.Is(err, io.EOF) {
		writeValidation(w, "body", "user_ids", "value is not a valid list")
		return
	}
	ids = append(ids, q["user_ids"]...)

	reason := q.Get("deactivation_reason")
	modified := 0
	for _, id := range ids {
		u, err := s.users.GetByID(id)
		if err != nil {
			continue
		}
		applyStatus(u, users.StatusType(status), reason)
		if err := s.users.Update(u); err != nil {
			log.Err(err).Str("user_id", id).Msg("Bulk status update failed")
			continue
		}
		modified++
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"message":             fmt.Sprintf("Updated %d users to %s", modified, status),
		"modified_count":      modified,
		"status":              status,
		"deactivation_reason": nullable(reason),
	})
}

func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}
