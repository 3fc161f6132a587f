package server

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/articulink/admin-dashboard/apiclient"
)

const defaultPageSize = 50

// UsersContent is the model of the user list page.
type UsersContent struct {
	Users     []apiclient.User
	Stats     apiclient.UserStats
	Filter    apiclient.UserFilter
	PrevSkip  int
	NextSkip  int
	HasPrev   bool
	HasNext   bool
	Durations []string
}

// UsersListHandler lists users with role/status filters (GET /users)
func (s *Server) UsersListHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		b := sessionFromContext(r)
		data := s.newPageData(r, "users", "Users")

		q := r.URL.Query()
		filter := apiclient.UserFilter{
			Role:   q.Get("role"),
			Status: q.Get("status"),
			Skip:   atoiOr(q.Get("skip"), 0),
			Limit:  atoiOr(q.Get("limit"), defaultPageSize),
		}
		if filter.Limit == 0 {
			filter.Limit = defaultPageSize
		}
		content := UsersContent{
			Filter:    filter,
			Durations: []string{"1day", "1week", "1month", "1year"},
		}

		list, err := b.client.Users().List(r.Context(), filter)
		if redirectIfInvalidated(w, r, err) {
			return
		}
		if err != nil {
			data.Error = apiclient.Message(err)
		}
		content.Users = list

		stats, err := b.client.Users().Stats(r.Context())
		if redirectIfInvalidated(w, r, err) {
			return
		}
		if err != nil && data.Error == "" {
			data.Error = apiclient.Message(err)
		}
		content.Stats = stats

		content.HasPrev = filter.Skip > 0
		content.PrevSkip = max(filter.Skip-filter.Limit, 0)
		content.HasNext = len(list) == filter.Limit
		content.NextSkip = filter.Skip + filter.Limit

		data.Content = content
		s.renderPage(w, "users.html", data)
	}
}

// UserStatusHandler sets active, inactive or pending (POST /users/{id}/status)
func (s *Server) UserStatusHandler() http.HandlerFunc {
	return s.userAction(func(r *http.Request, users apiclient.UsersAPI, id string) (apiclient.ActionResult, error) {
		return users.UpdateStatus(r.Context(), id, apiclient.UserStatus(r.FormValue("status")), r.FormValue("reason"))
	})
}

// UserRoleHandler changes the role (POST /users/{id}/role)
func (s *Server) UserRoleHandler() http.HandlerFunc {
	return s.userAction(func(r *http.Request, users apiclient.UsersAPI, id string) (apiclient.ActionResult, error) {
		return users.UpdateRole(r.Context(), id, r.FormValue("role"))
	})
}

func (s *Server) UserActivateHandler() http.HandlerFunc {
	return s.userAction(func(r *http.Request, users apiclient.UsersAPI, id string) (apiclient.ActionResult, error) {
		return users.Activate(r.Context(), id)
	})
}

// UserDeactivateHandler deactivates permanently or for a fixed duration
// (POST /users/{id}/deactivate)
func (s *Server) UserDeactivateHandler() http.HandlerFunc {
	return s.userAction(func(r *http.Request, users apiclient.UsersAPI, id string) (apiclient.ActionResult, error) {
		req := apiclient.DeactivateRequest{
			DeactivationType:   apiclient.DeactivationType(r.FormValue("deactivation_type")),
			DeactivationReason: r.FormValue("reason"),
		}
		if req.DeactivationType == apiclient.DeactivationTemporary {
			req.Duration = r.FormValue("duration")
		}
		return users.Deactivate(r.Context(), id, req)
	})
}

func (s *Server) UserDeleteHandler() http.HandlerFunc {
	return s.userAction(func(r *http.Request, users apiclient.UsersAPI, id string) (apiclient.ActionResult, error) {
		return users.Delete(r.Context(), id)
	})
}

// BulkStatusHandler applies one status to the checked users (POST /users/bulk/status)
func (s *Server) BulkStatusHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			http.Error(w, "Invalid form data", http.StatusBadRequest)
			return
		}
		ids := r.Form["ids"]
		if len(ids) == 0 {
			redirectWithError(w, r, RouteUsers, "Select at least one user")
			return
		}
		b := sessionFromContext(r)
		res, err := b.client.Users().BulkUpdateStatus(r.Context(), ids, apiclient.UserStatus(r.FormValue("status")), r.FormValue("reason"))
		if err != nil {
			actionFailed(w, r, RouteUsers, err)
			return
		}
		redirectWithNotice(w, r, RouteUsers, resultNotice(res, fmt.Sprintf("Updated %d users", res.ModifiedCount)))
	}
}

// AutoReactivateHandler reactivates temporary deactivations that have run out
// (POST /users/auto-reactivate)
func (s *Server) AutoReactivateHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		b := sessionFromContext(r)
		res, err := b.client.Users().AutoReactivate(r.Context())
		if err != nil {
			actionFailed(w, r, RouteUsers, err)
			return
		}
		redirectWithNotice(w, r, RouteUsers, resultNotice(res, fmt.Sprintf("Reactivated %d users", res.ReactivatedCount)))
	}
}

type userActionFunc func(r *http.Request, users apiclient.UsersAPI, id string) (apiclient.ActionResult, error)

// userAction wraps a single user moderation call: parse the form, call the
// backend, return to the user list with the outcome.
func (s *Server) userAction(action userActionFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			http.Error(w, "Invalid form data", http.StatusBadRequest)
			return
		}
		b := sessionFromContext(r)
		res, err := action(r, b.client.Users(), r.PathValue("id"))
		if err != nil {
			actionFailed(w, r, RouteUsers, err)
			return
		}
		redirectWithNotice(w, r, RouteUsers, resultNotice(res, "User updated"))
	}
}

func resultNotice(res apiclient.ActionResult, fallback string) string {
	return resultOr(res.Message, fallback)
}

func atoiOr(s string, fallback int) int {
	n, err := strconv.Atoi(s)
	if err != nil || n < 0 {
		return fallback
	}
	return n
}
