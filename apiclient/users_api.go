package apiclient

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
)

// UsersAPI wraps /api/users.
type UsersAPI struct {
	c *Client
}

func (u UsersAPI) List(ctx context.Context, filter UserFilter) ([]User, error) {
	q := url.Values{}
	if filter.Skip > 0 {
		q.Set("skip", strconv.Itoa(filter.Skip))
	}
	if filter.Limit > 0 {
		q.Set("limit", strconv.Itoa(filter.Limit))
	}
	if filter.Role != "" {
		q.Set("role", filter.Role)
	}
	if filter.Status != "" {
		q.Set("status", filter.Status)
	}
	var users []User
	err := u.c.doJSON(ctx, http.MethodGet, "/api/users/", q, nil, &users)
	return users, err
}

func (u UsersAPI) Stats(ctx context.Context) (UserStats, error) {
	var s UserStats
	err := u.c.doJSON(ctx, http.MethodGet, "/api/users/stats/count", nil, nil, &s)
	return s, err
}

func (u UsersAPI) Get(ctx context.Context, id string) (User, error) {
	var user User
	err := u.c.doJSON(ctx, http.MethodGet, "/api/users/"+url.PathEscape(id), nil, nil, &user)
	return user, err
}

// UpdateStatus is the legacy status endpoint; reason is only sent when set.
func (u UsersAPI) UpdateStatus(ctx context.Context, id string, status UserStatus, reason string) (ActionResult, error) {
	q := url.Values{"status": {string(status)}}
	if reason != "" {
		q.Set("deactivation_reason", reason)
	}
	var r ActionResult
	err := u.c.doJSON(ctx, http.MethodPut, "/api/users/"+url.PathEscape(id)+"/status", q, nil, &r)
	return r, err
}

func (u UsersAPI) UpdateRole(ctx context.Context, id string, role string) (ActionResult, error) {
	var r ActionResult
	err := u.c.doJSON(ctx, http.MethodPut, "/api/users/"+url.PathEscape(id)+"/role", url.Values{"role": {role}}, nil, &r)
	return r, err
}

func (u UsersAPI) Delete(ctx context.Context, id string) (ActionResult, error) {
	var r ActionResult
	err := u.c.doJSON(ctx, http.MethodDelete, "/api/users/"+url.PathEscape(id), nil, nil, &r)
	return r, err
}

func (u UsersAPI) Deactivate(ctx context.Context, id string, req DeactivateRequest) (ActionResult, error) {
	var r ActionResult
	err := u.c.doJSON(ctx, http.MethodPut, "/api/users/"+url.PathEscape(id)+"/deactivate", nil, req, &r)
	return r, err
}

// Activate clears every deactivation field of the user.
func (u UsersAPI) Activate(ctx context.Context, id string) (ActionResult, error) {
	var r ActionResult
	err := u.c.doJSON(ctx, http.MethodPut, "/api/users/"+url.PathEscape(id)+"/activate", nil, nil, &r)
	return r, err
}

// AutoReactivate asks the backend to reactivate users whose temporary
// deactivation has ended.
func (u UsersAPI) AutoReactivate(ctx context.Context) (ActionResult, error) {
	var r ActionResult
	err := u.c.doJSON(ctx, http.MethodPost, "/api/users/auto-reactivate", nil, nil, &r)
	return r, err
}

// BulkUpdateStatus sends the ids as a JSON array body and the status as a
// query parameter.
func (u UsersAPI) BulkUpdateStatus(ctx context.Context, ids []string, status UserStatus, reason string) (ActionResult, error) {
	q := url.Values{"status": {string(status)}}
	if reason != "" {
		q.Set("deactivation_reason", reason)
	}
	if ids == nil {
		ids = []string{}
	}
	var r ActionResult
	err := u.c.doJSON(ctx, http.MethodPut, "/api/users/bulk/status", q, ids, &r)
	return r, err
}
