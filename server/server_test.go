package server_test

import (
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/articulink/admin-dashboard/apiclient"
	"github.com/articulink/admin-dashboard/internal/config"
	"github.com/articulink/admin-dashboard/mockapi"
	"github.com/articulink/admin-dashboard/server"
	"github.com/articulink/admin-dashboard/sessions"
	"github.com/articulink/admin-dashboard/token"
	"github.com/articulink/admin-dashboard/users"
	fakeuserrepo "github.com/articulink/admin-dashboard/users/repofake"
	"github.com/stretchr/testify/require"
)

const (
	adminEmail = "admin@articulink.dev"
	userEmail  = "maria.santos@example.com"
	password   = "admin123"
)

type testFixture struct {
	dashboard   *httptest.Server
	backendRepo *fakeuserrepo.FakeUserRepo
	sessions    *sessions.InMemoryRepo
	server      *server.Server
	browser     *http.Client
	events      []apiclient.Invalidation
	// failures maps a backend path to the status it answers with instead.
	failures map[string]int
}

func setupTestFixture(t *testing.T) *testFixture {
	t.Helper()
	t.Setenv("ENV", "TEST")
	t.Setenv("GUARD_POLICY", "")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://charts.example.com")

	repo := fakeuserrepo.NewFakeUserRepo()
	require.NoError(t, mockapi.Seed(repo, adminEmail, password, true))
	issuer, err := token.NewIssuer(token.NewHMACSigner("test-secret"))
	require.NoError(t, err)
	f := &testFixture{
		backendRepo: repo,
		sessions:    sessions.NewInMemoryRepo(),
		failures:    make(map[string]int),
	}
	api := mockapi.New(repo, issuer)
	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if status, ok := f.failures[r.URL.Path]; ok {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(status)
			_, _ = io.WriteString(w, `{"detail":"Backend unavailable"}`)
			return
		}
		api.ServeHTTP(w, r)
	}))
	t.Cleanup(backend.Close)

	client, err := apiclient.New(backend.URL, sessions.NewMemoryStore())
	require.NoError(t, err)

	client.OnInvalidated(func(inv apiclient.Invalidation) {
		f.events = append(f.events, inv)
	})

	s, err := server.New(config.New(), f.sessions, client)
	require.NoError(t, err)
	t.Cleanup(s.Close)
	f.server = s
	f.dashboard = httptest.NewServer(s)
	t.Cleanup(f.dashboard.Close)

	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	f.browser = &http.Client{
		Jar: jar,
		CheckRedirect: func(*http.Request, []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}
	return f
}

func (f *testFixture) get(t *testing.T, path string) (*http.Response, string) {
	t.Helper()
	resp, err := f.browser.Get(f.dashboard.URL + path)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, string(body)
}

func (f *testFixture) post(t *testing.T, path string, form url.Values) *http.Response {
	t.Helper()
	resp, err := f.browser.PostForm(f.dashboard.URL+path, form)
	require.NoError(t, err)
	resp.Body.Close()
	return resp
}

func (f *testFixture) login(t *testing.T, email string) *http.Response {
	t.Helper()
	return f.post(t, server.RouteAuthLogin, url.Values{"email": {email}, "password": {password}})
}

func requireRedirect(t *testing.T, resp *http.Response, want string) {
	t.Helper()
	require.Equal(t, http.StatusSeeOther, resp.StatusCode)
	require.Equal(t, want, resp.Header.Get("Location"))
}

func (f *testFixture) backendUser(t *testing.T, email string) *users.User {
	t.Helper()
	u, err := f.backendRepo.GetByEmail(email)
	require.NoError(t, err)
	return u
}

func TestProtectedPage_WithoutSession(t *testing.T) {
	f := setupTestFixture(t)

	resp, _ := f.get(t, server.RouteDashboard)
	requireRedirect(t, resp, "/login")

	resp, _ = f.get(t, "/")
	requireRedirect(t, resp, server.RouteDashboard)
}

func TestLogin_AdminReachesDashboard(t *testing.T) {
	f := setupTestFixture(t)

	requireRedirect(t, f.login(t, adminEmail), "/dashboard")

	resp, body := f.get(t, server.RouteDashboard)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Contains(t, body, "Total users")
	require.Contains(t, body, "Log out")
	require.Contains(t, body, "joined")
	require.Equal(t, "no-store", resp.Header.Get("Cache-Control"))
	require.Empty(t, f.events)
}

func TestLogin_RejectedCredentials(t *testing.T) {
	f := setupTestFixture(t)

	resp := f.post(t, server.RouteAuthLogin, url.Values{"email": {adminEmail}, "password": {"wrong"}})
	require.Equal(t, http.StatusSeeOther, resp.StatusCode)
	loc, err := url.Parse(resp.Header.Get("Location"))
	require.NoError(t, err)
	require.Equal(t, "/login", loc.Path)
	require.Equal(t, "Invalid credentials", loc.Query().Get("error"))
	require.Equal(t, adminEmail, loc.Query().Get("email"))

	_, body := f.get(t, loc.RequestURI())
	require.Contains(t, body, "Invalid credentials")
	require.Empty(t, f.events)
}

func TestLogin_ValidationBlocksRequest(t *testing.T) {
	f := setupTestFixture(t)

	resp := f.post(t, server.RouteAuthLogin, url.Values{"email": {"not-an-email"}, "password": {"x"}})
	loc, err := url.Parse(resp.Header.Get("Location"))
	require.NoError(t, err)
	require.Equal(t, "Please enter a valid email address", loc.Query().Get("error"))

	resp = f.post(t, server.RouteAuthLogin, url.Values{"email": {adminEmail}})
	loc, err = url.Parse(resp.Header.Get("Location"))
	require.NoError(t, err)
	require.Equal(t, "Please enter your password", loc.Query().Get("error"))
}

func TestRoleGate_NonAdminIsLoggedOut(t *testing.T) {
	f := setupTestFixture(t)

	requireRedirect(t, f.login(t, userEmail), "/dashboard")

	resp, _ := f.get(t, server.RouteDashboard)
	requireRedirect(t, resp, "/login?error=admin_required")

	_, body := f.get(t, "/login?error=admin_required")
	require.Contains(t, body, "Admin access required")

	// The session was cleared, so there is nothing left to verify.
	resp, _ = f.get(t, server.RouteUsers)
	requireRedirect(t, resp, "/login")
}

func TestBackendRejection_RedirectsToLogin(t *testing.T) {
	f := setupTestFixture(t)
	requireRedirect(t, f.login(t, adminEmail), "/dashboard")

	require.NoError(t, f.backendRepo.Delete(f.backendUser(t, adminEmail).ID))

	resp, _ := f.get(t, server.RouteUsers)
	requireRedirect(t, resp, "/login")
	require.Len(t, f.events, 1)
	require.Equal(t, apiclient.ReasonUnauthenticated, f.events[0].Reason)
	require.Equal(t, "/api/auth/me", f.events[0].Path)
}

func TestLogout(t *testing.T) {
	f := setupTestFixture(t)
	requireRedirect(t, f.login(t, adminEmail), "/dashboard")

	resp, _ := f.get(t, server.RouteAuthLogout)
	requireRedirect(t, resp, "/login")

	resp, _ = f.get(t, server.RouteDashboard)
	requireRedirect(t, resp, "/login")

	// Logging out twice is harmless.
	resp, _ = f.get(t, server.RouteAuthLogout)
	requireRedirect(t, resp, "/login")
}

func TestUsers_ListAndModerate(t *testing.T) {
	f := setupTestFixture(t)
	requireRedirect(t, f.login(t, adminEmail), "/dashboard")

	resp, body := f.get(t, server.RouteUsers+"?status=active")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Contains(t, body, userEmail)
	require.NotContains(t, body, "ana.reyes@example.com")

	maria := f.backendUser(t, userEmail)
	resp = f.post(t, "/users/"+maria.ID+"/deactivate", url.Values{
		"deactivation_type": {"temporary"},
		"duration":          {"1week"},
		"reason":            {"spam"},
	})
	require.Equal(t, http.StatusSeeOther, resp.StatusCode)
	require.True(t, strings.HasPrefix(resp.Header.Get("Location"), "/users?notice="))
	maria = f.backendUser(t, userEmail)
	require.Equal(t, users.StatusInactive, maria.Status)
	require.Equal(t, "spam", maria.DeactivationReason)

	f.post(t, "/users/"+maria.ID+"/activate", nil)
	require.Equal(t, users.StatusActive, f.backendUser(t, userEmail).Status)

	f.post(t, "/users/"+maria.ID+"/role", url.Values{"role": {"admin"}})
	require.Equal(t, sessions.RoleAdmin, f.backendUser(t, userEmail).Role)

	resp = f.post(t, "/users/"+maria.ID+"/role", url.Values{"role": {"owner"}})
	loc, err := url.Parse(resp.Header.Get("Location"))
	require.NoError(t, err)
	require.Equal(t, "/users", loc.Path)
	require.Equal(t, "Role must be either 'admin' or 'user'", loc.Query().Get("error"))

	f.post(t, "/users/"+maria.ID+"/delete", nil)
	_, err = f.backendRepo.GetByEmail(userEmail)
	require.Error(t, err)
}

func TestUsers_StatsFailureShowsBanner(t *testing.T) {
	f := setupTestFixture(t)
	requireRedirect(t, f.login(t, adminEmail), "/dashboard")
	f.failures["/api/users/stats/count"] = http.StatusInternalServerError

	resp, body := f.get(t, server.RouteUsers)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Contains(t, body, userEmail)
	require.Contains(t, body, "Backend unavailable")
	require.Empty(t, f.events)
}

func TestUsers_NegativePagingFallsBack(t *testing.T) {
	f := setupTestFixture(t)
	requireRedirect(t, f.login(t, adminEmail), "/dashboard")

	resp, body := f.get(t, server.RouteUsers+"?skip=-5&limit=-1")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Contains(t, body, userEmail)
	require.NotContains(t, body, "skip=-")
	require.NotContains(t, body, "limit=-")
}

func TestUsers_BulkStatus(t *testing.T) {
	f := setupTestFixture(t)
	requireRedirect(t, f.login(t, adminEmail), "/dashboard")

	juan := f.backendUser(t, "juan.delacruz@example.com")
	lee := f.backendUser(t, "lee.tan@example.com")
	resp := f.post(t, server.RouteUsersBulkStatus, url.Values{
		"ids":    {juan.ID, lee.ID},
		"status": {"pending"},
	})
	loc, err := url.Parse(resp.Header.Get("Location"))
	require.NoError(t, err)
	require.NotEmpty(t, loc.Query().Get("notice"))
	require.Equal(t, users.StatusPending, f.backendUser(t, juan.Email).Status)
	require.Equal(t, users.StatusPending, f.backendUser(t, lee.Email).Status)

	resp = f.post(t, server.RouteUsersBulkStatus, url.Values{"status": {"active"}})
	loc, err = url.Parse(resp.Header.Get("Location"))
	require.NoError(t, err)
	require.Equal(t, "Select at least one user", loc.Query().Get("error"))

	resp = f.post(t, server.RouteUsersAutoReactivate, nil)
	require.Equal(t, http.StatusSeeOther, resp.StatusCode)
}

func TestProfile_Update(t *testing.T) {
	f := setupTestFixture(t)
	requireRedirect(t, f.login(t, adminEmail), "/dashboard")

	resp := f.post(t, server.RouteProfile, url.Values{"first_name": {"Ada"}, "gender": {"Female"}})
	requireRedirect(t, resp, "/profile?notice=Profile+updated")
	admin := f.backendUser(t, adminEmail)
	require.Equal(t, "Ada", admin.FirstName)
	require.Equal(t, "Female", admin.Gender)

	_, body := f.get(t, server.RouteProfile)
	require.Contains(t, body, `value="Ada"`)
	require.Contains(t, body, adminEmail)
}

func TestChart_Passthrough(t *testing.T) {
	f := setupTestFixture(t)

	resp, body := f.get(t, "/api/dashboard/gender-demographics")
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	require.JSONEq(t, `{"detail":"Unauthorized","redirect":"/login"}`, body)

	requireRedirect(t, f.login(t, adminEmail), "/dashboard")

	resp, body = f.get(t, "/api/dashboard/gender-demographics")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Contains(t, body, "gender_distribution")

	resp, body = f.get(t, "/api/dashboard/user-growth?timeframe=yearly")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Contains(t, body, "growth_data")

	resp, _ = f.get(t, "/api/dashboard/revenue")
	require.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp, _ = f.get(t, "/api/dashboard/user-growth?timeframe=hourly")
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestChart_Cors(t *testing.T) {
	f := setupTestFixture(t)

	req, err := http.NewRequest(http.MethodOptions, f.dashboard.URL+"/api/dashboard/user-growth", nil)
	require.NoError(t, err)
	req.Header.Set("Origin", "https://charts.example.com")
	resp, err := f.browser.Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusNoContent, resp.StatusCode)
	require.Equal(t, "https://charts.example.com", resp.Header.Get("Access-Control-Allow-Origin"))
	require.Equal(t, "true", resp.Header.Get("Access-Control-Allow-Credentials"))

	req.Header.Set("Origin", "https://evil.example.com")
	resp, err = f.browser.Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	require.Empty(t, resp.Header.Get("Access-Control-Allow-Origin"))
}

func TestHTMXRedirects(t *testing.T) {
	f := setupTestFixture(t)

	req, err := http.NewRequest(http.MethodGet, f.dashboard.URL+server.RouteDashboard, nil)
	require.NoError(t, err)
	req.Header.Set("HX-Request", "true")
	resp, err := f.browser.Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusNoContent, resp.StatusCode)
	require.Equal(t, "/login", resp.Header.Get("HX-Redirect"))
}

func TestHealth(t *testing.T) {
	f := setupTestFixture(t)
	resp, body := f.get(t, server.RouteHealth)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.JSONEq(t, `{"status":"ok"}`, body)
}

func TestPurgeExpired(t *testing.T) {
	f := setupTestFixture(t)
	requireRedirect(t, f.login(t, adminEmail), "/dashboard")

	require.NoError(t, f.server.PurgeExpired(time.Now().Add(-time.Hour)))
	resp, _ := f.get(t, server.RouteDashboard)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	require.NoError(t, f.server.PurgeExpired(time.Now().Add(time.Hour)))
	resp, _ = f.get(t, server.RouteDashboard)
	requireRedirect(t, resp, "/login")
}

func TestNew_Validation(t *testing.T) {
	client, err := apiclient.New("http://localhost:8000", sessions.NewMemoryStore())
	require.NoError(t, err)

	_, err = server.New(config.New(), nil, client)
	require.Error(t, err)
	_, err = server.New(config.New(), sessions.NewInMemoryRepo(), nil)
	require.Error(t, err)

	t.Setenv("GUARD_POLICY", "everyone")
	_, err = server.New(config.New(), sessions.NewInMemoryRepo(), client)
	require.Error(t, err)
}
