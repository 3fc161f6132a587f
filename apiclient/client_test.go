package apiclient_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/articulink/admin-dashboard/apiclient"
	apperrors "github.com/articulink/admin-dashboard/internal/errors"
	"github.com/articulink/admin-dashboard/sessions"
	"github.com/stretchr/testify/require"
)

type testFixture struct {
	server *httptest.Server
	store  *sessions.KVStore
	client *apiclient.Client
	events []apiclient.Invalidation
}

func setupTestFixture(t *testing.T, handler http.HandlerFunc) *testFixture {
	t.Helper()
	f := &testFixture{
		server: httptest.NewServer(handler),
		store:  sessions.NewMemoryStore(),
	}
	t.Cleanup(f.server.Close)

	c, err := apiclient.New(f.server.URL, f.store)
	require.NoError(t, err)
	f.client = c
	c.OnInvalidated(func(inv apiclient.Invalidation) {
		f.events = append(f.events, inv)
	})
	return f
}

func (f *testFixture) login(t *testing.T) {
	t.Helper()
	require.NoError(t, f.store.SetToken("T1"))
	require.NoError(t, f.store.SetRefreshToken("T2"))
	require.NoError(t, f.store.SetUser(sessions.UserProfile{ID: "1", Email: "a@b.com", Role: sessions.RoleAdmin}))
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func TestNew_Validation(t *testing.T) {
	_, err := apiclient.New("http://localhost:8000", nil)
	require.Error(t, err)

	_, err = apiclient.New("ftp://localhost", sessions.NewMemoryStore())
	require.Error(t, err)

	_, err = apiclient.New("://bad", sessions.NewMemoryStore())
	require.Error(t, err)
}

func TestRequest_AttachesBearerToken(t *testing.T) {
	var gotAuth []string
	f := setupTestFixture(t, func(w http.ResponseWriter, r *http.Request) {
		gotAuth = append(gotAuth, r.Header.Get("Authorization"))
		writeJSON(w, http.StatusOK, map[string]any{"id": "1", "email": "a@b.com", "role": "admin"})
	})

	_, err := f.client.Auth().Me(context.Background())
	require.NoError(t, err)

	f.login(t)
	for i := 0; i < 3; i++ {
		_, err = f.client.Auth().Me(context.Background())
		require.NoError(t, err)
	}

	require.NoError(t, f.store.SetToken("T9"))
	_, err = f.client.Auth().Me(context.Background())
	require.NoError(t, err)

	require.Equal(t, []string{"", "Bearer T1", "Bearer T1", "Bearer T1", "Bearer T9"}, gotAuth)
}

func TestResponse_401ClearsSession(t *testing.T) {
	f := setupTestFixture(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"detail": "Invalid or expired token"})
	})
	f.login(t)

	_, err := f.client.Users().Stats(context.Background())

	inv, ok := apiclient.AsInvalidated(err)
	require.True(t, ok)
	require.Equal(t, apiclient.ReasonUnauthenticated, inv.Reason)
	require.Equal(t, "/login", inv.LoginURL())
	require.True(t, apperrors.Is(err, apperrors.ErrSessionInvalid))

	_, ok = f.store.Token()
	require.False(t, ok)
	_, ok = f.store.User()
	require.False(t, ok)
	_, ok = f.store.RefreshToken()
	require.False(t, ok)

	require.Len(t, f.events, 1)
	require.Equal(t, http.StatusUnauthorized, f.events[0].Status)
	require.Equal(t, "/api/users/stats/count", f.events[0].Path)
}

func TestResponse_403ClearsSessionWithAdminMarker(t *testing.T) {
	f := setupTestFixture(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusForbidden, map[string]string{"detail": "Admin access required"})
	})
	f.login(t)

	_, err := f.client.Users().List(context.Background(), apiclient.UserFilter{})

	inv, ok := apiclient.AsInvalidated(err)
	require.True(t, ok)
	require.Equal(t, apiclient.ReasonAdminRequired, inv.Reason)
	require.Equal(t, "/login?error=admin_required", inv.LoginURL())
	require.True(t, apperrors.Is(err, apperrors.ErrAdminRequired))
	require.False(t, sessions.Snapshot(f.store).Authenticated())
	require.Len(t, f.events, 1)
}

func TestResponse_401WithoutSession(t *testing.T) {
	f := setupTestFixture(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	})

	_, err := f.client.Auth().Me(context.Background())
	_, ok := apiclient.AsInvalidated(err)
	require.True(t, ok)
	require.Len(t, f.events, 1)
}

func TestResponse_SupersededTokenKeepsNewSession(t *testing.T) {
	var f *testFixture
	f = setupTestFixture(t, func(w http.ResponseWriter, r *http.Request) {
		// The user signs in again while the old request is still in flight.
		_ = f.store.SetToken("NEW")
		writeJSON(w, http.StatusUnauthorized, map[string]string{"detail": "Invalid or expired token"})
	})
	f.login(t)

	_, err := f.client.Auth().Me(context.Background())

	var apiErr *apiclient.APIError
	require.ErrorAs(t, err, &apiErr)
	require.Equal(t, http.StatusUnauthorized, apiErr.Status)
	_, ok := apiclient.AsInvalidated(err)
	require.False(t, ok)

	tok, ok := f.store.Token()
	require.True(t, ok)
	require.Equal(t, "NEW", tok)
	require.Empty(t, f.events)
}

func TestResponse_AnonymousRejectionKeepsNewSession(t *testing.T) {
	var f *testFixture
	f = setupTestFixture(t, func(w http.ResponseWriter, r *http.Request) {
		// A login completes while the tokenless request is still in flight.
		_ = f.store.SetToken("NEW")
		writeJSON(w, http.StatusUnauthorized, map[string]string{"detail": "Not authenticated"})
	})

	_, err := f.client.Auth().Me(context.Background())
	_, ok := apiclient.AsInvalidated(err)
	require.False(t, ok)

	tok, ok := f.store.Token()
	require.True(t, ok)
	require.Equal(t, "NEW", tok)
	require.Empty(t, f.events)
}

func TestResponse_OtherStatusesPassThrough(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		message string
	}{
		{"string detail", http.StatusBadRequest, `{"detail":"Status must be either 'active' or 'inactive'"}`, "Status must be either 'active' or 'inactive'"},
		{"validation detail", http.StatusUnprocessableEntity, `{"detail":[{"loc":["query","role"],"msg":"field required"},{"msg":"value is not a valid email address"}]}`, "field required; value is not a valid email address"},
		{"no detail", http.StatusInternalServerError, `{"error":"boom"}`, "An error occurred"},
		{"not json", http.StatusBadGateway, `<html>bad gateway</html>`, "An error occurred"},
		{"not found", http.StatusNotFound, `{"detail":"User not found"}`, "User not found"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := setupTestFixture(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = io.WriteString(w, tt.body)
			})
			f.login(t)

			_, err := f.client.Users().Get(context.Background(), "42")

			var apiErr *apiclient.APIError
			require.ErrorAs(t, err, &apiErr)
			require.Equal(t, tt.status, apiErr.Status)
			require.Equal(t, tt.message, apiclient.Message(err))
			require.True(t, sessions.Snapshot(f.store).Authenticated(), "session survives non auth errors")
			require.Empty(t, f.events)
		})
	}
}

func TestNetworkError(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	url := server.URL
	server.Close()

	store := sessions.NewMemoryStore()
	require.NoError(t, store.SetToken("T1"))
	c, err := apiclient.New(url, store)
	require.NoError(t, err)

	_, err = c.Auth().Me(context.Background())
	require.True(t, apperrors.Is(err, apperrors.ErrNetwork))
	require.Equal(t, "Network error. Please check your connection.", apiclient.Message(err))

	tok, ok := store.Token()
	require.True(t, ok)
	require.Equal(t, "T1", tok)
}

func TestCancelledContext(t *testing.T) {
	f := setupTestFixture(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{})
	})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := f.client.Auth().Me(ctx)
	require.ErrorIs(t, err, context.Canceled)
}

func TestWithStore_SharesListeners(t *testing.T) {
	f := setupTestFixture(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") == "Bearer other" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"id": "1"})
	})
	f.login(t)

	other := sessions.NewMemoryStore()
	require.NoError(t, other.SetToken("other"))
	bound := f.client.WithStore(other)
	require.Same(t, other, bound.Store())

	_, err := bound.Auth().Me(context.Background())
	_, ok := apiclient.AsInvalidated(err)
	require.True(t, ok)
	require.Len(t, f.events, 1)

	_, ok = other.Token()
	require.False(t, ok, "bound store is cleared")
	require.True(t, sessions.Snapshot(f.store).Authenticated(), "parent store is untouched")
}

func TestOnInvalidated_Unsubscribe(t *testing.T) {
	f := setupTestFixture(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	})
	calls := 0
	unsubscribe := f.client.OnInvalidated(func(apiclient.Invalidation) { calls++ })

	_, _ = f.client.Auth().Me(context.Background())
	unsubscribe()
	_, _ = f.client.Auth().Me(context.Background())

	require.Equal(t, 1, calls)
	require.Len(t, f.events, 2)
}

func TestMessage(t *testing.T) {
	require.Equal(t, "", apiclient.Message(nil))
	require.Equal(t, "boom", apiclient.Message(apperrors.New("boom")))
	require.True(t, strings.HasPrefix(apiclient.LoginURL(apiclient.ReasonAdminRequired), "/login?"))
}
