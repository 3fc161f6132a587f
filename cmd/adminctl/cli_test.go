package main

import (
	"bytes"
	"context"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/articulink/admin-dashboard/internal/config"
	apperrors "github.com/articulink/admin-dashboard/internal/errors"
	"github.com/articulink/admin-dashboard/mockapi"
	"github.com/articulink/admin-dashboard/token"
	fakeuserrepo "github.com/articulink/admin-dashboard/users/repofake"
	"github.com/stretchr/testify/require"
)

const (
	adminEmail = "admin@articulink.dev"
	password   = "admin123"
)

type testFixture struct {
	backend     *httptest.Server
	sessionFile string
}

func setupTestFixture(t *testing.T) *testFixture {
	t.Helper()
	t.Setenv("GUARD_POLICY", "")
	repo := fakeuserrepo.NewFakeUserRepo()
	require.NoError(t, mockapi.Seed(repo, adminEmail, password, true))
	issuer, err := token.NewIssuer(token.NewHMACSigner("test-secret"))
	require.NoError(t, err)
	backend := httptest.NewServer(mockapi.New(repo, issuer))
	t.Cleanup(backend.Close)
	return &testFixture{backend: backend, sessionFile: filepath.Join(t.TempDir(), "session.json")}
}

// run executes one adminctl invocation against the fixture backend.
func (f *testFixture) run(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	args = append([]string{"-api", f.backend.URL, "-session-file", f.sessionFile}, args...)
	err := run(context.Background(), config.New(), args, strings.NewReader(stdin), &out)
	return out.String(), err
}

func TestLoginWhoamiLogout(t *testing.T) {
	f := setupTestFixture(t)

	out, err := f.run(t, "", "whoami")
	require.NoError(t, err)
	require.Contains(t, out, "Not logged in")

	out, err = f.run(t, password+"\n", "login", "-email", adminEmail)
	require.NoError(t, err)
	require.Contains(t, out, "Password: ")
	require.Contains(t, out, "Logged in as Admin (admin)")

	// The session survives into the next invocation.
	out, err = f.run(t, "", "whoami")
	require.NoError(t, err)
	require.Contains(t, out, "Token for "+adminEmail+" (admin), expires")
	require.Contains(t, out, "Session AUTHORIZED under role policy")

	out, err = f.run(t, "", "stats")
	require.NoError(t, err)
	require.Contains(t, out, "Total users: 7")

	out, err = f.run(t, "", "users", "-status", "pending")
	require.NoError(t, err)
	require.Contains(t, out, "ana.reyes@example.com")
	require.NotContains(t, out, "maria.santos@example.com")

	out, err = f.run(t, "", "logout")
	require.NoError(t, err)
	require.Contains(t, out, "Logged out")

	out, err = f.run(t, "", "whoami")
	require.NoError(t, err)
	require.Contains(t, out, "Not logged in")
}

func TestLogin_Rejected(t *testing.T) {
	f := setupTestFixture(t)

	_, err := f.run(t, "", "login", "-email", adminEmail, "-password", "wrong")
	require.EqualError(t, err, "Invalid credentials")

	_, err = f.run(t, "", "login", "-email", "nope", "-password", "x")
	require.EqualError(t, err, "Please enter a valid email address")
}

func TestNonAdmin_IsRefused(t *testing.T) {
	f := setupTestFixture(t)

	out, err := f.run(t, "", "login", "-email", "maria.santos@example.com", "-password", password)
	require.NoError(t, err)
	require.Contains(t, out, "not an admin")

	out, err = f.run(t, "", "stats")
	require.EqualError(t, err, "Admin access required")
	require.Contains(t, out, "Session ended by the backend (admin_required)")

	out, err = f.run(t, "", "whoami")
	require.NoError(t, err)
	require.Contains(t, out, "Not logged in")
}

func TestUnknownCommand(t *testing.T) {
	f := setupTestFixture(t)

	_, err := f.run(t, "", "frobnicate")
	require.ErrorIs(t, err, apperrors.ErrInvalidRequest)

	_, err = f.run(t, "")
	require.ErrorIs(t, err, apperrors.ErrInvalidRequest)
}
