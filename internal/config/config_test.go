package config_test

import (
	"testing"
	"time"

	"github.com/articulink/admin-dashboard/internal/config"
	"github.com/stretchr/testify/require"
)

func TestDefaults(t *testing.T) {
	t.Setenv("PORT", "")
	t.Setenv("API_BASE_URL", "")
	t.Setenv("GUARD_POLICY", "")
	t.Setenv("HTTP_TIMEOUT_SEC", "")

	c := config.New()
	require.Equal(t, ":8080", c.GetPort())
	require.Equal(t, "http://localhost:8000", c.GetAPIBaseURL())
	require.Equal(t, "role", c.GetGuardPolicy())
	require.Equal(t, 15*time.Second, c.GetHTTPTimeout())
	require.Equal(t, "DEV", c.GetEnv())
}

func TestOverrides(t *testing.T) {
	t.Setenv("PORT", ":9090")
	t.Setenv("API_BASE_URL", "https://api.example.com/")
	t.Setenv("GUARD_POLICY", "Presence")
	t.Setenv("HTTP_TIMEOUT_SEC", "not-a-number")
	t.Setenv("SESSION_FILE", "/tmp/s.json")

	c := config.New()
	require.Equal(t, ":9090", c.GetPort())
	require.Equal(t, "https://api.example.com", c.GetAPIBaseURL())
	require.Equal(t, "presence", c.GetGuardPolicy())
	require.Equal(t, 15*time.Second, c.GetHTTPTimeout())
	require.Equal(t, "/tmp/s.json", c.GetSessionFile())
}

func TestAllowedOrigins(t *testing.T) {
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example.com, https://b.example.com,")

	origins := config.New().GetAllowedOrigins()
	require.True(t, origins.IsAllowedOrigin("https://a.example.com"))
	require.True(t, origins.IsAllowedOrigin("https://b.example.com"))
	require.False(t, origins.IsAllowedOrigin("https://c.example.com"))
	require.Len(t, origins, 2)
}

func TestMockAPIConfig(t *testing.T) {
	t.Setenv("MOCKAPI_PORT", "")
	t.Setenv("SECRET_KEY", "s3cret")
	t.Setenv("ACCESS_TOKEN_EXPIRE_MINUTES", "5")
	t.Setenv("MOCKAPI_DEMO_DATA", "off")

	c := config.NewMockAPI()
	require.Equal(t, ":8000", c.GetMockPort())
	require.Equal(t, "s3cret", c.GetSecretKey())
	require.Equal(t, 5*time.Minute, c.GetAccessTokenExpiry())
	require.Equal(t, 7*24*time.Hour, c.GetRefreshTokenExpiry())
	require.False(t, c.GetDemoData())
	require.Equal(t, "admin@articulink.dev", c.GetAdminEmail())
}
