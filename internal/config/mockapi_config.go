package config

import (
	"strings"
	"time"
)

const (
	mockPortVar          = "MOCKAPI_PORT"
	secretKeyVar         = "SECRET_KEY"
	accessExpiryMinVar   = "ACCESS_TOKEN_EXPIRE_MINUTES"
	refreshExpiryDaysVar = "REFRESH_TOKEN_EXPIRE_DAYS"
	adminEmailVar        = "MOCKAPI_ADMIN_EMAIL"
	adminPasswordVar     = "MOCKAPI_ADMIN_PASSWORD"
	demoDataVar          = "MOCKAPI_DEMO_DATA"
	reactivateMinVar     = "MOCKAPI_REACTIVATE_EVERY_MINUTES"
)

// MockAPIConfig configures the development backend.
type MockAPIConfig interface {
	EnvConfig
	GetMockPort() string
	// GetSecretKey returns the HS256 secret, empty for a random one per run.
	GetSecretKey() string
	GetAccessTokenExpiry() time.Duration
	GetRefreshTokenExpiry() time.Duration
	GetAdminEmail() string
	GetAdminPassword() string
	GetDemoData() bool
	GetReactivationInterval() time.Duration
}

type MockAPI struct {
	EnvVars
}

var _ MockAPIConfig = MockAPI{}

// NewMockAPI is New for the development backend.
func NewMockAPI() MockAPIConfig {
	dotEnvOnce.Do(loadDotEnv)
	return MockAPI{}
}

func (MockAPI) GetMockPort() string {
	port := GetEnv(mockPortVar, "8000")
	if !strings.HasPrefix(port, ":") {
		port = ":" + port
	}
	return port
}

func (MockAPI) GetSecretKey() string {
	return GetEnv(secretKeyVar, "")
}

func (MockAPI) GetAccessTokenExpiry() time.Duration {
	return time.Duration(GetEnvInt(accessExpiryMinVar, 60)) * time.Minute
}

func (MockAPI) GetRefreshTokenExpiry() time.Duration {
	return time.Duration(GetEnvInt(refreshExpiryDaysVar, 7)) * 24 * time.Hour
}

func (MockAPI) GetAdminEmail() string {
	return GetEnv(adminEmailVar, "admin@articulink.dev")
}

func (MockAPI) GetAdminPassword() string {
	return GetEnv(adminPasswordVar, "admin123")
}

func (MockAPI) GetDemoData() bool {
	switch strings.ToLower(GetEnv(demoDataVar, "true")) {
	case "0", "false", "no", "off":
		return false
	}
	return true
}

func (MockAPI) GetReactivationInterval() time.Duration {
	return time.Duration(GetEnvInt(reactivateMinVar, 60)) * time.Minute
}
