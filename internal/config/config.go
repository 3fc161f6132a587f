package config

import (
	"sync"
	"time"

	"github.com/joho/godotenv"
)

type Config interface {
	EnvConfig
	CorsConfig
	SecurityConfig
	SessionConfig
}

type EnvConfig interface {
	GetPort() string
	GetAppName() string
	GetEnv() string
	GetAPIBaseURL() string
	GetHTTPTimeout() time.Duration
}

type CorsConfig interface {
	GetAllowedOrigins() AllowedOrigins
	GetAllowedMethods() string
	GetAllowedHeaders() string
}

type mainConfig struct {
	EnvVars
	Cors
	Security
	Sessions
}

var dotEnvOnce sync.Once

// New returns the environment backed configuration. A .env file in the working
// directory is loaded first if present; variables already set in the process
// environment win.
func New() Config {
	dotEnvOnce.Do(loadDotEnv)
	return mainConfig{}
}

func loadDotEnv() {
	_ = godotenv.Load()
}
