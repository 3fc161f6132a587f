package config

import (
	"strings"
	"time"
)

const (
	guardPolicyVar   = "GUARD_POLICY"
	sessionMaxAgeVar = "SESSION_MAX_AGE_SEC"
)

type SecurityConfig interface {
	GetGuardPolicy() string
	GetMaxSessionAge() time.Duration
}

type Security struct{}

var _ SecurityConfig = Security{}

// GetGuardPolicy selects how protected pages are gated: "presence", "verified" or "role".
func (Security) GetGuardPolicy() string {
	return strings.ToLower(GetEnv(guardPolicyVar, "role"))
}

// GetMaxSessionAge bounds the lifetime of the browser session cookie.
func (Security) GetMaxSessionAge() time.Duration {
	return time.Duration(GetEnvInt(sessionMaxAgeVar, 8*60*60)) * time.Second
}
