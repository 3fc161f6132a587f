package config

import (
	"os"
	"path/filepath"
)

const (
	sessionDriverVar = "SESSION_DRIVER"
	sessionDSNVar    = "SESSION_DSN"
	sessionFileVar   = "SESSION_FILE"
)

type SessionConfig interface {
	GetSessionDriver() string
	GetSessionDSN() string
	GetSessionFile() string
}

type Sessions struct{}

var _ SessionConfig = Sessions{}

// GetSessionDriver returns "memory", "sqlite3" or "postgres".
func (Sessions) GetSessionDriver() string {
	return GetEnv(sessionDriverVar, "sqlite3")
}

func (Sessions) GetSessionDSN() string {
	return GetEnv(sessionDSNVar, "./data/sessions.db")
}

// GetSessionFile is the durable session file used by the command line client.
func (Sessions) GetSessionFile() string {
	if f := os.Getenv(sessionFileVar); f != "" {
		return f
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", ".articulink", "session.json")
	}
	return filepath.Join(home, ".articulink", "session.json")
}
