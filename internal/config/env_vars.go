package config

import (
	"fmt"
	"os"
)

const (
	portEnvVar  = "PORT"
	appNameVar  = "APP_NAME"
	databaseVar = "DATABASE_URL"
)

type EnvConfig interface {
	GetPort() string
	GetAppName() string
	GetDatabaseURL() string
	GetEnv() string
}

type EnvVars struct{}

var _ EnvConfig = EnvVars{}

func (EnvVars) GetPort() string {
	port := GetEnv(portEnvVar, "8080")
	if port[0] != ':' {
		port = fmt.Sprintf(":%s", port)
	}
	return port
}

func (EnvVars) GetAppName() string {
	return GetEnv(appNameVar, "Class Register Auth")
}

// GetDatabaseURL returns the PostgreSQL connection string. Empty means the
// server runs against the in-memory stores.
func (EnvVars) GetDatabaseURL() string {
	return GetEnv(databaseVar, "")
}

func (EnvVars) GetEnv() string {
	env := os.Getenv("ENV")
	if env == "" {
		return "DEV"
	}
	return env
}

func GetEnv(envVar, defaultValue string) string {
	value := os.Getenv(envVar)
	if value == "" {
		return defaultValue
	}
	return value
}
