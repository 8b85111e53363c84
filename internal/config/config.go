package config

import (
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

type Config interface {
	EnvConfig
	AuthConfig
}

type mainConfig struct {
	EnvVars
	Auth
}

func New() Config {
	return mainConfig{}
}

// Validate checks the mandatory startup configuration. A missing signing
// secret or an admin account without a password is fatal in a production
// posture; there are deliberately no fallback defaults for either.
func Validate(c Config) error {
	if c.GetSigningSecret() == "" {
		return fmt.Errorf("%s must be set", jwtSecretVar)
	}

	admins := c.GetSystemAdmins()
	if len(admins) == 0 {
		return fmt.Errorf("at least one system administrator must be configured (%s/%s)", adminUsernameVar, adminPasswordVar)
	}
	seen := make(map[string]bool)
	for _, a := range admins {
		if a.Password == "" {
			return fmt.Errorf("no password configured for system administrator %q", a.Username)
		}
		if seen[a.Username] {
			return fmt.Errorf("duplicate system administrator username %q", a.Username)
		}
		seen[a.Username] = true
	}

	if cost := c.GetBcryptCost(); cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		return fmt.Errorf("bcrypt cost %d out of range [%d, %d]", cost, bcrypt.MinCost, bcrypt.MaxCost)
	}
	if c.GetSessionTTL() <= 0 {
		return fmt.Errorf("session TTL must be positive")
	}
	return nil
}
