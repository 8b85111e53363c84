package config

import (
	"os"
	"strconv"
	"time"

	"golang.org/x/crypto/bcrypt"
)

const (
	jwtSecretVar      = "JWT_SECRET"
	sessionTTLVar     = "SESSION_TTL_HOURS"
	bcryptCostVar     = "BCRYPT_COST"
	adminUsernameVar  = "ADMIN_USERNAME"
	adminPasswordVar  = "ADMIN_PASSWORD"
	admin2UsernameVar = "ADMIN2_USERNAME"
	admin2PasswordVar = "ADMIN2_PASSWORD"
	defaultTTLHours   = 24
)

// SystemAdmin is one environment-provisioned administrator credential pair.
type SystemAdmin struct {
	Username string
	Password string
}

type AuthConfig interface {
	// GetSigningSecret returns the HMAC signing secret. Empty means unset;
	// Validate treats that as fatal, there is no fallback.
	GetSigningSecret() string
	GetSessionTTL() time.Duration
	GetBcryptCost() int
	GetSystemAdmins() []SystemAdmin
}

type Auth struct{}

var _ AuthConfig = Auth{}

func (Auth) GetSigningSecret() string {
	return os.Getenv(jwtSecretVar)
}

func (Auth) GetSessionTTL() time.Duration {
	hours, err := strconv.Atoi(GetEnv(sessionTTLVar, strconv.Itoa(defaultTTLHours)))
	if err != nil || hours <= 0 {
		hours = defaultTTLHours
	}
	return time.Duration(hours) * time.Hour
}

func (Auth) GetBcryptCost() int {
	cost, err := strconv.Atoi(GetEnv(bcryptCostVar, strconv.Itoa(bcrypt.DefaultCost)))
	if err != nil {
		return bcrypt.DefaultCost
	}
	return cost
}

// GetSystemAdmins returns the fixed administrator set. Usernames default to
// the conventional slots; passwords are only ever read from the
// environment. A slot with a username but no password is surfaced by
// Validate as a startup error rather than silently skipped.
func (Auth) GetSystemAdmins() []SystemAdmin {
	slots := []struct {
		userVar, passVar, defaultUser string
	}{
		{adminUsernameVar, adminPasswordVar, "admin"},
		{admin2UsernameVar, admin2PasswordVar, "superadmin"},
	}

	admins := make([]SystemAdmin, 0, len(slots))
	for _, slot := range slots {
		username := GetEnv(slot.userVar, slot.defaultUser)
		password := os.Getenv(slot.passVar)
		if os.Getenv(slot.userVar) == "" && password == "" {
			continue // slot not provisioned at all
		}
		admins = append(admins, SystemAdmin{Username: username, Password: password})
	}
	return admins
}
