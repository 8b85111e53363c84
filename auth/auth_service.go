package auth

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"

	"github.com/classregister/auth-server/auth/sessions"
	"github.com/classregister/auth-server/token"
	"github.com/classregister/auth-server/users"
)

// Repos holds all repository dependencies for the Service
type Repos struct {
	Users    users.Repo    // Persisted credential records
	Sessions sessions.Repo // Server-side session rows for persisted users
}

// LoginResult is returned on successful authentication.
type LoginResult struct {
	Token     string     `json:"token"`
	Principal *Principal `json:"principal"`
	ExpiresAt time.Time  `json:"expires_at"`
}

// Service implements login, logout, token authentication, and the
// authorization predicates guarding mutating endpoints.
type Service struct {
	repos      Repos
	registry   *SystemAdminRegistry
	issuer     *token.Issuer
	verifier   Verifier
	bcryptCost int
	nowTime    func() time.Time // nowTime function (injectable for testing)
}

// ServiceOption defines a function type to modify the Service instance.
type ServiceOption func(*Service)

// WithNowTime sets the now time function (primarily for testing)
func WithNowTime(nowFunc func() time.Time) ServiceOption {
	return func(s *Service) {
		s.nowTime = nowFunc
	}
}

// WithBcryptCost sets the cost factor used when writing new password hashes.
func WithBcryptCost(cost int) ServiceOption {
	return func(s *Service) {
		s.bcryptCost = cost
	}
}

// NewService initializes a new Service with required dependencies.
func NewService(repos Repos, registry *SystemAdminRegistry, issuer *token.Issuer, options ...ServiceOption) (*Service, error) {
	if repos.Users == nil {
		return nil, errors.New("[NewService] Users repo is required")
	}
	if repos.Sessions == nil {
		return nil, errors.New("[NewService] Sessions repo is required")
	}
	if registry == nil {
		return nil, errors.New("[NewService] system admin registry is required")
	}
	if issuer == nil {
		return nil, errors.New("[NewService] token issuer is required")
	}

	service := &Service{
		repos:    repos,
		registry: registry,
		issuer:   issuer,
		nowTime:  time.Now,
	}

	for _, opt := range options {
		opt(service)
	}

	return service, nil
}

// Login resolves the identifier, verifies the password under the scheme the
// principal kind selects, mints a token, and records a session for
// persisted users. An unknown identifier and a wrong password are
// deliberately indistinguishable to the caller.
func (s *Service) Login(ctx context.Context, identifier, password string) (*LoginResult, error) {
	res, err := s.resolve(ctx, identifier)
	if err != nil {
		if errors.Is(err, users.ErrNotFound) {
			return nil, ErrBadCredentials
		}
		return nil, err
	}

	ok, err := s.verifier.Verify(password, res.storedHash, res.scheme)
	if err != nil {
		return nil, StoreError(err)
	}
	if !ok {
		return nil, ErrBadCredentials
	}

	principal := res.principal
	signed, expiresAt, err := s.issuer.Issue(principal.ID, principal.Claims())
	if err != nil {
		return nil, StoreError(err)
	}

	// System-admin logins are stateless: a fixed admin set has no
	// revocation requirement, so no session row is written.
	if !principal.IsSystemAdmin {
		err := s.repos.Sessions.Create(ctx, sessions.Session{
			Token:       signed,
			PrincipalID: principal.ID,
			CreatedAt:   s.nowTime(),
			ExpiresAt:   expiresAt,
		})
		if err != nil {
			return nil, StoreError(err)
		}
	}

	return &LoginResult{Token: signed, Principal: principal, ExpiresAt: expiresAt}, nil
}

// Logout revokes the session behind a persisted-user token. It is
// idempotent, and a no-op for system-admin tokens, which have no
// server-side session to revoke.
func (s *Service) Logout(ctx context.Context, rawToken string) error {
	if claims, err := s.issuer.Verify(rawToken); err == nil && claims.SystemAdmin {
		return nil
	}
	if err := s.repos.Sessions.Delete(ctx, rawToken); err != nil {
		return StoreError(err)
	}
	return nil
}

// Authenticate verifies the token signature and embedded expiry, then
// confirms session liveness for persisted-user principals. System-admin
// tokens skip the liveness check; their liveness is their signature
// validity. Failure modes collapse so the caller learns nothing beyond
// invalid vs. expired-or-revoked.
func (s *Service) Authenticate(ctx context.Context, rawToken string) (*Principal, error) {
	if rawToken == "" {
		return nil, ErrNoToken
	}

	claims, err := s.issuer.Verify(rawToken)
	if err != nil {
		if errors.Is(err, token.ErrExpired) {
			return nil, ErrExpiredOrRevoked
		}
		return nil, ErrInvalidToken
	}

	principal := PrincipalFromClaims(claims)
	if !principal.IsSystemAdmin {
		if _, err := s.repos.Sessions.FindLive(ctx, rawToken); err != nil {
			if errors.Is(err, sessions.ErrNotFound) {
				return nil, ErrExpiredOrRevoked
			}
			return nil, StoreError(err)
		}
	}
	return principal, nil
}

// Authorize applies the role gate and the owner-or-admin gate, in that
// order. An empty role set skips the role gate; an empty resource
// identifier skips the ownership gate.
func (s *Service) Authorize(principal *Principal, requiredRoles []users.Role, resourceIdentifier string) error {
	if principal == nil {
		// Defensive: unreachable when Authenticate ran first, kept as an
		// explicit invariant check.
		return ErrUnauthorized
	}

	if len(requiredRoles) > 0 && !roleAllowed(principal.Role, requiredRoles) {
		return ErrForbidden
	}

	if resourceIdentifier != "" && !principal.CanActOn(resourceIdentifier) {
		return ErrForbidden
	}
	return nil
}

// roleAllowed checks role membership. Domain admins and system admins
// satisfy each other's gates; they are privilege-equivalent.
func roleAllowed(role users.Role, allowed []users.Role) bool {
	for _, a := range allowed {
		if role == a {
			return true
		}
		if role.IsElevated() && a.IsElevated() {
			return true
		}
	}
	return false
}

// ChangePassword lets a persisted principal rotate its own password after
// re-verifying the current one. System administrators are rejected:
// rotating the environment-provisioned credentials is explicitly
// unsupported.
func (s *Service) ChangePassword(ctx context.Context, principal *Principal, oldPassword, newPassword string) error {
	if principal == nil {
		return ErrUnauthorized
	}
	if principal.IsSystemAdmin {
		return Forbidden("system administrator passwords cannot be changed")
	}

	if err := users.ValidatePasswordStrength(newPassword); err != nil {
		return ValidationError(err.Error())
	}

	user, err := s.repos.Users.GetByIdentifier(ctx, principal.Identifier)
	if err != nil {
		if errors.Is(err, users.ErrNotFound) {
			return ErrBadCredentials
		}
		return StoreError(err)
	}

	ok, err := s.verifier.Verify(oldPassword, user.PasswordHash, SchemeUserAdaptive)
	if err != nil {
		return StoreError(err)
	}
	if !ok {
		return ErrBadCredentials
	}

	newHash, err := users.HashPassword(newPassword, s.bcryptCost)
	if err != nil {
		return StoreError(err)
	}
	if err := s.repos.Users.UpdatePassword(ctx, user.Identifier, newHash); err != nil {
		return StoreError(err)
	}
	return nil
}

// SweepExpiredSessions reclaims expired session rows once.
func (s *Service) SweepExpiredSessions(ctx context.Context) (int, error) {
	return s.repos.Sessions.SweepExpired(ctx)
}

// RunSweeper reclaims expired sessions on a fixed interval until the
// context is cancelled. Sweeping never contends with live authentication:
// FindLive filters by expiry itself, so the rows removed here are already
// unreachable.
func (s *Service) RunSweeper(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			count, err := s.SweepExpiredSessions(ctx)
			if err != nil {
				log.Error().Err(err).Msg("session sweep failed")
				continue
			}
			if count > 0 {
				log.Info().Int("deleted", count).Msg("swept expired sessions")
			}
		}
	}
}
