package auth

import (
	"context"
	"fmt"

	"github.com/pkg/errors"

	"github.com/classregister/auth-server/users"
)

// AdminAccount is one environment-provisioned administrator credential
// pair, handed to the registry once at construction.
type AdminAccount struct {
	Username string
	Password string
}

type registryEntry struct {
	id       string
	username string
	digest   string
}

func (e registryEntry) principal() *Principal {
	return &Principal{
		ID:            e.id,
		Identifier:    e.username,
		Role:          users.RoleSystemAdmin,
		IsSystemAdmin: true,
	}
}

// SystemAdminRegistry holds the fixed system administrators. It is built
// once from process configuration, precomputes the password digests, and is
// immutable for the process lifetime.
type SystemAdminRegistry struct {
	entries map[string]registryEntry // keyed by username
}

// NewSystemAdminRegistry builds the registry from the configured accounts.
func NewSystemAdminRegistry(accounts []AdminAccount) (*SystemAdminRegistry, error) {
	entries := make(map[string]registryEntry, len(accounts))
	for i, account := range accounts {
		if account.Username == "" || account.Password == "" {
			return nil, errors.Errorf("system admin slot %d: username and password are required", i+1)
		}
		if _, exists := entries[account.Username]; exists {
			return nil, errors.Errorf("duplicate system admin username %q", account.Username)
		}
		entries[account.Username] = registryEntry{
			id:       fmt.Sprintf("system-admin-%d", i+1),
			username: account.Username,
			digest:   DigestPassword(account.Password),
		}
	}
	return &SystemAdminRegistry{entries: entries}, nil
}

// Lookup returns the principal for a registry username, or nil.
func (r *SystemAdminRegistry) Lookup(username string) *Principal {
	entry, ok := r.lookup(username)
	if !ok {
		return nil
	}
	return entry.principal()
}

// lookup returns the full entry so resolution gets the principal and its
// stored digest in one step.
func (r *SystemAdminRegistry) lookup(username string) (registryEntry, bool) {
	entry, ok := r.entries[username]
	return entry, ok
}

// resolved pairs a principal with the material needed to verify its
// credentials. The stored hash never travels further than the verifier.
type resolved struct {
	principal  *Principal
	storedHash string
	scheme     Scheme
}

// resolve determines which class of principal an identifier denotes. The
// registry is checked first and shadows the persisted store: system-admin
// identifiers are configuration-level and are never present in the store,
// so a persisted user sharing the name must not win. This ordering is
// load-bearing; changing it is a privilege-confusion bug.
func (s *Service) resolve(ctx context.Context, identifier string) (*resolved, error) {
	if entry, ok := s.registry.lookup(identifier); ok {
		return &resolved{
			principal:  entry.principal(),
			storedHash: entry.digest,
			scheme:     SchemeAdminDigest,
		}, nil
	}

	user, err := s.repos.Users.GetByIdentifier(ctx, identifier)
	if err != nil {
		if errors.Is(err, users.ErrNotFound) {
			return nil, users.ErrNotFound
		}
		return nil, StoreError(err)
	}

	principal, err := PrincipalFromUser(user)
	if err != nil {
		return nil, StoreError(err)
	}
	return &resolved{
		principal:  principal,
		storedHash: user.PasswordHash,
		scheme:     SchemeUserAdaptive,
	}, nil
}
