package auth

import (
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"

	"github.com/pkg/errors"
	"golang.org/x/crypto/bcrypt"
)

// Scheme selects the password verification strategy. The scheme is resolved
// by principal kind, never by branching on role strings in handlers, so the
// security-sensitive comparison lives in exactly one place.
type Scheme string

const (
	// SchemeAdminDigest is a plain SHA-256 digest comparison. No salt and
	// no cost factor; acceptable only because the system-admin set is
	// small, fixed at process start, and not writable via any endpoint.
	SchemeAdminDigest Scheme = "admin-digest"

	// SchemeUserAdaptive is a salted bcrypt comparison, used for all
	// persisted principals regardless of role.
	SchemeUserAdaptive Scheme = "user-adaptive"
)

// Verifier compares claimed passwords against stored hashes. It is pure:
// no side effects, and it never logs the plaintext or the hash.
type Verifier struct{}

// Verify reports whether claimed matches storedHash under the scheme. A
// mismatch is (false, nil); a malformed stored hash is an error, because it
// means data corruption rather than bad credentials.
func (Verifier) Verify(claimed, storedHash string, scheme Scheme) (bool, error) {
	switch scheme {
	case SchemeAdminDigest:
		if _, err := hex.DecodeString(storedHash); err != nil || len(storedHash) != sha256.Size*2 {
			return false, errors.New("malformed admin digest")
		}
		digest := DigestPassword(claimed)
		return subtle.ConstantTimeCompare([]byte(digest), []byte(storedHash)) == 1, nil
	case SchemeUserAdaptive:
		err := bcrypt.CompareHashAndPassword([]byte(storedHash), []byte(claimed))
		if err == nil {
			return true, nil
		}
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			return false, nil
		}
		return false, errors.Wrap(err, "malformed bcrypt hash")
	default:
		return false, errors.Errorf("unknown verification scheme %q", scheme)
	}
}

// DigestPassword computes the hex SHA-256 digest used for system-admin
// credentials.
func DigestPassword(password string) string {
	sum := sha256.Sum256([]byte(password))
	return hex.EncodeToString(sum[:])
}
