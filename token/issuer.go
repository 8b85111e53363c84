package token

import (
	"errors"
	"time"

	jwtlib "github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/classregister/auth-server/users"
)

var (
	// ErrInvalid covers any signature, format, or claims failure.
	ErrInvalid = errors.New("invalid token")
	// ErrExpired means the token parsed and verified but its embedded
	// expiry has passed. The guard chain collapses this with a revoked
	// session into one caller-visible condition.
	ErrExpired = errors.New("token expired")
)

// Claims is the signed projection of a principal carried inside a bearer
// token. It never includes the password hash. Expiry is embedded so that
// verification is self-contained and needs no store round trip. The
// principal id travels in the registered Subject claim; TeacherSubject is
// the taught-subject attribute and must not shadow it.
type Claims struct {
	Identifier     string     `json:"identifier"`
	Role           users.Role `json:"role"`
	SystemAdmin    bool       `json:"is_system_admin,omitempty"`
	CourseNumber   *string    `json:"course_number,omitempty"`
	TeacherID      *string    `json:"teacher_id,omitempty"`
	TeacherSubject *string    `json:"subject,omitempty"`
	AverageGrade   *float64   `json:"average_grade,omitempty"`

	jwtlib.RegisteredClaims
}

// Issuer mints and verifies signed bearer tokens with a fixed TTL.
type Issuer struct {
	signer  Signer
	ttl     time.Duration
	nowTime func() time.Time // injectable for testing
}

// IssuerOption defines a function type to modify the Issuer instance.
type IssuerOption func(*Issuer)

// WithNowTime sets the now time function (primarily for testing)
func WithNowTime(nowFunc func() time.Time) IssuerOption {
	return func(i *Issuer) {
		i.nowTime = nowFunc
	}
}

// NewIssuer creates an Issuer signing with the given signer and embedding
// expiries ttl from issuance.
func NewIssuer(signer Signer, ttl time.Duration, options ...IssuerOption) *Issuer {
	issuer := &Issuer{
		signer:  signer,
		ttl:     ttl,
		nowTime: time.Now,
	}
	for _, opt := range options {
		opt(issuer)
	}
	return issuer
}

// TTL returns the configured token lifetime.
func (i *Issuer) TTL() time.Duration {
	return i.ttl
}

// Issue signs the claims, stamping subject, issue time, expiry, and a
// unique token id. The expiry it stamped is returned alongside the token so
// session rows can mirror it exactly.
func (i *Issuer) Issue(principalID string, claims Claims) (string, time.Time, error) {
	now := i.nowTime()
	expiresAt := now.Add(i.ttl)

	claims.RegisteredClaims = jwtlib.RegisteredClaims{
		Subject:   principalID,
		IssuedAt:  jwtlib.NewNumericDate(now),
		ExpiresAt: jwtlib.NewNumericDate(expiresAt),
		ID:        uuid.New().String(),
	}

	signed, err := i.signer.Sign(claims)
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, expiresAt, nil
}

// Verify parses and validates a raw token. It fails closed: any signature
// mismatch or malformed payload yields ErrInvalid, a past expiry yields
// ErrExpired, and nothing further is distinguished.
func (i *Issuer) Verify(raw string) (*Claims, error) {
	claims := &Claims{}
	parsed, err := jwtlib.ParseWithClaims(raw, claims, i.signer.GetVerificationKey,
		jwtlib.WithValidMethods([]string{i.signer.GetSigningMethod().Alg()}),
		jwtlib.WithTimeFunc(i.nowTime),
	)
	if err != nil {
		if errors.Is(err, jwtlib.ErrTokenExpired) {
			return nil, ErrExpired
		}
		return nil, ErrInvalid
	}
	if !parsed.Valid {
		return nil, ErrInvalid
	}
	return claims, nil
}
