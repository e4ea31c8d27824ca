package access

import (
	"errors"
	"fmt"
	"net/http"
	"slices"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrNoToken      = errors.New("no bearer token")
	ErrInvalidToken = errors.New("invalid token")
)

// Claims is what the identity provider puts in a session token. Providers
// disagree on the role claim, so both a list and a single value are read.
type Claims struct {
	Email string   `json:"email,omitempty"`
	Roles []string `json:"roles,omitempty"`
	Role  string   `json:"role,omitempty"`
	jwt.RegisteredClaims
}

// Authenticator verifies HS256 bearer tokens signed with a shared secret.
type Authenticator struct {
	secret    []byte
	issuer    string
	adminRole string
	now       func() time.Time
}

type AuthOption func(*Authenticator)

// WithIssuer rejects tokens whose iss claim differs from issuer.
func WithIssuer(issuer string) AuthOption {
	return func(a *Authenticator) { a.issuer = issuer }
}

// WithAdminRole changes the role that grants ManageCatalog.
func WithAdminRole(role string) AuthOption {
	return func(a *Authenticator) {
		if role != "" {
			a.adminRole = role
		}
	}
}

func NewAuthenticator(secret string, opts ...AuthOption) *Authenticator {
	a := &Authenticator{
		secret:    []byte(secret),
		adminRole: DefaultAdminRole,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Authenticate extracts and verifies the bearer token of r.
func (a *Authenticator) Authenticate(r *http.Request) (*Identity, error) {
	header := r.Header.Get("Authorization")
	raw, ok := strings.CutPrefix(header, "Bearer ")
	if !ok || strings.TrimSpace(raw) == "" {
		return nil, ErrNoToken
	}
	return a.Verify(strings.TrimSpace(raw))
}

// Verify parses a signed token into an identity.
func (a *Authenticator) Verify(raw string) (*Identity, error) {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(a.now),
	}
	if a.issuer != "" {
		opts = append(opts, jwt.WithIssuer(a.issuer))
	}

	claims := &Claims{}
	token, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (interface{}, error) {
		return a.secret, nil
	}, opts...)
	if err != nil || !token.Valid {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if claims.Subject == "" {
		return nil, fmt.Errorf("%w: missing subject", ErrInvalidToken)
	}

	roles := claims.Roles
	if claims.Role != "" && !slices.Contains(roles, claims.Role) {
		roles = append(roles, claims.Role)
	}
	if roles == nil {
		roles = []string{}
	}
	return &Identity{
		Subject:   claims.Subject,
		Email:     claims.Email,
		Roles:     roles,
		adminRole: a.adminRole,
	}, nil
}

// Issue signs a token for subject. It stands in for the identity provider
// in development and tests.
func (a *Authenticator) Issue(subject, email string, roles []string, ttl time.Duration) (string, error) {
	now := a.now()
	claims := &Claims{
		Email: email,
		Roles: roles,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			Issuer:    a.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(a.secret)
}
