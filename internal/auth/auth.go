// Package auth implements the single-user session gate: bcrypt password
// verification, JWT issuance/validation, and URL masking for unauthenticated
// reads.
package auth

import (
	"crypto/subtle"
	"errors"
	"fmt"
	"net/url"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

// ErrInvalidCredentials is returned by Login on a username or password
// mismatch. The two failure modes are intentionally not distinguished in
// the returned error, only in internal comparison order.
var ErrInvalidCredentials = errors.New("invalid username or password")

// Claims is the JWT payload issued on a successful login.
type Claims struct {
	Username string `json:"username"`
	jwt.RegisteredClaims
}

// Auth verifies credentials and issues/validates session tokens for the
// single configured admin user.
type Auth struct {
	username     string
	passwordHash []byte
	secret       []byte
	maxAge       time.Duration
}

// New builds an Auth. password is hashed once at startup; there is no
// user store.
func New(username, password, secret string, maxAge time.Duration) (*Auth, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash configured password: %w", err)
	}
	return &Auth{
		username:     username,
		passwordHash: hash,
		secret:       []byte(secret),
		maxAge:       maxAge,
	}, nil
}

// Login checks username and password, returning a signed JWT valid for
// maxAge on success. The username comparison is constant-time so that a
// wrong username cannot be distinguished from a wrong password by timing.
func (a *Auth) Login(username, password string) (string, error) {
	usernameOK := subtle.ConstantTimeCompare([]byte(username), []byte(a.username)) == 1
	passwordErr := bcrypt.CompareHashAndPassword(a.passwordHash, []byte(password))

	if !usernameOK || passwordErr != nil {
		return "", ErrInvalidCredentials
	}

	now := time.Now()
	claims := &Claims{
		Username: a.username,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(a.maxAge)),
			Subject:   a.username,
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(a.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign session token: %w", err)
	}
	return signed, nil
}

// Validate parses and verifies a session token, returning its claims.
func (a *Auth) Validate(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return a.secret, nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to parse session token: %w", err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, errors.New("invalid session token")
	}
	return claims, nil
}

// MaxAge returns the configured session lifetime, for setting cookie
// expiry at the handler layer.
func (a *Auth) MaxAge() time.Duration {
	return a.maxAge
}

// MaskURL redacts a target URL for unauthenticated reads: the scheme is
// kept, the host is reduced to its first character plus "***" (a
// single-character host becomes just "*"), and the path becomes a literal
// "/***". Query strings and fragments are dropped entirely. A URL that
// fails to parse, or has no host, masks to the literal "***".
func MaskURL(raw string) string {
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return "***"
	}

	maskedHost := "*"
	if len(u.Host) > 1 {
		maskedHost = string(u.Host[0]) + "***"
	}

	return u.Scheme + "://" + maskedHost + "/***"
}
