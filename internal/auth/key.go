package auth

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ErrKeyExpired is returned when a JWT access key is past its expiry.
var ErrKeyExpired = errors.New("access key has expired")

// KeyClaims are the claims carried by a data service access key.
type KeyClaims struct {
	Role string `json:"role"`
	Ref  string `json:"ref,omitempty"`
	jwt.RegisteredClaims
}

// KeyInfo describes an access key as far as it can be read without the
// signing secret. Opaque keys are not JWTs and carry no claims.
type KeyInfo struct {
	Opaque    bool
	Role      string
	Issuer    string
	ExpiresAt *time.Time
}

// InspectKey reads the claims of a JWT access key without verifying its
// signature; verification is the data service's job. Keys that are not
// JWTs are reported as opaque.
func InspectKey(key string, now time.Time) (KeyInfo, error) {
	if !looksLikeJWT(key) {
		return KeyInfo{Opaque: true}, nil
	}

	claims := &KeyClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(key, claims); err != nil {
		return KeyInfo{}, fmt.Errorf("malformed access key: %w", err)
	}

	info := KeyInfo{Role: claims.Role, Issuer: claims.Issuer}
	if claims.ExpiresAt != nil {
		exp := claims.ExpiresAt.Time
		info.ExpiresAt = &exp
		if !exp.After(now) {
			return info, ErrKeyExpired
		}
	}
	return info, nil
}

func looksLikeJWT(key string) bool {
	if len(key) == 0 || len(key) > 8192 {
		return false
	}
	return strings.Count(key, ".") == 2 && strings.HasPrefix(key, "eyJ")
}

// KeySigner issues HS256 access keys for a self-hosted data service that
// shares the signing secret.
type KeySigner struct {
	secret string
	issuer string
}

// NewKeySigner creates a signer.
func NewKeySigner(secret, issuer string) *KeySigner {
	return &KeySigner{secret: secret, issuer: issuer}
}

// ValidateConfig checks the signer settings.
func (s *KeySigner) ValidateConfig() error {
	if len(s.secret) < 32 {
		return errors.New("signing secret must be at least 32 characters")
	}
	if s.issuer == "" {
		return errors.New("issuer cannot be empty")
	}
	return nil
}

// Sign creates a key for role valid for ttl from now.
func (s *KeySigner) Sign(role string, ttl time.Duration, now time.Time) (string, error) {
	if role == "" {
		return "", errors.New("role cannot be empty")
	}
	if ttl <= 0 {
		return "", errors.New("ttl must be positive")
	}
	claims := &KeyClaims{
		Role: role,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    s.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.secret))
}

// Verify validates the signature and time claims of a key issued by s.
func (s *KeySigner) Verify(key string) (*KeyClaims, error) {
	token, err := jwt.ParseWithClaims(key, &KeyClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(s.secret), nil
	}, jwt.WithIssuer(s.issuer))
	if err != nil {
		return nil, err
	}

	if claims, ok := token.Claims.(*KeyClaims); ok && token.Valid {
		return claims, nil
	}
	return nil, errors.New("invalid access key")
}
