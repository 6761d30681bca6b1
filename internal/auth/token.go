package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var (
	ErrInvalidToken = errors.New("invalid or expired token")
	ErrTokenRevoked = errors.New("token revoked")
)

// Claims is the JWT payload issued on login.
type Claims struct {
	Role Role `json:"role"`
	jwt.RegisteredClaims
}

// Tokens issues and verifies HS256 bearer tokens.
type Tokens struct {
	secret   []byte
	duration time.Duration
	revoker  Revoker
	now      func() time.Time
}

// NewTokens returns a token issuer. A nil revoker disables revocation checks.
func NewTokens(secret string, duration time.Duration, revoker Revoker) *Tokens {
	return &Tokens{secret: []byte(secret), duration: duration, revoker: revoker, now: time.Now}
}

// Issue signs a token for subject with the given role.
func (t *Tokens) Issue(subject string, role Role) (string, Identity, error) {
	issued := t.now()
	id := Identity{
		Subject:   subject,
		Role:      role,
		TokenID:   uuid.NewString(),
		ExpiresAt: issued.Add(t.duration),
	}
	claims := Claims{
		Role: role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			ID:        id.TokenID,
			IssuedAt:  jwt.NewNumericDate(issued),
			ExpiresAt: jwt.NewNumericDate(id.ExpiresAt),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(t.secret)
	if err != nil {
		return "", Identity{}, fmt.Errorf("sign token: %w", err)
	}
	return signed, id, nil
}

// Verify checks signature, algorithm, expiry and revocation and returns the caller identity.
func (t *Tokens) Verify(ctx context.Context, tokenString string) (Identity, error) {
	var claims Claims
	token, err := jwt.ParseWithClaims(tokenString, &claims, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return t.secret, nil
	}, jwt.WithExpirationRequired(), jwt.WithTimeFunc(t.now))
	if err != nil || !token.Valid {
		return Identity{}, ErrInvalidToken
	}
	if claims.Subject == "" || (claims.Role != RoleCitizen && claims.Role != RoleAdmin) {
		return Identity{}, ErrInvalidToken
	}

	id := Identity{Subject: claims.Subject, Role: claims.Role, TokenID: claims.ID, ExpiresAt: claims.ExpiresAt.Time}
	if t.revoker != nil && id.TokenID != "" {
		revoked, err := t.revoker.IsRevoked(ctx, id.TokenID)
		if err != nil {
			return Identity{}, fmt.Errorf("check revocation: %w", err)
		}
		if revoked {
			return Identity{}, ErrTokenRevoked
		}
	}
	return id, nil
}

// Revoke invalidates the token behind id until it would have expired anyway.
func (t *Tokens) Revoke(ctx context.Context, id Identity) error {
	if t.revoker == nil || id.TokenID == "" {
		return nil
	}
	return t.revoker.Revoke(ctx, id.TokenID, id.ExpiresAt)
}
