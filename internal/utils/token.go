package utils

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/devhire/project-marketplace-api/internal/models"
)

// AccessToken is a signed HS256 JWT together with its expiry.
type AccessToken struct {
	Token string
	Exp   time.Time
}

// TokenClaims is the identity a verified token resolves to.
type TokenClaims struct {
	UserID uint64
	Role   models.UserRole
}

var ErrInvalidToken = errors.New("invalid or expired token")

// NewAccessToken signs an HS256 JWT for a user with subject, role, exp and
// iat claims.
func NewAccessToken(secret string, userID uint64, role models.UserRole, ttlMin int) (AccessToken, error) {
	exp := time.Now().UTC().Add(time.Duration(ttlMin) * time.Minute)
	claims := jwt.MapClaims{
		"sub":  userID,
		"role": string(role),
		"exp":  exp.Unix(),
		"iat":  time.Now().UTC().Unix(),
	}

	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := t.SignedString([]byte(secret))
	if err != nil {
		return AccessToken{}, err
	}
	return AccessToken{Token: signed, Exp: exp}, nil
}

// ParseAccessToken verifies a presented token and resolves it back to the
// caller identity.
func ParseAccessToken(secret, raw string) (TokenClaims, error) {
	tok, err := jwt.Parse(raw, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return []byte(secret), nil
	})
	if err != nil || !tok.Valid {
		return TokenClaims{}, ErrInvalidToken
	}

	claims, ok := tok.Claims.(jwt.MapClaims)
	if !ok {
		return TokenClaims{}, ErrInvalidToken
	}

	sub, ok := claims["sub"].(float64)
	if !ok || sub < 0 {
		return TokenClaims{}, ErrInvalidToken
	}
	role, ok := claims["role"].(string)
	if !ok || !models.ValidRole(models.UserRole(role)) {
		return TokenClaims{}, ErrInvalidToken
	}

	return TokenClaims{
		UserID: uint64(sub),
		Role:   models.UserRole(role),
	}, nil
}
