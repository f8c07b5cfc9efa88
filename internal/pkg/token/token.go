package token

import (
	"errors"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/DanielHoffmann/AuthGate/internal/pkg/env"
)

// Access tokens let API clients authenticate without a cookie session. HS256,
// subject = account UUID. There is no refresh-token rotation.

const defaultTTLMinutes = 60

var ErrInvalidToken = errors.New("invalid or expired access token")

func signingKey() ([]byte, error) {
	secret := env.GetEnv("JWT_SECRET", "")
	if secret == "" {
		return nil, errors.New("JWT_SECRET is not set")
	}
	return []byte(secret), nil
}

func ttl() time.Duration {
	if v, err := strconv.Atoi(env.GetEnv("JWT_TTL_MINUTES", "")); err == nil && v > 0 {
		return time.Duration(v) * time.Minute
	}
	return defaultTTLMinutes * time.Minute
}

// Issue creates a signed access token for the given account UUID.
func Issue(accountUUID string) (string, error) {
	key, err := signingKey()
	if err != nil {
		return "", err
	}
	now := time.Now()
	claims := jwt.RegisteredClaims{
		Subject:   accountUUID,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl())),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(key)
}

// Verify parses a token and returns the account UUID it was issued for.
func Verify(tokenString string) (string, error) {
	key, err := signingKey()
	if err != nil {
		return "", err
	}
	parsed, err := jwt.ParseWithClaims(tokenString, &jwt.RegisteredClaims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return key, nil
	})
	if err != nil || !parsed.Valid {
		return "", ErrInvalidToken
	}
	claims, ok := parsed.Claims.(*jwt.RegisteredClaims)
	if !ok || claims.Subject == "" {
		return "", ErrInvalidToken
	}
	return claims.Subject, nil
}
