package utils

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/Habib-0007/habsblog-api/config"
)

// Claims defines JWT claims used in the application. Role travels inside the
// token so the authorization policy can be evaluated without a user lookup.
type Claims struct {
	UserID uint   `json:"user_id"`
	Role   string `json:"role"`
	jwt.RegisteredClaims
}

// GenerateAccessToken issues a short-lived JWT for the specified user identity.
func GenerateAccessToken(userID uint, role string) (string, error) {
	cfg := config.Get()
	ttl := time.Duration(cfg.AccessTokenTTLMinutes) * time.Minute
	return signToken(userID, role, ttl, cfg.JWTSecret)
}

// GenerateRefreshToken issues a long-lived JWT intended to be persisted and
// exchanged for new access tokens.
func GenerateRefreshToken(userID uint, role string) (string, time.Time, error) {
	cfg := config.Get()
	ttl := time.Duration(cfg.RefreshTokenTTLDays) * 24 * time.Hour
	expiresAt := time.Now().Add(ttl)
	token, err := signToken(userID, role, ttl, cfg.JWTSecret)
	return token, expiresAt, err
}

func signToken(userID uint, role string, ttl time.Duration, secret string) (string, error) {
	claims := Claims{
		UserID: userID,
		Role:   role,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}

// ParseToken validates a JWT and returns its claims.
func ParseToken(tokenStr string) (*Claims, error) {
	cfg := config.Get()
	parsed, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return []byte(cfg.JWTSecret), nil
	})
	if err != nil {
		return nil, err
	}

	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid {
		return nil, errors.New("invalid token claims")
	}

	return claims, nil
}
