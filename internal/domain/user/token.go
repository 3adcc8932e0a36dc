package user

import (
	"time"

	"github.com/golang-jwt/jwt/v5"

	commonErrors "github.com/mfinch/myfinance-backend/internal/domain/errors"
)

// TokenClaims is the session token payload. The subject is the user id.
type TokenClaims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// IssueToken signs an HS256 session token for the user.
func IssueToken(secret []byte, userID, role string, ttl time.Duration, now time.Time) (string, error) {
	claims := TokenClaims{
		Role: role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(secret)
	if err != nil {
		return "", commonErrors.NewInternalError("failed to sign token", err)
	}
	return signed, nil
}

// ParseToken validates the signature and expiry and returns the claims.
// Every parsing failure surfaces as unauthorized.
func ParseToken(secret []byte, tokenString string) (*TokenClaims, error) {
	claims := &TokenClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return secret, nil
	})
	if err != nil || !token.Valid {
		return nil, commonErrors.NewUnAuthorizedError("invalid or expired token")
	}
	if claims.Subject == "" {
		return nil, commonErrors.NewUnAuthorizedError("token has no subject")
	}
	return claims, nil
}
