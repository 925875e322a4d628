// Package auth issues and verifies the HS256 access tokens that carry the
// caller's account id.
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/stickyhabits/internal/common"
	"github.com/golang-jwt/jwt/v5"
)

// Claims carries the account id next to the registered claims.
type Claims struct {
	jwt.RegisteredClaims
	Account string `json:"account"`
}

func GenerateToken(account string, secretKey []byte, validityDuration time.Duration) (string, error) {
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   account,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(validityDuration)),
		},
		Account: account,
	})

	return token.SignedString(secretKey)
}

// AccountFromToken validates tokenString and returns its account id.
// Expired tokens yield common.ErrTokenExpired; every other failure wraps
// common.ErrInvalidToken.
func AccountFromToken(tokenString string, secretKey []byte) (string, error) {
	claims := &Claims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		return secretKey, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return "", common.ErrTokenExpired
		}
		return "", fmt.Errorf("%w: %v", common.ErrInvalidToken, err)
	}

	if !token.Valid || claims.Account == "" {
		return "", common.ErrInvalidToken
	}

	return claims.Account, nil
}
