// Package auth provides functionality for generating and parsing JSON Web Tokens (JWT)
// for operators of the local control surface. It defines custom claims, token generation,
// and validation logic.
package auth

import (
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v4"
)

// TokenTTL defines the token expiration duration.
const TokenTTL = time.Hour * 3

var (
	mu        sync.RWMutex
	secretKey = []byte("mafia")
)

// SetSecretKey replaces the key used to sign and verify tokens.
func SetSecretKey(key string) {
	mu.Lock()
	defer mu.Unlock()
	secretKey = []byte(key)
}

func key() []byte {
	mu.RLock()
	defer mu.RUnlock()
	return secretKey
}

// Claims represents the custom JWT claims that include the operator and standard claims.
// It embeds jwt.RegisteredClaims for standard fields like expiration time.
type Claims struct {
	UserID   int32
	Username string
	jwt.RegisteredClaims
}

// GenerateToken creates a new JWT token for the operator userID.
func GenerateToken(userID int32, username string) (string, error) {
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(TokenTTL)),
			Subject:   username,
		},
		UserID:   userID,
		Username: username,
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(key())
}

// ParseToken validates the provided JWT token string and parses its claims.
// It returns the Claims if the token is valid, or an error otherwise.
func ParseToken(tokenStr string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return key(), nil
	})
	if err != nil {
		return nil, err
	}
	if claims, ok := token.Claims.(*Claims); ok && token.Valid {
		return claims, nil
	}
	return nil, jwt.ErrSignatureInvalid
}
