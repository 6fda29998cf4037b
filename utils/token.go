package authUtils

import (
	"errors"
	"fmt"
	"time"

	"civicsync-be/models"

	"github.com/dgrijalva/jwt-go"
)

const tokenTTL = 72 * time.Hour

// Claims identify the session a token was issued for
type Claims struct {
	UserID string      `json:"user_id"`
	Name   string      `json:"name"`
	Role   models.Role `json:"role"`
	jwt.StandardClaims
}

// GenerateAndSetToken generates a JWT token for the given user
func GenerateAndSetToken(user models.User, secret string) (string, error) {
	if secret == "" {
		return "", fmt.Errorf("JWT_SECRET environment variable is not set")
	}

	claims := Claims{
		UserID: user.ID,
		Name:   user.Name,
		Role:   user.Role,
		StandardClaims: jwt.StandardClaims{
			ExpiresAt: time.Now().Add(tokenTTL).Unix(), // Token expires in 72 hours
			IssuedAt:  time.Now().Unix(),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)

	tokenString, err := token.SignedString([]byte(secret))
	if err != nil {
		return "", err
	}

	return tokenString, nil
}

// ParseToken validates tokenString and returns its claims
func ParseToken(tokenString, secret string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if token.Method != jwt.SigningMethodHS256 {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(secret), nil
	})
	if err != nil {
		return nil, err
	}
	if !token.Valid || claims.UserID == "" {
		return nil, errors.New("invalid token claims")
	}
	return claims, nil
}
