package utils

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const tokenIssuer = "restaurant-platform"

var (
	jwtSecret = []byte("dev-secret-change-me")
	jwtTTL    = 24 * time.Hour
)

// ConfigureJWT sets the signing secret and lifetime of issued tokens.
func ConfigureJWT(secret string, ttl time.Duration) {
	if secret != "" {
		jwtSecret = []byte(secret)
	}
	if ttl > 0 {
		jwtTTL = ttl
	}
}

type CustomClaims struct {
	UserID       uint   `json:"user_id"`
	Role         string `json:"role"`
	RestaurantID uint   `json:"restaurant_id,omitempty"`
	Name         string `json:"name,omitempty"`
	jwt.RegisteredClaims
}

func GenerateToken(userID uint, role string, restaurantID uint, name string) (string, error) {
	now := time.Now()
	claims := &CustomClaims{
		UserID:       userID,
		Role:         role,
		RestaurantID: restaurantID,
		Name:         name,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			ExpiresAt: jwt.NewNumericDate(now.Add(jwtTTL)),
			IssuedAt:  jwt.NewNumericDate(now),
			Issuer:    tokenIssuer,
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(jwtSecret)
}

func ParseToken(tokenString string) (*CustomClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &CustomClaims{}, func(token *jwt.Token) (interface{}, error) {
		return jwtSecret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithIssuer(tokenIssuer))

	if err != nil || !token.Valid {
		return nil, errors.New("jeton invalide ou expiré")
	}

	claims, ok := token.Claims.(*CustomClaims)
	if !ok || claims.UserID == 0 {
		return nil, errors.New("jeton invalide")
	}

	return claims, nil
}
