package authUtils

import (
	"fmt"
	"os"
	"time"

	"civicdesk-be/models"

	"github.com/dgrijalva/jwt-go"
)

// TokenClaims is what the auth middleware extracts from a bearer token.
type TokenClaims struct {
	UserID     string
	Role       models.Role
	WardID     string
	Department string
}

// GenerateToken signs a JWT carrying the user's identity and scope.
func GenerateToken(user *models.User) (string, error) {
	secretStr := os.Getenv("JWT_SECRET")
	if secretStr == "" {
		return "", fmt.Errorf("JWT_SECRET environment variable is not set")
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id":    user.ID.Hex(),
		"role":       string(user.Role),
		"ward_id":    user.WardID,
		"department": user.Department,
		"exp":        time.Now().Add(time.Hour * 72).Unix(), // Token expires in 72 hours
	})

	tokenString, err := token.SignedString([]byte(secretStr))
	if err != nil {
		return "", err
	}

	return tokenString, nil
}

// ParseToken validates a signed token and returns its claims.
func ParseToken(tokenString string) (*TokenClaims, error) {
	secretStr := os.Getenv("JWT_SECRET")
	if secretStr == "" {
		return nil, fmt.Errorf("JWT_SECRET environment variable is not set")
	}

	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if token.Method != jwt.SigningMethodHS256 {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(secretStr), nil
	})
	if err != nil || !token.Valid {
		return nil, fmt.Errorf("invalid token: %v", err)
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, fmt.Errorf("invalid token claims")
	}

	userID, _ := claims["user_id"].(string)
	if userID == "" {
		return nil, fmt.Errorf("token is missing user_id")
	}
	role, _ := claims["role"].(string)
	wardID, _ := claims["ward_id"].(string)
	department, _ := claims["department"].(string)

	return &TokenClaims{
		UserID:     userID,
		Role:       models.Role(role),
		WardID:     wardID,
		Department: department,
	}, nil
}
