package middleware

import (
	"strings"
	"time"

	"market-delivery-api/config"
	"market-delivery-api/models"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

type Claims struct {
	UserID string          `json:"user_id"`
	Email  string          `json:"email"`
	Role   models.UserRole `json:"role"`
	jwt.RegisteredClaims
}

// GenerateToken creates a signed JWT for a given user
func GenerateToken(user *models.User) (string, error) {
	claims := Claims{
		UserID: user.ID,
		Email:  user.Email,
		Role:   user.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(24 * time.Hour)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(config.JWTSecret)
}

// IdentityOptional parses a Bearer token when one is supplied and stashes the
// caller identity in context. The API itself trusts client-supplied emails
// (see /auth/login), so a missing or invalid token is not an error here —
// the identity is used for audit attribution, not access control.
func IdentityOptional() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if strings.HasPrefix(authHeader, "Bearer ") {
			tokenStr := strings.TrimPrefix(authHeader, "Bearer ")
			claims := &Claims{}
			token, err := jwt.ParseWithClaims(tokenStr, claims, func(t *jwt.Token) (interface{}, error) {
				return config.JWTSecret, nil
			})
			if err == nil && token.Valid {
				c.Set("email", claims.Email)
				c.Set("role", string(claims.Role))
			}
		}
		c.Next()
	}
}

// CallerEmail returns the authenticated email, or the fallback when the
// request carried no usable token
func CallerEmail(c *gin.Context, fallback string) string {
	if v, ok := c.Get("email"); ok {
		if s, ok := v.(string); ok && s != "" {
			return s
		}
	}
	return fallback
}
