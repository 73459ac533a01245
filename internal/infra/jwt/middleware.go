// Package jwt guards the editor-facing API groups with bearer-token
// authentication. Health and metrics routes are registered outside the
// protected groups and never pass through here.
package jwt

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

// claimsKey is the gin context key the middleware stores parsed claims under.
const claimsKey = "claims"

// Claims is the token payload the product hub reads: the acting subject.
type Claims struct {
	Sub string `json:"sub"`
	jwt.RegisteredClaims
}

// Middleware validates Bearer tokens signed with the shared HMAC secret.
// Requests with no token, a malformed header, or a bad signature are
// rejected with 401 before reaching any handler.
func Middleware(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString, ok := bearerToken(c.GetHeader("Authorization"))
		if !ok {
			unauthorized(c, "missing or malformed authorization header")
			return
		}

		token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (any, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, errors.New("unexpected signing method")
			}
			return []byte(secret), nil
		})
		if err != nil || !token.Valid {
			unauthorized(c, "invalid token")
			return
		}

		claims, ok := token.Claims.(*Claims)
		if !ok {
			unauthorized(c, "invalid token")
			return
		}

		c.Set(claimsKey, claims)
		c.Next()
	}
}

// GetClaims returns the claims the middleware attached to the request, if
// the request carried a valid token.
func GetClaims(c *gin.Context) (*Claims, bool) {
	v, exists := c.Get(claimsKey)
	if !exists {
		return nil, false
	}

	claims, ok := v.(*Claims)
	return claims, ok
}

func bearerToken(header string) (string, bool) {
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || parts[0] != "Bearer" || parts[1] == "" {
		return "", false
	}
	return parts[1], true
}

func unauthorized(c *gin.Context, message string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": message})
}
