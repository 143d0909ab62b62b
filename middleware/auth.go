package middleware

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

// TokenCookie is where the admin session token lives between requests.
const TokenCookie = "arcade_token"

// LoginPath is returned with every rejection so clients know where to go.
const LoginPath = "/api/auth/login"

// AuthRequired gates admin-only routes. It runs before any protected
// handler, so no protected data fetch or mutation happens for an
// unauthenticated caller. Tokens are accepted from the session cookie or an
// Authorization: Bearer header.
func AuthRequired(jwtSecret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString := ""
		if cookie, err := c.Cookie(TokenCookie); err == nil {
			tokenString = cookie
		}
		if tokenString == "" {
			if auth := c.GetHeader("Authorization"); strings.HasPrefix(auth, "Bearer ") {
				tokenString = strings.TrimPrefix(auth, "Bearer ")
			}
		}
		if tokenString == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "authentication required", "login": LoginPath})
			c.Abort()
			return
		}

		token, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
			}
			return []byte(jwtSecret), nil
		})
		if err != nil || !token.Valid {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid session", "login": LoginPath})
			c.Abort()
			return
		}

		c.Next()
	}
}
