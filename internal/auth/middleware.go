package auth

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

// UsernameKey is the gin context key under which the middleware stores
// the authenticated username.
const UsernameKey = "username"

// Middleware rejects requests without a valid bearer token. Failures
// are reported generically: the response never says which check failed.
func Middleware(m *Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		const prefix = "Bearer "
		if !strings.HasPrefix(header, prefix) {
			unauthorized(c)
			return
		}
		username, err := m.VerifyToken(strings.TrimPrefix(header, prefix))
		if err != nil {
			unauthorized(c)
			return
		}
		c.Set(UsernameKey, username)
		c.Next()
	}
}

func unauthorized(c *gin.Context) {
	c.Header("WWW-Authenticate", "Bearer")
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
		"status":  "error",
		"message": "could not validate credentials",
	})
}
