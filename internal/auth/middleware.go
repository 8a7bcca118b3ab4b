package auth

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/booksmt/booksmt/internal/session"
)

const (
	// ContextSession is the key for the resolved session in gin context
	ContextSession = "session"
	// ContextUsername is the key for username in gin context
	ContextUsername = "username"
)

// SessionMiddleware validates the bearer token and resolves the live
// session it names. Requests without a valid, known session are rejected.
func SessionMiddleware(store *session.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Authorization header required"})
			c.Abort()
			return
		}

		// Extract token from "Bearer <token>"
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid authorization header format"})
			c.Abort()
			return
		}

		claims, err := ValidateToken(parts[1])
		if err != nil {
			if err == ErrExpiredToken {
				c.JSON(http.StatusUnauthorized, gin.H{"error": "Token expired"})
			} else {
				c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid token"})
			}
			c.Abort()
			return
		}

		s, ok := store.Get(claims.SessionID)
		if !ok || !s.Authenticated {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Session expired, please log in again"})
			c.Abort()
			return
		}

		c.Set(ContextSession, s)
		c.Set(ContextUsername, claims.Username)

		c.Next()
	}
}

// GetSession retrieves the resolved session from the gin context
func GetSession(c *gin.Context) *session.Session {
	if v, exists := c.Get(ContextSession); exists {
		return v.(*session.Session)
	}
	return nil
}

// GetUsername retrieves the username from the gin context
func GetUsername(c *gin.Context) string {
	if v, exists := c.Get(ContextUsername); exists {
		return v.(string)
	}
	return ""
}
