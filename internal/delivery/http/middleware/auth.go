package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/Harsh-BH/dispatch/internal/domain"
)

const contactKeyKey = "contact_key"

// TokenResolver maps a bearer token to the caller's contact key.
type TokenResolver interface {
	Resolve(ctx context.Context, token string) (string, error)
}

// Auth resolves an optional "Authorization: Bearer <token>" header and stores
// the caller's contact key on the context. Requests without a valid token
// continue anonymously.
func Auth(resolver TokenResolver) gin.HandlerFunc {
	return func(c *gin.Context) {
		h := c.GetHeader("Authorization")
		token, ok := strings.CutPrefix(h, "Bearer ")
		if !ok || token == "" {
			c.Next()
			return
		}

		key, err := resolver.Resolve(c.Request.Context(), token)
		if err != nil {
			if !errors.Is(err, domain.ErrUnauthorized) {
				_ = c.Error(err)
			}
			c.Next()
			return
		}

		c.Set(contactKeyKey, key)
		c.Next()
	}
}

// RequireIdentity rejects requests that Auth could not attach a contact key to.
func RequireIdentity() gin.HandlerFunc {
	return func(c *gin.Context) {
		if ContactKey(c) == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}
		c.Next()
	}
}

// ContactKey returns the authenticated caller's contact key, or "".
func ContactKey(c *gin.Context) string {
	return c.GetString(contactKeyKey)
}
