package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"bookingpay/internal/identity"
)

const sessionHeader = "Authorization"

// SessionMiddleware extracts the bearer session token from the request and
// attaches it to the request context. Absence is not rejected here; the
// identity provider decides what an absent session means per operation.
func SessionMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader(sessionHeader)
		token := strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
		if token != "" {
			ctx := identity.WithToken(c.Request.Context(), token)
			c.Request = c.Request.WithContext(ctx)
		}
		c.Next()
	}
}
