package middleware

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/oksasatya/nutriquest/pkg/response"
)

// SessionChecker reports whether the dashboard user is signed in.
type SessionChecker interface {
	IsAuthenticated(ctx context.Context) bool
}

// RequireSession is the routing guard: it rejects the request with 401 when the
// persisted isAuthenticated flag is false.
func RequireSession(s SessionChecker) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !s.IsAuthenticated(c.Request.Context()) {
			response.Error[any](c, http.StatusUnauthorized, "not signed in", nil)
			c.Abort()
			return
		}
		c.Next()
	}
}
