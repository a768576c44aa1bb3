package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/jwalitptl/triage-gateway/internal/handler"
	"github.com/jwalitptl/triage-gateway/internal/model"
	"github.com/jwalitptl/triage-gateway/internal/session"
)

const sessionContextKey = "gateway_session"

type AuthMiddleware struct {
	sessions *session.Store
}

func NewAuthMiddleware(sessions *session.Store) *AuthMiddleware {
	return &AuthMiddleware{sessions: sessions}
}

// Authenticate resolves the gateway session from the bearer header and
// puts it in the request context. An unknown or expired session ID is
// a plain 401; termination of upstream-rejected credentials happens in
// the upstream client, not here.
func (m *AuthMiddleware) Authenticate() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.JSON(http.StatusUnauthorized, handler.NewErrorResponse("missing authorization header"))
			c.Abort()
			return
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			c.JSON(http.StatusUnauthorized, handler.NewErrorResponse("invalid authorization format"))
			c.Abort()
			return
		}

		sess, err := m.sessions.Get(parts[1])
		if err != nil {
			c.JSON(http.StatusUnauthorized, handler.NewErrorResponse("invalid or expired session"))
			c.Abort()
			return
		}

		c.Set(sessionContextKey, sess)
		c.Next()
	}
}

// SessionFromContext returns the session placed by Authenticate. Only
// valid on routes behind the middleware.
func SessionFromContext(c *gin.Context) *model.Session {
	v, ok := c.Get(sessionContextKey)
	if !ok {
		return nil
	}
	return v.(*model.Session)
}
