package server

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/voyatra/voyatra/internal/auditcontext"
)

const (
	headerActorID   = "X-Actor-Id"
	headerActorRole = "X-Actor-Role"
	headerRequestID = "X-Request-Id"
)

// RequestContextMiddleware copies request identity details into the
// context so downstream services can attach them to audit entries.
func RequestContextMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		ctx = auditcontext.WithIPAddress(ctx, c.ClientIP())
		ctx = auditcontext.WithUserAgent(ctx, c.Request.UserAgent())
		if requestID := c.GetHeader(headerRequestID); requestID != "" {
			ctx = auditcontext.WithRequestID(ctx, requestID)
		}
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

// requireAccess resolves the actor from request headers and checks the
// given object/action pair against the authorization service.
func (s *Server) requireAccess(object, action string) gin.HandlerFunc {
	return func(c *gin.Context) {
		actor := strings.TrimSpace(c.GetHeader(headerActorID))
		if actor == "" {
			c.Error(ErrUnauthorized)
			c.Abort()
			return
		}

		role := strings.TrimSpace(c.GetHeader(headerActorRole))
		if err := s.authz.Authorize(c.Request.Context(), actor, role, object, action); err != nil {
			c.Error(err)
			c.Abort()
			return
		}

		c.Set("actor_id", actor)
		c.Next()
	}
}

func (s *Server) rateLimited() gin.HandlerFunc {
	return func(c *gin.Context) {
		key := c.GetString("actor_id")
		if key == "" {
			key = c.ClientIP()
		}
		if !s.limiter.Allow(key) {
			c.Error(ErrTooManyRequest)
			c.Abort()
			return
		}
		c.Next()
	}
}
