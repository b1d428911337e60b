package session

import (
	"net/http"

	"itinventory/internal/inventory/equipment"
	"itinventory/pkg/security"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const contextKey = "session"

// Middleware resolves the session of the authenticated principal. A valid
// token without a session (for example after a restart) opens one.
func (m *Manager) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		principal, ok := security.PrincipalFromContext(c)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Authentication required"})
			return
		}

		sess, found := m.Get(principal.ID)
		if !found {
			var err error
			sess, err = m.Open(c.Request.Context(), principal)
			if err != nil {
				m.logger.Warn("Session opened without data", zap.String("principal", principal.ID), zap.Error(err))
			}
		}

		c.Set(contextKey, sess)
		c.Next()
	}
}

func FromContext(c *gin.Context) (*Session, bool) {
	value, ok := c.Get(contextKey)
	if !ok {
		return nil, false
	}
	sess, ok := value.(*Session)
	return sess, ok
}

// Scope is FromContext shaped as an equipment.ScopeResolver.
func Scope(c *gin.Context) (equipment.Scope, bool) {
	sess, ok := FromContext(c)
	if !ok {
		return nil, false
	}
	return sess, true
}
