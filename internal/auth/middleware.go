package auth

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// ContextUserKey is where the middleware stores the authenticated *User.
const ContextUserKey = "auth.user"

// Middleware rejects requests without a valid session cookie.
func (s *Service) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		cookie, err := c.Cookie(SessionCookie)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
			return
		}
		u, err := s.ParseSession(cookie)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "session expired or invalid"})
			return
		}
		c.Set(ContextUserKey, u)
		c.Next()
	}
}

// CurrentUser pulls the authenticated user out of the request context. The
// second return is false on unauthenticated routes.
func CurrentUser(c *gin.Context) (*User, bool) {
	v, ok := c.Get(ContextUserKey)
	if !ok {
		return nil, false
	}
	u, ok := v.(*User)
	return u, ok
}
