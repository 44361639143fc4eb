package middleware

import (
	"net/http"

	"gullak/internal/shared"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// RequireUser resolves the calling user from the X-User-ID header. It is a
// stand-in for the real authentication layer, which lives outside this
// service; handlers only ever read the parsed uuid from the context.
func RequireUser() gin.HandlerFunc {
	return func(c *gin.Context) {
		raw := c.GetHeader("X-User-ID")
		if raw == "" {
			shared.RespondWithError(c, http.StatusUnauthorized, "missing X-User-ID header")
			c.Abort()
			return
		}
		userID, err := uuid.Parse(raw)
		if err != nil {
			shared.RespondWithError(c, http.StatusUnauthorized, "invalid X-User-ID header")
			c.Abort()
			return
		}
		c.Set(shared.ContextUserIDKey, userID)
		c.Next()
	}
}

// UserID returns the authenticated user id set by RequireUser.
func UserID(c *gin.Context) (uuid.UUID, bool) {
	v, ok := c.Get(shared.ContextUserIDKey)
	if !ok {
		return uuid.Nil, false
	}
	id, ok := v.(uuid.UUID)
	return id, ok
}
