package middleware

import (
	"quill/internal/logger"
	"quill/internal/services"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// SessionKey is where LoadSession stores the *services.Session.
const SessionKey = "board_session"

const sessionIDKey = "sid"

// LoadSession binds the request to the browser's board session, minting a
// session id into the cookie on first visit.
func LoadSession(reg *services.Registry) gin.HandlerFunc {
	return func(c *gin.Context) {
		cookie := sessions.Default(c)
		raw, _ := cookie.Get(sessionIDKey).(string)

		id, sess := reg.Acquire(raw)
		if id != raw {
			cookie.Set(sessionIDKey, id)
			if err := cookie.Save(); err != nil {
				logger.Warn("save session cookie failed", zap.Error(err))
			}
		}
		c.Set(SessionKey, sess)
		c.Next()
	}
}

// CurrentSession returns the session set by LoadSession.
func CurrentSession(c *gin.Context) *services.Session {
	return c.MustGet(SessionKey).(*services.Session)
}
