// app/seenmw.go
package app

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// TouchSession 活跃请求续期会话，SESSION_TOUCH_SECONDS 内最多一次
func (a *App) TouchSession() gin.HandlerFunc {
	return func(c *gin.Context) {
		sess, ok := CurrentSession(c)
		if !ok {
			c.Next()
			return
		}
		renewed, err := a.Sessions.Touch(c.Request.Context(), sess, a.Config.SessionTouch)
		if err != nil {
			a.Log.Warn("session touch failed", zap.Error(err)) // 不阻塞请求
		} else if renewed {
			a.SetSessionCookie(c, sess.ID, a.Sessions.TTL())
		}
		c.Next()
	}
}
