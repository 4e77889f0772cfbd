package app

import (
	"errors"
	"net/http"
	"time"

	"Gin_postgres_redis_inventory/apperr"
	"Gin_postgres_redis_inventory/auth"
	"Gin_postgres_redis_inventory/session"

	"github.com/gin-gonic/gin"
)

const AppSessionCookie = "app_session"

const (
	ctxIdentity = "identity"
	ctxSession  = "session"
)

// AuthRequired 从 cookie 取会话，把 Identity 放进 Context
func (a *App) AuthRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		ck, err := c.Request.Cookie(AppSessionCookie)
		if err != nil || ck.Value == "" {
			RespondError(c, a.Log, apperr.New(apperr.Unauthorized, "login required"))
			return
		}
		sess, err := a.Sessions.Get(c.Request.Context(), ck.Value)
		if err != nil {
			if errors.Is(err, apperr.ErrUnauthorized) {
				a.ClearSessionCookie(c)
			}
			RespondError(c, a.Log, err)
			return
		}
		c.Set(ctxIdentity, sess.Identity)
		c.Set(ctxSession, sess)
		c.Next()
	}
}

// RequireLevel 等级数值 <= level 才放行
func RequireLevel(level int) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := CurrentIdentity(c)
		if !ok {
			RespondError(c, nil, apperr.New(apperr.Unauthorized, "login required"))
			return
		}
		if !auth.Authorize(id, level) {
			RespondError(c, nil, apperr.New(apperr.Forbidden, "%s cannot perform this action", auth.LevelName(id.PermissionLevel)))
			return
		}
		c.Next()
	}
}

func CurrentIdentity(c *gin.Context) (auth.Identity, bool) {
	v, ok := c.Get(ctxIdentity)
	if !ok {
		return auth.Identity{}, false
	}
	id, ok := v.(auth.Identity)
	return id, ok
}

func CurrentSession(c *gin.Context) (*session.Session, bool) {
	v, ok := c.Get(ctxSession)
	if !ok {
		return nil, false
	}
	s, ok := v.(*session.Session)
	return s, ok
}

// SetSessionCookie 统一设置业务会话 Cookie
func (a *App) SetSessionCookie(c *gin.Context, sessionID string, maxAge time.Duration) {
	http.SetCookie(c.Writer, &http.Cookie{
		Name:     AppSessionCookie,
		Value:    sessionID,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		Secure:   a.SecureCookie(),
		MaxAge:   int(maxAge / time.Second),
	})
}

func (a *App) ClearSessionCookie(c *gin.Context) {
	http.SetCookie(c.Writer, &http.Cookie{
		Name:     AppSessionCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		Secure:   a.SecureCookie(),
	})
}
