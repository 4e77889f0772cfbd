package controllers

import (
	"net/http"

	"Gin_postgres_redis_inventory/app"
	"Gin_postgres_redis_inventory/auth"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type AuthController struct{ *Srv }

func NewAuthController(s *Srv) *AuthController { return &AuthController{Srv: s} }

type loginReq struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

func identityView(id auth.Identity) app.H {
	return app.H{
		"identity":  id,
		"levelName": auth.LevelName(id.PermissionLevel),
		"canCreate": auth.CanCreate(id),
		"canEdit":   auth.CanEdit(id),
		"canDelete": auth.CanDelete(id),
		"canView":   auth.CanView(id),
	}
}

// POST /api/auth/login
func (ac *AuthController) Login(c *gin.Context) {
	var req loginReq
	if !ac.bind(c, &req) {
		return
	}
	id, err := ac.Auth.Authenticate(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		ac.fail(c, err)
		return
	}
	sess, err := ac.Sessions.Create(c.Request.Context(), id)
	if err != nil {
		ac.fail(c, err)
		return
	}
	ac.App.SetSessionCookie(c, sess.ID, ac.Sessions.TTL())
	c.JSON(http.StatusOK, identityView(id))
}

// POST /api/auth/logout
func (ac *AuthController) Logout(c *gin.Context) {
	if sess, ok := app.CurrentSession(c); ok {
		if err := ac.Sessions.Delete(c.Request.Context(), sess.ID); err != nil {
			ac.Log.Warn("logout: delete session", zap.Error(err))
		}
	}
	ac.App.ClearSessionCookie(c)
	c.JSON(http.StatusOK, app.H{"ok": true})
}

// GET /api/auth/me
func (ac *AuthController) Me(c *gin.Context) {
	id, _ := app.CurrentIdentity(c)
	c.JSON(http.StatusOK, identityView(id))
}
