// controllers/srv.go
package controllers

import (
	"strconv"
	"strings"
	"time"

	"Gin_postgres_redis_inventory/app"
	"Gin_postgres_redis_inventory/apperr"
	"Gin_postgres_redis_inventory/auth"
	"Gin_postgres_redis_inventory/db"
	"Gin_postgres_redis_inventory/session"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Srv 各控制器共享的依赖
type Srv struct {
	App      *app.App
	Repo     *db.Repo
	Auth     *auth.Service
	Sessions *session.Store
	Log      *zap.Logger
	// 报表日期显示时区
	Loc *time.Location
}

func GetSrv(a *app.App) *Srv {
	s := &Srv{
		App:      a,
		Repo:     a.Repo,
		Auth:     a.Auth,
		Sessions: a.Sessions,
		Log:      a.Log.Named("controllers"),
		Loc:      time.UTC,
	}
	if loc, err := time.LoadLocation(a.Config.ReportTZ); err == nil {
		s.Loc = loc
	} else {
		s.Log.Warn("unknown REPORT_TZ, using UTC", zap.String("tz", a.Config.ReportTZ), zap.Error(err))
	}
	return s
}

// --- helpers ---

func (s *Srv) fail(c *gin.Context, err error) { app.RespondError(c, s.Log, err) }

func (s *Srv) bind(c *gin.Context, v any) bool {
	if err := c.ShouldBindJSON(v); err != nil {
		s.fail(c, apperr.Wrap(apperr.Validation, err, "invalid request"))
		return false
	}
	return true
}

func (s *Srv) intParam(c *gin.Context, name string) (int, bool) {
	n, err := strconv.Atoi(c.Param(name))
	if err != nil || n <= 0 {
		s.fail(c, apperr.New(apperr.Validation, "invalid %s %q", name, c.Param(name)))
		return 0, false
	}
	return n, true
}

// parseDate 接受 RFC3339 或 2006-01-02；to=true 时纯日期取当天结束
func parseDate(raw string, to bool) (*time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return &t, nil
	}
	t, err := time.Parse("2006-01-02", raw)
	if err != nil {
		return nil, apperr.New(apperr.Validation, "invalid date %q", raw)
	}
	if to {
		t = t.Add(24*time.Hour - time.Nanosecond)
	}
	return &t, nil
}

func (s *Srv) dateRange(c *gin.Context) (from, to *time.Time, ok bool) {
	var err error
	if from, err = parseDate(c.Query("from"), false); err != nil {
		s.fail(c, err)
		return nil, nil, false
	}
	if to, err = parseDate(c.Query("to"), true); err != nil {
		s.fail(c, err)
		return nil, nil, false
	}
	return from, to, true
}
