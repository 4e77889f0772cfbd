package controllers

import (
	"bytes"
	"mime"
	"net/http"
	"strings"

	"Gin_postgres_redis_inventory/app"
	"Gin_postgres_redis_inventory/apperr"
	"Gin_postgres_redis_inventory/db"
	"Gin_postgres_redis_inventory/report"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const (
	mimeCSV  = "text/csv; charset=utf-8"
	mimeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

type ReportController struct{ *Srv }

func NewReportController(s *Srv) *ReportController { return &ReportController{Srv: s} }

// GET /api/reports/dashboard 先扫描逾期再统计
func (rc *ReportController) Dashboard(c *gin.Context) {
	if _, err := rc.Repo.SweepOverdue(c.Request.Context(), rc.Repo.Now()); err != nil {
		rc.fail(c, err)
		return
	}
	d, err := rc.Repo.DashboardStats(c.Request.Context())
	if err != nil {
		rc.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, d)
}

// GET /api/reports/summary?from=&to=
func (rc *ReportController) Summary(c *gin.Context) {
	from, to, ok := rc.dateRange(c)
	if !ok {
		return
	}
	ctx := c.Request.Context()
	if _, err := rc.Repo.SweepOverdue(ctx, rc.Repo.Now()); err != nil {
		rc.fail(c, err)
		return
	}
	assets, err := rc.Repo.AllAssets(ctx)
	if err != nil {
		rc.fail(c, err)
		return
	}
	loans, err := rc.Repo.ListLoans(ctx, db.LoanFilter{From: from, To: to})
	if err != nil {
		rc.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, app.H{
		"byCategory": report.ByCategory(assets),
		"byStatus":   report.ByStatus(loans),
		"byPerson":   report.ByPerson(loans),
		"stats":      report.Summarize(loans),
	})
}

// GET /api/reports/loans?by=persona|activo&id=&from=&to=&format=json|csv|xlsx
func (rc *ReportController) LoanReport(c *gin.Context) {
	from, to, ok := rc.dateRange(c)
	if !ok {
		return
	}
	q := db.ReportQuery{
		By:   db.ReportBy(c.Query("by")),
		ID:   strings.TrimSpace(c.Query("id")),
		From: from,
		To:   to,
	}
	format := strings.ToLower(c.DefaultQuery("format", "json"))
	if format != "json" && format != "csv" && format != "xlsx" {
		rc.fail(c, apperr.New(apperr.Validation, "unknown format %q", format))
		return
	}

	// 先标记逾期，导出的 Estado 才准确；失败只记日志
	if _, err := rc.Repo.SweepOverdue(c.Request.Context(), rc.Repo.Now()); err != nil {
		rc.Log.Warn("overdue sweep failed", zap.Error(err))
	}
	loans, err := rc.Repo.LoanReport(c.Request.Context(), q)
	if err != nil {
		rc.fail(c, err)
		return
	}
	by := report.ByPersonReport
	if q.By == db.ReportByAsset {
		by = report.ByAssetReport
	}
	table := report.LoanTable(by, loans, rc.Loc)

	if format == "json" {
		c.JSON(http.StatusOK, app.H{"table": table, "stats": report.Summarize(loans)})
		return
	}

	var buf bytes.Buffer
	contentType := mimeCSV
	if format == "csv" {
		err = report.WriteCSV(&buf, table)
	} else {
		contentType = mimeXLSX
		err = report.WriteXLSX(&buf, "Reporte", table)
	}
	if err != nil {
		rc.fail(c, apperr.Wrap(apperr.StoreError, err, "export report"))
		return
	}
	name := report.FileName(by, q.ID, rc.Repo.Now(), format)
	c.Header("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": name}))
	c.Data(http.StatusOK, contentType, buf.Bytes())
}
