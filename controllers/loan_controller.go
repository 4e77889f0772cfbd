package controllers

import (
	"net/http"
	"strconv"
	"time"

	"Gin_postgres_redis_inventory/app"
	"Gin_postgres_redis_inventory/apperr"
	"Gin_postgres_redis_inventory/db"
	"Gin_postgres_redis_inventory/models"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type LoanController struct{ *Srv }

func NewLoanController(s *Srv) *LoanController { return &LoanController{Srv: s} }

type createLoanReq struct {
	AssetID             int        `json:"assetId" binding:"required"`
	PersonID            string     `json:"personId" binding:"required"`
	ExpectedReturnDate  *time.Time `json:"expectedReturnDate"`
	TemporaryLocationID *int       `json:"temporaryLocationId"`
	Quantity            *int       `json:"quantity"`
}

// sweep 失败只记日志，不影响读
func (lc *LoanController) sweep(c *gin.Context) {
	if _, err := lc.Repo.SweepOverdue(c.Request.Context(), lc.Repo.Now()); err != nil {
		lc.Log.Warn("overdue sweep failed", zap.Error(err))
	}
}

// GET /api/loans?person=&asset=&status=&from=&to=
func (lc *LoanController) ListLoans(c *gin.Context) {
	f := db.LoanFilter{
		PersonID: c.Query("person"),
		Status:   models.LoanStatus(c.Query("status")),
	}
	if f.Status != "" && !f.Status.Valid() {
		lc.fail(c, apperr.New(apperr.Validation, "unknown status %q", f.Status))
		return
	}
	if raw := c.Query("asset"); raw != "" {
		id, err := strconv.Atoi(raw)
		if err != nil {
			lc.fail(c, apperr.New(apperr.Validation, "invalid asset %q", raw))
			return
		}
		f.AssetID = &id
	}
	var ok bool
	if f.From, f.To, ok = lc.dateRange(c); !ok {
		return
	}

	lc.sweep(c)
	ls, err := lc.Repo.ListLoans(c.Request.Context(), f)
	if err != nil {
		lc.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, app.H{"items": ls})
}

// GET /api/loans/active
func (lc *LoanController) ActiveLoans(c *gin.Context) {
	lc.sweep(c)
	ls, err := lc.Repo.ListActiveLoans(c.Request.Context())
	if err != nil {
		lc.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, app.H{"items": ls})
}

func (lc *LoanController) GetLoan(c *gin.Context) {
	id, ok := lc.intParam(c, "id")
	if !ok {
		return
	}
	l, err := lc.Repo.GetLoan(c.Request.Context(), id)
	if err != nil {
		lc.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, l)
}

// POST /api/loans 借出 quantity 件（默认 1），每件一条记录
func (lc *LoanController) CreateLoan(c *gin.Context) {
	var req createLoanReq
	if !lc.bind(c, &req) {
		return
	}
	qty := 1
	if req.Quantity != nil {
		qty = *req.Quantity
	}
	loans, err := lc.Repo.CreateLoan(c.Request.Context(), db.CreateLoanInput{
		AssetID:             req.AssetID,
		PersonID:            req.PersonID,
		ExpectedReturnDate:  req.ExpectedReturnDate,
		TemporaryLocationID: req.TemporaryLocationID,
		Quantity:            qty,
	})
	if err != nil {
		lc.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, app.H{"items": loans})
}

// POST /api/loans/:id/return
func (lc *LoanController) ReturnLoan(c *gin.Context) {
	id, ok := lc.intParam(c, "id")
	if !ok {
		return
	}
	l, err := lc.Repo.ReturnLoan(c.Request.Context(), id)
	if err != nil {
		lc.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, l)
}

// POST /api/loans/sweep
func (lc *LoanController) Sweep(c *gin.Context) {
	n, err := lc.Repo.SweepOverdue(c.Request.Context(), lc.Repo.Now())
	if err != nil {
		lc.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, app.H{"marked": n})
}
