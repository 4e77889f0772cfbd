package db

import (
	"context"
	"strconv"
	"time"

	"Gin_postgres_redis_inventory/apperr"
	"Gin_postgres_redis_inventory/models"
)

type Dashboard struct {
	TotalAssets    int64 `json:"totalAssets"`
	AvailableUnits int64 `json:"availableUnits"`
	ActiveLoans    int64 `json:"activeLoans"`
	OverdueLoans   int64 `json:"overdueLoans"`
	TotalPersons   int64 `json:"totalPersons"`
	TotalLoans     int64 `json:"totalLoans"`
}

// DashboardStats 调用方应先执行 SweepOverdue
func (r *Repo) DashboardStats(ctx context.Context) (*Dashboard, error) {
	var d Dashboard
	db := r.DB.WithContext(ctx)

	if err := db.Model(&models.Asset{}).Count(&d.TotalAssets).Error; err != nil {
		return nil, apperr.Store("count assets", err)
	}
	if err := db.Model(&models.Asset{}).
		Select("COALESCE(SUM(cantidad), 0)").
		Scan(&d.AvailableUnits).Error; err != nil {
		return nil, apperr.Store("sum quantity", err)
	}
	if err := db.Model(&models.Loan{}).
		Where("estado_prestamo IN ?", []models.LoanStatus{models.LoanPending, models.LoanOverdue}).
		Count(&d.ActiveLoans).Error; err != nil {
		return nil, apperr.Store("count active loans", err)
	}
	if err := db.Model(&models.Loan{}).
		Where("estado_prestamo = ?", models.LoanOverdue).
		Count(&d.OverdueLoans).Error; err != nil {
		return nil, apperr.Store("count overdue loans", err)
	}
	if err := db.Model(&models.Person{}).Count(&d.TotalPersons).Error; err != nil {
		return nil, apperr.Store("count persons", err)
	}
	if err := db.Model(&models.Loan{}).Count(&d.TotalLoans).Error; err != nil {
		return nil, apperr.Store("count loans", err)
	}
	return &d, nil
}

// AllAssets 供分类统计使用
func (r *Repo) AllAssets(ctx context.Context) ([]models.Asset, error) {
	var as []models.Asset
	if err := r.DB.WithContext(ctx).Order("nombre ASC").Find(&as).Error; err != nil {
		return nil, apperr.Store("list assets", err)
	}
	return as, nil
}

type ReportBy string

const (
	ReportByPerson ReportBy = "persona"
	ReportByAsset  ReportBy = "activo"
)

type ReportQuery struct {
	By   ReportBy
	ID   string // carnet 或 codigo_activo
	From *time.Time
	To   *time.Time
}

// LoanReport 某个人或某个资产的借用记录，按借出时间倒序
func (r *Repo) LoanReport(ctx context.Context, q ReportQuery) ([]models.Loan, error) {
	f := LoanFilter{From: q.From, To: q.To}
	switch q.By {
	case ReportByPerson:
		if q.ID == "" {
			return nil, apperr.New(apperr.Validation, "person id is required")
		}
		f.PersonID = q.ID
	case ReportByAsset:
		id, err := strconv.Atoi(q.ID)
		if err != nil {
			return nil, apperr.New(apperr.Validation, "invalid asset id %q", q.ID)
		}
		f.AssetID = &id
	default:
		return nil, apperr.New(apperr.Validation, "report must be by %q or %q", ReportByPerson, ReportByAsset)
	}
	return r.ListLoans(ctx, f)
}
