// db/repo_loan.go
package db

import (
	"context"
	"time"

	"Gin_postgres_redis_inventory/apperr"
	"Gin_postgres_redis_inventory/models"

	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type CreateLoanInput struct {
	AssetID             int
	PersonID            string
	ExpectedReturnDate  *time.Time
	TemporaryLocationID *int
	// 借出件数，至少 1
	Quantity int
}

// 借出：原子操作 = 锁住 activo → 校验数量 → 每件一条 pendiente → 条件扣减 cantidad
func (r *Repo) CreateLoan(ctx context.Context, in CreateLoanInput) ([]models.Loan, error) {
	var loans []models.Loan
	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// 1) 锁住资产行
		var a models.Asset
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&a, "codigo_activo = ?", in.AssetID).Error; err != nil {
			return notFoundOr(err, apperr.AssetNotFound, "lock asset", "asset %d not found", in.AssetID)
		}
		// 2) 数量校验
		if in.Quantity <= 0 || in.Quantity > a.Quantity {
			return apperr.New(apperr.InsufficientQuantity,
				"requested %d units, %d available", in.Quantity, a.Quantity)
		}

		var n int64
		if err := tx.Model(&models.Person{}).Where("carnet = ?", in.PersonID).Count(&n).Error; err != nil {
			return apperr.Store("check person", err)
		}
		if n == 0 {
			return apperr.New(apperr.NotFound, "person %s not found", in.PersonID)
		}
		if err := locationExists(tx, in.TemporaryLocationID); err != nil {
			return err
		}

		// 3) 每件一条借用记录
		now := r.now()
		loans = make([]models.Loan, in.Quantity)
		for i := range loans {
			loans[i] = models.Loan{
				AssetID:             a.ID,
				PersonID:            in.PersonID,
				LoanDate:            now,
				ExpectedReturnDate:  utcPtr(in.ExpectedReturnDate),
				Status:              models.LoanPending,
				TemporaryLocationID: in.TemporaryLocationID,
			}
		}
		if err := tx.Create(&loans).Error; err != nil {
			return apperr.Store("insert loans", err)
		}

		// 4) 条件扣减，防并发超借
		res := tx.Model(&models.Asset{}).
			Where("codigo_activo = ? AND cantidad >= ?", a.ID, in.Quantity).
			UpdateColumn("cantidad", gorm.Expr("cantidad - ?", in.Quantity))
		if res.Error != nil {
			return apperr.Store("decrement quantity", res.Error)
		}
		if res.RowsAffected == 0 {
			return apperr.New(apperr.InsufficientQuantity, "asset %d no longer has %d units", a.ID, in.Quantity)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	r.Log.Info("loan created",
		zap.Int("asset", in.AssetID),
		zap.String("person", in.PersonID),
		zap.Int("units", in.Quantity))
	return loans, nil
}

// 归还：原子操作 = 完成 loan → cantidad + 1
func (r *Repo) ReturnLoan(ctx context.Context, loanID int) (*models.Loan, error) {
	var l models.Loan
	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&l, "codigo_prestamo = ?", loanID).Error; err != nil {
			return notFoundOr(err, apperr.LoanNotFound, "lock loan", "loan %d not found", loanID)
		}
		// 已归还不再加库存
		if l.Status == models.LoanReturned {
			return apperr.New(apperr.ReturnConflict, "loan %d was already returned", loanID)
		}

		now := r.now()
		res := tx.Model(&models.Loan{}).
			Where("codigo_prestamo = ? AND estado_prestamo <> ?", loanID, models.LoanReturned).
			Updates(map[string]any{
				"estado_prestamo":  models.LoanReturned,
				"fecha_devolucion": now,
			})
		if res.Error != nil {
			return apperr.Store("mark loan returned", res.Error)
		}
		if res.RowsAffected == 0 {
			return apperr.New(apperr.ReturnConflict, "loan %d was already returned", loanID)
		}

		if err := tx.Model(&models.Asset{}).
			Where("codigo_activo = ?", l.AssetID).
			UpdateColumn("cantidad", gorm.Expr("cantidad + 1")).Error; err != nil {
			return apperr.Store("increment quantity", err)
		}
		l.Status = models.LoanReturned
		l.ReturnDate = &now
		return nil
	})
	if err != nil {
		return nil, err
	}
	r.Log.Info("loan returned", zap.Int("loan", l.ID), zap.Int("asset", l.AssetID))
	return &l, nil
}

// SweepOverdue 把已过期限的 pendiente 标为 retraso；没有期限的不动
func (r *Repo) SweepOverdue(ctx context.Context, now time.Time) (int64, error) {
	if !r.DB.WithContext(ctx).Migrator().HasColumn(&models.Loan{}, "fecha_devolucion_esperada") {
		r.Log.Warn("overdue sweep skipped: deadline column missing",
			zap.String("table", models.LoanTable))
		return 0, nil
	}
	res := r.DB.WithContext(ctx).Model(&models.Loan{}).
		Where("estado_prestamo = ? AND fecha_devolucion_esperada IS NOT NULL AND fecha_devolucion_esperada < ?",
			models.LoanPending, now.UTC()).
		Update("estado_prestamo", models.LoanOverdue)
	if res.Error != nil {
		return 0, apperr.Store("sweep overdue", res.Error)
	}
	if res.RowsAffected > 0 {
		r.Log.Info("overdue loans marked", zap.Int64("count", res.RowsAffected))
	}
	return res.RowsAffected, nil
}

// 汇总：该资产是否没有未归还借用（仅供展示，以 cantidad 为准）
func (r *Repo) IsAssetAvailable(ctx context.Context, assetID int) (bool, error) {
	var n int64
	if err := r.DB.WithContext(ctx).Model(&models.Asset{}).
		Where("codigo_activo = ?", assetID).Count(&n).Error; err != nil {
		return false, apperr.Store("check asset", err)
	}
	if n == 0 {
		return false, apperr.New(apperr.AssetNotFound, "asset %d not found", assetID)
	}
	if err := r.DB.WithContext(ctx).Model(&models.Loan{}).
		Where("codigo_activo = ? AND estado_prestamo IN ?", assetID,
			[]models.LoanStatus{models.LoanPending, models.LoanOverdue}).
		Count(&n).Error; err != nil {
		return false, apperr.Store("count open loans", err)
	}
	return n == 0, nil
}

type LoanFilter struct {
	PersonID string
	AssetID  *int
	Status   models.LoanStatus
	// 按 fecha_prestamo 过滤，[From, To]
	From *time.Time
	To   *time.Time
}

func (r *Repo) ListLoans(ctx context.Context, f LoanFilter) ([]models.Loan, error) {
	q := r.DB.WithContext(ctx).Model(&models.Loan{}).
		Preload("Asset").Preload("Person").Preload("TemporaryLocation")
	if f.PersonID != "" {
		q = q.Where("carnet_persona = ?", f.PersonID)
	}
	if f.AssetID != nil {
		q = q.Where("codigo_activo = ?", *f.AssetID)
	}
	if f.Status != "" {
		q = q.Where("estado_prestamo = ?", f.Status)
	}
	if f.From != nil {
		q = q.Where("fecha_prestamo >= ?", f.From.UTC())
	}
	if f.To != nil {
		q = q.Where("fecha_prestamo <= ?", f.To.UTC())
	}
	var ls []models.Loan
	if err := q.Order("fecha_prestamo DESC, codigo_prestamo DESC").Find(&ls).Error; err != nil {
		return nil, apperr.Store("list loans", err)
	}
	return ls, nil
}

// ListActiveLoans 只列 pendiente（逾期的走 Status=retraso 过滤）
func (r *Repo) ListActiveLoans(ctx context.Context) ([]models.Loan, error) {
	return r.ListLoans(ctx, LoanFilter{Status: models.LoanPending})
}

func (r *Repo) GetLoan(ctx context.Context, id int) (*models.Loan, error) {
	var l models.Loan
	err := r.DB.WithContext(ctx).
		Preload("Asset").Preload("Person").Preload("TemporaryLocation").
		First(&l, "codigo_prestamo = ?", id).Error
	if err != nil {
		return nil, notFoundOr(err, apperr.LoanNotFound, "get loan", "loan %d not found", id)
	}
	return &l, nil
}
