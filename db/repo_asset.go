// db/repo_asset.go
package db

import (
	"context"
	"strings"
	"time"

	"Gin_postgres_redis_inventory/apperr"
	"Gin_postgres_redis_inventory/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// AssetRow 资产列表视图，附带所在位置的展示字段
type AssetRow struct {
	ID                int              `json:"id"`
	Name              string           `json:"name"`
	Description       *string          `json:"description,omitempty"`
	Category          models.Category  `json:"category"`
	Condition         models.Condition `json:"condition"`
	Quantity          int              `json:"quantity"`
	CurrentLocationID *int             `json:"currentLocationId,omitempty"`
	RegisteredAt      time.Time        `json:"registeredAt"`

	LocationRoomName *string `json:"locationRoomName,omitempty"`
	LocationBlock    *string `json:"locationBlock,omitempty"`
}

type AssetQuery struct {
	Q             string // 模糊搜索：nombre/descripcion
	Category      models.Category
	OnlyAvailable bool // cantidad > 0
}

const assetRowSelect = `
	a.codigo_activo    AS id,
	a.nombre           AS name,
	a.descripcion      AS description,
	a.categoria        AS category,
	a.estado           AS condition,
	a.cantidad         AS quantity,
	a.ubicacion_actual AS current_location_id,
	a.fecha_registro   AS registered_at,
	u.nombre_ambiente  AS location_room_name,
	u.bloque           AS location_block
`

func (r *Repo) CreateAsset(ctx context.Context, a *models.Asset) error {
	a.ID = 0
	a.CurrentLocation = nil
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := locationExists(tx, a.CurrentLocationID); err != nil {
			return err
		}
		if err := tx.Create(a).Error; err != nil {
			return apperr.Store("insert asset", err)
		}
		return nil
	})
}

func (r *Repo) GetAsset(ctx context.Context, id int) (*models.Asset, error) {
	var a models.Asset
	if err := r.DB.WithContext(ctx).Preload("CurrentLocation").First(&a, "codigo_activo = ?", id).Error; err != nil {
		return nil, notFoundOr(err, apperr.AssetNotFound, "get asset", "asset %d not found", id)
	}
	return &a, nil
}

func (r *Repo) ListAssets(ctx context.Context, q AssetQuery) ([]AssetRow, error) {
	qry := r.DB.WithContext(ctx).
		Table(models.AssetTable + " a").
		Select(assetRowSelect).
		Joins("LEFT JOIN " + models.LocationTable + " u ON u.codigo_ubicacion = a.ubicacion_actual")

	if s := strings.TrimSpace(q.Q); s != "" {
		pat := "%" + strings.ToLower(s) + "%"
		qry = qry.Where("LOWER(a.nombre) LIKE ? OR LOWER(COALESCE(a.descripcion, '')) LIKE ?", pat, pat)
	}
	if q.Category != "" {
		qry = qry.Where("a.categoria = ?", q.Category)
	}
	if q.OnlyAvailable {
		qry = qry.Where("a.cantidad > 0")
	}

	var rows []AssetRow
	if err := qry.Order("a.fecha_registro DESC, a.codigo_activo DESC").Scan(&rows).Error; err != nil {
		return nil, apperr.Store("list assets", err)
	}
	return rows, nil
}

// AssetPatch 中 nil 字段保持不变；ClearLocation 把当前位置置空
type AssetPatch struct {
	Name              *string
	Description       *string
	Category          *models.Category
	Condition         *models.Condition
	Quantity          *int
	CurrentLocationID *int
	ClearLocation     bool
	// 位置变更时写入 movimiento.motivo
	MoveReason *string
}

// UpdateAsset 位置发生变化时同一事务内记一条 Movement
func (r *Repo) UpdateAsset(ctx context.Context, id int, patch AssetPatch) (*models.Asset, error) {
	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var a models.Asset
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&a, "codigo_activo = ?", id).Error; err != nil {
			return notFoundOr(err, apperr.AssetNotFound, "lock asset", "asset %d not found", id)
		}

		updates := map[string]any{}
		if patch.Name != nil {
			updates["nombre"] = *patch.Name
		}
		if patch.Description != nil {
			updates["descripcion"] = *patch.Description
		}
		if patch.Category != nil {
			updates["categoria"] = *patch.Category
		}
		if patch.Condition != nil {
			updates["estado"] = *patch.Condition
		}
		if patch.Quantity != nil {
			updates["cantidad"] = *patch.Quantity
		}

		var newLoc *int
		moved := false
		switch {
		case patch.ClearLocation:
			moved = a.CurrentLocationID != nil
			updates["ubicacion_actual"] = nil
		case patch.CurrentLocationID != nil:
			if err := locationExists(tx, patch.CurrentLocationID); err != nil {
				return err
			}
			newLoc = patch.CurrentLocationID
			moved = a.CurrentLocationID == nil || *a.CurrentLocationID != *newLoc
			updates["ubicacion_actual"] = *newLoc
		}

		if len(updates) > 0 {
			if err := tx.Model(&models.Asset{}).Where("codigo_activo = ?", id).Updates(updates).Error; err != nil {
				return apperr.Store("update asset", err)
			}
		}
		if moved {
			m := models.Movement{
				AssetID:        id,
				FromLocationID: a.CurrentLocationID,
				ToLocationID:   newLoc,
				MovedAt:        r.now(),
				Reason:         patch.MoveReason,
			}
			if err := tx.Create(&m).Error; err != nil {
				return apperr.Store("insert movement", err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return r.GetAsset(ctx, id)
}

// DeleteAsset 仍有未归还借用时拒绝；否则连同历史借用和移动记录一起删除
func (r *Repo) DeleteAsset(ctx context.Context, id int) error {
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var a models.Asset
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&a, "codigo_activo = ?", id).Error; err != nil {
			return notFoundOr(err, apperr.AssetNotFound, "lock asset", "asset %d not found", id)
		}
		var open int64
		if err := tx.Model(&models.Loan{}).
			Where("codigo_activo = ? AND estado_prestamo <> ?", id, models.LoanReturned).
			Count(&open).Error; err != nil {
			return apperr.Store("count open loans", err)
		}
		if open > 0 {
			return apperr.New(apperr.ReferenceConflict, "asset %d has %d units on loan", id, open)
		}
		if err := tx.Where("codigo_activo = ?", id).Delete(&models.Loan{}).Error; err != nil {
			return apperr.Store("delete loan history", err)
		}
		if err := tx.Where("codigo_activo = ?", id).Delete(&models.Movement{}).Error; err != nil {
			return apperr.Store("delete movements", err)
		}
		if err := tx.Where("codigo_activo = ?", id).Delete(&models.Asset{}).Error; err != nil {
			return apperr.Store("delete asset", err)
		}
		return nil
	})
}

func (r *Repo) ListMovements(ctx context.Context, assetID int) ([]models.Movement, error) {
	if _, err := r.GetAsset(ctx, assetID); err != nil {
		return nil, err
	}
	var ms []models.Movement
	if err := r.DB.WithContext(ctx).
		Where("codigo_activo = ?", assetID).
		Order("fecha_movimiento DESC, codigo_movimiento DESC").
		Find(&ms).Error; err != nil {
		return nil, apperr.Store("list movements", err)
	}
	return ms, nil
}
