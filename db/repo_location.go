package db

import (
	"context"
	"strings"

	"Gin_postgres_redis_inventory/apperr"
	"Gin_postgres_redis_inventory/models"

	"gorm.io/gorm"
)

func (r *Repo) CreateLocation(ctx context.Context, l *models.Location) error {
	if strings.TrimSpace(l.RoomName) == "" {
		return apperr.New(apperr.Validation, "room name is required")
	}
	if err := r.DB.WithContext(ctx).Create(l).Error; err != nil {
		return apperr.Store("insert location", err)
	}
	return nil
}

// locationExists 在事务内确认 ubicacion 存在，nil 视为未指定
func locationExists(tx *gorm.DB, id *int) error {
	if id == nil {
		return nil
	}
	var n int64
	if err := tx.Model(&models.Location{}).Where("codigo_ubicacion = ?", *id).Count(&n).Error; err != nil {
		return apperr.Store("check location", err)
	}
	if n == 0 {
		return apperr.New(apperr.NotFound, "location %d not found", *id)
	}
	return nil
}

func (r *Repo) GetLocation(ctx context.Context, id int) (*models.Location, error) {
	var l models.Location
	if err := r.DB.WithContext(ctx).First(&l, "codigo_ubicacion = ?", id).Error; err != nil {
		return nil, notFoundOr(err, apperr.NotFound, "get location", "location %d not found", id)
	}
	return &l, nil
}

func (r *Repo) ListLocations(ctx context.Context) ([]models.Location, error) {
	var ls []models.Location
	if err := r.DB.WithContext(ctx).Order("bloque ASC, nombre_ambiente ASC").Find(&ls).Error; err != nil {
		return nil, apperr.Store("list locations", err)
	}
	return ls, nil
}

type LocationPatch struct {
	RoomName *string
	Floor    *string
	Block    *string
}

func (r *Repo) UpdateLocation(ctx context.Context, id int, patch LocationPatch) (*models.Location, error) {
	updates := map[string]any{}
	if patch.RoomName != nil {
		if strings.TrimSpace(*patch.RoomName) == "" {
			return nil, apperr.New(apperr.Validation, "room name cannot be empty")
		}
		updates["nombre_ambiente"] = *patch.RoomName
	}
	if patch.Floor != nil {
		updates["piso"] = *patch.Floor
	}
	if patch.Block != nil {
		updates["bloque"] = *patch.Block
	}
	if _, err := r.GetLocation(ctx, id); err != nil {
		return nil, err
	}
	if len(updates) > 0 {
		if err := r.DB.WithContext(ctx).Model(&models.Location{}).
			Where("codigo_ubicacion = ?", id).
			Updates(updates).Error; err != nil {
			return nil, apperr.Store("update location", err)
		}
	}
	return r.GetLocation(ctx, id)
}

// DeleteLocation 被资产或借用引用时拒绝删除
func (r *Repo) DeleteLocation(ctx context.Context, id int) error {
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var l models.Location
		if err := tx.First(&l, "codigo_ubicacion = ?", id).Error; err != nil {
			return notFoundOr(err, apperr.NotFound, "get location", "location %d not found", id)
		}
		var assets, loans int64
		if err := tx.Model(&models.Asset{}).Where("ubicacion_actual = ?", id).Count(&assets).Error; err != nil {
			return apperr.Store("count assets", err)
		}
		if err := tx.Model(&models.Loan{}).Where("ubicacion_temporal = ?", id).Count(&loans).Error; err != nil {
			return apperr.Store("count loans", err)
		}
		if assets > 0 || loans > 0 {
			return apperr.New(apperr.ReferenceConflict, "location %d is referenced by %d assets and %d loans", id, assets, loans)
		}
		if err := tx.Where("codigo_ubicacion = ?", id).Delete(&models.Location{}).Error; err != nil {
			return apperr.Store("delete location", err)
		}
		return nil
	})
}
