// app/bootstrap.go
package app

import (
	"context"
	"errors"
	"fmt"

	"Gin_postgres_redis_inventory/apperr"
	"Gin_postgres_redis_inventory/auth"
	"Gin_postgres_redis_inventory/config"
	"Gin_postgres_redis_inventory/db"
	"Gin_postgres_redis_inventory/models"

	"go.uber.org/zap"
)

// BootstrapAdmin 首次启动时创建默认管理员（funcionario，等级 1）
// 返回是否新建
func BootstrapAdmin(ctx context.Context, cfg config.BootstrapConfig, repo *db.Repo, log *zap.Logger) (bool, error) {
	if cfg.Email == "" || cfg.Password == "" {
		return false, nil
	}

	if _, err := repo.FindPersonByEmail(ctx, cfg.Email, models.PersonStaff); err == nil {
		log.Info("bootstrap admin already present", zap.String("email", cfg.Email))
		return false, nil
	} else if !errors.Is(err, apperr.ErrNotFound) {
		return false, err
	}
	if _, err := repo.GetPerson(ctx, cfg.Carnet); err == nil {
		log.Warn("bootstrap carnet already used by another person, skipping", zap.String("carnet", cfg.Carnet))
		return false, nil
	} else if !errors.Is(err, apperr.ErrNotFound) {
		return false, err
	}

	hash, err := auth.HashPassword(cfg.Password)
	if err != nil {
		return false, err
	}
	email := cfg.Email
	p := &models.Person{ID: cfg.Carnet, Name: cfg.Name, Email: &email, PersonType: models.PersonStaff}
	staff := &models.StaffProfile{
		Role:            "Administrador del Sistema",
		Department:      "TI - Sistemas",
		PermissionLevel: models.PermissionAdmin,
		PasswordHash:    hash,
	}
	if err := repo.CreatePerson(ctx, p, staff); err != nil {
		return false, fmt.Errorf("bootstrap admin: %w", err)
	}
	log.Info("[BOOTSTRAP] default admin created", zap.String("carnet", cfg.Carnet), zap.String("email", cfg.Email))
	return true, nil
}
