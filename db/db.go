package db

import (
	"fmt"
	"time"

	"Gin_postgres_redis_inventory/config"
	"Gin_postgres_redis_inventory/models"

	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func ConnectDB(cfg config.DatabaseConfig, log *zap.Logger) (*gorm.DB, error) {
	conn, err := gorm.Open(postgres.Open(cfg.DSN()), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	sqlDB, err := conn.DB()
	if err != nil {
		return nil, fmt.Errorf("postgres pool: %w", err)
	}
	if cfg.MaxConns > 0 {
		sqlDB.SetMaxOpenConns(cfg.MaxConns)
		sqlDB.SetMaxIdleConns(cfg.MaxConns)
	}
	sqlDB.SetConnMaxLifetime(30 * time.Minute)

	if err := Migrate(conn); err != nil {
		return nil, fmt.Errorf("migrate: %w", err)
	}
	log.Info("database connected", zap.String("host", cfg.Host), zap.String("db", cfg.Name))
	return conn, nil
}

func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&models.Location{},
		&models.Person{},
		&models.FacultyProfile{},
		&models.StaffProfile{},
		&models.StudentProfile{},
		&models.Asset{},
		&models.Loan{},
		&models.Movement{},
	); err != nil {
		return err
	}

	// 逾期扫描只看 pendiente + 有期限的借用
	if err := db.Exec(fmt.Sprintf(`
	  CREATE INDEX IF NOT EXISTS %s_pendiente_vence
	  ON %s (fecha_devolucion_esperada)
	  WHERE estado_prestamo = 'pendiente';
	`, models.LoanTable, models.LoanTable)).Error; err != nil {
		return err
	}

	// 按资产统计未归还数量
	if err := db.Exec(fmt.Sprintf(`
	  CREATE INDEX IF NOT EXISTS %s_activo_abierto
	  ON %s (codigo_activo)
	  WHERE estado_prestamo <> 'devuelto';
	`, models.LoanTable, models.LoanTable)).Error; err != nil {
		return err
	}

	// 登录按邮箱找 funcionario，同类型邮箱不区分大小写唯一
	if err := db.Exec(fmt.Sprintf(`
	  CREATE UNIQUE INDEX IF NOT EXISTS %s_correo_tipo
	  ON %s (LOWER(correo), tipo_persona)
	  WHERE correo IS NOT NULL;
	`, models.PersonTable, models.PersonTable)).Error; err != nil {
		return err
	}

	return nil
}
