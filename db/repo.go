package db

import (
	"errors"
	"time"

	"Gin_postgres_redis_inventory/apperr"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Repo struct {
	DB  *gorm.DB
	Log *zap.Logger
	// Now 可在测试中替换
	Now func() time.Time
}

func NewRepo(db *gorm.DB, log *zap.Logger) *Repo {
	if log == nil {
		log = zap.NewNop()
	}
	return &Repo{DB: db, Log: log, Now: func() time.Time { return time.Now().UTC() }}
}

func (r *Repo) now() time.Time { return r.Now().UTC() }

// notFoundOr 把 gorm.ErrRecordNotFound 转成指定错误类型，其它错误按存储错误包装
func notFoundOr(err error, kind apperr.Kind, op string, format string, args ...any) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return apperr.New(kind, format, args...)
	}
	return apperr.Store(op, err)
}

func utcPtr(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	u := t.UTC()
	return &u
}
