package app

import (
	"errors"

	"Gin_postgres_redis_inventory/apperr"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// RespondError 统一错误格式：{"error":{"message","code"}}
func RespondError(c *gin.Context, log *zap.Logger, err error) {
	kind := apperr.KindOf(err)
	status := apperr.HTTPStatus(kind)

	msg := err.Error()
	if kind == apperr.StoreError {
		// 存储层细节只进日志
		msg = "store error"
		var ae *apperr.Error
		if errors.As(err, &ae) && ae.Message != "" {
			msg += ": " + ae.Message
		}
	}
	if status >= 500 && log != nil {
		log.Error("request failed", zap.String("path", c.Request.URL.Path), zap.Error(err))
	}
	c.AbortWithStatusJSON(status, H{"error": H{"message": msg, "code": string(kind)}})
}
