package auth

import "Gin_postgres_redis_inventory/models"

// Authorize 等级数值越小权限越大
func Authorize(id Identity, required int) bool {
	return id.PermissionLevel >= models.PermissionAdmin && id.PermissionLevel <= required
}

func CanCreate(id Identity) bool { return Authorize(id, models.PermissionAdmin) }
func CanEdit(id Identity) bool   { return Authorize(id, models.PermissionAdmin) }
func CanDelete(id Identity) bool { return Authorize(id, models.PermissionAdmin) }
func CanView(id Identity) bool   { return Authorize(id, models.PermissionReadOnly) }

func LevelName(level int) string {
	switch level {
	case models.PermissionAdmin:
		return "Administrador"
	case models.PermissionReadOnly:
		return "Solo Lectura"
	default:
		return "Desconocido"
	}
}
