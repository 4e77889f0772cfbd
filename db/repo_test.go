package db

import (
	"context"
	"testing"
	"time"

	"Gin_postgres_redis_inventory/db/dbtest"
	"Gin_postgres_redis_inventory/models"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// newTestRepo 每个测试一个独立的内存库
func newTestRepo(t *testing.T) *Repo {
	t.Helper()
	conn := dbtest.Open(t)
	require.NoError(t, Migrate(conn))
	return NewRepo(conn, zap.NewNop())
}

func strPtr(s string) *string { return &s }
func intPtr(i int) *int       { return &i }

func seedLocation(t *testing.T, r *Repo, room string) *models.Location {
	t.Helper()
	l := &models.Location{RoomName: room, Block: strPtr("A"), Floor: strPtr("1")}
	require.NoError(t, r.CreateLocation(context.Background(), l))
	return l
}

func seedAsset(t *testing.T, r *Repo, name string, qty int) *models.Asset {
	t.Helper()
	a := &models.Asset{
		Name:      name,
		Category:  models.CategoryComputing,
		Condition: models.ConditionNew,
		Quantity:  qty,
	}
	require.NoError(t, r.CreateAsset(context.Background(), a))
	return a
}

func seedStudent(t *testing.T, r *Repo, carnet, name string) *models.Person {
	t.Helper()
	p := &models.Person{ID: carnet, Name: name, PersonType: models.PersonStudent}
	require.NoError(t, r.CreatePerson(context.Background(), p, &models.StudentProfile{Major: strPtr("Sistemas")}))
	return p
}

func seedStaff(t *testing.T, r *Repo, carnet, email string, level int, hash string) *models.Person {
	t.Helper()
	p := &models.Person{ID: carnet, Name: "Staff " + carnet, Email: &email, PersonType: models.PersonStaff}
	require.NoError(t, r.CreatePerson(context.Background(), p, &models.StaffProfile{
		Role:            "Encargado",
		Department:      "Almacén",
		PermissionLevel: level,
		PasswordHash:    hash,
	}))
	return p
}

func quantityOf(t *testing.T, r *Repo, id int) int {
	t.Helper()
	a, err := r.GetAsset(context.Background(), id)
	require.NoError(t, err)
	return a.Quantity
}

func fixedClock(ts time.Time) func() time.Time {
	return func() time.Time { return ts }
}
