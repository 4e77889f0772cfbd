package auth

import (
	"context"
	"strings"
	"testing"
	"time"

	"Gin_postgres_redis_inventory/apperr"
	"Gin_postgres_redis_inventory/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeStore struct {
	persons map[string]*models.Person // key: lower email
	staff   map[string]*models.StaffProfile
}

func (f *fakeStore) FindPersonByEmail(_ context.Context, email string, t models.PersonType) (*models.Person, error) {
	p, ok := f.persons[strings.ToLower(email)]
	if !ok || p.PersonType != t {
		return nil, apperr.New(apperr.NotFound, "no person")
	}
	return p, nil
}

func (f *fakeStore) FindStaffProfile(_ context.Context, id string) (*models.StaffProfile, error) {
	s, ok := f.staff[id]
	if !ok {
		return nil, apperr.New(apperr.NotFound, "no staff")
	}
	return s, nil
}

func newFakeStore(t *testing.T) *fakeStore {
	t.Helper()
	hash, err := HashPassword("secreto123")
	require.NoError(t, err)

	email := func(s string) *string { return &s }
	return &fakeStore{
		persons: map[string]*models.Person{
			"admin@uni.edu":  {ID: "F-1", Name: "Admin", Email: email("admin@uni.edu"), PersonType: models.PersonStaff},
			"lector@uni.edu": {ID: "F-2", Name: "Lector", Email: email("lector@uni.edu"), PersonType: models.PersonStaff},
			"nopass@uni.edu": {ID: "F-3", Name: "Sin Clave", Email: email("nopass@uni.edu"), PersonType: models.PersonStaff},
			"orphan@uni.edu": {ID: "F-4", Name: "Huérfano", Email: email("orphan@uni.edu"), PersonType: models.PersonStaff},
			"alumno@uni.edu": {ID: "E-1", Name: "Alumno", Email: email("alumno@uni.edu"), PersonType: models.PersonStudent},
		},
		staff: map[string]*models.StaffProfile{
			"F-1": {PersonID: "F-1", Role: "Jefe", Department: "TI", PermissionLevel: 1, PasswordHash: hash},
			"F-2": {PersonID: "F-2", Role: "Asistente", Department: "TI", PermissionLevel: 2, PasswordHash: hash},
			"F-3": {PersonID: "F-3", Role: "Asistente", Department: "TI", PermissionLevel: 2},
		},
	}
}

func TestAuthenticate(t *testing.T) {
	svc := NewService(newFakeStore(t), 0, zap.NewNop())
	ctx := context.Background()

	id, err := svc.Authenticate(ctx, " Admin@Uni.edu ", "secreto123")
	require.NoError(t, err)
	assert.Equal(t, Identity{
		ID: "F-1", Name: "Admin", Email: "admin@uni.edu",
		Role: "Jefe", Department: "TI", PermissionLevel: 1,
	}, id)

	cases := []struct {
		name, email, password string
		want                  error
	}{
		{"wrong password", "admin@uni.edu", "otra", apperr.ErrInvalidCredentials},
		{"unknown email", "nadie@uni.edu", "secreto123", apperr.ErrInvalidCredentials},
		{"not staff", "alumno@uni.edu", "secreto123", apperr.ErrInvalidCredentials},
		{"no staff profile", "orphan@uni.edu", "secreto123", apperr.ErrInvalidCredentials},
		{"no password", "nopass@uni.edu", "secreto123", apperr.ErrNoPasswordConfigured},
		{"empty password", "admin@uni.edu", "", apperr.ErrInvalidCredentials},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.Authenticate(ctx, tc.email, tc.password)
			assert.ErrorIs(t, err, tc.want)
		})
	}
}

func TestAuthenticateThenAuthorize(t *testing.T) {
	svc := NewService(newFakeStore(t), 0, zap.NewNop())
	ctx := context.Background()

	admin, err := svc.Authenticate(ctx, "admin@uni.edu", "secreto123")
	require.NoError(t, err)
	assert.True(t, Authorize(admin, 1))
	assert.True(t, Authorize(admin, 2))

	reader, err := svc.Authenticate(ctx, "lector@uni.edu", "secreto123")
	require.NoError(t, err)
	assert.False(t, Authorize(reader, 1))
	assert.True(t, Authorize(reader, 2))
}

func TestAuthenticate_RateLimited(t *testing.T) {
	svc := NewService(newFakeStore(t), 2, zap.NewNop())
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	svc.Now = func() time.Time { return now }
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		_, err := svc.Authenticate(ctx, "admin@uni.edu", "mal")
		assert.ErrorIs(t, err, apperr.ErrInvalidCredentials)
	}
	_, err := svc.Authenticate(ctx, "admin@uni.edu", "secreto123")
	assert.ErrorIs(t, err, apperr.ErrRateLimited)

	// 其它邮箱不受影响
	_, err = svc.Authenticate(ctx, "lector@uni.edu", "secreto123")
	assert.NoError(t, err)

	now = now.Add(time.Minute)
	_, err = svc.Authenticate(ctx, "admin@uni.edu", "secreto123")
	assert.NoError(t, err)
}

func TestHashPassword(t *testing.T) {
	h, err := HashPassword("abc")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(h, "$2a$10$"))

	_, err = HashPassword("")
	assert.ErrorIs(t, err, apperr.ErrValidation)
}

func TestPermissionHelpers(t *testing.T) {
	admin := Identity{PermissionLevel: 1}
	reader := Identity{PermissionLevel: 2}
	var anon Identity

	assert.True(t, CanCreate(admin))
	assert.True(t, CanEdit(admin))
	assert.True(t, CanDelete(admin))
	assert.True(t, CanView(admin))

	assert.False(t, CanCreate(reader))
	assert.False(t, CanEdit(reader))
	assert.False(t, CanDelete(reader))
	assert.True(t, CanView(reader))

	assert.False(t, CanView(anon))

	assert.Equal(t, "Administrador", LevelName(1))
	assert.Equal(t, "Solo Lectura", LevelName(2))
	assert.Equal(t, "Desconocido", LevelName(7))
}
