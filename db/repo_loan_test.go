package db

import (
	"context"
	"errors"
	"testing"
	"time"

	"Gin_postgres_redis_inventory/apperr"
	"Gin_postgres_redis_inventory/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func TestCreateLoan_AllUnits(t *testing.T) {
	r := newTestRepo(t)
	ctx := context.Background()
	a := seedAsset(t, r, "Proyector", 2)
	seedStudent(t, r, "E-100", "Ana")

	loans, err := r.CreateLoan(ctx, CreateLoanInput{AssetID: a.ID, PersonID: "E-100", Quantity: 2})
	require.NoError(t, err)
	require.Len(t, loans, 2)
	for _, l := range loans {
		assert.Equal(t, models.LoanPending, l.Status)
		assert.NotZero(t, l.ID)
		assert.Nil(t, l.ReturnDate)
	}
	assert.Equal(t, 0, quantityOf(t, r, a.ID))

	_, err = r.CreateLoan(ctx, CreateLoanInput{AssetID: a.ID, PersonID: "E-100", Quantity: 1})
	assert.ErrorIs(t, err, apperr.ErrInsufficientQuantity)
	assert.Equal(t, 0, quantityOf(t, r, a.ID))
}

func TestCreateLoan_Rejections(t *testing.T) {
	r := newTestRepo(t)
	ctx := context.Background()
	a := seedAsset(t, r, "Taladro", 3)
	seedStudent(t, r, "E-1", "Luis")

	cases := []struct {
		name string
		in   CreateLoanInput
		want error
	}{
		{"unknown asset", CreateLoanInput{AssetID: 9999, PersonID: "E-1", Quantity: 1}, apperr.ErrAssetNotFound},
		{"zero units", CreateLoanInput{AssetID: a.ID, PersonID: "E-1", Quantity: 0}, apperr.ErrInsufficientQuantity},
		{"too many units", CreateLoanInput{AssetID: a.ID, PersonID: "E-1", Quantity: 4}, apperr.ErrInsufficientQuantity},
		{"unknown person", CreateLoanInput{AssetID: a.ID, PersonID: "nobody", Quantity: 1}, apperr.ErrNotFound},
		{"unknown location", CreateLoanInput{AssetID: a.ID, PersonID: "E-1", Quantity: 1, TemporaryLocationID: intPtr(777)}, apperr.ErrNotFound},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := r.CreateLoan(ctx, tc.in)
			require.Error(t, err)
			assert.ErrorIs(t, err, tc.want)
		})
	}

	// 失败不留下任何借用记录
	loans, err := r.ListLoans(ctx, LoanFilter{})
	require.NoError(t, err)
	assert.Empty(t, loans)
	assert.Equal(t, 3, quantityOf(t, r, a.ID))
}

func TestCreateLoan_StoresDeadlineAndLocation(t *testing.T) {
	r := newTestRepo(t)
	ctx := context.Background()
	now := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)
	r.Now = fixedClock(now)

	a := seedAsset(t, r, "Parlante", 1)
	loc := seedLocation(t, r, "Auditorio")
	seedStudent(t, r, "E-2", "Rosa")
	due := now.Add(48 * time.Hour)

	loans, err := r.CreateLoan(ctx, CreateLoanInput{
		AssetID: a.ID, PersonID: "E-2", Quantity: 1,
		ExpectedReturnDate: &due, TemporaryLocationID: &loc.ID,
	})
	require.NoError(t, err)

	got, err := r.GetLoan(ctx, loans[0].ID)
	require.NoError(t, err)
	require.NotNil(t, got.ExpectedReturnDate)
	assert.True(t, got.ExpectedReturnDate.Equal(due))
	assert.True(t, got.LoanDate.Equal(now))
	require.NotNil(t, got.TemporaryLocation)
	assert.Equal(t, "Auditorio", got.TemporaryLocation.RoomName)
	require.NotNil(t, got.Person)
	assert.Equal(t, "Rosa", got.Person.Name)
	require.NotNil(t, got.Asset)
	assert.Equal(t, "Parlante", got.Asset.Name)
}

func TestReturnLoan(t *testing.T) {
	r := newTestRepo(t)
	ctx := context.Background()
	a := seedAsset(t, r, "Laptop", 1)
	seedStudent(t, r, "E-3", "Carla")

	loans, err := r.CreateLoan(ctx, CreateLoanInput{AssetID: a.ID, PersonID: "E-3", Quantity: 1})
	require.NoError(t, err)
	require.Equal(t, 0, quantityOf(t, r, a.ID))

	l, err := r.ReturnLoan(ctx, loans[0].ID)
	require.NoError(t, err)
	assert.Equal(t, models.LoanReturned, l.Status)
	assert.NotNil(t, l.ReturnDate)
	assert.Equal(t, 1, quantityOf(t, r, a.ID))

	_, err = r.ReturnLoan(ctx, loans[0].ID)
	assert.ErrorIs(t, err, apperr.ErrReturnConflict)
	assert.Equal(t, 1, quantityOf(t, r, a.ID), "second return must not increment")

	_, err = r.ReturnLoan(ctx, 424242)
	assert.ErrorIs(t, err, apperr.ErrLoanNotFound)
}

func TestReturnLoan_Overdue(t *testing.T) {
	r := newTestRepo(t)
	ctx := context.Background()
	now := time.Date(2025, 5, 1, 12, 0, 0, 0, time.UTC)
	r.Now = fixedClock(now)
	a := seedAsset(t, r, "Sierra", 1)
	seedStudent(t, r, "E-4", "Mario")

	yesterday := now.Add(-24 * time.Hour)
	loans, err := r.CreateLoan(ctx, CreateLoanInput{AssetID: a.ID, PersonID: "E-4", Quantity: 1, ExpectedReturnDate: &yesterday})
	require.NoError(t, err)
	n, err := r.SweepOverdue(ctx, now)
	require.NoError(t, err)
	require.EqualValues(t, 1, n)

	l, err := r.ReturnLoan(ctx, loans[0].ID)
	require.NoError(t, err)
	assert.Equal(t, models.LoanReturned, l.Status)
	assert.Equal(t, 1, quantityOf(t, r, a.ID))
}

func TestSweepOverdue(t *testing.T) {
	r := newTestRepo(t)
	ctx := context.Background()
	now := time.Date(2025, 6, 15, 8, 30, 0, 0, time.UTC)
	r.Now = fixedClock(now)
	a := seedAsset(t, r, "Mesa", 5)
	seedStudent(t, r, "E-5", "Sofía")

	yesterday := now.Add(-24 * time.Hour)
	tomorrow := now.Add(24 * time.Hour)

	late, err := r.CreateLoan(ctx, CreateLoanInput{AssetID: a.ID, PersonID: "E-5", Quantity: 1, ExpectedReturnDate: &yesterday})
	require.NoError(t, err)
	onTime, err := r.CreateLoan(ctx, CreateLoanInput{AssetID: a.ID, PersonID: "E-5", Quantity: 1, ExpectedReturnDate: &tomorrow})
	require.NoError(t, err)
	open, err := r.CreateLoan(ctx, CreateLoanInput{AssetID: a.ID, PersonID: "E-5", Quantity: 1})
	require.NoError(t, err)
	returned, err := r.CreateLoan(ctx, CreateLoanInput{AssetID: a.ID, PersonID: "E-5", Quantity: 1, ExpectedReturnDate: &yesterday})
	require.NoError(t, err)
	_, err = r.ReturnLoan(ctx, returned[0].ID)
	require.NoError(t, err)

	n, err := r.SweepOverdue(ctx, now)
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)

	status := func(id int) models.LoanStatus {
		l, err := r.GetLoan(ctx, id)
		require.NoError(t, err)
		return l.Status
	}
	assert.Equal(t, models.LoanOverdue, status(late[0].ID))
	assert.Equal(t, models.LoanPending, status(onTime[0].ID))
	assert.Equal(t, models.LoanPending, status(open[0].ID))
	assert.Equal(t, models.LoanReturned, status(returned[0].ID))

	// 再扫一次没有变化
	n, err = r.SweepOverdue(ctx, now)
	require.NoError(t, err)
	assert.EqualValues(t, 0, n)
}

func TestSweepOverdue_MissingDeadlineColumn(t *testing.T) {
	r := newTestRepo(t)
	ctx := context.Background()
	require.NoError(t, r.DB.Exec("DROP INDEX IF EXISTS prestamo_pendiente_vence").Error)
	require.NoError(t, r.DB.Migrator().DropColumn(&models.Loan{}, "fecha_devolucion_esperada"))

	n, err := r.SweepOverdue(ctx, time.Now())
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestIsAssetAvailable(t *testing.T) {
	r := newTestRepo(t)
	ctx := context.Background()
	a := seedAsset(t, r, "Silla", 10)
	seedStudent(t, r, "E-6", "Pedro")

	ok, err := r.IsAssetAvailable(ctx, a.ID)
	require.NoError(t, err)
	assert.True(t, ok)

	loans, err := r.CreateLoan(ctx, CreateLoanInput{AssetID: a.ID, PersonID: "E-6", Quantity: 1})
	require.NoError(t, err)
	ok, err = r.IsAssetAvailable(ctx, a.ID)
	require.NoError(t, err)
	assert.False(t, ok, "any open loan makes the asset unavailable")

	_, err = r.ReturnLoan(ctx, loans[0].ID)
	require.NoError(t, err)
	ok, err = r.IsAssetAvailable(ctx, a.ID)
	require.NoError(t, err)
	assert.True(t, ok)

	_, err = r.IsAssetAvailable(ctx, 31337)
	assert.ErrorIs(t, err, apperr.ErrAssetNotFound)
}

func TestListLoans_Filters(t *testing.T) {
	r := newTestRepo(t)
	ctx := context.Background()
	base := time.Date(2025, 1, 1, 10, 0, 0, 0, time.UTC)
	a := seedAsset(t, r, "Cámara", 5)
	b := seedAsset(t, r, "Trípode", 5)
	seedStudent(t, r, "E-7", "Julia")
	seedStudent(t, r, "E-8", "Tomás")

	r.Now = fixedClock(base)
	_, err := r.CreateLoan(ctx, CreateLoanInput{AssetID: a.ID, PersonID: "E-7", Quantity: 1})
	require.NoError(t, err)
	r.Now = fixedClock(base.Add(24 * time.Hour))
	second, err := r.CreateLoan(ctx, CreateLoanInput{AssetID: b.ID, PersonID: "E-7", Quantity: 1})
	require.NoError(t, err)
	r.Now = fixedClock(base.Add(48 * time.Hour))
	_, err = r.CreateLoan(ctx, CreateLoanInput{AssetID: a.ID, PersonID: "E-8", Quantity: 2})
	require.NoError(t, err)
	_, err = r.ReturnLoan(ctx, second[0].ID)
	require.NoError(t, err)

	all, err := r.ListLoans(ctx, LoanFilter{})
	require.NoError(t, err)
	require.Len(t, all, 4)
	assert.True(t, !all[0].LoanDate.Before(all[len(all)-1].LoanDate), "newest first")

	byPerson, err := r.ListLoans(ctx, LoanFilter{PersonID: "E-7"})
	require.NoError(t, err)
	assert.Len(t, byPerson, 2)

	byAsset, err := r.ListLoans(ctx, LoanFilter{AssetID: &a.ID})
	require.NoError(t, err)
	assert.Len(t, byAsset, 3)

	from, to := base.Add(12*time.Hour), base.Add(36*time.Hour)
	ranged, err := r.ListLoans(ctx, LoanFilter{From: &from, To: &to})
	require.NoError(t, err)
	require.Len(t, ranged, 1)
	assert.Equal(t, b.ID, ranged[0].AssetID)

	active, err := r.ListActiveLoans(ctx)
	require.NoError(t, err)
	assert.Len(t, active, 3)
	for _, l := range active {
		assert.Equal(t, models.LoanPending, l.Status)
	}
}

// 任意借出/归还序列后：cantidad >= 0，且 cantidad + 未归还件数 = 初始数量
func TestLoanLifecycle_QuantityInvariant(t *testing.T) {
	r := newTestRepo(t)
	ctx := context.Background()
	seedStudent(t, r, "E-P", "Prop")

	rapid.Check(t, func(rt *rapid.T) {
		initial := rapid.IntRange(0, 6).Draw(rt, "initial")
		a := &models.Asset{Name: "prop", Category: models.CategoryOther, Condition: models.ConditionUsed, Quantity: initial}
		if err := r.CreateAsset(ctx, a); err != nil {
			rt.Fatalf("create asset: %v", err)
		}

		var open []int
		steps := rapid.IntRange(1, 25).Draw(rt, "steps")
		for i := 0; i < steps; i++ {
			if len(open) > 0 && rapid.Bool().Draw(rt, "return") {
				idx := rapid.IntRange(0, len(open)-1).Draw(rt, "idx")
				if _, err := r.ReturnLoan(ctx, open[idx]); err != nil {
					rt.Fatalf("return loan %d: %v", open[idx], err)
				}
				open = append(open[:idx], open[idx+1:]...)
			} else {
				n := rapid.IntRange(-1, 4).Draw(rt, "units")
				loans, err := r.CreateLoan(ctx, CreateLoanInput{AssetID: a.ID, PersonID: "E-P", Quantity: n})
				if err != nil {
					if !errors.Is(err, apperr.ErrInsufficientQuantity) {
						rt.Fatalf("unexpected error: %v", err)
					}
				} else {
					for _, l := range loans {
						open = append(open, l.ID)
					}
				}
			}

			got, err := r.GetAsset(ctx, a.ID)
			if err != nil {
				rt.Fatalf("get asset: %v", err)
			}
			if got.Quantity < 0 {
				rt.Fatalf("quantity went negative: %d", got.Quantity)
			}
			if got.Quantity+len(open) != initial {
				rt.Fatalf("quantity %d + open %d != initial %d", got.Quantity, len(open), initial)
			}
		}
	})
}
