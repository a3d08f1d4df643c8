package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/Freeeeeet/tutor_market/internal/model"
	"github.com/Freeeeeet/tutor_market/internal/repository/memory"
)

func newReservationFixture(t *testing.T, holdTTL time.Duration) (*memory.Store, *ReservationService, *model.Slot, *model.User, *model.User) {
	t.Helper()
	ctx := context.Background()
	store := memory.NewStore()
	logger := zap.NewNop()

	tutor := &model.User{Role: model.RoleTutor, FirstName: "Anna"}
	require.NoError(t, store.Users().Create(ctx, tutor))
	student := &model.User{Role: model.RoleStudent, FirstName: "Boris"}
	require.NoError(t, store.Users().Create(ctx, student))

	start := time.Date(2025, 11, 10, 10, 0, 0, 0, time.UTC)
	slot := &model.Slot{
		TutorID:   tutor.ID,
		Date:      start.Truncate(24 * time.Hour),
		StartTime: start,
		EndTime:   start.Add(time.Hour),
		State:     model.SlotStateFree,
	}
	require.NoError(t, store.Slots().Create(ctx, slot))

	svc := NewReservationService(store.Slots(), store.Reservations(), holdTTL, logger)
	return store, svc, slot, tutor, student
}

func TestReserve_Exclusivity(t *testing.T) {
	ctx := context.Background()
	_, svc, slot, tutor, _ := newReservationFixture(t, 15*time.Minute)

	const attempts = 50

	var wg sync.WaitGroup
	results := make(chan error, attempts)

	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(studentID int64) {
			defer wg.Done()
			_, err := svc.Reserve(ctx, tutor.ID, slot.ID, studentID)
			results <- err
		}(int64(100 + i))
	}

	wg.Wait()
	close(results)

	var won, lost int
	for err := range results {
		switch {
		case err == nil:
			won++
		case assert.ErrorIs(t, err, ErrSlotUnavailable):
			lost++
		}
	}

	assert.Equal(t, 1, won, "exactly one concurrent reserve must win")
	assert.Equal(t, attempts-1, lost)
}

func TestReserveAndRelease_NoOrphans(t *testing.T) {
	ctx := context.Background()
	store, svc, slot, tutor, student := newReservationFixture(t, 15*time.Minute)

	res, err := svc.Reserve(ctx, tutor.ID, slot.ID, student.ID)
	require.NoError(t, err)
	assert.Equal(t, student.ID, res.StudentID)
	assert.WithinDuration(t, time.Now().Add(15*time.Minute), res.ExpiresAt, time.Minute)

	held, err := store.Slots().GetByID(ctx, slot.ID)
	require.NoError(t, err)
	assert.Equal(t, model.SlotStateHeld, held.State)

	require.NoError(t, svc.Release(ctx, tutor.ID, slot.ID, student.ID))

	freed, err := store.Slots().GetByID(ctx, slot.ID)
	require.NoError(t, err)
	assert.Equal(t, model.SlotStateFree, freed.State)

	remaining, err := store.Reservations().GetBySlot(ctx, slot.ID)
	require.NoError(t, err)
	assert.Nil(t, remaining, "no reservation row may remain after release")
}

func TestRelease_Idempotent(t *testing.T) {
	ctx := context.Background()
	_, svc, slot, tutor, student := newReservationFixture(t, 15*time.Minute)

	_, err := svc.Reserve(ctx, tutor.ID, slot.ID, student.ID)
	require.NoError(t, err)

	require.NoError(t, svc.Release(ctx, tutor.ID, slot.ID, student.ID))
	// Повторное снятие уже снятой брони - успех, не ошибка
	require.NoError(t, svc.Release(ctx, tutor.ID, slot.ID, student.ID))
}

func TestRelease_NotHeldByCaller(t *testing.T) {
	ctx := context.Background()
	store, svc, slot, tutor, student := newReservationFixture(t, 15*time.Minute)

	_, err := svc.Reserve(ctx, tutor.ID, slot.ID, student.ID)
	require.NoError(t, err)

	err = svc.Release(ctx, tutor.ID, slot.ID, student.ID+1)
	assert.ErrorIs(t, err, ErrNotHeldByCaller)

	// Бронь не пострадала
	held, err := store.Slots().GetByID(ctx, slot.ID)
	require.NoError(t, err)
	assert.Equal(t, model.SlotStateHeld, held.State)
}

func TestReserve_LostRaceOnHeldSlot(t *testing.T) {
	ctx := context.Background()
	_, svc, slot, tutor, student := newReservationFixture(t, 15*time.Minute)

	_, err := svc.Reserve(ctx, tutor.ID, slot.ID, student.ID)
	require.NoError(t, err)

	_, err = svc.Reserve(ctx, tutor.ID, slot.ID, student.ID+1)
	assert.ErrorIs(t, err, ErrSlotUnavailable)
}

func TestReserve_UnknownSlot(t *testing.T) {
	ctx := context.Background()
	_, svc, slot, tutor, student := newReservationFixture(t, 15*time.Minute)

	_, err := svc.Reserve(ctx, tutor.ID, slot.ID+100, student.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	// Слот чужого репетитора неотличим от несуществующего
	_, err = svc.Reserve(ctx, tutor.ID+100, slot.ID, student.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestReserve_ExpiredHoldIsReclaimed(t *testing.T) {
	ctx := context.Background()
	store, svc, slot, tutor, student := newReservationFixture(t, 10*time.Millisecond)

	first, err := svc.Reserve(ctx, tutor.ID, slot.ID, student.ID)
	require.NoError(t, err)

	time.Sleep(20 * time.Millisecond)

	// Истёкшая бронь снимается лениво прямо на пути Reserve
	second, err := svc.Reserve(ctx, tutor.ID, slot.ID, student.ID+1)
	require.NoError(t, err)
	assert.NotEqual(t, first.ID, second.ID)
	assert.Equal(t, student.ID+1, second.StudentID)

	held, err := store.Slots().GetByID(ctx, slot.ID)
	require.NoError(t, err)
	assert.Equal(t, model.SlotStateHeld, held.State)
}

func TestSweepExpired(t *testing.T) {
	ctx := context.Background()
	store, svc, slot, tutor, student := newReservationFixture(t, 10*time.Millisecond)

	_, err := svc.Reserve(ctx, tutor.ID, slot.ID, student.ID)
	require.NoError(t, err)

	time.Sleep(20 * time.Millisecond)

	released, err := svc.SweepExpired(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, released)

	freed, err := store.Slots().GetByID(ctx, slot.ID)
	require.NoError(t, err)
	assert.Equal(t, model.SlotStateFree, freed.State)

	remaining, err := store.Reservations().GetBySlot(ctx, slot.ID)
	require.NoError(t, err)
	assert.Nil(t, remaining)

	// Повторная зачистка ничего не находит
	released, err = svc.SweepExpired(ctx)
	require.NoError(t, err)
	assert.Zero(t, released)
}

func TestGetLive(t *testing.T) {
	ctx := context.Background()
	_, svc, slot, tutor, student := newReservationFixture(t, 15*time.Minute)

	_, err := svc.GetLive(ctx, tutor.ID, slot.ID, student.ID)
	assert.ErrorIs(t, err, ErrReservationExpired)

	res, err := svc.Reserve(ctx, tutor.ID, slot.ID, student.ID)
	require.NoError(t, err)

	live, err := svc.GetLive(ctx, tutor.ID, slot.ID, student.ID)
	require.NoError(t, err)
	assert.Equal(t, res.ID, live.ID)

	// Чужую бронь получить нельзя
	_, err = svc.GetLive(ctx, tutor.ID, slot.ID, student.ID+1)
	assert.ErrorIs(t, err, ErrReservationExpired)
}
