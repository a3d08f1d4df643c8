package memory

import (
	"context"
	"time"

	"github.com/Freeeeeet/tutor_market/internal/model"
	"github.com/google/uuid"
)

type ReservationStore struct {
	s *Store
}

// Create создаёт бронь слота
func (st *ReservationStore) Create(ctx context.Context, res *model.Reservation) error {
	st.s.mu.Lock()
	defer st.s.mu.Unlock()

	cp := *res
	st.s.reservations[res.SlotID] = &cp
	return nil
}

// GetBySlot получает бронь слота, включая истёкшую.
// Проверка истечения - обязанность вызывающего.
func (st *ReservationStore) GetBySlot(ctx context.Context, slotID int64) (*model.Reservation, error) {
	st.s.mu.Lock()
	defer st.s.mu.Unlock()

	res, ok := st.s.reservations[slotID]
	if !ok {
		return nil, nil
	}
	cp := *res
	return &cp, nil
}

// Delete удаляет бронь по ID, false если её уже нет
func (st *ReservationStore) Delete(ctx context.Context, id uuid.UUID) (bool, error) {
	st.s.mu.Lock()
	defer st.s.mu.Unlock()

	return st.s.deleteReservationLocked(id), nil
}

func (s *Store) deleteReservationLocked(id uuid.UUID) bool {
	for slotID, res := range s.reservations {
		if res.ID == id {
			delete(s.reservations, slotID)
			return true
		}
	}
	return false
}

// GetExpired получает истёкшие брони для зачистки
func (st *ReservationStore) GetExpired(ctx context.Context, now time.Time, limit int) ([]*model.Reservation, error) {
	st.s.mu.Lock()
	defer st.s.mu.Unlock()

	var expired []*model.Reservation
	for _, res := range st.s.reservations {
		if len(expired) >= limit {
			break
		}
		if !now.Before(res.ExpiresAt) {
			cp := *res
			expired = append(expired, &cp)
		}
	}
	return expired, nil
}
