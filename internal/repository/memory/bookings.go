package memory

import (
	"context"
	"time"

	"github.com/Freeeeeet/tutor_market/internal/model"
	"github.com/Freeeeeet/tutor_market/internal/repository"
	"github.com/google/uuid"
)

type BookingStore struct {
	s *Store
}

// Confirm превращает живую бронь в подтверждённую запись атомарно:
// удаляет бронь, переводит слот held -> booked и создаёт booking.
func (st *BookingStore) Confirm(ctx context.Context, reservationID uuid.UUID, booking *model.Booking) error {
	st.s.mu.Lock()
	defer st.s.mu.Unlock()

	res, ok := st.s.reservations[booking.SlotID]
	if !ok || res.ID != reservationID || res.Expired(time.Now()) {
		return repository.ErrNotFound
	}

	if !st.s.transitionLocked(booking.SlotID, model.SlotStateHeld, model.SlotStateBooked) {
		return repository.ErrStateConflict
	}

	delete(st.s.reservations, booking.SlotID)

	booking.CreatedAt = time.Now()
	booking.UpdatedAt = booking.CreatedAt
	cp := *booking
	st.s.bookings[booking.ID] = &cp

	return nil
}

// GetByID получает запись по ID
func (st *BookingStore) GetByID(ctx context.Context, id uuid.UUID) (*model.Booking, error) {
	st.s.mu.Lock()
	defer st.s.mu.Unlock()

	booking, ok := st.s.bookings[id]
	if !ok {
		return nil, nil
	}
	cp := *booking
	return &cp, nil
}

// GetByStudent получает все записи студента
func (st *BookingStore) GetByStudent(ctx context.Context, studentID int64) ([]*model.Booking, error) {
	st.s.mu.Lock()
	defer st.s.mu.Unlock()

	var bookings []*model.Booking
	for _, booking := range st.s.bookings {
		if booking.StudentID == studentID {
			cp := *booking
			bookings = append(bookings, &cp)
		}
	}
	return bookings, nil
}

// GetByTutor получает все записи репетитора
func (st *BookingStore) GetByTutor(ctx context.Context, tutorID int64) ([]*model.Booking, error) {
	st.s.mu.Lock()
	defer st.s.mu.Unlock()

	var bookings []*model.Booking
	for _, booking := range st.s.bookings {
		if booking.TutorID == tutorID {
			cp := *booking
			bookings = append(bookings, &cp)
		}
	}
	return bookings, nil
}

// UpdateStatus условно переводит запись из статуса from в to
func (st *BookingStore) UpdateStatus(ctx context.Context, id uuid.UUID, from, to model.BookingStatus) (bool, error) {
	st.s.mu.Lock()
	defer st.s.mu.Unlock()

	booking, ok := st.s.bookings[id]
	if !ok || booking.Status != from {
		return false, nil
	}

	booking.Status = to
	booking.UpdatedAt = time.Now()
	return true, nil
}

// Cancel отменяет запись и возвращает слот в продажу атомарно
func (st *BookingStore) Cancel(ctx context.Context, id uuid.UUID, slotID int64) (bool, error) {
	st.s.mu.Lock()
	defer st.s.mu.Unlock()

	booking, ok := st.s.bookings[id]
	if !ok || booking.Status != model.BookingStatusConfirmed {
		return false, repository.ErrStateConflict
	}

	booking.Status = model.BookingStatusCancelled
	booking.UpdatedAt = time.Now()

	slotFreed := st.s.transitionLocked(slotID, model.SlotStateBooked, model.SlotStateFree)
	return slotFreed, nil
}

// SetRating проставляет оценку ровно один раз
func (st *BookingStore) SetRating(ctx context.Context, id uuid.UUID, rating int, comment string, anonymous bool) (bool, error) {
	st.s.mu.Lock()
	defer st.s.mu.Unlock()

	booking, ok := st.s.bookings[id]
	if !ok || booking.Status != model.BookingStatusCompleted || booking.Rating != nil {
		return false, nil
	}

	booking.Rating = &rating
	booking.FeedbackComment = &comment
	booking.RatingAnonymous = anonymous
	booking.UpdatedAt = time.Now()
	return true, nil
}
