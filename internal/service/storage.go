package service

import (
	"context"
	"time"

	"github.com/Freeeeeet/tutor_market/internal/model"
	"github.com/google/uuid"
)

// Интерфейсы хранилищ. Реализации: internal/repository (Postgres)
// и internal/repository/memory (dev-режим и тесты).

// SlotStore хранилище слотов. Transition - единственный способ менять
// состояние слота, все остальные мутации его не трогают.
type SlotStore interface {
	Create(ctx context.Context, slot *model.Slot) error
	GetByID(ctx context.Context, id int64) (*model.Slot, error)
	GetByTutor(ctx context.Context, tutorID int64, from, to time.Time) ([]*model.Slot, error)
	GetFree(ctx context.Context, tutorID int64, from, to time.Time) ([]*model.Slot, error)
	Update(ctx context.Context, slot *model.Slot) error
	Delete(ctx context.Context, id int64) error
	Transition(ctx context.Context, slotID int64, from, to model.SlotState) (bool, error)
	HasOverlap(ctx context.Context, tutorID, excludeID int64, start, end time.Time) (bool, error)
}

// ReservationStore хранилище броней
type ReservationStore interface {
	Create(ctx context.Context, res *model.Reservation) error
	GetBySlot(ctx context.Context, slotID int64) (*model.Reservation, error)
	Delete(ctx context.Context, id uuid.UUID) (bool, error)
	GetExpired(ctx context.Context, now time.Time, limit int) ([]*model.Reservation, error)
}

// BookingStore хранилище записей. Confirm и Cancel - составные атомарные
// операции, затрагивающие бронь и слот вместе с записью.
type BookingStore interface {
	Confirm(ctx context.Context, reservationID uuid.UUID, booking *model.Booking) error
	GetByID(ctx context.Context, id uuid.UUID) (*model.Booking, error)
	GetByStudent(ctx context.Context, studentID int64) ([]*model.Booking, error)
	GetByTutor(ctx context.Context, tutorID int64) ([]*model.Booking, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, from, to model.BookingStatus) (bool, error)
	Cancel(ctx context.Context, id uuid.UUID, slotID int64) (bool, error)
	SetRating(ctx context.Context, id uuid.UUID, rating int, comment string, anonymous bool) (bool, error)
}

// UserStore хранилище пользователей
type UserStore interface {
	Create(ctx context.Context, user *model.User) error
	GetByID(ctx context.Context, id int64) (*model.User, error)
	RecomputeRating(ctx context.Context, tutorID int64) error
}
