package memory

import (
	"sync"

	"github.com/Freeeeeet/tutor_market/internal/model"
	"github.com/google/uuid"
)

// Store хранилище в памяти для dev-режима и тестов.
// Семантика повторяет Postgres-репозитории: условные обновления под одним
// мьютексом играют роль атомарных UPDATE ... WHERE.
type Store struct {
	mu           sync.Mutex
	slots        map[int64]*model.Slot
	reservations map[int64]*model.Reservation // ключ - slot_id, живая бронь максимум одна
	bookings     map[uuid.UUID]*model.Booking
	users        map[int64]*model.User
	nextSlotID   int64
	nextUserID   int64
}

func NewStore() *Store {
	return &Store{
		slots:        make(map[int64]*model.Slot),
		reservations: make(map[int64]*model.Reservation),
		bookings:     make(map[uuid.UUID]*model.Booking),
		users:        make(map[int64]*model.User),
	}
}

// Slots типизированный доступ к слотам
func (s *Store) Slots() *SlotStore { return &SlotStore{s: s} }

// Reservations типизированный доступ к броням
func (s *Store) Reservations() *ReservationStore { return &ReservationStore{s: s} }

// Bookings типизированный доступ к записям
func (s *Store) Bookings() *BookingStore { return &BookingStore{s: s} }

// Users типизированный доступ к пользователям
func (s *Store) Users() *UserStore { return &UserStore{s: s} }
