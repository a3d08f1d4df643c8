package model

import (
	"time"

	"github.com/google/uuid"
)

// Reservation временная бронь слота на время оплаты.
// Пока бронь жива, слот находится в состоянии held и недоступен другим студентам.
// После expires_at бронь считается мёртвой, даже если sweep ещё не удалил строку.
type Reservation struct {
	ID        uuid.UUID `json:"id"`
	TutorID   int64     `json:"tutor_id"`
	SlotID    int64     `json:"slot_id"`
	StudentID int64     `json:"student_id"`
	HeldAt    time.Time `json:"held_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Expired проверяет истекла ли бронь на момент now
func (r *Reservation) Expired(now time.Time) bool {
	return !now.Before(r.ExpiresAt)
}
