package model

import "time"

type SlotState string

const (
	SlotStateFree   SlotState = "free"
	SlotStateHeld   SlotState = "held"
	SlotStateBooked SlotState = "booked"
)

// Slot слот доступности репетитора.
// Состояние меняется только через атомарный compare-and-swap в хранилище.
type Slot struct {
	ID        int64     `json:"id"`
	TutorID   int64     `json:"tutor_id"`
	Date      time.Time `json:"date"` // день слота, время обнулено
	StartTime time.Time `json:"start_time"`
	EndTime   time.Time `json:"end_time"`
	State     SlotState `json:"state"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Overlaps проверяет пересечение с другим слотом по времени
func (s *Slot) Overlaps(other *Slot) bool {
	return s.StartTime.Before(other.EndTime) && other.StartTime.Before(s.EndTime)
}
