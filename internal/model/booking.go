package model

import (
	"time"

	"github.com/google/uuid"
)

type BookingStatus string

const (
	BookingStatusConfirmed BookingStatus = "confirmed" // Оплачено, занятие предстоит
	BookingStatusCompleted BookingStatus = "completed" // Занятие проведено
	BookingStatusCancelled BookingStatus = "cancelled" // Отменено репетитором или админом
)

// Booking подтверждённая запись на занятие.
// Создаётся только из живой брони после успешной оплаты.
type Booking struct {
	ID              uuid.UUID     `json:"id"`
	TutorID         int64         `json:"tutor_id"`
	StudentID       int64         `json:"student_id"`
	SlotID          int64         `json:"slot_id"`
	Subject         string        `json:"subject"`
	PaymentMethod   string        `json:"payment_method"`
	Amount          int64         `json:"amount"` // в минимальных единицах валюты
	Status          BookingStatus `json:"status"`
	Rating          *int          `json:"rating,omitempty"` // 1..5, ставится один раз
	FeedbackComment *string       `json:"feedback_comment,omitempty"`
	RatingAnonymous bool          `json:"rating_anonymous"`
	CreatedAt       time.Time     `json:"created_at"`
	UpdatedAt       time.Time     `json:"updated_at"`
}
