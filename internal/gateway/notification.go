package gateway

import (
	"context"

	"github.com/Freeeeeet/tutor_market/internal/model"
	"go.uber.org/zap"
)

type EventType string

const (
	EventBookingConfirmed EventType = "booking_confirmed"
	EventBookingCancelled EventType = "booking_cancelled"
	EventBookingCompleted EventType = "booking_completed"
)

// Event уведомление об изменении состояния записи
type Event struct {
	Type    EventType
	Booking model.Booking
}

// Sender канал доставки уведомлений конкретному пользователю
type Sender interface {
	Send(ctx context.Context, chatID int64, text string) error
}

// NoopSender отключенные уведомления: пишем в лог и всё
type NoopSender struct {
	Logger *zap.Logger
}

func (n *NoopSender) Send(ctx context.Context, chatID int64, text string) error {
	n.Logger.Debug("Notification skipped (no sender configured)",
		zap.Int64("chat_id", chatID),
		zap.String("text", text),
	)
	return nil
}
