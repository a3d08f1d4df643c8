package gateway

import (
	"context"
	"fmt"

	"github.com/Freeeeeet/tutor_market/internal/model"
	"go.uber.org/zap"
)

// UserDirectory доступ к получателям уведомлений
type UserDirectory interface {
	GetByID(ctx context.Context, id int64) (*model.User, error)
}

// Dispatcher пул воркеров для рассылки уведомлений.
// Уведомления - best effort: ошибки доставки логируются и никогда
// не влияют на судьбу записи, о которой сообщают.
type Dispatcher struct {
	size   int
	jobs   chan Event
	users  UserDirectory
	sender Sender
	logger *zap.Logger
}

// NewDispatcher создаёт новый пул воркеров
func NewDispatcher(size int, users UserDirectory, sender Sender, logger *zap.Logger) *Dispatcher {
	return &Dispatcher{
		size:   size,
		jobs:   make(chan Event, size*4),
		users:  users,
		sender: sender,
		logger: logger,
	}
}

// Start запускает воркеров
func (d *Dispatcher) Start(ctx context.Context) {
	for i := 0; i < d.size; i++ {
		go d.worker(ctx, i)
	}
}

func (d *Dispatcher) worker(ctx context.Context, id int) {
	d.logger.Debug("Notification worker started", zap.Int("worker_id", id))
	for {
		select {
		case event := <-d.jobs:
			d.process(ctx, event)
		case <-ctx.Done():
			d.logger.Debug("Notification worker shutting down", zap.Int("worker_id", id))
			return
		}
	}
}

// Dispatch ставит уведомление в очередь не блокируя вызывающего.
// При переполненной очереди уведомление теряется - это допустимо.
func (d *Dispatcher) Dispatch(event Event) {
	select {
	case d.jobs <- event:
	default:
		d.logger.Warn("Notification queue full, dropping event",
			zap.String("event_type", string(event.Type)),
			zap.String("booking_id", event.Booking.ID.String()),
		)
	}
}

func (d *Dispatcher) process(ctx context.Context, event Event) {
	booking := event.Booking

	d.notifyUser(ctx, booking.TutorID, tutorText(event))
	d.notifyUser(ctx, booking.StudentID, studentText(event))
}

func (d *Dispatcher) notifyUser(ctx context.Context, userID int64, text string) {
	user, err := d.users.GetByID(ctx, userID)
	if err != nil {
		d.logger.Error("Failed to get notification recipient",
			zap.Int64("user_id", userID),
			zap.Error(err))
		return
	}

	if user == nil || user.TelegramChatID == nil {
		return
	}

	if err := d.sender.Send(ctx, *user.TelegramChatID, text); err != nil {
		d.logger.Error("Failed to send notification",
			zap.Int64("user_id", userID),
			zap.Error(err))
	}
}

func tutorText(event Event) string {
	b := event.Booking
	switch event.Type {
	case EventBookingConfirmed:
		return fmt.Sprintf("✅ Новая запись на занятие «%s» %s",
			b.Subject, b.CreatedAt.Format("02.01.2006"))
	case EventBookingCancelled:
		return fmt.Sprintf("❌ Запись на занятие «%s» отменена", b.Subject)
	case EventBookingCompleted:
		return fmt.Sprintf("🎓 Занятие «%s» отмечено проведённым", b.Subject)
	default:
		return fmt.Sprintf("Запись «%s»: %s", b.Subject, b.Status)
	}
}

func studentText(event Event) string {
	b := event.Booking
	switch event.Type {
	case EventBookingConfirmed:
		return fmt.Sprintf("✅ Ваша запись на занятие «%s» подтверждена", b.Subject)
	case EventBookingCancelled:
		return fmt.Sprintf("❌ Ваша запись на занятие «%s» отменена, слот снова доступен для брони", b.Subject)
	case EventBookingCompleted:
		return fmt.Sprintf("🎓 Занятие «%s» завершено. Вы можете оставить оценку", b.Subject)
	default:
		return fmt.Sprintf("Запись «%s»: %s", b.Subject, b.Status)
	}
}
