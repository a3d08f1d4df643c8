package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/Freeeeeet/tutor_market/internal/gateway"
	"github.com/Freeeeeet/tutor_market/internal/model"
	"github.com/Freeeeeet/tutor_market/internal/repository"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// BookingService превращает живые брони в записи и ведёт их жизненный цикл:
// confirmed -> completed (репетитор) или confirmed -> cancelled (репетитор/админ),
// плюс однократная оценка завершённого занятия студентом.
type BookingService struct {
	bookings     BookingStore
	users        UserStore
	reservations *ReservationService
	payments     gateway.PaymentGateway
	notifier     *gateway.Dispatcher
	logger       *zap.Logger
}

func NewBookingService(
	bookings BookingStore,
	users UserStore,
	reservations *ReservationService,
	payments gateway.PaymentGateway,
	notifier *gateway.Dispatcher,
	logger *zap.Logger,
) *BookingService {
	return &BookingService{
		bookings:     bookings,
		users:        users,
		reservations: reservations,
		payments:     payments,
		notifier:     notifier,
		logger:       logger,
	}
}

// Finalize проводит оплату и превращает бронь в подтверждённую запись.
// При отказе платежа бронь остаётся жить: студент может повторить попытку,
// пока бронь не истекла. Платёж идёт без каких-либо блокировок.
func (s *BookingService) Finalize(ctx context.Context, tutorID, slotID, studentID int64, subject, paymentMethod string, amount int64) (*model.Booking, error) {
	res, err := s.reservations.GetLive(ctx, tutorID, slotID, studentID)
	if err != nil {
		return nil, err
	}

	if err := s.payments.Charge(ctx, amount, paymentMethod); err != nil {
		s.logger.Info("Payment failed",
			zap.Int64("slot_id", slotID),
			zap.Int64("student_id", studentID),
			zap.Error(err))
		return nil, ErrPaymentFailed
	}

	booking := &model.Booking{
		ID:            uuid.New(),
		TutorID:       tutorID,
		StudentID:     studentID,
		SlotID:        slotID,
		Subject:       subject,
		PaymentMethod: paymentMethod,
		Amount:        amount,
		Status:        model.BookingStatusConfirmed,
	}

	if err := s.bookings.Confirm(ctx, res.ID, booking); err != nil {
		// Бронь истекла пока шла оплата
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrReservationExpired
		}
		// Слот не в held при живой брони - нарушение инварианта
		if errors.Is(err, repository.ErrStateConflict) {
			s.logger.Error("Slot state out of sync with live reservation",
				zap.Int64("slot_id", slotID),
				zap.String("reservation_id", res.ID.String()))
			return nil, ErrInternalInconsistency
		}
		return nil, fmt.Errorf("confirm booking: %w", err)
	}

	s.logger.Info("Booking confirmed",
		zap.String("booking_id", booking.ID.String()),
		zap.Int64("slot_id", slotID),
		zap.Int64("student_id", studentID),
		zap.Int64("amount", amount),
	)

	s.notifier.Dispatch(gateway.Event{Type: gateway.EventBookingConfirmed, Booking: *booking})

	return booking, nil
}

// MarkCompleted отмечает занятие проведённым. Доступно только репетитору
// записи. Слот остаётся booked навсегда как исторический факт.
func (s *BookingService) MarkCompleted(ctx context.Context, bookingID uuid.UUID, actingTutorID int64) (*model.Booking, error) {
	booking, err := s.getBooking(ctx, bookingID)
	if err != nil {
		return nil, err
	}

	if booking.TutorID != actingTutorID {
		return nil, ErrForbidden
	}

	if booking.Status != model.BookingStatusConfirmed {
		return nil, ErrInvalidState
	}

	ok, err := s.bookings.UpdateStatus(ctx, bookingID, model.BookingStatusConfirmed, model.BookingStatusCompleted)
	if err != nil {
		return nil, fmt.Errorf("update booking status: %w", err)
	}
	if !ok {
		return nil, ErrInvalidState
	}

	booking.Status = model.BookingStatusCompleted

	s.logger.Info("Booking completed",
		zap.String("booking_id", bookingID.String()),
		zap.Int64("tutor_id", actingTutorID),
	)

	s.notifier.Dispatch(gateway.Event{Type: gateway.EventBookingCompleted, Booking: *booking})

	return booking, nil
}

// Cancel отменяет подтверждённую запись и возвращает слот в продажу.
// Доступно репетитору записи и админу. Завершённую запись отменить нельзя.
func (s *BookingService) Cancel(ctx context.Context, bookingID uuid.UUID, actorID int64, role model.UserRole) (*model.Booking, error) {
	booking, err := s.getBooking(ctx, bookingID)
	if err != nil {
		return nil, err
	}

	if role != model.RoleAdmin && booking.TutorID != actorID {
		return nil, ErrForbidden
	}

	if booking.Status != model.BookingStatusConfirmed {
		return nil, ErrInvalidState
	}

	slotFreed, err := s.bookings.Cancel(ctx, bookingID, booking.SlotID)
	if err != nil {
		if errors.Is(err, repository.ErrStateConflict) {
			return nil, ErrInvalidState
		}
		return nil, fmt.Errorf("cancel booking: %w", err)
	}

	if !slotFreed {
		// Запись отменена, но слот оказался не в booked - инвариант нарушен
		s.logger.Error("Slot was not booked while cancelling booking",
			zap.String("booking_id", bookingID.String()),
			zap.Int64("slot_id", booking.SlotID))
		return nil, ErrInternalInconsistency
	}

	booking.Status = model.BookingStatusCancelled

	s.logger.Info("Booking cancelled",
		zap.String("booking_id", bookingID.String()),
		zap.Int64("actor_id", actorID),
		zap.String("role", string(role)),
	)

	s.notifier.Dispatch(gateway.Event{Type: gateway.EventBookingCancelled, Booking: *booking})

	return booking, nil
}

// Rate проставляет оценку завершённому занятию. Ровно один раз,
// только студентом записи, только значения 1..5.
func (s *BookingService) Rate(ctx context.Context, bookingID uuid.UUID, actingStudentID int64, rating int, comment string, anonymous bool) (*model.Booking, error) {
	if rating < 1 || rating > 5 {
		return nil, ErrOutOfRange
	}

	booking, err := s.getBooking(ctx, bookingID)
	if err != nil {
		return nil, err
	}

	if booking.StudentID != actingStudentID {
		return nil, ErrForbidden
	}

	if booking.Status != model.BookingStatusCompleted {
		return nil, ErrInvalidState
	}

	if booking.Rating != nil {
		return nil, ErrAlreadyRated
	}

	ok, err := s.bookings.SetRating(ctx, bookingID, rating, comment, anonymous)
	if err != nil {
		return nil, fmt.Errorf("set rating: %w", err)
	}
	if !ok {
		// Проиграли гонку второму запросу на оценку
		return nil, ErrAlreadyRated
	}

	booking.Rating = &rating
	booking.FeedbackComment = &comment
	booking.RatingAnonymous = anonymous

	// Пересчёт агрегата - best effort, оценка уже сохранена
	if err := s.users.RecomputeRating(ctx, booking.TutorID); err != nil {
		s.logger.Error("Failed to recompute tutor rating",
			zap.Int64("tutor_id", booking.TutorID),
			zap.Error(err))
	}

	s.logger.Info("Booking rated",
		zap.String("booking_id", bookingID.String()),
		zap.Int64("student_id", actingStudentID),
		zap.Int("rating", rating),
	)

	return booking, nil
}

// GetByID получает запись по ID
func (s *BookingService) GetByID(ctx context.Context, bookingID uuid.UUID) (*model.Booking, error) {
	return s.getBooking(ctx, bookingID)
}

// GetStudentBookings получает все записи студента
func (s *BookingService) GetStudentBookings(ctx context.Context, studentID int64) ([]*model.Booking, error) {
	return s.bookings.GetByStudent(ctx, studentID)
}

// GetTutorBookings получает все записи репетитора
func (s *BookingService) GetTutorBookings(ctx context.Context, tutorID int64) ([]*model.Booking, error) {
	return s.bookings.GetByTutor(ctx, tutorID)
}

func (s *BookingService) getBooking(ctx context.Context, bookingID uuid.UUID) (*model.Booking, error) {
	booking, err := s.bookings.GetByID(ctx, bookingID)
	if err != nil {
		return nil, fmt.Errorf("get booking: %w", err)
	}

	if booking == nil {
		return nil, ErrNotFound
	}

	return booking, nil
}
