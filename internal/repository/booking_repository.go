package repository

import (
	"context"
	"fmt"

	"github.com/Freeeeeet/tutor_market/internal/model"
	"github.com/Freeeeeet/tutor_market/internal/repository/base"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const bookingColumns = `id, tutor_id, student_id, slot_id, subject, payment_method, amount,
		status, rating, feedback_comment, rating_anonymous, created_at, updated_at`

type BookingRepository struct {
	*base.Repository
}

func NewBookingRepository(pool *pgxpool.Pool) *BookingRepository {
	return &BookingRepository{Repository: base.NewRepository(pool)}
}

// Confirm превращает живую бронь в подтверждённую запись одной транзакцией:
// удаляет бронь, переводит слот held -> booked и создаёт booking.
// ErrNotFound - бронь исчезла (истекла и зачищена), ErrStateConflict - слот
// оказался не в held, чего при живой брони быть не должно.
func (r *BookingRepository) Confirm(ctx context.Context, reservationID uuid.UUID, booking *model.Booking) error {
	return r.InTx(ctx, func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx,
			`DELETE FROM reservations WHERE id = $1 AND expires_at > now()`,
			reservationID,
		)
		if err != nil {
			return fmt.Errorf("consume reservation: %w", err)
		}
		if tag.RowsAffected() == 0 {
			return ErrNotFound
		}

		tag, err = tx.Exec(ctx,
			`UPDATE slots SET state = 'booked', updated_at = now() WHERE id = $1 AND state = 'held'`,
			booking.SlotID,
		)
		if err != nil {
			return fmt.Errorf("book slot: %w", err)
		}
		if tag.RowsAffected() == 0 {
			return ErrStateConflict
		}

		err = tx.QueryRow(ctx, `
			INSERT INTO bookings (id, tutor_id, student_id, slot_id, subject, payment_method, amount, status)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
			RETURNING created_at, updated_at
		`,
			booking.ID,
			booking.TutorID,
			booking.StudentID,
			booking.SlotID,
			booking.Subject,
			booking.PaymentMethod,
			booking.Amount,
			booking.Status,
		).Scan(&booking.CreatedAt, &booking.UpdatedAt)
		if err != nil {
			return fmt.Errorf("create booking: %w", err)
		}

		return nil
	})
}

// GetByID получает запись по ID
func (r *BookingRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings WHERE id = $1`

	booking, err := scanBooking(r.QueryRow(ctx, query, id))
	if err != nil {
		if base.IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get booking by id: %w", err)
	}

	return booking, nil
}

// GetByStudent получает все записи студента
func (r *BookingRepository) GetByStudent(ctx context.Context, studentID int64) ([]*model.Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings WHERE student_id = $1 ORDER BY created_at DESC`

	rows, err := r.Query(ctx, query, studentID)
	if err != nil {
		return nil, fmt.Errorf("get bookings by student: %w", err)
	}
	defer rows.Close()

	var bookings []*model.Booking
	for rows.Next() {
		booking, err := scanBooking(rows)
		if err != nil {
			return nil, fmt.Errorf("scan booking: %w", err)
		}
		bookings = append(bookings, booking)
	}

	return bookings, nil
}

// GetByTutor получает все записи репетитора
func (r *BookingRepository) GetByTutor(ctx context.Context, tutorID int64) ([]*model.Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings WHERE tutor_id = $1 ORDER BY created_at DESC`

	rows, err := r.Query(ctx, query, tutorID)
	if err != nil {
		return nil, fmt.Errorf("get bookings by tutor: %w", err)
	}
	defer rows.Close()

	var bookings []*model.Booking
	for rows.Next() {
		booking, err := scanBooking(rows)
		if err != nil {
			return nil, fmt.Errorf("scan booking: %w", err)
		}
		bookings = append(bookings, booking)
	}

	return bookings, nil
}

// UpdateStatus условно переводит запись из статуса from в to.
// Возвращает false если запись уже не в from.
func (r *BookingRepository) UpdateStatus(ctx context.Context, id uuid.UUID, from, to model.BookingStatus) (bool, error) {
	query := `
		UPDATE bookings
		SET status = $1, updated_at = now()
		WHERE id = $2 AND status = $3
	`

	affected, err := r.ExecAffected(ctx, query, to, id, from)
	if err != nil {
		return false, fmt.Errorf("update booking status: %w", err)
	}

	return affected > 0, nil
}

// Cancel отменяет запись и возвращает слот в продажу одной транзакцией.
// ErrStateConflict - запись уже не confirmed.
func (r *BookingRepository) Cancel(ctx context.Context, id uuid.UUID, slotID int64) (slotFreed bool, err error) {
	err = r.InTx(ctx, func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx, `
			UPDATE bookings
			SET status = 'cancelled', updated_at = now()
			WHERE id = $1 AND status = 'confirmed'
		`, id)
		if err != nil {
			return fmt.Errorf("cancel booking: %w", err)
		}
		if tag.RowsAffected() == 0 {
			return ErrStateConflict
		}

		tag, err = tx.Exec(ctx,
			`UPDATE slots SET state = 'free', updated_at = now() WHERE id = $1 AND state = 'booked'`,
			slotID,
		)
		if err != nil {
			return fmt.Errorf("free slot: %w", err)
		}
		slotFreed = tag.RowsAffected() > 0

		return nil
	})

	return slotFreed, err
}

// SetRating проставляет оценку ровно один раз.
// Условие rating IS NULL страхует от двойной оценки при гонке двух запросов.
func (r *BookingRepository) SetRating(ctx context.Context, id uuid.UUID, rating int, comment string, anonymous bool) (bool, error) {
	query := `
		UPDATE bookings
		SET rating = $1, feedback_comment = $2, rating_anonymous = $3, updated_at = now()
		WHERE id = $4 AND status = 'completed' AND rating IS NULL
	`

	affected, err := r.ExecAffected(ctx, query, rating, comment, anonymous, id)
	if err != nil {
		return false, fmt.Errorf("set booking rating: %w", err)
	}

	return affected > 0, nil
}

func scanBooking(row interface{ Scan(...any) error }) (*model.Booking, error) {
	var booking model.Booking
	err := row.Scan(
		&booking.ID,
		&booking.TutorID,
		&booking.StudentID,
		&booking.SlotID,
		&booking.Subject,
		&booking.PaymentMethod,
		&booking.Amount,
		&booking.Status,
		&booking.Rating,
		&booking.FeedbackComment,
		&booking.RatingAnonymous,
		&booking.CreatedAt,
		&booking.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &booking, nil
}
