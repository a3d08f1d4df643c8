package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/Freeeeeet/tutor_market/internal/model"
	"github.com/Freeeeeet/tutor_market/internal/repository/base"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

type ReservationRepository struct {
	*base.Repository
}

func NewReservationRepository(pool *pgxpool.Pool) *ReservationRepository {
	return &ReservationRepository{Repository: base.NewRepository(pool)}
}

// Create создаёт бронь.
// Уникальный индекс по slot_id страхует инвариант "одна живая бронь на слот".
func (r *ReservationRepository) Create(ctx context.Context, res *model.Reservation) error {
	query := `
		INSERT INTO reservations (id, tutor_id, slot_id, student_id, held_at, expires_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	_, err := r.Pool().Exec(
		ctx, query,
		res.ID,
		res.TutorID,
		res.SlotID,
		res.StudentID,
		res.HeldAt,
		res.ExpiresAt,
	)

	if err != nil {
		return fmt.Errorf("create reservation: %w", err)
	}

	return nil
}

// GetBySlot получает бронь слота, включая истёкшую.
// Проверка истечения - обязанность вызывающего.
func (r *ReservationRepository) GetBySlot(ctx context.Context, slotID int64) (*model.Reservation, error) {
	query := `
		SELECT id, tutor_id, slot_id, student_id, held_at, expires_at
		FROM reservations
		WHERE slot_id = $1
	`

	var res model.Reservation
	err := r.QueryRow(ctx, query, slotID).Scan(
		&res.ID,
		&res.TutorID,
		&res.SlotID,
		&res.StudentID,
		&res.HeldAt,
		&res.ExpiresAt,
	)

	if err != nil {
		if base.IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get reservation by slot: %w", err)
	}

	return &res, nil
}

// Delete удаляет бронь по ID.
// Возвращает false если брони уже нет - её успел удалить release, sweep или finalize.
func (r *ReservationRepository) Delete(ctx context.Context, id uuid.UUID) (bool, error) {
	query := `DELETE FROM reservations WHERE id = $1`

	affected, err := r.ExecAffected(ctx, query, id)
	if err != nil {
		return false, fmt.Errorf("delete reservation: %w", err)
	}

	return affected > 0, nil
}

// GetExpired получает истёкшие брони для зачистки
func (r *ReservationRepository) GetExpired(ctx context.Context, now time.Time, limit int) ([]*model.Reservation, error) {
	query := `
		SELECT id, tutor_id, slot_id, student_id, held_at, expires_at
		FROM reservations
		WHERE expires_at <= $1
		ORDER BY expires_at
		LIMIT $2
	`

	rows, err := r.Query(ctx, query, now, limit)
	if err != nil {
		return nil, fmt.Errorf("get expired reservations: %w", err)
	}
	defer rows.Close()

	var reservations []*model.Reservation
	for rows.Next() {
		var res model.Reservation
		err := rows.Scan(
			&res.ID,
			&res.TutorID,
			&res.SlotID,
			&res.StudentID,
			&res.HeldAt,
			&res.ExpiresAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan reservation: %w", err)
		}
		reservations = append(reservations, &res)
	}

	return reservations, nil
}
