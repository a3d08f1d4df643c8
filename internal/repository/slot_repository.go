package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/Freeeeeet/tutor_market/internal/model"
	"github.com/Freeeeeet/tutor_market/internal/repository/base"
	"github.com/jackc/pgx/v5/pgxpool"
)

const slotColumns = `id, tutor_id, date, start_time, end_time, state, created_at, updated_at`

type SlotRepository struct {
	*base.Repository
}

func NewSlotRepository(pool *pgxpool.Pool) *SlotRepository {
	return &SlotRepository{Repository: base.NewRepository(pool)}
}

// Create создаёт новый слот в состоянии free
func (r *SlotRepository) Create(ctx context.Context, slot *model.Slot) error {
	query := `
		INSERT INTO slots (tutor_id, date, start_time, end_time, state)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at, updated_at
	`

	err := r.QueryRow(
		ctx, query,
		slot.TutorID,
		slot.Date,
		slot.StartTime,
		slot.EndTime,
		slot.State,
	).Scan(&slot.ID, &slot.CreatedAt, &slot.UpdatedAt)

	if err != nil {
		return fmt.Errorf("create slot: %w", err)
	}

	return nil
}

// GetByID получает слот по ID
func (r *SlotRepository) GetByID(ctx context.Context, id int64) (*model.Slot, error) {
	query := `SELECT ` + slotColumns + ` FROM slots WHERE id = $1`

	slot, err := scanSlot(r.QueryRow(ctx, query, id))
	if err != nil {
		if base.IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get slot by id: %w", err)
	}

	return slot, nil
}

// GetByTutor получает все слоты репетитора в заданном диапазоне времени
func (r *SlotRepository) GetByTutor(ctx context.Context, tutorID int64, from, to time.Time) ([]*model.Slot, error) {
	query := `
		SELECT ` + slotColumns + `
		FROM slots
		WHERE tutor_id = $1
		  AND start_time >= $2
		  AND start_time < $3
		ORDER BY start_time
	`

	rows, err := r.Query(ctx, query, tutorID, from, to)
	if err != nil {
		return nil, fmt.Errorf("get slots by tutor: %w", err)
	}
	defer rows.Close()

	var slots []*model.Slot
	for rows.Next() {
		slot, err := scanSlot(rows)
		if err != nil {
			return nil, fmt.Errorf("scan slot: %w", err)
		}
		slots = append(slots, slot)
	}

	return slots, nil
}

// GetFree получает свободные слоты репетитора в заданном диапазоне времени
func (r *SlotRepository) GetFree(ctx context.Context, tutorID int64, from, to time.Time) ([]*model.Slot, error) {
	query := `
		SELECT ` + slotColumns + `
		FROM slots
		WHERE tutor_id = $1
		  AND state = 'free'
		  AND start_time >= $2
		  AND start_time < $3
		ORDER BY start_time
	`

	rows, err := r.Query(ctx, query, tutorID, from, to)
	if err != nil {
		return nil, fmt.Errorf("get free slots: %w", err)
	}
	defer rows.Close()

	var slots []*model.Slot
	for rows.Next() {
		slot, err := scanSlot(rows)
		if err != nil {
			return nil, fmt.Errorf("scan slot: %w", err)
		}
		slots = append(slots, slot)
	}

	return slots, nil
}

// Update обновляет дату и время слота.
// Обновление проходит только пока слот свободен.
func (r *SlotRepository) Update(ctx context.Context, slot *model.Slot) error {
	query := `
		UPDATE slots
		SET date = $1, start_time = $2, end_time = $3, updated_at = now()
		WHERE id = $4 AND state = 'free'
	`

	affected, err := r.ExecAffected(ctx, query, slot.Date, slot.StartTime, slot.EndTime, slot.ID)
	if err != nil {
		return fmt.Errorf("update slot: %w", err)
	}

	if affected == 0 {
		return ErrStateConflict
	}

	return nil
}

// Delete удаляет свободный слот
func (r *SlotRepository) Delete(ctx context.Context, id int64) error {
	query := `DELETE FROM slots WHERE id = $1 AND state = 'free'`

	affected, err := r.ExecAffected(ctx, query, id)
	if err != nil {
		return fmt.Errorf("delete slot: %w", err)
	}

	if affected == 0 {
		return ErrStateConflict
	}

	return nil
}

// Transition атомарный compare-and-swap состояния слота.
// Возвращает false если текущее состояние не равно from - значит кто-то успел раньше.
// Это единственная точка сериализации для гонок за слот.
func (r *SlotRepository) Transition(ctx context.Context, slotID int64, from, to model.SlotState) (bool, error) {
	query := `
		UPDATE slots
		SET state = $1, updated_at = now()
		WHERE id = $2 AND state = $3
	`

	affected, err := r.ExecAffected(ctx, query, to, slotID, from)
	if err != nil {
		return false, fmt.Errorf("transition slot: %w", err)
	}

	return affected > 0, nil
}

// HasOverlap проверяет пересекается ли интервал с существующими слотами репетитора.
// Слот excludeID игнорируется, чтобы update не конфликтовал сам с собой.
func (r *SlotRepository) HasOverlap(ctx context.Context, tutorID, excludeID int64, start, end time.Time) (bool, error) {
	query := `
		SELECT EXISTS(
			SELECT 1 FROM slots
			WHERE tutor_id = $1
			  AND id <> $2
			  AND start_time < $3
			  AND end_time > $4
		)
	`

	var exists bool
	err := r.QueryRow(ctx, query, tutorID, excludeID, end, start).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check slot overlap: %w", err)
	}

	return exists, nil
}

func scanSlot(row interface{ Scan(...any) error }) (*model.Slot, error) {
	var slot model.Slot
	err := row.Scan(
		&slot.ID,
		&slot.TutorID,
		&slot.Date,
		&slot.StartTime,
		&slot.EndTime,
		&slot.State,
		&slot.CreatedAt,
		&slot.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &slot, nil
}
