package repository

import (
	"context"
	"fmt"

	"github.com/Freeeeeet/tutor_market/internal/model"
	"github.com/Freeeeeet/tutor_market/internal/repository/base"
	"github.com/jackc/pgx/v5/pgxpool"
)

type UserRepository struct {
	*base.Repository
}

func NewUserRepository(pool *pgxpool.Pool) *UserRepository {
	return &UserRepository{Repository: base.NewRepository(pool)}
}

// GetByID получает пользователя по ID
func (r *UserRepository) GetByID(ctx context.Context, id int64) (*model.User, error) {
	query := `
		SELECT id, role, first_name, last_name, telegram_chat_id, rating_avg, rating_count, created_at
		FROM users
		WHERE id = $1
	`

	var user model.User
	err := r.QueryRow(ctx, query, id).Scan(
		&user.ID,
		&user.Role,
		&user.FirstName,
		&user.LastName,
		&user.TelegramChatID,
		&user.RatingAvg,
		&user.RatingCount,
		&user.CreatedAt,
	)

	if err != nil {
		if base.IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get user by id: %w", err)
	}

	return &user, nil
}

// Create создаёт пользователя
func (r *UserRepository) Create(ctx context.Context, user *model.User) error {
	query := `
		INSERT INTO users (role, first_name, last_name, telegram_chat_id)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at
	`

	err := r.QueryRow(
		ctx, query,
		user.Role,
		user.FirstName,
		user.LastName,
		user.TelegramChatID,
	).Scan(&user.ID, &user.CreatedAt)

	if err != nil {
		return fmt.Errorf("create user: %w", err)
	}

	return nil
}

// RecomputeRating пересчитывает агрегированный рейтинг репетитора по оценкам записей
func (r *UserRepository) RecomputeRating(ctx context.Context, tutorID int64) error {
	query := `
		UPDATE users
		SET rating_avg = COALESCE(agg.avg, 0), rating_count = agg.cnt
		FROM (
			SELECT COALESCE(AVG(rating), 0) AS avg, COUNT(rating) AS cnt
			FROM bookings
			WHERE tutor_id = $1 AND rating IS NOT NULL
		) agg
		WHERE users.id = $1
	`

	_, err := r.Pool().Exec(ctx, query, tutorID)
	if err != nil {
		return fmt.Errorf("recompute tutor rating: %w", err)
	}

	return nil
}
