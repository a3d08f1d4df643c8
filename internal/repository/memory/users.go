package memory

import (
	"context"
	"time"

	"github.com/Freeeeeet/tutor_market/internal/model"
)

type UserStore struct {
	s *Store
}

// Create создаёт пользователя
func (st *UserStore) Create(ctx context.Context, user *model.User) error {
	st.s.mu.Lock()
	defer st.s.mu.Unlock()

	st.s.nextUserID++
	user.ID = st.s.nextUserID
	user.CreatedAt = time.Now()

	cp := *user
	st.s.users[user.ID] = &cp
	return nil
}

// GetByID получает пользователя по ID
func (st *UserStore) GetByID(ctx context.Context, id int64) (*model.User, error) {
	st.s.mu.Lock()
	defer st.s.mu.Unlock()

	user, ok := st.s.users[id]
	if !ok {
		return nil, nil
	}
	cp := *user
	return &cp, nil
}

// RecomputeRating пересчитывает агрегированный рейтинг репетитора
func (st *UserStore) RecomputeRating(ctx context.Context, tutorID int64) error {
	st.s.mu.Lock()
	defer st.s.mu.Unlock()

	user, ok := st.s.users[tutorID]
	if !ok {
		return nil
	}

	var sum, count int
	for _, booking := range st.s.bookings {
		if booking.TutorID == tutorID && booking.Rating != nil {
			sum += *booking.Rating
			count++
		}
	}

	if count == 0 {
		user.RatingAvg = 0
		user.RatingCount = 0
		return nil
	}

	user.RatingAvg = float64(sum) / float64(count)
	user.RatingCount = count
	return nil
}
