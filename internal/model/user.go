package model

import "time"

type UserRole string

const (
	RoleStudent UserRole = "student"
	RoleTutor   UserRole = "tutor"
	RoleAdmin   UserRole = "admin"
)

type User struct {
	ID             int64    `json:"id"`
	Role           UserRole `json:"role"`
	FirstName      string   `json:"first_name"`
	LastName       string   `json:"last_name"`
	TelegramChatID *int64   `json:"telegram_chat_id"` // указатель - может быть nil
	// Агрегированный рейтинг, заполняется только для репетиторов
	RatingAvg   float64   `json:"rating_avg"`
	RatingCount int       `json:"rating_count"`
	CreatedAt   time.Time `json:"created_at"`
}

// IsTutor проверяет что пользователь - репетитор
func (u *User) IsTutor() bool {
	return u.Role == RoleTutor
}

// IsAdmin проверяет что пользователь - админ
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}
