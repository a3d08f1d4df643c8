package repository

import "errors"

// Общие ошибки слоя хранения
var (
	// ErrNotFound строка не найдена
	ErrNotFound = errors.New("record not found")
	// ErrStateConflict условное обновление не прошло: состояние строки уже изменил кто-то другой
	ErrStateConflict = errors.New("state conflict")
)
