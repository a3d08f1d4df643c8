package service

import "errors"

// Ошибки ядра. Возвращаются вызывающему как типизированные значения,
// чтобы API-слой мог отличить "выберите другой слот" от "платёж отклонён".
var (
	// ErrSlotUnavailable слот уже занят или забронирован: гонка проиграна.
	// Не повторяемая ошибка - нужно выбрать другой слот.
	ErrSlotUnavailable = errors.New("slot unavailable")
	// ErrNotHeldByCaller бронь принадлежит другому студенту
	ErrNotHeldByCaller = errors.New("reservation not held by caller")
	// ErrForbidden действие недоступно этому пользователю
	ErrForbidden = errors.New("forbidden")
	// ErrInvalidState переход невозможен из текущего состояния
	ErrInvalidState = errors.New("invalid state")
	// ErrInvalidRange начало слота не раньше конца
	ErrInvalidRange = errors.New("invalid time range")
	// ErrOverlap слот пересекается с существующим слотом репетитора
	ErrOverlap = errors.New("slot overlaps existing slot")
	// ErrNotFound сущность не найдена или принадлежит другому пользователю
	ErrNotFound = errors.New("not found")
	// ErrReservationExpired бронь истекла или отсутствует, нужно бронировать заново
	ErrReservationExpired = errors.New("reservation expired or missing")
	// ErrPaymentFailed платёж отклонён, можно повторить пока жива бронь
	ErrPaymentFailed = errors.New("payment failed")
	// ErrAlreadyRated оценка уже проставлена
	ErrAlreadyRated = errors.New("booking already rated")
	// ErrOutOfRange оценка вне диапазона 1..5
	ErrOutOfRange = errors.New("rating out of range")
	// ErrInternalInconsistency нарушен инвариант хранилища.
	// Не должно случаться: логируется и отдаётся как 500.
	ErrInternalInconsistency = errors.New("internal inconsistency")
)
