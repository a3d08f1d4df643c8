package service

import (
	"context"
	"fmt"
	"time"

	"github.com/Freeeeeet/tutor_market/internal/model"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const sweepBatchSize = 100

// ReservationService шлюз эксклюзивности: из N одновременных попыток
// забронировать слот ровно одна проходит, остальные получают
// ErrSlotUnavailable. Единственная точка сериализации - compare-and-swap
// состояния слота в SlotStore.Transition.
type ReservationService struct {
	slots        SlotStore
	reservations ReservationStore
	holdTTL      time.Duration
	logger       *zap.Logger
}

func NewReservationService(slots SlotStore, reservations ReservationStore, holdTTL time.Duration, logger *zap.Logger) *ReservationService {
	return &ReservationService{
		slots:        slots,
		reservations: reservations,
		holdTTL:      holdTTL,
		logger:       logger,
	}
}

// Reserve ставит временную бронь на свободный слот.
// Проигравший гонку получает ErrSlotUnavailable сразу, без очереди.
func (s *ReservationService) Reserve(ctx context.Context, tutorID, slotID, studentID int64) (*model.Reservation, error) {
	slot, err := s.slots.GetByID(ctx, slotID)
	if err != nil {
		return nil, fmt.Errorf("get slot: %w", err)
	}

	if slot == nil || slot.TutorID != tutorID {
		return nil, ErrNotFound
	}

	// Ленивая зачистка: если на слоте висит истёкшая бронь,
	// возвращаем его в продажу до попытки захвата
	if slot.State == model.SlotStateHeld {
		if err := s.releaseIfExpired(ctx, slotID); err != nil {
			return nil, err
		}
	}

	ok, err := s.slots.Transition(ctx, slotID, model.SlotStateFree, model.SlotStateHeld)
	if err != nil {
		return nil, fmt.Errorf("hold slot: %w", err)
	}
	if !ok {
		// Кто-то успел раньше - слот занят или забронирован
		return nil, ErrSlotUnavailable
	}

	now := time.Now()
	res := &model.Reservation{
		ID:        uuid.New(),
		TutorID:   tutorID,
		SlotID:    slotID,
		StudentID: studentID,
		HeldAt:    now,
		ExpiresAt: now.Add(s.holdTTL),
	}

	if err := s.reservations.Create(ctx, res); err != nil {
		// Слот уже переведён в held - обязаны откатить, иначе он зависнет
		if _, rbErr := s.slots.Transition(ctx, slotID, model.SlotStateHeld, model.SlotStateFree); rbErr != nil {
			s.logger.Error("Failed to roll back slot hold",
				zap.Int64("slot_id", slotID),
				zap.Error(rbErr))
		}
		return nil, fmt.Errorf("create reservation: %w", err)
	}

	s.logger.Info("Slot reserved",
		zap.String("reservation_id", res.ID.String()),
		zap.Int64("slot_id", slotID),
		zap.Int64("student_id", studentID),
		zap.Time("expires_at", res.ExpiresAt),
	)

	return res, nil
}

// Release снимает бронь по требованию студента.
// Идемпотентна: повторное снятие уже снятой или истёкшей брони - успех.
func (s *ReservationService) Release(ctx context.Context, tutorID, slotID, studentID int64) error {
	res, err := s.reservations.GetBySlot(ctx, slotID)
	if err != nil {
		return fmt.Errorf("get reservation: %w", err)
	}

	if res == nil || res.TutorID != tutorID {
		return nil
	}

	if res.Expired(time.Now()) {
		// Истёкшая бронь снимается независимо от владельца
		s.releaseReservation(ctx, res)
		return nil
	}

	if res.StudentID != studentID {
		return ErrNotHeldByCaller
	}

	s.releaseReservation(ctx, res)

	s.logger.Info("Reservation released",
		zap.String("reservation_id", res.ID.String()),
		zap.Int64("slot_id", slotID),
		zap.Int64("student_id", studentID),
	)

	return nil
}

// SweepExpired возвращает в продажу слоты всех истёкших броней.
// Запускается периодически свипером и лениво на пути Reserve.
func (s *ReservationService) SweepExpired(ctx context.Context) (int, error) {
	expired, err := s.reservations.GetExpired(ctx, time.Now(), sweepBatchSize)
	if err != nil {
		return 0, fmt.Errorf("get expired reservations: %w", err)
	}

	released := 0
	for _, res := range expired {
		if s.releaseReservation(ctx, res) {
			released++
		}
	}

	return released, nil
}

// GetLive возвращает живую бронь слота, принадлежащую студенту
func (s *ReservationService) GetLive(ctx context.Context, tutorID, slotID, studentID int64) (*model.Reservation, error) {
	res, err := s.reservations.GetBySlot(ctx, slotID)
	if err != nil {
		return nil, fmt.Errorf("get reservation: %w", err)
	}

	if res == nil || res.TutorID != tutorID || res.StudentID != studentID || res.Expired(time.Now()) {
		return nil, ErrReservationExpired
	}

	return res, nil
}

func (s *ReservationService) releaseIfExpired(ctx context.Context, slotID int64) error {
	res, err := s.reservations.GetBySlot(ctx, slotID)
	if err != nil {
		return fmt.Errorf("get reservation: %w", err)
	}

	if res != nil && res.Expired(time.Now()) {
		s.releaseReservation(ctx, res)
	}

	return nil
}

// releaseReservation удаляет бронь и возвращает слот в free.
// Удаление по ID гарантирует что две конкурирующие зачистки одной брони
// не освободят слот дважды: CAS выполняет только та, чей delete прошёл.
func (s *ReservationService) releaseReservation(ctx context.Context, res *model.Reservation) bool {
	deleted, err := s.reservations.Delete(ctx, res.ID)
	if err != nil {
		s.logger.Error("Failed to delete reservation",
			zap.String("reservation_id", res.ID.String()),
			zap.Error(err))
		return false
	}

	if !deleted {
		return false
	}

	ok, err := s.slots.Transition(ctx, res.SlotID, model.SlotStateHeld, model.SlotStateFree)
	if err != nil {
		s.logger.Error("Failed to free slot after reservation removal",
			zap.Int64("slot_id", res.SlotID),
			zap.Error(err))
		return false
	}

	if !ok {
		// Слот не в held: бронь уже поглотил finalize, освобождать нечего
		s.logger.Warn("Slot was not held while releasing reservation",
			zap.Int64("slot_id", res.SlotID))
		return false
	}

	return true
}
