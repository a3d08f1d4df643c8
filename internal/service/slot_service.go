package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Freeeeeet/tutor_market/internal/model"
	"github.com/Freeeeeet/tutor_market/internal/repository"
	"go.uber.org/zap"
)

// SlotService управляет календарём доступности репетитора.
// Слоты создаются, редактируются и удаляются только пока свободны;
// занятые слоты меняются исключительно через жизненный цикл брони и записи.
type SlotService struct {
	slots  SlotStore
	users  UserStore
	logger *zap.Logger
}

func NewSlotService(slots SlotStore, users UserStore, logger *zap.Logger) *SlotService {
	return &SlotService{
		slots:  slots,
		users:  users,
		logger: logger,
	}
}

// CreateSlot создаёт новый свободный слот.
// Пересекающиеся слоты отклоняются, а не склеиваются.
func (s *SlotService) CreateSlot(ctx context.Context, tutorID int64, date, start, end time.Time) (*model.Slot, error) {
	if err := s.checkTutor(ctx, tutorID); err != nil {
		return nil, err
	}

	if !start.Before(end) {
		return nil, ErrInvalidRange
	}

	overlap, err := s.slots.HasOverlap(ctx, tutorID, 0, start, end)
	if err != nil {
		return nil, fmt.Errorf("check overlap: %w", err)
	}
	if overlap {
		return nil, ErrOverlap
	}

	slot := &model.Slot{
		TutorID:   tutorID,
		Date:      date,
		StartTime: start,
		EndTime:   end,
		State:     model.SlotStateFree,
	}

	if err := s.slots.Create(ctx, slot); err != nil {
		return nil, fmt.Errorf("create slot: %w", err)
	}

	s.logger.Info("Slot created",
		zap.Int64("slot_id", slot.ID),
		zap.Int64("tutor_id", tutorID),
		zap.Time("start_time", start),
		zap.Time("end_time", end),
	)

	return slot, nil
}

// UpdateSlot меняет дату и время слота, пока тот свободен
func (s *SlotService) UpdateSlot(ctx context.Context, tutorID, slotID int64, date, start, end time.Time) (*model.Slot, error) {
	slot, err := s.ownedSlot(ctx, tutorID, slotID)
	if err != nil {
		return nil, err
	}

	if slot.State != model.SlotStateFree {
		return nil, ErrInvalidState
	}

	if !start.Before(end) {
		return nil, ErrInvalidRange
	}

	overlap, err := s.slots.HasOverlap(ctx, tutorID, slotID, start, end)
	if err != nil {
		return nil, fmt.Errorf("check overlap: %w", err)
	}
	if overlap {
		return nil, ErrOverlap
	}

	slot.Date = date
	slot.StartTime = start
	slot.EndTime = end

	if err := s.slots.Update(ctx, slot); err != nil {
		// Кто-то успел занять слот между чтением и обновлением
		if errors.Is(err, repository.ErrStateConflict) {
			return nil, ErrInvalidState
		}
		return nil, fmt.Errorf("update slot: %w", err)
	}

	s.logger.Info("Slot updated",
		zap.Int64("slot_id", slotID),
		zap.Int64("tutor_id", tutorID),
	)

	return slot, nil
}

// DeleteSlot удаляет слот, пока тот свободен
func (s *SlotService) DeleteSlot(ctx context.Context, tutorID, slotID int64) error {
	slot, err := s.ownedSlot(ctx, tutorID, slotID)
	if err != nil {
		return err
	}

	if slot.State != model.SlotStateFree {
		return ErrInvalidState
	}

	if err := s.slots.Delete(ctx, slotID); err != nil {
		if errors.Is(err, repository.ErrStateConflict) {
			return ErrInvalidState
		}
		return fmt.Errorf("delete slot: %w", err)
	}

	s.logger.Info("Slot deleted",
		zap.Int64("slot_id", slotID),
		zap.Int64("tutor_id", tutorID),
	)

	return nil
}

// GetByTutor получает все слоты репетитора в диапазоне времени
func (s *SlotService) GetByTutor(ctx context.Context, tutorID int64, from, to time.Time) ([]*model.Slot, error) {
	return s.slots.GetByTutor(ctx, tutorID, from, to)
}

// GetFree получает свободные слоты репетитора в диапазоне времени
func (s *SlotService) GetFree(ctx context.Context, tutorID int64, from, to time.Time) ([]*model.Slot, error) {
	return s.slots.GetFree(ctx, tutorID, from, to)
}

func (s *SlotService) ownedSlot(ctx context.Context, tutorID, slotID int64) (*model.Slot, error) {
	slot, err := s.slots.GetByID(ctx, slotID)
	if err != nil {
		return nil, fmt.Errorf("get slot: %w", err)
	}

	// Чужой слот неотличим от несуществующего
	if slot == nil || slot.TutorID != tutorID {
		return nil, ErrNotFound
	}

	return slot, nil
}

func (s *SlotService) checkTutor(ctx context.Context, tutorID int64) error {
	tutor, err := s.users.GetByID(ctx, tutorID)
	if err != nil {
		return fmt.Errorf("get tutor: %w", err)
	}

	if tutor == nil || !tutor.IsTutor() {
		return ErrForbidden
	}

	return nil
}
