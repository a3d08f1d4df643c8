package memory

import (
	"context"
	"time"

	"github.com/Freeeeeet/tutor_market/internal/model"
	"github.com/Freeeeeet/tutor_market/internal/repository"
)

type SlotStore struct {
	s *Store
}

// Create создаёт новый слот
func (st *SlotStore) Create(ctx context.Context, slot *model.Slot) error {
	st.s.mu.Lock()
	defer st.s.mu.Unlock()

	st.s.nextSlotID++
	slot.ID = st.s.nextSlotID
	slot.CreatedAt = time.Now()
	slot.UpdatedAt = slot.CreatedAt

	cp := *slot
	st.s.slots[slot.ID] = &cp
	return nil
}

// GetByID получает слот по ID
func (st *SlotStore) GetByID(ctx context.Context, id int64) (*model.Slot, error) {
	st.s.mu.Lock()
	defer st.s.mu.Unlock()

	slot, ok := st.s.slots[id]
	if !ok {
		return nil, nil
	}
	cp := *slot
	return &cp, nil
}

// GetByTutor получает все слоты репетитора в диапазоне времени
func (st *SlotStore) GetByTutor(ctx context.Context, tutorID int64, from, to time.Time) ([]*model.Slot, error) {
	return st.list(tutorID, from, to, false)
}

// GetFree получает свободные слоты репетитора в диапазоне времени
func (st *SlotStore) GetFree(ctx context.Context, tutorID int64, from, to time.Time) ([]*model.Slot, error) {
	return st.list(tutorID, from, to, true)
}

func (st *SlotStore) list(tutorID int64, from, to time.Time, onlyFree bool) ([]*model.Slot, error) {
	st.s.mu.Lock()
	defer st.s.mu.Unlock()

	var slots []*model.Slot
	for _, slot := range st.s.slots {
		if slot.TutorID != tutorID {
			continue
		}
		if slot.StartTime.Before(from) || !slot.StartTime.Before(to) {
			continue
		}
		if onlyFree && slot.State != model.SlotStateFree {
			continue
		}
		cp := *slot
		slots = append(slots, &cp)
	}

	sortSlots(slots)
	return slots, nil
}

// Update обновляет дату и время слота, только пока слот свободен
func (st *SlotStore) Update(ctx context.Context, slot *model.Slot) error {
	st.s.mu.Lock()
	defer st.s.mu.Unlock()

	existing, ok := st.s.slots[slot.ID]
	if !ok || existing.State != model.SlotStateFree {
		return repository.ErrStateConflict
	}

	existing.Date = slot.Date
	existing.StartTime = slot.StartTime
	existing.EndTime = slot.EndTime
	existing.UpdatedAt = time.Now()
	return nil
}

// Delete удаляет свободный слот
func (st *SlotStore) Delete(ctx context.Context, id int64) error {
	st.s.mu.Lock()
	defer st.s.mu.Unlock()

	existing, ok := st.s.slots[id]
	if !ok || existing.State != model.SlotStateFree {
		return repository.ErrStateConflict
	}

	delete(st.s.slots, id)
	return nil
}

// Transition атомарный compare-and-swap состояния слота под мьютексом хранилища
func (st *SlotStore) Transition(ctx context.Context, slotID int64, from, to model.SlotState) (bool, error) {
	st.s.mu.Lock()
	defer st.s.mu.Unlock()

	return st.s.transitionLocked(slotID, from, to), nil
}

// transitionLocked compare-and-swap без захвата мьютекса, для составных операций
func (s *Store) transitionLocked(slotID int64, from, to model.SlotState) bool {
	slot, ok := s.slots[slotID]
	if !ok || slot.State != from {
		return false
	}

	slot.State = to
	slot.UpdatedAt = time.Now()
	return true
}

// HasOverlap проверяет пересекается ли интервал с существующими слотами репетитора
func (st *SlotStore) HasOverlap(ctx context.Context, tutorID, excludeID int64, start, end time.Time) (bool, error) {
	st.s.mu.Lock()
	defer st.s.mu.Unlock()

	for _, slot := range st.s.slots {
		if slot.TutorID != tutorID || slot.ID == excludeID {
			continue
		}
		if slot.StartTime.Before(end) && start.Before(slot.EndTime) {
			return true, nil
		}
	}
	return false, nil
}

func sortSlots(slots []*model.Slot) {
	for i := 1; i < len(slots); i++ {
		for j := i; j > 0 && slots[j].StartTime.Before(slots[j-1].StartTime); j-- {
			slots[j], slots[j-1] = slots[j-1], slots[j]
		}
	}
}
