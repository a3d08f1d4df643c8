package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/Freeeeeet/tutor_market/internal/gateway"
	"github.com/Freeeeeet/tutor_market/internal/model"
	"github.com/Freeeeeet/tutor_market/internal/repository/memory"
	"github.com/Freeeeeet/tutor_market/internal/service"
)

type apiFixture struct {
	router  *gin.Engine
	store   *memory.Store
	tutor   *model.User
	student *model.User
}

func newAPIFixture(t *testing.T) *apiFixture {
	t.Helper()
	gin.SetMode(gin.TestMode)
	ctx := context.Background()
	store := memory.NewStore()
	logger := zap.NewNop()

	tutor := &model.User{Role: model.RoleTutor, FirstName: "Anna"}
	require.NoError(t, store.Users().Create(ctx, tutor))
	student := &model.User{Role: model.RoleStudent, FirstName: "Boris"}
	require.NoError(t, store.Users().Create(ctx, student))

	notifier := gateway.NewDispatcher(1, store.Users(), &gateway.NoopSender{Logger: logger}, logger)
	slotSvc := service.NewSlotService(store.Slots(), store.Users(), logger)
	resSvc := service.NewReservationService(store.Slots(), store.Reservations(), 15*time.Minute, logger)
	bookingSvc := service.NewBookingService(store.Bookings(), store.Users(), resSvc, gateway.AutoApprove{}, notifier, logger)

	h := NewHandler(slotSvc, resSvc, bookingSvc, logger)
	router := NewRouter(h, 1000, time.Millisecond)

	return &apiFixture{router: router, store: store, tutor: tutor, student: student}
}

func (f *apiFixture) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)
	return w
}

func (f *apiFixture) createSlot(t *testing.T) int64 {
	t.Helper()
	w := f.do(t, http.MethodPost, "/slots", gin.H{
		"tutor_id":   f.tutor.ID,
		"date":       "2025-11-10",
		"start_time": "10:00",
		"end_time":   "11:00",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var slot model.Slot
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &slot))
	return slot.ID
}

func TestAPI_CreateSlot(t *testing.T) {
	f := newAPIFixture(t)
	f.createSlot(t)

	// Пересечение с уже созданным слотом
	w := f.do(t, http.MethodPost, "/slots", gin.H{
		"tutor_id":   f.tutor.ID,
		"date":       "2025-11-10",
		"start_time": "10:30",
		"end_time":   "11:30",
	})
	assert.Equal(t, http.StatusConflict, w.Code)

	// start после end
	w = f.do(t, http.MethodPost, "/slots", gin.H{
		"tutor_id":   f.tutor.ID,
		"date":       "2025-11-11",
		"start_time": "12:00",
		"end_time":   "11:00",
	})
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

	// Кривое тело запроса
	w = f.do(t, http.MethodPost, "/slots", gin.H{"tutor_id": f.tutor.ID})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAPI_ReserveAndConflict(t *testing.T) {
	f := newAPIFixture(t)
	slotID := f.createSlot(t)

	body := gin.H{"tutor_id": f.tutor.ID, "slot_id": slotID, "student_id": f.student.ID}
	w := f.do(t, http.MethodPost, "/reservations", body)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var resp struct {
		ReservationID string    `json:"reservation_id"`
		ExpiresAt     time.Time `json:"expires_at"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.NotEmpty(t, resp.ReservationID)
	assert.True(t, resp.ExpiresAt.After(time.Now()))

	// Второй студент получает 409
	other := gin.H{"tutor_id": f.tutor.ID, "slot_id": slotID, "student_id": f.student.ID + 10}
	w = f.do(t, http.MethodPost, "/reservations", other)
	assert.Equal(t, http.StatusConflict, w.Code)

	// Чужая попытка снять бронь - 403, своя - 200
	w = f.do(t, http.MethodDelete, "/reservations", other)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = f.do(t, http.MethodDelete, "/reservations", body)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestAPI_ReserveUnknownSlot(t *testing.T) {
	f := newAPIFixture(t)

	w := f.do(t, http.MethodPost, "/reservations", gin.H{
		"tutor_id":   f.tutor.ID,
		"slot_id":    999,
		"student_id": f.student.ID,
	})
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestAPI_BookingLifecycle(t *testing.T) {
	f := newAPIFixture(t)
	slotID := f.createSlot(t)

	w := f.do(t, http.MethodPost, "/reservations", gin.H{
		"tutor_id": f.tutor.ID, "slot_id": slotID, "student_id": f.student.ID,
	})
	require.Equal(t, http.StatusCreated, w.Code)

	// Финализация без брони - 410
	w = f.do(t, http.MethodPost, "/bookings", gin.H{
		"tutor_id": f.tutor.ID, "slot_id": slotID, "student_id": f.student.ID + 10,
		"subject": "Математика", "payment_method": "card", "amount": 150000,
	})
	assert.Equal(t, http.StatusGone, w.Code)

	w = f.do(t, http.MethodPost, "/bookings", gin.H{
		"tutor_id": f.tutor.ID, "slot_id": slotID, "student_id": f.student.ID,
		"subject": "Математика", "payment_method": "card", "amount": 150000,
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var booking model.Booking
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &booking))

	base := fmt.Sprintf("/bookings/%s", booking.ID)

	w = f.do(t, http.MethodGet, base, nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = f.do(t, http.MethodGet, fmt.Sprintf("/bookings?student_id=%d", f.student.ID), nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), booking.ID.String())

	// Завершить может только репетитор записи
	w = f.do(t, http.MethodPost, base+"/complete", gin.H{"tutor_id": f.tutor.ID + 1})
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = f.do(t, http.MethodPost, base+"/complete", gin.H{"tutor_id": f.tutor.ID})
	assert.Equal(t, http.StatusOK, w.Code)

	// Завершённую запись нельзя отменить
	w = f.do(t, http.MethodPost, base+"/cancel", gin.H{"actor_id": f.tutor.ID, "role": "tutor"})
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

	w = f.do(t, http.MethodPost, base+"/rating", gin.H{
		"student_id": f.student.ID, "rating": 5, "comment": "Отлично",
	})
	assert.Equal(t, http.StatusOK, w.Code)

	// Повторная оценка - 409
	w = f.do(t, http.MethodPost, base+"/rating", gin.H{
		"student_id": f.student.ID, "rating": 4,
	})
	assert.Equal(t, http.StatusConflict, w.Code)

	// Оценка вне шкалы - 422
	w = f.do(t, http.MethodPost, base+"/rating", gin.H{
		"student_id": f.student.ID, "rating": 9,
	})
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
}

func TestAPI_CancelFreesSlot(t *testing.T) {
	f := newAPIFixture(t)
	slotID := f.createSlot(t)

	w := f.do(t, http.MethodPost, "/reservations", gin.H{
		"tutor_id": f.tutor.ID, "slot_id": slotID, "student_id": f.student.ID,
	})
	require.Equal(t, http.StatusCreated, w.Code)

	w = f.do(t, http.MethodPost, "/bookings", gin.H{
		"tutor_id": f.tutor.ID, "slot_id": slotID, "student_id": f.student.ID,
		"subject": "Физика", "payment_method": "sbp", "amount": 100000,
	})
	require.Equal(t, http.StatusCreated, w.Code)

	var booking model.Booking
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &booking))

	w = f.do(t, http.MethodPost, fmt.Sprintf("/bookings/%s/cancel", booking.ID), gin.H{
		"actor_id": f.tutor.ID, "role": "tutor",
	})
	require.Equal(t, http.StatusOK, w.Code)

	// Слот снова в продаже
	w = f.do(t, http.MethodPost, "/reservations", gin.H{
		"tutor_id": f.tutor.ID, "slot_id": slotID, "student_id": f.student.ID + 3,
	})
	assert.Equal(t, http.StatusCreated, w.Code)
}

func TestAPI_ScheduleImage(t *testing.T) {
	f := newAPIFixture(t)
	f.createSlot(t)

	w := f.do(t, http.MethodGet, fmt.Sprintf("/tutors/%d/schedule.png?week=2025-11-10", f.tutor.ID), nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "image/png", w.Header().Get("Content-Type"))
	assert.Greater(t, w.Body.Len(), 8)
}
