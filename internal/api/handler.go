package api

import (
	"errors"
	"net/http"

	"github.com/Freeeeeet/tutor_market/internal/service"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Handler HTTP-обработчики поверх сервисов ядра
type Handler struct {
	slots        *service.SlotService
	reservations *service.ReservationService
	bookings     *service.BookingService
	logger       *zap.Logger
}

func NewHandler(
	slots *service.SlotService,
	reservations *service.ReservationService,
	bookings *service.BookingService,
	logger *zap.Logger,
) *Handler {
	return &Handler{
		slots:        slots,
		reservations: reservations,
		bookings:     bookings,
		logger:       logger,
	}
}

// respondError переводит ошибки ядра в HTTP-статусы.
// Клиенту важно отличать "выберите другой слот" (409) от
// "платёж отклонён, повторите" (402) и "бронь истекла" (410).
func (h *Handler) respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
	case errors.Is(err, service.ErrSlotUnavailable):
		c.JSON(http.StatusConflict, gin.H{"error": "slot unavailable, pick another slot"})
	case errors.Is(err, service.ErrOverlap):
		c.JSON(http.StatusConflict, gin.H{"error": "slot overlaps an existing slot"})
	case errors.Is(err, service.ErrAlreadyRated):
		c.JSON(http.StatusConflict, gin.H{"error": "booking already rated"})
	case errors.Is(err, service.ErrForbidden):
		c.JSON(http.StatusForbidden, gin.H{"error": "forbidden"})
	case errors.Is(err, service.ErrNotHeldByCaller):
		c.JSON(http.StatusForbidden, gin.H{"error": "reservation held by another student"})
	case errors.Is(err, service.ErrInvalidState):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "transition not allowed from current state"})
	case errors.Is(err, service.ErrInvalidRange):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "start time must be before end time"})
	case errors.Is(err, service.ErrOutOfRange):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "rating must be between 1 and 5"})
	case errors.Is(err, service.ErrReservationExpired):
		c.JSON(http.StatusGone, gin.H{"error": "reservation expired or missing, reserve again"})
	case errors.Is(err, service.ErrPaymentFailed):
		c.JSON(http.StatusPaymentRequired, gin.H{"error": "payment declined, retry within the hold window"})
	case errors.Is(err, service.ErrInternalInconsistency):
		h.logger.Error("Internal inconsistency surfaced to API", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	default:
		h.logger.Error("Unexpected error", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}

func badRequest(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
}
