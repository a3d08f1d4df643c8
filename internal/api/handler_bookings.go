package api

import (
	"fmt"
	"net/http"

	"github.com/Freeeeeet/tutor_market/internal/model"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type finalizeRequest struct {
	TutorID       int64  `json:"tutor_id" binding:"required"`
	SlotID        int64  `json:"slot_id" binding:"required"`
	StudentID     int64  `json:"student_id" binding:"required"`
	Subject       string `json:"subject" binding:"required"`
	PaymentMethod string `json:"payment_method" binding:"required"`
	Amount        int64  `json:"amount" binding:"required,gt=0"`
}

// Finalize POST /bookings
func (h *Handler) Finalize(c *gin.Context) {
	var req finalizeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	booking, err := h.bookings.Finalize(
		c.Request.Context(),
		req.TutorID,
		req.SlotID,
		req.StudentID,
		req.Subject,
		req.PaymentMethod,
		req.Amount,
	)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, booking)
}

// ListBookings GET /bookings?student_id= или ?tutor_id=
func (h *Handler) ListBookings(c *gin.Context) {
	if raw := c.Query("student_id"); raw != "" {
		studentID, err := queryID(c, "student_id")
		if err != nil {
			badRequest(c, err)
			return
		}
		bookings, err := h.bookings.GetStudentBookings(c.Request.Context(), studentID)
		if err != nil {
			h.respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"bookings": bookings})
		return
	}

	tutorID, err := queryID(c, "tutor_id")
	if err != nil {
		badRequest(c, err)
		return
	}
	bookings, err := h.bookings.GetTutorBookings(c.Request.Context(), tutorID)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"bookings": bookings})
}

// GetBooking GET /bookings/:id
func (h *Handler) GetBooking(c *gin.Context) {
	bookingID, err := bookingID(c)
	if err != nil {
		badRequest(c, err)
		return
	}

	booking, err := h.bookings.GetByID(c.Request.Context(), bookingID)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, booking)
}

type completeRequest struct {
	TutorID int64 `json:"tutor_id" binding:"required"`
}

// CompleteBooking POST /bookings/:id/complete
func (h *Handler) CompleteBooking(c *gin.Context) {
	bookingID, err := bookingID(c)
	if err != nil {
		badRequest(c, err)
		return
	}

	var req completeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	booking, err := h.bookings.MarkCompleted(c.Request.Context(), bookingID, req.TutorID)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, booking)
}

type cancelRequest struct {
	ActorID int64          `json:"actor_id" binding:"required"`
	Role    model.UserRole `json:"role" binding:"required,oneof=tutor admin"`
}

// CancelBooking POST /bookings/:id/cancel
func (h *Handler) CancelBooking(c *gin.Context) {
	bookingID, err := bookingID(c)
	if err != nil {
		badRequest(c, err)
		return
	}

	var req cancelRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	booking, err := h.bookings.Cancel(c.Request.Context(), bookingID, req.ActorID, req.Role)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, booking)
}

type rateRequest struct {
	StudentID int64  `json:"student_id" binding:"required"`
	Rating    int    `json:"rating" binding:"required"`
	Comment   string `json:"comment"`
	Anonymous bool   `json:"anonymous"`
}

// RateBooking POST /bookings/:id/rating
func (h *Handler) RateBooking(c *gin.Context) {
	bookingID, err := bookingID(c)
	if err != nil {
		badRequest(c, err)
		return
	}

	var req rateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	booking, err := h.bookings.Rate(
		c.Request.Context(),
		bookingID,
		req.StudentID,
		req.Rating,
		req.Comment,
		req.Anonymous,
	)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, booking)
}

func bookingID(c *gin.Context) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return uuid.Nil, fmt.Errorf("invalid booking id: %w", err)
	}
	return id, nil
}
