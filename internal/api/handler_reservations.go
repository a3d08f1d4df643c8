package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

type reservationRequest struct {
	TutorID   int64 `json:"tutor_id" binding:"required"`
	SlotID    int64 `json:"slot_id" binding:"required"`
	StudentID int64 `json:"student_id" binding:"required"`
}

// Reserve POST /reservations
func (h *Handler) Reserve(c *gin.Context) {
	var req reservationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	res, err := h.reservations.Reserve(c.Request.Context(), req.TutorID, req.SlotID, req.StudentID)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"reservation_id": res.ID,
		"expires_at":     res.ExpiresAt,
	})
}

// Release DELETE /reservations
func (h *Handler) Release(c *gin.Context) {
	var req reservationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	if err := h.reservations.Release(c.Request.Context(), req.TutorID, req.SlotID, req.StudentID); err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"released": true})
}
