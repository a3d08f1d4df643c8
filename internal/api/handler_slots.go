package api

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
)

const (
	dateLayout  = "2006-01-02"
	clockLayout = "15:04"
)

type slotRequest struct {
	TutorID   int64  `json:"tutor_id" binding:"required"`
	Date      string `json:"date" binding:"required"`
	StartTime string `json:"start_time" binding:"required"`
	EndTime   string `json:"end_time" binding:"required"`
}

// CreateSlot POST /slots
func (h *Handler) CreateSlot(c *gin.Context) {
	var req slotRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	date, start, end, err := parseSlotTimes(req.Date, req.StartTime, req.EndTime)
	if err != nil {
		badRequest(c, err)
		return
	}

	slot, err := h.slots.CreateSlot(c.Request.Context(), req.TutorID, date, start, end)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, slot)
}

// UpdateSlot PUT /slots/:id
func (h *Handler) UpdateSlot(c *gin.Context) {
	slotID, err := pathID(c, "id")
	if err != nil {
		badRequest(c, err)
		return
	}

	var req slotRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	date, start, end, err := parseSlotTimes(req.Date, req.StartTime, req.EndTime)
	if err != nil {
		badRequest(c, err)
		return
	}

	slot, err := h.slots.UpdateSlot(c.Request.Context(), req.TutorID, slotID, date, start, end)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, slot)
}

// DeleteSlot DELETE /slots/:id
func (h *Handler) DeleteSlot(c *gin.Context) {
	slotID, err := pathID(c, "id")
	if err != nil {
		badRequest(c, err)
		return
	}

	tutorID, err := queryID(c, "tutor_id")
	if err != nil {
		badRequest(c, err)
		return
	}

	if err := h.slots.DeleteSlot(c.Request.Context(), tutorID, slotID); err != nil {
		h.respondError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// ListSlots GET /slots?tutor_id=&from=&to=
func (h *Handler) ListSlots(c *gin.Context) {
	h.listSlots(c, false)
}

// ListFreeSlots GET /slots/free?tutor_id=&from=&to=
func (h *Handler) ListFreeSlots(c *gin.Context) {
	h.listSlots(c, true)
}

func (h *Handler) listSlots(c *gin.Context, onlyFree bool) {
	tutorID, err := queryID(c, "tutor_id")
	if err != nil {
		badRequest(c, err)
		return
	}

	from, to, err := queryRange(c)
	if err != nil {
		badRequest(c, err)
		return
	}

	var slots any
	if onlyFree {
		slots, err = h.slots.GetFree(c.Request.Context(), tutorID, from, to)
	} else {
		slots, err = h.slots.GetByTutor(c.Request.Context(), tutorID, from, to)
	}
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"slots": slots})
}

func parseSlotTimes(dateStr, startStr, endStr string) (date, start, end time.Time, err error) {
	date, err = time.Parse(dateLayout, dateStr)
	if err != nil {
		return date, start, end, fmt.Errorf("invalid date: %w", err)
	}

	start, err = clockOnDate(date, startStr)
	if err != nil {
		return date, start, end, fmt.Errorf("invalid start_time: %w", err)
	}

	end, err = clockOnDate(date, endStr)
	if err != nil {
		return date, start, end, fmt.Errorf("invalid end_time: %w", err)
	}

	return date, start, end, nil
}

func clockOnDate(date time.Time, clock string) (time.Time, error) {
	t, err := time.Parse(clockLayout, clock)
	if err != nil {
		return time.Time{}, err
	}
	return time.Date(date.Year(), date.Month(), date.Day(), t.Hour(), t.Minute(), 0, 0, time.UTC), nil
}

func pathID(c *gin.Context, name string) (int64, error) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", name, err)
	}
	return id, nil
}

func queryID(c *gin.Context, name string) (int64, error) {
	id, err := strconv.ParseInt(c.Query(name), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", name, err)
	}
	return id, nil
}

// queryRange диапазон времени листинга, по умолчанию ближайшие 4 недели
func queryRange(c *gin.Context) (from, to time.Time, err error) {
	from = time.Now()
	to = from.AddDate(0, 0, 28)

	if raw := c.Query("from"); raw != "" {
		from, err = time.Parse(dateLayout, raw)
		if err != nil {
			return from, to, fmt.Errorf("invalid from: %w", err)
		}
	}
	if raw := c.Query("to"); raw != "" {
		to, err = time.Parse(dateLayout, raw)
		if err != nil {
			return from, to, fmt.Errorf("invalid to: %w", err)
		}
	}

	return from, to, nil
}
