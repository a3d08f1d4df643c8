package api

import (
	"fmt"
	"net/http"
	"time"

	"github.com/Freeeeeet/tutor_market/internal/render"
	"github.com/gin-gonic/gin"
)

// TutorScheduleImage GET /tutors/:id/schedule.png?week=2025-11-10
// Рисует недельный календарь слотов репетитора.
func (h *Handler) TutorScheduleImage(c *gin.Context) {
	tutorID, err := pathID(c, "id")
	if err != nil {
		badRequest(c, err)
		return
	}

	weekStart := mondayOf(time.Now().UTC())
	if raw := c.Query("week"); raw != "" {
		parsed, err := time.Parse(dateLayout, raw)
		if err != nil {
			badRequest(c, fmt.Errorf("invalid week: %w", err))
			return
		}
		weekStart = mondayOf(parsed)
	}

	slots, err := h.slots.GetByTutor(c.Request.Context(), tutorID, weekStart, weekStart.AddDate(0, 0, 7))
	if err != nil {
		h.respondError(c, err)
		return
	}

	png, err := render.WeekImage(weekStart, slots)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.Data(http.StatusOK, "image/png", png)
}

// mondayOf начало недели для даты
func mondayOf(t time.Time) time.Time {
	t = time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
	weekday := int(t.Weekday())
	if weekday == 0 {
		weekday = 7
	}
	return t.AddDate(0, 0, 1-weekday)
}
