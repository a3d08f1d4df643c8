package api

import (
	"time"

	"github.com/Freeeeeet/tutor_market/internal/mw"
	"github.com/gin-gonic/gin"
	"github.com/patrickmn/go-cache"
	"golang.org/x/time/rate"
)

// NewRouter собирает маршруты ядра.
// Листинги слотов под коротким кэшем: их опрашивают чаще всего,
// а недолгая несвежесть безопасна - точку ставит compare-and-swap.
func NewRouter(h *Handler, rateLimit float64, cacheTTL time.Duration) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(mw.RateLimiter(rate.Limit(rateLimit), int(rateLimit)*2))

	store := cache.New(cacheTTL, 2*cacheTTL)

	slots := r.Group("/slots")
	{
		slots.POST("", h.CreateSlot)
		slots.PUT("/:id", h.UpdateSlot)
		slots.DELETE("/:id", h.DeleteSlot)
		slots.GET("", mw.Cache(store, cacheTTL), h.ListSlots)
		slots.GET("/free", mw.Cache(store, cacheTTL), h.ListFreeSlots)
	}

	r.POST("/reservations", h.Reserve)
	r.DELETE("/reservations", h.Release)

	bookings := r.Group("/bookings")
	{
		bookings.POST("", h.Finalize)
		bookings.GET("", h.ListBookings)
		bookings.GET("/:id", h.GetBooking)
		bookings.POST("/:id/complete", h.CompleteBooking)
		bookings.POST("/:id/cancel", h.CancelBooking)
		bookings.POST("/:id/rating", h.RateBooking)
	}

	r.GET("/tutors/:id/schedule.png", h.TutorScheduleImage)

	return r
}
