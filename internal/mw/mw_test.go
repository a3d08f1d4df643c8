package mw

import (
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/patrickmn/go-cache"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"
)

func TestCache(t *testing.T) {
	gin.SetMode(gin.TestMode)

	store := cache.New(time.Minute, time.Minute)
	hits := 0

	r := gin.New()
	r.GET("/counted", Cache(store, time.Minute), func(c *gin.Context) {
		hits++
		c.String(http.StatusOK, strconv.Itoa(hits))
	})

	for i := 0; i < 3; i++ {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/counted", nil))
		require.Equal(t, http.StatusOK, w.Code)
		// Все ответы из кэша первого запроса
		assert.Equal(t, "1", w.Body.String())
	}
	assert.Equal(t, 1, hits)

	// Другой URI - другой ключ
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/counted?x=1", nil))
	assert.Equal(t, "2", w.Body.String())
}

func TestCache_SkipsErrors(t *testing.T) {
	gin.SetMode(gin.TestMode)

	store := cache.New(time.Minute, time.Minute)
	hits := 0

	r := gin.New()
	r.GET("/fail", Cache(store, time.Minute), func(c *gin.Context) {
		hits++
		c.String(http.StatusInternalServerError, "boom")
	})

	for i := 0; i < 2; i++ {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/fail", nil))
		require.Equal(t, http.StatusInternalServerError, w.Code)
	}
	// Ошибки не кэшируются
	assert.Equal(t, 2, hits)
}

func TestRateLimiter(t *testing.T) {
	gin.SetMode(gin.TestMode)

	r := gin.New()
	r.Use(RateLimiter(rate.Limit(1), 2))
	r.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	codes := make([]int, 0, 4)
	for i := 0; i < 4; i++ {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.RemoteAddr = "10.0.0.1:1234"
		r.ServeHTTP(w, req)
		codes = append(codes, w.Code)
	}

	// Burst из двух запросов проходит, дальше отсечка
	assert.Equal(t, http.StatusOK, codes[0])
	assert.Equal(t, http.StatusOK, codes[1])
	assert.Equal(t, http.StatusTooManyRequests, codes[2])
	assert.Equal(t, http.StatusTooManyRequests, codes[3])

	// Другой IP лимитируется отдельно
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "10.0.0.2:1234"
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
}
