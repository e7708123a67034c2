package handlers

import (
	"log"
	"math"
	"net/http"
	"time"

	"cachestore/internal/local"

	"github.com/gin-gonic/gin"
)

// SetLocalRequest represents the payload for writing straight to the local store.
// ExpireAfter is in seconds; fractions are allowed, 0 or absent never expires
// and a negative value stores nothing. Huge values are capped at about 292 years.
type SetLocalRequest struct {
	SetValueRequest
	ExpireAfter float64 `json:"expireAfter"`
}

// expireAfterDuration converts seconds to a Duration for local.Store.Set.
// Values beyond the Duration range are clamped to its maximum and positive
// values below one nanosecond become one nanosecond, so only 0 means "never".
func expireAfterDuration(seconds float64) time.Duration {
	switch {
	case seconds < 0:
		return -1
	case seconds == 0:
		return 0
	}
	ns := seconds * float64(time.Second)
	if ns >= math.MaxInt64 {
		return time.Duration(math.MaxInt64)
	}
	if ns < 1 {
		return time.Nanosecond
	}
	return time.Duration(ns)
}

func (h *Handler) localStore(c *gin.Context) (*local.Store, bool) {
	s := h.cache.Local()
	if s == nil {
		c.JSON(http.StatusConflict, gin.H{"error": "Local store is not configured"})
		return nil, false
	}
	return s, true
}

// GetLocal handles GET /api/local/:key
func (h *Handler) GetLocal(c *gin.Context) {
	s, ok := h.localStore(c)
	if !ok {
		return
	}
	key := c.Param("key")
	v, found := s.Get(key)
	if !found {
		c.JSON(http.StatusNotFound, gin.H{"error": "Key not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"key": key, "value": v})
}

// SetLocal handles PUT /api/local/:key
func (h *Handler) SetLocal(c *gin.Context) {
	s, ok := h.localStore(c)
	if !ok {
		return
	}
	key := c.Param("key")

	var req SetLocalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if len(req.Value) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "value is required"})
		return
	}
	v, err := decodeValue(req.Value)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ttl := expireAfterDuration(req.ExpireAfter)
	if err := s.Set(key, v, ttl); err != nil {
		log.Printf("local: set %q: %v", key, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to store value"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"key": key, "stored": ttl >= 0})
}

// DeleteLocal handles DELETE /api/local/:key
func (h *Handler) DeleteLocal(c *gin.Context) {
	s, ok := h.localStore(c)
	if !ok {
		return
	}
	key := c.Param("key")
	if err := s.Del(key); err != nil {
		log.Printf("local: del %q: %v", key, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete value"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"key": key, "deleted": true})
}

// EmptyLocal handles DELETE /api/local
// Only keys of this store's namespace are removed
func (h *Handler) EmptyLocal(c *gin.Context) {
	s, ok := h.localStore(c)
	if !ok {
		return
	}
	if err := s.Empty(); err != nil {
		log.Printf("local: empty: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to empty local store"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Local store emptied"})
}
