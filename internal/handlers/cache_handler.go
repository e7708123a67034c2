package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"cachestore/internal/cache"

	"github.com/gin-gonic/gin"
)

// SetValueRequest represents the payload for storing a cache value
type SetValueRequest struct {
	Value json.RawMessage `json:"value"`
}

// respondLocalError maps a persistent tier failure to a response. applied reports
// that the in-memory change already took effect and listeners were notified.
func respondLocalError(c *gin.Context, key string, err error, applied bool) {
	if errors.Is(err, cache.ErrNoLocalStore) {
		c.JSON(http.StatusConflict, gin.H{"error": "Local store is not configured", "applied": applied})
		return
	}
	log.Printf("cache: local store %q: %v", key, err)
	msg := "Failed to update local store"
	if applied {
		msg = "Memory cache updated but local store update failed"
	}
	c.JSON(http.StatusInternalServerError, gin.H{"error": msg, "applied": applied})
}

// ListKeys handles GET /api/cache
// Returns the cached keys in insertion order
func (h *Handler) ListKeys(c *gin.Context) {
	keys := h.cache.Keys()
	c.JSON(http.StatusOK, gin.H{
		"keys":  keys,
		"count": len(keys),
	})
}

// GetValue handles GET /api/cache/:key
// Optional query param: local=true falls through to the local store on a memory miss
func (h *Handler) GetValue(c *gin.Context) {
	key := c.Param("key")
	v, ok := h.cache.Get(key, queryFlag(c, "local"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "Key not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"key": key, "value": v})
}

// SetValue handles PUT /api/cache/:key
// Optional query param: local=true mirrors the value to the local store
func (h *Handler) SetValue(c *gin.Context) {
	key := c.Param("key")

	var req SetValueRequest
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

	if err := h.cache.Set(key, v, queryFlag(c, "local")); err != nil {
		respondLocalError(c, key, err, true)
		return
	}
	c.JSON(http.StatusOK, gin.H{"key": key, "value": v})
}

// DeleteValue handles DELETE /api/cache/:key
// Deleting a missing key succeeds and still notifies listeners
func (h *Handler) DeleteValue(c *gin.Context) {
	key := c.Param("key")
	if err := h.cache.Del(key, queryFlag(c, "local")); err != nil {
		respondLocalError(c, key, err, true)
		return
	}
	c.JSON(http.StatusOK, gin.H{"key": key, "deleted": true})
}

// EmptyCache handles DELETE /api/cache
func (h *Handler) EmptyCache(c *gin.Context) {
	count := h.cache.Len()
	if err := h.cache.Empty(queryFlag(c, "local")); err != nil {
		respondLocalError(c, "*", err, true)
		return
	}
	c.JSON(http.StatusOK, gin.H{"deleted": count})
}

// SaveToLocal handles POST /api/cache/:key/local
func (h *Handler) SaveToLocal(c *gin.Context) {
	key := c.Param("key")
	if err := h.cache.SaveToLocal(key); err != nil {
		respondLocalError(c, key, err, false)
		return
	}
	c.JSON(http.StatusOK, gin.H{"key": key, "saved": true})
}

// GetFromLocal handles GET /api/cache/:key/local
func (h *Handler) GetFromLocal(c *gin.Context) {
	key := c.Param("key")
	v, ok := h.cache.GetFromLocal(key)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "Key not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"key": key, "value": v})
}

// RemoveFromLocal handles DELETE /api/cache/:key/local
func (h *Handler) RemoveFromLocal(c *gin.Context) {
	key := c.Param("key")
	if err := h.cache.RemoveFromLocal(key); err != nil {
		respondLocalError(c, key, err, false)
		return
	}
	c.JSON(http.StatusOK, gin.H{"key": key, "removed": true})
}
