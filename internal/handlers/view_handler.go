package handlers

import (
	"encoding/json"
	"net/http"

	"cachestore/internal/mapping"

	"github.com/gin-gonic/gin"
	"github.com/tidwall/gjson"
)

// MapRequest represents the payload for mapping a cache key into a view field.
// Path optionally selects part of the value with gjson syntax (e.g. "user.name").
type MapRequest struct {
	Key   string `json:"key" binding:"required"`
	Field string `json:"field" binding:"required"`
	Path  string `json:"path"`
}

// pathFilter extracts path from a value; a missing path yields nil.
func pathFilter(path string) mapping.Filter[any] {
	return func(v any) any {
		data, err := json.Marshal(v)
		if err != nil {
			return nil
		}
		res := gjson.GetBytes(data, path)
		if !res.Exists() {
			return nil
		}
		return res.Value()
	}
}

// GetView handles GET /api/views/:view
func (h *Handler) GetView(c *gin.Context) {
	id := c.Param("view")
	v, ok := h.views.Lookup(id)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "View not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"view":    id,
		"state":   v.State(),
		"clients": h.hub.Clients(id),
	})
}

// MapView handles POST /api/views/:view/mappings
// Every later change of key is pushed into the view's field
func (h *Handler) MapView(c *gin.Context) {
	var req MapRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var filter mapping.Filter[any]
	if req.Path != "" {
		filter = pathFilter(req.Path)
	}

	v := h.views.Get(c.Param("view"))
	h.cache.Map(req.Key, req.Field, v, filter)

	c.JSON(http.StatusCreated, gin.H{
		"view":  v.ID(),
		"key":   req.Key,
		"field": req.Field,
		"path":  req.Path,
	})
}

// UnmapView handles DELETE /api/views/:view/mappings?key=&field=
// field is optional; without it every mapping of key into the view is removed
func (h *Handler) UnmapView(c *gin.Context) {
	key := c.Query("key")
	if key == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "key is required"})
		return
	}
	id := c.Param("view")
	if v, ok := h.views.Lookup(id); ok {
		h.cache.Unmap(key, c.Query("field"), v)
	}
	c.JSON(http.StatusOK, gin.H{"view": id, "key": key, "field": c.Query("field")})
}
