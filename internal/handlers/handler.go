package handlers

import (
	"encoding/json"
	"strconv"

	"cachestore/internal/auth"
	"cachestore/internal/cache"
	"cachestore/internal/realtime"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// Handler serves the admin API of one cache service.
type Handler struct {
	cache  *cache.Store[any]
	views  *realtime.Views
	hub    *realtime.Hub
	db     *gorm.DB
	tokens *auth.Manager
}

// Deps groups what a Handler needs.
type Deps struct {
	Cache  *cache.Store[any]
	Hub    *realtime.Hub
	Views  *realtime.Views
	DB     *gorm.DB
	Tokens *auth.Manager
}

// New builds a Handler. A nil Views is created on top of Hub.
func New(d Deps) *Handler {
	views := d.Views
	if views == nil {
		views = realtime.NewViews(d.Hub)
	}
	return &Handler{
		cache:  d.Cache,
		views:  views,
		hub:    d.Hub,
		db:     d.DB,
		tokens: d.Tokens,
	}
}

// queryFlag reads a boolean query parameter; anything unparsable is false.
func queryFlag(c *gin.Context, name string) bool {
	v, err := strconv.ParseBool(c.DefaultQuery(name, "false"))
	return err == nil && v
}

// decodeValue turns a raw JSON body field into a generic value.
func decodeValue(raw json.RawMessage) (any, error) {
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return nil, err
	}
	return v, nil
}
