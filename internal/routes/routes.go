package routes

import (
	"net/http"

	"cachestore/internal/auth"
	"cachestore/internal/handlers"
	"cachestore/internal/middleware"
	"cachestore/internal/telemetry"

	"github.com/gin-gonic/gin"
)

const allowedHeaders = "Content-Type, Content-Length, Accept-Encoding, Authorization, accept, origin, Cache-Control, X-Requested-With"

// cors lets browser dashboards call the admin API and answers preflight requests.
func cors() gin.HandlerFunc {
	return func(c *gin.Context) {
		h := c.Writer.Header()
		h.Set("Access-Control-Allow-Origin", "*")
		h.Set("Access-Control-Allow-Credentials", "true")
		h.Set("Access-Control-Allow-Headers", allowedHeaders)
		h.Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, DELETE")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}

// SetupRoutes wires the admin API, guarded by tokens, onto a new engine.
func SetupRoutes(h *handlers.Handler, tokens *auth.Manager) *gin.Engine {
	ginRouter := gin.Default()
	ginRouter.Use(telemetry.Tracing(), cors())

	// Health check endpoint
	ginRouter.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "ok",
			"message": "Cache store API is running",
		})
	})

	// Public routes (no authentication required)
	api := ginRouter.Group("/api")
	{
		api.POST("/login", h.Login)
	}

	// Protected routes (authentication required)
	protectedRoutes := api.Group("")
	protectedRoutes.Use(middleware.JWTAuthMiddleware(tokens))
	{
		// Memory cache
		protectedRoutes.GET("/cache", h.ListKeys)
		protectedRoutes.DELETE("/cache", h.EmptyCache)
		protectedRoutes.GET("/cache/:key", h.GetValue)
		protectedRoutes.PUT("/cache/:key", h.SetValue)
		protectedRoutes.DELETE("/cache/:key", h.DeleteValue)
		protectedRoutes.POST("/cache/:key/local", h.SaveToLocal)
		protectedRoutes.GET("/cache/:key/local", h.GetFromLocal)
		protectedRoutes.DELETE("/cache/:key/local", h.RemoveFromLocal)

		// Persistent store
		protectedRoutes.DELETE("/local", h.EmptyLocal)
		protectedRoutes.GET("/local/:key", h.GetLocal)
		protectedRoutes.PUT("/local/:key", h.SetLocal)
		protectedRoutes.DELETE("/local/:key", h.DeleteLocal)

		// Views fed by mappings
		protectedRoutes.GET("/views/:view", h.GetView)
		protectedRoutes.POST("/views/:view/mappings", h.MapView)
		protectedRoutes.DELETE("/views/:view/mappings", h.UnmapView)
	}

	ws := ginRouter.Group("/ws")
	ws.Use(middleware.JWTAuthMiddleware(tokens))
	{
		ws.GET("/views/:view", h.WatchView)
	}

	return ginRouter
}
