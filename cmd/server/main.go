package main

import (
	"context"
	"log"

	"cachestore/internal/auth"
	"cachestore/internal/cache"
	"cachestore/internal/config"
	"cachestore/internal/database"
	"cachestore/internal/handlers"
	"cachestore/internal/local"
	"cachestore/internal/realtime"
	"cachestore/internal/routes"
	"cachestore/internal/telemetry"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load config: ", err)
	}

	shutdown, err := telemetry.Setup(context.Background(), "cachestore", cfg.OTelEndpoint, cfg.OTelEnabled)
	if err != nil {
		log.Printf("tracing disabled: %v", err)
	}
	defer func() {
		if err := shutdown(context.Background()); err != nil {
			log.Printf("tracing shutdown: %v", err)
		}
	}()

	// An empty path keeps the local store in process; operators still live in an in-memory database
	dbPath := cfg.DBPath
	if dbPath == "" {
		dbPath = database.MemoryPath
	}
	db, err := database.Open(dbPath, database.ParseLogLevel(cfg.DBLogLevel))
	if err != nil {
		log.Fatal("Failed to connect to database: ", err)
	}

	var medium local.Medium = database.NewMedium(db)
	if cfg.DBPath == "" {
		medium = local.NewMemoryMedium()
	}

	hash, err := auth.HashPassword(cfg.AdminPassword)
	if err != nil {
		log.Fatal("Failed to hash admin password: ", err)
	}
	if err := database.SaveUser(db, cfg.AdminUser, hash); err != nil {
		log.Fatal("Failed to save admin user: ", err)
	}

	store := newCache(medium, cfg.LocalPrefix)

	tokens := auth.NewManager(cfg.JWT)
	hub := realtime.NewHub()
	h := handlers.New(handlers.Deps{
		Cache:  store,
		Hub:    hub,
		DB:     db,
		Tokens: tokens,
	})
	ginRoutes := routes.SetupRoutes(h, tokens)

	log.Printf("Server starting on %s", cfg.Addr)
	log.Println("API endpoints:")
	log.Println("  POST   /api/login")
	log.Println("  GET    /api/cache")
	log.Println("  DELETE /api/cache")
	log.Println("  GET    /api/cache/:key")
	log.Println("  PUT    /api/cache/:key")
	log.Println("  DELETE /api/cache/:key")
	log.Println("  POST   /api/cache/:key/local")
	log.Println("  GET    /api/cache/:key/local")
	log.Println("  DELETE /api/cache/:key/local")
	log.Println("  DELETE /api/local")
	log.Println("  GET    /api/local/:key")
	log.Println("  PUT    /api/local/:key")
	log.Println("  DELETE /api/local/:key")
	log.Println("  GET    /api/views/:view")
	log.Println("  POST   /api/views/:view/mappings")
	log.Println("  DELETE /api/views/:view/mappings")
	log.Println("  GET    /ws/views/:view")
	log.Println("  GET    /health")

	if err := ginRoutes.Run(cfg.Addr); err != nil {
		log.Fatal("Failed to start server: ", err)
	}
}

// newCache builds the served cache. gin handles requests on many goroutines,
// so the cache is always built concurrency safe.
func newCache(medium local.Medium, prefix string) *cache.Store[any] {
	return cache.New(cache.Options[any]{
		ConcurrencySafe: true,
		Local:           local.New(medium, prefix),
	})
}
