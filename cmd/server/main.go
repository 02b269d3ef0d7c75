package main

import (
	"context"
	"log"

	"github.com/labstack/echo/v4"
	"github.com/sajidulbari/loopin/backend/internal/cache"
	"github.com/sajidulbari/loopin/backend/internal/notifier"
	"github.com/sajidulbari/loopin/backend/internal/queue"
	"github.com/sajidulbari/loopin/backend/internal/router"
	"github.com/sajidulbari/loopin/backend/pkg/config"
	"github.com/sajidulbari/loopin/backend/pkg/firebase"
	"github.com/sajidulbari/loopin/backend/validators"
)

func main() {
	// Load configuration
	cfg := config.Load()

	// Initialize database connections
	db, err := config.InitDB()
	if err != nil {
		log.Fatalf("Failed to initialize databases: %v", err)
	}
	defer db.CloseDB() // Ensure database connections are closed when main exits

	// Initialize the cache tier
	rdb, err := config.InitRedis(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize Redis: %v", err)
	}
	cacheStore := cache.NewRedisStore(rdb)

	// Initialize the relationship queue
	nc, err := config.InitNATS(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize NATS: %v", err)
	}
	defer nc.Close()
	taskQueue, err := queue.NewJetStreamQueue(nc, cfg.QueueStream, cfg.QueueSubject, cfg.LeaseVisibility)
	if err != nil {
		log.Fatalf("Failed to initialize relationship queue: %v", err)
	}

	// Initialize Firebase
	ctx := context.Background()
	firebaseApp, err := firebase.InitFirebase(ctx, cfg.FirebaseCredentialsPath)
	if err != nil {
		log.Fatalf("Failed to initialize Firebase: %v", err)
	}
	pushNotifier := notifier.NewFCMNotifier(firebaseApp.MessagingClient)

	// Create Echo instance
	e := echo.New()

	// Setup global middleware
	router.SetupMiddleware(e)

	// Setup routes and dependencies
	router.SetupRoutes(e, db.Postgres, cacheStore, taskQueue, pushNotifier, firebaseApp.AuthClient)

	// Validator
	e.Validator = validators.NewValidator()

	// Start server
	e.Logger.Fatal(e.Start(":" + cfg.Port))
}
