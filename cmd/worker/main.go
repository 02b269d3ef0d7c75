package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/sajidulbari/loopin/backend/internal/cache"
	"github.com/sajidulbari/loopin/backend/internal/idgen"
	"github.com/sajidulbari/loopin/backend/internal/queue"
	"github.com/sajidulbari/loopin/backend/internal/relationship"
	"github.com/sajidulbari/loopin/backend/internal/repositories"
	"github.com/sajidulbari/loopin/backend/pkg/config"
)

func main() {
	// Load configuration
	cfg := config.Load()

	// Initialize database connections
	db, err := config.InitDB()
	if err != nil {
		log.Fatalf("Failed to initialize databases: %v", err)
	}
	defer db.CloseDB()

	// Initialize the cache tier
	rdb, err := config.InitRedis(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize Redis: %v", err)
	}

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

	gen, err := idgen.NewSnowflake(cfg.WorkerNodeID)
	if err != nil {
		log.Fatalf("Failed to initialize id generator: %v", err)
	}

	userRepo := repositories.NewPostgresUserRepository(db.Postgres)
	relationshipRepo := repositories.NewPostgresRelationshipRepository(db.Postgres)
	processedRepo := repositories.NewMongoProcessedEventRepository(db.Mongo.Database("loopin"))

	consumer := relationship.NewConsumer(taskQueue, userRepo, relationshipRepo, processedRepo, cache.NewRedisStore(rdb), gen)
	consumer.SetLeaseBounds(cfg.LeaseMaxTasks, relationship.DefaultLeaseWait)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	log.Printf("Relationship worker started (interval: %s, lease: %d tasks).", cfg.WorkerInterval, cfg.LeaseMaxTasks)
	consumer.Run(ctx, cfg.WorkerInterval)
	log.Println("Relationship worker stopped.")
}
