package config

import (
	"os"
	"strconv"
	"time"
)

type Config struct {
	Port                    string
	Env                     string
	FirebaseCredentialsPath string
	PostgresUrl             string
	MongoURI                string
	RedisAddr               string
	RedisPassword           string
	NatsURL                 string
	QueueStream             string
	QueueSubject            string
	LeaseVisibility         time.Duration
	LeaseMaxTasks           int
	WorkerInterval          time.Duration
	WorkerNodeID            int64
}

func Load() *Config {
	return &Config{
		Port:                    getEnv("PORT", "8080"),
		Env:                     getEnv("ENV", "development"),
		FirebaseCredentialsPath: getEnv("FIREBASE_CREDENTIALS_PATH", ""),
		PostgresUrl:             getEnv("POSTGRES_URL", "http://localhost:5432"),
		MongoURI:                getEnv("MONGO_URI", ""),
		RedisAddr:               getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPassword:           getEnv("REDIS_PASSWORD", ""),
		NatsURL:                 getEnv("NATS_URL", "nats://localhost:4222"),
		QueueStream:             getEnv("QUEUE_STREAM", "RELATIONSHIP"),
		QueueSubject:            getEnv("QUEUE_SUBJECT", "relationship"),
		LeaseVisibility:         getDurationEnv("LEASE_VISIBILITY", time.Hour),
		LeaseMaxTasks:           getIntEnv("LEASE_MAX_TASKS", 500),
		WorkerInterval:          getDurationEnv("WORKER_INTERVAL", time.Minute),
		WorkerNodeID:            int64(getIntEnv("WORKER_NODE_ID", 0)),
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return defaultValue
}

func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
