package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	ServerPort string
	AppEnv     string

	GraphDBPath  string
	DenylistFile string

	RedisURL        string
	FeedWorkerCount int

	ShutdownTimeout time.Duration

	SnapshotBucket          string
	SnapshotEndpoint        string
	SnapshotRegion          string
	SnapshotAccessKeyID     string
	SnapshotSecretAccessKey string
	SnapshotPrefix          string
}

// SnapshotsEnabled reports whether a snapshot bucket is configured.
func (c *Config) SnapshotsEnabled() bool {
	return c.SnapshotBucket != ""
}

// RedisEnabled reports whether the event stream and feed cache are configured.
func (c *Config) RedisEnabled() bool {
	return c.RedisURL != ""
}

func LoadConfig() (*Config, error) {
	err := godotenv.Load()
	if err != nil {
		log.Println("No .env file found or error loading it, relying on environment variables")
	}

	workers, err := strconv.Atoi(os.Getenv("FEED_WORKER_COUNT"))
	if err != nil || workers <= 0 {
		workers = 2
	}

	shutdownSeconds, err := strconv.Atoi(os.Getenv("SHUTDOWN_TIMEOUT_SECONDS"))
	if err != nil || shutdownSeconds <= 0 {
		shutdownSeconds = 10
	}

	return &Config{
		ServerPort: getEnv("SERVER_PORT", "8080"),
		AppEnv:     getEnv("APP_ENV", "development"),

		GraphDBPath:  getEnv("GRAPH_DB_PATH", "db/social_graph.db"),
		DenylistFile: os.Getenv("DENYLIST_FILE"),

		RedisURL:        os.Getenv("REDIS_URL"),
		FeedWorkerCount: workers,

		ShutdownTimeout: time.Duration(shutdownSeconds) * time.Second,

		SnapshotBucket:          os.Getenv("SNAPSHOT_BUCKET"),
		SnapshotEndpoint:        os.Getenv("SNAPSHOT_ENDPOINT"),
		SnapshotRegion:          getEnv("SNAPSHOT_REGION", "auto"),
		SnapshotAccessKeyID:     os.Getenv("SNAPSHOT_ACCESS_KEY_ID"),
		SnapshotSecretAccessKey: os.Getenv("SNAPSHOT_SECRET_ACCESS_KEY"),
		SnapshotPrefix:          getEnv("SNAPSHOT_PREFIX", "snapshots"),
	}, nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
