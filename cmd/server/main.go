package main

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/lib/pq" // PostgreSQL driver
	"github.com/redis/go-redis/v9"

	"github.com/ignite/outreach-analytics/internal/analytics"
	"github.com/ignite/outreach-analytics/internal/api"
	"github.com/ignite/outreach-analytics/internal/cache"
	"github.com/ignite/outreach-analytics/internal/config"
	"github.com/ignite/outreach-analytics/internal/domain"
	"github.com/ignite/outreach-analytics/internal/pkg/distlock"
	"github.com/ignite/outreach-analytics/internal/pkg/logger"
	"github.com/ignite/outreach-analytics/internal/repository/postgres"
	"github.com/ignite/outreach-analytics/internal/service/insights"
	"github.com/ignite/outreach-analytics/internal/storage"
	"github.com/ignite/outreach-analytics/internal/worker"
)

// checkPortAvailable verifies that the target port is not already in use.
// This prevents confusion from stale processes occupying the port.
func checkPortAvailable(host string, port int) error {
	addr := fmt.Sprintf("%s:%d", host, port)
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("port %d is already in use (addr %s): %v\n"+
			"  Hint: Run 'lsof -i :%d' to find the blocking process", port, addr, err, port)
	}
	ln.Close()
	return nil
}

func main() {
	// Load configuration
	cfg, err := config.LoadFromEnv("config/config.yaml")
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if os.Getenv("DATABASE_URL") != "" {
		log.Println("[config] DATABASE_URL env override active")
	}

	logger.SetLevel(logger.ParseLevel(cfg.Logging.Level))
	logger.SetRedactPII(cfg.Logging.RedactEnabled())

	// Pre-flight check: verify the target port is available
	host := cfg.Server.GetHost()
	if err := checkPortAvailable(host, cfg.Server.Port); err != nil {
		log.Fatalf("Pre-flight check FAILED: %v", err)
	}
	log.Printf("Pre-flight check passed: port %d is available", cfg.Server.Port)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Connect to PostgreSQL (rollup store)
	if cfg.Database.URL == "" {
		log.Fatal("Database URL is not configured (set DATABASE_URL or database.url)")
	}
	db, err := sql.Open("postgres", cfg.Database.URL)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	db.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	db.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	db.SetConnMaxLifetime(5 * time.Minute)
	db.SetConnMaxIdleTime(30 * time.Second)

	pingCtx, pingCancel := context.WithTimeout(ctx, 3*time.Second)
	if err := db.PingContext(pingCtx); err != nil {
		log.Printf("Warning: database ping failed: %v (queries will retry on demand)", err)
	} else {
		log.Println("PostgreSQL connected")
	}
	pingCancel()

	rollups := postgres.NewRollupRepo(db)

	// Connect to Redis. The service runs uncached without it.
	var redisClient *redis.Client
	if cfg.Redis.URL != "" {
		opts, err := redis.ParseURL(cfg.Redis.URL)
		if err != nil {
			redisClient = redis.NewClient(&redis.Options{Addr: cfg.Redis.URL})
		} else {
			redisClient = redis.NewClient(opts)
		}
		pingCtx, pingCancel := context.WithTimeout(ctx, 3*time.Second)
		if err := redisClient.Ping(pingCtx).Err(); err != nil {
			log.Printf("Warning: Redis connection failed (%s): %v — running uncached", cfg.Redis.URL, err)
			redisClient.Close()
			redisClient = nil
		} else {
			log.Printf("Redis connected: %s (cache TTL %s)", cfg.Redis.URL, cfg.Redis.TTL())
		}
		pingCancel()
	} else {
		log.Println("Redis not configured (REDIS_URL not set) — running uncached")
	}

	// The service takes nil interface values for disabled collaborators,
	// so only assign when the backing client exists.
	var reportCache insights.Cache
	if redisClient != nil {
		reportCache = cache.New(redisClient, cfg.Redis.TTL())
	}

	// Snapshot archive (DynamoDB or local files)
	var archive insights.Archive
	store, err := storage.New(ctx, cfg.Archive)
	if err != nil {
		log.Printf("Warning: snapshot archive init failed: %v — history endpoints disabled", err)
	} else {
		archive = store
		log.Printf("Snapshot archive initialized (type: %s)", cfg.Archive.Type)
	}

	svc := insights.NewService(rollups, reportCache, archive, insights.Scoring{
		Weights: analytics.HealthWeights{
			Open:  cfg.Scoring.OpenWeight,
			Click: cfg.Scoring.ClickWeight,
			Reply: cfg.Scoring.ReplyWeight,
		},
		Thresholds: analytics.HealthThresholds{
			BounceWarning:     cfg.Scoring.BounceWarning,
			BounceCritical:    cfg.Scoring.BounceCritical,
			ComplaintWarning:  cfg.Scoring.ComplaintWarning,
			ComplaintCritical: cfg.Scoring.ComplaintCritical,
			OpenPositive:      cfg.Scoring.OpenPositive,
		},
	})

	// Snapshot worker archives yesterday's aggregates on a timer.
	if cfg.Worker.Enabled {
		if archive == nil {
			log.Println("Warning: snapshot worker enabled but archive is unavailable — worker not started")
		} else {
			var kinds []domain.EntityKind
			for _, k := range cfg.Worker.Kinds {
				kind, err := domain.ParseEntityKind(k)
				if err != nil {
					log.Printf("Warning: skipping unknown worker kind %q", k)
					continue
				}
				kinds = append(kinds, kind)
			}
			lock := distlock.NewLock(redisClient, db, worker.SnapshotLockKey, worker.SnapshotLockTTL)
			snapshotWorker := worker.NewSnapshotWorker(svc, rollups, lock, kinds, cfg.Worker.Interval())
			go snapshotWorker.Start(ctx)
		}
	} else {
		log.Println("Snapshot worker disabled")
	}

	// API server
	handlers := api.NewHandlers(svc, api.NewHealthChecker(db, redisClient))
	server := api.NewServer(cfg.Server, handlers)

	// Setup graceful shutdown
	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		log.Printf("Starting server on %s:%d", host, cfg.Server.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server error: %v", err)
		}
	}()

	log.Println("All services initialized — server is ready")

	<-done
	log.Println("Shutting down...")

	// Cancel background tasks
	cancel()

	// Graceful shutdown with timeout
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("Server shutdown error: %v", err)
	}

	if redisClient != nil {
		redisClient.Close()
	}
	db.Close()

	log.Println("Server stopped")
}
