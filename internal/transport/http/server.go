package http

import (
	"context"
	"errors"
	"fmt"
	stdhttp "net/http"
	"os"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"socialgraph/internal/cache"
	"socialgraph/internal/config"
	"socialgraph/internal/graph"
	"socialgraph/internal/handler"
	"socialgraph/internal/logger"
	"socialgraph/internal/metrics"
	"socialgraph/internal/moderation"
	"socialgraph/internal/queue"
	"socialgraph/internal/redis"
	"socialgraph/internal/service"
	"socialgraph/internal/storage"
	"socialgraph/internal/worker"
)

// Run wires the application and serves until ctx is cancelled. On the way out
// it stops the workers, drains HTTP, compacts the journal and uploads a final
// snapshot.
func Run(ctx context.Context) error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	if err := logger.Init(cfg.AppEnv); err != nil {
		return fmt.Errorf("failed to init logger: %w", err)
	}
	defer logger.Sync()
	log := logger.Get()

	denylist, err := moderation.LoadDenylist(cfg.DenylistFile)
	if err != nil {
		return fmt.Errorf("failed to load denylist: %w", err)
	}

	store := graph.New(graph.Options{
		Path:      cfg.GraphDBPath,
		Moderator: moderation.NewModerator(denylist),
		Logger:    log,
	})
	store.RecomputeAnalytics()

	var (
		publisher   queue.Publisher
		snapshots   service.Snapshotter
		feedService *service.FeedService
		manager     *worker.Manager
	)

	if cfg.RedisEnabled() {
		client, err := redis.Connect(ctx, cfg.RedisURL, log)
		if err != nil {
			return fmt.Errorf("failed to connect to redis: %w", err)
		}
		defer client.Close()

		publisher = queue.NewPublisher(client.Client, log)
		feedCache := cache.NewFeedCache(client.Client, log)
		feedService = service.NewFeedService(feedCache, store, log)

		workerCfg := worker.DefaultManagerConfig()
		workerCfg.WorkerCount = cfg.FeedWorkerCount
		if host, err := os.Hostname(); err == nil {
			workerCfg.ConsumerName = host
		}
		manager = worker.NewManager(
			queue.NewConsumer(client.Client, log),
			worker.NewHandler(feedCache, store, store, log),
			workerCfg,
			log,
		)
	} else {
		log.Info("REDIS_URL not set, feed and event stream disabled")
	}

	if cfg.SnapshotsEnabled() {
		uploader, err := storage.NewSnapshotUploader(ctx, cfg, log)
		if err != nil {
			return fmt.Errorf("failed to init snapshots: %w", err)
		}
		snapshots = uploader
	}

	graphService := service.NewGraphService(store, publisher, snapshots, log)
	latency := metrics.NewRecorder()

	router := NewRouter(RouterConfig{
		UserHandler:   handler.NewUserHandler(graphService, log),
		PostHandler:   handler.NewPostHandler(graphService, log),
		FollowHandler: handler.NewFollowHandler(graphService, log),
		FeedHandler:   handler.NewFeedHandler(feedService, log),
		SystemHandler: handler.NewSystemHandler(graphService, latency),
		Latency:       latency,
		Logger:        log,
	})

	srv := &stdhttp.Server{
		Addr:              ":" + cfg.ServerPort,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		log.Info("server listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, stdhttp.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})

	if manager != nil {
		g.Go(func() error {
			return manager.Run(gctx)
		})
	}

	g.Go(func() error {
		<-gctx.Done()
		log.Info("shutting down")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	runErr := g.Wait()

	finalCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := graphService.Shutdown(finalCtx); err != nil {
		log.Error("final compaction failed", zap.Error(err))
	}

	log.Info("stopped", zap.Int64("durability_errors", store.DurabilityErrors()))
	return runErr
}
